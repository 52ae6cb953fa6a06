package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kbediako/rentpadi/internal/config"
	authsvc "github.com/kbediako/rentpadi/internal/services/auth"
	entsvc "github.com/kbediako/rentpadi/internal/services/entitlements"
	subsvc "github.com/kbediako/rentpadi/internal/services/subscriptions"
	unlocksvc "github.com/kbediako/rentpadi/internal/services/unlocks"
	"github.com/kbediako/rentpadi/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService         *authsvc.Service
	EntitlementService  *entsvc.Service
	SubscriptionService *subsvc.Service
	UnlockService       *unlocksvc.Service
	Logger              *zap.Logger
	Config              config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	healthHandler := handlers.NewHealthHandler()
	unlockHandler := handlers.NewUnlockHandler(deps.UnlockService)
	entitlementsHandler := handlers.NewEntitlementsHandler(deps.EntitlementService)
	tiersHandler := handlers.NewTiersHandler(deps.SubscriptionService)
	subscriptionHandler := handlers.NewSubscriptionHandler(deps.SubscriptionService)
	authMW := AuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Handle)

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/tiers", tiersHandler.Handle)
		r.With(authMW).Get("/me/entitlements", entitlementsHandler.Handle)
		r.With(authMW).Post("/properties/{propertyID}/unlock", unlockHandler.Unlock)
		r.With(authMW).Get("/properties/{propertyID}/unlock", unlockHandler.Status)
		r.With(authMW).Post("/subscriptions", subscriptionHandler.Begin)
		r.Post("/subscriptions/webhook", subscriptionHandler.Webhook)
	})
}
