package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kbediako/rentpadi/internal/config"
	"github.com/kbediako/rentpadi/internal/domain/model"
	"github.com/kbediako/rentpadi/internal/jobs/cleanup"
	"github.com/kbediako/rentpadi/internal/repo/memory"
	pgrepo "github.com/kbediako/rentpadi/internal/repo/postgres"
	redrepo "github.com/kbediako/rentpadi/internal/repo/redis"
	authsvc "github.com/kbediako/rentpadi/internal/services/auth"
	entsvc "github.com/kbediako/rentpadi/internal/services/entitlements"
	ratesvc "github.com/kbediako/rentpadi/internal/services/rate"
	subsvc "github.com/kbediako/rentpadi/internal/services/subscriptions"
	unlocksvc "github.com/kbediako/rentpadi/internal/services/unlocks"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler
	cleanup    *cleanup.Job
}

// New wires the service graph. A configured Postgres DSN selects the
// durable backend (running embedded migrations first); an empty DSN runs
// everything on the in-memory stores. Redis is optional the same way:
// without it sessions live in memory and unlock attempts are unthrottled.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var (
		pool        *pgxpool.Pool
		users       authsvc.UserStore
		properties  unlocksvc.PropertyStore
		records     subsvc.EntitlementStore
		ledger      unlocksvc.Ledger
		payments    subsvc.PaymentStore
		janitor     cleanup.PaymentStore
		recordsView entsvc.RecordStore
	)

	if cfg.Postgres.DSN != "" {
		if err := pgrepo.Migrate(ctx, cfg.Postgres.DSN); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}

		p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		pool = p

		entitlementRepo := pgrepo.NewEntitlementRepo(pool)
		users = pgrepo.NewUserRepo(pool)
		properties = pgrepo.NewPropertyRepo(pool)
		records = entitlementRepo
		recordsView = entitlementRepo
		ledger = pgrepo.NewUnlockLedger(pool, pgrepo.NewUnlockRepo(pool), entitlementRepo)
		paymentRepo := pgrepo.NewPaymentRepo(pool)
		payments = paymentRepo
		janitor = paymentRepo
	} else {
		log.Warn("no postgres dsn configured, using in-memory stores with sample listings")

		entitlementRepo := memory.NewEntitlementRepo()
		users = memory.NewUserRepo()
		properties = seedSampleListings(memory.NewPropertyRepo())
		records = entitlementRepo
		recordsView = entitlementRepo
		ledger = memory.NewUnlockLedger(entitlementRepo)
		paymentRepo := memory.NewPaymentRepo()
		payments = paymentRepo
		janitor = paymentRepo
	}

	var (
		redisClient *goredis.Client
		sessions    authsvc.SessionStore
		limiter     unlocksvc.RateLimiter
	)
	if cfg.Redis.Addr != "" {
		redisClient = redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		sessions = redrepo.NewSessionRepo(redisClient)
		if cfg.Limits.UnlocksPerMinute > 0 || cfg.Limits.UnlocksPer10Seconds > 0 {
			limiter = ratesvc.NewLimiter(
				redrepo.NewRateRepo(redisClient),
				cfg.Limits.UnlocksPerMinute,
				cfg.Limits.UnlocksPer10Seconds,
			)
		}
	} else {
		log.Warn("no redis addr configured, sessions are in-memory and unlocks unthrottled")
		sessions = memory.NewSessionRepo()
	}

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, users, sessions, cfg.Auth.RefreshTTL)
	entitlementService := entsvc.NewService(recordsView)
	subscriptionService := subsvc.NewService(payments, records)
	unlockService := unlocksvc.NewService(unlocksvc.Dependencies{
		Properties: properties,
		Records:    recordsView,
		Ledger:     ledger,
	})
	if limiter != nil {
		unlockService.AttachRateLimiter(limiter)
	}

	RegisterRoutes(r, Dependencies{
		AuthService:         authService,
		EntitlementService:  entitlementService,
		SubscriptionService: subscriptionService,
		UnlockService:       unlockService,
		Logger:              log,
		Config:              cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		httpRouter: r,
		cleanup:    cleanup.New(janitor, cfg.Cleanup.PendingPaymentTTL, log),
	}, nil
}

// StartJobs launches the background maintenance loops. They stop when
// ctx is cancelled.
func (a *App) StartJobs(ctx context.Context) {
	go a.cleanup.Start(ctx, a.cfg.Cleanup.Interval)
}

// seedSampleListings gives the in-memory property store a few listings
// so unlocks work out of the box in dev mode.
func seedSampleListings(repo *memory.PropertyRepo) *memory.PropertyRepo {
	now := time.Now()
	for _, p := range []model.Property{
		{
			OwnerID:          1001,
			OwnerFullName:    "Kofi Asante",
			OwnerPhone:       "+233244000001",
			Title:            "Single room self-contained, Dansoman",
			City:             "Accra",
			MonthlyRentCedis: 450,
			Available:        true,
			CreatedAt:        now,
		},
		{
			OwnerID:          1002,
			OwnerFullName:    "Abena Owusu",
			OwnerPhone:       "+233201000002",
			Title:            "Two bedroom apartment, Ahodwo",
			City:             "Kumasi",
			MonthlyRentCedis: 1200,
			Available:        true,
			CreatedAt:        now,
		},
		{
			OwnerID:          1003,
			OwnerFullName:    "Yaw Darko",
			OwnerPhone:       "+233551000003",
			Title:            "Chamber and hall, Community 4",
			City:             "Tema",
			MonthlyRentCedis: 700,
			Available:        true,
			CreatedAt:        now,
		},
	} {
		repo.Seed(p)
	}
	return repo
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
