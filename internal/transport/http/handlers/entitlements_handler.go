package handlers

import (
	"net/http"

	authsvc "github.com/kbediako/rentpadi/internal/services/auth"
	entsvc "github.com/kbediako/rentpadi/internal/services/entitlements"
	"github.com/kbediako/rentpadi/internal/transport/http/dto"
	httperrors "github.com/kbediako/rentpadi/internal/transport/http/errors"
)

type EntitlementsHandler struct {
	service *entsvc.Service
}

func NewEntitlementsHandler(service *entsvc.Service) *EntitlementsHandler {
	return &EntitlementsHandler{service: service}
}

// Handle serves GET /v1/me/entitlements: the caller's tier, meter and
// next reset instant. A due reset is reflected without being persisted.
func (h *EntitlementsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "ENTITLEMENT_SERVICE_UNAVAILABLE", "entitlement service is unavailable")
		return
	}

	snapshot, err := h.service.GetStatus(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load entitlements")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.EntitlementStatusResponse{
		Tier:               string(snapshot.Tier),
		SubscriptionActive: snapshot.SubscriptionActive,
		SubscriptionUntil:  snapshot.SubscriptionUntil,
		FreeContactsLeft:   snapshot.Remaining,
		Unlimited:          snapshot.Unlimited,
		NextResetAt:        snapshot.NextResetAt.UTC(),
	})
}
