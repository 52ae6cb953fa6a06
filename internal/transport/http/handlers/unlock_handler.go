package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/kbediako/rentpadi/internal/services/auth"
	unlocksvc "github.com/kbediako/rentpadi/internal/services/unlocks"
	"github.com/kbediako/rentpadi/internal/transport/http/dto"
	httperrors "github.com/kbediako/rentpadi/internal/transport/http/errors"
)

type UnlockHandler struct {
	service *unlocksvc.Service
}

func NewUnlockHandler(service *unlocksvc.Service) *UnlockHandler {
	return &UnlockHandler{service: service}
}

// Unlock handles POST /v1/properties/{propertyID}/unlock. Quota
// exhaustion is a 402 with the structured upsell payload, not an error.
func (h *UnlockHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "UNLOCK_SERVICE_UNAVAILABLE", "unlock service is unavailable")
		return
	}

	propertyID, ok := propertyIDFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid property id")
		return
	}

	result, err := h.service.Unlock(r.Context(), identity.UserID, propertyID)
	if err != nil {
		switch {
		case errors.Is(err, unlocksvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid unlock request")
		case errors.Is(err, unlocksvc.ErrPropertyNotFound):
			writeNotFound(w, "PROPERTY_NOT_FOUND", "property not found")
		default:
			if tf, ok := unlocksvc.IsTooFast(err); ok {
				httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
					Code:          "TOO_FAST",
					Message:       "too many unlock attempts, slow down",
					RetryAfterSec: tf.RetryAfter(),
				})
				return
			}
			writeInternal(w, "INTERNAL_ERROR", "failed to unlock contact")
		}
		return
	}

	if result.Denied {
		httperrors.Write(w, http.StatusPaymentRequired, dto.UnlockDeniedResponse{
			Error:                "FREE_CONTACTS_EXHAUSTED",
			RequiresSubscription: true,
			Message:              "You have used all your free contacts. Subscribe to keep unlocking landlord numbers.",
			SubscriptionTiers:    mapTierOptions(result.UpsellTiers),
		})
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UnlockSuccessResponse{
		Success:         true,
		AlreadyUnlocked: result.AlreadyUnlocked,
		Owner: dto.OwnerContactResponse{
			ID:       result.Owner.ID,
			FullName: result.Owner.FullName,
			Phone:    result.Owner.Phone,
		},
		ContactsRemaining: contactsRemainingPayload(result.Remaining, result.Unlimited),
	})
}

// Status handles GET /v1/properties/{propertyID}/unlock.
func (h *UnlockHandler) Status(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "UNLOCK_SERVICE_UNAVAILABLE", "unlock service is unavailable")
		return
	}

	propertyID, ok := propertyIDFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid property id")
		return
	}

	status, err := h.service.Status(r.Context(), identity.UserID, propertyID)
	if err != nil {
		switch {
		case errors.Is(err, unlocksvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid status request")
		case errors.Is(err, unlocksvc.ErrPropertyNotFound):
			writeNotFound(w, "PROPERTY_NOT_FOUND", "property not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load unlock status")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UnlockStatusResponse{
		IsUnlocked:            status.IsUnlocked,
		FreeContactsRemaining: status.Remaining,
		SubscriptionTier:      string(status.Tier),
		SubscriptionActive:    status.SubscriptionActive,
	})
}

func propertyIDFromRequest(r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "propertyID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func contactsRemainingPayload(remaining int, unlimited bool) any {
	if unlimited {
		return dto.UnlockedContactsRemaining
	}
	return remaining
}
