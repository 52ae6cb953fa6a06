package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/kbediako/rentpadi/internal/services/auth"
	subsvc "github.com/kbediako/rentpadi/internal/services/subscriptions"
	"github.com/kbediako/rentpadi/internal/transport/http/dto"
	httperrors "github.com/kbediako/rentpadi/internal/transport/http/errors"
)

type SubscriptionHandler struct {
	service *subsvc.Service
}

func NewSubscriptionHandler(service *subsvc.Service) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

// Begin handles POST /v1/subscriptions: opens a pending payment and hands
// the provider reference back to the client for checkout.
func (h *SubscriptionHandler) Begin(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SUBSCRIPTION_SERVICE_UNAVAILABLE", "subscription service is unavailable")
		return
	}

	var req dto.BeginSubscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	payment, err := h.service.Begin(r.Context(), identity.UserID, req.Tier, req.Provider)
	if err != nil {
		switch {
		case errors.Is(err, subsvc.ErrUnknownTier):
			writeBadRequest(w, "UNKNOWN_TIER", "tier is not purchasable")
		case errors.Is(err, subsvc.ErrUnknownProvider):
			writeBadRequest(w, "UNKNOWN_PROVIDER", "unsupported payment provider")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to begin subscription")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.BeginSubscriptionResponse{
		Reference:   payment.Reference,
		Tier:        string(payment.Tier),
		Provider:    string(payment.Provider),
		AmountCedis: payment.AmountCedis,
		Status:      string(payment.Status),
	})
}

// Webhook handles POST /v1/subscriptions/webhook. Providers redeliver, so
// confirmations are idempotent on (provider, reference).
func (h *SubscriptionHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SUBSCRIPTION_SERVICE_UNAVAILABLE", "subscription service is unavailable")
		return
	}

	var req dto.PaymentWebhookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	conf, err := h.service.ConfirmWebhook(r.Context(), req.Provider, req.Reference)
	if err != nil {
		switch {
		case errors.Is(err, subsvc.ErrUnknownProvider):
			writeBadRequest(w, "UNKNOWN_PROVIDER", "unsupported payment provider")
		case errors.Is(err, subsvc.ErrPaymentNotFound):
			writeNotFound(w, "PAYMENT_NOT_FOUND", "payment reference not found")
		case errors.Is(err, subsvc.ErrPaymentFailed):
			httperrors.Write(w, http.StatusConflict, httperrors.APIError{
				Code:    "PAYMENT_FAILED",
				Message: "payment was marked failed and can no longer be confirmed",
			})
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to confirm payment")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PaymentWebhookResponse{
		OK:                true,
		AlreadyConfirmed:  conf.AlreadyConfirmed,
		Tier:              string(conf.Payment.Tier),
		SubscriptionUntil: conf.Record.SubscriptionExpiresAt,
	})
}
