package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbediako/rentpadi/internal/domain/enums"
	"github.com/kbediako/rentpadi/internal/domain/model"
	"github.com/kbediako/rentpadi/internal/domain/rules"
)

var (
	ErrUnknownTier     = errors.New("unknown subscription tier")
	ErrUnknownProvider = errors.New("unknown payment provider")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrPaymentFailed   = errors.New("payment already failed")
)

type PaymentStore interface {
	CreatePending(ctx context.Context, payment model.SubscriptionPayment) (model.SubscriptionPayment, error)
	FindByReference(ctx context.Context, provider enums.PaymentProvider, reference string) (model.SubscriptionPayment, bool, error)
	// MarkConfirmed flips only pending payments. Confirmed and failed
	// rows come back unchanged with their current status.
	MarkConfirmed(ctx context.Context, provider enums.PaymentProvider, reference string, now time.Time) (model.SubscriptionPayment, bool, bool, error)
}

type EntitlementStore interface {
	GetRecord(ctx context.Context, userID int64) (model.EntitlementRecord, error)
	ActivateSubscription(ctx context.Context, userID int64, tier enums.SubscriptionTier, now time.Time) (model.EntitlementRecord, error)
}

// Confirmation is the outcome of a provider webhook. AlreadyConfirmed is
// set when the same (provider, reference) was delivered before; the
// entitlement is extended at most once per reference.
type Confirmation struct {
	Payment          model.SubscriptionPayment
	Record           model.EntitlementRecord
	AlreadyConfirmed bool
}

type Service struct {
	payments PaymentStore
	records  EntitlementStore
	now      func() time.Time
}

func NewService(payments PaymentStore, records EntitlementStore) *Service {
	return &Service{
		payments: payments,
		records:  records,
		now:      time.Now,
	}
}

// ListTiers returns the purchasable tiers in ascending price order.
func (s *Service) ListTiers() []rules.TierOption {
	return rules.PaidTierOptions()
}

// Begin opens a pending payment for a paid tier and hands back the
// reference the client passes to the provider checkout.
func (s *Service) Begin(ctx context.Context, userID int64, tierRaw, providerRaw string) (model.SubscriptionPayment, error) {
	if userID <= 0 {
		return model.SubscriptionPayment{}, fmt.Errorf("invalid user id")
	}

	tier, ok := enums.ParseSubscriptionTier(tierRaw)
	if !ok || !tier.IsPaid() {
		return model.SubscriptionPayment{}, ErrUnknownTier
	}

	provider, ok := enums.ParsePaymentProvider(providerRaw)
	if !ok {
		return model.SubscriptionPayment{}, ErrUnknownProvider
	}

	payment, err := s.payments.CreatePending(ctx, model.SubscriptionPayment{
		UserID:      userID,
		Tier:        tier,
		Provider:    provider,
		Reference:   uuid.NewString(),
		AmountCedis: rules.PriceFor(tier),
		Status:      enums.PaymentPending,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return model.SubscriptionPayment{}, fmt.Errorf("create pending payment: %w", err)
	}

	return payment, nil
}

// ConfirmWebhook settles a provider confirmation. Redelivered webhooks
// return the existing state without extending the subscription again.
func (s *Service) ConfirmWebhook(ctx context.Context, providerRaw, reference string) (Confirmation, error) {
	provider, ok := enums.ParsePaymentProvider(providerRaw)
	if !ok {
		return Confirmation{}, ErrUnknownProvider
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return Confirmation{}, ErrPaymentNotFound
	}

	now := s.now()
	payment, alreadyConfirmed, found, err := s.payments.MarkConfirmed(ctx, provider, reference, now)
	if err != nil {
		return Confirmation{}, fmt.Errorf("confirm payment: %w", err)
	}
	if !found {
		return Confirmation{}, ErrPaymentNotFound
	}

	if alreadyConfirmed {
		record, err := s.records.GetRecord(ctx, payment.UserID)
		if err != nil {
			return Confirmation{}, fmt.Errorf("get entitlement record: %w", err)
		}
		return Confirmation{Payment: payment, Record: record, AlreadyConfirmed: true}, nil
	}

	// A webhook can land after the cleanup job already failed the
	// reference. The stores leave such rows untouched; never grant a
	// subscription for them.
	if payment.Status != enums.PaymentConfirmed {
		return Confirmation{}, ErrPaymentFailed
	}

	record, err := s.records.ActivateSubscription(ctx, payment.UserID, payment.Tier, now)
	if err != nil {
		return Confirmation{}, fmt.Errorf("activate subscription: %w", err)
	}

	return Confirmation{Payment: payment, Record: record}, nil
}
