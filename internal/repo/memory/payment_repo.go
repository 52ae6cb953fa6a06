package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kbediako/rentpadi/internal/domain/enums"
	"github.com/kbediako/rentpadi/internal/domain/model"
)

type paymentKey struct {
	provider  enums.PaymentProvider
	reference string
}

type PaymentRepo struct {
	mu       sync.Mutex
	payments map[paymentKey]model.SubscriptionPayment
	nextID   int64
}

func NewPaymentRepo() *PaymentRepo {
	return &PaymentRepo{
		payments: make(map[paymentKey]model.SubscriptionPayment),
		nextID:   1,
	}
}

func (r *PaymentRepo) CreatePending(_ context.Context, payment model.SubscriptionPayment) (model.SubscriptionPayment, error) {
	if payment.UserID <= 0 || strings.TrimSpace(payment.Reference) == "" {
		return model.SubscriptionPayment{}, fmt.Errorf("invalid payment payload")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := paymentKey{payment.Provider, payment.Reference}
	if _, exists := r.payments[key]; exists {
		return model.SubscriptionPayment{}, fmt.Errorf("payment reference already exists")
	}

	payment.ID = r.nextID
	r.nextID++
	payment.Status = enums.PaymentPending
	r.payments[key] = payment
	return payment, nil
}

func (r *PaymentRepo) FindByReference(_ context.Context, provider enums.PaymentProvider, reference string) (model.SubscriptionPayment, bool, error) {
	if strings.TrimSpace(reference) == "" {
		return model.SubscriptionPayment{}, false, fmt.Errorf("payment reference is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.payments[paymentKey{provider, reference}]
	return payment, ok, nil
}

// MarkConfirmed flips a pending payment to confirmed. The second return
// reports an idempotent replay (the payment was already confirmed); the
// third reports whether the reference was found at all. A failed payment
// is returned as-is so the caller can refuse the late confirmation.
func (r *PaymentRepo) MarkConfirmed(_ context.Context, provider enums.PaymentProvider, reference string, now time.Time) (model.SubscriptionPayment, bool, bool, error) {
	if strings.TrimSpace(reference) == "" {
		return model.SubscriptionPayment{}, false, false, fmt.Errorf("payment reference is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := paymentKey{provider, reference}
	payment, ok := r.payments[key]
	if !ok {
		return model.SubscriptionPayment{}, false, false, nil
	}
	if payment.Status == enums.PaymentConfirmed {
		return payment, true, true, nil
	}
	if payment.Status != enums.PaymentPending {
		return payment, false, true, nil
	}

	payment.Status = enums.PaymentConfirmed
	t := now
	payment.ConfirmedAt = &t
	r.payments[key] = payment
	return payment, false, true, nil
}

// FailStalePending marks pending payments created before cutoff as failed
// and reports how many were flipped.
func (r *PaymentRepo) FailStalePending(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	failed := 0
	for key, payment := range r.payments {
		if payment.Status == enums.PaymentPending && payment.CreatedAt.Before(cutoff) {
			payment.Status = enums.PaymentFailed
			r.payments[key] = payment
			failed++
		}
	}
	return failed, nil
}
