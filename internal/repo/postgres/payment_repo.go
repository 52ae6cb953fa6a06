package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kbediako/rentpadi/internal/domain/enums"
	"github.com/kbediako/rentpadi/internal/domain/model"
)

type PaymentRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentRepo(pool *pgxpool.Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

func (r *PaymentRepo) CreatePending(ctx context.Context, payment model.SubscriptionPayment) (model.SubscriptionPayment, error) {
	if payment.UserID <= 0 || strings.TrimSpace(payment.Reference) == "" {
		return model.SubscriptionPayment{}, fmt.Errorf("invalid payment payload")
	}
	if r.pool == nil {
		return model.SubscriptionPayment{}, fmt.Errorf("postgres pool is nil")
	}

	err := r.pool.QueryRow(ctx, `
INSERT INTO subscription_payments (
	user_id,
	tier,
	provider,
	reference,
	amount_cedis,
	status,
	created_at
) VALUES ($1, $2, $3, $4, $5, 'pending', NOW())
RETURNING id, created_at
`, payment.UserID, string(payment.Tier), string(payment.Provider), payment.Reference, payment.AmountCedis).
		Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return model.SubscriptionPayment{}, fmt.Errorf("create pending payment: %w", err)
	}

	payment.Status = enums.PaymentPending
	return payment, nil
}

func (r *PaymentRepo) FindByReference(ctx context.Context, provider enums.PaymentProvider, reference string) (model.SubscriptionPayment, bool, error) {
	if strings.TrimSpace(reference) == "" {
		return model.SubscriptionPayment{}, false, fmt.Errorf("payment reference is required")
	}
	if r.pool == nil {
		return model.SubscriptionPayment{}, false, fmt.Errorf("postgres pool is nil")
	}

	payment, err := r.scanPayment(r.pool.QueryRow(ctx, `
SELECT id, user_id, tier, provider, reference, amount_cedis, status, created_at, confirmed_at
FROM subscription_payments
WHERE provider = $1 AND reference = $2
LIMIT 1
`, string(provider), reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.SubscriptionPayment{}, false, nil
		}
		return model.SubscriptionPayment{}, false, fmt.Errorf("find payment by reference: %w", err)
	}

	return payment, true, nil
}

// MarkConfirmed flips a pending payment to confirmed. The guarded UPDATE
// makes replayed webhooks idempotent: a second confirmation matches zero
// rows and is reported as alreadyConfirmed instead of re-applied. A row
// the cleanup job failed also matches zero rows and comes back from the
// fallback read with its failed status intact.
func (r *PaymentRepo) MarkConfirmed(ctx context.Context, provider enums.PaymentProvider, reference string, now time.Time) (model.SubscriptionPayment, bool, bool, error) {
	if strings.TrimSpace(reference) == "" {
		return model.SubscriptionPayment{}, false, false, fmt.Errorf("payment reference is required")
	}
	if r.pool == nil {
		return model.SubscriptionPayment{}, false, false, fmt.Errorf("postgres pool is nil")
	}

	payment, err := r.scanPayment(r.pool.QueryRow(ctx, `
UPDATE subscription_payments
SET status = 'confirmed', confirmed_at = $3
WHERE provider = $1 AND reference = $2 AND status = 'pending'
RETURNING id, user_id, tier, provider, reference, amount_cedis, status, created_at, confirmed_at
`, string(provider), reference, now))
	if err == nil {
		return payment, false, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.SubscriptionPayment{}, false, false, fmt.Errorf("confirm payment: %w", err)
	}

	existing, found, err := r.FindByReference(ctx, provider, reference)
	if err != nil {
		return model.SubscriptionPayment{}, false, false, err
	}
	if !found {
		return model.SubscriptionPayment{}, false, false, nil
	}

	return existing, existing.Status == enums.PaymentConfirmed, true, nil
}

// FailStalePending marks pending payments created before cutoff as failed
// and reports how many rows were flipped.
func (r *PaymentRepo) FailStalePending(ctx context.Context, cutoff time.Time) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE subscription_payments
SET status = 'failed'
WHERE status = 'pending' AND created_at < $1
`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("fail stale pending payments: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

func (r *PaymentRepo) scanPayment(row pgx.Row) (model.SubscriptionPayment, error) {
	var (
		payment  model.SubscriptionPayment
		tier     string
		provider string
		status   string
	)
	if err := row.Scan(
		&payment.ID,
		&payment.UserID,
		&tier,
		&provider,
		&payment.Reference,
		&payment.AmountCedis,
		&status,
		&payment.CreatedAt,
		&payment.ConfirmedAt,
	); err != nil {
		return model.SubscriptionPayment{}, err
	}

	payment.Tier = enums.SubscriptionTier(tier)
	payment.Provider = enums.PaymentProvider(provider)
	payment.Status = enums.PaymentStatus(status)
	return payment, nil
}
