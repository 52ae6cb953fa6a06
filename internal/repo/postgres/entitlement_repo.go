package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kbediako/rentpadi/internal/domain/enums"
	"github.com/kbediako/rentpadi/internal/domain/model"
	"github.com/kbediako/rentpadi/internal/domain/rules"
)

var ErrFreeQuotaExhausted = errors.New("free contact quota exhausted")

type EntitlementRepo struct {
	pool *pgxpool.Pool
}

func NewEntitlementRepo(pool *pgxpool.Pool) *EntitlementRepo {
	return &EntitlementRepo{pool: pool}
}

func (r *EntitlementRepo) GetRecord(ctx context.Context, userID int64) (model.EntitlementRecord, error) {
	if userID <= 0 {
		return model.EntitlementRecord{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.EntitlementRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var (
		record model.EntitlementRecord
		tier   string
	)
	err := r.pool.QueryRow(ctx, `
SELECT
	user_id,
	free_contacts_remaining,
	free_contacts_reset_at,
	subscription_tier,
	subscription_expires_at,
	updated_at
FROM entitlements
WHERE user_id = $1
LIMIT 1
`, userID).Scan(
		&record.UserID,
		&record.FreeContactsRemaining,
		&record.FreeContactsResetAt,
		&tier,
		&record.SubscriptionExpiresAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return defaultRecord(userID), nil
		}
		return model.EntitlementRecord{}, fmt.Errorf("get entitlement record: %w", err)
	}

	record.SubscriptionTier = enums.SubscriptionTier(tier)
	return record, nil
}

// ApplyUnlockDecision persists a reset and/or decrement as one guarded
// statement under the row lock of the caller's transaction. The reset
// condition is re-derived from the stored row, so a stale evaluation can
// never drive the meter negative; a zero-row result means the meter was
// concurrently exhausted and returns ErrFreeQuotaExhausted.
func (r *EntitlementRepo) ApplyUnlockDecision(ctx context.Context, tx pgx.Tx, userID int64, cost int, now time.Time) (int, error) {
	if userID <= 0 || cost < 0 {
		return 0, fmt.Errorf("invalid unlock decision payload")
	}
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}

	var remaining int
	err := tx.QueryRow(ctx, `
INSERT INTO entitlements (
	user_id,
	free_contacts_remaining,
	free_contacts_reset_at,
	subscription_tier,
	updated_at
) VALUES ($1, $2 - $3, $4, 'FREE', NOW())
ON CONFLICT (user_id) DO UPDATE SET
	free_contacts_remaining = CASE
		WHEN entitlements.free_contacts_reset_at IS NULL
			OR $4::timestamptz - entitlements.free_contacts_reset_at >= make_interval(days => $5)
		THEN $2 - $3
		ELSE entitlements.free_contacts_remaining - $3
	END,
	free_contacts_reset_at = CASE
		WHEN entitlements.free_contacts_reset_at IS NULL
			OR $4::timestamptz - entitlements.free_contacts_reset_at >= make_interval(days => $5)
		THEN $4
		ELSE entitlements.free_contacts_reset_at
	END,
	updated_at = NOW()
WHERE $3 = 0
	OR entitlements.free_contacts_remaining >= $3
	OR entitlements.free_contacts_reset_at IS NULL
	OR $4::timestamptz - entitlements.free_contacts_reset_at >= make_interval(days => $5)
RETURNING free_contacts_remaining
`, userID, rules.FreeContactsPerPeriod, cost, now, rules.QuotaPeriodDays).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrFreeQuotaExhausted
		}
		return 0, fmt.Errorf("apply unlock decision: %w", err)
	}

	return remaining, nil
}

// ActivateSubscription sets the tier and extends the expiry by one period,
// from the current expiry when still active or from now otherwise.
func (r *EntitlementRepo) ActivateSubscription(ctx context.Context, userID int64, tier enums.SubscriptionTier, now time.Time) (model.EntitlementRecord, error) {
	if userID <= 0 {
		return model.EntitlementRecord{}, fmt.Errorf("invalid user id")
	}
	if !tier.IsPaid() {
		return model.EntitlementRecord{}, fmt.Errorf("tier %q is not purchasable", tier)
	}
	if r.pool == nil {
		return model.EntitlementRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var (
		record    model.EntitlementRecord
		tierValue string
	)
	err := r.pool.QueryRow(ctx, `
INSERT INTO entitlements (
	user_id,
	free_contacts_remaining,
	free_contacts_reset_at,
	subscription_tier,
	subscription_expires_at,
	updated_at
) VALUES ($1, $3, NULL, $2, $4::timestamptz + make_interval(days => $5), NOW())
ON CONFLICT (user_id) DO UPDATE SET
	subscription_tier = EXCLUDED.subscription_tier,
	subscription_expires_at = GREATEST(
		COALESCE(entitlements.subscription_expires_at, $4::timestamptz),
		$4::timestamptz
	) + make_interval(days => $5),
	updated_at = NOW()
RETURNING
	user_id,
	free_contacts_remaining,
	free_contacts_reset_at,
	subscription_tier,
	subscription_expires_at,
	updated_at
`, userID, string(tier), rules.FreeContactsPerPeriod, now, rules.QuotaPeriodDays).Scan(
		&record.UserID,
		&record.FreeContactsRemaining,
		&record.FreeContactsResetAt,
		&tierValue,
		&record.SubscriptionExpiresAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return model.EntitlementRecord{}, fmt.Errorf("activate subscription: %w", err)
	}

	record.SubscriptionTier = enums.SubscriptionTier(tierValue)
	return record, nil
}

func defaultRecord(userID int64) model.EntitlementRecord {
	return model.EntitlementRecord{
		UserID:                userID,
		FreeContactsRemaining: rules.FreeContactsPerPeriod,
		SubscriptionTier:      enums.TierFree,
	}
}
