package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kbediako/rentpadi/internal/domain/enums"
	"github.com/kbediako/rentpadi/internal/domain/model"
	"github.com/kbediako/rentpadi/internal/domain/rules"
)

// EntitlementRepo is the in-memory Entitlement Record Store used in dev
// mode and tests. It mirrors the Postgres repo's commit semantics: the
// reset-and-decrement is re-derived from the stored row under the lock, so
// a stale evaluation can never drive the meter negative.
type EntitlementRepo struct {
	mu      sync.Mutex
	records map[int64]model.EntitlementRecord
}

func NewEntitlementRepo() *EntitlementRepo {
	return &EntitlementRepo{
		records: make(map[int64]model.EntitlementRecord),
	}
}

// Seed stores a record as-is. Dev-mode and test fixture helper.
func (r *EntitlementRepo) Seed(record model.EntitlementRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.UserID] = record
}

func (r *EntitlementRepo) GetRecord(_ context.Context, userID int64) (model.EntitlementRecord, error) {
	if userID <= 0 {
		return model.EntitlementRecord{}, fmt.Errorf("invalid user id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recordLocked(userID), nil
}

func (r *EntitlementRepo) ActivateSubscription(_ context.Context, userID int64, tier enums.SubscriptionTier, now time.Time) (model.EntitlementRecord, error) {
	if userID <= 0 {
		return model.EntitlementRecord{}, fmt.Errorf("invalid user id")
	}
	if !tier.IsPaid() {
		return model.EntitlementRecord{}, fmt.Errorf("tier %q is not purchasable", tier)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	record := r.recordLocked(userID)
	base := now
	if record.SubscriptionExpiresAt != nil && record.SubscriptionExpiresAt.After(now) {
		base = *record.SubscriptionExpiresAt
	}
	expires := base.Add(rules.QuotaPeriodDays * 24 * time.Hour)
	record.SubscriptionTier = tier
	record.SubscriptionExpiresAt = &expires
	record.UpdatedAt = now
	r.records[userID] = record

	return record, nil
}

// applyDecision applies a reset and/or decrement as one guarded step.
// ok=false reports that the meter was concurrently exhausted and nothing
// changed.
func (r *EntitlementRepo) applyDecision(userID int64, cost int, now time.Time) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record := r.recordLocked(userID)
	if rules.ResetDue(record.FreeContactsResetAt, now) {
		record.FreeContactsRemaining = rules.FreeContactsPerPeriod
		t := now
		record.FreeContactsResetAt = &t
	}
	if cost > 0 {
		if record.FreeContactsRemaining < cost {
			return 0, false
		}
		record.FreeContactsRemaining -= cost
	}
	record.UpdatedAt = now
	r.records[userID] = record

	return record.FreeContactsRemaining, true
}

func (r *EntitlementRepo) recordLocked(userID int64) model.EntitlementRecord {
	if record, ok := r.records[userID]; ok {
		return record
	}
	return model.EntitlementRecord{
		UserID:                userID,
		FreeContactsRemaining: rules.FreeContactsPerPeriod,
		SubscriptionTier:      enums.TierFree,
	}
}
