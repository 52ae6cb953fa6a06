package entitlements

import (
	"testing"
	"time"

	"github.com/kbediako/rentpadi/internal/domain/enums"
	"github.com/kbediako/rentpadi/internal/domain/model"
	"github.com/kbediako/rentpadi/internal/domain/rules"
)

var evalNow = time.Date(2026, 4, 15, 9, 30, 0, 0, time.UTC)

func freeRecord(remaining int, resetAt *time.Time) model.EntitlementRecord {
	return model.EntitlementRecord{
		UserID:                7,
		FreeContactsRemaining: remaining,
		FreeContactsResetAt:   resetAt,
		SubscriptionTier:      enums.TierFree,
	}
}

func TestEvaluateDecrementsFreeQuota(t *testing.T) {
	resetAt := evalNow.Add(-24 * time.Hour)
	d := Evaluate(freeRecord(3, &resetAt), evalNow)

	if d.Outcome != OutcomeAllow || d.Cost != 1 {
		t.Fatalf("unexpected decision: %+v", d)
	}
	if d.ResetApplied || d.NewRemaining != 2 {
		t.Fatalf("unexpected mutation: %+v", d)
	}
}

func TestEvaluateDeniesExhaustedQuota(t *testing.T) {
	resetAt := evalNow.Add(-24 * time.Hour)
	d := Evaluate(freeRecord(0, &resetAt), evalNow)

	if d.Outcome != OutcomeDeny {
		t.Fatalf("expected deny, got %+v", d)
	}
	if d.Reason != ReasonQuotaExhausted {
		t.Fatalf("unexpected reason: %q", d.Reason)
	}
	if d.NewRemaining != 0 || d.ResetApplied {
		t.Fatalf("deny must not mutate the record: %+v", d)
	}
}

func TestEvaluateResetAtExactly30Days(t *testing.T) {
	resetAt := evalNow.Add(-30 * 24 * time.Hour)
	d := Evaluate(freeRecord(0, &resetAt), evalNow)

	if d.Outcome != OutcomeAllow || !d.ResetApplied {
		t.Fatalf("expected allow with reset: %+v", d)
	}
	if d.NewRemaining != rules.FreeContactsPerPeriod-1 {
		t.Fatalf("expected fresh allowance minus one, got %d", d.NewRemaining)
	}
	if d.NewResetAt == nil || !d.NewResetAt.Equal(evalNow) {
		t.Fatalf("expected reset timestamp updated to now: %+v", d.NewResetAt)
	}
}

func TestEvaluateNoResetJustUnder30Days(t *testing.T) {
	resetAt := evalNow.Add(-30*24*time.Hour + time.Second)
	d := Evaluate(freeRecord(0, &resetAt), evalNow)

	if d.Outcome != OutcomeDeny || d.ResetApplied {
		t.Fatalf("expected deny without reset just under the boundary: %+v", d)
	}
}

func TestEvaluateNeverResetRecordGetsFreshAllowance(t *testing.T) {
	d := Evaluate(freeRecord(0, nil), evalNow)

	if d.Outcome != OutcomeAllow || !d.ResetApplied || d.NewRemaining != 2 {
		t.Fatalf("unexpected decision for never-reset record: %+v", d)
	}
}

func TestEvaluateActiveSubscriptionBypassesQuota(t *testing.T) {
	expires := evalNow.Add(24 * time.Hour)
	resetAt := evalNow.Add(-24 * time.Hour)
	record := freeRecord(0, &resetAt)
	record.SubscriptionTier = enums.TierRelax
	record.SubscriptionExpiresAt = &expires

	d := Evaluate(record, evalNow)
	if d.Outcome != OutcomeAllow || d.Cost != 0 || !d.Unlimited {
		t.Fatalf("expected unmetered allow for active subscriber: %+v", d)
	}
	if d.NewRemaining != 0 {
		t.Fatalf("active subscription must not touch the meter: %+v", d)
	}
}

func TestEvaluateExpiredSubscriptionFallsBackToQuota(t *testing.T) {
	expires := evalNow.Add(-24 * time.Hour)
	resetAt := evalNow.Add(-24 * time.Hour)
	record := freeRecord(0, &resetAt)
	record.SubscriptionTier = enums.TierRelax
	record.SubscriptionExpiresAt = &expires

	d := Evaluate(record, evalNow)
	if d.Outcome != OutcomeDeny || d.Reason != ReasonQuotaExhausted {
		t.Fatalf("expected deny for expired subscriber with empty meter: %+v", d)
	}
}

func TestEvaluateSubscriptionExpiringExactlyNowIsInactive(t *testing.T) {
	resetAt := evalNow.Add(-24 * time.Hour)
	record := freeRecord(1, &resetAt)
	record.SubscriptionTier = enums.TierBasic
	record.SubscriptionExpiresAt = &evalNow

	d := Evaluate(record, evalNow)
	if d.Unlimited || d.Cost != 1 {
		t.Fatalf("boundary expiry should be metered: %+v", d)
	}
}

func TestEffectiveRemaining(t *testing.T) {
	resetAt := evalNow.Add(-24 * time.Hour)
	if got := EffectiveRemaining(freeRecord(1, &resetAt), evalNow); got != 1 {
		t.Fatalf("unexpected remaining: %d", got)
	}

	lapsed := evalNow.Add(-31 * 24 * time.Hour)
	if got := EffectiveRemaining(freeRecord(0, &lapsed), evalNow); got != rules.FreeContactsPerPeriod {
		t.Fatalf("expected virtual reset, got %d", got)
	}
}
