package unlocks_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kbediako/rentpadi/internal/domain/enums"
	"github.com/kbediako/rentpadi/internal/domain/model"
	"github.com/kbediako/rentpadi/internal/repo/memory"
	unlocksvc "github.com/kbediako/rentpadi/internal/services/unlocks"
)

type unlockFixture struct {
	svc        *unlocksvc.Service
	records    *memory.EntitlementRepo
	properties *memory.PropertyRepo
	ledger     *memory.UnlockLedger
}

func newUnlockFixture(t *testing.T, propertyCount int) unlockFixture {
	t.Helper()

	records := memory.NewEntitlementRepo()
	properties := memory.NewPropertyRepo()
	ledger := memory.NewUnlockLedger(records)

	for i := 0; i < propertyCount; i++ {
		properties.Seed(model.Property{
			OwnerID:       int64(100 + i),
			OwnerFullName: "Landlord",
			OwnerPhone:    "+233201112233",
			Title:         "Two bedroom, Osu",
			City:          "Accra",
			Available:     true,
		})
	}

	svc := unlocksvc.NewService(unlocksvc.Dependencies{
		Properties: properties,
		Records:    records,
		Ledger:     ledger,
	})

	return unlockFixture{svc: svc, records: records, properties: properties, ledger: ledger}
}

func TestUnlockDecrementsAndIsIdempotent(t *testing.T) {
	f := newUnlockFixture(t, 1)
	ctx := context.Background()

	first, err := f.svc.Unlock(ctx, 1, 1)
	if err != nil {
		t.Fatalf("first unlock: %v", err)
	}
	if first.Denied || first.AlreadyUnlocked {
		t.Fatalf("unexpected first unlock result: %+v", first)
	}
	if first.Remaining != 2 {
		t.Fatalf("expected 2 remaining after first unlock, got %d", first.Remaining)
	}
	if first.Owner.Phone != "+233201112233" {
		t.Fatalf("expected owner contact in result, got %+v", first.Owner)
	}

	second, err := f.svc.Unlock(ctx, 1, 1)
	if err != nil {
		t.Fatalf("repeat unlock: %v", err)
	}
	if !second.AlreadyUnlocked {
		t.Fatalf("repeat unlock should report already unlocked")
	}
	if second.Remaining != 2 {
		t.Fatalf("repeat unlock must not consume quota: remaining=%d", second.Remaining)
	}
	if second.Owner.Phone != "+233201112233" {
		t.Fatalf("repeat unlock should still return the contact")
	}
}

func TestQuotaExhaustionDeniesWithUpsell(t *testing.T) {
	f := newUnlockFixture(t, 4)
	ctx := context.Background()

	for propertyID := int64(1); propertyID <= 3; propertyID++ {
		res, err := f.svc.Unlock(ctx, 1, propertyID)
		if err != nil {
			t.Fatalf("unlock property %d: %v", propertyID, err)
		}
		if res.Denied {
			t.Fatalf("unlock %d should be within quota", propertyID)
		}
		if want := int(3 - propertyID); res.Remaining != want {
			t.Fatalf("after unlock %d want remaining=%d got %d", propertyID, want, res.Remaining)
		}
	}

	res, err := f.svc.Unlock(ctx, 1, 4)
	if err != nil {
		t.Fatalf("fourth unlock: %v", err)
	}
	if !res.Denied {
		t.Fatalf("fourth distinct unlock should be denied")
	}
	if len(res.UpsellTiers) == 0 {
		t.Fatalf("denial should carry upsell tiers")
	}
	if res.UpsellTiers[0].Tier != enums.TierBasic {
		t.Fatalf("upsell tiers should be price-ordered, got %v first", res.UpsellTiers[0].Tier)
	}

	// Denied attempt must not create a grant.
	status, err := f.svc.Status(ctx, 1, 4)
	if err != nil {
		t.Fatalf("status after denial: %v", err)
	}
	if status.IsUnlocked {
		t.Fatalf("denied unlock must not grant access")
	}
}

func TestLapsedQuotaResetsBeforeCheck(t *testing.T) {
	f := newUnlockFixture(t, 1)
	ctx := context.Background()

	resetAt := time.Now().UTC().Add(-31 * 24 * time.Hour)
	f.records.Seed(model.EntitlementRecord{
		UserID:                1,
		FreeContactsRemaining: 0,
		FreeContactsResetAt:   &resetAt,
		SubscriptionTier:      enums.TierFree,
	})

	res, err := f.svc.Unlock(ctx, 1, 1)
	if err != nil {
		t.Fatalf("unlock after lapsed period: %v", err)
	}
	if res.Denied {
		t.Fatalf("lapsed period should replenish the meter before the check")
	}
	if res.Remaining != 2 {
		t.Fatalf("expected fresh allowance minus one, got remaining=%d", res.Remaining)
	}

	record, err := f.records.GetRecord(ctx, 1)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if record.FreeContactsResetAt == nil || !record.FreeContactsResetAt.After(resetAt) {
		t.Fatalf("reset anchor should have been advanced, got %v", record.FreeContactsResetAt)
	}
}

func TestRecentQuotaDoesNotReset(t *testing.T) {
	f := newUnlockFixture(t, 1)
	ctx := context.Background()

	resetAt := time.Now().UTC().Add(-29 * 24 * time.Hour)
	f.records.Seed(model.EntitlementRecord{
		UserID:                1,
		FreeContactsRemaining: 0,
		FreeContactsResetAt:   &resetAt,
		SubscriptionTier:      enums.TierFree,
	})

	res, err := f.svc.Unlock(ctx, 1, 1)
	if err != nil {
		t.Fatalf("unlock inside quota period: %v", err)
	}
	if !res.Denied {
		t.Fatalf("exhausted meter inside the period should deny")
	}
}

func TestActiveSubscriptionBypassesMeter(t *testing.T) {
	f := newUnlockFixture(t, 5)
	ctx := context.Background()

	if _, err := f.records.ActivateSubscription(ctx, 1, enums.TierBasic, time.Now().UTC()); err != nil {
		t.Fatalf("activate subscription: %v", err)
	}

	for propertyID := int64(1); propertyID <= 5; propertyID++ {
		res, err := f.svc.Unlock(ctx, 1, propertyID)
		if err != nil {
			t.Fatalf("unlock property %d: %v", propertyID, err)
		}
		if res.Denied {
			t.Fatalf("active subscriber should never be denied, property %d", propertyID)
		}
		if !res.Unlimited {
			t.Fatalf("active subscriber unlocks should be unmetered")
		}
	}

	record, err := f.records.GetRecord(ctx, 1)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if record.FreeContactsRemaining != 3 {
		t.Fatalf("subscriber unlocks must not touch the free meter, got %d", record.FreeContactsRemaining)
	}
}

func TestExpiredSubscriptionFallsBackToMeter(t *testing.T) {
	f := newUnlockFixture(t, 1)
	ctx := context.Background()

	expired := time.Now().UTC().Add(-time.Hour)
	resetAt := time.Now().UTC().Add(-time.Hour)
	f.records.Seed(model.EntitlementRecord{
		UserID:                1,
		FreeContactsRemaining: 0,
		FreeContactsResetAt:   &resetAt,
		SubscriptionTier:      enums.TierRelax,
		SubscriptionExpiresAt: &expired,
	})

	res, err := f.svc.Unlock(ctx, 1, 1)
	if err != nil {
		t.Fatalf("unlock with expired subscription: %v", err)
	}
	if !res.Denied {
		t.Fatalf("expired subscription with drained meter should deny")
	}
}

func TestUnknownPropertyIsNotFound(t *testing.T) {
	f := newUnlockFixture(t, 1)

	if _, err := f.svc.Unlock(context.Background(), 1, 999); !errors.Is(err, unlocksvc.ErrPropertyNotFound) {
		t.Fatalf("expected property not found, got err=%v", err)
	}
}

func TestConcurrentDuplicateUnlockConsumesOnce(t *testing.T) {
	f := newUnlockFixture(t, 1)
	ctx := context.Background()

	const attempts = 8
	results := make([]unlocksvc.Result, attempts)
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.Unlock(ctx, 1, 1)
		}(i)
	}
	wg.Wait()

	fresh := 0
	for i := 0; i < attempts; i++ {
		if errs[i] != nil {
			t.Fatalf("unlock #%d: %v", i, errs[i])
		}
		if results[i].Denied {
			t.Fatalf("unlock #%d should not be denied", i)
		}
		if !results[i].AlreadyUnlocked {
			fresh++
		}
	}
	if fresh != 1 {
		t.Fatalf("exactly one attempt should consume quota, got %d", fresh)
	}

	record, err := f.records.GetRecord(ctx, 1)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if record.FreeContactsRemaining != 2 {
		t.Fatalf("duplicate race must consume exactly one contact, remaining=%d", record.FreeContactsRemaining)
	}
}

func TestStatusReportsEntitlementView(t *testing.T) {
	f := newUnlockFixture(t, 2)
	ctx := context.Background()

	if _, err := f.svc.Unlock(ctx, 1, 1); err != nil {
		t.Fatalf("unlock: %v", err)
	}

	unlocked, err := f.svc.Status(ctx, 1, 1)
	if err != nil {
		t.Fatalf("status unlocked: %v", err)
	}
	if !unlocked.IsUnlocked {
		t.Fatalf("expected property 1 unlocked")
	}
	if unlocked.Remaining != 2 {
		t.Fatalf("expected remaining=2, got %d", unlocked.Remaining)
	}

	locked, err := f.svc.Status(ctx, 1, 2)
	if err != nil {
		t.Fatalf("status locked: %v", err)
	}
	if locked.IsUnlocked {
		t.Fatalf("expected property 2 locked")
	}
	if locked.Tier != enums.TierFree {
		t.Fatalf("expected FREE tier, got %q", locked.Tier)
	}
}
