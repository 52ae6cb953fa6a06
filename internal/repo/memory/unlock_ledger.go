package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kbediako/rentpadi/internal/domain/model"
	entsvc "github.com/kbediako/rentpadi/internal/services/entitlements"
	unlocksvc "github.com/kbediako/rentpadi/internal/services/unlocks"
)

type grantKey struct {
	userID     int64
	propertyID int64
}

// UnlockLedger is the in-memory Unlock Ledger. The map key doubles as the
// uniqueness constraint on (user, property); CommitUnlock holds the ledger
// lock across the grant insert and the meter mutation so both land
// together or not at all.
type UnlockLedger struct {
	mu      sync.Mutex
	grants  map[grantKey]model.UnlockGrant
	records *EntitlementRepo
}

func NewUnlockLedger(records *EntitlementRepo) *UnlockLedger {
	return &UnlockLedger{
		grants:  make(map[grantKey]model.UnlockGrant),
		records: records,
	}
}

func (l *UnlockLedger) GetGrant(_ context.Context, userID, propertyID int64) (model.UnlockGrant, bool, error) {
	if userID <= 0 || propertyID <= 0 {
		return model.UnlockGrant{}, false, fmt.Errorf("invalid grant lookup payload")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	grant, ok := l.grants[grantKey{userID, propertyID}]
	return grant, ok, nil
}

func (l *UnlockLedger) CountForUser(_ context.Context, userID int64) (int, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	count := 0
	for key := range l.grants {
		if key.userID == userID {
			count++
		}
	}
	return count, nil
}

func (l *UnlockLedger) CommitUnlock(_ context.Context, userID, propertyID int64, decision entsvc.Decision, now time.Time) (unlocksvc.CommitResult, error) {
	if userID <= 0 || propertyID <= 0 {
		return unlocksvc.CommitResult{}, fmt.Errorf("invalid unlock commit payload")
	}
	if l.records == nil {
		return unlocksvc.CommitResult{}, fmt.Errorf("entitlement repo is nil")
	}
	if decision.Outcome != entsvc.OutcomeAllow {
		return unlocksvc.CommitResult{}, fmt.Errorf("commit requires an allow decision")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := grantKey{userID, propertyID}
	if _, exists := l.grants[key]; exists {
		return unlocksvc.CommitResult{AlreadyUnlocked: true}, nil
	}

	remaining, ok := l.records.applyDecision(userID, decision.Cost, now)
	if !ok {
		return unlocksvc.CommitResult{QuotaExhausted: true}, nil
	}

	l.grants[key] = model.UnlockGrant{
		UserID:     userID,
		PropertyID: propertyID,
		UnlockedAt: now,
	}

	return unlocksvc.CommitResult{Remaining: remaining}, nil
}
