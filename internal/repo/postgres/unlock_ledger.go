package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kbediako/rentpadi/internal/domain/model"
	entsvc "github.com/kbediako/rentpadi/internal/services/entitlements"
	unlocksvc "github.com/kbediako/rentpadi/internal/services/unlocks"
)

const uniqueViolationCode = "23505"

// UnlockLedger combines the grant table and the entitlement record into
// the single transactional commit the unlock workflow needs: both writes
// land together or not at all.
type UnlockLedger struct {
	pool    *pgxpool.Pool
	grants  *UnlockRepo
	records *EntitlementRepo
}

func NewUnlockLedger(pool *pgxpool.Pool, grants *UnlockRepo, records *EntitlementRepo) *UnlockLedger {
	return &UnlockLedger{
		pool:    pool,
		grants:  grants,
		records: records,
	}
}

func (l *UnlockLedger) GetGrant(ctx context.Context, userID, propertyID int64) (model.UnlockGrant, bool, error) {
	if l.grants == nil {
		return model.UnlockGrant{}, false, fmt.Errorf("unlock repo is nil")
	}
	return l.grants.GetGrant(ctx, userID, propertyID)
}

func (l *UnlockLedger) CommitUnlock(ctx context.Context, userID, propertyID int64, decision entsvc.Decision, now time.Time) (unlocksvc.CommitResult, error) {
	if l.pool == nil || l.grants == nil || l.records == nil {
		return unlocksvc.CommitResult{}, fmt.Errorf("unlock ledger is not configured")
	}
	if decision.Outcome != entsvc.OutcomeAllow {
		return unlocksvc.CommitResult{}, fmt.Errorf("commit requires an allow decision")
	}

	var result unlocksvc.CommitResult
	err := WithTx(ctx, l.pool, func(txCtx context.Context, tx pgx.Tx) error {
		inserted, err := l.grants.InsertGrant(txCtx, tx, userID, propertyID, now)
		if err != nil {
			return err
		}
		if !inserted {
			result.AlreadyUnlocked = true
			return nil
		}

		remaining, err := l.records.ApplyUnlockDecision(txCtx, tx, userID, decision.Cost, now)
		if err != nil {
			// Rolls back the grant insert too.
			return err
		}

		result.Remaining = remaining
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrFreeQuotaExhausted) {
			return unlocksvc.CommitResult{QuotaExhausted: true}, nil
		}
		if isUniqueViolation(err) {
			// A concurrent request won the insert race between our grant
			// lookup and the commit.
			return unlocksvc.CommitResult{AlreadyUnlocked: true}, nil
		}
		return unlocksvc.CommitResult{}, err
	}

	return result, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
