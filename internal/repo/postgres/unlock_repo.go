package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kbediako/rentpadi/internal/domain/model"
)

type UnlockRepo struct {
	pool *pgxpool.Pool
}

func NewUnlockRepo(pool *pgxpool.Pool) *UnlockRepo {
	return &UnlockRepo{pool: pool}
}

func (r *UnlockRepo) GetGrant(ctx context.Context, userID, propertyID int64) (model.UnlockGrant, bool, error) {
	if userID <= 0 || propertyID <= 0 {
		return model.UnlockGrant{}, false, fmt.Errorf("invalid grant lookup payload")
	}
	if r.pool == nil {
		return model.UnlockGrant{}, false, fmt.Errorf("postgres pool is nil")
	}

	var grant model.UnlockGrant
	err := r.pool.QueryRow(ctx, `
SELECT user_id, property_id, unlocked_at
FROM unlock_grants
WHERE user_id = $1 AND property_id = $2
LIMIT 1
`, userID, propertyID).Scan(&grant.UserID, &grant.PropertyID, &grant.UnlockedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.UnlockGrant{}, false, nil
		}
		return model.UnlockGrant{}, false, fmt.Errorf("get unlock grant: %w", err)
	}

	return grant, true, nil
}

// InsertGrant appends a grant row. The composite primary key on
// (user_id, property_id) is the sole synchronization primitive for
// duplicate unlocks; a conflicting insert reports inserted=false instead
// of an error.
func (r *UnlockRepo) InsertGrant(ctx context.Context, tx pgx.Tx, userID, propertyID int64, now time.Time) (bool, error) {
	if userID <= 0 || propertyID <= 0 {
		return false, fmt.Errorf("invalid grant payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
INSERT INTO unlock_grants (
	user_id,
	property_id,
	unlocked_at
) VALUES ($1, $2, $3)
ON CONFLICT (user_id, property_id) DO NOTHING
`, userID, propertyID, now)
	if err != nil {
		return false, fmt.Errorf("insert unlock grant: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *UnlockRepo) CountForUser(ctx context.Context, userID int64) (int, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM unlock_grants
WHERE user_id = $1
`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unlock grants: %w", err)
	}

	return count, nil
}
