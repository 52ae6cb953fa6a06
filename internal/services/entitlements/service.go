package entitlements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kbediako/rentpadi/internal/domain/enums"
	"github.com/kbediako/rentpadi/internal/domain/model"
	"github.com/kbediako/rentpadi/internal/domain/rules"
)

var ErrValidation = errors.New("validation error")

type RecordStore interface {
	GetRecord(ctx context.Context, userID int64) (model.EntitlementRecord, error)
}

type Service struct {
	store RecordStore
	now   func() time.Time
}

// Snapshot is the read-only entitlement view for status endpoints. A due
// meter reset is reflected in Remaining without being persisted.
type Snapshot struct {
	UserID             int64
	Tier               enums.SubscriptionTier
	SubscriptionActive bool
	SubscriptionUntil  *time.Time
	Remaining          int
	Unlimited          bool
	NextResetAt        time.Time
}

func NewService(store RecordStore) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

func (s *Service) GetStatus(ctx context.Context, userID int64) (Snapshot, error) {
	if userID <= 0 {
		return Snapshot{}, ErrValidation
	}
	if s.store == nil {
		return Snapshot{}, fmt.Errorf("entitlement record store is nil")
	}

	record, err := s.store.GetRecord(ctx, userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get entitlement record: %w", err)
	}

	now := s.now().UTC()
	active := record.SubscriptionActive(now)

	resetAt := record.FreeContactsResetAt
	if rules.ResetDue(resetAt, now) {
		resetAt = nil
	}

	return Snapshot{
		UserID:             userID,
		Tier:               record.SubscriptionTier,
		SubscriptionActive: active,
		SubscriptionUntil:  record.SubscriptionExpiresAt,
		Remaining:          EffectiveRemaining(record, now),
		Unlimited:          active,
		NextResetAt:        rules.NextResetAt(resetAt, now),
	}, nil
}
