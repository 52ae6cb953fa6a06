package unlocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kbediako/rentpadi/internal/domain/enums"
	"github.com/kbediako/rentpadi/internal/domain/model"
	"github.com/kbediako/rentpadi/internal/domain/rules"
	entsvc "github.com/kbediako/rentpadi/internal/services/entitlements"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrPropertyNotFound = errors.New("property not found")
	ErrDependenciesNil  = errors.New("unlock dependencies are not configured")
)

type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return "too fast"
}

func (e TooFastError) RetryAfter() int64 {
	if e.RetryAfterSec <= 0 {
		return 1
	}
	return e.RetryAfterSec
}

func IsTooFast(err error) (*TooFastError, bool) {
	var tf TooFastError
	if errors.As(err, &tf) {
		return &tf, true
	}
	return nil, false
}

type PropertyStore interface {
	GetProperty(ctx context.Context, propertyID int64) (model.Property, bool, error)
}

type RecordStore interface {
	GetRecord(ctx context.Context, userID int64) (model.EntitlementRecord, error)
}

// CommitResult is the outcome of the ledger's atomic unlock commit.
// AlreadyUnlocked reports the benign race where a concurrent request
// inserted the same grant first; QuotaExhausted reports the meter being
// drained by a concurrent unlock between evaluation and commit. Both are
// normal control flow, never errors.
type CommitResult struct {
	AlreadyUnlocked bool
	QuotaExhausted  bool
	Remaining       int
}

// Ledger persists unlock grants. CommitUnlock must insert the grant and
// apply the decision's record mutation in one atomic transaction: a crash
// must never leave a grant without its decrement or a decrement without
// its grant.
type Ledger interface {
	GetGrant(ctx context.Context, userID, propertyID int64) (model.UnlockGrant, bool, error)
	CommitUnlock(ctx context.Context, userID, propertyID int64, decision entsvc.Decision, now time.Time) (CommitResult, error)
}

type RateLimiter interface {
	AllowUnlock(ctx context.Context, userID int64) (int64, bool, error)
}

type Service struct {
	properties  PropertyStore
	records     RecordStore
	ledger      Ledger
	rateLimiter RateLimiter
	now         func() time.Time
}

type Dependencies struct {
	Properties PropertyStore
	Records    RecordStore
	Ledger     Ledger
}

type Result struct {
	Denied          bool
	AlreadyUnlocked bool
	Owner           model.OwnerContact
	Remaining       int
	Unlimited       bool
	Reason          string
	UpsellTiers     []rules.TierOption
}

type Status struct {
	IsUnlocked         bool
	Remaining          int
	Unlimited          bool
	Tier               enums.SubscriptionTier
	SubscriptionActive bool
}

func NewService(deps Dependencies) *Service {
	return &Service{
		properties: deps.Properties,
		records:    deps.Records,
		ledger:     deps.Ledger,
		now:        time.Now,
	}
}

// AttachRateLimiter enables per-user throttling of unlock attempts. The
// limiter is optional; without it unlocks are only bounded by the meter.
func (s *Service) AttachRateLimiter(limiter RateLimiter) {
	s.rateLimiter = limiter
}

// Unlock runs the full paywall workflow for one (user, property) pair.
// It is idempotent: a second call for an already-unlocked pair returns the
// contact again with AlreadyUnlocked set and performs no mutation.
func (s *Service) Unlock(ctx context.Context, userID, propertyID int64) (Result, error) {
	if userID <= 0 || propertyID <= 0 {
		return Result{}, ErrValidation
	}
	if s.properties == nil || s.records == nil || s.ledger == nil {
		return Result{}, ErrDependenciesNil
	}

	now := s.now().UTC()

	property, found, err := s.properties.GetProperty(ctx, propertyID)
	if err != nil {
		return Result{}, fmt.Errorf("get property: %w", err)
	}
	if !found {
		return Result{}, ErrPropertyNotFound
	}

	if _, granted, err := s.ledger.GetGrant(ctx, userID, propertyID); err != nil {
		return Result{}, fmt.Errorf("lookup unlock grant: %w", err)
	} else if granted {
		return s.alreadyUnlocked(ctx, userID, property, now)
	}

	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowUnlock(ctx, userID)
		if err != nil {
			return Result{}, fmt.Errorf("apply unlock rate limiter: %w", err)
		}
		if !allowed {
			return Result{}, TooFastError{RetryAfterSec: retryAfter}
		}
	}

	record, err := s.records.GetRecord(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("get entitlement record: %w", err)
	}

	decision := entsvc.Evaluate(record, now)
	if decision.Outcome == entsvc.OutcomeDeny {
		return denyResult(decision.Reason), nil
	}

	commit, err := s.ledger.CommitUnlock(ctx, userID, propertyID, decision, now)
	if err != nil {
		return Result{}, fmt.Errorf("commit unlock: %w", err)
	}
	if commit.AlreadyUnlocked {
		return s.alreadyUnlocked(ctx, userID, property, now)
	}
	if commit.QuotaExhausted {
		return denyResult(entsvc.ReasonQuotaExhausted), nil
	}

	remaining := decision.NewRemaining
	if !decision.Unlimited {
		remaining = commit.Remaining
	}

	return Result{
		Owner:     property.Contact(),
		Remaining: remaining,
		Unlimited: decision.Unlimited,
	}, nil
}

// Status reports whether the pair is unlocked plus the caller's current
// entitlement view. Read-only: a due meter reset is reflected virtually.
func (s *Service) Status(ctx context.Context, userID, propertyID int64) (Status, error) {
	if userID <= 0 || propertyID <= 0 {
		return Status{}, ErrValidation
	}
	if s.properties == nil || s.records == nil || s.ledger == nil {
		return Status{}, ErrDependenciesNil
	}

	if _, found, err := s.properties.GetProperty(ctx, propertyID); err != nil {
		return Status{}, fmt.Errorf("get property: %w", err)
	} else if !found {
		return Status{}, ErrPropertyNotFound
	}

	_, granted, err := s.ledger.GetGrant(ctx, userID, propertyID)
	if err != nil {
		return Status{}, fmt.Errorf("lookup unlock grant: %w", err)
	}

	record, err := s.records.GetRecord(ctx, userID)
	if err != nil {
		return Status{}, fmt.Errorf("get entitlement record: %w", err)
	}

	now := s.now().UTC()
	active := record.SubscriptionActive(now)

	return Status{
		IsUnlocked:         granted,
		Remaining:          entsvc.EffectiveRemaining(record, now),
		Unlimited:          active,
		Tier:               record.SubscriptionTier,
		SubscriptionActive: active,
	}, nil
}

func (s *Service) alreadyUnlocked(ctx context.Context, userID int64, property model.Property, now time.Time) (Result, error) {
	record, err := s.records.GetRecord(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("get entitlement record: %w", err)
	}

	return Result{
		AlreadyUnlocked: true,
		Owner:           property.Contact(),
		Remaining:       entsvc.EffectiveRemaining(record, now),
		Unlimited:       record.SubscriptionActive(now),
	}, nil
}

func denyResult(reason string) Result {
	return Result{
		Denied:      true,
		Reason:      reason,
		UpsellTiers: rules.PaidTierOptions(),
	}
}
