package entitlements

import (
	"time"

	"github.com/kbediako/rentpadi/internal/domain/model"
	"github.com/kbediako/rentpadi/internal/domain/rules"
)

type Outcome string

const (
	OutcomeAllow Outcome = "ALLOW"
	OutcomeDeny  Outcome = "DENY"
)

const ReasonQuotaExhausted = "quota exhausted"

// Decision is the evaluator's verdict for a single unlock attempt, plus
// the record mutation the orchestrator must persist alongside the grant.
type Decision struct {
	Outcome      Outcome
	Cost         int
	ResetApplied bool
	NewRemaining int
	NewResetAt   *time.Time
	Unlimited    bool
	Reason       string
}

// Evaluate decides ALLOW or DENY for an unlock attempt against a record
// snapshot. It is pure: no I/O, no clock reads, deterministic in
// (record, now).
//
// A due meter reset is folded into the same decision: a user whose quota
// lapsed 31 days ago gets a fresh allowance before the quota check, and
// the orchestrator commits the reset together with the decrement.
func Evaluate(record model.EntitlementRecord, now time.Time) Decision {
	remaining := record.FreeContactsRemaining
	resetApplied := false
	var newResetAt *time.Time
	if rules.ResetDue(record.FreeContactsResetAt, now) {
		remaining = rules.FreeContactsPerPeriod
		resetApplied = true
		t := now
		newResetAt = &t
	}

	if record.SubscriptionActive(now) {
		return Decision{
			Outcome:      OutcomeAllow,
			Cost:         0,
			ResetApplied: resetApplied,
			NewRemaining: remaining,
			NewResetAt:   newResetAt,
			Unlimited:    true,
		}
	}

	if remaining > 0 {
		return Decision{
			Outcome:      OutcomeAllow,
			Cost:         1,
			ResetApplied: resetApplied,
			NewRemaining: remaining - 1,
			NewResetAt:   newResetAt,
		}
	}

	return Decision{
		Outcome:      OutcomeDeny,
		ResetApplied: resetApplied,
		NewRemaining: remaining,
		NewResetAt:   newResetAt,
		Reason:       ReasonQuotaExhausted,
	}
}

// EffectiveRemaining reports the free contacts a user could spend right
// now, applying a due reset virtually without persisting it. Used by
// read-only status endpoints.
func EffectiveRemaining(record model.EntitlementRecord, now time.Time) int {
	if rules.ResetDue(record.FreeContactsResetAt, now) {
		return rules.FreeContactsPerPeriod
	}
	return record.FreeContactsRemaining
}
