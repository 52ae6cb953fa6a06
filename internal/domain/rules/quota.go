package rules

import "time"

// ResetDue reports whether the free-contact meter should be replenished.
// A nil resetAt means the meter was never reset and is due immediately.
// The window is a rolling 30 days measured in whole elapsed days: exactly
// 30.0 days triggers a reset, 29.999 days does not.
func ResetDue(resetAt *time.Time, now time.Time) bool {
	if resetAt == nil {
		return true
	}
	diff := now.Sub(*resetAt)
	if diff < 0 {
		return false
	}
	elapsedDays := int64(diff / (24 * time.Hour))
	return elapsedDays >= QuotaPeriodDays
}

// NextResetAt returns when the meter next replenishes given its last reset.
func NextResetAt(resetAt *time.Time, now time.Time) time.Time {
	if resetAt == nil {
		return now
	}
	return resetAt.Add(QuotaPeriodDays * 24 * time.Hour)
}
