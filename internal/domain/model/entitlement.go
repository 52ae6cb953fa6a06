package model

import (
	"time"

	"github.com/kbediako/rentpadi/internal/domain/enums"
)

// EntitlementRecord carries the per-user paywall state: the free-contact
// meter and the current subscription. FreeContactsRemaining is only
// meaningful while the subscription is not active; active subscribers are
// unmetered.
type EntitlementRecord struct {
	UserID                int64                  `json:"user_id"`
	FreeContactsRemaining int                    `json:"free_contacts_remaining"`
	FreeContactsResetAt   *time.Time             `json:"free_contacts_reset_at"`
	SubscriptionTier      enums.SubscriptionTier `json:"subscription_tier"`
	SubscriptionExpiresAt *time.Time             `json:"subscription_expires_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
}

// SubscriptionActive reports whether the record entitles the user to
// unmetered unlocks at the given instant. Expiry is exclusive: a
// subscription expiring exactly now is no longer active.
func (r EntitlementRecord) SubscriptionActive(now time.Time) bool {
	if !r.SubscriptionTier.IsPaid() {
		return false
	}
	return r.SubscriptionExpiresAt != nil && r.SubscriptionExpiresAt.After(now)
}
