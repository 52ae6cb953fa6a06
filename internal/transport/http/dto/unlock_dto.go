package dto

// UnlockedContactsRemaining is the value reported for an active
// subscriber's meter in unlock responses.
const UnlockedContactsRemaining = "unlimited"

type OwnerContactResponse struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// UnlockSuccessResponse is returned for both a fresh unlock and an
// idempotent repeat. ContactsRemaining is a number, or the string
// "unlimited" for active subscribers.
type UnlockSuccessResponse struct {
	Success           bool                 `json:"success"`
	AlreadyUnlocked   bool                 `json:"already_unlocked,omitempty"`
	Owner             OwnerContactResponse `json:"owner"`
	ContactsRemaining any                  `json:"contacts_remaining"`
}

// UnlockDeniedResponse is the structured quota-exhaustion payload. It is a
// business outcome, not a transport error.
type UnlockDeniedResponse struct {
	Error                string         `json:"error"`
	RequiresSubscription bool           `json:"requires_subscription"`
	Message              string         `json:"message"`
	SubscriptionTiers    []TierResponse `json:"subscription_tiers"`
}

type UnlockStatusResponse struct {
	IsUnlocked            bool   `json:"is_unlocked"`
	FreeContactsRemaining int    `json:"free_contacts_remaining"`
	SubscriptionTier      string `json:"subscription_tier"`
	SubscriptionActive    bool   `json:"subscription_active"`
}
