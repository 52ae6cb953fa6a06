package dto

import "time"

type EntitlementStatusResponse struct {
	Tier               string     `json:"tier"`
	SubscriptionActive bool       `json:"subscription_active"`
	SubscriptionUntil  *time.Time `json:"subscription_until,omitempty"`
	FreeContactsLeft   int        `json:"free_contacts_left"`
	Unlimited          bool       `json:"unlimited"`
	NextResetAt        time.Time  `json:"next_reset_at"`
}
