package model

import "time"

// UnlockGrant is the permanent record that a user has spent an entitlement
// to see a property owner's contact. At most one grant ever exists per
// (user, property) pair; grants are never updated or deleted.
type UnlockGrant struct {
	UserID     int64     `json:"user_id"`
	PropertyID int64     `json:"property_id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}
