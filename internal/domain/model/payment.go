package model

import (
	"time"

	"github.com/kbediako/rentpadi/internal/domain/enums"
)

// SubscriptionPayment is one attempt to buy a paid tier. Reference is the
// idempotency key shared with the payment provider; webhook confirmations
// are deduplicated on (provider, reference).
type SubscriptionPayment struct {
	ID          int64                  `json:"id"`
	UserID      int64                  `json:"user_id"`
	Tier        enums.SubscriptionTier `json:"tier"`
	Provider    enums.PaymentProvider  `json:"provider"`
	Reference   string                 `json:"reference"`
	AmountCedis int                    `json:"amount_cedis"`
	Status      enums.PaymentStatus    `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
	ConfirmedAt *time.Time             `json:"confirmed_at"`
}
