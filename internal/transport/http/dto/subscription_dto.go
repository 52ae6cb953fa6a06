package dto

import "time"

type BeginSubscriptionRequest struct {
	Tier     string `json:"tier"`
	Provider string `json:"provider"`
}

type BeginSubscriptionResponse struct {
	Reference   string `json:"reference"`
	Tier        string `json:"tier"`
	Provider    string `json:"provider"`
	AmountCedis int    `json:"amount_cedis"`
	Status      string `json:"status"`
}

// PaymentWebhookRequest is the normalized shape both provider webhooks are
// mapped to before verification.
type PaymentWebhookRequest struct {
	Provider  string `json:"provider"`
	Reference string `json:"reference"`
}

type PaymentWebhookResponse struct {
	OK                bool       `json:"ok"`
	AlreadyConfirmed  bool       `json:"already_confirmed,omitempty"`
	Tier              string     `json:"tier"`
	SubscriptionUntil *time.Time `json:"subscription_until,omitempty"`
}
