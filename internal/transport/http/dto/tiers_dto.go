package dto

type TierResponse struct {
	Tier              string `json:"tier"`
	MonthlyPriceCedis int    `json:"monthly_price_cedis"`
	Contacts          int    `json:"contacts,omitempty"`
	Unlimited         bool   `json:"unlimited,omitempty"`
	PeriodDays        int    `json:"period_days"`
}

type TiersResponse struct {
	Tiers []TierResponse `json:"tiers"`
}
