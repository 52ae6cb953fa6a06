package rules

import "github.com/kbediako/rentpadi/internal/domain/enums"

const (
	// FreeContactsPerPeriod is the free-tier contact allowance replenished
	// every quota period.
	FreeContactsPerPeriod = 3

	// QuotaPeriodDays is the rolling window for both the free-quota reset
	// and paid subscription validity.
	QuotaPeriodDays = 30
)

// TierQuota describes a tier's contact allowance. Unlimited is a dedicated
// flag: unlimited tiers carry no meaningful Contacts count and are never
// decremented.
type TierQuota struct {
	Unlimited bool
	Contacts  int
}

// TierOption is one upsell entry shown when a free user runs out of
// contacts.
type TierOption struct {
	Tier              enums.SubscriptionTier
	MonthlyPriceCedis int
	Contacts          int
	Unlimited         bool
	PeriodDays        int
}

var tierQuotas = map[enums.SubscriptionTier]TierQuota{
	enums.TierFree:      {Contacts: FreeContactsPerPeriod},
	enums.TierBasic:     {Contacts: 10},
	enums.TierRelax:     {Contacts: 25},
	enums.TierSuperuser: {Unlimited: true},
}

var tierPricesCedis = map[enums.SubscriptionTier]int{
	enums.TierFree:      0,
	enums.TierBasic:     30,
	enums.TierRelax:     60,
	enums.TierSuperuser: 120,
}

// QuotaFor returns the contact allowance for a tier. Unknown tiers fall
// back to the free allowance.
func QuotaFor(tier enums.SubscriptionTier) TierQuota {
	if q, ok := tierQuotas[tier]; ok {
		return q
	}
	return tierQuotas[enums.TierFree]
}

// PriceFor returns the monthly price of a tier in Ghana cedis.
func PriceFor(tier enums.SubscriptionTier) int {
	return tierPricesCedis[tier]
}

// PaidTierOptions lists the purchasable tiers in ascending price order,
// for upsell payloads and the public tier listing.
func PaidTierOptions() []TierOption {
	ordered := []enums.SubscriptionTier{enums.TierBasic, enums.TierRelax, enums.TierSuperuser}
	options := make([]TierOption, 0, len(ordered))
	for _, tier := range ordered {
		q := tierQuotas[tier]
		options = append(options, TierOption{
			Tier:              tier,
			MonthlyPriceCedis: tierPricesCedis[tier],
			Contacts:          q.Contacts,
			Unlimited:         q.Unlimited,
			PeriodDays:        QuotaPeriodDays,
		})
	}
	return options
}
