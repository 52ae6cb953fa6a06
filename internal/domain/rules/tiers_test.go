package rules

import (
	"testing"

	"github.com/kbediako/rentpadi/internal/domain/enums"
)

func TestQuotaForKnownTiers(t *testing.T) {
	if q := QuotaFor(enums.TierFree); q.Unlimited || q.Contacts != FreeContactsPerPeriod {
		t.Fatalf("unexpected free quota: %+v", q)
	}
	if q := QuotaFor(enums.TierSuperuser); !q.Unlimited {
		t.Fatalf("expected superuser quota to be unlimited: %+v", q)
	}
}

func TestQuotaForUnknownTierFallsBackToFree(t *testing.T) {
	q := QuotaFor(enums.SubscriptionTier("GOLD"))
	if q.Unlimited || q.Contacts != FreeContactsPerPeriod {
		t.Fatalf("unexpected fallback quota: %+v", q)
	}
}

func TestPaidTierOptionsOrderedByPrice(t *testing.T) {
	options := PaidTierOptions()
	if len(options) != 3 {
		t.Fatalf("unexpected option count: %d", len(options))
	}
	for i := 1; i < len(options); i++ {
		if options[i].MonthlyPriceCedis <= options[i-1].MonthlyPriceCedis {
			t.Fatalf("options not in ascending price order: %+v", options)
		}
	}
	for _, opt := range options {
		if opt.PeriodDays != QuotaPeriodDays {
			t.Fatalf("unexpected period for %s: %d", opt.Tier, opt.PeriodDays)
		}
		if !opt.Unlimited && opt.Contacts <= FreeContactsPerPeriod {
			t.Fatalf("paid tier %s should beat the free allowance: %+v", opt.Tier, opt)
		}
	}
}
