package enums

import "strings"

type SubscriptionTier string

const (
	TierFree      SubscriptionTier = "FREE"
	TierBasic     SubscriptionTier = "BASIC"
	TierRelax     SubscriptionTier = "RELAX"
	TierSuperuser SubscriptionTier = "SUPERUSER"
)

func ParseSubscriptionTier(raw string) (SubscriptionTier, bool) {
	switch SubscriptionTier(strings.ToUpper(strings.TrimSpace(raw))) {
	case TierFree:
		return TierFree, true
	case TierBasic:
		return TierBasic, true
	case TierRelax:
		return TierRelax, true
	case TierSuperuser:
		return TierSuperuser, true
	default:
		return "", false
	}
}

func (t SubscriptionTier) IsPaid() bool {
	return t == TierBasic || t == TierRelax || t == TierSuperuser
}
