package enums

import "strings"

type PaymentProvider string

const (
	ProviderPaystack PaymentProvider = "paystack"
	ProviderMTNMoMo  PaymentProvider = "mtn_momo"
)

func ParsePaymentProvider(raw string) (PaymentProvider, bool) {
	switch PaymentProvider(strings.ToLower(strings.TrimSpace(raw))) {
	case ProviderPaystack:
		return ProviderPaystack, true
	case ProviderMTNMoMo:
		return ProviderMTNMoMo, true
	default:
		return "", false
	}
}
