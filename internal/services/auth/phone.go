package auth

import "strings"

// NormalizePhone canonicalizes Ghanaian MSISDNs to the +233XXXXXXXXX form.
// Accepts "+233XXXXXXXXX", "233XXXXXXXXX" and local "0XXXXXXXXX" input.
func NormalizePhone(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, strings.TrimSpace(raw))

	switch {
	case strings.HasPrefix(cleaned, "233") && len(cleaned) == 12:
		return "+" + cleaned, nil
	case strings.HasPrefix(cleaned, "0") && len(cleaned) == 10:
		return "+233" + cleaned[1:], nil
	default:
		return "", ErrInvalidInput
	}
}
