package utils

import (
	"strings"
	"unicode"
)

// NormalizeISIN upper-cases an identifier and drops spaces and dashes, so
// "us-1234 567890" and "US1234567890" compare equal.
func NormalizeISIN(isin string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(isin)) {
		if unicode.IsSpace(r) || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsValidISIN checks the ISO 6166 shape and Luhn check digit of a
// normalized ISIN. Portfolios may carry internal identifiers instead of
// ISINs, so loaders only use this for display hints, never to reject rows.
func IsValidISIN(isin string) bool {
	if len(isin) != 12 {
		return false
	}
	for i, r := range isin {
		switch {
		case i < 2 && (r < 'A' || r > 'Z'):
			return false
		case i == 11 && (r < '0' || r > '9'):
			return false
		case (r < 'A' || r > 'Z') && (r < '0' || r > '9'):
			return false
		}
	}

	// Expand letters to two digits (A=10 … Z=35), then Luhn.
	var digits []int
	for _, r := range isin {
		if r >= 'A' && r <= 'Z' {
			v := int(r-'A') + 10
			digits = append(digits, v/10, v%10)
			continue
		}
		digits = append(digits, int(r-'0'))
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
