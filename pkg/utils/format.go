// Package utils provides formatting and parsing helpers shared by the
// loaders, the report renderer and the CLI.
package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no currency is configured.
const DefaultCurrency = "USD"

// IsCurrency reports whether code is a known ISO 4217 currency.
func IsCurrency(code string) bool {
	return money.GetCurrency(strings.ToUpper(code)) != nil
}

// FormatCurrency renders amount in the given currency, e.g. 1500000 in USD
// is "$1,500,000.00". Amounts are rounded half away from zero to the
// currency's minor unit. Unknown currencies fall back to a plain two
// decimal rendering suffixed with the code.
func FormatCurrency(amount float64, currency string) string {
	currency = strings.ToUpper(currency)
	cur := money.GetCurrency(currency)
	if cur == nil {
		return decimal.NewFromFloat(amount).StringFixed(2) + " " + currency
	}

	factor := decimal.New(1, int32(cur.Fraction))
	minor := decimal.NewFromFloat(amount).Mul(factor).Round(0)
	return money.New(minor.IntPart(), currency).Display()
}

// FormatSignedCurrency is FormatCurrency with a leading "+" on positive amounts.
func FormatSignedCurrency(amount float64, currency string) string {
	s := FormatCurrency(amount, currency)
	if amount > 0 && !strings.HasPrefix(s, "-") {
		return "+" + s
	}
	return s
}

// FormatPercent formats a percentage with two decimals, e.g. 2.8333 → "2.83%".
func FormatPercent(pct float64) string {
	return decimal.NewFromFloat(pct).StringFixed(2) + "%"
}

// FormatPct formats a percentage value with sign and suffix.
// e.g., 2.45 → "+2.45%", -1.23 → "-1.23%"
func FormatPct(pct float64) string {
	if pct >= 0 {
		return "+" + FormatPercent(pct)
	}
	return FormatPercent(pct)
}

// FormatFixed formats v with the given number of decimals.
func FormatFixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// ParseNumber parses a numeric cell as it appears in spreadsheets and
// pasted tables: thousands separators, currency symbols, a trailing "%"
// and accounting parentheses are accepted.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer(",", "", "%", "", "$", "", "€", "", "£", "", "₹", "", " ", "").Replace(s)
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if negative {
		v = -v
	}
	return v, nil
}
