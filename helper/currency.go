package helper

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeCode lowercases an ISO currency or country code.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// FormatAmount renders an amount the way ePayco expects it: no thousands
// separator, no trailing zero decimals.
func FormatAmount(amount decimal.Decimal) string {
	return amount.String()
}

// ParseAmount parses an amount string sent by the gateway.
func ParseAmount(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(raw))
}
