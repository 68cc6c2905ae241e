package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places every stored amount carries.
const MoneyPlaces = 2

// RoundMoney normalises an amount to MoneyPlaces, rounding half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// ParseAmount converts a decimal string like "10.50" to a normalised amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "+")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return RoundMoney(d), nil
}

// MustAmount is ParseAmount for literals known to be valid.
func MustAmount(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FormatAmount renders an amount with exactly two decimals, e.g. 1500 -> "1500.00".
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(MoneyPlaces)
}
