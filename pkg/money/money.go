// Package money converts between ruble amounts exchanged over the API and the
// kopeck integers stored by the ledger.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const minorDigits = 2

// Kopecks is an amount in minor units.
type Kopecks = int64

// FromRubles parses a decimal ruble string ("1500", "1500.5", "1500.50") into kopecks.
// More than two fractional digits is an error rather than a silent rounding.
func FromRubles(value string) (Kopecks, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 0, fmt.Errorf("amount is required")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", value)
	}
	return FromDecimal(d)
}

// FromDecimal converts a ruble decimal into kopecks.
func FromDecimal(d decimal.Decimal) (Kopecks, error) {
	minor := d.Shift(minorDigits)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", d.String(), minorDigits)
	}
	if minor.GreaterThan(decimal.NewFromInt(maxKopecks)) || minor.LessThan(decimal.NewFromInt(-maxKopecks)) {
		return 0, fmt.Errorf("amount %s out of range", d.String())
	}
	return minor.IntPart(), nil
}

// maxKopecks keeps totals well inside int64 once summed.
const maxKopecks = int64(1) << 52

// ToDecimal renders kopecks as rubles.
func ToDecimal(k Kopecks) decimal.Decimal {
	return decimal.NewFromInt(k).Shift(-minorDigits)
}

// Format renders kopecks as a fixed two-decimal ruble string.
func Format(k Kopecks) string {
	return ToDecimal(k).StringFixed(minorDigits)
}
