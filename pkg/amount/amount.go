// Package amount converts between decimal display strings in major units
// ("12.34") and money.Money in minor units. Inputs with more fractional
// digits than the currency allows are rounded half up (away from zero) once,
// here, before they reach the ledger.
package amount

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupledger/internal/money"
)

// DefaultExponent is the number of minor-unit digits for currencies not
// listed in exponents.
const DefaultExponent = 2

var exponents = map[string]int32{
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0, "KMF": 0,
	"KRW": 0, "PYG": 0, "RWF": 0, "UGX": 0, "VND": 0, "VUV": 0, "XAF": 0,
	"XOF": 0, "XPF": 0,
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
}

var maxMinor = decimal.NewFromInt(money.MaxMinor)

// Exponent returns the number of minor-unit digits of an ISO-4217 currency.
func Exponent(currency string) int32 {
	if e, ok := exponents[strings.ToUpper(currency)]; ok {
		return e
	}
	return DefaultExponent
}

// ValidCurrency reports whether code looks like an ISO-4217 code.
func ValidCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Parse reads a decimal string in major units of currency. The sign is kept;
// callers decide whether non-positive amounts are acceptable.
func Parse(s, currency string) (money.Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return money.Zero, fmt.Errorf("%w: %q is not a decimal number", money.ErrInvalidAmount, s)
	}
	return FromDecimal(d, currency)
}

// FromDecimal converts major units to Money, rounding half up to the
// currency's minor unit.
func FromDecimal(d decimal.Decimal, currency string) (money.Money, error) {
	minor := ToMinorUnits(d, currency)
	if minor.Abs().GreaterThan(maxMinor) {
		return money.Zero, fmt.Errorf("%w: %s exceeds the maximum amount", money.ErrInvalidAmount, d.String())
	}
	return money.New(minor.IntPart()), nil
}

// ToMinorUnits converts major units to a whole number of minor units. The
// result is a decimal so that oversized inputs do not overflow.
func ToMinorUnits(d decimal.Decimal, currency string) decimal.Decimal {
	exp := Exponent(currency)
	return d.Round(exp).Shift(exp)
}

// Format renders m in major units with exactly the currency's digits, e.g. "10.00".
func Format(m money.Money, currency string) string {
	exp := Exponent(currency)
	return decimal.New(m.Minor(), -exp).StringFixed(exp)
}

// ExactMinorUnits shifts major units to minor units without rounding, so
// "3.333" EUR becomes 333.3 and the caller can reject the fraction.
func ExactMinorUnits(d decimal.Decimal, currency string) decimal.Decimal {
	return d.Shift(Exponent(currency))
}
