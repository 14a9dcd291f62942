// Package money holds all monetary amounts as integer minor units (cents).
// Decimal yuan values exist only at the API and display boundaries.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Minor is an amount in minor currency units. Signed: negative amounts are
// valid (discount add-ons, deductions).
type Minor int64

var ErrBadAmount = errors.New("malformed yuan amount")

var hundred = decimal.NewFromInt(100)

// FromYuan converts a decimal yuan amount to minor units, rounding half
// away from zero.
func FromYuan(d decimal.Decimal) Minor {
	return Minor(d.Mul(hundred).Round(0).IntPart())
}

// ParseYuan parses a decimal yuan string ("18.50", "-5") into minor units.
func ParseYuan(s string) (Minor, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadAmount, s)
	}
	return FromYuan(d), nil
}

// Yuan returns the exact decimal yuan representation.
func (m Minor) Yuan() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// MulQty scales the amount by a quantity.
func (m Minor) MulQty(qty int) Minor {
	return m * Minor(qty)
}

// String formats the amount as yuan with two decimal places.
func (m Minor) String() string {
	return m.Yuan().StringFixed(2)
}
