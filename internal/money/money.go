// Package money defines the integer minor-unit amount used for every monetary value.
//
// One major currency unit is 100 minor units. Amounts never carry fractions of a
// minor unit; arithmetic that could overflow reports an error instead of wrapping.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest accepted amount. It keeps sums over realistic histories
// far away from the int64 limit.
const MaxAmount Amount = 1_000_000_000_000_000

// ErrOverflow is returned when a sum would leave the int64 range.
var ErrOverflow = errors.New("amount overflow")

var hundred = decimal.NewFromInt(100)

// Amount is a quantity of minor currency units.
type Amount int64

// Valid reports whether a is a usable non-negative amount.
func (a Amount) Valid() bool {
	return a >= 0 && a <= MaxAmount
}

// Abs returns the absolute value of a.
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

// String renders a in major units with two decimals, e.g. 1234 -> "12.34".
func (a Amount) String() string {
	return decimal.New(int64(a), -2).StringFixed(2)
}

// Add returns a+b, or ErrOverflow.
func Add(a, b Amount) (Amount, error) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, a, b)
	}
	return s, nil
}

// Sum adds all amounts, failing on overflow.
func Sum(amounts ...Amount) (Amount, error) {
	var total Amount
	for _, a := range amounts {
		var err error
		if total, err = Add(total, a); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// PercentOf returns total*pct/100 rounded to the nearest minor unit, ties away from zero
// (half-up for the non-negative values the split calculator passes in).
func PercentOf(total Amount, pct decimal.Decimal) Amount {
	share := decimal.NewFromInt(int64(total)).Mul(pct).Shift(-2)
	return Amount(share.Round(0).IntPart())
}

// Parse reads a major-unit string such as "12.34" into minor units.
// More than two decimals is an error rather than a silent rounding.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	minor := d.Mul(hundred)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("invalid amount %q: more than two decimals", s)
	}
	a := Amount(minor.IntPart())
	if a.Abs() > MaxAmount {
		return 0, fmt.Errorf("%w: %s", ErrOverflow, s)
	}
	return a, nil
}
