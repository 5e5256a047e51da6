// Package money provides the fixed-precision decimal type and calendar-day
// arithmetic used throughout the ledger. No monetary value is ever
// represented as a float.
package money

import (
	"github.com/shopspring/decimal"
)

// Amount is the fixed-precision decimal type for every monetary value in
// the system. It is a thin alias over shopspring/decimal, which already
// provides exact add/subtract/multiply/divide/compare semantics backed by
// math/big — the same type the teacher repository uses for every ledger
// amount (internal/domain/loan.go, internal/domain/transaction.go).
type Amount = decimal.Decimal

// Zero is the canonical zero amount. A fact attribute holding Zero is
// distinct from one that is absent (nil *Amount) — see the optional
// fact.Contract fields NetDisbursement and CommodityValue.
var Zero = decimal.Zero

// New builds an Amount from an integer number of minor-unit-free whole
// currency units, e.g. New(1200000) for 1,200,000.00.
func New(whole int64) Amount {
	return decimal.NewFromInt(whole)
}

// FromString parses a decimal literal exactly, with no float round-trip.
func FromString(s string) (Amount, error) {
	return decimal.NewFromString(s)
}

// Round2 rounds to two fractional digits, half-up, the display convention
// spec.md §4.1 mandates unless an attribute documents otherwise.
func Round2(a Amount) Amount {
	return a.RoundHalfUp(2)
}

// RoundScale rounds to an arbitrary scale, half-up.
func RoundScale(a Amount, scale int32) Amount {
	return a.RoundHalfUp(scale)
}

// Min returns the smaller of a and b.
func Min(a, b Amount) Amount {
	if a.LessThanOrEqual(b) {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b Amount) Amount {
	if a.GreaterThanOrEqual(b) {
		return a
	}
	return b
}

// MaxZero floors a at zero, used throughout settlement to express
// max(0, ...) clauses (spec §4.6).
func MaxZero(a Amount) Amount {
	return Max(a, Zero)
}

// IsPositive reports whether a is strictly greater than zero.
func IsPositive(a Amount) bool {
	return a.GreaterThan(Zero)
}

// IsNegative reports whether a is strictly less than zero.
func IsNegative(a Amount) bool {
	return a.LessThan(Zero)
}

// Sum adds a sequence of amounts, returning Zero for an empty sequence.
func Sum(amounts ...Amount) Amount {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
