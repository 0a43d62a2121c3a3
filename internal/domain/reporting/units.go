package reporting

import (
	"github.com/shopspring/decimal"
)

// DefaultMinorUnitThreshold is the integer magnitude at which a stored
// amount is assumed to be minor units (cents) rather than euros. The source
// data carries no authoritative unit tag, so this stays a heuristic; feeds
// that know their unit should say so via a UnitHint instead.
const DefaultMinorUnitThreshold = 50000

// UnitHint lets a feed state its monetary unit explicitly, bypassing the
// threshold heuristic.
type UnitHint string

const (
	// UnitHintAuto applies the integer-and-threshold heuristic.
	UnitHintAuto UnitHint = "auto"
	// UnitHintMinor declares the feed's amounts to be cents.
	UnitHintMinor UnitHint = "minor"
	// UnitHintMajor declares the feed's amounts to be euros.
	UnitHintMajor UnitHint = "major"
)

// IsValid returns true for a known unit hint.
func (h UnitHint) IsValid() bool {
	switch h {
	case UnitHintAuto, UnitHintMinor, UnitHintMajor:
		return true
	}
	return false
}

var oneHundred = decimal.NewFromInt(100)

// UnitResolver converts stored amounts of ambiguous unit into major-unit
// (euro) values.
type UnitResolver struct {
	threshold decimal.Decimal
}

// NewUnitResolver creates a resolver with the given minor-unit threshold.
// A non-positive threshold falls back to the documented default.
func NewUnitResolver(threshold int64) UnitResolver {
	if threshold <= 0 {
		threshold = DefaultMinorUnitThreshold
	}
	return UnitResolver{threshold: decimal.NewFromInt(threshold)}
}

// Resolve returns the major-unit value of a stored amount, preserving its
// sign. Under UnitHintAuto an integer whose absolute value reaches the
// threshold is treated as cents and divided by 100; everything else is
// passed through unchanged. A heuristic miss in either direction is silent:
// there is nothing in the data that would let us detect it.
func (r UnitResolver) Resolve(v decimal.Decimal, hint UnitHint) decimal.Decimal {
	switch hint {
	case UnitHintMinor:
		return v.Div(oneHundred)
	case UnitHintMajor:
		return v
	default:
		if v.IsInteger() && v.Abs().GreaterThanOrEqual(r.threshold) {
			return v.Div(oneHundred)
		}
		return v
	}
}
