// Package pricing normalizes stored prices into the minimum price shown on
// search results and ticket catalogs.
package pricing

import "github.com/shopspring/decimal"

// PricedTier is anything that carries a price and an active flag, such as a
// ticket type.
type PricedTier struct {
	Price    decimal.Decimal
	IsActive bool
}

// MinActivePrice returns the lowest price among active tiers.  It returns nil
// when no tier is active, so callers can tell "unknown" apart from "free"
// (a zero price).  Negative prices are treated as free.
func MinActivePrice(tiers []PricedTier) *decimal.Decimal {
	var min *decimal.Decimal
	for _, t := range tiers {
		if !t.IsActive {
			continue
		}
		p := t.Price
		if p.IsNegative() {
			p = decimal.Zero
		}
		if min == nil || p.LessThan(*min) {
			v := p
			min = &v
		}
	}
	return min
}

// Normalize projects a stored price onto the JSON number used by search
// results.  Nil stays nil.
func Normalize(p *decimal.Decimal) *float64 {
	if p == nil {
		return nil
	}
	f := p.Round(2).InexactFloat64()
	if f < 0 {
		f = 0
	}
	return &f
}

// FromNullable converts a nullable stored price column into a decimal.
func FromNullable(valid bool, v decimal.Decimal) *decimal.Decimal {
	if !valid {
		return nil
	}
	return &v
}
