// Package pricing resolves quantity-based volume discounts and indicative
// price quotes for stem orders.
package pricing

import (
	"github.com/shopspring/decimal"
)

// Tier is one volume-discount threshold.
type Tier struct {
	MinQuantity int
	Rate        decimal.Decimal
}

// tiers is ordered highest threshold first; TierDiscount returns the first match.
var tiers = []Tier{
	{MinQuantity: 500, Rate: decimal.RequireFromString("0.22")},
	{MinQuantity: 200, Rate: decimal.RequireFromString("0.18")},
	{MinQuantity: 100, Rate: decimal.RequireFromString("0.15")},
	{MinQuantity: 50, Rate: decimal.RequireFromString("0.10")},
	{MinQuantity: 20, Rate: decimal.RequireFromString("0.05")},
}

// TierDiscount returns the volume discount rate for a stem quantity.
// Quantities below the lowest tier, including negative ones, get zero.
func TierDiscount(quantity int) decimal.Decimal {
	for _, t := range tiers {
		if quantity >= t.MinQuantity {
			return t.Rate
		}
	}
	return decimal.Zero
}

// Tiers returns the discount table in ascending quantity order.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	for i := range tiers {
		out[len(tiers)-1-i] = tiers[i]
	}
	return out
}

// FormatDiscount renders a rate as "15% off"; zero renders as "".
func FormatDiscount(rate decimal.Decimal) string {
	if !rate.IsPositive() {
		return ""
	}
	return rate.Shift(2).Round(0).String() + "% off"
}
