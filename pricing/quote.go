package pricing

import (
	"github.com/shopspring/decimal"
)

// Delivery pricing used for indicative totals.
var (
	FreeDeliveryThreshold = decimal.NewFromInt(5000)
	StandardDeliveryFee   = decimal.NewFromInt(200)
)

// Quote is an indicative price for one line. Final pricing is confirmed by
// staff, so quotes are informational only.
type Quote struct {
	Priced         bool            `json:"priced"`
	PricePerStem   decimal.Decimal `json:"pricePerStem"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountRate   decimal.Decimal `json:"discountRate"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Total          decimal.Decimal `json:"total"`
}

// NewQuote prices quantity stems of a product with the given base price and
// stem-size multiplier. The per-stem price and discount amount are rounded to
// whole currency units. A non-positive base price yields an unpriced quote
// that still carries the discount rate.
func NewQuote(basePrice, multiplier decimal.Decimal, quantity int) Quote {
	rate := TierDiscount(quantity)
	if !basePrice.IsPositive() || quantity <= 0 {
		return Quote{
			DiscountRate:   rate,
			PricePerStem:   decimal.Zero,
			Subtotal:       decimal.Zero,
			DiscountAmount: decimal.Zero,
			Total:          decimal.Zero,
		}
	}
	if !multiplier.IsPositive() {
		multiplier = decimal.NewFromInt(1)
	}

	perStem := basePrice.Mul(multiplier).Round(0)
	subtotal := perStem.Mul(decimal.NewFromInt(int64(quantity)))
	discount := subtotal.Mul(rate).Round(0)

	return Quote{
		Priced:         true,
		PricePerStem:   perStem,
		Subtotal:       subtotal,
		DiscountRate:   rate,
		DiscountAmount: discount,
		Total:          subtotal.Sub(discount),
	}
}

// DeliveryFee returns the delivery charge for an order subtotal. Pickup is
// free, as is delivery above the free-delivery threshold.
func DeliveryFee(subtotal decimal.Decimal, delivery bool) decimal.Decimal {
	if !delivery || subtotal.GreaterThan(FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return StandardDeliveryFee
}
