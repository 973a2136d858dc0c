package pricing

import "github.com/shopspring/decimal"

const (
	// FreeDeliveryAbove is the subtotal that must be exceeded for free delivery.
	FreeDeliveryAbove int64 = 999
	DeliveryFee       int64 = 80
)

var promoRate = decimal.RequireFromString("0.10")

// Item is anything with a unit price and a quantity.
type Item interface {
	LineTotal() int64
}

// Totals is the price breakdown shown on the cart and frozen on an order.
type Totals struct {
	Subtotal    int64 `json:"subtotal"`
	DeliveryFee int64 `json:"deliveryFee"`
	Discount    int64 `json:"discount"`
	Total       int64 `json:"total"`
}

// Compute prices a subtotal. The promo discount is 10% of the subtotal
// rounded half away from zero to a whole currency unit.
func Compute(subtotal int64, promo bool) Totals {
	t := Totals{Subtotal: subtotal}
	if subtotal <= FreeDeliveryAbove {
		t.DeliveryFee = DeliveryFee
	}
	if promo {
		t.Discount = decimal.NewFromInt(subtotal).Mul(promoRate).Round(0).IntPart()
	}
	t.Total = t.Subtotal + t.DeliveryFee - t.Discount
	return t
}

// ForItems sums the items and prices the result. No items means zero totals.
func ForItems[T Item](items []T, promo bool) Totals {
	if len(items) == 0 {
		return Totals{}
	}
	var subtotal int64
	for _, it := range items {
		subtotal += it.LineTotal()
	}
	return Compute(subtotal, promo)
}
