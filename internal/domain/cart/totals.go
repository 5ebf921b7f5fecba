// internal/domain/cart/totals.go
package cart

import (
	"github.com/shopspring/decimal"
)

// Totals is the derived money view of a cart. It is never stored;
// callers recompute it from the cart on every read.
type Totals struct {
	ItemCount      int             `json:"item_count"`     // Number of unique lines
	TotalQuantity  int             `json:"total_quantity"` // Sum of all quantities
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	GiftWrapAmount decimal.Decimal `json:"gift_wrap_amount"`
	TotalPayable   decimal.Decimal `json:"total_payable"`
}

// ComputeTotals derives the payable total from the cart's lines, the
// applied coupon, and the store's gift wrap fee. Invariants:
// the discount never exceeds the subtotal and the total is never
// negative. The gift wrap fee applies only when wrapping is enabled and
// the cart has at least one line.
func ComputeTotals(c Cart, giftWrapFee decimal.Decimal) Totals {
	subtotal := c.Subtotal()

	discount := decimal.Zero
	if c.Coupon != nil {
		discount = c.Coupon.DiscountOn(subtotal)
	}

	giftWrap := decimal.Zero
	if c.GiftWrap && !c.IsEmpty() && giftWrapFee.IsPositive() {
		giftWrap = giftWrapFee
	}

	payable := subtotal.Sub(discount)
	if payable.IsNegative() {
		payable = decimal.Zero
	}
	payable = payable.Add(giftWrap)

	return Totals{
		ItemCount:      len(c.Lines),
		TotalQuantity:  c.TotalQuantity(),
		Subtotal:       subtotal,
		DiscountAmount: discount,
		GiftWrapAmount: giftWrap,
		TotalPayable:   payable,
	}
}
