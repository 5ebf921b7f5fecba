// internal/domain/cart/coupon.go
package cart

import (
	"github.com/shopspring/decimal"
)

// DiscountKind enumerates how a coupon's value is interpreted.
type DiscountKind string

const (
	DiscountPercentage  DiscountKind = "percentage"
	DiscountFixedAmount DiscountKind = "fixed_amount"
)

var percentBase = decimal.NewFromInt(100)

// Coupon is a coupon that external validation has already accepted
// (code match, validity window, usage limits, minimum spend). The cart
// only performs the discount arithmetic on it.
type Coupon struct {
	Code  string          `json:"code"`
	Kind  DiscountKind    `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// DiscountOn computes the coupon's discount against a subtotal, rounded
// to two decimal places and clamped to [0, subtotal].
func (cp Coupon) DiscountOn(subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch cp.Kind {
	case DiscountPercentage:
		discount = subtotal.Mul(cp.Value).Div(percentBase).Round(2)
	case DiscountFixedAmount:
		discount = cp.Value
	default:
		return decimal.Zero
	}

	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}

// ApplyCoupon attaches a validated coupon to the cart. A cart holds at
// most one coupon; applying over an existing one replaces it
// (last-applied-wins, never additive). A negative discount value is a
// fatal arithmetic fault and leaves the cart unchanged.
func ApplyCoupon(c Cart, coupon Coupon) (Cart, error) {
	if coupon.Value.IsNegative() {
		return c, ErrCouponArithmeticInvalid
	}

	next := c.clone()
	next.Coupon = &coupon
	return next, nil
}

// RemoveCoupon detaches any applied coupon. Removing when none is
// applied is a no-op.
func RemoveCoupon(c Cart) Cart {
	next := c.clone()
	next.Coupon = nil
	return next
}
