// internal/domain/cart/errors.go
package cart

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuantity is returned when an add requests a quantity below 1.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrItemNotInCart is returned when a quantity update targets a variant
	// that has no line in the cart. Updates never implicitly add lines.
	ErrItemNotInCart = errors.New("item not in cart")

	// ErrCouponArithmeticInvalid is returned for a coupon carrying a negative
	// discount value. This is a data fault, never clamped to a default.
	ErrCouponArithmeticInvalid = errors.New("coupon discount value must not be negative")
)

// CouponRejectedError reports a coupon that failed external validation.
// Reason is safe to show to the shopper verbatim.
type CouponRejectedError struct {
	Code   string
	Reason string
}

func (e *CouponRejectedError) Error() string {
	return fmt.Sprintf("coupon %q rejected: %s", e.Code, e.Reason)
}

// IsCouponRejected reports whether err is a CouponRejectedError and
// returns it when it is.
func IsCouponRejected(err error) (*CouponRejectedError, bool) {
	var rejected *CouponRejectedError
	if errors.As(err, &rejected) {
		return rejected, true
	}
	return nil, false
}
