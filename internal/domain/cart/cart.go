// internal/domain/cart/cart.go
package cart

import (
	"github.com/shopspring/decimal"
)

// Line is one (variant, quantity) pair inside a cart. UnitPrice is the
// price snapshot captured when the line was last added or re-added.
type Line struct {
	VariantID uint            `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Subtotal returns UnitPrice × Quantity for this line.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an immutable cart value. Every mutation below returns a new
// Cart and leaves the receiver untouched, so a failed mutation never
// leaves a partially updated cart behind.
type Cart struct {
	OwnerID  string  `json:"owner_id"`
	Currency string  `json:"currency"`
	Lines    []Line  `json:"lines"`
	Coupon   *Coupon `json:"coupon,omitempty"`
	GiftWrap bool    `json:"gift_wrap"`
}

// New returns an empty cart for the given owner in the given display currency.
func New(ownerID, currency string) Cart {
	return Cart{OwnerID: ownerID, Currency: currency}
}

// clone deep-copies the cart so transitions never alias the caller's slices.
func (c Cart) clone() Cart {
	out := c
	out.Lines = make([]Line, len(c.Lines))
	copy(out.Lines, c.Lines)
	if c.Coupon != nil {
		coupon := *c.Coupon
		out.Coupon = &coupon
	}
	return out
}

// lineIndex returns the position of the variant's line, or -1.
func (c Cart) lineIndex(variantID uint) int {
	for i := range c.Lines {
		if c.Lines[i].VariantID == variantID {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Subtotal is the sum of line subtotals. It is recomputed on every call,
// never cached across mutations.
func (c Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range c.Lines {
		subtotal = subtotal.Add(line.Subtotal())
	}
	return subtotal
}

// TotalQuantity is the sum of all line quantities.
func (c Cart) TotalQuantity() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// AddItem adds quantity of the variant at the given unit price. If the
// variant already has a line, quantities are summed and the price
// snapshot refreshed, keeping at most one line per variant.
func AddItem(c Cart, variantID uint, quantity int, unitPrice decimal.Decimal) (Cart, error) {
	if quantity < 1 {
		return c, ErrInvalidQuantity
	}

	next := c.clone()
	if i := next.lineIndex(variantID); i >= 0 {
		next.Lines[i].Quantity += quantity
		next.Lines[i].UnitPrice = unitPrice
		return next, nil
	}

	next.Lines = append(next.Lines, Line{
		VariantID: variantID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	})
	return next, nil
}

// SetQuantity overwrites the quantity of an existing line. A quantity of
// zero or below removes the line and is a no-op success when the line is
// already absent. A positive quantity on an absent line is an error:
// SetQuantity never implicitly adds.
func SetQuantity(c Cart, variantID uint, quantity int) (Cart, error) {
	if quantity <= 0 {
		return RemoveItem(c, variantID), nil
	}

	i := c.lineIndex(variantID)
	if i < 0 {
		return c, ErrItemNotInCart
	}

	next := c.clone()
	next.Lines[i].Quantity = quantity
	return next, nil
}

// RemoveItem removes the variant's line. Removing an absent line is a
// no-op, not an error.
func RemoveItem(c Cart, variantID uint) Cart {
	i := c.lineIndex(variantID)
	if i < 0 {
		return c
	}

	next := c.clone()
	next.Lines = append(next.Lines[:i], next.Lines[i+1:]...)
	return next
}

// SetGiftWrap toggles gift wrapping. Enabling it on an empty cart is
// accepted; the fee contributes zero to the total until lines exist.
func SetGiftWrap(c Cart, enabled bool) Cart {
	next := c.clone()
	next.GiftWrap = enabled
	return next
}
