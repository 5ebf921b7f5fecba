// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartRecord is the persisted cart header for authenticated users. The
// applied coupon is denormalized onto the record: once validation
// accepted it, the cart only needs its arithmetic fields.
type CartRecord struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	UserID      uint             `gorm:"uniqueIndex;not null" json:"user_id"`
	Currency    string           `gorm:"not null;size:10" json:"currency"`
	CouponCode  *string          `gorm:"size:50" json:"coupon_code,omitempty"`
	CouponKind  *string          `gorm:"size:20" json:"coupon_kind,omitempty"`
	CouponValue *decimal.Decimal `gorm:"type:decimal(10,2)" json:"coupon_value,omitempty"`
	GiftWrap    bool             `gorm:"default:false" json:"gift_wrap"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`

	// Relationships
	Lines []CartLineRecord `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"lines,omitempty"`
}

// CartLineRecord is one persisted line. At most one row per variant in
// a cart.
type CartLineRecord struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	CartID    uint            `gorm:"not null;index:idx_cart_variant,unique" json:"cart_id"`
	VariantID uint            `gorm:"not null;index:idx_cart_variant,unique" json:"variant_id"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"` // Price at time of adding
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName overrides the table name
func (CartRecord) TableName() string     { return "carts" }
func (CartLineRecord) TableName() string { return "cart_lines" }

// SessionCart is the guest cart document stored in Redis.
type SessionCart struct {
	SessionID string    `json:"session_id"`
	Currency  string    `json:"currency"`
	Lines     []Line    `json:"lines"`
	Coupon    *Coupon   `json:"coupon,omitempty"`
	GiftWrap  bool      `json:"gift_wrap"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// toValue converts the persisted user cart into the pure cart value.
func (r *CartRecord) toValue(ownerID string) Cart {
	c := Cart{
		OwnerID:  ownerID,
		Currency: r.Currency,
		GiftWrap: r.GiftWrap,
		Lines:    make([]Line, 0, len(r.Lines)),
	}
	for _, line := range r.Lines {
		c.Lines = append(c.Lines, Line{
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	if r.CouponCode != nil && r.CouponKind != nil && r.CouponValue != nil {
		c.Coupon = &Coupon{
			Code:  *r.CouponCode,
			Kind:  DiscountKind(*r.CouponKind),
			Value: *r.CouponValue,
		}
	}
	return c
}

// applyValue writes the pure cart value back onto the record fields.
// Line rows are replaced separately.
func (r *CartRecord) applyValue(c Cart) {
	r.Currency = c.Currency
	r.GiftWrap = c.GiftWrap
	if c.Coupon != nil {
		code := c.Coupon.Code
		kind := string(c.Coupon.Kind)
		value := c.Coupon.Value
		r.CouponCode = &code
		r.CouponKind = &kind
		r.CouponValue = &value
	} else {
		r.CouponCode = nil
		r.CouponKind = nil
		r.CouponValue = nil
	}
}

// toValue converts the guest cart document into the pure cart value.
func (s *SessionCart) toValue(ownerID string) Cart {
	c := Cart{
		OwnerID:  ownerID,
		Currency: s.Currency,
		GiftWrap: s.GiftWrap,
		Lines:    make([]Line, len(s.Lines)),
	}
	copy(c.Lines, s.Lines)
	if s.Coupon != nil {
		coupon := *s.Coupon
		c.Coupon = &coupon
	}
	return c
}
