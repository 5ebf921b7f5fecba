// internal/domain/coupon/entity.go
package coupon

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coupon represents a coupon definition managed by staff. Eligibility
// (window, usage caps, minimum spend) is checked here at validation
// time; the cart core only receives coupons that already passed.
type Coupon struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Code          string          `gorm:"uniqueIndex;not null;size:50" json:"code"`
	DiscountType  string          `gorm:"not null;size:20" json:"discount_type"` // percentage, fixed_amount
	Value         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"value"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
	ValidFrom     time.Time       `gorm:"not null" json:"valid_from"`
	ValidTo       time.Time       `gorm:"not null" json:"valid_to"`
	UsageLimit    int             `gorm:"default:1" json:"usage_limit"`    // Total redemptions allowed
	LimitPerUser  int             `gorm:"default:1" json:"limit_per_user"` // Redemptions per user
	TimesUsed     int             `gorm:"default:0" json:"times_used"`
	MinOrderValue decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"min_order_value"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// UserCouponUsage tracks how many times one user redeemed one coupon.
type UserCouponUsage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_user_coupon,unique" json:"user_id"`
	CouponID  uint      `gorm:"not null;index:idx_user_coupon,unique" json:"coupon_id"`
	TimesUsed int       `gorm:"default:0" json:"times_used"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides
func (Coupon) TableName() string          { return "coupons" }
func (UserCouponUsage) TableName() string { return "user_coupon_usages" }

// InWindow reports whether the coupon is valid at the given instant.
func (c *Coupon) InWindow(now time.Time) bool {
	return !now.Before(c.ValidFrom) && !now.After(c.ValidTo)
}

// Exhausted reports whether the coupon's total usage limit is reached.
func (c *Coupon) Exhausted() bool {
	return c.UsageLimit > 0 && c.TimesUsed >= c.UsageLimit
}
