// internal/domain/coupon/service.go
package coupon

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-cart/internal/config"
	"github.com/your-org/storefront-cart/internal/domain/cart"
	"gorm.io/gorm"
)

// Service validates raw coupon codes against the coupon catalog. On
// success it hands the cart a trusted cart.Coupon; every failure is a
// cart.CouponRejectedError whose reason is shown to the shopper as-is.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new coupon validation service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// Validate checks a raw code against the current cart subtotal and, for
// authenticated shoppers, their personal usage count. userID is nil for
// guests; per-user limits are only enforceable for known users.
func (s *Service) Validate(code string, userID *uint, subtotal decimal.Decimal) (*cart.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, &cart.CouponRejectedError{Code: code, Reason: "Coupon code is required"}
	}

	var record Coupon
	err := s.db.Where("LOWER(code) = LOWER(?) AND is_active = ?", code, true).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &cart.CouponRejectedError{Code: code, Reason: "Invalid or inactive coupon code"}
		}
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}

	now := time.Now().UTC()
	if !record.InWindow(now) {
		return nil, &cart.CouponRejectedError{Code: record.Code, Reason: "This coupon is not currently valid"}
	}

	if record.Exhausted() {
		return nil, &cart.CouponRejectedError{Code: record.Code, Reason: "This coupon has reached its usage limit"}
	}

	if userID != nil && record.LimitPerUser > 0 {
		var usage UserCouponUsage
		err := s.db.Where("user_id = ? AND coupon_id = ?", *userID, record.ID).First(&usage).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("failed to look up coupon usage: %w", err)
		}
		if err == nil && usage.TimesUsed >= record.LimitPerUser {
			return nil, &cart.CouponRejectedError{Code: record.Code, Reason: "You have reached the usage limit for this coupon"}
		}
	}

	if subtotal.LessThan(record.MinOrderValue) {
		return nil, &cart.CouponRejectedError{
			Code:   record.Code,
			Reason: fmt.Sprintf("Minimum order amount of %s required", record.MinOrderValue.StringFixed(2)),
		}
	}

	return &cart.Coupon{
		Code:  record.Code,
		Kind:  cart.DiscountKind(strings.ToLower(record.DiscountType)),
		Value: record.Value,
	}, nil
}

// RecordRedemption bumps the coupon's counters after an order using it
// is completed. Called by the order pipeline, not by cart mutations.
func (s *Service) RecordRedemption(code string, userID *uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var record Coupon
		if err := tx.Where("LOWER(code) = LOWER(?)", code).First(&record).Error; err != nil {
			return fmt.Errorf("failed to look up coupon: %w", err)
		}

		record.TimesUsed++
		if err := tx.Model(&record).Update("times_used", record.TimesUsed).Error; err != nil {
			return fmt.Errorf("failed to update coupon usage: %w", err)
		}

		if userID == nil {
			return nil
		}

		var usage UserCouponUsage
		err := tx.Where("user_id = ? AND coupon_id = ?", *userID, record.ID).First(&usage).Error
		if err == gorm.ErrRecordNotFound {
			usage = UserCouponUsage{UserID: *userID, CouponID: record.ID, TimesUsed: 1}
			return tx.Create(&usage).Error
		}
		if err != nil {
			return fmt.Errorf("failed to look up coupon usage: %w", err)
		}

		usage.TimesUsed++
		return tx.Model(&usage).Update("times_used", usage.TimesUsed).Error
	})
}
