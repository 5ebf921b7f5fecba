// internal/domain/catalog/service.go
package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-cart/internal/config"
	"github.com/your-org/storefront-cart/internal/domain/pricing"
	"gorm.io/gorm"
)

// Service handles catalog lookups and price resolution
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// GetVariant retrieves an active variant with its converted price rows.
func (s *Service) GetVariant(variantID uint) (*ProductVariant, error) {
	var variant ProductVariant
	err := s.db.Preload("Prices").
		Where("id = ? AND is_active = ?", variantID, true).
		First(&variant).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("variant %d not found or inactive", variantID)
		}
		return nil, fmt.Errorf("failed to retrieve variant: %w", err)
	}
	return &variant, nil
}

// GetProductBySlug retrieves an active product with variants and prices.
func (s *Service) GetProductBySlug(slug string) (*Product, error) {
	var product Product
	err := s.db.Preload("Variants").Preload("Variants.Prices").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product %q not found", slug)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &product, nil
}

// Quote resolves the variant's display price in the requested currency.
// An empty currency falls back to the configured default.
func (s *Service) Quote(variantID uint, currency string) (*pricing.Quote, error) {
	variant, err := s.GetVariant(variantID)
	if err != nil {
		return nil, err
	}

	quote := s.QuoteVariant(variant, currency)
	return &quote, nil
}

// QuoteVariant resolves a display price for an already loaded variant.
func (s *Service) QuoteVariant(variant *ProductVariant, currency string) pricing.Quote {
	if currency == "" {
		currency = s.config.Pricing.DefaultCurrency
	}

	base := variant.BasePrice
	native := pricing.Candidates{
		Currency:      variant.Currency,
		BasePrice:     &base,
		DiscountPrice: variant.DiscountPrice,
		DealPrice:     variant.DealPrice,
	}

	converted := make([]pricing.Candidates, 0, len(variant.Prices))
	for i := range variant.Prices {
		row := variant.Prices[i]
		rowBase := row.BasePrice
		converted = append(converted, pricing.Candidates{
			Currency:      row.Currency,
			BasePrice:     &rowBase,
			DiscountPrice: row.DiscountPrice,
			DealPrice:     row.DealPrice,
		})
	}

	return pricing.Resolve(native, converted, currency)
}

// GiftWrapFee returns the store's gift wrap fee. The newest setting row
// wins; a disabled setting means no fee regardless of cart flags. When
// no row exists, the configured fallback applies.
func (s *Service) GiftWrapFee() decimal.Decimal {
	var setting GiftWrapSetting
	err := s.db.Order("updated_at DESC").First(&setting).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return s.config.GiftWrapFallbackPrice()
		}
		// On a read failure, charge nothing rather than guess.
		return decimal.Zero
	}

	if !setting.IsEnabled {
		return decimal.Zero
	}
	return setting.Price
}

// UpdateGiftWrapSetting upserts the store-wide gift wrap setting. Staff
// operation; the fee must not be negative.
func (s *Service) UpdateGiftWrapSetting(isEnabled bool, price decimal.Decimal) (*GiftWrapSetting, error) {
	if price.IsNegative() {
		return nil, fmt.Errorf("gift wrap price must not be negative")
	}

	var setting GiftWrapSetting
	err := s.db.Order("updated_at DESC").First(&setting).Error
	if err == gorm.ErrRecordNotFound {
		setting = GiftWrapSetting{IsEnabled: isEnabled, Price: price}
		if err := s.db.Create(&setting).Error; err != nil {
			return nil, fmt.Errorf("failed to create gift wrap setting: %w", err)
		}
		return &setting, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load gift wrap setting: %w", err)
	}

	setting.IsEnabled = isEnabled
	setting.Price = price
	if err := s.db.Save(&setting).Error; err != nil {
		return nil, fmt.Errorf("failed to update gift wrap setting: %w", err)
	}
	return &setting, nil
}
