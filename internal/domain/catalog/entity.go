// internal/domain/catalog/entity.go
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents the product entity
type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	SKU         string         `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"variants,omitempty"`
}

// ProductVariant represents a purchasable SKU-level unit (size, color,
// etc.). The three price fields in the native currency follow the
// precedence deal > discount > base when resolving the display price.
type ProductVariant struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	ProductID     uint             `gorm:"not null;index" json:"product_id"`
	SKU           string           `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name          string           `gorm:"not null;size:255" json:"name"`
	Currency      string           `gorm:"not null;size:10;default:'INR'" json:"currency"`
	BasePrice     decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"base_price"`
	DiscountPrice *decimal.Decimal `gorm:"type:decimal(12,2)" json:"discount_price,omitempty"`
	DealPrice     *decimal.Decimal `gorm:"type:decimal(12,2)" json:"deal_price,omitempty"`
	Options       string           `gorm:"type:text" json:"options"` // JSON string for variant options
	IsActive      bool             `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`

	// Relationships
	Prices []VariantPrice `gorm:"foreignKey:VariantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"prices,omitempty"`
}

// VariantPrice holds the pre-converted price fields for one variant in
// one display currency. Rows are written by the external FX pipeline;
// this service only reads them.
type VariantPrice struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	VariantID     uint             `gorm:"not null;index:idx_variant_currency,unique" json:"variant_id"`
	Currency      string           `gorm:"not null;size:10;index:idx_variant_currency,unique" json:"currency"`
	BasePrice     decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"base_price"`
	DiscountPrice *decimal.Decimal `gorm:"type:decimal(12,2)" json:"discount_price,omitempty"`
	DealPrice     *decimal.Decimal `gorm:"type:decimal(12,2)" json:"deal_price,omitempty"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// GiftWrapSetting is the store-wide gift wrap fee, managed by staff.
// At most one row is expected; the newest wins when several exist.
type GiftWrapSetting struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	IsEnabled bool            `gorm:"default:true" json:"is_enabled"`
	Price     decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"price"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName overrides
func (Product) TableName() string         { return "products" }
func (ProductVariant) TableName() string  { return "product_variants" }
func (VariantPrice) TableName() string    { return "variant_prices" }
func (GiftWrapSetting) TableName() string { return "gift_wrap_settings" }

// HasMarkdown reports whether the variant currently sells below its base price.
func (v *ProductVariant) HasMarkdown() bool {
	if v.DealPrice != nil && v.DealPrice.IsPositive() && v.DealPrice.LessThan(v.BasePrice) {
		return true
	}
	return v.DiscountPrice != nil && v.DiscountPrice.IsPositive() && v.DiscountPrice.LessThan(v.BasePrice)
}
