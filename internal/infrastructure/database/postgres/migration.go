// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-cart/internal/domain/cart"
	"github.com/your-org/storefront-cart/internal/domain/catalog"
	"github.com/your-org/storefront-cart/internal/domain/coupon"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Define all models that need migration in dependency order
	models := []interface{}{
		// Catalog domain - Base tables
		&catalog.Product{},
		&catalog.ProductVariant{},
		&catalog.VariantPrice{},
		&catalog.GiftWrapSetting{},

		// Coupon domain
		&coupon.Coupon{},
		&coupon.UserCouponUsage{},

		// Cart domain
		&cart.CartRecord{},
		&cart.CartLineRecord{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes not covered by struct tags
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating database indexes...")

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_product_variants_product ON product_variants(product_id)",
		"CREATE INDEX IF NOT EXISTS idx_variant_prices_currency ON variant_prices(currency)",
		"CREATE INDEX IF NOT EXISTS idx_coupons_active_window ON coupons(is_active, valid_from, valid_to)",
		"CREATE INDEX IF NOT EXISTS idx_cart_lines_cart ON cart_lines(cart_id)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts development fixtures
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedGiftWrapSetting(); err != nil {
		return fmt.Errorf("failed to seed gift wrap setting: %w", err)
	}

	if err := m.seedCoupons(); err != nil {
		return fmt.Errorf("failed to seed coupons: %w", err)
	}

	if err := m.seedCatalog(); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

func (m *Migration) seedGiftWrapSetting() error {
	var count int64
	m.db.Model(&catalog.GiftWrapSetting{}).Count(&count)
	if count > 0 {
		return nil
	}

	setting := catalog.GiftWrapSetting{
		IsEnabled: true,
		Price:     decimal.RequireFromString("49.00"),
	}
	return m.db.Create(&setting).Error
}

func (m *Migration) seedCoupons() error {
	var count int64
	m.db.Model(&coupon.Coupon{}).Count(&count)
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	coupons := []coupon.Coupon{
		{
			Code:          "SAVE10",
			DiscountType:  "percentage",
			Value:         decimal.RequireFromString("10"),
			IsActive:      true,
			ValidFrom:     now,
			ValidTo:       now.AddDate(1, 0, 0),
			UsageLimit:    1000,
			LimitPerUser:  3,
			MinOrderValue: decimal.RequireFromString("499.00"),
		},
		{
			Code:          "FLAT500",
			DiscountType:  "fixed_amount",
			Value:         decimal.RequireFromString("500.00"),
			IsActive:      true,
			ValidFrom:     now,
			ValidTo:       now.AddDate(1, 0, 0),
			UsageLimit:    500,
			LimitPerUser:  1,
			MinOrderValue: decimal.RequireFromString("2999.00"),
		},
	}

	for _, c := range coupons {
		if err := m.db.Create(&c).Error; err != nil {
			return err
		}
	}
	return nil
}

func (m *Migration) seedCatalog() error {
	var count int64
	m.db.Model(&catalog.Product{}).Count(&count)
	if count > 0 {
		return nil
	}

	discount := decimal.RequireFromString("799.00")
	deal := decimal.RequireFromString("599.00")
	usdBase := decimal.RequireFromString("12.99")

	product := catalog.Product{
		SKU:         "SPC-CANDLE-001",
		Name:        "Terrene Soy Candle",
		Slug:        "terrene-soy-candle",
		Description: "Hand-poured soy candle for development and testing",
		IsActive:    true,
		Variants: []catalog.ProductVariant{
			{
				SKU:           "SPC-CANDLE-001-S",
				Name:          "Small",
				Currency:      "INR",
				BasePrice:     decimal.RequireFromString("999.00"),
				DiscountPrice: &discount,
				IsActive:      true,
				Prices: []catalog.VariantPrice{
					{Currency: "USD", BasePrice: usdBase},
				},
			},
			{
				SKU:       "SPC-CANDLE-001-L",
				Name:      "Large",
				Currency:  "INR",
				BasePrice: decimal.RequireFromString("1499.00"),
				DealPrice: &deal,
				IsActive:  true,
			},
		},
	}

	return m.db.Create(&product).Error
}

// GetTableInfo logs the tables present after migration
func (m *Migration) GetTableInfo() {
	tables := []string{"products", "product_variants", "variant_prices", "gift_wrap_settings", "coupons", "user_coupon_usages", "carts", "cart_lines"}
	for _, table := range tables {
		var count int64
		if err := m.db.Table(table).Count(&count).Error; err != nil {
			log.Printf("⚠️ Table %s: not available (%v)", table, err)
			continue
		}
		log.Printf("📊 Table %s: %d rows", table, count)
	}
}
