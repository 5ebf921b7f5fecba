// internal/domain/cart/service_test.go
package cart

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-cart/internal/config"
	"github.com/your-org/storefront-cart/internal/domain/catalog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stubValidator satisfies CouponValidator without touching a coupon table.
type stubValidator struct {
	coupon *Coupon
	err    error
}

func (s *stubValidator) Validate(code string, userID *uint, subtotal decimal.Decimal) (*Coupon, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.coupon, nil
}

func newTestService(t *testing.T, validator *stubValidator) (*Service, *gorm.DB) {
	svc, db, _ := newTestServiceWithRedis(t, validator)
	return svc, db
}

func newTestServiceWithRedis(t *testing.T, validator *stubValidator) (*Service, *gorm.DB, *miniredis.Miniredis) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&catalog.Product{},
		&catalog.ProductVariant{},
		&catalog.VariantPrice{},
		&catalog.GiftWrapSetting{},
		&CartRecord{},
		&CartLineRecord{},
	))

	cfg := &config.Config{
		Pricing:  config.PricingConfig{DefaultCurrency: "INR", SupportedCurrencies: []string{"INR", "USD"}},
		GiftWrap: config.GiftWrapConfig{DefaultPrice: "49.00"},
		Logging:  config.LoggingConfig{Level: "error"},
	}

	if validator == nil {
		validator = &stubValidator{}
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	svc := NewService(db, client, cfg, catalog.NewService(db, cfg), validator)
	return svc, db, mr
}

func seedVariant(t *testing.T, db *gorm.DB, base string, discount *string) catalog.ProductVariant {
	t.Helper()

	product := catalog.Product{
		SKU:      fmt.Sprintf("SKU-%s", t.Name()),
		Name:     "Soy Candle",
		Slug:     fmt.Sprintf("soy-candle-%s", t.Name()),
		IsActive: true,
	}
	require.NoError(t, db.Create(&product).Error)

	variant := catalog.ProductVariant{
		ProductID: product.ID,
		SKU:       fmt.Sprintf("SKU-%s-V1", t.Name()),
		Name:      "200g",
		Currency:  "INR",
		BasePrice: dec(base),
		IsActive:  true,
	}
	if discount != nil {
		d := dec(*discount)
		variant.DiscountPrice = &d
	}
	require.NoError(t, db.Create(&variant).Error)
	return variant
}

func strPtr(s string) *string { return &s }

func TestServiceAddItemPersistsUserCart(t *testing.T) {
	svc, db := newTestService(t, nil)
	variant := seedVariant(t, db, "999.00", strPtr("799.00"))
	userID := uint(1)
	ctx := context.Background()

	resp, err := svc.AddItem(ctx, &userID, "", &AddItemRequest{VariantID: variant.ID, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	// The discounted price wins the snapshot
	assert.True(t, resp.Items[0].UnitPrice.Equal(dec("799.00")))
	assert.True(t, resp.Totals.Subtotal.Equal(dec("1598.00")))

	// A fresh read comes from the database, not the response
	reloaded, err := svc.GetCart(ctx, &userID, "")
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, 2, reloaded.Items[0].Quantity)
}

func TestServiceAddItemDefaultsQuantityToOne(t *testing.T) {
	svc, db := newTestService(t, nil)
	variant := seedVariant(t, db, "500.00", nil)
	userID := uint(1)

	resp, err := svc.AddItem(context.Background(), &userID, "", &AddItemRequest{VariantID: variant.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Items[0].Quantity)
}

func TestServiceAddItemUnknownVariant(t *testing.T) {
	svc, _ := newTestService(t, nil)
	userID := uint(1)

	_, err := svc.AddItem(context.Background(), &userID, "", &AddItemRequest{VariantID: 999, Quantity: 1})
	assert.Error(t, err)

	// The failed mutation left no cart behind
	count, err := svc.GetCartItemCount(context.Background(), &userID, "")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestServiceSetQuantityRoundTrip(t *testing.T) {
	svc, db := newTestService(t, nil)
	variant := seedVariant(t, db, "500.00", nil)
	userID := uint(1)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, &userID, "", &AddItemRequest{VariantID: variant.ID, Quantity: 2})
	require.NoError(t, err)

	resp, err := svc.SetQuantity(ctx, &userID, "", variant.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Items[0].Quantity)

	// Zero removes the line, and repeating is still fine
	resp, err = svc.SetQuantity(ctx, &userID, "", variant.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)

	resp, err = svc.SetQuantity(ctx, &userID, "", variant.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestServiceSetQuantityAbsentLineLeavesCartUntouched(t *testing.T) {
	svc, db := newTestService(t, nil)
	variant := seedVariant(t, db, "500.00", nil)
	userID := uint(1)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, &userID, "", &AddItemRequest{VariantID: variant.ID, Quantity: 2})
	require.NoError(t, err)

	_, err = svc.SetQuantity(ctx, &userID, "", 424242, 3)
	assert.ErrorIs(t, err, ErrItemNotInCart)

	reloaded, err := svc.GetCart(ctx, &userID, "")
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, 2, reloaded.Items[0].Quantity)
}

func TestServiceApplyAndRemoveCoupon(t *testing.T) {
	validator := &stubValidator{
		coupon: &Coupon{Code: "SAVE10", Kind: DiscountPercentage, Value: dec("10")},
	}
	svc, db := newTestService(t, validator)
	variant := seedVariant(t, db, "1000.00", nil)
	userID := uint(1)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, &userID, "", &AddItemRequest{VariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)

	resp, err := svc.ApplyCoupon(ctx, &userID, "", "SAVE10")
	require.NoError(t, err)
	require.NotNil(t, resp.Coupon)
	assert.True(t, resp.Totals.DiscountAmount.Equal(dec("100.00")))
	assert.True(t, resp.Totals.TotalPayable.Equal(dec("900.00")))

	// The coupon survives a reload
	reloaded, err := svc.GetCart(ctx, &userID, "")
	require.NoError(t, err)
	require.NotNil(t, reloaded.Coupon)
	assert.Equal(t, "SAVE10", reloaded.Coupon.Code)

	resp, err = svc.RemoveCoupon(ctx, &userID, "")
	require.NoError(t, err)
	assert.Nil(t, resp.Coupon)
	assert.True(t, resp.Totals.TotalPayable.Equal(dec("1000.00")))
}

func TestServiceApplyCouponRejectionLeavesCartUntouched(t *testing.T) {
	validator := &stubValidator{
		err: &CouponRejectedError{Code: "NOPE", Reason: "Invalid or inactive coupon code"},
	}
	svc, db := newTestService(t, validator)
	variant := seedVariant(t, db, "1000.00", nil)
	userID := uint(1)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, &userID, "", &AddItemRequest{VariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = svc.ApplyCoupon(ctx, &userID, "", "NOPE")
	rejected, ok := IsCouponRejected(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid or inactive coupon code", rejected.Reason)

	reloaded, err := svc.GetCart(ctx, &userID, "")
	require.NoError(t, err)
	assert.Nil(t, reloaded.Coupon)
}

func TestServiceGiftWrapUsesStoreSetting(t *testing.T) {
	svc, db := newTestService(t, nil)
	variant := seedVariant(t, db, "1000.00", nil)
	require.NoError(t, db.Create(&catalog.GiftWrapSetting{IsEnabled: true, Price: dec("30.00")}).Error)
	userID := uint(1)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, &userID, "", &AddItemRequest{VariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)

	resp, err := svc.SetGiftWrap(ctx, &userID, "", true)
	require.NoError(t, err)
	assert.True(t, resp.Totals.GiftWrapAmount.Equal(dec("30.00")))
	assert.True(t, resp.Totals.TotalPayable.Equal(dec("1030.00")))

	resp, err = svc.SetGiftWrap(ctx, &userID, "", false)
	require.NoError(t, err)
	assert.True(t, resp.Totals.GiftWrapAmount.IsZero())
	assert.True(t, resp.Totals.TotalPayable.Equal(dec("1000.00")))
}

func TestServiceGiftWrapFallsBackToConfiguredFee(t *testing.T) {
	svc, db := newTestService(t, nil)
	variant := seedVariant(t, db, "1000.00", nil)
	userID := uint(1)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, &userID, "", &AddItemRequest{VariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)

	// No gift_wrap_settings row exists, so the config fallback applies
	resp, err := svc.SetGiftWrap(ctx, &userID, "", true)
	require.NoError(t, err)
	assert.True(t, resp.Totals.GiftWrapAmount.Equal(dec("49.00")))
}

func TestServiceClearCart(t *testing.T) {
	svc, db := newTestService(t, nil)
	variant := seedVariant(t, db, "500.00", nil)
	userID := uint(1)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, &userID, "", &AddItemRequest{VariantID: variant.ID, Quantity: 3})
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(ctx, &userID, ""))

	count, err := svc.GetCartItemCount(ctx, &userID, "")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Clearing an already-empty cart is a no-op
	require.NoError(t, svc.ClearCart(ctx, &userID, ""))
}

func TestServiceGetCartItemCount(t *testing.T) {
	svc, db := newTestService(t, nil)
	variant := seedVariant(t, db, "500.00", nil)
	other := catalog.ProductVariant{
		ProductID: variant.ProductID,
		SKU:       fmt.Sprintf("SKU-%s-V2", t.Name()),
		Name:      "400g",
		Currency:  "INR",
		BasePrice: dec("900.00"),
		IsActive:  true,
	}
	require.NoError(t, db.Create(&other).Error)

	userID := uint(1)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, &userID, "", &AddItemRequest{VariantID: variant.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, &userID, "", &AddItemRequest{VariantID: other.ID, Quantity: 3})
	require.NoError(t, err)

	count, err := svc.GetCartItemCount(ctx, &userID, "")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestServiceGuestCartRoundTrip(t *testing.T) {
	svc, db, mr := newTestServiceWithRedis(t, nil)
	variant := seedVariant(t, db, "999.00", strPtr("799.00"))
	sessionID := "guest-session-1"
	ctx := context.Background()

	resp, err := svc.AddItem(ctx, nil, sessionID, &AddItemRequest{VariantID: variant.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.True(t, resp.Items[0].UnitPrice.Equal(dec("799.00")))

	// The cart lives in Redis under the session key, with the session TTL
	key := sessionCartKey(sessionID)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, sessionCartTTL, mr.TTL(key))

	// Nothing was written to the user cart tables
	var cartRows int64
	require.NoError(t, db.Model(&CartRecord{}).Count(&cartRows).Error)
	assert.Zero(t, cartRows)

	// A fresh read decodes the stored document
	reloaded, err := svc.GetCart(ctx, nil, sessionID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, 2, reloaded.Items[0].Quantity)
	assert.True(t, reloaded.Totals.Subtotal.Equal(dec("1598.00")))
}

func TestServiceGuestCartMutationsPersist(t *testing.T) {
	validator := &stubValidator{
		coupon: &Coupon{Code: "SAVE10", Kind: DiscountPercentage, Value: dec("10")},
	}
	svc, db, _ := newTestServiceWithRedis(t, validator)
	variant := seedVariant(t, db, "1000.00", nil)
	sessionID := "guest-session-2"
	ctx := context.Background()

	_, err := svc.AddItem(ctx, nil, sessionID, &AddItemRequest{VariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = svc.ApplyCoupon(ctx, nil, sessionID, "SAVE10")
	require.NoError(t, err)

	_, err = svc.SetGiftWrap(ctx, nil, sessionID, true)
	require.NoError(t, err)

	reloaded, err := svc.GetCart(ctx, nil, sessionID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.Coupon)
	assert.Equal(t, "SAVE10", reloaded.Coupon.Code)
	assert.True(t, reloaded.GiftWrap)
	// 1000 − 100 + the configured 49.00 fallback fee
	assert.True(t, reloaded.Totals.TotalPayable.Equal(dec("949.00")))

	_, err = svc.SetQuantity(ctx, nil, sessionID, variant.ID, 0)
	require.NoError(t, err)

	count, err := svc.GetCartItemCount(ctx, nil, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestServiceGuestCartExpires(t *testing.T) {
	svc, db, mr := newTestServiceWithRedis(t, nil)
	variant := seedVariant(t, db, "500.00", nil)
	sessionID := "guest-session-3"
	ctx := context.Background()

	_, err := svc.AddItem(ctx, nil, sessionID, &AddItemRequest{VariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)

	mr.FastForward(sessionCartTTL + time.Minute)

	// An expired session reads back as a fresh empty cart
	reloaded, err := svc.GetCart(ctx, nil, sessionID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Items)
}

func TestServiceMergeSumsCollidingVariants(t *testing.T) {
	svc, db, mr := newTestServiceWithRedis(t, nil)
	variant := seedVariant(t, db, "500.00", nil)
	userID := uint(1)
	sessionID := "guest-session-4"
	ctx := context.Background()

	_, err := svc.AddItem(ctx, nil, sessionID, &AddItemRequest{VariantID: variant.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, &userID, "", &AddItemRequest{VariantID: variant.ID, Quantity: 3})
	require.NoError(t, err)

	merged, err := svc.MergeGuestCartToUser(ctx, userID, sessionID)
	require.NoError(t, err)

	require.Len(t, merged.Items, 1)
	assert.Equal(t, 5, merged.Items[0].Quantity)

	// The guest document is gone after the merge
	assert.False(t, mr.Exists(sessionCartKey(sessionID)))

	// And the merged cart reads back from the user store
	reloaded, err := svc.GetCart(ctx, &userID, "")
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, 5, reloaded.Items[0].Quantity)
}

func TestServiceMergeUserCouponWins(t *testing.T) {
	validator := &stubValidator{
		coupon: &Coupon{Code: "GUESTDEAL", Kind: DiscountFixedAmount, Value: dec("50")},
	}
	svc, db, _ := newTestServiceWithRedis(t, validator)
	variant := seedVariant(t, db, "500.00", nil)
	userID := uint(1)
	sessionID := "guest-session-5"
	ctx := context.Background()

	_, err := svc.AddItem(ctx, nil, sessionID, &AddItemRequest{VariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.ApplyCoupon(ctx, nil, sessionID, "GUESTDEAL")
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, &userID, "", &AddItemRequest{VariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)
	validator.coupon = &Coupon{Code: "USERDEAL", Kind: DiscountPercentage, Value: dec("10")}
	_, err = svc.ApplyCoupon(ctx, &userID, "", "USERDEAL")
	require.NoError(t, err)

	merged, err := svc.MergeGuestCartToUser(ctx, userID, sessionID)
	require.NoError(t, err)

	require.NotNil(t, merged.Coupon)
	assert.Equal(t, "USERDEAL", merged.Coupon.Code)
}

func TestServiceMergeAdoptsGuestCoupon(t *testing.T) {
	validator := &stubValidator{
		coupon: &Coupon{Code: "GUESTDEAL", Kind: DiscountFixedAmount, Value: dec("50")},
	}
	svc, db, _ := newTestServiceWithRedis(t, validator)
	variant := seedVariant(t, db, "500.00", nil)
	userID := uint(1)
	sessionID := "guest-session-6"
	ctx := context.Background()

	_, err := svc.AddItem(ctx, nil, sessionID, &AddItemRequest{VariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.ApplyCoupon(ctx, nil, sessionID, "GUESTDEAL")
	require.NoError(t, err)

	merged, err := svc.MergeGuestCartToUser(ctx, userID, sessionID)
	require.NoError(t, err)

	require.NotNil(t, merged.Coupon)
	assert.Equal(t, "GUESTDEAL", merged.Coupon.Code)
	assert.True(t, merged.Totals.DiscountAmount.Equal(dec("50")))
}

func TestServiceMergeKeepsGiftWrapFromEitherCart(t *testing.T) {
	svc, db, _ := newTestServiceWithRedis(t, nil)
	variant := seedVariant(t, db, "500.00", nil)
	userID := uint(1)
	sessionID := "guest-session-7"
	ctx := context.Background()

	_, err := svc.AddItem(ctx, nil, sessionID, &AddItemRequest{VariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.SetGiftWrap(ctx, nil, sessionID, true)
	require.NoError(t, err)

	merged, err := svc.MergeGuestCartToUser(ctx, userID, sessionID)
	require.NoError(t, err)
	assert.True(t, merged.GiftWrap)

	reloaded, err := svc.GetCart(ctx, &userID, "")
	require.NoError(t, err)
	assert.True(t, reloaded.GiftWrap)
}
