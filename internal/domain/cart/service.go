// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-cart/internal/config"
	"github.com/your-org/storefront-cart/internal/domain/catalog"
	"gorm.io/gorm"
)

const sessionCartTTL = 24 * time.Hour

// CouponValidator is the external coupon-validation collaborator. It
// either returns a coupon the cart can trust or a CouponRejectedError.
type CouponValidator interface {
	Validate(code string, userID *uint, subtotal decimal.Decimal) (*Coupon, error)
}

// Service is the cart mutation gateway. Every public operation loads
// the owner's cart, applies exactly one pure transition, persists the
// result, and returns one consistent snapshot. A failed transition
// leaves the stored cart untouched.
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
	catalog     *catalog.Service
	coupons     CouponValidator
	logger      *logrus.Logger
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, catalogService *catalog.Service, coupons CouponValidator) *Service {
	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	}

	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
		catalog:     catalogService,
		coupons:     coupons,
		logger:      logger,
	}
}

// CartItemResponse represents a cart line with variant details
type CartItemResponse struct {
	VariantID uint                    `json:"variant_id"`
	Quantity  int                     `json:"quantity"`
	UnitPrice decimal.Decimal         `json:"unit_price"`
	LineTotal decimal.Decimal         `json:"line_total"`
	Variant   *catalog.ProductVariant `json:"variant,omitempty"`
}

// CartResponse represents a full cart snapshot with derived totals
type CartResponse struct {
	UserID    *uint              `json:"user_id,omitempty"`
	SessionID string             `json:"session_id,omitempty"`
	Currency  string             `json:"currency"`
	Items     []CartItemResponse `json:"items"`
	Coupon    *Coupon            `json:"coupon,omitempty"`
	GiftWrap  bool               `json:"gift_wrap"`
	Totals    Totals             `json:"totals"`
}

// AddItemRequest represents add to cart request
type AddItemRequest struct {
	VariantID uint   `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity"`
	Currency  string `json:"currency"`
}

// SetQuantityRequest represents a quantity update request
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// ApplyCouponRequest represents a coupon application request
type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// SetGiftWrapRequest represents a gift wrap toggle request
type SetGiftWrapRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// GetCart retrieves the cart snapshot for a user or guest session.
func (s *Service) GetCart(ctx context.Context, userID *uint, sessionID string) (*CartResponse, error) {
	current, err := s.loadCart(ctx, userID, sessionID, "")
	if err != nil {
		return nil, err
	}
	return s.snapshot(userID, sessionID, current), nil
}

// AddItem adds a variant to the cart at its current resolved price.
func (s *Service) AddItem(ctx context.Context, userID *uint, sessionID string, req *AddItemRequest) (*CartResponse, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	return s.mutate(ctx, userID, sessionID, req.Currency, func(current Cart) (Cart, error) {
		variant, err := s.catalog.GetVariant(req.VariantID)
		if err != nil {
			return current, err
		}

		// The unit price snapshot is the resolved display price in the
		// cart's currency. A zero price is a legitimate state and is
		// carried through rather than failing the mutation.
		quote := s.catalog.QuoteVariant(variant, current.Currency)
		if quote.DisplayPrice.IsZero() {
			s.logger.WithFields(logrus.Fields{
				"variant_id": variant.ID,
				"currency":   current.Currency,
			}).Warn("variant resolved to a zero display price")
		}

		return AddItem(current, req.VariantID, quantity, quote.DisplayPrice)
	})
}

// SetQuantity overwrites a line's quantity; zero removes the line.
func (s *Service) SetQuantity(ctx context.Context, userID *uint, sessionID string, variantID uint, quantity int) (*CartResponse, error) {
	return s.mutate(ctx, userID, sessionID, "", func(current Cart) (Cart, error) {
		return SetQuantity(current, variantID, quantity)
	})
}

// RemoveItem removes a line; removing an absent line is a no-op.
func (s *Service) RemoveItem(ctx context.Context, userID *uint, sessionID string, variantID uint) (*CartResponse, error) {
	return s.mutate(ctx, userID, sessionID, "", func(current Cart) (Cart, error) {
		return RemoveItem(current, variantID), nil
	})
}

// ApplyCoupon validates a raw code against the cart and attaches the
// validated coupon. Applying over an existing coupon replaces it.
func (s *Service) ApplyCoupon(ctx context.Context, userID *uint, sessionID string, code string) (*CartResponse, error) {
	return s.mutate(ctx, userID, sessionID, "", func(current Cart) (Cart, error) {
		validated, err := s.coupons.Validate(code, userID, current.Subtotal())
		if err != nil {
			return current, err
		}

		next, err := ApplyCoupon(current, *validated)
		if err != nil {
			// A negative discount value slipped past validation; this is
			// a data fault worth an operator's attention.
			s.logger.WithFields(logrus.Fields{
				"coupon_code": validated.Code,
				"value":       validated.Value.String(),
			}).Error("coupon with invalid discount arithmetic")
			return current, err
		}
		return next, nil
	})
}

// RemoveCoupon detaches the applied coupon, if any.
func (s *Service) RemoveCoupon(ctx context.Context, userID *uint, sessionID string) (*CartResponse, error) {
	return s.mutate(ctx, userID, sessionID, "", func(current Cart) (Cart, error) {
		return RemoveCoupon(current), nil
	})
}

// SetGiftWrap toggles the gift wrap flag on the cart.
func (s *Service) SetGiftWrap(ctx context.Context, userID *uint, sessionID string, enabled bool) (*CartResponse, error) {
	return s.mutate(ctx, userID, sessionID, "", func(current Cart) (Cart, error) {
		return SetGiftWrap(current, enabled), nil
	})
}

// ClearCart removes every line from the cart. Coupon and gift wrap
// flags are cleared with it.
func (s *Service) ClearCart(ctx context.Context, userID *uint, sessionID string) error {
	if userID != nil {
		return s.db.Transaction(func(tx *gorm.DB) error {
			var record CartRecord
			err := tx.Where("user_id = ?", *userID).First(&record).Error
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to load cart: %w", err)
			}
			if err := tx.Where("cart_id = ?", record.ID).Delete(&CartLineRecord{}).Error; err != nil {
				return fmt.Errorf("failed to clear cart lines: %w", err)
			}
			return tx.Unscoped().Delete(&record).Error
		})
	}

	return s.redisClient.Del(ctx, sessionCartKey(sessionID)).Err()
}

// GetCartItemCount returns the total quantity across all lines.
func (s *Service) GetCartItemCount(ctx context.Context, userID *uint, sessionID string) (int, error) {
	current, err := s.loadCart(ctx, userID, sessionID, "")
	if err != nil {
		return 0, err
	}
	return current.TotalQuantity(), nil
}

// MergeGuestCartToUser folds a guest session cart into the user's cart
// on login: quantities for colliding variants are summed, the user's
// coupon wins when both carts carry one, and gift wrap stays on if
// either cart had it. The guest cart is deleted afterwards.
func (s *Service) MergeGuestCartToUser(ctx context.Context, userID uint, sessionID string) (*CartResponse, error) {
	guest, err := s.loadSessionCart(ctx, sessionID, "")
	if err != nil {
		return nil, err
	}

	userPtr := &userID
	merged, err := s.mutate(ctx, userPtr, "", "", func(current Cart) (Cart, error) {
		next := current
		for _, line := range guest.Lines {
			next, err = AddItem(next, line.VariantID, line.Quantity, line.UnitPrice)
			if err != nil {
				return current, err
			}
		}
		if next.Coupon == nil && guest.Coupon != nil {
			next, err = ApplyCoupon(next, *guest.Coupon)
			if err != nil {
				return current, err
			}
		}
		if guest.GiftWrap {
			next = SetGiftWrap(next, true)
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.redisClient.Del(ctx, sessionCartKey(sessionID)).Err(); err != nil {
		s.logger.WithField("session_id", sessionID).Warn("failed to delete merged guest cart")
	}

	return merged, nil
}

// mutate is the single mutation path: load, apply one pure transition,
// persist, snapshot. On a transition error the stored cart is left
// exactly as it was.
func (s *Service) mutate(ctx context.Context, userID *uint, sessionID, currency string, transition func(Cart) (Cart, error)) (*CartResponse, error) {
	current, err := s.loadCart(ctx, userID, sessionID, currency)
	if err != nil {
		return nil, err
	}

	next, err := transition(current)
	if err != nil {
		return nil, err
	}

	if err := s.saveCart(ctx, userID, sessionID, next); err != nil {
		return nil, err
	}

	return s.snapshot(userID, sessionID, next), nil
}

// loadCart loads the owner's cart, creating an empty value (not yet
// persisted) when none exists. currency only matters for that first
// implicit creation; an existing cart keeps its currency.
func (s *Service) loadCart(ctx context.Context, userID *uint, sessionID, currency string) (Cart, error) {
	if currency == "" {
		currency = s.config.Pricing.DefaultCurrency
	}

	if userID != nil {
		var record CartRecord
		err := s.db.Preload("Lines").Where("user_id = ?", *userID).First(&record).Error
		if err == gorm.ErrRecordNotFound {
			return New(ownerForUser(*userID), currency), nil
		}
		if err != nil {
			return Cart{}, fmt.Errorf("failed to load cart: %w", err)
		}
		return record.toValue(ownerForUser(*userID)), nil
	}

	session, err := s.loadSessionCart(ctx, sessionID, currency)
	if err != nil {
		return Cart{}, err
	}
	return session.toValue(ownerForSession(sessionID)), nil
}

func (s *Service) loadSessionCart(ctx context.Context, sessionID, currency string) (*SessionCart, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID required for guest cart")
	}
	if currency == "" {
		currency = s.config.Pricing.DefaultCurrency
	}

	data, err := s.redisClient.Get(ctx, sessionCartKey(sessionID)).Result()
	if err == redis.Nil {
		now := time.Now().UTC()
		return &SessionCart{
			SessionID: sessionID,
			Currency:  currency,
			Lines:     []Line{},
			CreatedAt: now,
			UpdatedAt: now,
			ExpiresAt: now.Add(sessionCartTTL),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load guest cart: %w", err)
	}

	var session SessionCart
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to decode guest cart: %w", err)
	}
	return &session, nil
}

// saveCart persists the full cart state. User carts replace their line
// rows inside one transaction; guest carts overwrite the Redis document.
func (s *Service) saveCart(ctx context.Context, userID *uint, sessionID string, c Cart) error {
	if userID != nil {
		return s.db.Transaction(func(tx *gorm.DB) error {
			var record CartRecord
			err := tx.Where("user_id = ?", *userID).First(&record).Error
			if err == gorm.ErrRecordNotFound {
				record = CartRecord{UserID: *userID}
			} else if err != nil {
				return fmt.Errorf("failed to load cart: %w", err)
			}

			record.applyValue(c)
			if err := tx.Save(&record).Error; err != nil {
				return fmt.Errorf("failed to save cart: %w", err)
			}

			if err := tx.Where("cart_id = ?", record.ID).Delete(&CartLineRecord{}).Error; err != nil {
				return fmt.Errorf("failed to replace cart lines: %w", err)
			}
			for _, line := range c.Lines {
				row := CartLineRecord{
					CartID:    record.ID,
					VariantID: line.VariantID,
					Quantity:  line.Quantity,
					UnitPrice: line.UnitPrice,
				}
				if err := tx.Create(&row).Error; err != nil {
					return fmt.Errorf("failed to save cart line: %w", err)
				}
			}
			return nil
		})
	}

	now := time.Now().UTC()
	session := SessionCart{
		SessionID: sessionID,
		Currency:  c.Currency,
		Lines:     c.Lines,
		Coupon:    c.Coupon,
		GiftWrap:  c.GiftWrap,
		UpdatedAt: now,
		ExpiresAt: now.Add(sessionCartTTL),
	}

	data, err := json.Marshal(&session)
	if err != nil {
		return fmt.Errorf("failed to encode guest cart: %w", err)
	}
	return s.redisClient.Set(ctx, sessionCartKey(sessionID), data, sessionCartTTL).Err()
}

// snapshot builds the response view: variant details per line plus
// totals derived from the cart and the store's gift wrap fee.
func (s *Service) snapshot(userID *uint, sessionID string, c Cart) *CartResponse {
	items := make([]CartItemResponse, 0, len(c.Lines))
	for _, line := range c.Lines {
		item := CartItemResponse{
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.Subtotal(),
		}
		// Variant details are decoration; a missing variant does not
		// break the snapshot.
		if variant, err := s.catalog.GetVariant(line.VariantID); err == nil {
			item.Variant = variant
		}
		items = append(items, item)
	}

	return &CartResponse{
		UserID:    userID,
		SessionID: sessionID,
		Currency:  c.Currency,
		Items:     items,
		Coupon:    c.Coupon,
		GiftWrap:  c.GiftWrap,
		Totals:    ComputeTotals(c, s.catalog.GiftWrapFee()),
	}
}

func sessionCartKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

func ownerForUser(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

func ownerForSession(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}
