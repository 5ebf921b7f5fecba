// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-cart/internal/config"
	"github.com/your-org/storefront-cart/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-cart/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes sets up all API routes
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	SetupCatalogRoutes(rg, db, cfg)
	SetupCartRoutes(rg, db, redisClient, cfg)
}

// SetupCatalogRoutes sets up product and price quote routes
func SetupCatalogRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	catalogHandler := handlers.NewCatalogHandler(db, cfg)

	products := rg.Group("/products")
	{
		products.GET("/:slug", catalogHandler.GetProduct)
	}

	variants := rg.Group("/variants")
	{
		variants.GET("/:id/quote", catalogHandler.QuoteVariant)
	}

	// Staff-only store settings
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
	{
		admin.PUT("/gift-wrap", catalogHandler.UpdateGiftWrapSetting)
	}
}

// SetupCartRoutes sets up cart routes. Carts work for guest sessions
// and authenticated users alike, so auth is optional everywhere except
// the login-time merge.
func SetupCartRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(db, redisClient, cfg)

	cart := rg.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		cart.GET("", cartHandler.GetCart)
		cart.DELETE("", cartHandler.ClearCart)
		cart.GET("/count", cartHandler.GetCartItemCount)

		cart.POST("/items", cartHandler.AddItem)
		cart.PUT("/items/:variant_id", cartHandler.SetQuantity)
		cart.DELETE("/items/:variant_id", cartHandler.RemoveItem)

		cart.POST("/coupon", cartHandler.ApplyCoupon)
		cart.DELETE("/coupon", cartHandler.RemoveCoupon)

		cart.PUT("/gift-wrap", cartHandler.SetGiftWrap)

		merge := cart.Group("/merge")
		merge.Use(middleware.AuthMiddleware(cfg))
		{
			merge.POST("", cartHandler.MergeGuestCart)
		}
	}
}
