// internal/interfaces/http/handlers/catalog.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-cart/internal/config"
	"github.com/your-org/storefront-cart/internal/domain/catalog"
	"gorm.io/gorm"
)

// CatalogHandler handles product and price quote endpoints
type CatalogHandler struct {
	catalogService *catalog.Service
	config         *config.Config
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(db *gorm.DB, cfg *config.Config) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalog.NewService(db, cfg),
		config:         cfg,
	}
}

// GetProduct handles GET /products/:slug
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	slug := c.Param("slug")

	product, err := h.catalogService.GetProductBySlug(slug)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    product,
	})
}

// QuoteVariant handles GET /variants/:id/quote
func (h *CatalogHandler) QuoteVariant(c *gin.Context) {
	variantID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid variant ID",
		})
		return
	}

	quote, err := h.catalogService.Quote(uint(variantID), c.Query("currency"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Variant not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Price quote retrieved successfully",
		"data":    quote,
	})
}

// UpdateGiftWrapSettingRequest represents a gift wrap setting update
type UpdateGiftWrapSettingRequest struct {
	Enabled *bool  `json:"enabled" binding:"required"`
	Price   string `json:"price" binding:"required"`
}

// UpdateGiftWrapSetting handles PUT /admin/gift-wrap
func (h *CatalogHandler) UpdateGiftWrapSetting(c *gin.Context) {
	var req UpdateGiftWrapSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Price must be a non-negative decimal",
		})
		return
	}

	setting, err := h.catalogService.UpdateGiftWrapSetting(*req.Enabled, price)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update gift wrap setting",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Gift wrap setting updated successfully",
		"data":    setting,
	})
}
