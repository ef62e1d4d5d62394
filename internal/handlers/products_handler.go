package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-shop-admin/internal/auth"
	"github.com/imrishuroy/go-shop-admin/internal/catalog"
	"github.com/imrishuroy/go-shop-admin/internal/validation"
)

func registerProductRoutes(admin *gin.RouterGroup, h *routes) {
	g := admin.Group("/products")

	g.GET("", func(c *gin.Context) {
		products, err := h.Catalog.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	})

	g.POST("", func(c *gin.Context) {
		var req validation.CreateProductRequest
		if err := validation.BindAndValidate(c, &req, h.v); err != nil {
			return
		}
		p, err := h.Catalog.Create(c.Request.Context(), catalog.CreateInput{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Stock:       req.Stock,
			IsPublished: req.IsPublished,
			Actor:       auth.Actor(c),
		})
		if err != nil {
			writeError(c, err)
			return
		}
		h.invalidateStorefront()
		c.Header("Location", "/admin/products/"+p.ID)
		c.JSON(http.StatusCreated, p)
	})

	g.GET("/:id", func(c *gin.Context) {
		p, err := h.Catalog.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	})

	g.PATCH("/:id", func(c *gin.Context) {
		var req validation.UpdateProductRequest
		if err := validation.BindAndValidate(c, &req, h.v); err != nil {
			return
		}
		in := catalog.UpdateInput{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Stock:       req.Stock,
			IsPublished: req.IsPublished,
			Actor:       auth.Actor(c),
		}
		if in.Empty() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty_update"})
			return
		}
		p, err := h.Catalog.Update(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			writeError(c, err)
			return
		}
		h.invalidateStorefront()
		c.JSON(http.StatusOK, p)
	})

	g.DELETE("/:id", func(c *gin.Context) {
		ctx := c.Request.Context()
		p, err := h.Catalog.Delete(ctx, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		for _, img := range p.Images {
			h.deleteStoredImage(ctx, img)
		}
		h.invalidateStorefront()
		c.JSON(http.StatusOK, gin.H{"deleted": p.ID})
	})

	g.PATCH("/:id/featured", func(c *gin.Context) {
		var req validation.FeaturedRequest
		if err := validation.BindAndValidate(c, &req, h.v); err != nil {
			return
		}
		p, err := h.Catalog.SetFeatured(c.Request.Context(), c.Param("id"), *req.IsFeatured)
		if err != nil {
			writeError(c, err)
			return
		}
		h.invalidateStorefront()
		c.JSON(http.StatusOK, p)
	})

	g.POST("/:id/stock", func(c *gin.Context) {
		var req validation.StockAdjustmentRequest
		if err := validation.BindAndValidate(c, &req, h.v); err != nil {
			return
		}
		change, err := h.Catalog.AdjustStock(c.Request.Context(), c.Param("id"), catalog.Adjustment{
			Type:     catalog.AdjustmentType(req.Type),
			Quantity: *req.Quantity,
			Reason:   req.Reason,
			Notes:    req.Notes,
			Actor:    auth.Actor(c),
		})
		if err != nil {
			writeError(c, err)
			return
		}
		h.invalidateStorefront()
		c.JSON(http.StatusOK, change)
	})

	g.GET("/:id/movements", func(c *gin.Context) {
		id := c.Param("id")
		movements, err := h.Catalog.Movements(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"product_id": id, "movements": movements})
	})
}

// inventory view: stock counters plus a filterable product list
func registerInventoryRoutes(admin *gin.RouterGroup, h *routes) {
	admin.GET("/inventory", func(c *gin.Context) {
		level, ok := catalog.ParseStockLevel(c.Query("level"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_level", "detail": "level must be in_stock, low_stock or out_of_stock"})
			return
		}
		report, err := h.Catalog.Inventory(c.Request.Context(), catalog.InventoryQuery{
			Level:  level,
			Search: c.Query("q"),
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	})
}

// deleteStoredImage removes an uploaded object; failures are logged because the
// catalog row is already gone.
func (h *routes) deleteStoredImage(ctx context.Context, img catalog.ProductImage) {
	if img.StorageKey == "" || !h.Media.Enabled() {
		return
	}
	if err := h.Media.Delete(ctx, img.StorageKey); err != nil {
		log.Printf("[http] delete object key=%s: %v", img.StorageKey, err)
	}
}
