package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-shop-admin/internal/catalog"
)

func registerDashboardRoutes(admin *gin.RouterGroup, h *routes) {
	admin.GET("/dashboard", func(c *gin.Context) {
		ctx := c.Request.Context()
		stats, err := h.Orders.Stats(ctx)
		if err != nil {
			writeError(c, err)
			return
		}
		featured, err := h.Catalog.FeaturedCount(ctx)
		if err != nil {
			writeError(c, err)
			return
		}
		inventory, err := h.Catalog.Inventory(ctx, catalog.InventoryQuery{})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"orders":         stats,
			"featured_count": featured,
			"featured_limit": h.Catalog.FeaturedLimit(),
			"total_products": inventory.TotalProducts,
			"low_stock":      inventory.LowStock,
			"out_of_stock":   inventory.OutOfStock,
		})
	})
}
