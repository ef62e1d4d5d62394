package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-shop-admin/internal/catalog"
	"github.com/imrishuroy/go-shop-admin/internal/orders"
	"github.com/imrishuroy/go-shop-admin/internal/validation"
)

const (
	publicCachePrefix   = "public:"
	publicProductsKey   = publicCachePrefix + "products"
	publicProductPrefix = publicCachePrefix + "product:"
)

func registerPublicRoutes(r *gin.Engine, h *routes) {
	pub := r.Group("/public")

	pub.GET("/products", func(c *gin.Context) {
		var products []catalog.Product
		if ok, err := h.Cache.Load(publicProductsKey, &products); err == nil && ok {
			c.JSON(http.StatusOK, gin.H{"products": products})
			return
		}
		products, err := h.Catalog.ListPublished(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		if err := h.Cache.Store(publicProductsKey, products); err != nil {
			log.Printf("[http] cache store %s: %v", publicProductsKey, err)
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	})

	pub.GET("/products/:id", func(c *gin.Context) {
		id := c.Param("id")
		key := publicProductPrefix + id
		var p catalog.Product
		if ok, err := h.Cache.Load(key, &p); err == nil && ok {
			c.JSON(http.StatusOK, p)
			return
		}
		p, err := h.Catalog.GetPublished(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		if err := h.Cache.Store(key, p); err != nil {
			log.Printf("[http] cache store %s: %v", key, err)
		}
		c.JSON(http.StatusOK, p)
	})

	pub.POST("/orders", func(c *gin.Context) {
		var req validation.CreateOrderRequest
		if err := validation.BindAndValidate(c, &req, h.v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		in := orders.CreateInput{
			Customer: orders.Customer{
				Name:  req.Customer.Name,
				Email: req.Customer.Email,
				Phone: req.Customer.Phone,
			},
			Notes:           req.Notes,
			ShippingAddress: req.ShippingAddress,
		}
		for _, it := range req.Items {
			in.Items = append(in.Items, orders.LineInput{ProductID: it.ProductID, Quantity: it.Quantity})
		}

		key := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		order, replayed, err := h.Orders.Create(c.Request.Context(), in, key)
		if err != nil {
			writeError(c, err)
			return
		}

		body := gin.H{
			"id":             order.OrderID,
			"order_number":   order.OrderNumber,
			"total_amount":   order.TotalAmount,
			"payment_status": order.PaymentStatus,
			"order_status":   order.OrderStatus,
		}
		if replayed {
			c.JSON(http.StatusOK, body)
			return
		}
		c.Header("Location", "/admin/orders/"+order.OrderID)
		c.JSON(http.StatusCreated, body)
	})
}
