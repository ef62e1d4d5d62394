package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-shop-admin/internal/auth"
	"github.com/imrishuroy/go-shop-admin/internal/orders"
	"github.com/imrishuroy/go-shop-admin/internal/validation"
)

// orderView adds the derived flags the admin UI renders next to an order.
type orderView struct {
	orders.Order
	CanShip     bool `json:"can_ship"`
	CanMarkPaid bool `json:"can_mark_paid"`
}

func newOrderView(o orders.Order) orderView {
	_, payErr := orders.CheckMarkPaid(o)
	return orderView{
		Order:       o,
		CanShip:     orders.CanShip(o),
		CanMarkPaid: payErr == nil,
	}
}

func registerOrdersRoutes(admin *gin.RouterGroup, h *routes) {
	g := admin.Group("/orders")

	g.GET("", func(c *gin.Context) {
		f := orders.ListFilter{
			PaymentStatus: c.Query("payment_status"),
			OrderStatus:   c.Query("order_status"),
		}
		if f.PaymentStatus != "" && f.PaymentStatus != orders.PaymentPending && f.PaymentStatus != orders.PaymentPaid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payment_status"})
			return
		}
		if f.OrderStatus != "" && !orders.ValidOrderStatus(f.OrderStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status"})
			return
		}
		list, err := h.Orders.List(c.Request.Context(), f)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": list})
	})

	g.GET("/:id", func(c *gin.Context) {
		o, err := h.Orders.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, newOrderView(o))
	})

	g.PATCH("/:id/mark-paid", func(c *gin.Context) {
		o, err := h.Orders.MarkPaid(c.Request.Context(), c.Param("id"), auth.Actor(c))
		if err != nil {
			writeError(c, err)
			return
		}
		// paid orders decrement stock
		h.invalidateStorefront()
		c.JSON(http.StatusOK, newOrderView(o))
	})

	g.PATCH("/:id/mark-shipped", func(c *gin.Context) {
		o, err := h.Orders.MarkShipped(c.Request.Context(), c.Param("id"), auth.Actor(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, newOrderView(o))
	})

	g.PATCH("/:id/status", func(c *gin.Context) {
		var req validation.OrderStatusRequest
		if err := validation.BindAndValidate(c, &req, h.v); err != nil {
			return
		}
		o, err := h.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, auth.Actor(c))
		if err != nil {
			writeError(c, err)
			return
		}
		if o.PaymentStatus == orders.PaymentPaid {
			h.invalidateStorefront()
		}
		c.JSON(http.StatusOK, newOrderView(o))
	})

	g.GET("/:id/whatsapp", func(c *gin.Context) {
		link, err := h.Orders.WhatsAppLink(c.Request.Context(), c.Param("id"), c.Query("message"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": link})
	})
}
