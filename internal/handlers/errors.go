package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-shop-admin/internal/auth"
	"github.com/imrishuroy/go-shop-admin/internal/catalog"
	"github.com/imrishuroy/go-shop-admin/internal/media"
	"github.com/imrishuroy/go-shop-admin/internal/orders"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{catalog.ErrNotFound, http.StatusNotFound, "product_not_found"},
	{catalog.ErrImageNotFound, http.StatusNotFound, "media_not_found"},
	{catalog.ErrInvalidProduct, http.StatusBadRequest, "invalid_product"},
	{catalog.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{catalog.ErrInvalidAdjustment, http.StatusBadRequest, "invalid_adjustment"},
	{catalog.ErrNegativeStock, http.StatusConflict, "negative_stock"},
	{catalog.ErrStockTooLarge, http.StatusBadRequest, "stock_too_large"},
	{catalog.ErrFeaturedLimit, http.StatusConflict, "featured_limit_reached"},
	{catalog.ErrPrimaryRequired, http.StatusConflict, "primary_image_required"},
	{catalog.ErrVersionConflict, http.StatusConflict, "concurrent_update"},
	{catalog.ErrStockMismatch, http.StatusConflict, "concurrent_update"},
	{catalog.ErrConcurrentUpdate, http.StatusConflict, "concurrent_update"},

	{orders.ErrNotFound, http.StatusNotFound, "order_not_found"},
	{orders.ErrAlreadyPaid, http.StatusConflict, "already_paid"},
	{orders.ErrNotPaid, http.StatusConflict, "order_not_paid"},
	{orders.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{orders.ErrStatusMismatch, http.StatusConflict, "status_conflict"},
	{orders.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},
	{orders.ErrEmptyOrder, http.StatusBadRequest, "invalid_order"},
	{orders.ErrInvalidQuantity, http.StatusBadRequest, "invalid_order"},
	{orders.ErrProductUnavailable, http.StatusUnprocessableEntity, "product_unavailable"},
	{orders.ErrInsufficientStock, http.StatusConflict, "insufficient_stock"},
	{orders.ErrMissingPhone, http.StatusUnprocessableEntity, "missing_phone"},
	{orders.ErrRequestInProgress, http.StatusAccepted, "request_in_progress"},
	{orders.ErrPreviousAttempt, http.StatusInternalServerError, "previous_attempt_failed"},
	{orders.ErrInvalidIdempotencyKey, http.StatusBadRequest, "invalid_idempotency_key"},

	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{auth.ErrInactiveUser, http.StatusForbidden, "user_inactive"},
	{auth.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},

	{media.ErrDisabled, http.StatusServiceUnavailable, "media_disabled"},
	{media.ErrTooLarge, http.StatusRequestEntityTooLarge, "file_too_large"},
	{media.ErrUnsupportedType, http.StatusUnsupportedMediaType, "unsupported_media_type"},
	{media.ErrEmptyFile, http.StatusBadRequest, "empty_file"},
}

// writeError maps domain errors to a status and a snake_case error code.
// Unknown errors are logged and reported as 500.
func writeError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			c.JSON(m.status, gin.H{"error": m.code, "detail": err.Error()})
			return
		}
	}
	log.Printf("[http] %s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
}
