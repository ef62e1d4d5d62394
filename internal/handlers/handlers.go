package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-shop-admin/internal/auth"
	"github.com/imrishuroy/go-shop-admin/internal/cache"
	"github.com/imrishuroy/go-shop-admin/internal/catalog"
	"github.com/imrishuroy/go-shop-admin/internal/media"
	"github.com/imrishuroy/go-shop-admin/internal/orders"
	"github.com/imrishuroy/go-shop-admin/internal/validation"
)

// HandlerConfig groups dependencies for the HTTP handlers.
type HandlerConfig struct {
	Catalog *catalog.Service
	Orders  *orders.Service
	Auth    *auth.Service
	Media   *media.Uploader
	Cache   *cache.Cache
	Cookie  auth.CookieOptions
}

type routes struct {
	HandlerConfig
	v *validatorv10.Validate
}

// Register mounts every route on r: public storefront, auth, and the
// session-guarded admin API.
func Register(r *gin.Engine, cfg HandlerConfig) {
	h := &routes{HandlerConfig: cfg, v: validation.New()}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	registerPublicRoutes(r, h)
	registerAuthRoutes(r, h)

	admin := r.Group("/admin", auth.RequireSession(cfg.Auth, cfg.Cookie))
	registerProductRoutes(admin, h)
	registerInventoryRoutes(admin, h)
	registerMediaRoutes(admin, h)
	registerOrdersRoutes(admin, h)
	registerDashboardRoutes(admin, h)
}

// invalidateStorefront drops cached public reads after catalog writes.
func (h *routes) invalidateStorefront() {
	h.Cache.DeleteByPrefix(publicCachePrefix)
}
