// Package app composes stores, domain services and the HTTP router from Config so
// every binary wires the shop the same way.
package app

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-shop-admin/internal/auth"
	"github.com/imrishuroy/go-shop-admin/internal/aws"
	"github.com/imrishuroy/go-shop-admin/internal/cache"
	"github.com/imrishuroy/go-shop-admin/internal/catalog"
	"github.com/imrishuroy/go-shop-admin/internal/config"
	"github.com/imrishuroy/go-shop-admin/internal/handlers"
	"github.com/imrishuroy/go-shop-admin/internal/idempotency"
	"github.com/imrishuroy/go-shop-admin/internal/inventory"
	"github.com/imrishuroy/go-shop-admin/internal/media"
	"github.com/imrishuroy/go-shop-admin/internal/orders"
)

// App holds the wired services.
type App struct {
	Config     *config.Config
	Catalog    *catalog.Service
	Orders     *orders.Service
	Auth       *auth.Service
	Reconciler *inventory.Reconciler
	Media      *media.Uploader
	Cache      *cache.Cache
}

// New builds every service on top of clients. Nothing talks to AWS until a
// request arrives.
func New(cfg *config.Config, clients *aws.AWSClients) *App {
	metrics := aws.NewMetrics(clients.CloudWatch, cfg.MetricsNamespace)

	idem := idempotency.NewStore(clients.DynamoDB, cfg.IdempotencyTable, cfg.IdempotencyTTL)
	idem.SetLease(cfg.IdempotencyLease)
	catalogSvc := catalog.NewService(catalog.NewStore(clients.DynamoDB, cfg.ProductsTable), cfg.FeaturedLimit, metrics)
	reconciler := inventory.NewReconciler(catalogSvc, idem, metrics)

	var publisher orders.Publisher
	if cfg.StockQueueURL != "" {
		publisher = aws.NewPublisher(clients.SQS, cfg.StockQueueURL)
	}
	ordersSvc := orders.NewService(orders.ServiceDeps{
		Repo:        orders.NewStore(clients.DynamoDB, cfg.OrdersTable),
		Products:    catalogSvc,
		Idempotency: idem,
		Publisher:   publisher,
		Stock:       reconciler,
		Metrics:     metrics,
	})

	var uploader *media.Uploader
	if cfg.MediaBucket != "" {
		uploader = media.NewUploader(clients.S3, cfg.MediaBucket, cfg.MediaPublicBaseURL, cfg.MaxUploadBytes)
	}

	return &App{
		Config:     cfg,
		Catalog:    catalogSvc,
		Orders:     ordersSvc,
		Auth:       auth.NewService(auth.NewStore(clients.DynamoDB, cfg.UsersTable, cfg.SessionsTable), cfg.SessionTTL),
		Reconciler: reconciler,
		Media:      uploader,
		Cache:      cache.New(cfg.CacheTTL),
	}
}

// Router returns the gin engine serving the whole API.
func (a *App) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if a.Config.RunLocal {
		r.Use(gin.Logger())
	}

	handlers.Register(r, handlers.HandlerConfig{
		Catalog: a.Catalog,
		Orders:  a.Orders,
		Auth:    a.Auth,
		Media:   a.Media,
		Cache:   a.Cache,
		Cookie: auth.CookieOptions{
			Secure: a.Config.CookieSecure,
			TTL:    a.Config.SessionTTL,
		},
	})
	return r
}

// StartJanitor evicts expired cache entries until ctx is done.
func (a *App) StartJanitor(ctx context.Context) {
	if a.Config.CacheTTL <= 0 {
		return
	}
	interval := a.Config.CacheTTL
	if interval < 10*time.Second {
		interval = 10 * time.Second
	}
	log.Printf("[app] cache ttl=%s sweep=%s", a.Config.CacheTTL, interval)
	go a.Cache.RunJanitor(ctx, interval)
}
