// Package config reads service settings from the environment, loading a local .env
// file first when one is present.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the binaries read.
type Config struct {
	Port     string
	RunLocal bool

	ProductsTable    string
	OrdersTable      string
	IdempotencyTable string
	UsersTable       string
	SessionsTable    string

	StockQueueURL string

	MediaBucket        string
	MediaPublicBaseURL string
	MaxUploadBytes     int64

	SessionTTL     time.Duration
	CookieSecure   bool
	FeaturedLimit  int
	IdempotencyTTL time.Duration
	CacheTTL       time.Duration

	// IdempotencyLease is how long a stock-sync claim blocks other workers before it
	// may be taken over. Keep it above the worker timeout.
	IdempotencyLease time.Duration

	MetricsNamespace string
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Printf("[config] error loading .env file: %v", err)
		} else {
			log.Printf("[config] .env file loaded")
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the environment only.
func FromEnv() (*Config, error) {
	var errs []string
	p := parser{errs: &errs}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		RunLocal:           p.boolean("RUN_LOCAL", false),
		ProductsTable:      getEnv("PRODUCTS_TABLE", "products"),
		OrdersTable:        getEnv("ORDERS_TABLE", "orders"),
		IdempotencyTable:   getEnv("IDEMPOTENCY_TABLE", "idempotency"),
		UsersTable:         getEnv("USERS_TABLE", "admin_users"),
		SessionsTable:      getEnv("SESSIONS_TABLE", "admin_sessions"),
		StockQueueURL:      getEnv("STOCK_QUEUE_URL", ""),
		MediaBucket:        getEnv("MEDIA_BUCKET", ""),
		MediaPublicBaseURL: getEnv("MEDIA_PUBLIC_BASE_URL", ""),
		MaxUploadBytes:     p.integer("MAX_UPLOAD_BYTES", 5<<20),
		SessionTTL:         p.dur("SESSION_TTL", 24*time.Hour),
		CookieSecure:       p.boolean("COOKIE_SECURE", true),
		FeaturedLimit:      int(p.integer("FEATURED_LIMIT", 10)),
		IdempotencyTTL:     p.dur("IDEMPOTENCY_TTL", 48*time.Hour),
		CacheTTL:           p.dur("CACHE_TTL", time.Minute),
		IdempotencyLease:   p.dur("IDEMPOTENCY_LEASE", 5*time.Minute),
		MetricsNamespace:   getEnv("METRICS_NAMESPACE", ""),
	}
	if cfg.FeaturedLimit <= 0 {
		errs = append(errs, "FEATURED_LIMIT must be positive")
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// Addr is the listen address for local mode.
func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// parser collects every malformed value instead of stopping at the first.
type parser struct {
	errs *[]string
}

func (p parser) boolean(key string, fallback bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Sprintf("%s: %q is not a boolean", key, raw))
		return fallback
	}
	return v
}

func (p parser) integer(key string, fallback int64) int64 {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Sprintf("%s: %q is not an integer", key, raw))
		return fallback
	}
	return v
}

func (p parser) dur(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Sprintf("%s: %q is not a duration", key, raw))
		return fallback
	}
	return v
}
