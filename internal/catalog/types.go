package catalog

import (
	"time"

	"github.com/imrishuroy/go-shop-admin/internal/money"
)

// DefaultFeaturedLimit caps how many products may be featured at once.
const DefaultFeaturedLimit = 10

// Product is the item stored in the products DynamoDB table. Images are embedded so
// that every image change is a single-row write.
type Product struct {
	ID          string         `json:"id" dynamodbav:"product_id"` // PK
	Name        string         `json:"name" dynamodbav:"name"`
	Description string         `json:"description" dynamodbav:"description"`
	Price       money.Money    `json:"price" dynamodbav:"price"`
	Stock       int            `json:"stock" dynamodbav:"stock"`
	IsPublished bool           `json:"is_published" dynamodbav:"is_published"`
	IsFeatured  bool           `json:"is_featured" dynamodbav:"is_featured"`
	FeaturedAt  *time.Time     `json:"featured_at,omitempty" dynamodbav:"featured_at,omitempty"`
	Images      []ProductImage `json:"images" dynamodbav:"images"`
	Movements   []Movement     `json:"-" dynamodbav:"movements,omitempty"` // oldest first, capped at MovementHistoryLimit
	Version     int64          `json:"version" dynamodbav:"version"`
	CreatedAt   time.Time      `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" dynamodbav:"updated_at"`
}

// ProductImage belongs to exactly one product.
type ProductImage struct {
	ID         string    `json:"id" dynamodbav:"image_id"`
	ProductID  string    `json:"product_id" dynamodbav:"product_id"`
	ImageURL   string    `json:"image_url" dynamodbav:"image_url"`
	StorageKey string    `json:"-" dynamodbav:"storage_key,omitempty"` // set for uploaded files
	IsPrimary  bool      `json:"is_primary" dynamodbav:"is_primary"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"created_at"`
}

// PrimaryImage returns the primary image, if any.
func (p Product) PrimaryImage() (ProductImage, bool) {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img, true
		}
	}
	return ProductImage{}, false
}

// AdjustmentType selects how a stock adjustment is applied.
type AdjustmentType string

const (
	AdjustAdd    AdjustmentType = "add"
	AdjustRemove AdjustmentType = "remove"
	AdjustSet    AdjustmentType = "set"
)

// Movement types that are not admin adjustments.
const (
	MovementInitial   AdjustmentType = "initial"
	MovementEdit      AdjustmentType = "edit"
	MovementOrderPaid AdjustmentType = "order_paid"
)

// Adjustment is an admin-issued change to a product's stock.
type Adjustment struct {
	Type     AdjustmentType
	Quantity int
	Reason   string
	Notes    string
	Actor    string
}

// StockChange reports the stock before and after a write.
type StockChange struct {
	ProductID string `json:"product_id"`
	Previous  int    `json:"previous_stock"`
	Current   int    `json:"stock"`
}

// Movement is one entry of a product's stock history.
type Movement struct {
	ID             string         `json:"id" dynamodbav:"movement_id"`
	Type           AdjustmentType `json:"type" dynamodbav:"type"`
	QuantityChange int            `json:"quantity_change" dynamodbav:"quantity_change"`
	PreviousStock  int            `json:"previous_stock" dynamodbav:"previous_stock"`
	NewStock       int            `json:"new_stock" dynamodbav:"new_stock"`
	Reason         string         `json:"reason" dynamodbav:"reason"`
	Notes          string         `json:"notes,omitempty" dynamodbav:"notes,omitempty"`
	Reference      string         `json:"reference,omitempty" dynamodbav:"reference,omitempty"` // order id for order_paid
	CreatedBy      string         `json:"created_by" dynamodbav:"created_by"`
	CreatedAt      time.Time      `json:"created_at" dynamodbav:"created_at"`
}

// CreateInput holds the fields accepted when creating a product.
type CreateInput struct {
	Name        string
	Description string
	Price       money.Money
	Stock       int
	IsPublished bool
	Actor       string
}

// UpdateInput is a partial update; nil fields are left untouched.
type UpdateInput struct {
	Name        *string
	Description *string
	Price       *money.Money
	Stock       *int
	IsPublished *bool
	Actor       string
}

// Empty reports whether no field is set.
func (u UpdateInput) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil && u.Stock == nil && u.IsPublished == nil
}
