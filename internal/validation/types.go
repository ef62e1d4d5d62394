package validation

import "github.com/imrishuroy/go-shop-admin/internal/money"

// CreateProductRequest is the payload for POST /admin/products
type CreateProductRequest struct {
	Name        string      `json:"name" validate:"required,max=200"`
	Description string      `json:"description" validate:"max=5000"`
	Price       money.Money `json:"price" validate:"gte=0"`
	Stock       int         `json:"stock" validate:"gte=0,max=1000000"`
	IsPublished bool        `json:"is_published"`
}

// UpdateProductRequest is the payload for PATCH /admin/products/:id. Absent fields are
// left untouched.
type UpdateProductRequest struct {
	Name        *string      `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string      `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *money.Money `json:"price,omitempty" validate:"omitempty,gte=0"`
	Stock       *int         `json:"stock,omitempty" validate:"omitempty,gte=0,max=1000000"`
	IsPublished *bool        `json:"is_published,omitempty"`
}

// StockAdjustmentRequest is the payload for POST /admin/products/:id/stock
type StockAdjustmentRequest struct {
	Type     string `json:"type" validate:"required,oneof=add remove set"`
	Quantity *int   `json:"quantity" validate:"required,max=1000000"`
	Reason   string `json:"reason" validate:"required,max=200"`
	Notes    string `json:"notes" validate:"max=1000"`
}

// FeaturedRequest is the payload for PATCH /admin/products/:id/featured
type FeaturedRequest struct {
	IsFeatured *bool `json:"is_featured" validate:"required"`
}

// MediaLinkRequest links an externally hosted image.
type MediaLinkRequest struct {
	ImageURL  string `json:"image_url" validate:"required,url,max=2048"`
	IsPrimary bool   `json:"is_primary"`
}

// MediaUpdateRequest is the payload for PATCH /admin/products/:id/media/:mediaId
type MediaUpdateRequest struct {
	IsPrimary *bool `json:"is_primary" validate:"required"`
}

// OrderStatusRequest is the payload for PATCH /admin/orders/:id/status
type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted paid shipped delivered canceled"`
}

// CustomerRequest is the customer block of a storefront order.
type CustomerRequest struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"omitempty,email,max=254"`
	Phone string `json:"phone" validate:"omitempty,min=6,max=30"`
}

// OrderLineRequest is one requested product.
type OrderLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=999"`
}

// CreateOrderRequest is the payload for POST /public/orders
type CreateOrderRequest struct {
	Customer        CustomerRequest    `json:"customer"`
	Items           []OrderLineRequest `json:"items" validate:"required,min=1,max=50,dive"`
	Notes           string             `json:"notes" validate:"max=1000"`
	ShippingAddress string             `json:"shipping_address" validate:"max=500"`
}

// LoginRequest accepts JSON {email,password} or the OAuth2-style form
// username/password.
type LoginRequest struct {
	Email    string `json:"email" form:"username" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}
