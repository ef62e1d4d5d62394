package catalog

import "errors"

var (
	ErrNotFound          = errors.New("product not found")
	ErrImageNotFound     = errors.New("product image not found")
	ErrInvalidProduct    = errors.New("invalid product")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInvalidAdjustment = errors.New("unknown stock adjustment type")
	ErrNegativeStock     = errors.New("stock cannot be negative")
	ErrStockTooLarge     = errors.New("stock cannot exceed 1000000 units")
	ErrFeaturedLimit     = errors.New("featured products limit reached")
	ErrPrimaryRequired   = errors.New("a product with images needs a primary image")

	// ErrVersionConflict and ErrStockMismatch are returned by the store when the
	// conditional write saw a different row than the one the caller read.
	ErrVersionConflict = errors.New("product version conflict")
	ErrStockMismatch   = errors.New("stock changed since read")

	// ErrConcurrentUpdate is returned once retries on a conflicting row are exhausted.
	ErrConcurrentUpdate = errors.New("product was modified concurrently")
)
