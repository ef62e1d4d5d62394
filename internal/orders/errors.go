package orders

import "errors"

var (
	ErrNotFound           = errors.New("order not found")
	ErrAlreadyPaid        = errors.New("order already paid")
	ErrNotPaid            = errors.New("order is not paid")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidStatus      = errors.New("unknown order status")
	ErrEmptyOrder         = errors.New("order has no items")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrMissingPhone       = errors.New("customer has no phone number")
	ErrRequestInProgress  = errors.New("request with this idempotency key is in progress")
	ErrPreviousAttempt    = errors.New("previous attempt with this idempotency key failed")

	ErrInvalidIdempotencyKey = errors.New("idempotency key must be at most 128 characters")
)

// ErrStatusMismatch is returned when a conditional status update loses to a
// concurrent change.
var ErrStatusMismatch = errors.New("status mismatch/conditional failed")

// ErrIdempotencyConflict is returned by CreateWithIdempotencyTransaction when the
// idempotency key was already used.
var ErrIdempotencyConflict = errors.New("idempotency key already exists")
