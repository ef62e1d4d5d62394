package orders

import (
	"strings"
	"time"

	"github.com/imrishuroy/go-shop-admin/internal/money"
)

// Payment statuses. pending -> paid is one-way.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

// Order statuses
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusPaid      = "paid"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCanceled  = "canceled"
)

// Event types recorded in an order's history.
const (
	EventCreated       = "created"
	EventPaid          = "payment_confirmed"
	EventShipped       = "shipped"
	EventStatusChanged = "status_changed"
)

// Customer is copied onto the order at creation; later edits to the customer do not
// touch existing orders.
type Customer struct {
	Name  string `json:"name" dynamodbav:"name"`
	Email string `json:"email,omitempty" dynamodbav:"email,omitempty"`
	Phone string `json:"phone,omitempty" dynamodbav:"phone,omitempty"`
}

// OrderItem snapshots the product at order time.
type OrderItem struct {
	ProductID   string      `json:"product_id" dynamodbav:"product_id"`
	ProductName string      `json:"product_name" dynamodbav:"product_name"`
	UnitPrice   money.Money `json:"unit_price" dynamodbav:"unit_price"`
	Quantity    int         `json:"quantity" dynamodbav:"quantity"`
	Subtotal    money.Money `json:"subtotal" dynamodbav:"subtotal"`
}

// OrderEvent is one entry of the order history.
type OrderEvent struct {
	Type        string    `json:"type" dynamodbav:"type"`
	Description string    `json:"description" dynamodbav:"description"`
	CreatedBy   string    `json:"created_by,omitempty" dynamodbav:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
}

// Order represents the item stored in the Orders DynamoDB table.
type Order struct {
	OrderID         string       `json:"id" dynamodbav:"order_id"` // PK
	OrderNumber     string       `json:"order_number" dynamodbav:"order_number"`
	Customer        Customer     `json:"customer" dynamodbav:"customer"`
	Items           []OrderItem  `json:"items" dynamodbav:"items"`
	TotalAmount     money.Money  `json:"total_amount" dynamodbav:"total_amount"`
	PaymentStatus   string       `json:"payment_status" dynamodbav:"payment_status"`
	OrderStatus     string       `json:"order_status" dynamodbav:"order_status"`
	Notes           string       `json:"notes,omitempty" dynamodbav:"notes,omitempty"`
	ShippingAddress string       `json:"shipping_address,omitempty" dynamodbav:"shipping_address,omitempty"`
	Events          []OrderEvent `json:"events" dynamodbav:"events"`
	PaidAt          *time.Time   `json:"paid_at,omitempty" dynamodbav:"paid_at,omitempty"`
	ShippedAt       *time.Time   `json:"shipped_at,omitempty" dynamodbav:"shipped_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at" dynamodbav:"updated_at"`
}

// OrderNumber derives the customer-facing number from the order id: "ORD-" plus the
// first 8 characters, upper case.
func OrderNumber(orderID string) string {
	short := strings.ReplaceAll(orderID, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	return "ORD-" + strings.ToUpper(short)
}

// Total sums the line subtotals.
func Total(items []OrderItem) money.Money {
	total := money.Zero
	for _, it := range items {
		total = total.Plus(it.Subtotal)
	}
	return total
}

// LineInput is a requested order line before product snapshots are taken.
type LineInput struct {
	ProductID string
	Quantity  int
}

// CreateInput is what the storefront submits.
type CreateInput struct {
	Customer        Customer
	Items           []LineInput
	Notes           string
	ShippingAddress string
}

// Stats are the dashboard counters.
type Stats struct {
	TotalOrders     int `json:"total_orders"`
	NewOrders       int `json:"new_orders"`
	PendingPayment  int `json:"pending_payment"`
	PendingShipment int `json:"pending_shipment"`
}

// MaxIdempotencyKeyLength bounds the storefront Idempotency-Key header.
const MaxIdempotencyKeyLength = 128

const clientKeyPrefix = "client:"

// PaidMessage is the SQS body that asks the stock worker to decrement inventory for
// a paid order.
type PaidMessage struct {
	OrderID       string `json:"order_id"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// ListFilter narrows List results. Empty fields match everything.
type ListFilter struct {
	PaymentStatus string
	OrderStatus   string
}
