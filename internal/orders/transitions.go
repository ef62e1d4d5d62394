package orders

import "fmt"

// Transition is a conditional status change: it applies only while the order still
// has the Expected* statuses.
type Transition struct {
	ExpectedPayment string
	ExpectedOrder   string
	NewPayment      string
	NewOrder        string
	Event           OrderEvent
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case StatusNew, StatusContacted, StatusPaid, StatusShipped, StatusDelivered, StatusCanceled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed out of s.
func IsTerminal(s string) bool {
	return s == StatusDelivered || s == StatusCanceled
}

// CanShip reports whether the mark-shipped action is available for o.
func CanShip(o Order) bool {
	return CheckMarkShipped(o) == nil
}

// CheckMarkPaid validates mark-paid and returns the order status to move to.
// Orders still in new or contacted move to paid; later statuses are kept.
func CheckMarkPaid(o Order) (string, error) {
	if o.PaymentStatus == PaymentPaid {
		return "", ErrAlreadyPaid
	}
	if o.OrderStatus == StatusCanceled {
		return "", fmt.Errorf("%w: order is canceled", ErrInvalidTransition)
	}
	switch o.OrderStatus {
	case StatusNew, StatusContacted:
		return StatusPaid, nil
	default:
		return o.OrderStatus, nil
	}
}

// CheckMarkShipped rejects shipping unpaid orders and orders that are already
// shipped, delivered or canceled.
func CheckMarkShipped(o Order) error {
	switch o.OrderStatus {
	case StatusShipped, StatusDelivered, StatusCanceled:
		return fmt.Errorf("%w: order is %s", ErrInvalidTransition, o.OrderStatus)
	}
	if o.PaymentStatus != PaymentPaid {
		return ErrNotPaid
	}
	return nil
}

// CheckStatusChange validates a free-form admin status change to to.
func CheckStatusChange(o Order, to string) error {
	if !ValidOrderStatus(to) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if IsTerminal(o.OrderStatus) {
		return fmt.Errorf("%w: order is %s", ErrInvalidTransition, o.OrderStatus)
	}
	switch to {
	case StatusShipped:
		return CheckMarkShipped(o)
	case StatusPaid:
		if o.PaymentStatus != PaymentPaid {
			return ErrNotPaid
		}
	}
	return nil
}
