package catalog

// MaxStock is the largest stock a product may hold.
const MaxStock = 1_000_000

// AdjustStock computes the stock that results from applying adj to current.
// add and remove need a positive quantity; remove may not go below zero; set
// accepts any quantity in [0, MaxStock]. An add that would pass MaxStock is rejected.
func AdjustStock(current int, adj Adjustment) (int, error) {
	switch adj.Type {
	case AdjustAdd:
		if adj.Quantity <= 0 {
			return current, ErrInvalidQuantity
		}
		if adj.Quantity > MaxStock-current {
			return current, ErrStockTooLarge
		}
		return current + adj.Quantity, nil
	case AdjustRemove:
		if adj.Quantity <= 0 {
			return current, ErrInvalidQuantity
		}
		next := current - adj.Quantity
		if next < 0 {
			return current, ErrNegativeStock
		}
		return next, nil
	case AdjustSet:
		if adj.Quantity < 0 {
			return current, ErrNegativeStock
		}
		if adj.Quantity > MaxStock {
			return current, ErrStockTooLarge
		}
		return adj.Quantity, nil
	default:
		return current, ErrInvalidAdjustment
	}
}

// ConsumeStock takes qty units for a paid order. Stock never drops below zero;
// the units that could not be covered are returned as shortfall.
func ConsumeStock(current, qty int) (next, shortfall int) {
	if qty <= 0 {
		return current, 0
	}
	if qty > current {
		return 0, qty - current
	}
	return current - qty, 0
}
