package orders

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
)

// InsufficientStockError names the product and what is actually available,
// so the storefront can tell the buyer how many are left.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.Name, e.Requested, e.Available)
}

// SubtotalMismatchError means the client's declared subtotal drifted from the
// server-side recomputation, usually a stale cart.
type SubtotalMismatchError struct {
	Declared float64
	Computed float64
}

func (e *SubtotalMismatchError) Error() string {
	return fmt.Sprintf("subtotal mismatch: declared %.2f, computed %.2f; refresh your cart",
		e.Declared, e.Computed)
}

type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}
