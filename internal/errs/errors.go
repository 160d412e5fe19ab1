package errs

import (
	"errors"
	"fmt"
)

// Shared error kinds surfaced by the stores and services. HTTP handlers map
// these onto status codes; everything else is treated as an internal error.
var (
	ErrNotFound               = errors.New("not found")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrInvalidTransition      = errors.New("invalid order status transition")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrConcurrentModification = errors.New("lost a concurrent write, retry")
	ErrTimeout                = errors.New("store call timed out")
	ErrProductReferenced      = errors.New("product still referenced by carts or open orders")
)

// InsufficientStockError names the product that blocked a stock decrement so
// the client can highlight the offending cart line.
type InsufficientStockError struct {
	ProductID string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}

// AsInsufficientStock unwraps err into an InsufficientStockError if there is one.
func AsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var ise *InsufficientStockError
	if errors.As(err, &ise) {
		return ise, true
	}
	return nil, false
}

// Retriable reports whether the caller may safely retry the failed request.
func Retriable(err error) bool {
	return errors.Is(err, ErrConcurrentModification) || errors.Is(err, ErrTimeout)
}
