package checkout

import (
	"errors"
	"fmt"
)

// Kind classifies the outcome of PlaceOrder.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindStockConflict
	KindTransaction
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindStockConflict:
		return "stock_conflict"
	default:
		return "transaction"
	}
}

// ValidationError rejects the input before any transaction is opened.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("checkout validation failed: %d field(s)", len(e.Fields))
}

// ErrEmptyCart is returned for an empty snapshot; callers send the customer
// back to the cart.
var ErrEmptyCart = &ValidationError{Fields: map[string]string{"cart": "your cart is empty"}}

// StockConflictError names the product whose conditional decrement matched
// no row. The whole order was rolled back.
type StockConflictError struct {
	ProductID int64
	Name      string
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("%s is no longer available in the requested quantity", e.Name)
}

// TransactionError wraps an infrastructure failure. Its detail is for logs only.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("checkout %s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// KindOf maps any error returned by PlaceOrder to its Kind. Errors outside the
// closed set count as transaction failures.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var (
		ve *ValidationError
		se *StockConflictError
	)
	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &se):
		return KindStockConflict
	default:
		return KindTransaction
	}
}
