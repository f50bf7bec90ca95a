package models

import (
	"fmt"
)

// Error taxonomy for the sale transaction engine.
//
// ValidationError  - malformed input, no side effects.
// NotFoundError    - referenced product or sale absent, no side effects.
// InsufficientStockError, AlreadyVoidError - conflicts; any partial stock
//   effect is compensated before the error is returned.
// IntegrityError   - a compensation write itself failed. Stock may be
//   inconsistent; callers must surface this distinctly so an operator can
//   intervene. Never absorbed.

var ErrEmptyCart = &ValidationError{Field: "items", Message: "cart must contain at least one item"}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

type NotFoundError struct {
	Entity string
	ID     int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

type InsufficientStockError struct {
	ProductId int
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: available %d, requested %d",
		e.ProductId, e.Available, e.Requested)
}

type AlreadyVoidError struct {
	SaleId int
}

func (e *AlreadyVoidError) Error() string {
	return fmt.Sprintf("sale %d is already void", e.SaleId)
}

// IntegrityError wraps the failure of a compensating stock restore. The
// original error that triggered compensation is kept in Cause; Err is the
// restore failure itself.
type IntegrityError struct {
	Op        string
	SaleId    int
	ProductId int
	Cause     error
	Err       error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("stock integrity at risk during %s (sale=%d product=%d): %v (original: %v)",
		e.Op, e.SaleId, e.ProductId, e.Err, e.Cause)
}

func (e *IntegrityError) Unwrap() error { return e.Err }
