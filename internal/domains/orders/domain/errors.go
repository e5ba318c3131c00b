package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrCreditLimitExceeded  = errors.New("credit limit exceeded")
	ErrInvalidTransition    = errors.New("invalid order status transition")
	ErrEmptyDeliveryAddress = errors.New("delivery address is required")
)

// InsufficientStockError names the product that cannot cover its cart line.
// Available is zero when the product no longer exists.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", name, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// CreditLimitExceededError reports the credit a dealer still has against what the order needs.
type CreditLimitExceededError struct {
	Available decimal.Decimal
	Required  decimal.Decimal
}

func (e *CreditLimitExceededError) Error() string {
	return fmt.Sprintf("credit limit exceeded: available %s, required %s", e.Available.StringFixed(2), e.Required.StringFixed(2))
}

func (e *CreditLimitExceededError) Is(target error) bool {
	return target == ErrCreditLimitExceeded
}

// InvalidTransitionError is returned for moves outside the status table.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
