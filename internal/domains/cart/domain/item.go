package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MinimumOrderQuantity is the per-line floor, in bags, enforced when a product is added.
const MinimumOrderQuantity = 100

var (
	ErrMinimumOrderQuantity = errors.New("minimum order quantity not met")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrMissingDealer        = errors.New("dealer id is required")
	ErrMissingProduct       = errors.New("product id is required")
)

// MinimumOrderQuantityError reports a line below MinimumOrderQuantity.
type MinimumOrderQuantityError struct {
	Minimum   int
	Requested int
}

func (e *MinimumOrderQuantityError) Error() string {
	return fmt.Sprintf("minimum order quantity is %d, requested %d", e.Minimum, e.Requested)
}

func (e *MinimumOrderQuantityError) Is(target error) bool {
	return target == ErrMinimumOrderQuantity
}

// Item is one product line in a dealer's cart. A dealer holds at most one line per product.
type Item struct {
	ID        string
	DealerID  string
	ProductID string
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewItem builds a cart line, enforcing the minimum order quantity.
func NewItem(id, dealerID, productID string, quantity int, now time.Time) (*Item, error) {
	dealerID = strings.TrimSpace(dealerID)
	productID = strings.TrimSpace(productID)
	if dealerID == "" {
		return nil, ErrMissingDealer
	}
	if productID == "" {
		return nil, ErrMissingProduct
	}
	if quantity < MinimumOrderQuantity {
		return nil, &MinimumOrderQuantityError{Minimum: MinimumOrderQuantity, Requested: quantity}
	}
	return &Item{
		ID:        id,
		DealerID:  dealerID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SetQuantity changes the quantity of an existing line. Only the add path enforces the MOQ.
func (i *Item) SetQuantity(quantity int, now time.Time) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	i.Quantity = quantity
	i.UpdatedAt = now
	return nil
}

// Clone returns a copy.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	clone := *i
	return &clone
}
