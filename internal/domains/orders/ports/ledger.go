package ports

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrConflict means state read during checkout changed before it could be committed.
	ErrConflict = errors.New("checkout state changed concurrently")
)

// CartLine identifies a cart row consumed by a checkout.
type CartLine struct {
	ItemID    string
	ProductID string
	Quantity  int
}

// CheckoutCommit is everything a checkout writes in one atomic unit.
type CheckoutCommit struct {
	Order *domain.Order
	// CartLines must match the dealer's cart exactly when the commit runs.
	CartLines []CartLine
	// CreditDraw is added to the dealer's outstanding balance; zero for cash orders.
	CreditDraw decimal.Decimal
}

// StatusChange is the outcome of a stored transition.
type StatusChange struct {
	Order    *domain.Order
	Previous domain.Status
}

// Ledger stores orders and applies the cross-entity mutations of checkout and cancellation.
type Ledger interface {
	// Commit re-validates the snapshot against locked state, then decrements stock,
	// draws credit, inserts the order and deletes the cart lines. Any drift yields ErrConflict
	// and no mutation.
	Commit(ctx context.Context, commit CheckoutCommit) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// ListByDealer returns the dealer's orders newest first.
	ListByDealer(ctx context.Context, dealerID string) ([]*domain.Order, error)
	// Transition moves an order along the status table. Cancelling restores stock and,
	// for account orders, releases the drawn credit.
	Transition(ctx context.Context, id string, next domain.Status, now time.Time) (*StatusChange, error)
}
