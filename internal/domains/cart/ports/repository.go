package ports

import (
	"context"
	"errors"

	"github.com/Apurer/cement-dealer-portal/internal/domains/cart/domain"
)

var ErrNotFound = errors.New("cart item not found")

// Repository persists cart lines. Every operation is scoped to the owning dealer.
type Repository interface {
	// Upsert stores item, replacing the quantity of an existing line for the same product.
	Upsert(ctx context.Context, item *domain.Item) (*domain.Item, error)
	// GetByID returns ErrNotFound for absent lines and for lines owned by another dealer.
	GetByID(ctx context.Context, dealerID, itemID string) (*domain.Item, error)
	Update(ctx context.Context, item *domain.Item) (*domain.Item, error)
	// ListByDealer returns lines in the order they were first added.
	ListByDealer(ctx context.Context, dealerID string) ([]*domain.Item, error)
	// Delete and Clear succeed when nothing matches.
	Delete(ctx context.Context, dealerID, itemID string) error
	Clear(ctx context.Context, dealerID string) error
}
