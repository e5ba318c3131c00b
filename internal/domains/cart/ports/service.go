package ports

import (
	"context"

	carttypes "github.com/Apurer/cement-dealer-portal/internal/domains/cart/application/types"
	"github.com/Apurer/cement-dealer-portal/internal/domains/cart/domain"
)

// Service exposes cart management to adapters.
type Service interface {
	View(ctx context.Context, dealerID string) ([]carttypes.Line, error)
	AddItem(ctx context.Context, dealerID, productID string, quantity int) (*domain.Item, error)
	UpdateQuantity(ctx context.Context, dealerID, itemID string, quantity int) (*domain.Item, error)
	RemoveItem(ctx context.Context, dealerID, itemID string) error
	Clear(ctx context.Context, dealerID string) error
}
