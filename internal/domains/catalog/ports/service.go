package ports

import (
	"context"

	"github.com/Apurer/cement-dealer-portal/internal/domains/catalog/domain"
	"github.com/Apurer/cement-dealer-portal/internal/shared/projection"
)

// Service exposes catalog use cases to adapters.
type Service interface {
	ListProducts(ctx context.Context, filter Filter) ([]*projection.Projection[*domain.Product], error)
	GetProduct(ctx context.Context, id string) (*projection.Projection[*domain.Product], error)
	// Seed inserts the default catalog when it is empty and reports how many products were added.
	Seed(ctx context.Context) (int, error)
}
