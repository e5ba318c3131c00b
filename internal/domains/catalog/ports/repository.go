package ports

import (
	"context"
	"errors"

	"github.com/Apurer/cement-dealer-portal/internal/domains/catalog/domain"
	"github.com/Apurer/cement-dealer-portal/internal/shared/projection"
)

var ErrNotFound = errors.New("product not found")

// Filter narrows a catalog listing. The zero value lists everything.
type Filter struct {
	Tag string
}

type Repository interface {
	Save(ctx context.Context, product *domain.Product) (*projection.Projection[*domain.Product], error)
	GetByID(ctx context.Context, id string) (*projection.Projection[*domain.Product], error)
	// List returns products ordered by name.
	List(ctx context.Context, filter Filter) ([]*projection.Projection[*domain.Product], error)
	Count(ctx context.Context) (int64, error)
}
