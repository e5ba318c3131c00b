package ports

import (
	"context"

	catalogdomain "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/domain"
	"github.com/Apurer/cement-dealer-portal/internal/shared/projection"
)

// ProductReader resolves the products referenced by cart lines.
// Implemented by the catalog repository.
type ProductReader interface {
	GetByID(ctx context.Context, id string) (*projection.Projection[*catalogdomain.Product], error)
}
