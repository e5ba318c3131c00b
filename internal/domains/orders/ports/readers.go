package ports

import (
	"context"

	cartdomain "github.com/Apurer/cement-dealer-portal/internal/domains/cart/domain"
	catalogdomain "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/domain"
	dealerdomain "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/domain"
	"github.com/Apurer/cement-dealer-portal/internal/shared/projection"
)

// DealerReader loads credit figures. Implemented by the dealers repository.
type DealerReader interface {
	GetByID(ctx context.Context, id string) (*dealerdomain.Dealer, error)
}

// CartReader loads the lines being checked out. Implemented by the cart repository.
type CartReader interface {
	ListByDealer(ctx context.Context, dealerID string) ([]*cartdomain.Item, error)
}

// ProductReader loads current prices and stock. Implemented by the catalog repository.
type ProductReader interface {
	GetByID(ctx context.Context, id string) (*projection.Projection[*catalogdomain.Product], error)
}
