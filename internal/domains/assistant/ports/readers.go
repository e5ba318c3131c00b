package ports

import (
	"context"

	catalogdomain "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/ports"
	dealerdomain "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/domain"
	orderdomain "github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
	"github.com/Apurer/cement-dealer-portal/internal/shared/projection"
)

// DealerReader is implemented by the dealers repository.
type DealerReader interface {
	GetByID(ctx context.Context, id string) (*dealerdomain.Dealer, error)
}

// ProductLister is implemented by the catalog service.
type ProductLister interface {
	ListProducts(ctx context.Context, filter catalogports.Filter) ([]*projection.Projection[*catalogdomain.Product], error)
}

// OrderHistory is implemented by the orders service; orders come newest first.
type OrderHistory interface {
	ListOrders(ctx context.Context, dealerID string) ([]*orderdomain.Order, error)
}
