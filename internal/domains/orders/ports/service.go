package ports

import (
	"context"

	ordertypes "github.com/Apurer/cement-dealer-portal/internal/domains/orders/application/types"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
)

// Service exposes checkout, order history, fulfilment and the dashboard to adapters.
type Service interface {
	PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error)
	ListOrders(ctx context.Context, dealerID string) ([]*domain.Order, error)
	// GetOrder returns ErrNotFound for orders owned by another dealer.
	GetOrder(ctx context.Context, dealerID, orderID string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID, status string) (*domain.Order, error)
	DashboardStats(ctx context.Context, dealerID string) (*ordertypes.DashboardStats, error)
}
