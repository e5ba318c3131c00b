package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	ordertypes "github.com/Apurer/cement-dealer-portal/internal/domains/orders/application/types"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
	ordersports "github.com/Apurer/cement-dealer-portal/internal/domains/orders/ports"
)

// PlaceOrderActivityName commits a checkout through the orders service.
const PlaceOrderActivityName = "orders.activities.PlaceOrder"

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service ordersports.Service
}

// NewActivities wires the orders service into the Temporal activities bundle.
func NewActivities(service ordersports.Service) *Activities {
	return &Activities{service: service}
}

// PlaceOrder runs one checkout. Business rejections are returned as non-retryable
// application errors so the caller can rebuild them with DecodeError.
func (a *Activities) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("place order activity not initialized", "dealerId", input.DealerID)
		return nil, errors.New("place order activity not initialized")
	}
	logger.Info("PlaceOrder activity started", "dealerId", input.DealerID, "paymentMethod", input.PaymentMethod)
	order, err := a.service.PlaceOrder(ctx, input)
	if err != nil {
		logger.Warn("PlaceOrder activity rejected", "dealerId", input.DealerID, "error", err)
		return nil, EncodeError(err)
	}
	logger.Info("PlaceOrder activity completed", "orderId", order.ID, "orderNumber", order.OrderNumber)
	return order, nil
}
