package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	ordertypes "github.com/Apurer/cement-dealer-portal/internal/domains/orders/application/types"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
	orderactivities "github.com/Apurer/cement-dealer-portal/internal/platform/temporal/activities/orders"
)

// RunCheckoutSequence executes the checkout activity exactly once; retries are left to
// the caller's idempotency key.
func RunCheckoutSequence(ctx workflow.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	var order domain.Order
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), orderactivities.PlaceOrderActivityName, input).Get(ctx, &order)
	if err != nil {
		logger.Warn("checkout sequence failed", "dealerId", input.DealerID, "error", err)
		return nil, err
	}
	logger.Info("checkout sequence committed", "orderId", order.ID, "total", order.TotalAmount.StringFixed(2))
	return &order, nil
}
