package orders

import (
	"go.temporal.io/sdk/workflow"

	ordertypes "github.com/Apurer/cement-dealer-portal/internal/domains/orders/application/types"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
	"github.com/Apurer/cement-dealer-portal/internal/platform/temporal/sequences"
)

const (
	// CheckoutTaskQueue is the task queue checkout workflows and activities listen on.
	CheckoutTaskQueue = "ORDER_CHECKOUT"
	// CheckoutWorkflowName is the registered name of CheckoutWorkflow.
	CheckoutWorkflowName = "orders.workflows.Checkout"
)

// CheckoutWorkflowInput carries the checkout command and the trace it was started from.
type CheckoutWorkflowInput struct {
	Command ordertypes.PlaceOrderInput
	TraceID string
}

// CheckoutWorkflow converts a dealer's cart into an order.
func CheckoutWorkflow(ctx workflow.Context, input CheckoutWorkflowInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("checkout workflow started", "dealerId", input.Command.DealerID, "traceId", input.TraceID)
	order, err := sequences.RunCheckoutSequence(ctx, input.Command)
	if err != nil {
		return nil, err
	}
	logger.Info("checkout workflow completed", "orderId", order.ID)
	return order, nil
}
