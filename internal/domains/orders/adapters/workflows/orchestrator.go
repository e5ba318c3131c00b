package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	ordertypes "github.com/Apurer/cement-dealer-portal/internal/domains/orders/application/types"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/cement-dealer-portal/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/cement-dealer-portal/internal/platform/temporal/workflows/orders"
)

var (
	_ ports.CheckoutWorkflows = (*TemporalCheckoutWorkflows)(nil)
	_ ports.CheckoutWorkflows = (*InlineCheckoutWorkflows)(nil)
)

// TemporalCheckoutWorkflows runs checkouts as Temporal workflows.
type TemporalCheckoutWorkflows struct {
	client    client.Client
	taskQueue string
}

func NewTemporalCheckoutWorkflows(c client.Client) *TemporalCheckoutWorkflows {
	return &TemporalCheckoutWorkflows{client: c, taskQueue: orderworkflows.CheckoutTaskQueue}
}

// PlaceOrder starts the checkout workflow and waits for its result. A retried request with the
// same idempotency key attaches to the workflow already started for it.
func (o *TemporalCheckoutWorkflows) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal checkout workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildCheckoutWorkflowID(input, traceComponent)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.CheckoutWorkflowName,
		orderworkflows.CheckoutWorkflowInput{Command: input, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) || strings.TrimSpace(input.IdempotencyKey) == "" {
			return nil, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var order domain.Order
	if err := run.Get(ctx, &order); err != nil {
		return nil, orderactivities.DecodeError(err)
	}
	return &order, nil
}

// InlineCheckoutWorkflows runs the checkout in-process when no Temporal cluster is configured.
type InlineCheckoutWorkflows struct {
	service ports.Service
}

func NewInlineCheckoutWorkflows(service ports.Service) *InlineCheckoutWorkflows {
	return &InlineCheckoutWorkflows{service: service}
}

func (o *InlineCheckoutWorkflows) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline checkout workflows not configured")
	}
	return o.service.PlaceOrder(ctx, input)
}

func buildCheckoutWorkflowID(input ordertypes.PlaceOrderInput, traceComponent string) string {
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" {
		return fmt.Sprintf("order-checkout-idem-%s", hashIdempotencyKey(input.DealerID, key))
	}
	return fmt.Sprintf("order-checkout-%s-%s", input.DealerID, traceComponent)
}

func hashIdempotencyKey(dealerID, key string) string {
	sum := sha256.Sum256([]byte(dealerID + ":" + key))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
