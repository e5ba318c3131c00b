package workflows

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	ordertypes "github.com/Apurer/cement-dealer-portal/internal/domains/orders/application/types"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/ports"
)

func TestBuildCheckoutWorkflowID(t *testing.T) {
	input := ordertypes.PlaceOrderInput{DealerID: "d-1", IdempotencyKey: " key-1 "}
	first := buildCheckoutWorkflowID(input, "trace-a")
	second := buildCheckoutWorkflowID(input, "trace-b")
	assert.Equal(t, first, second)
	assert.Regexp(t, `^order-checkout-idem-[0-9a-f]{16}$`, first)

	other := buildCheckoutWorkflowID(ordertypes.PlaceOrderInput{DealerID: "d-2", IdempotencyKey: "key-1"}, "trace-a")
	assert.NotEqual(t, first, other)

	assert.Equal(t, "order-checkout-d-1-trace-a", buildCheckoutWorkflowID(ordertypes.PlaceOrderInput{DealerID: "d-1"}, "trace-a"))
}

func TestWorkflowTraceComponent(t *testing.T) {
	assert.Regexp(t, `^fallback-\d+$`, workflowTraceComponent(context.Background()))

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID}))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", workflowTraceComponent(ctx))
}

type stubService struct {
	ports.Service
	input ordertypes.PlaceOrderInput
}

func (s *stubService) PlaceOrder(_ context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error) {
	s.input = input
	return &domain.Order{ID: "o-1"}, nil
}

func TestInlineCheckoutWorkflows(t *testing.T) {
	svc := &stubService{}
	order, err := NewInlineCheckoutWorkflows(svc).PlaceOrder(context.Background(), ordertypes.PlaceOrderInput{DealerID: "d-1"})
	require.NoError(t, err)
	assert.Equal(t, "o-1", order.ID)
	assert.Equal(t, "d-1", svc.input.DealerID)

	_, err = (*InlineCheckoutWorkflows)(nil).PlaceOrder(context.Background(), ordertypes.PlaceOrderInput{})
	require.Error(t, err)
	_, err = (*TemporalCheckoutWorkflows)(nil).PlaceOrder(context.Background(), ordertypes.PlaceOrderInput{})
	require.Error(t, err)
}
