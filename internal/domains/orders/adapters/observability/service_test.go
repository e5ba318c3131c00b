package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	ordertypes "github.com/Apurer/cement-dealer-portal/internal/domains/orders/application/types"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
	ordersports "github.com/Apurer/cement-dealer-portal/internal/domains/orders/ports"
)

type stubService struct {
	ordersports.Service
	order *domain.Order
	err   error
}

func (s *stubService) PlaceOrder(context.Context, ordertypes.PlaceOrderInput) (*domain.Order, error) {
	return s.order, s.err
}

type harness struct {
	svc    ordersports.Service
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	logs   *bytes.Buffer
}

func newHarness(inner ordersports.Service) harness {
	spans := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()
	logs := &bytes.Buffer{}
	svc := New(inner,
		WithTracer(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)).Tracer("test")),
		WithMeter(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")),
		WithLogger(slog.New(slog.NewTextHandler(logs, nil))),
	)
	return harness{svc: svc, spans: spans, reader: reader, logs: logs}
}

func (h harness) counter(t *testing.T, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, h.reader.Collect(context.Background(), &rm))
	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestPlaceOrder_RecordsSuccess(t *testing.T) {
	h := newHarness(&stubService{order: &domain.Order{ID: "o-1", OrderNumber: "ORD-1", PaymentMethod: domain.PaymentCOD}})

	_, err := h.svc.PlaceOrder(context.Background(), ordertypes.PlaceOrderInput{DealerID: "d-1", PaymentMethod: "cod"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), h.counter(t, "orders.service.orders_placed"))
	ended := h.spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "OrdersService.PlaceOrder", ended[0].Name())
	assert.Contains(t, h.logs.String(), "order placed")
}

func TestPlaceOrder_RejectionIsNotASpanError(t *testing.T) {
	h := newHarness(&stubService{err: &domain.InsufficientStockError{ProductID: "p", Requested: 200, Available: 150}})

	_, err := h.svc.PlaceOrder(context.Background(), ordertypes.PlaceOrderInput{DealerID: "d-1"})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(1), h.counter(t, "orders.service.checkout_rejected"))
	assert.NotEqual(t, codes.Error, h.spans.Ended()[0].Status().Code)
	assert.Contains(t, h.logs.String(), "level=INFO")
}

func TestPlaceOrder_InfrastructureErrorMarksSpan(t *testing.T) {
	h := newHarness(&stubService{err: errors.New("connection refused")})

	_, err := h.svc.PlaceOrder(context.Background(), ordertypes.PlaceOrderInput{DealerID: "d-1"})
	require.Error(t, err)

	assert.Equal(t, codes.Error, h.spans.Ended()[0].Status().Code)
	assert.Contains(t, h.logs.String(), "level=ERROR")
}
