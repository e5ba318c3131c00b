package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	dealerports "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/ports"
	ordersapp "github.com/Apurer/cement-dealer-portal/internal/domains/orders/application"
	ordertypes "github.com/Apurer/cement-dealer-portal/internal/domains/orders/application/types"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
	ordersports "github.com/Apurer/cement-dealer-portal/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/cement-dealer-portal/internal/domains/orders/adapters/observability/service"

// Service decorates the orders service with tracing, logging, and metrics.
type Service struct {
	inner   ordersports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core orders service.
func New(inner ordersports.Service, opts ...Option) ordersports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.PlaceOrder", trace.WithAttributes(
		attribute.String("dealer.id", input.DealerID),
		attribute.String("order.payment_method", input.PaymentMethod),
		attribute.Bool("order.idempotent", input.IdempotencyKey != ""),
	))
	defer span.End()
	order, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, rejectionReason(err))
		return nil, s.handleError(ctx, span, err, "checkout failed", slog.String("dealer_id", input.DealerID))
	}
	span.SetAttributes(
		attribute.String("order.id", order.ID),
		attribute.String("order.number", order.OrderNumber),
		attribute.String("order.total", order.TotalAmount.StringFixed(2)),
	)
	s.metrics.recordPlaced(ctx, order.PaymentMethod)
	s.logInfo(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.String("order_number", order.OrderNumber),
		slog.String("dealer_id", order.DealerID),
		slog.String("total", order.TotalAmount.StringFixed(2)),
		slog.String("payment_method", string(order.PaymentMethod)),
	)
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, dealerID string) ([]*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.ListOrders", trace.WithAttributes(attribute.String("dealer.id", dealerID)))
	defer span.End()
	orders, err := s.inner.ListOrders(ctx, dealerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders", slog.String("dealer_id", dealerID))
	}
	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	return orders, nil
}

func (s *Service) GetOrder(ctx context.Context, dealerID, orderID string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.GetOrder", trace.WithAttributes(
		attribute.String("dealer.id", dealerID),
		attribute.String("order.id", orderID),
	))
	defer span.End()
	order, err := s.inner.GetOrder(ctx, dealerID, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get order", slog.String("dealer_id", dealerID), slog.String("order_id", orderID))
	}
	return order, nil
}

func (s *Service) UpdateStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.UpdateStatus", trace.WithAttributes(
		attribute.String("order.id", orderID),
		attribute.String("order.status", status),
	))
	defer span.End()
	order, err := s.inner.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status", slog.String("order_id", orderID), slog.String("status", status))
	}
	s.metrics.recordStatusChanged(ctx, order.Status)
	s.logInfo(ctx, "order status changed", slog.String("order_id", order.ID), slog.String("status", string(order.Status)))
	return order, nil
}

func (s *Service) DashboardStats(ctx context.Context, dealerID string) (*ordertypes.DashboardStats, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.DashboardStats", trace.WithAttributes(attribute.String("dealer.id", dealerID)))
	defer span.End()
	stats, err := s.inner.DashboardStats(ctx, dealerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to build dashboard", slog.String("dealer_id", dealerID))
	}
	return stats, nil
}

// handleError logs business rejections at info level and leaves the span status untouched for them.
func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if rejectionReason(err) != "" {
		s.logInfo(ctx, msg, append(attrs, slog.String("reason", err.Error()))...)
		return err
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrCreditLimitExceeded):
		return "credit_limit"
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ordersapp.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ordersports.ErrIdempotencyConflict):
		return "idempotency_conflict"
	case errors.Is(err, ordersports.ErrNotFound), errors.Is(err, dealerports.ErrNotFound):
		return "not_found"
	}
	return ""
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

type serviceMetrics struct {
	placed        metric.Int64Counter
	rejected      metric.Int64Counter
	statusChanged metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	placed, _ := m.Int64Counter("orders.service.orders_placed", metric.WithDescription("Number of orders placed"))
	rejected, _ := m.Int64Counter("orders.service.checkout_rejected", metric.WithDescription("Number of checkouts that did not commit"))
	changed, _ := m.Int64Counter("orders.service.status_changed", metric.WithDescription("Number of order status transitions"))
	return serviceMetrics{placed: placed, rejected: rejected, statusChanged: changed}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, method domain.PaymentMethod) {
	if m.placed != nil {
		m.placed.Add(ctx, 1, metric.WithAttributes(attribute.String("payment_method", string(method))))
	}
}

func (m serviceMetrics) recordRejected(ctx context.Context, reason string) {
	if reason == "" {
		reason = "error"
	}
	if m.rejected != nil {
		m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}

func (m serviceMetrics) recordStatusChanged(ctx context.Context, status domain.Status) {
	if m.statusChanged != nil {
		m.statusChanged.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status))))
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ ordersports.Service = (*Service)(nil)
