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

	cartapp "github.com/Apurer/cement-dealer-portal/internal/domains/cart/application"
	carttypes "github.com/Apurer/cement-dealer-portal/internal/domains/cart/application/types"
	cartdomain "github.com/Apurer/cement-dealer-portal/internal/domains/cart/domain"
	cartports "github.com/Apurer/cement-dealer-portal/internal/domains/cart/ports"
	catalogports "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/ports"
)

const tracerName = "github.com/Apurer/cement-dealer-portal/internal/domains/cart/adapters/observability/service"

// Service decorates the cart service with tracing, logging, and metrics.
type Service struct {
	inner   cartports.Service
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

// New wraps the core cart service.
func New(inner cartports.Service, opts ...Option) cartports.Service {
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

func (s *Service) View(ctx context.Context, dealerID string) ([]carttypes.Line, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.View", trace.WithAttributes(attribute.String("dealer.id", dealerID)))
	defer span.End()
	lines, err := s.inner.View(ctx, dealerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to view cart", slog.String("dealer_id", dealerID))
	}
	span.SetAttributes(attribute.Int("cart.lines", len(lines)))
	return lines, nil
}

func (s *Service) AddItem(ctx context.Context, dealerID, productID string, quantity int) (*cartdomain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.AddItem", trace.WithAttributes(
		attribute.String("dealer.id", dealerID),
		attribute.String("product.id", productID),
		attribute.Int("cart.quantity", quantity),
	))
	defer span.End()
	item, err := s.inner.AddItem(ctx, dealerID, productID, quantity)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add cart item", slog.String("dealer_id", dealerID), slog.String("product_id", productID))
	}
	s.metrics.recordAdded(ctx)
	s.logInfo(ctx, "cart item added", slog.String("dealer_id", dealerID), slog.String("product_id", productID), slog.Int("quantity", item.Quantity))
	return item, nil
}

func (s *Service) UpdateQuantity(ctx context.Context, dealerID, itemID string, quantity int) (*cartdomain.Item, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.UpdateQuantity", trace.WithAttributes(
		attribute.String("dealer.id", dealerID),
		attribute.String("cart.item_id", itemID),
		attribute.Int("cart.quantity", quantity),
	))
	defer span.End()
	item, err := s.inner.UpdateQuantity(ctx, dealerID, itemID, quantity)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update cart item", slog.String("dealer_id", dealerID), slog.String("item_id", itemID))
	}
	return item, nil
}

func (s *Service) RemoveItem(ctx context.Context, dealerID, itemID string) error {
	ctx, span := s.tracer.Start(ctx, "CartService.RemoveItem", trace.WithAttributes(
		attribute.String("dealer.id", dealerID),
		attribute.String("cart.item_id", itemID),
	))
	defer span.End()
	if err := s.inner.RemoveItem(ctx, dealerID, itemID); err != nil {
		return s.handleError(ctx, span, err, "failed to remove cart item", slog.String("dealer_id", dealerID), slog.String("item_id", itemID))
	}
	return nil
}

func (s *Service) Clear(ctx context.Context, dealerID string) error {
	ctx, span := s.tracer.Start(ctx, "CartService.Clear", trace.WithAttributes(attribute.String("dealer.id", dealerID)))
	defer span.End()
	if err := s.inner.Clear(ctx, dealerID); err != nil {
		return s.handleError(ctx, span, err, "failed to clear cart", slog.String("dealer_id", dealerID))
	}
	return nil
}

// handleError keeps expected rejections out of the error log.
func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if isRejection(err) {
		s.metrics.recordRejected(ctx)
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

func isRejection(err error) bool {
	return errors.Is(err, cartdomain.ErrMinimumOrderQuantity) ||
		errors.Is(err, cartapp.ErrInvalidInput) ||
		errors.Is(err, cartports.ErrNotFound) ||
		errors.Is(err, catalogports.ErrNotFound)
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
	itemsAdded metric.Int64Counter
	rejected   metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	added, _ := m.Int64Counter("cart.service.items_added", metric.WithDescription("Number of cart lines added or replaced"))
	rejected, _ := m.Int64Counter("cart.service.rejected", metric.WithDescription("Number of cart requests rejected by business rules"))
	return serviceMetrics{itemsAdded: added, rejected: rejected}
}

func (m serviceMetrics) recordAdded(ctx context.Context) {
	if m.itemsAdded != nil {
		m.itemsAdded.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordRejected(ctx context.Context) {
	if m.rejected != nil {
		m.rejected.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ cartports.Service = (*Service)(nil)
