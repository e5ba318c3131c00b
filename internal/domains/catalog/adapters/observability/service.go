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

	catalogdomain "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/ports"
	"github.com/Apurer/cement-dealer-portal/internal/shared/projection"
)

const tracerName = "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/adapters/observability/service"

// Service decorates the catalog service with tracing, logging, and metrics.
type Service struct {
	inner   catalogports.Service
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

// New wraps the core catalog service.
func New(inner catalogports.Service, opts ...Option) catalogports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
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
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func (s *Service) ListProducts(ctx context.Context, filter catalogports.Filter) ([]*projection.Projection[*catalogdomain.Product], error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListProducts", trace.WithAttributes(attribute.String("catalog.tag", filter.Tag)))
	defer span.End()
	products, err := s.inner.ListProducts(ctx, filter)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list products")
	}
	span.SetAttributes(attribute.Int("catalog.result.count", len(products)))
	return products, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (*projection.Projection[*catalogdomain.Product], error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.GetProduct", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()
	product, err := s.inner.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, catalogports.ErrNotFound) {
			return nil, err
		}
		return nil, s.handleError(ctx, span, err, "failed to get product", slog.String("product_id", id))
	}
	return product, nil
}

func (s *Service) Seed(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.Seed")
	defer span.End()
	added, err := s.inner.Seed(ctx)
	if err != nil {
		return added, s.handleError(ctx, span, err, "failed to seed catalog", slog.Int("added", added))
	}
	s.metrics.recordSeeded(ctx, added)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "catalog seeded", slog.Int("added", added))
	return added, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

type serviceMetrics struct {
	seeded metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	seeded, _ := m.Int64Counter("catalog.service.products_seeded", metric.WithDescription("Number of products inserted by seeding"))
	return serviceMetrics{seeded: seeded}
}

func (m serviceMetrics) recordSeeded(ctx context.Context, n int) {
	if m.seeded != nil && n > 0 {
		m.seeded.Add(ctx, int64(n))
	}
}

var _ catalogports.Service = (*Service)(nil)
