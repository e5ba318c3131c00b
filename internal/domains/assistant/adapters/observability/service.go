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

	assistantapp "github.com/Apurer/cement-dealer-portal/internal/domains/assistant/application"
	assistanttypes "github.com/Apurer/cement-dealer-portal/internal/domains/assistant/application/types"
	assistantports "github.com/Apurer/cement-dealer-portal/internal/domains/assistant/ports"
)

const tracerName = "github.com/Apurer/cement-dealer-portal/internal/domains/assistant/adapters/observability/service"

// Service decorates the assistant with tracing, logging, and metrics.
type Service struct {
	inner   assistantports.Service
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

func New(inner assistantports.Service, opts ...Option) assistantports.Service {
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

func (s *Service) Reply(ctx context.Context, dealerID, message string) (*assistanttypes.Reply, error) {
	ctx, span := s.tracer.Start(ctx, "AssistantService.Reply", trace.WithAttributes(
		attribute.String("dealer.id", dealerID),
		attribute.Int("chat.message_length", len(message)),
	))
	defer span.End()

	reply, err := s.inner.Reply(ctx, dealerID, message)
	if err != nil {
		if errors.Is(err, assistantapp.ErrRateLimited) || errors.Is(err, assistantapp.ErrInvalidInput) {
			s.metrics.add(ctx, s.metrics.rejected)
			s.logger.LogAttrs(ctx, slog.LevelInfo, "chat request rejected",
				slog.String("dealer_id", dealerID), slog.String("reason", err.Error()))
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.LogAttrs(ctx, slog.LevelError, "chat request failed",
			slog.String("dealer_id", dealerID), slog.String("error", err.Error()))
		return nil, err
	}
	span.SetAttributes(attribute.Bool("chat.degraded", reply.Degraded))
	if reply.Degraded {
		s.metrics.add(ctx, s.metrics.fallbacks)
		if reply.Cause != nil {
			span.RecordError(reply.Cause)
		}
		return reply, nil
	}
	s.metrics.add(ctx, s.metrics.replies)
	return reply, nil
}

type serviceMetrics struct {
	replies   metric.Int64Counter
	fallbacks metric.Int64Counter
	rejected  metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	replies, _ := m.Int64Counter("assistant.service.replies", metric.WithDescription("Number of chat replies produced by the collaborator"))
	fallbacks, _ := m.Int64Counter("assistant.service.fallbacks", metric.WithDescription("Number of chat requests answered with the fallback reply"))
	rejected, _ := m.Int64Counter("assistant.service.rejected", metric.WithDescription("Number of chat requests rejected before reaching the collaborator"))
	return serviceMetrics{replies: replies, fallbacks: fallbacks, rejected: rejected}
}

func (m serviceMetrics) add(ctx context.Context, counter metric.Int64Counter) {
	if counter != nil {
		counter.Add(ctx, 1)
	}
}

var _ assistantports.Service = (*Service)(nil)
