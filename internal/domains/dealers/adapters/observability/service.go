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

	dealerapp "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/application"
	dealertypes "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/application/types"
	dealerdomain "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/domain"
	dealerports "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/ports"
)

const tracerName = "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/adapters/observability/service"

// Service decorates the dealer service with tracing, logging, and metrics.
type Service struct {
	inner   dealerports.Service
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

// New wraps the core dealer service.
func New(inner dealerports.Service, opts ...Option) dealerports.Service {
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

func (s *Service) Register(ctx context.Context, input dealertypes.RegisterInput) (*dealerdomain.Dealer, error) {
	ctx, span := s.tracer.Start(ctx, "DealerService.Register", trace.WithAttributes(attribute.String("dealer.business_name", input.BusinessName)))
	defer span.End()
	dealer, err := s.inner.Register(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register dealer", slog.String("business_name", input.BusinessName))
	}
	s.metrics.recordRegistered(ctx)
	s.logInfo(ctx, "dealer registered", slog.String("dealer_id", dealer.ID))
	return dealer, nil
}

func (s *Service) SendOTP(ctx context.Context, phone string) (*dealertypes.OTPDispatch, error) {
	ctx, span := s.tracer.Start(ctx, "DealerService.SendOTP")
	defer span.End()
	dispatch, err := s.inner.SendOTP(ctx, phone)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to send otp")
	}
	s.metrics.recordOTPSent(ctx)
	return dispatch, nil
}

func (s *Service) VerifyOTP(ctx context.Context, phone, code string) (*dealertypes.AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "DealerService.VerifyOTP")
	defer span.End()
	result, err := s.inner.VerifyOTP(ctx, phone, code)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "otp verification failed")
	}
	span.SetAttributes(attribute.String("dealer.id", result.Dealer.ID))
	s.metrics.recordLogin(ctx)
	s.logInfo(ctx, "dealer logged in", slog.String("dealer_id", result.Dealer.ID))
	return result, nil
}

func (s *Service) Authenticate(ctx context.Context, token string) (*dealerdomain.Dealer, error) {
	ctx, span := s.tracer.Start(ctx, "DealerService.Authenticate")
	defer span.End()
	dealer, err := s.inner.Authenticate(ctx, token)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "authentication failed")
	}
	span.SetAttributes(attribute.String("dealer.id", dealer.ID))
	return dealer, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	ctx, span := s.tracer.Start(ctx, "DealerService.Logout")
	defer span.End()
	if err := s.inner.Logout(ctx, token); err != nil {
		return s.handleError(ctx, span, err, "failed to logout")
	}
	return nil
}

func (s *Service) GetDealer(ctx context.Context, id string) (*dealerdomain.Dealer, error) {
	ctx, span := s.tracer.Start(ctx, "DealerService.GetDealer", trace.WithAttributes(attribute.String("dealer.id", id)))
	defer span.End()
	dealer, err := s.inner.GetDealer(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load dealer", slog.String("dealer_id", id))
	}
	return dealer, nil
}

// handleError logs caller mistakes at info and marks the span only for unexpected failures.
func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if isRejection(err) {
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
	return errors.Is(err, dealerapp.ErrInvalidInput) ||
		errors.Is(err, dealerapp.ErrInvalidOTP) ||
		errors.Is(err, dealerapp.ErrUnauthenticated) ||
		errors.Is(err, dealerports.ErrNotFound) ||
		errors.Is(err, dealerports.ErrPhoneTaken)
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
	registered metric.Int64Counter
	otpsSent   metric.Int64Counter
	logins     metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	registered, _ := m.Int64Counter("dealers.service.registered", metric.WithDescription("Number of dealers registered"))
	otpsSent, _ := m.Int64Counter("dealers.service.otps_sent", metric.WithDescription("Number of one-time passwords issued"))
	logins, _ := m.Int64Counter("dealers.service.logins", metric.WithDescription("Number of successful logins"))
	return serviceMetrics{registered: registered, otpsSent: otpsSent, logins: logins}
}

func (m serviceMetrics) recordRegistered(ctx context.Context) {
	if m.registered != nil {
		m.registered.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordOTPSent(ctx context.Context) {
	if m.otpsSent != nil {
		m.otpsSent.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordLogin(ctx context.Context) {
	if m.logins != nil {
		m.logins.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ dealerports.Service = (*Service)(nil)
