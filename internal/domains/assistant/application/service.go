package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	assistanttypes "github.com/Apurer/cement-dealer-portal/internal/domains/assistant/application/types"
	"github.com/Apurer/cement-dealer-portal/internal/domains/assistant/ports"
	catalogdomain "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/ports"
)

// FallbackReply is returned whenever the chat collaborator cannot answer.
const FallbackReply = "I apologize, but I'm having trouble processing your request right now. Please try again later or contact support."

const (
	maxMessageLength   = 2000
	recentOrderWindow  = 5
	defaultRatePerMin  = 20
	limiterIdleTimeout = 10 * time.Minute
)

// Service builds dealer context and forwards the question to the completer.
type Service struct {
	completer ports.Completer
	dealers   ports.DealerReader
	products  ports.ProductLister
	orders    ports.OrderHistory
	logger    *slog.Logger
	now       func() time.Time

	ratePerMinute int
	mu            sync.Mutex
	limiters      map[string]*dealerLimiter
}

type dealerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type Option func(*Service)

// WithRateLimit caps chat requests per dealer per minute; zero or less disables the limit.
func WithRateLimit(perMinute int) Option {
	return func(s *Service) { s.ratePerMinute = perMinute }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(completer ports.Completer, dealers ports.DealerReader, products ports.ProductLister, orders ports.OrderHistory, opts ...Option) *Service {
	s := &Service{
		completer:     completer,
		dealers:       dealers,
		products:      products,
		orders:        orders,
		logger:        slog.Default(),
		now:           time.Now,
		ratePerMinute: defaultRatePerMin,
		limiters:      map[string]*dealerLimiter{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Reply answers message for the dealer. Collaborator failures never surface as errors;
// they produce a degraded reply with FallbackReply.
func (s *Service) Reply(ctx context.Context, dealerID, message string) (*assistanttypes.Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(message) > maxMessageLength {
		return nil, fmt.Errorf("%w: message exceeds %d characters", ErrInvalidInput, maxMessageLength)
	}
	if !s.allow(dealerID) {
		return nil, ErrRateLimited
	}

	dealer, err := s.dealers.GetByID(ctx, dealerID)
	if err != nil {
		return nil, err
	}
	rows, err := s.products.ListProducts(ctx, catalogports.Filter{})
	if err != nil {
		return s.degrade(ctx, dealerID, err), nil
	}
	products := make([]*catalogdomain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.Entity)
	}
	orders, err := s.orders.ListOrders(ctx, dealerID)
	if err != nil {
		return s.degrade(ctx, dealerID, err), nil
	}
	if len(orders) > recentOrderWindow {
		orders = orders[:recentOrderWindow]
	}

	text, err := s.completer.Complete(ctx, []ports.Message{
		{Role: ports.RoleSystem, Content: BuildSystemPrompt(dealer, products, orders)},
		{Role: ports.RoleUser, Content: message},
	})
	if err != nil {
		return s.degrade(ctx, dealerID, err), nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return s.degrade(ctx, dealerID, fmt.Errorf("%w: empty completion", ports.ErrUpstream)), nil
	}
	return &assistanttypes.Reply{Text: text}, nil
}

func (s *Service) degrade(ctx context.Context, dealerID string, cause error) *assistanttypes.Reply {
	s.logger.LogAttrs(ctx, slog.LevelError, "chat error",
		slog.String("dealer_id", dealerID), slog.String("error", cause.Error()))
	return &assistanttypes.Reply{Text: FallbackReply, Degraded: true, Cause: cause}
}

func (s *Service) allow(dealerID string) bool {
	if s.ratePerMinute <= 0 {
		return true
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.limiters {
		if now.Sub(entry.lastSeen) > limiterIdleTimeout {
			delete(s.limiters, id)
		}
	}
	entry, ok := s.limiters[dealerID]
	if !ok {
		limit := rate.Every(time.Minute / time.Duration(s.ratePerMinute))
		entry = &dealerLimiter{limiter: rate.NewLimiter(limit, s.ratePerMinute)}
		s.limiters[dealerID] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

var _ ports.Service = (*Service)(nil)
