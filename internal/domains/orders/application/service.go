package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalogports "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/ports"
	ordertypes "github.com/Apurer/cement-dealer-portal/internal/domains/orders/application/types"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/ports"
)

// Service orchestrates checkout and the order ledger.
type Service struct {
	ledger      ports.Ledger
	dealers     ports.DealerReader
	carts       ports.CartReader
	products    ports.ProductReader
	idempotency ports.IdempotencyStore
	events      ports.EventPublisher
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string
	newNumber   func(time.Time) (string, error)
}

// Option customises the service.
type Option func(*Service)

// WithIdempotencyStore enables replay of checkouts carrying an idempotency key.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) { s.idempotency = store }
}

// WithEventPublisher routes order events to a broker.
func WithEventPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) {
		if publisher != nil {
			s.events = publisher
		}
	}
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

// WithOrderNumbers overrides the order number generator.
func WithOrderNumbers(next func(time.Time) (string, error)) Option {
	return func(s *Service) {
		if next != nil {
			s.newNumber = next
		}
	}
}

// NewService wires the orders service with the ledger and the stores it reads during checkout.
func NewService(ledger ports.Ledger, dealers ports.DealerReader, carts ports.CartReader, products ports.ProductReader, opts ...Option) *Service {
	s := &Service{
		ledger:   ledger,
		dealers:  dealers,
		carts:    carts,
		products: products,
		events:   ports.NoopPublisher{},
		logger:   slog.Default(),
		now:      time.Now,
		newID:    uuid.NewString,
		newNumber: func(now time.Time) (string, error) {
			return domain.NewOrderNumber(now, nil)
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// PlaceOrder converts the dealer's cart into an order. A checkout that loses a race is
// re-validated once against committed state; a second conflict is returned as ErrConflict.
func (s *Service) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error) {
	method, err := domain.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, mapError(err)
	}
	if strings.TrimSpace(input.DeliveryAddress) == "" {
		return nil, mapError(domain.ErrEmptyDeliveryAddress)
	}

	key := strings.TrimSpace(input.IdempotencyKey)
	var fingerprint string
	if key != "" && s.idempotency != nil {
		fingerprint, err = FingerprintPlaceOrder(input)
		if err != nil {
			return nil, err
		}
		existing, err := s.idempotency.Get(ctx, input.DealerID, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if existing.RequestHash != fingerprint {
				return nil, ports.ErrIdempotencyConflict
			}
			return s.ledger.GetByID(ctx, existing.OrderID)
		}
	}

	order, err := s.checkout(ctx, input, method)
	if errors.Is(err, ports.ErrConflict) {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "checkout conflicted, re-validating", slog.String("dealer_id", input.DealerID))
		order, err = s.checkout(ctx, input, method)
	}
	if err != nil {
		return nil, mapError(err)
	}

	if fingerprint != "" {
		_, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{
			DealerID:    input.DealerID,
			Key:         key,
			RequestHash: fingerprint,
			OrderID:     order.ID,
		})
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to record idempotency key",
				slog.String("order_id", order.ID), slog.String("error", err.Error()))
		}
	}
	s.publish(ctx, domain.NewOrderPlaced(order))
	return order, nil
}

func (s *Service) checkout(ctx context.Context, input ordertypes.PlaceOrderInput, method domain.PaymentMethod) (*domain.Order, error) {
	dealer, err := s.dealers.GetByID(ctx, input.DealerID)
	if err != nil {
		return nil, err
	}
	items, err := s.carts.ListByDealer(ctx, input.DealerID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	lines := make([]domain.LineItem, 0, len(items))
	cartLines := make([]ports.CartLine, 0, len(items))
	for _, item := range items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, catalogports.ErrNotFound) {
				return nil, &domain.InsufficientStockError{ProductID: item.ProductID, Requested: item.Quantity}
			}
			return nil, err
		}
		p := product.Entity
		if p.Stock < item.Quantity {
			return nil, &domain.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   item.Quantity,
				Available:   p.Stock,
			}
		}
		lines = append(lines, domain.NewLineItem(p.ID, p.Name, item.Quantity, p.Price))
		cartLines = append(cartLines, ports.CartLine{ItemID: item.ID, ProductID: item.ProductID, Quantity: item.Quantity})
	}

	now := s.now().UTC()
	number, err := s.newNumber(now)
	if err != nil {
		return nil, err
	}
	order, err := domain.NewOrder(s.newID(), number, input.DealerID, lines, method, input.DeliveryAddress, input.Notes, now)
	if err != nil {
		return nil, err
	}

	draw := decimal.Zero
	if order.DrawsCredit() {
		if !dealer.CanDraw(order.TotalAmount) {
			return nil, &domain.CreditLimitExceededError{
				Available: dealer.AvailableCredit().Round(2),
				Required:  order.TotalAmount,
			}
		}
		draw = order.TotalAmount
	}
	return s.ledger.Commit(ctx, ports.CheckoutCommit{Order: order, CartLines: cartLines, CreditDraw: draw})
}

func (s *Service) ListOrders(ctx context.Context, dealerID string) ([]*domain.Order, error) {
	return s.ledger.ListByDealer(ctx, dealerID)
}

func (s *Service) GetOrder(ctx context.Context, dealerID, orderID string) (*domain.Order, error) {
	order, err := s.ledger.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.DealerID != dealerID {
		return nil, ports.ErrNotFound
	}
	return order, nil
}

// UpdateStatus applies a fulfilment transition. It is an administrative operation.
func (s *Service) UpdateStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	next, err := domain.ParseStatus(status)
	if err != nil {
		return nil, mapError(err)
	}
	change, err := s.ledger.Transition(ctx, orderID, next, s.now().UTC())
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.NewOrderStatusChanged(change.Order, change.Previous))
	return change.Order, nil
}

// DashboardStats folds the dealer's orders together with the current credit figures.
func (s *Service) DashboardStats(ctx context.Context, dealerID string) (*ordertypes.DashboardStats, error) {
	dealer, err := s.dealers.GetByID(ctx, dealerID)
	if err != nil {
		return nil, err
	}
	orders, err := s.ledger.ListByDealer(ctx, dealerID)
	if err != nil {
		return nil, err
	}
	stats := &ordertypes.DashboardStats{
		TotalSpent:         decimal.Zero,
		CreditAvailable:    dealer.AvailableCredit().Round(2),
		OutstandingBalance: dealer.OutstandingBalance.Round(2),
	}
	for _, order := range orders {
		stats.TotalOrders++
		stats.TotalSpent = stats.TotalSpent.Add(order.TotalAmount)
		switch order.Status {
		case domain.StatusPending:
			stats.PendingOrders++
		case domain.StatusDelivered:
			stats.DeliveredOrders++
		}
	}
	stats.TotalSpent = stats.TotalSpent.Round(2)
	return stats, nil
}

// publish never fails the caller; the order is already committed.
func (s *Service) publish(ctx context.Context, event domain.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to publish order event",
			slog.String("event", event.EventName()),
			slog.String("order_id", event.AggregateID()),
			slog.String("error", err.Error()))
	}
}

var _ ports.Service = (*Service)(nil)
