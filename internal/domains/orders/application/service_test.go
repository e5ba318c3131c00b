package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartmemory "github.com/Apurer/cement-dealer-portal/internal/domains/cart/adapters/memory"
	cartapp "github.com/Apurer/cement-dealer-portal/internal/domains/cart/application"
	cartdomain "github.com/Apurer/cement-dealer-portal/internal/domains/cart/domain"
	catalogmemory "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/domain"
	dealermemory "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/adapters/memory"
	dealerdomain "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/domain"
	ordermemory "github.com/Apurer/cement-dealer-portal/internal/domains/orders/adapters/memory"
	ordertypes "github.com/Apurer/cement-dealer-portal/internal/domains/orders/application/types"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/ports"
	"github.com/Apurer/cement-dealer-portal/internal/platform/memstore"
)

type fixture struct {
	svc      *Service
	ledger   *ordermemory.Ledger
	dealers  *dealermemory.Repository
	products *catalogmemory.Repository
	carts    *cartmemory.Repository
	cart     *cartapp.Service
	events   *recordingPublisher
	logs     *bytes.Buffer
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.events))
	for _, e := range p.events {
		names = append(names, e.EventName())
	}
	return names
}

var fixedNow = time.Date(2024, 5, 17, 9, 30, 15, 0, time.UTC)

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	store := memstore.New()
	f := &fixture{
		ledger:   ordermemory.NewLedger(store),
		dealers:  dealermemory.NewRepository(store),
		products: catalogmemory.NewRepository(store),
		carts:    cartmemory.NewRepository(store),
		events:   &recordingPublisher{},
		logs:     &bytes.Buffer{},
	}
	f.cart = cartapp.NewService(f.carts, f.products)

	ctx := context.Background()
	for _, id := range []string{"d-1", "d-2"} {
		d, err := dealerdomain.NewDealer(id, "Ravi Kumar", "98765432"+id[2:]+"0", "ravi@example.com", "Kumar Traders", "12 MG Road", "")
		require.NoError(t, err)
		_, err = f.dealers.Create(ctx, d)
		require.NoError(t, err)
	}
	f.addProduct(t, "opc43", "UltraTech OPC 43 Grade", "350.00", 5000)
	f.addProduct(t, "opc53", "UltraTech OPC 53 Grade", "380.00", 3000)

	seq := 0
	base := []Option{
		WithEventPublisher(f.events),
		WithLogger(slog.New(slog.NewTextHandler(f.logs, nil))),
		WithClock(func() time.Time { return fixedNow }),
		WithOrderNumbers(func(now time.Time) (string, error) {
			seq++
			return fmt.Sprintf("ORD-%s-%06d", now.Format("20060102150405"), seq), nil
		}),
	}
	f.svc = NewService(f.ledger, f.dealers, f.carts, f.products, append(base, opts...)...)
	return f
}

func (f *fixture) addProduct(t *testing.T, id, name, price string, stock int) {
	t.Helper()
	p, err := catalogdomain.NewProduct(id, name, decimal.RequireFromString(price), stock)
	require.NoError(t, err)
	_, err = f.products.Save(context.Background(), p)
	require.NoError(t, err)
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Entity.Stock
}

func (f *fixture) dealer(t *testing.T, id string) *dealerdomain.Dealer {
	t.Helper()
	d, err := f.dealers.GetByID(context.Background(), id)
	require.NoError(t, err)
	return d
}

func (f *fixture) setBalance(t *testing.T, id string, balance int64) {
	t.Helper()
	d := f.dealer(t, id)
	d.OutstandingBalance = decimal.NewFromInt(balance)
	require.NoError(t, f.dealers.Put(context.Background(), d))
}

func (f *fixture) add(t *testing.T, dealerID, productID string, qty int) {
	t.Helper()
	_, err := f.cart.AddItem(context.Background(), dealerID, productID, qty)
	require.NoError(t, err)
}

func placeInput(dealerID, method string) ordertypes.PlaceOrderInput {
	return ordertypes.PlaceOrderInput{DealerID: dealerID, PaymentMethod: method, DeliveryAddress: "Plot 7, MIDC, Pune"}
}

func TestPlaceOrder_CashOnDelivery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "d-1", "opc43", 100)

	order, err := f.svc.PlaceOrder(ctx, placeInput("d-1", "cod"))
	require.NoError(t, err)

	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("35000.00")))
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)
	assert.Equal(t, "ORD-20240517093015-000001", order.OrderNumber)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "UltraTech OPC 43 Grade", order.Items[0].ProductName)

	assert.Equal(t, 4900, f.stock(t, "opc43"))
	lines, err := f.cart.View(ctx, "d-1")
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.True(t, f.dealer(t, "d-1").OutstandingBalance.IsZero())
	assert.Equal(t, []string{"orders.order.placed"}, f.events.names())
}

func TestPlaceOrder_AccountDrawsCredit(t *testing.T) {
	f := newFixture(t)
	f.add(t, "d-1", "opc43", 100)
	f.add(t, "d-1", "opc53", 150)

	order, err := f.svc.PlaceOrder(context.Background(), placeInput("d-1", "account"))
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("92000")))
	assert.True(t, f.dealer(t, "d-1").OutstandingBalance.Equal(decimal.RequireFromString("92000")))
	assert.Equal(t, 2850, f.stock(t, "opc53"))
}

func TestPlaceOrder_CreditLimitLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setBalance(t, "d-1", 95000)
	f.addProduct(t, "ppc", "ACC PPC", "300.00", 1000)
	f.add(t, "d-1", "ppc", 200)

	_, err := f.svc.PlaceOrder(ctx, placeInput("d-1", "account"))
	require.ErrorIs(t, err, domain.ErrCreditLimitExceeded)
	var creditErr *domain.CreditLimitExceededError
	require.True(t, errors.As(err, &creditErr))
	assert.True(t, creditErr.Available.Equal(decimal.NewFromInt(5000)))
	assert.True(t, creditErr.Required.Equal(decimal.NewFromInt(60000)))

	assert.Equal(t, 1000, f.stock(t, "ppc"))
	lines, err := f.cart.View(ctx, "d-1")
	require.NoError(t, err)
	assert.Len(t, lines, 1)
	assert.True(t, f.dealer(t, "d-1").OutstandingBalance.Equal(decimal.NewFromInt(95000)))
	orders, err := f.svc.ListOrders(ctx, "d-1")
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, f.events.names())
}

func TestPlaceOrder_CODIgnoresCredit(t *testing.T) {
	f := newFixture(t)
	f.setBalance(t, "d-1", 100000)
	f.add(t, "d-1", "opc43", 100)

	_, err := f.svc.PlaceOrder(context.Background(), placeInput("d-1", "cod"))
	require.NoError(t, err)
	assert.True(t, f.dealer(t, "d-1").OutstandingBalance.Equal(decimal.NewFromInt(100000)))
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "slag", "Slag Cement", "320.00", 150)
	f.add(t, "d-1", "slag", 200)

	_, err := f.svc.PlaceOrder(context.Background(), placeInput("d-1", "cod"))
	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Slag Cement", stockErr.ProductName)
	assert.Equal(t, 200, stockErr.Requested)
	assert.Equal(t, 150, stockErr.Available)
	assert.Equal(t, 150, f.stock(t, "slag"))
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.PlaceOrder(context.Background(), placeInput("d-1", "cod"))
	require.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestPlaceOrder_RejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	f.add(t, "d-1", "opc43", 100)

	_, err := f.svc.PlaceOrder(context.Background(), placeInput("d-1", "upi"))
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidPaymentMethod)

	input := placeInput("d-1", "cod")
	input.DeliveryAddress = "   "
	_, err = f.svc.PlaceOrder(context.Background(), input)
	require.ErrorIs(t, err, domain.ErrEmptyDeliveryAddress)
	assert.Equal(t, 5000, f.stock(t, "opc43"))
}

func TestPlaceOrder_BelowMinimumNeverReachesCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.cart.AddItem(context.Background(), "d-1", "opc43", 50)
	require.ErrorIs(t, err, cartdomain.ErrMinimumOrderQuantity)

	_, err = f.svc.PlaceOrder(context.Background(), placeInput("d-1", "cod"))
	require.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestPlaceOrder_SnapshotSurvivesReprice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "d-1", "opc43", 100)
	order, err := f.svc.PlaceOrder(ctx, placeInput("d-1", "cod"))
	require.NoError(t, err)

	p, err := f.products.GetByID(ctx, "opc43")
	require.NoError(t, err)
	require.NoError(t, p.Entity.Reprice(decimal.RequireFromString("410.00")))
	_, err = f.products.Save(ctx, p.Entity)
	require.NoError(t, err)

	stored, err := f.svc.GetOrder(ctx, "d-1", order.ID)
	require.NoError(t, err)
	assert.True(t, stored.Items[0].UnitPrice.Equal(decimal.RequireFromString("350.00")))
	assert.True(t, stored.TotalAmount.Equal(decimal.RequireFromString("35000.00")))
}

func TestPlaceOrder_ConcurrentDealersNeverOversell(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "last", "Last Lot", "300.00", 100)
	f.add(t, "d-1", "last", 100)
	f.add(t, "d-2", "last", 100)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, dealerID := range []string{"d-1", "d-2"} {
		wg.Add(1)
		go func(i int, dealerID string) {
			defer wg.Done()
			_, errs[i] = f.svc.PlaceOrder(context.Background(), placeInput(dealerID, "cod"))
		}(i, dealerID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, f.stock(t, "last"))
}

// conflictingLedger fails the first N commits with ErrConflict.
type conflictingLedger struct {
	ports.Ledger
	failures int
	commits  int
}

func (l *conflictingLedger) Commit(ctx context.Context, commit ports.CheckoutCommit) (*domain.Order, error) {
	l.commits++
	if l.commits <= l.failures {
		return nil, ports.ErrConflict
	}
	return l.Ledger.Commit(ctx, commit)
}

func TestPlaceOrder_RetriesConflictOnce(t *testing.T) {
	f := newFixture(t)
	f.add(t, "d-1", "opc43", 100)
	ledger := &conflictingLedger{Ledger: f.ledger, failures: 1}
	svc := NewService(ledger, f.dealers, f.carts, f.products, WithLogger(slog.New(slog.NewTextHandler(f.logs, nil))))

	_, err := svc.PlaceOrder(context.Background(), placeInput("d-1", "cod"))
	require.NoError(t, err)
	assert.Equal(t, 2, ledger.commits)
	assert.Contains(t, f.logs.String(), "checkout conflicted")
}

func TestPlaceOrder_SecondConflictSurfaces(t *testing.T) {
	f := newFixture(t)
	f.add(t, "d-1", "opc43", 100)
	ledger := &conflictingLedger{Ledger: f.ledger, failures: 2}
	svc := NewService(ledger, f.dealers, f.carts, f.products)

	_, err := svc.PlaceOrder(context.Background(), placeInput("d-1", "cod"))
	require.ErrorIs(t, err, ports.ErrConflict)
	assert.Equal(t, 2, ledger.commits)
	assert.Equal(t, 5000, f.stock(t, "opc43"))
}

func TestPlaceOrder_IdempotentReplay(t *testing.T) {
	store := ordermemory.NewIdempotencyStore(nil)
	f := newFixture(t, WithIdempotencyStore(store))
	ctx := context.Background()
	f.add(t, "d-1", "opc43", 100)

	input := placeInput("d-1", "cod")
	input.IdempotencyKey = "checkout-1"
	first, err := f.svc.PlaceOrder(ctx, input)
	require.NoError(t, err)

	replayed, err := f.svc.PlaceOrder(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, replayed.ID)
	assert.Equal(t, 4900, f.stock(t, "opc43"))
	assert.Len(t, f.events.names(), 1)

	input.DeliveryAddress = "Somewhere else"
	_, err = f.svc.PlaceOrder(ctx, input)
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
}

func TestPlaceOrder_PublishFailureIsLogged(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")
	f.add(t, "d-1", "opc43", 100)

	order, err := f.svc.PlaceOrder(context.Background(), placeInput("d-1", "cod"))
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Contains(t, f.logs.String(), "failed to publish order event")
}

func TestGetOrder_ScopedToDealer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "d-1", "opc43", 100)
	order, err := f.svc.PlaceOrder(ctx, placeInput("d-1", "cod"))
	require.NoError(t, err)

	_, err = f.svc.GetOrder(ctx, "d-2", order.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)
	_, err = f.svc.GetOrder(ctx, "d-1", "missing")
	require.ErrorIs(t, err, ports.ErrNotFound)

	others, err := f.svc.ListOrders(ctx, "d-2")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestListOrders_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "d-1", "opc43", 100)
	first, err := f.svc.PlaceOrder(ctx, placeInput("d-1", "cod"))
	require.NoError(t, err)
	f.add(t, "d-1", "opc53", 100)
	second, err := f.svc.PlaceOrder(ctx, placeInput("d-1", "cod"))
	require.NoError(t, err)

	orders, err := f.svc.ListOrders(ctx, "d-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
}

func TestUpdateStatus_CancelReversesCheckout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "d-1", "opc43", 100)
	order, err := f.svc.PlaceOrder(ctx, placeInput("d-1", "account"))
	require.NoError(t, err)
	require.True(t, f.dealer(t, "d-1").OutstandingBalance.Equal(decimal.NewFromInt(35000)))

	confirmed, err := f.svc.UpdateStatus(ctx, order.ID, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, confirmed.Status)

	cancelled, err := f.svc.UpdateStatus(ctx, order.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, 5000, f.stock(t, "opc43"))
	assert.True(t, f.dealer(t, "d-1").OutstandingBalance.IsZero())

	_, err = f.svc.UpdateStatus(ctx, order.ID, "pending")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, []string{
		"orders.order.placed",
		"orders.order.status_changed",
		"orders.order.status_changed",
	}, f.events.names())
}

func TestUpdateStatus_DeliveredCODIsPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "d-1", "opc43", 100)
	order, err := f.svc.PlaceOrder(ctx, placeInput("d-1", "cod"))
	require.NoError(t, err)

	for _, status := range []string{"confirmed", "processing", "shipped", "delivered"} {
		order, err = f.svc.UpdateStatus(ctx, order.ID, status)
		require.NoError(t, err)
	}
	assert.Equal(t, domain.PaymentCompleted, order.PaymentStatus)

	_, err = f.svc.UpdateStatus(ctx, order.ID, "bogus")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.svc.UpdateStatus(ctx, "missing", "confirmed")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stats, err := f.svc.DashboardStats(ctx, "d-1")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalOrders)
	assert.True(t, stats.TotalSpent.IsZero())
	assert.True(t, stats.CreditAvailable.Equal(decimal.NewFromInt(100000)))

	f.add(t, "d-1", "opc43", 100)
	first, err := f.svc.PlaceOrder(ctx, placeInput("d-1", "account"))
	require.NoError(t, err)
	f.add(t, "d-1", "opc53", 100)
	_, err = f.svc.PlaceOrder(ctx, placeInput("d-1", "cod"))
	require.NoError(t, err)
	for _, status := range []string{"confirmed", "processing", "shipped", "delivered"} {
		_, err = f.svc.UpdateStatus(ctx, first.ID, status)
		require.NoError(t, err)
	}

	stats, err = f.svc.DashboardStats(ctx, "d-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, 1, stats.PendingOrders)
	assert.Equal(t, 1, stats.DeliveredOrders)
	assert.True(t, stats.TotalSpent.Equal(decimal.RequireFromString("73000")))
	assert.True(t, stats.OutstandingBalance.Equal(decimal.NewFromInt(35000)))
	assert.True(t, stats.CreditAvailable.Equal(decimal.NewFromInt(65000)))
}
