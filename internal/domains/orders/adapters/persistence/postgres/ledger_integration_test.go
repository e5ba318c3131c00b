//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	cartpostgres "github.com/Apurer/cement-dealer-portal/internal/domains/cart/adapters/persistence/postgres"
	cartdomain "github.com/Apurer/cement-dealer-portal/internal/domains/cart/domain"
	catalogpostgres "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/adapters/persistence/postgres"
	catalogdomain "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/domain"
	dealerpostgres "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/adapters/persistence/postgres"
	dealerdomain "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/domain"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/application"
	ordertypes "github.com/Apurer/cement-dealer-portal/internal/domains/orders/application/types"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/ports"
	"github.com/Apurer/cement-dealer-portal/internal/platform/postgres/pgtest"
)

const (
	dealerA = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	dealerB = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
	opc53   = "22222222-2222-2222-2222-222222222222"
)

type fixture struct {
	db       *gorm.DB
	dealers  *dealerpostgres.Repository
	products *catalogpostgres.Repository
	carts    *cartpostgres.Repository
	ledger   *Ledger
	service  *application.Service
}

func newFixture(t *testing.T, stock int) *fixture {
	t.Helper()
	db := pgtest.Start(t)
	f := &fixture{
		db:       db,
		dealers:  dealerpostgres.NewRepository(db),
		products: catalogpostgres.NewRepository(db),
		carts:    cartpostgres.NewRepository(db),
		ledger:   NewLedger(db),
	}
	f.service = application.NewService(f.ledger, f.dealers, f.carts, f.products,
		application.WithIdempotencyStore(NewIdempotencyStore(db)))

	ctx := context.Background()
	for i, id := range []string{dealerA, dealerB} {
		phone := []string{"9876543210", "9876543211"}[i]
		d, err := dealerdomain.NewDealer(id, "Dealer", phone, "d@example.com", "Traders", "Pune", "")
		require.NoError(t, err)
		d.CreatedAt = time.Now().UTC()
		d.UpdatedAt = d.CreatedAt
		_, err = f.dealers.Create(ctx, d)
		require.NoError(t, err)
	}
	p, err := catalogdomain.NewProduct(opc53, "UltraTech OPC 53 Grade", decimal.RequireFromString("380.00"), stock)
	require.NoError(t, err)
	_, err = f.products.Save(ctx, p)
	require.NoError(t, err)
	return f
}

func (f *fixture) addToCart(t *testing.T, id, dealerID string, qty int) {
	t.Helper()
	item, err := cartdomain.NewItem(id, dealerID, opc53, qty, time.Now().UTC())
	require.NoError(t, err)
	_, err = f.carts.Upsert(context.Background(), item)
	require.NoError(t, err)
}

func (f *fixture) stock(t *testing.T) int {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), opc53)
	require.NoError(t, err)
	return p.Entity.Stock
}

func TestLedger_AccountCheckoutCommitsEverything(t *testing.T) {
	f := newFixture(t, 5000)
	ctx := context.Background()
	f.addToCart(t, "c0000000-0000-0000-0000-000000000001", dealerA, 200)

	order, err := f.service.PlaceOrder(ctx, ordertypes.PlaceOrderInput{
		DealerID:        dealerA,
		PaymentMethod:   "account",
		DeliveryAddress: "Plot 7, MIDC",
	})
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("76000")))

	assert.Equal(t, 4800, f.stock(t))
	items, err := f.carts.ListByDealer(ctx, dealerA)
	require.NoError(t, err)
	assert.Empty(t, items)
	dealer, err := f.dealers.GetByID(ctx, dealerA)
	require.NoError(t, err)
	assert.True(t, dealer.OutstandingBalance.Equal(decimal.RequireFromString("76000")))

	stored, err := f.ledger.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "UltraTech OPC 53 Grade", stored.Items[0].ProductName)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestLedger_RejectsDriftWithoutMutation(t *testing.T) {
	f := newFixture(t, 5000)
	ctx := context.Background()
	f.addToCart(t, "c0000000-0000-0000-0000-000000000001", dealerA, 100)

	order, err := domain.NewOrder("o0000000-0000-0000-0000-000000000001", "ORD-1", dealerA,
		[]domain.LineItem{domain.NewLineItem(opc53, "UltraTech OPC 53 Grade", 100, decimal.RequireFromString("370.00"))},
		domain.PaymentCOD, "Pune", "", time.Now().UTC())
	require.NoError(t, err)

	_, err = f.ledger.Commit(ctx, ports.CheckoutCommit{
		Order:     order,
		CartLines: []ports.CartLine{{ItemID: "c0000000-0000-0000-0000-000000000001", ProductID: opc53, Quantity: 100}},
	})
	require.ErrorIs(t, err, ports.ErrConflict)
	assert.Equal(t, 5000, f.stock(t))
	items, err := f.carts.ListByDealer(ctx, dealerA)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestLedger_ConcurrentCheckoutsNeverOversell(t *testing.T) {
	f := newFixture(t, 100)
	ctx := context.Background()
	f.addToCart(t, "c0000000-0000-0000-0000-00000000000a", dealerA, 100)
	f.addToCart(t, "c0000000-0000-0000-0000-00000000000b", dealerB, 100)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, dealerID := range []string{dealerA, dealerB} {
		wg.Add(1)
		go func(i int, dealerID string) {
			defer wg.Done()
			_, errs[i] = f.service.PlaceOrder(ctx, ordertypes.PlaceOrderInput{
				DealerID:        dealerID,
				PaymentMethod:   "cod",
				DeliveryAddress: "Pune",
			})
		}(i, dealerID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var stockErr *domain.InsufficientStockError
		require.True(t, errors.As(err, &stockErr), "unexpected error: %v", err)
		assert.Equal(t, 0, stockErr.Available)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, f.stock(t))
}

func TestLedger_CancelRestoresStockAndCredit(t *testing.T) {
	f := newFixture(t, 1000)
	ctx := context.Background()
	f.addToCart(t, "c0000000-0000-0000-0000-000000000001", dealerA, 100)

	order, err := f.service.PlaceOrder(ctx, ordertypes.PlaceOrderInput{
		DealerID:        dealerA,
		PaymentMethod:   "account",
		DeliveryAddress: "Pune",
	})
	require.NoError(t, err)

	cancelled, err := f.service.UpdateStatus(ctx, order.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, 1000, f.stock(t))
	dealer, err := f.dealers.GetByID(ctx, dealerA)
	require.NoError(t, err)
	assert.True(t, dealer.OutstandingBalance.IsZero())

	_, err = f.service.UpdateStatus(ctx, order.ID, "confirmed")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestLedger_ListNewestFirst(t *testing.T) {
	f := newFixture(t, 1000)
	ctx := context.Background()
	var ids []string
	for i, item := range []string{"c0000000-0000-0000-0000-000000000001", "c0000000-0000-0000-0000-000000000002"} {
		f.addToCart(t, item, dealerA, 100+i*100)
		order, err := f.service.PlaceOrder(ctx, ordertypes.PlaceOrderInput{DealerID: dealerA, PaymentMethod: "cod", DeliveryAddress: "Pune"})
		require.NoError(t, err)
		ids = append(ids, order.ID)
		time.Sleep(10 * time.Millisecond)
	}
	orders, err := f.ledger.ListByDealer(ctx, dealerA)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, ids[1], orders[0].ID)
	assert.Equal(t, ids[0], orders[1].ID)

	others, err := f.ledger.ListByDealer(ctx, dealerB)
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestIdempotencyStore_ScopedPerDealer(t *testing.T) {
	db := pgtest.Start(t)
	store := NewIdempotencyStore(db)
	ctx := context.Background()

	saved, err := store.Save(ctx, ports.IdempotencyRecord{DealerID: dealerA, Key: "k1", RequestHash: "h1", OrderID: "o1"})
	require.NoError(t, err)
	assert.Equal(t, "o1", saved.OrderID)

	again, err := store.Save(ctx, ports.IdempotencyRecord{DealerID: dealerA, Key: "k1", RequestHash: "h1", OrderID: "o1"})
	require.NoError(t, err)
	assert.Equal(t, "o1", again.OrderID)

	_, err = store.Save(ctx, ports.IdempotencyRecord{DealerID: dealerA, Key: "k1", RequestHash: "h2", OrderID: "o2"})
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)

	_, err = store.Save(ctx, ports.IdempotencyRecord{DealerID: dealerB, Key: "k1", RequestHash: "h2", OrderID: "o2"})
	require.NoError(t, err)

	missing, err := store.Get(ctx, dealerB, "unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
