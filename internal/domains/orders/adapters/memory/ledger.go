package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	cartmemory "github.com/Apurer/cement-dealer-portal/internal/domains/cart/adapters/memory"
	cartdomain "github.com/Apurer/cement-dealer-portal/internal/domains/cart/domain"
	catalogmemory "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/domain"
	dealermemory "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/adapters/memory"
	dealerdomain "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/domain"
	dealerports "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/ports"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/ports"
	"github.com/Apurer/cement-dealer-portal/internal/platform/memstore"
	"github.com/Apurer/cement-dealer-portal/internal/shared/projection"
)

// OrdersTable holds *domain.Order rows keyed by order id.
const OrdersTable = "orders"

var _ ports.Ledger = (*Ledger)(nil)

// Ledger is the in-memory order ledger. It must share its store with the dealer,
// catalog and cart memory adapters so a checkout commits under one lock.
type Ledger struct {
	store *memstore.Store
}

func NewLedger(store *memstore.Store) *Ledger {
	if store == nil {
		store = memstore.New()
	}
	return &Ledger{store: store}
}

func (l *Ledger) Commit(_ context.Context, commit ports.CheckoutCommit) (*domain.Order, error) {
	order := commit.Order
	if order == nil {
		return nil, errors.New("cannot commit nil order")
	}
	err := l.store.Update(func(tx *memstore.Tx) error {
		dealer, ok := memstore.Get[*dealerdomain.Dealer](tx, dealermemory.DealersTable, order.DealerID)
		if !ok {
			return dealerports.ErrNotFound
		}
		current := cartmemory.ItemsOf(tx, order.DealerID)
		if !sameCart(current, commit.CartLines) {
			return ports.ErrConflict
		}
		if numberTaken(tx, order.OrderNumber) {
			return ports.ErrConflict
		}

		for _, item := range order.Items {
			row, ok := catalogmemory.Lookup(tx, item.ProductID)
			if !ok || !row.Entity.Price.Equal(item.UnitPrice) {
				return ports.ErrConflict
			}
			product := row.Entity.Clone()
			if err := product.Reserve(item.Quantity); err != nil {
				return ports.ErrConflict
			}
			if err := putProduct(tx, row, product, order.CreatedAt); err != nil {
				return err
			}
		}

		if commit.CreditDraw.IsPositive() {
			updated := dealer.Clone()
			if err := updated.Draw(commit.CreditDraw); err != nil {
				return ports.ErrConflict
			}
			updated.UpdatedAt = order.CreatedAt
			if err := tx.Put(dealermemory.DealersTable, updated.ID, updated); err != nil {
				return err
			}
		}

		if err := tx.Put(OrdersTable, order.ID, order.Clone()); err != nil {
			return err
		}
		for _, item := range current {
			if err := tx.Delete(cartmemory.ItemsTable, item.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order.Clone(), nil
}

func (l *Ledger) GetByID(_ context.Context, id string) (*domain.Order, error) {
	var found *domain.Order
	err := l.store.View(func(tx *memstore.Tx) error {
		order, ok := memstore.Get[*domain.Order](tx, OrdersTable, id)
		if !ok {
			return ports.ErrNotFound
		}
		found = order.Clone()
		return nil
	})
	return found, err
}

func (l *Ledger) ListByDealer(_ context.Context, dealerID string) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := l.store.View(func(tx *memstore.Tx) error {
		memstore.Scan[*domain.Order](tx, OrdersTable, func(_ string, order *domain.Order) bool {
			if order.DealerID == dealerID {
				orders = append(orders, order.Clone())
			}
			return true
		})
		return nil
	})
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].OrderNumber > orders[j].OrderNumber
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, err
}

func (l *Ledger) Transition(_ context.Context, id string, next domain.Status, now time.Time) (*ports.StatusChange, error) {
	var change *ports.StatusChange
	err := l.store.Update(func(tx *memstore.Tx) error {
		stored, ok := memstore.Get[*domain.Order](tx, OrdersTable, id)
		if !ok {
			return ports.ErrNotFound
		}
		order := stored.Clone()
		previous, err := order.TransitionTo(next, now)
		if err != nil {
			return err
		}
		if next == domain.StatusCancelled {
			if err := reverse(tx, order, now); err != nil {
				return err
			}
		}
		if err := tx.Put(OrdersTable, order.ID, order); err != nil {
			return err
		}
		change = &ports.StatusChange{Order: order.Clone(), Previous: previous}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// reverse restocks a cancelled order and releases its credit draw.
func reverse(tx *memstore.Tx, order *domain.Order, now time.Time) error {
	for _, item := range order.Items {
		row, ok := catalogmemory.Lookup(tx, item.ProductID)
		if !ok {
			continue
		}
		product := row.Entity.Clone()
		if err := product.Restock(item.Quantity); err != nil {
			return err
		}
		if err := putProduct(tx, row, product, now); err != nil {
			return err
		}
	}
	if !order.DrawsCredit() {
		return nil
	}
	dealer, ok := memstore.Get[*dealerdomain.Dealer](tx, dealermemory.DealersTable, order.DealerID)
	if !ok {
		return nil
	}
	updated := dealer.Clone()
	updated.Release(order.TotalAmount)
	updated.UpdatedAt = now
	return tx.Put(dealermemory.DealersTable, updated.ID, updated)
}

func putProduct(tx *memstore.Tx, row *projection.Projection[*catalogdomain.Product], product *catalogdomain.Product, now time.Time) error {
	return catalogmemory.Put(tx, &projection.Projection[*catalogdomain.Product]{
		Entity:   product,
		Metadata: projection.Metadata{CreatedAt: row.Metadata.CreatedAt, UpdatedAt: now},
	})
}

func sameCart(current []*cartdomain.Item, expected []ports.CartLine) bool {
	if len(current) != len(expected) {
		return false
	}
	byID := make(map[string]ports.CartLine, len(expected))
	for _, line := range expected {
		byID[line.ItemID] = line
	}
	for _, item := range current {
		line, ok := byID[item.ID]
		if !ok || line.ProductID != item.ProductID || line.Quantity != item.Quantity {
			return false
		}
	}
	return true
}

func numberTaken(tx *memstore.Tx, number string) bool {
	taken := false
	memstore.Scan[*domain.Order](tx, OrdersTable, func(_ string, order *domain.Order) bool {
		if order.OrderNumber == number {
			taken = true
			return false
		}
		return true
	})
	return taken
}
