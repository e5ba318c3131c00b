package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/Apurer/cement-dealer-portal/internal/domains/cart/domain"
	"github.com/Apurer/cement-dealer-portal/internal/domains/cart/ports"
	"github.com/Apurer/cement-dealer-portal/internal/platform/memstore"
)

// ItemsTable holds *domain.Item rows keyed by item id.
const ItemsTable = "cart_items"

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory cart adapter.
type Repository struct {
	store *memstore.Store
}

// NewRepository binds the repository to store; a nil store gets a private one.
func NewRepository(store *memstore.Store) *Repository {
	if store == nil {
		store = memstore.New()
	}
	return &Repository{store: store}
}

func (r *Repository) Upsert(_ context.Context, item *domain.Item) (*domain.Item, error) {
	if item == nil {
		return nil, errors.New("cannot save nil cart item")
	}
	var saved *domain.Item
	err := r.store.Update(func(tx *memstore.Tx) error {
		row := item.Clone()
		for _, existing := range ItemsOf(tx, item.DealerID) {
			if existing.ProductID == item.ProductID {
				row = existing.Clone()
				row.Quantity = item.Quantity
				row.UpdatedAt = item.UpdatedAt
				break
			}
		}
		saved = row.Clone()
		return tx.Put(ItemsTable, row.ID, row)
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *Repository) GetByID(_ context.Context, dealerID, itemID string) (*domain.Item, error) {
	var found *domain.Item
	err := r.store.View(func(tx *memstore.Tx) error {
		item, ok := memstore.Get[*domain.Item](tx, ItemsTable, itemID)
		if !ok || item.DealerID != dealerID {
			return ports.ErrNotFound
		}
		found = item.Clone()
		return nil
	})
	return found, err
}

func (r *Repository) Update(_ context.Context, item *domain.Item) (*domain.Item, error) {
	if item == nil {
		return nil, errors.New("cannot save nil cart item")
	}
	err := r.store.Update(func(tx *memstore.Tx) error {
		existing, ok := memstore.Get[*domain.Item](tx, ItemsTable, item.ID)
		if !ok || existing.DealerID != item.DealerID {
			return ports.ErrNotFound
		}
		return tx.Put(ItemsTable, item.ID, item.Clone())
	})
	if err != nil {
		return nil, err
	}
	return item.Clone(), nil
}

func (r *Repository) ListByDealer(_ context.Context, dealerID string) ([]*domain.Item, error) {
	var items []*domain.Item
	err := r.store.View(func(tx *memstore.Tx) error {
		for _, item := range ItemsOf(tx, dealerID) {
			items = append(items, item.Clone())
		}
		return nil
	})
	return items, err
}

func (r *Repository) Delete(_ context.Context, dealerID, itemID string) error {
	return r.store.Update(func(tx *memstore.Tx) error {
		item, ok := memstore.Get[*domain.Item](tx, ItemsTable, itemID)
		if !ok || item.DealerID != dealerID {
			return nil
		}
		return tx.Delete(ItemsTable, itemID)
	})
}

func (r *Repository) Clear(_ context.Context, dealerID string) error {
	return r.store.Update(func(tx *memstore.Tx) error {
		for _, item := range ItemsOf(tx, dealerID) {
			if err := tx.Delete(ItemsTable, item.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// ItemsOf lists the stored lines of a dealer, oldest first, inside an open transaction.
// The returned rows must not be mutated in place.
func ItemsOf(tx *memstore.Tx, dealerID string) []*domain.Item {
	var items []*domain.Item
	memstore.Scan[*domain.Item](tx, ItemsTable, func(_ string, item *domain.Item) bool {
		if item.DealerID == dealerID {
			items = append(items, item)
		}
		return true
	})
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items
}
