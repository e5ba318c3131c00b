package memory

import (
	"context"
	"errors"

	"github.com/Apurer/cement-dealer-portal/internal/domains/dealers/domain"
	"github.com/Apurer/cement-dealer-portal/internal/domains/dealers/ports"
	"github.com/Apurer/cement-dealer-portal/internal/platform/memstore"
)

// DealersTable holds *domain.Dealer values keyed by dealer id.
const DealersTable = "dealers"

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory dealer persistence adapter.
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

func (r *Repository) Create(_ context.Context, dealer *domain.Dealer) (*domain.Dealer, error) {
	if dealer == nil {
		return nil, errors.New("dealer is nil")
	}
	if err := dealer.Validate(); err != nil {
		return nil, err
	}
	clone := dealer.Clone()
	err := r.store.Update(func(tx *memstore.Tx) error {
		taken := false
		memstore.Scan[*domain.Dealer](tx, DealersTable, func(_ string, existing *domain.Dealer) bool {
			if existing.Phone == clone.Phone {
				taken = true
				return false
			}
			return true
		})
		if taken {
			return ports.ErrPhoneTaken
		}
		return tx.Put(DealersTable, clone.ID, clone)
	})
	if err != nil {
		return nil, err
	}
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Dealer, error) {
	var found *domain.Dealer
	err := r.store.View(func(tx *memstore.Tx) error {
		dealer, ok := memstore.Get[*domain.Dealer](tx, DealersTable, id)
		if !ok {
			return ports.ErrNotFound
		}
		found = dealer.Clone()
		return nil
	})
	return found, err
}

func (r *Repository) GetByPhone(_ context.Context, phone string) (*domain.Dealer, error) {
	var found *domain.Dealer
	err := r.store.View(func(tx *memstore.Tx) error {
		memstore.Scan[*domain.Dealer](tx, DealersTable, func(_ string, dealer *domain.Dealer) bool {
			if dealer.Phone == phone {
				found = dealer.Clone()
				return false
			}
			return true
		})
		if found == nil {
			return ports.ErrNotFound
		}
		return nil
	})
	return found, err
}

// Put overwrites a dealer record; used by seeding and tests to set credit figures.
func (r *Repository) Put(_ context.Context, dealer *domain.Dealer) error {
	if dealer == nil {
		return errors.New("dealer is nil")
	}
	clone := dealer.Clone()
	return r.store.Update(func(tx *memstore.Tx) error {
		return tx.Put(DealersTable, clone.ID, clone)
	})
}
