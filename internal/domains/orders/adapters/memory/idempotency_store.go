package memory

import (
	"context"
	"time"

	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/ports"
	"github.com/Apurer/cement-dealer-portal/internal/platform/memstore"
)

const idempotencyTable = "order_idempotency_keys"

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore keeps checkout keys in the shared memory store for development and tests.
type IdempotencyStore struct {
	store *memstore.Store
	now   func() time.Time
}

func NewIdempotencyStore(store *memstore.Store) *IdempotencyStore {
	if store == nil {
		store = memstore.New()
	}
	return &IdempotencyStore{store: store, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (s *IdempotencyStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *IdempotencyStore) Get(_ context.Context, dealerID, key string) (*ports.IdempotencyRecord, error) {
	var found *ports.IdempotencyRecord
	err := s.store.View(func(tx *memstore.Tx) error {
		record, ok := memstore.Get[ports.IdempotencyRecord](tx, idempotencyTable, scopedKey(dealerID, key))
		if ok {
			found = &record
		}
		return nil
	})
	return found, err
}

func (s *IdempotencyStore) Save(_ context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	var saved ports.IdempotencyRecord
	var conflict bool
	err := s.store.Update(func(tx *memstore.Tx) error {
		id := scopedKey(record.DealerID, record.Key)
		if existing, ok := memstore.Get[ports.IdempotencyRecord](tx, idempotencyTable, id); ok {
			saved = existing
			conflict = existing.RequestHash != record.RequestHash || existing.OrderID != record.OrderID
			return nil
		}
		now := s.now().UTC()
		record.CreatedAt = now
		record.UpdatedAt = now
		saved = record
		return tx.Put(idempotencyTable, id, record)
	})
	if err != nil {
		return nil, err
	}
	if conflict {
		return &saved, ports.ErrIdempotencyConflict
	}
	return &saved, nil
}

func scopedKey(dealerID, key string) string {
	return dealerID + "\x00" + key
}
