// Package redis keeps checkout idempotency keys in Redis with a bounded lifetime.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/ports"
)

// DefaultTTL bounds how long a checkout can be replayed by key.
const DefaultTTL = 24 * time.Hour

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

type IdempotencyStore struct {
	client goredis.UniversalClient
	ttl    time.Duration
	now    func() time.Time
}

func NewIdempotencyStore(client goredis.UniversalClient, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl, now: time.Now}
}

type storedRecord struct {
	DealerID    string    `json:"dealer_id"`
	Key         string    `json:"key"`
	RequestHash string    `json:"request_hash"`
	OrderID     string    `json:"order_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *IdempotencyStore) Get(ctx context.Context, dealerID, key string) (*ports.IdempotencyRecord, error) {
	data, err := s.client.Get(ctx, redisKey(dealerID, key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	var stored storedRecord
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("unmarshal idempotency record failed: %w", err)
	}
	return stored.toPort(), nil
}

// Save writes the record with SETNX; an existing key is returned, with
// ErrIdempotencyConflict when it belongs to another request or order.
func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	stored := storedRecord{
		DealerID:    record.DealerID,
		Key:         record.Key,
		RequestHash: record.RequestHash,
		OrderID:     record.OrderID,
		CreatedAt:   s.now().UTC(),
	}
	payload, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("marshal idempotency record failed: %w", err)
	}
	created, err := s.client.SetNX(ctx, redisKey(record.DealerID, record.Key), payload, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis setnx failed: %w", err)
	}
	if created {
		return stored.toPort(), nil
	}

	existing, err := s.Get(ctx, record.DealerID, record.Key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.New("idempotency record expired during save")
	}
	if existing.RequestHash != record.RequestHash || existing.OrderID != record.OrderID {
		return existing, ports.ErrIdempotencyConflict
	}
	return existing, nil
}

func (r storedRecord) toPort() *ports.IdempotencyRecord {
	return &ports.IdempotencyRecord{
		DealerID:    r.DealerID,
		Key:         r.Key,
		RequestHash: r.RequestHash,
		OrderID:     r.OrderID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.CreatedAt,
	}
}

func redisKey(dealerID, key string) string {
	return fmt.Sprintf("idem:order:create:%s:%s", dealerID, key)
}
