//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/cement-dealer-portal/internal/domains/cart/domain"
	"github.com/Apurer/cement-dealer-portal/internal/domains/cart/ports"
	"github.com/Apurer/cement-dealer-portal/internal/platform/postgres/pgtest"
)

const (
	dealerA = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	dealerB = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
	product = "11111111-1111-1111-1111-111111111111"
)

func TestRepository_UpsertReplacesQuantity(t *testing.T) {
	db := pgtest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	first, err := domain.NewItem("c1c1c1c1-0000-0000-0000-000000000001", dealerA, product, 100, now)
	require.NoError(t, err)
	saved, err := repo.Upsert(ctx, first)
	require.NoError(t, err)

	again, err := domain.NewItem("c1c1c1c1-0000-0000-0000-000000000002", dealerA, product, 250, now.Add(time.Second))
	require.NoError(t, err)
	replaced, err := repo.Upsert(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, replaced.ID)
	assert.Equal(t, 250, replaced.Quantity)

	items, err := repo.ListByDealer(ctx, dealerA)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestRepository_OwnershipAndIdempotentDeletes(t *testing.T) {
	db := pgtest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item, err := domain.NewItem("c1c1c1c1-0000-0000-0000-000000000001", dealerA, product, 100, time.Now().UTC())
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, item)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, dealerB, item.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, dealerB, item.ID))
	_, err = repo.GetByID(ctx, dealerA, item.ID)
	require.NoError(t, err, "another dealer cannot delete the line")

	require.NoError(t, repo.Delete(ctx, dealerA, item.ID))
	require.NoError(t, repo.Delete(ctx, dealerA, item.ID))
	require.NoError(t, repo.Clear(ctx, dealerA))

	items, err := repo.ListByDealer(ctx, dealerA)
	require.NoError(t, err)
	assert.Empty(t, items)
}
