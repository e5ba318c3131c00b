//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/cement-dealer-portal/internal/domains/dealers/domain"
	"github.com/Apurer/cement-dealer-portal/internal/domains/dealers/ports"
	"github.com/Apurer/cement-dealer-portal/internal/platform/postgres/pgtest"
)

func newDealer(t *testing.T, id, phone string) *domain.Dealer {
	t.Helper()
	d, err := domain.NewDealer(id, "Ravi Kumar", phone, "ravi@example.com", "Kumar Traders", "12 MG Road", "")
	require.NoError(t, err)
	d.CreatedAt = time.Now().UTC()
	d.UpdatedAt = d.CreatedAt
	return d
}

func TestRepository_CreateAndLookup(t *testing.T) {
	db := pgtest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newDealer(t, "11111111-1111-1111-1111-111111111111", "9876543210"))
	require.NoError(t, err)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", byID.Phone)
	assert.True(t, byID.CreditLimit.Equal(domain.DefaultCreditLimit))

	byPhone, err := repo.GetByPhone(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byPhone.ID)

	_, err = repo.GetByID(ctx, "22222222-2222-2222-2222-222222222222")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_DuplicatePhone(t *testing.T) {
	db := pgtest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, newDealer(t, "11111111-1111-1111-1111-111111111111", "9876543210"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newDealer(t, "22222222-2222-2222-2222-222222222222", "9876543210"))
	assert.ErrorIs(t, err, ports.ErrPhoneTaken)
}

func TestSessionStore_ResolveAndPurge(t *testing.T) {
	db := pgtest.Start(t)
	store := NewSessionStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.Save(ctx, domain.Session{Token: "live", DealerID: "d-1", ExpiresAt: now.Add(time.Hour), CreatedAt: now}))
	require.NoError(t, store.Save(ctx, domain.Session{Token: "stale", DealerID: "d-1", ExpiresAt: now.Add(-time.Hour), CreatedAt: now}))

	session, err := store.Resolve(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "d-1", session.DealerID)

	_, err = store.Resolve(ctx, "stale")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	require.NoError(t, store.Delete(ctx, "live"))
	_, err = store.Resolve(ctx, "live")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestOTPStore_ReplaceAndDelete(t *testing.T) {
	db := pgtest.Start(t)
	store := NewOTPStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	missing, err := store.Get(ctx, "d-1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.Save(ctx, domain.OTPChallenge{DealerID: "d-1", CodeHash: "first", ExpiresAt: now.Add(time.Minute), CreatedAt: now}))
	require.NoError(t, store.Save(ctx, domain.OTPChallenge{DealerID: "d-1", CodeHash: "second", ExpiresAt: now.Add(time.Minute), CreatedAt: now}))

	challenge, err := store.Get(ctx, "d-1")
	require.NoError(t, err)
	assert.Equal(t, "second", challenge.CodeHash)

	require.NoError(t, store.Delete(ctx, "d-1"))
	challenge, err = store.Get(ctx, "d-1")
	require.NoError(t, err)
	assert.Nil(t, challenge)
}
