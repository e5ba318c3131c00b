package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/Apurer/cement-dealer-portal/internal/domains/catalog/domain"
	"github.com/Apurer/cement-dealer-portal/internal/domains/catalog/ports"
	"github.com/Apurer/cement-dealer-portal/internal/platform/memstore"
	"github.com/Apurer/cement-dealer-portal/internal/shared/projection"
)

// ProductsTable holds *projection.Projection[*domain.Product] rows keyed by product id.
const ProductsTable = "products"

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory catalog adapter.
type Repository struct {
	store *memstore.Store
	now   func() time.Time
}

// NewRepository binds the repository to store; a nil store gets a private one.
func NewRepository(store *memstore.Store) *Repository {
	if store == nil {
		store = memstore.New()
	}
	return &Repository{store: store, now: time.Now}
}

func (r *Repository) Save(_ context.Context, product *domain.Product) (*projection.Projection[*domain.Product], error) {
	if product == nil {
		return nil, errors.New("cannot save nil product")
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	var saved *projection.Projection[*domain.Product]
	err := r.store.Update(func(tx *memstore.Tx) error {
		var previous *projection.Metadata
		if existing, ok := Lookup(tx, product.ID); ok {
			previous = &existing.Metadata
		}
		meta := projection.Stamp(previous, r.now().UTC())
		row := projection.Of(product.Clone(), meta.CreatedAt, meta.UpdatedAt)
		saved = cloneRow(row)
		return Put(tx, row)
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*projection.Projection[*domain.Product], error) {
	var found *projection.Projection[*domain.Product]
	err := r.store.View(func(tx *memstore.Tx) error {
		row, ok := Lookup(tx, id)
		if !ok {
			return ports.ErrNotFound
		}
		found = cloneRow(row)
		return nil
	})
	return found, err
}

func (r *Repository) List(_ context.Context, filter ports.Filter) ([]*projection.Projection[*domain.Product], error) {
	var list []*projection.Projection[*domain.Product]
	err := r.store.View(func(tx *memstore.Tx) error {
		memstore.Scan[*projection.Projection[*domain.Product]](tx, ProductsTable, func(_ string, row *projection.Projection[*domain.Product]) bool {
			if filter.Tag == "" || row.Entity.HasTag(filter.Tag) {
				list = append(list, cloneRow(row))
			}
			return true
		})
		return nil
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].Entity.Name == list[j].Entity.Name {
			return list[i].Entity.ID < list[j].Entity.ID
		}
		return list[i].Entity.Name < list[j].Entity.Name
	})
	return list, err
}

func (r *Repository) Count(_ context.Context) (int64, error) {
	var n int64
	err := r.store.View(func(tx *memstore.Tx) error {
		n = int64(tx.Len(ProductsTable))
		return nil
	})
	return n, err
}

// Lookup reads a product row inside an open transaction. The row must not be mutated in place.
func Lookup(tx *memstore.Tx, id string) (*projection.Projection[*domain.Product], bool) {
	return memstore.Get[*projection.Projection[*domain.Product]](tx, ProductsTable, id)
}

// Put writes a product row inside an open transaction.
func Put(tx *memstore.Tx, row *projection.Projection[*domain.Product]) error {
	return tx.Put(ProductsTable, row.Entity.ID, row)
}

func cloneRow(row *projection.Projection[*domain.Product]) *projection.Projection[*domain.Product] {
	return projection.Of(row.Entity.Clone(), row.Metadata.CreatedAt, row.Metadata.UpdatedAt)
}
