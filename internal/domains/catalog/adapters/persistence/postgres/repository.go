package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/cement-dealer-portal/internal/domains/catalog/domain"
	"github.com/Apurer/cement-dealer-portal/internal/domains/catalog/ports"
	"github.com/Apurer/cement-dealer-portal/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists products in PostgreSQL using GORM-mapped columns.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. The caller owns the DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ProductRecord is the products row; the orders ledger locks and updates it during checkout.
type ProductRecord struct {
	ID             string            `gorm:"primaryKey;column:id;size:36"`
	Name           string            `gorm:"column:name;index"`
	Description    string            `gorm:"column:description"`
	Category       string            `gorm:"column:category;size:32"`
	Grade          string            `gorm:"column:grade;size:32"`
	Packaging      string            `gorm:"column:packaging;size:32"`
	Price          decimal.Decimal   `gorm:"column:price;type:numeric(14,2);not null"`
	Stock          int               `gorm:"column:stock;not null;check:chk_products_stock,stock >= 0"`
	ImageURL       string            `gorm:"column:image_url"`
	Specifications map[string]string `gorm:"column:specifications;serializer:json"`
	Tags           pq.StringArray    `gorm:"column:tags;type:text[]"`
	CreatedAt      time.Time         `gorm:"column:created_at"`
	UpdatedAt      time.Time         `gorm:"column:updated_at"`
}

func (ProductRecord) TableName() string { return "products" }

// NewProductRecord maps a domain product onto its row.
func NewProductRecord(p *domain.Product) ProductRecord {
	return ProductRecord{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Category:       p.Category,
		Grade:          p.Grade,
		Packaging:      p.Packaging,
		Price:          p.Price,
		Stock:          p.Stock,
		ImageURL:       p.ImageURL,
		Specifications: p.Specifications,
		Tags:           pq.StringArray(append([]string(nil), p.Tags...)),
	}
}

// Save inserts or updates a product.
func (r *Repository) Save(ctx context.Context, product *domain.Product) (*projection.Projection[*domain.Product], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("cannot save nil product")
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	record := NewProductRecord(product)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "description", "category", "grade", "packaging",
				"price", "stock", "image_url", "specifications", "tags", "updated_at",
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, product.ID)
}

// GetByID fetches a product by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*projection.Projection[*domain.Product], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record ProductRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.ToProjection(), nil
}

// List returns products ordered by name, optionally restricted to a tag.
func (r *Repository) List(ctx context.Context, filter ports.Filter) ([]*projection.Projection[*domain.Product], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Order("name ASC").Order("id ASC")
	if filter.Tag != "" {
		query = query.Where("? = ANY(tags)", filter.Tag)
	}
	var records []ProductRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*projection.Projection[*domain.Product], 0, len(records))
	for i := range records {
		list = append(list, records[i].ToProjection())
	}
	return list, nil
}

// Count reports the number of catalog entries.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&ProductRecord{}).Count(&n).Error
	return n, err
}

// ToDomain rebuilds the domain product.
func (r ProductRecord) ToDomain() *domain.Product {
	p := &domain.Product{
		ID:    r.ID,
		Name:  r.Name,
		Price: r.Price,
		Stock: r.Stock,
		Tags:  append([]string(nil), r.Tags...),
	}
	p.Describe(r.Description, r.Category, r.Grade, r.Packaging, r.ImageURL)
	p.SetSpecifications(r.Specifications)
	return p
}

// ToProjection wraps the domain product with its persistence timestamps.
func (r ProductRecord) ToProjection() *projection.Projection[*domain.Product] {
	return projection.Of(r.ToDomain(), r.CreatedAt, r.UpdatedAt)
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres product repository not configured")
	}
	return nil
}
