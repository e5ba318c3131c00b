package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/cement-dealer-portal/internal/domains/cart/domain"
	"github.com/Apurer/cement-dealer-portal/internal/domains/cart/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists cart lines in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. The caller owns the DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ItemRecord is the cart_items row; checkout locks and deletes these rows.
type ItemRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:36"`
	DealerID  string    `gorm:"column:dealer_id;size:36;uniqueIndex:idx_cart_items_dealer_product,priority:1"`
	ProductID string    `gorm:"column:product_id;size:36;uniqueIndex:idx_cart_items_dealer_product,priority:2"`
	Quantity  int       `gorm:"column:quantity;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (ItemRecord) TableName() string { return "cart_items" }

// Upsert inserts the line or replaces the quantity of the dealer's existing line for the product.
func (r *Repository) Upsert(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.New("cannot save nil cart item")
	}
	record := toRecord(item)
	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dealer_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return nil, err
	}
	var stored ItemRecord
	if err := db.Where("dealer_id = ? AND product_id = ?", item.DealerID, item.ProductID).First(&stored).Error; err != nil {
		return nil, err
	}
	return stored.ToDomain(), nil
}

func (r *Repository) GetByID(ctx context.Context, dealerID, itemID string) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record ItemRecord
	if err := r.db.WithContext(ctx).Where("id = ? AND dealer_id = ?", itemID, dealerID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.ToDomain(), nil
}

func (r *Repository) Update(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.New("cannot save nil cart item")
	}
	result := r.db.WithContext(ctx).Model(&ItemRecord{}).
		Where("id = ? AND dealer_id = ?", item.ID, item.DealerID).
		Updates(map[string]any{"quantity": item.Quantity, "updated_at": item.UpdatedAt})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return item.Clone(), nil
}

func (r *Repository) ListByDealer(ctx context.Context, dealerID string) ([]*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []ItemRecord
	if err := r.db.WithContext(ctx).
		Where("dealer_id = ?", dealerID).
		Order("created_at ASC").Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	items := make([]*domain.Item, 0, len(records))
	for i := range records {
		items = append(items, records[i].ToDomain())
	}
	return items, nil
}

func (r *Repository) Delete(ctx context.Context, dealerID, itemID string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("id = ? AND dealer_id = ?", itemID, dealerID).Delete(&ItemRecord{}).Error
}

func (r *Repository) Clear(ctx context.Context, dealerID string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("dealer_id = ?", dealerID).Delete(&ItemRecord{}).Error
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres cart repository not configured")
	}
	return nil
}

func toRecord(item *domain.Item) ItemRecord {
	return ItemRecord{
		ID:        item.ID,
		DealerID:  item.DealerID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

// ToDomain rebuilds the domain line.
func (r ItemRecord) ToDomain() *domain.Item {
	return &domain.Item{
		ID:        r.ID,
		DealerID:  r.DealerID,
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
