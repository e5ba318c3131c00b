package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Apurer/cement-dealer-portal/internal/domains/dealers/domain"
	"github.com/Apurer/cement-dealer-portal/internal/domains/dealers/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists dealers in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle
// and schema (see platform/migrations).
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type dealerRecord struct {
	ID                 string          `gorm:"primaryKey;column:id;size:36"`
	Name               string          `gorm:"column:name"`
	Phone              string          `gorm:"column:phone;size:20;uniqueIndex"`
	Email              string          `gorm:"column:email"`
	BusinessName       string          `gorm:"column:business_name"`
	Address            string          `gorm:"column:address"`
	GSTNumber          string          `gorm:"column:gst_number;size:20"`
	CreditLimit        decimal.Decimal `gorm:"column:credit_limit;type:numeric(14,2);not null"`
	OutstandingBalance decimal.Decimal `gorm:"column:outstanding_balance;type:numeric(14,2);not null;default:0"`
	CreatedAt          time.Time       `gorm:"column:created_at"`
	UpdatedAt          time.Time       `gorm:"column:updated_at"`
}

func (dealerRecord) TableName() string { return "dealers" }

// Create inserts a dealer; the unique phone index reports duplicates.
func (r *Repository) Create(ctx context.Context, dealer *domain.Dealer) (*domain.Dealer, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if dealer == nil {
		return nil, errors.New("dealer is nil")
	}
	record := toRecord(dealer)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrPhoneTaken
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// GetByID fetches a dealer by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Dealer, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByPhone fetches a dealer by normalized phone number.
func (r *Repository) GetByPhone(ctx context.Context, phone string) (*domain.Dealer, error) {
	return r.first(ctx, "phone = ?", phone)
}

func (r *Repository) first(ctx context.Context, query string, args ...any) (*domain.Dealer, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record dealerRecord
	if err := r.db.WithContext(ctx).Where(query, args...).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres dealer repository not configured")
	}
	return nil
}

func toRecord(d *domain.Dealer) dealerRecord {
	return dealerRecord{
		ID:                 d.ID,
		Name:               d.Name,
		Phone:              d.Phone,
		Email:              d.Email,
		BusinessName:       d.BusinessName,
		Address:            d.Address,
		GSTNumber:          d.GSTNumber,
		CreditLimit:        d.CreditLimit,
		OutstandingBalance: d.OutstandingBalance,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

func (r dealerRecord) toDomain() *domain.Dealer {
	return &domain.Dealer{
		ID:                 r.ID,
		Name:               r.Name,
		Phone:              r.Phone,
		Email:              r.Email,
		BusinessName:       r.BusinessName,
		Address:            r.Address,
		GSTNumber:          r.GSTNumber,
		CreditLimit:        r.CreditLimit,
		OutstandingBalance: r.OutstandingBalance,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}
