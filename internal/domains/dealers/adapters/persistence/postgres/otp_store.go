package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/cement-dealer-portal/internal/domains/dealers/domain"
	"github.com/Apurer/cement-dealer-portal/internal/domains/dealers/ports"
)

var _ ports.OTPStore = (*OTPStore)(nil)

// OTPStore keeps pending one-time-password challenges in PostgreSQL.
type OTPStore struct {
	db *gorm.DB
}

func NewOTPStore(db *gorm.DB) *OTPStore {
	return &OTPStore{db: db}
}

type otpRecord struct {
	DealerID  string    `gorm:"primaryKey;column:dealer_id;size:36"`
	CodeHash  string    `gorm:"column:code_hash;size:72"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (otpRecord) TableName() string { return "dealer_otp_challenges" }

// Save replaces the pending challenge of the dealer.
func (s *OTPStore) Save(ctx context.Context, challenge domain.OTPChallenge) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	rec := otpRecord{
		DealerID:  challenge.DealerID,
		CodeHash:  challenge.CodeHash,
		ExpiresAt: challenge.ExpiresAt,
		CreatedAt: challenge.CreatedAt,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dealer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"code_hash", "expires_at", "created_at"}),
		}).
		Create(&rec).Error
}

// Get returns the pending challenge or nil.
func (s *OTPStore) Get(ctx context.Context, dealerID string) (*domain.OTPChallenge, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var rec otpRecord
	if err := s.db.WithContext(ctx).First(&rec, "dealer_id = ?", dealerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.OTPChallenge{
		DealerID:  rec.DealerID,
		CodeHash:  rec.CodeHash,
		ExpiresAt: rec.ExpiresAt,
		CreatedAt: rec.CreatedAt,
	}, nil
}

// Delete drops the challenge of the dealer.
func (s *OTPStore) Delete(ctx context.Context, dealerID string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&otpRecord{}, "dealer_id = ?", dealerID).Error
}

// PurgeExpired removes challenges that can no longer be redeemed.
func (s *OTPStore) PurgeExpired(ctx context.Context) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).Where("expires_at <= ?", time.Now()).Delete(&otpRecord{})
	return result.RowsAffected, result.Error
}

func (s *OTPStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres otp store not configured")
	}
	return nil
}
