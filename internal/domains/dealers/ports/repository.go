package ports

import (
	"context"
	"errors"

	"github.com/Apurer/cement-dealer-portal/internal/domains/dealers/domain"
)

var (
	ErrNotFound   = errors.New("dealer not found")
	ErrPhoneTaken = errors.New("phone number already registered")
)

// Repository persists dealer identities.
type Repository interface {
	// Create inserts a new dealer; ErrPhoneTaken when the phone is already registered.
	Create(ctx context.Context, dealer *domain.Dealer) (*domain.Dealer, error)
	GetByID(ctx context.Context, id string) (*domain.Dealer, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Dealer, error)
}
