package ports

import (
	"context"

	dealertypes "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/application/types"
	"github.com/Apurer/cement-dealer-portal/internal/domains/dealers/domain"
)

// Service exposes the dealer identity use cases to adapters.
type Service interface {
	Register(ctx context.Context, input dealertypes.RegisterInput) (*domain.Dealer, error)
	SendOTP(ctx context.Context, phone string) (*dealertypes.OTPDispatch, error)
	VerifyOTP(ctx context.Context, phone, code string) (*dealertypes.AuthResult, error)
	Authenticate(ctx context.Context, token string) (*domain.Dealer, error)
	Logout(ctx context.Context, token string) error
	GetDealer(ctx context.Context, id string) (*domain.Dealer, error)
}
