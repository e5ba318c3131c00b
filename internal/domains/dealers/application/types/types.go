package types

import (
	"time"

	"github.com/Apurer/cement-dealer-portal/internal/domains/dealers/domain"
)

// RegisterInput carries the self-registration form of a dealer.
type RegisterInput struct {
	Name         string
	Phone        string
	Email        string
	BusinessName string
	Address      string
	GSTNumber    string
}

// OTPDispatch describes an issued one-time password.
// Code is only surfaced to callers running with OTP echo enabled.
type OTPDispatch struct {
	Phone     string
	Code      string
	ExpiresAt time.Time
}

// AuthResult is returned after a successful OTP verification.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	Dealer    *domain.Dealer
}
