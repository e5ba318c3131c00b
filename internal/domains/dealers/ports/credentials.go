package ports

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Apurer/cement-dealer-portal/internal/domains/dealers/domain"
)

// ErrSessionNotFound is returned when a token does not resolve to a live session.
var ErrSessionNotFound = errors.New("session not found")

// OTPStore keeps at most one pending challenge per dealer.
type OTPStore interface {
	Save(ctx context.Context, challenge domain.OTPChallenge) error
	// Get returns the pending challenge, or nil when none exists.
	Get(ctx context.Context, dealerID string) (*domain.OTPChallenge, error)
	Delete(ctx context.Context, dealerID string) error
}

// SessionStore abstracts bearer session persistence.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	// Resolve returns the session for token or ErrSessionNotFound.
	Resolve(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}

// OTPSender delivers a one-time password to the dealer's phone.
type OTPSender interface {
	Send(ctx context.Context, phone, code string) error
}

// LogOTPSender writes codes to the structured log; used where no SMS gateway exists.
type LogOTPSender struct {
	Logger *slog.Logger
}

func (s LogOTPSender) Send(ctx context.Context, phone, code string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "otp issued", slog.String("phone", phone), slog.String("otp", code))
	return nil
}
