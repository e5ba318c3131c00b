package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/cement-dealer-portal/internal/domains/dealers/domain"
	"github.com/Apurer/cement-dealer-portal/internal/domains/dealers/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid dealer input")
	// ErrInvalidOTP covers wrong, expired, and never-issued codes alike.
	ErrInvalidOTP = errors.New("invalid or expired otp")
	// ErrUnauthenticated signals a missing, unknown, or expired bearer token.
	ErrUnauthenticated = errors.New("not authenticated")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrInvalidPhone) ||
		errors.Is(err, domain.ErrInvalidEmail) ||
		errors.Is(err, domain.ErrEmptyBusinessName) ||
		errors.Is(err, domain.ErrEmptyAddress) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, ports.ErrSessionNotFound) {
		return fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return err
}
