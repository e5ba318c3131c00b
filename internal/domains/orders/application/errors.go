package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
)

// ErrInvalidInput signals a malformed checkout or status request.
var ErrInvalidInput = errors.New("invalid order input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidPaymentMethod) ||
		errors.Is(err, domain.ErrEmptyDeliveryAddress) ||
		errors.Is(err, domain.ErrInvalidStatus) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
