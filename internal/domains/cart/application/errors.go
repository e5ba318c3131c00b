package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/cement-dealer-portal/internal/domains/cart/domain"
)

// ErrInvalidInput signals the request violated a cart invariant other than the MOQ.
var ErrInvalidInput = errors.New("invalid cart input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrMissingDealer) ||
		errors.Is(err, domain.ErrMissingProduct) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
