package orders

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.temporal.io/sdk/temporal"

	dealerports "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/ports"
	ordersapp "github.com/Apurer/cement-dealer-portal/internal/domains/orders/application"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
	ordersports "github.com/Apurer/cement-dealer-portal/internal/domains/orders/ports"
)

// Application error types carried across the workflow boundary.
const (
	ErrTypeInsufficientStock   = "InsufficientStock"
	ErrTypeCreditLimitExceeded = "CreditLimitExceeded"
	ErrTypeEmptyCart           = "EmptyCart"
	ErrTypeInvalidInput        = "InvalidInput"
	ErrTypeIdempotencyConflict = "IdempotencyConflict"
	ErrTypeConflict            = "CheckoutConflict"
	ErrTypeDealerNotFound      = "DealerNotFound"
)

type creditDetails struct {
	Available decimal.Decimal
	Required  decimal.Decimal
}

// EncodeError turns checkout rejections into non-retryable application errors.
// Infrastructure errors are returned unchanged.
func EncodeError(err error) error {
	if err == nil {
		return nil
	}
	var stockErr *domain.InsufficientStockError
	var creditErr *domain.CreditLimitExceededError
	switch {
	case errors.As(err, &stockErr):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInsufficientStock, err, *stockErr)
	case errors.As(err, &creditErr):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeCreditLimitExceeded, err,
			creditDetails{Available: creditErr.Available, Required: creditErr.Required})
	case errors.Is(err, domain.ErrEmptyCart):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeEmptyCart, err)
	case errors.Is(err, ordersapp.ErrInvalidInput):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, err)
	case errors.Is(err, ordersports.ErrIdempotencyConflict):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeIdempotencyConflict, err)
	case errors.Is(err, ordersports.ErrConflict):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeConflict, err)
	case errors.Is(err, dealerports.ErrNotFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeDealerNotFound, err)
	}
	return err
}

// DecodeError rebuilds the domain error carried by an application error anywhere in err's chain.
func DecodeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	switch appErr.Type() {
	case ErrTypeInsufficientStock:
		var details domain.InsufficientStockError
		if appErr.HasDetails() && appErr.Details(&details) == nil {
			return &details
		}
		return domain.ErrInsufficientStock
	case ErrTypeCreditLimitExceeded:
		var details creditDetails
		if appErr.HasDetails() && appErr.Details(&details) == nil {
			return &domain.CreditLimitExceededError{Available: details.Available, Required: details.Required}
		}
		return domain.ErrCreditLimitExceeded
	case ErrTypeEmptyCart:
		return domain.ErrEmptyCart
	case ErrTypeInvalidInput:
		return fmt.Errorf("%w: %s", ordersapp.ErrInvalidInput, appErr.Message())
	case ErrTypeIdempotencyConflict:
		return ordersports.ErrIdempotencyConflict
	case ErrTypeConflict:
		return ordersports.ErrConflict
	case ErrTypeDealerNotFound:
		return dealerports.ErrNotFound
	}
	return err
}
