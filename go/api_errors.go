package portalserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	assistantapp "github.com/Apurer/cement-dealer-portal/internal/domains/assistant/application"
	cartapp "github.com/Apurer/cement-dealer-portal/internal/domains/cart/application"
	cartdomain "github.com/Apurer/cement-dealer-portal/internal/domains/cart/domain"
	cartports "github.com/Apurer/cement-dealer-portal/internal/domains/cart/ports"
	catalogapp "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/application"
	catalogports "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/ports"
	dealersapp "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/application"
	dealerports "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/ports"
	ordersapp "github.com/Apurer/cement-dealer-portal/internal/domains/orders/application"
	orderdomain "github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
	ordersports "github.com/Apurer/cement-dealer-portal/internal/domains/orders/ports"
	apierrors "github.com/Apurer/cement-dealer-portal/internal/shared/errors"
)

var problems = apierrors.NewChainedResponder("", businessProblem, authProblem, lookupProblem, inputProblem)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	problems.Respond(c, problem)
}

// respondPortalError renders err as problem details. Unmapped errors become a generic 500.
func respondPortalError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	problems.RespondError(c, err)
}

func businessProblem(err error) (apierrors.ProblemDetail, bool) {
	var moq *cartdomain.MinimumOrderQuantityError
	if errors.As(err, &moq) {
		return apierrors.ErrMinimumOrderQuantity.
			WithDetail(moq.Error()).
			WithExtension("minimum", moq.Minimum).
			WithExtension("requested", moq.Requested), true
	}
	var stock *orderdomain.InsufficientStockError
	if errors.As(err, &stock) {
		return apierrors.ErrInsufficientStock.
			WithDetail(stock.Error()).
			WithExtension("productId", stock.ProductID).
			WithExtension("available", stock.Available).
			WithExtension("requested", stock.Requested), true
	}
	var credit *orderdomain.CreditLimitExceededError
	if errors.As(err, &credit) {
		return apierrors.ErrCreditLimitExceeded.
			WithDetail(credit.Error()).
			WithExtension("available", credit.Available.Round(2).InexactFloat64()).
			WithExtension("required", credit.Required.Round(2).InexactFloat64()), true
	}
	switch {
	case errors.Is(err, orderdomain.ErrEmptyCart):
		return apierrors.ErrEmptyCart.WithDetail("Cart is empty"), true
	case errors.Is(err, orderdomain.ErrInvalidTransition),
		errors.Is(err, ordersports.ErrIdempotencyConflict),
		errors.Is(err, ordersports.ErrConflict),
		errors.Is(err, dealerports.ErrPhoneTaken):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, assistantapp.ErrRateLimited):
		return apierrors.ErrRateLimited.WithDetail("Too many chat requests, slow down"), true
	}
	return apierrors.ProblemDetail{}, false
}

func authProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, dealersapp.ErrUnauthenticated):
		return apierrors.ErrUnauthorized.WithDetail("Not authenticated"), true
	case errors.Is(err, dealersapp.ErrInvalidOTP):
		return apierrors.ErrValidation.WithDetail("Invalid or expired OTP"), true
	}
	return apierrors.ProblemDetail{}, false
}

func lookupProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, dealerports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail("Phone number not registered"), true
	case errors.Is(err, catalogports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail("Product not found"), true
	case errors.Is(err, cartports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail("Cart item not found"), true
	case errors.Is(err, ordersports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail("Order not found"), true
	}
	return apierrors.ProblemDetail{}, false
}

func inputProblem(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, dealersapp.ErrInvalidInput) ||
		errors.Is(err, catalogapp.ErrInvalidInput) ||
		errors.Is(err, cartapp.ErrInvalidInput) ||
		errors.Is(err, ordersapp.ErrInvalidInput) ||
		errors.Is(err, assistantapp.ErrInvalidInput) {
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
