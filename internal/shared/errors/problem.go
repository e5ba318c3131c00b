// Package errors renders portal failures as RFC 7807 Problem Details.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail is an RFC 7807 problem document. It doubles as an error so
// handlers can return one directly.
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy carrying detail.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension returns a copy with key set in Extensions. The receiver's map is never mutated.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	extensions := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		extensions[k] = v
	}
	extensions[key] = value
	p.Extensions = extensions
	return p
}

// Problem type URI references.
const (
	TypeValidation   = "/problems/validation-error"
	TypeBadRequest   = "/problems/bad-request"
	TypeUnauthorized = "/problems/unauthorized"
	TypeNotFound     = "/problems/not-found"
	TypeConflict     = "/problems/conflict"
	TypeRateLimited  = "/problems/rate-limited"
	TypeInternal     = "/problems/internal-error"

	TypeMinimumOrderQuantity = "/problems/minimum-order-quantity"
	TypeEmptyCart            = "/problems/empty-cart"
	TypeInsufficientStock    = "/problems/insufficient-stock"
	TypeCreditLimitExceeded  = "/problems/credit-limit-exceeded"
)

func newProblem(typ, title string, status int) ProblemDetail {
	return ProblemDetail{Type: typ, Title: title, Status: status}
}

// Templates; callers add Detail and Extensions per occurrence.
var (
	ErrValidation   = newProblem(TypeValidation, "Validation Error", http.StatusBadRequest)
	ErrBadRequest   = newProblem(TypeBadRequest, "Bad Request", http.StatusBadRequest)
	ErrUnauthorized = newProblem(TypeUnauthorized, "Unauthorized", http.StatusUnauthorized)
	ErrNotFound     = newProblem(TypeNotFound, "Resource Not Found", http.StatusNotFound)
	ErrConflict     = newProblem(TypeConflict, "Conflict", http.StatusConflict)
	ErrRateLimited  = newProblem(TypeRateLimited, "Too Many Requests", http.StatusTooManyRequests)
	ErrInternal     = newProblem(TypeInternal, "Internal Server Error", http.StatusInternalServerError)

	ErrMinimumOrderQuantity = newProblem(TypeMinimumOrderQuantity, "Minimum Order Quantity Not Met", http.StatusBadRequest)
	ErrEmptyCart            = newProblem(TypeEmptyCart, "Cart Is Empty", http.StatusBadRequest)
	ErrInsufficientStock    = newProblem(TypeInsufficientStock, "Insufficient Stock", http.StatusConflict)
	ErrCreditLimitExceeded  = newProblem(TypeCreditLimitExceeded, "Credit Limit Exceeded", http.StatusBadRequest)
)

// NewValidationProblem reports field-level validation failures.
func NewValidationProblem(fieldErrors map[string]string) ProblemDetail {
	return ErrValidation.WithExtension("fields", fieldErrors)
}
