package application

import "errors"

var (
	ErrInvalidInput = errors.New("invalid chat input")
	ErrRateLimited  = errors.New("chat rate limit exceeded")
)
