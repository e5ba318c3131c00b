package errors

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// Responder renders ProblemDetail values as application/problem+json.
type Responder struct {
	// BaseURI is prepended to relative problem type URIs.
	BaseURI string
}

// Respond writes problem, defaulting Instance to the request path.
func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.BaseURI != "" && len(problem.Type) > 0 && problem.Type[0] == '/' {
		problem.Type = r.BaseURI + problem.Type
	}
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// ErrorMapper translates an application error into a ProblemDetail.
// It reports false when the error is not one it recognises.
type ErrorMapper func(err error) (ProblemDetail, bool)

// ChainedResponder tries each mapper in order before falling back to a 500.
type ChainedResponder struct {
	*Responder
	mappers []ErrorMapper
	logger  *slog.Logger
}

// NewChainedResponder creates a responder with the given mappers.
func NewChainedResponder(baseURI string, mappers ...ErrorMapper) *ChainedResponder {
	return &ChainedResponder{
		Responder: &Responder{BaseURI: baseURI},
		mappers:   mappers,
	}
}

// WithLogger returns a copy that logs errors no mapper recognised.
func (r *ChainedResponder) WithLogger(logger *slog.Logger) *ChainedResponder {
	clone := *r
	clone.logger = logger
	return &clone
}

// RespondError renders err through the first matching mapper.
// A ProblemDetail error is passed through untouched; anything else becomes a
// generic internal error so storage or driver detail never reaches the caller.
func (r *ChainedResponder) RespondError(c *gin.Context, err error) {
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			r.Respond(c, problem)
			return
		}
	}
	var problem ProblemDetail
	if errors.As(err, &problem) {
		r.Respond(c, problem)
		return
	}
	if err != nil {
		_ = c.Error(err)
		logger := r.logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.ErrorContext(c.Request.Context(), "unmapped request error",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()))
	}
	r.Respond(c, ErrInternal.WithDetail("an unexpected error occurred"))
}
