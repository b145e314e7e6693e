package http

import (
	"errors"
	"net/http"

	"github.com/jangulo01/webhookd/internal/domain"
	"github.com/jangulo01/webhookd/internal/platform/cqrs"
)

// statusFor maps a core error to the HTTP status an admin client should see.
// Anything unrecognized is a 500 — the core never surfaces unexpected
// condition types as 4xx.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrConfigNotFound), errors.Is(err, domain.ErrMessageNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConfigExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotCancellable), errors.Is(err, domain.ErrNotClaimed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPayloadRejected), errors.Is(err, domain.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, cqrs.ErrCommandValidation), errors.Is(err, cqrs.ErrQueryValidation):
		return http.StatusBadRequest
	case errors.Is(err, cqrs.ErrCommandHandlerNotFound), errors.Is(err, cqrs.ErrQueryHandlerNotFound):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
