package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/LessonsQueue/QueueManager/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrQueueNotFound),
		errors.Is(err, domain.ErrNotInQueue):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrAlreadyInQueue),
		errors.Is(err, domain.ErrAlreadyVerified),
		errors.Is(err, domain.ErrAlreadyApproved),
		errors.Is(err, domain.ErrQueueAlreadyPending):
		return http.StatusConflict, err.Error()

	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrQueueClosed):
		return http.StatusForbidden, err.Error()

	case errors.Is(err, domain.ErrEmailNotVerified),
		errors.Is(err, domain.ErrNotApproved),
		errors.Is(err, domain.ErrInvalidPassword),
		errors.Is(err, domain.ErrBadAccessToken),
		errors.Is(err, domain.ErrBadRefreshToken),
		errors.Is(err, domain.ErrStaleCredentials):
		return http.StatusUnauthorized, err.Error()

	case errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenExpired):
		return http.StatusBadRequest, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
