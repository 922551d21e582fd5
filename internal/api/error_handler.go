package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tourbooking/auth-service/internal/api/handler"
	"github.com/tourbooking/auth-service/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps the closed AuthError taxonomy to deterministic HTTP statuses.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders every failure in the canonical envelope.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ae *domain.AuthError
		if errors.As(err, &ae) {
			_ = c.JSON(statusForCode(ae.Code), handler.Failure(ae.Message, int(ae.Code)))
			return
		}

		// Echo's own errors (bind failures, 404 from router, throttle).
		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, handler.Failure(fmt.Sprintf("%v", he.Message), 0))
			return
		}

		// Anything else is an infrastructure failure the core has no
		// recovery for: log the real cause, return a generic message.
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("unhandled error")

		_ = c.JSON(http.StatusInternalServerError, handler.Failure("Server error. Contact us for more information.", 0))
	}
}

// statusForCode reproduces the transport mapping of the reference
// controllers: not-found conditions 404, empty-input and credential
// failures 400, lockout and persistence failures 422, anything else 500.
func statusForCode(code domain.ErrorCode) int {
	switch code {
	case domain.CodeAccountNotFound,
		domain.CodeRefreshAccountNotFound,
		domain.CodeFetchAfterCreateFailed:
		return http.StatusNotFound
	case domain.CodeEmailEmpty,
		domain.CodePasswordEmpty,
		domain.CodeInvalidPassword,
		domain.CodeTokenPairInvalid,
		domain.CodeRefreshTokenInvalid:
		return http.StatusBadRequest
	case domain.CodeAccountLockedOut,
		domain.CodeLoginPersistenceFailed,
		domain.CodeAccessTokenInvalid,
		domain.CodeRefreshPersistenceFailed,
		domain.CodeEmailAlreadyExists,
		domain.CodeCreateFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
