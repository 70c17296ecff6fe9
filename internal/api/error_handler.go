package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/switchserver/identity/internal/api/handler"
	"github.com/switchserver/identity/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the same envelope successful responses use, with success=false.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.Envelope) {
	// Echo's own errors (router 404/405, body limit, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, failure(fmt.Sprintf("%v", he.Message))
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, handler.Envelope{
			Message: ve.First(),
			Errors:  ve.Fields,
		}
	}

	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusBadRequest, failure("User with this email already exists")
	case errors.Is(err, domain.ErrExpiredLicense):
		return http.StatusBadRequest, failure("License has expired")
	case errors.Is(err, domain.ErrExpiredInsurance):
		return http.StatusBadRequest, failure("Insurance has expired")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, failure("Invalid email or password")
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, failure("Invalid or expired token")
	case errors.Is(err, domain.ErrAccessDenied):
		return http.StatusForbidden, failure("Access denied")
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, failure("User not found")
	}

	// Store failures and anything unexpected: log the cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, failure("Internal server error")
}

func failure(msg string) handler.Envelope {
	return handler.Envelope{Message: msg}
}
