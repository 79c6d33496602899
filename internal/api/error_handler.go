package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sweetshop/sweet-api/internal/api/handler"
	"github.com/sweetshop/sweet-api/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"success": false, "message": "...", "errors": [...]}.
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

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, handler.ErrorResponse{Message: "Validation failed", Errors: ve.Fields}
	}

	// Echo's own errors (bind failures, 404 from router, auth middleware, rate limiting).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			logUnhandled(log, c, err)
		}
		return he.Code, handler.ErrorResponse{Message: httpMessage(he)}
	}

	switch {
	case errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrSweetExists),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrQuantityNotUpdatable):
		return http.StatusBadRequest, handler.ErrorResponse{Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, handler.ErrorResponse{Message: err.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, handler.ErrorResponse{Message: err.Error()}
	case errors.Is(err, domain.ErrSweetNotFound),
		errors.Is(err, domain.ErrNoSweets),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, handler.ErrorResponse{Message: err.Error()}
	}

	logUnhandled(log, c, err)
	return http.StatusInternalServerError, handler.ErrorResponse{Message: "internal server error"}
}

func httpMessage(he *echo.HTTPError) string {
	if he.Code >= http.StatusInternalServerError {
		return "internal server error"
	}
	if msg, ok := he.Message.(string); ok {
		return msg
	}
	return fmt.Sprintf("%v", he.Message)
}

func logUnhandled(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}
