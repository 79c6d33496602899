package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/sweetshop/sweet-api/internal/api/metrics"
	"github.com/sweetshop/sweet-api/internal/core/domain"
)

// Authorize rejects the request with domain.ErrForbidden unless the role set
// by Auth is allowed to perform op. It must run after Auth.
func Authorize(op domain.Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextRole).(string)
			if err := domain.Authorize(role, op); err != nil {
				metrics.AuthorizationDeniedTotal.WithLabelValues(string(op)).Inc()
				return err
			}
			return next(c)
		}
	}
}
