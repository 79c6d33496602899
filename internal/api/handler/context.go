package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sweetshop/sweet-api/internal/api/middleware"
)

// identity is the caller as described by the verified token.
type identity struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// ctxIdentity extracts the claims injected by the Auth middleware. A missing
// role means the middleware did not run on this route.
func ctxIdentity(c echo.Context) (identity, error) {
	id := identity{}
	id.UserID, _ = c.Get(middleware.ContextUserID).(string)
	id.Email, _ = c.Get(middleware.ContextEmail).(string)
	id.Role, _ = c.Get(middleware.ContextRole).(string)
	if id.Role == "" || id.UserID == "" {
		return identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}
