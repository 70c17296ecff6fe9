package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/switchserver/identity/internal/api/middleware"
	"github.com/switchserver/identity/internal/core/domain"
)

// ctxClaims returns the identity injected by the Auth middleware. A missing
// value means the route was mounted without it, so the request is rejected.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, ok := c.Get(middleware.ClaimsKey).(*domain.Claims)
	if !ok || claims == nil || claims.ID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
