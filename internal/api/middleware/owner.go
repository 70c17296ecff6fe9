package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/switchserver/identity/internal/api/metrics"
	"github.com/switchserver/identity/internal/core/domain"
)

// Owner lets a request through only when the authenticated identity has the
// given role and its id equals the path parameter named param. It must run
// after Auth.
func Owner(role domain.Role, param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(ClaimsKey).(*domain.Claims)
			if !ok || claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if claims.Role != role || claims.ID != c.Param(param) {
				metrics.AuthRejectionsTotal.WithLabelValues("forbidden").Inc()
				return domain.ErrAccessDenied
			}
			return next(c)
		}
	}
}
