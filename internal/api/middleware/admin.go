package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/switchserver/identity/internal/api/metrics"
)

// HeaderAdminToken carries the operator key for /api/admin routes.
const HeaderAdminToken = "X-Admin-Token"

// AdminKey guards operator routes with a static shared key. An empty key
// rejects every request.
func AdminKey(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got := c.Request().Header.Get(HeaderAdminToken)
			if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				metrics.AuthRejectionsTotal.WithLabelValues("admin_key").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid admin token")
			}
			return next(c)
		}
	}
}
