package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/switchserver/identity/internal/core/domain"
)

func ownerContext(claims *domain.Claims, id string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	if claims != nil {
		c.Set(ClaimsKey, claims)
	}
	return c, rec
}

func TestOwner_Allows(t *testing.T) {
	c, rec := ownerContext(&domain.Claims{ID: "u1", Role: domain.RolePassenger}, "u1")

	called := false
	handler := Owner(domain.RolePassenger, "id")(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestOwner_ForbidsOtherUser(t *testing.T) {
	c, _ := ownerContext(&domain.Claims{ID: "u1", Role: domain.RolePassenger}, "u2")

	handler := Owner(domain.RolePassenger, "id")(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestOwner_ForbidsOtherRole(t *testing.T) {
	c, _ := ownerContext(&domain.Claims{ID: "u1", Role: domain.RoleDriver}, "u1")

	handler := Owner(domain.RolePassenger, "id")(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestOwner_RequiresClaims(t *testing.T) {
	c, _ := ownerContext(nil, "u1")

	handler := Owner(domain.RolePassenger, "id")(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	err := handler(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
