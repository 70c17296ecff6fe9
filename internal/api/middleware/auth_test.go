package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/switchserver/identity/internal/core/auth"
	"github.com/switchserver/identity/internal/core/domain"
)

func newTokens(t *testing.T, now time.Time) *auth.TokenManager {
	t.Helper()
	m, err := auth.NewTokenManager("secret", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	return m.WithClock(func() time.Time { return now })
}

func issue(t *testing.T, m *auth.TokenManager) string {
	t.Helper()
	token, err := m.Issue(domain.Claims{ID: "u1", Email: "a@b.com", Role: domain.RolePassenger})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	tokens := newTokens(t, time.Now())
	signed := issue(t, tokens)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(tokens)(func(c echo.Context) error {
		called = true
		claims, ok := c.Get(ClaimsKey).(*domain.Claims)
		if !ok {
			t.Fatalf("claims not set")
		}
		if claims.ID != "u1" || claims.Role != domain.RolePassenger || claims.Email != "a@b.com" {
			t.Fatalf("unexpected claims: %+v", claims)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(newTokens(t, time.Now()))(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	e := echo.New()
	tokens := newTokens(t, time.Now())

	for _, header := range []string{"Token abc", "Bearer", "Bearer   ", issue(t, tokens)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := Auth(tokens)(func(c echo.Context) error {
			t.Fatalf("should not reach next for header %q", header)
			return nil
		})

		err := handler(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401 HTTPError, got %v", header, err)
		}
	}
}

func TestAuthMiddleware_ExpiredTokenNeverReachesHandler(t *testing.T) {
	e := echo.New()
	issuedAt := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	signed := issue(t, newTokens(t, issuedAt))
	verifier := newTokens(t, issuedAt.Add(2*time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(verifier)(func(c echo.Context) error {
		t.Fatalf("expired token reached the handler")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthMiddleware_ForeignSecret(t *testing.T) {
	e := echo.New()
	other, _ := auth.NewTokenManager("other-secret", time.Hour)
	signed := issue(t, other)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(newTokens(t, time.Now()))(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
