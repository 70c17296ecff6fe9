package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/switchserver/identity/internal/api/middleware"
	"github.com/switchserver/identity/internal/core/auth"
	"github.com/switchserver/identity/internal/core/domain"
	"github.com/switchserver/identity/internal/core/service"
	"github.com/switchserver/identity/internal/core/validation"
	"github.com/switchserver/identity/internal/infrastructure/db/memory"
)

const adminToken = "operator-key"

type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  []domain.FieldError `json:"errors"`
}

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	tokens, err := auth.NewTokenManager("router-secret", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	users := service.NewUserService(
		memory.NewUserStore(domain.RolePassenger),
		memory.NewUserStore(domain.RoleDriver),
		validation.NewEngine(),
		auth.NewBcryptHasher(bcrypt.MinCost),
		tokens,
		zerolog.Nop(),
	)
	return NewRouter(Dependencies{
		Users:      users,
		Tokens:     tokens,
		AdminToken: adminToken,
		Log:        zerolog.Nop(),
		Registry:   prometheus.NewRegistry(),
	})
}

func do(t *testing.T, e *echo.Echo, method, path, body string, headers map[string]string) (int, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: invalid json %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, env
}

func bearer(token string) map[string]string {
	return map[string]string{echo.HeaderAuthorization: "Bearer " + token}
}

const passengerBody = `{"email":"rider@example.com","password":"Abcdefg1","firstName":"John","lastName":"Doe","username":"jd","phoneNumber":"+2348012345678","role":"passenger"}`

const driverBody = `{"email":"driver@example.com","password":"Secret123","firstName":"Ada","lastName":"Obi","username":"ada","phoneNumber":"+2348012345678","role":"driver",
	"licenseNumber":"LIC-12345","licenseExpiryDate":"2099-01-01",
	"vehicleDetails":{"make":"Toyota","model":"Corolla","year":2020,"color":"Blue","licensePlate":"ABC-123","insuranceNumber":"INS-99999","insuranceExpiryDate":"2099-12-31"},
	"documents":{"driverLicense":"https://x.io/a","vehicleRegistration":"https://x.io/b","insuranceCertificate":"https://x.io/c","backgroundCheck":"https://x.io/d"}}`

func login(t *testing.T, e *echo.Echo, email, password string) (id, token string) {
	t.Helper()
	code, env := do(t, e, http.MethodPost, "/api/auth/login",
		`{"email":"`+email+`","password":"`+password+`"}`, nil)
	if code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%s)", code, env.Message)
	}
	var data struct {
		User  struct{ ID string } `json:"user"`
		Token string              `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("login data: %v", err)
	}
	return data.User.ID, data.Token
}

func TestRouter_PassengerLifecycle(t *testing.T) {
	e := newTestRouter(t)

	code, env := do(t, e, http.MethodPost, "/api/auth/register/passenger", passengerBody, nil)
	if code != http.StatusCreated || !env.Success || env.Message != "Passenger registered successfully" {
		t.Fatalf("register: %d %+v", code, env)
	}
	if strings.Contains(string(env.Data), "password") {
		t.Fatalf("registration response leaked credentials: %s", env.Data)
	}

	code, env = do(t, e, http.MethodPost, "/api/auth/register/passenger", passengerBody, nil)
	if code != http.StatusBadRequest || env.Message != "User with this email already exists" {
		t.Fatalf("duplicate: %d %+v", code, env)
	}

	id, token := login(t, e, "rider@example.com", "Abcdefg1")

	code, env = do(t, e, http.MethodGet, "/api/auth/profile", "", bearer(token))
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"email":"rider@example.com"`) {
		t.Fatalf("profile: %d %s", code, env.Data)
	}

	code, env = do(t, e, http.MethodPut, "/api/auth/profile/passenger/"+id, `{"firstName":"Jane"}`, bearer(token))
	if code != http.StatusOK || env.Message != "Passenger profile updated successfully" {
		t.Fatalf("update: %d %+v", code, env)
	}
	if !strings.Contains(string(env.Data), `"firstName":"Jane"`) || !strings.Contains(string(env.Data), `"lastName":"Doe"`) {
		t.Fatalf("update did not merge: %s", env.Data)
	}

	code, env = do(t, e, http.MethodPost, "/api/auth/logout", "", nil)
	if code != http.StatusOK || env.Message != "Logout successful" {
		t.Fatalf("logout: %d %+v", code, env)
	}
}

func TestRouter_DriverRegistrationAndOwnership(t *testing.T) {
	e := newTestRouter(t)

	if code, env := do(t, e, http.MethodPost, "/api/auth/register/driver", driverBody, nil); code != http.StatusCreated {
		t.Fatalf("register driver: %d %+v", code, env)
	}
	if code, env := do(t, e, http.MethodPost, "/api/auth/register/passenger", passengerBody, nil); code != http.StatusCreated {
		t.Fatalf("register passenger: %d %+v", code, env)
	}

	driverID, driverToken := login(t, e, "driver@example.com", "Secret123")
	passengerID, passengerToken := login(t, e, "rider@example.com", "Abcdefg1")

	code, env := do(t, e, http.MethodPut, "/api/auth/profile/driver/"+driverID,
		`{"vehicleDetails":{"make":"Honda","model":"Civic","year":2021,"color":"Red","licensePlate":"XYZ-987","insuranceNumber":"INS-11111","insuranceExpiryDate":"2099-06-30"}}`,
		bearer(driverToken))
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"make":"Honda"`) {
		t.Fatalf("driver update: %d %s", code, env.Data)
	}

	// Passenger token on the driver route.
	code, env = do(t, e, http.MethodPut, "/api/auth/profile/driver/"+driverID, `{"firstName":"X"}`, bearer(passengerToken))
	if code != http.StatusForbidden || env.Message != "Access denied" {
		t.Fatalf("cross-role update: %d %+v", code, env)
	}

	// Driver token on its own role route but someone else's id.
	code, _ = do(t, e, http.MethodPut, "/api/auth/profile/driver/"+passengerID, `{"firstName":"X"}`, bearer(driverToken))
	if code != http.StatusForbidden {
		t.Fatalf("foreign id update: expected 403, got %d", code)
	}
}

func TestRouter_ValidationFailure(t *testing.T) {
	e := newTestRouter(t)

	code, env := do(t, e, http.MethodPost, "/api/auth/register/passenger",
		`{"email":"nope","password":"short","role":"passenger"}`, nil)
	if code != http.StatusBadRequest || env.Success {
		t.Fatalf("expected 400 failure, got %d %+v", code, env)
	}
	if len(env.Errors) < 2 {
		t.Fatalf("expected every violated field, got %+v", env.Errors)
	}
}

func TestRouter_LoginFailure(t *testing.T) {
	e := newTestRouter(t)
	do(t, e, http.MethodPost, "/api/auth/register/passenger", passengerBody, nil)

	for _, body := range []string{
		`{"email":"rider@example.com","password":"Wrong1234"}`,
		`{"email":"ghost@example.com","password":"Abcdefg1"}`,
	} {
		code, env := do(t, e, http.MethodPost, "/api/auth/login", body, nil)
		if code != http.StatusUnauthorized || env.Message != "Invalid email or password" {
			t.Fatalf("login %s: %d %+v", body, code, env)
		}
	}
}

func TestRouter_ProfileRequiresToken(t *testing.T) {
	e := newTestRouter(t)

	code, env := do(t, e, http.MethodGet, "/api/auth/profile", "", nil)
	if code != http.StatusUnauthorized || env.Message != "Access token required" {
		t.Fatalf("missing token: %d %+v", code, env)
	}

	code, _ = do(t, e, http.MethodGet, "/api/auth/profile", "", bearer("not-a-jwt"))
	if code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d", code)
	}
}

func TestRouter_AdminRoutes(t *testing.T) {
	e := newTestRouter(t)
	do(t, e, http.MethodPost, "/api/auth/register/passenger", passengerBody, nil)
	do(t, e, http.MethodPost, "/api/auth/register/driver", driverBody, nil)
	admin := map[string]string{middleware.HeaderAdminToken: adminToken}

	if code, _ := do(t, e, http.MethodGet, "/api/admin/users", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("admin without key: expected 401, got %d", code)
	}

	code, env := do(t, e, http.MethodGet, "/api/admin/users", "", admin)
	if code != http.StatusOK {
		t.Fatalf("list: %d %+v", code, env)
	}
	var all []map[string]any
	if err := json.Unmarshal(env.Data, &all); err != nil || len(all) != 2 {
		t.Fatalf("list all: %v %s", err, env.Data)
	}
	if all[0]["role"] != "passenger" || all[1]["role"] != "driver" {
		t.Fatalf("expected passengers first: %s", env.Data)
	}

	code, env = do(t, e, http.MethodGet, "/api/admin/users?role=driver", "", admin)
	var drivers []map[string]any
	if err := json.Unmarshal(env.Data, &drivers); err != nil || code != http.StatusOK || len(drivers) != 1 {
		t.Fatalf("list drivers: %d %s", code, env.Data)
	}

	if code, _ := do(t, e, http.MethodGet, "/api/admin/users?role=admin", "", admin); code != http.StatusBadRequest {
		t.Fatalf("unknown role: expected 400, got %d", code)
	}

	id, _ := drivers[0]["id"].(string)
	if code, env := do(t, e, http.MethodDelete, "/api/admin/users/"+id, "", admin); code != http.StatusOK {
		t.Fatalf("delete: %d %+v", code, env)
	}
	if code, _ := do(t, e, http.MethodDelete, "/api/admin/users/"+id, "", admin); code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", code)
	}
}

func TestRouter_Health(t *testing.T) {
	e := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("liveness: expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("readiness without deps: expected 200, got %d", rec.Code)
	}
}
