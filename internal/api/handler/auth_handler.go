package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/switchserver/identity/internal/api/metrics"
	"github.com/switchserver/identity/internal/core/domain"
	"github.com/switchserver/identity/internal/core/ports"
)

// AuthHandler serves registration, login and the caller's own profile.
// Request bodies are passed to the service untouched; validation happens
// there so every field error can be reported at once.
type AuthHandler struct {
	users ports.UserService
}

func NewAuthHandler(users ports.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

// RegisterPassenger handles POST /api/auth/register/passenger.
func (h *AuthHandler) RegisterPassenger(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}

	p, err := h.users.RegisterPassenger(c.Request().Context(), body)
	metrics.RegistrationsTotal.WithLabelValues(string(domain.RolePassenger), registrationOutcome(err)).Inc()
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Passenger registered successfully", p)
}

// RegisterDriver handles POST /api/auth/register/driver.
func (h *AuthHandler) RegisterDriver(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}

	d, err := h.users.RegisterDriver(c.Request().Context(), body)
	metrics.RegistrationsTotal.WithLabelValues(string(domain.RoleDriver), registrationOutcome(err)).Inc()
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Driver registered successfully", d)
}

// Login handles POST /api/auth/login and returns {user, token}.
func (h *AuthHandler) Login(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}

	res, err := h.users.Login(c.Request().Context(), body)
	metrics.LoginsTotal.WithLabelValues(loginOutcome(err)).Inc()
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Login successful", res)
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so the client
// simply discards its copy.
func (h *AuthHandler) Logout(c echo.Context) error {
	return respond(c, http.StatusOK, "Logout successful", nil)
}

// Profile handles GET /api/auth/profile for the authenticated caller.
func (h *AuthHandler) Profile(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	u, err := h.users.GetProfile(c.Request().Context(), claims.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Profile retrieved successfully", u)
}

// UpdatePassenger handles PUT /api/auth/profile/passenger/:id. Ownership is
// enforced by middleware before this runs.
func (h *AuthHandler) UpdatePassenger(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}

	p, err := h.users.UpdatePassenger(c.Request().Context(), c.Param("id"), body)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Passenger not found")
		}
		return err
	}
	return respond(c, http.StatusOK, "Passenger profile updated successfully", p)
}

// UpdateDriver handles PUT /api/auth/profile/driver/:id.
func (h *AuthHandler) UpdateDriver(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}

	d, err := h.users.UpdateDriver(c.Request().Context(), c.Param("id"), body)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Driver not found")
		}
		return err
	}
	return respond(c, http.StatusOK, "Driver profile updated successfully", d)
}

func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "unable to read request body")
	}
	return body, nil
}

func registrationOutcome(err error) string {
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return "created"
	case errors.As(err, &ve):
		return "invalid"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "duplicate"
	case errors.Is(err, domain.ErrExpiredLicense), errors.Is(err, domain.ErrExpiredInsurance):
		return "expired"
	default:
		return "error"
	}
}

func loginOutcome(err error) string {
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.As(err, &ve):
		return "invalid"
	default:
		return "error"
	}
}
