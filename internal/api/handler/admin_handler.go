package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/switchserver/identity/internal/core/domain"
	"github.com/switchserver/identity/internal/core/ports"
)

// AdminHandler exposes operator-only listing and deletion.
type AdminHandler struct {
	users ports.UserService
}

func NewAdminHandler(users ports.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

type listUsersQuery struct {
	Role string `query:"role" validate:"omitempty,oneof=passenger driver"`
}

type userIDParam struct {
	ID string `param:"id" validate:"required,min=1"`
}

type deleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// ListUsers handles GET /api/admin/users?role=passenger|driver. Without a
// role every user is returned, passengers first.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	var q listUsersQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var (
		users []domain.User
		err   error
	)
	if q.Role == "" {
		users, err = h.users.ListAll(c.Request().Context())
	} else {
		users, err = h.users.ListByRole(c.Request().Context(), domain.Role(q.Role))
	}
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Users retrieved successfully", users)
}

// DeleteUser handles DELETE /api/admin/users/:id.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	var p userIDParam
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	if err := c.Validate(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	deleted, err := h.users.DeleteByID(c.Request().Context(), p.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return respond(c, http.StatusOK, "User deleted successfully", deleteResult{ID: p.ID, Deleted: true})
}
