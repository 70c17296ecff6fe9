package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/switchserver/identity/internal/core/domain"
)

// Envelope is the body of every API response, successful or not.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

func respond(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}
