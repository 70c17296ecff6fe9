package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/switchserver/identity/internal/api/handler"
	"github.com/switchserver/identity/internal/api/middleware"
	"github.com/switchserver/identity/internal/core/domain"
	"github.com/switchserver/identity/internal/core/ports"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Users      ports.UserService
	Tokens     ports.TokenManager
	AdminToken string
	Pingers    []handler.Pinger
	Log        zerolog.Logger
	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "identity",
		Registerer: registerer(deps.Registry),
	}))

	authHandler := handler.NewAuthHandler(deps.Users)
	adminHandler := handler.NewAdminHandler(deps.Users)
	authMiddleware := middleware.Auth(deps.Tokens)

	// --- Auth routes ---
	authGroup := e.Group("/api/auth")
	authGroup.POST("/register/passenger", authHandler.RegisterPassenger)
	authGroup.POST("/register/driver", authHandler.RegisterDriver)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/profile", authHandler.Profile, authMiddleware)
	authGroup.PUT("/profile/passenger/:id", authHandler.UpdatePassenger,
		authMiddleware, middleware.Owner(domain.RolePassenger, "id"))
	authGroup.PUT("/profile/driver/:id", authHandler.UpdateDriver,
		authMiddleware, middleware.Owner(domain.RoleDriver, "id"))

	// --- Operator routes ---
	adminGroup := e.Group("/api/admin", middleware.AdminKey(deps.AdminToken))
	adminGroup.GET("/users", adminHandler.ListUsers)
	adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)

	// --- Health checks and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler(deps.Pingers...)
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: gatherer(deps.Registry),
	}))

	return e
}

func registerer(r *prometheus.Registry) prometheus.Registerer {
	if r == nil {
		return prometheus.DefaultRegisterer
	}
	return r
}

func gatherer(r *prometheus.Registry) prometheus.Gatherer {
	if r == nil {
		return prometheus.DefaultGatherer
	}
	return r
}

// requestLogger emits one structured access log line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
