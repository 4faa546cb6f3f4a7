package routes

import (
	"context"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"tnstc-api/internal/api/handlers"
	"tnstc-api/internal/api/middleware"
	"tnstc-api/internal/parser"
	"tnstc-api/internal/upstream"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, client *upstream.Client, manager *parser.Manager) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestValidation())

	e.GET("/", handlers.RootHandler)
	e.GET("/health", handlers.HealthHandler(func() string {
		return manager.Active(context.Background()).Name()
	}))
	e.POST("/search_buses", handlers.SearchHandler(client, manager))
}
