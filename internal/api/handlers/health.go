package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"tnstc-api/pkg/models"
	"tnstc-api/pkg/utils"
)

var startTime = time.Now()

// RootHandler answers the service banner request
func RootHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "tnstc-api",
		"message": "TNSTC bus search API. POST /search_buses to query services.",
	})
}

// HealthHandler handles health check requests
func HealthHandler(strategyName func() string) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := utils.GetLogger()
		logger.Debug("Health check requested")

		return c.JSON(http.StatusOK, models.HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now(),
			Version:   "1.0.0",
			Uptime:    time.Since(startTime),
			Checks: map[string]string{
				"api":             "ok",
				"parser_strategy": strategyName(),
			},
		})
	}
}
