package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"telemetry-service/internal/config"
	"telemetry-service/internal/logging"
)

// NewRouter wires the HTTP surface: ingestion, history queries, the alert
// ledger operations, and the live status view.
func NewRouter(logger *logging.Logger, cfg config.Config, h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(logger))

	api := r.Group(cfg.API.BasePath)
	{
		// Readings
		api.POST("/readings", h.IngestReading)
		api.GET("/readings", h.QueryReadings)

		// Alerts
		api.GET("/alerts", h.GetActiveAlerts)
		api.GET("/alerts/history", h.GetAlertHistory)
		api.POST("/alerts/:id/ack", h.AcknowledgeAlert)

		// Live state
		api.GET("/status", h.GetStatus)
		api.GET("/ws", h.Subscribe)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
