package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"telemetry-service/internal/alerting"
	"telemetry-service/internal/config"
	"telemetry-service/internal/ingest"
	"telemetry-service/internal/logging"
	"telemetry-service/internal/models"
	"telemetry-service/internal/poller"
	"telemetry-service/internal/store"
)

type Handler struct {
	svc    *ingest.Service
	store  store.Store
	ledger *alerting.Ledger
	recon  *poller.Reconciler
	hub    Registrar
	logger *logging.Logger
	config config.Config
}

func NewHandler(svc *ingest.Service, st store.Store, ledger *alerting.Ledger, recon *poller.Reconciler, hub Registrar, logger *logging.Logger, cfg config.Config) *Handler {
	return &Handler{svc: svc, store: st, ledger: ledger, recon: recon, hub: hub, logger: logger, config: cfg}
}

// IngestReading accepts one telemetry record and echoes the stored
// (possibly defaulted) reading.
func (h *Handler) IngestReading(c *gin.Context) {
	var in ingest.ReadingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Errorf("Invalid request body for reading: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	r, err := h.svc.Ingest(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, ingest.ErrInvalidPayload) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Errorf("Store reading failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "History store unavailable"})
		return
	}
	c.JSON(http.StatusCreated, r)
}

// QueryReadings returns matching readings in ascending timestamp order.
func (h *Handler) QueryReadings(c *gin.Context) {
	f := store.Filter{Location: c.Query("location")}
	if v := c.Query("since"); v != "" {
		since, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid since"})
			return
		}
		f.Since = since
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		f.Limit = limit
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Store.Timeout)
	defer cancel()
	readings, err := h.store.Query(ctx, f)
	if err != nil {
		h.logger.Errorf("Query readings failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "History store unavailable"})
		return
	}
	if readings == nil {
		readings = []models.Reading{}
	}
	c.JSON(http.StatusOK, gin.H{"readings": readings, "count": len(readings)})
}

// GetActiveAlerts returns unacknowledged alerts, CRITICAL first, newest first.
func (h *Handler) GetActiveAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Active())
}

// GetAlertHistory returns acknowledged alerts, newest first, display-capped.
func (h *Handler) GetAlertHistory(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, h.ledger.History(limit))
}

// AcknowledgeAlert flips an alert to acknowledged on operator action.
func (h *Handler) AcknowledgeAlert(c *gin.Context) {
	id := c.Param("id")
	alert, err := h.ledger.Acknowledge(id)
	if err != nil {
		if errors.Is(err, alerting.ErrAlreadyAcknowledged) {
			c.JSON(http.StatusConflict, gin.H{"error": "Alert already acknowledged"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
		return
	}
	c.JSON(http.StatusOK, alert)
}

// GetStatus reports per-channel liveness and the aggregate connected flag.
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.recon.Snapshot(time.Now()))
}
