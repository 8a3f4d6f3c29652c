package handlers

import (
	"net/http"

	"github.com/djenkins26/products-app/internal/monitoring"
	"github.com/gin-gonic/gin"
)

// StatusHandler serves liveness and runtime status.
type StatusHandler struct {
	monitor *monitoring.Service
}

func NewStatusHandler(monitor *monitoring.Service) *StatusHandler {
	return &StatusHandler{monitor: monitor}
}

func (h *StatusHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Status returns the runtime snapshot, or a plain report with ?format=text.
func (h *StatusHandler) Status(c *gin.Context) {
	if c.Query("format") == "text" {
		c.JSON(http.StatusOK, gin.H{"text": h.monitor.StatusText(c.Request.Context())})
		return
	}
	c.JSON(http.StatusOK, h.monitor.Snapshot(c.Request.Context()))
}
