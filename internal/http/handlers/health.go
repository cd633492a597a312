package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ReadinessCheck reports whether a dependency is reachable.
type ReadinessCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]ReadinessCheck
}

func NewHealthHandler(checks map[string]ReadinessCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Ready runs every dependency check and reports the first failures by name.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, check := range h.checks {
		if check == nil {
			continue
		}
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false, "failed": failed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true})
}
