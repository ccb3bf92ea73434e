package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ragno-ai/ragno"
	"github.com/ragno-ai/ragno/pkg/search"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// HealthHandler handles health check requests
type HealthHandler struct {
	ragno ragno.Ragno
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(r ragno.Ragno) *HealthHandler {
	return &HealthHandler{ragno: r}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "ragno",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// LivenessCheck handles GET /live - Kubernetes liveness probe
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// ReadinessCheck handles GET /ready. A probe query exercises the exact
// retrieval path end to end; a degraded result means the backing store is
// unreachable and the instance should not receive traffic.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	start := time.Now()
	probe, err := h.ragno.Search(ctx, "readiness-probe", &search.Options{
		Mode:  search.ModeExact,
		Limit: 1,
	})
	duration := time.Since(start)

	if err != nil || probe.Degraded {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not ready",
			"service":  "ragno",
			"duration": duration.String(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"service":   "ragno",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"duration":  duration.String(),
	})
}
