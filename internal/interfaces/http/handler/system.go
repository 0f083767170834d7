package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storesync/backend/internal/interfaces/http/dto"
)

// ReadinessChecker reports whether a dependency is reachable
type ReadinessChecker interface {
	Ping() error
}

// SystemHandler handles liveness and readiness endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	checkers  map[string]ReadinessChecker
}

// NewSystemHandler creates a new SystemHandler. Checkers are consulted by
// the readiness probe, keyed by dependency name.
func NewSystemHandler(checkers map[string]ReadinessChecker) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		checkers:  checkers,
	}
}

// HealthResponse is the liveness probe body
type HealthResponse struct {
	Status    string `json:"status"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health reports process liveness
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(HealthResponse{
		Status:    "ok",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}))
}

// Ready reports readiness of the service's dependencies.
// Any failing dependency yields 503 with per-dependency detail.
func (h *SystemHandler) Ready(c *gin.Context) {
	status := http.StatusOK
	deps := make(map[string]string, len(h.checkers))
	for name, checker := range h.checkers {
		if err := checker.Ping(); err != nil {
			deps[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	if status != http.StatusOK {
		resp := dto.NewErrorResponse(dto.ErrCodeInternal, "dependencies unavailable")
		resp.Data = gin.H{"dependencies": deps}
		c.JSON(status, resp)
		return
	}
	c.JSON(status, dto.NewSuccessResponse(gin.H{"dependencies": deps}))
}
