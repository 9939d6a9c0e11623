package handler

import (
	"context"
	"maps"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/invoicesxpert/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const readyTimeout = 2 * time.Second

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// HealthCheck reports whether one dependency can serve requests.
type HealthCheck func(ctx context.Context) error

// SystemHandler serves the probes and build information.
type SystemHandler struct {
	BaseHandler
	name    string
	version string
	started time.Time
	checks  map[string]HealthCheck
}

// NewSystemHandler keeps its own copy of checks, keyed by dependency name.
func NewSystemHandler(name, version string, checks map[string]HealthCheck) *SystemHandler {
	return &SystemHandler{
		name:    name,
		version: version,
		started: time.Now(),
		checks:  maps.Clone(checks),
	}
}

// SystemInfoResponse
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name      string `json:"name" example:"invoicesxpert"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @ID           getSystemSystemInfo
// @Summary      Get system information
// @Description  Service name, build version, Go runtime and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
	})
}

// PingResponse
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{Message: "pong", Timestamp: time.Now().UTC().Format(time.RFC3339)})
}

// HealthResponse is the probe body; Checks maps each dependency to "ok" or
// its error.
// @name HandlerHealthResponse
type HealthResponse struct {
	Status string            `json:"status" example:"healthy"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health godoc
// @ID           getHealth
// @Summary      Liveness probe
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: statusHealthy})
}

// Ready godoc
// @ID           getReady
// @Summary      Readiness probe
// @Description  Runs the dependency checks (database, redis, browser) in parallel
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		failed bool
	)
	resp := HealthResponse{Status: statusHealthy, Checks: make(map[string]string, len(h.checks))}
	for name, check := range h.checks {
		wg.Go(func() {
			result := "ok"
			if err := check(ctx); err != nil {
				logger.GetGinLogger(c).Warn("readiness check failed", zap.String("check", name), zap.Error(err))
				result = err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			resp.Checks[name] = result
			failed = failed || result != "ok"
		})
	}
	wg.Wait()

	if failed {
		resp.Status = statusUnhealthy
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
