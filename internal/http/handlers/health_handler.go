// Health endpoint for monitoring and load balancers.
//
// The check probes database connectivity, reports process memory usage and
// uptime, and returns 503 when any dependency is down so orchestrators can
// take the instance out of rotation.
package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthChecker probes process dependencies for the /health endpoint.
type HealthChecker struct {
	DB      *gorm.DB
	Started time.Time
}

// NewHealthChecker returns a checker anchored at the current time.
func NewHealthChecker(db *gorm.DB) *HealthChecker {
	return &HealthChecker{DB: db, Started: time.Now()}
}

// HealthResponse is the body returned by the /health endpoint.
type HealthResponse struct {
	Status         string       `json:"status" example:"healthy"`
	Timestamp      string       `json:"timestamp"`
	UptimeSeconds  float64      `json:"uptime"`
	ResponseTimeMS int64        `json:"response_time_ms"`
	Checks         HealthChecks `json:"checks"`
}

// HealthChecks groups the individual dependency probes.
type HealthChecks struct {
	Database DatabaseCheck `json:"database"`
	Memory   MemoryCheck   `json:"memory"`
}

// DatabaseCheck reports database connectivity and round-trip latency.
type DatabaseCheck struct {
	Status         string `json:"status" example:"up"`
	ResponseTimeMS int64  `json:"response_time_ms,omitempty"`
	Error          string `json:"error,omitempty"`
}

// MemoryCheck reports heap usage in MiB.
type MemoryCheck struct {
	UsedMB      uint64 `json:"used"`
	TotalMB     uint64 `json:"total"`
	PercentUsed uint64 `json:"percent_used"`
}

// Health godoc
// @ID          health
// @Summary     Health check
// @Description Reports database connectivity, memory usage, and uptime. Returns 503 when unhealthy.
// @Tags        Ops
// @Produce     json
//
// @Success     200  {object}  handlers.HealthResponse
// @Failure     503  {object}  handlers.HealthResponse
// @Router      /health [get]
func (h *Handlers) Health(c *gin.Context) {
	start := time.Now()
	resp := HealthResponse{
		Status:        "healthy",
		Timestamp:     start.UTC().Format(time.RFC3339),
		UptimeSeconds: time.Since(h.health.Started).Seconds(),
		Checks: HealthChecks{
			Database: DatabaseCheck{Status: "up"},
		},
	}

	dbStart := time.Now()
	if err := h.pingDB(c); err != nil {
		resp.Status = "unhealthy"
		resp.Checks.Database = DatabaseCheck{Status: "down", Error: err.Error()}
	} else {
		resp.Checks.Database.ResponseTimeMS = time.Since(dbStart).Milliseconds()
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	resp.Checks.Memory = MemoryCheck{
		UsedMB:  ms.HeapAlloc >> 20,
		TotalMB: ms.HeapSys >> 20,
	}
	if ms.HeapSys > 0 {
		resp.Checks.Memory.PercentUsed = ms.HeapAlloc * 100 / ms.HeapSys
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	resp.ResponseTimeMS = time.Since(start).Milliseconds()
	c.JSON(status, resp)
}

// pingDB runs a connectivity probe against the underlying sql.DB.
func (h *Handlers) pingDB(c *gin.Context) error {
	sqlDB, err := h.health.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(c.Request.Context())
}
