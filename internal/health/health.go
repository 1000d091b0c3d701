package health

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const checkTimeout = 2 * time.Second

// Pinger is satisfied by *pgxpool.Pool and *cache.Cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	db    Pinger
	cache Pinger
	start time.Time
}

type HealthStatus struct {
	Status   string          `json:"status"`
	Database ComponentHealth `json:"database"`
	Cache    ComponentHealth `json:"cache"`
}

type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

// DetailedStatus adds process and host figures for dashboards.
type DetailedStatus struct {
	HealthStatus
	UptimeSeconds int64   `json:"uptime_seconds"`
	Goroutines    int     `json:"goroutines"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsed    uint64  `json:"memory_used_bytes"`
	MemoryTotal   uint64  `json:"memory_total_bytes"`
}

// NewHealthChecker takes a database and an optional cache.
func NewHealthChecker(db, cache Pinger) *HealthChecker {
	return &HealthChecker{db: db, cache: cache, start: time.Now()}
}

// CheckBasic is unhealthy only when the database is. A failing cache degrades
// the status because every cache call falls back to the processor.
func (h *HealthChecker) CheckBasic(ctx context.Context) HealthStatus {
	dbHealth := check(ctx, h.db)
	cacheHealth := ComponentHealth{Status: "disabled"}
	if h.cache != nil {
		cacheHealth = check(ctx, h.cache)
	}

	status := "healthy"
	switch {
	case dbHealth.Status != "healthy":
		status = "unhealthy"
	case cacheHealth.Status == "unhealthy":
		status = "degraded"
	}

	return HealthStatus{
		Status:   status,
		Database: dbHealth,
		Cache:    cacheHealth,
	}
}

func (h *HealthChecker) CheckDetailed(ctx context.Context) DetailedStatus {
	status := DetailedStatus{
		HealthStatus:  h.CheckBasic(ctx),
		UptimeSeconds: int64(time.Since(h.start).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
	}

	if percents, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false); err == nil && len(percents) > 0 {
		status.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		status.MemoryPercent = vm.UsedPercent
		status.MemoryUsed = vm.Used
		status.MemoryTotal = vm.Total
	}
	return status
}

func check(ctx context.Context, p Pinger) ComponentHealth {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return ComponentHealth{Status: "unhealthy", ResponseTime: responseTime}
	}
	return ComponentHealth{Status: "healthy", ResponseTime: responseTime}
}
