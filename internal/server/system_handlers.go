package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/aristath/minty/internal/database"
	"github.com/aristath/minty/internal/modules/pages"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers serves process and host statistics
type SystemHandlers struct {
	log      zerolog.Logger
	cacheDB  *database.DB
	registry *pages.Registry
	started  time.Time
	// statsFn is replaceable in tests
	statsFn func() (float64, float64)
}

// NewSystemHandlers creates the system handlers
func NewSystemHandlers(log zerolog.Logger, cacheDB *database.DB, registry *pages.Registry) *SystemHandlers {
	h := &SystemHandlers{
		log:      log.With().Str("handler", "system").Logger(),
		cacheDB:  cacheDB,
		registry: registry,
		started:  time.Now(),
	}
	h.statsFn = h.getSystemStats
	return h
}

// SystemStatusResponse is the /api/system/status payload
type SystemStatusResponse struct {
	Status        string  `json:"status"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	HeapAlloc     string  `json:"heap_alloc"`
	Goroutines    int     `json:"goroutines"`
	Started       string  `json:"started"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	MountedViews  int     `json:"mounted_views"`
	CacheDB       string  `json:"cache_db"`
}

// HandleSystemStatus reports host load, process stats and mounted view count
// GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.statsFn()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	resp := SystemStatusResponse{
		Status:        "healthy",
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		HeapAlloc:     humanize.Bytes(ms.HeapAlloc),
		Goroutines:    runtime.NumGoroutine(),
		Started:       humanize.Time(h.started),
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		CacheDB:       "ok",
	}
	if h.registry != nil {
		resp.MountedViews = h.registry.Len()
	}

	if h.cacheDB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.cacheDB.QuickCheck(ctx); err != nil {
			h.log.Warn().Err(err).Msg("Cache database check failed")
			resp.Status = "degraded"
			resp.CacheDB = err.Error()
		}
	}

	writeJSON(w, http.StatusOK, resp, h.log)
}

// getSystemStats calculates CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	// 100ms keeps the request fast while still sampling a real interval
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}, log zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
