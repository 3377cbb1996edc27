package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers serves process and host health information
type SystemHandlers struct {
	log       zerolog.Logger
	startTime time.Time
}

// NewSystemHandlers creates system handlers
func NewSystemHandlers(log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		startTime: time.Now(),
	}
}

// RegisterRoutes registers system routes
func (h *SystemHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/system/health", h.HandleHealth)
}

// HandleHealth handles GET /api/system/health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":     "ok",
		"uptime_sec": int(time.Since(h.startTime).Seconds()),
		"goroutines": runtime.NumGoroutine(),
	}

	if cpuPercent, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		health["cpu_percent"] = cpuPercent[0]
	}

	if memStat, err := mem.VirtualMemory(); err == nil {
		health["memory_percent"] = memStat.UsedPercent
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"data": health,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
