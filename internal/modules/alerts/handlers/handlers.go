// Package handlers provides HTTP handlers for the breach alert monitor.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/avramidis/riskwatch/internal/modules/alerts"
)

// Handler handles alert monitor HTTP requests
type Handler struct {
	monitor *alerts.Monitor
	log     zerolog.Logger
}

// NewHandler creates a new alerts handler
func NewHandler(monitor *alerts.Monitor, log zerolog.Logger) *Handler {
	return &Handler{
		monitor: monitor,
		log:     log.With().Str("handler", "alerts").Logger(),
	}
}

// checkRequest is the body for POST /api/alerts/check. Return is the raw
// decimal return; the thresholds are positive VaR percentages.
type checkRequest struct {
	Return float64 `json:"return"`
	Var95  float64 `json:"var_95"`
	Var99  float64 `json:"var_99"`
	Symbol string  `json:"symbol"`
}

// HandleCheck handles POST /api/alerts/check
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Var95 <= 0 || req.Var99 <= 0 {
		h.writeError(w, http.StatusBadRequest, "var_95 and var_99 must be positive percentages")
		return
	}

	symbol := req.Symbol
	if symbol == "" {
		symbol = "PORTFOLIO"
	}

	breaches := h.monitor.CheckBreach(req.Return, req.Var95, req.Var99, symbol)

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"breaches": breaches,
	}))
}

// HandleRecent handles GET /api/alerts/recent
func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	n := 10
	if v := r.URL.Query().Get("n"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			n = parsed
		}
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"alerts": h.monitor.Recent(n),
	}))
}

// HandleSummary handles GET /api/alerts/summary
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, envelope(h.monitor.Summary()))
}

// HandleReset handles POST /api/alerts/reset
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.monitor.Reset()
	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"reset": true,
	}))
}

func envelope(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes a JSON error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]interface{}{
		"error": message,
	})
}
