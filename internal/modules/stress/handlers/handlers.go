// Package handlers provides HTTP handlers for stress testing operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/avramidis/riskwatch/internal/modules/marketdata"
	"github.com/avramidis/riskwatch/internal/modules/stress"
)

// Handler handles stress testing HTTP requests
type Handler struct {
	engine               *stress.Engine
	historyDB            *marketdata.HistoryDB
	defaultPositionValue float64
	log                  zerolog.Logger
}

// NewHandler creates a new stress testing handler
func NewHandler(engine *stress.Engine, historyDB *marketdata.HistoryDB, defaultPositionValue float64, log zerolog.Logger) *Handler {
	return &Handler{
		engine:               engine,
		historyDB:            historyDB,
		defaultPositionValue: defaultPositionValue,
		log:                  log.With().Str("handler", "stress").Logger(),
	}
}

// applyRequest is the body for POST /api/stress/apply. Positions may be
// omitted, in which case the stored position values are used.
type applyRequest struct {
	Scenario  string             `json:"scenario"`
	Positions map[string]float64 `json:"positions,omitempty"`
}

// HandleGetScenarios handles GET /api/stress/scenarios
func (h *Handler) HandleGetScenarios(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"scenarios": h.engine.Scenarios(),
	}))
}

// HandleApplyScenario handles POST /api/stress/apply
func (h *Handler) HandleApplyScenario(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Scenario == "" {
		h.writeError(w, http.StatusBadRequest, "scenario is required")
		return
	}

	positions := req.Positions
	if len(positions) == 0 {
		stored, err := h.historyDB.GetPositions()
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to load stored positions")
			h.writeError(w, http.StatusInternalServerError, "failed to load positions")
			return
		}
		positions = make(map[string]float64, len(stored))
		for _, p := range stored {
			positions[p.Symbol] = p.Value
		}
	}

	if len(positions) == 0 {
		h.writeError(w, http.StatusBadRequest, "no positions to stress")
		return
	}

	result, err := h.engine.ApplyScenario(req.Scenario, positions)
	if err != nil {
		if errors.Is(err, stress.ErrUnknownScenario) {
			h.writeError(w, http.StatusNotFound, "unknown scenario: "+req.Scenario)
			return
		}
		h.log.Error().Err(err).Str("scenario", req.Scenario).Msg("Failed to apply scenario")
		h.writeError(w, http.StatusInternalServerError, "failed to apply scenario")
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(result))
}

// HandleSensitivity handles GET /api/stress/sensitivity
func (h *Handler) HandleSensitivity(w http.ResponseWriter, r *http.Request) {
	positionValue := queryFloat(r, "position", h.defaultPositionValue)

	baseVol := queryFloat(r, "vol", 0)
	if baseVol <= 0 {
		h.writeError(w, http.StatusBadRequest, "vol query parameter must be a positive annual volatility")
		return
	}

	points := h.engine.SensitivityAnalysis(positionValue, baseVol)

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"position_value":  positionValue,
		"base_volatility": baseVol,
		"points":          points,
	}))
}

func queryFloat(r *http.Request, key string, fallback float64) float64 {
	if v := r.URL.Query().Get(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
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
