// Package handlers provides HTTP handlers for risk metrics operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/avramidis/riskwatch/internal/modules/backtest"
	"github.com/avramidis/riskwatch/internal/modules/marketdata"
	"github.com/avramidis/riskwatch/internal/modules/returns"
	"github.com/avramidis/riskwatch/internal/modules/risk"
)

// Handler handles risk metrics HTTP requests
type Handler struct {
	historyDB     *marketdata.HistoryDB
	returnsEngine *returns.Engine
	calculator    *risk.Calculator
	backtester    *backtest.Engine

	defaultPositionValue float64
	defaultLookback      int

	log zerolog.Logger
}

// Config holds handler dependencies
type Config struct {
	HistoryDB            *marketdata.HistoryDB
	ReturnsEngine        *returns.Engine
	Calculator           *risk.Calculator
	Backtester           *backtest.Engine
	DefaultPositionValue float64
	DefaultLookback      int
	Log                  zerolog.Logger
}

// NewHandler creates a new risk metrics handler
func NewHandler(cfg Config) *Handler {
	return &Handler{
		historyDB:            cfg.HistoryDB,
		returnsEngine:        cfg.ReturnsEngine,
		calculator:           cfg.Calculator,
		backtester:           cfg.Backtester,
		defaultPositionValue: cfg.DefaultPositionValue,
		defaultLookback:      cfg.DefaultLookback,
		log:                  cfg.Log.With().Str("handler", "risk").Logger(),
	}
}

// HandleGetMetrics handles GET /api/risk/metrics/{symbol}
// Returns the sparse VaR/ES map keyed by method and confidence. Entries
// that could not be computed are absent rather than null.
func (h *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request, symbol string) {
	rets, ok := h.loadReturns(w, r, symbol)
	if !ok {
		return
	}

	positionValue := h.positionValue(r, symbol)
	metrics := h.calculator.CalculateAllMetrics(rets, positionValue)

	labeled := make(map[string]risk.Estimate, len(metrics))
	for key, est := range metrics {
		labeled[key.Label()] = est
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"symbol":         symbol,
		"position_value": positionValue,
		"observations":   len(rets),
		"metrics":        labeled,
	}))
}

// HandleGetSummary handles GET /api/risk/summary/{symbol}
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request, symbol string) {
	rets, ok := h.loadReturns(w, r, symbol)
	if !ok {
		return
	}

	stats, err := h.returnsEngine.SummaryStats(rets)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "insufficient data for summary statistics")
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"symbol":       symbol,
		"observations": len(rets),
		"stats":        stats,
	}))
}

// HandleGetBacktest handles GET /api/risk/backtest/{symbol}
func (h *Handler) HandleGetBacktest(w http.ResponseWriter, r *http.Request, symbol string) {
	rets, ok := h.loadReturns(w, r, symbol)
	if !ok {
		return
	}

	positionValue := h.positionValue(r, symbol)
	metrics := h.calculator.CalculateAllMetrics(rets, positionValue)

	reports, err := h.backtester.Results(rets, metrics, positionValue)
	if err != nil {
		if errors.Is(err, backtest.ErrInsufficientHistory) {
			h.writeError(w, http.StatusUnprocessableEntity, "insufficient history for backtesting")
			return
		}
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Backtest failed")
		h.writeError(w, http.StatusInternalServerError, "backtest failed")
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"symbol":  symbol,
		"results": reports,
	}))
}

// HandleGetRollingVolatility handles GET /api/risk/volatility/{symbol}
func (h *Handler) HandleGetRollingVolatility(w http.ResponseWriter, r *http.Request, symbol string) {
	rets, ok := h.loadReturns(w, r, symbol)
	if !ok {
		return
	}

	window := queryInt(r, "window", 30)
	vol := h.returnsEngine.RollingVolatility(rets, window, true)
	if len(vol) == 0 {
		h.writeError(w, http.StatusUnprocessableEntity, "insufficient data for rolling volatility window")
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"symbol":     symbol,
		"window":     window,
		"annualized": true,
		"volatility": vol,
	}))
}

// loadReturns fetches the close series for a symbol and converts it to log
// returns, writing an HTTP error and returning ok=false on failure.
func (h *Handler) loadReturns(w http.ResponseWriter, r *http.Request, symbol string) ([]float64, bool) {
	lookback := queryInt(r, "lookback", h.defaultLookback)

	closes, err := h.historyDB.GetClosePrices(symbol, lookback)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get prices")
		h.writeError(w, http.StatusInternalServerError, "failed to load price history")
		return nil, false
	}

	rets, err := h.returnsEngine.ComputeReturns(closes)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "insufficient price history for "+symbol)
		return nil, false
	}

	return rets, true
}

// positionValue resolves the position value for a request: explicit query
// parameter first, then the stored position, then the configured default.
func (h *Handler) positionValue(r *http.Request, symbol string) float64 {
	if v := r.URL.Query().Get("position"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}

	pos, err := h.historyDB.GetPosition(symbol)
	if err != nil {
		h.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to look up position value")
	} else if pos != nil && pos.Value > 0 {
		return pos.Value
	}

	return h.defaultPositionValue
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
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
