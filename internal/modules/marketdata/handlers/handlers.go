// Package handlers provides HTTP handlers for price history and position management.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/avramidis/riskwatch/internal/modules/marketdata"
)

// Handler handles market data HTTP requests
type Handler struct {
	historyDB *marketdata.HistoryDB
	log       zerolog.Logger
}

// NewHandler creates a new market data handler
func NewHandler(historyDB *marketdata.HistoryDB, log zerolog.Logger) *Handler {
	return &Handler{
		historyDB: historyDB,
		log:       log.With().Str("handler", "marketdata").Logger(),
	}
}

// HandlePutPrices handles PUT /api/marketdata/prices/{symbol}
func (h *Handler) HandlePutPrices(w http.ResponseWriter, r *http.Request, symbol string) {
	var prices []marketdata.DailyPrice
	if err := json.NewDecoder(r.Body).Decode(&prices); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(prices) == 0 {
		h.writeError(w, http.StatusBadRequest, "price list is empty")
		return
	}

	for _, p := range prices {
		if p.Date == "" || p.Close <= 0 {
			h.writeError(w, http.StatusBadRequest, "each price needs a date and a positive close")
			return
		}
	}

	if err := h.historyDB.UpsertPrices(symbol, prices); err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to upsert prices")
		h.writeError(w, http.StatusInternalServerError, "failed to store prices")
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"symbol": symbol,
		"stored": len(prices),
	}))
}

// HandleGetPrices handles GET /api/marketdata/prices/{symbol}
func (h *Handler) HandleGetPrices(w http.ResponseWriter, r *http.Request, symbol string) {
	limit := 252
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	prices, err := h.historyDB.GetDailyPrices(symbol, limit)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get prices")
		h.writeError(w, http.StatusInternalServerError, "failed to load prices")
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"symbol": symbol,
		"prices": prices,
	}))
}

// HandlePutPosition handles PUT /api/marketdata/positions/{symbol}
func (h *Handler) HandlePutPosition(w http.ResponseWriter, r *http.Request, symbol string) {
	var body struct {
		Value float64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if body.Value <= 0 {
		h.writeError(w, http.StatusBadRequest, "position value must be positive")
		return
	}

	if err := h.historyDB.UpsertPosition(marketdata.Position{Symbol: symbol, Value: body.Value}); err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to upsert position")
		h.writeError(w, http.StatusInternalServerError, "failed to store position")
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"symbol": symbol,
		"value":  body.Value,
	}))
}

// HandleGetPositions handles GET /api/marketdata/positions
func (h *Handler) HandleGetPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.historyDB.GetPositions()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get positions")
		h.writeError(w, http.StatusInternalServerError, "failed to load positions")
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"positions": positions,
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
