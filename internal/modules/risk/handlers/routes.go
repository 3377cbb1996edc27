package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all risk metrics routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/risk", func(r chi.Router) {
		r.Get("/metrics/{symbol}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetMetrics(w, r, chi.URLParam(r, "symbol"))
		})
		r.Get("/summary/{symbol}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetSummary(w, r, chi.URLParam(r, "symbol"))
		})
		r.Get("/backtest/{symbol}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetBacktest(w, r, chi.URLParam(r, "symbol"))
		})
		r.Get("/volatility/{symbol}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetRollingVolatility(w, r, chi.URLParam(r, "symbol"))
		})
	})
}
