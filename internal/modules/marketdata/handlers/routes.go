package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all market data routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/marketdata", func(r chi.Router) {
		r.Put("/prices/{symbol}", func(w http.ResponseWriter, r *http.Request) {
			h.HandlePutPrices(w, r, chi.URLParam(r, "symbol"))
		})
		r.Get("/prices/{symbol}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetPrices(w, r, chi.URLParam(r, "symbol"))
		})
		r.Put("/positions/{symbol}", func(w http.ResponseWriter, r *http.Request) {
			h.HandlePutPosition(w, r, chi.URLParam(r, "symbol"))
		})
		r.Get("/positions", h.HandleGetPositions)
	})
}
