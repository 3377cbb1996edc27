package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers all alert monitor routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/alerts", func(r chi.Router) {
		r.Post("/check", h.HandleCheck)
		r.Get("/recent", h.HandleRecent)
		r.Get("/summary", h.HandleSummary)
		r.Post("/reset", h.HandleReset)
	})
}
