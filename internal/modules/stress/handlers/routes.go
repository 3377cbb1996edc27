package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers all stress testing routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/stress", func(r chi.Router) {
		r.Get("/scenarios", h.HandleGetScenarios)
		r.Post("/apply", h.HandleApplyScenario)
		r.Get("/sensitivity", h.HandleSensitivity)
	})
}
