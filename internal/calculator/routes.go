package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the stateless calculator endpoints under the
// /calculator prefix.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/calculator", func(r chi.Router) {
		r.Post("/evaluate", h.Evaluate)
		r.Post("/keys", h.Keys)
	})
}
