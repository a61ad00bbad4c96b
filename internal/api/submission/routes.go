package submission

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers submission routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/forms/{form_id}/submissions", h.SubmitForm)
	r.Get("/forms/{form_id}/submissions", h.ListSubmissions)
	r.Get("/forms/{form_id}/analytics", h.GetAnalytics)
	r.Get("/forms/{form_id}/export", h.ExportSubmissions)
}
