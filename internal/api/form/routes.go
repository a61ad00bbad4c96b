package form

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers form routes. Registration is flat because the
// submission routes share the /forms/{form_id} prefix.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/forms/generate", h.GenerateForm)
	r.Get("/forms", h.ListForms)
	r.Get("/forms/{form_id}", h.GetForm)
	r.Put("/forms/{form_id}/schema", h.UpdateSchema)
}
