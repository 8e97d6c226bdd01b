package tags

import (
	"github.com/go-chi/chi/v5"

	"github.com/koinonia-app/koinonia/internal/rbac"
)

// MountRoutes registers tag and tag-rule routes.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermTagsRead))
		r.Get("/tags", h.listTags)
		r.Get("/tags/{id}", h.getTag)
		r.Get("/tag-rules", h.listRules)
		r.Get("/tag-rules/{id}", h.getRule)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermTagsCreate))
		r.Post("/tags", h.createTag)
		r.Post("/tag-rules", h.createRule)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermTagsUpdate))
		r.Put("/tags/{id}", h.updateTag)
		r.Put("/tag-rules/{id}", h.updateRule)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermTagsDelete))
		r.Delete("/tags/{id}", h.deleteTag)
		r.Delete("/tag-rules/{id}", h.deleteRule)
	})
}
