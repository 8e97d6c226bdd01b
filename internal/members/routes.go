package members

import (
	"github.com/go-chi/chi/v5"

	"github.com/koinonia-app/koinonia/internal/rbac"
)

// MountRoutes registers member routes. Single-record access is guarded
// again per record inside the service; the route-level permission is
// the coarse gate.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermMembersRead))
		r.Get("/members", h.list)
		r.Get("/members/{id}/tags/preview", h.previewTags)
	})

	// Single-record read/update rely on the per-record guard alone so
	// self access works regardless of role.
	r.Get("/members/{id}", h.get)
	r.Put("/members/{id}", h.update)

	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermMembersCreate))
		r.Post("/members", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermMembersUpdate))
		r.Post("/members/{id}/tags/recompute", h.recomputeTags)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermMembersDelete))
		r.Delete("/members/{id}", h.remove)
	})
}
