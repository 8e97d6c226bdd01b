package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/koinonia-app/koinonia/internal/platform/httpx"
)

// PermissionsHandler serves the static permission catalog for the
// role-editing UI.
type PermissionsHandler struct {
	rbac Middleware
}

// NewPermissionsHandler constructs a PermissionsHandler.
func NewPermissionsHandler(rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{rbac: rbac}
}

// MountRoutes registers the catalog route.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission(PermRolesRead))
		r.Get("/permissions", h.list)
	})
}

func (h *PermissionsHandler) list(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"groups": Catalog()})
}
