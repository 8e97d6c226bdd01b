package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/koinonia-app/koinonia/internal/auth"
	"github.com/koinonia-app/koinonia/internal/cellgroups"
	"github.com/koinonia-app/koinonia/internal/events"
	"github.com/koinonia-app/koinonia/internal/media"
	"github.com/koinonia-app/koinonia/internal/members"
	"github.com/koinonia-app/koinonia/internal/offerings"
	"github.com/koinonia-app/koinonia/internal/rbac"
	"github.com/koinonia-app/koinonia/internal/roles"
	"github.com/koinonia-app/koinonia/internal/settings"
	"github.com/koinonia-app/koinonia/internal/tags"
	"github.com/koinonia-app/koinonia/internal/users"
	"github.com/koinonia-app/koinonia/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	AuthMiddleware *auth.Middleware
	RBACMiddleware rbac.Middleware

	AuthHandler        *auth.Handler
	MembersHandler     *members.Handler
	TagsHandler        *tags.Handler
	CellGroupsHandler  *cellgroups.Handler
	EventsHandler      *events.Handler
	OfferingsHandler   *offerings.Handler
	MediaHandler       *media.Handler
	SettingsHandler    *settings.Handler
	UsersHandler       *users.Handler
	RolesHandler       *roles.Handler
	PermissionsHandler *rbac.PermissionsHandler
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi router: a public group for health,
// login and the website event listing, and a bearer-authenticated
// /api/v1 group for everything else.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Public surface: login and the website event listing.
	r.Route("/public", func(r chi.Router) {
		params.AuthHandler.MountPublicRoutes(r)
		if params.EventsHandler != nil {
			params.EventsHandler.MountPublicRoutes(r)
		}
	})

	guard := params.RBACMiddleware
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(params.AuthMiddleware.Authenticate)

		params.AuthHandler.MountRoutes(r)
		params.MembersHandler.MountRoutes(r, guard)
		params.TagsHandler.MountRoutes(r, guard)
		params.CellGroupsHandler.MountRoutes(r, guard)
		params.EventsHandler.MountRoutes(r, guard)
		params.OfferingsHandler.MountRoutes(r, guard)
		if params.MediaHandler != nil {
			params.MediaHandler.MountRoutes(r, guard)
		}
		params.SettingsHandler.MountRoutes(r, guard)
		params.UsersHandler.MountRoutes(r, guard)
		params.RolesHandler.MountRoutes(r, guard)
		if params.PermissionsHandler != nil {
			r.Route("/permissions", params.PermissionsHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				params.JobHandler.MountRoutes(r, guard)
			})
		}
	})

	return r
}
