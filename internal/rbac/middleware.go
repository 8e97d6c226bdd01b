package rbac

import (
	"log/slog"
	"net/http"

	"github.com/koinonia-app/koinonia/internal/platform/httpx"
	"github.com/koinonia-app/koinonia/internal/shared"
)

// Middleware wires authorization checks into HTTP routes. It relies on
// the permission snapshot the auth middleware attached to the request
// context; permissions are not re-resolved per request.
type Middleware struct {
	Logger *slog.Logger
}

// RequirePermission rejects callers whose snapshot lacks the key. The
// response names the missing permission for operator debugging.
func (m Middleware) RequirePermission(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := shared.UserFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, shared.ErrAuthenticationFailed)
				return
			}
			if !HasPermission(user, key) {
				if m.Logger != nil {
					m.Logger.Warn("permission denied",
						slog.Int64("user_id", user.UserID),
						slog.String("permission", key),
						slog.String("path", r.URL.Path))
				}
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "requires permission "+key)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireMinimumRole rejects callers below the target role rank.
func (m Middleware) RequireMinimumRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := shared.UserFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, shared.ErrAuthenticationFailed)
				return
			}
			if !HasMinimumRole(user.Role, role) {
				if m.Logger != nil {
					m.Logger.Warn("role threshold denied",
						slog.Int64("user_id", user.UserID),
						slog.String("required_role", role),
						slog.String("path", r.URL.Path))
				}
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "requires role "+role+" or above")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
