package auth

import (
	"net/http"
	"strings"

	"github.com/koinonia-app/koinonia/internal/platform/httpx"
	"github.com/koinonia-app/koinonia/internal/shared"
)

// Middleware verifies the bearer token and attaches the user context.
type Middleware struct {
	service *Service
}

// NewMiddleware constructs an auth Middleware.
func NewMiddleware(service *Service) *Middleware {
	return &Middleware{service: service}
}

// Authenticate rejects requests without a valid bearer token and
// stores the token's user context for downstream guards.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			httpx.RespondError(w, shared.ErrAuthenticationFailed)
			return
		}
		claims, err := m.service.VerifyToken(raw)
		if err != nil {
			httpx.RespondError(w, shared.ErrAuthenticationFailed)
			return
		}
		ctx := shared.ContextWithUser(r.Context(), shared.UserContext{
			UserID:             claims.UserID,
			MemberID:           claims.MemberID,
			CellGroupID:        claims.CellGroupID,
			Email:              claims.Email,
			Role:               claims.Role,
			Permissions:        claims.Permissions,
			MustChangePassword: claims.MustChangePassword,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
