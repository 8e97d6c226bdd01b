package shared

import (
	"context"
	"strings"
)

// UserContext describes the authenticated caller as captured in the
// token at issue time. The permission snapshot is not re-resolved per
// request; changes take effect on the next login or token refresh.
type UserContext struct {
	UserID             int64
	MemberID           int64
	Email              string
	Role               string
	CellGroupID        int64
	Permissions        []string
	MustChangePassword bool
}

// HasPermissionSnapshot reports whether the snapshot grants the key.
// Admin accounts implicitly hold every permission.
func (u UserContext) HasPermissionSnapshot(key string) bool {
	if u.Role == "admin" {
		return true
	}
	key = strings.ToLower(strings.TrimSpace(key))
	for _, p := range u.Permissions {
		if strings.ToLower(p) == key {
			return true
		}
	}
	return false
}

type userContextKey struct{}

// ContextWithUser stores the user context for a request.
func ContextWithUser(ctx context.Context, user UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the user context, reporting whether a caller
// was authenticated.
func UserFromContext(ctx context.Context) (UserContext, bool) {
	user, ok := ctx.Value(userContextKey{}).(UserContext)
	return user, ok
}
