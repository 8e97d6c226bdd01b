package rbac

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/koinonia-app/koinonia/internal/shared"
)

// RoleSource looks up stored role definitions.
type RoleSource interface {
	// FindPermissionsByRole returns the permission set of a stored role,
	// or shared.ErrNotFound when no such role exists.
	FindPermissionsByRole(ctx context.Context, name string) ([]string, error)
}

// Resolver computes effective permission sets. Resolution order:
// explicit per-user overrides, then the stored role definition, then
// the legacy fallback table for the six built-in roles. Unknown roles
// resolve to an empty set, never an error.
type Resolver struct {
	roles  RoleSource
	cache  *PermissionCache
	logger *slog.Logger
}

// NewResolver constructs a Resolver. cache may be nil.
func NewResolver(roles RoleSource, cache *PermissionCache, logger *slog.Logger) *Resolver {
	return &Resolver{roles: roles, cache: cache, logger: logger}
}

// Resolve returns the effective permission set for a user with the
// given role and overrides. A non-empty override set is returned
// verbatim and fully replaces role-derived permissions.
func (r *Resolver) Resolve(ctx context.Context, role string, overrides []string) ([]string, error) {
	if len(overrides) > 0 {
		out := make([]string, len(overrides))
		copy(out, overrides)
		return out, nil
	}

	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return []string{}, nil
	}

	if r.cache != nil {
		if perms, ok := r.cache.Get(ctx, role); ok {
			return perms, nil
		}
	}

	perms, err := r.rolePermissions(ctx, role)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, role, perms); err != nil && r.logger != nil {
			r.logger.Warn("permission cache set", slog.String("role", role), slog.Any("error", err))
		}
	}
	return perms, nil
}

func (r *Resolver) rolePermissions(ctx context.Context, role string) ([]string, error) {
	if r.roles != nil {
		perms, err := r.roles.FindPermissionsByRole(ctx, role)
		switch {
		case err == nil:
			return perms, nil
		case errors.Is(err, shared.ErrNotFound):
			// fall through to the legacy table
		default:
			return nil, err
		}
	}
	if perms := LegacyPermissions(role); perms != nil {
		return perms, nil
	}
	return []string{}, nil
}

// HasPermission reports whether the user context grants the key.
// Admin accounts hold every permission implicitly, including keys
// absent from the catalog.
func HasPermission(user shared.UserContext, key string) bool {
	return user.HasPermissionSnapshot(key)
}
