package roles

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/koinonia-app/koinonia/internal/rbac"
	"github.com/koinonia-app/koinonia/internal/shared"
)

// Service orchestrates role management. Edits to a role's permission
// set invalidate the permission cache for that role so new logins see
// the change immediately.
type Service struct {
	repo   Repository
	cache  *rbac.PermissionCache
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService constructs a Service. cache and audit may be nil.
func NewService(repo Repository, cache *rbac.PermissionCache, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, audit: audit, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]Role, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Role, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRoleRequest) (*Role, error) {
	name, err := normalizeName(req.Name)
	if err != nil {
		return nil, err
	}
	perms, err := normalizePermissions(req.Permissions)
	if err != nil {
		return nil, err
	}
	if existing, err := s.repo.GetByName(ctx, name); err == nil && existing != nil {
		return nil, shared.NewValidationError("name", "a role with this name already exists")
	}

	id, err := s.repo.Create(ctx, Role{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Permissions: perms,
	})
	if err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}
	s.recordAudit(ctx, "role.create", id, map[string]any{"name": name})
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRoleRequest) (*Role, error) {
	role, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name, err := normalizeName(*req.Name)
		if err != nil {
			return nil, err
		}
		if role.IsSystem && name != role.Name {
			return nil, fmt.Errorf("%w: system roles cannot be renamed", shared.ErrAuthorizationDenied)
		}
		role.Name = name
	}
	if req.Description != nil {
		role.Description = strings.TrimSpace(*req.Description)
	}
	if req.Permissions != nil {
		perms, err := normalizePermissions(req.Permissions)
		if err != nil {
			return nil, err
		}
		role.Permissions = perms
	}

	role.Version = req.Version
	if err := s.repo.Update(ctx, *role); err != nil {
		return nil, err
	}
	s.invalidate(ctx, role.Name)
	s.recordAudit(ctx, "role.update", id, map[string]any{"name": role.Name, "permissions": role.Permissions})
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	role, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return fmt.Errorf("%w: system roles cannot be deleted", shared.ErrAuthorizationDenied)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, role.Name)
	s.recordAudit(ctx, "role.delete", id, map[string]any{"name": role.Name})
	return nil
}

func (s *Service) recordAudit(ctx context.Context, action string, roleID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	user, _ := shared.UserFromContext(ctx)
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  user.UserID,
		Action:   action,
		Entity:   "role",
		EntityID: strconv.FormatInt(roleID, 10),
		Meta:     meta,
	})
	if err != nil {
		s.logger.Warn("record audit", slog.String("action", action), slog.Any("error", err))
	}
}

func (s *Service) invalidate(ctx context.Context, name string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, name); err != nil {
		s.logger.Warn("permission cache invalidate", slog.String("role", name), slog.Any("error", err))
	}
}

func normalizeName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", shared.NewValidationError("name", "must not be blank")
	}
	return name, nil
}

// normalizePermissions lowercases, dedups and sorts the key list,
// rejecting keys absent from the catalog.
func normalizePermissions(keys []string) ([]string, error) {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		if !rbac.IsKnownPermission(key) {
			return nil, shared.NewValidationError("permissions", "unknown permission key: "+key)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	if len(out) == 0 {
		return nil, shared.NewValidationError("permissions", "must contain at least one permission")
	}
	sort.Strings(out)
	return out, nil
}
