package users

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/koinonia-app/koinonia/internal/auth"
	"github.com/koinonia-app/koinonia/internal/rbac"
	"github.com/koinonia-app/koinonia/internal/shared"
	"github.com/koinonia-app/koinonia/jobs"
)

// Enqueuer submits background jobs. *jobs.Client satisfies it.
type Enqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// Service orchestrates user account administration. Invited accounts
// receive a generated temporary password and must change it on first
// login.
type Service struct {
	repo    Repository
	queue   Enqueuer
	logger  *slog.Logger
	newTemp func() (string, error)
}

// NewService constructs a Service. queue may be nil, in which case
// invitations skip the welcome email.
func NewService(repo Repository, queue Enqueuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, queue: queue, logger: logger, newTemp: tempPassword}
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// Invite creates a pending account with a temporary password and
// queues the welcome email carrying it.
func (s *Service) Invite(ctx context.Context, req InviteUserRequest) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewValidationError("email", "an account with this email already exists")
	}

	temp, err := s.newTemp()
	if err != nil {
		return nil, fmt.Errorf("generate temporary password: %w", err)
	}
	hash, err := auth.HashPassword(temp)
	if err != nil {
		return nil, fmt.Errorf("hash temporary password: %w", err)
	}

	u := User{
		Email:              email,
		Role:               strings.ToLower(strings.TrimSpace(req.Role)),
		Status:             auth.StatusPending,
		MustChangePassword: true,
	}
	if req.MemberID != nil {
		u.MemberID = *req.MemberID
	}
	id, err := s.repo.Create(ctx, u, hash)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.queue != nil {
		payload := jobs.SendEmailPayload{
			To:      email,
			Subject: "Welcome to Koinonia",
			Body: "An account has been created for you. Sign in with the temporary password " +
				temp + " and set a new one.",
		}
		if _, err := s.queue.EnqueueSendEmail(ctx, payload); err != nil {
			// The account exists either way; an admin can resend manually.
			s.logger.Warn("enqueue welcome email", slog.String("email", email), slog.Any("error", err))
		}
	}
	return s.repo.Get(ctx, id)
}

// Update applies role, status, member link and permission override
// changes behind the optimistic version check.
func (s *Service) Update(ctx context.Context, id int64, req UpdateUserRequest) (*User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*req.Role))
		if role == "" {
			return nil, shared.NewValidationError("role", "must not be blank")
		}
		u.Role = role
	}
	if req.Status != nil {
		u.Status = *req.Status
	}
	if req.MemberID != nil {
		u.MemberID = *req.MemberID
	}
	if req.PermissionOverrides != nil {
		overrides, err := normalizeOverrides(req.PermissionOverrides)
		if err != nil {
			return nil, err
		}
		u.PermissionOverrides = overrides
	}

	u.Version = req.Version
	if err := s.repo.Update(ctx, *u); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Disable marks an account disabled. Existing tokens keep working
// until they expire; the next login is rejected.
func (s *Service) Disable(ctx context.Context, id int64, version int64) (*User, error) {
	status := auth.StatusDisabled
	return s.Update(ctx, id, UpdateUserRequest{Status: &status, Version: version})
}

// normalizeOverrides lowercases and dedups keys, rejecting ones absent
// from the catalog. An empty result clears the overrides so the role
// set applies again.
func normalizeOverrides(keys []string) ([]string, error) {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		if !rbac.IsKnownPermission(key) {
			return nil, shared.NewValidationError("permission_overrides", "unknown permission key: "+key)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out, nil
}

func tempPassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
