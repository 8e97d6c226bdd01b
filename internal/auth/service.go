package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/koinonia-app/koinonia/internal/rbac"
	"github.com/koinonia-app/koinonia/internal/shared"
)

const minPasswordLength = 8

// Session is the result of a successful login or refresh.
type Session struct {
	Token              string   `json:"token"`
	ExpiresAt          time.Time `json:"expires_at"`
	UserID             int64    `json:"user_id"`
	MemberID           int64    `json:"member_id,omitempty"`
	Email              string   `json:"email"`
	Role               string   `json:"role"`
	Permissions        []string `json:"permissions"`
	MustChangePassword bool     `json:"must_change_password"`
}

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	resolver *rbac.Resolver
	issuer   *TokenIssuer
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, resolver *rbac.Resolver, issuer *TokenIssuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, resolver: resolver, issuer: issuer, logger: logger, now: time.Now}
}

// Login validates credentials and issues a session token carrying the
// permission snapshot resolved at this moment. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !VerifyPassword(acc.PasswordHash, password) {
		return nil, shared.ErrInvalidCredentials
	}
	if acc.Status != StatusActive {
		return nil, shared.ErrAccountDisabled
	}

	perms, err := s.resolver.Resolve(ctx, acc.Role, acc.PermissionOverrides)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.repo.RecordLogin(ctx, acc.ID, now); err != nil && s.logger != nil {
		s.logger.Warn("record last login", slog.Int64("user_id", acc.ID), slog.Any("error", err))
	}

	return s.issue(acc, perms)
}

// Refresh re-issues a token from a verified payload without rechecking
// the password. The permission snapshot is carried over unchanged;
// permission edits made since login take effect at the next login.
func (s *Service) Refresh(ctx context.Context, claims *Claims) (*Session, error) {
	acc, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, shared.ErrAuthenticationFailed
	}
	if acc.Status != StatusActive {
		return nil, shared.ErrAccountDisabled
	}

	token, err := s.issuer.Issue(Claims{
		UserID:             claims.UserID,
		MemberID:           claims.MemberID,
		CellGroupID:        claims.CellGroupID,
		Email:              claims.Email,
		Role:               claims.Role,
		Permissions:        claims.Permissions,
		MustChangePassword: acc.MustChangePassword,
	})
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:              token,
		ExpiresAt:          s.now().Add(s.issuer.TTL()),
		UserID:             claims.UserID,
		MemberID:           claims.MemberID,
		Email:              claims.Email,
		Role:               claims.Role,
		Permissions:        claims.Permissions,
		MustChangePassword: acc.MustChangePassword,
	}, nil
}

// ChangePassword re-verifies the current password before accepting the
// new one, enforces the minimum length and clears the
// must-change-password flag.
func (s *Service) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	acc, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return shared.ErrAuthenticationFailed
	}
	if !VerifyPassword(acc.PasswordHash, current) {
		return shared.ErrInvalidCredentials
	}
	if len(next) < minPasswordLength {
		return shared.NewValidationError("new_password", "must be at least 8 characters")
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, hash)
}

// VerifyToken exposes token verification for middleware.
func (s *Service) VerifyToken(raw string) (*Claims, error) {
	return s.issuer.Verify(raw)
}

func (s *Service) issue(acc *Account, perms []string) (*Session, error) {
	token, err := s.issuer.Issue(Claims{
		UserID:             acc.ID,
		MemberID:           acc.MemberID,
		CellGroupID:        acc.CellGroupID,
		Email:              acc.Email,
		Role:               acc.Role,
		Permissions:        perms,
		MustChangePassword: acc.MustChangePassword,
	})
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:              token,
		ExpiresAt:          s.now().Add(s.issuer.TTL()),
		UserID:             acc.ID,
		MemberID:           acc.MemberID,
		Email:              acc.Email,
		Role:               acc.Role,
		Permissions:        perms,
		MustChangePassword: acc.MustChangePassword,
	}, nil
}
