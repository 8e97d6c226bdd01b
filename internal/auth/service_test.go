package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koinonia-app/koinonia/internal/rbac"
	"github.com/koinonia-app/koinonia/internal/shared"
)

type memoryAccounts struct {
	byEmail    map[string]*Account
	byID       map[int64]*Account
	lastLogin  map[int64]time.Time
	passwords  map[int64]string
	loginErr   error
	updateErrs map[int64]error
}

func newMemoryAccounts(accounts ...*Account) *memoryAccounts {
	r := &memoryAccounts{
		byEmail:    make(map[string]*Account),
		byID:       make(map[int64]*Account),
		lastLogin:  make(map[int64]time.Time),
		passwords:  make(map[int64]string),
		updateErrs: make(map[int64]error),
	}
	for _, acc := range accounts {
		r.byEmail[acc.Email] = acc
		r.byID[acc.ID] = acc
	}
	return r
}

func (r *memoryAccounts) FindByEmail(_ context.Context, email string) (*Account, error) {
	acc, ok := r.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return acc, nil
}

func (r *memoryAccounts) FindByID(_ context.Context, id int64) (*Account, error) {
	acc, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return acc, nil
}

func (r *memoryAccounts) RecordLogin(_ context.Context, id int64, at time.Time) error {
	if r.loginErr != nil {
		return r.loginErr
	}
	r.lastLogin[id] = at
	return nil
}

func (r *memoryAccounts) UpdatePassword(_ context.Context, id int64, hash string) error {
	if err := r.updateErrs[id]; err != nil {
		return err
	}
	r.passwords[id] = hash
	if acc, ok := r.byID[id]; ok {
		acc.PasswordHash = hash
		acc.MustChangePassword = false
	}
	return nil
}

type staticRoles struct {
	perms map[string][]string
}

func (s *staticRoles) FindPermissionsByRole(_ context.Context, name string) ([]string, error) {
	perms, ok := s.perms[name]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return perms, nil
}

func testAccount(t *testing.T, password string) *Account {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	return &Account{
		ID:           1,
		Email:        "staff@example.com",
		PasswordHash: hash,
		Role:         "staff",
		MemberID:     9,
		Status:       StatusActive,
	}
}

func newAuthService(repo Repository, perms map[string][]string) *Service {
	resolver := rbac.NewResolver(&staticRoles{perms: perms}, nil, slog.Default())
	issuer := NewTokenIssuer(testSecret, 30*time.Minute)
	return NewService(repo, resolver, issuer, slog.Default())
}

func TestLoginIssuesSnapshotToken(t *testing.T) {
	acc := testAccount(t, "hunter2hunter2")
	repo := newMemoryAccounts(acc)
	svc := newAuthService(repo, map[string][]string{
		"staff": {rbac.PermMembersRead, rbac.PermEventsRead},
	})

	session, err := svc.Login(context.Background(), acc.Email, "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, session.UserID)
	assert.Equal(t, acc.MemberID, session.MemberID)
	assert.ElementsMatch(t, []string{rbac.PermMembersRead, rbac.PermEventsRead}, session.Permissions)
	assert.Contains(t, repo.lastLogin, acc.ID)

	claims, err := svc.VerifyToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, claims.UserID)
	assert.ElementsMatch(t, session.Permissions, claims.Permissions)
}

func TestLoginFailuresAreUndifferentiated(t *testing.T) {
	acc := testAccount(t, "hunter2hunter2")
	svc := newAuthService(newMemoryAccounts(acc), nil)
	ctx := context.Background()

	_, wrongEmail := svc.Login(ctx, "nobody@example.com", "hunter2hunter2")
	_, wrongPassword := svc.Login(ctx, acc.Email, "not-the-password")
	assert.ErrorIs(t, wrongEmail, shared.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongPassword, shared.ErrInvalidCredentials)
	assert.Equal(t, wrongEmail, wrongPassword)
}

func TestLoginDisabledAccount(t *testing.T) {
	acc := testAccount(t, "hunter2hunter2")
	acc.Status = StatusDisabled
	svc := newAuthService(newMemoryAccounts(acc), nil)

	// Wrong password on a disabled account still reads as invalid
	// credentials; the disabled state is only disclosed after the
	// password checks out.
	_, err := svc.Login(context.Background(), acc.Email, "wrong")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), acc.Email, "hunter2hunter2")
	assert.ErrorIs(t, err, shared.ErrAccountDisabled)
}

func TestLoginOverridesReplaceRolePermissions(t *testing.T) {
	acc := testAccount(t, "hunter2hunter2")
	acc.PermissionOverrides = []string{rbac.PermTagsRead}
	svc := newAuthService(newMemoryAccounts(acc), map[string][]string{
		"staff": {rbac.PermMembersRead},
	})

	session, err := svc.Login(context.Background(), acc.Email, "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, []string{rbac.PermTagsRead}, session.Permissions)
}

func TestRefreshPreservesSnapshot(t *testing.T) {
	acc := testAccount(t, "hunter2hunter2")
	svc := newAuthService(newMemoryAccounts(acc), nil)

	claims := &Claims{
		UserID:      acc.ID,
		MemberID:    acc.MemberID,
		Email:       acc.Email,
		Role:        acc.Role,
		Permissions: []string{rbac.PermMembersRead},
	}
	session, err := svc.Refresh(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, []string{rbac.PermMembersRead}, session.Permissions)

	verified, err := svc.VerifyToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, claims.Permissions, verified.Permissions)
}

func TestRefreshDisabledAccount(t *testing.T) {
	acc := testAccount(t, "hunter2hunter2")
	acc.Status = StatusDisabled
	svc := newAuthService(newMemoryAccounts(acc), nil)

	_, err := svc.Refresh(context.Background(), &Claims{UserID: acc.ID})
	assert.ErrorIs(t, err, shared.ErrAccountDisabled)
}

func TestChangePassword(t *testing.T) {
	acc := testAccount(t, "old-password")
	acc.MustChangePassword = true
	repo := newMemoryAccounts(acc)
	svc := newAuthService(repo, nil)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, acc.ID, "wrong", "new-password-1")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, acc.ID, "old-password", "short")
	verr, ok := shared.AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "new_password")

	require.NoError(t, svc.ChangePassword(ctx, acc.ID, "old-password", "new-password-1"))
	assert.False(t, acc.MustChangePassword)
	assert.True(t, VerifyPassword(acc.PasswordHash, "new-password-1"))

	_, err = svc.Login(ctx, acc.Email, "old-password")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, err = svc.Login(ctx, acc.Email, "new-password-1")
	assert.NoError(t, err)
}
