package users

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koinonia-app/koinonia/internal/auth"
	"github.com/koinonia-app/koinonia/internal/rbac"
	"github.com/koinonia-app/koinonia/internal/shared"
	"github.com/koinonia-app/koinonia/jobs"
)

type memoryUsers struct {
	users  map[int64]*User
	hashes map[int64]string
	nextID int64
}

func newMemoryUsers(seed ...User) *memoryUsers {
	r := &memoryUsers{users: make(map[int64]*User), hashes: make(map[int64]string), nextID: 1}
	for _, u := range seed {
		u.ID = r.nextID
		if u.Version == 0 {
			u.Version = 1
		}
		r.users[r.nextID] = &u
		r.nextID++
	}
	return r
}

func (r *memoryUsers) Get(_ context.Context, id int64) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memoryUsers) EmailExists(_ context.Context, email string) (bool, error) {
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryUsers) List(_ context.Context) ([]User, error) {
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *memoryUsers) Create(_ context.Context, u User, passwordHash string) (int64, error) {
	u.ID = r.nextID
	u.Version = 1
	r.users[u.ID] = &u
	r.hashes[u.ID] = passwordHash
	r.nextID++
	return u.ID, nil
}

func (r *memoryUsers) Update(_ context.Context, u User) error {
	stored, ok := r.users[u.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != u.Version {
		return shared.ErrVersionConflict
	}
	u.Version++
	r.users[u.ID] = &u
	return nil
}

type captureQueue struct {
	sent []jobs.SendEmailPayload
	err  error
}

func (q *captureQueue) EnqueueSendEmail(_ context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.sent = append(q.sent, payload)
	return &asynq.TaskInfo{}, nil
}

func TestInviteCreatesPendingAccount(t *testing.T) {
	repo := newMemoryUsers()
	queue := &captureQueue{}
	svc := NewService(repo, queue, slog.Default())

	member := int64(9)
	u, err := svc.Invite(context.Background(), InviteUserRequest{
		Email:    "  New.Leader@Example.COM ",
		Role:     " Leader ",
		MemberID: &member,
	})
	require.NoError(t, err)
	assert.Equal(t, "new.leader@example.com", u.Email)
	assert.Equal(t, "leader", u.Role)
	assert.Equal(t, auth.StatusPending, u.Status)
	assert.True(t, u.MustChangePassword)
	assert.Equal(t, member, u.MemberID)

	// The welcome email carries the temporary password, and the stored
	// hash verifies against it.
	require.Len(t, queue.sent, 1)
	assert.Equal(t, u.Email, queue.sent[0].To)
	temp := extractTempPassword(t, queue.sent[0].Body)
	assert.True(t, auth.VerifyPassword(repo.hashes[u.ID], temp))
}

func extractTempPassword(t *testing.T, body string) string {
	t.Helper()
	const prefix = "temporary password "
	idx := strings.Index(body, prefix)
	require.GreaterOrEqual(t, idx, 0, "welcome email must contain the temporary password")
	rest := body[idx+len(prefix):]
	fields := strings.Fields(rest)
	require.NotEmpty(t, fields)
	return fields[0]
}

func TestInviteDuplicateEmail(t *testing.T) {
	repo := newMemoryUsers(User{Email: "taken@example.com", Role: "staff", Status: auth.StatusActive})
	svc := NewService(repo, nil, slog.Default())

	_, err := svc.Invite(context.Background(), InviteUserRequest{Email: "Taken@example.com", Role: "staff"})
	verr, ok := shared.AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "email")
}

func TestInviteSurvivesQueueFailure(t *testing.T) {
	repo := newMemoryUsers()
	queue := &captureQueue{err: errors.New("redis down")}
	svc := NewService(repo, queue, slog.Default())

	u, err := svc.Invite(context.Background(), InviteUserRequest{Email: "a@example.com", Role: "staff"})
	require.NoError(t, err, "account creation must not depend on the mail queue")
	assert.Equal(t, auth.StatusPending, u.Status)
}

func TestUpdateNormalizesOverrides(t *testing.T) {
	repo := newMemoryUsers(User{Email: "a@example.com", Role: "staff", Status: auth.StatusActive})
	svc := NewService(repo, nil, slog.Default())

	u, err := svc.Update(context.Background(), 1, UpdateUserRequest{
		PermissionOverrides: []string{"Members:Read", "events:read", "members:read"},
		Version:             1,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{rbac.PermEventsRead, rbac.PermMembersRead}, u.PermissionOverrides)
}

func TestUpdateRejectsUnknownOverride(t *testing.T) {
	repo := newMemoryUsers(User{Email: "a@example.com", Role: "staff", Status: auth.StatusActive})
	svc := NewService(repo, nil, slog.Default())

	_, err := svc.Update(context.Background(), 1, UpdateUserRequest{
		PermissionOverrides: []string{"teleport:use"},
		Version:             1,
	})
	verr, ok := shared.AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields["permission_overrides"], "teleport:use")
}

func TestUpdateClearsOverrides(t *testing.T) {
	repo := newMemoryUsers(User{
		Email:               "a@example.com",
		Role:                "staff",
		Status:              auth.StatusActive,
		PermissionOverrides: []string{rbac.PermTagsRead},
	})
	svc := NewService(repo, nil, slog.Default())

	u, err := svc.Update(context.Background(), 1, UpdateUserRequest{
		PermissionOverrides: []string{""},
		Version:             1,
	})
	require.NoError(t, err)
	assert.Empty(t, u.PermissionOverrides)
}

func TestDisableIsStatusChange(t *testing.T) {
	repo := newMemoryUsers(User{Email: "a@example.com", Role: "staff", Status: auth.StatusActive})
	svc := NewService(repo, nil, slog.Default())

	u, err := svc.Disable(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, auth.StatusDisabled, u.Status)

	// The record survives; disabling never deletes.
	again, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, auth.StatusDisabled, again.Status)
}

func TestUpdateVersionConflict(t *testing.T) {
	repo := newMemoryUsers(User{Email: "a@example.com", Role: "staff", Status: auth.StatusActive})
	svc := NewService(repo, nil, slog.Default())

	role := "leader"
	_, err := svc.Update(context.Background(), 1, UpdateUserRequest{Role: &role, Version: 42})
	assert.ErrorIs(t, err, shared.ErrVersionConflict)
}
