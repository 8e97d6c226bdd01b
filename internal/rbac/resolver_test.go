package rbac

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koinonia-app/koinonia/internal/shared"
)

type stubRoleSource struct {
	perms map[string][]string
	err   error
	calls int
}

func (s *stubRoleSource) FindPermissionsByRole(_ context.Context, name string) ([]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	perms, ok := s.perms[name]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return perms, nil
}

func newTestResolver(t *testing.T, source RoleSource) (*Resolver, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewPermissionCache(client, time.Minute)
	return NewResolver(source, cache, slog.Default()), mr
}

func TestResolveOverridesReplaceRolePermissions(t *testing.T) {
	source := &stubRoleSource{perms: map[string][]string{"staff": {PermMembersRead, PermEventsRead}}}
	resolver, _ := newTestResolver(t, source)

	perms, err := resolver.Resolve(context.Background(), "staff", []string{PermTagsRead})
	require.NoError(t, err)
	assert.Equal(t, []string{PermTagsRead}, perms)
	assert.Zero(t, source.calls, "override must not hit the role source")
}

func TestResolveStoredRole(t *testing.T) {
	source := &stubRoleSource{perms: map[string][]string{"usher": {PermEventsRead}}}
	resolver, _ := newTestResolver(t, source)

	perms, err := resolver.Resolve(context.Background(), "  Usher ", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{PermEventsRead}, perms)
}

func TestResolveLegacyFallback(t *testing.T) {
	source := &stubRoleSource{perms: map[string][]string{}}
	resolver, _ := newTestResolver(t, source)

	perms, err := resolver.Resolve(context.Background(), RoleReadonly, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{PermMembersRead, PermEventsRead}, perms)
}

func TestResolveUnknownRoleEmptyNotError(t *testing.T) {
	source := &stubRoleSource{perms: map[string][]string{}}
	resolver, _ := newTestResolver(t, source)

	perms, err := resolver.Resolve(context.Background(), "no-such-role", nil)
	require.NoError(t, err)
	assert.Empty(t, perms)

	perms, err = resolver.Resolve(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestResolveUsesCacheOnSecondLookup(t *testing.T) {
	source := &stubRoleSource{perms: map[string][]string{"staff": {PermMembersRead}}}
	resolver, _ := newTestResolver(t, source)
	ctx := context.Background()

	_, err := resolver.Resolve(ctx, "staff", nil)
	require.NoError(t, err)
	_, err = resolver.Resolve(ctx, "staff", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls, "second lookup should come from cache")
}

func TestResolveFailsOpenWhenRedisDown(t *testing.T) {
	source := &stubRoleSource{perms: map[string][]string{"staff": {PermMembersRead}}}
	resolver, mr := newTestResolver(t, source)
	mr.Close()

	perms, err := resolver.Resolve(context.Background(), "staff", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{PermMembersRead}, perms)
}

func TestResolveSourceErrorPropagates(t *testing.T) {
	source := &stubRoleSource{err: errors.New("connection reset")}
	resolver, _ := newTestResolver(t, source)

	_, err := resolver.Resolve(context.Background(), "staff", nil)
	assert.Error(t, err)
}

func TestHasPermissionAdminImplicit(t *testing.T) {
	admin := shared.UserContext{Role: RoleAdmin}
	assert.True(t, HasPermission(admin, PermRolesDelete))
	assert.True(t, HasPermission(admin, "future:permission"))

	staff := shared.UserContext{Role: RoleStaff, Permissions: []string{PermMembersRead}}
	assert.True(t, HasPermission(staff, PermMembersRead))
	assert.True(t, HasPermission(staff, "Members:Read"), "permission match is case-insensitive")
	assert.False(t, HasPermission(staff, PermMembersDelete))
}

func TestPermissionCacheInvalidate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	cache := NewPermissionCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "staff", []string{PermMembersRead}))
	perms, ok := cache.Get(ctx, "staff")
	require.True(t, ok)
	assert.Equal(t, []string{PermMembersRead}, perms)

	require.NoError(t, cache.Invalidate(ctx, "staff"))
	_, ok = cache.Get(ctx, "staff")
	assert.False(t, ok)

	// Nil cache is a no-op everywhere.
	var nilCache *PermissionCache
	_, ok = nilCache.Get(ctx, "staff")
	assert.False(t, ok)
	assert.NoError(t, nilCache.Set(ctx, "staff", nil))
	assert.NoError(t, nilCache.Invalidate(ctx, "staff"))
}
