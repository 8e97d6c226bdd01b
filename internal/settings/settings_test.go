package settings

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koinonia-app/koinonia/internal/shared"
)

type memorySettings struct {
	values map[string]Setting
}

func newMemorySettings() *memorySettings {
	return &memorySettings{values: make(map[string]Setting)}
}

func (r *memorySettings) Get(_ context.Context, key string) (*Setting, error) {
	s, ok := r.values[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &s, nil
}

func (r *memorySettings) List(_ context.Context) ([]Setting, error) {
	out := make([]Setting, 0, len(r.values))
	for _, s := range r.values {
		out = append(out, s)
	}
	return out, nil
}

func (r *memorySettings) Upsert(_ context.Context, s Setting) error {
	s.UpdatedAt = time.Now()
	r.values[s.Key] = s
	return nil
}

func TestSetValidatesKeyShape(t *testing.T) {
	svc := NewService(newMemorySettings(), slog.Default())
	user := shared.UserContext{UserID: 3}
	ctx := context.Background()

	valid := []string{"site.name", "contact.email", "a", "feature_flags.new_ui", "s3.bucket_2"}
	for _, key := range valid {
		_, err := svc.Set(ctx, user, key, "x")
		assert.NoError(t, err, "key %q", key)
	}

	invalid := []string{"", ".", "site..name", "Site.Name.", "1site", "site-name", "site name", ".leading"}
	for _, key := range invalid {
		_, err := svc.Set(ctx, user, key, "x")
		_, ok := shared.AsValidationError(err)
		assert.True(t, ok, "key %q should be rejected", key)
	}
}

func TestSetLowercasesAndRecordsActor(t *testing.T) {
	repo := newMemorySettings()
	svc := NewService(repo, slog.Default())

	s, err := svc.Set(context.Background(), shared.UserContext{UserID: 7}, "  Site.Name ", "Koinonia Fellowship")
	require.NoError(t, err)
	assert.Equal(t, "site.name", s.Key)
	assert.Equal(t, "Koinonia Fellowship", s.Value)
	assert.Equal(t, int64(7), s.UpdatedBy)
}

func TestSetOverwritesExisting(t *testing.T) {
	repo := newMemorySettings()
	svc := NewService(repo, slog.Default())
	ctx := context.Background()

	_, err := svc.Set(ctx, shared.UserContext{UserID: 1}, "site.name", "Old Name")
	require.NoError(t, err)
	s, err := svc.Set(ctx, shared.UserContext{UserID: 2}, "site.name", "New Name")
	require.NoError(t, err)
	assert.Equal(t, "New Name", s.Value)
	assert.Equal(t, int64(2), s.UpdatedBy)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetUnknownKey(t *testing.T) {
	svc := NewService(newMemorySettings(), slog.Default())
	_, err := svc.Get(context.Background(), "site.missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
