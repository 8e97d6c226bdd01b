package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koinonia-app/koinonia/internal/shared"
)

type memoryMedia struct {
	items     map[int64]*MediaItem
	nextID    int64
	createErr error
}

func newMemoryMedia() *memoryMedia {
	return &memoryMedia{items: make(map[int64]*MediaItem), nextID: 1}
}

func (r *memoryMedia) Get(_ context.Context, id int64) (*MediaItem, error) {
	item, ok := r.items[id]
	if !ok || item.DeletedAt != nil {
		return nil, shared.ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *memoryMedia) List(_ context.Context) ([]MediaItem, error) {
	var out []MediaItem
	for _, item := range r.items {
		if item.DeletedAt == nil {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *memoryMedia) Create(_ context.Context, item MediaItem) (int64, error) {
	if r.createErr != nil {
		return 0, r.createErr
	}
	item.ID = r.nextID
	r.items[item.ID] = &item
	r.nextID++
	return item.ID, nil
}

func (r *memoryMedia) SoftDelete(_ context.Context, id int64) error {
	item, ok := r.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	now := time.Now()
	item.DeletedAt = &now
	return nil
}

type memoryBlobs struct {
	objects map[string][]byte
	putErr  error
}

func newMemoryBlobs() *memoryBlobs {
	return &memoryBlobs{objects: make(map[string][]byte)}
}

func (b *memoryBlobs) Put(_ context.Context, key, _ string, body io.Reader) error {
	if b.putErr != nil {
		return b.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	b.objects[key] = data
	return nil
}

func (b *memoryBlobs) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if _, ok := b.objects[key]; !ok {
		return "", errors.New("no such object")
	}
	return "https://storage.test/" + key + "?signed", nil
}

func (b *memoryBlobs) Delete(_ context.Context, key string) error {
	delete(b.objects, key)
	return nil
}

var uploader = shared.UserContext{UserID: 5, Role: "staff"}

func TestUploadStoresObjectAndMetadata(t *testing.T) {
	repo := newMemoryMedia()
	blobs := newMemoryBlobs()
	svc := NewService(repo, blobs, slog.Default())

	item, err := svc.Upload(context.Background(), uploader,
		"Sermon Notes.pdf", "application/pdf", 11, strings.NewReader("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "Sermon Notes.pdf", item.FileName)
	assert.Equal(t, "application/pdf", item.ContentType)
	assert.Equal(t, int64(11), item.SizeBytes)
	assert.Equal(t, uploader.UserID, item.UploadedBy)
	require.Len(t, blobs.objects, 1)

	url, err := svc.DownloadURL(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Contains(t, url, "signed")
}

func TestUploadRejectsContentType(t *testing.T) {
	svc := NewService(newMemoryMedia(), newMemoryBlobs(), slog.Default())

	for _, ct := range []string{"application/x-msdownload", "text/html", ""} {
		_, err := svc.Upload(context.Background(), uploader, "f", ct, 10, strings.NewReader("x"))
		verr, ok := shared.AsValidationError(err)
		require.True(t, ok, "content type %q", ct)
		assert.Contains(t, verr.Fields, "file")
	}

	// Case folding on the declared type.
	_, err := svc.Upload(context.Background(), uploader, "f.png", " Image/PNG ", 1, strings.NewReader("x"))
	assert.NoError(t, err)
}

func TestUploadRejectsBadSize(t *testing.T) {
	svc := NewService(newMemoryMedia(), newMemoryBlobs(), slog.Default())

	for _, size := range []int64{0, -1, maxUploadBytes + 1} {
		_, err := svc.Upload(context.Background(), uploader, "f.png", "image/png", size, strings.NewReader("x"))
		_, ok := shared.AsValidationError(err)
		assert.True(t, ok, "size %d", size)
	}
}

func TestUploadCleansUpOrphanOnInsertFailure(t *testing.T) {
	repo := newMemoryMedia()
	repo.createErr = errors.New("insert failed")
	blobs := newMemoryBlobs()
	svc := NewService(repo, blobs, slog.Default())

	_, err := svc.Upload(context.Background(), uploader, "f.png", "image/png", 1, strings.NewReader("x"))
	require.Error(t, err)
	assert.Empty(t, blobs.objects, "orphan object must be removed")
}

func TestDeleteRemovesMetadataAndObject(t *testing.T) {
	repo := newMemoryMedia()
	blobs := newMemoryBlobs()
	svc := NewService(repo, blobs, slog.Default())

	item, err := svc.Upload(context.Background(), uploader, "f.png", "image/png", 1, strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), item.ID))
	assert.Empty(t, blobs.objects)

	_, err = svc.DownloadURL(context.Background(), item.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
