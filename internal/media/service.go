package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/koinonia-app/koinonia/internal/platform/storage"
	"github.com/koinonia-app/koinonia/internal/shared"
)

var allowedContentTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"image/gif":       {},
	"application/pdf": {},
	"audio/mpeg":      {},
	"video/mp4":       {},
}

type Service struct {
	repo   Repository
	blobs  storage.BlobStore
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, blobs storage.BlobStore, logger *slog.Logger) *Service {
	return &Service{repo: repo, blobs: blobs, logger: logger, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]MediaItem, error) {
	return s.repo.List(ctx)
}

// Upload stores the file in the blob store and records its metadata.
// The object key is generated; the original filename is kept for
// display only.
func (s *Service) Upload(ctx context.Context, user shared.UserContext, fileName, contentType string, size int64, body io.Reader) (*MediaItem, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if _, ok := allowedContentTypes[contentType]; !ok {
		return nil, shared.NewValidationError("file", "unsupported content type: "+contentType)
	}
	if size <= 0 || size > maxUploadBytes {
		return nil, shared.NewValidationError("file", fmt.Sprintf("size must be between 1 byte and %d bytes", maxUploadBytes))
	}

	key := storage.ObjectKey(fileName, s.now())
	if err := s.blobs.Put(ctx, key, contentType, io.LimitReader(body, maxUploadBytes)); err != nil {
		return nil, fmt.Errorf("upload media: %w", err)
	}

	id, err := s.repo.Create(ctx, MediaItem{
		FileName:    fileName,
		ObjectKey:   key,
		ContentType: contentType,
		SizeBytes:   size,
		UploadedBy:  user.UserID,
	})
	if err != nil {
		// Metadata insert failed; drop the orphan object.
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Warn("cleanup orphan object", slog.String("key", key), slog.Any("error", delErr))
		}
		return nil, fmt.Errorf("record media: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// DownloadURL returns a presigned URL for the item.
func (s *Service) DownloadURL(ctx context.Context, id int64) (string, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.blobs.PresignedURL(ctx, item.ObjectKey, presignExpiry)
}

// Delete removes the metadata row and then the stored object. A blob
// store failure after the row is gone is logged, not surfaced.
func (s *Service) Delete(ctx context.Context, id int64) error {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, item.ObjectKey); err != nil {
		s.logger.Warn("delete stored object", slog.String("key", item.ObjectKey), slog.Any("error", err))
	}
	return nil
}
