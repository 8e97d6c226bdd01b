// Package media implements upload management backed by object storage.
// Files land in the blob store under generated keys; metadata lives in
// PostgreSQL and downloads go through short-lived presigned URLs.
package media

import "time"

const maxUploadBytes = 20 << 20 // 20 MiB

const presignExpiry = 15 * time.Minute

type MediaItem struct {
	ID          int64      `json:"id"`
	FileName    string     `json:"file_name"`
	ObjectKey   string     `json:"-"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	UploadedBy  int64      `json:"uploaded_by"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"-"`
}
