// Package storage provides the S3 backed blob store for uploaded media.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// BlobStore abstracts object storage so services and tests can swap
// the S3 client for a fake.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// S3Store implements BlobStore on top of an S3 bucket.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store builds an S3Store using the default AWS credential chain.
func NewS3Store(ctx context.Context, region, bucket string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("platform/storage: load aws config: %w", err)
	}
	return &S3Store{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// Put uploads an object under the given key.
func (s *S3Store) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("platform/storage: put %s: %w", key, err)
	}
	return nil
}

// PresignedURL returns a time-limited download URL for the key.
func (s *S3Store) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	presign := s3.NewPresignClient(s.client)
	req, err := presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("platform/storage: presign %s: %w", key, err)
	}
	return req.URL, nil
}

// Delete removes an object. Missing keys are not an error.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("platform/storage: delete %s: %w", key, err)
	}
	return nil
}

// ObjectKey derives a collision-free storage key from the original
// filename, partitioned by upload month.
func ObjectKey(filename string, now time.Time) string {
	return fmt.Sprintf("media/%d/%02d/%s_%s", now.Year(), now.Month(), uuid.NewString(), sanitizeFilename(filename))
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "file"
	}
	replacer := strings.NewReplacer("/", "-", "\\", "-", " ", "_")
	return replacer.Replace(name)
}
