package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds the configuration for MinIO storage.
type MinioConfig struct {
	Endpoint  string // host[:port], without scheme
	Bucket    string
	Region    string // Optional: defaults to us-east-1
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// MinioStorage wraps LocalStorage and delivers exported files to a MinIO
// (or other S3-compatible) bucket.
type MinioStorage struct {
	*LocalStorage
	client   *minio.Client
	bucket   string
	region   string
	endpoint string
	useSSL   bool
}

// NewMinioStorage creates a new MinioStorage instance. No request is made
// until EnsureBucket or Deliver is called.
func NewMinioStorage(tempDir string, cfg MinioConfig) (*MinioStorage, error) {
	local, err := NewLocalStorage(tempDir, "")
	if err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create MinIO client: %w", err)
	}

	return &MinioStorage{
		LocalStorage: local,
		client:       client,
		bucket:       cfg.Bucket,
		region:       region,
		endpoint:     cfg.Endpoint,
		useSSL:       cfg.UseSSL,
	}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *MinioStorage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Deliver uploads data to the bucket under key and returns its URL.
func (s *MinioStorage) Deliver(ctx context.Context, key string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType(key)},
	)
	if err != nil {
		return "", fmt.Errorf("upload to MinIO: %w", err)
	}

	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, key), nil
}

// Discard removes delivered objects from the bucket.
func (s *MinioStorage) Discard(ctx context.Context, keys []string) error {
	var firstErr error
	for _, key := range keys {
		err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("remove %s from MinIO: %w", key, err)
		}
	}
	return firstErr
}

// Verify interface implementation at compile time.
var _ Storage = (*MinioStorage)(nil)
