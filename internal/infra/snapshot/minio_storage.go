package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// objectClient is the subset of *minio.Client the storage uses.
type objectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinioStorage stores objects in any S3-compatible bucket (MinIO, R2, S3).
type MinioStorage struct {
	client objectClient
	bucket string
	region string
	logger *slog.Logger

	mu          sync.Mutex
	bucketReady bool
}

// NewMinioStorage constructs the storage adapter.
func NewMinioStorage(endpoint, accessKey, secretKey, bucket, region string, logger *slog.Logger) (*MinioStorage, error) {
	cleanEndpoint := sanitizeEndpoint(endpoint)
	useSSL := strings.HasPrefix(strings.ToLower(strings.TrimSpace(endpoint)), "https")
	client, err := minio.New(cleanEndpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage client: %w", err)
	}
	return newMinioStorage(client, bucket, region, logger), nil
}

func newMinioStorage(client objectClient, bucket, region string, logger *slog.Logger) *MinioStorage {
	if logger == nil {
		logger = slog.Default()
	}
	return &MinioStorage{
		client: client,
		bucket: bucket,
		region: region,
		logger: logger.With("component", "snapshot.storage"),
	}
}

// ensureBucket checks for the bucket once per process and creates it when missing.
func (s *MinioStorage) ensureBucket(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bucketReady {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", s.bucket, err)
	}
	if !exists {
		err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
		switch {
		case err == nil:
			s.logger.Info("snapshot bucket created", "bucket", s.bucket)
		case minio.ToErrorResponse(err).Code == "BucketAlreadyOwnedByYou":
		default:
			return fmt.Errorf("create bucket %q: %w", s.bucket, err)
		}
	}
	s.bucketReady = true
	return nil
}

// Put uploads data as a single part.
func (s *MinioStorage) Put(ctx context.Context, key string, data []byte, mimeType string) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:      mimeType,
		DisableMultipart: true,
	})
	return err
}

var _ ObjectStorage = (*MinioStorage)(nil)

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if idx := strings.Index(raw, "/"); idx >= 0 {
		raw = raw[:idx]
	}
	return raw
}
