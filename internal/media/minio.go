package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore uploads media to an S3-compatible object store and returns
// public URLs as references. This keeps large payloads out of the serialized
// slot when the application outgrows inline storage.
type MinioStore struct {
	client         *minio.Client
	bucket         string
	publicEndpoint string
	useSSL         bool
}

// MinioConfig holds the object-store connection settings.
type MinioConfig struct {
	Endpoint       string
	PublicEndpoint string // falls back to Endpoint if empty
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
}

// NewMinioStore connects to the object store and makes sure the bucket
// exists, creating it if needed.
func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating object store client: %w", err)
	}

	public := strings.TrimSuffix(strings.TrimSpace(cfg.PublicEndpoint), "/")
	if public == "" {
		public = cfg.Endpoint
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(checkCtx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(checkCtx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("creating bucket %q: %w", cfg.Bucket, err)
		}
		slog.Info("media bucket created", "bucket", cfg.Bucket)
	}

	return &MinioStore{
		client:         client,
		bucket:         cfg.Bucket,
		publicEndpoint: public,
		useSSL:         cfg.UseSSL,
	}, nil
}

// Put uploads the data under a unique key and returns its public URL.
func (s *MinioStore) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := uuid.NewString() + extensionFor(contentType)
	if name != "" {
		key = name + "-" + key
	}

	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", fmt.Errorf("uploading media %q: %w", key, err)
	}

	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.publicEndpoint, s.bucket, key), nil
}

// extensionFor maps the content types this application stores to file
// extensions, so object keys stay recognizable.
func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "video/quicktime":
		return ".mov"
	case "video/webm":
		return ".webm"
	default:
		return ""
	}
}
