// Package s3 provides an S3-compatible object store for urilaga backed by
// minio-go. Signed URLs are standard S3 presigned GET URLs.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Rifqialba/urilaga"
)

// MaxPresignTTL is the longest expiry S3 accepts for a presigned URL.
const MaxPresignTTL = 7 * 24 * time.Hour

// Config holds the connection settings of an S3 bucket.
//
// Image URLs signed against this backend last at most MaxPresignTTL, so the
// image_url stored with each row stops working a week after upload.
type Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
}

// Store implements urilaga.ObjectStore on a single bucket.
type Store struct {
	client *minio.Client
	bucket string
}

func normaliseEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, errors.New("empty endpoint")
	}

	// Accept either "minio:9000" or "http://minio:9000" / "https://minio:9000".
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, errors.New("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, errors.New("endpoint must not contain a path")
		}
		return u.Host, u.Scheme == "https", nil
	}

	return raw, false, nil
}

// New connects to the bucket described by cfg and checks that it exists.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, errors.New("new s3 store: configuration incomplete")
	}

	endpoint, secure, err := normaliseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("new s3 store: %w", err)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("new s3 store: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("new s3 store: check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("new s3 store: bucket does not exist: %s", cfg.Bucket)
	}

	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// Put uploads content as name. A negative size streams the body as a
// multipart upload.
func (s *Store) Put(ctx context.Context, name, contentType string, content io.Reader, size int64) (urilaga.ObjectInfo, error) {
	if contentType == "" {
		contentType = urilaga.DefaultContentType
	}

	info, err := s.client.PutObject(ctx, s.bucket, name, content, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return urilaga.ObjectInfo{}, fmt.Errorf("put object %s: %w", name, err)
	}

	return urilaga.ObjectInfo{
		Name:         info.Key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  contentType,
		LastModified: info.LastModified,
	}, nil
}

func clampTTL(ttl time.Duration) time.Duration {
	return min(ttl, MaxPresignTTL)
}

// SignURL returns an S3 presigned GET URL. Expiries above MaxPresignTTL are
// shortened to it.
func (s *Store) SignURL(ctx context.Context, name string, ttl time.Duration) (string, error) {
	expiry := clampTTL(ttl)
	if expiry != ttl {
		slog.Warn("signed url ttl shortened to s3 maximum", "object", name, "requested", ttl, "used", expiry)
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, name, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign object %s: %w", name, err)
	}
	return u.String(), nil
}

// Delete removes name. Returns urilaga.ErrNotFound if it does not exist.
func (s *Store) Delete(ctx context.Context, name string) error {
	if _, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{}); err != nil {
		if isNotFound(err) {
			return urilaga.ErrNotFound
		}
		return fmt.Errorf("stat object %s: %w", name, err)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", name, err)
	}
	return nil
}

// List returns every object in the bucket.
func (s *Store) List(ctx context.Context) ([]urilaga.ObjectInfo, error) {
	objects := []urilaga.ObjectInfo{}
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		objects = append(objects, urilaga.ObjectInfo{
			Name:         obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			ContentType:  obj.ContentType,
			LastModified: obj.LastModified,
		})
	}
	return objects, nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
