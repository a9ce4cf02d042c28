package media

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the base of object links; defaults to the endpoint.
	PublicURL string
}

type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioStore connects to the object store and makes sure the bucket
// exists.
func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect minio")
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, errors.Wrapf(err, "check bucket %s", cfg.Bucket)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrapf(err, "create bucket %s", cfg.Bucket)
		}
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
	}

	return &MinioStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: joinURL(publicURL, cfg.Bucket),
	}, nil
}

func (s *MinioStore) Save(ctx context.Context, prefix, filename, contentType string, r io.Reader, size int64) (string, error) {
	key := NewKey(prefix, filename)
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", errors.Wrapf(err, "upload %s", key)
	}
	return key, nil
}

func (s *MinioStore) URL(key string) string {
	return joinURL(s.publicURL, key)
}

func (s *MinioStore) Delete(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	return errors.Wrapf(err, "delete %s", key)
}
