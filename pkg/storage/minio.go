package storage

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"tasktracker/configs"
)

// MinioStore stores photo blobs in a single MinIO bucket and serves them
// over the bucket's plain HTTP URL.
type MinioStore struct {
	client   *minio.Client
	endpoint string
	bucket   string
}

func ConnectMinio(cfg configs.Config) *MinioStore {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: false,
	})
	if err != nil {
		log.Fatalf("Failed to connect to MinIO: %v", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		log.Fatalf("Failed to check MinIO bucket: %v", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			log.Fatalf("Failed to create MinIO bucket: %v", err)
		}
	}

	return &MinioStore{
		client:   client,
		endpoint: cfg.MinioEndpoint,
		bucket:   cfg.MinioBucket,
	}
}

func (s *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return fmt.Sprintf("http://%s/%s/%s", s.endpoint, s.bucket, key), nil
}

func (s *MinioStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}
