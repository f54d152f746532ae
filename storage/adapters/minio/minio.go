package minio

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bignyap/go-sqlhelper/logger/api"
	"github.com/bignyap/go-sqlhelper/logger/factory"
	storageapi "github.com/bignyap/go-sqlhelper/storage/api"
	"github.com/bignyap/go-sqlhelper/storage/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// bucketCheckTimeout bounds the bucket lookup done while connecting.
const bucketCheckTimeout = 30 * time.Second

// MinIOStorageService stores exports in a MinIO bucket.
type MinIOStorageService struct {
	client     *minio.Client
	bucketName string
	log        api.Logger
}

var _ storageapi.StorageService = (*MinIOStorageService)(nil)

// NewMinIOStorageService connects to MinIO and creates the bucket when it
// does not exist yet.
func NewMinIOStorageService(cfg config.MinIOConfig) (*MinIOStorageService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), bucketCheckTimeout)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %q: %w", cfg.BucketName, err)
	}

	log := factory.GetGlobalLogger().WithComponent("storage.minio")
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %q: %w", cfg.BucketName, err)
		}
		log.Info(ctx, "bucket created", api.String("bucket", cfg.BucketName))
	}

	return &MinIOStorageService{
		client:     client,
		bucketName: cfg.BucketName,
		log:        log,
	}, nil
}

func (s *MinIOStorageService) Upload(ctx context.Context, prefix, objectKey string, data io.Reader, size int64, contentType string) (string, error) {
	storagePath := storageapi.ObjectPath(prefix, objectKey)

	info, err := s.client.PutObject(ctx, s.bucketName, storagePath, data, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", storagePath, err)
	}

	s.log.Debug(ctx, "object uploaded",
		api.String("path", storagePath),
		api.Any("size", info.Size),
	)
	return storagePath, nil
}

func (s *MinIOStorageService) Download(ctx context.Context, storagePath string) ([]byte, string, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, storagePath, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get %s: %w", storagePath, err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nil, "", fmt.Errorf("failed to stat %s: %w", storagePath, err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", storagePath, err)
	}
	return data, info.ContentType, nil
}

func (s *MinIOStorageService) GetPresignedURL(ctx context.Context, storagePath string, expirySeconds int) (string, error) {
	expiry := time.Duration(expirySeconds) * time.Second
	url, err := s.client.PresignedGetObject(ctx, s.bucketName, storagePath, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", storagePath, err)
	}
	return url.String(), nil
}

func (s *MinIOStorageService) Delete(ctx context.Context, storagePath string) error {
	if err := s.client.RemoveObject(ctx, s.bucketName, storagePath, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", storagePath, err)
	}
	return nil
}
