package api

import (
	"context"
	"io"
)

// StorageService stores exported result files in an object store.
// Implementations: MinIO, AWS S3
type StorageService interface {
	// Upload stores data under prefix/objectKey and returns that path.
	// An empty prefix stores the object at objectKey.
	Upload(ctx context.Context, prefix, objectKey string, data io.Reader, size int64, contentType string) (storagePath string, err error)

	// Download returns the object data and its content type.
	Download(ctx context.Context, storagePath string) (data []byte, contentType string, err error)

	// GetPresignedURL generates a download URL that expires after expirySeconds.
	GetPresignedURL(ctx context.Context, storagePath string, expirySeconds int) (url string, err error)

	Delete(ctx context.Context, storagePath string) error
}

// StorageType represents the type of storage backend
type StorageType string

const (
	StorageTypeMinio StorageType = "minio"
	StorageTypeS3    StorageType = "s3"
)

// ObjectPath joins prefix and objectKey with a single slash.
func ObjectPath(prefix, objectKey string) string {
	for len(prefix) > 0 && prefix[len(prefix)-1] == '/' {
		prefix = prefix[:len(prefix)-1]
	}
	for len(objectKey) > 0 && objectKey[0] == '/' {
		objectKey = objectKey[1:]
	}
	if prefix == "" {
		return objectKey
	}
	return prefix + "/" + objectKey
}
