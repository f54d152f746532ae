package factory

import (
	"fmt"

	sqlconfig "github.com/bignyap/go-sqlhelper/config"
	minioadapter "github.com/bignyap/go-sqlhelper/storage/adapters/minio"
	s3adapter "github.com/bignyap/go-sqlhelper/storage/adapters/s3"
	"github.com/bignyap/go-sqlhelper/storage/api"
	"github.com/bignyap/go-sqlhelper/storage/config"
)

// New creates the storage service selected by the [export] type key.
// Supported types: "minio" (default), "s3"
func New(cfg sqlconfig.ExportConfig) (api.StorageService, error) {
	switch t := config.StorageType(cfg); t {
	case api.StorageTypeMinio:
		return minioadapter.NewMinIOStorageService(config.MinIOFrom(cfg))

	case api.StorageTypeS3:
		return s3adapter.NewS3StorageService(config.S3From(cfg))

	default:
		return nil, fmt.Errorf("unsupported storage type: %s (supported: minio, s3)", t)
	}
}
