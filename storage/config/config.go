package config

import (
	"strings"

	sqlconfig "github.com/bignyap/go-sqlhelper/config"
	"github.com/bignyap/go-sqlhelper/storage/api"
)

const (
	DefaultMinIOEndpoint = "localhost:9000"
	DefaultRegion        = "us-east-1"
	DefaultBucket        = "sqlhelper-exports"
)

// MinIOConfig holds MinIO connection configuration
type MinIOConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
}

// S3Config holds AWS S3 connection configuration
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string // Optional: for S3-compatible services
}

// StorageType returns the backend named by the [export] type key, minio when
// it is empty.
func StorageType(cfg sqlconfig.ExportConfig) api.StorageType {
	t := strings.ToLower(strings.TrimSpace(cfg.Type))
	if t == "" {
		return api.StorageTypeMinio
	}
	return api.StorageType(t)
}

// MinIOFrom fills a MinIOConfig from the [export] section, using local
// development defaults for anything left blank.
func MinIOFrom(cfg sqlconfig.ExportConfig) MinIOConfig {
	return MinIOConfig{
		Endpoint:   orDefault(cfg.Endpoint, DefaultMinIOEndpoint),
		AccessKey:  orDefault(cfg.AccessKey, "minioadmin"),
		SecretKey:  orDefault(cfg.SecretKey, "minioadmin"),
		BucketName: orDefault(cfg.Bucket, DefaultBucket),
		UseSSL:     cfg.UseSSL,
	}
}

// S3From fills an S3Config from the [export] section. Blank credentials
// leave the AWS default credential chain in charge.
func S3From(cfg sqlconfig.ExportConfig) S3Config {
	return S3Config{
		Region:          orDefault(cfg.Region, DefaultRegion),
		AccessKeyID:     cfg.AccessKey,
		SecretAccessKey: cfg.SecretKey,
		BucketName:      orDefault(cfg.Bucket, DefaultBucket),
		Endpoint:        cfg.Endpoint,
	}
}

func orDefault(value, defaultValue string) string {
	if value != "" {
		return value
	}
	return defaultValue
}
