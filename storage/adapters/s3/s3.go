package s3

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bignyap/go-sqlhelper/logger/api"
	"github.com/bignyap/go-sqlhelper/logger/factory"
	storageapi "github.com/bignyap/go-sqlhelper/storage/api"
	"github.com/bignyap/go-sqlhelper/storage/config"
)

// S3StorageService stores exports in an S3 (or S3-compatible) bucket.
type S3StorageService struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucketName    string
	log           api.Logger
}

var _ storageapi.StorageService = (*S3StorageService)(nil)

func NewS3StorageService(cfg config.S3Config) (*S3StorageService, error) {
	ctx := context.Background()
	log := factory.GetGlobalLogger().WithComponent("storage.s3")

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)

	// HeadBucket needs its own permission; a failure here is not fatal.
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.BucketName)}); err != nil {
		log.Warn(ctx, "could not verify bucket", api.String("bucket", cfg.BucketName), api.ErrorField(err))
	}

	return &S3StorageService{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucketName:    cfg.BucketName,
		log:           log,
	}, nil
}

// Upload sends data as the object body. data should be an io.ReadSeeker so the
// SDK can sign the payload.
func (s *S3StorageService) Upload(ctx context.Context, prefix, objectKey string, data io.Reader, size int64, contentType string) (string, error) {
	storagePath := storageapi.ObjectPath(prefix, objectKey)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucketName),
		Key:           aws.String(storagePath),
		Body:          data,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", storagePath, err)
	}

	s.log.Debug(ctx, "object uploaded", api.String("path", storagePath), api.Any("size", size))
	return storagePath, nil
}

func (s *S3StorageService) Download(ctx context.Context, storagePath string) ([]byte, string, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(storagePath),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get %s: %w", storagePath, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", storagePath, err)
	}
	return data, aws.ToString(result.ContentType), nil
}

func (s *S3StorageService) GetPresignedURL(ctx context.Context, storagePath string, expirySeconds int) (string, error) {
	result, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(storagePath),
	}, s3.WithPresignExpires(time.Duration(expirySeconds)*time.Second))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", storagePath, err)
	}
	return result.URL, nil
}

func (s *S3StorageService) Delete(ctx context.Context, storagePath string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(storagePath),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", storagePath, err)
	}
	return nil
}
