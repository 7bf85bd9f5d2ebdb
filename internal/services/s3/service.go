// Package s3 provides the upload operation for backup artifacts.
package s3

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fgeck/godump-s3/internal/models"
	"github.com/rs/zerolog"
)

// Service defines the interface for artifact uploads.
type Service interface {
	Upload(ctx context.Context, cfg models.S3Config, key string, body io.Reader, metadata map[string]string) (*models.UploadResult, error)
}

// Uploader abstracts the SDK's upload manager.
type Uploader interface {
	Upload(ctx context.Context, input *awss3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// UploaderFactory builds an Uploader from the storage configuration.
type UploaderFactory interface {
	NewUploader(ctx context.Context, cfg models.S3Config) (Uploader, error)
}

// DefaultFactory builds real SDK clients.
type DefaultFactory struct{}

// NewUploader authenticates with static credentials and returns an upload
// manager for the configured bucket location. When an endpoint override is
// set the client switches to path-style addressing for S3-compatible
// services; otherwise the SDK derives the endpoint from the region.
func (f *DefaultFactory) NewUploader(ctx context.Context, cfg models.S3Config) (Uploader, error) {
	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("loading SDK config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return manager.NewUploader(client), nil
}

// Impl implements the upload Service interface.
type Impl struct {
	factory UploaderFactory
	logger  zerolog.Logger
}

// New creates a new upload service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		factory: &DefaultFactory{},
		logger:  logger,
	}
}

// NewWithFactory creates a new upload service with a custom factory (for testing).
func NewWithFactory(logger zerolog.Logger, factory UploaderFactory) *Impl {
	return &Impl{
		factory: factory,
		logger:  logger,
	}
}

// Upload streams body into the bucket under key and blocks until the
// service acknowledges the object. Every failure, from SDK setup through
// the service's own rejection, lands in UploadResult.Error as the single
// upload-failed outcome.
func (s *Impl) Upload(ctx context.Context, cfg models.S3Config, key string, body io.Reader, metadata map[string]string) (*models.UploadResult, error) {
	s.logger.Info().
		Str("bucket", cfg.Bucket).
		Str("key", key).
		Str("region", cfg.Region).
		Msg("starting upload")

	start := time.Now()
	result := &models.UploadResult{Key: key}

	uploader, err := s.factory.NewUploader(ctx, cfg)
	if err != nil {
		result.Error = fmt.Errorf("upload failed: %w", err)
		result.Duration = time.Since(start)
		return result, nil
	}

	output, err := uploader.Upload(ctx, &awss3.PutObjectInput{
		Bucket:   aws.String(cfg.Bucket),
		Key:      aws.String(key),
		Body:     body,
		Metadata: metadata,
	})
	result.Duration = time.Since(start)

	if err != nil {
		result.Error = fmt.Errorf("upload failed: %w", err)
		return result, nil //nolint:nilerr // error is stored in result struct by design
	}

	if output != nil {
		result.Location = output.Location
	}

	s.logger.Info().
		Str("bucket", cfg.Bucket).
		Str("key", key).
		Dur("duration", result.Duration).
		Msg("upload completed")

	return result, nil
}
