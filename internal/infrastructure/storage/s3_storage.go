// Package storage provides object storage implementations for exported files.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	infraconfig "github.com/invoicesxpert/backend/internal/infrastructure/config"
	"github.com/invoicesxpert/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// Ensure S3Archive implements ExportArchive
var _ printing.ExportArchive = (*S3Archive)(nil)

// S3Archive stores exported PDFs in an S3 bucket and hands out presigned
// download URLs. It works with any S3-compatible storage (AWS S3, MinIO, etc.)
type S3Archive struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	bucket            string
	keyPrefix         string
	presignExpiration time.Duration
	logger            *zap.Logger
	now               func() time.Time
}

// S3ArchiveOption is a functional option for configuring S3Archive
type S3ArchiveOption func(*S3Archive)

// WithLogger sets a custom logger for S3Archive
func WithLogger(logger *zap.Logger) S3ArchiveOption {
	return func(s *S3Archive) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPresignExpiration sets a custom presign expiration duration
func WithPresignExpiration(d time.Duration) S3ArchiveOption {
	return func(s *S3Archive) {
		s.presignExpiration = d
	}
}

// WithClock overrides the time source used for object paths
func WithClock(now func() time.Time) S3ArchiveOption {
	return func(s *S3Archive) {
		s.now = now
	}
}

// NewS3Archive creates a new S3Archive from configuration.
func NewS3Archive(cfg *infraconfig.StorageConfig, opts ...S3ArchiveOption) (*S3Archive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if (cfg.AccessKeyID == "") != (cfg.SecretAccessKey == "") {
		return nil, errors.New("storage access key and secret key must be set together")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"", // session token (not used for static credentials)
		)))
	}
	awsCfg, err := config.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	var endpoint string
	if cfg.Endpoint != "" {
		endpoint = cfg.Endpoint
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		// S3-compatible stores reject the trailing checksums sent by default
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	archive := &S3Archive{
		client:            client,
		presignClient:     s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		keyPrefix:         strings.Trim(cfg.KeyPrefix, "/"),
		presignExpiration: cfg.PresignExpiry,
		logger:            zap.NewNop(),
		now:               time.Now,
	}

	for _, opt := range opts {
		opt(archive)
	}

	if archive.presignExpiration == 0 {
		archive.presignExpiration = 15 * time.Minute
	}

	return archive, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup to ensure the bucket is ready.
func (s *S3Archive) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating export bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		// Ignore "BucketAlreadyOwnedByYou" error (race condition)
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	s.logger.Info("Export bucket created successfully", zap.String("bucket", s.bucket))
	return nil
}

// Store uploads the PDF and returns a presigned download URL
func (s *S3Archive) Store(ctx context.Context, req *printing.StoreRequest) (*printing.StoreResult, error) {
	if err := printing.ValidateStoreRequest(req); err != nil {
		return nil, err
	}

	key := s.objectKey(printing.ObjectName(req, s.now()))
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(req.PDFData),
		ContentType:        aws.String("application/pdf"),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", req.FileName)),
	})
	if err != nil {
		return nil, printing.NewRenderError(printing.ErrCodeStorageFailed, "failed to upload PDF", err)
	}

	s.logger.Info("PDF archived",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("size", len(req.PDFData)))

	return &printing.StoreResult{
		Path: key,
		URL:  s.GetURL(key),
		Size: int64(len(req.PDFData)),
	}, nil
}

// Get streams an archived PDF
func (s *S3Archive) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == "" {
		return nil, printing.NewRenderError(printing.ErrCodeStorageFailed, "storage key is required", nil)
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, printing.NewRenderError(printing.ErrCodeStorageFailed, "PDF not found", err)
		}
		return nil, printing.NewRenderError(printing.ErrCodeStorageFailed, "failed to download PDF", err)
	}
	return out.Body, nil
}

// Delete removes an archived PDF
func (s *S3Archive) Delete(ctx context.Context, key string) error {
	if key == "" {
		return printing.NewRenderError(printing.ErrCodeStorageFailed, "storage key is required", nil)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return printing.NewRenderError(printing.ErrCodeStorageFailed, "failed to delete PDF", err)
	}
	return nil
}

// CleanupOlderThan deletes archived PDFs under the key prefix whose last
// modification is older than age.
func (s *S3Archive) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := s.now().Add(-age)
	deleted := 0

	input := &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)}
	if s.keyPrefix != "" {
		input.Prefix = aws.String(s.keyPrefix + "/")
	}
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return deleted, printing.NewRenderError(printing.ErrCodeStorageFailed, "failed to list archived PDFs", err)
		}
		for _, obj := range page.Contents {
			if obj.LastModified == nil || !obj.LastModified.Before(cutoff) {
				continue
			}
			if err := s.Delete(ctx, aws.ToString(obj.Key)); err != nil {
				s.logger.Warn("failed to delete archived PDF",
					zap.String("key", aws.ToString(obj.Key)),
					zap.Error(err))
				continue
			}
			deleted++
		}
	}

	s.logger.Info("cleanup completed",
		zap.Int("deleted", deleted),
		zap.Duration("age", age))
	return deleted, nil
}

// GetURL returns a presigned download URL for key. If signing fails the
// s3:// location is returned instead.
func (s *S3Archive) GetURL(key string) string {
	req, err := s.presignClient.PresignGetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignExpiration))
	if err != nil {
		s.logger.Warn("failed to presign download URL", zap.String("key", key), zap.Error(err))
		return "s3://" + s.bucket + "/" + key
	}
	return req.URL
}

// GetBucket returns the bucket name
func (s *S3Archive) GetBucket() string {
	return s.bucket
}

func (s *S3Archive) objectKey(name string) string {
	if s.keyPrefix == "" {
		return name
	}
	return path.Join(s.keyPrefix, name)
}
