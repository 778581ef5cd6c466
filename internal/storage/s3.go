package storage

import (
	"alcyxob/fitness-coach/internal/config"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// presigner is the part of *s3.PresignClient used for exercise media.
type presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// objectDeleter is the part of *s3.Client used for exercise media.
type objectDeleter interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// mediaBucket keeps exercise media in one S3 (or S3-compatible) bucket.
type mediaBucket struct {
	presign presigner
	objects objectDeleter
	bucket  string
}

// NewS3Storage connects the media store to the configured bucket. A custom
// endpoint (MinIO, Spaces) switches to path-style addressing.
func NewS3Storage(ctx context.Context, cfg config.S3Config) (FileStorage, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("s3: bucket name is required")
	}
	awsConf, err := awsCfg.LoadDefaultConfig(ctx,
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}

	client := s3.NewFromConfig(awsConf, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	slog.Info("media bucket ready", "endpoint", cfg.Endpoint, "bucket", cfg.BucketName)
	return newMediaBucket(s3.NewPresignClient(client), client, cfg.BucketName), nil
}

func newMediaBucket(p presigner, d objectDeleter, bucket string) *mediaBucket {
	return &mediaBucket{presign: p, objects: d, bucket: bucket}
}

func withExpiry(expires time.Duration) func(*s3.PresignOptions) {
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}
	return s3.WithPresignExpires(expires)
}

// GeneratePresignedUploadURL signs a PUT for objectKey. The uploader must send
// the same Content-Type.
func (b *mediaBucket) GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error) {
	req, err := b.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
	}, withExpiry(expires))
	if err != nil {
		slog.ErrorContext(ctx, "presign media upload", "key", objectKey, "error", err)
		return "", fmt.Errorf("presign upload %s: %w", objectKey, err)
	}
	return req.URL, nil
}

// GeneratePresignedDownloadURL signs a GET for objectKey.
func (b *mediaBucket) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	req, err := b.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
	}, withExpiry(expires))
	if err != nil {
		slog.ErrorContext(ctx, "presign media download", "key", objectKey, "error", err)
		return "", fmt.Errorf("presign download %s: %w", objectKey, err)
	}
	return req.URL, nil
}

// DeleteObject removes objectKey. S3 treats a missing key as success.
func (b *mediaBucket) DeleteObject(ctx context.Context, objectKey string) error {
	if _, err := b.objects.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
	}); err != nil {
		slog.ErrorContext(ctx, "delete media object", "key", objectKey, "bucket", b.bucket, "error", err)
		return fmt.Errorf("delete %s: %w", objectKey, err)
	}
	slog.InfoContext(ctx, "media object deleted", "key", objectKey, "bucket", b.bucket)
	return nil
}
