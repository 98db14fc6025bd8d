// Package storage issues presigned upload URLs for product images on any
// S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/deppfellow/storefront/internal/config"
)

var (
	ErrNotConfigured          = errors.New("image storage is not configured")
	ErrUnsupportedContentType = errors.New("unsupported image content type")
)

// imageExtensions maps the accepted upload content types to file extensions.
var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// UploadURL is a presigned PUT the browser uploads an image to.
type UploadURL struct {
	Method      string    `json:"method"`
	URL         string    `json:"upload_url"`
	Key         string    `json:"key"`
	PublicURL   string    `json:"public_url"`
	ContentType string    `json:"content_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type ImageStore struct {
	presignClient *s3.PresignClient
	bucket        string
	publicBaseURL string
	expiration    time.Duration
}

// NewImageStore builds the store. A config without bucket returns
// (nil, ErrNotConfigured) and callers treat uploads as unavailable.
func NewImageStore(ctx context.Context, cfg config.StorageConfig) (*ImageStore, error) {
	if cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	publicBase := cfg.PublicBaseURL
	if publicBase == "" {
		publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region)
	}

	expiration := cfg.PresignExpiration
	if expiration <= 0 {
		expiration = 15 * time.Minute
	}

	return &ImageStore{
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(publicBase, "/"),
		expiration:    expiration,
	}, nil
}

// ProductImageKey returns products/<id>/<uuid>.<ext> for contentType.
func ProductImageKey(productID uuid.UUID, contentType string) (string, error) {
	ext, ok := imageExtensions[strings.ToLower(contentType)]
	if !ok {
		return "", ErrUnsupportedContentType
	}
	return fmt.Sprintf("products/%s/%s.%s", productID, uuid.New(), ext), nil
}

// PresignProductImage presigns a PUT for a new image of productID.
func (s *ImageStore) PresignProductImage(ctx context.Context, productID uuid.UUID, contentType string) (*UploadURL, error) {
	key, err := ProductImageKey(productID, contentType)
	if err != nil {
		return nil, err
	}

	req, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.expiration))
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}

	return &UploadURL{
		Method:      req.Method,
		URL:         req.URL,
		Key:         key,
		PublicURL:   s.publicBaseURL + "/" + key,
		ContentType: contentType,
		ExpiresAt:   time.Now().Add(s.expiration),
	}, nil
}
