package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Uploader hands out presigned one-time upload URLs. Clients PUT the file
// bytes directly to the returned URL; the API never proxies file content.
type Uploader interface {
	GenerateUploadURL(ctx context.Context, contentType string) (*UploadTarget, error)
}

type UploadTarget struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

type s3Uploader struct {
	presign *s3.PresignClient
	bucket  string
	expiry  time.Duration
}

func NewS3Uploader(ctx context.Context, bucket string, expiry time.Duration) (Uploader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &s3Uploader{
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
		expiry:  expiry,
	}, nil
}

func (u *s3Uploader) GenerateUploadURL(ctx context.Context, contentType string) (*UploadTarget, error) {
	key := uuid.New().String()

	req, err := u.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(u.expiry))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &UploadTarget{
		URL:       req.URL,
		Key:       key,
		ExpiresAt: time.Now().Add(u.expiry),
	}, nil
}
