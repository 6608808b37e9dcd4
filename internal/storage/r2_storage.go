// Package storage hands out presigned URLs for media held in R2 so providers
// can fetch content directly. Upload and transcoding happen elsewhere.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/postpilot/autopost/configs"
)

const presignTTL = 1 * time.Hour

type MediaStorage interface {
	PresignedURL(ctx context.Context, key string) (string, error)
}

type R2Storage struct {
	config cfg.Config
}

func NewR2Storage(cfg cfg.Config) *R2Storage {
	return &R2Storage{config: cfg}
}

func (r *R2Storage) client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r.config.R2.AccessKey, r.config.R2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.config.R2.AccountID))
	}), nil
}

// PresignedURL returns a time-limited GET URL for the stored object. The TTL
// comfortably covers the provider's download plus the whole publish protocol.
func (r *R2Storage) PresignedURL(ctx context.Context, key string) (string, error) {
	client, err := r.client(ctx)
	if err != nil {
		return "", err
	}

	presigner := s3.NewPresignClient(client)
	out, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.config.R2.BucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return out.URL, nil
}
