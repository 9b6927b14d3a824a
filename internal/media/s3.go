// internal/media/s3.go
package media

import (
	"bytes"
	"context"
	"fmt"
	"time"

	appconfig "lilypad/internal/config"
	"lilypad/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Uploader pushes image bytes to S3 and returns a public URL. Both the
// image-message path and post photo uploads write documents that reference
// the returned URL, never the bytes themselves.
type Uploader struct {
	client    *s3.Client
	bucket    string
	urlPrefix string
}

func NewUploader(ctx context.Context, cfg *appconfig.MediaConfig) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, utils.NewAppError(utils.ErrInvalidInput, "S3 bucket not configured", nil)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, utils.NewAppError(utils.ErrStorage, "Failed to load AWS configuration", err)
	}

	urlPrefix := cfg.URLPrefix
	if urlPrefix == "" {
		urlPrefix = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &Uploader{
		client:    s3.NewFromConfig(awsCfg),
		bucket:    cfg.Bucket,
		urlPrefix: urlPrefix,
	}, nil
}

// Upload stores the bytes under a unique key and returns the object's public
// URL.
func (u *Uploader) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("images/%s/%s%s",
		time.Now().Format("2006/01/02"),
		uuid.New().String(),
		extensionFor(contentType),
	)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", utils.NewAppError(utils.ErrStorage, "Failed to upload image", err)
	}

	return u.urlPrefix + "/" + key, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
