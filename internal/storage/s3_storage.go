package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"skillchain/internal/config"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// s3Endpoint describes an S3-compatible service (AWS itself or Cloudflare R2).
type s3Endpoint struct {
	region       string
	url          string
	accessKey    string
	secretKey    string
	sessionToken string
	pathStyle    bool
}

type s3Bucket struct {
	client *s3.Client
	name   string
}

func (b *s3Bucket) put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.name),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("storage: s3 put %s: %w", key, err)
	}
	return nil
}

func (b *s3Bucket) remove(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	})
	if err != nil && !isS3NotFound(err) {
		return fmt.Errorf("storage: s3 delete %s: %w", key, err)
	}
	return nil
}

func isS3NotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch strings.ToLower(apiErr.ErrorCode()) {
		case "notfound", "nosuchkey", "404":
			return true
		}
	}
	return false
}

// NewS3Storage stores files in an Amazon S3 (or compatible) bucket.
func NewS3Storage(cfg config.Config) (Storage, error) {
	if err := requireSettings("s3",
		[2]string{"STORAGE_S3_BUCKET", cfg.StorageS3Bucket},
		[2]string{"STORAGE_S3_REGION", cfg.StorageS3Region},
		[2]string{"STORAGE_S3_ACCESS_KEY_ID", cfg.StorageS3AccessKeyID},
		[2]string{"STORAGE_S3_SECRET_ACCESS_KEY", cfg.StorageS3SecretAccessKey},
	); err != nil {
		return nil, err
	}
	client := newS3Client(s3Endpoint{
		region:       strings.TrimSpace(cfg.StorageS3Region),
		url:          strings.TrimSpace(cfg.StorageS3Endpoint),
		accessKey:    strings.TrimSpace(cfg.StorageS3AccessKeyID),
		secretKey:    strings.TrimSpace(cfg.StorageS3SecretAccessKey),
		sessionToken: strings.TrimSpace(cfg.StorageS3SessionToken),
		pathStyle:    cfg.StorageS3ForcePathStyle,
	})
	bucket := &s3Bucket{client: client, name: strings.TrimSpace(cfg.StorageS3Bucket)}
	return newBucketStorage(bucket, cfg.StorageS3Prefix), nil
}

func newS3Client(ep s3Endpoint) *s3.Client {
	awsCfg := aws.Config{
		Region: ep.region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(ep.accessKey, ep.secretKey, ep.sessionToken),
		),
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = ep.pathStyle
		if ep.url == "" {
			return
		}
		endpoint := ep.url
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		o.BaseEndpoint = aws.String(endpoint)
	})
}
