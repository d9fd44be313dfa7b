package storage

import (
	"bytes"
	"context"
	"fmt"
	"skillchain/internal/config"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

type ossBucket struct {
	bucket *oss.Bucket
}

func (b *ossBucket) put(ctx context.Context, key string, data []byte, contentType string) error {
	err := b.bucket.PutObject(key, bytes.NewReader(data), oss.WithContext(ctx), oss.ContentType(contentType))
	if err != nil {
		return fmt.Errorf("storage: oss put %s: %w", key, err)
	}
	return nil
}

// OSS DeleteObject succeeds for missing keys.
func (b *ossBucket) remove(ctx context.Context, key string) error {
	if err := b.bucket.DeleteObject(key, oss.WithContext(ctx)); err != nil {
		return fmt.Errorf("storage: oss delete %s: %w", key, err)
	}
	return nil
}

// NewOSSStorage stores files in an Aliyun OSS bucket.
func NewOSSStorage(cfg config.Config) (Storage, error) {
	if err := requireSettings("oss",
		[2]string{"STORAGE_OSS_ENDPOINT", cfg.StorageOSSEndpoint},
		[2]string{"STORAGE_OSS_BUCKET", cfg.StorageOSSBucket},
		[2]string{"STORAGE_OSS_ACCESS_KEY_ID", cfg.StorageOSSAccessKeyID},
		[2]string{"STORAGE_OSS_ACCESS_KEY_SECRET", cfg.StorageOSSAccessKeySecret},
	); err != nil {
		return nil, err
	}

	client, err := oss.New(
		strings.TrimSpace(cfg.StorageOSSEndpoint),
		strings.TrimSpace(cfg.StorageOSSAccessKeyID),
		strings.TrimSpace(cfg.StorageOSSAccessKeySecret),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: oss client: %w", err)
	}
	bucket, err := client.Bucket(strings.TrimSpace(cfg.StorageOSSBucket))
	if err != nil {
		return nil, fmt.Errorf("storage: oss bucket: %w", err)
	}
	return newBucketStorage(&ossBucket{bucket: bucket}, cfg.StorageOSSPrefix), nil
}
