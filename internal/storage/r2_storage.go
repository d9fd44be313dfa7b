package storage

import (
	"fmt"
	"skillchain/internal/config"
	"strings"
)

// NewR2Storage stores files in a Cloudflare R2 bucket through its S3 API.
func NewR2Storage(cfg config.Config) (Storage, error) {
	if err := requireSettings("r2",
		[2]string{"STORAGE_R2_BUCKET", cfg.StorageR2Bucket},
		[2]string{"STORAGE_R2_ACCESS_KEY_ID", cfg.StorageR2AccessKeyID},
		[2]string{"STORAGE_R2_SECRET_ACCESS_KEY", cfg.StorageR2SecretAccessKey},
	); err != nil {
		return nil, err
	}

	endpoint := strings.TrimSpace(cfg.StorageR2Endpoint)
	if endpoint == "" {
		accountID := strings.TrimSpace(cfg.StorageR2AccountID)
		if accountID == "" {
			return nil, fmt.Errorf("storage: r2 backend needs STORAGE_R2_ENDPOINT or STORAGE_R2_ACCOUNT_ID")
		}
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
	}
	region := strings.TrimSpace(cfg.StorageR2Region)
	if region == "" {
		region = "auto"
	}

	client := newS3Client(s3Endpoint{
		region:    region,
		url:       endpoint,
		accessKey: strings.TrimSpace(cfg.StorageR2AccessKeyID),
		secretKey: strings.TrimSpace(cfg.StorageR2SecretAccessKey),
		pathStyle: true,
	})
	bucket := &s3Bucket{client: client, name: strings.TrimSpace(cfg.StorageR2Bucket)}
	return newBucketStorage(bucket, cfg.StorageR2Prefix), nil
}
