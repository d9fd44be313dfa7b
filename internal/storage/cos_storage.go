package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"skillchain/internal/config"
	"strings"

	"github.com/tencentyun/cos-go-sdk-v5"
)

type cosBucket struct {
	client *cos.Client
}

func (b *cosBucket) put(ctx context.Context, key string, data []byte, contentType string) error {
	resp, err := b.client.Object.Put(ctx, key, bytes.NewReader(data), &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{ContentType: contentType},
	})
	closeBody(resp)
	if err != nil {
		return fmt.Errorf("storage: cos put %s: %w", key, err)
	}
	return nil
}

func (b *cosBucket) remove(ctx context.Context, key string) error {
	resp, err := b.client.Object.Delete(ctx, key)
	closeBody(resp)
	if err != nil && !cos.IsNotFoundError(err) {
		return fmt.Errorf("storage: cos delete %s: %w", key, err)
	}
	return nil
}

func closeBody(resp *cos.Response) {
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
}

// NewCOSStorage stores files in a Tencent COS bucket.
func NewCOSStorage(cfg config.Config) (Storage, error) {
	if err := requireSettings("cos",
		[2]string{"STORAGE_COS_BUCKET_URL", cfg.StorageCOSBucketURL},
		[2]string{"STORAGE_COS_SECRET_ID", cfg.StorageCOSSecretID},
		[2]string{"STORAGE_COS_SECRET_KEY", cfg.StorageCOSSecretKey},
	); err != nil {
		return nil, err
	}
	bucketURL, err := url.Parse(strings.TrimSpace(cfg.StorageCOSBucketURL))
	if err != nil {
		return nil, fmt.Errorf("storage: cos bucket url: %w", err)
	}
	client := cos.NewClient(&cos.BaseURL{BucketURL: bucketURL}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  strings.TrimSpace(cfg.StorageCOSSecretID),
			SecretKey: strings.TrimSpace(cfg.StorageCOSSecretKey),
		},
	})
	return newBucketStorage(&cosBucket{client: client}, cfg.StorageCOSPrefix), nil
}
