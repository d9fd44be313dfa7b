package storage

import (
	"context"
	"time"
)

// bucketClient is the part of an object-store SDK the remote backends need.
type bucketClient interface {
	put(ctx context.Context, key string, data []byte, contentType string) error
	remove(ctx context.Context, key string) error
}

// bucketStorage maps Objects to keys under an optional prefix inside a remote bucket.
type bucketStorage struct {
	client bucketClient
	prefix string
	now    func() time.Time
}

func newBucketStorage(client bucketClient, prefix string) *bucketStorage {
	return &bucketStorage{client: client, prefix: prefix, now: time.Now}
}

func (b *bucketStorage) Save(ctx context.Context, obj Object, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errEmptyObject
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := withPrefix(b.prefix, objectKey(obj, b.now()))
	if err := b.client.put(ctx, key, data, contentType(obj)); err != nil {
		return "", err
	}
	return key, nil
}

func (b *bucketStorage) Delete(ctx context.Context, key string) error {
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}
	return b.client.remove(ctx, cleaned)
}

var _ Storage = (*bucketStorage)(nil)
