package storage

import (
	"context"
	"fmt"
	"skillchain/internal/config"
	"strings"
)

// Backend names accepted by STORAGE_TYPE.
const (
	TypeLocal = "local"
	TypeS3    = "s3"
	TypeOSS   = "oss"
	TypeCOS   = "cos"
	TypeR2    = "r2"
)

// Object names a file to be stored.
//
// Category is the top-level folder (compliance, products, qrcodes, ...). With a Name the key
// is <category>/<name>.<ext>; without one a unique name is generated under a date folder.
// ContentType falls back to the type registered for Ext.
type Object struct {
	Category    string
	Name        string
	Ext         string
	ContentType string
}

// Storage persists uploaded evidence, passport codes and content images.
type Storage interface {
	// Save writes data and returns the object key, relative to the public base URL.
	Save(ctx context.Context, obj Object, data []byte) (string, error)
	// Delete removes an object by key. Missing objects are not an error.
	Delete(ctx context.Context, key string) error
}

// LocalBaseDirProvider is implemented by backends whose files can be served from disk.
type LocalBaseDirProvider interface {
	LocalBaseDir() string
}

// NewStorage builds the backend selected by cfg.StorageType.
func NewStorage(cfg config.Config) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.StorageType)) {
	case "", TypeLocal:
		return NewLocalStorage(cfg.StorageLocalDir)
	case TypeS3:
		return NewS3Storage(cfg)
	case TypeR2:
		return NewR2Storage(cfg)
	case TypeOSS:
		return NewOSSStorage(cfg)
	case TypeCOS:
		return NewCOSStorage(cfg)
	default:
		return nil, fmt.Errorf("storage: unsupported type %q", cfg.StorageType)
	}
}

// PublicURL joins the public base URL and an object key.
func PublicURL(baseURL, key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return "/" + key
	}
	return base + "/" + key
}

// requireSettings reports the first empty setting by name.
func requireSettings(backend string, settings ...[2]string) error {
	for _, s := range settings {
		if strings.TrimSpace(s[1]) == "" {
			return fmt.Errorf("storage: %s backend needs %s", backend, s[0])
		}
	}
	return nil
}
