package service

import (
	"context"
	"io"
	"path/filepath"
	"skillchain/internal/storage"
	"skillchain/internal/utils"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Upload categories.
const (
	CategoryCompliance   = "compliance"
	CategoryCertificates = "certificates"
	CategoryLearning     = "learning"
	CategoryProducts     = "products"
	CategoryArticles     = "articles"
	CategoryCourses      = "courses"
)

var (
	imageExtensions    = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	documentExtensions = []string{".pdf", ".doc", ".docx", ".xls", ".xlsx"}
	allExtensions      = append(append([]string{}, imageExtensions...), documentExtensions...)
)

var categoryExtensions = map[string][]string{
	CategoryCompliance:   allExtensions,
	CategoryCertificates: allExtensions,
	CategoryLearning:     allExtensions,
	CategoryProducts:     imageExtensions,
	CategoryArticles:     imageExtensions,
	CategoryCourses:      imageExtensions,
}

// DefaultUploadMaxBytes applies when no limit is configured.
const DefaultUploadMaxBytes int64 = 20 << 20

// StoredFile describes a file accepted by FileIntake.
type StoredFile struct {
	URL              string    `json:"url"`
	Key              string    `json:"-"`
	Size             int64     `json:"size"`
	StoredName       string    `json:"stored_name"`
	OriginalFilename string    `json:"original_filename"`
	ContentType      string    `json:"content_type"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// FileIntake validates uploads and persists them through a storage backend.
type FileIntake struct {
	storage       storage.Storage
	publicBaseURL string
	maxBytes      int64
	now           func() time.Time
}

// NewFileIntake creates a file intake. A non-positive maxBytes uses DefaultUploadMaxBytes.
func NewFileIntake(store storage.Storage, publicBaseURL string, maxBytes int64) *FileIntake {
	if maxBytes <= 0 {
		maxBytes = DefaultUploadMaxBytes
	}
	return &FileIntake{
		storage:       store,
		publicBaseURL: publicBaseURL,
		maxBytes:      maxBytes,
		now:           time.Now,
	}
}

// IsUploadCategory reports whether category accepts uploads.
func IsUploadCategory(category string) bool {
	_, ok := categoryExtensions[category]
	return ok
}

// Save validates and stores a single upload.
func (f *FileIntake) Save(ctx context.Context, reader io.Reader, originalName, contentType, category string) (*StoredFile, error) {
	if f == nil || f.storage == nil {
		return nil, upstream("file storage is not configured", nil)
	}
	allowed, ok := categoryExtensions[category]
	if !ok {
		return nil, validationError("unknown upload category: %s", category)
	}

	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(originalName)))
	if ext == "" || !containsString(allowed, ext) {
		return nil, ErrUnsupportedType.withMessage("file type not allowed, allowed: %s", strings.Join(allowed, ", "))
	}
	if reader == nil {
		return nil, validationError("file is empty")
	}

	data, err := io.ReadAll(io.LimitReader(reader, f.maxBytes+1))
	if err != nil {
		return nil, validationError("failed to read upload: %v", err)
	}
	if len(data) == 0 {
		return nil, validationError("file is empty")
	}
	if int64(len(data)) > f.maxBytes {
		return nil, ErrFileTooLarge.withMessage("file exceeds %d bytes", f.maxBytes)
	}

	uploadedAt := f.now().UTC()
	base := utils.TimestampedName(uploadedAt)
	key, err := f.storage.Save(ctx, storage.Object{
		Category:    category,
		Name:        base,
		Ext:         ext,
		ContentType: contentType,
	}, data)
	if err != nil {
		return nil, upstream("failed to store file", err)
	}

	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}
	return &StoredFile{
		URL:              storage.PublicURL(f.publicBaseURL, key),
		Key:              key,
		Size:             int64(len(data)),
		StoredName:       base + ext,
		OriginalFilename: originalName,
		ContentType:      contentType,
		UploadedAt:       uploadedAt,
	}, nil
}

// StoreGenerated persists server-rendered content under category/base.ext, bypassing the
// upload allow-lists. An existing object with the same name is replaced.
func (f *FileIntake) StoreGenerated(ctx context.Context, data []byte, category, base, ext string) (*StoredFile, error) {
	if f == nil || f.storage == nil {
		return nil, upstream("file storage is not configured", nil)
	}
	key, err := f.storage.Save(ctx, storage.Object{
		Category:    category,
		Name:        base,
		Ext:         ext,
		ContentType: "image/" + ext,
	}, data)
	if err != nil {
		return nil, upstream("failed to store generated file", err)
	}
	name := base + "." + ext
	return &StoredFile{
		URL:              storage.PublicURL(f.publicBaseURL, key),
		Key:              key,
		Size:             int64(len(data)),
		StoredName:       name,
		OriginalFilename: name,
		ContentType:      "image/" + ext,
		UploadedAt:       f.now().UTC(),
	}, nil
}

// Delete removes a stored file by key. Failures are logged and otherwise ignored.
func (f *FileIntake) Delete(ctx context.Context, key string) {
	if f == nil || f.storage == nil || strings.TrimSpace(key) == "" {
		return
	}
	if err := f.storage.Delete(ctx, key); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("failed to delete stored file")
	}
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
