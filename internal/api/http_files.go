package api

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"skillchain/internal/rbac"
	"skillchain/internal/service"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// uploadCategories maps the /upload/:category path segment to a storage category and the
// capability needed to write there. The zero capability means any authenticated user.
var uploadCategories = map[string]struct {
	category   string
	capability rbac.Capability
}{
	"compliance":   {service.CategoryCompliance, ""},
	"learning":     {service.CategoryLearning, rbac.CapUploadRestricted},
	"certificate":  {service.CategoryCertificates, rbac.CapUploadRestricted},
	"certificates": {service.CategoryCertificates, rbac.CapUploadRestricted},
}

// uploadedFile is the multipart "file" field of the current request.
type uploadedFile struct {
	header *multipart.FileHeader
	reader multipart.File
}

func (f *uploadedFile) Close() {
	if f == nil || f.reader == nil {
		return
	}
	if err := f.reader.Close(); err != nil {
		logrus.WithError(err).Warn("failed to close upload")
	}
}

func (f *uploadedFile) Reader() io.Reader { return f.reader }

func (f *uploadedFile) Filename() string { return f.header.Filename }

func (f *uploadedFile) ContentType() string { return f.header.Header.Get("Content-Type") }

// readUpload opens the multipart "file" field and answers 400 when it is absent.
func readUpload(c *gin.Context) (*uploadedFile, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, ErrCodeMissingFile, "file is required")
		return nil, false
	}
	reader, err := header.Open()
	if err != nil {
		logrus.WithError(err).Warn("failed to open upload")
		BadRequest(c, ErrCodeMissingFile, "failed to read file")
		return nil, false
	}
	return &uploadedFile{header: header, reader: reader}, true
}

// Upload stores a standalone file in one of the shared upload categories.
func (h *HTTPHandler) Upload(c *gin.Context) {
	target, ok := uploadCategories[strings.ToLower(strings.TrimSpace(c.Param("category")))]
	if !ok {
		NotFound(c, ErrCodeNotFound, "unknown upload category")
		return
	}
	user := CurrentUser(c)
	if target.capability != "" && !rbac.Has(user.Role, target.capability) {
		Forbidden(c, "insufficient permissions")
		return
	}

	file, ok := readUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	stored, err := h.files.Save(ctx, file.Reader(), file.Filename(), file.ContentType(), target.category)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"category": target.category,
		"url":      stored.URL,
	}).Info("file uploaded")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "File uploaded successfully",
		"file":    stored,
	})
}
