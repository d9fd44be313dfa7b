package api

import (
	"skillchain/internal/auth"
	"skillchain/internal/config"
	"skillchain/internal/model"
	"skillchain/internal/qrcode"
	"skillchain/internal/service"
	"skillchain/internal/storage"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPHandler serves the REST API.
type HTTPHandler struct {
	cfg               config.Config
	repo              model.Repository
	storagePublicBase string
	authManager       *auth.Manager

	files      *service.FileIntake
	auth       *service.AuthService
	demo       *service.DemoService
	factories  *service.FactoryService
	compliance *service.ComplianceService
	passports  *service.PassportService
	batches    *service.BatchService
	content    *service.ContentService
}

// NewHTTPHandler wires the services on top of repo and store.
func NewHTTPHandler(cfg config.Config, repo model.Repository, store storage.Storage) (*HTTPHandler, error) {
	expiry := time.Duration(cfg.JWTExpirationMinutes) * time.Minute
	authManager, err := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, expiry)
	if err != nil {
		return nil, err
	}

	publicBase := normalisePublicBase(cfg.StoragePublicBaseURL)
	files := service.NewFileIntake(store, publicBase, cfg.UploadMaxBytes)
	codes := qrcode.NewGenerator(cfg.QRSize)

	return &HTTPHandler{
		cfg:               cfg,
		repo:              repo,
		storagePublicBase: publicBase,
		authManager:       authManager,
		files:             files,
		auth:              service.NewAuthService(repo, authManager),
		demo:              service.NewDemoService(repo, cfg.DemoAutoApprove),
		factories:         service.NewFactoryService(repo),
		compliance:        service.NewComplianceService(repo, files),
		passports:         service.NewPassportService(repo, files, codes, cfg.PublicAppURL),
		batches:           service.NewBatchService(repo, codes, cfg.PublicAPIURL),
		content:           service.NewContentService(repo, files),
	}, nil
}

// normalisePublicBase trims the static mount prefix and makes relative prefixes absolute.
func normalisePublicBase(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = "/files"
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return strings.TrimRight(trimmed, "/")
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return strings.TrimRight(trimmed, "/")
}

// StaticMountPath returns the local path prefix for serving stored files, or "" when
// files are served from an absolute URL.
func (h *HTTPHandler) StaticMountPath() string {
	if strings.HasPrefix(h.storagePublicBase, "http://") || strings.HasPrefix(h.storagePublicBase, "https://") {
		return ""
	}
	return h.storagePublicBase
}

// parseIDParam reads a positive integer path parameter and answers 400 when it is not one.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	value := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, ErrCodeInvalidID, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// queryUint reads an optional non-negative integer query parameter; absent means zero.
func queryUint(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, true
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		BadRequest(c, ErrCodeInvalidID, "invalid "+name)
		return 0, false
	}
	return uint(parsed), true
}
