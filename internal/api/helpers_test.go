package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"skillchain/internal/auth"
	"skillchain/internal/config"
	"skillchain/internal/entity"
	sqlrepo "skillchain/internal/model/sql"
	"skillchain/internal/rbac"
	"skillchain/internal/storage"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPublicAPIURL = "https://api.example.com/api"

type apiEnv struct {
	handler  *HTTPHandler
	router   *gin.Engine
	storeDir string
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	binding.EnableDecoderDisallowUnknownFields = true

	dir := t.TempDir()
	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "api.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, sqlrepo.Migrate(db))

	storeDir := filepath.Join(dir, "uploads")
	store, err := storage.NewLocalStorage(storeDir)
	require.NoError(t, err)

	cfg := config.Config{
		JWTSecret:            "test-secret",
		JWTIssuer:            "skillchain-test",
		JWTExpirationMinutes: 60,
		StoragePublicBaseURL: "/files",
		PublicAppURL:         "https://app.example.com",
		PublicAPIURL:         testPublicAPIURL,
		QRSize:               128,
		UploadMaxBytes:       1 << 20,
		DemoAutoApprove:      true,
	}
	handler, err := NewHTTPHandler(cfg, sqlrepo.NewGormRepository(db), store)
	require.NoError(t, err)

	router := gin.New()
	handler.RegisterRoutes(router)
	return &apiEnv{handler: handler, router: router, storeDir: storeDir}
}

func (e *apiEnv) factory(t *testing.T, name string) *entity.DbFactory {
	t.Helper()
	factory := &entity.DbFactory{Name: name, Location: "Dhaka"}
	require.NoError(t, e.handler.repo.CreateFactory(context.Background(), factory))
	return factory
}

// login stores an active account and returns a bearer token for it.
func (e *apiEnv) login(t *testing.T, email, role string, factoryID *uint) (string, *entity.DbUser) {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	user := &entity.DbUser{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		FactoryID:    factoryID,
		IsActive:     true,
	}
	require.NoError(t, e.handler.repo.CreateUser(context.Background(), user))
	token, _, err := e.handler.authManager.GenerateToken(user)
	require.NoError(t, err)
	return token, user
}

func (e *apiEnv) admin(t *testing.T) string {
	token, _ := e.login(t, "admin@skillchain.test", rbac.RolePlatformAdmin, nil)
	return token
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *apiEnv) upload(t *testing.T, path, token, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
