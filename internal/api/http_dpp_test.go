package api

import (
	"bytes"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"skillchain/internal/entity"
	"skillchain/internal/qrcode"
	"skillchain/internal/rbac"
	"skillchain/internal/service"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplianceEndpoints(t *testing.T) {
	env := newAPIEnv(t)
	alpha := env.factory(t, "Alpha Garments")
	beta := env.factory(t, "Beta Textiles")
	workerToken, _ := env.login(t, "worker@alpha.com", rbac.RoleWorker, &alpha.ID)
	managerToken, manager := env.login(t, "manager@alpha.com", rbac.RoleManager, &alpha.ID)
	outsiderToken, _ := env.login(t, "manager@beta.com", rbac.RoleManager, &beta.ID)
	buyerToken, _ := env.login(t, "buyer@brand.com", rbac.RoleBuyer, nil)

	payload := map[string]string{"event_type": "fire_safety_check", "status": "PASS", "area": "Cutting floor"}

	w := env.do(t, http.MethodPost, "/api/compliance/events", buyerToken, payload)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/compliance/events", workerToken, payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	event := decode[entity.DbComplianceEvent](t, w)
	assert.Equal(t, alpha.ID, event.FactoryID)

	w = env.do(t, http.MethodPut, "/api/compliance/events/"+itoa(event.ID)+"/approve", workerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPut, "/api/compliance/events/"+itoa(event.ID)+"/approve", outsiderToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/compliance/events/"+itoa(event.ID), outsiderToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPut, "/api/compliance/events/"+itoa(event.ID)+"/approve", managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	approval := decode[map[string]interface{}](t, w)
	assert.EqualValues(t, manager.ID, approval["approved_by"])

	w = env.upload(t, "/api/compliance/events/"+itoa(event.ID)+"/upload-document", workerToken, "Audit.pdf", []byte("%PDF-1.4"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	doc := decode[entity.DocumentUploadResponse](t, w)
	assert.True(t, strings.HasPrefix(doc.FileURL, "/files/compliance/"))

	w = env.do(t, http.MethodGet, "/api/compliance/stats?factory_id="+itoa(beta.ID), managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[entity.ComplianceStats](t, w)
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, int64(100), stats.Score)

	w = env.do(t, http.MethodGet, "/api/compliance/stats", buyerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/compliance/events?status=pass", outsiderToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]entity.DbComplianceEvent](t, w))
}

func TestProductPassportEndpoints(t *testing.T) {
	env := newAPIEnv(t)
	alpha := env.factory(t, "Alpha Garments")
	managerToken, _ := env.login(t, "manager@alpha.com", rbac.RoleManager, &alpha.ID)
	workerToken, _ := env.login(t, "worker@alpha.com", rbac.RoleWorker, &alpha.ID)

	product := map[string]interface{}{
		"sku":            "TEE-001",
		"name":           "Organic Tee",
		"category":       "T-Shirts",
		"origin_country": "Bangladesh",
		"materials": []map[string]interface{}{
			{"material": "Cotton", "percentage": 60},
			{"material": "Polyester", "percentage": 40},
		},
	}

	w := env.do(t, http.MethodPost, "/api/dpp/products", workerToken, product)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/dpp/products", managerToken, product)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[entity.DbProduct](t, w)
	require.NotEmpty(t, created.PassportID)
	assert.Equal(t, "/files/qrcodes/dpp_"+created.PassportID+".png", created.QRCodeURL)
	_, err := os.Stat(filepath.Join(env.storeDir, "qrcodes", "dpp_"+created.PassportID+".png"))
	require.NoError(t, err)

	w = env.do(t, http.MethodPost, "/api/dpp/products", managerToken, product)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, service.CodeDuplicateSKU, decode[APIError](t, w).Code)

	w = env.do(t, http.MethodGet, "/api/public/dpp/"+created.PassportID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[entity.PublicPassport](t, w)
	assert.Equal(t, "Organic Tee", view.ProductName)
	assert.Equal(t, "Alpha Garments", view.Manufacturer.Name)

	w = env.do(t, http.MethodGet, "/api/public/dpp/unknown-id", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/public/dpp/verify/unknown-id", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[entity.PassportVerification](t, w).Valid)

	w = env.do(t, http.MethodGet, "/api/public/dpp/verify/"+created.PassportID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[entity.PassportVerification](t, w).Valid)

	w = env.do(t, http.MethodGet, "/api/public/dpp/"+created.PassportID+"/pdf", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = env.do(t, http.MethodPatch, "/api/dpp/products/"+itoa(created.ID), managerToken, map[string]interface{}{"name": "Organic Tee v2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Organic Tee v2", decode[entity.DbProduct](t, w).Name)

	w = env.upload(t, "/api/dpp/products/"+itoa(created.ID)+"/images", managerToken, "front.pdf", []byte("x"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.CodeUnsupportedType, decode[APIError](t, w).Code)

	w = env.do(t, http.MethodPost, "/api/dpp/products/"+itoa(created.ID)+"/batches", managerToken, map[string]interface{}{"batch_code": "B-2024-01", "quantity": 500})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	batch := decode[entity.DbBatch](t, w)

	w = env.do(t, http.MethodGet, "/api/dpp/products/"+itoa(created.ID)+"/batches", workerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]entity.DbBatch](t, w), 1)

	w = env.do(t, http.MethodGet, "/api/batches/"+itoa(batch.ID)+"/qr", workerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	link, err := url.Parse(qrcode.BatchURL(testPublicAPIURL, batch.ID))
	require.NoError(t, err)
	w = env.do(t, http.MethodGet, link.Path, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	scanned := decode[entity.PublicPassport](t, w)
	assert.Equal(t, created.PassportID, scanned.PassportID)
	require.NotNil(t, scanned.Batch)
	assert.Equal(t, "B-2024-01", scanned.Batch.BatchCode)
	assert.Equal(t, 500, scanned.Batch.Quantity)

	w = env.do(t, http.MethodGet, "/api/public/dpp/batch/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/dpp/products", managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[entity.ProductListResponse](t, w)
	require.Len(t, list.Products, 1)
	assert.Equal(t, int64(1), list.Meta.Total)
}

func TestUploadCategories(t *testing.T) {
	env := newAPIEnv(t)
	alpha := env.factory(t, "Alpha Garments")
	workerToken, _ := env.login(t, "worker@alpha.com", rbac.RoleWorker, &alpha.ID)
	ownerToken, _ := env.login(t, "owner@alpha.com", rbac.RoleFactoryAdmin, &alpha.ID)

	w := env.upload(t, "/api/upload/compliance", workerToken, "photo.jpg", []byte("jpeg"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.upload(t, "/api/upload/certificate", workerToken, "iso.pdf", []byte("%PDF"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.upload(t, "/api/upload/certificate", ownerToken, "setup.exe", []byte("MZ"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.CodeUnsupportedType, decode[APIError](t, w).Code)

	w = env.upload(t, "/api/upload/certificates", ownerToken, "iso.pdf", []byte("%PDF"))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]interface{}](t, w)
	file := body["file"].(map[string]interface{})
	assert.True(t, strings.HasPrefix(file["url"].(string), "/files/certificates/"))

	w = env.upload(t, "/api/upload/secrets", ownerToken, "iso.pdf", []byte("%PDF"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/upload/compliance", workerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrCodeMissingFile, decode[APIError](t, w).Code)
}

func TestContentEndpoints(t *testing.T) {
	env := newAPIEnv(t)
	alpha := env.factory(t, "Alpha Garments")
	managerToken, _ := env.login(t, "manager@alpha.com", rbac.RoleManager, &alpha.ID)
	workerToken, _ := env.login(t, "worker@alpha.com", rbac.RoleWorker, &alpha.ID)

	w := env.do(t, http.MethodPost, "/api/content/articles", workerToken, map[string]string{"title": "Hi", "content": "body"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/content/articles", managerToken, map[string]string{"title": "Fire Exits", "content": "keep them clear", "status": "published"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	article := decode[entity.DbArticle](t, w)

	w = env.do(t, http.MethodPost, "/api/content/articles", managerToken, map[string]string{"title": "Draft Notes", "content": "wip"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, "/api/content/articles", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[entity.ArticleListResponse](t, w).Articles, 1)

	w = env.do(t, http.MethodGet, "/api/content/articles?status=draft", managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	drafts := decode[entity.ArticleListResponse](t, w).Articles
	require.Len(t, drafts, 1)
	assert.Equal(t, "draft-notes", drafts[0].Slug)

	w = env.do(t, http.MethodGet, "/api/content/articles/"+article.Slug, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[entity.DbArticle](t, w).Views)

	w = env.do(t, http.MethodPost, "/api/content/courses", managerToken, map[string]string{"title": "Fire Safety 101", "status": "published"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	course := decode[entity.DbCourse](t, w)

	w = env.do(t, http.MethodPost, "/api/content/courses/"+itoa(course.ID)+"/modules", managerToken, map[string]interface{}{
		"title":   "Basics",
		"lessons": []map[string]interface{}{{"title": "Exits", "duration": 10}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	module := decode[entity.DbCourseModule](t, w)
	require.Len(t, module.Lessons, 1)

	w = env.do(t, http.MethodPost, "/api/content/courses/"+itoa(course.ID)+"/enroll", workerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = env.do(t, http.MethodPost, "/api/content/courses/"+itoa(course.ID)+"/enroll", workerToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/api/content/courses/"+itoa(course.ID)+"/lessons/"+itoa(module.Lessons[0].ID)+"/complete", workerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 100, decode[entity.DbEnrollment](t, w).Progress)

	w = env.do(t, http.MethodGet, "/api/content/enrollments", workerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]entity.DbEnrollment](t, w), 1)

	w = env.do(t, http.MethodGet, "/api/content/categories", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
