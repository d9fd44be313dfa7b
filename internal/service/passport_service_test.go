package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"skillchain/internal/entity"
	"skillchain/internal/qrcode"
	"skillchain/internal/rbac"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

func newPassportService(env *testEnv) *PassportService {
	return NewPassportService(env.repo, env.files, qrcode.NewGenerator(64), "https://app.skillchain.test")
}

func productRequest(sku string) entity.ProductCreateRequest {
	carbon := 4.2
	return entity.ProductCreateRequest{
		SKU:      sku,
		Name:     "Organic Cotton Tee",
		Category: "T-Shirts",
		Materials: []entity.Material{
			{Material: "Organic cotton", Percentage: 95, Origin: "India"},
			{Material: "Elastane", Percentage: 5},
		},
		OriginCountry:     "Bangladesh",
		CarbonFootprintKg: &carbon,
		Certifications:    []string{"GOTS", " ", "OEKO-TEX"},
		ManufacturedDate:  "2024-02-10",
	}
}

func TestCreateProductRendersPassportCode(t *testing.T) {
	env := newTestEnv(t)
	svc := newPassportService(env)
	ctx := context.Background()
	factory := env.factory(t, "Alpha Garments")
	manager := env.user(t, "manager@alpha.com", rbac.RoleManager, &factory.ID)

	product, err := svc.CreateProduct(ctx, manager, productRequest("TEE-001"))
	require.NoError(t, err)

	parsed, err := uuid.Parse(product.PassportID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
	assert.Equal(t, factory.ID, product.FactoryID)
	assert.Equal(t, "/files/qrcodes/dpp_"+product.PassportID+".png", product.QRCodeURL)
	assert.Equal(t, []string{"GOTS", "OEKO-TEX"}, product.Certifications.ToSlice())

	png, err := os.ReadFile(filepath.Join(env.storeDir, "qrcodes", "dpp_"+product.PassportID+".png"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngSignature))

	stored, err := env.repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.QRCodeURL, stored.QRCodeURL)
	require.Len(t, stored.Materials, 2)
}

func TestCreateProductRules(t *testing.T) {
	env := newTestEnv(t)
	svc := newPassportService(env)
	ctx := context.Background()
	factory := env.factory(t, "Alpha Garments")
	manager := env.user(t, "manager@alpha.com", rbac.RoleManager, &factory.ID)
	worker := env.user(t, "worker@alpha.com", rbac.RoleWorker, &factory.ID)
	admin := env.admin(t)

	_, err := svc.CreateProduct(ctx, worker, productRequest("TEE-001"))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.CreateProduct(ctx, admin, productRequest("TEE-001"))
	assert.Equal(t, KindValidation, KindOf(err))

	req := productRequest("TEE-001")
	req.FactoryID = &factory.ID
	_, err = svc.CreateProduct(ctx, admin, req)
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, manager, productRequest("TEE-001"))
	assert.ErrorIs(t, err, ErrDuplicateSKU)

	over := productRequest("TEE-002")
	over.Materials = []entity.Material{{Material: "Cotton", Percentage: 60.5}, {Material: "Polyester", Percentage: 39.6}}
	_, err = svc.CreateProduct(ctx, manager, over)
	assert.Equal(t, KindValidation, KindOf(err))

	zero := productRequest("TEE-003")
	zero.Materials = []entity.Material{{Material: "Cotton", Percentage: 0}}
	_, err = svc.CreateProduct(ctx, manager, zero)
	assert.Equal(t, KindValidation, KindOf(err))

	exact := productRequest("TEE-004")
	exact.Materials = []entity.Material{{Material: "Cotton", Percentage: 33.3}, {Material: "Linen", Percentage: 33.3}, {Material: "Hemp", Percentage: 33.4}}
	_, err = svc.CreateProduct(ctx, manager, exact)
	assert.NoError(t, err)
}

func TestCreateProductConcurrentDuplicateSKU(t *testing.T) {
	env := newTestEnv(t)
	svc := newPassportService(env)
	ctx := context.Background()
	factory := env.factory(t, "Alpha Garments")
	manager := env.user(t, "manager@alpha.com", rbac.RoleManager, &factory.ID)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateProduct(ctx, manager, productRequest("RACE-1"))
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case KindOf(err) == KindConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	products, _, err := env.repo.ListProducts(ctx, &entity.ProductQuery{FactoryID: factory.ID})
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestProductScopingAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	svc := newPassportService(env)
	ctx := context.Background()
	alpha := env.factory(t, "Alpha Garments")
	beta := env.factory(t, "Beta Textiles")
	managerA := env.user(t, "manager@alpha.com", rbac.RoleManager, &alpha.ID)
	managerB := env.user(t, "manager@beta.com", rbac.RoleManager, &beta.ID)

	product, err := svc.CreateProduct(ctx, managerA, productRequest("TEE-001"))
	require.NoError(t, err)
	for i := 0; i < 12; i++ {
		env.event(t, alpha.ID, managerA.UserID, EventPPEInspection, entity.ComplianceStatusPass)
	}

	_, err = svc.GetProduct(ctx, managerB, product.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.UpdateProduct(ctx, managerB, product.ID, entity.ProductUpdateRequest{Name: strPtr("Stolen")})
	assert.ErrorIs(t, err, ErrNotFound)

	detail, err := svc.GetProduct(ctx, managerA, product.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Factory)
	assert.Equal(t, "Alpha Garments", detail.Factory.Name)
	assert.Len(t, detail.RecentComplianceEvents, 10)

	verified := true
	updated, err := svc.UpdateProduct(ctx, managerA, product.ID, entity.ProductUpdateRequest{
		Name:               strPtr(" Organic Tee v2 "),
		ComplianceVerified: &verified,
		Materials:          []entity.Material{{Material: "Organic cotton", Percentage: 100}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Organic Tee v2", updated.Name)
	assert.True(t, updated.ComplianceVerified)
	assert.Equal(t, product.PassportID, updated.PassportID)
	assert.Equal(t, product.SKU, updated.SKU)
	require.Len(t, updated.Materials, 1)

	listA, meta, err := svc.ListProducts(ctx, managerA, entity.ProductQuery{})
	require.NoError(t, err)
	assert.Len(t, listA, 1)
	assert.Equal(t, int64(1), meta.Total)
	listB, _, err := svc.ListProducts(ctx, managerB, entity.ProductQuery{FactoryID: alpha.ID})
	require.NoError(t, err)
	assert.Empty(t, listB)

	stored, err := svc.AddImage(ctx, managerA, product.ID, strings.NewReader("jpeg-bytes"), "front.jpg", "image/jpeg")
	require.NoError(t, err)
	_, err = svc.AddImage(ctx, managerA, product.ID, strings.NewReader("%PDF"), "datasheet.pdf", "application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedType)
	reloaded, err := env.repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{stored.URL}, reloaded.Images.ToSlice())
}

func TestPublicViewAndVerify(t *testing.T) {
	env := newTestEnv(t)
	svc := newPassportService(env)
	ctx := context.Background()
	factory := env.factory(t, "Alpha Garments")
	manager := env.user(t, "manager@alpha.com", rbac.RoleManager, &factory.ID)

	_, err := svc.PublicView(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	result, err := svc.Verify(ctx, "not-a-passport")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Message)

	product, err := svc.CreateProduct(ctx, manager, productRequest("TEE-001"))
	require.NoError(t, err)

	view, err := svc.PublicView(ctx, product.PassportID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, view.ComplianceStatus.Score)
	assert.Empty(t, view.ComplianceStatus.ByType)
	assert.False(t, view.SupplyChain.BatchTracking)

	env.event(t, factory.ID, manager.UserID, EventFireSafetyCheck, entity.ComplianceStatusPass)
	env.event(t, factory.ID, manager.UserID, EventPPEInspection, entity.ComplianceStatusFail)
	env.event(t, factory.ID, manager.UserID, EventFireSafetyCheck, entity.ComplianceStatusFail)

	view, err = svc.PublicView(ctx, product.PassportID)
	require.NoError(t, err)
	assert.Equal(t, "Organic Cotton Tee", view.ProductName)
	assert.Equal(t, "Alpha Garments", view.Manufacturer.Name)
	assert.Equal(t, int64(3), view.ComplianceStatus.TotalChecks)
	assert.Equal(t, int64(1), view.ComplianceStatus.PassedChecks)
	assert.Equal(t, ComplianceRate(1, 3, 1).InexactFloat64(), view.ComplianceStatus.Score)
	assert.Equal(t, 33.3, view.ComplianceStatus.Score)
	assert.Equal(t, entity.ComplianceStatusFail, view.ComplianceStatus.ByType[EventFireSafetyCheck].Status)
	assert.Equal(t, entity.ComplianceStatusFail, view.ComplianceStatus.ByType[EventPPEInspection].Status)
	require.NotNil(t, view.SupplyChain.ManufacturedDate)

	result, err = svc.Verify(ctx, product.PassportID)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "Alpha Garments", result.Manufacturer)
	require.NotNil(t, result.ComplianceVerified)
	assert.False(t, *result.ComplianceVerified)

	doc, err := svc.PassportPDF(ctx, product.PassportID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestBatches(t *testing.T) {
	env := newTestEnv(t)
	passports := newPassportService(env)
	svc := NewBatchService(env.repo, qrcode.NewGenerator(64), "https://api.skillchain.test/api")
	ctx := context.Background()
	alpha := env.factory(t, "Alpha Garments")
	beta := env.factory(t, "Beta Textiles")
	manager := env.user(t, "manager@alpha.com", rbac.RoleManager, &alpha.ID)
	outsider := env.user(t, "manager@beta.com", rbac.RoleManager, &beta.ID)

	product, err := passports.CreateProduct(ctx, manager, productRequest("TEE-001"))
	require.NoError(t, err)

	_, err = svc.CreateBatch(ctx, manager, product.ID, entity.BatchCreateRequest{BatchCode: "B1", Quantity: 100, StartDate: "2024-03-10", EndDate: "2024-03-01"})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.CreateBatch(ctx, outsider, product.ID, entity.BatchCreateRequest{BatchCode: "B1", Quantity: 100})
	assert.ErrorIs(t, err, ErrNotFound)

	svc.now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }
	batch, err := svc.CreateBatch(ctx, manager, product.ID, entity.BatchCreateRequest{BatchCode: "B1", Quantity: 100, EndDate: "2024-03-20"})
	require.NoError(t, err)
	assert.Equal(t, 2024, batch.StartDate.Year())

	reloaded, err := env.repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.BatchID)
	assert.Equal(t, batch.ID, *reloaded.BatchID)

	view, err := passports.PublicView(ctx, product.PassportID)
	require.NoError(t, err)
	assert.True(t, view.SupplyChain.BatchTracking)

	scanned, err := passports.PublicBatchView(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, product.PassportID, scanned.PassportID)
	require.NotNil(t, scanned.Batch)
	assert.Equal(t, "B1", scanned.Batch.BatchCode)

	_, err = passports.PublicBatchView(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	batches, err := svc.ListBatches(ctx, manager, product.ID)
	require.NoError(t, err)
	assert.Len(t, batches, 1)

	png, err := svc.BatchCode(ctx, manager, batch.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngSignature))

	_, err = svc.BatchCode(ctx, outsider, batch.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
