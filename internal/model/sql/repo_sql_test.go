package sql

import (
	"context"
	"errors"
	"path/filepath"
	"skillchain/internal/config"
	"skillchain/internal/entity"
	"skillchain/internal/model"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *GormRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, Migrate(db))
	return NewGormRepository(db)
}

func seedFactory(t *testing.T, repo *GormRepository, name string) *entity.DbFactory {
	t.Helper()
	factory := &entity.DbFactory{Name: name, Location: "Dhaka"}
	require.NoError(t, repo.CreateFactory(context.Background(), factory))
	return factory
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx, &entity.DbUser{Email: "Ana@Example.com ", PasswordHash: "x", Role: "buyer"}))
	err := repo.CreateUser(ctx, &entity.DbUser{Email: "ana@example.com", PasswordHash: "y", Role: "buyer"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKey(err))

	user, err := repo.GetUserByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
}

func TestUpdateUserClearFactory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	factory := seedFactory(t, repo, "Alpha Garments")

	user := &entity.DbUser{Email: "w@example.com", PasswordHash: "x", Role: "worker", FactoryID: &factory.ID}
	require.NoError(t, repo.CreateUser(ctx, user))

	require.NoError(t, repo.UpdateUser(ctx, user.ID, entity.UserUpdates{ClearFactory: true}))
	loaded, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.FactoryID)
}

func TestListUsersFiltersByFactory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := seedFactory(t, repo, "A")
	b := seedFactory(t, repo, "B")

	require.NoError(t, repo.CreateUser(ctx, &entity.DbUser{Email: "a1@x.io", PasswordHash: "x", Role: "worker", FactoryID: &a.ID}))
	require.NoError(t, repo.CreateUser(ctx, &entity.DbUser{Email: "a2@x.io", PasswordHash: "x", Role: "manager", FactoryID: &a.ID}))
	require.NoError(t, repo.CreateUser(ctx, &entity.DbUser{Email: "b1@x.io", PasswordHash: "x", Role: "worker", FactoryID: &b.ID}))

	users, meta, err := repo.ListUsers(ctx, &entity.UserQuery{FactoryID: a.ID})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, int64(2), meta.Total)
	assert.Equal(t, int64(20), meta.PageSize)
}

func TestDeleteUserMissing(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.DeleteUser(context.Background(), 99)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductUniqueSKUAndPassport(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	factory := seedFactory(t, repo, "Alpha Garments")

	first := &entity.DbProduct{FactoryID: factory.ID, SKU: "TS-001", Name: "Tee", PassportID: "p-1"}
	require.NoError(t, repo.CreateProduct(ctx, first))

	err := repo.CreateProduct(ctx, &entity.DbProduct{FactoryID: factory.ID, SKU: "TS-001", Name: "Tee 2", PassportID: "p-2"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	err = repo.CreateProduct(ctx, &entity.DbProduct{FactoryID: factory.ID, SKU: "TS-002", Name: "Tee 3", PassportID: "p-1"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	loaded, err := repo.GetProductByPassportID(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, loaded.ID)
}

func TestProductMaterialsRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	factory := seedFactory(t, repo, "Alpha Garments")

	product := &entity.DbProduct{
		FactoryID:  factory.ID,
		SKU:        "JK-9",
		Name:       "Jacket",
		PassportID: "p-9",
		Materials: entity.MaterialList{
			{Material: "Organic Cotton", Percentage: 80, Origin: "India"},
			{Material: "Elastane", Percentage: 20},
		},
		Certifications: entity.StringArray{"GOTS"},
	}
	require.NoError(t, repo.CreateProduct(ctx, product))

	loaded, err := repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Materials, 2)
	assert.Equal(t, "Organic Cotton", loaded.Materials[0].Material)
	assert.InDelta(t, 20.0, loaded.Materials[1].Percentage, 0.001)
	assert.Equal(t, entity.StringArray{"GOTS"}, loaded.Certifications)

	qr := "http://files/qrcodes/dpp_1.png"
	require.NoError(t, repo.UpdateProduct(ctx, product.ID, entity.ProductUpdates{QRCodeURL: &qr}))
	loaded, err = repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, qr, loaded.QRCodeURL)
}

func TestListProductsScopedToFactory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := seedFactory(t, repo, "A")
	b := seedFactory(t, repo, "B")

	require.NoError(t, repo.CreateProduct(ctx, &entity.DbProduct{FactoryID: a.ID, SKU: "A1", Name: "Shirt", PassportID: "a1"}))
	require.NoError(t, repo.CreateProduct(ctx, &entity.DbProduct{FactoryID: a.ID, SKU: "A2", Name: "Dress", PassportID: "a2"}))
	require.NoError(t, repo.CreateProduct(ctx, &entity.DbProduct{FactoryID: b.ID, SKU: "B1", Name: "Shirt", PassportID: "b1"}))

	products, meta, err := repo.ListProducts(ctx, &entity.ProductQuery{FactoryID: a.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), meta.Total)
	for _, p := range products {
		assert.Equal(t, a.ID, p.FactoryID)
	}

	products, _, err = repo.ListProducts(ctx, &entity.ProductQuery{Keyword: "shirt"})
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestTransactionRollsBack(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	factory := seedFactory(t, repo, "Alpha Garments")

	boom := errors.New("boom")
	err := repo.Transaction(ctx, func(tx model.Repository) error {
		if err := tx.CreateProduct(ctx, &entity.DbProduct{FactoryID: factory.ID, SKU: "TX-1", Name: "Tee", PassportID: "tx-1"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.GetProductBySKU(ctx, "TX-1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestComplianceEventOrderingAndCounts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := seedFactory(t, repo, "A")
	b := seedFactory(t, repo, "B")

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	events := []entity.DbComplianceEvent{
		{FactoryID: a.ID, UserID: 1, EventType: "FIRE_SAFETY_CHECK", Status: entity.ComplianceStatusPass, Area: "Floor 1", CreatedAt: base},
		{FactoryID: a.ID, UserID: 1, EventType: "FIRE_SAFETY_CHECK", Status: entity.ComplianceStatusFail, Area: "Floor 2", CreatedAt: base.Add(time.Hour)},
		{FactoryID: a.ID, UserID: 1, EventType: "PPE_INSPECTION", Status: entity.ComplianceStatusPending, Area: "Cutting", CreatedAt: base},
		{FactoryID: a.ID, UserID: 1, EventType: "BUILDING_AUDIT", Status: entity.ComplianceStatusAttentionRequired, Area: "Roof", CreatedAt: base},
		{FactoryID: b.ID, UserID: 2, EventType: "CHEMICAL_TEST", Status: entity.ComplianceStatusPass, Area: "Dye house", CreatedAt: base},
	}
	for i := range events {
		require.NoError(t, repo.CreateComplianceEvent(ctx, &events[i]))
	}

	listed, err := repo.ListComplianceEvents(ctx, &entity.ComplianceEventQuery{FactoryID: a.ID})
	require.NoError(t, err)
	require.Len(t, listed, 4)
	assert.Equal(t, "Floor 2", listed[0].Area)
	// equal timestamps resolve to the later insert first
	assert.Equal(t, "Roof", listed[1].Area)
	assert.Equal(t, "Cutting", listed[2].Area)

	limited, err := repo.ListComplianceEvents(ctx, &entity.ComplianceEventQuery{FactoryID: a.ID, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	counts, err := repo.CountComplianceEvents(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ComplianceCounts{Total: 4, Passed: 1, Failed: 1, Pending: 1}, counts)

	all, err := repo.CountComplianceEvents(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), all.Total)
	assert.Equal(t, int64(2), all.Passed)
}

func TestComplianceEventApprovalUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	factory := seedFactory(t, repo, "A")

	event := &entity.DbComplianceEvent{FactoryID: factory.ID, UserID: 1, EventType: "OTHER", Status: entity.ComplianceStatusPass, Area: "Yard"}
	require.NoError(t, repo.CreateComplianceEvent(ctx, event))

	approver := uint(7)
	now := time.Now().UTC()
	docs := entity.StringArray{"http://files/compliance/a.pdf"}
	require.NoError(t, repo.UpdateComplianceEvent(ctx, event.ID, entity.ComplianceEventUpdates{
		ApprovedBy:   &approver,
		ApprovedAt:   &now,
		DocumentURLs: &docs,
	}))

	loaded, err := repo.GetComplianceEvent(ctx, event.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.ApprovedBy)
	assert.Equal(t, approver, *loaded.ApprovedBy)
	assert.Equal(t, docs, loaded.DocumentURLs)
	assert.Equal(t, entity.ComplianceStatusPass, loaded.Status)
}

func TestDemoRequestsPendingAndSorting(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateDemoRequest(ctx, &entity.DbDemoRequest{CompanyName: "Zeta", ContactName: "Z", Email: "Z@zeta.io", RequestedRole: "buyer", Status: entity.DemoStatusPending}))
	require.NoError(t, repo.CreateDemoRequest(ctx, &entity.DbDemoRequest{CompanyName: "Acme", ContactName: "A", Email: "a@acme.io", RequestedRole: "manager", Status: entity.DemoStatusRejected}))

	pending, err := repo.FindPendingDemoRequest(ctx, "z@ZETA.io")
	require.NoError(t, err)
	assert.Equal(t, "Zeta", pending.CompanyName)

	_, err = repo.FindPendingDemoRequest(ctx, "a@acme.io")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	records, _, err := repo.ListDemoRequests(ctx, &entity.DemoRequestQuery{BaseParams: entity.BaseParams{SortBy: "company_name"}})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Acme", records[0].CompanyName)

	_, _, err = repo.ListDemoRequests(ctx, &entity.DemoRequestQuery{BaseParams: entity.BaseParams{SortBy: "password_hash; DROP"}})
	assert.Error(t, err)
}

func TestCourseModulesAndLessons(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	course := &entity.DbCourse{Title: "Fire Safety 101", Slug: "fire-safety-101", Status: entity.ContentStatusPublished}
	require.NoError(t, repo.CreateCourse(ctx, course))

	order, err := repo.NextModuleOrder(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, order)

	require.NoError(t, repo.CreateCourseModule(ctx, &entity.DbCourseModule{
		CourseID: course.ID, Title: "Basics", Order: order,
		Lessons: []entity.DbLesson{{Title: "Exits", Duration: 10, Order: 1}, {Title: "Alarms", Duration: 15, Order: 0}},
	}))
	order, err = repo.NextModuleOrder(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, order)
	require.NoError(t, repo.CreateCourseModule(ctx, &entity.DbCourseModule{
		CourseID: course.ID, Title: "Drills", Order: order,
		Lessons: []entity.DbLesson{{Title: "Evacuation", Duration: 20}},
	}))

	total, err := repo.SumLessonDuration(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 45, total)

	ids, err := repo.ListCourseLessonIDs(ctx, course.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 3)

	loaded, err := repo.GetCourseBySlug(ctx, "fire-safety-101")
	require.NoError(t, err)
	require.Len(t, loaded.Modules, 2)
	assert.Equal(t, "Basics", loaded.Modules[0].Title)
	require.Len(t, loaded.Modules[0].Lessons, 2)
	assert.Equal(t, "Alarms", loaded.Modules[0].Lessons[0].Title)
}

func TestEnrollmentUniquePerUserCourse(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	course := &entity.DbCourse{Title: "PPE", Slug: "ppe"}
	require.NoError(t, repo.CreateCourse(ctx, course))

	require.NoError(t, repo.CreateEnrollment(ctx, &entity.DbEnrollment{UserID: 3, CourseID: course.ID, EnrolledAt: time.Now()}))
	err := repo.CreateEnrollment(ctx, &entity.DbEnrollment{UserID: 3, CourseID: course.ID, EnrolledAt: time.Now()})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	require.NoError(t, repo.IncrementCourseEnrollment(ctx, course.ID))
	loaded, err := repo.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), loaded.EnrollmentCount)
}

func TestArticleSlugAndFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	published := time.Now().UTC()
	require.NoError(t, repo.CreateArticle(ctx, &entity.DbArticle{Title: "Fire exits", Slug: "fire-exits", Content: "keep clear", Status: entity.ContentStatusPublished, PublishedAt: &published, IsFeatured: true}))
	require.NoError(t, repo.CreateArticle(ctx, &entity.DbArticle{Title: "Draft", Slug: "draft", Content: "wip", Status: entity.ContentStatusDraft}))

	exists, err := repo.ArticleSlugExists(ctx, "fire-exits", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	article, err := repo.GetArticleBySlug(ctx, "fire-exits")
	require.NoError(t, err)
	exists, err = repo.ArticleSlugExists(ctx, "fire-exits", article.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	featured := true
	articles, meta, err := repo.ListArticles(ctx, &entity.ArticleQuery{Status: entity.ContentStatusPublished, Featured: &featured})
	require.NoError(t, err)
	assert.Equal(t, int64(1), meta.Total)
	assert.Equal(t, "fire-exits", articles[0].Slug)

	articles, _, err = repo.ListArticles(ctx, &entity.ArticleQuery{Search: "WIP"})
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "draft", articles[0].Slug)

	require.NoError(t, repo.IncrementArticleViews(ctx, article.ID))
	require.NoError(t, repo.IncrementArticleViews(ctx, article.ID))
	article, err = repo.GetArticle(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), article.Views)

	require.NoError(t, repo.DeleteArticle(ctx, article.ID))
	assert.ErrorIs(t, repo.DeleteArticle(ctx, article.ID), gorm.ErrRecordNotFound)
}

func TestSeedDefaultCategoriesIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := model.SeedDefaultCategories(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 8, created)

	created, err = model.SeedDefaultCategories(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	categories, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 8)
	assert.Equal(t, "compliance-standards", categories[0].Slug)
	assert.Equal(t, "regulations-policy", categories[7].Slug)
}

func TestInitRepositoryRejectsUnknownDatabase(t *testing.T) {
	_, err := InitRepository(&config.Config{DBType: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestDeleteUserDropsEnrollments(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := &entity.DbUser{Email: "learner@x.io", PasswordHash: "x", Role: "buyer"}
	require.NoError(t, repo.CreateUser(ctx, user))
	course := &entity.DbCourse{Title: "Fire Safety", Slug: "fire-safety", Status: "published"}
	require.NoError(t, repo.CreateCourse(ctx, course))
	require.NoError(t, repo.CreateEnrollment(ctx, &entity.DbEnrollment{UserID: user.ID, CourseID: course.ID}))

	require.NoError(t, repo.DeleteUser(ctx, user.ID))
	_, err := repo.GetEnrollmentByUserCourse(ctx, user.ID, course.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
