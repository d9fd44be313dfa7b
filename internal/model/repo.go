package model

import (
	"context"
	"skillchain/internal/entity"
)

// Repository is the persistence boundary used by the services.
type Repository interface {
	// Transaction runs fn against a repository bound to a single database
	// transaction. Returning an error or panicking rolls everything back.
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	// Users
	CreateUser(ctx context.Context, user *entity.DbUser) error
	UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error
	GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error)
	GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error)
	ListUsers(ctx context.Context, params *entity.UserQuery) ([]entity.DbUser, *entity.Meta, error)
	DeleteUser(ctx context.Context, id uint) error

	// Factories
	CreateFactory(ctx context.Context, factory *entity.DbFactory) error
	GetFactory(ctx context.Context, id uint) (*entity.DbFactory, error)
	GetFactoryByName(ctx context.Context, name string) (*entity.DbFactory, error)
	ListFactories(ctx context.Context) ([]entity.DbFactory, error)

	// Products and batches
	CreateProduct(ctx context.Context, product *entity.DbProduct) error
	GetProduct(ctx context.Context, id uint) (*entity.DbProduct, error)
	GetProductBySKU(ctx context.Context, sku string) (*entity.DbProduct, error)
	GetProductByPassportID(ctx context.Context, passportID string) (*entity.DbProduct, error)
	ListProducts(ctx context.Context, params *entity.ProductQuery) ([]entity.DbProduct, *entity.Meta, error)
	UpdateProduct(ctx context.Context, id uint, updates entity.ProductUpdates) error
	CreateBatch(ctx context.Context, batch *entity.DbBatch) error
	GetBatch(ctx context.Context, id uint) (*entity.DbBatch, error)
	ListBatches(ctx context.Context, productID uint) ([]entity.DbBatch, error)

	// Compliance events
	CreateComplianceEvent(ctx context.Context, event *entity.DbComplianceEvent) error
	GetComplianceEvent(ctx context.Context, id uint) (*entity.DbComplianceEvent, error)
	UpdateComplianceEvent(ctx context.Context, id uint, updates entity.ComplianceEventUpdates) error
	ListComplianceEvents(ctx context.Context, params *entity.ComplianceEventQuery) ([]entity.DbComplianceEvent, error)
	CountComplianceEvents(ctx context.Context, factoryID uint) (entity.ComplianceCounts, error)

	// Demo requests
	CreateDemoRequest(ctx context.Context, request *entity.DbDemoRequest) error
	GetDemoRequest(ctx context.Context, id uint) (*entity.DbDemoRequest, error)
	FindPendingDemoRequest(ctx context.Context, email string) (*entity.DbDemoRequest, error)
	ListDemoRequests(ctx context.Context, params *entity.DemoRequestQuery) ([]entity.DbDemoRequest, *entity.Meta, error)
	UpdateDemoRequest(ctx context.Context, id uint, updates entity.DemoReviewUpdates) error

	// Content
	CreateCategory(ctx context.Context, category *entity.DbCategory) error
	GetCategory(ctx context.Context, id uint) (*entity.DbCategory, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*entity.DbCategory, error)
	ListCategories(ctx context.Context) ([]entity.DbCategory, error)

	CreateArticle(ctx context.Context, article *entity.DbArticle) error
	GetArticle(ctx context.Context, id uint) (*entity.DbArticle, error)
	GetArticleBySlug(ctx context.Context, slug string) (*entity.DbArticle, error)
	ArticleSlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
	ListArticles(ctx context.Context, params *entity.ArticleQuery) ([]entity.DbArticle, *entity.Meta, error)
	UpdateArticle(ctx context.Context, id uint, updates entity.ArticleUpdates) error
	IncrementArticleViews(ctx context.Context, id uint) error
	DeleteArticle(ctx context.Context, id uint) error

	CreateCourse(ctx context.Context, course *entity.DbCourse) error
	GetCourse(ctx context.Context, id uint) (*entity.DbCourse, error)
	GetCourseBySlug(ctx context.Context, slug string) (*entity.DbCourse, error)
	CourseSlugExists(ctx context.Context, slug string) (bool, error)
	ListCourses(ctx context.Context, params *entity.CourseQuery) ([]entity.DbCourse, *entity.Meta, error)
	UpdateCourse(ctx context.Context, id uint, updates entity.CourseUpdates) error
	IncrementCourseEnrollment(ctx context.Context, id uint) error
	CreateCourseModule(ctx context.Context, module *entity.DbCourseModule) error
	NextModuleOrder(ctx context.Context, courseID uint) (int, error)
	SumLessonDuration(ctx context.Context, courseID uint) (int, error)
	ListCourseLessonIDs(ctx context.Context, courseID uint) ([]uint, error)

	CreateEnrollment(ctx context.Context, enrollment *entity.DbEnrollment) error
	GetEnrollment(ctx context.Context, id uint) (*entity.DbEnrollment, error)
	GetEnrollmentByUserCourse(ctx context.Context, userID, courseID uint) (*entity.DbEnrollment, error)
	ListEnrollments(ctx context.Context, userID uint) ([]entity.DbEnrollment, error)
	UpdateEnrollment(ctx context.Context, id uint, updates entity.EnrollmentUpdates) error
}
