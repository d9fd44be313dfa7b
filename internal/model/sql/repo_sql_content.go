package sql

import (
	"context"
	"fmt"
	"skillchain/internal/entity"
	"strings"

	"gorm.io/gorm"
)

func (r *GormRepository) CreateCategory(ctx context.Context, category *entity.DbCategory) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if category == nil {
		return fmt.Errorf("category is nil")
	}
	return translateWriteError(r.db.WithContext(ctx).Create(category).Error)
}

func (r *GormRepository) GetCategory(ctx context.Context, id uint) (*entity.DbCategory, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var category entity.DbCategory
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *GormRepository) GetCategoryBySlug(ctx context.Context, slug string) (*entity.DbCategory, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var category entity.DbCategory
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// ListCategories returns categories in display order, then by name.
func (r *GormRepository) ListCategories(ctx context.Context) ([]entity.DbCategory, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var categories []entity.DbCategory
	if err := r.db.WithContext(ctx).Order("display_order ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *GormRepository) CreateArticle(ctx context.Context, article *entity.DbArticle) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if article == nil {
		return fmt.Errorf("article is nil")
	}
	return translateWriteError(r.db.WithContext(ctx).Create(article).Error)
}

func (r *GormRepository) GetArticle(ctx context.Context, id uint) (*entity.DbArticle, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid article id")
	}
	var article entity.DbArticle
	if err := r.db.WithContext(ctx).First(&article, id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *GormRepository) GetArticleBySlug(ctx context.Context, slug string) (*entity.DbArticle, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var article entity.DbArticle
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// ArticleSlugExists checks whether another article already uses slug.
func (r *GormRepository) ArticleSlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	if r == nil || r.db == nil {
		return false, errNotInitialised
	}
	query := r.db.WithContext(ctx).Model(&entity.DbArticle{}).Where("slug = ?", slug)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepository) ListArticles(ctx context.Context, params *entity.ArticleQuery) ([]entity.DbArticle, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, errNotInitialised
	}

	query := r.db.WithContext(ctx).Model(&entity.DbArticle{})
	var base *entity.BaseParams
	if params != nil {
		base = &params.BaseParams
		if status := strings.TrimSpace(params.Status); status != "" {
			query = query.Where("status = ?", status)
		}
		if params.CategoryID > 0 {
			query = query.Where("category_id = ?", params.CategoryID)
		}
		if language := strings.TrimSpace(params.Language); language != "" {
			query = query.Where("language = ?", language)
		}
		if params.Featured != nil {
			query = query.Where("is_featured = ?", *params.Featured)
		}
		if search := strings.TrimSpace(params.Search); search != "" {
			kw := "%" + strings.ToLower(search) + "%"
			query = query.Where("LOWER(title) LIKE ? OR LOWER(excerpt) LIKE ? OR LOWER(content) LIKE ?", kw, kw, kw)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	page := pageOf(base)
	var articles []entity.DbArticle
	if err := query.Order("published_at DESC, created_at DESC, id DESC").Offset(page.Offset()).Limit(int(page.PageSize)).Find(&articles).Error; err != nil {
		return nil, nil, err
	}
	return articles, pageMeta(page, total), nil
}

func (r *GormRepository) UpdateArticle(ctx context.Context, id uint, updates entity.ArticleUpdates) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid article id")
	}
	if updates.IsEmpty() {
		return nil
	}
	return translateWriteError(r.db.WithContext(ctx).Model(&entity.DbArticle{}).Where("id = ?", id).Updates(updates.ToMap()).Error)
}

func (r *GormRepository) IncrementArticleViews(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	return r.db.WithContext(ctx).Model(&entity.DbArticle{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

func (r *GormRepository) DeleteArticle(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid article id")
	}
	result := r.db.WithContext(ctx).Delete(&entity.DbArticle{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepository) CreateCourse(ctx context.Context, course *entity.DbCourse) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if course == nil {
		return fmt.Errorf("course is nil")
	}
	return translateWriteError(r.db.WithContext(ctx).Omit("Modules").Create(course).Error)
}

func (r *GormRepository) GetCourse(ctx context.Context, id uint) (*entity.DbCourse, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid course id")
	}
	var course entity.DbCourse
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// GetCourseBySlug loads a course with its modules and lessons in display order.
func (r *GormRepository) GetCourseBySlug(ctx context.Context, slug string) (*entity.DbCourse, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var course entity.DbCourse
	err := r.db.WithContext(ctx).
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, id ASC")
		}).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, id ASC")
		}).
		Where("slug = ?", slug).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *GormRepository) CourseSlugExists(ctx context.Context, slug string) (bool, error) {
	if r == nil || r.db == nil {
		return false, errNotInitialised
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.DbCourse{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepository) ListCourses(ctx context.Context, params *entity.CourseQuery) ([]entity.DbCourse, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, errNotInitialised
	}

	query := r.db.WithContext(ctx).Model(&entity.DbCourse{})
	var base *entity.BaseParams
	if params != nil {
		base = &params.BaseParams
		if status := strings.TrimSpace(params.Status); status != "" {
			query = query.Where("status = ?", status)
		}
		if params.CategoryID > 0 {
			query = query.Where("category_id = ?", params.CategoryID)
		}
		if level := strings.TrimSpace(params.Level); level != "" {
			query = query.Where("level = ?", level)
		}
		if language := strings.TrimSpace(params.Language); language != "" {
			query = query.Where("language = ?", language)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	page := pageOf(base)
	var courses []entity.DbCourse
	if err := query.Order("created_at DESC, id DESC").Offset(page.Offset()).Limit(int(page.PageSize)).Find(&courses).Error; err != nil {
		return nil, nil, err
	}
	return courses, pageMeta(page, total), nil
}

func (r *GormRepository) UpdateCourse(ctx context.Context, id uint, updates entity.CourseUpdates) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	fields := updates.ToMap()
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbCourse{}).Where("id = ?", id).Updates(fields).Error
}

func (r *GormRepository) IncrementCourseEnrollment(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	return r.db.WithContext(ctx).Model(&entity.DbCourse{}).Where("id = ?", id).
		UpdateColumn("enrollment_count", gorm.Expr("enrollment_count + ?", 1)).Error
}

// CreateCourseModule persists a module together with its lessons.
func (r *GormRepository) CreateCourseModule(ctx context.Context, module *entity.DbCourseModule) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if module == nil {
		return fmt.Errorf("module is nil")
	}
	return r.db.WithContext(ctx).Create(module).Error
}

// NextModuleOrder returns one past the highest module order of the course, starting at 1.
func (r *GormRepository) NextModuleOrder(ctx context.Context, courseID uint) (int, error) {
	if r == nil || r.db == nil {
		return 0, errNotInitialised
	}
	var row struct {
		MaxOrder *int
	}
	err := r.db.WithContext(ctx).Model(&entity.DbCourseModule{}).
		Where("course_id = ?", courseID).
		Select("MAX(display_order) AS max_order").
		Scan(&row).Error
	if err != nil {
		return 0, err
	}
	if row.MaxOrder == nil {
		return 1, nil
	}
	return *row.MaxOrder + 1, nil
}

// SumLessonDuration totals the duration of every lesson in the course.
func (r *GormRepository) SumLessonDuration(ctx context.Context, courseID uint) (int, error) {
	if r == nil || r.db == nil {
		return 0, errNotInitialised
	}
	var row struct {
		Total int
	}
	err := r.db.WithContext(ctx).Model(&entity.DbLesson{}).
		Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
		Where("course_modules.course_id = ?", courseID).
		Select("COALESCE(SUM(lessons.duration), 0) AS total").
		Scan(&row).Error
	if err != nil {
		return 0, err
	}
	return row.Total, nil
}

func (r *GormRepository) ListCourseLessonIDs(ctx context.Context, courseID uint) ([]uint, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entity.DbLesson{}).
		Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
		Where("course_modules.course_id = ?", courseID).
		Pluck("lessons.id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *GormRepository) CreateEnrollment(ctx context.Context, enrollment *entity.DbEnrollment) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if enrollment == nil {
		return fmt.Errorf("enrollment is nil")
	}
	if enrollment.CompletedLessons == nil {
		enrollment.CompletedLessons = entity.IntArray{}
	}
	return translateWriteError(r.db.WithContext(ctx).Create(enrollment).Error)
}

func (r *GormRepository) GetEnrollment(ctx context.Context, id uint) (*entity.DbEnrollment, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var enrollment entity.DbEnrollment
	if err := r.db.WithContext(ctx).First(&enrollment, id).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *GormRepository) GetEnrollmentByUserCourse(ctx context.Context, userID, courseID uint) (*entity.DbEnrollment, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var enrollment entity.DbEnrollment
	if err := r.db.WithContext(ctx).Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *GormRepository) ListEnrollments(ctx context.Context, userID uint) ([]entity.DbEnrollment, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var enrollments []entity.DbEnrollment
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("enrolled_at DESC").Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *GormRepository) UpdateEnrollment(ctx context.Context, id uint, updates entity.EnrollmentUpdates) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	fields := updates.ToMap()
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbEnrollment{}).Where("id = ?", id).Updates(fields).Error
}
