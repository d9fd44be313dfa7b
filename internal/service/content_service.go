package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"skillchain/internal/entity"
	"skillchain/internal/model"
	"skillchain/internal/rbac"
	"skillchain/internal/utils"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const defaultContentLanguage = "en"

var contentStatuses = []string{entity.ContentStatusDraft, entity.ContentStatusPublished, entity.ContentStatusArchived}

// ContentService publishes the learning hub: categories, articles, courses and enrollments.
type ContentService struct {
	repo  model.Repository
	files *FileIntake
	now   func() time.Time
}

func NewContentService(repo model.Repository, files *FileIntake) *ContentService {
	return &ContentService{repo: repo, files: files, now: time.Now}
}

func (s *ContentService) CreateCategory(ctx context.Context, subject rbac.Subject, req entity.CategoryCreateRequest) (*entity.DbCategory, error) {
	if err := authorize(subject, rbac.CapAdministerPlatform); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	slug := utils.Slugify(name)
	if slug == "" {
		return nil, validationError("category name is required")
	}
	if _, err := s.repo.GetCategoryBySlug(ctx, slug); err == nil {
		return nil, ErrDuplicateSlug
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, upstream("failed to check category", err)
	}

	category := &entity.DbCategory{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(req.Description),
		Icon:        strings.TrimSpace(req.Icon),
		Order:       req.Order,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSlug
		}
		return nil, upstream("failed to create category", err)
	}
	return category, nil
}

func (s *ContentService) ListCategories(ctx context.Context) ([]entity.DbCategory, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, upstream("failed to load categories", err)
	}
	return categories, nil
}

// CreateArticle publishes or drafts an article authored by the caller.
func (s *ContentService) CreateArticle(ctx context.Context, subject rbac.Subject, req entity.ArticleCreateRequest) (*entity.DbArticle, error) {
	if err := authorize(subject, rbac.CapCreateContent); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" || strings.TrimSpace(req.Content) == "" {
		return nil, validationError("title and content are required")
	}
	status, err := contentStatus(req.Status)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	slug, err := s.uniqueSlug(title, func(candidate string) (bool, error) {
		return s.repo.ArticleSlugExists(ctx, candidate, 0)
	})
	if err != nil {
		return nil, err
	}

	article := &entity.DbArticle{
		Title:       title,
		Slug:        slug,
		Excerpt:     strings.TrimSpace(req.Excerpt),
		Content:     req.Content,
		AuthorID:    subject.UserID,
		CategoryID:  req.CategoryID,
		Status:      status,
		IsFeatured:  req.IsFeatured,
		Tags:        cleanStrings(req.Tags),
		ReadingTime: utils.ReadingTime(req.Content),
		Language:    contentLanguage(req.Language),
	}
	if status == entity.ContentStatusPublished {
		article.PublishedAt = timePtr(s.now().UTC())
	}
	if err := s.repo.CreateArticle(ctx, article); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSlug
		}
		return nil, upstream("failed to create article", err)
	}
	logrus.WithFields(logrus.Fields{"article_id": article.ID, "slug": slug, "status": status}).Info("article created")
	return article, nil
}

// ListArticles lists published articles. Content creators may ask for another status.
func (s *ContentService) ListArticles(ctx context.Context, viewer *rbac.Subject, query entity.ArticleQuery) ([]entity.DbArticle, *entity.Meta, error) {
	status, err := s.visibleStatus(viewer, query.Status)
	if err != nil {
		return nil, nil, err
	}
	query.Status = status
	query.Normalise(20, 100)
	articles, meta, err := s.repo.ListArticles(ctx, &query)
	if err != nil {
		return nil, nil, upstream("failed to load articles", err)
	}
	return articles, meta, nil
}

// ReadArticle returns a published article and counts the view.
func (s *ContentService) ReadArticle(ctx context.Context, slug string) (*entity.DbArticle, error) {
	article, err := s.repo.GetArticleBySlug(ctx, slug)
	if err != nil {
		return nil, lookupError("article", err)
	}
	if article.Status != entity.ContentStatusPublished {
		return nil, notFound("article")
	}
	if err := s.repo.IncrementArticleViews(ctx, article.ID); err != nil {
		return nil, upstream("failed to record article view", err)
	}
	article.Views++
	return article, nil
}

// UpdateArticle edits an article. Only its author or a platform administrator may do so.
func (s *ContentService) UpdateArticle(ctx context.Context, subject rbac.Subject, id uint, req entity.ArticleUpdateRequest) (*entity.DbArticle, error) {
	article, err := s.ownedArticle(ctx, subject, id)
	if err != nil {
		return nil, err
	}

	var updates entity.ArticleUpdates
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, validationError("title cannot be empty")
		}
		slug, err := s.uniqueSlug(title, func(candidate string) (bool, error) {
			return s.repo.ArticleSlugExists(ctx, candidate, article.ID)
		})
		if err != nil {
			return nil, err
		}
		updates.Title = &title
		updates.Slug = &slug
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, validationError("content cannot be empty")
		}
		minutes := utils.ReadingTime(*req.Content)
		updates.Content = req.Content
		updates.ReadingTime = &minutes
	}
	if req.Status != nil {
		status, err := contentStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		updates.Status = &status
		if status == entity.ContentStatusPublished && article.PublishedAt == nil {
			updates.PublishedAt = timePtr(s.now().UTC())
		}
	}
	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		updates.CategoryID = req.CategoryID
	}
	if req.Tags != nil {
		tags := cleanStrings(req.Tags)
		updates.Tags = &tags
	}
	if req.Language != nil {
		language := contentLanguage(*req.Language)
		updates.Language = &language
	}
	updates.Excerpt = trimmedPtr(req.Excerpt)
	updates.IsFeatured = req.IsFeatured

	if err := s.repo.UpdateArticle(ctx, article.ID, updates); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSlug
		}
		return nil, upstream("failed to update article", err)
	}
	updated, err := s.repo.GetArticle(ctx, article.ID)
	if err != nil {
		return nil, lookupError("article", err)
	}
	return updated, nil
}

func (s *ContentService) SetArticleImage(ctx context.Context, subject rbac.Subject, id uint, reader io.Reader, filename, contentType string) (*StoredFile, error) {
	article, err := s.ownedArticle(ctx, subject, id)
	if err != nil {
		return nil, err
	}
	stored, err := s.files.Save(ctx, reader, filename, contentType, CategoryArticles)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateArticle(ctx, article.ID, entity.ArticleUpdates{FeaturedImage: &stored.URL}); err != nil {
		s.files.Delete(ctx, stored.Key)
		return nil, upstream("failed to set article image", err)
	}
	return stored, nil
}

func (s *ContentService) DeleteArticle(ctx context.Context, subject rbac.Subject, id uint) error {
	if err := authorize(subject, rbac.CapAdministerPlatform); err != nil {
		return err
	}
	if err := s.repo.DeleteArticle(ctx, id); err != nil {
		return lookupError("article", err)
	}
	return nil
}

func (s *ContentService) ownedArticle(ctx context.Context, subject rbac.Subject, id uint) (*entity.DbArticle, error) {
	if err := authorize(subject, rbac.CapCreateContent); err != nil {
		return nil, err
	}
	article, err := s.repo.GetArticle(ctx, id)
	if err != nil {
		return nil, lookupError("article", err)
	}
	if !subject.IsPlatformAdmin() && article.AuthorID != subject.UserID {
		return nil, ErrForbidden
	}
	return article, nil
}

func (s *ContentService) CreateCourse(ctx context.Context, subject rbac.Subject, req entity.CourseCreateRequest) (*entity.DbCourse, error) {
	if err := authorize(subject, rbac.CapCreateContent); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, validationError("title is required")
	}
	if req.Price < 0 {
		return nil, validationError("price must not be negative")
	}
	status, err := contentStatus(req.Status)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	slug, err := s.uniqueSlug(title, func(candidate string) (bool, error) {
		return s.repo.CourseSlugExists(ctx, candidate)
	})
	if err != nil {
		return nil, err
	}

	course := &entity.DbCourse{
		Title:            title,
		Slug:             slug,
		Description:      strings.TrimSpace(req.Description),
		InstructorID:     subject.UserID,
		CategoryID:       req.CategoryID,
		Status:           status,
		IsFeatured:       req.IsFeatured,
		Level:            strings.ToLower(strings.TrimSpace(req.Level)),
		Language:         contentLanguage(req.Language),
		Tags:             cleanStrings(req.Tags),
		LearningOutcomes: cleanStrings(req.LearningOutcomes),
		Prerequisites:    cleanStrings(req.Prerequisites),
		Price:            req.Price,
	}
	if status == entity.ContentStatusPublished {
		course.PublishedAt = timePtr(s.now().UTC())
	}
	if err := s.repo.CreateCourse(ctx, course); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSlug
		}
		return nil, upstream("failed to create course", err)
	}
	logrus.WithFields(logrus.Fields{"course_id": course.ID, "slug": slug}).Info("course created")
	return course, nil
}

func (s *ContentService) ListCourses(ctx context.Context, viewer *rbac.Subject, query entity.CourseQuery) ([]entity.DbCourse, *entity.Meta, error) {
	status, err := s.visibleStatus(viewer, query.Status)
	if err != nil {
		return nil, nil, err
	}
	query.Status = status
	query.Level = strings.ToLower(strings.TrimSpace(query.Level))
	query.Normalise(20, 100)
	courses, meta, err := s.repo.ListCourses(ctx, &query)
	if err != nil {
		return nil, nil, upstream("failed to load courses", err)
	}
	return courses, meta, nil
}

// GetCourse returns a published course with its modules and lessons in order.
func (s *ContentService) GetCourse(ctx context.Context, slug string) (*entity.DbCourse, error) {
	course, err := s.repo.GetCourseBySlug(ctx, slug)
	if err != nil {
		return nil, lookupError("course", err)
	}
	if course.Status != entity.ContentStatusPublished {
		return nil, notFound("course")
	}
	return course, nil
}

// AddModule appends a module with its lessons and refreshes the course duration.
func (s *ContentService) AddModule(ctx context.Context, subject rbac.Subject, courseID uint, req entity.ModuleCreateRequest) (*entity.DbCourseModule, error) {
	course, err := s.ownedCourse(ctx, subject, courseID)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, validationError("module title is required")
	}

	module := &entity.DbCourseModule{
		CourseID:    course.ID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
	}
	for i, lesson := range req.Lessons {
		lessonTitle := strings.TrimSpace(lesson.Title)
		if lessonTitle == "" {
			return nil, validationError("lessons[%d]: title is required", i)
		}
		if lesson.Duration < 0 {
			return nil, validationError("lessons[%d]: duration must not be negative", i)
		}
		module.Lessons = append(module.Lessons, entity.DbLesson{
			Title:    lessonTitle,
			Content:  lesson.Content,
			VideoURL: strings.TrimSpace(lesson.VideoURL),
			Duration: lesson.Duration,
			Order:    i + 1,
			IsFree:   lesson.IsFree,
		})
	}

	err = s.repo.Transaction(ctx, func(tx model.Repository) error {
		order, err := tx.NextModuleOrder(ctx, course.ID)
		if err != nil {
			return err
		}
		module.Order = order
		if err := tx.CreateCourseModule(ctx, module); err != nil {
			return err
		}
		total, err := tx.SumLessonDuration(ctx, course.ID)
		if err != nil {
			return err
		}
		return tx.UpdateCourse(ctx, course.ID, entity.CourseUpdates{Duration: &total})
	})
	if err != nil {
		return nil, upstream("failed to add course module", err)
	}
	return module, nil
}

func (s *ContentService) SetCourseImage(ctx context.Context, subject rbac.Subject, id uint, reader io.Reader, filename, contentType string) (*StoredFile, error) {
	course, err := s.ownedCourse(ctx, subject, id)
	if err != nil {
		return nil, err
	}
	stored, err := s.files.Save(ctx, reader, filename, contentType, CategoryCourses)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateCourse(ctx, course.ID, entity.CourseUpdates{FeaturedImage: &stored.URL}); err != nil {
		s.files.Delete(ctx, stored.Key)
		return nil, upstream("failed to set course image", err)
	}
	return stored, nil
}

func (s *ContentService) ownedCourse(ctx context.Context, subject rbac.Subject, id uint) (*entity.DbCourse, error) {
	if err := authorize(subject, rbac.CapCreateContent); err != nil {
		return nil, err
	}
	course, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		return nil, lookupError("course", err)
	}
	if !subject.IsPlatformAdmin() && course.InstructorID != subject.UserID {
		return nil, ErrForbidden
	}
	return course, nil
}

// Enroll signs the caller up for a published course.
func (s *ContentService) Enroll(ctx context.Context, subject rbac.Subject, courseID uint) (*entity.DbEnrollment, error) {
	course, err := s.repo.GetCourse(ctx, courseID)
	if err != nil {
		return nil, lookupError("course", err)
	}
	if course.Status != entity.ContentStatusPublished {
		return nil, notFound("course")
	}

	now := s.now().UTC()
	enrollment := &entity.DbEnrollment{
		UserID:           subject.UserID,
		CourseID:         course.ID,
		CompletedLessons: entity.IntArray{},
		EnrolledAt:       now,
		LastAccessed:     now,
	}
	err = s.repo.Transaction(ctx, func(tx model.Repository) error {
		if err := tx.CreateEnrollment(ctx, enrollment); err != nil {
			return err
		}
		return tx.IncrementCourseEnrollment(ctx, course.ID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, upstream("failed to enroll", err)
	}
	return enrollment, nil
}

func (s *ContentService) ListEnrollments(ctx context.Context, subject rbac.Subject) ([]entity.DbEnrollment, error) {
	enrollments, err := s.repo.ListEnrollments(ctx, subject.UserID)
	if err != nil {
		return nil, upstream("failed to load enrollments", err)
	}
	return enrollments, nil
}

// CompleteLesson marks a lesson done and recomputes course progress.
func (s *ContentService) CompleteLesson(ctx context.Context, subject rbac.Subject, courseID, lessonID uint) (*entity.DbEnrollment, error) {
	enrollment, err := s.repo.GetEnrollmentByUserCourse(ctx, subject.UserID, courseID)
	if err != nil {
		return nil, lookupError("enrollment", err)
	}
	lessonIDs, err := s.repo.ListCourseLessonIDs(ctx, courseID)
	if err != nil {
		return nil, upstream("failed to load lessons", err)
	}
	if !containsUint(lessonIDs, lessonID) {
		return nil, notFound("lesson")
	}

	completed := append(entity.IntArray{}, enrollment.CompletedLessons...)
	if !containsInt(completed, int(lessonID)) {
		completed = append(completed, int(lessonID))
	}
	done := 0
	for _, id := range completed {
		if containsUint(lessonIDs, uint(id)) {
			done++
		}
	}
	progress := int(percentage(int64(done), int64(len(lessonIDs)), 0).IntPart())

	now := s.now().UTC()
	updates := entity.EnrollmentUpdates{
		Progress:         &progress,
		CompletedLessons: &completed,
		LastAccessed:     &now,
	}
	if progress >= 100 && enrollment.CompletedAt == nil {
		updates.CompletedAt = &now
		enrollment.CompletedAt = &now
	}
	if err := s.repo.UpdateEnrollment(ctx, enrollment.ID, updates); err != nil {
		return nil, upstream("failed to update enrollment", err)
	}

	enrollment.Progress = progress
	enrollment.CompletedLessons = completed
	enrollment.LastAccessed = now
	return enrollment, nil
}

// visibleStatus decides which publication status a listing may show.
func (s *ContentService) visibleStatus(viewer *rbac.Subject, requested string) (string, error) {
	requested = strings.ToLower(strings.TrimSpace(requested))
	if requested == "" || viewer == nil || rbac.Authorize(*viewer, rbac.CapCreateContent) != nil {
		return entity.ContentStatusPublished, nil
	}
	return contentStatus(requested)
}

func (s *ContentService) checkCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := s.repo.GetCategory(ctx, *id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return validationError("category %d does not exist", *id)
		}
		return upstream("failed to load category", err)
	}
	return nil
}

// uniqueSlug slugifies title and appends the current unix time when the slug is taken.
func (s *ContentService) uniqueSlug(title string, exists func(string) (bool, error)) (string, error) {
	slug := utils.Slugify(title)
	if slug == "" {
		return "", validationError("title must contain letters or digits")
	}
	taken, err := exists(slug)
	if err != nil {
		return "", upstream("failed to check slug", err)
	}
	if taken {
		slug = fmt.Sprintf("%s-%d", slug, s.now().Unix())
	}
	return slug, nil
}

func contentStatus(value string) (string, error) {
	status := strings.ToLower(strings.TrimSpace(value))
	if status == "" {
		return entity.ContentStatusDraft, nil
	}
	if !containsString(contentStatuses, status) {
		return "", validationError("invalid status, allowed: %s", strings.Join(contentStatuses, ", "))
	}
	return status, nil
}

func contentLanguage(value string) string {
	language := strings.ToLower(strings.TrimSpace(value))
	if language == "" {
		return defaultContentLanguage
	}
	return language
}

func containsUint(values []uint, target uint) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func containsInt(values []int, target int) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
