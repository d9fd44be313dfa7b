package api

import (
	"context"
	"io"
	"net/http"
	"skillchain/internal/entity"
	"skillchain/internal/rbac"
	"skillchain/internal/service"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// viewer returns the optional caller of a public content route.
func viewer(c *gin.Context) *rbac.Subject {
	user := CurrentUser(c)
	if user == nil {
		return nil
	}
	subject := user.Subject()
	return &subject
}

func (h *HTTPHandler) ListCategories(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	categories, err := h.content.ListCategories(ctx)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *HTTPHandler) CreateCategory(c *gin.Context) {
	var req entity.CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	category, err := h.content.CreateCategory(ctx, currentSubject(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *HTTPHandler) ListArticles(c *gin.Context) {
	var query entity.ArticleQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	articles, meta, err := h.content.ListArticles(ctx, viewer(c), query)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.ArticleListResponse{Articles: articles, Meta: meta})
}

func (h *HTTPHandler) GetArticle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	article, err := h.content.ReadArticle(ctx, strings.TrimSpace(c.Param("slug")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *HTTPHandler) CreateArticle(c *gin.Context) {
	var req entity.ArticleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	article, err := h.content.CreateArticle(ctx, currentSubject(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

func (h *HTTPHandler) UpdateArticle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req entity.ArticleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	article, err := h.content.UpdateArticle(ctx, currentSubject(c), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *HTTPHandler) DeleteArticle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.content.DeleteArticle(ctx, currentSubject(c), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) UploadArticleImage(c *gin.Context) {
	h.uploadContentImage(c, h.content.SetArticleImage)
}

func (h *HTTPHandler) ListCourses(c *gin.Context) {
	var query entity.CourseQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	courses, meta, err := h.content.ListCourses(ctx, viewer(c), query)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.CourseListResponse{Courses: courses, Meta: meta})
}

func (h *HTTPHandler) GetCourse(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	course, err := h.content.GetCourse(ctx, strings.TrimSpace(c.Param("slug")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *HTTPHandler) CreateCourse(c *gin.Context) {
	var req entity.CourseCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	course, err := h.content.CreateCourse(ctx, currentSubject(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *HTTPHandler) AddCourseModule(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req entity.ModuleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	module, err := h.content.AddModule(ctx, currentSubject(c), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, module)
}

func (h *HTTPHandler) UploadCourseImage(c *gin.Context) {
	h.uploadContentImage(c, h.content.SetCourseImage)
}

func (h *HTTPHandler) EnrollCourse(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	enrollment, err := h.content.Enroll(ctx, currentSubject(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

func (h *HTTPHandler) ListEnrollments(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	enrollments, err := h.content.ListEnrollments(ctx, currentSubject(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollments)
}

func (h *HTTPHandler) CompleteLesson(c *gin.Context) {
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	lessonID, ok := parseIDParam(c, "lessonId")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	enrollment, err := h.content.CompleteLesson(ctx, currentSubject(c), courseID, lessonID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

type imageSetter func(ctx context.Context, subject rbac.Subject, id uint, reader io.Reader, filename, contentType string) (*service.StoredFile, error)

func (h *HTTPHandler) uploadContentImage(c *gin.Context, set imageSetter) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	file, ok := readUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	stored, err := set(ctx, currentSubject(c), id, file.Reader(), file.Filename(), file.ContentType())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.ImageUploadResponse{Message: "Image uploaded successfully", URL: stored.URL})
}
