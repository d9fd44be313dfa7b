package api

import (
	"net/http"
	"skillchain/internal/rbac"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the REST API on r.
func (h *HTTPHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	apiGroup := r.Group("/api")

	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.GET("/me", h.AuthMiddleware(), h.Me)
	authGroup.POST("/logout", h.AuthMiddleware(), h.Logout)

	apiGroup.POST("/demo-request/submit", h.SubmitDemoRequest)

	public := apiGroup.Group("/public/dpp")
	public.GET("/verify/:id", h.VerifyPassport)
	public.GET("/batch/:id", h.PublicBatch)
	public.GET("/:id", h.PublicPassport)
	public.GET("/:id/pdf", h.PassportPDF)

	content := apiGroup.Group("/content")
	content.GET("/categories", h.ListCategories)
	content.GET("/articles", h.OptionalAuth(), h.ListArticles)
	content.GET("/articles/:slug", h.GetArticle)
	content.GET("/courses", h.OptionalAuth(), h.ListCourses)
	content.GET("/courses/:slug", h.GetCourse)

	protected := apiGroup.Group("")
	protected.Use(h.AuthMiddleware())

	factories := protected.Group("/factories")
	factories.POST("", h.RequireAdmin(), h.CreateFactory)
	factories.GET("", h.ListFactories)
	factories.GET("/:id", h.GetFactory)

	userAdmin := protected.Group("/users")
	userAdmin.Use(h.RequireAdmin())
	userAdmin.GET("", h.ListUsers)
	userAdmin.PATCH("/:id", h.UpdateUser)
	userAdmin.DELETE("/:id", h.DeleteUser)

	demoAdmin := protected.Group("/demo-request")
	demoAdmin.Use(h.RequireAdmin())
	demoAdmin.GET("/list", h.ListDemoRequests)
	demoAdmin.POST("/:id/approve", h.ApproveDemoRequest)
	demoAdmin.POST("/:id/reject", h.RejectDemoRequest)

	compliance := protected.Group("/compliance")
	compliance.POST("/events", h.RequireCapability(rbac.CapRecordEvents), h.CreateComplianceEvent)
	compliance.GET("/events", h.ListComplianceEvents)
	compliance.GET("/events/:id", h.GetComplianceEvent)
	compliance.POST("/events/:id/upload-document", h.RequireCapability(rbac.CapRecordEvents), h.UploadComplianceDocument)
	compliance.PUT("/events/:id/approve", h.RequireCapability(rbac.CapApproveEvents), h.ApproveComplianceEvent)
	compliance.GET("/stats", h.ComplianceStats)

	products := protected.Group("/dpp/products")
	products.POST("", h.RequireCapability(rbac.CapManageProducts), h.CreateProduct)
	products.GET("", h.ListProducts)
	products.GET("/:id", h.GetProduct)
	products.PATCH("/:id", h.RequireCapability(rbac.CapManageProducts), h.UpdateProduct)
	products.POST("/:id/images", h.RequireCapability(rbac.CapManageProducts), h.UploadProductImage)
	products.POST("/:id/batches", h.RequireCapability(rbac.CapManageProducts), h.CreateBatch)
	products.GET("/:id/batches", h.ListBatches)

	protected.GET("/batches/:id/qr", h.BatchQRCode)
	protected.POST("/upload/:category", h.Upload)

	contentWrites := protected.Group("/content")
	contentWrites.POST("/categories", h.RequireAdmin(), h.CreateCategory)
	contentWrites.POST("/articles", h.RequireCapability(rbac.CapCreateContent), h.CreateArticle)
	contentWrites.PUT("/articles/:id", h.UpdateArticle)
	contentWrites.POST("/articles/:id/upload-image", h.UploadArticleImage)
	contentWrites.DELETE("/articles/:id", h.RequireAdmin(), h.DeleteArticle)
	contentWrites.POST("/courses", h.RequireCapability(rbac.CapCreateContent), h.CreateCourse)
	contentWrites.POST("/courses/:id/modules", h.RequireCapability(rbac.CapCreateContent), h.AddCourseModule)
	contentWrites.POST("/courses/:id/upload-image", h.UploadCourseImage)
	contentWrites.POST("/courses/:id/enroll", h.EnrollCourse)
	contentWrites.GET("/enrollments", h.ListEnrollments)
	contentWrites.POST("/courses/:id/lessons/:lessonId/complete", h.CompleteLesson)
}
