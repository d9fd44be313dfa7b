package entity

import "time"

// Content publication states shared by articles and courses.
const (
	ContentStatusDraft     = "draft"
	ContentStatusPublished = "published"
	ContentStatusArchived  = "archived"
)

type DbCategory struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Name        string    `gorm:"column:name;type:varchar(255);uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"column:slug;type:varchar(255);uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Icon        string    `gorm:"column:icon;type:varchar(64)" json:"icon"`
	Order       int       `gorm:"column:display_order;not null;default:0" json:"order"`
}

func (DbCategory) TableName() string {
	return "categories"
}

type DbArticle struct {
	ID            uint        `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	Title         string      `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Slug          string      `gorm:"column:slug;type:varchar(255);uniqueIndex;not null" json:"slug"`
	Excerpt       string      `gorm:"column:excerpt;type:text" json:"excerpt"`
	Content       string      `gorm:"column:content;type:text;not null" json:"content"`
	FeaturedImage string      `gorm:"column:featured_image;type:varchar(512)" json:"featured_image"`
	AuthorID      uint        `gorm:"column:author_id;index" json:"author_id"`
	CategoryID    *uint       `gorm:"column:category_id;index" json:"category_id"`
	Status        string      `gorm:"column:status;type:varchar(20);index;not null;default:draft" json:"status"`
	IsFeatured    bool        `gorm:"column:is_featured;not null;default:false" json:"is_featured"`
	Tags          StringArray `gorm:"column:tags;type:text" json:"tags"`
	ReadingTime   int         `gorm:"column:reading_time" json:"reading_time"`
	Views         int64       `gorm:"column:views;not null;default:0" json:"views"`
	Language      string      `gorm:"column:language;type:varchar(8);not null;default:en" json:"language"`
	PublishedAt   *time.Time  `gorm:"column:published_at" json:"published_at"`
}

func (DbArticle) TableName() string {
	return "articles"
}

type DbCourse struct {
	ID               uint             `gorm:"primarykey" json:"id"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	Title            string           `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Slug             string           `gorm:"column:slug;type:varchar(255);uniqueIndex;not null" json:"slug"`
	Description      string           `gorm:"column:description;type:text" json:"description"`
	FeaturedImage    string           `gorm:"column:featured_image;type:varchar(512)" json:"featured_image"`
	InstructorID     uint             `gorm:"column:instructor_id;index" json:"instructor_id"`
	CategoryID       *uint            `gorm:"column:category_id;index" json:"category_id"`
	Status           string           `gorm:"column:status;type:varchar(20);index;not null;default:draft" json:"status"`
	IsFeatured       bool             `gorm:"column:is_featured;not null;default:false" json:"is_featured"`
	Level            string           `gorm:"column:level;type:varchar(32)" json:"level"`
	Duration         int              `gorm:"column:duration;not null;default:0" json:"duration"`
	Language         string           `gorm:"column:language;type:varchar(8);not null;default:en" json:"language"`
	Tags             StringArray      `gorm:"column:tags;type:text" json:"tags"`
	LearningOutcomes StringArray      `gorm:"column:learning_outcomes;type:text" json:"learning_outcomes"`
	Prerequisites    StringArray      `gorm:"column:prerequisites;type:text" json:"prerequisites"`
	Price            int              `gorm:"column:price;not null;default:0" json:"price"`
	EnrollmentCount  int64            `gorm:"column:enrollment_count;not null;default:0" json:"enrollment_count"`
	PublishedAt      *time.Time       `gorm:"column:published_at" json:"published_at"`
	Modules          []DbCourseModule `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

func (DbCourse) TableName() string {
	return "courses"
}

type DbCourseModule struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	CourseID    uint       `gorm:"column:course_id;index;not null" json:"course_id"`
	Title       string     `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	Order       int        `gorm:"column:display_order;not null;default:0" json:"order"`
	Lessons     []DbLesson `gorm:"foreignKey:ModuleID" json:"lessons,omitempty"`
}

func (DbCourseModule) TableName() string {
	return "course_modules"
}

type DbLesson struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ModuleID  uint      `gorm:"column:module_id;index;not null" json:"module_id"`
	Title     string    `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Content   string    `gorm:"column:content;type:text" json:"content"`
	VideoURL  string    `gorm:"column:video_url;type:varchar(512)" json:"video_url"`
	Duration  int       `gorm:"column:duration;not null;default:0" json:"duration"`
	Order     int       `gorm:"column:display_order;not null;default:0" json:"order"`
	IsFree    bool      `gorm:"column:is_free;not null;default:false" json:"is_free"`
}

func (DbLesson) TableName() string {
	return "lessons"
}

type DbEnrollment struct {
	ID               uint       `gorm:"primarykey" json:"id"`
	UserID           uint       `gorm:"column:user_id;uniqueIndex:idx_enrollment_user_course;not null" json:"user_id"`
	CourseID         uint       `gorm:"column:course_id;uniqueIndex:idx_enrollment_user_course;not null" json:"course_id"`
	Progress         int        `gorm:"column:progress;not null;default:0" json:"progress"`
	CompletedLessons IntArray   `gorm:"column:completed_lessons;type:text" json:"completed_lessons"`
	EnrolledAt       time.Time  `gorm:"column:enrolled_at" json:"enrolled_at"`
	CompletedAt      *time.Time `gorm:"column:completed_at" json:"completed_at"`
	LastAccessed     time.Time  `gorm:"column:last_accessed" json:"last_accessed"`
}

func (DbEnrollment) TableName() string {
	return "course_enrollments"
}

type ArticleQuery struct {
	BaseParams
	Status     string `form:"status"`
	CategoryID uint   `form:"category_id"`
	Language   string `form:"language"`
	Search     string `form:"search"`
	Featured   *bool  `form:"featured"`
}

type CourseQuery struct {
	BaseParams
	Status     string `form:"status"`
	CategoryID uint   `form:"category_id"`
	Level      string `form:"level"`
	Language   string `form:"language"`
}

type CategoryCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Order       int    `json:"order"`
}

type ArticleCreateRequest struct {
	Title      string   `json:"title" binding:"required"`
	Excerpt    string   `json:"excerpt"`
	Content    string   `json:"content" binding:"required"`
	CategoryID *uint    `json:"category_id,omitempty"`
	Status     string   `json:"status"`
	IsFeatured bool     `json:"is_featured"`
	Tags       []string `json:"tags"`
	Language   string   `json:"language"`
}

type ArticleUpdateRequest struct {
	Title      *string  `json:"title,omitempty"`
	Excerpt    *string  `json:"excerpt,omitempty"`
	Content    *string  `json:"content,omitempty"`
	CategoryID *uint    `json:"category_id,omitempty"`
	Status     *string  `json:"status,omitempty"`
	IsFeatured *bool    `json:"is_featured,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Language   *string  `json:"language,omitempty"`
}

type CourseCreateRequest struct {
	Title            string   `json:"title" binding:"required"`
	Description      string   `json:"description"`
	CategoryID       *uint    `json:"category_id,omitempty"`
	Status           string   `json:"status"`
	IsFeatured       bool     `json:"is_featured"`
	Level            string   `json:"level"`
	Language         string   `json:"language"`
	Tags             []string `json:"tags"`
	LearningOutcomes []string `json:"learning_outcomes"`
	Prerequisites    []string `json:"prerequisites"`
	Price            int      `json:"price" binding:"gte=0"`
}

type LessonCreateRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content"`
	VideoURL string `json:"video_url"`
	Duration int    `json:"duration" binding:"gte=0"`
	IsFree   bool   `json:"is_free"`
}

type ModuleCreateRequest struct {
	Title       string                `json:"title" binding:"required"`
	Description string                `json:"description"`
	Lessons     []LessonCreateRequest `json:"lessons" binding:"dive"`
}

type ArticleListResponse struct {
	Articles []DbArticle `json:"articles"`
	Meta     *Meta       `json:"meta"`
}

type CourseListResponse struct {
	Courses []DbCourse `json:"courses"`
	Meta    *Meta      `json:"meta"`
}

type ImageUploadResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}
