package entity

import "time"

// UserUpdates holds the optional user columns to change.
type UserUpdates struct {
	DisplayName  *string
	Role         *string
	FactoryID    *uint
	ClearFactory bool
	PasswordHash *string
	IsActive     *bool
}

// ToMap converts the set fields into a gorm update map.
func (u UserUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.DisplayName != nil {
		updates["display_name"] = *u.DisplayName
	}
	if u.Role != nil {
		updates["role"] = *u.Role
	}
	if u.ClearFactory {
		updates["factory_id"] = nil
	} else if u.FactoryID != nil {
		updates["factory_id"] = *u.FactoryID
	}
	if u.PasswordHash != nil {
		updates["password_hash"] = *u.PasswordHash
	}
	if u.IsActive != nil {
		updates["is_active"] = *u.IsActive
	}
	return updates
}

// IsEmpty reports whether no field is set.
func (u UserUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// ProductUpdates holds mutable passport fields. The passport id and SKU are never updated.
type ProductUpdates struct {
	Name               *string
	Description        *string
	Category           *string
	Materials          *MaterialList
	OriginCountry      *string
	RawMaterialSource  *string
	CarbonFootprintKg  *float64
	WaterUsageLiters   *float64
	RecycledContentPct *float64
	Certifications     *StringArray
	Images             *StringArray
	QRCodeURL          *string
	BatchID            *uint
	ComplianceVerified *bool
}

func (u ProductUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.Description != nil {
		updates["description"] = *u.Description
	}
	if u.Category != nil {
		updates["category"] = *u.Category
	}
	if u.Materials != nil {
		updates["materials"] = *u.Materials
	}
	if u.OriginCountry != nil {
		updates["origin_country"] = *u.OriginCountry
	}
	if u.RawMaterialSource != nil {
		updates["raw_material_source"] = *u.RawMaterialSource
	}
	if u.CarbonFootprintKg != nil {
		updates["carbon_footprint_kg"] = *u.CarbonFootprintKg
	}
	if u.WaterUsageLiters != nil {
		updates["water_usage_liters"] = *u.WaterUsageLiters
	}
	if u.RecycledContentPct != nil {
		updates["recycled_content_percentage"] = *u.RecycledContentPct
	}
	if u.Certifications != nil {
		updates["certifications"] = *u.Certifications
	}
	if u.Images != nil {
		updates["product_images"] = *u.Images
	}
	if u.QRCodeURL != nil {
		updates["qr_code_url"] = *u.QRCodeURL
	}
	if u.BatchID != nil {
		updates["batch_id"] = *u.BatchID
	}
	if u.ComplianceVerified != nil {
		updates["compliance_verified"] = *u.ComplianceVerified
	}
	return updates
}

func (u ProductUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// ComplianceEventUpdates covers the fields that change after an event is recorded.
type ComplianceEventUpdates struct {
	DocumentURLs *StringArray
	ApprovedBy   *uint
	ApprovedAt   *time.Time
}

func (u ComplianceEventUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.DocumentURLs != nil {
		updates["document_urls"] = *u.DocumentURLs
	}
	if u.ApprovedBy != nil {
		updates["approved_by"] = *u.ApprovedBy
	}
	if u.ApprovedAt != nil {
		updates["approved_at"] = *u.ApprovedAt
	}
	return updates
}

func (u ComplianceEventUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// DemoReviewUpdates records the outcome of reviewing a demo request.
type DemoReviewUpdates struct {
	Status     string
	ReviewedBy *uint
	ReviewedAt time.Time
	AdminNotes *string
	UserID     *uint
}

func (u DemoReviewUpdates) ToMap() map[string]interface{} {
	updates := map[string]interface{}{
		"status":      u.Status,
		"reviewed_at": u.ReviewedAt,
	}
	if u.ReviewedBy != nil {
		updates["reviewed_by"] = *u.ReviewedBy
	}
	if u.AdminNotes != nil {
		updates["admin_notes"] = *u.AdminNotes
	}
	if u.UserID != nil {
		updates["user_id"] = *u.UserID
	}
	return updates
}

type ArticleUpdates struct {
	Title         *string
	Slug          *string
	Excerpt       *string
	Content       *string
	ReadingTime   *int
	FeaturedImage *string
	CategoryID    *uint
	Status        *string
	IsFeatured    *bool
	Tags          *StringArray
	Language      *string
	PublishedAt   *time.Time
}

func (u ArticleUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Title != nil {
		updates["title"] = *u.Title
	}
	if u.Slug != nil {
		updates["slug"] = *u.Slug
	}
	if u.Excerpt != nil {
		updates["excerpt"] = *u.Excerpt
	}
	if u.Content != nil {
		updates["content"] = *u.Content
	}
	if u.ReadingTime != nil {
		updates["reading_time"] = *u.ReadingTime
	}
	if u.FeaturedImage != nil {
		updates["featured_image"] = *u.FeaturedImage
	}
	if u.CategoryID != nil {
		updates["category_id"] = *u.CategoryID
	}
	if u.Status != nil {
		updates["status"] = *u.Status
	}
	if u.IsFeatured != nil {
		updates["is_featured"] = *u.IsFeatured
	}
	if u.Tags != nil {
		updates["tags"] = *u.Tags
	}
	if u.Language != nil {
		updates["language"] = *u.Language
	}
	if u.PublishedAt != nil {
		updates["published_at"] = *u.PublishedAt
	}
	return updates
}

func (u ArticleUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

type CourseUpdates struct {
	FeaturedImage *string
	Duration      *int
}

func (u CourseUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.FeaturedImage != nil {
		updates["featured_image"] = *u.FeaturedImage
	}
	if u.Duration != nil {
		updates["duration"] = *u.Duration
	}
	return updates
}

type EnrollmentUpdates struct {
	Progress         *int
	CompletedLessons *IntArray
	CompletedAt      *time.Time
	LastAccessed     *time.Time
}

func (u EnrollmentUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Progress != nil {
		updates["progress"] = *u.Progress
	}
	if u.CompletedLessons != nil {
		updates["completed_lessons"] = *u.CompletedLessons
	}
	if u.CompletedAt != nil {
		updates["completed_at"] = *u.CompletedAt
	}
	if u.LastAccessed != nil {
		updates["last_accessed"] = *u.LastAccessed
	}
	return updates
}
