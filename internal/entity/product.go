package entity

import "time"

// Material is one component of a product's fibre composition.
type Material struct {
	Material      string  `json:"material" binding:"required"`
	Percentage    float64 `json:"percentage"`
	Origin        string  `json:"origin,omitempty"`
	Certification string  `json:"certification,omitempty"`
}

// DbProduct is a garment with a digital product passport.
type DbProduct struct {
	ID                 uint         `gorm:"primarykey" json:"id"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
	FactoryID          uint         `gorm:"column:factory_id;index;not null" json:"factory_id"`
	SKU                string       `gorm:"column:sku;type:varchar(128);uniqueIndex;not null" json:"sku"`
	Name               string       `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description        string       `gorm:"column:description;type:text" json:"description"`
	Category           string       `gorm:"column:category;type:varchar(128)" json:"category"`
	PassportID         string       `gorm:"column:dpp_id;type:varchar(64);uniqueIndex;not null" json:"dpp_id"`
	Materials          MaterialList `gorm:"column:materials;type:text" json:"materials"`
	OriginCountry      string       `gorm:"column:origin_country;type:varchar(128)" json:"origin_country"`
	RawMaterialSource  string       `gorm:"column:raw_material_source;type:varchar(255)" json:"raw_material_source"`
	CarbonFootprintKg  *float64     `gorm:"column:carbon_footprint_kg" json:"carbon_footprint_kg"`
	WaterUsageLiters   *float64     `gorm:"column:water_usage_liters" json:"water_usage_liters"`
	RecycledContentPct *float64     `gorm:"column:recycled_content_percentage" json:"recycled_content_percentage"`
	Certifications     StringArray  `gorm:"column:certifications;type:text" json:"certifications"`
	Images             StringArray  `gorm:"column:product_images;type:text" json:"product_images"`
	QRCodeURL          string       `gorm:"column:qr_code_url;type:varchar(512)" json:"qr_code_url"`
	BatchID            *uint        `gorm:"column:batch_id" json:"batch_id"`
	ComplianceVerified bool         `gorm:"column:compliance_verified;not null;default:false" json:"compliance_verified"`
	ManufacturedDate   *time.Time   `gorm:"column:manufactured_date" json:"manufactured_date"`
}

func (DbProduct) TableName() string {
	return "products"
}

// ProductQuery lists products of one factory, or all factories when FactoryID is zero.
type ProductQuery struct {
	BaseParams
	FactoryID uint   `form:"-"`
	Category  string `json:"category" form:"category"`
	Keyword   string `json:"keyword" form:"keyword"`
}

type ProductCreateRequest struct {
	SKU                string     `json:"sku" binding:"required"`
	Name               string     `json:"name" binding:"required"`
	Description        string     `json:"description"`
	Category           string     `json:"category" binding:"required"`
	Materials          []Material `json:"materials" binding:"required,dive"`
	OriginCountry      string     `json:"origin_country" binding:"required"`
	RawMaterialSource  string     `json:"raw_material_source"`
	CarbonFootprintKg  *float64   `json:"carbon_footprint_kg"`
	WaterUsageLiters   *float64   `json:"water_usage_liters"`
	RecycledContentPct *float64   `json:"recycled_content_percentage"`
	Certifications     []string   `json:"certifications"`
	ManufacturedDate   string     `json:"manufactured_date"`
	FactoryID          *uint      `json:"factory_id,omitempty"`
}

type ProductUpdateRequest struct {
	Name               *string    `json:"name,omitempty"`
	Description        *string    `json:"description,omitempty"`
	Category           *string    `json:"category,omitempty"`
	Materials          []Material `json:"materials,omitempty"`
	OriginCountry      *string    `json:"origin_country,omitempty"`
	RawMaterialSource  *string    `json:"raw_material_source,omitempty"`
	CarbonFootprintKg  *float64   `json:"carbon_footprint_kg,omitempty"`
	WaterUsageLiters   *float64   `json:"water_usage_liters,omitempty"`
	RecycledContentPct *float64   `json:"recycled_content_percentage,omitempty"`
	Certifications     []string   `json:"certifications,omitempty"`
	ComplianceVerified *bool      `json:"compliance_verified,omitempty"`
}

type ProductListResponse struct {
	Products []DbProduct `json:"products"`
	Meta     *Meta       `json:"meta"`
}

// ComplianceEventBrief is the compact event shape embedded in product detail.
type ComplianceEventBrief struct {
	EventType string    `json:"event_type"`
	Status    string    `json:"status"`
	Area      string    `json:"area"`
	CreatedAt time.Time `json:"created_at"`
}

type ProductDetailResponse struct {
	Product                DbProduct              `json:"product"`
	Factory                *DbFactory             `json:"factory"`
	RecentComplianceEvents []ComplianceEventBrief `json:"recent_compliance_events"`
}

// Manufacturer identifies the factory in a public passport.
type Manufacturer struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type EnvironmentalImpact struct {
	CarbonFootprintKg  *float64 `json:"carbon_footprint_kg"`
	WaterUsageLiters   *float64 `json:"water_usage_liters"`
	RecycledContentPct *float64 `json:"recycled_content_percentage"`
}

type Origin struct {
	Country           string `json:"country"`
	RawMaterialSource string `json:"raw_material_source"`
}

// TypeStatus is the latest recorded result for one compliance event type.
type TypeStatus struct {
	Status string    `json:"status"`
	Date   time.Time `json:"date"`
	Area   string    `json:"area"`
}

type ComplianceStatus struct {
	Verified     bool                  `json:"verified"`
	Score        float64               `json:"score"`
	TotalChecks  int64                 `json:"total_checks"`
	PassedChecks int64                 `json:"passed_checks"`
	ByType       map[string]TypeStatus `json:"by_type"`
}

type SupplyChain struct {
	ManufacturedDate *time.Time `json:"manufactured_date"`
	BatchTracking    bool       `json:"batch_tracking"`
}

// PublicPassport is the unauthenticated view reached by scanning a product QR code.
type PublicPassport struct {
	PassportID          string              `json:"dpp_id"`
	ProductName         string              `json:"product_name"`
	Category            string              `json:"category"`
	SKU                 string              `json:"sku"`
	Description         string              `json:"description"`
	Manufacturer        Manufacturer        `json:"manufacturer"`
	Materials           []Material          `json:"materials"`
	EnvironmentalImpact EnvironmentalImpact `json:"environmental_impact"`
	Certifications      []string            `json:"certifications"`
	Origin              Origin              `json:"origin"`
	ComplianceStatus    ComplianceStatus    `json:"compliance_status"`
	SupplyChain         SupplyChain         `json:"supply_chain"`
	Images              []string            `json:"images"`
	QRCodeURL           string              `json:"qr_code_url"`
	LastUpdated         time.Time           `json:"last_updated"`
	Batch               *PublicBatch        `json:"batch,omitempty"`
}

// PublicBatch is the production run a scanned batch label points at.
type PublicBatch struct {
	ID        uint       `json:"id"`
	BatchCode string     `json:"batch_code"`
	Quantity  int        `json:"quantity"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// PassportVerification answers whether a passport id is genuine.
type PassportVerification struct {
	Valid              bool   `json:"valid"`
	Message            string `json:"message,omitempty"`
	ProductName        string `json:"product_name,omitempty"`
	Manufacturer       string `json:"manufacturer,omitempty"`
	ComplianceVerified *bool  `json:"compliance_verified,omitempty"`
}
