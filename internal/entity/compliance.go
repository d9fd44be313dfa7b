package entity

import "time"

// Compliance event statuses.
const (
	ComplianceStatusPass              = "PASS"
	ComplianceStatusFail              = "FAIL"
	ComplianceStatusPending           = "PENDING"
	ComplianceStatusAttentionRequired = "ATTENTION_REQUIRED"
)

// DbComplianceEvent is an append-only record of a compliance check at a factory.
type DbComplianceEvent struct {
	ID           uint        `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time   `gorm:"index" json:"created_at"`
	FactoryID    uint        `gorm:"column:factory_id;index;not null" json:"factory_id"`
	UserID       uint        `gorm:"column:user_id;index;not null" json:"user_id"`
	BatchID      *uint       `gorm:"column:batch_id" json:"batch_id"`
	EventType    string      `gorm:"column:event_type;type:varchar(64);index;not null" json:"event_type"`
	Status       string      `gorm:"column:status;type:varchar(32);index;not null" json:"status"`
	Area         string      `gorm:"column:area;type:varchar(255)" json:"area"`
	EvidenceType string      `gorm:"column:evidence_type;type:varchar(64)" json:"evidence_type"`
	DocumentURLs StringArray `gorm:"column:document_urls;type:text" json:"document_urls"`
	ExpiryDate   *time.Time  `gorm:"column:expiry_date" json:"expiry_date"`
	Notes        string      `gorm:"column:notes;type:text" json:"notes"`
	ApprovedBy   *uint       `gorm:"column:approved_by" json:"approved_by"`
	ApprovedAt   *time.Time  `gorm:"column:approved_at" json:"approved_at"`
}

func (DbComplianceEvent) TableName() string {
	return "compliance_events"
}

// ComplianceEventQuery filters events. A zero FactoryID means every factory.
type ComplianceEventQuery struct {
	FactoryID uint   `form:"factory_id"`
	Status    string `form:"status"`
	EventType string `form:"event_type"`
	Limit     int    `form:"limit"`
}

// ComplianceCounts are raw pass/fail tallies for a factory or the whole platform.
type ComplianceCounts struct {
	Total   int64
	Passed  int64
	Failed  int64
	Pending int64
}

type ComplianceEventCreateRequest struct {
	EventType    string `json:"event_type" binding:"required"`
	Status       string `json:"status" binding:"required"`
	Area         string `json:"area" binding:"required"`
	EvidenceType string `json:"evidence_type"`
	ExpiryDate   string `json:"expiry_date"`
	Notes        string `json:"notes"`
	BatchID      *uint  `json:"batch_id,omitempty"`
}

type ComplianceStats struct {
	Total   int64 `json:"total"`
	Passed  int64 `json:"passed"`
	Failed  int64 `json:"failed"`
	Pending int64 `json:"pending"`
	Score   int64 `json:"score"`
}

type DocumentUploadResponse struct {
	Message string `json:"message"`
	FileURL string `json:"file_url"`
}
