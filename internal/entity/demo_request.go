package entity

import "time"

const (
	DemoStatusPending  = "pending"
	DemoStatusApproved = "approved"
	DemoStatusRejected = "rejected"
)

// DbDemoRequest is a prospective customer's request for an account.
type DbDemoRequest struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CompanyName   string     `gorm:"column:company_name;type:varchar(255);not null" json:"company_name"`
	Industry      string     `gorm:"column:industry;type:varchar(255)" json:"industry"`
	CompanySize   string     `gorm:"column:company_size;type:varchar(64)" json:"company_size"`
	ContactName   string     `gorm:"column:contact_name;type:varchar(255);not null" json:"contact_name"`
	Email         string     `gorm:"column:email;type:varchar(255);index;not null" json:"email"`
	Phone         string     `gorm:"column:phone;type:varchar(64)" json:"phone"`
	PasswordHash  string     `gorm:"column:password_hash;type:varchar(255)" json:"-"`
	RequestedRole string     `gorm:"column:requested_role;type:varchar(50);not null" json:"requested_role"`
	Message       string     `gorm:"column:message;type:text" json:"message"`
	Status        string     `gorm:"column:status;type:varchar(20);index;not null;default:pending" json:"status"`
	ReviewedBy    *uint      `gorm:"column:reviewed_by" json:"reviewed_by"`
	ReviewedAt    *time.Time `gorm:"column:reviewed_at" json:"reviewed_at"`
	AdminNotes    string     `gorm:"column:admin_notes;type:text" json:"admin_notes"`
	UserID        *uint      `gorm:"column:user_id" json:"user_id"`
}

func (DbDemoRequest) TableName() string {
	return "demo_requests"
}

type DemoRequestQuery struct {
	BaseParams
	Status string `json:"status" form:"status"`
}

type DemoSubmitRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	Industry    string `json:"industry"`
	CompanySize string `json:"company_size"`
	ContactName string `json:"contact_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
	Password    string `json:"password" binding:"required,min=8"`
	Role        string `json:"role" binding:"required"`
	Message     string `json:"message"`
}

type DemoApproveRequest struct {
	FactoryID *uint  `json:"factory_id,omitempty"`
	Password  string `json:"password,omitempty"`
}

type DemoRejectRequest struct {
	Reason string `json:"reason"`
}

type DemoSubmitResponse struct {
	Message string        `json:"message"`
	Request DbDemoRequest `json:"request"`
	UserID  *uint         `json:"user_id,omitempty"`
}

type DemoRequestListResponse struct {
	Requests []DbDemoRequest `json:"requests"`
	Meta     *Meta           `json:"meta"`
}
