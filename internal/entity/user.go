package entity

import (
	"skillchain/internal/rbac"
	"time"
)

// DbUser is an account. Factory roles (worker, manager, factory_admin) always carry a
// factory id; buyers and platform admins never do.
type DbUser struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	DisplayName  string    `gorm:"column:display_name;type:varchar(255)" json:"display_name"`
	Role         string    `gorm:"column:role;type:varchar(50);index;not null" json:"role"`
	FactoryID    *uint     `gorm:"column:factory_id;index" json:"factory_id"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
}

func (DbUser) TableName() string {
	return "users"
}

// Subject is the authorization view of the account.
func (u *DbUser) Subject() rbac.Subject {
	return rbac.Subject{UserID: u.ID, Role: u.Role, FactoryID: u.FactoryID}
}

// Summary is the client-facing view, with the role's UI label.
func (u *DbUser) Summary() UserSummary {
	if u == nil {
		return UserSummary{}
	}
	return UserSummary{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		RoleLabel:   rbac.DisplayName(u.Role),
		FactoryID:   u.FactoryID,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type UserSummary struct {
	ID          uint      `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	RoleLabel   string    `json:"role_label"`
	FactoryID   *uint     `json:"factory_id"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserQuery filters the admin user list.
type UserQuery struct {
	BaseParams
	Role      string `form:"role"`
	Keyword   string `form:"keyword"`
	FactoryID uint   `form:"factory_id"`
	Active    *bool  `form:"active"`
}

type UserListResponse struct {
	Users []UserSummary `json:"users"`
	Meta  *Meta         `json:"meta"`
}

// AuthRegisterRequest accepts either canonical role names or the sign-up form labels
// ("Factory Owner", "Compliance Manager", ...).
type AuthRegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"name"`
	Role        string `json:"role" binding:"required"`
	FactoryID   *uint  `json:"factory_id,omitempty"`
}

type AuthLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        UserSummary `json:"user"`
}

// UserUpdateRequest is an admin patch; nil fields are left unchanged.
type UserUpdateRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	Role        *string `json:"role,omitempty"`
	FactoryID   *uint   `json:"factory_id,omitempty"`
	Password    *string `json:"password,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}
