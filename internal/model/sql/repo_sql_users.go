package sql

import (
	"context"
	"errors"
	"fmt"
	"skillchain/internal/entity"
	"strings"

	"gorm.io/gorm"
)

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser stores the account with a lower-cased email. A taken email yields gorm.ErrDuplicatedKey.
func (r *GormRepository) CreateUser(ctx context.Context, user *entity.DbUser) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if user == nil {
		return errors.New("user is nil")
	}
	user.Email = normaliseEmail(user.Email)
	return translateWriteError(r.db.WithContext(ctx).Create(user).Error)
}

func (r *GormRepository) UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid user id")
	}
	if updates.IsEmpty() {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbUser{ID: id}).Updates(updates.ToMap()).Error
}

func (r *GormRepository) GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	email = normaliseEmail(email)
	if email == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var user entity.DbUser
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepository) GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	if id == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var user entity.DbUser
	if err := r.db.WithContext(ctx).Take(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers filters by role, factory, active flag and an email/name keyword, newest accounts first.
func (r *GormRepository) ListUsers(ctx context.Context, params *entity.UserQuery) ([]entity.DbUser, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, errNotInitialised
	}
	var filter entity.UserQuery
	if params != nil {
		filter = *params
	}

	query := r.db.WithContext(ctx).Model(&entity.DbUser{})
	if role := strings.TrimSpace(filter.Role); role != "" {
		query = query.Where("role = ?", role)
	}
	if filter.FactoryID > 0 {
		query = query.Where("factory_id = ?", filter.FactoryID)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	if keyword := strings.ToLower(strings.TrimSpace(filter.Keyword)); keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("email LIKE ? OR LOWER(display_name) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}
	page := pageOf(&filter.BaseParams)
	var users []entity.DbUser
	if err := query.Order("id DESC").Offset(page.Offset()).Limit(int(page.PageSize)).Find(&users).Error; err != nil {
		return nil, nil, err
	}
	return users, pageMeta(page, total), nil
}

// DeleteUser removes the account together with its course enrollments. Compliance events
// recorded by the user are kept.
func (r *GormRepository) DeleteUser(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if id == 0 {
		return gorm.ErrRecordNotFound
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&entity.DbUser{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("user_id = ?", id).Delete(&entity.DbEnrollment{}).Error
	})
}
