package sql

import (
	"context"
	"fmt"
	"skillchain/internal/entity"
	"strings"
)

var demoSortColumns = map[string]string{
	"created_at":   "created_at",
	"company_name": "company_name",
	"status":       "status",
	"email":        "email",
}

func (r *GormRepository) CreateDemoRequest(ctx context.Context, request *entity.DbDemoRequest) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if request == nil {
		return fmt.Errorf("demo request is nil")
	}
	request.Email = strings.ToLower(strings.TrimSpace(request.Email))
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *GormRepository) GetDemoRequest(ctx context.Context, id uint) (*entity.DbDemoRequest, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid demo request id")
	}
	var request entity.DbDemoRequest
	if err := r.db.WithContext(ctx).First(&request, id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// FindPendingDemoRequest returns the pending request for email, if any.
func (r *GormRepository) FindPendingDemoRequest(ctx context.Context, email string) (*entity.DbDemoRequest, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var request entity.DbDemoRequest
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ? AND status = ?", strings.ToLower(strings.TrimSpace(email)), entity.DemoStatusPending).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ListDemoRequests pages demo requests, newest first.
func (r *GormRepository) ListDemoRequests(ctx context.Context, params *entity.DemoRequestQuery) ([]entity.DbDemoRequest, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, errNotInitialised
	}
	var records []entity.DbDemoRequest
	var totalCount int64

	query := r.db.WithContext(ctx).Model(&entity.DbDemoRequest{})
	var base *entity.BaseParams
	if params != nil {
		base = &params.BaseParams
		if status := strings.TrimSpace(params.Status); status != "" {
			query = query.Where("status = ?", status)
		}
	}

	if err := query.Count(&totalCount).Error; err != nil {
		return nil, nil, err
	}

	page := pageOf(base)
	query = query.Offset(page.Offset()).Limit(int(page.PageSize))

	// Only whitelisted columns may be used for sorting
	if base != nil && base.SortBy != "" {
		column, ok := demoSortColumns[base.SortBy]
		if !ok {
			return nil, nil, fmt.Errorf("unsupported sort column: %s", base.SortBy)
		}
		direction := "ASC"
		if base.SortDesc {
			direction = "DESC"
		}
		query = query.Order(column + " " + direction)
	} else {
		query = query.Order("created_at DESC, id DESC")
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, nil, err
	}

	meta := pageMeta(page, totalCount)
	return records, meta, nil
}

func (r *GormRepository) UpdateDemoRequest(ctx context.Context, id uint, updates entity.DemoReviewUpdates) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid demo request id")
	}
	return r.db.WithContext(ctx).Model(&entity.DbDemoRequest{}).Where("id = ?", id).Updates(updates.ToMap()).Error
}
