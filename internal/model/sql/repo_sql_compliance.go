package sql

import (
	"context"
	"fmt"
	"skillchain/internal/entity"
	"strings"
)

func (r *GormRepository) CreateComplianceEvent(ctx context.Context, event *entity.DbComplianceEvent) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if event == nil {
		return fmt.Errorf("compliance event is nil")
	}
	if event.DocumentURLs == nil {
		event.DocumentURLs = entity.StringArray{}
	}
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *GormRepository) GetComplianceEvent(ctx context.Context, id uint) (*entity.DbComplianceEvent, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid compliance event id")
	}
	var event entity.DbComplianceEvent
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *GormRepository) UpdateComplianceEvent(ctx context.Context, id uint, updates entity.ComplianceEventUpdates) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if id == 0 {
		return fmt.Errorf("invalid compliance event id")
	}
	if updates.IsEmpty() {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbComplianceEvent{}).Where("id = ?", id).Updates(updates.ToMap()).Error
}

// ListComplianceEvents returns events newest first. Ties on created_at fall
// back to the higher id so that the order is total.
func (r *GormRepository) ListComplianceEvents(ctx context.Context, params *entity.ComplianceEventQuery) ([]entity.DbComplianceEvent, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}

	query := r.db.WithContext(ctx).Model(&entity.DbComplianceEvent{})
	if params != nil {
		if params.FactoryID > 0 {
			query = query.Where("factory_id = ?", params.FactoryID)
		}
		if status := strings.TrimSpace(params.Status); status != "" {
			query = query.Where("status = ?", status)
		}
		if eventType := strings.TrimSpace(params.EventType); eventType != "" {
			query = query.Where("event_type = ?", eventType)
		}
		if params.Limit > 0 {
			query = query.Limit(params.Limit)
		}
	}

	var events []entity.DbComplianceEvent
	if err := query.Order("created_at DESC, id DESC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// CountComplianceEvents tallies events by outcome. A zero factoryID counts every factory.
func (r *GormRepository) CountComplianceEvents(ctx context.Context, factoryID uint) (entity.ComplianceCounts, error) {
	var counts entity.ComplianceCounts
	if r == nil || r.db == nil {
		return counts, errNotInitialised
	}

	type statusCount struct {
		Status string
		Total  int64
	}
	query := r.db.WithContext(ctx).Model(&entity.DbComplianceEvent{}).Select("status, COUNT(*) AS total")
	if factoryID > 0 {
		query = query.Where("factory_id = ?", factoryID)
	}
	var rows []statusCount
	if err := query.Group("status").Scan(&rows).Error; err != nil {
		return counts, err
	}

	for _, row := range rows {
		counts.Total += row.Total
		switch row.Status {
		case entity.ComplianceStatusPass:
			counts.Passed += row.Total
		case entity.ComplianceStatusFail:
			counts.Failed += row.Total
		case entity.ComplianceStatusPending:
			counts.Pending += row.Total
		}
	}
	return counts, nil
}
