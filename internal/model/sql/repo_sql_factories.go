package sql

import (
	"context"
	"fmt"
	"skillchain/internal/entity"
	"strings"
)

// CreateFactory persists a new factory.
func (r *GormRepository) CreateFactory(ctx context.Context, factory *entity.DbFactory) error {
	if r == nil || r.db == nil {
		return errNotInitialised
	}
	if factory == nil {
		return fmt.Errorf("factory is nil")
	}
	return translateWriteError(r.db.WithContext(ctx).Create(factory).Error)
}

// GetFactory loads a factory by ID.
func (r *GormRepository) GetFactory(ctx context.Context, id uint) (*entity.DbFactory, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid factory id")
	}
	var factory entity.DbFactory
	if err := r.db.WithContext(ctx).First(&factory, id).Error; err != nil {
		return nil, err
	}
	return &factory, nil
}

// GetFactoryByName finds a factory by exact name.
func (r *GormRepository) GetFactoryByName(ctx context.Context, name string) (*entity.DbFactory, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("factory name is empty")
	}
	var factory entity.DbFactory
	if err := r.db.WithContext(ctx).Where("name = ?", trimmed).Order("id ASC").First(&factory).Error; err != nil {
		return nil, err
	}
	return &factory, nil
}

// ListFactories returns every factory ordered by name.
func (r *GormRepository) ListFactories(ctx context.Context) ([]entity.DbFactory, error) {
	if r == nil || r.db == nil {
		return nil, errNotInitialised
	}
	var factories []entity.DbFactory
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&factories).Error; err != nil {
		return nil, err
	}
	return factories, nil
}
