package service

import (
	"context"
	"skillchain/internal/entity"
	"skillchain/internal/model"
	"skillchain/internal/rbac"
	"strings"
)

// FactoryService exposes the factory directory.
type FactoryService struct {
	repo model.Repository
}

func NewFactoryService(repo model.Repository) *FactoryService {
	return &FactoryService{repo: repo}
}

func (s *FactoryService) Create(ctx context.Context, subject rbac.Subject, req entity.FactoryCreateRequest) (*entity.DbFactory, error) {
	if err := authorize(subject, rbac.CapAdministerPlatform); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("factory name is required")
	}
	factory := &entity.DbFactory{Name: name, Location: strings.TrimSpace(req.Location)}
	if err := s.repo.CreateFactory(ctx, factory); err != nil {
		return nil, upstream("failed to create factory", err)
	}
	return factory, nil
}

// List returns every factory for platform administrators and the caller's own otherwise.
func (s *FactoryService) List(ctx context.Context, subject rbac.Subject) ([]entity.DbFactory, error) {
	if subject.IsPlatformAdmin() {
		factories, err := s.repo.ListFactories(ctx)
		if err != nil {
			return nil, upstream("failed to load factories", err)
		}
		return factories, nil
	}
	if !subject.HasFactory() {
		return []entity.DbFactory{}, nil
	}
	factory, err := s.repo.GetFactory(ctx, *subject.FactoryID)
	if err != nil {
		return nil, lookupError("factory", err)
	}
	return []entity.DbFactory{*factory}, nil
}

func (s *FactoryService) Get(ctx context.Context, subject rbac.Subject, id uint) (*entity.DbFactory, error) {
	if err := scopeError("factory", rbac.AuthorizeOwnership(subject, id)); err != nil {
		return nil, err
	}
	factory, err := s.repo.GetFactory(ctx, id)
	if err != nil {
		return nil, lookupError("factory", err)
	}
	return factory, nil
}
