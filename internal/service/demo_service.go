package service

import (
	"context"
	"errors"
	"skillchain/internal/auth"
	"skillchain/internal/entity"
	"skillchain/internal/model"
	"skillchain/internal/rbac"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const defaultFactoryLocation = "Bangladesh"

var errFactoryExists = errors.New("factory already registered")

var demoRoles = []string{rbac.RoleFactoryAdmin, rbac.RoleManager, rbac.RoleBuyer, rbac.RolePlatformAdmin}

// DemoService manages account requests submitted from the public site.
type DemoService struct {
	repo        model.Repository
	autoApprove bool
	now         func() time.Time
}

func NewDemoService(repo model.Repository, autoApprove bool) *DemoService {
	return &DemoService{repo: repo, autoApprove: autoApprove, now: time.Now}
}

// Submit stores a demo request. With auto-approval enabled buyers, and factory roles
// naming a company that has no factory yet, get an account immediately. Everything
// else waits for a platform administrator.
func (s *DemoService) Submit(ctx context.Context, req entity.DemoSubmitRequest) (*entity.DbDemoRequest, error) {
	email := normaliseEmail(req.Email)
	if email == "" {
		return nil, validationError("email is required")
	}
	if strings.TrimSpace(req.CompanyName) == "" || strings.TrimSpace(req.ContactName) == "" {
		return nil, validationError("company name and contact name are required")
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, validationError("%v", err)
	}
	role := rbac.Normalize(req.Role)
	if !containsString(demoRoles, role) {
		return nil, ErrInvalidRole
	}

	if _, err := s.repo.FindPendingDemoRequest(ctx, email); err == nil {
		return nil, ErrPendingRequest
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, upstream("failed to check demo requests", err)
	}
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, upstream("failed to check email", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, upstream("failed to hash password", err)
	}

	request := &entity.DbDemoRequest{
		CompanyName:   strings.TrimSpace(req.CompanyName),
		Industry:      strings.TrimSpace(req.Industry),
		CompanySize:   strings.TrimSpace(req.CompanySize),
		ContactName:   strings.TrimSpace(req.ContactName),
		Email:         email,
		Phone:         strings.TrimSpace(req.Phone),
		PasswordHash:  hash,
		RequestedRole: role,
		Message:       strings.TrimSpace(req.Message),
		Status:        entity.DemoStatusPending,
	}

	if !s.autoApprove || role == rbac.RolePlatformAdmin {
		return s.storePending(ctx, request)
	}

	err = s.repo.Transaction(ctx, func(tx model.Repository) error {
		var factoryID *uint
		if rbac.RequiresFactory(role) {
			factory, err := createDemoFactory(ctx, tx, request.CompanyName, request.Industry)
			if err != nil {
				return err
			}
			factoryID = &factory.ID
		}

		user := &entity.DbUser{
			Email:        email,
			PasswordHash: hash,
			DisplayName:  request.ContactName,
			Role:         role,
			FactoryID:    factoryID,
			IsActive:     true,
		}
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}

		reviewedAt := s.now().UTC()
		request.Status = entity.DemoStatusApproved
		request.ReviewedAt = &reviewedAt
		request.UserID = &user.ID
		return tx.CreateDemoRequest(ctx, request)
	})
	if errors.Is(err, errFactoryExists) {
		// Joining an existing factory needs an administrator's approval.
		return s.storePending(ctx, request)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, upstream("failed to create demo account", err)
	}

	logrus.WithFields(logrus.Fields{"request_id": request.ID, "user_id": *request.UserID, "role": role}).Info("demo request auto-approved")
	return request, nil
}

// List returns demo requests, optionally filtered by status. Platform administrators only.
func (s *DemoService) List(ctx context.Context, subject rbac.Subject, query entity.DemoRequestQuery) ([]entity.DbDemoRequest, *entity.Meta, error) {
	if err := authorize(subject, rbac.CapAdministerPlatform); err != nil {
		return nil, nil, err
	}
	query.Normalise(20, 100)
	records, meta, err := s.repo.ListDemoRequests(ctx, &query)
	if err != nil {
		return nil, nil, upstream("failed to load demo requests", err)
	}
	return records, meta, nil
}

// Approve creates the requested account and marks the request approved.
func (s *DemoService) Approve(ctx context.Context, reviewer rbac.Subject, id uint, req entity.DemoApproveRequest) (*entity.DbDemoRequest, *entity.DbUser, error) {
	if err := authorize(reviewer, rbac.CapAdministerPlatform); err != nil {
		return nil, nil, err
	}
	request, err := s.repo.GetDemoRequest(ctx, id)
	if err != nil {
		return nil, nil, lookupError("demo request", err)
	}
	if request.Status != entity.DemoStatusPending {
		return nil, nil, ErrAlreadyReviewed
	}
	if _, err := s.repo.GetUserByEmail(ctx, request.Email); err == nil {
		return nil, nil, ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, upstream("failed to check email", err)
	}

	role, factoryID, err := resolveRoleAndFactory(ctx, s.repo, request.RequestedRole, req.FactoryID)
	if err != nil {
		return nil, nil, err
	}

	hash := request.PasswordHash
	if req.Password != "" {
		if err := auth.ValidatePassword(req.Password); err != nil {
			return nil, nil, validationError("%v", err)
		}
		if hash, err = auth.HashPassword(req.Password); err != nil {
			return nil, nil, upstream("failed to hash password", err)
		}
	}
	if hash == "" {
		return nil, nil, validationError("no password available for this request")
	}

	user := &entity.DbUser{
		Email:        request.Email,
		PasswordHash: hash,
		DisplayName:  request.ContactName,
		Role:         role,
		FactoryID:    factoryID,
		IsActive:     true,
	}
	reviewedAt := s.now().UTC()
	err = s.repo.Transaction(ctx, func(tx model.Repository) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.UpdateDemoRequest(ctx, request.ID, entity.DemoReviewUpdates{
			Status:     entity.DemoStatusApproved,
			ReviewedBy: &reviewer.UserID,
			ReviewedAt: reviewedAt,
			UserID:     &user.ID,
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, ErrDuplicateEmail
		}
		return nil, nil, upstream("failed to approve demo request", err)
	}

	request.Status = entity.DemoStatusApproved
	request.ReviewedBy = &reviewer.UserID
	request.ReviewedAt = &reviewedAt
	request.UserID = &user.ID
	logrus.WithFields(logrus.Fields{"request_id": request.ID, "user_id": user.ID, "reviewer": reviewer.UserID}).Info("demo request approved")
	return request, user, nil
}

// Reject marks a pending request rejected with the reviewer's reason.
func (s *DemoService) Reject(ctx context.Context, reviewer rbac.Subject, id uint, reason string) (*entity.DbDemoRequest, error) {
	if err := authorize(reviewer, rbac.CapAdministerPlatform); err != nil {
		return nil, err
	}
	request, err := s.repo.GetDemoRequest(ctx, id)
	if err != nil {
		return nil, lookupError("demo request", err)
	}
	if request.Status != entity.DemoStatusPending {
		return nil, ErrAlreadyReviewed
	}

	reviewedAt := s.now().UTC()
	notes := strings.TrimSpace(reason)
	if err := s.repo.UpdateDemoRequest(ctx, request.ID, entity.DemoReviewUpdates{
		Status:     entity.DemoStatusRejected,
		ReviewedBy: &reviewer.UserID,
		ReviewedAt: reviewedAt,
		AdminNotes: &notes,
	}); err != nil {
		return nil, upstream("failed to reject demo request", err)
	}

	request.Status = entity.DemoStatusRejected
	request.ReviewedBy = &reviewer.UserID
	request.ReviewedAt = &reviewedAt
	request.AdminNotes = notes
	return request, nil
}

func (s *DemoService) storePending(ctx context.Context, request *entity.DbDemoRequest) (*entity.DbDemoRequest, error) {
	if err := s.repo.CreateDemoRequest(ctx, request); err != nil {
		return nil, upstream("failed to store demo request", err)
	}
	logrus.WithFields(logrus.Fields{"request_id": request.ID, "role": request.RequestedRole}).Info("demo request submitted")
	return request, nil
}

// createDemoFactory creates the factory for a new company. It returns errFactoryExists
// when the name is already registered.
func createDemoFactory(ctx context.Context, repo model.Repository, name, location string) (*entity.DbFactory, error) {
	_, err := repo.GetFactoryByName(ctx, name)
	if err == nil {
		return nil, errFactoryExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if strings.TrimSpace(location) == "" {
		location = defaultFactoryLocation
	}
	factory := &entity.DbFactory{Name: strings.TrimSpace(name), Location: strings.TrimSpace(location)}
	if err := repo.CreateFactory(ctx, factory); err != nil {
		return nil, err
	}
	return factory, nil
}
