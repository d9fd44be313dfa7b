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

// AuthService handles registration, login and account administration.
type AuthService struct {
	repo   model.Repository
	tokens *auth.Manager
}

func NewAuthService(repo model.Repository, tokens *auth.Manager) *AuthService {
	return &AuthService{repo: repo, tokens: tokens}
}

type RegisterInput struct {
	Email     string
	Password  string
	Name      string
	Role      string
	FactoryID *uint
}

// LoginResult carries the issued bearer token.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.DbUser
}

// Register creates an account. The role is normalised and must be canonical; factory
// roles must reference an existing factory.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.DbUser, error) {
	email := normaliseEmail(in.Email)
	if email == "" {
		return nil, validationError("email is required")
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return nil, validationError("%v", err)
	}

	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, upstream("failed to check email", err)
	}

	role, factoryID, err := resolveRoleAndFactory(ctx, s.repo, in.Role, in.FactoryID)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, upstream("failed to hash password", err)
	}

	user := &entity.DbUser{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(in.Name),
		Role:         role,
		FactoryID:    factoryID,
		IsActive:     true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, upstream("failed to create user", err)
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user registered")
	return user, nil
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normaliseEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithField("email", email).Warn("login attempt for unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, upstream("failed to load user", err)
	}
	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		logrus.WithField("email", email).Warn("password verification failed")
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserDisabled
	}

	token, expiresAt, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, upstream("failed to create session", err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, subject rbac.Subject) (*entity.DbUser, error) {
	user, err := s.repo.GetUserByID(ctx, subject.UserID)
	if err != nil {
		return nil, lookupError("user", err)
	}
	return user, nil
}

// ListUsers returns a page of accounts. Platform administrators only.
func (s *AuthService) ListUsers(ctx context.Context, subject rbac.Subject, query entity.UserQuery) ([]entity.DbUser, *entity.Meta, error) {
	if err := authorize(subject, rbac.CapAdministerPlatform); err != nil {
		return nil, nil, err
	}
	query.Normalise(20, 100)
	if strings.TrimSpace(query.Role) != "" {
		query.Role = rbac.Normalize(query.Role)
	}
	users, meta, err := s.repo.ListUsers(ctx, &query)
	if err != nil {
		return nil, nil, upstream("failed to load users", err)
	}
	return users, meta, nil
}

// UpdateUser applies an administrative change and re-validates the role/factory pairing.
func (s *AuthService) UpdateUser(ctx context.Context, subject rbac.Subject, id uint, req entity.UserUpdateRequest) (*entity.DbUser, error) {
	if err := authorize(subject, rbac.CapAdministerPlatform); err != nil {
		return nil, err
	}
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, lookupError("user", err)
	}

	var updates entity.UserUpdates
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		updates.DisplayName = &name
	}
	if req.Password != nil {
		if err := auth.ValidatePassword(*req.Password); err != nil {
			return nil, validationError("%v", err)
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, upstream("failed to hash password", err)
		}
		updates.PasswordHash = &hash
	}
	if req.IsActive != nil {
		if user.ID == subject.UserID && !*req.IsActive {
			return nil, validationError("cannot deactivate your own account")
		}
		updates.IsActive = req.IsActive
	}

	if req.Role != nil || req.FactoryID != nil {
		roleLabel := user.Role
		if req.Role != nil {
			roleLabel = *req.Role
		}
		factoryID := user.FactoryID
		if req.FactoryID != nil {
			factoryID = req.FactoryID
		}
		role, resolved, err := resolveRoleAndFactory(ctx, s.repo, roleLabel, factoryID)
		if err != nil {
			return nil, err
		}
		updates.Role = &role
		if resolved == nil {
			updates.ClearFactory = true
		} else {
			updates.FactoryID = resolved
		}
	}

	if !updates.IsEmpty() {
		if err := s.repo.UpdateUser(ctx, user.ID, updates); err != nil {
			return nil, upstream("failed to update user", err)
		}
	}
	updated, err := s.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		return nil, lookupError("user", err)
	}
	return updated, nil
}

// DeleteUser removes an account. Administrators cannot delete themselves.
func (s *AuthService) DeleteUser(ctx context.Context, subject rbac.Subject, id uint) error {
	if err := authorize(subject, rbac.CapAdministerPlatform); err != nil {
		return err
	}
	if subject.UserID == id {
		return ErrCannotDeleteSelf
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return lookupError("user", err)
	}
	return nil
}

// CreateAdmin provisions a platform administrator outside the HTTP surface.
func (s *AuthService) CreateAdmin(ctx context.Context, email, password, name string) (*entity.DbUser, error) {
	return s.Register(ctx, RegisterInput{Email: email, Password: password, Name: name, Role: rbac.RolePlatformAdmin})
}

// resolveRoleAndFactory normalises role and checks the factory requirement. Factory ids
// are dropped for roles that do not belong to a factory.
func resolveRoleAndFactory(ctx context.Context, repo model.Repository, roleLabel string, factoryID *uint) (string, *uint, error) {
	role := rbac.Normalize(roleLabel)
	if !rbac.IsCanonical(role) {
		return "", nil, ErrInvalidRole
	}
	if !rbac.RequiresFactory(role) {
		return role, nil, nil
	}
	if factoryID == nil || *factoryID == 0 {
		return "", nil, ErrMissingFactory
	}
	if _, err := repo.GetFactory(ctx, *factoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, validationError("factory %d does not exist", *factoryID)
		}
		return "", nil, upstream("failed to load factory", err)
	}
	id := *factoryID
	return role, &id, nil
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
