package api

import (
	"context"
	"errors"
	"net/http"
	"skillchain/internal/auth"
	"skillchain/internal/rbac"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	currentUserContextKey = "current-user"
)

// RequestUser is the authenticated caller stored on the gin context.
type RequestUser struct {
	ID          uint
	Email       string
	DisplayName string
	Role        string
	FactoryID   *uint
}

// Subject converts the caller into the value the authorization guard works with.
func (u *RequestUser) Subject() rbac.Subject {
	if u == nil {
		return rbac.Subject{}
	}
	return rbac.Subject{UserID: u.ID, Role: u.Role, FactoryID: u.FactoryID}
}

func (u *RequestUser) IsPlatformAdmin() bool {
	if u == nil {
		return false
	}
	return u.Role == rbac.RolePlatformAdmin
}

// authenticate resolves the bearer token into an active user. On failure it returns the
// status and body to abort with.
func (h *HTTPHandler) authenticate(c *gin.Context) (*RequestUser, int, *APIError) {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader == "" {
		return nil, http.StatusUnauthorized, &APIError{Code: ErrCodeUnauthorized, Message: "missing authorization header"}
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, http.StatusUnauthorized, &APIError{Code: ErrCodeUnauthorized, Message: "invalid authorization header format"}
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return nil, http.StatusUnauthorized, &APIError{Code: ErrCodeUnauthorized, Message: "missing bearer token"}
	}

	claims, err := h.authManager.ParseToken(tokenString)
	if errors.Is(err, auth.ErrTokenExpired) {
		return nil, http.StatusUnauthorized, &APIError{Code: ErrCodeSessionExpired, Message: "session expired, please log in again"}
	}
	if err != nil {
		logrus.WithError(err).Warn("rejected bearer token")
		return nil, http.StatusUnauthorized, &APIError{Code: ErrCodeUnauthorized, Message: "could not validate credentials"}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, http.StatusUnauthorized, &APIError{Code: ErrCodeUserNotFound, Message: "user not found"}
		}
		logrus.WithError(err).WithField("user_id", claims.UserID).Error("failed to load user")
		return nil, http.StatusInternalServerError, &APIError{Code: ErrCodeInternalError, Message: "failed to verify user"}
	}

	if !user.IsActive {
		return nil, http.StatusForbidden, &APIError{Code: ErrCodeUserDisabled, Message: "inactive user"}
	}

	return &RequestUser{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		FactoryID:   user.FactoryID,
	}, http.StatusOK, nil
}

// AuthMiddleware requires a valid bearer token for an active user.
func (h *HTTPHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, status, apiErr := h.authenticate(c)
		if apiErr != nil {
			c.AbortWithStatusJSON(status, apiErr)
			return
		}
		c.Set(currentUserContextKey, user)
		c.Next()
	}
}

// OptionalAuth attaches the caller when a valid token is present and otherwise lets the
// request through anonymously.
func (h *HTTPHandler) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(c.GetHeader("Authorization")) == "" {
			c.Next()
			return
		}
		if user, _, apiErr := h.authenticate(c); apiErr == nil {
			c.Set(currentUserContextKey, user)
		}
		c.Next()
	}
}

// RequireCapability rejects callers whose role lacks capability.
func (h *HTTPHandler) RequireCapability(capability rbac.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !rbac.Has(user.Role, capability) {
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeForbidden,
				Message: "insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin is RequireCapability for platform administration.
func (h *HTTPHandler) RequireAdmin() gin.HandlerFunc {
	return h.RequireCapability(rbac.CapAdministerPlatform)
}

// CurrentUser returns the authenticated caller, or nil.
func CurrentUser(c *gin.Context) *RequestUser {
	value, exists := c.Get(currentUserContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*RequestUser)
	if !ok {
		return nil
	}
	return user
}

// currentSubject returns the caller as an rbac subject; handlers behind AuthMiddleware
// always have one.
func currentSubject(c *gin.Context) rbac.Subject {
	return CurrentUser(c).Subject()
}
