package api

import (
	"errors"
	"net/http"
	"skillchain/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Error codes returned in APIError.Code.
const (
	// Generic
	ErrCodeInvalidRequest = "ERR_INVALID_REQUEST"
	ErrCodeInternalError  = "ERR_INTERNAL_ERROR"
	ErrCodeNotFound       = "ERR_NOT_FOUND"

	// Auth
	ErrCodeUnauthorized   = "ERR_UNAUTHORIZED"
	ErrCodeForbidden      = "ERR_FORBIDDEN"
	ErrCodeSessionExpired = "ERR_SESSION_EXPIRED"
	ErrCodeUserNotFound   = "ERR_USER_NOT_FOUND"
	ErrCodeUserDisabled   = "ERR_USER_DISABLED"

	// Validation
	ErrCodeInvalidPayload = "ERR_INVALID_PAYLOAD"
	ErrCodeInvalidID      = "ERR_INVALID_ID"
	ErrCodeMissingFile    = "ERR_MISSING_FILE"
)

// APIError is the JSON body of every error response.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func ErrorResponse(c *gin.Context, status int, code, message string) {
	c.JSON(status, APIError{
		Code:    code,
		Message: message,
	})
}

func ErrorResponseWithDetails(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, APIError{
		Code:    code,
		Message: message,
		Details: details,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	ErrorResponse(c, http.StatusBadRequest, code, message)
}

func Forbidden(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, ErrCodeForbidden, message)
}

func NotFound(c *gin.Context, code, message string) {
	ErrorResponse(c, http.StatusNotFound, code, message)
}

func InternalError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// InvalidPayload reports a body that failed to bind. The binding error goes into details.
func InvalidPayload(c *gin.Context, err ...error) {
	if len(err) > 0 && err[0] != nil {
		ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeInvalidPayload, "invalid request payload", err[0].Error())
		return
	}
	BadRequest(c, ErrCodeInvalidPayload, "invalid request payload")
}

var kindStatus = map[service.Kind]int{
	service.KindValidation:     http.StatusBadRequest,
	service.KindAuthentication: http.StatusUnauthorized,
	service.KindForbidden:      http.StatusForbidden,
	service.KindNotFound:       http.StatusNotFound,
	service.KindConflict:       http.StatusConflict,
	service.KindUpstream:       http.StatusInternalServerError,
}

// writeServiceError renders a service failure. Upstream and untyped errors are logged and
// answered with a generic 500.
func writeServiceError(c *gin.Context, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		logrus.WithError(err).WithField("path", c.FullPath()).Error("unexpected error")
		InternalError(c, "internal server error")
		return
	}

	status, ok := kindStatus[svcErr.Kind]
	if !ok || status == http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"path": c.FullPath(),
			"code": svcErr.Code,
		}).Error("request failed")
		InternalError(c, "internal server error")
		return
	}
	ErrorResponse(c, status, svcErr.Code, svcErr.Message)
}
