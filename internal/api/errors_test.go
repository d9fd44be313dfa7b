package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"skillchain/internal/service"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestErrorResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		status         int
		code           string
		message        string
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{
			name:           "BadRequest",
			status:         http.StatusBadRequest,
			code:           ErrCodeInvalidRequest,
			message:        "invalid request",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrCodeInvalidRequest,
			expectedMsg:    "invalid request",
		},
		{
			name:           "NotFound",
			status:         http.StatusNotFound,
			code:           ErrCodeNotFound,
			message:        "product not found",
			expectedStatus: http.StatusNotFound,
			expectedCode:   ErrCodeNotFound,
			expectedMsg:    "product not found",
		},
		{
			name:           "InternalError",
			status:         http.StatusInternalServerError,
			code:           ErrCodeInternalError,
			message:        "internal server error",
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   ErrCodeInternalError,
			expectedMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			ErrorResponse(c, tt.status, tt.code, tt.message)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var response APIError
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}

			if response.Code != tt.expectedCode {
				t.Errorf("expected code %s, got %s", tt.expectedCode, response.Code)
			}

			if response.Message != tt.expectedMsg {
				t.Errorf("expected message %s, got %s", tt.expectedMsg, response.Message)
			}
		})
	}
}

func TestErrorResponseWithDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	details := map[string]string{"field": "email"}
	ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeInvalidPayload, "invalid request payload", details)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var response APIError
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if response.Code != ErrCodeInvalidPayload {
		t.Errorf("expected code %s, got %s", ErrCodeInvalidPayload, response.Code)
	}

	if response.Details == nil {
		t.Error("expected details to be set")
	}
}

func TestShortcutFunctions(t *testing.T) {
	gin.SetMode(gin.TestMode)

	shortcuts := []struct {
		name   string
		call   func(c *gin.Context)
		status int
		code   string
	}{
		{"BadRequest", func(c *gin.Context) { BadRequest(c, ErrCodeInvalidRequest, "bad") }, http.StatusBadRequest, ErrCodeInvalidRequest},
		{"Forbidden", func(c *gin.Context) { Forbidden(c, "no access") }, http.StatusForbidden, ErrCodeForbidden},
		{"NotFound", func(c *gin.Context) { NotFound(c, ErrCodeNotFound, "missing") }, http.StatusNotFound, ErrCodeNotFound},
		{"InternalError", func(c *gin.Context) { InternalError(c, "boom") }, http.StatusInternalServerError, ErrCodeInternalError},
		{"InvalidPayload", func(c *gin.Context) { InvalidPayload(c) }, http.StatusBadRequest, ErrCodeInvalidPayload},
	}

	for _, tt := range shortcuts {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			tt.call(c)

			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			var response APIError
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if response.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, response.Code)
			}
		})
	}
}

func TestWriteServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &service.Error{Kind: service.KindValidation, Code: service.CodeInvalidRequest, Message: "area is required"}, http.StatusBadRequest, service.CodeInvalidRequest},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, service.CodeInvalidCredentials},
		{"forbidden", service.ErrForbidden, http.StatusForbidden, service.CodeForbidden},
		{"not found", service.ErrNotFound, http.StatusNotFound, service.CodeNotFound},
		{"duplicate sku", service.ErrDuplicateSKU, http.StatusConflict, service.CodeDuplicateSKU},
		{"wrapped conflict", fmt.Errorf("create: %w", service.ErrDuplicateEmail), http.StatusConflict, service.CodeEmailExists},
		{"upstream", &service.Error{Kind: service.KindUpstream, Code: service.CodeUpstream, Message: "db down", Err: errors.New("dial tcp")}, http.StatusInternalServerError, ErrCodeInternalError},
		{"untyped", errors.New("surprise"), http.StatusInternalServerError, ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			writeServiceError(c, tt.err)

			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			var response APIError
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if response.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, response.Code)
			}
			if tt.status == http.StatusInternalServerError && response.Message != "internal server error" {
				t.Errorf("internal details leaked: %s", response.Message)
			}
		})
	}
}
