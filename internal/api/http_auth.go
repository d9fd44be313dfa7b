package api

import (
	"context"
	"net/http"
	"skillchain/internal/entity"
	"skillchain/internal/service"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func (h *HTTPHandler) Register(c *gin.Context) {
	var req entity.AuthRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.auth.Register(ctx, service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.DisplayName,
		Role:      req.Role,
		FactoryID: req.FactoryID,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user.Summary())
}

func (h *HTTPHandler) Login(c *gin.Context) {
	var req entity.AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	result, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.AuthResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
		ExpiresAt:   result.ExpiresAt,
		User:        result.User.Summary(),
	})
}

// Logout acknowledges the request; tokens are stateless and the client discards its copy.
func (h *HTTPHandler) Logout(c *gin.Context) {
	if user := CurrentUser(c); user != nil {
		logrus.WithField("user_id", user.ID).Info("user logged out")
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

func (h *HTTPHandler) Me(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.auth.Me(ctx, currentSubject(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user.Summary())
}
