package api

import (
	"context"
	"net/http"
	"skillchain/internal/entity"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) CreateFactory(c *gin.Context) {
	var req entity.FactoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	factory, err := h.factories.Create(ctx, currentSubject(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, factory)
}

func (h *HTTPHandler) ListFactories(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	factories, err := h.factories.List(ctx, currentSubject(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, factories)
}

func (h *HTTPHandler) GetFactory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	factory, err := h.factories.Get(ctx, currentSubject(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, factory)
}
