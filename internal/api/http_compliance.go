package api

import (
	"context"
	"net/http"
	"skillchain/internal/entity"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) CreateComplianceEvent(c *gin.Context) {
	var req entity.ComplianceEventCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	event, err := h.compliance.RecordEvent(ctx, currentSubject(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (h *HTTPHandler) ListComplianceEvents(c *gin.Context) {
	var query entity.ComplianceEventQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	events, err := h.compliance.List(ctx, currentSubject(c), query)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *HTTPHandler) GetComplianceEvent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	event, err := h.compliance.Get(ctx, currentSubject(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *HTTPHandler) UploadComplianceDocument(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	file, ok := readUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	stored, err := h.compliance.AttachDocument(ctx, currentSubject(c), id, file.Reader(), file.Filename(), file.ContentType())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.DocumentUploadResponse{
		Message: "Document uploaded successfully",
		FileURL: stored.URL,
	})
}

func (h *HTTPHandler) ApproveComplianceEvent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	event, err := h.compliance.Approve(ctx, currentSubject(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Event approved successfully",
		"event_id":    event.ID,
		"approved_by": event.ApprovedBy,
		"approved_at": event.ApprovedAt,
	})
}

func (h *HTTPHandler) ComplianceStats(c *gin.Context) {
	factoryID, ok := queryUint(c, "factory_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.compliance.Stats(ctx, currentSubject(c), factoryID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
