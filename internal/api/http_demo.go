package api

import (
	"context"
	"net/http"
	"skillchain/internal/entity"
	"time"

	"github.com/gin-gonic/gin"
)

// SubmitDemoRequest is public. With auto-approval on, the account exists when this returns.
func (h *HTTPHandler) SubmitDemoRequest(c *gin.Context) {
	var req entity.DemoSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	request, err := h.demo.Submit(ctx, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	message := "Demo request submitted. An administrator will review it shortly."
	if request.Status == entity.DemoStatusApproved {
		message = "Account created. You can now log in."
	}
	c.JSON(http.StatusCreated, entity.DemoSubmitResponse{
		Message: message,
		Request: *request,
		UserID:  request.UserID,
	})
}

func (h *HTTPHandler) ListDemoRequests(c *gin.Context) {
	var query entity.DemoRequestQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	requests, meta, err := h.demo.List(ctx, currentSubject(c), query)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.DemoRequestListResponse{Requests: requests, Meta: meta})
}

func (h *HTTPHandler) ApproveDemoRequest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req entity.DemoApproveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			InvalidPayload(c, err)
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	request, user, err := h.demo.Approve(ctx, currentSubject(c), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Demo request approved",
		"request": request,
		"user_id": user.ID,
	})
}

func (h *HTTPHandler) RejectDemoRequest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req entity.DemoRejectRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			InvalidPayload(c, err)
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	request, err := h.demo.Reject(ctx, currentSubject(c), id, req.Reason)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Demo request rejected",
		"request": request,
	})
}
