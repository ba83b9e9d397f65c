package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pranjitbis/learning-management-system/internal/service"

	"github.com/gin-gonic/gin"
)

// ProgressHandler holds the progress service dependency.
type ProgressHandler struct {
	progressService service.ProgressService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// --- Request/Response Structs ---

// ProgressRequest is one watch event from the polling playback client.
// Progress may arrive slightly out of range and is clamped server-side;
// structurally invalid payloads are rejected.
type ProgressRequest struct {
	VideoID   uint `json:"videoId" binding:"required"`
	Progress  int  `json:"progress"`
	Completed bool `json:"completed"`
}

type ProgressResponse struct {
	Success         bool `json:"success"`
	CourseCompleted bool `json:"courseCompleted"`
}

type DurationRequest struct {
	Duration int `json:"duration" binding:"required,gt=0"`
}

// --- Handler Methods ---

// RecordProgress handles POST /api/progress.
func (h *ProgressHandler) RecordProgress(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user from token")
		return
	}

	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	courseCompleted, err := h.progressService.RecordProgress(c.Request.Context(), userID, req.VideoID, req.Progress, req.Completed)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVideoNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			// Transient store failures are retryable; the client's next
			// polling tick resends the same idempotent event.
			abortWithError(c, http.StatusInternalServerError, "Failed to record progress")
		}
		return
	}

	c.JSON(http.StatusOK, ProgressResponse{
		Success:         true,
		CourseCompleted: courseCompleted,
	})
}

// CacheDuration handles PATCH /api/videos/:id/duration.
func (h *ProgressHandler) CacheDuration(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user from token")
		return
	}

	videoID, err := parseUintParam(c, "id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid video ID")
		return
	}

	var req DurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	err = h.progressService.CacheVideoDuration(c.Request.Context(), userID, videoID, req.Duration)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVideoNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrInvalidDuration):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to cache duration")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetDashboard handles GET /api/dashboard.
func (h *ProgressHandler) GetDashboard(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user from token")
		return
	}

	dashboard, err := h.progressService.GetDashboard(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to fetch dashboard data")
		}
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// parseUintParam reads a numeric path parameter.
func parseUintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
