package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pranjitbis/learning-management-system/internal/repository"
	"github.com/pranjitbis/learning-management-system/internal/service"

	"github.com/gin-gonic/gin"
)

// AccessHandler holds the access service dependency.
type AccessHandler struct {
	accessService service.AccessService
}

// NewAccessHandler creates a new AccessHandler.
func NewAccessHandler(accessService service.AccessService) *AccessHandler {
	return &AccessHandler{accessService: accessService}
}

// --- Request Structs ---

type RequestAccessRequest struct {
	CourseID uint `json:"courseId" binding:"required"`
}

type GrantAccessRequest struct {
	UserID   uint  `json:"userId" binding:"required"`
	CourseID uint  `json:"courseId" binding:"required"`
	Approved *bool `json:"approved"`
}

// --- Handler Methods ---

// RequestAccess handles POST /api/access/request (authenticated user).
func (h *AccessHandler) RequestAccess(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user from token")
		return
	}

	var req RequestAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	access, err := h.accessService.RequestAccess(c.Request.Context(), userID, req.CourseID)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to request access")
		}
		return
	}

	c.JSON(http.StatusOK, access)
}

// ListAccess handles GET /api/access (admin). Supports the query filters
// approved, userId, and courseId.
func (h *AccessHandler) ListAccess(c *gin.Context) {
	var filter repository.AccessFilter

	if raw, ok := c.GetQuery("approved"); ok {
		approved := raw == "true"
		filter.Approved = &approved
	}
	if raw, ok := c.GetQuery("userId"); ok {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid userId filter")
			return
		}
		uid := uint(id)
		filter.UserID = &uid
	}
	if raw, ok := c.GetQuery("courseId"); ok {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid courseId filter")
			return
		}
		cid := uint(id)
		filter.CourseID = &cid
	}

	accesses, err := h.accessService.ListAccess(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch access requests")
		return
	}
	c.JSON(http.StatusOK, accesses)
}

// GrantAccess handles POST /api/access (admin): grant or approve access.
// Approved defaults to true, matching the back office's "grant" action.
func (h *AccessHandler) GrantAccess(c *gin.Context) {
	var req GrantAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	approved := true
	if req.Approved != nil {
		approved = *req.Approved
	}

	access, err := h.accessService.GrantAccess(c.Request.Context(), req.UserID, req.CourseID, approved)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update access request")
		}
		return
	}

	c.JSON(http.StatusOK, access)
}

// RevokeAccess handles DELETE /api/access/:id (admin).
func (h *AccessHandler) RevokeAccess(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid access ID")
		return
	}

	if err := h.accessService.RevokeAccess(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrAccessNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to remove access")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Access removed successfully"})
}
