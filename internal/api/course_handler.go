package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/pranjitbis/learning-management-system/internal/domain"
	"github.com/pranjitbis/learning-management-system/internal/service"

	"github.com/gin-gonic/gin"
)

// CourseHandler holds the course service dependency.
type CourseHandler struct {
	courseService service.CourseService
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// --- Request Structs ---

type CreateCourseRequest struct {
	Title       string             `json:"title" binding:"required"`
	Description string             `json:"description" binding:"required"`
	Price       float64            `json:"price"`
	Category    string             `json:"category" binding:"required"`
	Thumbnail   string             `json:"thumbnail"`
	Videos      []CourseVideoInput `json:"videos" binding:"required,min=1,dive"`
}

type CourseVideoInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url" binding:"required"`
}

type UpdateCourseRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Thumbnail   string  `json:"thumbnail"`
}

type AddVideoRequest struct {
	CourseID    uint   `json:"courseId" binding:"required"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url" binding:"required"`
}

// --- Handler Methods ---

// ListCourses handles GET /api/courses (public catalog).
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseService.ListCourses(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch courses")
		return
	}
	c.JSON(http.StatusOK, courses)
}

// GetCourse handles GET /api/courses/:id.
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid course ID")
		return
	}

	course, err := h.courseService.GetCourse(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to fetch course")
		}
		return
	}
	c.JSON(http.StatusOK, course)
}

// CreateCourse handles POST /api/courses (admin).
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	videos := make([]service.NewVideoInput, 0, len(req.Videos))
	for _, v := range req.Videos {
		videos = append(videos, service.NewVideoInput{
			Title:       v.Title,
			Description: v.Description,
			URL:         v.URL,
		})
	}

	course, err := h.courseService.CreateCourse(c.Request.Context(), &domain.Course{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Thumbnail:   req.Thumbnail,
	}, videos)
	if err != nil {
		if errors.Is(err, service.ErrNoVideos) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create course")
		}
		return
	}

	c.JSON(http.StatusCreated, course)
}

// UpdateCourse handles PUT /api/courses/:id (admin).
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid course ID")
		return
	}

	var req UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	err = h.courseService.UpdateCourse(c.Request.Context(), &domain.Course{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Thumbnail:   req.Thumbnail,
	})
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update course")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteCourse handles DELETE /api/courses/:id (admin).
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid course ID")
		return
	}

	if err := h.courseService.DeleteCourse(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete course")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AddVideo handles POST /api/videos (admin).
func (h *CourseHandler) AddVideo(c *gin.Context) {
	var req AddVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	video, err := h.courseService.AddVideo(c.Request.Context(), &domain.Video{
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
	})
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to add video")
		}
		return
	}

	c.JSON(http.StatusCreated, video)
}

// DeleteVideo handles DELETE /api/videos/:id (admin).
func (h *CourseHandler) DeleteVideo(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid video ID")
		return
	}

	if err := h.courseService.DeleteVideo(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete video")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
