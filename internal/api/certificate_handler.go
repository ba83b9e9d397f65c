package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/pranjitbis/learning-management-system/internal/service"

	"github.com/gin-gonic/gin"
)

// CertificateHandler holds the certificate service dependency.
type CertificateHandler struct {
	certService service.CertificateService
}

// NewCertificateHandler creates a new CertificateHandler.
func NewCertificateHandler(certService service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certService: certService}
}

// --- Handler Methods ---

// Download handles GET /api/certificates/download?courseId= for the
// authenticated user. 404 unless the dual gate passes: an approved
// certificate exists AND the course is completed.
func (h *CertificateHandler) Download(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user from token")
		return
	}

	raw, ok := c.GetQuery("courseId")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "courseId is required")
		return
	}
	courseID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid courseId")
		return
	}

	url, err := h.certService.CertificateURL(c.Request.Context(), userID, uint(courseID))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve certificate")
		return
	}
	if url == "" {
		abortWithError(c, http.StatusNotFound, "No downloadable certificate for this course")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// List handles GET /api/certificates (admin), optionally filtered by
// userId.
func (h *CertificateHandler) List(c *gin.Context) {
	var userID *uint
	if raw, ok := c.GetQuery("userId"); ok {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid userId filter")
			return
		}
		uid := uint(id)
		userID = &uid
	}

	certs, err := h.certService.List(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch certificates")
		return
	}
	c.JSON(http.StatusOK, certs)
}

// Upload handles POST /api/certificates (admin): multipart form with
// userId, courseId, and a certificate file.
func (h *CertificateHandler) Upload(c *gin.Context) {
	userID, err := strconv.ParseUint(c.PostForm("userId"), 10, 32)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "userId is required")
		return
	}
	courseID, err := strconv.ParseUint(c.PostForm("courseId"), 10, 32)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "courseId is required")
		return
	}

	fileHeader, err := c.FormFile("certificate")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "certificate file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not read uploaded file")
		return
	}
	defer file.Close()

	cert, err := h.certService.Issue(
		c.Request.Context(),
		uint(userID),
		uint(courseID),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCertificateExists):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUnsupportedFileType):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to upload certificate")
		}
		return
	}

	c.JSON(http.StatusCreated, cert)
}

// SetApproval handles PATCH /api/certificates/:id (admin).
func (h *CertificateHandler) SetApproval(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid certificate ID")
		return
	}

	var req struct {
		Approved *bool `json:"approved" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "approved is required")
		return
	}

	if err := h.certService.SetApproval(c.Request.Context(), id, *req.Approved); err != nil {
		if errors.Is(err, service.ErrCertificateNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update certificate")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Delete handles DELETE /api/certificates/:id (admin).
func (h *CertificateHandler) Delete(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid certificate ID")
		return
	}

	if err := h.certService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrCertificateNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete certificate")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
