package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pranjitbis/learning-management-system/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProgressService records calls and returns canned results.
type stubProgressService struct {
	recordErr       error
	courseCompleted bool

	lastUserID    uint
	lastVideoID   uint
	lastProgress  int
	lastCompleted bool
}

func (s *stubProgressService) RecordProgress(_ context.Context, userID, videoID uint, progress int, completed bool) (bool, error) {
	s.lastUserID = userID
	s.lastVideoID = videoID
	s.lastProgress = progress
	s.lastCompleted = completed
	return s.courseCompleted, s.recordErr
}

func (s *stubProgressService) CacheVideoDuration(_ context.Context, userID, videoID uint, _ int) error {
	s.lastUserID = userID
	s.lastVideoID = videoID
	return s.recordErr
}

func (s *stubProgressService) GetDashboard(_ context.Context, userID uint) (*service.Dashboard, error) {
	s.lastUserID = userID
	if s.recordErr != nil {
		return nil, s.recordErr
	}
	return &service.Dashboard{
		User:    service.DashboardUser{ID: userID, Name: "Alice"},
		Courses: []service.CourseView{},
	}, nil
}

func newProgressTestRouter(stub *stubProgressService, userID uint) *gin.Engine {
	router := gin.New()
	handler := NewProgressHandler(stub)
	authed := router.Group("/api", func(c *gin.Context) {
		c.Set(ContextUserIDKey, userID)
		c.Next()
	})
	authed.POST("/progress", handler.RecordProgress)
	authed.PATCH("/videos/:id/duration", handler.CacheDuration)
	authed.GET("/dashboard", handler.GetDashboard)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRecordProgressEndpoint(t *testing.T) {
	stub := &stubProgressService{courseCompleted: true}
	router := newProgressTestRouter(stub, 7)

	w := postJSON(router, "/api/progress", `{"videoId": 3, "progress": 80, "completed": true}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ProgressResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.CourseCompleted)

	assert.Equal(t, uint(7), stub.lastUserID, "user identity comes from the token, not the payload")
	assert.Equal(t, uint(3), stub.lastVideoID)
	assert.Equal(t, 80, stub.lastProgress)
	assert.True(t, stub.lastCompleted)
}

func TestRecordProgressEndpointValidation(t *testing.T) {
	stub := &stubProgressService{}
	router := newProgressTestRouter(stub, 7)

	// Missing videoId.
	w := postJSON(router, "/api/progress", `{"progress": 80}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Malformed JSON.
	w = postJSON(router, "/api/progress", `{"videoId": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordProgressEndpointErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"unknown video", service.ErrVideoNotFound, http.StatusNotFound},
		{"no approved access", service.ErrAccessDenied, http.StatusForbidden},
		{"store failure", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubProgressService{recordErr: tt.err}
			router := newProgressTestRouter(stub, 7)

			w := postJSON(router, "/api/progress", `{"videoId": 3, "progress": 80}`)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestCacheDurationEndpoint(t *testing.T) {
	stub := &stubProgressService{}
	router := newProgressTestRouter(stub, 7)

	req := httptest.NewRequest(http.MethodPatch, "/api/videos/3/duration", strings.NewReader(`{"duration": 300}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(3), stub.lastVideoID)

	// Non-numeric ID.
	req = httptest.NewRequest(http.MethodPatch, "/api/videos/abc/duration", strings.NewReader(`{"duration": 300}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Zero duration fails binding.
	req = httptest.NewRequest(http.MethodPatch, "/api/videos/3/duration", strings.NewReader(`{"duration": 0}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDashboardEndpoint(t *testing.T) {
	stub := &stubProgressService{}
	router := newProgressTestRouter(stub, 7)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(7), stub.lastUserID)

	var dash service.Dashboard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dash))
	assert.Equal(t, "Alice", dash.User.Name)
	assert.NotNil(t, dash.Courses)
}

func TestGetDashboardEndpointUserNotFound(t *testing.T) {
	stub := &stubProgressService{recordErr: service.ErrUserNotFound}
	router := newProgressTestRouter(stub, 7)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
