package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-schedule-api/internal/dto"
	"github.com/noah-isme/course-schedule-api/internal/middleware"
	"github.com/noah-isme/course-schedule-api/internal/models"
	"github.com/noah-isme/course-schedule-api/internal/service"
	appErrors "github.com/noah-isme/course-schedule-api/pkg/errors"
)

type tokenStub map[string]models.UserRole

func (s tokenStub) ValidateToken(token string) (*models.JWTClaims, error) {
	role, ok := s[token]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return &models.JWTClaims{UserID: token, Role: role}, nil
}

func newTestRouter(limiter *middleware.RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, Handlers{
		Schedule:    NewScheduleHandler(&scheduleCheckerStub{result: &dto.ScheduleSuggestionResponse{Status: "AVAILABLE"}}, resourceCatalogStub{}),
		CourseClass: NewCourseClassHandler(&courseClassStub{}, &weekStub{}),
		Session:     NewSessionHandler(&sessionStub{canceled: map[string]bool{}}, &makeupStub{}),
		Metrics: NewMetricsHandler(service.NewMetricsService(), map[string]ReadinessCheck{
			"database": func(ctx context.Context) error { return nil },
		}),
	}, RouteOptions{
		Prefix:      "/api/v1",
		Auth:        tokenStub{"admin": models.RoleAdmin, "lecturer": models.RoleLecturer},
		RateLimiter: limiter,
	})
	return r
}

func serve(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, jsonBody(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRoutesRequireToken(t *testing.T) {
	r := newTestRouter(nil)

	w := serve(r, http.MethodGet, "/api/v1/rooms", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodGet, "/api/v1/rooms", "forged", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLecturerCanReadButNotMutate(t *testing.T) {
	r := newTestRouter(nil)

	w := serve(r, http.MethodGet, "/api/v1/courseclasses/schedule-by-week", "lecturer", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodPost, "/api/v1/courseclasses/c-1/sessions/s-1/cancel", "lecturer", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(r, http.MethodPost, "/api/v1/courseclasses/c-1/sessions/s-1/cancel", "admin", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCheckEndpointIsRateLimited(t *testing.T) {
	r := newTestRouter(middleware.NewRateLimiter(0.001, 1))
	body := `{"startDate":"2025-01-06","startTime":"08:00","schedulePattern":"2"}`

	first := serve(r, http.MethodPost, "/api/v1/schedules/check-and-suggest", "admin", body)
	require.Equal(t, http.StatusOK, first.Code)

	second := serve(r, http.MethodPost, "/api/v1/schedules/check-and-suggest", "admin", body)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}

func TestCheckEndpointsDispatchToTheirOwnHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	checker := &scheduleCheckerStub{
		result: &dto.ScheduleSuggestionResponse{Status: "CONFLICT"},
		rooms:  []models.Room{{ID: "r-7"}},
	}
	RegisterRoutes(r, Handlers{Schedule: NewScheduleHandler(checker, resourceCatalogStub{})}, RouteOptions{
		Prefix:      "/api/v1",
		Auth:        tokenStub{"admin": models.RoleAdmin, "lecturer": models.RoleLecturer},
		RateLimiter: middleware.NewRateLimiter(100, 100),
	})
	body := `{"startDate":"2025-01-06","startTime":"08:00","schedulePattern":"2"}`

	cases := []struct {
		path string
		want string
	}{
		{"/api/v1/schedules/check-and-suggest", `"status":"CONFLICT"`},
		{"/api/v1/rooms/available", `"id":"r-7"`},
		{"/api/v1/lecturers/available", `"id":"l-1"`},
	}
	for _, tc := range cases {
		w := serve(r, http.MethodPost, tc.path, "admin", body)
		require.Equal(t, http.StatusOK, w.Code, tc.path)
		assert.Contains(t, w.Body.String(), tc.want, tc.path)

		assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, tc.path, "lecturer", body).Code, tc.path)
	}
}

func TestCompletePassesCallerToService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	sessions := &sessionStub{canceled: map[string]bool{}}
	RegisterRoutes(r, Handlers{Session: NewSessionHandler(sessions, &makeupStub{})}, RouteOptions{
		Prefix: "/api/v1",
		Auth:   tokenStub{"lecturer": models.RoleLecturer},
	})

	w := serve(r, http.MethodPost, "/api/v1/courseclasses/c-1/sessions/s-1/complete", "lecturer", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, sessions.actor)
	assert.Equal(t, "lecturer", sessions.actor.UserID)
	assert.Equal(t, models.RoleLecturer, sessions.actor.Role)
}

func TestOpsEndpointsArePublic(t *testing.T) {
	r := newTestRouter(nil)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ready", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/metrics", "", "").Code)
}

func TestReadyReportsFailingDependency(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"database": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return errors.New("connection refused") },
	})
	r := gin.New()
	r.GET("/ready", h.Ready)

	w := serve(r, http.MethodGet, "/ready", "", "")

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"connection refused"`)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
}
