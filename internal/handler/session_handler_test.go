package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-schedule-api/internal/dto"
	"github.com/noah-isme/course-schedule-api/internal/models"
	appErrors "github.com/noah-isme/course-schedule-api/pkg/errors"
)

type sessionStub struct {
	canceled map[string]bool
	note     string
	actor    *models.JWTClaims
}

func (s *sessionStub) Cancel(ctx context.Context, classID, sessionID string, req dto.SessionTransitionRequest) (*models.SessionDetail, error) {
	if s.canceled[sessionID] {
		return nil, appErrors.Clone(appErrors.ErrInvalidStateTransition, "cannot move session from Canceled to Canceled")
	}
	s.canceled[sessionID] = true
	s.note = req.Note
	return &models.SessionDetail{Session: models.Session{ID: sessionID, ClassID: classID, Status: models.SessionCanceled}}, nil
}

func (s *sessionStub) Complete(ctx context.Context, classID, sessionID string, req dto.SessionTransitionRequest, actor *models.JWTClaims) (*models.SessionDetail, error) {
	s.actor = actor
	return &models.SessionDetail{Session: models.Session{ID: sessionID, ClassID: classID, Status: models.SessionCompleted}}, nil
}

type makeupStub struct {
	horizon int
	commit  dto.CommitMakeupRequest
}

func (s *makeupStub) Suggest(ctx context.Context, classID, sessionID string, horizonDays int) (*dto.MakeupSuggestionResponse, error) {
	s.horizon = horizonDays
	return &dto.MakeupSuggestionResponse{ClassID: classID, SessionID: sessionID, HorizonDays: 14, Dates: []string{}}, nil
}

func (s *makeupStub) Commit(ctx context.Context, classID, sessionID string, req dto.CommitMakeupRequest) (*dto.MakeupResponse, error) {
	s.commit = req
	original := sessionID
	return &dto.MakeupResponse{
		Original: models.SessionDetail{Session: models.Session{ID: sessionID, Status: models.SessionCanceled}},
		Makeup:   models.Session{ID: "makeup-1", MakeupOfSessionID: &original},
	}, nil
}

func newSessionRouter(sessions *sessionStub, makeups *makeupStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewSessionHandler(sessions, makeups)
	r := gin.New()
	g := r.Group("/courseclasses/:id/sessions/:sessionId")
	g.POST("/cancel", h.Cancel)
	g.POST("/complete", h.Complete)
	g.GET("/makeup-suggestions", h.MakeupSuggestions)
	g.POST("/makeup", h.CommitMakeup)
	return r
}

func jsonBody(raw string) io.Reader {
	return bytes.NewReader([]byte(raw))
}

func TestCancelTwiceReturnsInvalidTransition(t *testing.T) {
	r := newSessionRouter(&sessionStub{canceled: map[string]bool{}}, &makeupStub{})

	first := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/courseclasses/c-1/sessions/s-1/cancel", nil)
	r.ServeHTTP(first, req)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Body.String(), `"status":"Canceled"`)

	second := httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/courseclasses/c-1/sessions/s-1/cancel", nil)
	r.ServeHTTP(second, req)
	require.Equal(t, http.StatusConflict, second.Code)
	assert.Contains(t, second.Body.String(), "INVALID_STATE_TRANSITION")
}

func TestCancelAcceptsNote(t *testing.T) {
	sessions := &sessionStub{canceled: map[string]bool{}}
	r := newSessionRouter(sessions, &makeupStub{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/courseclasses/c-1/sessions/s-1/cancel", jsonBody(`{"note":"lecturer sick"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lecturer sick", sessions.note)
}

func TestCompleteSession(t *testing.T) {
	r := newSessionRouter(&sessionStub{canceled: map[string]bool{}}, &makeupStub{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/courseclasses/c-1/sessions/s-2/complete", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"Completed"`)
}

func TestMakeupSuggestionsParsesHorizon(t *testing.T) {
	makeups := &makeupStub{}
	r := newSessionRouter(&sessionStub{}, makeups)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/courseclasses/c-1/sessions/s-1/makeup-suggestions?horizonDays=21", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 21, makeups.horizon)
	assert.Contains(t, w.Body.String(), `"dates":[]`)
}

func TestMakeupSuggestionsRejectsNonNumericHorizon(t *testing.T) {
	r := newSessionRouter(&sessionStub{}, &makeupStub{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/courseclasses/c-1/sessions/s-1/makeup-suggestions?horizonDays=soon", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCommitMakeupCreates(t *testing.T) {
	makeups := &makeupStub{}
	r := newSessionRouter(&sessionStub{}, makeups)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/courseclasses/c-1/sessions/s-1/makeup", strings.NewReader(`{"date":"2025-01-20","roomId":"r-2"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "2025-01-20", makeups.commit.Date)
	assert.Equal(t, "r-2", makeups.commit.RoomID)
	assert.Contains(t, w.Body.String(), `"makeup_of_session_id":"s-1"`)
}
