package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-schedule-api/internal/dto"
	"github.com/noah-isme/course-schedule-api/internal/middleware"
	"github.com/noah-isme/course-schedule-api/internal/models"
	appErrors "github.com/noah-isme/course-schedule-api/pkg/errors"
	"github.com/noah-isme/course-schedule-api/pkg/response"
)

type sessionTransitioner interface {
	Cancel(ctx context.Context, classID, sessionID string, req dto.SessionTransitionRequest) (*models.SessionDetail, error)
	Complete(ctx context.Context, classID, sessionID string, req dto.SessionTransitionRequest, actor *models.JWTClaims) (*models.SessionDetail, error)
}

type makeupPlanner interface {
	Suggest(ctx context.Context, classID, sessionID string, horizonDays int) (*dto.MakeupSuggestionResponse, error)
	Commit(ctx context.Context, classID, sessionID string, req dto.CommitMakeupRequest) (*dto.MakeupResponse, error)
}

// SessionHandler exposes session lifecycle and makeup endpoints.
type SessionHandler struct {
	sessions sessionTransitioner
	makeups  makeupPlanner
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(sessions sessionTransitioner, makeups makeupPlanner) *SessionHandler {
	return &SessionHandler{sessions: sessions, makeups: makeups}
}

// Cancel godoc
// @Summary Cancel a session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Course class ID"
// @Param sessionId path string true "Session ID"
// @Param payload body dto.SessionTransitionRequest false "Optional note"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courseclasses/{id}/sessions/{sessionId}/cancel [post]
func (h *SessionHandler) Cancel(c *gin.Context) {
	req, ok := bindTransition(c)
	if !ok {
		return
	}
	session, err := h.sessions.Cancel(c.Request.Context(), c.Param("id"), c.Param("sessionId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Complete godoc
// @Summary Mark a session completed after attendance was saved
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Course class ID"
// @Param sessionId path string true "Session ID"
// @Param payload body dto.SessionTransitionRequest false "Optional note"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courseclasses/{id}/sessions/{sessionId}/complete [post]
func (h *SessionHandler) Complete(c *gin.Context) {
	req, ok := bindTransition(c)
	if !ok {
		return
	}
	actor, _ := middleware.CurrentUser(c)
	session, err := h.sessions.Complete(c.Request.Context(), c.Param("id"), c.Param("sessionId"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// MakeupSuggestions godoc
// @Summary Suggest makeup dates for a canceled session
// @Description An empty list means no free date was found and the date must be entered manually.
// @Tags Sessions
// @Produce json
// @Param id path string true "Course class ID"
// @Param sessionId path string true "Session ID"
// @Param horizonDays query int false "Days to search from tomorrow" default(14)
// @Success 200 {object} response.Envelope
// @Router /courseclasses/{id}/sessions/{sessionId}/makeup-suggestions [get]
func (h *SessionHandler) MakeupSuggestions(c *gin.Context) {
	horizon := 0
	if raw := c.Query("horizonDays"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "horizonDays must be an integer"))
			return
		}
		horizon = value
	}
	result, err := h.makeups.Suggest(c.Request.Context(), c.Param("id"), c.Param("sessionId"), horizon)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// CommitMakeup godoc
// @Summary Book the makeup session for a canceled session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Course class ID"
// @Param sessionId path string true "Session ID"
// @Param payload body dto.CommitMakeupRequest true "Makeup date, optional reassignment and note"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courseclasses/{id}/sessions/{sessionId}/makeup [post]
func (h *SessionHandler) CommitMakeup(c *gin.Context) {
	var req dto.CommitMakeupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid makeup payload"))
		return
	}
	result, err := h.makeups.Commit(c.Request.Context(), c.Param("id"), c.Param("sessionId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// bindTransition accepts an empty body.
func bindTransition(c *gin.Context) (dto.SessionTransitionRequest, bool) {
	var req dto.SessionTransitionRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return req, false
	}
	return req, true
}
