package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-schedule-api/internal/dto"
	"github.com/noah-isme/course-schedule-api/internal/models"
	appErrors "github.com/noah-isme/course-schedule-api/pkg/errors"
	"github.com/noah-isme/course-schedule-api/pkg/response"
)

type scheduleChecker interface {
	CheckAndSuggest(ctx context.Context, req dto.ScheduleCheckRequest) (*dto.ScheduleSuggestionResponse, error)
	AvailableRooms(ctx context.Context, req dto.ScheduleCheckRequest) ([]models.Room, error)
	AvailableLecturers(ctx context.Context, req dto.ScheduleCheckRequest) ([]models.Lecturer, error)
}

type resourceCatalog interface {
	Rooms(ctx context.Context) ([]models.Room, error)
	Lecturers(ctx context.Context) ([]models.Lecturer, error)
}

// ScheduleHandler exposes the speculative availability endpoints.
type ScheduleHandler struct {
	checker   scheduleChecker
	resources resourceCatalog
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(checker scheduleChecker, resources resourceCatalog) *ScheduleHandler {
	return &ScheduleHandler{checker: checker, resources: resources}
}

// CheckAndSuggest godoc
// @Summary Check a recurring schedule and suggest alternatives
// @Description Evaluates every active room and lecturer for the candidate schedule. On CONFLICT, up to five ranked alternatives are returned.
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleCheckRequest true "Candidate schedule"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /schedules/check-and-suggest [post]
func (h *ScheduleHandler) CheckAndSuggest(c *gin.Context) {
	req, ok := bindCheckRequest(c)
	if !ok {
		return
	}
	result, err := h.checker.CheckAndSuggest(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// AvailableRooms godoc
// @Summary Rooms free for a candidate schedule
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleCheckRequest true "Candidate schedule"
// @Success 200 {object} response.Envelope
// @Router /rooms/available [post]
func (h *ScheduleHandler) AvailableRooms(c *gin.Context) {
	req, ok := bindCheckRequest(c)
	if !ok {
		return
	}
	rooms, err := h.checker.AvailableRooms(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, nil, map[string]interface{}{"count": len(rooms)})
}

// AvailableLecturers godoc
// @Summary Lecturers free for a candidate schedule
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleCheckRequest true "Candidate schedule"
// @Success 200 {object} response.Envelope
// @Router /lecturers/available [post]
func (h *ScheduleHandler) AvailableLecturers(c *gin.Context) {
	req, ok := bindCheckRequest(c)
	if !ok {
		return
	}
	lecturers, err := h.checker.AvailableLecturers(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lecturers, nil, map[string]interface{}{"count": len(lecturers)})
}

// ListRooms godoc
// @Summary List active rooms
// @Tags Resources
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *ScheduleHandler) ListRooms(c *gin.Context) {
	rooms, err := h.resources.Rooms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, nil)
}

// ListLecturers godoc
// @Summary List active lecturers
// @Tags Resources
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /lecturers [get]
func (h *ScheduleHandler) ListLecturers(c *gin.Context) {
	lecturers, err := h.resources.Lecturers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lecturers, nil)
}

func bindCheckRequest(c *gin.Context) (dto.ScheduleCheckRequest, bool) {
	var req dto.ScheduleCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule check payload"))
		return req, false
	}
	return req, true
}
