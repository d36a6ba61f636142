package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-schedule-api/internal/dto"
	"github.com/noah-isme/course-schedule-api/internal/middleware"
	"github.com/noah-isme/course-schedule-api/internal/models"
	"github.com/noah-isme/course-schedule-api/internal/service"
	appErrors "github.com/noah-isme/course-schedule-api/pkg/errors"
	"github.com/noah-isme/course-schedule-api/pkg/response"
)

type courseClassManager interface {
	Create(ctx context.Context, req dto.CreateCourseClassRequest) (*dto.CourseClassResponse, error)
	Get(ctx context.Context, id string) (*dto.CourseClassResponse, error)
	ListSessions(ctx context.Context, id string) ([]models.SessionDetail, error)
}

type weekScheduleProvider interface {
	Week(ctx context.Context, query dto.WeekScheduleQuery) (*dto.WeekSchedule, bool, error)
	Export(ctx context.Context, query dto.WeekScheduleQuery) (*service.ExportFile, error)
}

// CourseClassHandler exposes class creation, class reads and the weekly grid.
type CourseClassHandler struct {
	classes courseClassManager
	weeks   weekScheduleProvider
}

// NewCourseClassHandler constructs the handler.
func NewCourseClassHandler(classes courseClassManager, weeks weekScheduleProvider) *CourseClassHandler {
	return &CourseClassHandler{classes: classes, weeks: weeks}
}

// Create godoc
// @Summary Create a course class and its sessions
// @Description Re-validates room and lecturer inside the transaction. A slot taken since the last check yields RESOURCE_CONFLICT_ON_COMMIT.
// @Tags Course Classes
// @Accept json
// @Produce json
// @Param payload body dto.CreateCourseClassRequest true "Course class"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courseclasses [post]
func (h *CourseClassHandler) Create(c *gin.Context) {
	var req dto.CreateCourseClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course class payload"))
		return
	}
	result, err := h.classes.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Get godoc
// @Summary Get a course class with its sessions
// @Tags Course Classes
// @Produce json
// @Param id path string true "Course class ID"
// @Success 200 {object} response.Envelope
// @Router /courseclasses/{id} [get]
func (h *CourseClassHandler) Get(c *gin.Context) {
	result, err := h.classes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ListSessions godoc
// @Summary List the sessions of a course class
// @Tags Course Classes
// @Produce json
// @Param id path string true "Course class ID"
// @Success 200 {object} response.Envelope
// @Router /courseclasses/{id}/sessions [get]
func (h *CourseClassHandler) ListSessions(c *gin.Context) {
	sessions, err := h.classes.ListSessions(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// WeekSchedule godoc
// @Summary Weekly schedule grid
// @Description Monday-start week containing date (default today), grouped by day and period.
// @Tags Course Classes
// @Produce json
// @Param date query string false "Any date in the week (YYYY-MM-DD)"
// @Param lecturerId query string false "Lecturer filter"
// @Param roomId query string false "Room filter"
// @Param courseId query string false "Course filter"
// @Success 200 {object} response.Envelope
// @Router /courseclasses/schedule-by-week [get]
func (h *CourseClassHandler) WeekSchedule(c *gin.Context) {
	var query dto.WeekScheduleQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid week schedule query"))
		return
	}
	grid, hit, err := h.weeks.Week(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, grid, nil, middleware.Meta(c))
}

// ExportWeekSchedule godoc
// @Summary Export the weekly schedule grid
// @Tags Course Classes
// @Produce octet-stream
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Param date query string false "Any date in the week (YYYY-MM-DD)"
// @Param lecturerId query string false "Lecturer filter"
// @Param roomId query string false "Room filter"
// @Param courseId query string false "Course filter"
// @Success 200 {file} file
// @Router /courseclasses/schedule-by-week/export [get]
func (h *CourseClassHandler) ExportWeekSchedule(c *gin.Context) {
	var query dto.WeekScheduleQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid week schedule query"))
		return
	}
	file, err := h.weeks.Export(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
