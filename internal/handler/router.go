package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-schedule-api/internal/middleware"
	"github.com/noah-isme/course-schedule-api/internal/models"
)

// Handlers groups everything mounted under the API prefix.
type Handlers struct {
	Schedule    *ScheduleHandler
	CourseClass *CourseClassHandler
	Session     *SessionHandler
	Metrics     *MetricsHandler
}

// RouteOptions carries the middleware the router needs.
type RouteOptions struct {
	Prefix      string
	Auth        middleware.TokenValidator
	RateLimiter *middleware.RateLimiter
}

// RegisterRoutes mounts probes, metrics and the authenticated API on r.
func RegisterRoutes(r *gin.Engine, h Handlers, opts RouteOptions) {
	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/ready", h.Metrics.Ready)
		r.GET("/metrics", h.Metrics.Prometheus)
	}

	api := r.Group(opts.Prefix)
	api.Use(middleware.JWT(opts.Auth))

	readers := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff, models.RoleLecturer)
	writers := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff)

	if h.Schedule != nil {
		api.GET("/rooms", readers, h.Schedule.ListRooms)
		api.GET("/lecturers", readers, h.Schedule.ListLecturers)

		checks := api.Group("", writers)
		if opts.RateLimiter != nil {
			checks.Use(opts.RateLimiter.Middleware())
		}
		checks.POST("/schedules/check-and-suggest", h.Schedule.CheckAndSuggest)
		checks.POST("/rooms/available", h.Schedule.AvailableRooms)
		checks.POST("/lecturers/available", h.Schedule.AvailableLecturers)
	}

	classes := api.Group("/courseclasses")
	if h.CourseClass != nil {
		classes.POST("", writers, h.CourseClass.Create)
		classes.GET("/schedule-by-week", readers, h.CourseClass.WeekSchedule)
		classes.GET("/schedule-by-week/export", readers, h.CourseClass.ExportWeekSchedule)
		classes.GET("/:id", readers, h.CourseClass.Get)
		classes.GET("/:id/sessions", readers, h.CourseClass.ListSessions)
	}
	if h.Session != nil {
		sessions := classes.Group("/:id/sessions/:sessionId")
		sessions.POST("/cancel", writers, h.Session.Cancel)
		sessions.POST("/complete", readers, h.Session.Complete)
		sessions.GET("/makeup-suggestions", writers, h.Session.MakeupSuggestions)
		sessions.POST("/makeup", writers, h.Session.CommitMakeup)
	}
}
