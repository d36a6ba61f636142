package dto

import (
	"github.com/noah-isme/course-schedule-api/internal/models"
	"github.com/noah-isme/course-schedule-api/internal/scheduling"
)

// CreateCourseClassRequest commits a class and its generated sessions.
type CreateCourseClassRequest struct {
	Name            string `json:"name" validate:"required,max=120"`
	CourseID        string `json:"courseId" validate:"required"`
	RoomID          string `json:"roomId" validate:"required"`
	LecturerID      string `json:"lecturerId" validate:"required"`
	SchedulePattern string `json:"schedulePattern"`
	StartDate       string `json:"startDate" validate:"required"`
	StartTime       string `json:"startTime" validate:"required"`
	DurationMinutes int    `json:"durationMinutes" validate:"omitempty,min=15,max=720"`
	TotalSessions   int    `json:"totalSessions" validate:"omitempty,min=1,max=200"`
}

// CourseClassResponse returns a class with its sessions.
type CourseClassResponse struct {
	Class    models.CourseClassDetail `json:"class"`
	Sessions []models.SessionDetail   `json:"sessions"`
}

// WeekScheduleQuery filters the weekly grid.
type WeekScheduleQuery struct {
	Date       string `form:"date"`
	LecturerID string `form:"lecturerId"`
	RoomID     string `form:"roomId"`
	CourseID   string `form:"courseId"`
	Format     string `form:"format"`
}

// GridSession is one session cell in the weekly grid.
type GridSession struct {
	SessionID    string               `json:"sessionId"`
	ClassID      string               `json:"classId"`
	ClassName    string               `json:"className"`
	CourseID     string               `json:"courseId"`
	CourseName   string               `json:"courseName"`
	RoomID       string               `json:"roomId"`
	RoomName     string               `json:"roomName"`
	LecturerID   string               `json:"lecturerId"`
	LecturerName string               `json:"lecturerName"`
	StartTime    scheduling.Clock     `json:"startTime"`
	EndTime      scheduling.Clock     `json:"endTime"`
	Status       models.SessionStatus `json:"status"`
	IsMakeup     bool                 `json:"isMakeup"`
	Note         string               `json:"note,omitempty"`
}

// GridPeriod groups the sessions of one day part.
type GridPeriod struct {
	Period   string        `json:"period"`
	Sessions []GridSession `json:"sessions"`
}

// GridDay is one calendar day of the grid.
type GridDay struct {
	Date    string       `json:"date"`
	Weekday int          `json:"weekday"`
	Periods []GridPeriod `json:"periods"`
}

// WeekSchedule is the Monday-start week grid.
type WeekSchedule struct {
	WeekStart string    `json:"weekStart"`
	WeekEnd   string    `json:"weekEnd"`
	Days      []GridDay `json:"days"`
	Total     int       `json:"total"`
}
