package models

import (
	"time"

	"github.com/noah-isme/course-schedule-api/internal/scheduling"
)

// CourseClass is the recurring definition of a class: which weekdays, when and where it meets.
type CourseClass struct {
	ID              string           `db:"id" json:"id"`
	Name            string           `db:"name" json:"name"`
	CourseID        string           `db:"course_id" json:"course_id"`
	RoomID          string           `db:"room_id" json:"room_id"`
	LecturerID      string           `db:"lecturer_id" json:"lecturer_id"`
	SchedulePattern string           `db:"schedule_pattern" json:"schedule_pattern"`
	StartDate       time.Time        `db:"start_date" json:"start_date"`
	StartTime       scheduling.Clock `db:"start_time" json:"start_time"`
	DurationMinutes int              `db:"duration_minutes" json:"duration_minutes"`
	TotalSessions   int              `db:"total_sessions" json:"total_sessions"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

// Window returns the fixed daily time window of the class.
func (c CourseClass) Window() scheduling.Window {
	return scheduling.NewWindow(c.StartTime, c.DurationMinutes)
}

// Pattern parses the stored weekday pattern.
func (c CourseClass) Pattern() (scheduling.Pattern, error) {
	return scheduling.ParsePattern(c.SchedulePattern)
}

// CourseClassDetail joins display names for responses.
type CourseClassDetail struct {
	CourseClass
	CourseName   string `db:"course_name" json:"course_name"`
	RoomName     string `db:"room_name" json:"room_name"`
	LecturerName string `db:"lecturer_name" json:"lecturer_name"`
}
