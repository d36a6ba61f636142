package models

import (
	"time"

	"github.com/noah-isme/course-schedule-api/internal/scheduling"
)

// SessionStatus tracks the lifecycle of one class occurrence.
type SessionStatus string

const (
	SessionNotCompleted SessionStatus = "NotCompleted"
	SessionCompleted    SessionStatus = "Completed"
	SessionCanceled     SessionStatus = "Canceled"
)

// Session is one concrete calendar occurrence of a course class.
type Session struct {
	ID                string           `db:"id" json:"id"`
	ClassID           string           `db:"class_id" json:"class_id"`
	SessionDate       time.Time        `db:"session_date" json:"session_date"`
	StartTime         scheduling.Clock `db:"start_time" json:"start_time"`
	EndTime           scheduling.Clock `db:"end_time" json:"end_time"`
	RoomID            string           `db:"room_id" json:"room_id"`
	LecturerID        string           `db:"lecturer_id" json:"lecturer_id"`
	Status            SessionStatus    `db:"status" json:"status"`
	Note              *string          `db:"note" json:"note,omitempty"`
	MakeupOfSessionID *string          `db:"makeup_of_session_id" json:"makeup_of_session_id,omitempty"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updated_at"`
}

// Window returns the session's time-of-day window.
func (s Session) Window() scheduling.Window {
	return scheduling.Window{Start: s.StartTime, End: s.EndTime}
}

// SessionDetail carries the descriptive metadata used in conflict reports and the weekly grid.
type SessionDetail struct {
	Session
	ClassName    string `db:"class_name" json:"class_name"`
	CourseID     string `db:"course_id" json:"course_id"`
	CourseName   string `db:"course_name" json:"course_name"`
	RoomName     string `db:"room_name" json:"room_name"`
	LecturerName string `db:"lecturer_name" json:"lecturer_name"`
}

// SessionFilter narrows session lookups for the weekly grid.
type SessionFilter struct {
	From       time.Time
	To         time.Time
	RoomID     string
	LecturerID string
	CourseID   string
	ClassID    string
}

// OverlapQuery selects the non-canceled sessions that could collide with a candidate schedule.
type OverlapQuery struct {
	Dates             []time.Time
	Window            scheduling.Window
	ResourceType      ResourceType
	ResourceID        string
	ExcludeSessionIDs []string
}
