package dto

import (
	"github.com/noah-isme/course-schedule-api/internal/models"
	"github.com/noah-isme/course-schedule-api/internal/scheduling"
)

// ScheduleCheckRequest describes a candidate recurring schedule.
type ScheduleCheckRequest struct {
	CourseID            string `json:"courseId"`
	StartDate           string `json:"startDate" validate:"required"`
	StartTime           string `json:"startTime" validate:"required"`
	DurationMinutes     int    `json:"durationMinutes" validate:"omitempty,min=15,max=720"`
	SchedulePattern     string `json:"schedulePattern"`
	PreferredRoomID     string `json:"preferredRoomId,omitempty"`
	PreferredLecturerID string `json:"preferredLecturerId,omitempty"`
}

// InitialCheck summarises the evaluation of the request as submitted.
type InitialCheck struct {
	AvailableRoomCount     int                     `json:"availableRoomCount"`
	AvailableLecturerCount int                     `json:"availableLecturerCount"`
	RoomConflicts          []models.ConflictRecord `json:"roomConflicts"`
	LecturerConflicts      []models.ConflictRecord `json:"lecturerConflicts"`
}

// Alternative types.
const (
	AlternativeTime      = "ALTERNATIVE_TIME"
	AlternativeRoom      = "ALTERNATIVE_ROOM"
	AlternativeStartDate = "ALTERNATIVE_START_DATE"
)

// ScheduleAlternative is a ranked replacement schedule. Priorities above 100 mark the smallest deviations.
type ScheduleAlternative struct {
	Type                string            `json:"type"`
	Reason              string            `json:"reason"`
	Priority            int               `json:"priority"`
	StartDate           string            `json:"startDate"`
	StartTime           scheduling.Clock  `json:"startTime"`
	EndTime             scheduling.Clock  `json:"endTime"`
	SchedulePattern     string            `json:"schedulePattern"`
	SuggestedRoomID     string            `json:"suggestedRoomId"`
	SuggestedLecturerID string            `json:"suggestedLecturerId"`
	AvailableRooms      []models.Room     `json:"availableRooms"`
	AvailableLecturers  []models.Lecturer `json:"availableLecturers"`
}

// ScheduleSuggestionResponse is returned by check-and-suggest.
type ScheduleSuggestionResponse struct {
	Status             string                `json:"status"`
	Message            string                `json:"message"`
	HorizonWeeks       int                   `json:"horizonWeeks"`
	SessionCount       int                   `json:"sessionCount"`
	InitialCheck       InitialCheck          `json:"initialCheck"`
	AvailableRooms     []models.Room         `json:"availableRooms"`
	AvailableLecturers []models.Lecturer     `json:"availableLecturers"`
	Alternatives       []ScheduleAlternative `json:"alternatives"`
}
