package dto

import "github.com/noah-isme/course-schedule-api/internal/models"

// SessionTransitionRequest carries the optional note of a cancel or complete action.
type SessionTransitionRequest struct {
	Note string `json:"note" validate:"omitempty,max=500"`
}

// MakeupSuggestionResponse lists free dates for a makeup, soonest first. An empty list means
// the date must be chosen manually.
type MakeupSuggestionResponse struct {
	ClassID     string   `json:"classId"`
	SessionID   string   `json:"sessionId"`
	HorizonDays int      `json:"horizonDays"`
	Dates       []string `json:"dates"`
}

// CommitMakeupRequest books the makeup for a canceled session. An empty date takes the first suggestion.
type CommitMakeupRequest struct {
	Date       string `json:"date,omitempty"`
	RoomID     string `json:"roomId,omitempty"`
	LecturerID string `json:"lecturerId,omitempty"`
	Note       string `json:"note" validate:"omitempty,max=500"`
}

// MakeupResponse returns the created makeup next to the untouched canceled original.
type MakeupResponse struct {
	Original models.SessionDetail `json:"original"`
	Makeup   models.Session       `json:"makeup"`
}
