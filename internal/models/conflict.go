package models

import (
	"fmt"
	"time"

	"github.com/noah-isme/course-schedule-api/internal/scheduling"
)

// ConflictRecord describes one existing session that collides with a candidate schedule.
type ConflictRecord struct {
	ResourceType   ResourceType      `json:"resource_type"`
	ResourceID     string            `json:"resource_id"`
	ResourceName   string            `json:"resource_name,omitempty"`
	SessionID      string            `json:"session_id"`
	ClassID        string            `json:"class_id"`
	ClassName      string            `json:"class_name"`
	CourseName     string            `json:"course_name"`
	ConflictDate   string            `json:"conflict_date"`
	ExistingWindow scheduling.Window `json:"existing_window"`
	OverlapWindow  scheduling.Window `json:"overlap_window"`
	Description    string            `json:"description"`
}

// NewConflictRecord builds the record for an existing session overlapping candidate on date.
func NewConflictRecord(resourceType ResourceType, resourceID string, existing SessionDetail, date time.Time, overlap scheduling.Window) ConflictRecord {
	record := ConflictRecord{
		ResourceType:   resourceType,
		ResourceID:     resourceID,
		SessionID:      existing.ID,
		ClassID:        existing.ClassID,
		ClassName:      existing.ClassName,
		CourseName:     existing.CourseName,
		ConflictDate:   scheduling.FormatDate(date),
		ExistingWindow: existing.Window(),
		OverlapWindow:  overlap,
	}
	switch resourceType {
	case ResourceRoom:
		record.ResourceName = existing.RoomName
	case ResourceLecturer:
		record.ResourceName = existing.LecturerName
	}
	name := record.ResourceName
	if name == "" {
		name = resourceID
	}
	record.Description = fmt.Sprintf("%s %s is busy with class %s (%s) on %s from %s to %s",
		describeResource(resourceType), name, existing.ClassName, existing.CourseName,
		record.ConflictDate, existing.StartTime, existing.EndTime)
	return record
}

func describeResource(t ResourceType) string {
	if t == ResourceLecturer {
		return "Lecturer"
	}
	return "Room"
}
