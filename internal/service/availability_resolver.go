package service

import (
	"context"
	"fmt"

	"github.com/noah-isme/course-schedule-api/internal/models"
	appErrors "github.com/noah-isme/course-schedule-api/pkg/errors"
)

// Check outcomes reported to clients.
const (
	StatusAvailable = "AVAILABLE"
	StatusConflict  = "CONFLICT"
)

type roomLister interface {
	ListActive(ctx context.Context) ([]models.Room, error)
}

type lecturerLister interface {
	ListActive(ctx context.Context) ([]models.Lecturer, error)
}

// AvailabilityHints are the client's preferred resources. They narrow the decision, never the scan.
type AvailabilityHints struct {
	RoomID     string
	LecturerID string
}

// Availability is the result of evaluating every active room and lecturer against one candidate.
type Availability struct {
	Status            string
	Rooms             []models.Room
	Lecturers         []models.Lecturer
	RoomConflicts     []models.ConflictRecord
	LecturerConflicts []models.ConflictRecord
	RoomSatisfied     bool
	LecturerSatisfied bool
}

// Available reports whether the candidate can be booked as hinted.
func (a *Availability) Available() bool {
	return a != nil && a.Status == StatusAvailable
}

// AvailabilityResolver computes which rooms and lecturers are free for a candidate.
type AvailabilityResolver struct {
	rooms     roomLister
	lecturers lecturerLister
	detector  *ConflictDetector
}

// NewAvailabilityResolver constructs the resolver.
func NewAvailabilityResolver(rooms roomLister, lecturers lecturerLister, detector *ConflictDetector) *AvailabilityResolver {
	return &AvailabilityResolver{rooms: rooms, lecturers: lecturers, detector: detector}
}

// Resolve evaluates the candidate. Available resources keep catalogue order with the hinted one first.
func (r *AvailabilityResolver) Resolve(ctx context.Context, cand Candidate, hints AvailabilityHints) (*Availability, error) {
	rooms, err := r.rooms.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	lecturers, err := r.lecturers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lecturers")
	}
	if hints.RoomID != "" && !containsRoom(rooms, hints.RoomID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("room %s not found", hints.RoomID))
	}
	if hints.LecturerID != "" && !containsLecturer(lecturers, hints.LecturerID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("lecturer %s not found", hints.LecturerID))
	}

	bookings, err := r.detector.Bookings(ctx, cand)
	if err != nil {
		return nil, err
	}

	result := &Availability{
		Rooms:             make([]models.Room, 0, len(rooms)),
		Lecturers:         make([]models.Lecturer, 0, len(lecturers)),
		RoomConflicts:     []models.ConflictRecord{},
		LecturerConflicts: []models.ConflictRecord{},
	}

	var roomConflicts []models.ConflictRecord
	for _, room := range rooms {
		conflicts := bookings.Conflicts(models.ResourceRoom, room.ID)
		switch {
		case len(conflicts) == 0 && room.ID == hints.RoomID:
			result.Rooms = append([]models.Room{room}, result.Rooms...)
		case len(conflicts) == 0:
			result.Rooms = append(result.Rooms, room)
		case hints.RoomID == "" || room.ID == hints.RoomID:
			roomConflicts = append(roomConflicts, conflicts...)
		}
	}

	var lecturerConflicts []models.ConflictRecord
	for _, lecturer := range lecturers {
		conflicts := bookings.Conflicts(models.ResourceLecturer, lecturer.ID)
		switch {
		case len(conflicts) == 0 && lecturer.ID == hints.LecturerID:
			result.Lecturers = append([]models.Lecturer{lecturer}, result.Lecturers...)
		case len(conflicts) == 0:
			result.Lecturers = append(result.Lecturers, lecturer)
		case hints.LecturerID == "" || lecturer.ID == hints.LecturerID:
			lecturerConflicts = append(lecturerConflicts, conflicts...)
		}
	}

	if hints.RoomID != "" {
		result.RoomSatisfied = len(roomConflicts) == 0
		result.RoomConflicts = append(result.RoomConflicts, roomConflicts...)
	} else {
		result.RoomSatisfied = len(result.Rooms) > 0
		if !result.RoomSatisfied {
			result.RoomConflicts = append(result.RoomConflicts, roomConflicts...)
		}
	}
	if hints.LecturerID != "" {
		result.LecturerSatisfied = len(lecturerConflicts) == 0
		result.LecturerConflicts = append(result.LecturerConflicts, lecturerConflicts...)
	} else {
		result.LecturerSatisfied = len(result.Lecturers) > 0
		if !result.LecturerSatisfied {
			result.LecturerConflicts = append(result.LecturerConflicts, lecturerConflicts...)
		}
	}

	result.Status = StatusConflict
	if result.RoomSatisfied && result.LecturerSatisfied {
		result.Status = StatusAvailable
	}
	return result, nil
}

// SuggestedRoomID is the hinted room when satisfied, otherwise the first free room.
func (a *Availability) SuggestedRoomID() string {
	if a == nil || len(a.Rooms) == 0 {
		return ""
	}
	return a.Rooms[0].ID
}

// SuggestedLecturerID mirrors SuggestedRoomID for lecturers.
func (a *Availability) SuggestedLecturerID() string {
	if a == nil || len(a.Lecturers) == 0 {
		return ""
	}
	return a.Lecturers[0].ID
}

func containsRoom(rooms []models.Room, id string) bool {
	for _, room := range rooms {
		if room.ID == id {
			return true
		}
	}
	return false
}

func containsLecturer(lecturers []models.Lecturer, id string) bool {
	for _, lecturer := range lecturers {
		if lecturer.ID == id {
			return true
		}
	}
	return false
}
