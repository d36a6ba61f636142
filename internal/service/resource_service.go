package service

import (
	"context"

	"github.com/noah-isme/course-schedule-api/internal/models"
	appErrors "github.com/noah-isme/course-schedule-api/pkg/errors"
)

// ResourceService lists the bookable rooms and lecturers.
type ResourceService struct {
	rooms     roomLister
	lecturers lecturerLister
}

// NewResourceService constructs the service.
func NewResourceService(rooms roomLister, lecturers lecturerLister) *ResourceService {
	return &ResourceService{rooms: rooms, lecturers: lecturers}
}

// Rooms returns active rooms.
func (s *ResourceService) Rooms(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.rooms.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	if rooms == nil {
		rooms = []models.Room{}
	}
	return rooms, nil
}

// Lecturers returns active lecturers.
func (s *ResourceService) Lecturers(ctx context.Context) ([]models.Lecturer, error) {
	lecturers, err := s.lecturers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lecturers")
	}
	if lecturers == nil {
		lecturers = []models.Lecturer{}
	}
	return lecturers, nil
}
