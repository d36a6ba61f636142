package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-schedule-api/internal/dto"
	"github.com/noah-isme/course-schedule-api/internal/models"
	"github.com/noah-isme/course-schedule-api/internal/scheduling"
	appErrors "github.com/noah-isme/course-schedule-api/pkg/errors"
)

func newCourseClassService(t *testing.T, store *memSessions) (*CourseClassService, *memClasses, *lockRecorder, *MetricsService, func() error) {
	t.Helper()
	db, mock := newTxMock(t)
	classes := &memClasses{classes: map[string]models.CourseClassDetail{}}
	locks := &lockRecorder{}
	metrics := NewMetricsService()
	svc := NewCourseClassService(CourseClassServiceDeps{
		Classes:   classes,
		Sessions:  store,
		Courses:   memCourses{"go-101": {ID: "go-101", Name: "Go Basics", TotalSessions: 6, DurationMinutes: 90}, "open": {ID: "open", Name: "Open Lab"}},
		Rooms:     defaultRooms(),
		Lecturers: defaultLecturers(),
		Detector:  NewConflictDetector(store),
		Tx:        db,
		Locks:     locks,
		Policy:    DefaultSchedulingPolicy(),
		Metrics:   metrics,
	})
	mock.ExpectBegin()
	mock.ExpectCommit()
	return svc, classes, locks, metrics, mock.ExpectationsWereMet
}

func createRequest() dto.CreateCourseClassRequest {
	return dto.CreateCourseClassRequest{
		Name:            "Go Weekday Mornings",
		CourseID:        "go-101",
		RoomID:          "r-1",
		LecturerID:      "l-1",
		SchedulePattern: "6-2-4",
		StartDate:       "2024-03-04",
		StartTime:       "08:00",
	}
}

func TestCreateCourseClassGeneratesSessions(t *testing.T) {
	store := newMemSessions()
	svc, classes, locks, _, met := newCourseClassService(t, store)

	resp, err := svc.Create(context.Background(), createRequest())

	require.NoError(t, err)
	require.Len(t, classes.created, 1)
	assert.Equal(t, "2-4-6", resp.Class.SchedulePattern)
	assert.Equal(t, 90, resp.Class.DurationMinutes)
	assert.Equal(t, "Room 101", resp.Class.RoomName)
	assert.Equal(t, "Ana", resp.Class.LecturerName)
	require.Len(t, resp.Sessions, 6)

	var dates []string
	for _, s := range resp.Sessions {
		dates = append(dates, scheduling.FormatDate(s.SessionDate))
		assert.Equal(t, "class-new", s.ClassID)
		assert.Equal(t, models.SessionNotCompleted, s.Status)
		assert.Equal(t, "08:00-09:30", s.Window().String())
		assert.NotEmpty(t, s.ID)
	}
	assert.Equal(t, []string{"2024-03-04", "2024-03-06", "2024-03-08", "2024-03-11", "2024-03-13", "2024-03-15"}, dates)
	assert.Equal(t, 6, store.count())
	assert.Equal(t, [][]string{{"room:r-1", "lecturer:l-1"}}, locks.calls)
	assert.NoError(t, met())
}

func TestCreateCourseClassConflictOnCommit(t *testing.T) {
	store := newMemSessions(booking("s-1", "c-9", "r-9", "l-1", "2024-03-13", "09:00", "10:00"))
	db, mock := newTxMock(t)
	metrics := NewMetricsService()
	svc := NewCourseClassService(CourseClassServiceDeps{
		Classes:   &memClasses{classes: map[string]models.CourseClassDetail{}},
		Sessions:  store,
		Courses:   memCourses{"go-101": {ID: "go-101", TotalSessions: 6, DurationMinutes: 90}},
		Rooms:     defaultRooms(),
		Lecturers: defaultLecturers(),
		Detector:  NewConflictDetector(store),
		Tx:        db,
		Locks:     &lockRecorder{},
		Policy:    DefaultSchedulingPolicy(),
		Metrics:   metrics,
	})
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), createRequest())

	require.ErrorIs(t, err, appErrors.ErrResourceConflictOnCommit)
	details := appErrors.FromError(err).Details["conflicts"].([]models.ConflictRecord)
	require.Len(t, details, 1)
	assert.Equal(t, models.ResourceLecturer, details[0].ResourceType)
	assert.Equal(t, "09:00-09:30", details[0].OverlapWindow.String())
	assert.Equal(t, 1, store.count())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCourseClassValidation(t *testing.T) {
	svc, _, _, _, _ := newCourseClassService(t, newMemSessions())
	ctx := context.Background()

	req := createRequest()
	req.Name = ""
	_, err := svc.Create(ctx, req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	req = createRequest()
	req.StartDate = "2024-03-05"
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, appErrors.ErrPatternMismatch)

	req = createRequest()
	req.RoomID = "r-3"
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	req = createRequest()
	req.CourseID = "open"
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	req = createRequest()
	req.StartTime = "23:00"
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestGetCourseClass(t *testing.T) {
	store := newMemSessions(booking("s-1", "c-1", "r-1", "l-1", "2024-03-04", "18:00", "20:00"))
	svc := NewCourseClassService(CourseClassServiceDeps{
		Classes:  &memClasses{classes: map[string]models.CourseClassDetail{"c-1": {CourseClass: models.CourseClass{ID: "c-1"}}}},
		Sessions: store,
	})

	resp, err := svc.Get(context.Background(), "c-1")
	require.NoError(t, err)
	require.Len(t, resp.Sessions, 1)

	_, err = svc.ListSessions(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
