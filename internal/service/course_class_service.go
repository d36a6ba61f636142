package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/course-schedule-api/internal/dto"
	"github.com/noah-isme/course-schedule-api/internal/models"
	"github.com/noah-isme/course-schedule-api/internal/scheduling"
	appErrors "github.com/noah-isme/course-schedule-api/pkg/errors"
)

type courseClassStore interface {
	classFinder
	Create(ctx context.Context, exec sqlx.ExtContext, class *models.CourseClass) error
}

type classSessionStore interface {
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, sessions []models.Session) error
	ListByClass(ctx context.Context, classID string) ([]models.SessionDetail, error)
}

// CourseClassService creates classes together with their generated sessions.
type CourseClassService struct {
	classes   courseClassStore
	sessions  classSessionStore
	courses   courseFinder
	rooms     roomFinder
	lecturers lecturerFinder
	detector  *ConflictDetector
	tx        txProvider
	locks     resourceLocker
	cache     *CacheService
	policy    SchedulingPolicy
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// CourseClassServiceDeps groups the service collaborators.
type CourseClassServiceDeps struct {
	Classes   courseClassStore
	Sessions  classSessionStore
	Courses   courseFinder
	Rooms     roomFinder
	Lecturers lecturerFinder
	Detector  *ConflictDetector
	Tx        txProvider
	Locks     resourceLocker
	Cache     *CacheService
	Policy    SchedulingPolicy
	Validator *validator.Validate
	Metrics   *MetricsService
	Logger    *zap.Logger
}

// NewCourseClassService constructs the service.
func NewCourseClassService(deps CourseClassServiceDeps) *CourseClassService {
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &CourseClassService{
		classes:   deps.Classes,
		sessions:  deps.Sessions,
		courses:   deps.Courses,
		rooms:     deps.Rooms,
		lecturers: deps.Lecturers,
		detector:  deps.Detector,
		tx:        deps.Tx,
		locks:     deps.Locks,
		cache:     deps.Cache,
		policy:    deps.Policy,
		validator: deps.Validator,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}
}

// Create validates the schedule, re-checks the room and lecturer under lock and stores the class
// with one NotCompleted session per pattern date.
func (s *CourseClassService) Create(ctx context.Context, req dto.CreateCourseClassRequest) (*dto.CourseClassResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course class payload")
	}
	pattern, err := scheduling.ParsePattern(req.SchedulePattern)
	if err != nil {
		return nil, err
	}
	start, err := scheduling.ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	if err := pattern.ValidateStart(start); err != nil {
		return nil, err
	}
	startTime, err := scheduling.ParseClock(req.StartTime)
	if err != nil {
		return nil, err
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	room, err := ensureActiveRoom(ctx, s.rooms, req.RoomID)
	if err != nil {
		return nil, err
	}
	lecturer, err := ensureActiveLecturer(ctx, s.lecturers, req.LecturerID)
	if err != nil {
		return nil, err
	}

	duration := firstPositive(req.DurationMinutes, course.DurationMinutes, s.policy.DefaultDurationMinutes)
	total := firstPositive(req.TotalSessions, course.TotalSessions)
	if total == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "totalSessions is required when the course does not define one")
	}
	window := scheduling.NewWindow(startTime, duration)
	if !window.End.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("session %s must end by 24:00", window))
	}

	class := &models.CourseClass{
		Name:            req.Name,
		CourseID:        course.ID,
		RoomID:          room.ID,
		LecturerID:      lecturer.ID,
		SchedulePattern: pattern.String(),
		StartDate:       start,
		StartTime:       startTime,
		DurationMinutes: duration,
		TotalSessions:   total,
	}
	dates := pattern.FirstN(start, total)

	var sessions []models.Session
	err = withTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if err := lockResources(ctx, s.locks, tx, []string{room.ID}, []string{lecturer.ID}); err != nil {
			return err
		}
		if err := recheck(ctx, s.detector, tx, Candidate{Dates: dates, Window: window}, room.ID, lecturer.ID); err != nil {
			if errors.Is(err, appErrors.ErrResourceConflictOnCommit) {
				s.metrics.RecordCommitConflict("create_class")
			}
			return err
		}
		if err := s.classes.Create(ctx, tx, class); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course class")
		}
		sessions = make([]models.Session, 0, len(dates))
		for _, d := range dates {
			sessions = append(sessions, models.Session{
				ClassID:     class.ID,
				SessionDate: d,
				StartTime:   window.Start,
				EndTime:     window.End,
				RoomID:      room.ID,
				LecturerID:  lecturer.ID,
				Status:      models.SessionNotCompleted,
			})
		}
		if err := s.sessions.InsertBatch(ctx, tx, sessions); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class sessions")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Advance(ctx, gridGenerationKey, gridCachePattern)
	s.logger.Info("course class created",
		zap.String("class_id", class.ID),
		zap.String("pattern", class.SchedulePattern),
		zap.Int("sessions", len(sessions)))

	detail := models.CourseClassDetail{CourseClass: *class, CourseName: course.Name, RoomName: room.Name, LecturerName: lecturer.FullName}
	resp := &dto.CourseClassResponse{Class: detail, Sessions: make([]models.SessionDetail, 0, len(sessions))}
	for _, session := range sessions {
		resp.Sessions = append(resp.Sessions, models.SessionDetail{
			Session:      session,
			ClassName:    class.Name,
			CourseID:     course.ID,
			CourseName:   course.Name,
			RoomName:     room.Name,
			LecturerName: lecturer.FullName,
		})
	}
	return resp, nil
}

// Get returns a class with its sessions.
func (s *CourseClassService) Get(ctx context.Context, id string) (*dto.CourseClassResponse, error) {
	class, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	sessions, err := s.listSessions(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.CourseClassResponse{Class: *class, Sessions: sessions}, nil
}

// ListSessions returns the sessions of an existing class.
func (s *CourseClassService) ListSessions(ctx context.Context, id string) ([]models.SessionDetail, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	return s.listSessions(ctx, id)
}

func (s *CourseClassService) find(ctx context.Context, id string) (*models.CourseClassDetail, error) {
	class, err := s.classes.FindByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course class")
	}
	return class, nil
}

func (s *CourseClassService) listSessions(ctx context.Context, id string) ([]models.SessionDetail, error) {
	sessions, err := s.sessions.ListByClass(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class sessions")
	}
	if sessions == nil {
		sessions = []models.SessionDetail{}
	}
	return sessions, nil
}

func ensureActiveRoom(ctx context.Context, rooms roomFinder, id string) (*models.Room, error) {
	room, err := rooms.FindByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !room.Active) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("room %s not found", id))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	return room, nil
}

func ensureActiveLecturer(ctx context.Context, lecturers lecturerFinder, id string) (*models.Lecturer, error) {
	lecturer, err := lecturers.FindByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !lecturer.Active) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("lecturer %s not found", id))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lecturer")
	}
	return lecturer, nil
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
