package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-schedule-api/internal/dto"
	"github.com/noah-isme/course-schedule-api/internal/models"
	"github.com/noah-isme/course-schedule-api/internal/scheduling"
	appErrors "github.com/noah-isme/course-schedule-api/pkg/errors"
)

type courseFinder interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// ScheduleService answers speculative availability questions. It never writes.
type ScheduleService struct {
	courses   courseFinder
	resolver  availabilityResolver
	generator *AlternativeGenerator
	policy    SchedulingPolicy
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewScheduleService constructs the service.
func NewScheduleService(courses courseFinder, resolver availabilityResolver, policy SchedulingPolicy, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		courses:   courses,
		resolver:  resolver,
		generator: NewAlternativeGenerator(resolver, policy),
		policy:    policy,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
	}
}

// CheckAndSuggest evaluates the request and, on conflict, proposes ranked alternatives.
func (s *ScheduleService) CheckAndSuggest(ctx context.Context, req dto.ScheduleCheckRequest) (*dto.ScheduleSuggestionResponse, error) {
	probe, err := s.probe(ctx, req)
	if err != nil {
		return nil, err
	}
	hints := AvailabilityHints{RoomID: req.PreferredRoomID, LecturerID: req.PreferredLecturerID}
	probe.hints = hints
	cand := probe.candidate()

	availability, err := s.resolver.Resolve(ctx, cand, hints)
	if err != nil {
		return nil, err
	}

	resp := &dto.ScheduleSuggestionResponse{
		Status:       availability.Status,
		HorizonWeeks: probe.weeks(),
		SessionCount: len(cand.Dates),
		InitialCheck: dto.InitialCheck{
			AvailableRoomCount:     len(availability.Rooms),
			AvailableLecturerCount: len(availability.Lecturers),
			RoomConflicts:          availability.RoomConflicts,
			LecturerConflicts:      availability.LecturerConflicts,
		},
		AvailableRooms:     availability.Rooms,
		AvailableLecturers: availability.Lecturers,
		Alternatives:       []dto.ScheduleAlternative{},
	}

	if availability.Available() {
		resp.Message = fmt.Sprintf("Schedule is available: %d rooms and %d lecturers are free for %d sessions",
			len(availability.Rooms), len(availability.Lecturers), len(cand.Dates))
	} else {
		alternatives, err := s.generator.Generate(ctx, probe, availability)
		if err != nil {
			return nil, err
		}
		resp.Alternatives = append(resp.Alternatives, alternatives...)
		resp.Message = conflictMessage(availability, len(alternatives))
	}

	types := make([]string, 0, len(resp.Alternatives))
	for _, alt := range resp.Alternatives {
		types = append(types, alt.Type)
	}
	s.metrics.RecordScheduleCheck(resp.Status, types)
	s.logger.Debug("schedule checked",
		zap.String("status", resp.Status),
		zap.String("pattern", probe.pattern.String()),
		zap.String("start_date", scheduling.FormatDate(probe.start)),
		zap.Int("alternatives", len(resp.Alternatives)))
	return resp, nil
}

// AvailableRooms lists the rooms free for every session of the candidate.
func (s *ScheduleService) AvailableRooms(ctx context.Context, req dto.ScheduleCheckRequest) ([]models.Room, error) {
	availability, err := s.resolveUnhinted(ctx, req)
	if err != nil {
		return nil, err
	}
	return availability.Rooms, nil
}

// AvailableLecturers lists the lecturers free for every session of the candidate.
func (s *ScheduleService) AvailableLecturers(ctx context.Context, req dto.ScheduleCheckRequest) ([]models.Lecturer, error) {
	availability, err := s.resolveUnhinted(ctx, req)
	if err != nil {
		return nil, err
	}
	return availability.Lecturers, nil
}

func (s *ScheduleService) resolveUnhinted(ctx context.Context, req dto.ScheduleCheckRequest) (*Availability, error) {
	probe, err := s.probe(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.resolver.Resolve(ctx, probe.candidate(), AvailabilityHints{})
}

// probe validates the request and turns it into the schedule the engine evaluates.
func (s *ScheduleService) probe(ctx context.Context, req dto.ScheduleCheckRequest) (scheduleProbe, error) {
	if err := s.validator.Struct(req); err != nil {
		return scheduleProbe{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule check payload")
	}
	pattern, err := scheduling.ParsePattern(req.SchedulePattern)
	if err != nil {
		return scheduleProbe{}, err
	}
	start, err := scheduling.ParseDate(req.StartDate)
	if err != nil {
		return scheduleProbe{}, err
	}
	if err := pattern.ValidateStart(start); err != nil {
		return scheduleProbe{}, err
	}
	startTime, err := scheduling.ParseClock(req.StartTime)
	if err != nil {
		return scheduleProbe{}, err
	}

	probe := scheduleProbe{
		pattern:      pattern,
		start:        start,
		startTime:    startTime,
		duration:     req.DurationMinutes,
		horizonWeeks: s.policy.DefaultHorizonWeeks,
	}
	if req.CourseID != "" {
		course, err := s.courses.FindByID(ctx, req.CourseID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return scheduleProbe{}, appErrors.Clone(appErrors.ErrNotFound, "course not found")
			}
			return scheduleProbe{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
		}
		probe.totalSessions = course.TotalSessions
		if probe.duration == 0 {
			probe.duration = course.DurationMinutes
		}
	}
	if probe.duration <= 0 {
		probe.duration = s.policy.DefaultDurationMinutes
	}
	if !probe.window().End.Valid() {
		return scheduleProbe{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("session %s must end by 24:00", probe.window()))
	}
	return probe, nil
}

func conflictMessage(a *Availability, alternatives int) string {
	var reason string
	switch {
	case !a.RoomSatisfied && !a.LecturerSatisfied:
		reason = "Room and lecturer are unavailable"
	case !a.RoomSatisfied:
		reason = "Room is unavailable"
	default:
		reason = "Lecturer is unavailable"
	}
	if len(a.Rooms) == 0 || len(a.Lecturers) == 0 {
		reason = fmt.Sprintf("%s (%s)", reason, appErrors.ErrNoResourceAvailable.Message)
	}
	if alternatives == 0 {
		return reason + "; no alternative was found within the search bounds"
	}
	return fmt.Sprintf("%s; %d alternatives suggested", reason, alternatives)
}
