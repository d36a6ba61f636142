package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/course-schedule-api/internal/dto"
	"github.com/noah-isme/course-schedule-api/internal/models"
	"github.com/noah-isme/course-schedule-api/internal/scheduling"
	appErrors "github.com/noah-isme/course-schedule-api/pkg/errors"
)

const maxMakeupHorizonDays = 60

type classFinder interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.CourseClassDetail, error)
}

type makeupSessionStore interface {
	sessionStatusStore
	FindMakeupOf(ctx context.Context, exec sqlx.ExtContext, sessionID string) (*models.Session, error)
	ClassDatesBetween(ctx context.Context, exec sqlx.ExtContext, classID string, from, to time.Time) ([]time.Time, error)
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, sessions []models.Session) error
}

type roomFinder interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

type lecturerFinder interface {
	FindByID(ctx context.Context, id string) (*models.Lecturer, error)
}

// MakeupPlanner finds and books replacement dates for canceled sessions.
type MakeupPlanner struct {
	classes   classFinder
	sessions  makeupSessionStore
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
	now       func() time.Time
}

// MakeupPlannerDeps groups the planner collaborators.
type MakeupPlannerDeps struct {
	Classes   classFinder
	Sessions  makeupSessionStore
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
	Now       func() time.Time
}

// NewMakeupPlanner constructs the planner.
func NewMakeupPlanner(deps MakeupPlannerDeps) *MakeupPlanner {
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &MakeupPlanner{
		classes:   deps.Classes,
		sessions:  deps.Sessions,
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
		now:       deps.Now,
	}
}

// Suggest returns the free dates, soonest first, within horizonDays from tomorrow. An empty
// list is a valid answer.
func (p *MakeupPlanner) Suggest(ctx context.Context, classID, sessionID string, horizonDays int) (*dto.MakeupSuggestionResponse, error) {
	if horizonDays == 0 {
		horizonDays = p.policy.MakeupHorizonDays
	}
	if horizonDays < 1 || horizonDays > maxMakeupHorizonDays {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("horizonDays must be between 1 and %d", maxMakeupHorizonDays))
	}
	class, session, err := p.loadCanceled(ctx, nil, classID, sessionID)
	if err != nil {
		return nil, err
	}
	dates, err := p.freeDates(ctx, class, session, horizonDays)
	if err != nil {
		return nil, err
	}

	resp := &dto.MakeupSuggestionResponse{ClassID: classID, SessionID: sessionID, HorizonDays: horizonDays, Dates: make([]string, 0, len(dates))}
	for _, d := range dates {
		resp.Dates = append(resp.Dates, scheduling.FormatDate(d))
	}
	return resp, nil
}

// Commit books the makeup. Without a date the first suggestion is used.
func (p *MakeupPlanner) Commit(ctx context.Context, classID, sessionID string, req dto.CommitMakeupRequest) (*dto.MakeupResponse, error) {
	if err := p.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid makeup payload")
	}
	class, original, err := p.loadCanceled(ctx, nil, classID, sessionID)
	if err != nil {
		return nil, err
	}

	var date time.Time
	if req.Date == "" {
		dates, err := p.freeDates(ctx, class, original, p.policy.MakeupHorizonDays)
		if err != nil {
			return nil, err
		}
		if len(dates) == 0 {
			return nil, appErrors.Clone(appErrors.ErrNoResourceAvailable, "no free makeup date within the horizon, choose a date manually")
		}
		date = dates[0]
	} else {
		if date, err = scheduling.ParseDate(req.Date); err != nil {
			return nil, err
		}
		if !date.After(p.today()) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "makeup date must be after today")
		}
	}

	roomID, lecturerID := class.RoomID, class.LecturerID
	if req.RoomID != "" && req.RoomID != roomID {
		if _, err := ensureActiveRoom(ctx, p.rooms, req.RoomID); err != nil {
			return nil, err
		}
		roomID = req.RoomID
	}
	if req.LecturerID != "" && req.LecturerID != lecturerID {
		if _, err := ensureActiveLecturer(ctx, p.lecturers, req.LecturerID); err != nil {
			return nil, err
		}
		lecturerID = req.LecturerID
	}

	window := class.Window()
	makeup := models.Session{
		ClassID:           classID,
		SessionDate:       date,
		StartTime:         window.Start,
		EndTime:           window.End,
		RoomID:            roomID,
		LecturerID:        lecturerID,
		Status:            models.SessionNotCompleted,
		MakeupOfSessionID: &original.ID,
	}
	if req.Note != "" {
		note := req.Note
		makeup.Note = &note
	}

	err = withTx(ctx, p.tx, func(tx *sqlx.Tx) error {
		if err := lockResources(ctx, p.locks, tx, []string{roomID}, []string{lecturerID}, classLockKey(classID)); err != nil {
			return err
		}
		if _, _, err := p.loadCanceled(ctx, tx, classID, sessionID); err != nil {
			return err
		}
		existing, err := p.classDates(ctx, tx, classID, date, date)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("class already has a session on %s", scheduling.FormatDate(date)))
		}
		cand := Candidate{Dates: []time.Time{date}, Window: window, ExcludeSessionIDs: []string{original.ID}}
		if err := recheck(ctx, p.detector, tx, cand, roomID, lecturerID); err != nil {
			if errors.Is(err, appErrors.ErrResourceConflictOnCommit) {
				p.metrics.RecordCommitConflict("makeup")
				p.logger.Warn("makeup commit lost its slot",
					zap.String("session_id", sessionID), zap.String("date", scheduling.FormatDate(date)))
			}
			return err
		}
		sessions := []models.Session{makeup}
		if err := p.sessions.InsertBatch(ctx, tx, sessions); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create makeup session")
		}
		makeup = sessions[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.cache.Advance(ctx, gridGenerationKey, gridCachePattern)
	p.metrics.RecordMakeupCommitted()
	p.logger.Info("makeup session committed",
		zap.String("class_id", classID),
		zap.String("original_session_id", original.ID),
		zap.String("makeup_session_id", makeup.ID),
		zap.String("date", scheduling.FormatDate(date)))
	return &dto.MakeupResponse{Original: *original, Makeup: makeup}, nil
}

// freeDates enumerates candidate days from tomorrow and keeps those where the class has no
// session and both of its resources are free for the class window.
func (p *MakeupPlanner) freeDates(ctx context.Context, class *models.CourseClassDetail, canceled *models.SessionDetail, horizonDays int) ([]time.Time, error) {
	pattern, err := class.Pattern()
	if err != nil {
		return nil, err
	}
	from := p.today().AddDate(0, 0, 1)
	to := from.AddDate(0, 0, horizonDays-1)

	occupied, err := p.classDates(ctx, nil, class.ID, from, to)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(occupied))
	for _, d := range occupied {
		taken[scheduling.FormatDate(d)] = true
	}

	var candidates []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if p.policy.MakeupPatternDaysOnly && !pattern.Contains(scheduling.WeekdayOf(d)) {
			continue
		}
		if taken[scheduling.FormatDate(d)] {
			continue
		}
		candidates = append(candidates, d)
	}
	if len(candidates) == 0 {
		return []time.Time{}, nil
	}

	cand := Candidate{Dates: candidates, Window: class.Window(), ExcludeSessionIDs: []string{canceled.ID}}
	busy := make(map[string]bool)
	for _, resource := range []struct {
		kind models.ResourceType
		id   string
	}{{models.ResourceRoom, class.RoomID}, {models.ResourceLecturer, class.LecturerID}} {
		conflicts, err := p.detector.Detect(ctx, cand, resource.kind, resource.id)
		if err != nil {
			return nil, err
		}
		for _, c := range conflicts {
			busy[c.ConflictDate] = true
		}
	}

	free := make([]time.Time, 0, len(candidates))
	for _, d := range candidates {
		if !busy[scheduling.FormatDate(d)] {
			free = append(free, d)
		}
	}
	return free, nil
}

// loadCanceled loads the class and session and checks the session can still receive a makeup.
func (p *MakeupPlanner) loadCanceled(ctx context.Context, exec sqlx.ExtContext, classID, sessionID string) (*models.CourseClassDetail, *models.SessionDetail, error) {
	class, err := p.classes.FindByID(ctx, exec, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "course class not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course class")
	}
	session, err := loadClassSession(ctx, p.sessions, exec, classID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.Status != models.SessionCanceled {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidStateTransition,
			fmt.Sprintf("only canceled sessions can be made up, session is %s", session.Status))
	}
	if _, err := p.sessions.FindMakeupOf(ctx, exec, sessionID); err == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrConflict, "session already has a makeup session")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up makeup session")
	}
	return class, session, nil
}

func (p *MakeupPlanner) classDates(ctx context.Context, exec sqlx.ExtContext, classID string, from, to time.Time) ([]time.Time, error) {
	dates, err := p.sessions.ClassDatesBetween(ctx, exec, classID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class sessions")
	}
	return dates, nil
}

func (p *MakeupPlanner) today() time.Time {
	return scheduling.DateOnly(p.now())
}
