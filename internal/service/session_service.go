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
	appErrors "github.com/noah-isme/course-schedule-api/pkg/errors"
)

type sessionStatusStore interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.SessionDetail, error)
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, from, to models.SessionStatus, note *string) error
}

// SessionService applies lifecycle transitions to individual sessions.
type SessionService struct {
	sessions  sessionStatusStore
	tx        txProvider
	locks     resourceLocker
	cache     *CacheService
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewSessionService constructs the service.
func NewSessionService(sessions sessionStatusStore, tx txProvider, locks resourceLocker, cache *CacheService, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{sessions: sessions, tx: tx, locks: locks, cache: cache, validator: validate, metrics: metrics, logger: logger}
}

// Cancel moves a NotCompleted session to Canceled.
func (s *SessionService) Cancel(ctx context.Context, classID, sessionID string, req dto.SessionTransitionRequest) (*models.SessionDetail, error) {
	return s.transition(ctx, classID, sessionID, models.SessionCanceled, req, nil)
}

// Complete records that attendance was taken. A lecturer may only complete sessions they teach;
// a nil actor skips the ownership check.
func (s *SessionService) Complete(ctx context.Context, classID, sessionID string, req dto.SessionTransitionRequest, actor *models.JWTClaims) (*models.SessionDetail, error) {
	return s.transition(ctx, classID, sessionID, models.SessionCompleted, req, actor)
}

func (s *SessionService) transition(ctx context.Context, classID, sessionID string, target models.SessionStatus, req dto.SessionTransitionRequest, actor *models.JWTClaims) (*models.SessionDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	var note *string
	if req.Note != "" {
		note = &req.Note
	}

	var session *models.SessionDetail
	err := withTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		var err error
		session, err = loadClassSession(ctx, s.sessions, tx, classID, sessionID)
		if err != nil {
			return err
		}
		if actor != nil && actor.Role == models.RoleLecturer && actor.UserID != session.LecturerID {
			return appErrors.Clone(appErrors.ErrForbidden, "lecturers can only update their own sessions")
		}
		if err := lockResources(ctx, s.locks, tx, []string{session.RoomID}, []string{session.LecturerID}); err != nil {
			return err
		}
		if err := session.Status.Transition(target); err != nil {
			return err
		}
		if err := s.sessions.UpdateStatus(ctx, tx, session.ID, session.Status, target, note); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrInvalidStateTransition, fmt.Sprintf("session %s changed status concurrently", session.ID))
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	previous := session.Status
	session.Status = target
	if note != nil {
		session.Note = note
	}
	s.cache.Advance(ctx, gridGenerationKey, gridCachePattern)
	s.metrics.RecordTransition(string(target))
	s.logger.Info("session status changed",
		zap.String("session_id", session.ID),
		zap.String("class_id", session.ClassID),
		zap.String("from", string(previous)),
		zap.String("to", string(target)))
	return session, nil
}

// loadClassSession fetches a session and checks it belongs to the class in the path.
func loadClassSession(ctx context.Context, sessions sessionStatusStore, exec sqlx.ExtContext, classID, sessionID string) (*models.SessionDetail, error) {
	session, err := sessions.FindByID(ctx, exec, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.ClassID != classID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found for this class")
	}
	return session, nil
}
