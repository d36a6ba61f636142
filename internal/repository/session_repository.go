package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/course-schedule-api/internal/models"
	"github.com/noah-isme/course-schedule-api/internal/scheduling"
)

const sessionColumns = `s.id, s.class_id, s.session_date, s.start_time, s.end_time, s.room_id, s.lecturer_id, s.status, s.note, s.makeup_of_session_id, s.created_at, s.updated_at`

const sessionDetailSelect = `SELECT ` + sessionColumns + `,
       c.name AS class_name, c.course_id, co.name AS course_name, r.name AS room_name, l.full_name AS lecturer_name
FROM class_sessions s
JOIN course_classes c ON c.id = s.class_id
JOIN courses co ON co.id = c.course_id
JOIN rooms r ON r.id = s.room_id
JOIN lecturers l ON l.id = s.lecturer_id`

// SessionRepository persists concrete class sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindOverlapping returns non-canceled sessions on any of the dates whose window intersects q.Window,
// optionally narrowed to a single room or lecturer.
func (r *SessionRepository) FindOverlapping(ctx context.Context, exec sqlx.ExtContext, q models.OverlapQuery) ([]models.SessionDetail, error) {
	if len(q.Dates) == 0 {
		return nil, nil
	}
	dates := make([]string, len(q.Dates))
	for i, d := range q.Dates {
		dates[i] = scheduling.FormatDate(d)
	}

	var sb strings.Builder
	sb.WriteString(sessionDetailSelect)
	sb.WriteString("\nWHERE s.status <> $1 AND s.session_date = ANY($2::date[]) AND s.start_time < $3 AND $4 < s.end_time")
	args := []interface{}{models.SessionCanceled, pq.Array(dates), q.Window.End, q.Window.Start}

	if q.ResourceID != "" {
		switch q.ResourceType {
		case models.ResourceRoom:
			args = append(args, q.ResourceID)
			sb.WriteString(fmt.Sprintf(" AND s.room_id = $%d", len(args)))
		case models.ResourceLecturer:
			args = append(args, q.ResourceID)
			sb.WriteString(fmt.Sprintf(" AND s.lecturer_id = $%d", len(args)))
		default:
			return nil, fmt.Errorf("unknown resource type %q", q.ResourceType)
		}
	}
	if len(q.ExcludeSessionIDs) > 0 {
		args = append(args, pq.Array(q.ExcludeSessionIDs))
		sb.WriteString(fmt.Sprintf(" AND NOT (s.id = ANY($%d))", len(args)))
	}
	sb.WriteString(" ORDER BY s.session_date ASC, s.start_time ASC")

	var sessions []models.SessionDetail
	if err := sqlx.SelectContext(ctx, r.exec(exec), &sessions, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("find overlapping sessions: %w", err)
	}
	return sessions, nil
}

// ListByFilter returns sessions of every status between filter.From and filter.To inclusive.
func (r *SessionRepository) ListByFilter(ctx context.Context, filter models.SessionFilter) ([]models.SessionDetail, error) {
	var sb strings.Builder
	sb.WriteString(sessionDetailSelect)
	sb.WriteString("\nWHERE s.session_date BETWEEN $1 AND $2")
	args := []interface{}{scheduling.FormatDate(filter.From), scheduling.FormatDate(filter.To)}

	if filter.RoomID != "" {
		args = append(args, filter.RoomID)
		sb.WriteString(fmt.Sprintf(" AND s.room_id = $%d", len(args)))
	}
	if filter.LecturerID != "" {
		args = append(args, filter.LecturerID)
		sb.WriteString(fmt.Sprintf(" AND s.lecturer_id = $%d", len(args)))
	}
	if filter.CourseID != "" {
		args = append(args, filter.CourseID)
		sb.WriteString(fmt.Sprintf(" AND c.course_id = $%d", len(args)))
	}
	if filter.ClassID != "" {
		args = append(args, filter.ClassID)
		sb.WriteString(fmt.Sprintf(" AND s.class_id = $%d", len(args)))
	}
	sb.WriteString(" ORDER BY s.session_date ASC, s.start_time ASC, c.name ASC")

	var sessions []models.SessionDetail
	if err := r.db.SelectContext(ctx, &sessions, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("list sessions by filter: %w", err)
	}
	return sessions, nil
}

// ListByClass returns all sessions of a class in calendar order.
func (r *SessionRepository) ListByClass(ctx context.Context, classID string) ([]models.SessionDetail, error) {
	query := sessionDetailSelect + "\nWHERE s.class_id = $1 ORDER BY s.session_date ASC, s.start_time ASC"
	var sessions []models.SessionDetail
	if err := r.db.SelectContext(ctx, &sessions, query, classID); err != nil {
		return nil, fmt.Errorf("list sessions by class: %w", err)
	}
	return sessions, nil
}

// FindByID loads one session; sql.ErrNoRows when absent.
func (r *SessionRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.SessionDetail, error) {
	query := sessionDetailSelect + "\nWHERE s.id = $1"
	var session models.SessionDetail
	if err := sqlx.GetContext(ctx, r.exec(exec), &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// FindMakeupOf returns the makeup scheduled for a canceled session; sql.ErrNoRows when none exists.
func (r *SessionRepository) FindMakeupOf(ctx context.Context, exec sqlx.ExtContext, sessionID string) (*models.Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM class_sessions s WHERE s.makeup_of_session_id = $1`
	var session models.Session
	if err := sqlx.GetContext(ctx, r.exec(exec), &session, query, sessionID); err != nil {
		return nil, err
	}
	return &session, nil
}

// ClassDatesBetween lists the dates in [from, to] on which the class already has a session of any status.
func (r *SessionRepository) ClassDatesBetween(ctx context.Context, exec sqlx.ExtContext, classID string, from, to time.Time) ([]time.Time, error) {
	const query = `SELECT DISTINCT session_date FROM class_sessions WHERE class_id = $1 AND session_date BETWEEN $2 AND $3 ORDER BY session_date`
	var dates []time.Time
	if err := sqlx.SelectContext(ctx, r.exec(exec), &dates, query, classID, scheduling.FormatDate(from), scheduling.FormatDate(to)); err != nil {
		return nil, fmt.Errorf("list class session dates: %w", err)
	}
	return dates, nil
}

// InsertBatch stores sessions, assigning IDs and timestamps where missing.
func (r *SessionRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, sessions []models.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO class_sessions (id, class_id, session_date, start_time, end_time, room_id, lecturer_id, status, note, makeup_of_session_id, created_at, updated_at)
VALUES (:id, :class_id, :session_date, :start_time, :end_time, :room_id, :lecturer_id, :status, :note, :makeup_of_session_id, :created_at, :updated_at)`

	for i := range sessions {
		session := &sessions[i]
		if session.ID == "" {
			session.ID = uuid.NewString()
		}
		if session.Status == "" {
			session.Status = models.SessionNotCompleted
		}
		if session.CreatedAt.IsZero() {
			session.CreatedAt = now
		}
		session.UpdatedAt = now
		if _, err := sqlx.NamedExecContext(ctx, target, query, session); err != nil {
			return fmt.Errorf("insert class session: %w", err)
		}
	}
	return nil
}

// UpdateStatus moves a session from one status to another. It returns sql.ErrNoRows when the
// session is missing or no longer in the expected status.
func (r *SessionRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, from, to models.SessionStatus, note *string) error {
	const query = `UPDATE class_sessions SET status = $1, note = COALESCE($2, note), updated_at = $3 WHERE id = $4 AND status = $5`
	result, err := r.exec(exec).ExecContext(ctx, query, to, note, time.Now().UTC(), id, from)
	if err != nil {
		return fmt.Errorf("update class session status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("class session rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
