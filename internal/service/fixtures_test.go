package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-schedule-api/internal/models"
	"github.com/noah-isme/course-schedule-api/internal/scheduling"
)

func day(raw string) time.Time {
	d, err := scheduling.ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func clock(raw string) scheduling.Clock {
	return scheduling.MustClock(raw)
}

func booking(id, classID, roomID, lecturerID, date, start, end string) models.SessionDetail {
	return models.SessionDetail{
		Session: models.Session{
			ID:          id,
			ClassID:     classID,
			SessionDate: day(date),
			StartTime:   clock(start),
			EndTime:     clock(end),
			RoomID:      roomID,
			LecturerID:  lecturerID,
			Status:      models.SessionNotCompleted,
		},
		ClassName:    "Class " + classID,
		CourseName:   "Course of " + classID,
		RoomName:     "Room " + roomID,
		LecturerName: "Lecturer " + lecturerID,
	}
}

// memSessions is an in-memory session store applying the same filters as the SQL repository.
type memSessions struct {
	mu        sync.Mutex
	sessions  []models.SessionDetail
	seq       int
	updateErr error
}

func newMemSessions(sessions ...models.SessionDetail) *memSessions {
	return &memSessions{sessions: sessions}
}

func (m *memSessions) FindOverlapping(ctx context.Context, exec sqlx.ExtContext, q models.OverlapQuery) ([]models.SessionDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dates := make(map[string]bool, len(q.Dates))
	for _, d := range q.Dates {
		dates[scheduling.FormatDate(d)] = true
	}
	excluded := make(map[string]bool, len(q.ExcludeSessionIDs))
	for _, id := range q.ExcludeSessionIDs {
		excluded[id] = true
	}
	var out []models.SessionDetail
	for _, s := range m.sessions {
		if s.Status == models.SessionCanceled || excluded[s.ID] || !dates[scheduling.FormatDate(s.SessionDate)] {
			continue
		}
		if !q.Window.Overlaps(s.Window()) {
			continue
		}
		if q.ResourceType == models.ResourceRoom && s.RoomID != q.ResourceID {
			continue
		}
		if q.ResourceType == models.ResourceLecturer && s.LecturerID != q.ResourceID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memSessions) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.SessionDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.ID == id {
			found := s
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memSessions) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, from, to models.SessionStatus, note *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	for i := range m.sessions {
		if m.sessions[i].ID == id && m.sessions[i].Status == from {
			m.sessions[i].Status = to
			if note != nil {
				m.sessions[i].Note = note
			}
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memSessions) FindMakeupOf(ctx context.Context, exec sqlx.ExtContext, sessionID string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.MakeupOfSessionID != nil && *s.MakeupOfSessionID == sessionID {
			found := s.Session
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memSessions) ClassDatesBetween(ctx context.Context, exec sqlx.ExtContext, classID string, from, to time.Time) ([]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var out []time.Time
	for _, s := range m.sessions {
		key := scheduling.FormatDate(s.SessionDate)
		if s.ClassID != classID || s.SessionDate.Before(from) || s.SessionDate.After(to) || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s.SessionDate)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (m *memSessions) InsertBatch(ctx context.Context, exec sqlx.ExtContext, sessions []models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range sessions {
		m.seq++
		sessions[i].ID = fmt.Sprintf("gen-%d", m.seq)
		m.sessions = append(m.sessions, models.SessionDetail{Session: sessions[i]})
	}
	return nil
}

func (m *memSessions) ListByClass(ctx context.Context, classID string) ([]models.SessionDetail, error) {
	return m.ListByFilter(ctx, models.SessionFilter{ClassID: classID})
}

func (m *memSessions) ListByFilter(ctx context.Context, filter models.SessionFilter) ([]models.SessionDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SessionDetail
	for _, s := range m.sessions {
		if !filter.From.IsZero() && (s.SessionDate.Before(filter.From) || s.SessionDate.After(filter.To)) {
			continue
		}
		if (filter.RoomID != "" && s.RoomID != filter.RoomID) ||
			(filter.LecturerID != "" && s.LecturerID != filter.LecturerID) ||
			(filter.CourseID != "" && s.CourseID != filter.CourseID) ||
			(filter.ClassID != "" && s.ClassID != filter.ClassID) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memSessions) byID(id string) models.SessionDetail {
	found, _ := m.FindByID(context.Background(), nil, id)
	return *found
}

func (m *memSessions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

type memClasses struct {
	classes map[string]models.CourseClassDetail
	created []models.CourseClass
}

func (m *memClasses) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.CourseClassDetail, error) {
	class, ok := m.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &class, nil
}

func (m *memClasses) Create(ctx context.Context, exec sqlx.ExtContext, class *models.CourseClass) error {
	class.ID = "class-new"
	m.created = append(m.created, *class)
	return nil
}

type memRooms []models.Room

func (m memRooms) ListActive(ctx context.Context) ([]models.Room, error) {
	var out []models.Room
	for _, r := range m {
		if r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m memRooms) FindByID(ctx context.Context, id string) (*models.Room, error) {
	for _, r := range m {
		if r.ID == id {
			room := r
			return &room, nil
		}
	}
	return nil, sql.ErrNoRows
}

type memLecturers []models.Lecturer

func (m memLecturers) ListActive(ctx context.Context) ([]models.Lecturer, error) {
	var out []models.Lecturer
	for _, l := range m {
		if l.Active {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m memLecturers) FindByID(ctx context.Context, id string) (*models.Lecturer, error) {
	for _, l := range m {
		if l.ID == id {
			lecturer := l
			return &lecturer, nil
		}
	}
	return nil, sql.ErrNoRows
}

type memCourses map[string]models.Course

func (m memCourses) FindByID(ctx context.Context, id string) (*models.Course, error) {
	course, ok := m[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &course, nil
}

type lockRecorder struct {
	calls [][]string
}

func (l *lockRecorder) Lock(ctx context.Context, exec sqlx.ExtContext, keys ...string) error {
	l.calls = append(l.calls, keys)
	return nil
}

func defaultRooms() memRooms {
	return memRooms{
		{ID: "r-1", Name: "Room 101", Active: true},
		{ID: "r-2", Name: "Room 102", Active: true},
		{ID: "r-3", Name: "Closed Lab", Active: false},
	}
}

func defaultLecturers() memLecturers {
	return memLecturers{
		{ID: "l-1", FullName: "Ana", Active: true},
		{ID: "l-2", FullName: "Budi", Active: true},
	}
}

func newTxMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}
