package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-schedule-api/internal/models"
)

// CourseClassRepository persists course class definitions.
type CourseClassRepository struct {
	db *sqlx.DB
}

// NewCourseClassRepository constructs the repository.
func NewCourseClassRepository(db *sqlx.DB) *CourseClassRepository {
	return &CourseClassRepository{db: db}
}

func (r *CourseClassRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByID loads a class with its display names.
func (r *CourseClassRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.CourseClassDetail, error) {
	const query = `
SELECT c.id, c.name, c.course_id, c.room_id, c.lecturer_id, c.schedule_pattern, c.start_date, c.start_time,
       c.duration_minutes, c.total_sessions, c.created_at, c.updated_at,
       co.name AS course_name, r.name AS room_name, l.full_name AS lecturer_name
FROM course_classes c
JOIN courses co ON co.id = c.course_id
JOIN rooms r ON r.id = c.room_id
JOIN lecturers l ON l.id = c.lecturer_id
WHERE c.id = $1`
	var class models.CourseClassDetail
	if err := sqlx.GetContext(ctx, r.exec(exec), &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// Create inserts a class definition.
func (r *CourseClassRepository) Create(ctx context.Context, exec sqlx.ExtContext, class *models.CourseClass) error {
	if class == nil {
		return fmt.Errorf("course class payload is nil")
	}
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now

	const query = `
INSERT INTO course_classes (id, name, course_id, room_id, lecturer_id, schedule_pattern, start_date, start_time, duration_minutes, total_sessions, created_at, updated_at)
VALUES (:id, :name, :course_id, :room_id, :lecturer_id, :schedule_pattern, :start_date, :start_time, :duration_minutes, :total_sessions, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, class); err != nil {
		return fmt.Errorf("insert course class: %w", err)
	}
	return nil
}
