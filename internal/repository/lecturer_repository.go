package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-schedule-api/internal/models"
)

// LecturerRepository reads the lecturer roster.
type LecturerRepository struct {
	db *sqlx.DB
}

// NewLecturerRepository constructs the repository.
func NewLecturerRepository(db *sqlx.DB) *LecturerRepository {
	return &LecturerRepository{db: db}
}

// ListActive returns active lecturers ordered by name.
func (r *LecturerRepository) ListActive(ctx context.Context) ([]models.Lecturer, error) {
	const query = `SELECT id, full_name, email, active, created_at, updated_at FROM lecturers WHERE active = TRUE ORDER BY full_name ASC`
	var lecturers []models.Lecturer
	if err := r.db.SelectContext(ctx, &lecturers, query); err != nil {
		return nil, fmt.Errorf("list active lecturers: %w", err)
	}
	return lecturers, nil
}

// FindByID loads one lecturer; sql.ErrNoRows when absent.
func (r *LecturerRepository) FindByID(ctx context.Context, id string) (*models.Lecturer, error) {
	const query = `SELECT id, full_name, email, active, created_at, updated_at FROM lecturers WHERE id = $1`
	var lecturer models.Lecturer
	if err := r.db.GetContext(ctx, &lecturer, query, id); err != nil {
		return nil, err
	}
	return &lecturer, nil
}
