package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/raghad-alharthi/student-management-api/internal/models"
)

// LectureRepository provides persistence for scheduled lectures.
type LectureRepository struct {
	db *sqlx.DB
}

// NewLectureRepository creates a new lecture repository.
func NewLectureRepository(db *sqlx.DB) *LectureRepository {
	return &LectureRepository{db: db}
}

// FindByID loads a lecture by id.
func (r *LectureRepository) FindByID(ctx context.Context, id string) (*models.Lecture, error) {
	const query = `SELECT id, class_id, scheduled_at FROM lectures WHERE id = $1`
	var lecture models.Lecture
	if err := r.db.GetContext(ctx, &lecture, query, id); err != nil {
		return nil, err
	}
	return &lecture, nil
}

// ListByClass returns a class's lectures ordered by date.
func (r *LectureRepository) ListByClass(ctx context.Context, classID string) ([]models.Lecture, error) {
	const query = `SELECT id, class_id, scheduled_at FROM lectures WHERE class_id = $1 ORDER BY scheduled_at ASC`
	var lectures []models.Lecture
	if err := r.db.SelectContext(ctx, &lectures, query, classID); err != nil {
		return nil, fmt.Errorf("list lectures by class: %w", err)
	}
	return lectures, nil
}

// ListPastByClass returns a class's lectures up to the given instant, newest
// first. Teachers only take attendance for sessions that already happened.
func (r *LectureRepository) ListPastByClass(ctx context.Context, classID string, until time.Time) ([]models.Lecture, error) {
	const query = `SELECT id, class_id, scheduled_at FROM lectures WHERE class_id = $1 AND scheduled_at <= $2 ORDER BY scheduled_at DESC`
	var lectures []models.Lecture
	if err := r.db.SelectContext(ctx, &lectures, query, classID, until); err != nil {
		return nil, fmt.Errorf("list past lectures: %w", err)
	}
	return lectures, nil
}

// ListByTeacher returns every lecture taught by the teacher across all their
// classes, optionally excluding one class.
func (r *LectureRepository) ListByTeacher(ctx context.Context, teacherID, excludeClassID string) ([]models.Lecture, error) {
	query := `SELECT l.id, l.class_id, l.scheduled_at FROM lectures l
        JOIN classes c ON c.id = l.class_id
        WHERE c.teacher_id = $1`
	args := []interface{}{teacherID}
	if excludeClassID != "" {
		query += ` AND l.class_id <> $2`
		args = append(args, excludeClassID)
	}
	query += ` ORDER BY l.scheduled_at ASC`

	var lectures []models.Lecture
	if err := r.db.SelectContext(ctx, &lectures, query, args...); err != nil {
		return nil, fmt.Errorf("list lectures by teacher: %w", err)
	}
	return lectures, nil
}

// BulkCreate inserts a generated semester of lectures within a transaction.
func (r *LectureRepository) BulkCreate(ctx context.Context, classID string, times []time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk create lectures: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO lectures (id, class_id, scheduled_at) VALUES ($1, $2, $3)`
	for _, t := range times {
		if _, err = tx.ExecContext(ctx, query, uuid.NewString(), classID, t); err != nil {
			return fmt.Errorf("insert lecture: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk create lectures: %w", err)
	}
	return nil
}

// CountByClass returns the number of lectures in a class.
func (r *LectureRepository) CountByClass(ctx context.Context, classID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM lectures WHERE class_id = $1`, classID); err != nil {
		return 0, fmt.Errorf("count lectures: %w", err)
	}
	return count, nil
}
