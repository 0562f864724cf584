package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/raghad-alharthi/student-management-api/internal/models"
)

// EnrollmentRepository handles persistence of student-class links.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Exists checks whether the student is already enrolled in the class.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, classID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE student_id = $1 AND class_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, classID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// Create persists a new enrollment record.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	const query = `INSERT INTO enrollments (id, student_id, class_id) VALUES (:id, :student_id, :class_id)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Delete removes an enrollment link.
func (r *EnrollmentRepository) Delete(ctx context.Context, studentID, classID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE student_id = $1 AND class_id = $2`, studentID, classID); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

// ListStudentsByClass returns the enrolled students for a class.
func (r *EnrollmentRepository) ListStudentsByClass(ctx context.Context, classID string) ([]models.User, error) {
	const query = `SELECT u.id, u.first_name, u.last_name, u.username, u.password_hash, u.role, u.created_at, u.updated_at
        FROM enrollments e
        JOIN users u ON u.id = e.student_id
        WHERE e.class_id = $1
        ORDER BY u.last_name ASC, u.first_name ASC`
	var students []models.User
	if err := r.db.SelectContext(ctx, &students, query, classID); err != nil {
		return nil, fmt.Errorf("list students by class: %w", err)
	}
	return students, nil
}

// ListClassesByStudent returns the classes a student is enrolled in.
func (r *EnrollmentRepository) ListClassesByStudent(ctx context.Context, studentID string) ([]models.Class, error) {
	const query = `SELECT c.id, c.name, c.teacher_id, c.created_at, c.updated_at
        FROM enrollments e
        JOIN classes c ON c.id = e.class_id
        WHERE e.student_id = $1
        ORDER BY c.name ASC`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, studentID); err != nil {
		return nil, fmt.Errorf("list classes by student: %w", err)
	}
	return classes, nil
}
