package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/raghad-alharthi/student-management-api/internal/models"
)

// ClassRepository provides persistence for classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns classes joined with teacher name and first lecture date.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, int, error) {
	base := `FROM classes c
LEFT JOIN users t ON t.id = c.teacher_id`
	var conditions []string
	var args []interface{}

	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("c.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("c.name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT c.id, c.name, c.teacher_id, c.created_at, c.updated_at,
        CASE WHEN t.id IS NULL THEN NULL ELSE t.first_name || ' ' || t.last_name END AS teacher_name,
        (SELECT MIN(l.scheduled_at) FROM lectures l WHERE l.class_id = c.id) AS first_lecture
        %s ORDER BY c.name ASC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var classes []models.ClassDetail
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list classes: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count classes: %w", err)
	}
	return classes, total, nil
}

// ListByTeacher returns classes taught by the given teacher.
func (r *ClassRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Class, error) {
	const query = `SELECT id, name, teacher_id, created_at, updated_at FROM classes WHERE teacher_id = $1 ORDER BY name ASC`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, teacherID); err != nil {
		return nil, fmt.Errorf("list classes by teacher: %w", err)
	}
	return classes, nil
}

// FindByID loads a class by id.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	const query = `SELECT id, name, teacher_id, created_at, updated_at FROM classes WHERE id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// Create stores a new class record.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = now

	const query = `INSERT INTO classes (id, name, teacher_id, created_at, updated_at)
        VALUES (:id, :name, :teacher_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// UpdateTeacher reassigns the class to another teacher.
func (r *ClassRepository) UpdateTeacher(ctx context.Context, classID, teacherID string) error {
	const query = `UPDATE classes SET teacher_id = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, classID, teacherID, time.Now().UTC()); err != nil {
		return fmt.Errorf("update class teacher: %w", err)
	}
	return nil
}

// ClearTeacher unassigns the teacher from every class they taught. Classes
// survive teacher deletion.
func (r *ClassRepository) ClearTeacher(ctx context.Context, teacherID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE classes SET teacher_id = NULL, updated_at = $2 WHERE teacher_id = $1`, teacherID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("clear class teacher: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear class teacher: %w", err)
	}
	return affected, nil
}

// DeleteCascade removes a class and everything referencing it, in dependency
// order: enrollments, attendance rows for its lectures, lectures, the class.
func (r *ClassRepository) DeleteCascade(ctx context.Context, classID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin class cascade delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM enrollments WHERE class_id = $1`, classID); err != nil {
		return fmt.Errorf("delete class enrollments: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM attendance WHERE lecture_id IN (SELECT id FROM lectures WHERE class_id = $1)`, classID); err != nil {
		return fmt.Errorf("delete class attendance: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM lectures WHERE class_id = $1`, classID); err != nil {
		return fmt.Errorf("delete class lectures: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, classID); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit class cascade delete: %w", err)
	}
	return nil
}

// ListSickLeaveFiles returns the attachment references stored for a class's
// attendance rows, so the caller can release them after a cascade delete.
func (r *ClassRepository) ListSickLeaveFiles(ctx context.Context, classID string) ([]string, error) {
	const query = `SELECT a.sick_leave_file FROM attendance a
        JOIN lectures l ON l.id = a.lecture_id
        WHERE l.class_id = $1 AND a.sick_leave_file IS NOT NULL`
	var files []string
	if err := r.db.SelectContext(ctx, &files, query, classID); err != nil {
		return nil, fmt.Errorf("list class sick leave files: %w", err)
	}
	return files, nil
}
