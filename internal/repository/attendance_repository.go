package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/raghad-alharthi/student-management-api/internal/models"
)

// AttendanceRepository persists recorded absences. Rows only exist for
// absences; presence is the implicit default.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// FindByID loads an attendance record by id.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.Attendance, error) {
	const query = `SELECT id, student_id, lecture_id, is_present, sick_leave_file, sick_leave_status, sick_leave_comment, created_at, updated_at
        FROM attendance WHERE id = $1`
	var record models.Attendance
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByStudentLecture loads the absence row for a (student, lecture) pair.
func (r *AttendanceRepository) FindByStudentLecture(ctx context.Context, studentID, lectureID string) (*models.Attendance, error) {
	const query = `SELECT id, student_id, lecture_id, is_present, sick_leave_file, sick_leave_status, sick_leave_comment, created_at, updated_at
        FROM attendance WHERE student_id = $1 AND lecture_id = $2`
	var record models.Attendance
	if err := r.db.GetContext(ctx, &record, query, studentID, lectureID); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByLecture returns absence rows for a lecture.
func (r *AttendanceRepository) ListByLecture(ctx context.Context, lectureID string) ([]models.Attendance, error) {
	const query = `SELECT id, student_id, lecture_id, is_present, sick_leave_file, sick_leave_status, sick_leave_comment, created_at, updated_at
        FROM attendance WHERE lecture_id = $1`
	var records []models.Attendance
	if err := r.db.SelectContext(ctx, &records, query, lectureID); err != nil {
		return nil, fmt.Errorf("list attendance by lecture: %w", err)
	}
	return records, nil
}

// ListAppealsByLecture returns absence rows carrying sick-leave evidence,
// joined with student names for the review queue.
func (r *AttendanceRepository) ListAppealsByLecture(ctx context.Context, lectureID string) ([]models.AttendanceDetail, error) {
	const query = `SELECT a.id, a.student_id, a.lecture_id, a.is_present, a.sick_leave_file, a.sick_leave_status, a.sick_leave_comment, a.created_at, a.updated_at,
        u.first_name || ' ' || u.last_name AS student_name, l.scheduled_at
        FROM attendance a
        JOIN users u ON u.id = a.student_id
        JOIN lectures l ON l.id = a.lecture_id
        WHERE a.lecture_id = $1 AND a.sick_leave_file IS NOT NULL
        ORDER BY u.last_name ASC`
	var records []models.AttendanceDetail
	if err := r.db.SelectContext(ctx, &records, query, lectureID); err != nil {
		return nil, fmt.Errorf("list sick leave appeals: %w", err)
	}
	return records, nil
}

// ListAbsencesByStudentClass returns a student's absence rows for one class.
func (r *AttendanceRepository) ListAbsencesByStudentClass(ctx context.Context, studentID, classID string) ([]models.AttendanceDetail, error) {
	const query = `SELECT a.id, a.student_id, a.lecture_id, a.is_present, a.sick_leave_file, a.sick_leave_status, a.sick_leave_comment, a.created_at, a.updated_at,
        u.first_name || ' ' || u.last_name AS student_name, l.scheduled_at
        FROM attendance a
        JOIN users u ON u.id = a.student_id
        JOIN lectures l ON l.id = a.lecture_id
        WHERE a.student_id = $1 AND l.class_id = $2 AND a.is_present = false
        ORDER BY l.scheduled_at ASC`
	var records []models.AttendanceDetail
	if err := r.db.SelectContext(ctx, &records, query, studentID, classID); err != nil {
		return nil, fmt.Errorf("list student absences: %w", err)
	}
	return records, nil
}

// Create inserts a new absence row.
func (r *AttendanceRepository) Create(ctx context.Context, record *models.Attendance) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.SickLeaveStatus == "" {
		record.SickLeaveStatus = models.SickLeavePending
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	const query = `INSERT INTO attendance (id, student_id, lecture_id, is_present, sick_leave_file, sick_leave_status, sick_leave_comment, created_at, updated_at)
        VALUES (:id, :student_id, :lecture_id, :is_present, :sick_leave_file, :sick_leave_status, :sick_leave_comment, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}
	return nil
}

// UpdateSickLeave persists the appeal fields of an absence row.
func (r *AttendanceRepository) UpdateSickLeave(ctx context.Context, record *models.Attendance) error {
	record.UpdatedAt = time.Now().UTC()
	const query = `UPDATE attendance SET sick_leave_file = :sick_leave_file, sick_leave_status = :sick_leave_status, sick_leave_comment = :sick_leave_comment, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("update sick leave: %w", err)
	}
	return nil
}

// Delete removes an absence row; used when a student is reinstated present.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM attendance WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	return nil
}

// CountAbsences returns how many of the class's lectures the student missed.
func (r *AttendanceRepository) CountAbsences(ctx context.Context, studentID, classID string) (int, error) {
	const query = `SELECT COUNT(*) FROM attendance a
        JOIN lectures l ON l.id = a.lecture_id
        WHERE a.student_id = $1 AND l.class_id = $2 AND a.is_present = false`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID, classID); err != nil {
		return 0, fmt.Errorf("count absences: %w", err)
	}
	return count, nil
}
