package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/raghad-alharthi/student-management-api/internal/models"
	appErrors "github.com/raghad-alharthi/student-management-api/pkg/errors"
)

type enrollmentRepository interface {
	Exists(ctx context.Context, studentID, classID string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, studentID, classID string) error
	ListStudentsByClass(ctx context.Context, classID string) ([]models.User, error)
	ListClassesByStudent(ctx context.Context, studentID string) ([]models.Class, error)
}

// EnrollmentService links students to classes.
type EnrollmentService struct {
	repo      enrollmentRepository
	userRepo  userRepository
	classRepo classRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(repo enrollmentRepository, users userRepository, classes classRepository, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, userRepo: users, classRepo: classes, validator: validate, logger: logger}
}

// EnrollRequest links one student to one class.
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	ClassID   string `json:"class_id" validate:"required"`
}

// Enroll adds a student to a class. The pair must not already exist and the
// user must actually be a student.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	student, err := s.userRepo.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user is not a student")
	}

	if _, err := s.classRepo.FindByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	exists, err := s.repo.Exists(ctx, req.StudentID, req.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student already enrolled in this class")
	}

	enrollment := &models.Enrollment{StudentID: req.StudentID, ClassID: req.ClassID}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	s.logger.Info("student enrolled",
		zap.String("student_id", req.StudentID),
		zap.String("class_id", req.ClassID))
	return enrollment, nil
}

// Unenroll removes a student from a class.
func (s *EnrollmentService) Unenroll(ctx context.Context, studentID, classID string) error {
	exists, err := s.repo.Exists(ctx, studentID, classID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	if err := s.repo.Delete(ctx, studentID, classID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
	}
	s.logger.Info("student unenrolled", zap.String("student_id", studentID), zap.String("class_id", classID))
	return nil
}

// ClassStudents lists the students enrolled in a class.
func (s *EnrollmentService) ClassStudents(ctx context.Context, classID string) ([]models.User, error) {
	if _, err := s.classRepo.FindByID(ctx, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	students, err := s.repo.ListStudentsByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// StudentClasses lists the classes a student is enrolled in.
func (s *EnrollmentService) StudentClasses(ctx context.Context, studentID string) ([]models.Class, error) {
	classes, err := s.repo.ListClassesByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}
