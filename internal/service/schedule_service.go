package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/raghad-alharthi/student-management-api/internal/models"
	appErrors "github.com/raghad-alharthi/student-management-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, int, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Class, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	UpdateTeacher(ctx context.Context, classID, teacherID string) error
	ClearTeacher(ctx context.Context, teacherID string) (int64, error)
	DeleteCascade(ctx context.Context, classID string) error
	ListSickLeaveFiles(ctx context.Context, classID string) ([]string, error)
}

type lectureRepository interface {
	FindByID(ctx context.Context, id string) (*models.Lecture, error)
	ListByClass(ctx context.Context, classID string) ([]models.Lecture, error)
	ListPastByClass(ctx context.Context, classID string, until time.Time) ([]models.Lecture, error)
	ListByTeacher(ctx context.Context, teacherID, excludeClassID string) ([]models.Lecture, error)
	BulkCreate(ctx context.Context, classID string, times []time.Time) error
	CountByClass(ctx context.Context, classID string) (int, error)
}

type teacherLookupRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type summaryInvalidator interface {
	InvalidateClass(ctx context.Context, classID string)
}

type attachmentRemover interface {
	Delete(ref string) error
}

// ScheduleService owns class lifecycle and the semester schedule that comes
// with it: generating weekly lectures, guarding teacher availability, and
// tearing everything down on delete.
type ScheduleService struct {
	classRepo   classRepository
	lectureRepo lectureRepository
	userRepo    teacherLookupRepository
	cache       summaryInvalidator
	storage     attachmentRemover
	validator   *validator.Validate
	logger      *zap.Logger

	weeksPerSemester int
	buffer           time.Duration
	now              func() time.Time
}

// NewScheduleService constructs the schedule service.
func NewScheduleService(classes classRepository, lectures lectureRepository, users teacherLookupRepository, cache summaryInvalidator, storage attachmentRemover, validate *validator.Validate, logger *zap.Logger, weeksPerSemester, bufferMinutes int) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if weeksPerSemester <= 0 {
		weeksPerSemester = DefaultSemesterWeeks
	}
	if bufferMinutes <= 0 {
		bufferMinutes = 120
	}
	return &ScheduleService{
		classRepo:        classes,
		lectureRepo:      lectures,
		userRepo:         users,
		cache:            cache,
		storage:          storage,
		validator:        validate,
		logger:           logger,
		weeksPerSemester: weeksPerSemester,
		buffer:           time.Duration(bufferMinutes) * time.Minute,
		now:              time.Now,
	}
}

// WithClock overrides the service clock. Intended for tests.
func (s *ScheduleService) WithClock(now func() time.Time) *ScheduleService {
	if now != nil {
		s.now = now
	}
	return s
}

// CreateClassRequest describes a new class and its weekly slot.
type CreateClassRequest struct {
	Name      string  `json:"name" validate:"required,min=1,max=120"`
	TeacherID *string `json:"teacher_id"`
	Weekday   string  `json:"weekday" validate:"required"`
	Time      string  `json:"time" validate:"required"`
	StartDate string  `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	Weeks     int     `json:"weeks" validate:"omitempty,min=1,max=52"`
}

// CreatedClass couples the stored class with its generated schedule.
type CreatedClass struct {
	Class    models.Class     `json:"class"`
	Lectures []models.Lecture `json:"lectures"`
}

// CreateClass validates the slot against policy and teacher availability,
// stores the class, and generates its full semester of lectures.
func (s *ScheduleService) CreateClass(ctx context.Context, req CreateClassRequest) (*CreatedClass, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	weekday, err := parseWeekday(req.Weekday)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	timeOfDay, err := ParseTimeOfDay(req.Time)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if err := ValidateSlot(weekday, timeOfDay); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	start := s.now()
	if req.StartDate != "" {
		start, err = time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start date")
		}
	}

	slot := models.LectureSlot{Weekday: weekday, Minutes: int(timeOfDay.Minutes())}
	if req.TeacherID != nil {
		if err := s.requireTeacher(ctx, *req.TeacherID); err != nil {
			return nil, err
		}
		if err := s.requireTeacherAvailable(ctx, *req.TeacherID, slot, ""); err != nil {
			return nil, err
		}
	}

	class := &models.Class{Name: req.Name, TeacherID: req.TeacherID}
	if err := s.classRepo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}

	weeks := req.Weeks
	if weeks <= 0 {
		weeks = s.weeksPerSemester
	}
	dates := GenerateLectureDates(start, weekday, timeOfDay, weeks)
	if err := s.lectureRepo.BulkCreate(ctx, class.ID, dates); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate lectures")
	}

	lectures, err := s.lectureRepo.ListByClass(ctx, class.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load generated lectures")
	}

	s.logger.Info("class created",
		zap.String("class_id", class.ID),
		zap.String("weekday", weekday.String()),
		zap.Int("lectures", len(lectures)))
	return &CreatedClass{Class: *class, Lectures: lectures}, nil
}

// ListClasses returns classes with teacher and first-lecture details.
func (s *ScheduleService) ListClasses(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, int, error) {
	classes, total, err := s.classRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, total, nil
}

// GetClass loads a single class.
func (s *ScheduleService) GetClass(ctx context.Context, classID string) (*models.Class, error) {
	class, err := s.classRepo.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// ListClassLectures returns a class's full schedule in chronological order.
func (s *ScheduleService) ListClassLectures(ctx context.Context, classID string) ([]models.Lecture, error) {
	if _, err := s.GetClass(ctx, classID); err != nil {
		return nil, err
	}
	lectures, err := s.lectureRepo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lectures")
	}
	return lectures, nil
}

// ReassignTeacher moves the class to another teacher after re-checking that
// teacher's availability against the class's weekly slot.
func (s *ScheduleService) ReassignTeacher(ctx context.Context, classID, teacherID string) error {
	class, err := s.GetClass(ctx, classID)
	if err != nil {
		return err
	}
	if err := s.requireTeacher(ctx, teacherID); err != nil {
		return err
	}

	lectures, err := s.lectureRepo.ListByClass(ctx, classID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class schedule")
	}
	// Generation keeps all lectures on one weekly slot, but the check covers
	// every distinct slot so hand-edited schedules stay safe too.
	checked := make(map[models.LectureSlot]bool, 1)
	for _, lecture := range lectures {
		slot := models.SlotOf(lecture.ScheduledAt)
		if checked[slot] {
			continue
		}
		checked[slot] = true
		if err := s.requireTeacherAvailable(ctx, teacherID, slot, classID); err != nil {
			return err
		}
	}

	if err := s.classRepo.UpdateTeacher(ctx, classID, teacherID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reassign teacher")
	}
	s.logger.Info("class teacher reassigned", zap.String("class_id", class.ID), zap.String("teacher_id", teacherID))
	return nil
}

// DeleteClass removes a class with its lectures, enrollments, attendance rows
// and stored sick-leave files. Deleting a class that no longer exists is a
// no-op.
func (s *ScheduleService) DeleteClass(ctx context.Context, classID string) error {
	if _, err := s.classRepo.FindByID(ctx, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	files, err := s.classRepo.ListSickLeaveFiles(ctx, classID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to collect class attachments")
	}

	if err := s.classRepo.DeleteCascade(ctx, classID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}

	// Attachments are released after the rows are gone; a failed unlink only
	// leaks a file, never database consistency.
	if s.storage != nil {
		for _, ref := range files {
			if err := s.storage.Delete(ref); err != nil {
				s.logger.Warn("failed to remove sick-leave attachment", zap.String("ref", ref), zap.Error(err))
			}
		}
	}
	if s.cache != nil {
		s.cache.InvalidateClass(ctx, classID)
	}

	s.logger.Info("class deleted", zap.String("class_id", classID), zap.Int("attachments_released", len(files)))
	return nil
}

// ClearTeacher unassigns a teacher from every class they taught and reports
// how many classes were affected. Used when a teacher account is removed.
func (s *ScheduleService) ClearTeacher(ctx context.Context, teacherID string) (int64, error) {
	affected, err := s.classRepo.ClearTeacher(ctx, teacherID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unassign teacher")
	}
	return affected, nil
}

// TeacherAvailable reports whether the teacher can take a class in the given
// slot, ignoring lectures of excludeClassID.
func (s *ScheduleService) TeacherAvailable(ctx context.Context, teacherID string, slot models.LectureSlot, excludeClassID string) (bool, error) {
	lectures, err := s.lectureRepo.ListByTeacher(ctx, teacherID, excludeClassID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher schedule")
	}
	for _, lecture := range lectures {
		if SlotsConflict(models.SlotOf(lecture.ScheduledAt), slot, s.buffer) {
			return false, nil
		}
	}
	return true, nil
}

func (s *ScheduleService) requireTeacherAvailable(ctx context.Context, teacherID string, slot models.LectureSlot, excludeClassID string) error {
	available, err := s.TeacherAvailable(ctx, teacherID, slot, excludeClassID)
	if err != nil {
		return err
	}
	if !available {
		return appErrors.Clone(appErrors.ErrScheduleConflict, "teacher already has a lecture too close to this slot")
	}
	return nil
}

func (s *ScheduleService) requireTeacher(ctx context.Context, teacherID string) error {
	user, err := s.userRepo.FindByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if user.Role != models.RoleTeacher {
		return appErrors.Clone(appErrors.ErrValidation, "assigned user is not a teacher")
	}
	return nil
}

func parseWeekday(raw string) (time.Weekday, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SUNDAY":
		return time.Sunday, nil
	case "MONDAY":
		return time.Monday, nil
	case "TUESDAY":
		return time.Tuesday, nil
	case "WEDNESDAY":
		return time.Wednesday, nil
	case "THURSDAY":
		return time.Thursday, nil
	case "FRIDAY":
		return time.Friday, nil
	case "SATURDAY":
		return time.Saturday, nil
	default:
		return 0, fmt.Errorf("unknown weekday %q", raw)
	}
}
