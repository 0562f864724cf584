package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/raghad-alharthi/student-management-api/internal/models"
	appErrors "github.com/raghad-alharthi/student-management-api/pkg/errors"
)

type attendanceRepository interface {
	FindByID(ctx context.Context, id string) (*models.Attendance, error)
	FindByStudentLecture(ctx context.Context, studentID, lectureID string) (*models.Attendance, error)
	ListByLecture(ctx context.Context, lectureID string) ([]models.Attendance, error)
	ListAppealsByLecture(ctx context.Context, lectureID string) ([]models.AttendanceDetail, error)
	ListAbsencesByStudentClass(ctx context.Context, studentID, classID string) ([]models.AttendanceDetail, error)
	Create(ctx context.Context, record *models.Attendance) error
	UpdateSickLeave(ctx context.Context, record *models.Attendance) error
	Delete(ctx context.Context, id string) error
	CountAbsences(ctx context.Context, studentID, classID string) (int, error)
}

type enrollmentReader interface {
	ListStudentsByClass(ctx context.Context, classID string) ([]models.User, error)
	ListClassesByStudent(ctx context.Context, studentID string) ([]models.Class, error)
}

type summaryCache interface {
	GetSummary(ctx context.Context, studentID, classID string) (*models.AbsenceSummary, bool)
	SetSummary(ctx context.Context, summary models.AbsenceSummary)
	InvalidateClass(ctx context.Context, classID string)
}

type fileStore interface {
	Store(data []byte, suggestedName string) (string, error)
	Delete(ref string) error
}

type usageRecorder interface {
	ObserveCacheLookup(hit bool)
	ObserveRosterSave()
}

// AttendanceService owns the absence records and the sick-leave appeal flow
// layered on top of them. Presence is never stored; reinstating a student to
// present deletes the absence row and its attachment.
type AttendanceService struct {
	attendanceRepo attendanceRepository
	enrollmentRepo enrollmentReader
	lectureRepo    lectureRepository
	classRepo      classRepository
	cache          summaryCache
	storage        fileStore
	metrics        usageRecorder
	validator      *validator.Validate
	logger         *zap.Logger
	now            func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(attendance attendanceRepository, enrollments enrollmentReader, lectures lectureRepository, classes classRepository, cache summaryCache, storage fileStore, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		attendanceRepo: attendance,
		enrollmentRepo: enrollments,
		lectureRepo:    lectures,
		classRepo:      classes,
		cache:          cache,
		storage:        storage,
		validator:      validate,
		logger:         logger,
		now:            time.Now,
	}
}

// WithMetrics wires in usage instrumentation.
func (s *AttendanceService) WithMetrics(metrics usageRecorder) *AttendanceService {
	s.metrics = metrics
	return s
}

// WithClock overrides the service clock. Intended for tests.
func (s *AttendanceService) WithClock(now func() time.Time) *AttendanceService {
	if now != nil {
		s.now = now
	}
	return s
}

// RosterSaveEntry is one student's attendance mark in a roster submission.
type RosterSaveEntry struct {
	StudentID string `json:"student_id" validate:"required"`
	IsPresent bool   `json:"is_present"`
}

// SaveRosterRequest is a full attendance sheet for one lecture.
type SaveRosterRequest struct {
	LectureID string            `json:"lecture_id" validate:"required"`
	Entries   []RosterSaveEntry `json:"entries" validate:"required,min=1,dive"`
}

// SaveRoster records a lecture's attendance sheet. The sheet covers the whole
// enrollment: a student missing from the submission counts as absent. Marking
// a student absent inserts an absence row; marking a previously absent student
// present deletes the row together with any sick-leave attachment.
// Re-submitting the same sheet is a no-op.
func (s *AttendanceService) SaveRoster(ctx context.Context, actor *models.JWTClaims, req SaveRosterRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid roster payload")
	}

	lecture, err := s.loadLecture(ctx, req.LectureID)
	if err != nil {
		return err
	}
	if err := s.requireClassTeacher(ctx, actor, lecture.ClassID); err != nil {
		return err
	}

	students, err := s.enrollmentRepo.ListStudentsByClass(ctx, lecture.ClassID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrolled students")
	}
	enrolled := make(map[string]bool, len(students))
	for _, student := range students {
		enrolled[student.ID] = true
	}

	marked := make(map[string]bool, len(req.Entries))
	for _, entry := range req.Entries {
		if !enrolled[entry.StudentID] {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("student %s is not enrolled in this class", entry.StudentID))
		}
		marked[entry.StudentID] = entry.IsPresent
	}

	for _, student := range students {
		present := marked[student.ID]

		existing, err := s.attendanceRepo.FindByStudentLecture(ctx, student.ID, lecture.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance record")
		}

		switch {
		case present && existing != nil:
			// Reinstated: the row disappears, and so does any evidence file.
			if existing.HasAppeal() && s.storage != nil {
				if err := s.storage.Delete(*existing.SickLeaveFile); err != nil {
					s.logger.Warn("failed to remove sick-leave attachment", zap.String("ref", *existing.SickLeaveFile), zap.Error(err))
				}
			}
			if err := s.attendanceRepo.Delete(ctx, existing.ID); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear attendance record")
			}
		case !present && existing == nil:
			record := &models.Attendance{
				StudentID: student.ID,
				LectureID: lecture.ID,
				IsPresent: false,
			}
			if err := s.attendanceRepo.Create(ctx, record); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record absence")
			}
		}
	}

	if s.cache != nil {
		s.cache.InvalidateClass(ctx, lecture.ClassID)
	}
	if s.metrics != nil {
		s.metrics.ObserveRosterSave()
	}
	s.logger.Info("roster saved",
		zap.String("lecture_id", lecture.ID),
		zap.String("class_id", lecture.ClassID),
		zap.Int("entries", len(req.Entries)))
	return nil
}

// GetRoster builds a lecture's attendance sheet: every enrolled student with
// their current mark. Students without an absence row default to present.
func (s *AttendanceService) GetRoster(ctx context.Context, actor *models.JWTClaims, lectureID string) ([]models.RosterEntry, error) {
	lecture, err := s.loadLecture(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	if err := s.requireClassTeacher(ctx, actor, lecture.ClassID); err != nil {
		return nil, err
	}

	students, err := s.enrollmentRepo.ListStudentsByClass(ctx, lecture.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrolled students")
	}
	absences, err := s.attendanceRepo.ListByLecture(ctx, lectureID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list absences")
	}

	absent := make(map[string]bool, len(absences))
	for _, a := range absences {
		if !a.IsPresent {
			absent[a.StudentID] = true
		}
	}

	roster := make([]models.RosterEntry, 0, len(students))
	for _, student := range students {
		roster = append(roster, models.RosterEntry{
			StudentID:   student.ID,
			StudentName: student.FullName(),
			IsPresent:   !absent[student.ID],
		})
	}
	return roster, nil
}

// ListPastLectures returns the lectures a teacher may take attendance for:
// those of the class that have already started, newest first.
func (s *AttendanceService) ListPastLectures(ctx context.Context, actor *models.JWTClaims, classID string) ([]models.Lecture, error) {
	if err := s.requireClassTeacher(ctx, actor, classID); err != nil {
		return nil, err
	}
	lectures, err := s.lectureRepo.ListPastByClass(ctx, classID, s.now())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list past lectures")
	}
	return lectures, nil
}

// SubmitSickLeave attaches evidence to a recorded absence, resetting the
// appeal to pending. Resubmitting replaces the previous attachment.
func (s *AttendanceService) SubmitSickLeave(ctx context.Context, studentID, lectureID string, file []byte, filename string) (*models.Attendance, error) {
	if len(file) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sick-leave file is empty")
	}

	record, err := s.attendanceRepo.FindByStudentLecture(ctx, studentID, lectureID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no recorded absence for this lecture")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance record")
	}
	if record.IsPresent {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no recorded absence for this lecture")
	}

	ref, err := s.storage.Store(file, filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store sick-leave file")
	}

	if record.HasAppeal() {
		if err := s.storage.Delete(*record.SickLeaveFile); err != nil {
			s.logger.Warn("failed to remove replaced attachment", zap.String("ref", *record.SickLeaveFile), zap.Error(err))
		}
	}

	record.SickLeaveFile = &ref
	record.SickLeaveStatus = models.SickLeavePending
	record.SickLeaveComment = nil
	if err := s.attendanceRepo.UpdateSickLeave(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance record")
	}

	s.logger.Info("sick leave submitted",
		zap.String("attendance_id", record.ID),
		zap.String("student_id", studentID))
	return record, nil
}

// ReviewSickLeaveRequest carries a teacher's verdict on an appeal.
type ReviewSickLeaveRequest struct {
	AttendanceID string `json:"attendance_id" validate:"required"`
	Accept       bool   `json:"accept"`
	Comment      string `json:"comment" validate:"max=500"`
}

// ReviewSickLeave records the verdict on a pending appeal. Rejection requires
// a comment; acceptance discards any comment. The verdict never changes the
// recorded absence itself.
func (s *AttendanceService) ReviewSickLeave(ctx context.Context, actor *models.JWTClaims, req ReviewSickLeaveRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}
	if !req.Accept && req.Comment == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rejecting a sick leave requires a comment")
	}

	record, err := s.attendanceRepo.FindByID(ctx, req.AttendanceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance record")
	}
	if !record.HasAppeal() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "attendance record has no sick leave to review")
	}

	lecture, err := s.loadLecture(ctx, record.LectureID)
	if err != nil {
		return nil, err
	}
	if err := s.requireClassTeacher(ctx, actor, lecture.ClassID); err != nil {
		return nil, err
	}

	if req.Accept {
		record.SickLeaveStatus = models.SickLeaveAccepted
		record.SickLeaveComment = nil
	} else {
		record.SickLeaveStatus = models.SickLeaveRejected
		comment := req.Comment
		record.SickLeaveComment = &comment
	}
	if err := s.attendanceRepo.UpdateSickLeave(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance record")
	}

	s.logger.Info("sick leave reviewed",
		zap.String("attendance_id", record.ID),
		zap.Bool("accepted", req.Accept))
	return record, nil
}

// ListSickLeaveRequests returns a lecture's appeals for the review queue.
func (s *AttendanceService) ListSickLeaveRequests(ctx context.Context, actor *models.JWTClaims, lectureID string) ([]models.AttendanceDetail, error) {
	lecture, err := s.loadLecture(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	if err := s.requireClassTeacher(ctx, actor, lecture.ClassID); err != nil {
		return nil, err
	}
	appeals, err := s.attendanceRepo.ListAppealsByLecture(ctx, lectureID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sick leave requests")
	}
	return appeals, nil
}

// AppealFileRef authorises access to an appeal attachment and returns its
// storage reference. Students only reach their own files, teachers only those
// of classes they teach.
func (s *AttendanceService) AppealFileRef(ctx context.Context, actor *models.JWTClaims, attendanceID string) (string, error) {
	record, err := s.attendanceRepo.FindByID(ctx, attendanceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance record")
	}
	if !record.HasAppeal() {
		return "", appErrors.Clone(appErrors.ErrNotFound, "no attachment for this record")
	}

	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleStudent:
		if record.StudentID != actor.UserID {
			return "", appErrors.Clone(appErrors.ErrForbidden, "not your sick leave")
		}
	case models.RoleTeacher:
		lecture, err := s.loadLecture(ctx, record.LectureID)
		if err != nil {
			return "", err
		}
		if err := s.requireClassTeacher(ctx, actor, lecture.ClassID); err != nil {
			return "", err
		}
	default:
		return "", appErrors.Clone(appErrors.ErrForbidden, "forbidden")
	}
	return *record.SickLeaveFile, nil
}

// AbsenceSummary computes a student's absence ratio for one class. A class
// with no lectures reports zero percent. Results are cached when a cache is
// wired in.
func (s *AttendanceService) AbsenceSummary(ctx context.Context, studentID, classID string) (*models.AbsenceSummary, error) {
	if s.cache != nil {
		cached, ok := s.cache.GetSummary(ctx, studentID, classID)
		if s.metrics != nil {
			s.metrics.ObserveCacheLookup(ok)
		}
		if ok {
			return cached, nil
		}
	}

	class, err := s.classRepo.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	total, err := s.lectureRepo.CountByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count lectures")
	}
	absences, err := s.attendanceRepo.CountAbsences(ctx, studentID, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count absences")
	}

	summary := models.AbsenceSummary{
		StudentID:     studentID,
		ClassID:       classID,
		ClassName:     class.Name,
		TotalLectures: total,
		Absences:      absences,
	}
	if total > 0 {
		summary.Percentage = float64(absences) / float64(total) * 100
	}

	if s.cache != nil {
		s.cache.SetSummary(ctx, summary)
	}
	return &summary, nil
}

// StudentOverview reports a student's absence situation across every class
// they are enrolled in, with the individual absence rows for each.
func (s *AttendanceService) StudentOverview(ctx context.Context, studentID string) ([]models.StudentClassAbsences, error) {
	classes, err := s.enrollmentRepo.ListClassesByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrolled classes")
	}

	overview := make([]models.StudentClassAbsences, 0, len(classes))
	for _, class := range classes {
		summary, err := s.AbsenceSummary(ctx, studentID, class.ID)
		if err != nil {
			return nil, err
		}
		absences, err := s.attendanceRepo.ListAbsencesByStudentClass(ctx, studentID, class.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list absences")
		}
		overview = append(overview, models.StudentClassAbsences{Summary: *summary, Absences: absences})
	}
	return overview, nil
}

func (s *AttendanceService) loadLecture(ctx context.Context, lectureID string) (*models.Lecture, error) {
	lecture, err := s.lectureRepo.FindByID(ctx, lectureID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lecture not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lecture")
	}
	return lecture, nil
}

// requireClassTeacher allows the assigned teacher and admins through.
func (s *AttendanceService) requireClassTeacher(ctx context.Context, actor *models.JWTClaims, classID string) error {
	if actor == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "missing principal")
	}
	if actor.Role == models.RoleAdmin {
		return nil
	}
	class, err := s.classRepo.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if class.TeacherID == nil || *class.TeacherID != actor.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "not the teacher of this class")
	}
	return nil
}
