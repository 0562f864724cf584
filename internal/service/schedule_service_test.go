package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raghad-alharthi/student-management-api/internal/models"
	appErrors "github.com/raghad-alharthi/student-management-api/pkg/errors"
)

type mockClassRepo struct {
	classes        map[string]models.Class
	sickLeaveFiles []string
	deleted        []string
	reassigned     map[string]string
	clearedTeacher string
	clearedCount   int64
}

func (m *mockClassRepo) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, int, error) {
	return nil, 0, nil
}

func (m *mockClassRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.Class, error) {
	return nil, nil
}

func (m *mockClassRepo) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if c, ok := m.classes[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassRepo) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = "new-class"
	}
	if m.classes == nil {
		m.classes = make(map[string]models.Class)
	}
	m.classes[class.ID] = *class
	return nil
}

func (m *mockClassRepo) UpdateTeacher(ctx context.Context, classID, teacherID string) error {
	if m.reassigned == nil {
		m.reassigned = make(map[string]string)
	}
	m.reassigned[classID] = teacherID
	return nil
}

func (m *mockClassRepo) ClearTeacher(ctx context.Context, teacherID string) (int64, error) {
	m.clearedTeacher = teacherID
	return m.clearedCount, nil
}

func (m *mockClassRepo) DeleteCascade(ctx context.Context, classID string) error {
	m.deleted = append(m.deleted, classID)
	delete(m.classes, classID)
	return nil
}

func (m *mockClassRepo) ListSickLeaveFiles(ctx context.Context, classID string) ([]string, error) {
	return m.sickLeaveFiles, nil
}

type mockLectureRepo struct {
	byClass   map[string][]models.Lecture
	byTeacher []models.Lecture
	bulk      map[string][]time.Time
}

func (m *mockLectureRepo) FindByID(ctx context.Context, id string) (*models.Lecture, error) {
	for _, lectures := range m.byClass {
		for _, l := range lectures {
			if l.ID == id {
				return &l, nil
			}
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockLectureRepo) ListByClass(ctx context.Context, classID string) ([]models.Lecture, error) {
	return m.byClass[classID], nil
}

func (m *mockLectureRepo) ListPastByClass(ctx context.Context, classID string, until time.Time) ([]models.Lecture, error) {
	var out []models.Lecture
	for _, l := range m.byClass[classID] {
		if !l.ScheduledAt.After(until) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLectureRepo) ListByTeacher(ctx context.Context, teacherID, excludeClassID string) ([]models.Lecture, error) {
	var out []models.Lecture
	for _, l := range m.byTeacher {
		if excludeClassID != "" && l.ClassID == excludeClassID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (m *mockLectureRepo) BulkCreate(ctx context.Context, classID string, times []time.Time) error {
	if m.bulk == nil {
		m.bulk = make(map[string][]time.Time)
	}
	m.bulk[classID] = times
	if m.byClass == nil {
		m.byClass = make(map[string][]models.Lecture)
	}
	for _, t := range times {
		m.byClass[classID] = append(m.byClass[classID], models.Lecture{ID: t.String(), ClassID: classID, ScheduledAt: t})
	}
	return nil
}

func (m *mockLectureRepo) CountByClass(ctx context.Context, classID string) (int, error) {
	return len(m.byClass[classID]), nil
}

type mockUserRepo struct {
	users map[string]models.User
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

type mockInvalidator struct {
	invalidated []string
}

func (m *mockInvalidator) InvalidateClass(ctx context.Context, classID string) {
	m.invalidated = append(m.invalidated, classID)
}

type mockRemover struct {
	removed []string
}

func (m *mockRemover) Delete(ref string) error {
	m.removed = append(m.removed, ref)
	return nil
}

func newScheduleService(classes *mockClassRepo, lectures *mockLectureRepo, users *mockUserRepo, cache *mockInvalidator, storage *mockRemover) *ScheduleService {
	svc := NewScheduleService(classes, lectures, users, cache, storage, nil, nil, 15, 120)
	return svc.WithClock(func() time.Time {
		return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	})
}

func TestCreateClassGeneratesSemester(t *testing.T) {
	classes := &mockClassRepo{}
	lectures := &mockLectureRepo{}
	users := &mockUserRepo{users: map[string]models.User{
		"teacher-1": {ID: "teacher-1", Role: models.RoleTeacher},
	}}
	svc := newScheduleService(classes, lectures, users, &mockInvalidator{}, &mockRemover{})

	teacherID := "teacher-1"
	created, err := svc.CreateClass(context.Background(), CreateClassRequest{
		Name:      "Algorithms",
		TeacherID: &teacherID,
		Weekday:   "monday",
		Time:      "10:00",
	})
	require.NoError(t, err)
	require.Len(t, created.Lectures, 15)

	times := lectures.bulk[created.Class.ID]
	require.Len(t, times, 15)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), times[0])
	assert.Equal(t, time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC), times[1])
	for _, tt := range times {
		assert.Equal(t, time.Monday, tt.Weekday())
	}
}

func TestCreateClassRejectsPolicyViolations(t *testing.T) {
	svc := newScheduleService(&mockClassRepo{}, &mockLectureRepo{}, &mockUserRepo{}, &mockInvalidator{}, &mockRemover{})

	cases := []struct {
		name    string
		weekday string
		at      string
	}{
		{"friday", "FRIDAY", "10:00"},
		{"saturday", "SATURDAY", "10:00"},
		{"before opening", "MONDAY", "07:30"},
		{"at closing", "MONDAY", "19:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateClass(context.Background(), CreateClassRequest{
				Name:    "Algorithms",
				Weekday: tc.weekday,
				Time:    tc.at,
			})
			require.Error(t, err)
			assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
		})
	}
}

func TestCreateClassDetectsTeacherConflict(t *testing.T) {
	classes := &mockClassRepo{}
	// Existing lecture Monday 10:00 for the same teacher.
	lectures := &mockLectureRepo{byTeacher: []models.Lecture{
		{ID: "l1", ClassID: "other-class", ScheduledAt: time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)},
	}}
	users := &mockUserRepo{users: map[string]models.User{
		"teacher-1": {ID: "teacher-1", Role: models.RoleTeacher},
	}}
	svc := newScheduleService(classes, lectures, users, &mockInvalidator{}, &mockRemover{})

	teacherID := "teacher-1"
	// 11:30 is only 90 minutes after 10:00.
	_, err := svc.CreateClass(context.Background(), CreateClassRequest{
		Name:      "Databases",
		TeacherID: &teacherID,
		Weekday:   "MONDAY",
		Time:      "11:30",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrScheduleConflict))
	// Nothing was written on the failed attempt.
	assert.Empty(t, classes.classes)
	assert.Empty(t, lectures.bulk)

	// 13:00 sits a safe 180 minutes away.
	created, err := svc.CreateClass(context.Background(), CreateClassRequest{
		Name:      "Databases",
		TeacherID: &teacherID,
		Weekday:   "MONDAY",
		Time:      "13:00",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.Class.ID)
}

func TestCreateClassRejectsNonTeacher(t *testing.T) {
	users := &mockUserRepo{users: map[string]models.User{
		"student-1": {ID: "student-1", Role: models.RoleStudent},
	}}
	svc := newScheduleService(&mockClassRepo{}, &mockLectureRepo{}, users, &mockInvalidator{}, &mockRemover{})

	studentID := "student-1"
	_, err := svc.CreateClass(context.Background(), CreateClassRequest{
		Name:      "Algorithms",
		TeacherID: &studentID,
		Weekday:   "MONDAY",
		Time:      "10:00",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestReassignTeacherChecksAvailability(t *testing.T) {
	classes := &mockClassRepo{classes: map[string]models.Class{
		"class-1": {ID: "class-1", Name: "Algorithms"},
	}}
	lectures := &mockLectureRepo{
		byClass: map[string][]models.Lecture{
			"class-1": {{ID: "l1", ClassID: "class-1", ScheduledAt: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}},
		},
		byTeacher: []models.Lecture{
			{ID: "l2", ClassID: "other", ScheduledAt: time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)},
		},
	}
	users := &mockUserRepo{users: map[string]models.User{
		"teacher-2": {ID: "teacher-2", Role: models.RoleTeacher},
	}}
	svc := newScheduleService(classes, lectures, users, &mockInvalidator{}, &mockRemover{})

	err := svc.ReassignTeacher(context.Background(), "class-1", "teacher-2")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrScheduleConflict))

	// Once the colliding lecture belongs to the class being reassigned, it is
	// excluded from the check and the reassignment succeeds.
	lectures.byTeacher[0].ClassID = "class-1"
	require.NoError(t, svc.ReassignTeacher(context.Background(), "class-1", "teacher-2"))
	assert.Equal(t, "teacher-2", classes.reassigned["class-1"])
}

func TestReassignTeacherChecksEveryLectureSlot(t *testing.T) {
	classes := &mockClassRepo{classes: map[string]models.Class{
		"class-1": {ID: "class-1", Name: "Algorithms"},
	}}
	// A schedule whose second lecture drifted to Tuesday, where the new
	// teacher is already busy.
	lectures := &mockLectureRepo{
		byClass: map[string][]models.Lecture{
			"class-1": {
				{ID: "l1", ClassID: "class-1", ScheduledAt: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
				{ID: "l2", ClassID: "class-1", ScheduledAt: time.Date(2024, 1, 9, 10, 0, 0, 0, time.UTC)},
			},
		},
		byTeacher: []models.Lecture{
			{ID: "l3", ClassID: "other", ScheduledAt: time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC)},
		},
	}
	users := &mockUserRepo{users: map[string]models.User{
		"teacher-2": {ID: "teacher-2", Role: models.RoleTeacher},
	}}
	svc := newScheduleService(classes, lectures, users, &mockInvalidator{}, &mockRemover{})

	err := svc.ReassignTeacher(context.Background(), "class-1", "teacher-2")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrScheduleConflict))
	assert.Empty(t, classes.reassigned)
}

func TestDeleteClassReleasesAttachmentsAndCache(t *testing.T) {
	classes := &mockClassRepo{
		classes:        map[string]models.Class{"class-1": {ID: "class-1"}},
		sickLeaveFiles: []string{"file-a.pdf", "file-b.pdf"},
	}
	cache := &mockInvalidator{}
	storage := &mockRemover{}
	svc := newScheduleService(classes, &mockLectureRepo{}, &mockUserRepo{}, cache, storage)

	require.NoError(t, svc.DeleteClass(context.Background(), "class-1"))
	assert.Equal(t, []string{"class-1"}, classes.deleted)
	assert.Equal(t, []string{"file-a.pdf", "file-b.pdf"}, storage.removed)
	assert.Equal(t, []string{"class-1"}, cache.invalidated)
}

func TestDeleteClassMissingIsNoOp(t *testing.T) {
	classes := &mockClassRepo{}
	svc := newScheduleService(classes, &mockLectureRepo{}, &mockUserRepo{}, &mockInvalidator{}, &mockRemover{})

	require.NoError(t, svc.DeleteClass(context.Background(), "ghost"))
	assert.Empty(t, classes.deleted)
}

func TestClearTeacher(t *testing.T) {
	classes := &mockClassRepo{clearedCount: 3}
	svc := newScheduleService(classes, &mockLectureRepo{}, &mockUserRepo{}, &mockInvalidator{}, &mockRemover{})

	affected, err := svc.ClearTeacher(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
	assert.Equal(t, "teacher-1", classes.clearedTeacher)
}
