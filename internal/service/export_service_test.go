package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raghad-alharthi/student-management-api/internal/models"
	appErrors "github.com/raghad-alharthi/student-management-api/pkg/errors"
)

type mockAbsenceReporter struct {
	summaries map[string]models.AbsenceSummary
}

func (m *mockAbsenceReporter) AbsenceSummary(ctx context.Context, studentID, classID string) (*models.AbsenceSummary, error) {
	s := m.summaries[studentID]
	return &s, nil
}

type mockRosterReader struct {
	students []models.User
}

func (m *mockRosterReader) ListStudentsByClass(ctx context.Context, classID string) ([]models.User, error) {
	return m.students, nil
}

func newExportFixture() *ExportService {
	reporter := &mockAbsenceReporter{summaries: map[string]models.AbsenceSummary{
		"student-1": {StudentID: "student-1", ClassID: "class-1", ClassName: "Algorithms", TotalLectures: 15, Absences: 3, Percentage: 20},
		"student-2": {StudentID: "student-2", ClassID: "class-1", ClassName: "Algorithms", TotalLectures: 15, Absences: 0, Percentage: 0},
	}}
	roster := &mockRosterReader{students: []models.User{
		{ID: "student-1", FirstName: "Aya", LastName: "Nasser"},
		{ID: "student-2", FirstName: "Omar", LastName: "Saleh"},
	}}
	return NewExportService(reporter, roster, nil)
}

func TestClassAbsenceReportCSV(t *testing.T) {
	svc := newExportFixture()

	result, err := svc.ClassAbsenceReport(context.Background(), "class-1", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "absence-report.csv", result.Filename)

	content := string(result.Content)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Student")
	assert.Contains(t, lines[1], "Aya Nasser")
	assert.Contains(t, lines[1], "20.0")
	assert.Contains(t, lines[2], "Omar Saleh")
}

func TestClassAbsenceReportPDF(t *testing.T) {
	svc := newExportFixture()

	result, err := svc.ClassAbsenceReport(context.Background(), "class-1", FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, bytes.HasPrefix(result.Content, []byte("%PDF")))
}

func TestClassAbsenceReportUnknownFormat(t *testing.T) {
	svc := newExportFixture()

	_, err := svc.ClassAbsenceReport(context.Background(), "class-1", ExportFormat("xlsx"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
