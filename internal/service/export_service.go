package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/raghad-alharthi/student-management-api/internal/models"
	appErrors "github.com/raghad-alharthi/student-management-api/pkg/errors"
	"github.com/raghad-alharthi/student-management-api/pkg/export"
)

// ExportFormat identifies an absence report rendering.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

type absenceReporter interface {
	AbsenceSummary(ctx context.Context, studentID, classID string) (*models.AbsenceSummary, error)
}

type classRosterReader interface {
	ListStudentsByClass(ctx context.Context, classID string) ([]models.User, error)
}

// ExportService renders per-class absence reports as downloadable documents.
type ExportService struct {
	attendance absenceReporter
	enrollment classRosterReader
	logger     *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(attendance absenceReporter, enrollment classRosterReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		attendance: attendance,
		enrollment: enrollment,
		logger:     logger,
	}
}

// ExportResult carries a rendered document and its HTTP metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ClassAbsenceReport renders the absence summary of every student in the
// class, in the requested format.
func (s *ExportService) ClassAbsenceReport(ctx context.Context, classID string, format ExportFormat) (*ExportResult, error) {
	students, err := s.enrollment.ListStudentsByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	data := export.Dataset{
		Headers: []string{"Student", "Total Lectures", "Absences", "Absence %"},
	}
	className := ""
	for _, student := range students {
		summary, err := s.attendance.AbsenceSummary(ctx, student.ID, classID)
		if err != nil {
			return nil, err
		}
		className = summary.ClassName
		data.Rows = append(data.Rows, []string{
			student.FullName(),
			strconv.Itoa(summary.TotalLectures),
			strconv.Itoa(summary.Absences),
			fmt.Sprintf("%.1f", summary.Percentage),
		})
	}
	if className == "" {
		className = classID
	}
	data.Title = "Absence Report - " + className

	switch format {
	case FormatCSV:
		content, err := export.CSV(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: "absence-report.csv"}, nil
	case FormatPDF:
		content, err := export.PDF(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: "absence-report.pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
