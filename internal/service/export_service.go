package service

import (
	"fmt"
	"strings"

	"github.com/bureauplan/bureauplan-api/internal/models"
	appErrors "github.com/bureauplan/bureauplan-api/pkg/errors"
	"github.com/bureauplan/bureauplan-api/pkg/export"
)

var scheduleExportHeaders = []string{"Date", "Start", "End", "Bureau", "Employee", "Type", "Reasoning"}

// ExportService renders schedules into downloadable documents.
type ExportService struct {
	csv *export.CSVExporter
	pdf *export.PDFExporter
}

// NewExportService builds the exporter facade.
func NewExportService() *ExportService {
	return &ExportService{csv: export.NewCSVExporter(), pdf: export.NewPDFExporter()}
}

// ExportResult is a rendered document ready for download.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// RenderSchedule renders the schedule in the requested format, csv or pdf.
func (s *ExportService) RenderSchedule(schedule *models.GeneratedSchedule, format, label string) (*ExportResult, error) {
	if schedule == nil || len(schedule.Shifts) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to export")
	}

	dataset := export.Dataset{Headers: scheduleExportHeaders}
	for _, shift := range schedule.Shifts {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":      shift.Date,
			"Start":     shift.StartTime,
			"End":       shift.EndTime,
			"Bureau":    shift.Bureau,
			"Employee":  shift.EmployeeName,
			"Type":      shift.Category,
			"Reasoning": shift.Reasoning,
		})
	}

	if label == "" {
		label = "schedule"
	}

	switch strings.ToLower(format) {
	case "csv":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render csv")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("%s.csv", label),
		}, nil
	case "pdf":
		content, err := s.pdf.Render(dataset, fmt.Sprintf("Shift schedule %s", label))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render pdf")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("%s.pdf", label),
		}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
}
