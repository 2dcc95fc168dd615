package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bureauplan/bureauplan-api/internal/models"
	appErrors "github.com/bureauplan/bureauplan-api/pkg/errors"
)

func exportSchedule() *models.GeneratedSchedule {
	return &models.GeneratedSchedule{Shifts: []models.ShiftCandidate{
		{Date: "2026-09-07", StartTime: "08:00", EndTime: "16:00", Bureau: "Oslo",
			EmployeeName: "Kari Nordmann", Category: "Morning", Reasoning: "preferred morning"},
		{Date: "2026-09-07", StartTime: "16:00", EndTime: "23:00", Bureau: "Bergen",
			EmployeeName: "Ola Hansen", Category: "Evening"},
	}}
}

func TestRenderScheduleCSV(t *testing.T) {
	svc := NewExportService()
	result, err := svc.RenderSchedule(exportSchedule(), "csv", "schedule-2026-09-07")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "schedule-2026-09-07.csv", result.Filename)

	lines := strings.Split(strings.TrimSpace(string(result.Content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Start,End,Bureau,Employee,Type,Reasoning", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[1], "Kari Nordmann")
	assert.Contains(t, lines[2], "Ola Hansen")
}

func TestRenderSchedulePDF(t *testing.T) {
	svc := NewExportService()
	result, err := svc.RenderSchedule(exportSchedule(), "pdf", "")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, "schedule.pdf", result.Filename)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestRenderScheduleRejectsBadInput(t *testing.T) {
	svc := NewExportService()

	_, err := svc.RenderSchedule(exportSchedule(), "xlsx", "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.RenderSchedule(&models.GeneratedSchedule{}, "csv", "x")
	require.Error(t, err)
	assert.Equal(t, "nothing to export", appErrors.FromError(err).Message)
}
