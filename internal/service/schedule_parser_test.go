package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bureauplan/bureauplan-api/internal/models"
	appErrors "github.com/bureauplan/bureauplan-api/pkg/errors"
)

func validScheduleJSON(t *testing.T, shiftCount int) string {
	t.Helper()
	shifts := make([]models.ShiftCandidate, 0, shiftCount)
	for i := 0; i < shiftCount; i++ {
		bureau := "Oslo"
		if i%2 == 1 {
			bureau = "Bergen"
		}
		shifts = append(shifts, models.ShiftCandidate{
			Date:         fmt.Sprintf("2026-09-%02d", 7+i%7),
			StartTime:    "08:00",
			EndTime:      "16:00",
			Bureau:       bureau,
			EmployeeName: fmt.Sprintf("Employee %d", i%4),
			Category:     "Morning",
			Reasoning:    "balanced rotation",
		})
	}
	payload := map[string]any{
		"shifts": shifts,
		"fairness_metrics": map[string]any{
			"shifts_per_person":            map[string]int{"Employee 0": shiftCount / 4},
			"weekend_shifts_per_person":    map[string]int{},
			"night_shifts_per_person":      map[string]int{},
			"preference_satisfaction_rate": 0.85,
			"hard_constraint_violations":   []string{},
		},
		"recommendations": []string{"consider an extra evening shift in Bergen"},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return string(raw)
}

func TestParseFencedBlock(t *testing.T) {
	parser := NewScheduleParser(NewFailureLog(), nil)
	raw := "Here is the schedule:\n```json\n" + validScheduleJSON(t, 14) + "\n```\nDone."

	schedule, err := parser.Parse(raw, "week 2026-09-07 both")
	require.NoError(t, err)
	assert.Len(t, schedule.Shifts, 14)
	assert.Equal(t, 0.85, schedule.FairnessMetrics.PreferenceSatisfactionRate)
	assert.Equal(t, []string{"consider an extra evening shift in Bergen"}, schedule.Recommendations)
	assert.Empty(t, parser.Failures())
}

func TestParseBareJSON(t *testing.T) {
	parser := NewScheduleParser(NewFailureLog(), nil)
	schedule, err := parser.Parse(validScheduleJSON(t, 4), "week")
	require.NoError(t, err)
	assert.Len(t, schedule.Shifts, 4)
}

func TestParseDefaultsOptionalSections(t *testing.T) {
	parser := NewScheduleParser(NewFailureLog(), nil)
	raw := `{"shifts":[{"date":"2026-09-07","start_time":"08:00","end_time":"16:00","location":"Oslo","employee_name":"Kari Nordmann","shift_type":"Morning"}]}`

	schedule, err := parser.Parse(raw, "week")
	require.NoError(t, err)
	require.NotNil(t, schedule.FairnessMetrics.ShiftsPerPerson)
	require.NotNil(t, schedule.FairnessMetrics.HardConstraintViolations)
	assert.Empty(t, schedule.FairnessMetrics.HardConstraintViolations)
	assert.Equal(t, []string{}, schedule.Recommendations)
}

func TestParseConversationalRejectedEvenWithEmbeddedJSON(t *testing.T) {
	parser := NewScheduleParser(NewFailureLog(), nil)
	raw := "Before generating the schedule, could you confirm the holidays? " +
		"Here is a draft anyway: " + validScheduleJSON(t, 2)

	_, err := parser.Parse(raw, "week")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrGenerationFailed.Code, appErr.Code)
	assert.Equal(t, "conversational response", appErr.Message)

	failures := parser.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "conversational response", failures[0].Reason)
	assert.Equal(t, len(raw), failures[0].ResponseLength)
}

func TestParseNoJSONFound(t *testing.T) {
	parser := NewScheduleParser(NewFailureLog(), nil)
	_, err := parser.Parse("schedule unavailable right now", "week")
	require.Error(t, err)
	assert.Equal(t, "No JSON found", appErrors.FromError(err).Message)
}

func TestParseTruncatedJSON(t *testing.T) {
	parser := NewScheduleParser(NewFailureLog(), nil)
	full := validScheduleJSON(t, 6)
	truncated := full[:len(full)/2]

	_, err := parser.Parse(truncated, "week")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(appErrors.FromError(err).Message, "JSON parse exception:"))
}

func TestParseEmptyShiftsArray(t *testing.T) {
	parser := NewScheduleParser(NewFailureLog(), nil)
	_, err := parser.Parse(`{"shifts":[],"recommendations":[]}`, "week")
	require.Error(t, err)
	assert.Equal(t, "Empty shifts array", appErrors.FromError(err).Message)
}

func TestParseMissingShiftsKey(t *testing.T) {
	parser := NewScheduleParser(NewFailureLog(), nil)
	_, err := parser.Parse(`{"recommendations":["none"]}`, "week")
	require.Error(t, err)
	assert.Equal(t, "missing shifts", appErrors.FromError(err).Message)
}

func TestParseIncompleteShift(t *testing.T) {
	parser := NewScheduleParser(NewFailureLog(), nil)
	raw := `{"shifts":[{"date":"2026-09-07","start_time":"08:00","location":"Oslo","employee_name":"Kari Nordmann","shift_type":"Morning"}]}`
	_, err := parser.Parse(raw, "week")
	require.Error(t, err)
	assert.Equal(t, "Missing required fields", appErrors.FromError(err).Message)
}

func TestParseIsIdempotent(t *testing.T) {
	parser := NewScheduleParser(NewFailureLog(), nil)
	raw := "```json\n" + validScheduleJSON(t, 5) + "\n```"

	first, err := parser.Parse(raw, "week")
	require.NoError(t, err)
	second, err := parser.Parse(raw, "week")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFailureLogKeepsLastFive(t *testing.T) {
	log := NewFailureLog()
	parser := NewScheduleParser(log, nil)
	for i := 0; i < 7; i++ {
		_, err := parser.Parse(fmt.Sprintf("garbage response %d", i), "week")
		require.Error(t, err)
	}
	failures := log.List()
	require.Len(t, failures, 5)
	assert.Equal(t, "garbage response 2", failures[0].RawResponse)
	assert.Equal(t, "garbage response 6", failures[4].RawResponse)
}
