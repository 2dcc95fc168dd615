package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bureauplan/bureauplan-api/internal/dto"
	"github.com/bureauplan/bureauplan-api/internal/models"
	appErrors "github.com/bureauplan/bureauplan-api/pkg/errors"
)

const systemPrompt = `You are a shift planning assistant for a news organization with multiple bureaus.
You produce complete shift schedules as a single JSON object and nothing else.
Never ask clarifying questions. Never include prose before or after the JSON.

The JSON object must have this shape:
{
  "shifts": [
    {"date": "YYYY-MM-DD", "start_time": "HH:MM", "end_time": "HH:MM",
     "location": "<bureau name>", "employee_name": "<full name>",
     "shift_type": "Morning|Afternoon|Evening|Night", "reasoning": "<short note>"}
  ],
  "fairness_metrics": {
    "shifts_per_person": {}, "weekend_shifts_per_person": {},
    "night_shifts_per_person": {}, "preference_satisfaction_rate": 0.0,
    "hard_constraint_violations": []
  },
  "recommendations": []
}

Hard rules:
- Shifts are at most 8 hours long.
- An employee never works two overlapping shifts.
- Only assign employees listed in the roster, using their exact full names.
- Only use the bureau names given in the request.
- Distribute shifts and weekend work evenly, honoring confirmed preferences first.`

// PromptBuilder assembles the deterministic prompt pair for a generation
// request. Same inputs always produce byte-identical prompts; retries reuse
// the cached output rather than rebuilding.
type PromptBuilder struct {
	bureaus []string
}

// NewPromptBuilder configures the builder with the known bureau names.
func NewPromptBuilder(bureaus []string) *PromptBuilder {
	return &PromptBuilder{bureaus: bureaus}
}

// Build renders the system and user prompts for the request. The roster and
// existing shifts are sorted before rendering so prompt content never depends
// on input ordering.
func (b *PromptBuilder) Build(req dto.GenerateScheduleRequest, roster []models.EmployeeProfile, existing []models.ShiftDetail) (string, string, error) {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return "", "", appErrors.Clone(appErrors.ErrValidation, "start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return "", "", appErrors.Clone(appErrors.ErrValidation, "end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return "", "", appErrors.Clone(appErrors.ErrValidation, "end_date precedes start_date")
	}

	targets, err := b.resolveBureaus(req.Bureau)
	if err != nil {
		return "", "", err
	}
	if len(roster) == 0 {
		return "", "", appErrors.Clone(appErrors.ErrValidation, "no active employees available for scheduling")
	}

	granularity := req.Granularity
	if granularity == "" {
		granularity = "week"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Create a %s shift schedule from %s to %s.\n", granularity, req.StartDate, req.EndDate)
	fmt.Fprintf(&sb, "Bureaus to staff: %s.\n", strings.Join(targets, ", "))

	if len(req.Holidays) > 0 {
		holidays := append([]string(nil), req.Holidays...)
		sort.Strings(holidays)
		fmt.Fprintf(&sb, "Public holidays in the window (staff minimally): %s.\n", strings.Join(holidays, ", "))
	}

	sb.WriteString("\nRoster:\n")
	sorted := append([]models.EmployeeProfile(nil), roster...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FullName < sorted[j].FullName })
	for _, emp := range sorted {
		writeEmployee(&sb, emp)
	}

	if req.PreserveExisting && len(existing) > 0 {
		sb.WriteString("\nAlready scheduled shifts (keep these, plan around them):\n")
		kept := append([]models.ShiftDetail(nil), existing...)
		sort.Slice(kept, func(i, j int) bool {
			if !kept[i].ShiftDate.Equal(kept[j].ShiftDate) {
				return kept[i].ShiftDate.Before(kept[j].ShiftDate)
			}
			if kept[i].StartTime != kept[j].StartTime {
				return kept[i].StartTime < kept[j].StartTime
			}
			return kept[i].EmployeeName < kept[j].EmployeeName
		})
		for _, shift := range kept {
			fmt.Fprintf(&sb, "- %s %s-%s %s at %s (%s)\n",
				shift.ShiftDate.Format("2006-01-02"), shift.StartTime, shift.EndTime,
				shift.EmployeeName, shift.BureauName, shift.Category)
		}
	}

	sb.WriteString("\nRespond with the JSON object only.\n")
	return systemPrompt, sb.String(), nil
}

func writeEmployee(sb *strings.Builder, emp models.EmployeeProfile) {
	fmt.Fprintf(sb, "- %s, %s (%s), bureau %s\n", emp.FullName, emp.Title, emp.RoleTier, emp.BureauName)
	fmt.Fprintf(sb, "  history last 30 days: %d shifts, %d weekend, %d night\n",
		emp.History.TotalShifts, emp.History.WeekendShifts, emp.History.NightShifts)

	prefs := emp.Preferences
	hasPrefs := len(prefs.PreferredDays) > 0 || len(prefs.PreferredCategories) > 0 ||
		len(prefs.UnavailableDays) > 0 || prefs.MaxShiftsPerWeek > 0 || prefs.Notes != ""
	if !hasPrefs {
		sb.WriteString("  preferences: none stated\n")
		return
	}

	status := "PENDING (not yet approved)"
	if emp.Confirmation != nil && emp.Confirmation.Confirmed {
		status = "CONFIRMED"
	}
	fmt.Fprintf(sb, "  preferences [%s]:\n", status)
	if len(prefs.PreferredDays) > 0 {
		fmt.Fprintf(sb, "    preferred days: %s\n", strings.Join(prefs.PreferredDays, ", "))
	}
	if len(prefs.PreferredCategories) > 0 {
		fmt.Fprintf(sb, "    preferred shift types: %s\n", strings.Join(prefs.PreferredCategories, ", "))
	}
	if len(prefs.UnavailableDays) > 0 {
		fmt.Fprintf(sb, "    unavailable: %s\n", strings.Join(prefs.UnavailableDays, ", "))
	}
	if prefs.MaxShiftsPerWeek > 0 {
		fmt.Fprintf(sb, "    max shifts per week: %d\n", prefs.MaxShiftsPerWeek)
	}
	if prefs.Notes != "" {
		fmt.Fprintf(sb, "    notes: %s\n", prefs.Notes)
	}
}

func (b *PromptBuilder) resolveBureaus(requested string) ([]string, error) {
	if strings.EqualFold(requested, models.BureauBoth) {
		out := append([]string(nil), b.bureaus...)
		sort.Strings(out)
		return out, nil
	}
	for _, name := range b.bureaus {
		if strings.EqualFold(name, requested) {
			return []string{name}, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrLocationNotFound, fmt.Sprintf("bureau %q not found", requested))
}
