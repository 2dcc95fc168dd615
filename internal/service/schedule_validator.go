package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bureauplan/bureauplan-api/internal/models"
)

const maxShiftMinutes = 8 * 60

// ScheduleValidator runs pure business-rule checks over an accepted schedule.
// It only enumerates violations; whether a violation blocks persistence is
// the caller's policy decision.
type ScheduleValidator struct {
	bureaus []string
}

// NewScheduleValidator configures the validator with the known bureau names.
func NewScheduleValidator(bureaus []string) *ScheduleValidator {
	return &ScheduleValidator{bureaus: bureaus}
}

// Validate returns all rule violations found; an empty slice means clean.
func (v *ScheduleValidator) Validate(schedule *models.GeneratedSchedule) []string {
	violations := []string{}
	if schedule == nil || len(schedule.Shifts) == 0 {
		return violations
	}

	violations = append(violations, v.checkOverlapsAndDuration(schedule.Shifts)...)
	violations = append(violations, v.checkDistribution(schedule.Shifts)...)
	violations = append(violations, v.checkWeekendSpread(schedule.Shifts)...)
	violations = append(violations, v.checkBureaus(schedule.Shifts)...)
	return violations
}

func (v *ScheduleValidator) checkOverlapsAndDuration(shifts []models.ShiftCandidate) []string {
	var out []string

	byEmployee := make(map[string][]models.ShiftCandidate)
	for _, shift := range shifts {
		start, okStart := parseClock(shift.StartTime)
		end, okEnd := parseClock(shift.EndTime)
		if okStart && okEnd {
			if normalizeEnd(start, end)-start > maxShiftMinutes {
				out = append(out, fmt.Sprintf("shift for %s on %s exceeds 8 hours (%s-%s)",
					shift.EmployeeName, shift.Date, shift.StartTime, shift.EndTime))
			}
		}
		byEmployee[shift.EmployeeName] = append(byEmployee[shift.EmployeeName], shift)
	}

	names := sortedKeys(byEmployee)
	for _, name := range names {
		own := byEmployee[name]
		for i := 0; i < len(own); i++ {
			for j := i + 1; j < len(own); j++ {
				if own[i].Date != own[j].Date {
					continue
				}
				s1, ok1 := parseClock(own[i].StartTime)
				e1, ok2 := parseClock(own[i].EndTime)
				s2, ok3 := parseClock(own[j].StartTime)
				e2, ok4 := parseClock(own[j].EndTime)
				if !(ok1 && ok2 && ok3 && ok4) {
					continue
				}
				e1 = normalizeEnd(s1, e1)
				e2 = normalizeEnd(s2, e2)
				if s1 < e2 && e1 > s2 {
					out = append(out, fmt.Sprintf("overlapping shifts for %s on %s (%s-%s and %s-%s)",
						name, own[i].Date, own[i].StartTime, own[i].EndTime, own[j].StartTime, own[j].EndTime))
				}
			}
		}
	}
	return out
}

func (v *ScheduleValidator) checkDistribution(shifts []models.ShiftCandidate) []string {
	counts := make(map[string]int)
	for _, shift := range shifts {
		counts[shift.EmployeeName]++
	}
	if len(counts) == 0 {
		return nil
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	mean := float64(total) / float64(len(counts))
	if mean <= 0 {
		return nil
	}

	var out []string
	for _, name := range sortedKeys(counts) {
		deviation := float64(counts[name]) - mean
		if deviation < 0 {
			deviation = -deviation
		}
		if deviation > 0.5*mean {
			out = append(out, fmt.Sprintf("uneven shift distribution: %s has %d shifts (mean %.1f)",
				name, counts[name], mean))
		}
	}
	return out
}

func (v *ScheduleValidator) checkWeekendSpread(shifts []models.ShiftCandidate) []string {
	weekend := make(map[string]int)
	for _, shift := range shifts {
		weekend[shift.EmployeeName] += 0 // every assignee participates in the spread
		if day, err := time.Parse("2006-01-02", shift.Date); err == nil {
			switch day.Weekday() {
			case time.Saturday, time.Sunday:
				weekend[shift.EmployeeName]++
			}
		}
	}
	if len(weekend) == 0 {
		return nil
	}

	min, max := -1, 0
	for _, c := range weekend {
		if min < 0 || c < min {
			min = c
		}
		if c > max {
			max = c
		}
	}
	if max-min > 2 {
		return []string{fmt.Sprintf("weekend shifts unevenly distributed (min %d, max %d)", min, max)}
	}
	return nil
}

func (v *ScheduleValidator) checkBureaus(shifts []models.ShiftCandidate) []string {
	known := make(map[string]bool, len(v.bureaus))
	for _, name := range v.bureaus {
		known[strings.ToLower(name)] = true
	}

	var out []string
	covered := make(map[string]bool)
	dates := make(map[string]bool)
	for _, shift := range shifts {
		dates[shift.Date] = true
		key := strings.ToLower(shift.Bureau)
		if !known[key] {
			out = append(out, fmt.Sprintf("unknown bureau %q for shift on %s", shift.Bureau, shift.Date))
			continue
		}
		covered[key] = true
	}

	// Coverage only applies to multi-date schedules; a single-day preview is
	// allowed to leave a bureau empty.
	if len(dates) > 1 {
		for _, name := range v.bureaus {
			if !covered[strings.ToLower(name)] {
				out = append(out, fmt.Sprintf("no shifts scheduled for bureau %q", name))
			}
		}
	}
	return out
}

// parseClock converts "HH:MM" into minutes since midnight.
func parseClock(raw string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 24 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}

// normalizeEnd maps a midnight end to 24:00 and day-normalizes overnight
// shifts so interval comparisons stay on one scale.
func normalizeEnd(start, end int) int {
	if end == 0 {
		return 24 * 60
	}
	if end <= start {
		return end + 24*60
	}
	return end
}

func sortedKeys[M map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
