package models

import "time"

// ShiftCandidate is one proposed work unit emitted by the model. Until the
// parser accepts it the candidate is untrusted; afterwards it is an immutable
// member of a GeneratedSchedule. The assignee is referenced by display name,
// not id, because the model only ever sees names; resolution happens at save
// time.
type ShiftCandidate struct {
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Bureau       string `json:"location"`
	EmployeeName string `json:"employee_name"`
	Category     string `json:"shift_type"`
	Reasoning    string `json:"reasoning,omitempty"`
}

// Complete reports whether all six required fields carry values.
func (c ShiftCandidate) Complete() bool {
	return c.Date != "" && c.StartTime != "" && c.EndTime != "" &&
		c.Bureau != "" && c.EmployeeName != "" && c.Category != ""
}

// FairnessMetrics aggregates workload distribution as reported by the model.
// The hard-constraint violation list is advisory, not authoritative.
type FairnessMetrics struct {
	ShiftsPerPerson            map[string]int `json:"shifts_per_person"`
	WeekendShiftsPerPerson     map[string]int `json:"weekend_shifts_per_person"`
	NightShiftsPerPerson       map[string]int `json:"night_shifts_per_person"`
	PreferenceSatisfactionRate float64        `json:"preference_satisfaction_rate"`
	HardConstraintViolations   []string       `json:"hard_constraint_violations"`
}

// EmptyFairnessMetrics is the default when the model omits the block.
func EmptyFairnessMetrics() FairnessMetrics {
	return FairnessMetrics{
		ShiftsPerPerson:          map[string]int{},
		WeekendShiftsPerPerson:   map[string]int{},
		NightShiftsPerPerson:     map[string]int{},
		HardConstraintViolations: []string{},
	}
}

// GeneratedSchedule is an accepted planning result. Created only by the
// parser and never mutated afterwards.
type GeneratedSchedule struct {
	Shifts          []ShiftCandidate `json:"shifts"`
	FairnessMetrics FairnessMetrics  `json:"fairness_metrics"`
	Recommendations []string         `json:"recommendations"`
}

// FailureRecord captures one rejected model response for operator diagnosis.
type FailureRecord struct {
	Timestamp      time.Time `json:"timestamp"`
	RawResponse    string    `json:"raw_response"`
	ResponseLength int       `json:"response_length"`
	Reason         string    `json:"reason"`
	RequestContext string    `json:"request_context,omitempty"`
}
