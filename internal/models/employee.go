package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ShiftPreferences captures an employee's stated scheduling wishes.
type ShiftPreferences struct {
	PreferredDays       []string `json:"preferred_days"`
	PreferredCategories []string `json:"preferred_categories"`
	UnavailableDays     []string `json:"unavailable_days"`
	MaxShiftsPerWeek    int      `json:"max_shifts_per_week"`
	Notes               string   `json:"notes"`
}

// PreferenceConfirmation records reviewer approval of stated preferences.
// A nil confirmation means the preferences are still pending review.
type PreferenceConfirmation struct {
	Confirmed   bool      `json:"confirmed"`
	ConfirmedBy string    `json:"confirmed_by"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// Employee represents a schedulable staff record.
type Employee struct {
	ID              string         `db:"id" json:"id"`
	FullName        string         `db:"full_name" json:"full_name"`
	Title           string         `db:"title" json:"title"`
	RoleTier        string         `db:"role_tier" json:"role_tier"`
	BureauID        string         `db:"bureau_id" json:"bureau_id"`
	Preferences     types.JSONText `db:"preferences" json:"preferences"`
	PrefConfirmed   *bool          `db:"pref_confirmed" json:"pref_confirmed,omitempty"`
	PrefConfirmedBy *string        `db:"pref_confirmed_by" json:"pref_confirmed_by,omitempty"`
	PrefConfirmedAt *time.Time     `db:"pref_confirmed_at" json:"pref_confirmed_at,omitempty"`
	Active          bool           `db:"active" json:"active"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// ShiftHistory aggregates a trailing window of assigned work, used to bias
// fairness when generating new schedules.
type ShiftHistory struct {
	TotalShifts   int `db:"total_shifts" json:"total_shifts"`
	WeekendShifts int `db:"weekend_shifts" json:"weekend_shifts"`
	NightShifts   int `db:"night_shifts" json:"night_shifts"`
}

// EmployeeProfile is the roster view consumed by the schedule planner.
type EmployeeProfile struct {
	ID           string                  `json:"id"`
	FullName     string                  `json:"full_name"`
	Title        string                  `json:"title"`
	RoleTier     string                  `json:"role_tier"`
	BureauName   string                  `json:"bureau_name"`
	Preferences  ShiftPreferences        `json:"preferences"`
	Confirmation *PreferenceConfirmation `json:"confirmation,omitempty"`
	History      ShiftHistory            `json:"history"`
}

// EmployeeFilter captures listing options for the roster endpoints.
type EmployeeFilter struct {
	Bureau   string
	Active   *bool
	Page     int
	PageSize int
}
