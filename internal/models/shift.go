package models

import "time"

// ShiftCategory labels the time-of-day band a shift belongs to.
type ShiftCategory string

const (
	ShiftMorning   ShiftCategory = "Morning"
	ShiftAfternoon ShiftCategory = "Afternoon"
	ShiftEvening   ShiftCategory = "Evening"
	ShiftNight     ShiftCategory = "Night"
)

// ValidShiftCategory reports whether the value is one of the known bands.
func ValidShiftCategory(v string) bool {
	switch ShiftCategory(v) {
	case ShiftMorning, ShiftAfternoon, ShiftEvening, ShiftNight:
		return true
	}
	return false
}

// Shift is a durable scheduled work unit.
type Shift struct {
	ID        string        `db:"id" json:"id"`
	BureauID  string        `db:"bureau_id" json:"bureau_id"`
	ShiftDate time.Time     `db:"shift_date" json:"shift_date"`
	StartTime string        `db:"start_time" json:"start_time"`
	EndTime   string        `db:"end_time" json:"end_time"`
	Category  ShiftCategory `db:"category" json:"category"`
	Notes     *string       `db:"notes" json:"notes,omitempty"`
	CreatedBy string        `db:"created_by" json:"created_by"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// ShiftAssignment links a shift to the employee working it.
type ShiftAssignment struct {
	ID         string    `db:"id" json:"id"`
	ShiftID    string    `db:"shift_id" json:"shift_id"`
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	AssignedBy string    `db:"assigned_by" json:"assigned_by"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ShiftDetail is a joined row used for listings and prompt context.
type ShiftDetail struct {
	Shift
	BureauName   string `db:"bureau_name" json:"bureau_name"`
	EmployeeName string `db:"employee_name" json:"employee_name"`
}

// ShiftFilter captures range listing options.
type ShiftFilter struct {
	Bureau    string
	StartDate time.Time
	EndDate   time.Time
	Page      int
	PageSize  int
}
