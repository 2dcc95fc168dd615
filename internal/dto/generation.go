package dto

import "github.com/bureauplan/bureauplan-api/internal/models"

// GenerateScheduleRequest instructs the planner to build a schedule for the
// window. Bureau accepts a single bureau name or "both".
type GenerateScheduleRequest struct {
	StartDate        string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate          string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	Granularity      string   `json:"granularity" validate:"omitempty,oneof=week month quarter"`
	Bureau           string   `json:"bureau" validate:"required"`
	Holidays         []string `json:"holidays" validate:"omitempty,dive,datetime=2006-01-02"`
	PreserveExisting bool     `json:"preserve_existing"`
	Persist          bool     `json:"persist"`
	MaxTokens        int      `json:"max_tokens" validate:"omitempty,min=256"`
}

// GenerateScheduleResponse returns the accepted schedule plus advisory
// fairness findings. EffectiveMaxTokens reflects any provider ceiling capping
// so callers can detect under-generation after the fact.
type GenerateScheduleResponse struct {
	PreviewID          string                   `json:"preview_id,omitempty"`
	Schedule           models.GeneratedSchedule `json:"schedule"`
	Violations         []string                 `json:"violations"`
	Attempts           int                      `json:"attempts"`
	EffectiveMaxTokens int                      `json:"effective_max_tokens"`
	Saved              *SaveScheduleResponse    `json:"saved,omitempty"`
}

// SaveScheduleResponse confirms persistence with created record identifiers.
type SaveScheduleResponse struct {
	ShiftIDs      []string `json:"shift_ids"`
	AssignmentIDs []string `json:"assignment_ids"`
}

// ShiftListQuery filters the durable shift listing.
type ShiftListQuery struct {
	Bureau    string `form:"bureau"`
	StartDate string `form:"start" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end" validate:"omitempty,datetime=2006-01-02"`
	Page      int    `form:"page"`
	PageSize  int    `form:"limit"`
}
