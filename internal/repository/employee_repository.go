package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/bureauplan/bureauplan-api/internal/models"
)

// EmployeeRepository provides persistence for employees and their planner
// profiles.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository creates a new employee repository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

type employeeRow struct {
	models.Employee
	BureauName string `db:"bureau_name"`
}

type historyRow struct {
	EmployeeID string `db:"employee_id"`
	models.ShiftHistory
}

// ListProfiles returns the active roster with preferences and a trailing 30
// day workload summary. Pass an empty bureau to include every bureau.
func (r *EmployeeRepository) ListProfiles(ctx context.Context, bureau string) ([]models.EmployeeProfile, error) {
	base := `SELECT e.id, e.full_name, e.title, e.role_tier, e.bureau_id, e.preferences,
		e.pref_confirmed, e.pref_confirmed_by, e.pref_confirmed_at,
		e.active, e.created_at, e.updated_at, b.name AS bureau_name
		FROM employees e
		JOIN bureaus b ON b.id = e.bureau_id
		WHERE e.active = true`
	var args []interface{}
	if bureau != "" {
		base += fmt.Sprintf(" AND LOWER(b.name) = LOWER($%d)", len(args)+1)
		args = append(args, bureau)
	}
	base += " ORDER BY e.full_name"

	var rows []employeeRow
	if err := r.db.SelectContext(ctx, &rows, base, args...); err != nil {
		return nil, fmt.Errorf("list employee profiles: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	history, err := r.recentHistory(ctx, rows)
	if err != nil {
		return nil, err
	}

	profiles := make([]models.EmployeeProfile, 0, len(rows))
	for _, row := range rows {
		profile := models.EmployeeProfile{
			ID:         row.ID,
			FullName:   row.FullName,
			Title:      row.Title,
			RoleTier:   row.RoleTier,
			BureauName: row.BureauName,
			History:    history[row.ID],
		}
		if len(row.Preferences) > 0 {
			// Malformed preference blobs degrade to no preferences
			// rather than blocking the whole roster.
			_ = json.Unmarshal(row.Preferences, &profile.Preferences)
		}
		if row.PrefConfirmed != nil {
			confirmation := &models.PreferenceConfirmation{Confirmed: *row.PrefConfirmed}
			if row.PrefConfirmedBy != nil {
				confirmation.ConfirmedBy = *row.PrefConfirmedBy
			}
			if row.PrefConfirmedAt != nil {
				confirmation.ConfirmedAt = *row.PrefConfirmedAt
			}
			profile.Confirmation = confirmation
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

func (r *EmployeeRepository) recentHistory(ctx context.Context, rows []employeeRow) (map[string]models.ShiftHistory, error) {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	const query = `SELECT sa.employee_id,
		COUNT(*) AS total_shifts,
		COUNT(*) FILTER (WHERE EXTRACT(ISODOW FROM s.shift_date) IN (6, 7)) AS weekend_shifts,
		COUNT(*) FILTER (WHERE s.category = 'Night') AS night_shifts
		FROM shift_assignments sa
		JOIN shifts s ON s.id = sa.shift_id
		WHERE s.shift_date >= CURRENT_DATE - INTERVAL '30 days'
		AND sa.employee_id IN (?)
		GROUP BY sa.employee_id`
	expanded, args, err := sqlx.In(query, ids)
	if err != nil {
		return nil, fmt.Errorf("expand history query: %w", err)
	}

	var results []historyRow
	if err := r.db.SelectContext(ctx, &results, r.db.Rebind(expanded), args...); err != nil {
		return nil, fmt.Errorf("load shift history: %w", err)
	}

	history := make(map[string]models.ShiftHistory, len(results))
	for _, row := range results {
		history[row.EmployeeID] = row.ShiftHistory
	}
	return history, nil
}

// FindByName loads an employee by exact full name, case-insensitively.
func (r *EmployeeRepository) FindByName(ctx context.Context, name string) (*models.Employee, error) {
	const query = `SELECT id, full_name, title, role_tier, bureau_id, preferences,
		pref_confirmed, pref_confirmed_by, pref_confirmed_at, active, created_at, updated_at
		FROM employees WHERE LOWER(full_name) = LOWER($1) AND active = true`
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, strings.TrimSpace(name)); err != nil {
		return nil, err
	}
	return &employee, nil
}

// FindByID loads an employee by id.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	const query = `SELECT id, full_name, title, role_tier, bureau_id, preferences,
		pref_confirmed, pref_confirmed_by, pref_confirmed_at, active, created_at, updated_at
		FROM employees WHERE id = $1`
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, id); err != nil {
		return nil, err
	}
	return &employee, nil
}
