package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bureauplan/bureauplan-api/internal/models"
)

// ShiftRepository provides persistence for shifts and their assignments.
type ShiftRepository struct {
	db *sqlx.DB
}

// NewShiftRepository creates a new shift repository.
func NewShiftRepository(db *sqlx.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

const shiftDetailColumns = `s.id, s.bureau_id, s.shift_date, s.start_time, s.end_time, s.category,
	s.notes, s.created_by, s.created_at, s.updated_at,
	b.name AS bureau_name, e.full_name AS employee_name`

const shiftDetailJoins = `FROM shifts s
	JOIN bureaus b ON b.id = s.bureau_id
	JOIN shift_assignments sa ON sa.shift_id = s.id
	JOIN employees e ON e.id = sa.employee_id`

// List returns shift details with optional filtering and pagination.
func (r *ShiftRepository) List(ctx context.Context, filter models.ShiftFilter) ([]models.ShiftDetail, int, error) {
	base := shiftDetailJoins + " WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Bureau != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(b.name) = LOWER($%d)", len(args)+1))
		args = append(args, filter.Bureau)
	}
	if !filter.StartDate.IsZero() {
		conditions = append(conditions, fmt.Sprintf("s.shift_date >= $%d", len(args)+1))
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		conditions = append(conditions, fmt.Sprintf("s.shift_date <= $%d", len(args)+1))
		args = append(args, filter.EndDate)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY s.shift_date, s.start_time, e.full_name LIMIT %d OFFSET %d",
		shiftDetailColumns, base, size, offset)
	var shifts []models.ShiftDetail
	if err := r.db.SelectContext(ctx, &shifts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list shifts: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count shifts: %w", err)
	}

	return shifts, total, nil
}

// ListDetailsByRange returns every shift detail in the date window, used as
// prompt context when an existing schedule must be preserved.
func (r *ShiftRepository) ListDetailsByRange(ctx context.Context, bureau string, start, end time.Time) ([]models.ShiftDetail, error) {
	base := fmt.Sprintf("SELECT %s %s WHERE s.shift_date BETWEEN $1 AND $2", shiftDetailColumns, shiftDetailJoins)
	args := []interface{}{start, end}
	if bureau != "" {
		base += " AND LOWER(b.name) = LOWER($3)"
		args = append(args, bureau)
	}
	base += " ORDER BY s.shift_date, s.start_time"

	var shifts []models.ShiftDetail
	if err := r.db.SelectContext(ctx, &shifts, base, args...); err != nil {
		return nil, fmt.Errorf("list shifts by range: %w", err)
	}
	return shifts, nil
}

// BulkCreateWithTx inserts the shifts inside the caller's transaction.
func (r *ShiftRepository) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, shifts []models.Shift) error {
	if len(shifts) == 0 {
		return nil
	}
	const query = `INSERT INTO shifts (id, bureau_id, shift_date, start_time, end_time, category, notes, created_by, created_at, updated_at)
		VALUES (:id, :bureau_id, :shift_date, :start_time, :end_time, :category, :notes, :created_by, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, shifts); err != nil {
		return fmt.Errorf("bulk insert shifts: %w", err)
	}
	return nil
}

// BulkAssignWithTx inserts the assignments inside the caller's transaction.
func (r *ShiftRepository) BulkAssignWithTx(ctx context.Context, tx *sqlx.Tx, assignments []models.ShiftAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	const query = `INSERT INTO shift_assignments (id, shift_id, employee_id, assigned_by, created_at)
		VALUES (:id, :shift_id, :employee_id, :assigned_by, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, assignments); err != nil {
		return fmt.Errorf("bulk insert assignments: %w", err)
	}
	return nil
}
