package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/bureauplan/bureauplan-api/internal/dto"
	"github.com/bureauplan/bureauplan-api/internal/models"
	appErrors "github.com/bureauplan/bureauplan-api/pkg/errors"
)

type bureauFinder interface {
	FindByName(ctx context.Context, name string) (*models.Bureau, error)
}

type employeeFinder interface {
	FindByName(ctx context.Context, name string) (*models.Employee, error)
}

type shiftBulkWriter interface {
	BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, shifts []models.Shift) error
	BulkAssignWithTx(ctx context.Context, tx *sqlx.Tx, assignments []models.ShiftAssignment) error
}

// ScheduleSaveService persists an accepted schedule. Name resolution happens
// before the transaction opens so reference failures cost nothing; the writes
// themselves share one transaction, so a schedule is stored entirely or not
// at all.
type ScheduleSaveService struct {
	db        *sqlx.DB
	bureaus   bureauFinder
	employees employeeFinder
	shifts    shiftBulkWriter
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewScheduleSaveService wires the writer.
func NewScheduleSaveService(db *sqlx.DB, bureaus bureauFinder, employees employeeFinder, shifts shiftBulkWriter, logger *zap.Logger) *ScheduleSaveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleSaveService{db: db, bureaus: bureaus, employees: employees, shifts: shifts, logger: logger}
}

// WithMetrics attaches the instrumentation. Safe to skip in tests.
func (s *ScheduleSaveService) WithMetrics(m *MetricsService) *ScheduleSaveService {
	s.metrics = m
	return s
}

// Save resolves names to ids and writes shifts plus assignments in one
// transaction. actorID is recorded as creator and assigner.
func (s *ScheduleSaveService) Save(ctx context.Context, schedule *models.GeneratedSchedule, actorID string) (*dto.SaveScheduleResponse, error) {
	if schedule == nil || len(schedule.Shifts) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "schedule has no shifts to save")
	}

	bureauIDs, err := s.resolveBureaus(ctx, schedule.Shifts)
	if err != nil {
		return nil, err
	}
	employeeIDs, err := s.resolveEmployees(ctx, schedule.Shifts)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	shifts := make([]models.Shift, 0, len(schedule.Shifts))
	assignments := make([]models.ShiftAssignment, 0, len(schedule.Shifts))
	for _, candidate := range schedule.Shifts {
		date, err := time.Parse("2006-01-02", candidate.Date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("invalid shift date %q", candidate.Date))
		}
		shiftID := uuid.NewString()
		shifts = append(shifts, models.Shift{
			ID:        shiftID,
			BureauID:  bureauIDs[strings.ToLower(candidate.Bureau)],
			ShiftDate: date,
			StartTime: candidate.StartTime,
			EndTime:   candidate.EndTime,
			Category:  models.ShiftCategory(candidate.Category),
			CreatedBy: actorID,
			CreatedAt: now,
			UpdatedAt: now,
		})
		assignments = append(assignments, models.ShiftAssignment{
			ID:         uuid.NewString(),
			ShiftID:    shiftID,
			EmployeeID: employeeIDs[strings.ToLower(candidate.EmployeeName)],
			AssignedBy: actorID,
			CreatedAt:  now,
		})
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.shifts.BulkCreateWithTx(ctx, tx, shifts); err != nil {
		return nil, databaseError(err, "insert shifts")
	}
	if err = s.shifts.BulkAssignWithTx(ctx, tx, assignments); err != nil {
		return nil, databaseError(err, "insert assignments")
	}
	if err = tx.Commit(); err != nil {
		return nil, databaseError(err, "commit schedule")
	}

	resp := &dto.SaveScheduleResponse{
		ShiftIDs:      make([]string, 0, len(shifts)),
		AssignmentIDs: make([]string, 0, len(assignments)),
	}
	for _, shift := range shifts {
		resp.ShiftIDs = append(resp.ShiftIDs, shift.ID)
	}
	for _, assignment := range assignments {
		resp.AssignmentIDs = append(resp.AssignmentIDs, assignment.ID)
	}

	if s.metrics != nil {
		s.metrics.ObserveShiftsSaved(len(shifts))
	}
	s.logger.Info("schedule persisted",
		zap.Int("shifts", len(shifts)),
		zap.String("actor_id", actorID),
	)
	return resp, nil
}

func (s *ScheduleSaveService) resolveBureaus(ctx context.Context, shifts []models.ShiftCandidate) (map[string]string, error) {
	ids := make(map[string]string)
	for _, shift := range shifts {
		key := strings.ToLower(shift.Bureau)
		if _, done := ids[key]; done {
			continue
		}
		bureau, err := s.bureaus.FindByName(ctx, shift.Bureau)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrLocationNotFound,
				fmt.Sprintf("bureau %q not found", shift.Bureau))
		}
		if err != nil {
			return nil, databaseError(err, "resolve bureau")
		}
		ids[key] = bureau.ID
	}
	return ids, nil
}

func (s *ScheduleSaveService) resolveEmployees(ctx context.Context, shifts []models.ShiftCandidate) (map[string]string, error) {
	ids := make(map[string]string)
	for _, shift := range shifts {
		key := strings.ToLower(shift.EmployeeName)
		if _, done := ids[key]; done {
			continue
		}
		employee, err := s.employees.FindByName(ctx, shift.EmployeeName)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrEmployeeNotFound,
				fmt.Sprintf("employee %q not found", shift.EmployeeName))
		}
		if err != nil {
			return nil, databaseError(err, "resolve employee")
		}
		ids[key] = employee.ID
	}
	return ids, nil
}

// databaseError keeps the driver's own message visible in the response; the
// verbatim postgres text is what operators grep the database logs with.
func databaseError(err error, op string) *appErrors.Error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return appErrors.Wrap(err, "DATABASE_ERROR", appErrors.ErrInternal.Status,
			fmt.Sprintf("%s: %s", op, pqErr.Message))
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, op)
}
