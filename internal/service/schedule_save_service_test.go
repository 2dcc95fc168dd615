package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bureauplan/bureauplan-api/internal/models"
	appErrors "github.com/bureauplan/bureauplan-api/pkg/errors"
)

type stubBureauFinder struct {
	ids map[string]string
}

func (f *stubBureauFinder) FindByName(_ context.Context, name string) (*models.Bureau, error) {
	id, ok := f.ids[name]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.Bureau{ID: id, Name: name}, nil
}

type stubEmployeeFinder struct {
	ids map[string]string
}

func (f *stubEmployeeFinder) FindByName(_ context.Context, name string) (*models.Employee, error) {
	id, ok := f.ids[name]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.Employee{ID: id, FullName: name}, nil
}

type stubBulkWriter struct {
	shifts      []models.Shift
	assignments []models.ShiftAssignment
	createErr   error
	assignErr   error
}

func (w *stubBulkWriter) BulkCreateWithTx(_ context.Context, _ *sqlx.Tx, shifts []models.Shift) error {
	if w.createErr != nil {
		return w.createErr
	}
	w.shifts = shifts
	return nil
}

func (w *stubBulkWriter) BulkAssignWithTx(_ context.Context, _ *sqlx.Tx, assignments []models.ShiftAssignment) error {
	if w.assignErr != nil {
		return w.assignErr
	}
	w.assignments = assignments
	return nil
}

func newSaveService(t *testing.T, writer *stubBulkWriter) (*ScheduleSaveService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := NewScheduleSaveService(
		sqlx.NewDb(db, "postgres"),
		&stubBureauFinder{ids: map[string]string{"Oslo": "b-oslo", "Bergen": "b-bergen"}},
		&stubEmployeeFinder{ids: map[string]string{"Kari Nordmann": "e-kari", "Ola Hansen": "e-ola"}},
		writer,
		nil,
	)
	return svc, mock
}

func sampleSchedule() *models.GeneratedSchedule {
	return &models.GeneratedSchedule{Shifts: []models.ShiftCandidate{
		candidate("2026-09-07", "08:00", "16:00", "Oslo", "Kari Nordmann"),
		candidate("2026-09-07", "16:00", "23:00", "Bergen", "Ola Hansen"),
	}}
}

func TestSaveWritesShiftsAndAssignmentsInOneTransaction(t *testing.T) {
	writer := &stubBulkWriter{}
	svc, mock := newSaveService(t, writer)
	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.Save(context.Background(), sampleSchedule(), "user-1")
	require.NoError(t, err)
	assert.Len(t, resp.ShiftIDs, 2)
	assert.Len(t, resp.AssignmentIDs, 2)

	require.Len(t, writer.shifts, 2)
	assert.Equal(t, "b-oslo", writer.shifts[0].BureauID)
	assert.Equal(t, "b-bergen", writer.shifts[1].BureauID)
	assert.Equal(t, "user-1", writer.shifts[0].CreatedBy)

	require.Len(t, writer.assignments, 2)
	assert.Equal(t, writer.shifts[0].ID, writer.assignments[0].ShiftID)
	assert.Equal(t, "e-kari", writer.assignments[0].EmployeeID)
	assert.Equal(t, "e-ola", writer.assignments[1].EmployeeID)
	assert.Equal(t, "user-1", writer.assignments[0].AssignedBy)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveUnknownBureau(t *testing.T) {
	svc, mock := newSaveService(t, &stubBulkWriter{})

	schedule := &models.GeneratedSchedule{Shifts: []models.ShiftCandidate{
		candidate("2026-09-07", "08:00", "16:00", "Stavanger", "Kari Nordmann"),
	}}
	_, err := svc.Save(context.Background(), schedule, "user-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrLocationNotFound.Code, appErr.Code)
	assert.Equal(t, `bureau "Stavanger" not found`, appErr.Message)

	// Resolution fails before the transaction opens.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveUnknownEmployee(t *testing.T) {
	svc, mock := newSaveService(t, &stubBulkWriter{})

	schedule := &models.GeneratedSchedule{Shifts: []models.ShiftCandidate{
		candidate("2026-09-07", "08:00", "16:00", "Oslo", "Non-existent Employee"),
	}}
	_, err := svc.Save(context.Background(), schedule, "user-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrEmployeeNotFound.Code, appErr.Code)
	assert.Equal(t, `employee "Non-existent Employee" not found`, appErr.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRollsBackOnInsertFailure(t *testing.T) {
	writer := &stubBulkWriter{
		createErr: &pq.Error{Message: "duplicate key value violates unique constraint"},
	}
	svc, mock := newSaveService(t, writer)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Save(context.Background(), sampleSchedule(), "user-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "DATABASE_ERROR", appErr.Code)
	assert.Contains(t, appErr.Message, "duplicate key value violates unique constraint")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveInvalidDate(t *testing.T) {
	svc, mock := newSaveService(t, &stubBulkWriter{})

	schedule := &models.GeneratedSchedule{Shifts: []models.ShiftCandidate{
		candidate("07.09.2026", "08:00", "16:00", "Oslo", "Kari Nordmann"),
	}}
	_, err := svc.Save(context.Background(), schedule, "user-1")
	require.Error(t, err)
	assert.Equal(t, `invalid shift date "07.09.2026"`, appErrors.FromError(err).Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveEmptySchedule(t *testing.T) {
	svc, _ := newSaveService(t, &stubBulkWriter{})
	_, err := svc.Save(context.Background(), &models.GeneratedSchedule{}, "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
