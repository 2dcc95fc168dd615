package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bureauplan/bureauplan-api/internal/models"
)

// BureauRepository provides persistence for bureaus.
type BureauRepository struct {
	db *sqlx.DB
}

// NewBureauRepository creates a new bureau repository.
func NewBureauRepository(db *sqlx.DB) *BureauRepository {
	return &BureauRepository{db: db}
}

// List returns all active bureaus ordered by name.
func (r *BureauRepository) List(ctx context.Context) ([]models.Bureau, error) {
	const query = `SELECT id, name, address, active, created_at, updated_at FROM bureaus WHERE active = true ORDER BY name`
	var bureaus []models.Bureau
	if err := r.db.SelectContext(ctx, &bureaus, query); err != nil {
		return nil, fmt.Errorf("list bureaus: %w", err)
	}
	return bureaus, nil
}

// FindByID loads a bureau by id.
func (r *BureauRepository) FindByID(ctx context.Context, id string) (*models.Bureau, error) {
	const query = `SELECT id, name, address, active, created_at, updated_at FROM bureaus WHERE id = $1`
	var bureau models.Bureau
	if err := r.db.GetContext(ctx, &bureau, query, id); err != nil {
		return nil, err
	}
	return &bureau, nil
}

// FindByName loads a bureau by name, case-insensitively. Callers translate
// sql.ErrNoRows into their own domain error.
func (r *BureauRepository) FindByName(ctx context.Context, name string) (*models.Bureau, error) {
	const query = `SELECT id, name, address, active, created_at, updated_at FROM bureaus WHERE LOWER(name) = LOWER($1)`
	var bureau models.Bureau
	if err := r.db.GetContext(ctx, &bureau, query, name); err != nil {
		return nil, err
	}
	return &bureau, nil
}
