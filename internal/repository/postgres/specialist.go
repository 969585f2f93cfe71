package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/service/specialist"
)

// SpecialistRepo implements specialist.Repository against PostgreSQL.
type SpecialistRepo struct{ db *sql.DB }

// NewSpecialistRepo creates a Postgres-backed specialist repository.
func NewSpecialistRepo(db *sql.DB) *SpecialistRepo { return &SpecialistRepo{db: db} }

var specialistColumns = listing.Columns{
	Search: []string{"first_name", "last_name", "specialty", "region", "city"},
	Status: "CASE WHEN is_visible THEN 'visible' ELSE 'hidden' END",
	Sort: map[string]string{
		"name":       "lower(last_name || ' ' || first_name)",
		"specialty":  "lower(specialty)",
		"region":     "lower(region)",
		"city":       "lower(city)",
		"created_at": "created_at",
	},
	Default:  "created_at DESC",
	Tiebreak: "id",
}

const specialistSelect = `id, COALESCE(application_id::text, ''), first_name, last_name, email, phone,
	specialty, region, city, bio, website, is_visible, created_at`

func scanSpecialist(s scanner) (domain.Specialist, error) {
	var sp domain.Specialist
	err := s.Scan(
		&sp.ID, &sp.ApplicationID, &sp.FirstName, &sp.LastName, &sp.Email, &sp.Phone,
		&sp.Specialty, &sp.Region, &sp.City, &sp.Bio, &sp.Website, &sp.IsVisible, &sp.CreatedAt,
	)
	return sp, err
}

func (r *SpecialistRepo) List(ctx context.Context, q listing.Query) (listing.Page[domain.Specialist], error) {
	st := specialistColumns.Build("specialists", specialistSelect, q)
	page, err := fetchPage(ctx, r.db, st, q, scanSpecialist)
	if err != nil {
		return page, fmt.Errorf("list specialists: %w", err)
	}
	return page, nil
}

func (r *SpecialistRepo) Get(ctx context.Context, id string) (*domain.Specialist, error) {
	if !validID(id) {
		return nil, specialist.ErrNotFound
	}
	sp, err := scanSpecialist(r.db.QueryRowContext(ctx,
		`SELECT `+specialistSelect+` FROM specialists WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, specialist.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get specialist: %w", err)
	}
	return &sp, nil
}

func (r *SpecialistRepo) SetVisibility(ctx context.Context, id string, visible bool) error {
	if !validID(id) {
		return specialist.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `UPDATE specialists SET is_visible = $2 WHERE id = $1`, id, visible)
	if err != nil {
		return fmt.Errorf("set visibility: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return specialist.ErrNotFound
	}
	return nil
}

func (r *SpecialistRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return specialist.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM specialists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete specialist: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return specialist.ErrNotFound
	}
	return nil
}

func (r *SpecialistRepo) CountVisible(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM specialists WHERE is_visible`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count specialists: %w", err)
	}
	return n, nil
}
