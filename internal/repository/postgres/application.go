package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/service/application"
)

// ApplicationRepo implements application.Repository against PostgreSQL.
type ApplicationRepo struct{ db *sql.DB }

// NewApplicationRepo creates a Postgres-backed application repository.
func NewApplicationRepo(db *sql.DB) *ApplicationRepo { return &ApplicationRepo{db: db} }

var membershipAppColumns = listing.Columns{
	Search: []string{"first_name", "last_name", "email", "organization"},
	Status: "status",
	Sort: map[string]string{
		"name":         "lower(last_name || ' ' || first_name)",
		"email":        "lower(email)",
		"organization": "lower(organization)",
		"status":       "status",
		"created_at":   "created_at",
	},
	Default:  "created_at DESC",
	Tiebreak: "id",
}

var specialistAppColumns = listing.Columns{
	Search: []string{"first_name", "last_name", "email", "specialty", "region"},
	Status: "status",
	Sort: map[string]string{
		"name":       "lower(last_name || ' ' || first_name)",
		"email":      "lower(email)",
		"specialty":  "lower(specialty)",
		"region":     "lower(region)",
		"status":     "status",
		"created_at": "created_at",
	},
	Default:  "created_at DESC",
	Tiebreak: "id",
}

const membershipAppSelect = `id, first_name, last_name, email, phone, organization, position,
	membership_type, motivation, status, COALESCE(rejection_reason, ''), COALESCE(reviewed_by, ''),
	reviewed_at, created_at, updated_at`

const specialistAppSelect = `id, first_name, last_name, email, phone, specialty, region, city,
	license_number, years_experience, bio, website, status, COALESCE(rejection_reason, ''),
	COALESCE(reviewed_by, ''), reviewed_at, created_at, updated_at`

func scanMembershipApp(s scanner) (domain.MembershipApplication, error) {
	var a domain.MembershipApplication
	var reviewedAt sql.NullTime
	err := s.Scan(
		&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.Phone, &a.Organization, &a.Position,
		&a.MembershipType, &a.Motivation, &a.Status, &a.RejectionReason, &a.ReviewedBy,
		&reviewedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	a.ReviewedAt = timePtr(reviewedAt)
	return a, err
}

func scanSpecialistApp(s scanner) (domain.SpecialistApplication, error) {
	var a domain.SpecialistApplication
	var reviewedAt sql.NullTime
	err := s.Scan(
		&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.Phone, &a.Specialty, &a.Region, &a.City,
		&a.LicenseNumber, &a.YearsExperience, &a.Bio, &a.Website, &a.Status, &a.RejectionReason,
		&a.ReviewedBy, &reviewedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	a.ReviewedAt = timePtr(reviewedAt)
	return a, err
}

func applicationTable(kind domain.ApplicationKind) (string, error) {
	switch kind {
	case domain.KindMembership:
		return "membership_applications", nil
	case domain.KindSpecialist:
		return "specialist_applications", nil
	}
	return "", application.ErrInvalidKind
}

func (r *ApplicationRepo) ListMembership(ctx context.Context, q listing.Query) (listing.Page[domain.MembershipApplication], error) {
	st := membershipAppColumns.Build("membership_applications", membershipAppSelect, q)
	page, err := fetchPage(ctx, r.db, st, q, scanMembershipApp)
	if err != nil {
		return page, fmt.Errorf("list membership applications: %w", err)
	}
	return page, nil
}

func (r *ApplicationRepo) ListSpecialist(ctx context.Context, q listing.Query) (listing.Page[domain.SpecialistApplication], error) {
	st := specialistAppColumns.Build("specialist_applications", specialistAppSelect, q)
	page, err := fetchPage(ctx, r.db, st, q, scanSpecialistApp)
	if err != nil {
		return page, fmt.Errorf("list specialist applications: %w", err)
	}
	return page, nil
}

func (r *ApplicationRepo) GetMembership(ctx context.Context, id string) (*domain.MembershipApplication, error) {
	if !validID(id) {
		return nil, application.ErrNotFound
	}
	a, err := scanMembershipApp(r.db.QueryRowContext(ctx,
		`SELECT `+membershipAppSelect+` FROM membership_applications WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, application.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get membership application: %w", err)
	}
	return &a, nil
}

func (r *ApplicationRepo) GetSpecialist(ctx context.Context, id string) (*domain.SpecialistApplication, error) {
	if !validID(id) {
		return nil, application.ErrNotFound
	}
	a, err := scanSpecialistApp(r.db.QueryRowContext(ctx,
		`SELECT `+specialistAppSelect+` FROM specialist_applications WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, application.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get specialist application: %w", err)
	}
	return &a, nil
}

// ApproveMembership flips the application and inserts the member in one
// transaction. The status guard in the UPDATE makes concurrent approvals
// race safely: only one of them sees the pending row.
func (r *ApplicationRepo) ApproveMembership(ctx context.Context, id string, rv application.Review) (*domain.Member, error) {
	if !validID(id) {
		return nil, application.ErrNotFound
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin approval: %w", err)
	}
	defer tx.Rollback()

	a, err := scanMembershipApp(tx.QueryRowContext(ctx, `
		UPDATE membership_applications
		SET status = 'approved', reviewed_by = $2, reviewed_at = $3, updated_at = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING `+membershipAppSelect, id, rv.Reviewer, rv.At))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, missing(ctx, tx, "membership_applications", id, application.ErrNotFound, application.ErrNotPending)
	}
	if err != nil {
		return nil, fmt.Errorf("approve application: %w", err)
	}

	m := domain.MemberFromApplication(rv.DirectoryID, a, rv.At)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO members
			(id, application_id, first_name, last_name, email, phone, organization,
			 membership_type, join_date, expiry_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, m.ID, m.ApplicationID, m.FirstName, m.LastName, m.Email, m.Phone, m.Organization,
		m.MembershipType, m.JoinDate, m.ExpiryDate, m.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit approval: %w", err)
	}
	return &m, nil
}

func (r *ApplicationRepo) ApproveSpecialist(ctx context.Context, id string, rv application.Review) (*domain.Specialist, error) {
	if !validID(id) {
		return nil, application.ErrNotFound
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin approval: %w", err)
	}
	defer tx.Rollback()

	a, err := scanSpecialistApp(tx.QueryRowContext(ctx, `
		UPDATE specialist_applications
		SET status = 'approved', reviewed_by = $2, reviewed_at = $3, updated_at = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING `+specialistAppSelect, id, rv.Reviewer, rv.At))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, missing(ctx, tx, "specialist_applications", id, application.ErrNotFound, application.ErrNotPending)
	}
	if err != nil {
		return nil, fmt.Errorf("approve application: %w", err)
	}

	sp := domain.SpecialistFromApplication(rv.DirectoryID, a, rv.At)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO specialists
			(id, application_id, first_name, last_name, email, phone, specialty,
			 region, city, bio, website, is_visible, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, sp.ID, sp.ApplicationID, sp.FirstName, sp.LastName, sp.Email, sp.Phone, sp.Specialty,
		sp.Region, sp.City, sp.Bio, sp.Website, sp.IsVisible, sp.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert specialist: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit approval: %w", err)
	}
	return &sp, nil
}

func (r *ApplicationRepo) Reject(ctx context.Context, kind domain.ApplicationKind, id string, rv application.Review) error {
	table, err := applicationTable(kind)
	if err != nil {
		return err
	}
	if !validID(id) {
		return application.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE `+table+`
		SET status = 'rejected', rejection_reason = $2, reviewed_by = $3, reviewed_at = $4, updated_at = $4
		WHERE id = $1 AND status = 'pending'
	`, id, nullString(rv.Reason), rv.Reviewer, rv.At)
	if err != nil {
		return fmt.Errorf("reject application: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return missing(ctx, r.db, table, id, application.ErrNotFound, application.ErrNotPending)
	}
	return nil
}

func (r *ApplicationRepo) Delete(ctx context.Context, kind domain.ApplicationKind, id string) error {
	table, err := applicationTable(kind)
	if err != nil {
		return err
	}
	if !validID(id) {
		return application.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return application.ErrNotFound
	}
	return nil
}

func (r *ApplicationRepo) Counts(ctx context.Context, kind domain.ApplicationKind) (domain.ApplicationCounts, error) {
	var c domain.ApplicationCounts
	table, err := applicationTable(kind)
	if err != nil {
		return c, err
	}
	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'approved'),
		       COUNT(*) FILTER (WHERE status = 'rejected')
		FROM `+table).Scan(&c.Pending, &c.Approved, &c.Rejected)
	if err != nil {
		return c, fmt.Errorf("count applications: %w", err)
	}
	return c, nil
}
