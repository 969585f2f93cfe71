package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/service/member"
)

// MemberRepo implements member.Repository over the membership_directory view.
type MemberRepo struct{ db *sql.DB }

// NewMemberRepo creates a Postgres-backed membership directory repository.
func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{db: db} }

var memberColumns = listing.Columns{
	Search: []string{"first_name", "last_name", "email", "organization"},
	Status: "status",
	Sort: map[string]string{
		"name":            "lower(last_name || ' ' || first_name)",
		"email":           "lower(email)",
		"organization":    "lower(organization)",
		"membership_type": "lower(membership_type)",
		"join_date":       "join_date",
		"expiry_date":     "expiry_date",
		"total_paid":      "total_paid_cents",
	},
	Default:  "created_at DESC",
	Tiebreak: "id",
}

const memberSelect = `id, COALESCE(application_id::text, ''), first_name, last_name, email, phone,
	organization, membership_type, join_date, expiry_date, status, last_payment_at,
	total_paid_cents, payment_count, created_at`

func scanMember(s scanner) (domain.Member, error) {
	var m domain.Member
	var lastPayment sql.NullTime
	err := s.Scan(
		&m.ID, &m.ApplicationID, &m.FirstName, &m.LastName, &m.Email, &m.Phone,
		&m.Organization, &m.MembershipType, &m.JoinDate, &m.ExpiryDate, &m.Status, &lastPayment,
		&m.TotalPaidCents, &m.PaymentCount, &m.CreatedAt,
	)
	m.LastPaymentAt = timePtr(lastPayment)
	return m, err
}

func (r *MemberRepo) List(ctx context.Context, q listing.Query) (listing.Page[domain.Member], error) {
	st := memberColumns.Build("membership_directory", memberSelect, q)
	page, err := fetchPage(ctx, r.db, st, q, scanMember)
	if err != nil {
		return page, fmt.Errorf("list members: %w", err)
	}
	return page, nil
}

func (r *MemberRepo) Get(ctx context.Context, id string) (*domain.Member, error) {
	if !validID(id) {
		return nil, member.ErrNotFound
	}
	m, err := scanMember(r.db.QueryRowContext(ctx,
		`SELECT `+memberSelect+` FROM membership_directory WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, member.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return &m, nil
}

func (r *MemberRepo) Payments(ctx context.Context, memberID string) ([]domain.Payment, error) {
	if !validID(memberID) {
		return []domain.Payment{}, nil
	}
	out, err := fetchAll(ctx, r.db, `
		SELECT id, member_id, amount_cents, currency, method, reference, paid_at
		FROM payments WHERE member_id = $1
		ORDER BY paid_at DESC, id`, []any{memberID},
		func(s scanner) (domain.Payment, error) {
			var p domain.Payment
			err := s.Scan(&p.ID, &p.MemberID, &p.AmountCents, &p.Currency, &p.Method, &p.Reference, &p.PaidAt)
			return p, err
		})
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return out, nil
}

// RecordPayment locks the member row so concurrent renewals stack instead
// of overwriting each other.
func (r *MemberRepo) RecordPayment(ctx context.Context, p *domain.Payment) (time.Time, error) {
	if !validID(p.MemberID) {
		return time.Time{}, member.ErrNotFound
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("begin payment: %w", err)
	}
	defer tx.Rollback()

	var expiry time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT expiry_date FROM members WHERE id = $1 FOR UPDATE`, p.MemberID).Scan(&expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, member.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("lock member: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO payments (id, member_id, amount_cents, currency, method, reference, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.MemberID, p.AmountCents, p.Currency, p.Method, p.Reference, p.PaidAt); err != nil {
		return time.Time{}, fmt.Errorf("insert payment: %w", err)
	}

	renewed := domain.RenewedExpiry(expiry, p.PaidAt)
	if _, err := tx.ExecContext(ctx,
		`UPDATE members SET expiry_date = $2 WHERE id = $1`, p.MemberID, renewed); err != nil {
		return time.Time{}, fmt.Errorf("extend membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return time.Time{}, fmt.Errorf("commit payment: %w", err)
	}
	return renewed, nil
}

func (r *MemberRepo) Stats(ctx context.Context, yearStart time.Time) (domain.MemberStats, error) {
	var s domain.MemberStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'active'),
		       COUNT(*) FILTER (WHERE status = 'expiring'),
		       COUNT(*) FILTER (WHERE status = 'expired')
		FROM membership_directory`).Scan(&s.Total, &s.Active, &s.Expiring, &s.Expired)
	if err != nil {
		return s, fmt.Errorf("member stats: %w", err)
	}
	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0), COUNT(*)
		FROM payments WHERE paid_at >= $1`, yearStart).Scan(&s.RevenueCentsYTD, &s.PaymentsCountYTD)
	if err != nil {
		return s, fmt.Errorf("revenue stats: %w", err)
	}
	return s, nil
}
