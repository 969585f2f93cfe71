package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/service/newsletter"
)

// NewsletterRepo implements newsletter.Repository against PostgreSQL.
type NewsletterRepo struct{ db *sql.DB }

// NewNewsletterRepo creates a Postgres-backed newsletter repository.
func NewNewsletterRepo(db *sql.DB) *NewsletterRepo { return &NewsletterRepo{db: db} }

var newsletterColumns = listing.Columns{
	Search: []string{"title", "subject"},
	Status: "status",
	Sort: map[string]string{
		"title":        "lower(title)",
		"status":       "status",
		"created_at":   "created_at",
		"scheduled_at": "scheduled_at",
		"sent_at":      "sent_at",
	},
	Default:  "created_at DESC",
	Tiebreak: "id",
}

const newsletterSelect = `id, title, subject, content, status, scheduled_at, sent_at,
	recipient_count, failed_count, created_by, created_at, updated_at`

func scanNewsletter(s scanner) (domain.Newsletter, error) {
	var n domain.Newsletter
	var scheduledAt, sentAt sql.NullTime
	err := s.Scan(
		&n.ID, &n.Title, &n.Subject, &n.Content, &n.Status, &scheduledAt, &sentAt,
		&n.RecipientCount, &n.FailedCount, &n.CreatedBy, &n.CreatedAt, &n.UpdatedAt,
	)
	n.ScheduledAt = timePtr(scheduledAt)
	n.SentAt = timePtr(sentAt)
	return n, err
}

func (r *NewsletterRepo) List(ctx context.Context, q listing.Query) (listing.Page[domain.Newsletter], error) {
	st := newsletterColumns.Build("newsletters", newsletterSelect, q)
	page, err := fetchPage(ctx, r.db, st, q, scanNewsletter)
	if err != nil {
		return page, fmt.Errorf("list newsletters: %w", err)
	}
	return page, nil
}

func (r *NewsletterRepo) Get(ctx context.Context, id string) (*domain.Newsletter, error) {
	if !validID(id) {
		return nil, newsletter.ErrNotFound
	}
	n, err := scanNewsletter(r.db.QueryRowContext(ctx,
		`SELECT `+newsletterSelect+` FROM newsletters WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newsletter.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get newsletter: %w", err)
	}
	return &n, nil
}

func (r *NewsletterRepo) Create(ctx context.Context, n *domain.Newsletter) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO newsletters
			(id, title, subject, content, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, n.ID, n.Title, n.Subject, n.Content, n.Status, n.CreatedBy, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create newsletter: %w", err)
	}
	return nil
}

func (r *NewsletterRepo) Update(ctx context.Context, id string, u newsletter.UpdateFields) error {
	if !validID(id) {
		return newsletter.ErrNotFound
	}
	sets := []string{}
	args := []any{id}
	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.Subject != nil {
		add("subject", *u.Subject)
	}
	if u.Content != nil {
		add("content", *u.Content)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")

	q := fmt.Sprintf("UPDATE newsletters SET %s WHERE id = $1 AND status = 'draft'", strings.Join(sets, ", "))
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update newsletter: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return missing(ctx, r.db, "newsletters", id, newsletter.ErrNotFound, newsletter.ErrInvalidTransition)
	}
	return nil
}

func (r *NewsletterRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return newsletter.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM newsletters WHERE id = $1 AND status <> 'sent'`, id)
	if err != nil {
		return fmt.Errorf("delete newsletter: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return missing(ctx, r.db, "newsletters", id, newsletter.ErrNotFound, newsletter.ErrAlreadySent)
	}
	return nil
}

func (r *NewsletterRepo) Schedule(ctx context.Context, id string, at time.Time) error {
	if !validID(id) {
		return newsletter.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE newsletters SET status = 'scheduled', scheduled_at = $2, updated_at = NOW()
		WHERE id = $1 AND status <> 'sent'
	`, id, at)
	if err != nil {
		return fmt.Errorf("schedule newsletter: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return missing(ctx, r.db, "newsletters", id, newsletter.ErrNotFound, newsletter.ErrAlreadySent)
	}
	return nil
}

func (r *NewsletterRepo) Unschedule(ctx context.Context, id string) error {
	if !validID(id) {
		return newsletter.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE newsletters SET status = 'draft', scheduled_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'scheduled'
	`, id)
	if err != nil {
		return fmt.Errorf("unschedule newsletter: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return missing(ctx, r.db, "newsletters", id, newsletter.ErrNotFound, newsletter.ErrInvalidTransition)
	}
	return nil
}

func (r *NewsletterRepo) MarkSent(ctx context.Context, id string, at time.Time, recipients, failed int) error {
	if !validID(id) {
		return newsletter.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE newsletters
		SET status = 'sent', sent_at = $2, recipient_count = $3, failed_count = $4, updated_at = $2
		WHERE id = $1 AND status <> 'sent'
	`, id, at, recipients, failed)
	if err != nil {
		return fmt.Errorf("mark newsletter sent: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return missing(ctx, r.db, "newsletters", id, newsletter.ErrNotFound, newsletter.ErrAlreadySent)
	}
	return nil
}

func (r *NewsletterRepo) Due(ctx context.Context, now time.Time) ([]domain.Newsletter, error) {
	out, err := fetchAll(ctx, r.db, `
		SELECT `+newsletterSelect+` FROM newsletters
		WHERE status = 'scheduled' AND scheduled_at <= $1
		ORDER BY scheduled_at, id`, []any{now}, scanNewsletter)
	if err != nil {
		return nil, fmt.Errorf("due newsletters: %w", err)
	}
	return out, nil
}

func (r *NewsletterRepo) CountByStatus(ctx context.Context) (map[domain.NewsletterStatus]int, error) {
	out := map[domain.NewsletterStatus]int{
		domain.NewsletterDraft:     0,
		domain.NewsletterScheduled: 0,
		domain.NewsletterSent:      0,
	}
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM newsletters GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count newsletters: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var st domain.NewsletterStatus
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("scan newsletter count: %w", err)
		}
		out[st] = n
	}
	return out, rows.Err()
}
