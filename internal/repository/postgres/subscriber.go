package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/service/subscriber"
)

// SubscriberRepo implements subscriber.Repository against PostgreSQL.
type SubscriberRepo struct{ db *sql.DB }

// NewSubscriberRepo creates a Postgres-backed subscriber repository.
func NewSubscriberRepo(db *sql.DB) *SubscriberRepo { return &SubscriberRepo{db: db} }

var subscriberColumns = listing.Columns{
	Search: []string{"email", "first_name", "last_name"},
	Status: "CASE WHEN is_active THEN 'active' ELSE 'inactive' END",
	Sort: map[string]string{
		"email":         "lower(email)",
		"name":          "lower(last_name || ' ' || first_name)",
		"subscribed_at": "subscribed_at",
	},
	Default:  "subscribed_at DESC",
	Tiebreak: "id",
}

const subscriberSelect = `id, email, first_name, last_name, is_active, unsubscribe_token,
	subscribed_at, unsubscribed_at`

func scanSubscriber(s scanner) (domain.Subscriber, error) {
	var sub domain.Subscriber
	var unsubscribedAt sql.NullTime
	err := s.Scan(
		&sub.ID, &sub.Email, &sub.FirstName, &sub.LastName, &sub.IsActive, &sub.UnsubscribeToken,
		&sub.SubscribedAt, &unsubscribedAt,
	)
	sub.UnsubscribedAt = timePtr(unsubscribedAt)
	return sub, err
}

func (r *SubscriberRepo) List(ctx context.Context, q listing.Query) (listing.Page[domain.Subscriber], error) {
	st := subscriberColumns.Build("subscribers", subscriberSelect, q)
	page, err := fetchPage(ctx, r.db, st, q, scanSubscriber)
	if err != nil {
		return page, fmt.Errorf("list subscribers: %w", err)
	}
	return page, nil
}

func (r *SubscriberRepo) Get(ctx context.Context, id string) (*domain.Subscriber, error) {
	if !validID(id) {
		return nil, subscriber.ErrNotFound
	}
	sub, err := scanSubscriber(r.db.QueryRowContext(ctx,
		`SELECT `+subscriberSelect+` FROM subscribers WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, subscriber.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subscriber: %w", err)
	}
	return &sub, nil
}

func (r *SubscriberRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return subscriber.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM subscribers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return subscriber.ErrNotFound
	}
	return nil
}

// Upsert relies on the unique email index. xmax is zero only on the row
// version written by a plain insert. Stored names are only filled when
// empty, never replaced.
func (r *SubscriberRepo) Upsert(ctx context.Context, in *domain.Subscriber) (*domain.Subscriber, bool, error) {
	var created bool
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO subscribers
			(id, email, first_name, last_name, is_active, unsubscribe_token, subscribed_at)
		VALUES ($1, $2, $3, $4, TRUE, $5, $6)
		ON CONFLICT (email) DO UPDATE SET
			first_name      = COALESCE(NULLIF(subscribers.first_name, ''), EXCLUDED.first_name),
			last_name       = COALESCE(NULLIF(subscribers.last_name, ''), EXCLUDED.last_name),
			subscribed_at   = CASE WHEN subscribers.is_active THEN subscribers.subscribed_at ELSE EXCLUDED.subscribed_at END,
			unsubscribed_at = NULL,
			is_active       = TRUE
		RETURNING `+subscriberSelect+`, (xmax = 0)
	`, in.ID, in.Email, in.FirstName, in.LastName, in.UnsubscribeToken, in.SubscribedAt)

	var sub domain.Subscriber
	var unsubscribedAt sql.NullTime
	if err := row.Scan(
		&sub.ID, &sub.Email, &sub.FirstName, &sub.LastName, &sub.IsActive, &sub.UnsubscribeToken,
		&sub.SubscribedAt, &unsubscribedAt, &created,
	); err != nil {
		return nil, false, fmt.Errorf("upsert subscriber: %w", err)
	}
	sub.UnsubscribedAt = timePtr(unsubscribedAt)
	return &sub, created, nil
}

func (r *SubscriberRepo) Unsubscribe(ctx context.Context, token string, at time.Time) (*domain.Subscriber, error) {
	sub, err := scanSubscriber(r.db.QueryRowContext(ctx, `
		UPDATE subscribers
		SET unsubscribed_at = CASE WHEN is_active THEN $2 ELSE unsubscribed_at END,
		    is_active = FALSE
		WHERE unsubscribe_token = $1
		RETURNING `+subscriberSelect, token, at))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, subscriber.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("unsubscribe: %w", err)
	}
	return &sub, nil
}

func (r *SubscriberRepo) Count(ctx context.Context, activeOnly bool) (int, error) {
	q := `SELECT COUNT(*) FROM subscribers`
	if activeOnly {
		q += ` WHERE is_active`
	}
	var n int
	if err := r.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return n, nil
}

func (r *SubscriberRepo) Active(ctx context.Context) ([]domain.Subscriber, error) {
	out, err := fetchAll(ctx, r.db, `
		SELECT `+subscriberSelect+` FROM subscribers
		WHERE is_active
		ORDER BY subscribed_at DESC, id`, nil, scanSubscriber)
	if err != nil {
		return nil, fmt.Errorf("active subscribers: %w", err)
	}
	return out, nil
}
