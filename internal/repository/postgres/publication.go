package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/service/publication"
)

// PublicationRepo implements publication.Repository against PostgreSQL.
type PublicationRepo struct{ db *sql.DB }

// NewPublicationRepo creates a Postgres-backed publication repository.
func NewPublicationRepo(db *sql.DB) *PublicationRepo { return &PublicationRepo{db: db} }

var publicationColumns = listing.Columns{
	Search: []string{"title", "authors", "category"},
	Status: "status",
	Sort: map[string]string{
		"title":      "lower(title)",
		"authors":    "lower(authors)",
		"category":   "lower(category)",
		"status":     "status",
		"created_at": "created_at",
	},
	Default:  "created_at DESC",
	Tiebreak: "id",
}

const publicationSelect = `id, title, authors, abstract, category, COALESCE(file_key, ''),
	COALESCE(source_url, ''), status, submitted_by, submitted_at, reviewed_at, published_at,
	archived_at, created_at, updated_at`

func scanPublication(s scanner) (domain.Publication, error) {
	var p domain.Publication
	var submittedAt, reviewedAt, publishedAt, archivedAt sql.NullTime
	err := s.Scan(
		&p.ID, &p.Title, &p.Authors, &p.Abstract, &p.Category, &p.FileKey,
		&p.SourceURL, &p.Status, &p.SubmittedBy, &submittedAt, &reviewedAt, &publishedAt,
		&archivedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	p.SubmittedAt = timePtr(submittedAt)
	p.ReviewedAt = timePtr(reviewedAt)
	p.PublishedAt = timePtr(publishedAt)
	p.ArchivedAt = timePtr(archivedAt)
	return p, err
}

func (r *PublicationRepo) List(ctx context.Context, q listing.Query) (listing.Page[domain.Publication], error) {
	st := publicationColumns.Build("publications", publicationSelect, q)
	page, err := fetchPage(ctx, r.db, st, q, scanPublication)
	if err != nil {
		return page, fmt.Errorf("list publications: %w", err)
	}
	return page, nil
}

func (r *PublicationRepo) Get(ctx context.Context, id string) (*domain.Publication, error) {
	if !validID(id) {
		return nil, publication.ErrNotFound
	}
	p, err := scanPublication(r.db.QueryRowContext(ctx,
		`SELECT `+publicationSelect+` FROM publications WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, publication.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get publication: %w", err)
	}
	return &p, nil
}

func (r *PublicationRepo) Create(ctx context.Context, p *domain.Publication) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO publications
			(id, title, authors, abstract, category, source_url, status, submitted_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, p.Title, p.Authors, p.Abstract, p.Category, nullString(p.SourceURL),
		p.Status, p.SubmittedBy, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create publication: %w", err)
	}
	return nil
}

func (r *PublicationRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return publication.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM publications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete publication: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return publication.ErrNotFound
	}
	return nil
}

// stampColumn names the timestamp set when a publication enters status.
func stampColumn(status domain.PublicationStatus) string {
	switch status {
	case domain.PublicationSubmitted:
		return "submitted_at"
	case domain.PublicationApproved, domain.PublicationRejected:
		return "reviewed_at"
	case domain.PublicationPublished:
		return "published_at"
	case domain.PublicationArchived:
		return "archived_at"
	}
	return ""
}

func (r *PublicationRepo) Transition(ctx context.Context, id string, from []domain.PublicationStatus, to domain.PublicationStatus, at time.Time) error {
	if !validID(id) {
		return publication.ErrNotFound
	}
	sources := make([]string, len(from))
	for i, s := range from {
		sources[i] = string(s)
	}
	set := "status = $2, updated_at = $3"
	if col := stampColumn(to); col != "" {
		set += ", " + col + " = $3"
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE publications SET `+set+` WHERE id = $1 AND status = ANY($4)`,
		id, to, at, pq.Array(sources))
	if err != nil {
		return fmt.Errorf("transition publication: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return missing(ctx, r.db, "publications", id, publication.ErrNotFound, publication.ErrInvalidTransition)
	}
	return nil
}

func (r *PublicationRepo) SetFile(ctx context.Context, id, key string) error {
	if !validID(id) {
		return publication.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE publications SET file_key = $2, updated_at = NOW() WHERE id = $1`, id, nullString(key))
	if err != nil {
		return fmt.Errorf("set publication file: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return publication.ErrNotFound
	}
	return nil
}

func (r *PublicationRepo) ExistsBySourceURL(ctx context.Context, url string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM publications WHERE source_url = $1)`, url).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check source url: %w", err)
	}
	return ok, nil
}

func (r *PublicationRepo) CountByStatus(ctx context.Context) (map[domain.PublicationStatus]int, error) {
	out := map[domain.PublicationStatus]int{}
	for _, st := range []domain.PublicationStatus{
		domain.PublicationDraft, domain.PublicationSubmitted, domain.PublicationApproved,
		domain.PublicationRejected, domain.PublicationPublished, domain.PublicationArchived,
	} {
		out[st] = 0
	}
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM publications GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count publications: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var st domain.PublicationStatus
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("scan publication count: %w", err)
		}
		out[st] = n
	}
	return out, rows.Err()
}

func (r *PublicationRepo) AddReview(ctx context.Context, rv *domain.Review) error {
	if !validID(rv.PublicationID) {
		return publication.ErrNotFound
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reviews (id, publication_id, reviewer, decision, comments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rv.ID, rv.PublicationID, rv.Reviewer, rv.Decision, rv.Comments, rv.CreatedAt)
	if isForeignKeyViolation(err) {
		return publication.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("add review: %w", err)
	}
	return nil
}

func (r *PublicationRepo) Reviews(ctx context.Context, publicationID string) ([]domain.Review, error) {
	if !validID(publicationID) {
		return []domain.Review{}, nil
	}
	out, err := fetchAll(ctx, r.db, `
		SELECT id, publication_id, reviewer, decision, comments, created_at
		FROM reviews WHERE publication_id = $1
		ORDER BY created_at, id`, []any{publicationID},
		func(s scanner) (domain.Review, error) {
			var rv domain.Review
			err := s.Scan(&rv.ID, &rv.PublicationID, &rv.Reviewer, &rv.Decision, &rv.Comments, &rv.CreatedAt)
			return rv, err
		})
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return out, nil
}
