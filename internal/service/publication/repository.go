package publication

import (
	"context"
	"io"
	"time"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/feed"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/storage"
)

// Repository defines the data access contract for publications and reviews.
type Repository interface {
	List(ctx context.Context, q listing.Query) (listing.Page[domain.Publication], error)
	// Get returns ErrNotFound if the publication doesn't exist.
	Get(ctx context.Context, id string) (*domain.Publication, error)
	Create(ctx context.Context, p *domain.Publication) error
	Delete(ctx context.Context, id string) error

	// Transition moves a publication to `to` only if its current status is
	// one of `from`, stamping the matching timestamp with at. Returns
	// ErrNotFound or ErrInvalidTransition.
	Transition(ctx context.Context, id string, from []domain.PublicationStatus, to domain.PublicationStatus, at time.Time) error

	SetFile(ctx context.Context, id, key string) error
	ExistsBySourceURL(ctx context.Context, url string) (bool, error)
	CountByStatus(ctx context.Context) (map[domain.PublicationStatus]int, error)

	AddReview(ctx context.Context, r *domain.Review) error
	Reviews(ctx context.Context, publicationID string) ([]domain.Review, error)
}

// FileStore keeps uploaded publication files.
type FileStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Get(ctx context.Context, key string) (*storage.Object, error)
	Delete(ctx context.Context, key string) error
}

// FeedFetcher reads a syndication feed.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]feed.Item, error)
}
