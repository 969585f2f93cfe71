package subscriber

import (
	"context"
	"time"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
)

// Repository defines the data access contract for subscribers. The status
// filter vocabulary is "active" / "inactive".
type Repository interface {
	// List pages at the query layer and counts separately.
	List(ctx context.Context, q listing.Query) (listing.Page[domain.Subscriber], error)
	Get(ctx context.Context, id string) (*domain.Subscriber, error)
	Delete(ctx context.Context, id string) error

	// Upsert inserts s or, when the email exists, reactivates it and updates
	// the names. Returns the stored row and whether it was newly created.
	Upsert(ctx context.Context, s *domain.Subscriber) (*domain.Subscriber, bool, error)

	// Unsubscribe deactivates the subscriber owning token.
	Unsubscribe(ctx context.Context, token string, at time.Time) (*domain.Subscriber, error)

	Count(ctx context.Context, activeOnly bool) (int, error)

	// Active returns every active subscriber (newsletter recipients).
	Active(ctx context.Context) ([]domain.Subscriber, error)
}
