package newsletter

import (
	"context"
	"time"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/mailer"
)

// Repository defines the data access contract for newsletters.
type Repository interface {
	List(ctx context.Context, q listing.Query) (listing.Page[domain.Newsletter], error)
	// Get returns ErrNotFound if the newsletter doesn't exist.
	Get(ctx context.Context, id string) (*domain.Newsletter, error)
	Create(ctx context.Context, n *domain.Newsletter) error

	// Update applies u to a draft. Returns ErrInvalidTransition when the
	// newsletter is no longer a draft.
	Update(ctx context.Context, id string, u UpdateFields) error

	// Delete removes a newsletter that was never sent. Returns ErrAlreadySent.
	Delete(ctx context.Context, id string) error

	// Schedule moves a draft or scheduled newsletter to scheduled at t.
	Schedule(ctx context.Context, id string, at time.Time) error

	// Unschedule moves a scheduled newsletter back to draft.
	Unschedule(ctx context.Context, id string) error

	// MarkSent records the outcome of a send. Returns ErrAlreadySent if
	// another send got there first.
	MarkSent(ctx context.Context, id string, at time.Time, recipients, failed int) error

	// Due returns scheduled newsletters whose time is at or before now.
	Due(ctx context.Context, now time.Time) ([]domain.Newsletter, error)

	CountByStatus(ctx context.Context) (map[domain.NewsletterStatus]int, error)
}

// UpdateFields holds the mutable fields for a newsletter update.
// Nil fields are not applied.
type UpdateFields struct {
	Title   *string `json:"title"`
	Subject *string `json:"subject"`
	Content *string `json:"content"`
}

// Recipients supplies the active audience.
type Recipients interface {
	Active(ctx context.Context) ([]domain.Subscriber, error)
}

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// Locker serializes sends across processes.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}
