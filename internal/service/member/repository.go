package member

import (
	"context"
	"time"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
)

// Repository defines the data access contract for the membership directory.
type Repository interface {
	// List reads the directory view; Status filters on the derived status.
	List(ctx context.Context, q listing.Query) (listing.Page[domain.Member], error)

	// Get returns ErrNotFound if the member doesn't exist.
	Get(ctx context.Context, id string) (*domain.Member, error)

	// Payments returns a member's payments, newest first.
	Payments(ctx context.Context, memberID string) ([]domain.Payment, error)

	// RecordPayment inserts p and moves the member's expiry to
	// domain.RenewedExpiry(expiry, p.PaidAt) in one transaction. Returns the
	// new expiry.
	RecordPayment(ctx context.Context, p *domain.Payment) (time.Time, error)

	// Stats aggregates the directory. Year-to-date figures start at yearStart.
	Stats(ctx context.Context, yearStart time.Time) (domain.MemberStats, error)
}
