package application

import (
	"context"
	"time"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
)

// Repository defines the data access contract for applications.
// Implementations must be safe for concurrent use.
type Repository interface {
	ListMembership(ctx context.Context, q listing.Query) (listing.Page[domain.MembershipApplication], error)
	ListSpecialist(ctx context.Context, q listing.Query) (listing.Page[domain.SpecialistApplication], error)

	// GetMembership returns ErrNotFound if the application doesn't exist.
	GetMembership(ctx context.Context, id string) (*domain.MembershipApplication, error)
	GetSpecialist(ctx context.Context, id string) (*domain.SpecialistApplication, error)

	// ApproveMembership marks a pending application approved and inserts
	// the member built by domain.MemberFromApplication, in one transaction.
	// Returns ErrNotFound or ErrNotPending without writing anything.
	ApproveMembership(ctx context.Context, id string, r Review) (*domain.Member, error)

	// ApproveSpecialist is ApproveMembership for the specialist directory.
	ApproveSpecialist(ctx context.Context, id string, r Review) (*domain.Specialist, error)

	// Reject marks a pending application rejected. Returns ErrNotFound or
	// ErrNotPending.
	Reject(ctx context.Context, kind domain.ApplicationKind, id string, r Review) error

	// Delete removes an application in any status.
	Delete(ctx context.Context, kind domain.ApplicationKind, id string) error

	// Counts groups one application table by status.
	Counts(ctx context.Context, kind domain.ApplicationKind) (domain.ApplicationCounts, error)
}

// Review carries the reviewer's identity and decision metadata.
type Review struct {
	Reviewer string
	Reason   string
	At       time.Time
	// DirectoryID is the id given to the row created on approval.
	DirectoryID string
}
