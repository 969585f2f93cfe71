package specialist

import (
	"context"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
)

// Repository defines the data access contract for the specialist directory.
// The status filter vocabulary is "visible" / "hidden".
type Repository interface {
	List(ctx context.Context, q listing.Query) (listing.Page[domain.Specialist], error)
	// Get returns ErrNotFound if the specialist doesn't exist.
	Get(ctx context.Context, id string) (*domain.Specialist, error)
	SetVisibility(ctx context.Context, id string, visible bool) error
	Delete(ctx context.Context, id string) error
	CountVisible(ctx context.Context) (int, error)
}
