package specialist

import (
	"context"
	"fmt"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/pkg/logger"
)

// Service implements specialist directory logic.
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService creates a specialist service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, log: logger.Named("specialist")}
}

// List returns directory rows matching q (admin view, hidden rows included).
func (s *Service) List(ctx context.Context, q listing.Query) (listing.Page[domain.Specialist], error) {
	return s.repo.List(ctx, q.Normalize())
}

// PublicList returns visible specialists only; any status in q is ignored.
func (s *Service) PublicList(ctx context.Context, q listing.Query) (listing.Page[PublicSpecialist], error) {
	q = q.Normalize()
	q.Status = "visible"
	page, err := s.repo.List(ctx, q)
	if err != nil {
		return listing.Page[PublicSpecialist]{}, err
	}
	items := make([]PublicSpecialist, len(page.Items))
	for i, sp := range page.Items {
		items[i] = toPublic(sp)
	}
	return listing.Page[PublicSpecialist]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// Export returns every row matching q's filters, unpaginated.
func (s *Service) Export(ctx context.Context, q listing.Query) ([]domain.Specialist, error) {
	page, err := s.repo.List(ctx, q.All())
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Get returns a single specialist.
func (s *Service) Get(ctx context.Context, id string) (*domain.Specialist, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// SetVisibility shows or hides a specialist in the public directory.
func (s *Service) SetVisibility(ctx context.Context, id string, visible bool) error {
	if id == "" {
		return ErrNotFound
	}
	if err := s.repo.SetVisibility(ctx, id, visible); err != nil {
		return fmt.Errorf("set visibility: %w", err)
	}
	s.log.Info("visibility changed", "id", id, "visible", visible)
	return nil
}

// Delete removes a specialist from the directory.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete specialist: %w", err)
	}
	return nil
}

// CountVisible returns the size of the public directory.
func (s *Service) CountVisible(ctx context.Context) (int, error) {
	return s.repo.CountVisible(ctx)
}

// PublicSpecialist is the directory entry shown to visitors; the phone
// number stays internal.
type PublicSpecialist struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Specialty string `json:"specialty"`
	Region    string `json:"region"`
	City      string `json:"city"`
	Bio       string `json:"bio"`
	Website   string `json:"website"`
}

func toPublic(s domain.Specialist) PublicSpecialist {
	return PublicSpecialist{
		ID:        s.ID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
		Specialty: s.Specialty,
		Region:    s.Region,
		City:      s.City,
		Bio:       s.Bio,
		Website:   s.Website,
	}
}
