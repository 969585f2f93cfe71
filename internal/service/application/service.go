package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/pkg/logger"
)

// Service implements application review. All public methods are safe for
// concurrent use if the underlying repository is concurrency-safe.
type Service struct {
	repo Repository
	now  func() time.Time
	log  *logger.Logger
}

// NewService creates an application service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now, log: logger.Named("application")}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Approval reports the directory row created by an approval.
type Approval struct {
	Kind          domain.ApplicationKind `json:"kind"`
	ApplicationID string                 `json:"application_id"`
	DirectoryID   string                 `json:"directory_id"`
}

// ListMembership returns membership applications matching q.
func (s *Service) ListMembership(ctx context.Context, q listing.Query) (listing.Page[domain.MembershipApplication], error) {
	return s.repo.ListMembership(ctx, q.Normalize())
}

// ListSpecialist returns specialist applications matching q.
func (s *Service) ListSpecialist(ctx context.Context, q listing.Query) (listing.Page[domain.SpecialistApplication], error) {
	return s.repo.ListSpecialist(ctx, q.Normalize())
}

// GetMembership returns a single membership application.
func (s *Service) GetMembership(ctx context.Context, id string) (*domain.MembershipApplication, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return s.repo.GetMembership(ctx, id)
}

// GetSpecialist returns a single specialist application.
func (s *Service) GetSpecialist(ctx context.Context, id string) (*domain.SpecialistApplication, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return s.repo.GetSpecialist(ctx, id)
}

// Approve approves a pending application and creates its directory entry.
func (s *Service) Approve(ctx context.Context, kind domain.ApplicationKind, id, reviewer string) (*Approval, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	if id == "" {
		return nil, ErrNotFound
	}
	r := Review{Reviewer: reviewer, At: s.now().UTC(), DirectoryID: uuid.New().String()}

	var directoryID string
	switch kind {
	case domain.KindMembership:
		m, err := s.repo.ApproveMembership(ctx, id, r)
		if err != nil {
			return nil, fmt.Errorf("approve membership application: %w", err)
		}
		directoryID = m.ID
	case domain.KindSpecialist:
		sp, err := s.repo.ApproveSpecialist(ctx, id, r)
		if err != nil {
			return nil, fmt.Errorf("approve specialist application: %w", err)
		}
		directoryID = sp.ID
	}

	s.log.Info("application approved", "kind", kind, "id", id, "directory_id", directoryID, "reviewer", reviewer)
	return &Approval{Kind: kind, ApplicationID: id, DirectoryID: directoryID}, nil
}

// Reject rejects a pending application. The reason is optional.
func (s *Service) Reject(ctx context.Context, kind domain.ApplicationKind, id, reviewer, reason string) error {
	if !kind.Valid() {
		return ErrInvalidKind
	}
	if id == "" {
		return ErrNotFound
	}
	r := Review{Reviewer: reviewer, Reason: strings.TrimSpace(reason), At: s.now().UTC()}
	if err := s.repo.Reject(ctx, kind, id, r); err != nil {
		return fmt.Errorf("reject %s application: %w", kind, err)
	}
	s.log.Info("application rejected", "kind", kind, "id", id, "reviewer", reviewer)
	return nil
}

// Delete removes an application.
func (s *Service) Delete(ctx context.Context, kind domain.ApplicationKind, id string) error {
	if !kind.Valid() {
		return ErrInvalidKind
	}
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return fmt.Errorf("delete %s application: %w", kind, err)
	}
	return nil
}

// Counts returns per-status totals for one kind.
func (s *Service) Counts(ctx context.Context, kind domain.ApplicationKind) (domain.ApplicationCounts, error) {
	if !kind.Valid() {
		return domain.ApplicationCounts{}, ErrInvalidKind
	}
	return s.repo.Counts(ctx, kind)
}
