package subscriber

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/pkg/logger"
)

// Service implements subscriber management.
type Service struct {
	repo Repository
	now  func() time.Time
	log  *logger.Logger
}

// NewService creates a subscriber service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now, log: logger.Named("subscriber")}
}

// List returns subscribers matching q.
func (s *Service) List(ctx context.Context, q listing.Query) (listing.Page[domain.Subscriber], error) {
	return s.repo.List(ctx, q.Normalize())
}

// Export returns every subscriber matching q's filters.
func (s *Service) Export(ctx context.Context, q listing.Query) ([]domain.Subscriber, error) {
	page, err := s.repo.List(ctx, q.All())
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Delete removes exactly one subscriber.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	return nil
}

// SubscribeInput holds the public subscription form.
type SubscribeInput struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Subscribe adds or reactivates an address.
func (s *Service) Subscribe(ctx context.Context, in SubscribeInput) (*domain.Subscriber, bool, error) {
	email, err := NormalizeEmail(in.Email)
	if err != nil {
		return nil, false, err
	}
	sub := &domain.Subscriber{
		ID:               uuid.New().String(),
		Email:            email,
		FirstName:        strings.TrimSpace(in.FirstName),
		LastName:         strings.TrimSpace(in.LastName),
		IsActive:         true,
		UnsubscribeToken: uuid.New().String(),
		SubscribedAt:     s.now().UTC(),
	}
	stored, created, err := s.repo.Upsert(ctx, sub)
	if err != nil {
		return nil, false, fmt.Errorf("subscribe: %w", err)
	}
	s.log.Info("subscribed", "email", email, "created", created)
	return stored, created, nil
}

// Unsubscribe deactivates the subscriber owning token.
func (s *Service) Unsubscribe(ctx context.Context, token string) (*domain.Subscriber, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNotFound
	}
	sub, err := s.repo.Unsubscribe(ctx, token, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.log.Info("unsubscribed", "email", sub.Email)
	return sub, nil
}

// Count returns the total and active audience sizes.
func (s *Service) Count(ctx context.Context) (total, active int, err error) {
	if total, err = s.repo.Count(ctx, false); err != nil {
		return 0, 0, err
	}
	if active, err = s.repo.Count(ctx, true); err != nil {
		return 0, 0, err
	}
	return total, active, nil
}

// Active returns the recipients of a newsletter send.
func (s *Service) Active(ctx context.Context) ([]domain.Subscriber, error) {
	return s.repo.Active(ctx)
}

// NormalizeEmail validates a bare address and lower-cases it.
func NormalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}
