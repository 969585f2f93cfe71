package member

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

// DefaultCurrency applies when a payment names none.
const DefaultCurrency = "EUR"

// Service implements membership directory logic.
type Service struct {
	repo Repository
	now  func() time.Time
	log  *logger.Logger
}

// NewService creates a member service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now, log: logger.Named("member")}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// List returns directory rows matching q.
func (s *Service) List(ctx context.Context, q listing.Query) (listing.Page[domain.Member], error) {
	return s.repo.List(ctx, q.Normalize())
}

// Export returns every directory row matching q's filters, unpaginated.
func (s *Service) Export(ctx context.Context, q listing.Query) ([]domain.Member, error) {
	page, err := s.repo.List(ctx, q.All())
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Get returns a single member.
func (s *Service) Get(ctx context.Context, id string) (*domain.Member, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// Payments lists a member's payments.
func (s *Service) Payments(ctx context.Context, memberID string) ([]domain.Payment, error) {
	if _, err := s.Get(ctx, memberID); err != nil {
		return nil, err
	}
	return s.repo.Payments(ctx, memberID)
}

// PaymentInput holds the fields for recording a payment.
type PaymentInput struct {
	AmountCents int64      `json:"amount_cents"`
	Currency    string     `json:"currency"`
	Method      string     `json:"method"`
	Reference   string     `json:"reference"`
	PaidAt      *time.Time `json:"paid_at"`
}

// RecordPayment stores a payment and renews the membership by one year.
func (s *Service) RecordPayment(ctx context.Context, memberID string, in PaymentInput) (*domain.Payment, time.Time, error) {
	if memberID == "" {
		return nil, time.Time{}, ErrNotFound
	}
	if in.AmountCents <= 0 {
		return nil, time.Time{}, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	now := s.now().UTC()
	paidAt := now
	if in.PaidAt != nil {
		if in.PaidAt.After(now) {
			return nil, time.Time{}, fmt.Errorf("%w: payment date is in the future", ErrValidation)
		}
		paidAt = in.PaidAt.UTC()
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	if len(currency) != 3 {
		return nil, time.Time{}, fmt.Errorf("%w: currency must be a 3-letter code", ErrValidation)
	}

	p := &domain.Payment{
		ID:          uuid.New().String(),
		MemberID:    memberID,
		AmountCents: in.AmountCents,
		Currency:    currency,
		Method:      strings.TrimSpace(in.Method),
		Reference:   strings.TrimSpace(in.Reference),
		PaidAt:      paidAt,
	}
	expiry, err := s.repo.RecordPayment(ctx, p)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("record payment: %w", err)
	}
	s.log.Info("membership renewed", "member_id", memberID, "amount_cents", p.AmountCents, "expiry", expiry.Format("2006-01-02"))
	return p, expiry, nil
}

// Stats aggregates the directory for the current calendar year.
func (s *Service) Stats(ctx context.Context) (domain.MemberStats, error) {
	now := s.now().UTC()
	return s.repo.Stats(ctx, time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC))
}
