package newsletter

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/mailer"
	"github.com/ignite/assoc-admin/internal/pkg/distlock"
	"github.com/ignite/assoc-admin/internal/pkg/logger"
)

// Options tunes delivery. Zero values pick the defaults.
type Options struct {
	// BaseURL prefixes unsubscribe links.
	BaseURL string
	// Concurrency bounds in-flight deliveries.
	Concurrency int
}

// Service implements newsletter logic.
type Service struct {
	repo       Repository
	recipients Recipients
	sender     Sender
	locker     Locker
	renderer   *Renderer
	opts       Options
	// inflight holds the ids of sends running in this process.
	inflight sync.Map
	now      func() time.Time
	log      *logger.Logger
}

// NewService creates a newsletter service. locker may be nil for a single
// process deployment.
func NewService(repo Repository, recipients Recipients, sender Sender, locker Locker, opts Options) *Service {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:8080"
	}
	return &Service{
		repo:       repo,
		recipients: recipients,
		sender:     sender,
		locker:     locker,
		renderer:   NewRenderer(),
		opts:       opts,
		now:        time.Now,
		log:        logger.Named("newsletter"),
	}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// List returns newsletters matching q.
func (s *Service) List(ctx context.Context, q listing.Query) (listing.Page[domain.Newsletter], error) {
	return s.repo.List(ctx, q.Normalize())
}

// Get returns a single newsletter.
func (s *Service) Get(ctx context.Context, id string) (*domain.Newsletter, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// CreateInput holds the fields for creating a newsletter.
type CreateInput struct {
	Title     string `json:"title"`
	Subject   string `json:"subject"`
	Content   string `json:"content"`
	CreatedBy string `json:"-"`
}

// Create validates and persists a new draft.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Newsletter, error) {
	title := strings.TrimSpace(in.Title)
	subject := strings.TrimSpace(in.Subject)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if subject == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrValidation)
	}
	if _, err := s.renderer.Compile(subject, in.Content); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	n := &domain.Newsletter{
		ID:        uuid.New().String(),
		Title:     title,
		Subject:   subject,
		Content:   in.Content,
		Status:    domain.NewsletterDraft,
		CreatedBy: in.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create newsletter: %w", err)
	}
	return n, nil
}

// Update edits a draft.
func (s *Service) Update(ctx context.Context, id string, u UpdateFields) error {
	n, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !n.IsEditable() {
		return fmt.Errorf("%w: only drafts can be edited", ErrInvalidTransition)
	}
	if u.Title != nil {
		t := strings.TrimSpace(*u.Title)
		if t == "" {
			return fmt.Errorf("%w: title is required", ErrValidation)
		}
		u.Title = &t
		n.Title = t
	}
	if u.Subject != nil {
		sub := strings.TrimSpace(*u.Subject)
		if sub == "" {
			return fmt.Errorf("%w: subject is required", ErrValidation)
		}
		u.Subject = &sub
		n.Subject = sub
	}
	if u.Content != nil {
		n.Content = *u.Content
	}
	if _, err := s.renderer.Compile(n.Subject, n.Content); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, u)
}

// Delete removes a newsletter that was never sent.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

// Schedule queues a newsletter for delivery at a future time.
func (s *Service) Schedule(ctx context.Context, id string, at time.Time) error {
	if !at.After(s.now()) {
		return fmt.Errorf("%w: scheduled time must be in the future", ErrValidation)
	}
	n, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if n.Status == domain.NewsletterSent {
		return ErrAlreadySent
	}
	if err := s.repo.Schedule(ctx, id, at.UTC()); err != nil {
		return fmt.Errorf("schedule newsletter: %w", err)
	}
	s.log.Info("newsletter scheduled", "id", id, "at", at.UTC().Format(time.RFC3339))
	return nil
}

// Unschedule returns a scheduled newsletter to draft.
func (s *Service) Unschedule(ctx context.Context, id string) error {
	n, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if n.Status != domain.NewsletterScheduled {
		return fmt.Errorf("%w: newsletter is %s", ErrInvalidTransition, n.Status)
	}
	return s.repo.Unschedule(ctx, id)
}

// Due returns scheduled newsletters ready to go.
func (s *Service) Due(ctx context.Context) ([]domain.Newsletter, error) {
	return s.repo.Due(ctx, s.now().UTC())
}

// CountByStatus groups newsletters by status.
func (s *Service) CountByStatus(ctx context.Context) (map[domain.NewsletterStatus]int, error) {
	return s.repo.CountByStatus(ctx)
}

// Preview renders a newsletter for a sample recipient.
func (s *Service) Preview(ctx context.Context, id string) (subject, body string, err error) {
	n, err := s.Get(ctx, id)
	if err != nil {
		return "", "", err
	}
	c, err := s.renderer.Compile(n.Subject, n.Content)
	if err != nil {
		return "", "", err
	}
	return c.Render(Bindings(sampleRecipient("preview@example.org"), s.unsubscribeURL("preview")))
}

// SendOptions selects a real or a test send.
type SendOptions struct {
	TestMode  bool
	TestEmail string
}

// Send delivers a newsletter. A real send fans out to every active
// subscriber and marks the newsletter sent; a test send delivers one
// "[TEST]" copy to TestEmail and changes nothing.
func (s *Service) Send(ctx context.Context, id string, opts SendOptions) (*domain.SendReport, error) {
	if opts.TestMode {
		return s.sendTest(ctx, id, opts.TestEmail)
	}

	n, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.Status == domain.NewsletterSent {
		return nil, ErrAlreadySent
	}

	var report *domain.SendReport
	run := func(ctx context.Context) error {
		r, err := s.deliver(ctx, id)
		report = r
		return err
	}
	if _, busy := s.inflight.LoadOrStore(id, struct{}{}); busy {
		return nil, ErrSendInProgress
	}
	defer s.inflight.Delete(id)

	if s.locker == nil {
		err = run(ctx)
	} else {
		err = s.locker.WithLock(ctx, LockKey(id), run)
		if errors.Is(err, distlock.ErrNotAcquired) {
			err = ErrSendInProgress
		}
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

// LockKey names the distributed lock guarding a newsletter's send.
func LockKey(id string) string {
	return "newsletter:send:" + id
}

func (s *Service) deliver(ctx context.Context, id string) (*domain.SendReport, error) {
	// Re-read under the lock: another process may have finished meanwhile.
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.Status == domain.NewsletterSent {
		return nil, ErrAlreadySent
	}
	compiled, err := s.renderer.Compile(n.Subject, n.Content)
	if err != nil {
		return nil, err
	}
	subs, err := s.recipients.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("load recipients: %w", err)
	}
	if len(subs) == 0 {
		return nil, ErrNoRecipients
	}

	// Once fan-out begins it runs to completion: a caller going away must
	// not turn the remaining recipients into failures of a sent issue.
	ctx = context.WithoutCancel(ctx)

	start := s.now()
	var sent, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for _, sub := range subs {
		g.Go(func() error {
			if err := s.deliverOne(gctx, n, compiled, sub); err != nil {
				failed.Add(1)
				s.log.Warn("delivery failed", "newsletter_id", n.ID, "recipient", sub.Email, "error", err)
				return nil
			}
			sent.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	report := &domain.SendReport{NewsletterID: id, Sent: int(sent.Load()), Failed: int(failed.Load())}

	if err := s.repo.MarkSent(ctx, id, s.now().UTC(), report.Sent+report.Failed, report.Failed); err != nil {
		return report, fmt.Errorf("mark sent: %w", err)
	}
	s.log.Info("newsletter sent", "id", id, "sent", report.Sent, "failed", report.Failed,
		"duration", s.now().Sub(start).String())
	return report, nil
}

func (s *Service) deliverOne(ctx context.Context, n *domain.Newsletter, c *Compiled, sub domain.Subscriber) error {
	unsub := s.unsubscribeURL(sub.UnsubscribeToken)
	subject, body, err := c.Render(Bindings(sub, unsub))
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, mailer.Message{
		To:      sub.Email,
		ToName:  strings.TrimSpace(sub.FirstName + " " + sub.LastName),
		Subject: subject,
		HTML:    body,
		Headers: map[string]string{
			"List-Unsubscribe":      "<" + unsub + ">",
			"List-Unsubscribe-Post": "List-Unsubscribe=One-Click",
		},
		Tags: map[string]string{"newsletter_id": n.ID},
	})
}

func (s *Service) sendTest(ctx context.Context, id, to string) (*domain.SendReport, error) {
	to = strings.TrimSpace(to)
	addr, err := mail.ParseAddress(to)
	if to == "" || err != nil {
		return nil, fmt.Errorf("%w: a valid test email is required", ErrValidation)
	}
	n, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := s.renderer.Compile(n.Subject, n.Content)
	if err != nil {
		return nil, err
	}
	subject, body, err := c.Render(Bindings(sampleRecipient(addr.Address), s.unsubscribeURL("test")))
	if err != nil {
		return nil, err
	}
	err = s.sender.Send(ctx, mailer.Message{
		To:      addr.Address,
		Subject: "[TEST] " + subject,
		HTML:    body,
		Tags:    map[string]string{"newsletter_id": n.ID, "test": "true"},
	})
	if err != nil {
		return nil, fmt.Errorf("send test: %w", err)
	}
	s.log.Info("test newsletter sent", "id", id, "recipient", addr.Address)
	return &domain.SendReport{NewsletterID: id, TestMode: true, Sent: 1}, nil
}

func (s *Service) unsubscribeURL(token string) string {
	return strings.TrimRight(s.opts.BaseURL, "/") + "/api/public/unsubscribe?token=" + url.QueryEscape(token)
}

func sampleRecipient(email string) domain.Subscriber {
	return domain.Subscriber{FirstName: "Test", LastName: "Recipient", Email: email}
}
