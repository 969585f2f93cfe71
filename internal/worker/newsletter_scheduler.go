package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/pkg/logger"
	"github.com/ignite/assoc-admin/internal/service/newsletter"
)

// =============================================================================
// NEWSLETTER SCHEDULER WORKER
// =============================================================================
// Polls for newsletters with status='scheduled' whose scheduled_at has
// arrived and sends them. Every replica may run a scheduler: the send itself
// takes the per-newsletter distributed lock, so a newsletter picked up by two
// replicas is delivered once and the loser sees ErrSendInProgress.

// DefaultSchedulerPollInterval is how often to check for due newsletters.
const DefaultSchedulerPollInterval = 60 * time.Second

// NewsletterSender is the part of the newsletter service the scheduler uses.
type NewsletterSender interface {
	Due(ctx context.Context) ([]domain.Newsletter, error)
	Send(ctx context.Context, id string, opts newsletter.SendOptions) (*domain.SendReport, error)
}

// NewsletterScheduler sends scheduled newsletters when they fall due.
type NewsletterScheduler struct {
	svc          NewsletterSender
	pollInterval time.Duration
	log          *logger.Logger

	// Stats
	sent    int64
	skipped int64
	errors  int64

	// Control
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.RWMutex
}

// NewNewsletterScheduler creates a scheduler. interval <= 0 uses the default.
func NewNewsletterScheduler(svc NewsletterSender, interval time.Duration) *NewsletterScheduler {
	if interval <= 0 {
		interval = DefaultSchedulerPollInterval
	}
	return &NewsletterScheduler{svc: svc, pollInterval: interval, log: logger.Named("scheduler")}
}

// Start begins the polling loop. It runs until Stop or until parent is done.
func (s *NewsletterScheduler) Start(parent context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(parent)
	s.mu.Unlock()

	s.log.Info("newsletter scheduler starting", "interval", s.pollInterval.String())

	s.wg.Add(1)
	go s.loop()
	return nil
}

// Stop cancels the loop and waits for an in-flight send to finish.
func (s *NewsletterScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	sent, skipped, errs := s.Stats()
	s.log.Info("newsletter scheduler stopped", "sent", sent, "skipped", skipped, "errors", errs)
}

// Stats returns how many newsletters were sent, skipped and failed.
func (s *NewsletterScheduler) Stats() (sent, skipped, errs int64) {
	return atomic.LoadInt64(&s.sent), atomic.LoadInt64(&s.skipped), atomic.LoadInt64(&s.errors)
}

func (s *NewsletterScheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	s.RunOnce(s.ctx)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(s.ctx)
		}
	}
}

// RunOnce sends every newsletter that is due now.
func (s *NewsletterScheduler) RunOnce(ctx context.Context) {
	due, err := s.svc.Due(ctx)
	if err != nil {
		atomic.AddInt64(&s.errors, 1)
		s.log.Error("load due newsletters", "error", err)
		return
	}
	for _, n := range due {
		if ctx.Err() != nil {
			return
		}
		report, err := s.svc.Send(ctx, n.ID, newsletter.SendOptions{})
		switch {
		case err == nil:
			atomic.AddInt64(&s.sent, 1)
			s.log.Info("scheduled newsletter sent", "id", n.ID, "sent", report.Sent, "failed", report.Failed)
		case errors.Is(err, newsletter.ErrSendInProgress), errors.Is(err, newsletter.ErrAlreadySent):
			atomic.AddInt64(&s.skipped, 1)
			s.log.Debug("scheduled newsletter skipped", "id", n.ID, "reason", err.Error())
		default:
			atomic.AddInt64(&s.errors, 1)
			s.log.Error("scheduled newsletter failed", "id", n.ID, "error", err)
		}
	}
}
