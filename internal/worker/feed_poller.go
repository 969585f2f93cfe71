package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ignite/assoc-admin/internal/pkg/logger"
	"github.com/ignite/assoc-admin/internal/service/publication"
)

// FeedImporter is the part of the publication service the poller uses.
type FeedImporter interface {
	Import(ctx context.Context, feedURL, importedBy string) (*publication.ImportResult, error)
}

// Locker serializes a poll cycle across replicas.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// FeedPollerConfig holds configuration for the feed poller
type FeedPollerConfig struct {
	URLs          []string
	PollInterval  time.Duration
	MaxConcurrent int
}

const feedPollLockKey = "publications:feed-poll"

// FeedPoller imports new entries from the configured publication feeds as
// drafts. Entries already imported are skipped by the service.
type FeedPoller struct {
	svc    FeedImporter
	locker Locker
	cfg    FeedPollerConfig
	log    *logger.Logger

	// Stats
	polls    int64
	imported int64
	errors   int64

	// Control
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewFeedPoller creates a poller. locker may be nil.
func NewFeedPoller(svc FeedImporter, locker Locker, cfg FeedPollerConfig) *FeedPoller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Hour
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 3
	}
	return &FeedPoller{svc: svc, locker: locker, cfg: cfg, log: logger.Named("feed-poller")}
}

// Start begins polling. It polls once immediately.
func (p *FeedPoller) Start(parent context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("feed poller already running")
	}
	p.running = true
	p.ctx, p.cancel = context.WithCancel(parent)
	p.mu.Unlock()

	p.log.Info("feed poller starting", "feeds", len(p.cfg.URLs), "interval", p.cfg.PollInterval.String())
	p.wg.Add(1)
	go p.loop()
	return nil
}

// Stop cancels polling and waits for the current cycle.
func (p *FeedPoller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
	polls, imported, errs := p.Stats()
	p.log.Info("feed poller stopped", "polls", polls, "imported", imported, "errors", errs)
}

// Stats returns poll cycles, drafts created and failed feed fetches.
func (p *FeedPoller) Stats() (polls, imported, errs int64) {
	return atomic.LoadInt64(&p.polls), atomic.LoadInt64(&p.imported), atomic.LoadInt64(&p.errors)
}

func (p *FeedPoller) loop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	p.runLocked(p.ctx)
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.runLocked(p.ctx)
		}
	}
}

func (p *FeedPoller) runLocked(ctx context.Context) {
	if p.locker == nil {
		p.PollOnce(ctx)
		return
	}
	err := p.locker.WithLock(ctx, feedPollLockKey, func(ctx context.Context) error {
		p.PollOnce(ctx)
		return nil
	})
	if err != nil {
		p.log.Debug("feed poll skipped", "reason", err.Error())
	}
}

// PollOnce imports every configured feed, a few at a time. A failing feed
// does not stop the others.
func (p *FeedPoller) PollOnce(ctx context.Context) {
	atomic.AddInt64(&p.polls, 1)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxConcurrent)
	for _, url := range p.cfg.URLs {
		g.Go(func() error {
			res, err := p.svc.Import(ctx, url, "feed-poller")
			if err != nil {
				atomic.AddInt64(&p.errors, 1)
				p.log.Warn("feed import failed", "url", url, "error", err)
				return nil
			}
			atomic.AddInt64(&p.imported, int64(len(res.Created)))
			if len(res.Created) > 0 {
				p.log.Info("feed imported", "url", url, "created", len(res.Created), "skipped", res.Skipped)
			}
			return nil
		})
	}
	_ = g.Wait()
}
