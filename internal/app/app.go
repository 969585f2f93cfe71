// Package app builds the shared clients and services from configuration.
// Each client is created once here and injected everywhere else.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/assoc-admin/internal/api"
	"github.com/ignite/assoc-admin/internal/config"
	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/feed"
	"github.com/ignite/assoc-admin/internal/live"
	"github.com/ignite/assoc-admin/internal/mailer"
	"github.com/ignite/assoc-admin/internal/pkg/distlock"
	"github.com/ignite/assoc-admin/internal/pkg/httpretry"
	"github.com/ignite/assoc-admin/internal/pkg/logger"
	"github.com/ignite/assoc-admin/internal/pkg/ratelimit"
	"github.com/ignite/assoc-admin/internal/repository/memory"
	"github.com/ignite/assoc-admin/internal/repository/postgres"
	"github.com/ignite/assoc-admin/internal/service/application"
	"github.com/ignite/assoc-admin/internal/service/dashboard"
	"github.com/ignite/assoc-admin/internal/service/member"
	"github.com/ignite/assoc-admin/internal/service/newsletter"
	"github.com/ignite/assoc-admin/internal/service/publication"
	"github.com/ignite/assoc-admin/internal/service/specialist"
	"github.com/ignite/assoc-admin/internal/service/subscriber"
	"github.com/ignite/assoc-admin/internal/storage"
	"github.com/ignite/assoc-admin/internal/worker"
)

// App holds the process-wide clients and services.
type App struct {
	Config   *config.Config
	DB       *sql.DB       // nil in memory mode
	Redis    *redis.Client // nil without REDIS_URL
	Files    storage.Store
	Mailer   mailer.Sender
	Hub      *live.Hub
	Locker   *distlock.Factory // nil in memory mode
	Limiter  ratelimit.Limiter
	Services api.Services
}

type repos struct {
	applications application.Repository
	members      member.Repository
	specialists  specialist.Repository
	subscribers  interface {
		subscriber.Repository
		newsletter.Recipients
	}
	newsletters  newsletter.Repository
	publications publication.Repository
}

// Build connects to the configured backends. Without a database URL the
// repositories are in-memory, which is meant for local development only.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.Redact())
	log := logger.Named("app")

	a := &App{Config: cfg, Hub: live.NewHub()}

	var r repos
	if cfg.Database.URL != "" {
		db, err := postgres.Open(cfg.Database.URL, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err != nil {
			return nil, err
		}
		a.DB = db
		r = repos{
			applications: postgres.NewApplicationRepo(db),
			members:      postgres.NewMemberRepo(db),
			specialists:  postgres.NewSpecialistRepo(db),
			subscribers:  postgres.NewSubscriberRepo(db),
			newsletters:  postgres.NewNewsletterRepo(db),
			publications: postgres.NewPublicationRepo(db),
		}
	} else {
		log.Warn("DATABASE_URL not set, using in-memory repositories")
		store := memory.NewStore().OnChange(func(ev domain.ChangeEvent) { a.Hub.Publish(ev) })
		r = repos{
			applications: store.Applications(),
			members:      store.Members(),
			specialists:  store.Specialists(),
			subscribers:  store.Subscribers(),
			newsletters:  store.Newsletters(),
			publications: store.Publications(),
		}
	}

	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		a.Redis = redis.NewClient(opts)
	}

	files, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("storage: %w", err)
	}
	a.Files = files

	sender, err := mailer.New(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("mailer: %w", err)
	}
	a.Mailer = sender

	// A nil Locker means sends are only serialized within this process.
	var locker newsletter.Locker
	if a.Redis != nil || a.DB != nil {
		a.Locker = distlock.NewFactory(a.Redis, a.DB, cfg.Scheduler.LockTTL())
		locker = a.Locker
	}

	if a.Redis != nil {
		a.Limiter = ratelimit.NewRedisLimiter(a.Redis, cfg.Server.PublicRateLimit)
	} else {
		a.Limiter = ratelimit.NewMemoryLimiter(cfg.Server.PublicRateLimit)
	}

	fetcher := feed.NewFetcher(httpretry.NewRetryClient(
		&http.Client{Timeout: cfg.Feed.Timeout()},
		httpretry.Options{MaxRetries: cfg.Feed.MaxRetries, UserAgent: "assoc-admin feed importer"},
	))

	svc := api.Services{
		Applications: application.NewService(r.applications),
		Members:      member.NewService(r.members),
		Specialists:  specialist.NewService(r.specialists),
		Subscribers:  subscriber.NewService(r.subscribers),
		Newsletters: newsletter.NewService(r.newsletters, r.subscribers, sender, locker, newsletter.Options{
			BaseURL:     cfg.Server.PublicBaseURL,
			Concurrency: cfg.Mailer.Concurrency,
		}),
		Publications: publication.NewService(r.publications, files, fetcher),
	}
	svc.Dashboard = dashboard.NewService(dashboard.Sources{
		Applications: svc.Applications,
		Members:      svc.Members,
		Specialists:  svc.Specialists,
		Subscribers:  svc.Subscribers,
		Newsletters:  svc.Newsletters,
		Publications: svc.Publications,
	})
	a.Services = svc
	return a, nil
}

// FeedPoller returns a poller for the configured feed URLs, or nil when
// none are configured.
func (a *App) FeedPoller() *worker.FeedPoller {
	if len(a.Config.Feed.URLs) == 0 {
		return nil
	}
	var locker worker.Locker
	if a.Locker != nil {
		locker = a.Locker
	}
	return worker.NewFeedPoller(a.Services.Publications, locker, worker.FeedPollerConfig{
		URLs:          a.Config.Feed.URLs,
		PollInterval:  a.Config.Feed.PollInterval(),
		MaxConcurrent: a.Config.Feed.MaxConcurrent,
	})
}

// Close releases the database and Redis connections.
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}
