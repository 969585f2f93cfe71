package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/assoc-admin/internal/app"
	"github.com/ignite/assoc-admin/internal/config"
	"github.com/ignite/assoc-admin/internal/worker"
)

// The worker runs the newsletter scheduler and the feed poller without the
// HTTP API, for deployments that keep background work off the web replicas.
func main() {
	log.Println("Starting background worker...")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required: an in-memory worker would never see scheduled newsletters")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	err = a.DB.PingContext(pingCtx)
	pingCancel()
	if err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Connected to database")

	scheduler := worker.NewNewsletterScheduler(a.Services.Newsletters, cfg.Scheduler.Interval())
	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	log.Printf("Newsletter scheduler started (every %s)", cfg.Scheduler.Interval())

	feeds := a.FeedPoller()
	if feeds != nil {
		if err := feeds.Start(ctx); err != nil {
			log.Fatalf("Failed to start feed poller: %v", err)
		}
		log.Printf("Feed poller started (%d feeds every %s)", len(cfg.Feed.URLs), cfg.Feed.PollInterval())
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sent, skipped, errs := scheduler.Stats()
				log.Printf("Worker heartbeat - sent=%d skipped=%d errors=%d", sent, skipped, errs)
				if feeds != nil {
					polls, imported, failed := feeds.Stats()
					log.Printf("Feed heartbeat - polls=%d imported=%d errors=%d", polls, imported, failed)
				}
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down worker...")
	scheduler.Stop()
	if feeds != nil {
		feeds.Stop()
	}
	cancel()
	log.Println("Worker stopped")
}
