package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/assoc-admin/internal/api"
	"github.com/ignite/assoc-admin/internal/app"
	"github.com/ignite/assoc-admin/internal/auth"
	"github.com/ignite/assoc-admin/internal/config"
	"github.com/ignite/assoc-admin/internal/live"
	"github.com/ignite/assoc-admin/internal/migrate"
	"github.com/ignite/assoc-admin/internal/worker"
)

var version = "dev"

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	if a.DB != nil && os.Getenv("AUTO_MIGRATE") == "true" {
		runner, err := migrate.NewRunner(a.DB)
		if err != nil {
			log.Fatalf("Migrations failed: %v", err)
		}
		applied, err := runner.Up(ctx)
		if err != nil {
			log.Fatalf("Migrations failed: %v", err)
		}
		log.Printf("Applied %d migrations", len(applied))
	}

	// Live table changes
	go a.Hub.Run(ctx)
	if a.DB != nil {
		go func() {
			if err := live.Listen(ctx, cfg.Database.URL, a.Hub); err != nil {
				log.Printf("Live updates disabled: %v", err)
			}
		}()
	}

	// Authentication
	var authManager *auth.Manager
	if cfg.Auth.Enabled {
		if cfg.Auth.GoogleClientID == "" || cfg.Auth.SessionSecret == "" {
			log.Fatal("auth enabled but GOOGLE_CLIENT_ID or SESSION_SECRET is missing")
		}
		var sessions auth.Store
		if a.Redis != nil {
			sessions = auth.NewRedisStore(a.Redis)
		} else {
			mem := auth.NewMemoryStore()
			go mem.Sweep(ctx, 15*time.Minute)
			sessions = mem
		}
		authManager = auth.NewManager(cfg.Auth, cfg.Server.PublicBaseURL, sessions)
		log.Printf("Google sign-in enabled (domain: %q)", cfg.Auth.AllowedDomain)
	} else {
		log.Println("WARNING: auth disabled, the admin API is open")
	}

	// Newsletter scheduler
	var scheduler *worker.NewsletterScheduler
	if cfg.Scheduler.Enabled {
		scheduler = worker.NewNewsletterScheduler(a.Services.Newsletters, cfg.Scheduler.Interval())
		if err := scheduler.Start(ctx); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	}

	feeds := a.FeedPoller()
	if feeds != nil {
		if err := feeds.Start(ctx); err != nil {
			log.Fatalf("Failed to start feed poller: %v", err)
		}
	}

	server := api.NewServer(a.Services, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		FunctionsToken: cfg.Functions.Token,
		Auth:           authManager,
		Events:         a.Hub,
		Health:         api.NewHealthChecker(a.DB, a.Redis, a.Files, version),
		PublicLimiter:  a.Limiter,
		TrustProxy:     cfg.Server.TrustProxy,
	})

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, cfg.Server.Port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	if scheduler != nil {
		scheduler.Stop()
	}
	if feeds != nil {
		feeds.Stop()
	}
	// Ends SSE streams and the listener so Shutdown does not wait on them.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
