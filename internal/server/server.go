// Package server provides the main server initialization and run logic.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bakchoddost/bakchoddost/internal/api"
	"github.com/bakchoddost/bakchoddost/internal/api/handlers"
	"github.com/bakchoddost/bakchoddost/internal/config"
	"github.com/bakchoddost/bakchoddost/internal/db"
	"github.com/bakchoddost/bakchoddost/internal/logger"
	"github.com/bakchoddost/bakchoddost/internal/logstream"
	"github.com/bakchoddost/bakchoddost/internal/metrics"
	"github.com/bakchoddost/bakchoddost/internal/queue"
	"github.com/bakchoddost/bakchoddost/internal/rbac"
	"github.com/bakchoddost/bakchoddost/internal/seed"
	"github.com/bakchoddost/bakchoddost/internal/store"
	"github.com/bakchoddost/bakchoddost/internal/worker"
	"github.com/valkey-io/valkey-go"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Config holds the server configuration options.
type Config struct {
	Port    int    // Port to run the server on (0 = use config default)
	Mode    string // Run mode: server, worker, or both
	Version string // Version string to report
	Seed    bool   // Insert the built-in templates when the store is empty
}

const (
	shutdownTimeout = 10 * time.Second
	statsInterval   = 15 * time.Second
)

// Setup loads configuration, initializes logging, opens and migrates the
// database, and loads RBAC policies. CLI commands that touch the database
// share it with Run.
func Setup() (*config.Config, *gorm.DB, error) {
	appCfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Init(appCfg.Log)

	// Propagate app log level to database if not explicitly set
	if appCfg.Database.LogLevel == "" {
		appCfg.Database.LogLevel = appCfg.Log.Level
	}

	database, err := db.New(appCfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("Database initialized", "driver", appCfg.Database.Driver)

	if err := db.Migrate(database); err != nil {
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := rbac.InitEnforcer(database, slog.Default()); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize rbac: %w", err)
	}
	return appCfg, database, nil
}

// Run starts the server with the given configuration and blocks until the context is canceled.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Version != "" {
		handlers.Version = cfg.Version
	}

	appCfg, database, err := Setup()
	if err != nil {
		return err
	}
	if cfg.Port != 0 {
		appCfg.Server.Port = cfg.Port
	}
	slog.Info("Starting Bakchoddost server", "version", handlers.Version, "mode", appCfg.Server.Mode)

	serverID, err := db.GetOrCreateServerID(database)
	if err != nil {
		return fmt.Errorf("failed to initialize server ID: %w", err)
	}
	slog.Info("Server ID initialized", "server_id", serverID)

	if err := db.CreateDefaultAdmin(database); err != nil {
		return fmt.Errorf("failed to create default admin user: %w", err)
	}

	templates := store.NewTemplateStore(database)
	if cfg.Seed {
		set, err := seed.Default()
		if err != nil {
			return fmt.Errorf("failed to load default seeds: %w", err)
		}
		if _, err := seed.Apply(ctx, templates, set, seed.ApplyOptions{}); err != nil {
			return fmt.Errorf("failed to seed templates: %w", err)
		}
	}

	jobQueue, err := queue.New(appCfg.Queue, database)
	if err != nil {
		return fmt.Errorf("failed to initialize job queue: %w", err)
	}
	defer jobQueue.Close()
	slog.Info("Job queue initialized", "type", appCfg.Queue.Type)

	valkeyClient, closeValkey, err := rateLimitClient(appCfg, jobQueue)
	if err != nil {
		return err
	}
	defer closeValkey()

	mode := cfg.Mode
	if mode == "" {
		mode = "both"
	}
	runServer := mode == "server" || mode == "both"
	runWorker := mode == "worker" || mode == "both"
	if !runServer && !runWorker {
		return fmt.Errorf("invalid mode %q: valid modes are server, worker, both", mode)
	}

	m := metrics.New()
	logs := progressStream(jobQueue)
	g, gctx := errgroup.WithContext(ctx)

	if runWorker {
		w := worker.New(database, jobQueue, templates, m, logs, appCfg.Backfill.BatchSize, slog.Default())
		g.Go(func() error {
			if err := w.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("worker: %w", err)
			}
			return nil
		})
	}

	if runServer {
		router, err := api.NewRouter(appCfg, api.Deps{
			DB:      database,
			Queue:   jobQueue,
			Metrics: m,
			Logs:    logs,
			Valkey:  valkeyClient,
		})
		if err != nil {
			return fmt.Errorf("failed to build router: %w", err)
		}

		addr := fmt.Sprintf(":%d", appCfg.Server.Port)
		srv := &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Go(func() error {
			slog.Info("Server listening", "address", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			slog.Info("Server stopped")
			return nil
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := m.UpdateDatabaseConnections(database); err != nil {
					slog.Debug("Failed to read database stats", "error", err)
				}
			}
		}
	})

	err = g.Wait()
	slog.Info("Bakchoddost exited")
	return err
}

// RunWithSignalHandling starts the server and handles OS signals for graceful shutdown.
func RunWithSignalHandling(cfg Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return Run(ctx, cfg)
}

// rateLimitClient returns the Valkey client for the distributed rate
// limiter, reusing the queue's connection when it has one.
func rateLimitClient(cfg *config.Config, q queue.Queue) (valkey.Client, func(), error) {
	if cfg.RateLimit.Backend != "valkey" {
		return nil, func() {}, nil
	}
	if vq, ok := q.(*queue.ValkeyQueue); ok {
		return vq.Client(), func() {}, nil
	}
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{cfg.Queue.ValkeyAddr}})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to Valkey for rate limiting: %w", err)
	}
	return client, client.Close, nil
}

// progressStream relays job progress over Valkey when the queue is shared
// between processes, and in memory otherwise.
func progressStream(q queue.Queue) logstream.Stream {
	if vq, ok := q.(*queue.ValkeyQueue); ok {
		return logstream.NewValkeyStream(vq.Client(), slog.Default())
	}
	return logstream.NewBroker()
}
