// Command alerts is the Vanguard match-notification daemon.
//
// Usage:
//
//	vanguard-alerts serve
//	vanguard-alerts sweep
//	TEAM_SUBSCRIPTIONS=9971,14875 vanguard-alerts sweep --dry-run
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ftcvanguard/vanguard-alerts/internal/api"
	"github.com/ftcvanguard/vanguard-alerts/internal/config"
	"github.com/ftcvanguard/vanguard-alerts/internal/db"
	"github.com/ftcvanguard/vanguard-alerts/internal/event"
	"github.com/ftcvanguard/vanguard-alerts/internal/ftcapi"
	"github.com/ftcvanguard/vanguard-alerts/internal/ledger"
	"github.com/ftcvanguard/vanguard-alerts/internal/push"
	"github.com/ftcvanguard/vanguard-alerts/internal/watch"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")
	slog.SetDefault(logger)

	root := &cobra.Command{
		Use:   "vanguard-alerts",
		Short: "Match queue alert daemon for subscribed FTC teams",
	}

	root.AddCommand(serveCmd())
	root.AddCommand(sweepCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// serve command
// --------------------------------------------------------------------------

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the polling loop and operational API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := validate(cfg); err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL must be set for serve")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			logger.Info("Connecting to database...")
			pool, err := db.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()
			logger.Info("Database connected",
				"min_conns", cfg.DBPoolMinConns,
				"max_conns", cfg.DBPoolMaxConns)

			store := ledger.NewPostgres(pool.Pool)
			supervisor, dispatcher := buildWatcher(cfg, store)

			go supervisor.Run(ctx)

			handler := api.NewHandler(cfg, pool, store, dispatcher, supervisor)
			router := api.NewRouter(handler, cfg)

			addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
			srv := &http.Server{
				Addr:         addr,
				Handler:      router,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			go func() {
				logger.Info("Starting Vanguard Alerts",
					"addr", addr,
					"environment", cfg.Environment,
					"teams", len(cfg.Teams))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("Server failed", "error", err)
					os.Exit(1)
				}
			}()

			<-ctx.Done()
			logger.Info("Shutting down...")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Shutdown error", "error", err)
			}
			logger.Info("Server stopped")
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// sweep command
// --------------------------------------------------------------------------

func sweepCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one roster sweep and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := validate(cfg); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			var store ledger.Store
			if cfg.DatabaseURL != "" && !dryRun {
				pool, err := db.New(ctx, cfg)
				if err != nil {
					return fmt.Errorf("connect database: %w", err)
				}
				defer pool.Close()
				store = ledger.NewPostgres(pool.Pool)
			} else {
				// No dedup history: every matching alert fires once this run.
				logger.Warn("Using in-memory ledger", "dry_run", dryRun)
				store = ledger.NewMemory()
			}

			supervisor, _ := buildWatcher(cfg, store)
			start := time.Now()
			result := supervisor.Sweep(ctx)
			logger.Info("Sweep finished", "duration", time.Since(start).Round(time.Millisecond), "summary", result.Summary())
			for _, e := range result.Errors {
				logger.Error("sweep error", "error", e)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Skip the ledger database; nothing is recorded")
	return cmd
}

// --------------------------------------------------------------------------
// Shared wiring
// --------------------------------------------------------------------------

func buildWatcher(cfg *config.Config, store ledger.Store) (*watch.Supervisor, *push.Dispatcher) {
	client := ftcapi.NewClient(cfg.FTCBaseURL, cfg.FTCUsername, cfg.FTCToken, cfg.UpstreamRPM, logger)
	resolver := event.NewResolver(client, cfg.Season)
	sender := push.NewNtfySender(cfg.NtfyBaseURL)
	dispatcher := push.NewDispatcher(store, sender, cfg.Topic, cfg.RetryCooldown, logger)
	supervisor := watch.New(resolver, client, dispatcher, cfg.Teams, cfg.PollInterval, cfg.ScheduleClickURL, logger)

	if cfg.Season == 0 {
		logger.Info("Season derived from clock — set SEASON to pin it",
			"season", resolver.Season(time.Now()))
	}
	return supervisor, dispatcher
}

func validate(cfg *config.Config) error {
	if cfg.FTCUsername == "" || cfg.FTCToken == "" {
		return fmt.Errorf("FTC_API_USERNAME and FTC_API_TOKEN are required")
	}
	if len(cfg.Teams) == 0 {
		return fmt.Errorf("TEAM_SUBSCRIPTIONS must list at least one team")
	}
	return nil
}
