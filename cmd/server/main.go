// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/ctftracker/internal/api"
	"github.com/tomtom215/ctftracker/internal/commands"
	"github.com/tomtom215/ctftracker/internal/config"
	"github.com/tomtom215/ctftracker/internal/credentials"
	"github.com/tomtom215/ctftracker/internal/database"
	"github.com/tomtom215/ctftracker/internal/logging"
	"github.com/tomtom215/ctftracker/internal/notify"
	"github.com/tomtom215/ctftracker/internal/provider"
	"github.com/tomtom215/ctftracker/internal/provider/htb"
	"github.com/tomtom215/ctftracker/internal/reconcile"
	"github.com/tomtom215/ctftracker/internal/scheduler"
	"github.com/tomtom215/ctftracker/internal/supervisor"
	"github.com/tomtom215/ctftracker/internal/supervisor/services"
	ws "github.com/tomtom215/ctftracker/internal/websocket"
)

// startupTimeout bounds loading and seeding competitions before the tree starts.
const startupTimeout = 2 * time.Minute

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Bool("htb_enabled", cfg.HTB.Enabled).
		Bool("discord_enabled", cfg.Discord.Enabled).
		Msg("Starting ctftracker with supervisor tree")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridges zerolog to slog for sutureslog
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	wsHub := ws.NewHub()
	sender := notify.NewDiscordSender(&cfg.Discord)
	notifier := notify.New(db, sender, wsHub)
	rec := reconcile.New(db)
	registry := provider.NewRegistry()

	cmds := commands.New(db, registry, rec, commands.CTFdFactory(cfg.CTFd.Timeout))

	startCtx, startCancel := context.WithTimeout(ctx, startupTimeout)
	loaded, err := cmds.LoadActive(startCtx)
	if err != nil {
		startCancel()
		logging.Fatal().Err(err).Msg("Failed to load active competitions")
	}
	seeded := cmds.Seed(startCtx, cfg.Competitions)
	startCancel()
	logging.Info().Int("loaded", loaded).Int("seeded", seeded).Msg("Competitions registered")

	var htbTarget *provider.Target
	if cfg.HTB.Enabled {
		cache, err := credentials.Open(&cfg.Credentials)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open credential cache")
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing credential cache")
			}
		}()

		htbTarget = &provider.Target{
			ID:        provider.HTBTargetID,
			Name:      "HackTheBox",
			ChannelID: cfg.HTB.ChannelID,
			Provider:  provider.WithUserCache(provider.NewBreaker(htb.New(&cfg.HTB, cache), "htb-api"), 0, provider.DefaultUserCacheTTL),
		}
		logging.Info().Int64("team_id", cfg.HTB.TeamID).Msg("HackTheBox tracking enabled")
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Data layer
	tree.AddDataService(services.NewCheckpointService(db, services.DefaultCheckpointInterval))

	// Polling layer: one service per loop so a crashing loop restarts alone
	loops := scheduler.Loops(scheduler.Deps{
		Reconciler: rec,
		Announcer:  notifier,
		Scores:     db,
		Registry:   registry,
		HTB:        htbTarget,
	}, scheduler.Intervals{
		Solve:   cfg.Scheduler.SolveInterval,
		Refresh: cfg.Scheduler.RefreshInterval,
	})
	for _, loop := range loops {
		tree.AddPollingService(loop)
	}
	logging.Info().Int("loops", len(loops)).Msg("Scheduler loops added to supervisor tree")

	// API layer
	handler := api.NewHandler(db, registry, wsHub, cfg.Security.CORSOrigins)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.NewChiMiddlewareConfig(cfg.Security)))
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}
	tree.AddAPIService(services.NewWebSocketHubService(wsHub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	// === START SUPERVISOR TREE ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
