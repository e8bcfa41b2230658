// Command richest-server serves leaderboard searches over HTTP and websocket.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/internal/api"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/internal/app"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/internal/config"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/internal/store"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/logging"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logging.Setup(cfg.Logging())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, cleanup, err := newHandler(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
		}
	}()

	log.Info().
		Str("addr", srv.Addr).
		Str("user_agent", cfg.UserAgent).
		Bool("redis_cache", cfg.RedisURL != "").
		Bool("snapshot_db", cfg.DatabaseURL != "").
		Msg("Starting richest server")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// newHandler builds the application and its router. cleanup releases the
// cache and database connections.
func newHandler(ctx context.Context, cfg *config.Config) (http.Handler, func(), error) {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	var snapshots store.Store = store.NewMemoryStore()
	closeSnapshots := func() error { return nil }
	if cfg.DatabaseURL != "" {
		db, err := store.Open(cfg.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, nil, err
		}
		snapshots = db
		closeSnapshots = db.Close
	}

	serverCfg := api.DefaultConfig()
	serverCfg.Defaults = cfg.SearchOptions()

	srv := api.NewServer(a.Runner, snapshots, serverCfg, logging.NewLogger("http"))

	cleanup := func() {
		if err := closeSnapshots(); err != nil {
			log.Warn().Err(err).Msg("Failed to close snapshot store")
		}
		if err := a.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close page cache")
		}
	}
	return srv.Router(), cleanup, nil
}
