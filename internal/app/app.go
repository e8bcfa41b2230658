// Package app wires the Roblox client, page cache and search runner from the
// process configuration. Both binaries start from here.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/internal/config"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/cache"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/client"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/logging"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/ratelimit"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/roblox"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/search"
)

// App holds the long-lived components.
type App struct {
	Client *client.Client
	API    *roblox.API
	Cache  cache.Store
	Runner *search.Runner

	closers []func() error
}

// New builds the components. With REDIS_URL set the page cache is shared
// through Redis; otherwise it lives in process memory.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	httpClient, err := client.New(client.Config{
		UserAgent:   cfg.UserAgent,
		Timeout:     cfg.RequestTimeout,
		RateLimiter: ratelimit.NewTracker(logging.NewLogger("ratelimit")),
	})
	if err != nil {
		return nil, fmt.Errorf("create roblox client: %w", err)
	}

	a := &App{Client: httpClient}

	if cfg.RedisURL != "" {
		redisStore, err := cache.NewRedisStoreFromURL(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect page cache: %w", err)
		}
		a.Cache = redisStore
		a.closers = append(a.closers, redisStore.Close)
	} else {
		a.Cache = cache.NewMemoryStore()
	}

	apiCfg := roblox.DefaultConfig()
	apiCfg.Endpoints = cfg.Endpoints()
	apiCfg.Pagination.CacheTTL = cfg.CacheTTL
	apiCfg.Pagination.PageDelay = cfg.PageDelay

	a.API = roblox.NewAPI(httpClient, a.Cache, apiCfg)
	a.Runner = search.NewRunner(a.API, a.Cache, logging.NewLogger("search"))
	return a, nil
}

// Close releases the cache connection.
func (a *App) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}
