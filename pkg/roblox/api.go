package roblox

import (
	"context"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/cache"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/client"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultDetailBatchSize is the number of assets per catalog details request.
const DefaultDetailBatchSize = 80

// JSONClient is the transport the API needs; *client.Client implements it.
type JSONClient interface {
	GetJSON(ctx context.Context, url string, out any) error
	PostJSON(ctx context.Context, url string, body, out any) error
}

// Config holds the API configuration.
type Config struct {
	// Endpoints are the API base URLs.
	Endpoints Endpoints

	// Pagination configures the list endpoints (members, collectibles).
	Pagination pagination.Config

	// Retry applies to single requests (roles, catalog batches).
	Retry client.RetryConfig

	// DetailBatchSize is the default catalog details batch size.
	DetailBatchSize int
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		Endpoints:       DefaultEndpoints(),
		Pagination:      pagination.DefaultConfig(),
		Retry:           client.DefaultRetryConfig(),
		DetailBatchSize: DefaultDetailBatchSize,
	}
}

// API reads groups, inventories and catalog details.
type API struct {
	client JSONClient
	pages  *pagination.Fetcher
	config Config
	logger zerolog.Logger
}

// NewAPI creates an API on top of c. store caches list pages and may be nil.
func NewAPI(c JSONClient, store cache.Store, cfg Config) *API {
	if cfg.Endpoints == (Endpoints{}) {
		cfg.Endpoints = DefaultEndpoints()
	}
	if cfg.DetailBatchSize <= 0 {
		cfg.DetailBatchSize = DefaultDetailBatchSize
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = client.NoRetry()
	}

	return &API{
		client: c,
		pages:  pagination.New(c, store, cfg.Pagination),
		config: cfg,
		logger: log.With().Str("component", "roblox-api").Logger(),
	}
}

// Endpoints returns the configured base URLs.
func (a *API) Endpoints() Endpoints {
	return a.config.Endpoints
}
