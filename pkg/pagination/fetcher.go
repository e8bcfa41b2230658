package pagination

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/cache"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/client"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// JSONFetcher is the single-page request the fetcher needs; *client.Client
// implements it.
type JSONFetcher interface {
	GetJSON(ctx context.Context, url string, out any) error
}

// Config holds fetcher configuration.
type Config struct {
	// PageRetry is applied to each page request.
	PageRetry client.RetryConfig

	// CacheTTL is how long a fetched page stays in the cache store.
	CacheTTL time.Duration

	// PageDelay is slept between consecutive page requests (0 = none).
	PageDelay time.Duration

	// MaxPages stops a collection after this many pages (0 = unlimited).
	MaxPages int
}

// DefaultConfig returns the default fetcher configuration.
func DefaultConfig() Config {
	return Config{
		PageRetry: client.DefaultRetryConfig(),
		CacheTTL:  10 * time.Minute,
	}
}

// Request describes one paginated collection.
type Request struct {
	// Scope is the cache scope for the pages (usually the group id).
	Scope string

	// URL builds the request URL for a cursor; the first page uses "".
	URL func(cursor string) string
}

// Fetcher accumulates every page of a cursor-paginated collection.
type Fetcher struct {
	fetcher JSONFetcher
	store   cache.Store
	config  Config
	logger  zerolog.Logger
}

// page is the envelope shared by Roblox list endpoints.
type page struct {
	Data           []json.RawMessage `json:"data"`
	NextPageCursor *string           `json:"nextPageCursor"`
	NextCursor     *string           `json:"nextCursor"`
}

func (p page) next() string {
	if p.NextPageCursor != nil && *p.NextPageCursor != "" {
		return *p.NextPageCursor
	}
	if p.NextCursor != nil {
		return *p.NextCursor
	}
	return ""
}

// New creates a fetcher. store may be nil to disable page caching.
func New(fetcher JSONFetcher, store cache.Store, config Config) *Fetcher {
	if config.PageRetry.MaxAttempts <= 0 {
		config.PageRetry = client.NoRetry()
	}
	return &Fetcher{
		fetcher: fetcher,
		store:   store,
		config:  config,
		logger:  log.With().Str("component", "pagination").Logger(),
	}
}

// FetchAll requests pages until the cursor runs out and returns every data
// record in page order. A cursor seen twice ends the loop early with the
// records gathered so far. Any page failure discards the partial collection.
func (f *Fetcher) FetchAll(ctx context.Context, req Request) ([]json.RawMessage, error) {
	if req.URL == nil {
		return nil, errors.New("pagination: request URL builder is nil")
	}

	var items []json.RawMessage
	seen := map[string]bool{"": true}
	cursor := ""

	for pageNum := 1; ; pageNum++ {
		if pageNum > 1 && f.config.PageDelay > 0 {
			timer := time.NewTimer(f.config.PageDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		url := req.URL(cursor)
		p, err := f.page(ctx, req.Scope, url)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageNum, err)
		}
		items = append(items, p.Data...)

		next := p.next()
		if next == "" {
			f.logger.Debug().
				Str("scope", req.Scope).
				Int("pages", pageNum).
				Int("items", len(items)).
				Msg("Collection complete")
			return items, nil
		}
		if seen[next] {
			cursorRepeatsTotal.Inc()
			f.logger.Warn().
				Str("url", url).
				Str("cursor", next).
				Int("pages", pageNum).
				Msg("Cursor repeated - stopping pagination")
			return items, nil
		}
		if f.config.MaxPages > 0 && pageNum >= f.config.MaxPages {
			f.logger.Warn().
				Str("url", url).
				Int("max_pages", f.config.MaxPages).
				Msg("Page limit reached - stopping pagination")
			return items, nil
		}

		seen[next] = true
		cursor = next
	}
}

// page returns one decoded page, from the cache when possible.
func (f *Fetcher) page(ctx context.Context, scope, url string) (page, error) {
	key := cache.KeyFromURL(scope, url)

	if f.store != nil {
		entry, err := f.store.Get(ctx, key)
		switch {
		case err == nil:
			var p page
			if jsonErr := json.Unmarshal(entry.Data, &p); jsonErr == nil {
				pagesTotal.WithLabelValues("cache").Inc()
				return p, nil
			}
			_ = f.store.Delete(ctx, key)
		case !errors.Is(err, cache.ErrCacheMiss):
			f.logger.Warn().Err(err).Str("url", url).Msg("Cache read failed")
		}
	}

	var raw json.RawMessage
	err := client.Retry(ctx, f.config.PageRetry, func() error {
		return f.fetcher.GetJSON(ctx, url, &raw)
	})
	if err != nil {
		return page{}, err
	}

	var p page
	if err := json.Unmarshal(raw, &p); err != nil {
		return page{}, &client.ParseError{URL: url, Err: err}
	}
	pagesTotal.WithLabelValues("network").Inc()

	if f.store != nil && f.config.CacheTTL > 0 {
		if err := f.store.Set(ctx, key, cache.NewEntry(raw, f.config.CacheTTL)); err != nil {
			f.logger.Warn().Err(err).Str("url", url).Msg("Cache write failed")
		}
	}

	return p, nil
}
