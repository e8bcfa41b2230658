package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit tracking.
var (
	rateLimitRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "roblox_ratelimit_remaining",
		Help: "Requests remaining in the last observed Roblox rate limit window",
	})

	rateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roblox_ratelimit_blocks_total",
		Help: "Total number of requests that waited for a rate limit window reset",
	})

	rateLimitThrottlesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roblox_ratelimit_throttles_total",
		Help: "Total number of requests delayed because the remaining budget was low",
	})
)

// Tracker monitors Roblox rate limit headers and gates requests.
// It is safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	state    RateLimitState
	throttle time.Duration
	logger   zerolog.Logger
}

// NewTracker creates a new rate limit tracker.
func NewTracker(logger zerolog.Logger) *Tracker {
	return &Tracker{
		throttle: 250 * time.Millisecond,
		logger:   logger,
	}
}

// SetThrottle changes the delay applied in the warning state.
func (t *Tracker) SetThrottle(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.throttle = d
}

// State returns a copy of the current state.
func (t *Tracker) State() RateLimitState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// UpdateFromHeaders records the rate limit window advertised by a response.
// Responses without the headers leave the state untouched.
func (t *Tracker) UpdateFromHeaders(headers http.Header) error {
	remainStr := headers.Get(HeaderRemaining)
	if remainStr == "" {
		return nil
	}

	remain, err := leadingInt(remainStr)
	if err != nil {
		return fmt.Errorf("parse %s header: %w", HeaderRemaining, err)
	}

	resetSeconds := 0
	if resetStr := headers.Get(HeaderReset); resetStr != "" {
		resetSeconds, err = leadingInt(resetStr)
		if err != nil {
			return fmt.Errorf("parse %s header: %w", HeaderReset, err)
		}
	}

	now := time.Now()
	t.mu.Lock()
	t.state = RateLimitState{
		Remaining:  remain,
		ResetAt:    now.Add(time.Duration(resetSeconds) * time.Second),
		LastUpdate: now,
		Known:      true,
	}
	state := t.state
	t.mu.Unlock()

	rateLimitRemaining.Set(float64(remain))

	switch {
	case state.NeedsCriticalBlock():
		t.logger.Warn().
			Int("remaining", remain).
			Time("reset_at", state.ResetAt).
			Msg("Roblox rate limit exhausted - requests will wait for reset")
	case state.NeedsThrottling():
		t.logger.Debug().
			Int("remaining", remain).
			Msg("Roblox rate limit low - requests will be throttled")
	}

	return nil
}

// ObserveTooManyRequests records a 429 response. The window is treated as
// exhausted until Retry-After (or DefaultCooldown) elapses.
func (t *Tracker) ObserveTooManyRequests(headers http.Header) time.Duration {
	cooldown := DefaultCooldown
	if v := headers.Get(HeaderRetryAfter); v != "" {
		if secs, err := leadingInt(v); err == nil && secs > 0 {
			cooldown = time.Duration(secs) * time.Second
		} else if at, err := http.ParseTime(v); err == nil {
			if d := time.Until(at); d > 0 {
				cooldown = d
			}
		}
	}
	if cooldown > MaxWait {
		cooldown = MaxWait
	}

	now := time.Now()
	t.mu.Lock()
	t.state = RateLimitState{
		Remaining:  0,
		ResetAt:    now.Add(cooldown),
		LastUpdate: now,
		Known:      true,
	}
	t.mu.Unlock()

	rateLimitRemaining.Set(0)
	t.logger.Warn().Dur("cooldown", cooldown).Msg("Roblox returned 429 Too Many Requests")

	return cooldown
}

// Wait blocks until a request may be sent. In the critical state it waits
// for the window reset (capped at MaxWait); in the warning state it applies
// the throttle delay. It returns ctx.Err() if the context ends first.
func (t *Tracker) Wait(ctx context.Context) error {
	t.mu.Lock()
	state := t.state
	throttle := t.throttle
	t.mu.Unlock()

	var delay time.Duration
	switch {
	case state.NeedsCriticalBlock():
		delay = state.TimeUntilReset()
		if delay > MaxWait {
			delay = MaxWait
		}
		rateLimitBlocksTotal.Inc()
		t.logger.Debug().Dur("wait", delay).Msg("Waiting for rate limit reset")
	case state.NeedsThrottling():
		delay = throttle
		rateLimitThrottlesTotal.Inc()
	default:
		return ctx.Err()
	}

	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// leadingInt parses the first integer of a header value. Some Roblox
// endpoints send policy suffixes such as "59, 60;w=60".
func leadingInt(v string) (int, error) {
	v = strings.TrimSpace(v)
	if i := strings.IndexAny(v, ",;"); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	return strconv.Atoi(v)
}
