// Package ratelimit tracks Roblox web API rate limit headers and gates
// outgoing requests. It reads x-ratelimit-remaining / x-ratelimit-reset on
// every response and Retry-After on 429 responses, so callers back off
// before the upstream starts rejecting requests.
package ratelimit

import (
	"time"
)

// Header names read from Roblox responses.
const (
	HeaderRemaining  = "X-Ratelimit-Remaining"
	HeaderReset      = "X-Ratelimit-Reset"
	HeaderRetryAfter = "Retry-After"
)

// Thresholds for rate limit decisions.
const (
	// RemainingCritical blocks requests until the window resets when the
	// remaining budget falls below this value.
	RemainingCritical = 1

	// RemainingWarning throttles requests when the remaining budget falls
	// below this value.
	RemainingWarning = 5

	// DefaultCooldown is used for a 429 without a usable Retry-After header.
	DefaultCooldown = 5 * time.Second

	// MaxWait caps a single blocking wait.
	MaxWait = 60 * time.Second
)

// RateLimitState is the last observed rate limit window.
type RateLimitState struct {
	// Remaining is the number of requests left in the current window.
	Remaining int `json:"remaining"`

	// ResetAt is when the current window resets.
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when this state was last updated from headers.
	LastUpdate time.Time `json:"last_update"`

	// Known is false until a response carried rate limit headers.
	Known bool `json:"known"`
}

// NeedsCriticalBlock returns true if requests should wait for the reset.
func (s RateLimitState) NeedsCriticalBlock() bool {
	return s.Known && s.Remaining < RemainingCritical && s.TimeUntilReset() > 0
}

// NeedsThrottling returns true if requests should be slowed down.
func (s RateLimitState) NeedsThrottling() bool {
	return s.Known && s.Remaining < RemainingWarning && !s.NeedsCriticalBlock() && s.TimeUntilReset() > 0
}

// TimeUntilReset returns the duration until the window resets.
// Returns 0 if the reset time has already passed.
func (s RateLimitState) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}
