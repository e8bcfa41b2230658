package search

import (
	"time"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/roblox"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/wealth"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/workpool"
)

// Options configures one search.
type Options struct {
	// ConcurrencyLimit caps in-flight inventory requests (default 8).
	ConcurrencyLimit int

	// Threshold is the minimum item price; <= 0 uses wealth.DefaultThreshold.
	Threshold float64

	// UseCreatorFilter counts only items created by Roblox.
	UseCreatorFilter bool

	// IncludeZero keeps members without qualifying items.
	IncludeZero bool

	// Sliding schedules inventory requests in a sliding window instead of
	// chunks.
	Sliding bool

	// FailFast aborts the search on the first inventory failure. By default
	// the member is skipped and listed in Result.Failures.
	FailFast bool

	// DetailBatchSize is the catalog details batch size (default 80).
	DetailBatchSize int

	// AbortOnDetailFailure fails the search when creator lookups fail. By
	// default unresolved items do not qualify.
	AbortOnDetailFailure bool

	// OnProgress receives lifecycle events. Calls are serialized.
	OnProgress func(Progress)
}

// DefaultOptions returns the defaults used by the CLI and the server.
func DefaultOptions() Options {
	return Options{
		ConcurrencyLimit: workpool.DefaultLimit,
		Threshold:        wealth.DefaultThreshold,
		DetailBatchSize:  roblox.DefaultDetailBatchSize,
	}
}

func (o Options) normalized() Options {
	if o.ConcurrencyLimit <= 0 {
		o.ConcurrencyLimit = workpool.DefaultLimit
	}
	if o.Threshold <= 0 {
		o.Threshold = wealth.DefaultThreshold
	}
	if o.DetailBatchSize <= 0 {
		o.DetailBatchSize = roblox.DefaultDetailBatchSize
	}
	return o
}

func (o Options) poolMode() workpool.Mode {
	if o.Sliding {
		return workpool.Sliding
	}
	return workpool.Chunked
}

// MemberFailure records a member skipped because its inventory could not be
// read.
type MemberFailure struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Reason   string `json:"reason"`
}

// Result is the outcome of a successful search.
type Result struct {
	GroupID          roblox.GroupID     `json:"groupId"`
	Leaderboard      wealth.Leaderboard `json:"leaderboard"`
	MemberCount      int                `json:"memberCount"`
	ItemCount        int                `json:"itemCount"`
	Failures         []MemberFailure    `json:"failures,omitempty"`
	UnresolvedAssets int                `json:"unresolvedAssets,omitempty"`
	StartedAt        time.Time          `json:"startedAt"`
	Duration         time.Duration      `json:"duration"`
}
