// Package search drives a full leaderboard search for one group: member
// enumeration, inventory fetches, optional creator resolution and ranking.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/cache"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/roblox"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/wealth"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/workpool"
	"github.com/rs/zerolog"
)

// ErrSuperseded is the cancellation cause of a run replaced by a newer run
// for the same group.
var ErrSuperseded = errors.New("search superseded by a newer search")

// API is the Roblox surface a search needs; *roblox.API implements it.
type API interface {
	ResolveMembers(ctx context.Context, groupID roblox.GroupID, onRole func(position, total int, role roblox.Role)) ([]roblox.Member, error)
	Collectibles(ctx context.Context, scope string, userID int64) ([]roblox.CollectibleItem, error)
	AssetCreators(ctx context.Context, assetIDs []int64, batchSize int, onBatch func(done, total int)) (map[int64]int64, error)
}

// Runner runs searches. At most one search per group is in flight: starting
// a second cancels the first.
type Runner struct {
	api    API
	store  cache.Store
	logger zerolog.Logger

	mu       sync.Mutex
	nextID   uint64
	inflight map[roblox.GroupID]*activeRun
}

type activeRun struct {
	id     uint64
	cancel context.CancelCauseFunc
}

// NewRunner creates a Runner. store is the page cache used by api, purged by
// Refresh and ClearCache; it may be nil.
func NewRunner(api API, store cache.Store, logger zerolog.Logger) *Runner {
	return &Runner{
		api:      api,
		store:    store,
		logger:   logger,
		inflight: make(map[roblox.GroupID]*activeRun),
	}
}

// Refresh purges the group's cached pages and runs a fresh search.
func (r *Runner) Refresh(ctx context.Context, groupID roblox.GroupID, opts Options) (*Result, error) {
	if _, err := r.ClearCache(ctx, groupID); err != nil {
		r.logger.Warn().Err(err).Int64("group_id", int64(groupID)).Msg("Failed to clear cache before refresh")
	}
	return r.Run(ctx, groupID, opts)
}

// ClearCache drops every cached page fetched for the group.
func (r *Runner) ClearCache(ctx context.Context, groupID roblox.GroupID) (int, error) {
	if r.store == nil {
		return 0, nil
	}
	removed, err := r.store.Purge(ctx, groupID.String())
	if err != nil {
		return removed, fmt.Errorf("purge cache for group %d: %w", groupID, err)
	}
	r.logger.Debug().Int64("group_id", int64(groupID)).Int("removed", removed).Msg("Cleared group cache")
	return removed, nil
}

// Run searches the group and returns the ranked leaderboard.
func (r *Runner) Run(ctx context.Context, groupID roblox.GroupID, opts Options) (*Result, error) {
	ctx, done := r.register(ctx, groupID)
	defer done()

	opts = opts.normalized()
	s := &lifecycle{
		stage:      StageIdle,
		onProgress: opts.OnProgress,
		logger:     r.logger.With().Int64("group_id", int64(groupID)).Logger(),
	}

	inFlightRuns.Inc()
	defer inFlightRuns.Dec()

	started := time.Now()
	result, err := r.run(ctx, groupID, opts, s)
	runDuration.Observe(time.Since(started).Seconds())

	if err != nil {
		if errors.Is(context.Cause(ctx), ErrSuperseded) {
			err = fmt.Errorf("%w: %w", ErrSuperseded, err)
			runsTotal.WithLabelValues("superseded").Inc()
		} else {
			runsTotal.WithLabelValues("failed").Inc()
		}
		s.fail(err)
		return nil, err
	}

	result.StartedAt = started
	result.Duration = time.Since(started)
	runsTotal.WithLabelValues("done").Inc()

	s.logger.Info().
		Int("members", result.MemberCount).
		Int("ranked", len(result.Leaderboard)).
		Int("failures", len(result.Failures)).
		Dur("duration", result.Duration).
		Msg("Search complete")

	return result, nil
}

// register cancels any run in flight for the group and returns the context
// of the new run with its release function.
func (r *Runner) register(parent context.Context, groupID roblox.GroupID) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(parent)

	r.mu.Lock()
	r.nextID++
	id := r.nextID
	if prev, ok := r.inflight[groupID]; ok {
		r.logger.Info().Int64("group_id", int64(groupID)).Msg("Cancelling in-flight search for group")
		prev.cancel(ErrSuperseded)
	}
	r.inflight[groupID] = &activeRun{id: id, cancel: cancel}
	r.mu.Unlock()

	return ctx, func() {
		r.mu.Lock()
		if cur, ok := r.inflight[groupID]; ok && cur.id == id {
			delete(r.inflight, groupID)
		}
		r.mu.Unlock()
		cancel(nil)
	}
}

func (r *Runner) run(ctx context.Context, groupID roblox.GroupID, opts Options, s *lifecycle) (*Result, error) {
	result := &Result{GroupID: groupID, Leaderboard: wealth.Leaderboard{}}

	// Members
	s.enter(StageResolvingMembers, 0, 0, "Fetching group roles...")
	members, err := r.api.ResolveMembers(ctx, groupID, func(position, total int, role roblox.Role) {
		s.emit(position-1, total, fmt.Sprintf("Fetching members in role: %s (%d/%d)", role.Name, position, total))
	})
	if err != nil {
		return nil, err
	}
	result.MemberCount = len(members)
	if len(members) == 0 {
		s.enter(StageDone, 0, 0, "No members found.")
		return result, nil
	}

	// Inventories
	s.enter(StageFetchingInventories, 0, len(members), fmt.Sprintf("Found %d members. Fetching collectibles...", len(members)))
	byUser, failures, err := r.inventories(ctx, groupID, members, opts, s)
	if err != nil {
		return nil, err
	}
	result.Failures = failures

	for _, items := range byUser {
		result.ItemCount += len(items)
	}

	aggregate := wealth.Options{
		Threshold:   opts.Threshold,
		IncludeZero: opts.IncludeZero,
	}

	// Creators
	if opts.UseCreatorFilter {
		creators, unresolved, err := r.creators(ctx, members, byUser, opts, s)
		if err != nil {
			return nil, err
		}
		result.UnresolvedAssets = unresolved
		aggregate.Creators = wealth.CreatorsFromMap(creators)
	}

	// Ranking
	s.enter(StageAggregating, 0, len(members), "Ranking members...")
	result.Leaderboard = wealth.Aggregate(members, byUser, aggregate)

	s.enter(StageDone, len(result.Leaderboard), len(result.Leaderboard),
		fmt.Sprintf("Done. %d members ranked.", len(result.Leaderboard)))
	return result, nil
}

// inventories fetches every member's collectibles with bounded concurrency.
func (r *Runner) inventories(ctx context.Context, groupID roblox.GroupID, members []roblox.Member, opts Options, s *lifecycle) (map[int64][]roblox.CollectibleItem, []MemberFailure, error) {
	scope := groupID.String()
	pool := workpool.Options{
		Limit: opts.ConcurrencyLimit,
		Mode:  opts.poolMode(),
		OnProgress: func(completed, total int) {
			s.emit(completed, total, "Fetching collectibles...")
		},
	}
	fetch := func(ctx context.Context, m roblox.Member) ([]roblox.CollectibleItem, error) {
		return r.api.Collectibles(ctx, scope, m.UserID)
	}

	byUser := make(map[int64][]roblox.CollectibleItem, len(members))

	if opts.FailFast {
		inventories, err := workpool.Map(ctx, members, pool, fetch)
		if err != nil {
			return nil, nil, err
		}
		for i, m := range members {
			byUser[m.UserID] = inventories[i]
		}
		return byUser, nil, nil
	}

	var failures []MemberFailure
	for i, outcome := range workpool.MapSettled(ctx, members, pool, fetch) {
		m := members[i]
		if outcome.Err == nil {
			byUser[m.UserID] = outcome.Value
			continue
		}
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}

		memberFailuresTotal.Inc()
		s.logger.Warn().
			Err(outcome.Err).
			Int64("user_id", m.UserID).
			Msg("Skipping member - inventory could not be read")
		failures = append(failures, MemberFailure{
			UserID:   m.UserID,
			Username: m.Username,
			Reason:   failureReason(outcome.Err),
		})
	}
	return byUser, failures, nil
}

// creators resolves the creators of the price-qualifying items. With the
// default policy a partial lookup is not fatal: the number of unresolved
// assets is returned and those assets do not qualify.
func (r *Runner) creators(ctx context.Context, members []roblox.Member, byUser map[int64][]roblox.CollectibleItem, opts Options, s *lifecycle) (map[int64]int64, int, error) {
	candidates := creatorCandidates(members, byUser, opts.Threshold)
	if len(candidates) == 0 {
		return map[int64]int64{}, 0, nil
	}

	s.enter(StageResolvingCreators, 0, len(candidates), "Fetching asset details...")
	creators, err := r.api.AssetCreators(ctx, candidates, opts.DetailBatchSize, func(done, total int) {
		s.emit(done, total, "Fetching asset details...")
	})
	if err == nil {
		return creators, 0, nil
	}

	var partial *roblox.PartialBatchError
	if !errors.As(err, &partial) || opts.AbortOnDetailFailure || ctx.Err() != nil {
		return nil, 0, err
	}

	s.logger.Warn().
		Err(err).
		Int("unresolved", len(partial.Unresolved)).
		Msg("Some asset creators could not be resolved - treating them as non-qualifying")
	return creators, len(partial.Unresolved), nil
}

// creatorCandidates returns the asset ids whose creator decides whether they
// qualify: items priced at or above the threshold, in member order.
func creatorCandidates(members []roblox.Member, byUser map[int64][]roblox.CollectibleItem, threshold float64) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, m := range members {
		for _, item := range byUser[m.UserID] {
			if !wealth.Qualifies(item, wealth.Options{Threshold: threshold}) || seen[item.AssetID] {
				continue
			}
			seen[item.AssetID] = true
			ids = append(ids, item.AssetID)
		}
	}
	return ids
}

func failureReason(err error) string {
	if errors.Is(err, roblox.ErrInventoryHidden) {
		return "inventory is private"
	}
	return UserMessage(err)
}

// lifecycle tracks the stage of one run and forwards progress events.
type lifecycle struct {
	mu         sync.Mutex
	stage      Stage
	onProgress func(Progress)
	logger     zerolog.Logger
}

func (l *lifecycle) enter(next Stage, completed, total int, message string) {
	l.mu.Lock()
	if !l.stage.CanTransition(next) {
		l.logger.Error().
			Str("from", string(l.stage)).
			Str("to", string(next)).
			Msg("Invalid search stage transition")
	}
	l.stage = next
	l.mu.Unlock()

	l.logger.Debug().Str("stage", string(next)).Msg(message)
	l.emit(completed, total, message)
}

func (l *lifecycle) emit(completed, total int, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.onProgress == nil {
		return
	}
	l.onProgress(Progress{Stage: l.stage, Completed: completed, Total: total, Message: message})
}

func (l *lifecycle) fail(err error) {
	l.mu.Lock()
	if l.stage.Terminal() {
		l.mu.Unlock()
		return
	}
	l.stage = StageFailed
	l.mu.Unlock()

	l.logger.Warn().Err(err).Msg("Search failed")
	l.emit(0, 0, UserMessage(err))
}
