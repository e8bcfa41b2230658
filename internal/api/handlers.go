package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/internal/store"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/roblox"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/search"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/wealth"
	"github.com/gin-gonic/gin"
)

// SearchRequest is the body of POST /api/v1/search and the query of the
// stream endpoint. Unset fields keep the server defaults.
type SearchRequest struct {
	Query         string   `json:"query" form:"query" binding:"required"`
	Concurrency   int      `json:"concurrency" form:"concurrency"`
	Threshold     *float64 `json:"threshold" form:"threshold"`
	CreatorFilter *bool    `json:"creatorFilter" form:"creatorFilter"`
	IncludeZero   bool     `json:"includeZero" form:"includeZero"`
	Sliding       bool     `json:"sliding" form:"sliding"`
	Refresh       bool     `json:"refresh" form:"refresh"`
	Top           int      `json:"top" form:"top"`
}

// options applies the request to the server defaults.
func (req SearchRequest) options(defaults search.Options) search.Options {
	opts := defaults
	if req.Concurrency > 0 {
		opts.ConcurrencyLimit = req.Concurrency
	}
	if req.Threshold != nil {
		opts.Threshold = *req.Threshold
	}
	if req.CreatorFilter != nil {
		opts.UseCreatorFilter = *req.CreatorFilter
	}
	opts.IncludeZero = opts.IncludeZero || req.IncludeZero
	opts.Sliding = opts.Sliding || req.Sliding
	return opts
}

// SearchResponse is a search result with the id of its stored snapshot.
type SearchResponse struct {
	*search.Result
	SnapshotID uint `json:"snapshotId,omitempty"`
}

func (s *Server) search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, snapshotID, err := s.execute(c.Request.Context(), req, nil)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, SearchResponse{Result: result, SnapshotID: snapshotID})
}

// execute parses the query, runs the search and stores a snapshot.
func (s *Server) execute(ctx context.Context, req SearchRequest, onProgress func(search.Progress)) (*search.Result, uint, error) {
	groupID, err := roblox.ParseGroupID(req.Query)
	if err != nil {
		return nil, 0, err
	}

	if s.config.SearchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.SearchTimeout)
		defer cancel()
	}

	opts := req.options(s.config.Defaults)
	opts.OnProgress = onProgress

	run := s.searcher.Run
	if req.Refresh {
		run = s.searcher.Refresh
	}
	result, err := run(ctx, groupID, opts)
	if err != nil {
		return nil, 0, err
	}

	var snapshotID uint
	if s.snapshots != nil {
		snapshot, err := store.NewSnapshot(req.Query, result)
		if err == nil {
			err = s.snapshots.Save(ctx, snapshot)
		}
		if err != nil {
			s.logger.Error().Err(err).Int64("group_id", int64(groupID)).Msg("Failed to save snapshot")
		} else {
			snapshotID = snapshot.ID
		}
	}

	result.Leaderboard = result.Leaderboard.Top(req.Top)
	return result, snapshotID, nil
}

// LeaderboardResponse is the latest stored leaderboard of a group.
type LeaderboardResponse struct {
	*store.Snapshot
	Rows wealth.Leaderboard `json:"leaderboard"`
}

func (s *Server) latestLeaderboard(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}
	if s.snapshots == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot storage is disabled"})
		return
	}

	snapshot, err := s.snapshots.Latest(c.Request.Context(), roblox.GroupID(id))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no leaderboard stored for this group"})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	rows, err := snapshot.Rows()
	if err != nil {
		s.fail(c, err)
		return
	}
	if top, err := strconv.Atoi(c.Query("top")); err == nil {
		rows = rows.Top(top)
	}
	c.JSON(http.StatusOK, LeaderboardResponse{Snapshot: snapshot, Rows: rows})
}
