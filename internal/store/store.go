// Package store persists leaderboard snapshots so the server can answer
// "latest leaderboard for group" without running a search.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/roblox"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/search"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/wealth"
	jsoniter "github.com/json-iterator/go"
)

// ErrNotFound is returned by Latest when the group has no snapshot.
var ErrNotFound = errors.New("snapshot not found")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Snapshot is one stored search result.
type Snapshot struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	GroupID          int64     `json:"groupId" gorm:"index;not null"`
	Query            string    `json:"query" gorm:"size:512"`
	Leaderboard      string    `json:"-" gorm:"type:longtext"`
	MemberCount      int       `json:"memberCount"`
	RankedCount      int       `json:"rankedCount"`
	FailureCount     int       `json:"failureCount"`
	UnresolvedAssets int       `json:"unresolvedAssets"`
	CreatedAt        time.Time `json:"createdAt" gorm:"index"`
}

// TableName implements gorm's tabler.
func (Snapshot) TableName() string {
	return "leaderboard_snapshots"
}

// Rows decodes the stored leaderboard.
func (s *Snapshot) Rows() (wealth.Leaderboard, error) {
	rows := wealth.Leaderboard{}
	if s.Leaderboard == "" {
		return rows, nil
	}
	if err := json.Unmarshal([]byte(s.Leaderboard), &rows); err != nil {
		return nil, fmt.Errorf("decode snapshot %d: %w", s.ID, err)
	}
	return rows, nil
}

// NewSnapshot builds the snapshot of a finished search. query is the text
// the user submitted.
func NewSnapshot(query string, result *search.Result) (*Snapshot, error) {
	data, err := json.Marshal(result.Leaderboard)
	if err != nil {
		return nil, fmt.Errorf("encode leaderboard: %w", err)
	}
	created := result.StartedAt
	if created.IsZero() {
		created = time.Now()
	}
	return &Snapshot{
		GroupID:          int64(result.GroupID),
		Query:            query,
		Leaderboard:      string(data),
		MemberCount:      result.MemberCount,
		RankedCount:      len(result.Leaderboard),
		FailureCount:     len(result.Failures),
		UnresolvedAssets: result.UnresolvedAssets,
		CreatedAt:        created.UTC(),
	}, nil
}

// Store saves and loads snapshots.
type Store interface {
	Save(ctx context.Context, snapshot *Snapshot) error
	Latest(ctx context.Context, groupID roblox.GroupID) (*Snapshot, error)
}
