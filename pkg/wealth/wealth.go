// Package wealth sums the value of each member's qualifying collectibles and
// ranks the members by that value.
package wealth

import (
	"sort"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/roblox"
)

const (
	// RobloxCreatorID is the creator id of items published by Roblox itself.
	RobloxCreatorID int64 = 1

	// DefaultThreshold is the minimum recent average price of a qualifying item.
	DefaultThreshold = 10000
)

// CreatorLookup reports the creator of an asset. ok is false when the
// creator is unknown.
type CreatorLookup func(assetID int64) (creatorID int64, ok bool)

// CreatorsFromMap adapts an assetID -> creatorID map to a CreatorLookup.
func CreatorsFromMap(creators map[int64]int64) CreatorLookup {
	return func(assetID int64) (int64, bool) {
		id, ok := creators[assetID]
		return id, ok
	}
}

// Options configures Aggregate.
type Options struct {
	// Threshold is the minimum price of a qualifying item.
	Threshold float64

	// Creators enables the creator filter when set: only items whose
	// creator is RobloxCreatorID qualify. Unknown creators do not qualify.
	Creators CreatorLookup

	// IncludeZero keeps members without qualifying items in the leaderboard.
	IncludeZero bool
}

// DefaultOptions returns the default threshold without creator filtering.
func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold}
}

// WealthRow is one ranked member.
type WealthRow struct {
	Rank                int     `json:"rank"`
	UserID              int64   `json:"userId"`
	Username            string  `json:"username"`
	DisplayName         string  `json:"displayName"`
	TotalValue          float64 `json:"totalValue"`
	QualifyingItemCount int     `json:"qualifyingItemCount"`
	TopItemName         string  `json:"topItemName,omitempty"`
	TopItemValue        float64 `json:"topItemValue,omitempty"`
}

// Leaderboard is sorted by TotalValue descending, ties in member order.
type Leaderboard []WealthRow

// Top returns at most the first n rows. n <= 0 returns the whole board.
func (l Leaderboard) Top(n int) Leaderboard {
	if n <= 0 || n >= len(l) {
		return l
	}
	return l[:n]
}

// Qualifies reports whether item counts toward a member's total. An item
// with an unknown (zero) price never qualifies.
func Qualifies(item roblox.CollectibleItem, opts Options) bool {
	price := item.RecentAveragePrice
	if price <= 0 || price < opts.Threshold {
		return false
	}
	if opts.Creators != nil {
		creator, ok := opts.Creators(item.AssetID)
		if !ok || creator != RobloxCreatorID {
			return false
		}
	}
	return true
}

// Aggregate builds the leaderboard for members from their collectibles,
// keyed by user id. Members missing from collectiblesByUser count as having
// no items. A user id listed twice in members is counted once.
func Aggregate(members []roblox.Member, collectiblesByUser map[int64][]roblox.CollectibleItem, opts Options) Leaderboard {
	rows := make(Leaderboard, 0, len(members))
	seen := make(map[int64]bool, len(members))

	for _, m := range members {
		if seen[m.UserID] {
			continue
		}
		seen[m.UserID] = true

		row := WealthRow{
			UserID:      m.UserID,
			Username:    m.Username,
			DisplayName: m.DisplayName,
		}
		for _, item := range collectiblesByUser[m.UserID] {
			if !Qualifies(item, opts) {
				continue
			}
			row.TotalValue += item.RecentAveragePrice
			row.QualifyingItemCount++
			if item.RecentAveragePrice > row.TopItemValue {
				row.TopItemValue = item.RecentAveragePrice
				row.TopItemName = item.Name
			}
		}

		if row.TotalValue == 0 && !opts.IncludeZero {
			continue
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalValue > rows[j].TotalValue
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}

	return rows
}
