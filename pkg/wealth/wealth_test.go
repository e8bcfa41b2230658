package wealth

import (
	"encoding/json"
	"testing"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/roblox"
)

func item(assetID int64, price float64) roblox.CollectibleItem {
	return roblox.CollectibleItem{AssetID: assetID, RecentAveragePrice: price}
}

func TestAggregate_ThresholdAndOrder(t *testing.T) {
	members := []roblox.Member{
		{UserID: 1, Username: "a"},
		{UserID: 2, Username: "b"},
	}
	inventories := map[int64][]roblox.CollectibleItem{
		1: {item(10, 15000), item(11, 5000)},
		2: {item(12, 20000)},
	}

	board := Aggregate(members, inventories, DefaultOptions())

	if len(board) != 2 {
		t.Fatalf("rows = %d, want 2", len(board))
	}
	if board[0].UserID != 2 || board[0].TotalValue != 20000 || board[0].Rank != 1 {
		t.Errorf("board[0] = %+v, want user 2 with 20000", board[0])
	}
	if board[1].UserID != 1 || board[1].TotalValue != 15000 || board[1].QualifyingItemCount != 1 || board[1].Rank != 2 {
		t.Errorf("board[1] = %+v, want user 1 with 15000 from 1 item", board[1])
	}
}

func TestAggregate_CreatorFilter(t *testing.T) {
	members := []roblox.Member{{UserID: 1}}
	inventories := map[int64][]roblox.CollectibleItem{
		1: {item(10, 50000), item(11, 30000), item(12, 40000)},
	}
	creators := CreatorsFromMap(map[int64]int64{10: 999, 11: RobloxCreatorID})

	tests := []struct {
		name  string
		opts  Options
		total float64
		count int
	}{
		{"filter off", Options{Threshold: DefaultThreshold}, 120000, 3},
		{"filter on", Options{Threshold: DefaultThreshold, Creators: creators}, 30000, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := Aggregate(members, inventories, tt.opts)
			if len(board) != 1 {
				t.Fatalf("rows = %d", len(board))
			}
			if board[0].TotalValue != tt.total || board[0].QualifyingItemCount != tt.count {
				t.Errorf("row = %+v, want total %v count %d", board[0], tt.total, tt.count)
			}
		})
	}
}

func TestAggregate_ZeroCollectibles(t *testing.T) {
	members := []roblox.Member{{UserID: 1}, {UserID: 2}}
	inventories := map[int64][]roblox.CollectibleItem{
		2: {},
	}

	board := Aggregate(members, inventories, Options{Threshold: DefaultThreshold, IncludeZero: true})
	if len(board) != 2 {
		t.Fatalf("rows = %d, want 2", len(board))
	}
	for _, row := range board {
		if row.TotalValue != 0 || row.QualifyingItemCount != 0 {
			t.Errorf("row = %+v, want zero", row)
		}
	}
	if board[0].UserID != 1 || board[1].UserID != 2 {
		t.Error("ties should keep member order")
	}

	if board := Aggregate(members, inventories, DefaultOptions()); len(board) != 0 {
		t.Errorf("zero rows kept without IncludeZero: %+v", board)
	}
}

func TestAggregate_StableTies(t *testing.T) {
	members := []roblox.Member{{UserID: 5}, {UserID: 3}, {UserID: 9}, {UserID: 1}}
	inventories := map[int64][]roblox.CollectibleItem{
		5: {item(1, 10000)},
		3: {item(1, 20000)},
		9: {item(1, 10000)},
		1: {item(1, 20000)},
	}

	board := Aggregate(members, inventories, DefaultOptions())
	want := []int64{3, 1, 5, 9}
	for i, id := range want {
		if board[i].UserID != id {
			t.Errorf("board[%d] = user %d, want %d", i, board[i].UserID, id)
		}
	}
}

func TestAggregate_TopItem(t *testing.T) {
	members := []roblox.Member{{UserID: 1}}
	inventories := map[int64][]roblox.CollectibleItem{
		1: {
			{AssetID: 1, Name: "Fedora", RecentAveragePrice: 20000},
			{AssetID: 2, Name: "Dominus", RecentAveragePrice: 900000},
			{AssetID: 3, Name: "Cheap", RecentAveragePrice: 50},
		},
	}

	board := Aggregate(members, inventories, DefaultOptions())
	if board[0].TopItemName != "Dominus" || board[0].TopItemValue != 900000 {
		t.Errorf("top item = %q %v", board[0].TopItemName, board[0].TopItemValue)
	}
}

func TestAggregate_DuplicateMembers(t *testing.T) {
	members := []roblox.Member{{UserID: 1}, {UserID: 1}}
	inventories := map[int64][]roblox.CollectibleItem{1: {item(1, 10000)}}

	if board := Aggregate(members, inventories, DefaultOptions()); len(board) != 1 {
		t.Errorf("rows = %d, want 1", len(board))
	}
}

func TestQualifies(t *testing.T) {
	creators := CreatorsFromMap(map[int64]int64{1: RobloxCreatorID, 2: 42})

	tests := []struct {
		name string
		item roblox.CollectibleItem
		opts Options
		want bool
	}{
		{"at threshold", item(1, 10000), DefaultOptions(), true},
		{"below threshold", item(1, 9999), DefaultOptions(), false},
		{"unknown price", item(1, 0), Options{}, false},
		{"zero threshold counts priced items", item(1, 1), Options{}, true},
		{"roblox creator", item(1, 10000), Options{Threshold: DefaultThreshold, Creators: creators}, true},
		{"other creator", item(2, 10000), Options{Threshold: DefaultThreshold, Creators: creators}, false},
		{"unresolved creator", item(3, 10000), Options{Threshold: DefaultThreshold, Creators: creators}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Qualifies(tt.item, tt.opts); got != tt.want {
				t.Errorf("Qualifies() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	members := []roblox.Member{{UserID: 1, Username: "a"}, {UserID: 2, Username: "b"}, {UserID: 3, Username: "c"}}
	inventories := map[int64][]roblox.CollectibleItem{
		1: {item(1, 15000)},
		2: {item(2, 15000)},
		3: {item(3, 30000)},
	}

	first, _ := json.Marshal(Aggregate(members, inventories, DefaultOptions()))
	second, _ := json.Marshal(Aggregate(members, inventories, DefaultOptions()))
	if string(first) != string(second) {
		t.Errorf("outputs differ:\n%s\n%s", first, second)
	}
}

func TestLeaderboard_Top(t *testing.T) {
	board := Leaderboard{{UserID: 1}, {UserID: 2}, {UserID: 3}}

	if got := board.Top(2); len(got) != 2 {
		t.Errorf("Top(2) = %d rows", len(got))
	}
	if got := board.Top(0); len(got) != 3 {
		t.Errorf("Top(0) = %d rows", len(got))
	}
	if got := board.Top(10); len(got) != 3 {
		t.Errorf("Top(10) = %d rows", len(got))
	}
}
