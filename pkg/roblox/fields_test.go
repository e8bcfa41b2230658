package roblox

import (
	"testing"
)

func TestParseCollectible_AssetIDFallbacks(t *testing.T) {
	tests := []struct {
		name   string
		record string
		want   int64
		ok     bool
	}{
		{"assetId", `{"assetId":10,"id":99}`, 10, true},
		{"asset.id", `{"asset":{"id":11}}`, 11, true},
		{"id", `{"id":12}`, 12, true},
		{"zero assetId falls through", `{"assetId":0,"id":13}`, 13, true},
		{"string id", `{"assetId":"14"}`, 14, true},
		{"missing", `{"name":"Dominus"}`, 0, false},
		{"null", `{"assetId":null}`, 0, false},
		{"bool ignored", `{"assetId":true}`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, ok := parseCollectible([]byte(tt.record))
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if item.AssetID != tt.want {
				t.Errorf("AssetID = %d, want %d", item.AssetID, tt.want)
			}
		})
	}
}

func TestParseCollectible_PriceFallbacks(t *testing.T) {
	tests := []struct {
		name   string
		record string
		want   float64
	}{
		{"recentAveragePrice", `{"assetId":1,"recentAveragePrice":15000,"rap":1}`, 15000},
		{"recentAveragePriceInRobux", `{"assetId":1,"recentAveragePriceInRobux":16000}`, 16000},
		{"recentAveragePriceInRobuxRAP", `{"assetId":1,"recentAveragePriceInRobuxRAP":17000}`, 17000},
		{"rap", `{"assetId":1,"rap":18000}`, 18000},
		{"zero falls through", `{"assetId":1,"recentAveragePrice":0,"rap":19000}`, 19000},
		{"null falls through", `{"assetId":1,"recentAveragePrice":null,"rap":20000}`, 20000},
		{"fractional", `{"assetId":1,"recentAveragePrice":12345.5}`, 12345.5},
		{"absent defaults to zero", `{"assetId":1}`, 0},
		{"negative clamps to zero", `{"assetId":1,"rap":-5}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, ok := parseCollectible([]byte(tt.record))
			if !ok {
				t.Fatal("record rejected")
			}
			if item.RecentAveragePrice != tt.want {
				t.Errorf("RecentAveragePrice = %v, want %v", item.RecentAveragePrice, tt.want)
			}
		})
	}
}

func TestParseCollectible_Name(t *testing.T) {
	tests := []struct {
		record string
		want   string
	}{
		{`{"assetId":1,"name":"Valkyrie Helm"}`, "Valkyrie Helm"},
		{`{"assetId":1,"assetName":"Sparkle Time Fedora"}`, "Sparkle Time Fedora"},
		{`{"asset":{"id":1,"name":"Dominus Empyreus"}}`, "Dominus Empyreus"},
		{`{"assetId":1}`, ""},
	}
	for _, tt := range tests {
		item, _ := parseCollectible([]byte(tt.record))
		if item.Name != tt.want {
			t.Errorf("Name of %s = %q, want %q", tt.record, item.Name, tt.want)
		}
	}
}

func TestParseAssetDetail_Fallbacks(t *testing.T) {
	tests := []struct {
		name        string
		record      string
		wantID      int64
		wantCreator int64
		ok          bool
	}{
		{"creatorTargetId", `{"id":5,"creatorTargetId":1}`, 5, 1, true},
		{"creator.id", `{"id":5,"creator":{"id":2}}`, 5, 2, true},
		{"creator.creatorTargetId", `{"id":5,"creator":{"creatorTargetId":3}}`, 5, 3, true},
		{"assetId", `{"assetId":6,"creatorTargetId":1}`, 6, 1, true},
		{"no creator", `{"id":5}`, 5, 0, false},
		{"no id", `{"creatorTargetId":1}`, 0, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := parseAssetDetail([]byte(tt.record))
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if d.AssetID != tt.wantID || d.CreatorID != tt.wantCreator {
				t.Errorf("detail = %+v, want id %d creator %d", d, tt.wantID, tt.wantCreator)
			}
		})
	}
}

func TestParseMember(t *testing.T) {
	tests := []struct {
		name   string
		record string
		want   Member
		ok     bool
	}{
		{
			name:   "full",
			record: `{"user":{"userId":1,"username":"alice","displayName":"Alice"}}`,
			want:   Member{UserID: 1, Username: "alice", DisplayName: "Alice"},
			ok:     true,
		},
		{
			name:   "legacy id and name",
			record: `{"user":{"id":2,"name":"bob"}}`,
			want:   Member{UserID: 2, Username: "bob"},
			ok:     true,
		},
		{name: "no user", record: `{"role":{"id":1}}`, ok: false},
		{name: "null user", record: `{"user":null}`, ok: false},
		{name: "no user id", record: `{"user":{"username":"x"}}`, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := parseMember([]byte(tt.record))
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && m != tt.want {
				t.Errorf("member = %+v, want %+v", m, tt.want)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	role, ok := parseRole([]byte(`{"id":101,"name":"Member","rank":1,"memberCount":250}`))
	if !ok {
		t.Fatal("role rejected")
	}
	want := Role{ID: 101, Name: "Member", Rank: 1, MemberCount: 250}
	if role != want {
		t.Errorf("role = %+v, want %+v", role, want)
	}

	if _, ok := parseRole([]byte(`{"name":"Guest"}`)); ok {
		t.Error("role without id accepted")
	}
}

func TestRecords(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		topLevel bool
		keys     []string
		want     int
		wantErr  bool
	}{
		{"first key", `{"roles":[{},{}],"data":[{}]}`, false, []string{"roles", "data"}, 2, false},
		{"second key", `{"data":[{}]}`, false, []string{"roles", "data"}, 1, false},
		{"empty first key wins", `{"roles":[],"data":[{}]}`, false, []string{"roles", "data"}, 0, false},
		{"non-array skipped", `{"roles":{},"data":[{}]}`, false, []string{"roles", "data"}, 1, false},
		{"none", `{"groupId":1}`, false, []string{"roles"}, 0, false},
		{"top level array", `[{},{},{}]`, true, []string{"data"}, 3, false},
		{"top level array rejected", `[{}]`, false, []string{"data"}, 0, false},
		{"invalid", `{"data":`, false, []string{"data"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := records([]byte(tt.body), tt.topLevel, tt.keys...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}
