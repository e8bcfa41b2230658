package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/internal/testutil"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/roblox"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/search"
	jsoniter "github.com/json-iterator/go"
	"github.com/xuri/excelize/v2"
)

func setupMock(t *testing.T) *testutil.MockRoblox {
	t.Helper()

	mock := testutil.NewMockRoblox()
	t.Cleanup(mock.Close)

	mock.AddGroup(7,
		testutil.MockRole{ID: 1, Name: "Member", Members: []testutil.MockUser{
			{UserID: 1, Username: "alice", DisplayName: "Alice"},
			{UserID: 2, Username: "bob", DisplayName: "Bob"},
			{UserID: 3, Username: "carol", DisplayName: "Carol"},
		}},
	)
	mock.SetInventory(1, testutil.MockItem{AssetID: 100, Name: "Valkyrie", RAP: 15000, CreatorID: 1})
	mock.SetInventory(2, testutil.MockItem{AssetID: 102, Name: "Dominus", RAP: 1250000, CreatorID: 1})
	mock.HideInventory(3)

	for _, key := range []string{"ROBLOX_GROUPS_URL", "ROBLOX_INVENTORY_URL", "ROBLOX_CATALOG_URL"} {
		t.Setenv(key, mock.URL())
	}
	for _, key := range []string{"REDIS_URL", "DATABASE_URL", "SEARCH_CONCURRENCY", "SEARCH_THRESHOLD", "SEARCH_CREATOR_FILTER", "CACHE_TTL", "REQUEST_TIMEOUT"} {
		t.Setenv(key, "")
	}
	t.Setenv("LOG_LEVEL", "error")
	return mock
}

func TestRun_Table(t *testing.T) {
	setupMock(t)

	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"https://www.roblox.com/groups/7/Cool"}, &stdout, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	out := stdout.String()
	for _, want := range []string{
		"RANK", "PROFILE",
		"bob", "1,250,000", "Dominus (1,250,000)", "https://www.roblox.com/users/2/profile",
		"alice", "15,000",
		"2 of 3 members ranked, 1 skipped",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "bob") > strings.Index(out, "alice") {
		t.Errorf("bob should be ranked above alice:\n%s", out)
	}
	if !strings.Contains(stderr.String(), "[fetching_inventories]") {
		t.Errorf("progress missing from stderr:\n%s", stderr.String())
	}
}

func TestRun_JSON(t *testing.T) {
	setupMock(t)

	var stdout, stderr bytes.Buffer
	args := []string{"-json", "-top", "1", "-quiet", "-creator-filter", "7"}
	if err := run(context.Background(), args, &stdout, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if stderr.Len() != 0 {
		t.Errorf("quiet run wrote to stderr: %s", stderr.String())
	}

	var result search.Result
	if err := jsoniter.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if result.GroupID != 7 || result.MemberCount != 3 {
		t.Errorf("result = %+v", result)
	}
	if len(result.Leaderboard) != 1 || result.Leaderboard[0].Username != "bob" {
		t.Errorf("leaderboard = %+v", result.Leaderboard)
	}
	if len(result.Failures) != 1 || result.Failures[0].UserID != 3 {
		t.Errorf("failures = %+v", result.Failures)
	}
}

func TestRun_XLSX(t *testing.T) {
	setupMock(t)
	path := filepath.Join(t.TempDir(), "out.xlsx")

	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"-quiet", "-xlsx", path, "7"}, &stdout, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Leaderboard")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Errorf("got %d rows, want header + 2", len(rows))
	}
}

func TestRun_FailFast(t *testing.T) {
	setupMock(t)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-quiet", "-fail-fast", "7"}, &stdout, &stderr)
	if !errors.Is(err, roblox.ErrInventoryHidden) {
		t.Errorf("error = %v, want ErrInventoryHidden", err)
	}
}

func TestRun_NoQualifyingMembers(t *testing.T) {
	setupMock(t)

	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"-quiet", "-threshold", "5000000", "7"}, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout.String(), "No members of group 7 hold qualifying items (3 members scanned).") {
		t.Errorf("output = %q", stdout.String())
	}
}

func TestRun_BadInput(t *testing.T) {
	setupMock(t)

	tests := []struct {
		name  string
		args  []string
		check func(error) bool
	}{
		{"no argument", nil, func(err error) bool { return errors.Is(err, errUsage) }},
		{"two arguments", []string{"1", "2"}, func(err error) bool { return errors.Is(err, errUsage) }},
		{"unknown flag", []string{"-nope", "7"}, func(err error) bool { return err != nil }},
		{"invalid group", []string{"https://www.roblox.com/home"}, func(err error) bool {
			var invalid *roblox.InvalidInputError
			return errors.As(err, &invalid)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), tt.args, &stdout, &stderr)
			if !tt.check(err) {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{15000.4, "15,000"},
		{1250000, "1,250,000"},
		{123456789, "123,456,789"},
	}

	for _, tt := range tests {
		if got := formatValue(tt.in); got != tt.want {
			t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
