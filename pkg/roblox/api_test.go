package roblox_test

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"testing"
	"time"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/internal/testutil"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/cache"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/client"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/pagination"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/roblox"
)

func newTestAPI(t *testing.T, mock *testutil.MockRoblox, store cache.Store) *roblox.API {
	t.Helper()

	c, err := client.New(client.DefaultConfig("RichestTest/1.0"))
	if err != nil {
		t.Fatal(err)
	}

	retry := client.RetryConfig{MaxAttempts: 2, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, BackoffMultiplier: 1}
	return roblox.NewAPI(c, store, roblox.Config{
		Endpoints: roblox.Endpoints{
			Groups:    mock.URL(),
			Inventory: mock.URL(),
			Catalog:   mock.URL(),
		},
		Pagination: pagination.Config{PageRetry: retry, CacheTTL: time.Minute},
		Retry:      retry,
	})
}

func TestRoles(t *testing.T) {
	mock := testutil.NewMockRoblox()
	defer mock.Close()
	mock.AddGroup(7,
		testutil.MockRole{ID: 1, Name: "Guest", Rank: 0},
		testutil.MockRole{ID: 2, Name: "Member", Rank: 1, Members: []testutil.MockUser{{UserID: 10}}},
	)

	roles, err := newTestAPI(t, mock, nil).Roles(context.Background(), 7)
	if err != nil {
		t.Fatalf("Roles() error = %v", err)
	}
	if len(roles) != 2 || roles[0].Name != "Guest" || roles[1].ID != 2 || roles[1].MemberCount != 1 {
		t.Errorf("roles = %+v", roles)
	}
}

func TestRoles_GroupNotFound(t *testing.T) {
	mock := testutil.NewMockRoblox()
	defer mock.Close()
	mock.AddGroup(8) // exists but has no roles
	mock.SetResponse("/v1/groups/9/roles", testutil.MockResponse{StatusCode: http.StatusNotFound})

	api := newTestAPI(t, mock, nil)

	for _, id := range []roblox.GroupID{404, 8, 9} {
		_, err := api.Roles(context.Background(), id)
		var notFound *roblox.GroupNotFoundError
		if !errors.As(err, &notFound) {
			t.Errorf("Roles(%d) error = %v, want *GroupNotFoundError", id, err)
			continue
		}
		if notFound.GroupID != id {
			t.Errorf("GroupID = %d, want %d", notFound.GroupID, id)
		}
	}
}

func TestRoles_DataVariant(t *testing.T) {
	mock := testutil.NewMockRoblox()
	defer mock.Close()
	mock.SetResponse("/v1/groups/5/roles", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"data":[{"id":3,"name":"Owner"}]}`,
	})

	roles, err := newTestAPI(t, mock, nil).Roles(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(roles) != 1 || roles[0].Name != "Owner" {
		t.Errorf("roles = %+v", roles)
	}
}

func TestRoles_ServerErrorPropagates(t *testing.T) {
	mock := testutil.NewMockRoblox()
	defer mock.Close()
	mock.SetResponse("/v1/groups/5/roles", testutil.NewServerErrorResponse())

	_, err := newTestAPI(t, mock, nil).Roles(context.Background(), 5)
	if !client.IsStatus(err, http.StatusInternalServerError) {
		t.Fatalf("error = %v, want 500", err)
	}
	if !errors.Is(err, client.ErrRetryExhausted) {
		t.Errorf("error = %v, want retries exhausted", err)
	}
	if n := mock.Count("/v1/groups/5/roles"); n != 2 {
		t.Errorf("requests = %d, want 2", n)
	}
}

func TestResolveMembers_Dedup(t *testing.T) {
	mock := testutil.NewMockRoblox()
	defer mock.Close()
	mock.PageSize = 2
	mock.AddGroup(7,
		testutil.MockRole{ID: 1, Name: "Member", Members: []testutil.MockUser{
			{UserID: 1, Username: "a", DisplayName: "A"},
			{UserID: 2, Username: "b", DisplayName: "B"},
			{UserID: 3, Username: "c", DisplayName: "C"},
		}},
		testutil.MockRole{ID: 2, Name: "Admin", Members: []testutil.MockUser{
			{UserID: 2, Username: "b", DisplayName: "B (renamed)"},
			{UserID: 4, Username: "d", DisplayName: "D"},
		}},
	)

	var seen []string
	members, err := newTestAPI(t, mock, nil).ResolveMembers(context.Background(), 7, func(position, total int, role roblox.Role) {
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
		seen = append(seen, role.Name)
	})
	if err != nil {
		t.Fatalf("ResolveMembers() error = %v", err)
	}

	if len(members) != 4 {
		t.Fatalf("members = %d, want 4", len(members))
	}
	ids := make(map[int64]bool)
	for _, m := range members {
		if ids[m.UserID] {
			t.Errorf("duplicate user %d", m.UserID)
		}
		ids[m.UserID] = true
	}
	if members[1].UserID != 2 || members[1].DisplayName != "B (renamed)" {
		t.Errorf("members[1] = %+v, want user 2 at first position with last fields", members[1])
	}
	if len(seen) != 2 || seen[0] != "Member" || seen[1] != "Admin" {
		t.Errorf("roles seen = %v", seen)
	}
}

func TestResolveMembers_PageFailureAborts(t *testing.T) {
	mock := testutil.NewMockRoblox()
	defer mock.Close()
	mock.AddGroup(7, testutil.MockRole{ID: 1, Name: "Member"})
	mock.SetResponse("/v1/groups/7/roles/1/users", testutil.MockResponse{StatusCode: http.StatusBadRequest, Body: `{}`})

	_, err := newTestAPI(t, mock, nil).ResolveMembers(context.Background(), 7, nil)
	if !client.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("error = %v, want 400", err)
	}
}

func TestCollectibles(t *testing.T) {
	mock := testutil.NewMockRoblox()
	defer mock.Close()
	mock.PageSize = 2
	mock.SetInventory(1,
		testutil.MockItem{AssetID: 100, Name: "Dominus", RAP: 50000},
		testutil.MockItem{AssetID: 101, Name: "Fedora", RAP: 12000},
		testutil.MockItem{AssetID: 102, Name: "Hat", RAP: 0},
	)

	items, err := newTestAPI(t, mock, nil).Collectibles(context.Background(), "7", 1)
	if err != nil {
		t.Fatalf("Collectibles() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	if items[0].AssetID != 100 || items[0].RecentAveragePrice != 50000 || items[0].Name != "Dominus" {
		t.Errorf("items[0] = %+v", items[0])
	}
	if n := mock.Count("/v1/users/1/assets/collectibles"); n != 2 {
		t.Errorf("pages requested = %d, want 2", n)
	}
}

func TestCollectibles_FieldVariants(t *testing.T) {
	mock := testutil.NewMockRoblox()
	defer mock.Close()
	mock.SetRawInventory(1,
		`{"asset":{"id":5},"rap":11000}`,
		`{"id":6,"recentAveragePriceInRobux":13000}`,
		`{"name":"no id","recentAveragePrice":99999}`,
	)

	items, err := newTestAPI(t, mock, nil).Collectibles(context.Background(), "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %+v, want 2 (id-less record dropped)", items)
	}
	if items[0].AssetID != 5 || items[0].RecentAveragePrice != 11000 {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[1].AssetID != 6 || items[1].RecentAveragePrice != 13000 {
		t.Errorf("items[1] = %+v", items[1])
	}
}

func TestCollectibles_Hidden(t *testing.T) {
	mock := testutil.NewMockRoblox()
	defer mock.Close()
	mock.HideInventory(3)

	_, err := newTestAPI(t, mock, nil).Collectibles(context.Background(), "7", 3)
	if !errors.Is(err, roblox.ErrInventoryHidden) {
		t.Fatalf("error = %v, want ErrInventoryHidden", err)
	}
	if !client.IsStatus(err, http.StatusForbidden) {
		t.Errorf("error = %v, should carry the 403", err)
	}
}

func TestCollectibles_Cached(t *testing.T) {
	mock := testutil.NewMockRoblox()
	defer mock.Close()
	mock.SetInventory(1, testutil.MockItem{AssetID: 100, RAP: 50000})

	store := cache.NewMemoryStore()
	api := newTestAPI(t, mock, store)

	for i := 0; i < 3; i++ {
		if _, err := api.Collectibles(context.Background(), "7", 1); err != nil {
			t.Fatal(err)
		}
	}
	if n := mock.Count("/v1/users/1/assets/collectibles"); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}
}

func TestAssetCreators(t *testing.T) {
	mock := testutil.NewMockRoblox()
	defer mock.Close()
	mock.CSRFToken = "csrf-abc"
	for id := int64(1); id <= 5; id++ {
		mock.SetCreator(id, id%2)
	}
	mock.SetCreator(2, 999)
	mock.SetCreator(4, 999)

	var progress [][2]int
	creators, err := newTestAPI(t, mock, nil).AssetCreators(context.Background(), []int64{1, 2, 3, 3, 4, 5, 6}, 2, func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})
	if err != nil {
		t.Fatalf("AssetCreators() error = %v", err)
	}

	want := map[int64]int64{1: 1, 2: 999, 3: 1, 4: 999, 5: 1}
	if len(creators) != len(want) {
		t.Fatalf("creators = %v, want %v", creators, want)
	}
	for id, c := range want {
		if creators[id] != c {
			t.Errorf("creators[%d] = %d, want %d", id, creators[id], c)
		}
	}

	// 6 unique ids in batches of 2
	if len(progress) != 3 || progress[2] != [2]int{6, 6} {
		t.Errorf("progress = %v", progress)
	}
	// one extra request for the CSRF handshake
	if n := mock.Count("/v1/catalog/items/details"); n != 4 {
		t.Errorf("detail requests = %d, want 4", n)
	}
}

func TestAssetCreators_PartialBatch(t *testing.T) {
	mock := testutil.NewMockRoblox()
	defer mock.Close()
	mock.SetCreator(1, 1)
	mock.SetCreator(2, 1)

	calls := 0
	mock.SetHandler("/v1/catalog/items/details", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(`{"data":[{"id":1,"creatorTargetId":1},{"id":2,"creator":{"id":1}}]}`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
	})

	creators, err := newTestAPI(t, mock, nil).AssetCreators(context.Background(), []int64{1, 2, 3, 4}, 2, nil)

	var partial *roblox.PartialBatchError
	if !errors.As(err, &partial) {
		t.Fatalf("error = %v, want *PartialBatchError", err)
	}
	sort.Slice(partial.Unresolved, func(i, j int) bool { return partial.Unresolved[i] < partial.Unresolved[j] })
	if len(partial.Unresolved) != 2 || partial.Unresolved[0] != 3 || partial.Unresolved[1] != 4 {
		t.Errorf("Unresolved = %v, want [3 4]", partial.Unresolved)
	}
	if partial.Failed != 1 || partial.Batches != 2 {
		t.Errorf("Failed/Batches = %d/%d, want 1/2", partial.Failed, partial.Batches)
	}
	if !client.IsStatus(err, http.StatusBadRequest) {
		t.Errorf("error should unwrap to the batch failure: %v", err)
	}
	if creators[1] != 1 || creators[2] != 1 {
		t.Errorf("resolved creators lost: %v", creators)
	}
}

func TestAssetCreators_Empty(t *testing.T) {
	mock := testutil.NewMockRoblox()
	defer mock.Close()

	creators, err := newTestAPI(t, mock, nil).AssetCreators(context.Background(), nil, 0, nil)
	if err != nil || len(creators) != 0 {
		t.Errorf("AssetCreators(nil) = %v, %v", creators, err)
	}
	if mock.GetRequestCount() != 0 {
		t.Errorf("requests = %d, want 0", mock.GetRequestCount())
	}
}

func TestEndpoints(t *testing.T) {
	e := roblox.DefaultEndpoints()

	if got := e.RolesURL(7); got != "https://groups.roblox.com/v1/groups/7/roles" {
		t.Errorf("RolesURL = %q", got)
	}
	if got := e.RoleUsersURL(7, 3, "a b"); got != "https://groups.roblox.com/v1/groups/7/roles/3/users?limit=100&sortOrder=Asc&cursor=a+b" {
		t.Errorf("RoleUsersURL = %q", got)
	}
	if got := e.CollectiblesURL(1, ""); got != "https://inventory.roblox.com/v1/users/1/assets/collectibles?limit=100&sortOrder=Asc&cursor=" {
		t.Errorf("CollectiblesURL = %q", got)
	}
	if got := e.CatalogDetailsURL(); got != "https://catalog.roblox.com/v1/catalog/items/details" {
		t.Errorf("CatalogDetailsURL = %q", got)
	}
	if got := roblox.ProfileURL(1); got != "https://www.roblox.com/users/1/profile" {
		t.Errorf("ProfileURL = %q", got)
	}
}
