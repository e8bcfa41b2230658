// Package testutil provides testing utilities for the Roblox API packages.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockUser is a group member served by the mock.
type MockUser struct {
	UserID      int64
	Username    string
	DisplayName string
}

// MockRole is a group role and the users holding it.
type MockRole struct {
	ID      int64
	Name    string
	Rank    int
	Members []MockUser
}

// MockItem is a collectible served by the mock. CreatorID is what the
// catalog details endpoint reports for AssetID (0 = unknown to the catalog).
type MockItem struct {
	AssetID   int64
	Name      string
	RAP       float64
	CreatorID int64
}

// MockRoblox is a configurable mock of the groups, inventory and catalog
// APIs. All three are served from one server; point every endpoint base URL
// at URL().
type MockRoblox struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	groups      map[int64][]MockRole
	inventories map[int64][]string
	hidden      map[int64]bool
	creators    map[int64]int64
	counts      map[string]int

	// PageSize is the number of records per list page (default 100).
	PageSize int

	// CSRFToken, when set, is required on POST requests. Requests without
	// it get a 403 carrying the token, as Roblox does.
	CSRFToken string

	// InventoryDelay, when set, delays each collectibles page for a user.
	InventoryDelay func(userID int64) time.Duration

	// Tracking
	RequestCount int
}

// NewMockRoblox creates a new mock Roblox server.
func NewMockRoblox() *MockRoblox {
	mock := &MockRoblox{
		handlers:    make(map[string]func(w http.ResponseWriter, r *http.Request)),
		groups:      make(map[int64][]MockRole),
		inventories: make(map[int64][]string),
		hidden:      make(map[int64]bool),
		creators:    make(map[int64]int64),
		counts:      make(map[string]int),
		PageSize:    100,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/groups/{groupID}/roles", mock.handleRoles)
	mux.HandleFunc("GET /v1/groups/{groupID}/roles/{roleID}/users", mock.handleRoleUsers)
	mux.HandleFunc("GET /v1/users/{userID}/assets/collectibles", mock.handleCollectibles)
	mux.HandleFunc("POST /v1/catalog/items/details", mock.handleDetails)

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.counts[r.URL.Path]++
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockRoblox) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockRoblox) Close() {
	m.server.Close()
}

// AddGroup registers a group with its roles.
func (m *MockRoblox) AddGroup(groupID int64, roles ...MockRole) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[groupID] = roles
}

// SetInventory registers a user's collectibles and their catalog creators.
func (m *MockRoblox) SetInventory(userID int64, items ...MockItem) {
	records := make([]string, 0, len(items))
	for i, item := range items {
		records = append(records, fmt.Sprintf(
			`{"userAssetId":%d,"assetId":%d,"name":%q,"recentAveragePrice":%v,"serialNumber":null,"isOnHold":false}`,
			userID*1000+int64(i), item.AssetID, item.Name, item.RAP))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inventories[userID] = records
	for _, item := range items {
		if item.CreatorID != 0 {
			m.creators[item.AssetID] = item.CreatorID
		}
	}
}

// SetRawInventory registers collectibles as raw JSON records, for field
// name variants.
func (m *MockRoblox) SetRawInventory(userID int64, records ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inventories[userID] = records
}

// SetCreator registers the catalog creator of an asset.
func (m *MockRoblox) SetCreator(assetID, creatorID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creators[assetID] = creatorID
}

// HideInventory makes the user's inventory answer 403.
func (m *MockRoblox) HideInventory(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hidden[userID] = true
}

// SetHandler sets a custom handler for a specific path.
func (m *MockRoblox) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockRoblox) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockRoblox) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// Count returns the number of requests made to path.
func (m *MockRoblox) Count(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counts[path]
}

// Reset clears all tracking counters.
func (m *MockRoblox) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.counts = make(map[string]int)
}

func (m *MockRoblox) handleRoles(w http.ResponseWriter, r *http.Request) {
	groupID, _ := strconv.ParseInt(r.PathValue("groupID"), 10, 64)

	m.mu.RLock()
	roles, ok := m.groups[groupID]
	m.mu.RUnlock()

	if !ok {
		writeJSON(w, http.StatusBadRequest, `{"errors":[{"code":1,"message":"Group is invalid or does not exist.","userFacingMessage":"Something went wrong"}]}`)
		return
	}

	type role struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		Rank        int    `json:"rank"`
		MemberCount int    `json:"memberCount"`
	}
	out := struct {
		GroupID int64  `json:"groupId"`
		Roles   []role `json:"roles"`
	}{GroupID: groupID, Roles: []role{}}
	for _, rl := range roles {
		out.Roles = append(out.Roles, role{ID: rl.ID, Name: rl.Name, Rank: rl.Rank, MemberCount: len(rl.Members)})
	}

	body, _ := json.Marshal(out)
	writeJSON(w, http.StatusOK, string(body))
}

func (m *MockRoblox) handleRoleUsers(w http.ResponseWriter, r *http.Request) {
	groupID, _ := strconv.ParseInt(r.PathValue("groupID"), 10, 64)
	roleID, _ := strconv.ParseInt(r.PathValue("roleID"), 10, 64)

	m.mu.RLock()
	var users []MockUser
	found := false
	for _, role := range m.groups[groupID] {
		if role.ID == roleID {
			users = role.Members
			found = true
		}
	}
	pageSize := m.PageSize
	m.mu.RUnlock()

	if !found {
		writeJSON(w, http.StatusBadRequest, `{"errors":[{"code":2,"message":"The roleset is invalid or does not exist."}]}`)
		return
	}

	records := make([]string, len(users))
	for i, u := range users {
		records[i] = fmt.Sprintf(`{"user":{"hasVerifiedBadge":false,"userId":%d,"username":%q,"displayName":%q}}`,
			u.UserID, u.Username, u.DisplayName)
	}
	writePage(w, r, records, pageSize)
}

func (m *MockRoblox) handleCollectibles(w http.ResponseWriter, r *http.Request) {
	userID, _ := strconv.ParseInt(r.PathValue("userID"), 10, 64)

	m.mu.RLock()
	hidden := m.hidden[userID]
	records := m.inventories[userID]
	pageSize := m.PageSize
	delay := m.InventoryDelay
	m.mu.RUnlock()

	if delay != nil {
		time.Sleep(delay(userID))
	}
	if hidden {
		writeJSON(w, http.StatusForbidden, `{"errors":[{"code":4,"message":"You don't have permissions to view the specified user's inventory."}]}`)
		return
	}
	writePage(w, r, records, pageSize)
}

func (m *MockRoblox) handleDetails(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	token := m.CSRFToken
	m.mu.RUnlock()

	if token != "" && r.Header.Get("X-Csrf-Token") != token {
		w.Header().Set("X-Csrf-Token", token)
		writeJSON(w, http.StatusForbidden, `{"errors":[{"code":0,"message":"Token Validation Failed"}]}`)
		return
	}

	var req struct {
		Items []struct {
			ItemType string `json:"itemType"`
			ID       int64  `json:"id"`
		} `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, `{"errors":[{"code":0,"message":"BadRequest"}]}`)
		return
	}

	m.mu.RLock()
	records := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		creator, ok := m.creators[item.ID]
		if !ok {
			continue
		}
		records = append(records, fmt.Sprintf(`{"id":%d,"itemType":"Asset","creatorType":"User","creatorTargetId":%d}`, item.ID, creator))
	}
	m.mu.RUnlock()

	writeJSON(w, http.StatusOK, `{"data":[`+strings.Join(records, ",")+`]}`)
}

// writePage serves records[offset:offset+pageSize], where offset is encoded
// in the cursor.
func writePage(w http.ResponseWriter, r *http.Request, records []string, pageSize int) {
	if pageSize <= 0 {
		pageSize = 100
	}

	offset := 0
	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(cursor, "page-"))
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, `{"errors":[{"code":0,"message":"Invalid cursor."}]}`)
			return
		}
		offset = n
	}
	if offset > len(records) {
		offset = len(records)
	}
	end := offset + pageSize
	if end > len(records) {
		end = len(records)
	}

	next := "null"
	if end < len(records) {
		next = fmt.Sprintf(`"page-%d"`, end)
	}
	writeJSON(w, http.StatusOK, fmt.Sprintf(`{"previousPageCursor":null,"nextPageCursor":%s,"data":[%s]}`,
		next, strings.Join(records[offset:end], ",")))
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"errors":[{"code":0,"message":"TooManyRequests"}]}`,
		Headers: map[string]string{
			"Retry-After":  "1",
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"errors":[{"code":0,"message":"InternalServerError"}]}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}
