package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// keyPrefix is prepended to every cache key.
const keyPrefix = "rbx"

// CacheKey identifies a cached Roblox page.
type CacheKey struct {
	// Scope groups keys for Purge (e.g. the group id of the search).
	// Empty means "global".
	Scope string

	// Endpoint is host plus path (e.g. "groups.roblox.com/v1/groups/7/roles")
	Endpoint string

	// QueryParams are the query parameters (e.g. {"cursor": "abc"})
	QueryParams url.Values
}

// KeyFromURL builds a key from a request URL. Unparseable URLs are kept
// verbatim as the endpoint.
func KeyFromURL(scope, rawURL string) CacheKey {
	u, err := url.Parse(rawURL)
	if err != nil {
		return CacheKey{Scope: scope, Endpoint: rawURL}
	}
	return CacheKey{
		Scope:       scope,
		Endpoint:    u.Host + u.Path,
		QueryParams: u.Query(),
	}
}

// String generates a deterministic cache key string.
// Format: rbx:scope:endpoint:query1=val1:query2=val2
//
// Example:
//
//	rbx:7:groups.roblox.com/v1/groups/7/roles/1/users:cursor=abc:limit=100
func (k CacheKey) String() string {
	parts := []string{ScopePrefix(k.Scope) + strings.Trim(k.Endpoint, "/")}

	// Add query params (sorted for determinism)
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.QueryParams.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}

// ScopePrefix returns the prefix shared by every key in scope.
func ScopePrefix(scope string) string {
	if scope == "" {
		scope = "global"
	}
	return keyPrefix + ":" + scope + ":"
}
