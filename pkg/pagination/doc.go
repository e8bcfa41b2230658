// Package pagination walks cursor-paginated Roblox collections.
//
// Roblox list endpoints return one page per request:
//
//	{"data": [...], "nextPageCursor": "abc"}
//
// Some endpoints name the cursor "nextCursor" instead. A null, empty or
// absent cursor ends the collection. The fetcher requests pages strictly in
// order, because each cursor comes from the previous page.
//
// Example usage:
//
//	fetcher := pagination.New(robloxClient, cache.NewMemoryStore(), pagination.DefaultConfig())
//	items, err := fetcher.FetchAll(ctx, pagination.Request{
//		Scope: "4199740",
//		URL: func(cursor string) string {
//			return "https://groups.roblox.com/v1/groups/4199740/roles/1/users?limit=100&sortOrder=Asc&cursor=" + url.QueryEscape(cursor)
//		},
//	})
//
// The fetcher:
//   - Stops when a cursor repeats, returning the pages gathered so far
//   - Retries a failing page with the configured RetryConfig
//   - Fails the whole call if a page still fails (no partial collections)
//   - Serves pages from the cache store when one is configured
package pagination
