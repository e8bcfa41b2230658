package roblox

import (
	"context"
	"fmt"
	"net/http"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/client"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/pagination"
)

// Collectibles returns a user's collectible inventory in upstream order.
// scope is the cache scope for the pages. Entries without an asset id are
// dropped. A private inventory returns an error wrapping both
// ErrInventoryHidden and the 403 *client.HTTPError.
func (a *API) Collectibles(ctx context.Context, scope string, userID int64) ([]CollectibleItem, error) {
	entries, err := a.pages.FetchAll(ctx, pagination.Request{
		Scope: scope,
		URL: func(cursor string) string {
			return a.config.Endpoints.CollectiblesURL(userID, cursor)
		},
	})
	if err != nil {
		if client.IsStatus(err, http.StatusForbidden) {
			return nil, fmt.Errorf("user %d: %w: %w", userID, ErrInventoryHidden, err)
		}
		return nil, fmt.Errorf("fetch collectibles for user %d: %w", userID, err)
	}

	items := make([]CollectibleItem, 0, len(entries))
	for _, entry := range entries {
		if item, ok := parseCollectible(entry); ok {
			items = append(items, item)
		}
	}
	return items, nil
}
