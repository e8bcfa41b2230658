package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/client"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/roblox"
)

// UserMessage renders err as one line for the person who started the search.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		invalid  *roblox.InvalidInputError
		notFound *roblox.GroupNotFoundError
		partial  *roblox.PartialBatchError
		httpErr  *client.HTTPError
		parseErr *client.ParseError
	)

	switch {
	case errors.As(err, &invalid):
		return "Invalid Roblox group link. Paste a group URL or a numeric group id."
	case errors.Is(err, ErrSuperseded):
		return "Search was replaced by a newer search for the same group."
	case errors.Is(err, context.Canceled):
		return "Search cancelled."
	case errors.Is(err, context.DeadlineExceeded):
		return "Search timed out."
	case errors.As(err, &notFound):
		return "No roles found or group not accessible."
	case errors.As(err, &partial):
		return fmt.Sprintf("Could not look up the creator of %d items.", len(partial.Unresolved))
	case errors.Is(err, roblox.ErrInventoryHidden):
		return "A member's inventory is private."
	case errors.As(err, &httpErr):
		if httpErr.Status == http.StatusTooManyRequests {
			return "Roblox is rate limiting requests. Try again in a minute."
		}
		return fmt.Sprintf("Roblox returned HTTP %d %s.", httpErr.Status, httpErr.StatusText)
	case errors.As(err, &parseErr):
		return "Roblox returned an unexpected response."
	default:
		return "Error: " + err.Error()
	}
}
