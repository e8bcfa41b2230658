package roblox

import (
	"fmt"
	"net/url"
	"strings"
)

// Endpoints holds the base URLs of the Roblox web APIs. Tests point them at
// a mock server.
type Endpoints struct {
	Groups    string
	Inventory string
	Catalog   string
}

// DefaultEndpoints returns the public Roblox API hosts.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Groups:    "https://groups.roblox.com",
		Inventory: "https://inventory.roblox.com",
		Catalog:   "https://catalog.roblox.com",
	}
}

// PageLimit is the page size requested from list endpoints.
const PageLimit = 100

// RolesURL returns the role list URL of a group.
func (e Endpoints) RolesURL(groupID GroupID) string {
	return fmt.Sprintf("%s/v1/groups/%d/roles", trim(e.Groups), groupID)
}

// RoleUsersURL returns one page of a role's member list.
func (e Endpoints) RoleUsersURL(groupID GroupID, roleID int64, cursor string) string {
	return fmt.Sprintf("%s/v1/groups/%d/roles/%d/users?limit=%d&sortOrder=Asc&cursor=%s",
		trim(e.Groups), groupID, roleID, PageLimit, url.QueryEscape(cursor))
}

// CollectiblesURL returns one page of a user's collectible inventory.
func (e Endpoints) CollectiblesURL(userID int64, cursor string) string {
	return fmt.Sprintf("%s/v1/users/%d/assets/collectibles?limit=%d&sortOrder=Asc&cursor=%s",
		trim(e.Inventory), userID, PageLimit, url.QueryEscape(cursor))
}

// CatalogDetailsURL returns the bulk item details URL.
func (e Endpoints) CatalogDetailsURL() string {
	return trim(e.Catalog) + "/v1/catalog/items/details"
}

// ProfileURL returns the public profile page of a user.
func ProfileURL(userID int64) string {
	return fmt.Sprintf("https://www.roblox.com/users/%d/profile", userID)
}

func trim(base string) string {
	return strings.TrimRight(base, "/")
}
