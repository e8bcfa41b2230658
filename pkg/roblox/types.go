package roblox

import "strconv"

// GroupID identifies a Roblox group. Valid ids are positive.
type GroupID int64

// String returns the decimal form used in URLs and cache scopes.
func (id GroupID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Role is one membership tier within a group.
type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Rank        int    `json:"rank,omitempty"`
	MemberCount int    `json:"memberCount,omitempty"`
}

// Member is a group member, unique by UserID.
type Member struct {
	UserID      int64  `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// CollectibleItem is one entry of a user's collectible inventory.
// RecentAveragePrice is 0 when the upstream record carries no price.
type CollectibleItem struct {
	AssetID            int64   `json:"assetId"`
	UserAssetID        int64   `json:"userAssetId,omitempty"`
	Name               string  `json:"name,omitempty"`
	RecentAveragePrice float64 `json:"recentAveragePrice"`
}

// AssetDetail is a catalog record reduced to what the creator filter needs.
type AssetDetail struct {
	AssetID   int64 `json:"assetId"`
	CreatorID int64 `json:"creatorId"`
}
