package roblox

import (
	"encoding/json"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// path is a key path into a JSON record, e.g. path{"asset", "id"}.
type path []interface{}

// Prioritized field paths. The first path holding a non-zero value wins,
// so a 0 under an earlier name falls through to the next one.
var (
	assetIDPaths     = []path{{"assetId"}, {"asset", "id"}, {"id"}}
	userAssetIDPaths = []path{{"userAssetId"}}
	itemNamePaths    = []path{{"name"}, {"assetName"}, {"asset", "name"}}
	pricePaths       = []path{
		{"recentAveragePrice"},
		{"recentAveragePriceInRobux"},
		{"recentAveragePriceInRobuxRAP"},
		{"rap"},
	}

	detailIDPaths  = []path{{"id"}, {"assetId"}}
	creatorIDPaths = []path{{"creatorTargetId"}, {"creator", "id"}, {"creator", "creatorTargetId"}}

	userIDPaths      = []path{{"user", "userId"}, {"user", "id"}}
	usernamePaths    = []path{{"user", "username"}, {"user", "name"}}
	displayNamePaths = []path{{"user", "displayName"}}

	roleIDPaths          = []path{{"id"}}
	roleNamePaths        = []path{{"name"}}
	roleRankPaths        = []path{{"rank"}}
	roleMemberCountPaths = []path{{"memberCount"}}
)

// numeric returns v when it holds a number or a numeric string.
func numeric(v jsoniter.Any) (jsoniter.Any, bool) {
	switch v.ValueType() {
	case jsoniter.NumberValue, jsoniter.StringValue:
		return v, true
	default:
		return nil, false
	}
}

func firstInt64(record []byte, paths []path) int64 {
	for _, p := range paths {
		if v, ok := numeric(jsoniter.Get(record, p...)); ok {
			if n := v.ToInt64(); n != 0 {
				return n
			}
		}
	}
	return 0
}

func firstFloat64(record []byte, paths []path) float64 {
	for _, p := range paths {
		if v, ok := numeric(jsoniter.Get(record, p...)); ok {
			if f := v.ToFloat64(); f != 0 {
				return f
			}
		}
	}
	return 0
}

func firstString(record []byte, paths []path) string {
	for _, p := range paths {
		v := jsoniter.Get(record, p...)
		if v.ValueType() != jsoniter.StringValue {
			continue
		}
		if s := v.ToString(); s != "" {
			return s
		}
	}
	return ""
}

// records returns the first array found under keys. A document that is
// itself an array is returned as is when topLevel is set. No array yields
// an empty result.
func records(body []byte, topLevel bool, keys ...string) ([]json.RawMessage, error) {
	var out []json.RawMessage
	if jsoniter.Get(body).ValueType() == jsoniter.ArrayValue {
		if !topLevel {
			return nil, nil
		}
		err := jsonAPI.Unmarshal(body, &out)
		return out, err
	}

	var envelope map[string]json.RawMessage
	if err := jsonAPI.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	for _, key := range keys {
		raw, ok := envelope[key]
		if !ok || jsoniter.Get(raw).ValueType() != jsoniter.ArrayValue {
			continue
		}
		if err := jsonAPI.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, nil
}

func parseRole(record []byte) (Role, bool) {
	role := Role{
		ID:          firstInt64(record, roleIDPaths),
		Name:        firstString(record, roleNamePaths),
		Rank:        int(firstInt64(record, roleRankPaths)),
		MemberCount: int(firstInt64(record, roleMemberCountPaths)),
	}
	return role, role.ID != 0
}

// parseMember reads a role member entry, {"user": {...}}. Entries without a
// user object or user id are rejected.
func parseMember(record []byte) (Member, bool) {
	if jsoniter.Get(record, "user").ValueType() != jsoniter.ObjectValue {
		return Member{}, false
	}
	m := Member{
		UserID:      firstInt64(record, userIDPaths),
		Username:    firstString(record, usernamePaths),
		DisplayName: firstString(record, displayNamePaths),
	}
	return m, m.UserID != 0
}

// parseCollectible reads an inventory entry. Entries without an asset id are
// rejected; a missing or negative price reads as 0.
func parseCollectible(record []byte) (CollectibleItem, bool) {
	item := CollectibleItem{
		AssetID:            firstInt64(record, assetIDPaths),
		UserAssetID:        firstInt64(record, userAssetIDPaths),
		Name:               firstString(record, itemNamePaths),
		RecentAveragePrice: firstFloat64(record, pricePaths),
	}
	if item.RecentAveragePrice < 0 {
		item.RecentAveragePrice = 0
	}
	return item, item.AssetID != 0
}

func parseAssetDetail(record []byte) (AssetDetail, bool) {
	d := AssetDetail{
		AssetID:   firstInt64(record, detailIDPaths),
		CreatorID: firstInt64(record, creatorIDPaths),
	}
	return d, d.AssetID != 0 && d.CreatorID != 0
}
