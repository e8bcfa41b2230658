package roblox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/client"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/pagination"
)

// Roles returns the roles of a group in upstream order. A 404 (or the 400
// Roblox answers for unknown ids) and an empty role list both yield
// *GroupNotFoundError.
func (a *API) Roles(ctx context.Context, groupID GroupID) ([]Role, error) {
	url := a.config.Endpoints.RolesURL(groupID)

	var raw json.RawMessage
	err := client.Retry(ctx, a.config.Retry, func() error {
		return a.client.GetJSON(ctx, url, &raw)
	})
	if err != nil {
		if client.IsStatus(err, http.StatusNotFound) || client.IsStatus(err, http.StatusBadRequest) {
			return nil, &GroupNotFoundError{GroupID: groupID, Err: err}
		}
		return nil, fmt.Errorf("fetch roles for group %d: %w", groupID, err)
	}

	entries, err := records(raw, false, "roles", "data")
	if err != nil {
		return nil, &client.ParseError{URL: url, Err: err}
	}

	roles := make([]Role, 0, len(entries))
	for _, entry := range entries {
		if role, ok := parseRole(entry); ok {
			roles = append(roles, role)
		}
	}
	if len(roles) == 0 {
		return nil, &GroupNotFoundError{GroupID: groupID}
	}

	a.logger.Debug().
		Int64("group_id", int64(groupID)).
		Int("roles", len(roles)).
		Msg("Fetched group roles")

	return roles, nil
}

// RoleMembers returns every member holding roleID. Entries without a user
// object are dropped.
func (a *API) RoleMembers(ctx context.Context, groupID GroupID, roleID int64) ([]Member, error) {
	entries, err := a.pages.FetchAll(ctx, pagination.Request{
		Scope: groupID.String(),
		URL: func(cursor string) string {
			return a.config.Endpoints.RoleUsersURL(groupID, roleID, cursor)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch members of role %d in group %d: %w", roleID, groupID, err)
	}

	members := make([]Member, 0, len(entries))
	for _, entry := range entries {
		if m, ok := parseMember(entry); ok {
			members = append(members, m)
		}
	}
	return members, nil
}

// ResolveMembers enumerates every role of the group and merges the role
// member lists by UserID. A user listed under several roles keeps the
// position of its first appearance and the fields of its last. onRole, when
// set, is called before each role is fetched with its 1-based position.
func (a *API) ResolveMembers(ctx context.Context, groupID GroupID, onRole func(position, total int, role Role)) ([]Member, error) {
	roles, err := a.Roles(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var members []Member
	index := make(map[int64]int)

	for i, role := range roles {
		if onRole != nil {
			onRole(i+1, len(roles), role)
		}

		roleMembers, err := a.RoleMembers(ctx, groupID, role.ID)
		if err != nil {
			return nil, err
		}

		for _, m := range roleMembers {
			if at, ok := index[m.UserID]; ok {
				members[at] = m
				continue
			}
			index[m.UserID] = len(members)
			members = append(members, m)
		}
	}

	a.logger.Info().
		Int64("group_id", int64(groupID)).
		Int("roles", len(roles)).
		Int("members", len(members)).
		Msg("Resolved group members")

	return members, nil
}
