// Package roblox wraps the public Roblox web endpoints used to value a
// group's members: group roles, role members, user collectibles and the
// bulk catalog details lookup.
//
// Responses are decoded defensively. The same value appears under different
// field names across endpoint versions, so record fields are read through
// prioritized path lists (see fields.go) instead of fixed struct tags.
package roblox
