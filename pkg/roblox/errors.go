package roblox

import (
	"errors"
	"fmt"
)

// ErrInventoryHidden is returned when a user's inventory is not public.
var ErrInventoryHidden = errors.New("inventory is private")

// InvalidInputError is returned when no group id can be parsed from input.
type InvalidInputError struct {
	Input string
}

// Error implements the error interface.
func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("could not find a group id in %q", e.Input)
}

// GroupNotFoundError is returned when the roles endpoint reports the group
// as missing or returns no roles.
type GroupNotFoundError struct {
	GroupID GroupID
	Err     error
}

// Error implements the error interface.
func (e *GroupNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("group %d not found or not accessible: %v", e.GroupID, e.Err)
	}
	return fmt.Sprintf("group %d not found or not accessible", e.GroupID)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *GroupNotFoundError) Unwrap() error {
	return e.Err
}

// PartialBatchError is returned by AssetCreators when one or more detail
// batches failed. The creators of the other batches are still returned.
type PartialBatchError struct {
	// Unresolved lists the asset ids of the failed batches.
	Unresolved []int64

	// Failed and Batches count failed and attempted batches.
	Failed  int
	Batches int

	// Err is the first batch failure.
	Err error
}

// Error implements the error interface.
func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("asset details: %d of %d batches failed, %d assets unresolved: %v",
		e.Failed, e.Batches, len(e.Unresolved), e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *PartialBatchError) Unwrap() error {
	return e.Err
}
