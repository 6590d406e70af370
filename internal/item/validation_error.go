// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import (
	"fmt"

	"github.com/holomush/wardrobe/internal/asset"
)

// ValidationError describes why an item, or a list of items, is invalid.
// It is a closed set: only the types in this file implement it.
// Validation returns nil when everything is valid.
type ValidationError interface {
	error
	// Kind returns the stable name of the problem.
	Kind() string
	validationError()
}

// BodypartProblem is the reason of a BodypartError.
type BodypartProblem string

// Bodypart problems.
const (
	BodypartOrder    BodypartProblem = "order"
	BodypartMultiple BodypartProblem = "multiple"
	BodypartMissing  BodypartProblem = "missing"
)

// BodypartError reports a bodypart out of canonical order, duplicated or missing.
type BodypartError struct {
	Problem  BodypartProblem
	Bodypart string
	Item     ID
}

// UnsatisfiedRequirement reports an item whose requirement is not met by the
// items worn before it.
type UnsatisfiedRequirement struct {
	Item        ID
	Asset       asset.ID
	Requirement string
}

// PoseConflict reports that the pose limits of the items admit no pose.
type PoseConflict struct{}

// TooManyItems reports a container holding more items than allowed.
// Item is empty for root level limits.
type TooManyItems struct {
	Item   ID
	Module string
	Limit  int
}

// ContentNotAllowed reports an item placed where it may not be.
type ContentNotAllowed struct {
	Item   ID
	Module string
	Asset  asset.ID
}

// SlotBlockedOrder reports an item occupying a slot blocked by an earlier item.
type SlotBlockedOrder struct {
	Slot string
	Item ID
}

// SlotFull reports a slot whose capacity is exceeded.
type SlotFull struct {
	Slot string
	Item ID
}

// DuplicateItemID reports an id used more than once.
type DuplicateItemID struct {
	Item ID
}

// CanOnlyBeInOneDevice reports a character occupying more than one device slot.
type CanOnlyBeInOneDevice struct {
	Character CharacterID
}

// InvalidState reports a structurally inconsistent state.
type InvalidState struct {
	Reason string
}

// Invalid reports an item failing its own validation.
type Invalid struct {
	Item   ID
	Reason string
}

func (BodypartError) validationError()          {}
func (UnsatisfiedRequirement) validationError() {}
func (PoseConflict) validationError()           {}
func (TooManyItems) validationError()           {}
func (ContentNotAllowed) validationError()      {}
func (SlotBlockedOrder) validationError()       {}
func (SlotFull) validationError()               {}
func (DuplicateItemID) validationError()        {}
func (CanOnlyBeInOneDevice) validationError()   {}
func (InvalidState) validationError()           {}
func (Invalid) validationError()                {}

// Kind implements ValidationError.
func (BodypartError) Kind() string { return "bodypartError" }

// Kind implements ValidationError.
func (UnsatisfiedRequirement) Kind() string { return "unsatisfiedRequirement" }

// Kind implements ValidationError.
func (PoseConflict) Kind() string { return "poseConflict" }

// Kind implements ValidationError.
func (TooManyItems) Kind() string { return "tooManyItems" }

// Kind implements ValidationError.
func (ContentNotAllowed) Kind() string { return "contentNotAllowed" }

// Kind implements ValidationError.
func (SlotBlockedOrder) Kind() string { return "slotBlockedOrder" }

// Kind implements ValidationError.
func (SlotFull) Kind() string { return "slotFull" }

// Kind implements ValidationError.
func (DuplicateItemID) Kind() string { return "duplicateItemId" }

// Kind implements ValidationError.
func (CanOnlyBeInOneDevice) Kind() string { return "canOnlyBeInOneDevice" }

// Kind implements ValidationError.
func (InvalidState) Kind() string { return "invalidState" }

// Kind implements ValidationError.
func (Invalid) Kind() string { return "invalid" }

func (e BodypartError) Error() string {
	return fmt.Sprintf("bodypart %s: %s (item %s)", e.Bodypart, e.Problem, e.Item)
}

func (e UnsatisfiedRequirement) Error() string {
	return fmt.Sprintf("item %s (%s) requires %q", e.Item, e.Asset, e.Requirement)
}

func (PoseConflict) Error() string {
	return "pose limits of the worn items are in conflict"
}

func (e TooManyItems) Error() string {
	if e.Item == "" {
		return fmt.Sprintf("too many items (limit %d)", e.Limit)
	}
	return fmt.Sprintf("too many items in %s/%s (limit %d)", e.Item, e.Module, e.Limit)
}

func (e ContentNotAllowed) Error() string {
	return fmt.Sprintf("%s is not allowed in %s/%s", e.Asset, e.Item, e.Module)
}

func (e SlotBlockedOrder) Error() string {
	return fmt.Sprintf("slot %s is blocked for item %s", e.Slot, e.Item)
}

func (e SlotFull) Error() string {
	return fmt.Sprintf("slot %s is full (item %s)", e.Slot, e.Item)
}

func (e DuplicateItemID) Error() string {
	return fmt.Sprintf("duplicate item id %s", e.Item)
}

func (e CanOnlyBeInOneDevice) Error() string {
	return fmt.Sprintf("character %s occupies more than one device", e.Character)
}

func (e InvalidState) Error() string {
	return "invalid state: " + e.Reason
}

func (e Invalid) Error() string {
	return fmt.Sprintf("item %s is invalid: %s", e.Item, e.Reason)
}
