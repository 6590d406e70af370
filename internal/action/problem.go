// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package action

import (
	"github.com/holomush/wardrobe/internal/item"
)

// Problem is a reason an action is invalid. Problems are comparable values
// so duplicates can be dropped. The types in this package are the complete
// set.
type Problem interface {
	ProblemKind() string
	problem()
}

// InvalidAction means the action is malformed or structurally impossible.
type InvalidAction struct {
	Reason string
}

// TargetNotFound means the target character is not in the space.
type TargetNotFound struct {
	Character item.CharacterID
}

// ItemNotFound means an item path did not resolve.
type ItemNotFound struct {
	Item item.ID
}

// ValidationFailed means the resulting state would be invalid.
type ValidationFailed struct {
	Error item.ValidationError
}

// Restricted means policy forbids the action.
type Restricted struct {
	Restriction Restriction
}

// ModuleActionFailed means a module refused the action, e.g. a wrong password.
type ModuleActionFailed struct {
	Outcome item.Outcome
	Reason  item.FailureReason
}

// AttemptProblem is a problem with a delayed action attempt.
type AttemptProblem struct {
	Reason AttemptReason
}

// AttemptReason explains an AttemptProblem.
type AttemptReason string

// Attempt problems.
const (
	AttemptInProgress AttemptReason = "inProgress"
	AttemptNone       AttemptReason = "none"
	AttemptNotReady   AttemptReason = "notReady"
	AttemptCorrupt    AttemptReason = "corrupt"
)

func (InvalidAction) ProblemKind() string      { return "invalidAction" }
func (TargetNotFound) ProblemKind() string     { return "targetNotFound" }
func (ItemNotFound) ProblemKind() string       { return "itemNotFound" }
func (ValidationFailed) ProblemKind() string   { return "validationFailed" }
func (Restricted) ProblemKind() string         { return "restricted" }
func (ModuleActionFailed) ProblemKind() string { return "moduleActionFailed" }
func (AttemptProblem) ProblemKind() string     { return "attempt" }

func (InvalidAction) problem()      {}
func (TargetNotFound) problem()     {}
func (ItemNotFound) problem()       {}
func (ValidationFailed) problem()   {}
func (Restricted) problem()         {}
func (ModuleActionFailed) problem() {}
func (AttemptProblem) problem()     {}

// Restriction is a policy reason an action is not allowed. Restrictions are
// produced by a RestrictionsManager. The types in this package are the
// complete set.
type Restriction interface {
	RestrictionKind() string
	restriction()
}

// PermissionPrompt means the target must first confirm the permission.
type PermissionPrompt struct {
	Permission Permission
}

// PermissionForbidden means the target does not grant the permission.
type PermissionForbidden struct {
	Permission Permission
}

// BlockedHands means the player's hands are bound.
type BlockedHands struct{}

// BlockedAddRemove means an item may not be added or removed.
type BlockedAddRemove struct {
	Item item.ID
	Self bool
}

// BlockedModule means a module of an item may not be used.
type BlockedModule struct {
	Item   item.ID
	Module string
	Self   bool
}

// SafemodeInteractOther means a player in safemode may only act on itself.
type SafemodeInteractOther struct{}

// InSafemode means the target is in safemode and cannot be acted on by others.
type InSafemode struct {
	Character item.CharacterID
}

// TimeoutActive means the player cannot act during a timeout.
type TimeoutActive struct{}

// ModifyBodyOthers means only the owner may change its bodyparts.
type ModifyBodyOthers struct{}

// NotTransferable means the item cannot leave its container.
type NotTransferable struct {
	Item item.ID
}

// RoomSetting means the room disallows the action.
type RoomSetting struct {
	Setting string
}

// OverrideLocked means a restriction override cannot be left yet.
type OverrideLocked struct {
	AllowLeaveAt int64
}

// SelfOnly means the action may only target the player.
type SelfOnly struct{}

func (PermissionPrompt) RestrictionKind() string      { return "permissionPrompt" }
func (PermissionForbidden) RestrictionKind() string   { return "permissionForbidden" }
func (BlockedHands) RestrictionKind() string          { return "blockedHands" }
func (BlockedAddRemove) RestrictionKind() string      { return "blockedAddRemove" }
func (BlockedModule) RestrictionKind() string         { return "blockedModule" }
func (SafemodeInteractOther) RestrictionKind() string { return "safemodeInteractOther" }
func (InSafemode) RestrictionKind() string            { return "inSafemode" }
func (TimeoutActive) RestrictionKind() string         { return "timeoutActive" }
func (ModifyBodyOthers) RestrictionKind() string      { return "modifyBodyOthers" }
func (NotTransferable) RestrictionKind() string       { return "notTransferable" }
func (RoomSetting) RestrictionKind() string           { return "roomSetting" }
func (OverrideLocked) RestrictionKind() string        { return "overrideLocked" }
func (SelfOnly) RestrictionKind() string              { return "selfOnly" }

func (PermissionPrompt) restriction()      {}
func (PermissionForbidden) restriction()   {}
func (BlockedHands) restriction()          {}
func (BlockedAddRemove) restriction()      {}
func (BlockedModule) restriction()         {}
func (SafemodeInteractOther) restriction() {}
func (InSafemode) restriction()            {}
func (TimeoutActive) restriction()         {}
func (ModifyBodyOthers) restriction()      {}
func (NotTransferable) restriction()       {}
func (RoomSetting) restriction()           {}
func (OverrideLocked) restriction()        {}
func (SelfOnly) restriction()              {}

// PermissionKind is a class of permission a character grants to others.
type PermissionKind string

// Permission kinds.
const (
	// PermissionInteract covers adding, removing and changing worn items.
	PermissionInteract PermissionKind = "interact"
	// PermissionModifyBody covers changing bodyparts.
	PermissionModifyBody PermissionKind = "modifyBody"
	// PermissionLockItems covers locking and unlocking.
	PermissionLockItems PermissionKind = "lockItems"
	// PermissionPose covers changing the pose.
	PermissionPose PermissionKind = "pose"
)

// Permission is something a player needs from a target character. Scope is
// the asset id the permission applies to, empty for character wide ones.
type Permission struct {
	Target item.CharacterID `json:"target"`
	Kind   PermissionKind   `json:"kind"`
	Scope  string           `json:"scope,omitempty"`
}

// String formats the permission as "kind:scope", the form grants match.
func (p Permission) String() string {
	if p.Scope == "" {
		return string(p.Kind)
	}
	return string(p.Kind) + ":" + p.Scope
}

// Grant is how a target answers a permission request.
type Grant string

// Grants.
const (
	GrantAllowed   Grant = "allowed"
	GrantPrompt    Grant = "prompt"
	GrantForbidden Grant = "forbidden"
)
