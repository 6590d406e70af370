// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package state contains the immutable character, room and global states.
//
// States are never modified. Every ProduceWith method returns a new state
// that shares unchanged items with the old one, so comparing item slices or
// item pointers is a cheap change check. Validation results are memoized
// per instance.
package state

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/holomush/wardrobe/internal/asset"
	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/pose"
	"github.com/holomush/wardrobe/internal/validation"
)

// OverrideType is a kind of restriction override.
type OverrideType string

// Restriction override types.
const (
	// OverrideSafemode lifts all restrictions but limits interaction to oneself.
	OverrideSafemode OverrideType = "safemode"
	// OverrideTimeout blocks all interaction for a while.
	OverrideTimeout OverrideType = "timeout"
)

// RestrictionOverride suspends the normal restrictions of a character.
type RestrictionOverride struct {
	Type OverrideType `json:"type"`
	// AllowLeaveAt is the earliest time the override may end, unix milliseconds.
	AllowLeaveAt int64 `json:"allowLeaveAt,omitempty"`
}

// ActionData is an encoded action stored with an attempt.
type ActionData json.RawMessage

// MarshalJSON implements json.Marshaler.
func (d ActionData) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *ActionData) UnmarshalJSON(data []byte) error {
	*d = append((*d)[:0], data...)
	return nil
}

// JSONSchema implements jsonschema's custom schema hook.
func (ActionData) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object"}
}

// AttemptingAction is an action started with a delay, waiting to be finished.
type AttemptingAction struct {
	Action ActionData `json:"action"`
	// Start and FinishAfter are unix milliseconds.
	Start       int64 `json:"start"`
	FinishAfter int64 `json:"finishAfter"`
}

// CharacterState is what one character wears, its pose and its overrides.
type CharacterState struct {
	id                  item.CharacterID
	items               []*item.Item
	requestedPose       pose.Pose
	restrictionOverride *RestrictionOverride
	attempt             *AttemptingAction
	spaceID             string

	manager asset.Manager
	limits  validation.Limits
	cache   *characterCache
}

type characterCache struct {
	validOnce sync.Once
	validErr  item.ValidationError

	propsOnce sync.Once
	props     *item.Properties
	propsOK   bool
}

// NewCharacter returns a character wearing items. The state is not
// validated; see Validate.
func NewCharacter(manager asset.Manager, limits validation.Limits, id item.CharacterID, items []*item.Item) *CharacterState {
	return &CharacterState{
		id:            id,
		items:         items,
		requestedPose: pose.Default(),
		manager:       manager,
		limits:        limits,
		cache:         &characterCache{},
	}
}

func (c *CharacterState) with(mutate func(n *CharacterState)) *CharacterState {
	n := *c
	n.cache = &characterCache{}
	mutate(&n)
	return &n
}

// ID returns the character id.
func (c *CharacterState) ID() item.CharacterID { return c.id }

// Items returns the worn items. The slice must not be modified.
func (c *CharacterState) Items() []*item.Item { return c.items }

// Item returns the worn root item with the id, or nil.
func (c *CharacterState) Item(id item.ID) *item.Item {
	for _, it := range c.items {
		if it.ID() == id {
			return it
		}
	}
	return nil
}

// RequestedPose returns the pose the character asked for.
func (c *CharacterState) RequestedPose() pose.Pose { return c.requestedPose }

// ActualPose returns the requested pose forced into the limits of the worn items.
func (c *CharacterState) ActualPose() pose.Pose {
	props, ok := c.Properties()
	if !ok {
		return c.requestedPose
	}
	p, _ := props.PoseLimits.Force(c.requestedPose)
	return p
}

// RestrictionOverride returns the active override, or nil.
func (c *CharacterState) RestrictionOverride() *RestrictionOverride { return c.restrictionOverride }

// AttemptingAction returns the pending attempt, or nil.
func (c *CharacterState) AttemptingAction() *AttemptingAction { return c.attempt }

// SpaceID returns the space the character is in.
func (c *CharacterState) SpaceID() string { return c.spaceID }

// Manager returns the asset manager the state was built with.
func (c *CharacterState) Manager() asset.Manager { return c.manager }

// Limits returns the item limits of the state.
func (c *CharacterState) Limits() validation.Limits { return c.limits }

// Properties returns the accumulated properties of the worn items.
// ok is false when the items are not valid.
func (c *CharacterState) Properties() (props *item.Properties, ok bool) {
	c.cache.propsOnce.Do(func() {
		c.cache.props, c.cache.propsOK = validation.ResolveProperties(c.manager, c.items)
	})
	return c.cache.props, c.cache.propsOK
}

// ValidationContext returns the validation context of the worn items.
func (c *CharacterState) ValidationContext() validation.Context {
	return validation.Character(c.manager, c.id, c.limits)
}

// Validate checks the worn items. The result is memoized.
func (c *CharacterState) Validate() item.ValidationError {
	c.cache.validOnce.Do(func() {
		c.cache.validErr = validation.ValidateAll(c.ValidationContext(), c.items)
		if c.cache.validErr == nil && !c.requestedPose.Validate() {
			c.cache.validErr = item.InvalidState{Reason: "invalid pose"}
		}
	})
	return c.cache.validErr
}

// IsValid reports whether Validate finds no problem.
func (c *CharacterState) IsValid() bool { return c.Validate() == nil }

// ProduceWithItems returns the state wearing items instead.
func (c *CharacterState) ProduceWithItems(items []*item.Item) *CharacterState {
	return c.with(func(n *CharacterState) { n.items = items })
}

// ProduceWithPose returns the state with a new requested pose.
func (c *CharacterState) ProduceWithPose(p pose.Pose) *CharacterState {
	return c.with(func(n *CharacterState) { n.requestedPose = p.Clone() })
}

// ProduceWithView returns the state facing another direction.
func (c *CharacterState) ProduceWithView(v pose.View) *CharacterState {
	return c.with(func(n *CharacterState) {
		n.requestedPose = c.requestedPose.Clone()
		n.requestedPose.View = v
	})
}

// ProduceWithRestrictionOverride returns the state with an override, or
// without one when o is nil.
func (c *CharacterState) ProduceWithRestrictionOverride(o *RestrictionOverride) *CharacterState {
	return c.with(func(n *CharacterState) { n.restrictionOverride = o })
}

// ProduceWithAttempt returns the state with a pending attempt, or without
// one when a is nil.
func (c *CharacterState) ProduceWithAttempt(a *AttemptingAction) *CharacterState {
	return c.with(func(n *CharacterState) { n.attempt = a })
}

// ProduceWithSpaceID returns the state moved to another space.
func (c *CharacterState) ProduceWithSpaceID(spaceID string) *CharacterState {
	return c.with(func(n *CharacterState) { n.spaceID = spaceID })
}

// sameItems reports whether two item lists hold the same item instances.
func sameItems(a, b []*item.Item) bool {
	return slices.Equal(a, b)
}
