// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package action

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/manipulator"
	"github.com/holomush/wardrobe/internal/state"
)

// InteractionKind classifies what a player does.
type InteractionKind string

// Interaction kinds.
const (
	// InteractAddRemove adds an item to or removes it from a container.
	InteractAddRemove InteractionKind = "addRemove"
	// InteractModify changes an item in place: color, name, order.
	InteractModify InteractionKind = "modify"
	// InteractUseModule performs a module action.
	InteractUseModule InteractionKind = "useModule"
	// InteractLock locks or unlocks a lock.
	InteractLock InteractionKind = "lock"
	// InteractPose changes the pose or view of a character.
	InteractPose InteractionKind = "pose"
	// InteractDevice deploys, enters or leaves a room device.
	InteractDevice InteractionKind = "device"
	// InteractSelf changes something only the player may change.
	InteractSelf InteractionKind = "self"
)

// Interaction is one thing a player does, as presented to the
// RestrictionsManager.
type Interaction struct {
	Kind   InteractionKind
	Target manipulator.Target
	// Container is the container of Item.
	Container manipulator.ContainerPath
	// Item is the item acted on; nil for interactions with the character.
	Item *item.Item
	// Module is set for InteractUseModule and InteractLock.
	Module string
}

// Check is the verdict of a RestrictionsManager.
type Check struct {
	Restrictions []Restriction
	// Permissions lists every permission the interaction needs, granted or not.
	Permissions []Permission
}

// RestrictionsManager evaluates game rules. The pipeline collects what it
// returns; it owns no policy itself.
type RestrictionsManager interface {
	CheckInteraction(g *state.GlobalState, player item.CharacterID, in Interaction) Check
}

// Context describes who performs an action and when.
type Context struct {
	Player     item.CharacterID
	PlayerName string
	Now        time.Time
	// Restrictions evaluates policy; nil allows everything.
	Restrictions RestrictionsManager
	// Rand drives randomize; nil uses the global source.
	Rand *rand.Rand
	// Logger receives debug output; nil uses slog.Default.
	Logger *slog.Logger
}

func (c Context) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c Context) intN(n int) int {
	if c.Rand != nil {
		return c.Rand.IntN(n)
	}
	return rand.IntN(n)
}

func (c Context) shuffle(n int, swap func(i, j int)) {
	if c.Rand != nil {
		c.Rand.Shuffle(n, swap)
		return
	}
	rand.Shuffle(n, swap)
}

func (c Context) itemContext(target manipulator.Target) item.ActionContext {
	return item.ActionContext{
		Player:     c.Player,
		PlayerName: c.PlayerName,
		Target:     target.Character,
		Now:        c.Now,
	}
}
