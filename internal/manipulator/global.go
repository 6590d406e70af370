// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package manipulator

import (
	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/state"
)

// Target selects a root list of a space: a character, or the room when
// Character is empty.
type Target struct {
	Character item.CharacterID `json:"character,omitempty"`
}

// RoomTarget selects the room inventory.
var RoomTarget = Target{}

// CharacterTarget selects the worn items of a character.
func CharacterTarget(id item.CharacterID) Target { return Target{Character: id} }

// IsRoom reports whether the target is the room.
func (t Target) IsRoom() bool { return t.Character == "" }

// GlobalManipulator edits a global state. Every accepted edit immediately
// produces a new state, so later edits see earlier ones. Room edits relink
// worn device parts without revalidation.
type GlobalManipulator struct {
	state *state.GlobalState
}

// NewGlobal returns a manipulator starting from g.
func NewGlobal(g *state.GlobalState) *GlobalManipulator {
	return &GlobalManipulator{state: g}
}

// State returns the current state. It is not validated.
func (g *GlobalManipulator) State() *state.GlobalState { return g.state }

// Character returns the current state of a character, or nil.
func (g *GlobalManipulator) Character(id item.CharacterID) *state.CharacterState {
	return g.state.Character(id)
}

// Root returns the root manipulator of a target. ok is false for unknown
// characters. A root reads the target once; get a new one after editing
// another target.
func (g *GlobalManipulator) Root(t Target) (*RootManipulator, bool) {
	manager := g.state.Manager()
	if t.IsRoom() {
		return NewRoot(manager, g.state.Room().Items(), func(items []*item.Item) {
			g.state = g.state.ProduceWithRoom(g.state.Room().ProduceWithItems(items), false)
		}), true
	}
	ch := g.state.Character(t.Character)
	if ch == nil {
		return nil, false
	}
	id := t.Character
	return NewRoot(manager, ch.Items(), func(items []*item.Item) {
		g.state = g.state.ProduceWithCharacter(g.state.Character(id).ProduceWithItems(items))
	}), true
}

// Open returns the manipulator of a container of a target.
func (g *GlobalManipulator) Open(t Target, path ContainerPath) (Manipulator, bool) {
	root, ok := g.Root(t)
	if !ok {
		return nil, false
	}
	return Open(root, path)
}

// Items returns the root items of a target, nil for unknown characters.
func (g *GlobalManipulator) Items(t Target) []*item.Item {
	if t.IsRoom() {
		return g.state.Room().Items()
	}
	if ch := g.state.Character(t.Character); ch != nil {
		return ch.Items()
	}
	return nil
}

// Find returns the item at a path of a target, or nil.
func (g *GlobalManipulator) Find(t Target, path ItemPath) *item.Item {
	return Find(g.Items(t), path)
}

// ProduceCharacter replaces a character with the result of fn.
func (g *GlobalManipulator) ProduceCharacter(id item.CharacterID, fn func(*state.CharacterState) *state.CharacterState) bool {
	ch := g.state.Character(id)
	if ch == nil {
		return false
	}
	g.state = g.state.ProduceWithCharacter(fn(ch))
	return true
}

// ProduceRoom replaces the room with the result of fn.
func (g *GlobalManipulator) ProduceRoom(fn func(*state.RoomState) *state.RoomState) {
	g.state = g.state.ProduceWithRoom(fn(g.state.Room()), false)
}
