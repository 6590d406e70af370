// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import (
	"log/slog"
	"time"

	"github.com/holomush/wardrobe/internal/asset"
)

// Location is where an item sits in the item tree.
type Location string

// Item locations.
const (
	// LocationWorn is the root item list of a character.
	LocationWorn Location = "worn"
	// LocationAttached is the inside of a lock slot module.
	LocationAttached Location = "attached"
	// LocationStored is the inside of a storage module.
	LocationStored Location = "stored"
	// LocationRoomInventory is the root item list of a room.
	LocationRoomInventory Location = "roomInventory"
)

// DefaultMaxDepth is the default nesting limit of container modules.
const DefaultMaxDepth = 8

// ValidationContext describes where an item is being validated.
type ValidationContext struct {
	Location Location
	// Character is the wearer for LocationWorn.
	Character CharacterID
	// Depth is the number of container modules above the item.
	Depth int
	// MaxDepth limits Depth; zero selects DefaultMaxDepth.
	MaxDepth int
}

func (c ValidationContext) maxDepth() int {
	if c.MaxDepth > 0 {
		return c.MaxDepth
	}
	return DefaultMaxDepth
}

// nested returns the context of an item inside a container module of the
// item being validated.
func (c ValidationContext) nested(loc Location) ValidationContext {
	return ValidationContext{
		Location:  loc,
		Character: c.Character,
		Depth:     c.Depth + 1,
		MaxDepth:  c.MaxDepth,
	}
}

// LoadContext carries the collaborators of bundle loading.
type LoadContext struct {
	Manager asset.Manager
	// Logger receives warnings about repaired data; nil uses slog.Default.
	Logger *slog.Logger
}

func (c LoadContext) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// ActionContext describes who performs a state transition on an item.
type ActionContext struct {
	Player     CharacterID
	PlayerName string
	// Target is the character wearing the item; empty for room items.
	Target CharacterID
	Now    time.Time
}

func (c ActionContext) playerRef() *CharacterRef {
	return &CharacterRef{ID: c.Player, Name: c.PlayerName}
}
