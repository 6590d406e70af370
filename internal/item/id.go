// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import (
	"strings"

	"github.com/holomush/wardrobe/internal/core"
)

// ID identifies an item. Item ids use the "i/" prefix and are unique across
// a whole space, nested items included.
type ID string

// IDPrefix is the required prefix of every item id.
const IDPrefix = "i/"

// NewID returns a fresh, time ordered item id.
func NewID() ID {
	return ID(IDPrefix + core.NewULID().String())
}

// IsValid reports whether the id has the item prefix and a name.
func (id ID) IsValid() bool {
	return strings.HasPrefix(string(id), IDPrefix) && len(id) > len(IDPrefix)
}

// CharacterID identifies a character.
type CharacterID string

// CharacterRef records a character together with the name it had at the time.
type CharacterRef struct {
	ID   CharacterID `json:"id"`
	Name string      `json:"name"`
}
