// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package state

import (
	"maps"
	"slices"
	"sync"

	"github.com/holomush/wardrobe/internal/asset"
	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/validation"
)

// GlobalState is one room together with every character in it. It is the
// unit of validity: it is valid when the room, every character and the
// links between them are.
type GlobalState struct {
	room       *RoomState
	characters map[item.CharacterID]*CharacterState
	cache      *globalCache
}

type globalCache struct {
	once sync.Once
	err  item.ValidationError
}

// NewGlobal returns a global state of a room and characters.
func NewGlobal(room *RoomState, characters ...*CharacterState) *GlobalState {
	g := &GlobalState{
		room:       room,
		characters: make(map[item.CharacterID]*CharacterState, len(characters)),
		cache:      &globalCache{},
	}
	for _, c := range characters {
		g.characters[c.ID()] = c
	}
	return g
}

func (g *GlobalState) with(mutate func(n *GlobalState)) *GlobalState {
	n := &GlobalState{room: g.room, characters: maps.Clone(g.characters), cache: &globalCache{}}
	mutate(n)
	return n
}

// Room returns the room state.
func (g *GlobalState) Room() *RoomState { return g.room }

// Character returns the state of a character, or nil.
func (g *GlobalState) Character(id item.CharacterID) *CharacterState { return g.characters[id] }

// CharacterIDs returns the ids of all characters in sorted order.
func (g *GlobalState) CharacterIDs() []item.CharacterID {
	return slices.Sorted(maps.Keys(g.characters))
}

// Characters returns all character states ordered by id.
func (g *GlobalState) Characters() []*CharacterState {
	ids := g.CharacterIDs()
	result := make([]*CharacterState, 0, len(ids))
	for _, id := range ids {
		result = append(result, g.characters[id])
	}
	return result
}

// Manager returns the asset manager of the room.
func (g *GlobalState) Manager() asset.Manager { return g.room.Manager() }

// ProduceWithCharacter adds or replaces a character.
func (g *GlobalState) ProduceWithCharacter(c *CharacterState) *GlobalState {
	return g.with(func(n *GlobalState) { n.characters[c.ID()] = c })
}

// WithoutCharacter removes a character and frees the device slots it occupied.
func (g *GlobalState) WithoutCharacter(id item.CharacterID) *GlobalState {
	if _, ok := g.characters[id]; !ok {
		return g
	}
	removed := g.with(func(n *GlobalState) { delete(n.characters, id) })
	items, freed := freeSlotsOf(g.room.Items(), id)
	if !freed {
		return removed
	}
	return removed.ProduceWithRoom(g.room.ProduceWithItems(items), false)
}

func freeSlotsOf(items []*item.Item, id item.CharacterID) ([]*item.Item, bool) {
	result := slices.Clone(items)
	freed := false
	for i, it := range result {
		for slot, occupant := range it.Occupants() {
			if occupant != id {
				continue
			}
			if next := result[i].ChangeSlotOccupancy(slot, ""); next != nil {
				result[i] = next
				freed = true
			}
		}
	}
	return result, freed
}

// ProduceWithRoom replaces the room and relinks every character's wearable
// parts to it; see UpdateRoomStateLink.
func (g *GlobalState) ProduceWithRoom(room *RoomState, revalidate bool) *GlobalState {
	return g.with(func(n *GlobalState) { n.room = room }).UpdateRoomStateLink(revalidate)
}

// UpdateRoomStateLink points every worn wearable part at the current version
// of its room device. Parts whose device is gone, packed up or no longer
// held by the wearer are removed. With revalidate, characters that lost a
// part also drop the items that no longer validate without it.
func (g *GlobalState) UpdateRoomStateLink(revalidate bool) *GlobalState {
	lookup := g.room.Item
	changed := false
	characters := maps.Clone(g.characters)
	for id, c := range g.characters {
		items, detached := relinkItems(c.Items(), id, lookup)
		if sameItems(items, c.Items()) {
			continue
		}
		if detached && revalidate {
			items = pruneToValid(c.ValidationContext(), items, nil)
		}
		characters[id] = c.ProduceWithItems(items)
		changed = true
	}
	if !changed {
		return g
	}
	return &GlobalState{room: g.room, characters: characters, cache: &globalCache{}}
}

// relinkItems resolves wearable parts of a character against the room.
func relinkItems(items []*item.Item, wearer item.CharacterID, lookup func(item.ID) *item.Item) ([]*item.Item, bool) {
	result := make([]*item.Item, 0, len(items))
	detached := false
	for _, it := range items {
		if it.Type() != asset.TypeRoomDeviceWearablePart {
			result = append(result, it)
			continue
		}
		resolved, ok := it.ResolveLink(lookup)
		if ok {
			occupant, occupied := resolved.Device().SlotOccupancy(resolved.Link().Slot)
			ok = occupied && occupant == wearer
		}
		if !ok {
			detached = true
			continue
		}
		result = append(result, resolved)
	}
	return result, detached
}

// Validate checks the room, every character and the links between them.
// The result is memoized.
func (g *GlobalState) Validate() item.ValidationError {
	g.cache.once.Do(func() { g.cache.err = g.validate() })
	return g.cache.err
}

// IsValid reports whether Validate finds no problem.
func (g *GlobalState) IsValid() bool { return g.Validate() == nil }

func (g *GlobalState) validate() item.ValidationError {
	if err := g.room.Validate(); err != nil {
		return err
	}
	characters := g.Characters()
	for _, c := range characters {
		if err := c.Validate(); err != nil {
			return err
		}
	}

	seen := make(map[item.ID]bool)
	if err := validation.CollectIDs(g.room.Items(), seen); err != nil {
		return err
	}
	total := validation.CountItems(g.room.Items())
	for _, c := range characters {
		if err := validation.CollectIDs(c.Items(), seen); err != nil {
			return err
		}
		total += validation.CountItems(c.Items())
	}
	if limit := g.room.Limits().SpaceItems; limit > 0 && total > limit {
		return item.TooManyItems{Limit: limit}
	}

	occupying := make(map[item.CharacterID]bool)
	for _, device := range g.room.Items() {
		for slot, occupant := range device.Occupants() {
			if occupying[occupant] {
				return item.CanOnlyBeInOneDevice{Character: occupant}
			}
			occupying[occupant] = true
			c := g.characters[occupant]
			if c == nil || !wearsPart(c, device.ID(), slot) {
				return item.InvalidState{Reason: "device slot " + slot + " is occupied without its wearable part"}
			}
		}
	}
	return nil
}

func wearsPart(c *CharacterState, device item.ID, slot string) bool {
	return slices.ContainsFunc(c.Items(), func(it *item.Item) bool {
		link := it.Link()
		return link != nil && link.Device == device && link.Slot == slot
	})
}
