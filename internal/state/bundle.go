// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package state

import (
	"github.com/samber/oops"

	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/pose"
)

// AppearanceBundle is the persisted and wire form of a character state.
type AppearanceBundle struct {
	Items               []item.ItemBundle    `json:"items"`
	RequestedPose       pose.Pose            `json:"requestedPose"`
	RestrictionOverride *RestrictionOverride `json:"restrictionOverride,omitempty"`
	AttemptingAction    *AttemptingAction    `json:"attemptingAction,omitempty"`
	SpaceID             string               `json:"spaceId,omitempty"`
}

// RoomBundle is the persisted and wire form of a room state.
type RoomBundle struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Items     []item.ItemBundle `json:"items"`
	Geometry  Geometry          `json:"geometry"`
	Position  Position          `json:"position"`
	Direction Direction         `json:"direction"`
	Settings  RoomSettings      `json:"settings"`
}

// GlobalStateBundle is the persisted and wire form of a global state.
type GlobalStateBundle struct {
	Room       RoomBundle                            `json:"room"`
	Characters map[item.CharacterID]AppearanceBundle `json:"characters"`
}

func exportItems(items []*item.Item, client bool) []item.ItemBundle {
	result := make([]item.ItemBundle, 0, len(items))
	for _, it := range items {
		if client {
			result = append(result, it.ExportToClientBundle())
		} else {
			result = append(result, it.ExportToBundle())
		}
	}
	return result
}

// ExportToBundle returns the server side bundle of the character.
func (c *CharacterState) ExportToBundle() AppearanceBundle { return c.exportBundle(false) }

// ExportToClientBundle returns the bundle sent to clients, without secrets.
func (c *CharacterState) ExportToClientBundle() AppearanceBundle { return c.exportBundle(true) }

func (c *CharacterState) exportBundle(client bool) AppearanceBundle {
	return AppearanceBundle{
		Items:               exportItems(c.items, client),
		RequestedPose:       c.requestedPose.Clone(),
		RestrictionOverride: c.restrictionOverride,
		AttemptingAction:    c.attempt,
		SpaceID:             c.spaceID,
	}
}

// ExportToBundle returns the server side bundle of the room.
func (r *RoomState) ExportToBundle() RoomBundle { return r.exportBundle(false) }

// ExportToClientBundle returns the bundle sent to clients, without secrets.
func (r *RoomState) ExportToClientBundle() RoomBundle { return r.exportBundle(true) }

func (r *RoomState) exportBundle(client bool) RoomBundle {
	return RoomBundle{
		ID:        r.id,
		Name:      r.name,
		Items:     exportItems(r.items, client),
		Geometry:  r.geometry,
		Position:  r.position,
		Direction: r.direction,
		Settings:  r.settings,
	}
}

// ExportToBundle returns the server side bundle of the global state.
func (g *GlobalState) ExportToBundle() GlobalStateBundle { return g.exportBundle(false) }

// ExportToClientBundle returns the bundle sent to clients, without secrets.
func (g *GlobalState) ExportToClientBundle() GlobalStateBundle { return g.exportBundle(true) }

func (g *GlobalState) exportBundle(client bool) GlobalStateBundle {
	b := GlobalStateBundle{
		Room:       g.room.exportBundle(client),
		Characters: make(map[item.CharacterID]AppearanceBundle, len(g.characters)),
	}
	for id, c := range g.characters {
		b.Characters[id] = c.exportBundle(client)
	}
	return b
}

// ItemsDelta is an item list update: the ids of the new list in order and
// the bundles of the items that are new or changed. Unchanged items are
// taken from the receiver's previous list.
type ItemsDelta struct {
	IDs     []item.ID         `json:"ids"`
	Changed []item.ItemBundle `json:"changed,omitempty"`
}

// AppearanceDelta updates a character bundle.
type AppearanceDelta struct {
	Items               ItemsDelta           `json:"items"`
	RequestedPose       pose.Pose            `json:"requestedPose"`
	RestrictionOverride *RestrictionOverride `json:"restrictionOverride,omitempty"`
	AttemptingAction    *AttemptingAction    `json:"attemptingAction,omitempty"`
	SpaceID             string               `json:"spaceId,omitempty"`
}

// RoomDelta updates a room bundle.
type RoomDelta struct {
	Items     ItemsDelta   `json:"items"`
	Name      string       `json:"name"`
	Geometry  Geometry     `json:"geometry"`
	Position  Position     `json:"position"`
	Direction Direction    `json:"direction"`
	Settings  RoomSettings `json:"settings"`
}

// GlobalStateDelta updates a global state bundle. Room is nil and
// characters are absent when unchanged.
type GlobalStateDelta struct {
	Room       *RoomDelta                           `json:"room,omitempty"`
	Characters map[item.CharacterID]AppearanceDelta `json:"characters,omitempty"`
	Removed    []item.CharacterID                   `json:"removed,omitempty"`
}

// IsEmpty reports whether the delta changes nothing.
func (d GlobalStateDelta) IsEmpty() bool {
	return d.Room == nil && len(d.Characters) == 0 && len(d.Removed) == 0
}

// DiffItems returns the delta from old to next. Items are compared by
// instance, which is exact because items are immutable.
func DiffItems(old, next []*item.Item, client bool) ItemsDelta {
	previous := make(map[item.ID]*item.Item, len(old))
	for _, it := range old {
		previous[it.ID()] = it
	}
	d := ItemsDelta{IDs: make([]item.ID, 0, len(next))}
	for _, it := range next {
		d.IDs = append(d.IDs, it.ID())
		if previous[it.ID()] == it {
			continue
		}
		if client {
			d.Changed = append(d.Changed, it.ExportToClientBundle())
		} else {
			d.Changed = append(d.Changed, it.ExportToBundle())
		}
	}
	return d
}

// Apply returns the item list described by the delta, taking unchanged
// items from base. A missing item means the receiver is out of sync.
func (d ItemsDelta) Apply(base []item.ItemBundle) ([]item.ItemBundle, error) {
	known := make(map[item.ID]item.ItemBundle, len(base)+len(d.Changed))
	for _, b := range base {
		known[b.ID] = b
	}
	for _, b := range d.Changed {
		known[b.ID] = b
	}
	result := make([]item.ItemBundle, 0, len(d.IDs))
	for _, id := range d.IDs {
		b, ok := known[id]
		if !ok {
			return nil, oops.Code("DELTA_DESYNC").With("item", id).Errorf("delta references an unknown item")
		}
		result = append(result, b)
	}
	return result, nil
}

// Diff returns the delta that turns old into g. old may be nil, in which case
// everything is reported.
func (g *GlobalState) Diff(old *GlobalState, client bool) GlobalStateDelta {
	var d GlobalStateDelta
	var oldRoom *RoomState
	oldCharacters := map[item.CharacterID]*CharacterState{}
	if old != nil {
		oldRoom = old.room
		oldCharacters = old.characters
	}
	if oldRoom != g.room {
		var oldItems []*item.Item
		if oldRoom != nil {
			oldItems = oldRoom.items
		}
		d.Room = &RoomDelta{
			Items:     DiffItems(oldItems, g.room.items, client),
			Name:      g.room.name,
			Geometry:  g.room.geometry,
			Position:  g.room.position,
			Direction: g.room.direction,
			Settings:  g.room.settings,
		}
	}
	for _, id := range g.CharacterIDs() {
		c := g.characters[id]
		prev := oldCharacters[id]
		if prev == c {
			continue
		}
		var oldItems []*item.Item
		if prev != nil {
			oldItems = prev.items
		}
		if d.Characters == nil {
			d.Characters = map[item.CharacterID]AppearanceDelta{}
		}
		d.Characters[id] = AppearanceDelta{
			Items:               DiffItems(oldItems, c.items, client),
			RequestedPose:       c.requestedPose.Clone(),
			RestrictionOverride: c.restrictionOverride,
			AttemptingAction:    c.attempt,
			SpaceID:             c.spaceID,
		}
	}
	for id := range oldCharacters {
		if _, ok := g.characters[id]; !ok {
			d.Removed = append(d.Removed, id)
		}
	}
	return d
}

// ApplyDelta returns the bundle updated by a delta.
func (b GlobalStateBundle) ApplyDelta(d GlobalStateDelta) (GlobalStateBundle, error) {
	result := GlobalStateBundle{Room: b.Room, Characters: make(map[item.CharacterID]AppearanceBundle, len(b.Characters))}
	for id, c := range b.Characters {
		result.Characters[id] = c
	}
	if d.Room != nil {
		items, err := d.Room.Items.Apply(b.Room.Items)
		if err != nil {
			return GlobalStateBundle{}, oops.With("room", b.Room.ID).Wrap(err)
		}
		result.Room = RoomBundle{
			ID:        b.Room.ID,
			Name:      d.Room.Name,
			Items:     items,
			Geometry:  d.Room.Geometry,
			Position:  d.Room.Position,
			Direction: d.Room.Direction,
			Settings:  d.Room.Settings,
		}
	}
	for id, cd := range d.Characters {
		items, err := cd.Items.Apply(b.Characters[id].Items)
		if err != nil {
			return GlobalStateBundle{}, oops.With("character", id).Wrap(err)
		}
		result.Characters[id] = AppearanceBundle{
			Items:               items,
			RequestedPose:       cd.RequestedPose,
			RestrictionOverride: cd.RestrictionOverride,
			AttemptingAction:    cd.AttemptingAction,
			SpaceID:             cd.SpaceID,
		}
	}
	for _, id := range d.Removed {
		delete(result.Characters, id)
	}
	return result, nil
}
