// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package state

import (
	"sync"

	"github.com/holomush/wardrobe/internal/asset"
	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/validation"
)

// Direction is a compass direction.
type Direction string

// Directions.
const (
	DirectionNorth Direction = "N"
	DirectionEast  Direction = "E"
	DirectionSouth Direction = "S"
	DirectionWest  Direction = "W"
)

// IsValid reports whether d is a known direction.
func (d Direction) IsValid() bool {
	switch d {
	case DirectionNorth, DirectionEast, DirectionSouth, DirectionWest:
		return true
	default:
		return false
	}
}

// Geometry is the 2D floor area of a room.
type Geometry struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Background string `json:"background,omitempty"`
}

// Position is the location of a room on the space map.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// RoomSettings are owner configurable room rules.
type RoomSettings struct {
	// AllowRoomDevices permits deploying room devices.
	AllowRoomDevices bool `json:"allowRoomDevices"`
	// AllowRandomize permits characters to randomize their appearance.
	AllowRandomize bool `json:"allowRandomize"`
}

// RoomState is what lies around in a room and how the room is laid out.
type RoomState struct {
	id        string
	name      string
	items     []*item.Item
	geometry  Geometry
	position  Position
	direction Direction
	settings  RoomSettings

	manager asset.Manager
	limits  validation.Limits
	cache   *roomCache
}

type roomCache struct {
	once sync.Once
	err  item.ValidationError
}

// RoomInfo holds the descriptive fields of a room.
type RoomInfo struct {
	Name      string
	Geometry  Geometry
	Position  Position
	Direction Direction
	Settings  RoomSettings
}

// DefaultRoomInfo returns the layout of a new room.
func DefaultRoomInfo() RoomInfo {
	return RoomInfo{
		Name:      "Room",
		Geometry:  Geometry{Width: 1000, Height: 1000},
		Direction: DirectionNorth,
		Settings:  RoomSettings{AllowRoomDevices: true, AllowRandomize: true},
	}
}

// NewRoom returns a room holding items.
func NewRoom(manager asset.Manager, limits validation.Limits, id string, info RoomInfo, items []*item.Item) *RoomState {
	return &RoomState{
		id:        id,
		name:      info.Name,
		items:     items,
		geometry:  info.Geometry,
		position:  info.Position,
		direction: info.Direction,
		settings:  info.Settings,
		manager:   manager,
		limits:    limits,
		cache:     &roomCache{},
	}
}

func (r *RoomState) with(mutate func(n *RoomState)) *RoomState {
	n := *r
	n.cache = &roomCache{}
	mutate(&n)
	return &n
}

// ID returns the room id.
func (r *RoomState) ID() string { return r.id }

// Name returns the room name.
func (r *RoomState) Name() string { return r.name }

// Items returns the room items. The slice must not be modified.
func (r *RoomState) Items() []*item.Item { return r.items }

// Item returns the root room item with the id, or nil.
func (r *RoomState) Item(id item.ID) *item.Item {
	for _, it := range r.items {
		if it.ID() == id {
			return it
		}
	}
	return nil
}

// Info returns the descriptive fields of the room.
func (r *RoomState) Info() RoomInfo {
	return RoomInfo{Name: r.name, Geometry: r.geometry, Position: r.position, Direction: r.direction, Settings: r.settings}
}

// Settings returns the room settings.
func (r *RoomState) Settings() RoomSettings { return r.settings }

// Manager returns the asset manager the state was built with.
func (r *RoomState) Manager() asset.Manager { return r.manager }

// Limits returns the item limits of the state.
func (r *RoomState) Limits() validation.Limits { return r.limits }

// ValidationContext returns the validation context of the room items.
func (r *RoomState) ValidationContext() validation.Context {
	return validation.Room(r.manager, r.limits)
}

// Validate checks the room items and layout. The result is memoized.
func (r *RoomState) Validate() item.ValidationError {
	r.cache.once.Do(func() {
		switch {
		case r.geometry.Width <= 0 || r.geometry.Height <= 0:
			r.cache.err = item.InvalidState{Reason: "room geometry must be positive"}
		case !r.direction.IsValid():
			r.cache.err = item.InvalidState{Reason: "unknown room direction"}
		default:
			r.cache.err = r.validateItems()
		}
	})
	return r.cache.err
}

func (r *RoomState) validateItems() item.ValidationError {
	if err := validation.ValidateAll(r.ValidationContext(), r.items); err != nil {
		return err
	}
	for _, it := range r.items {
		if err := r.checkDeployment(it); err != nil {
			return err
		}
	}
	return nil
}

func (r *RoomState) checkDeployment(it *item.Item) item.ValidationError {
	d := it.Deployment()
	if d == nil {
		return nil
	}
	if !r.settings.AllowRoomDevices {
		return item.InvalidState{Reason: "room devices are not allowed"}
	}
	if d.X < 0 || d.Y < 0 || d.X > r.geometry.Width || d.Y > r.geometry.Height {
		return item.Invalid{Item: it.ID(), Reason: "deployed outside of the room"}
	}
	return nil
}

// deviceAllowed reports whether a deployed device fits the room.
func (r *RoomState) deviceAllowed(it *item.Item) bool {
	return r.checkDeployment(it) == nil
}

// IsValid reports whether Validate finds no problem.
func (r *RoomState) IsValid() bool { return r.Validate() == nil }

// ProduceWithItems returns the room holding items instead.
func (r *RoomState) ProduceWithItems(items []*item.Item) *RoomState {
	return r.with(func(n *RoomState) { n.items = items })
}

// ProduceWithInfo returns the room with new descriptive fields.
func (r *RoomState) ProduceWithInfo(info RoomInfo) *RoomState {
	return r.with(func(n *RoomState) {
		n.name = info.Name
		n.geometry = info.Geometry
		n.position = info.Position
		n.direction = info.Direction
		n.settings = info.Settings
	})
}
