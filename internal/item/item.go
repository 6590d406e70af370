// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package item implements the immutable item and module model.
//
// Items are never modified in place. Every transition method returns a new
// *Item, or nil when the transition is rejected. Unchanged nested items are
// shared between the old and the new item.
package item

import (
	"maps"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/samber/oops"

	"github.com/holomush/wardrobe/internal/asset"
)

// Customization limits.
const (
	MaxNameLength        = 32
	MaxDescriptionLength = 512
)

// Deployment is the position of a room device placed in a room.
type Deployment struct {
	X       int `json:"x"`
	Y       int `json:"y"`
	YOffset int `json:"yOffset,omitempty"`
}

// RoomDeviceLink points a wearable part at the device slot it belongs to.
type RoomDeviceLink struct {
	Device ID     `json:"device"`
	Slot   string `json:"slot"`
}

// Item is one instance of an asset.
//
// The variant of an item mirrors the type of its asset. Variant specific
// fields are only meaningful for that variant.
type Item struct {
	id          ID
	asset       *asset.Asset
	color       Color
	name        string
	description string
	modules     []Module

	// roomDevice
	deployment *Deployment
	occupancy  map[string]CharacterID

	// roomDeviceWearablePart
	link   *RoomDeviceLink
	device *Item

	// lock
	lock LockData

	cache *itemCache
}

type itemCache struct {
	once  sync.Once
	parts []*asset.PropertiesDefinition
	props *Properties
}

// New creates an item of the asset with default module data.
// It panics when a is nil: an unknown asset at this point is a desync.
func New(a *asset.Asset, id ID) *Item {
	mustAsset(a, "")
	it := &Item{
		id:      id,
		asset:   a,
		modules: make([]Module, 0, len(a.Modules)),
		cache:   &itemCache{},
	}
	for i := range a.Modules {
		it.modules = append(it.modules, newModule(&a.Modules[i]))
	}
	return it
}

func mustAsset(a *asset.Asset, id asset.ID) {
	if a == nil {
		panic(oops.Code("ASSET_NOT_FOUND").With("asset", id).Errorf("asset required"))
	}
}

// with returns a shallow copy of the item with a fresh property cache.
func (it *Item) with(mutate func(c *Item)) *Item {
	c := *it
	c.modules = append([]Module(nil), it.modules...)
	c.cache = &itemCache{}
	mutate(&c)
	return &c
}

// ID returns the item id.
func (it *Item) ID() ID { return it.id }

// Asset returns the asset of the item.
func (it *Item) Asset() *asset.Asset { return it.asset }

// Type returns the variant of the item.
func (it *Item) Type() asset.Type { return it.asset.Type }

// IsBodypart reports whether the item is a bodypart.
func (it *Item) IsBodypart() bool { return it.asset.IsBodypart() }

// Name returns the custom name, or the asset name when none is set.
func (it *Item) Name() string {
	if it.name != "" {
		return it.name
	}
	return it.asset.Name
}

// CustomName returns the custom name, possibly empty.
func (it *Item) CustomName() string { return it.name }

// Description returns the custom description.
func (it *Item) Description() string { return it.description }

// Color returns a copy of the explicitly set colors.
func (it *Item) Color() Color { return maps.Clone(it.color) }

// Modules returns the modules in asset order.
func (it *Item) Modules() []Module { return it.modules }

// Module returns the named module or nil.
func (it *Item) Module(name string) Module {
	for _, m := range it.modules {
		if m.Config().Name == name {
			return m
		}
	}
	return nil
}

func (it *Item) moduleIndex(name string) int {
	for i, m := range it.modules {
		if m.Config().Name == name {
			return i
		}
	}
	return -1
}

// ContainedItems returns the items directly nested in the modules of the item.
func (it *Item) ContainedItems() []*Item {
	var result []*Item
	for _, m := range it.modules {
		result = append(result, m.Items()...)
	}
	return result
}

// Walk calls fn for the item and every nested item, depth first.
func (it *Item) Walk(fn func(*Item)) {
	fn(it)
	for _, c := range it.ContainedItems() {
		c.Walk(fn)
	}
}

// CanBeTransferred reports whether the item may move between different
// containers or characters. Bodyparts and wearable parts never can, deployed
// devices cannot until they are packed up.
func (it *Item) CanBeTransferred() bool {
	switch it.asset.Type {
	case asset.TypePersonal:
		return !it.IsBodypart()
	case asset.TypeRoomDevice:
		return it.deployment == nil
	case asset.TypeRoomDeviceWearablePart:
		return false
	case asset.TypeLock:
		return true
	default:
		panic(oops.Code("ITEM_TYPE_UNKNOWN").With("type", it.asset.Type).Errorf("unhandled item type"))
	}
}

// PropertiesParts returns every active property definition of the item:
// the asset's own followed by those of its modules.
func (it *Item) PropertiesParts() []*asset.PropertiesDefinition {
	it.computeProperties()
	return it.cache.parts
}

// Properties returns the merged properties of the item.
// The result is shared and must not be modified.
func (it *Item) Properties() *Properties {
	it.computeProperties()
	return it.cache.props
}

func (it *Item) computeProperties() {
	it.cache.once.Do(func() {
		parts := []*asset.PropertiesDefinition{&it.asset.Properties}
		for _, m := range it.modules {
			parts = append(parts, m.Properties()...)
		}
		props := NewProperties()
		for _, p := range parts {
			props.Add(p)
		}
		it.cache.parts = parts
		it.cache.props = props
	})
}

// Customize sets a custom name and description. Empty values reset to the
// asset defaults. Returns nil when either exceeds its limit or contains
// control characters.
func (it *Item) Customize(name, description string) *Item {
	if !validCustomText(name, MaxNameLength, false) || !validCustomText(description, MaxDescriptionLength, true) {
		return nil
	}
	return it.with(func(c *Item) {
		c.name = name
		c.description = description
	})
}

func validCustomText(s string, maxLen int, multiline bool) bool {
	if !utf8.ValidString(s) || utf8.RuneCountInString(s) > maxLen {
		return false
	}
	for _, r := range s {
		if r == '\n' && multiline {
			continue
		}
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// ModuleAction performs an action on the named module.
func (it *Item) ModuleAction(ctx ActionContext, name string, action ModuleAction) (*Item, ActionResult) {
	idx := it.moduleIndex(name)
	if idx < 0 {
		return nil, invalidResult()
	}
	m, res := it.modules[idx].DoAction(ctx, action)
	if res.Outcome != OutcomeOK {
		return nil, res
	}
	return it.with(func(c *Item) { c.modules[idx] = m }), res
}

// SetModuleItems replaces the contents of a container module.
// Returns nil when the module does not exist or cannot hold items.
func (it *Item) SetModuleItems(name string, items []*Item) *Item {
	idx := it.moduleIndex(name)
	if idx < 0 {
		return nil
	}
	m, ok := it.modules[idx].SetItems(items)
	if !ok {
		return nil
	}
	return it.with(func(c *Item) { c.modules[idx] = m })
}

// Deployment returns the deployment of a room device, nil when packed up.
func (it *Item) Deployment() *Deployment {
	if it.deployment == nil {
		return nil
	}
	d := *it.deployment
	return &d
}

// IsDeployed reports whether a room device is placed in the room.
func (it *Item) IsDeployed() bool { return it.deployment != nil }

// SlotOccupancy returns the occupant of a device slot.
func (it *Item) SlotOccupancy(slot string) (CharacterID, bool) {
	c, ok := it.occupancy[slot]
	return c, ok
}

// Occupants returns a copy of the device slot occupancy.
func (it *Item) Occupants() map[string]CharacterID {
	return maps.Clone(it.occupancy)
}

// ChangeDeployment deploys, moves or (with nil) packs up a room device.
// Packing up frees every slot. Returns nil for other item types.
func (it *Item) ChangeDeployment(d *Deployment) *Item {
	if it.asset.Type != asset.TypeRoomDevice {
		return nil
	}
	return it.with(func(c *Item) {
		if d == nil {
			c.deployment = nil
			c.occupancy = nil
			return
		}
		dep := *d
		c.deployment = &dep
	})
}

// ChangeSlotOccupancy sets (or with an empty character clears) the occupant
// of a device slot. Returns nil when the device is not deployed, the slot is
// unknown or already taken by someone else.
func (it *Item) ChangeSlotOccupancy(slot string, character CharacterID) *Item {
	if it.asset.Type != asset.TypeRoomDevice || it.deployment == nil {
		return nil
	}
	if _, ok := it.asset.DeviceSlot(slot); !ok {
		return nil
	}
	if current, taken := it.occupancy[slot]; taken && character != "" && current != character {
		return nil
	}
	return it.with(func(c *Item) {
		c.occupancy = maps.Clone(it.occupancy)
		if c.occupancy == nil {
			c.occupancy = map[string]CharacterID{}
		}
		if character == "" {
			delete(c.occupancy, slot)
		} else {
			c.occupancy[slot] = character
		}
	})
}

// Link returns the device link of a wearable part.
func (it *Item) Link() *RoomDeviceLink {
	if it.link == nil {
		return nil
	}
	l := *it.link
	return &l
}

// Device returns the resolved room device of a wearable part, nil when unresolved.
func (it *Item) Device() *Item { return it.device }

// WithLink binds a wearable part to a device slot.
// Returns nil for other item types.
func (it *Item) WithLink(device *Item, slot string) *Item {
	if it.asset.Type != asset.TypeRoomDeviceWearablePart || device == nil {
		return nil
	}
	return it.with(func(c *Item) {
		c.link = &RoomDeviceLink{Device: device.id, Slot: slot}
		c.device = device
	})
}

// ResolveLink points a wearable part at the current version of its device.
// lookup finds room items by id. ok is false when the part no longer has a
// matching deployed device; the returned item is then unresolved.
func (it *Item) ResolveLink(lookup func(ID) *Item) (resolved *Item, ok bool) {
	if it.asset.Type != asset.TypeRoomDeviceWearablePart {
		return it, true
	}
	var device *Item
	if it.link != nil {
		device = lookup(it.link.Device)
	}
	if device != nil && !it.linkMatches(device) {
		device = nil
	}
	if device == it.device {
		return it, device != nil
	}
	return it.with(func(c *Item) { c.device = device }), device != nil
}

func (it *Item) linkMatches(device *Item) bool {
	if device.asset.Type != asset.TypeRoomDevice || device.deployment == nil {
		return false
	}
	slot, ok := device.asset.DeviceSlot(it.link.Slot)
	return ok && slot.WearableAsset == it.asset.ID
}

// Validate checks the item and everything nested in it.
func (it *Item) Validate(ctx ValidationContext) ValidationError {
	if !it.id.IsValid() {
		return Invalid{Item: it.id, Reason: "invalid id"}
	}
	if err := it.validateLocation(ctx); err != nil {
		return err
	}
	if !it.color.valid(it.asset) {
		return Invalid{Item: it.id, Reason: "invalid color"}
	}
	switch it.asset.Type {
	case asset.TypePersonal, asset.TypeLock:
	case asset.TypeRoomDevice:
		if it.deployment == nil && len(it.occupancy) > 0 {
			return Invalid{Item: it.id, Reason: "slots occupied while not deployed"}
		}
		for slot := range it.occupancy {
			if _, ok := it.asset.DeviceSlot(slot); !ok {
				return Invalid{Item: it.id, Reason: "unknown slot " + slot}
			}
		}
	case asset.TypeRoomDeviceWearablePart:
		if it.link == nil || it.device == nil || !it.linkMatches(it.device) {
			return InvalidState{Reason: "wearable part " + string(it.id) + " is not linked to a device"}
		}
		if occupant, ok := it.device.occupancy[it.link.Slot]; !ok || occupant != ctx.Character {
			return InvalidState{Reason: "wearable part " + string(it.id) + " slot is not occupied by the wearer"}
		}
	default:
		panic(oops.Code("ITEM_TYPE_UNKNOWN").With("type", it.asset.Type).Errorf("unhandled item type"))
	}
	for _, m := range it.modules {
		if err := m.Validate(ctx, it); err != nil {
			return err
		}
	}
	return nil
}

func (it *Item) validateLocation(ctx ValidationContext) ValidationError {
	var allowed bool
	switch it.asset.Type {
	case asset.TypePersonal:
		switch ctx.Location {
		case LocationWorn:
			allowed = true
		case LocationRoomInventory, LocationStored:
			allowed = !it.IsBodypart()
		case LocationAttached:
			allowed = false
		}
	case asset.TypeRoomDevice:
		allowed = ctx.Location == LocationRoomInventory
	case asset.TypeRoomDeviceWearablePart:
		allowed = ctx.Location == LocationWorn
	case asset.TypeLock:
		allowed = ctx.Location != LocationWorn
	default:
		panic(oops.Code("ITEM_TYPE_UNKNOWN").With("type", it.asset.Type).Errorf("unhandled item type"))
	}
	if !allowed {
		return Invalid{Item: it.id, Reason: "not allowed " + string(ctx.Location)}
	}
	return nil
}
