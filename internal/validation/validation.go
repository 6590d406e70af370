// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package validation checks ordered item lists against bodypart, attribute,
// slot and pose rules.
//
// ValidatePrefix is prefix monotone: when items[0:n] is valid, so is every
// items[0:k] with k < n. Callers can therefore build valid lists by
// appending one item at a time and keeping only the prefixes that pass.
package validation

import (
	"slices"

	"github.com/holomush/wardrobe/internal/asset"
	"github.com/holomush/wardrobe/internal/item"
)

// Limits are the item count ceilings of a space.
type Limits struct {
	CharacterItems int `koanf:"character_items"`
	RoomItems      int `koanf:"room_items"`
	SpaceItems     int `koanf:"space_items"`
	// StorageDepth limits how deep container modules may nest.
	StorageDepth int `koanf:"storage_depth"`
}

// DefaultLimits returns the stock limits.
func DefaultLimits() Limits {
	return Limits{
		CharacterItems: 100,
		RoomItems:      300,
		SpaceItems:     1000,
		StorageDepth:   item.DefaultMaxDepth,
	}
}

// Context describes the item list being validated.
type Context struct {
	Manager asset.Manager
	// Location is item.LocationWorn for characters or
	// item.LocationRoomInventory for rooms.
	Location  item.Location
	Character item.CharacterID
	Limits    Limits
}

// Character returns the context of the worn items of a character.
func Character(manager asset.Manager, id item.CharacterID, limits Limits) Context {
	return Context{Manager: manager, Location: item.LocationWorn, Character: id, Limits: limits}
}

// Room returns the context of the items of a room.
func Room(manager asset.Manager, limits Limits) Context {
	return Context{Manager: manager, Location: item.LocationRoomInventory, Limits: limits}
}

func (c Context) itemContext() item.ValidationContext {
	return item.ValidationContext{Location: c.Location, Character: c.Character, MaxDepth: c.Limits.StorageDepth}
}

func (c Context) itemLimit() int {
	if c.Location == item.LocationWorn {
		return c.Limits.CharacterItems
	}
	return c.Limits.RoomItems
}

// ValidatePrefix checks items in this order: bodypart order, bodypart
// multiplicity, unique ids, each item on its own, then for worn items the
// running accumulation of requirements, slots and pose limits, and finally
// the item count limit. It returns the first problem found.
func ValidatePrefix(ctx Context, items []*item.Item) item.ValidationError {
	if ctx.Location == item.LocationWorn {
		if err := checkBodypartOrder(ctx.Manager, items); err != nil {
			return err
		}
		if err := checkBodypartMultiplicity(ctx.Manager, items); err != nil {
			return err
		}
	}
	if err := checkUniqueIDs(items); err != nil {
		return err
	}
	ictx := ctx.itemContext()
	for _, it := range items {
		if err := it.Validate(ictx); err != nil {
			return err
		}
	}
	if ctx.Location == item.LocationWorn {
		if _, err := accumulate(ctx.Manager, items); err != nil {
			return err
		}
	}
	return ValidateItemLimit(items, ctx.itemLimit())
}

// ValidateAll validates a complete list: ValidatePrefix plus the presence of
// every required bodypart for worn items.
func ValidateAll(ctx Context, items []*item.Item) item.ValidationError {
	if err := ValidatePrefix(ctx, items); err != nil {
		return err
	}
	if ctx.Location != item.LocationWorn {
		return nil
	}
	for _, bp := range ctx.Manager.Bodyparts() {
		if !bp.Required {
			continue
		}
		if !slices.ContainsFunc(items, func(it *item.Item) bool { return it.Asset().Bodypart == bp.Name }) {
			return item.BodypartError{Problem: item.BodypartMissing, Bodypart: bp.Name}
		}
	}
	return nil
}

// bodypartIndex returns the canonical index of the item's bodypart, or -1.
func bodypartIndex(manager asset.Manager, it *item.Item) int {
	if !it.IsBodypart() {
		return -1
	}
	return manager.BodypartIndex(it.Asset().Bodypart)
}

// checkBodypartOrder requires bodyparts to come first, in canonical order.
func checkBodypartOrder(manager asset.Manager, items []*item.Item) item.ValidationError {
	last := 0
	seenOther := false
	for _, it := range items {
		idx := bodypartIndex(manager, it)
		if idx < 0 {
			seenOther = true
			continue
		}
		if seenOther || idx < last {
			return item.BodypartError{Problem: item.BodypartOrder, Bodypart: it.Asset().Bodypart, Item: it.ID()}
		}
		last = idx
	}
	return nil
}

func checkBodypartMultiplicity(manager asset.Manager, items []*item.Item) item.ValidationError {
	defs := manager.Bodyparts()
	seen := make(map[string]bool, len(defs))
	for _, it := range items {
		idx := bodypartIndex(manager, it)
		if idx < 0 {
			continue
		}
		def := defs[idx]
		if seen[def.Name] && !def.AllowMultiple {
			return item.BodypartError{Problem: item.BodypartMultiple, Bodypart: def.Name, Item: it.ID()}
		}
		seen[def.Name] = true
	}
	return nil
}

// checkUniqueIDs checks ids across the items and everything nested in them.
func checkUniqueIDs(items []*item.Item) item.ValidationError {
	seen := make(map[item.ID]bool)
	return CollectIDs(items, seen)
}

// CollectIDs adds the ids of items and their nested items to seen and
// reports the first id already present.
func CollectIDs(items []*item.Item, seen map[item.ID]bool) item.ValidationError {
	var dup item.ValidationError
	for _, it := range items {
		it.Walk(func(n *item.Item) {
			if dup != nil {
				return
			}
			if seen[n.ID()] {
				dup = item.DuplicateItemID{Item: n.ID()}
				return
			}
			seen[n.ID()] = true
		})
		if dup != nil {
			return dup
		}
	}
	return nil
}

// accumulate folds the properties of worn items in order. Each item's
// requirements are checked against the attributes of the items before it.
func accumulate(manager asset.Manager, items []*item.Item) (*item.Properties, item.ValidationError) {
	acc := item.NewProperties()
	for _, it := range items {
		props := it.Properties()
		for _, req := range props.Requirements {
			if !req.Satisfied(acc.HasAttribute) {
				return nil, item.UnsatisfiedRequirement{Item: it.ID(), Asset: it.Asset().ID, Requirement: req.String()}
			}
		}
		for slot, n := range props.SlotOccupy {
			if n <= 0 {
				continue
			}
			if acc.SlotBlock[slot] {
				return nil, item.SlotBlockedOrder{Slot: slot, Item: it.ID()}
			}
			def, ok := manager.Slot(slot)
			if !ok || acc.SlotOccupy[slot]+n > def.Capacity {
				return nil, item.SlotFull{Slot: slot, Item: it.ID()}
			}
		}
		for _, part := range it.PropertiesParts() {
			acc.Add(part)
		}
		if acc.PoseLimits == nil {
			return nil, item.PoseConflict{}
		}
	}
	return acc, nil
}

// ResolveProperties returns the accumulated properties of worn items.
// ok is false when the items are not a valid accumulation.
func ResolveProperties(manager asset.Manager, items []*item.Item) (props *item.Properties, ok bool) {
	acc, err := accumulate(manager, items)
	if err != nil {
		return nil, false
	}
	return acc, true
}

// CountItems returns the number of items including everything nested.
func CountItems(items []*item.Item) int {
	n := 0
	for _, it := range items {
		it.Walk(func(*item.Item) { n++ })
	}
	return n
}

// ValidateItemLimit checks the recursive item count against limit.
// A non-positive limit disables the check.
func ValidateItemLimit(items []*item.Item, limit int) item.ValidationError {
	if limit > 0 && CountItems(items) > limit {
		return item.TooManyItems{Limit: limit}
	}
	return nil
}

// SortByBodypartOrder returns a copy of items with bodyparts moved to the
// front in canonical order. Other items keep their relative order.
func SortByBodypartOrder(manager asset.Manager, items []*item.Item) []*item.Item {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b *item.Item) int {
		ia, ib := bodypartIndex(manager, a), bodypartIndex(manager, b)
		switch {
		case ia < 0 && ib < 0:
			return 0
		case ia < 0:
			return 1
		case ib < 0:
			return -1
		default:
			return ia - ib
		}
	})
	return sorted
}
