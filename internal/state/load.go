// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package state

import (
	"log/slog"
	"maps"
	"math/rand/v2"
	"slices"

	"github.com/holomush/wardrobe/internal/asset"
	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/validation"
)

// LoadContext carries the collaborators of state loading.
//
// Loading is lenient: whatever cannot be used is dropped with a warning and
// missing required bodyparts are injected, so the result is always valid.
type LoadContext struct {
	Manager asset.Manager
	Limits  validation.Limits
	// Logger receives repair warnings; nil uses slog.Default.
	Logger *slog.Logger
	// Rand picks injected bodyparts; nil uses the global source.
	Rand *rand.Rand
}

func (c LoadContext) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c LoadContext) shuffle(n int, swap func(i, j int)) {
	if c.Rand != nil {
		c.Rand.Shuffle(n, swap)
		return
	}
	rand.Shuffle(n, swap)
}

func (c LoadContext) itemContext() item.LoadContext {
	return item.LoadContext{Manager: c.Manager, Logger: c.logger()}
}

// loadItems rebuilds bundles, skipping items that cannot be loaded or whose
// ids were already seen anywhere in the space.
func (c LoadContext) loadItems(bundles []item.ItemBundle, seen map[item.ID]bool) []*item.Item {
	result := make([]*item.Item, 0, len(bundles))
	for _, b := range bundles {
		it, err := item.LoadFromBundle(c.itemContext(), b)
		if err != nil {
			c.logger().Warn("skipping unknown asset", "item", b.ID, "asset", b.Asset, "error", err)
			continue
		}
		if err := validation.CollectIDs([]*item.Item{it}, seen); err != nil {
			c.logger().Warn("skipping duplicate item", "item", b.ID)
			continue
		}
		result = append(result, it)
	}
	return result
}

// pruneToValid keeps every item that still forms a valid prefix with the
// items kept before it.
func pruneToValid(ctx validation.Context, items []*item.Item, logger *slog.Logger) []*item.Item {
	if logger == nil {
		logger = slog.Default()
	}
	kept := make([]*item.Item, 0, len(items))
	for _, it := range items {
		candidate := append(slices.Clone(kept), it)
		if err := validation.ValidatePrefix(ctx, candidate); err != nil {
			logger.Warn("dropping invalid item", "item", it.ID(), "asset", it.Asset().ID, "problem", err.Kind())
			continue
		}
		kept = candidate
	}
	return kept
}

// injectBodyparts adds, for every required bodypart the items lack, the
// first candidate asset that keeps them a valid prefix. A bodypart without
// such a candidate stays missing.
func (c LoadContext) injectBodyparts(vctx validation.Context, id item.CharacterID, items []*item.Item) []*item.Item {
	result := items
	for _, bp := range c.Manager.Bodyparts() {
		if !bp.Required || slices.ContainsFunc(result, func(it *item.Item) bool { return it.Asset().Bodypart == bp.Name }) {
			continue
		}
		injected := false
		for _, a := range c.bodypartCandidates(bp.Name) {
			trial := validation.SortByBodypartOrder(c.Manager, append(slices.Clone(result), item.New(a, item.NewID())))
			if validation.ValidatePrefix(vctx, trial) != nil {
				continue
			}
			c.logger().Warn("injecting required bodypart", "character", id, "bodypart", bp.Name, "asset", a.ID)
			result = trial
			injected = true
			break
		}
		if !injected {
			c.logger().Warn("no valid asset for required bodypart", "character", id, "bodypart", bp.Name)
		}
	}
	return result
}

// bodypartCandidates returns the assets of a bodypart in random order,
// randomizable ones first.
func (c LoadContext) bodypartCandidates(name string) []*asset.Asset {
	var randomizable, rest []*asset.Asset
	for _, a := range c.Manager.Assets() {
		switch {
		case !a.IsBodypart() || a.Bodypart != name:
		case a.Randomizable:
			randomizable = append(randomizable, a)
		default:
			rest = append(rest, a)
		}
	}
	c.shuffle(len(randomizable), func(i, j int) { randomizable[i], randomizable[j] = randomizable[j], randomizable[i] })
	c.shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	return append(randomizable, rest...)
}

// LoadCharacter rebuilds a character without a room. Wearable parts cannot
// be resolved and are dropped.
func LoadCharacter(ctx LoadContext, id item.CharacterID, b AppearanceBundle) *CharacterState {
	return ctx.loadCharacter(id, b, func(item.ID) *item.Item { return nil }, map[item.ID]bool{})
}

func (c LoadContext) loadCharacter(
	id item.CharacterID,
	b AppearanceBundle,
	lookup func(item.ID) *item.Item,
	seen map[item.ID]bool,
) *CharacterState {
	log := c.logger().With("character", id)
	items := c.loadItems(b.Items, seen)
	relinked, detached := relinkItems(items, id, lookup)
	if detached {
		log.Warn("dropping unlinked wearable parts")
	}
	vctx := validation.Character(c.Manager, id, c.Limits)
	items = pruneToValid(vctx, validation.SortByBodypartOrder(c.Manager, relinked), log)
	items = c.injectBodyparts(vctx, id, items)

	state := NewCharacter(c.Manager, c.Limits, id, items)
	requested := b.RequestedPose
	if !requested.Validate() {
		log.Warn("resetting invalid pose")
		requested = state.requestedPose
	}
	override := b.RestrictionOverride
	if override != nil && override.Type != OverrideSafemode && override.Type != OverrideTimeout {
		log.Warn("dropping unknown restriction override", "type", override.Type)
		override = nil
	}
	return state.with(func(n *CharacterState) {
		n.requestedPose = requested.Clone()
		n.restrictionOverride = override
		n.attempt = b.AttemptingAction
		n.spaceID = b.SpaceID
	})
}

// LoadRoom rebuilds a room. Device slot occupancy is kept as stored; use
// LoadGlobalState to reconcile it with the characters.
func LoadRoom(ctx LoadContext, b RoomBundle) *RoomState {
	return ctx.loadRoom(b, map[item.ID]bool{})
}

func (c LoadContext) loadRoom(b RoomBundle, seen map[item.ID]bool) *RoomState {
	log := c.logger().With("room", b.ID)
	info := RoomInfo{
		Name:      b.Name,
		Geometry:  b.Geometry,
		Position:  b.Position,
		Direction: b.Direction,
		Settings:  b.Settings,
	}
	defaults := DefaultRoomInfo()
	if info.Geometry.Width <= 0 || info.Geometry.Height <= 0 {
		log.Warn("resetting invalid room geometry")
		info.Geometry = defaults.Geometry
	}
	if !info.Direction.IsValid() {
		info.Direction = defaults.Direction
	}
	if info.Name == "" {
		info.Name = defaults.Name
	}
	items := c.loadItems(b.Items, seen)
	room := NewRoom(c.Manager, c.Limits, b.ID, info, nil)
	kept := make([]*item.Item, 0, len(items))
	for _, it := range items {
		if it.IsDeployed() && !room.deviceAllowed(it) {
			log.Warn("packing up misplaced room device", "item", it.ID())
			it = it.ChangeDeployment(nil)
		}
		kept = append(kept, it)
	}
	return room.with(func(n *RoomState) {
		n.items = pruneToValid(room.ValidationContext(), kept, log)
	})
}

// LoadGlobalState rebuilds a room with its characters and repairs the links
// between them. It never fails: the result is valid unless the catalog
// offers no valid asset for a required bodypart, which is logged.
func LoadGlobalState(ctx LoadContext, b GlobalStateBundle) *GlobalState {
	seen := map[item.ID]bool{}
	room := ctx.loadRoom(b.Room, seen)

	ids := slices.Sorted(maps.Keys(b.Characters))
	characters := make([]*CharacterState, 0, len(ids))
	for _, id := range ids {
		characters = append(characters, ctx.loadCharacter(id, b.Characters[id], room.Item, seen))
	}

	g := NewGlobal(room, characters...)
	if items, freed := ctx.freeOrphanSlots(g); freed {
		g = g.ProduceWithRoom(room.ProduceWithItems(items), true)
	}
	if err := g.Validate(); err != nil {
		ctx.logger().Warn("loaded state invalid, releasing room devices", "room", b.Room.ID, "problem", err.Kind())
		g = ctx.releaseDevices(g)
	}
	if err := g.Validate(); err != nil {
		ctx.logger().Warn("loaded state remains invalid", "room", b.Room.ID, "problem", err.Kind(), "error", err)
	}
	return g
}

// freeOrphanSlots frees device slots whose occupant is absent, does not
// wear the matching part or already occupies another slot.
func (c LoadContext) freeOrphanSlots(g *GlobalState) ([]*item.Item, bool) {
	items := slices.Clone(g.room.Items())
	occupying := map[item.CharacterID]bool{}
	freed := false
	for i, device := range items {
		for _, slot := range slices.Sorted(maps.Keys(device.Occupants())) {
			occupant, _ := device.SlotOccupancy(slot)
			ch := g.characters[occupant]
			if ch != nil && !occupying[occupant] && wearsPart(ch, device.ID(), slot) {
				occupying[occupant] = true
				continue
			}
			c.logger().Warn("freeing orphaned device slot", "item", device.ID(), "slot", slot, "character", occupant)
			items[i] = items[i].ChangeSlotOccupancy(slot, "")
			freed = true
		}
	}
	return items, freed
}

// releaseDevices is the last resort repair: every device slot is freed and
// every wearable part removed.
func (c LoadContext) releaseDevices(g *GlobalState) *GlobalState {
	items := make([]*item.Item, 0, len(g.room.Items()))
	for _, it := range g.room.Items() {
		for slot := range it.Occupants() {
			it = it.ChangeSlotOccupancy(slot, "")
		}
		items = append(items, it)
	}
	room := g.room.ProduceWithItems(items)
	characters := make([]*CharacterState, 0, len(g.characters))
	for _, ch := range g.Characters() {
		worn := slices.DeleteFunc(slices.Clone(ch.Items()), func(it *item.Item) bool {
			return it.Type() == asset.TypeRoomDeviceWearablePart
		})
		worn = pruneToValid(ch.ValidationContext(), worn, c.logger())
		characters = append(characters, ch.ProduceWithItems(worn))
	}
	return NewGlobal(room, characters...)
}
