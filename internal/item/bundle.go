// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import (
	"errors"
	"maps"

	"github.com/samber/oops"

	"github.com/holomush/wardrobe/internal/asset"
)

// ItemBundle is the persisted and wire form of an item.
type ItemBundle struct {
	ID             ID                      `json:"id"`
	Asset          asset.ID                `json:"asset"`
	Color          Color                   `json:"color,omitempty"`
	Name           string                  `json:"name,omitempty"`
	Description    string                  `json:"description,omitempty"`
	ModuleData     map[string]ModuleBundle `json:"moduleData,omitempty"`
	RoomDeviceData *RoomDeviceBundle       `json:"roomDeviceData,omitempty"`
	RoomDeviceLink *RoomDeviceLink         `json:"roomDeviceLink,omitempty"`
	LockData       *LockBundle             `json:"lockData,omitempty"`
}

// ModuleBundle is the persisted form of a module. Only the fields of its
// Type are set.
type ModuleBundle struct {
	Type asset.ModuleType `json:"type"`

	// typed
	Variant    string        `json:"variant,omitempty"`
	SelectedBy *CharacterRef `json:"selectedBy,omitempty"`
	SelectedAt int64         `json:"selectedAt,omitempty"`

	// storage
	Items []ItemBundle `json:"items,omitempty"`

	// lockSlot
	Lock *ItemBundle `json:"lock,omitempty"`

	// text
	Text string `json:"text,omitempty"`

	// encrypted; client bundles only carry HasContent
	Salt       []byte `json:"salt,omitempty"`
	Sealed     []byte `json:"sealed,omitempty"`
	HasContent bool   `json:"hasContent,omitempty"`
}

// RoomDeviceBundle is the persisted state of a room device.
type RoomDeviceBundle struct {
	Deployment    *Deployment            `json:"deployment,omitempty"`
	SlotOccupancy map[string]CharacterID `json:"slotOccupancy,omitempty"`
}

// LockBundle is the persisted state of a lock. Client bundles replace
// Password and PasswordSetBy with HasPassword.
type LockBundle struct {
	Locked        *LockedState `json:"locked,omitempty"`
	Password      string       `json:"password,omitempty"`
	PasswordSetBy CharacterID  `json:"passwordSetBy,omitempty"`
	HasPassword   bool         `json:"hasPassword,omitempty"`
}

// ErrInvalidItemID is returned when a bundle carries a malformed id.
var ErrInvalidItemID = errors.New("invalid item id")

// ExportToBundle returns the full server side bundle of the item.
func (it *Item) ExportToBundle() ItemBundle {
	return it.exportBundle(false)
}

// ExportToClientBundle returns the bundle sent to clients, without secrets.
func (it *Item) ExportToClientBundle() ItemBundle {
	return it.exportBundle(true)
}

func (it *Item) exportBundle(client bool) ItemBundle {
	b := ItemBundle{
		ID:          it.id,
		Asset:       it.asset.ID,
		Color:       maps.Clone(it.color),
		Name:        it.name,
		Description: it.description,
	}
	if len(it.modules) > 0 {
		b.ModuleData = make(map[string]ModuleBundle, len(it.modules))
		for _, m := range it.modules {
			b.ModuleData[m.Config().Name] = m.exportBundle(client)
		}
	}
	switch it.asset.Type {
	case asset.TypePersonal:
	case asset.TypeRoomDevice:
		b.RoomDeviceData = &RoomDeviceBundle{
			Deployment:    it.Deployment(),
			SlotOccupancy: maps.Clone(it.occupancy),
		}
	case asset.TypeRoomDeviceWearablePart:
		b.RoomDeviceLink = it.Link()
	case asset.TypeLock:
		b.LockData = &LockBundle{Locked: it.lock.Locked}
		if client {
			b.LockData.HasPassword = it.lock.HasPassword()
		} else {
			b.LockData.Password = it.lock.Password
			b.LockData.PasswordSetBy = it.lock.PasswordSetBy
		}
	default:
		panic(oops.Code("ITEM_TYPE_UNKNOWN").With("type", it.asset.Type).Errorf("unhandled item type"))
	}
	return b
}

// LoadFromBundle rebuilds an item from its bundle. Unknown assets and
// malformed ids are errors; smaller problems such as unknown colors, module
// variants or nested items are repaired and logged as warnings.
//
// Wearable parts come back unresolved; see ResolveLink.
func LoadFromBundle(ctx LoadContext, b ItemBundle) (*Item, error) {
	if !b.ID.IsValid() {
		return nil, oops.Code("ITEM_ID_INVALID").With("item", b.ID).Wrap(ErrInvalidItemID)
	}
	a := ctx.Manager.AssetByID(b.Asset)
	if a == nil {
		return nil, oops.Code("ASSET_NOT_FOUND").With("item", b.ID).With("asset", b.Asset).Wrap(asset.ErrUnknownAsset)
	}
	it := New(a, b.ID)
	it.color = sanitizeColor(ctx, a, b.Color)
	if validCustomText(b.Name, MaxNameLength, false) && validCustomText(b.Description, MaxDescriptionLength, true) {
		it.name = b.Name
		it.description = b.Description
	} else {
		ctx.logger().Warn("dropping invalid item customization", "item", b.ID)
	}

	for i, m := range it.modules {
		cfg := m.Config()
		data, ok := b.ModuleData[cfg.Name]
		if !ok {
			continue
		}
		if data.Type != cfg.Type {
			ctx.logger().Warn("module type changed, using defaults",
				"item", b.ID, "module", cfg.Name, "stored", data.Type, "expected", cfg.Type)
			continue
		}
		it.modules[i] = loadModule(ctx, cfg, data)
	}

	switch a.Type {
	case asset.TypePersonal:
	case asset.TypeRoomDevice:
		if d := b.RoomDeviceData; d != nil && d.Deployment != nil {
			dep := *d.Deployment
			it.deployment = &dep
			for slot, character := range d.SlotOccupancy {
				if _, ok := a.DeviceSlot(slot); !ok || character == "" {
					ctx.logger().Warn("dropping unknown device slot occupancy", "item", b.ID, "slot", slot)
					continue
				}
				if it.occupancy == nil {
					it.occupancy = map[string]CharacterID{}
				}
				it.occupancy[slot] = character
			}
		}
	case asset.TypeRoomDeviceWearablePart:
		if b.RoomDeviceLink != nil {
			link := *b.RoomDeviceLink
			it.link = &link
		}
	case asset.TypeLock:
		if d := b.LockData; d != nil {
			it.lock = LockData{
				Locked:        d.Locked,
				Password:      d.Password,
				PasswordSetBy: d.PasswordSetBy,
				hasPassword:   d.HasPassword,
			}
		}
	default:
		panic(oops.Code("ITEM_TYPE_UNKNOWN").With("type", a.Type).Errorf("unhandled item type"))
	}
	return it, nil
}

func loadModule(ctx LoadContext, cfg *asset.ModuleConfig, b ModuleBundle) Module {
	switch cfg.Type {
	case asset.ModuleTyped:
		return loadTypedModule(ctx, cfg, b)
	case asset.ModuleStorage:
		return loadStorageModule(ctx, cfg, b)
	case asset.ModuleLockSlot:
		return loadLockSlotModule(ctx, cfg, b)
	case asset.ModuleText:
		return loadTextModule(ctx, cfg, b)
	case asset.ModuleEncrypted:
		return loadEncryptedModule(ctx, cfg, b)
	default:
		panic(oops.Code("MODULE_TYPE_UNKNOWN").With("type", cfg.Type).Errorf("unhandled module type"))
	}
}
