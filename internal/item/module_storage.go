// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import (
	"github.com/holomush/wardrobe/internal/asset"
)

// StorageModule holds a bounded list of small enough items.
type StorageModule struct {
	config *asset.ModuleConfig
	items  []*Item
}

// Config implements Module.
func (m *StorageModule) Config() *asset.ModuleConfig { return m.config }

// Properties implements Module.
func (m *StorageModule) Properties() []*asset.PropertiesDefinition { return nil }

// Items implements Module.
func (m *StorageModule) Items() []*Item { return m.items }

// ContentLocation implements Module.
func (m *StorageModule) ContentLocation() Location { return LocationStored }

// AcceptsContent implements Module. Only personal non-bodypart items and
// locks up to the configured size fit.
func (m *StorageModule) AcceptsContent(it *Item) bool {
	switch it.asset.Type {
	case asset.TypePersonal:
		if it.IsBodypart() {
			return false
		}
	case asset.TypeLock:
	case asset.TypeRoomDevice, asset.TypeRoomDeviceWearablePart:
		return false
	}
	return it.asset.Size.Rank() <= m.config.MaxAcceptedSize.Rank()
}

// SetItems implements Module.
func (m *StorageModule) SetItems(items []*Item) (Module, bool) {
	return &StorageModule{config: m.config, items: items}, true
}

// DoAction implements Module. Storage has no actions of its own.
func (m *StorageModule) DoAction(ActionContext, ModuleAction) (Module, ActionResult) {
	return nil, invalidResult()
}

// Validate implements Module.
func (m *StorageModule) Validate(ctx ValidationContext, owner *Item) ValidationError {
	if len(m.items) > m.config.MaxCount {
		return TooManyItems{Item: owner.id, Module: m.config.Name, Limit: m.config.MaxCount}
	}
	return validateContents(ctx, owner, m)
}

func (m *StorageModule) exportBundle(client bool) ModuleBundle {
	b := ModuleBundle{Type: asset.ModuleStorage, Items: make([]ItemBundle, 0, len(m.items))}
	for _, it := range m.items {
		b.Items = append(b.Items, it.exportBundle(client))
	}
	return b
}

func (m *StorageModule) exportTemplate() ModuleTemplate {
	t := ModuleTemplate{Type: asset.ModuleStorage}
	for _, it := range m.items {
		t.Items = append(t.Items, it.ExportToTemplate())
	}
	return t
}

func loadStorageModule(ctx LoadContext, cfg *asset.ModuleConfig, b ModuleBundle) *StorageModule {
	m := &StorageModule{config: cfg}
	for _, ib := range b.Items {
		it, err := LoadFromBundle(ctx, ib)
		if err != nil {
			ctx.logger().Warn("skipping stored item", "module", cfg.Name, "item", ib.ID, "error", err)
			continue
		}
		m.items = append(m.items, it)
	}
	return m
}
