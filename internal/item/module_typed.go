// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import (
	"github.com/holomush/wardrobe/internal/asset"
)

// TypedModule selects one variant out of a fixed list.
type TypedModule struct {
	config     *asset.ModuleConfig
	variant    *asset.TypedVariant
	selectedBy *CharacterRef
	selectedAt int64
}

func newTypedModule(cfg *asset.ModuleConfig) *TypedModule {
	return &TypedModule{config: cfg, variant: cfg.DefaultVariant()}
}

// Config implements Module.
func (m *TypedModule) Config() *asset.ModuleConfig { return m.config }

// Variant returns the active variant.
func (m *TypedModule) Variant() *asset.TypedVariant { return m.variant }

// SelectedBy returns who selected the variant, when the variant stores it.
func (m *TypedModule) SelectedBy() *CharacterRef { return m.selectedBy }

// SelectedAt returns when the variant was selected, in unix milliseconds.
func (m *TypedModule) SelectedAt() int64 { return m.selectedAt }

// Properties implements Module.
func (m *TypedModule) Properties() []*asset.PropertiesDefinition {
	if m.variant == nil || m.variant.Properties == nil {
		return nil
	}
	return []*asset.PropertiesDefinition{m.variant.Properties}
}

// Items implements Module.
func (m *TypedModule) Items() []*Item { return nil }

// ContentLocation implements Module.
func (m *TypedModule) ContentLocation() Location { return "" }

// AcceptsContent implements Module.
func (m *TypedModule) AcceptsContent(*Item) bool { return false }

// SetItems implements Module.
func (m *TypedModule) SetItems([]*Item) (Module, bool) { return nil, false }

// DoAction implements Module.
func (m *TypedModule) DoAction(ctx ActionContext, action ModuleAction) (Module, ActionResult) {
	sel, ok := action.(SelectVariant)
	if !ok {
		return nil, invalidResult()
	}
	variant, ok := m.config.Variant(sel.Variant)
	if !ok {
		return nil, invalidResult()
	}
	next := &TypedModule{config: m.config, variant: variant}
	if variant.StoreCharacter {
		next.selectedBy = ctx.playerRef()
	}
	if variant.StoreTime {
		next.selectedAt = ctx.Now.UnixMilli()
	}
	return next, okResult()
}

// Validate implements Module.
func (m *TypedModule) Validate(_ ValidationContext, owner *Item) ValidationError {
	if m.variant == nil {
		return Invalid{Item: owner.id, Reason: "module " + m.config.Name + " has no variant"}
	}
	return nil
}

func (m *TypedModule) exportBundle(bool) ModuleBundle {
	b := ModuleBundle{Type: asset.ModuleTyped, SelectedBy: m.selectedBy, SelectedAt: m.selectedAt}
	if m.variant != nil {
		b.Variant = m.variant.ID
	}
	return b
}

func (m *TypedModule) exportTemplate() ModuleTemplate {
	t := ModuleTemplate{Type: asset.ModuleTyped}
	if m.variant != nil {
		t.Variant = m.variant.ID
	}
	return t
}

func loadTypedModule(ctx LoadContext, cfg *asset.ModuleConfig, b ModuleBundle) *TypedModule {
	m := newTypedModule(cfg)
	if b.Variant == "" {
		return m
	}
	variant, ok := cfg.Variant(b.Variant)
	if !ok {
		ctx.logger().Warn("unknown module variant, using default",
			"module", cfg.Name, "variant", b.Variant)
		return m
	}
	m.variant = variant
	if variant.StoreCharacter {
		m.selectedBy = b.SelectedBy
	}
	if variant.StoreTime {
		m.selectedAt = b.SelectedAt
	}
	return m
}
