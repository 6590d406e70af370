// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import (
	"maps"

	"github.com/samber/oops"

	"github.com/holomush/wardrobe/internal/asset"
)

// Template describes an item to spawn, without ids or runtime state such as
// lock status or deployment.
type Template struct {
	Asset       asset.ID                  `json:"asset"`
	Color       Color                     `json:"color,omitempty"`
	Name        string                    `json:"name,omitempty"`
	Description string                    `json:"description,omitempty"`
	Modules     map[string]ModuleTemplate `json:"modules,omitempty"`
}

// ModuleTemplate describes the initial data of a module.
type ModuleTemplate struct {
	Type    asset.ModuleType `json:"type"`
	Variant string           `json:"variant,omitempty"`
	Items   []Template       `json:"items,omitempty"`
	Lock    *Template        `json:"lock,omitempty"`
	Text    string           `json:"text,omitempty"`
}

// ExportToTemplate returns a template spawning a copy of the item.
func (it *Item) ExportToTemplate() Template {
	t := Template{
		Asset:       it.asset.ID,
		Color:       maps.Clone(it.color),
		Name:        it.name,
		Description: it.description,
	}
	for _, m := range it.modules {
		if t.Modules == nil {
			t.Modules = make(map[string]ModuleTemplate, len(it.modules))
		}
		t.Modules[m.Config().Name] = m.exportTemplate()
	}
	return t
}

// NewFromTemplate spawns a new item, and new nested items, from a template.
// newID supplies fresh ids. Parts of the template that do not fit the asset
// are ignored; an unknown asset is an error.
func NewFromTemplate(manager asset.Manager, t Template, newID func() ID) (*Item, error) {
	a := manager.AssetByID(t.Asset)
	if a == nil {
		return nil, oops.Code("ASSET_NOT_FOUND").With("asset", t.Asset).Wrap(asset.ErrUnknownAsset)
	}
	it := New(a, newID())
	if colored := it.ChangeColor(t.Color); colored != nil {
		it = colored
	}
	if custom := it.Customize(t.Name, t.Description); custom != nil {
		it = custom
	}
	ctx := ActionContext{}
	for name, mt := range t.Modules {
		idx := it.moduleIndex(name)
		if idx < 0 || it.modules[idx].Config().Type != mt.Type {
			continue
		}
		m, err := moduleFromTemplate(manager, it.modules[idx], mt, ctx, newID)
		if err != nil {
			return nil, oops.With("module", name).Wrap(err)
		}
		it.modules[idx] = m
		it.cache = &itemCache{}
	}
	return it, nil
}

func moduleFromTemplate(manager asset.Manager, m Module, t ModuleTemplate, ctx ActionContext, newID func() ID) (Module, error) {
	switch m.Config().Type {
	case asset.ModuleTyped:
		if t.Variant == "" {
			return m, nil
		}
		if next, res := m.DoAction(ctx, SelectVariant{Variant: t.Variant}); res.Outcome == OutcomeOK {
			return next, nil
		}
		return m, nil
	case asset.ModuleText:
		if next, res := m.DoAction(ctx, SetText{Text: t.Text}); res.Outcome == OutcomeOK {
			return next, nil
		}
		return m, nil
	case asset.ModuleStorage:
		items := make([]*Item, 0, len(t.Items))
		for _, child := range t.Items {
			it, err := NewFromTemplate(manager, child, newID)
			if err != nil {
				return nil, err
			}
			if m.AcceptsContent(it) {
				items = append(items, it)
			}
		}
		next, _ := m.SetItems(items)
		return next, nil
	case asset.ModuleLockSlot:
		if t.Lock == nil {
			return m, nil
		}
		lock, err := NewFromTemplate(manager, *t.Lock, newID)
		if err != nil {
			return nil, err
		}
		if next, ok := m.SetItems([]*Item{lock}); ok {
			return next, nil
		}
		return m, nil
	case asset.ModuleEncrypted:
		return m, nil
	default:
		panic(oops.Code("MODULE_TYPE_UNKNOWN").With("type", m.Config().Type).Errorf("unhandled module type"))
	}
}
