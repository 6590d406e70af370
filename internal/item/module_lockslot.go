// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import (
	"github.com/holomush/wardrobe/internal/asset"
)

// LockSlotModule holds zero or one lock item. Its properties depend on
// whether a lock is attached and whether that lock is locked.
type LockSlotModule struct {
	config *asset.ModuleConfig
	lock   *Item
}

// Config implements Module.
func (m *LockSlotModule) Config() *asset.ModuleConfig { return m.config }

// Lock returns the attached lock, or nil.
func (m *LockSlotModule) Lock() *Item { return m.lock }

// IsLocked reports whether a lock is attached and locked.
func (m *LockSlotModule) IsLocked() bool {
	return m.lock != nil && m.lock.IsLocked()
}

// Properties implements Module.
func (m *LockSlotModule) Properties() []*asset.PropertiesDefinition {
	if m.lock == nil {
		return nil
	}
	var parts []*asset.PropertiesDefinition
	if m.config.OccupiedProperties != nil {
		parts = append(parts, m.config.OccupiedProperties)
	}
	state := m.config.UnlockedProperties
	if m.lock.IsLocked() {
		state = m.config.LockedProperties
	}
	if state != nil {
		parts = append(parts, state)
	}
	return parts
}

// Items implements Module.
func (m *LockSlotModule) Items() []*Item {
	if m.lock == nil {
		return nil
	}
	return []*Item{m.lock}
}

// ContentLocation implements Module.
func (m *LockSlotModule) ContentLocation() Location { return LocationAttached }

// AcceptsContent implements Module.
func (m *LockSlotModule) AcceptsContent(it *Item) bool {
	return it.asset.Type == asset.TypeLock
}

// SetItems implements Module. A lock slot holds at most one lock.
func (m *LockSlotModule) SetItems(items []*Item) (Module, bool) {
	switch len(items) {
	case 0:
		return &LockSlotModule{config: m.config}, true
	case 1:
		if !m.AcceptsContent(items[0]) {
			return nil, false
		}
		return &LockSlotModule{config: m.config, lock: items[0]}, true
	default:
		return nil, false
	}
}

// DoAction implements Module.
func (m *LockSlotModule) DoAction(ctx ActionContext, action ModuleAction) (Module, ActionResult) {
	la, ok := action.(LockSlotAction)
	if !ok || la.Action == nil {
		return nil, invalidResult()
	}
	if m.lock == nil {
		return nil, failedResult(ReasonNoLock)
	}
	lock, res := m.lock.LockAction(ctx, la.Action)
	if res.Outcome != OutcomeOK {
		return nil, res
	}
	return &LockSlotModule{config: m.config, lock: lock}, res
}

// Validate implements Module.
func (m *LockSlotModule) Validate(ctx ValidationContext, owner *Item) ValidationError {
	return validateContents(ctx, owner, m)
}

func (m *LockSlotModule) exportBundle(client bool) ModuleBundle {
	b := ModuleBundle{Type: asset.ModuleLockSlot}
	if m.lock != nil {
		lb := m.lock.exportBundle(client)
		b.Lock = &lb
	}
	return b
}

func (m *LockSlotModule) exportTemplate() ModuleTemplate {
	t := ModuleTemplate{Type: asset.ModuleLockSlot}
	if m.lock != nil {
		lt := m.lock.ExportToTemplate()
		t.Lock = &lt
	}
	return t
}

func loadLockSlotModule(ctx LoadContext, cfg *asset.ModuleConfig, b ModuleBundle) *LockSlotModule {
	m := &LockSlotModule{config: cfg}
	if b.Lock == nil {
		return m
	}
	lock, err := LoadFromBundle(ctx, *b.Lock)
	if err != nil {
		ctx.logger().Warn("skipping attached lock", "module", cfg.Name, "item", b.Lock.ID, "error", err)
		return m
	}
	if !m.AcceptsContent(lock) {
		ctx.logger().Warn("skipping attached item that is not a lock", "module", cfg.Name, "item", lock.id)
		return m
	}
	m.lock = lock
	return m
}
