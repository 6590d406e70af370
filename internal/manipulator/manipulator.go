// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package manipulator

import (
	"slices"

	"github.com/holomush/wardrobe/internal/asset"
	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/validation"
)

// Append as the index of AddItem adds to the end of the list.
const Append = -1

// level is the owner of one item list.
type level interface {
	items() []*item.Item
	// replace offers a new list; false when the owner refuses it.
	replace(items []*item.Item) bool
}

// Manipulator is the operation set shared by root and container manipulators.
type Manipulator interface {
	// Items returns the current list of the level.
	Items() []*item.Item
	// Path returns the container path of the level.
	Path() ContainerPath
	// AddItem inserts an item at index, or at the end with Append.
	AddItem(it *item.Item, index int) bool
	// RemoveMatchingItems removes every matching item and returns them.
	RemoveMatchingItems(match func(*item.Item) bool) []*item.Item
	// MoveItem shifts an item by shift positions.
	MoveItem(id item.ID, shift int) bool
	// ModifyItem replaces an item with the result of mutate. A nil result
	// refuses the change.
	ModifyItem(id item.ID, mutate func(*item.Item) *item.Item) bool
	// Container returns the manipulator of a module of an item on this level.
	Container(id item.ID, module string) (*ContainerManipulator, bool)
}

// ops implements the shared operations on top of a level.
type ops struct {
	lvl  level
	path ContainerPath
}

func (o ops) Items() []*item.Item { return o.lvl.items() }

func (o ops) Path() ContainerPath { return o.path }

func (o ops) AddItem(it *item.Item, index int) bool {
	current := o.lvl.items()
	if index == Append {
		index = len(current)
	}
	if index < 0 || index > len(current) {
		return false
	}
	return o.lvl.replace(slices.Insert(slices.Clone(current), index, it))
}

func (o ops) RemoveMatchingItems(match func(*item.Item) bool) []*item.Item {
	current := o.lvl.items()
	var removed []*item.Item
	kept := make([]*item.Item, 0, len(current))
	for _, it := range current {
		if match(it) {
			removed = append(removed, it)
			continue
		}
		kept = append(kept, it)
	}
	if len(removed) == 0 || !o.lvl.replace(kept) {
		return nil
	}
	return removed
}

func (o ops) MoveItem(id item.ID, shift int) bool {
	current := o.lvl.items()
	from := indexOf(current, id)
	to := from + shift
	if from < 0 || to < 0 || to >= len(current) {
		return false
	}
	if shift == 0 {
		return true
	}
	next := slices.Clone(current)
	it := next[from]
	next = slices.Delete(next, from, from+1)
	next = slices.Insert(next, to, it)
	return o.lvl.replace(next)
}

func (o ops) ModifyItem(id item.ID, mutate func(*item.Item) *item.Item) bool {
	current := o.lvl.items()
	idx := indexOf(current, id)
	if idx < 0 {
		return false
	}
	changed := mutate(current[idx])
	if changed == nil || changed.ID() != id {
		return false
	}
	next := slices.Clone(current)
	next[idx] = changed
	return o.lvl.replace(next)
}

func (o ops) Container(id item.ID, module string) (*ContainerManipulator, bool) {
	step := Step{Item: id, Module: module}
	if moduleAt(o.lvl.items(), step) == nil {
		return nil, false
	}
	c := &ContainerManipulator{parent: o, step: step}
	c.ops = ops{lvl: c, path: o.path.Append(step)}
	return c, true
}

func indexOf(items []*item.Item, id item.ID) int {
	return slices.IndexFunc(items, func(it *item.Item) bool { return it.ID() == id })
}

// RootManipulator edits the root list of a character or room. Only the
// root may be reset or reordered by bodypart.
type RootManipulator struct {
	ops
	manager asset.Manager
	current []*item.Item
	commit  func([]*item.Item)
}

var _ Manipulator = (*RootManipulator)(nil)

// NewRoot returns a manipulator over items. commit, when not nil, is called
// with every accepted list.
func NewRoot(manager asset.Manager, items []*item.Item, commit func([]*item.Item)) *RootManipulator {
	r := &RootManipulator{manager: manager, current: items, commit: commit}
	r.ops = ops{lvl: r}
	return r
}

func (r *RootManipulator) items() []*item.Item { return r.current }

func (r *RootManipulator) replace(items []*item.Item) bool {
	r.current = items
	if r.commit != nil {
		r.commit(items)
	}
	return true
}

// ResetItemsTo replaces the whole list.
func (r *RootManipulator) ResetItemsTo(items []*item.Item) {
	r.replace(slices.Clone(items))
}

// FixBodypartOrder moves bodyparts to the front in canonical order.
func (r *RootManipulator) FixBodypartOrder() {
	sorted := validation.SortByBodypartOrder(r.manager, r.current)
	if !slices.Equal(sorted, r.current) {
		r.replace(sorted)
	}
}

// ContainerManipulator edits the contents of a container module.
type ContainerManipulator struct {
	ops
	parent ops
	step   Step
}

var _ Manipulator = (*ContainerManipulator)(nil)

// Owner returns the item holding the container.
func (c *ContainerManipulator) Owner() *item.Item {
	idx := indexOf(c.parent.Items(), c.step.Item)
	if idx < 0 {
		return nil
	}
	return c.parent.Items()[idx]
}

// Module returns the name of the container module.
func (c *ContainerManipulator) Module() string { return c.step.Module }

func (c *ContainerManipulator) items() []*item.Item {
	if m := moduleAt(c.parent.Items(), c.step); m != nil {
		return m.Items()
	}
	return nil
}

func (c *ContainerManipulator) replace(items []*item.Item) bool {
	return c.parent.ModifyItem(c.step.Item, func(owner *item.Item) *item.Item {
		return owner.SetModuleItems(c.step.Module, items)
	})
}

// Open walks a container path from m.
func Open(m Manipulator, path ContainerPath) (Manipulator, bool) {
	current := m
	for _, step := range path {
		c, ok := current.Container(step.Item, step.Module)
		if !ok {
			return nil, false
		}
		current = c
	}
	return current, true
}
