// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package manipulator edits item trees one level at a time.
//
// A manipulator is a cursor over one item list, either the root list of a
// character or room, or the contents of a container module. Every operation
// computes the complete new list of its level and hands it to the level's
// owner, which may refuse it. Validation of the whole result is left to the
// caller.
package manipulator

import (
	"strings"

	"github.com/holomush/wardrobe/internal/item"
)

// Step enters the module of an item.
type Step struct {
	Item   item.ID `json:"item"`
	Module string  `json:"module"`
}

// ContainerPath addresses a nested item list. The empty path is the root.
type ContainerPath []Step

// IsRoot reports whether the path addresses the root list.
func (p ContainerPath) IsRoot() bool { return len(p) == 0 }

// Parent returns the path of the enclosing container and the last step.
// ok is false for the root.
func (p ContainerPath) Parent() (parent ContainerPath, last Step, ok bool) {
	if len(p) == 0 {
		return nil, Step{}, false
	}
	return p[:len(p)-1], p[len(p)-1], true
}

// Append returns the path one level deeper.
func (p ContainerPath) Append(s Step) ContainerPath {
	result := make(ContainerPath, 0, len(p)+1)
	result = append(result, p...)
	return append(result, s)
}

// Equal reports whether two paths address the same container.
func (p ContainerPath) Equal(o ContainerPath) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// String formats the path for logs, e.g. "i/01.../contents".
func (p ContainerPath) String() string {
	if len(p) == 0 {
		return "/"
	}
	parts := make([]string, 0, len(p))
	for _, s := range p {
		parts = append(parts, string(s.Item)+":"+s.Module)
	}
	return strings.Join(parts, "/")
}

// ItemPath addresses an item inside a container.
type ItemPath struct {
	Container ContainerPath `json:"container,omitempty"`
	Item      item.ID       `json:"item"`
}

// Find returns the item at path inside items, or nil.
func Find(items []*item.Item, path ItemPath) *item.Item {
	level := ItemsAt(items, path.Container)
	for _, it := range level {
		if it.ID() == path.Item {
			return it
		}
	}
	return nil
}

// ItemsAt returns the item list a container path addresses, or nil when the
// path does not resolve.
func ItemsAt(items []*item.Item, path ContainerPath) []*item.Item {
	level := items
	for _, step := range path {
		m := moduleAt(level, step)
		if m == nil {
			return nil
		}
		level = m.Items()
	}
	return level
}

// Owner returns the item holding the container, nil for the root.
func Owner(items []*item.Item, path ContainerPath) *item.Item {
	parent, last, ok := path.Parent()
	if !ok {
		return nil
	}
	return Find(items, ItemPath{Container: parent, Item: last.Item})
}

func moduleAt(level []*item.Item, step Step) item.Module {
	for _, it := range level {
		if it.ID() != step.Item {
			continue
		}
		m := it.Module(step.Module)
		if m == nil || m.ContentLocation() == "" {
			return nil
		}
		return m
	}
	return nil
}
