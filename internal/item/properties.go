// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import (
	"maps"

	"github.com/holomush/wardrobe/internal/asset"
	"github.com/holomush/wardrobe/internal/pose"
)

// Properties is the flattened contribution of one or more property definitions.
type Properties struct {
	Attributes   map[string]bool
	Requirements []asset.Requirement
	Hides        map[string]bool
	Effects      asset.Effects
	// PoseLimits is nil when the merged limits conflict.
	PoseLimits         *pose.Node
	SlotOccupy         map[string]int
	SlotBlock          map[string]bool
	BlockAddRemove     bool
	BlockSelfAddRemove bool
	BlockModules       map[string]bool
	BlockSelfModules   map[string]bool
}

// NewProperties returns an empty property set.
func NewProperties() *Properties {
	return &Properties{
		Attributes:       map[string]bool{},
		Hides:            map[string]bool{},
		PoseLimits:       pose.Unlimited(),
		SlotOccupy:       map[string]int{},
		SlotBlock:        map[string]bool{},
		BlockModules:     map[string]bool{},
		BlockSelfModules: map[string]bool{},
	}
}

// Add folds a definition into the set.
func (p *Properties) Add(def *asset.PropertiesDefinition) {
	if def == nil {
		return
	}
	for _, a := range def.Provides {
		p.Attributes[a] = true
	}
	p.Requirements = append(p.Requirements, def.Requirements()...)
	for _, a := range def.Hides {
		p.Hides[a] = true
	}
	p.Effects = p.Effects.Merge(def.Effects)
	if def.PoseLimits != nil {
		p.PoseLimits = p.PoseLimits.Intersection(def.PoseTree())
	}
	for slot, n := range def.Slots.Occupy {
		p.SlotOccupy[slot] += n
	}
	for _, slot := range def.Slots.Block {
		p.SlotBlock[slot] = true
	}
	p.BlockAddRemove = p.BlockAddRemove || def.BlockAddRemove
	p.BlockSelfAddRemove = p.BlockSelfAddRemove || def.BlockSelfAddRemove
	for _, m := range def.BlockModules {
		p.BlockModules[m] = true
	}
	for _, m := range def.BlockSelfModules {
		p.BlockSelfModules[m] = true
	}
}

// Clone returns an independent copy.
func (p *Properties) Clone() *Properties {
	c := *p
	c.Attributes = maps.Clone(p.Attributes)
	c.Hides = maps.Clone(p.Hides)
	c.SlotOccupy = maps.Clone(p.SlotOccupy)
	c.SlotBlock = maps.Clone(p.SlotBlock)
	c.BlockModules = maps.Clone(p.BlockModules)
	c.BlockSelfModules = maps.Clone(p.BlockSelfModules)
	c.Requirements = append([]asset.Requirement(nil), p.Requirements...)
	return &c
}

// HasAttribute reports whether the attribute is provided.
func (p *Properties) HasAttribute(name string) bool {
	return p.Attributes[name]
}

// BlocksModule reports whether the module of the item is blocked for the
// player. self is true when the player wears the item.
func (p *Properties) BlocksModule(name string, self bool) bool {
	return p.BlockModules[name] || (self && p.BlockSelfModules[name])
}

// BlocksAddRemove reports whether the item may not be added or removed.
func (p *Properties) BlocksAddRemove(self bool) bool {
	return p.BlockAddRemove || (self && p.BlockSelfAddRemove)
}
