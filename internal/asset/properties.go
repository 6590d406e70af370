// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package asset

import (
	"github.com/samber/oops"

	"github.com/holomush/wardrobe/internal/pose"
)

// Effects are character-wide consequences of wearing an item.
type Effects struct {
	BlockHands bool `yaml:"blockHands,omitempty" json:"blockHands,omitempty"`
	Blind      bool `yaml:"blind,omitempty" json:"blind,omitempty"`
	// ActionSlowdownMs delays actions performed by the wearer.
	ActionSlowdownMs int64 `yaml:"actionSlowdownMs,omitempty" json:"actionSlowdownMs,omitempty"`
}

// Merge combines two effect sets. Flags are or-ed, slowdowns take the maximum.
func (e Effects) Merge(o Effects) Effects {
	return Effects{
		BlockHands:       e.BlockHands || o.BlockHands,
		Blind:            e.Blind || o.Blind,
		ActionSlowdownMs: max(e.ActionSlowdownMs, o.ActionSlowdownMs),
	}
}

// SlotProperties describes cross-item slot usage.
type SlotProperties struct {
	// Occupy is how much capacity of each slot the item consumes.
	Occupy map[string]int `yaml:"occupy,omitempty"`
	// Block lists slots that items later in wear order may not occupy.
	Block []string `yaml:"block,omitempty"`
}

// PropertiesDefinition is a set of static properties contributed by an
// asset, a typed module variant or a lock slot state.
type PropertiesDefinition struct {
	Provides []string `yaml:"provides,omitempty"`
	// Requires holds requirement expressions, see ParseRequirement.
	Requires           []string               `yaml:"requires,omitempty"`
	Hides              []string               `yaml:"hides,omitempty"`
	Effects            Effects                `yaml:"effects,omitempty"`
	PoseLimits         *pose.LimitsDefinition `yaml:"poseLimits,omitempty"`
	Slots              SlotProperties         `yaml:"slots,omitempty"`
	BlockAddRemove     bool                   `yaml:"blockAddRemove,omitempty"`
	BlockSelfAddRemove bool                   `yaml:"blockSelfAddRemove,omitempty"`
	BlockModules       []string               `yaml:"blockModules,omitempty"`
	BlockSelfModules   []string               `yaml:"blockSelfModules,omitempty"`

	requirements []Requirement
	poseTree     *pose.Node
	compiled     bool
}

// Requirements returns the parsed requirement expressions.
func (p *PropertiesDefinition) Requirements() []Requirement {
	if p == nil {
		return nil
	}
	return p.requirements
}

// PoseTree returns the compiled pose limits; Unlimited when none are set.
func (p *PropertiesDefinition) PoseTree() *pose.Node {
	if p == nil || p.poseTree == nil {
		return pose.Unlimited()
	}
	return p.poseTree
}

// IsEmpty reports whether the definition contributes nothing.
func (p *PropertiesDefinition) IsEmpty() bool {
	if p == nil {
		return true
	}
	return len(p.Provides) == 0 && len(p.Requires) == 0 && len(p.Hides) == 0 &&
		p.Effects == (Effects{}) && p.PoseLimits == nil && len(p.Slots.Occupy) == 0 &&
		len(p.Slots.Block) == 0 && !p.BlockAddRemove && !p.BlockSelfAddRemove &&
		len(p.BlockModules) == 0 && len(p.BlockSelfModules) == 0
}

// compile parses requirement expressions and pose limits. It is idempotent.
func (p *PropertiesDefinition) compile() error {
	if p == nil || p.compiled {
		return nil
	}
	reqs := make([]Requirement, 0, len(p.Requires))
	for _, expr := range p.Requires {
		req, err := ParseRequirement(expr)
		if err != nil {
			return oops.With("requirement", expr).Wrap(err)
		}
		reqs = append(reqs, req)
	}
	tree, err := p.PoseLimits.Compile()
	if err != nil {
		return err
	}
	p.requirements = reqs
	p.poseTree = tree
	p.compiled = true
	return nil
}
