// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package pose

import (
	"strconv"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// StringList is a list of strings that also accepts a single scalar in YAML.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*s = StringList{value.Value}
		return nil
	}
	var list []string
	if err := value.Decode(&list); err != nil {
		return oops.Code("POSE_LIMIT_INVALID").Wrapf(err, "decode string list")
	}
	*s = list
	return nil
}

// BoneLimit lists the allowed rotation ranges of one bone. In YAML it is a
// single number, or a list whose entries are numbers or [min, max] pairs.
type BoneLimit []Interval

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *BoneLimit) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		v, err := strconv.ParseFloat(value.Value, 64)
		if err != nil {
			return oops.Code("POSE_LIMIT_INVALID").With("value", value.Value).Wrapf(err, "parse bone limit")
		}
		*b = BoneLimit{{Min: v, Max: v}}
		return nil
	}
	var entries []yaml.Node
	if err := value.Decode(&entries); err != nil {
		return oops.Code("POSE_LIMIT_INVALID").Wrapf(err, "decode bone limit")
	}
	result := make(BoneLimit, 0, len(entries))
	for i := range entries {
		entry := &entries[i]
		if entry.Kind == yaml.ScalarNode {
			var v float64
			if err := entry.Decode(&v); err != nil {
				return oops.Code("POSE_LIMIT_INVALID").Wrapf(err, "decode bone value")
			}
			result = append(result, Interval{Min: v, Max: v})
			continue
		}
		var pair []float64
		if err := entry.Decode(&pair); err != nil || len(pair) != 2 {
			return oops.Code("POSE_LIMIT_INVALID").Errorf("bone range must be a [min, max] pair")
		}
		result = append(result, Interval{Min: pair[0], Max: pair[1]})
	}
	*b = result
	return nil
}

// ArmLimits restricts the enum dimensions of an arm.
type ArmLimits struct {
	Position StringList `yaml:"position,omitempty" json:"position,omitempty"`
	Rotation StringList `yaml:"rotation,omitempty" json:"rotation,omitempty"`
	Fingers  StringList `yaml:"fingers,omitempty" json:"fingers,omitempty"`
}

// LimitsDefinition is the catalog form of the pose limits of an asset.
// Options are mutually exclusive alternative configurations.
type LimitsDefinition struct {
	Bones    map[string]BoneLimit `yaml:"bones,omitempty" json:"bones,omitempty"`
	Arms     *ArmLimits           `yaml:"arms,omitempty" json:"arms,omitempty"`
	LeftArm  *ArmLimits           `yaml:"leftArm,omitempty" json:"leftArm,omitempty"`
	RightArm *ArmLimits           `yaml:"rightArm,omitempty" json:"rightArm,omitempty"`
	Legs     StringList           `yaml:"legs,omitempty" json:"legs,omitempty"`
	View     StringList           `yaml:"view,omitempty" json:"view,omitempty"`
	Options  []LimitsDefinition   `yaml:"options,omitempty" json:"options,omitempty"`
}

// Compile converts the definition into a limit tree.
// A definition that contradicts itself is an error.
func (d *LimitsDefinition) Compile() (*Node, error) {
	if d == nil {
		return Unlimited(), nil
	}
	limit := Limit{}
	add := func(key string, set IntervalSet) error {
		if existing, ok := limit[key]; ok {
			set = existing.Intersect(set)
		}
		if set.IsEmpty() {
			return oops.Code("POSE_LIMIT_INVALID").With("key", key).Errorf("pose limit admits no value")
		}
		limit[key] = set
		return nil
	}
	addEnum := func(key string, values StringList) error {
		if len(values) == 0 {
			return nil
		}
		intervals := make([]Interval, 0, len(values))
		for _, v := range values {
			idx := EnumOrdinal(key, v)
			if idx < 0 {
				return oops.Code("POSE_LIMIT_INVALID").With("key", key).With("value", v).Errorf("unknown pose value")
			}
			intervals = append(intervals, Interval{Min: float64(idx), Max: float64(idx)})
		}
		return add(key, NewIntervalSet(intervals...))
	}
	addArm := func(side string, arm *ArmLimits) error {
		if arm == nil {
			return nil
		}
		if err := addEnum(side+".position", arm.Position); err != nil {
			return err
		}
		if err := addEnum(side+".rotation", arm.Rotation); err != nil {
			return err
		}
		return addEnum(side+".fingers", arm.Fingers)
	}

	for bone, ranges := range d.Bones {
		for _, iv := range ranges {
			if iv.Min < -BoneRange || iv.Max > BoneRange {
				return nil, oops.Code("POSE_LIMIT_INVALID").With("bone", bone).Errorf("bone limit out of range")
			}
		}
		if err := add(KeyBonesPrefix+bone, NewIntervalSet(ranges...)); err != nil {
			return nil, err
		}
	}
	for _, side := range []string{"leftArm", "rightArm"} {
		if err := addArm(side, d.Arms); err != nil {
			return nil, err
		}
	}
	if err := addArm("leftArm", d.LeftArm); err != nil {
		return nil, err
	}
	if err := addArm("rightArm", d.RightArm); err != nil {
		return nil, err
	}
	if err := addEnum(KeyLegs, d.Legs); err != nil {
		return nil, err
	}
	if err := addEnum(KeyView, d.View); err != nil {
		return nil, err
	}

	if len(d.Options) == 0 {
		return NewNode(limit), nil
	}
	children := make([]*Node, 0, len(d.Options))
	for i := range d.Options {
		child, err := d.Options[i].Compile()
		if err != nil {
			return nil, oops.With("option", i).Wrap(err)
		}
		children = append(children, child)
	}
	node := NewNode(limit, children...)
	if node == nil {
		return nil, oops.Code("POSE_LIMIT_INVALID").Errorf("no pose limit option is compatible with the base limits")
	}
	return node, nil
}
