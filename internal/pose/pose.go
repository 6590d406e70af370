// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package pose contains the character pose model and the pose limit tree used
// to intersect forced-pose constraints contributed by worn items.
package pose

import (
	"maps"
	"strings"
)

// ArmPosition is where an arm is held relative to the body.
type ArmPosition string

// Arm positions, in dimension order.
const (
	ArmFrontAboveHair ArmPosition = "front_above_hair"
	ArmFront          ArmPosition = "front"
	ArmBackBelowHair  ArmPosition = "back_below_hair"
	ArmBack           ArmPosition = "back"
)

// ArmRotation is the rotation of an arm.
type ArmRotation string

// Arm rotations, in dimension order.
const (
	ArmRotationUp       ArmRotation = "up"
	ArmRotationDown     ArmRotation = "down"
	ArmRotationForward  ArmRotation = "forward"
	ArmRotationBackward ArmRotation = "backward"
)

// ArmFingers is the finger pose of a hand.
type ArmFingers string

// Finger poses, in dimension order.
const (
	FingersSpread ArmFingers = "spread"
	FingersFist   ArmFingers = "fist"
)

// Legs is the leg pose of a character.
type Legs string

// Leg poses, in dimension order.
const (
	LegsStanding Legs = "standing"
	LegsSitting  Legs = "sitting"
	LegsKneeling Legs = "kneeling"
)

// View is the side of the character facing the viewer.
type View string

// Views, in dimension order.
const (
	ViewFront View = "front"
	ViewBack  View = "back"
)

// BoneRange is the allowed rotation range of any bone.
const BoneRange = 180

// Dimension key prefixes.
const (
	KeyBonesPrefix = "bones."
	KeyLegs        = "legs"
	KeyView        = "view"
)

// enumValues lists the ordinal values of every enum dimension suffix.
var enumValues = map[string][]string{
	"position": {string(ArmFrontAboveHair), string(ArmFront), string(ArmBackBelowHair), string(ArmBack)},
	"rotation": {string(ArmRotationUp), string(ArmRotationDown), string(ArmRotationForward), string(ArmRotationBackward)},
	"fingers":  {string(FingersSpread), string(FingersFist)},
	KeyLegs:    {string(LegsStanding), string(LegsSitting), string(LegsKneeling)},
	KeyView:    {string(ViewFront), string(ViewBack)},
}

// ArmPose is the pose of a single arm.
type ArmPose struct {
	Position ArmPosition `json:"position" yaml:"position"`
	Rotation ArmRotation `json:"rotation" yaml:"rotation"`
	Fingers  ArmFingers  `json:"fingers" yaml:"fingers"`
}

// Pose is the full pose of a character.
// Missing bones are treated as 0.
type Pose struct {
	Bones    map[string]float64 `json:"bones,omitempty" yaml:"bones,omitempty"`
	LeftArm  ArmPose            `json:"leftArm" yaml:"leftArm"`
	RightArm ArmPose            `json:"rightArm" yaml:"rightArm"`
	Legs     Legs               `json:"legs" yaml:"legs"`
	View     View               `json:"view" yaml:"view"`
}

// Default returns the neutral standing pose.
func Default() Pose {
	arm := ArmPose{Position: ArmFront, Rotation: ArmRotationDown, Fingers: FingersSpread}
	return Pose{
		Bones:    map[string]float64{},
		LeftArm:  arm,
		RightArm: arm,
		Legs:     LegsStanding,
		View:     ViewFront,
	}
}

// Clone returns a deep copy of the pose.
func (p Pose) Clone() Pose {
	c := p
	c.Bones = maps.Clone(p.Bones)
	if c.Bones == nil {
		c.Bones = map[string]float64{}
	}
	return c
}

// Equal reports whether two poses are identical. Zero bones equal missing bones.
func (p Pose) Equal(o Pose) bool {
	if p.LeftArm != o.LeftArm || p.RightArm != o.RightArm || p.Legs != o.Legs || p.View != o.View {
		return false
	}
	for k, v := range p.Bones {
		if o.Bones[k] != v {
			return false
		}
	}
	for k, v := range o.Bones {
		if p.Bones[k] != v {
			return false
		}
	}
	return true
}

// Validate reports whether all enum dimensions hold known values and bones are in range.
func (p Pose) Validate() bool {
	for _, key := range enumKeys() {
		if _, ok := p.Value(key); !ok {
			return false
		}
	}
	for _, v := range p.Bones {
		if v < -BoneRange || v > BoneRange {
			return false
		}
	}
	return true
}

func enumKeys() []string {
	return []string{
		"leftArm.position", "leftArm.rotation", "leftArm.fingers",
		"rightArm.position", "rightArm.rotation", "rightArm.fingers",
		KeyLegs, KeyView,
	}
}

// Value returns the numeric value of a dimension. Enum dimensions are
// returned as their ordinal. ok is false for unknown keys or values.
func (p Pose) Value(key string) (float64, bool) {
	if bone, found := strings.CutPrefix(key, KeyBonesPrefix); found {
		return p.Bones[bone], true
	}
	raw, suffix, ok := p.enumValue(key)
	if !ok {
		return 0, false
	}
	idx := ordinal(suffix, raw)
	if idx < 0 {
		return 0, false
	}
	return float64(idx), true
}

// WithValue returns a copy of the pose with the dimension set to v.
// Enum dimensions are rounded to the nearest ordinal.
func (p Pose) WithValue(key string, v float64) Pose {
	c := p.Clone()
	if bone, found := strings.CutPrefix(key, KeyBonesPrefix); found {
		if v == 0 {
			delete(c.Bones, bone)
		} else {
			c.Bones[bone] = v
		}
		return c
	}
	_, suffix, ok := p.enumValue(key)
	if !ok {
		return c
	}
	values := enumValues[suffix]
	idx := int(v + 0.5)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(values) {
		idx = len(values) - 1
	}
	val := values[idx]
	switch key {
	case "leftArm.position":
		c.LeftArm.Position = ArmPosition(val)
	case "leftArm.rotation":
		c.LeftArm.Rotation = ArmRotation(val)
	case "leftArm.fingers":
		c.LeftArm.Fingers = ArmFingers(val)
	case "rightArm.position":
		c.RightArm.Position = ArmPosition(val)
	case "rightArm.rotation":
		c.RightArm.Rotation = ArmRotation(val)
	case "rightArm.fingers":
		c.RightArm.Fingers = ArmFingers(val)
	case KeyLegs:
		c.Legs = Legs(val)
	case KeyView:
		c.View = View(val)
	}
	return c
}

func (p Pose) enumValue(key string) (raw, suffix string, ok bool) {
	switch key {
	case "leftArm.position":
		return string(p.LeftArm.Position), "position", true
	case "leftArm.rotation":
		return string(p.LeftArm.Rotation), "rotation", true
	case "leftArm.fingers":
		return string(p.LeftArm.Fingers), "fingers", true
	case "rightArm.position":
		return string(p.RightArm.Position), "position", true
	case "rightArm.rotation":
		return string(p.RightArm.Rotation), "rotation", true
	case "rightArm.fingers":
		return string(p.RightArm.Fingers), "fingers", true
	case KeyLegs:
		return string(p.Legs), KeyLegs, true
	case KeyView:
		return string(p.View), KeyView, true
	}
	return "", "", false
}

func ordinal(suffix, value string) int {
	for i, v := range enumValues[suffix] {
		if v == value {
			return i
		}
	}
	return -1
}

// dimensionSuffix returns the enum table key for a dimension key, or "" for bones.
func dimensionSuffix(key string) string {
	if strings.HasPrefix(key, KeyBonesPrefix) {
		return ""
	}
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		return key[i+1:]
	}
	return key
}

// EnumOrdinal returns the ordinal of value for the enum dimension key, or -1.
func EnumOrdinal(key, value string) int {
	return ordinal(dimensionSuffix(key), value)
}

// IsKnownKey reports whether key names a pose dimension.
func IsKnownKey(key string) bool {
	if bone, found := strings.CutPrefix(key, KeyBonesPrefix); found {
		return bone != ""
	}
	_, _, ok := Default().enumValue(key)
	return ok
}
