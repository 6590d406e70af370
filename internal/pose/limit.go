// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package pose

import (
	"maps"
	"math"
	"slices"
)

// Limit maps pose dimension keys to the values allowed for them.
// Keys that are absent are unconstrained.
type Limit map[string]IntervalSet

// Intersect combines two limits per key. ok is false when any key ends up
// with no admissible value.
func (l Limit) Intersect(o Limit) (Limit, bool) {
	result := make(Limit, len(l)+len(o))
	maps.Copy(result, l)
	for key, set := range o {
		existing, found := result[key]
		if !found {
			result[key] = set
			continue
		}
		merged := existing.Intersect(set)
		if merged.IsEmpty() {
			return nil, false
		}
		result[key] = merged
	}
	for _, set := range result {
		if set.IsEmpty() {
			return nil, false
		}
	}
	return result, true
}

// Satisfied reports whether the pose lies within every constrained dimension.
func (l Limit) Satisfied(p Pose) bool {
	for key, set := range l {
		v, ok := p.Value(key)
		if !ok || !set.Contains(v) {
			return false
		}
	}
	return true
}

// Force moves every constrained dimension of the pose to its nearest allowed
// value. The returned cost is the total adjustment made.
func (l Limit) Force(p Pose) (Pose, float64) {
	result := p.Clone()
	cost := 0.0
	for _, key := range l.keys() {
		v, ok := result.Value(key)
		if !ok {
			continue
		}
		target := l[key].Nearest(v)
		if target != v {
			cost += dimensionCost(key, math.Abs(target-v))
			result = result.WithValue(key, target)
		}
	}
	return result, cost
}

func (l Limit) keys() []string {
	keys := slices.Collect(maps.Keys(l))
	slices.Sort(keys)
	return keys
}

// Equal reports whether both limits constrain the same keys identically.
func (l Limit) Equal(o Limit) bool {
	return maps.EqualFunc(l, o, IntervalSet.Equal)
}

// dimensionCost weights enum steps as a large bone rotation.
func dimensionCost(key string, delta float64) float64 {
	if dimensionSuffix(key) == "" {
		return delta
	}
	return delta * BoneRange
}
