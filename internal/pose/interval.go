// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package pose

import (
	"math"
	"slices"
)

// Interval is a closed numeric range.
type Interval struct {
	Min float64
	Max float64
}

// IntervalSet is a sorted list of disjoint closed intervals.
type IntervalSet []Interval

// NewIntervalSet normalizes intervals into a sorted disjoint set.
// Intervals with Min > Max are dropped; overlapping ones merge.
func NewIntervalSet(intervals ...Interval) IntervalSet {
	valid := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.Min <= iv.Max {
			valid = append(valid, iv)
		}
	}
	slices.SortFunc(valid, func(a, b Interval) int {
		switch {
		case a.Min < b.Min:
			return -1
		case a.Min > b.Min:
			return 1
		default:
			return 0
		}
	})
	result := make(IntervalSet, 0, len(valid))
	for _, iv := range valid {
		if n := len(result); n > 0 && iv.Min <= result[n-1].Max {
			result[n-1].Max = math.Max(result[n-1].Max, iv.Max)
			continue
		}
		result = append(result, iv)
	}
	return result
}

// Point returns a set containing exactly v.
func Point(v float64) IntervalSet {
	return IntervalSet{{Min: v, Max: v}}
}

// IsEmpty reports whether the set admits no value.
func (s IntervalSet) IsEmpty() bool {
	return len(s) == 0
}

// Intersect returns the values present in both sets.
func (s IntervalSet) Intersect(o IntervalSet) IntervalSet {
	result := IntervalSet{}
	i, j := 0, 0
	for i < len(s) && j < len(o) {
		lo := math.Max(s[i].Min, o[j].Min)
		hi := math.Min(s[i].Max, o[j].Max)
		if lo <= hi {
			result = append(result, Interval{Min: lo, Max: hi})
		}
		if s[i].Max < o[j].Max {
			i++
		} else {
			j++
		}
	}
	return result
}

// Contains reports whether v lies in the set.
func (s IntervalSet) Contains(v float64) bool {
	for _, iv := range s {
		if v >= iv.Min && v <= iv.Max {
			return true
		}
	}
	return false
}

// Nearest returns v if it is contained, otherwise the closest interval
// endpoint. Ties resolve to the lower value. Empty sets return v.
func (s IntervalSet) Nearest(v float64) float64 {
	if len(s) == 0 || s.Contains(v) {
		return v
	}
	best := v
	bestDist := math.Inf(1)
	for _, iv := range s {
		for _, candidate := range [2]float64{iv.Min, iv.Max} {
			if d := math.Abs(candidate - v); d < bestDist {
				best, bestDist = candidate, d
			}
		}
	}
	return best
}

// Equal reports whether both sets contain the same intervals.
func (s IntervalSet) Equal(o IntervalSet) bool {
	return slices.Equal(s, o)
}
