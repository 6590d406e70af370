// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package access

// Permission groups define reusable sets of patterns.
// Policies compose these groups rather than inheriting.

var casualPowers = []string{
	"pose:*",
}

var dressPowers = []string{
	"interact:*",
}

var lockPowers = []string{
	"lockItems:*",
}

var bodyPowers = []string{
	"modifyBody:*",
}

// DefaultPolicy returns the policy of characters that configured nothing:
// others may pose them, must ask before dressing or locking them and may
// never change their body.
func DefaultPolicy() Policy {
	return Policy{
		Allow:  compose(casualPowers),
		Prompt: compose(dressPowers, lockPowers),
		Forbid: compose(bodyPowers),
	}
}

// OpenPolicy returns a policy allowing everything but body changes.
func OpenPolicy() Policy {
	return Policy{
		Allow:  compose(casualPowers, dressPowers, lockPowers),
		Forbid: compose(bodyPowers),
	}
}

// compose merges multiple pattern slices into one.
func compose(groups ...[]string) []string {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	result := make([]string, 0, total)
	for _, g := range groups {
		result = append(result, g...)
	}
	return result
}
