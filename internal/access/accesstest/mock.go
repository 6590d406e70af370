// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package accesstest provides test helpers for restriction checks.
package accesstest

import (
	"sync"

	"github.com/holomush/wardrobe/internal/action"
	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/state"
)

// AllowAll is a RestrictionsManager that allows everything.
type AllowAll struct{}

// CheckInteraction never restricts.
func (AllowAll) CheckInteraction(_ *state.GlobalState, _ item.CharacterID, _ action.Interaction) action.Check {
	return action.Check{}
}

// DenyAll is a RestrictionsManager that forbids every interaction with a
// character other than the player.
type DenyAll struct{}

// CheckInteraction forbids acting on others.
func (DenyAll) CheckInteraction(_ *state.GlobalState, player item.CharacterID, in action.Interaction) action.Check {
	if in.Target.IsRoom() || in.Target.Character == player {
		return action.Check{}
	}
	p := action.Permission{Target: in.Target.Character, Kind: action.PermissionInteract}
	return action.Check{
		Restrictions: []action.Restriction{action.PermissionForbidden{Permission: p}},
		Permissions:  []action.Permission{p},
	}
}

// Recorder is a RestrictionsManager that allows everything and remembers
// what it was asked.
type Recorder struct {
	mu    sync.Mutex
	calls []action.Interaction
}

// CheckInteraction records the interaction.
func (r *Recorder) CheckInteraction(_ *state.GlobalState, _ item.CharacterID, in action.Interaction) action.Check {
	r.mu.Lock()
	r.calls = append(r.calls, in)
	r.mu.Unlock()
	return action.Check{}
}

// Calls returns the recorded interactions.
func (r *Recorder) Calls() []action.Interaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]action.Interaction(nil), r.calls...)
}
