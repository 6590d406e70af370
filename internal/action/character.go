// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package action

import (
	"time"

	"github.com/holomush/wardrobe/internal/manipulator"
	"github.com/holomush/wardrobe/internal/pose"
	"github.com/holomush/wardrobe/internal/state"
)

// OverrideLeaveDelay is how long a restriction override must last before
// it can be left.
var OverrideLeaveDelay = map[state.OverrideType]time.Duration{
	state.OverrideSafemode: 10 * time.Minute,
	state.OverrideTimeout:  5 * time.Minute,
}

func (p *processor) pose(a Pose) {
	if p.m.Character(a.Character) == nil {
		p.fail(TargetNotFound{Character: a.Character})
		return
	}
	requested := a.Pose
	if a.Preset != "" {
		preset, ok := p.m.State().Manager().PosePreset(a.Preset)
		if !ok {
			p.invalid("unknown pose preset")
			return
		}
		requested = preset.Pose
	}
	if !requested.Validate() {
		p.invalid("invalid pose")
		return
	}
	p.check(Interaction{Kind: InteractPose, Target: manipulator.CharacterTarget(a.Character)})
	if p.failed() {
		return
	}
	p.m.ProduceCharacter(a.Character, func(ch *state.CharacterState) *state.CharacterState {
		return ch.ProduceWithPose(requested)
	})
}

func (p *processor) setView(a SetView) {
	if p.m.Character(a.Character) == nil {
		p.fail(TargetNotFound{Character: a.Character})
		return
	}
	if a.View != pose.ViewFront && a.View != pose.ViewBack {
		p.invalid("invalid view")
		return
	}
	p.check(Interaction{Kind: InteractPose, Target: manipulator.CharacterTarget(a.Character)})
	if p.failed() {
		return
	}
	p.m.ProduceCharacter(a.Character, func(ch *state.CharacterState) *state.CharacterState {
		return ch.ProduceWithView(a.View)
	})
}

// restrictionOverride is decided here alone: the player may always enter or
// leave its own override, subject only to the leave delay.
func (p *processor) restrictionOverride(a RestrictionOverride) {
	current := p.m.Character(p.ctx.Player).RestrictionOverride()
	if a.Type == "" {
		p.leaveOverride(current)
		return
	}
	delay, ok := OverrideLeaveDelay[a.Type]
	if !ok {
		p.invalid("unknown override type")
		return
	}
	if current != nil {
		p.invalid("already in a restriction override")
		return
	}
	override := &state.RestrictionOverride{Type: a.Type, AllowLeaveAt: p.ctx.Now.Add(delay).UnixMilli()}
	p.m.ProduceCharacter(p.ctx.Player, func(ch *state.CharacterState) *state.CharacterState {
		return ch.ProduceWithRestrictionOverride(override).ProduceWithAttempt(nil)
	})
	if a.Type == state.OverrideSafemode {
		p.message(Message{ID: MessageSafemodeEnter})
	} else {
		p.message(Message{ID: MessageTimeoutEnter})
	}
}

func (p *processor) leaveOverride(current *state.RestrictionOverride) {
	if current == nil {
		p.invalid("no active restriction override")
		return
	}
	if p.ctx.Now.UnixMilli() < current.AllowLeaveAt {
		p.fail(Restricted{Restriction: OverrideLocked{AllowLeaveAt: current.AllowLeaveAt}})
		return
	}
	p.m.ProduceCharacter(p.ctx.Player, func(ch *state.CharacterState) *state.CharacterState {
		return ch.ProduceWithRestrictionOverride(nil)
	})
	if current.Type == state.OverrideSafemode {
		p.message(Message{ID: MessageSafemodeLeave})
	} else {
		p.message(Message{ID: MessageTimeoutLeave})
	}
}
