// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package action

import (
	"github.com/holomush/wardrobe/internal/state"
)

// StartAttempt begins a delayed action. The action is dry run first; when
// the worn items of the player impose no slowdown it is applied right away.
// Otherwise the encoded action is stored on the player until FinishAttempt.
func StartAttempt(ctx Context, g *state.GlobalState, a Action) Result {
	p := newProcessor(ctx, g)
	ch := p.player()
	if ch == nil {
		return p.finalize()
	}
	if ch.AttemptingAction() != nil {
		p.fail(AttemptProblem{Reason: AttemptInProgress})
		return p.finalize()
	}
	dry := Apply(ctx, g, a)
	if !dry.IsValid() {
		return dry
	}
	slowdown := Slowdown(ch)
	if slowdown <= 0 {
		return dry
	}
	data, err := Encode(a)
	if err != nil {
		ctx.logger().Error("encoding attempted action failed", "error", err, "type", a.Kind())
		p.fail(AttemptProblem{Reason: AttemptCorrupt})
		return p.finalize()
	}
	start := ctx.Now.UnixMilli()
	attempt := &state.AttemptingAction{
		Action:      state.ActionData(data),
		Start:       start,
		FinishAfter: start + slowdown,
	}
	p.m.ProduceCharacter(ctx.Player, func(c *state.CharacterState) *state.CharacterState {
		return c.ProduceWithAttempt(attempt)
	})
	p.message(Message{ID: MessageActionAttempt})
	return p.finalize()
}

// FinishAttempt applies the pending attempt of the player once its delay
// has passed. The attempt is cleared only when the action succeeds.
func FinishAttempt(ctx Context, g *state.GlobalState) Result {
	p := newProcessor(ctx, g)
	ch := p.player()
	if ch == nil {
		return p.finalize()
	}
	attempt := ch.AttemptingAction()
	switch {
	case attempt == nil:
		p.fail(AttemptProblem{Reason: AttemptNone})
		return p.finalize()
	case ctx.Now.UnixMilli() < attempt.FinishAfter:
		p.fail(AttemptProblem{Reason: AttemptNotReady})
		return p.finalize()
	}
	a, err := Decode(attempt.Action)
	if err != nil {
		ctx.logger().Warn("stored attempt is corrupt", "character", ctx.Player, "error", err)
		p.fail(AttemptProblem{Reason: AttemptCorrupt})
		return p.finalize()
	}
	cleared := g.ProduceWithCharacter(ch.ProduceWithAttempt(nil))
	return Apply(ctx, cleared, a)
}

// AbortAttempt discards the pending attempt of the player.
func AbortAttempt(ctx Context, g *state.GlobalState) Result {
	p := newProcessor(ctx, g)
	ch := p.player()
	if ch == nil {
		return p.finalize()
	}
	if ch.AttemptingAction() == nil {
		p.fail(AttemptProblem{Reason: AttemptNone})
		return p.finalize()
	}
	p.m.ProduceCharacter(ctx.Player, func(c *state.CharacterState) *state.CharacterState {
		return c.ProduceWithAttempt(nil)
	})
	p.message(Message{ID: MessageActionAttemptStop})
	return p.finalize()
}

// Slowdown returns the action delay in milliseconds the worn items of a
// character impose.
func Slowdown(ch *state.CharacterState) int64 {
	props, ok := ch.Properties()
	if !ok {
		return 0
	}
	return props.Effects.ActionSlowdownMs
}

// PendingAction decodes the stored attempt of a character.
func PendingAction(ch *state.CharacterState) (Action, bool) {
	attempt := ch.AttemptingAction()
	if attempt == nil {
		return nil, false
	}
	a, err := Decode(attempt.Action)
	if err != nil {
		return nil, false
	}
	return a, true
}
