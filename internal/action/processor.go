// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package action

import (
	"slices"

	"github.com/samber/oops"

	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/manipulator"
	"github.com/holomush/wardrobe/internal/state"
)

// Result is the outcome of an action: Valid or Invalid.
type Result interface {
	IsValid() bool
	result()
}

// Valid carries the new state and the messages to emit.
type Valid struct {
	State    *state.GlobalState
	Messages []Message
	// Module is the result of a module action, e.g. a shown password.
	Module *item.ActionResult
}

// Invalid carries every problem found. Prompt is set when all problems are
// permission prompts for the same character, who could resolve them.
type Invalid struct {
	Problems    []Problem
	Permissions []Permission
	Prompt      item.CharacterID
}

func (Valid) IsValid() bool   { return true }
func (Invalid) IsValid() bool { return false }
func (Valid) result()         {}
func (Invalid) result()       {}

// Apply performs an action on g.
func Apply(ctx Context, g *state.GlobalState, a Action) Result {
	p := newProcessor(ctx, g)
	if p.player() == nil {
		return p.finalize()
	}
	p.dispatch(a)
	return p.finalize()
}

func (p *processor) dispatch(a Action) {
	switch a := a.(type) {
	case Create:
		p.create(a)
	case Delete:
		p.delete(a)
	case Transfer:
		p.transfer(a)
	case Move:
		p.move(a)
	case Color:
		p.color(a)
	case Customize:
		p.customize(a)
	case ModuleAction:
		p.moduleAction(a)
	case Pose:
		p.pose(a)
	case SetView:
		p.setView(a)
	case RestrictionOverride:
		p.restrictionOverride(a)
	case Randomize:
		p.randomize(a)
	case RoomDeviceDeploy:
		p.roomDeviceDeploy(a)
	case RoomDeviceEnter:
		p.roomDeviceEnter(a)
	case RoomDeviceLeave:
		p.roomDeviceLeave(a)
	default:
		panic(oops.Code("ACTION_UNKNOWN").With("type", a).Errorf("unhandled action type"))
	}
}

// processor accumulates the problems, permissions and messages of one action.
type processor struct {
	ctx          Context
	original     *state.GlobalState
	m            *manipulator.GlobalManipulator
	problems     []Problem
	permissions  []Permission
	messages     []Message
	moduleResult *item.ActionResult
}

func newProcessor(ctx Context, g *state.GlobalState) *processor {
	return &processor{ctx: ctx, original: g, m: manipulator.NewGlobal(g)}
}

// player returns the state of the acting character, recording a problem
// when it is not in the space.
func (p *processor) player() *state.CharacterState {
	ch := p.m.Character(p.ctx.Player)
	if ch == nil {
		p.fail(TargetNotFound{Character: p.ctx.Player})
	}
	return ch
}

func (p *processor) fail(pr Problem) {
	if !slices.Contains(p.problems, pr) {
		p.problems = append(p.problems, pr)
	}
}

func (p *processor) invalid(reason string) {
	p.fail(InvalidAction{Reason: reason})
}

func (p *processor) failed() bool { return len(p.problems) > 0 }

// check asks the restrictions manager about an interaction and records the
// outcome. It never stops the action early.
func (p *processor) check(in Interaction) {
	if p.ctx.Restrictions == nil {
		return
	}
	c := p.ctx.Restrictions.CheckInteraction(p.m.State(), p.ctx.Player, in)
	for _, perm := range c.Permissions {
		if !slices.Contains(p.permissions, perm) {
			p.permissions = append(p.permissions, perm)
		}
	}
	for _, r := range c.Restrictions {
		p.fail(Restricted{Restriction: r})
	}
}

func (p *processor) message(m Message) {
	m.Character = p.ctx.Player
	p.messages = append(p.messages, m)
}

// itemMessage queues a message about an item, using the asset's chat text
// when it has one.
func (p *processor) itemMessage(id MessageID, custom string, target manipulator.Target, it *item.Item) {
	p.message(Message{
		ID:         id,
		Template:   custom,
		Target:     target.Character,
		Dictionary: map[string]string{KeyItemName: it.Name(), KeyItemAssetName: it.Asset().Name},
	})
}

// root resolves a target, recording TargetNotFound.
func (p *processor) root(t manipulator.Target) *manipulator.RootManipulator {
	r, ok := p.m.Root(t)
	if !ok {
		p.fail(TargetNotFound{Character: t.Character})
		return nil
	}
	return r
}

// open resolves a container, recording the problem when it does not exist.
func (p *processor) open(t manipulator.Target, path manipulator.ContainerPath) manipulator.Manipulator {
	root := p.root(t)
	if root == nil {
		return nil
	}
	m, ok := manipulator.Open(root, path)
	if !ok {
		p.invalid("container not found")
		return nil
	}
	return m
}

// find resolves an item, recording the problem when it does not exist.
func (p *processor) find(t manipulator.Target, path manipulator.ItemPath) *item.Item {
	if t.Character != "" && p.m.Character(t.Character) == nil {
		p.fail(TargetNotFound{Character: t.Character})
		return nil
	}
	it := p.m.Find(t, path)
	if it == nil {
		p.fail(ItemNotFound{Item: path.Item})
	}
	return it
}

// finalize validates the complete result.
func (p *processor) finalize() Result {
	if p.failed() {
		return p.invalidResult()
	}
	next := p.m.State()
	if err := next.Validate(); err != nil {
		p.fail(ValidationFailed{Error: err})
		return p.invalidResult()
	}
	return Valid{State: next, Messages: p.messages, Module: p.moduleResult}
}

func (p *processor) invalidResult() Invalid {
	return Invalid{
		Problems:    p.problems,
		Permissions: p.permissions,
		Prompt:      promptTarget(p.problems),
	}
}

// promptTarget returns the character every problem asks for a permission
// prompt, or "" when any problem is something else.
func promptTarget(problems []Problem) item.CharacterID {
	var target item.CharacterID
	for _, pr := range problems {
		r, ok := pr.(Restricted)
		if !ok {
			return ""
		}
		prompt, ok := r.Restriction.(PermissionPrompt)
		if !ok {
			return ""
		}
		if target != "" && prompt.Permission.Target != target {
			return ""
		}
		target = prompt.Permission.Target
	}
	return target
}
