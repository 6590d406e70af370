// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package access

import (
	"github.com/holomush/wardrobe/internal/action"
	"github.com/holomush/wardrobe/internal/asset"
	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/manipulator"
	"github.com/holomush/wardrobe/internal/state"
)

// handsKinds are the interactions that need free hands.
var handsKinds = map[action.InteractionKind]bool{
	action.InteractAddRemove: true,
	action.InteractModify:    true,
	action.InteractUseModule: true,
	action.InteractLock:      true,
	action.InteractDevice:    true,
}

// CheckInteraction implements action.RestrictionsManager.
func (m *Manager) CheckInteraction(g *state.GlobalState, player item.CharacterID, in action.Interaction) action.Check {
	var c action.Check
	actor := g.Character(player)
	if actor == nil {
		return c
	}
	self := in.Target.Character == player

	if o := actor.RestrictionOverride(); o != nil {
		switch o.Type {
		case state.OverrideTimeout:
			c.Restrictions = append(c.Restrictions, action.TimeoutActive{})
		case state.OverrideSafemode:
			if !self {
				c.Restrictions = append(c.Restrictions, action.SafemodeInteractOther{})
			}
		}
	}
	if !in.Target.IsRoom() && !self {
		if target := g.Character(in.Target.Character); target != nil {
			if o := target.RestrictionOverride(); o != nil && o.Type == state.OverrideSafemode {
				c.Restrictions = append(c.Restrictions, action.InSafemode{Character: target.ID()})
			}
		}
	}
	// Safemode suspends what the worn items impose.
	if o := actor.RestrictionOverride(); o == nil || o.Type != state.OverrideSafemode {
		if props, ok := actor.Properties(); ok && props.Effects.BlockHands && handsKinds[in.Kind] {
			c.Restrictions = append(c.Restrictions, action.BlockedHands{})
		}
		c.Restrictions = append(c.Restrictions, m.itemRules(g, in, self)...)
	}
	if in.Kind == action.InteractSelf && !self {
		c.Restrictions = append(c.Restrictions, action.SelfOnly{})
	}
	m.permissionRules(&c, player, in, self)
	return c
}

// itemRules applies the blocking properties of the item and of every
// container holding it.
func (m *Manager) itemRules(g *state.GlobalState, in action.Interaction, self bool) []action.Restriction {
	var restrictions []action.Restriction
	level := manipulator.NewGlobal(g).Items(in.Target)
	for _, step := range in.Container {
		owner := findID(level, step.Item)
		if owner == nil {
			break
		}
		if owner.Properties().BlocksModule(step.Module, self) {
			restrictions = append(restrictions, action.BlockedModule{Item: owner.ID(), Module: step.Module, Self: self})
		}
		module := owner.Module(step.Module)
		if module == nil {
			break
		}
		level = module.Items()
	}

	it := in.Item
	if it == nil {
		return restrictions
	}
	switch in.Kind {
	case action.InteractAddRemove:
		if it.Properties().BlocksAddRemove(self) || (it.Type() == asset.TypeLock && it.IsLocked()) {
			restrictions = append(restrictions, action.BlockedAddRemove{Item: it.ID(), Self: self})
		}
	case action.InteractUseModule, action.InteractLock:
		if it.Properties().BlocksModule(in.Module, self) {
			restrictions = append(restrictions, action.BlockedModule{Item: it.ID(), Module: in.Module, Self: self})
		}
	case action.InteractModify, action.InteractPose, action.InteractDevice, action.InteractSelf:
	}
	return restrictions
}

// permissionRules asks the target character for the permission the
// interaction needs. Acting on oneself or the room needs none.
func (m *Manager) permissionRules(c *action.Check, player item.CharacterID, in action.Interaction, self bool) {
	if in.Target.IsRoom() || self || in.Kind == action.InteractSelf {
		return
	}
	p := action.Permission{Target: in.Target.Character, Kind: permissionKind(in)}
	if in.Item != nil {
		p.Scope = string(in.Item.Asset().ID)
	}
	c.Permissions = append(c.Permissions, p)

	switch m.Grant(in.Target.Character, player, p) {
	case action.GrantAllowed:
	case action.GrantPrompt:
		c.Restrictions = append(c.Restrictions, action.PermissionPrompt{Permission: p})
	case action.GrantForbidden:
		if p.Kind == action.PermissionModifyBody {
			c.Restrictions = append(c.Restrictions, action.ModifyBodyOthers{})
		} else {
			c.Restrictions = append(c.Restrictions, action.PermissionForbidden{Permission: p})
		}
	}
}

func permissionKind(in action.Interaction) action.PermissionKind {
	switch {
	case in.Item != nil && in.Item.IsBodypart():
		return action.PermissionModifyBody
	case in.Kind == action.InteractLock:
		return action.PermissionLockItems
	case in.Kind == action.InteractPose:
		return action.PermissionPose
	default:
		return action.PermissionInteract
	}
}

func findID(items []*item.Item, id item.ID) *item.Item {
	for _, it := range items {
		if it.ID() == id {
			return it
		}
	}
	return nil
}
