// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package action

import (
	"slices"

	"github.com/holomush/wardrobe/internal/asset"
	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/manipulator"
)

func (p *processor) create(a Create) {
	manager := p.m.State().Manager()
	id := a.Asset
	if a.Template != nil {
		if id != "" && id != a.Template.Asset {
			p.invalid("template spawns another asset")
			return
		}
		id = a.Template.Asset
	}
	def := manager.AssetByID(id)
	if def == nil {
		p.invalid("unknown asset")
		return
	}
	if def.Type == asset.TypeRoomDeviceWearablePart {
		p.invalid("wearable parts are created by entering a device")
		return
	}
	if p.open(a.Target, a.Container) == nil {
		return
	}
	it := item.New(def, item.NewID())
	if a.Template != nil {
		spawned, err := item.NewFromTemplate(manager, *a.Template, item.NewID)
		if err != nil {
			p.invalid("invalid template")
			return
		}
		it = spawned
	}
	if len(a.Color) > 0 {
		if it = it.ChangeColor(a.Color); it == nil {
			p.invalid("invalid color")
			return
		}
	}
	p.check(Interaction{Kind: InteractAddRemove, Target: a.Target, Container: a.Container, Item: it})
	if p.failed() {
		return
	}

	m := p.open(a.Target, a.Container)
	if def.IsBodypart() && !a.Target.IsRoom() && a.Container.IsRoot() && !allowsMultiple(manager, def.Bodypart) {
		m.RemoveMatchingItems(func(worn *item.Item) bool { return worn.Asset().Bodypart == def.Bodypart })
	}
	if !m.AddItem(it, manipulator.Append) {
		p.invalid("container refused the item")
		return
	}
	if root, ok := m.(*manipulator.RootManipulator); ok && !a.Target.IsRoom() {
		root.FixBodypartOrder()
	}
	p.itemMessage(MessageItemAdd, def.Chat.Add, a.Target, it)
}

func allowsMultiple(manager asset.Manager, bodypart string) bool {
	idx := manager.BodypartIndex(bodypart)
	return idx >= 0 && manager.Bodyparts()[idx].AllowMultiple
}

func (p *processor) delete(a Delete) {
	it := p.find(a.Target, a.Item)
	if it == nil {
		return
	}
	switch {
	case it.Type() == asset.TypeRoomDeviceWearablePart:
		p.invalid("wearable parts are removed by leaving the device")
	case it.IsDeployed():
		p.invalid("room devices must be packed up first")
	}
	p.check(Interaction{Kind: InteractAddRemove, Target: a.Target, Container: a.Item.Container, Item: it})
	if p.failed() {
		return
	}
	m := p.open(a.Target, a.Item.Container)
	if len(m.RemoveMatchingItems(matchID(it.ID()))) == 0 {
		p.invalid("container refused the removal")
		return
	}
	p.itemMessage(MessageItemRemove, it.Asset().Chat.Remove, a.Target, it)
}

func (p *processor) transfer(a Transfer) {
	it := p.find(a.Source, a.Item)
	if it == nil {
		return
	}
	if a.Source == a.Destination && a.Item.Container.Equal(a.Container) {
		p.invalid("item is already in that container")
		return
	}
	if slices.ContainsFunc(a.Container, func(s manipulator.Step) bool { return s.Item == it.ID() }) {
		p.invalid("an item cannot contain itself")
		return
	}
	if _, ok := p.m.Open(a.Destination, a.Container); !ok {
		if p.m.Character(a.Destination.Character) == nil && !a.Destination.IsRoom() {
			p.fail(TargetNotFound{Character: a.Destination.Character})
		} else {
			p.invalid("container not found")
		}
		return
	}
	if !it.CanBeTransferred() {
		p.fail(Restricted{Restriction: NotTransferable{Item: it.ID()}})
	}
	p.check(Interaction{Kind: InteractAddRemove, Target: a.Source, Container: a.Item.Container, Item: it})
	p.check(Interaction{Kind: InteractAddRemove, Target: a.Destination, Container: a.Container, Item: it})
	if p.failed() {
		return
	}

	src := p.open(a.Source, a.Item.Container)
	if len(src.RemoveMatchingItems(matchID(it.ID()))) == 0 {
		p.invalid("container refused the removal")
		return
	}
	dst := p.open(a.Destination, a.Container)
	if dst == nil {
		return
	}
	if !dst.AddItem(it, manipulator.Append) {
		p.invalid("container refused the item")
		return
	}
	p.itemMessage(MessageItemTransfer, "", a.Source, it)
}

func (p *processor) move(a Move) {
	it := p.find(a.Target, a.Item)
	if it == nil {
		return
	}
	p.check(Interaction{Kind: InteractModify, Target: a.Target, Container: a.Item.Container, Item: it})
	if p.failed() {
		return
	}
	if !p.open(a.Target, a.Item.Container).MoveItem(it.ID(), a.Shift) {
		p.invalid("item cannot move there")
	}
}

func (p *processor) color(a Color) {
	p.modifyItem(a.Target, a.Item, "invalid color", func(it *item.Item) *item.Item {
		return it.ChangeColor(a.Color)
	})
}

func (p *processor) customize(a Customize) {
	p.modifyItem(a.Target, a.Item, "invalid name or description", func(it *item.Item) *item.Item {
		return it.Customize(a.Name, a.Description)
	})
}

func (p *processor) modifyItem(t manipulator.Target, path manipulator.ItemPath, reason string, mutate func(*item.Item) *item.Item) {
	it := p.find(t, path)
	if it == nil {
		return
	}
	p.check(Interaction{Kind: InteractModify, Target: t, Container: path.Container, Item: it})
	if p.failed() {
		return
	}
	if !p.open(t, path.Container).ModifyItem(it.ID(), mutate) {
		p.invalid(reason)
	}
}

func (p *processor) moduleAction(a ModuleAction) {
	it := p.find(a.Target, a.Item)
	if it == nil {
		return
	}
	module := it.Module(a.Module)
	if module == nil || a.Action == nil {
		p.invalid("unknown module")
		return
	}
	kind := InteractUseModule
	if _, ok := a.Action.(item.LockSlotAction); ok {
		kind = InteractLock
	}
	p.check(Interaction{Kind: kind, Target: a.Target, Container: a.Item.Container, Item: it, Module: a.Module})
	if p.failed() {
		return
	}

	var result item.ActionResult
	var changed *item.Item
	accepted := p.open(a.Target, a.Item.Container).ModifyItem(it.ID(), func(current *item.Item) *item.Item {
		changed, result = current.ModuleAction(p.ctx.itemContext(a.Target), a.Module, a.Action)
		return changed
	})
	if result.Outcome != item.OutcomeOK {
		p.fail(ModuleActionFailed{Outcome: result.Outcome, Reason: result.Reason})
		return
	}
	if !accepted {
		p.invalid("container refused the change")
		return
	}
	p.moduleResult = &result
	p.moduleMessage(a, changed)
}

func (p *processor) moduleMessage(a ModuleAction, it *item.Item) {
	switch act := a.Action.(type) {
	case item.SelectVariant:
		typed, ok := it.Module(a.Module).(*item.TypedModule)
		if !ok {
			return
		}
		cfg := typed.Config()
		name := cfg.DisplayName
		if name == "" {
			name = cfg.Name
		}
		p.message(Message{
			ID:       MessageModuleChange,
			Template: typed.Variant().SwitchMessage,
			Target:   a.Target.Character,
			Dictionary: map[string]string{
				KeyItemName:      it.Name(),
				KeyItemAssetName: it.Asset().Name,
				KeyModuleName:    name,
				KeyVariantName:   typed.Variant().Name,
			},
		})
	case item.LockSlotAction:
		slot, ok := it.Module(a.Module).(*item.LockSlotModule)
		if !ok || slot.Lock() == nil {
			return
		}
		lock := slot.Lock()
		msg := Message{
			Target:     a.Target.Character,
			Dictionary: map[string]string{KeyItemName: it.Name(), KeyItemAssetName: lock.Asset().Name},
		}
		switch act.Action.(type) {
		case item.Lock:
			msg.ID, msg.Template = MessageItemLock, lock.Asset().Chat.Lock
		case item.Unlock:
			msg.ID, msg.Template = MessageItemUnlock, lock.Asset().Chat.Unlock
		default:
			return
		}
		p.message(msg)
	case item.SetText, item.SealText:
	}
}

func matchID(id item.ID) func(*item.Item) bool {
	return func(it *item.Item) bool { return it.ID() == id }
}
