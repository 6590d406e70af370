// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package action

import (
	"github.com/holomush/wardrobe/internal/asset"
	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/manipulator"
)

// device resolves a room device by id.
func (p *processor) device(id item.ID) *item.Item {
	it := p.find(manipulator.RoomTarget, manipulator.ItemPath{Item: id})
	if it != nil && it.Type() != asset.TypeRoomDevice {
		p.invalid("item is not a room device")
		return nil
	}
	return it
}

func (p *processor) roomDeviceDeploy(a RoomDeviceDeploy) {
	device := p.device(a.Item)
	if device == nil {
		return
	}
	if a.Deployment != nil && !p.m.State().Room().Settings().AllowRoomDevices {
		p.fail(Restricted{Restriction: RoomSetting{Setting: "allowRoomDevices"}})
	}
	if a.Deployment == nil && len(device.Occupants()) > 0 {
		p.invalid("room device is occupied")
	}
	p.check(Interaction{Kind: InteractDevice, Target: manipulator.RoomTarget, Item: device})
	if p.failed() {
		return
	}
	room, _ := p.m.Root(manipulator.RoomTarget)
	room.ModifyItem(device.ID(), func(it *item.Item) *item.Item { return it.ChangeDeployment(a.Deployment) })
	switch {
	case a.Deployment == nil && device.IsDeployed():
		p.itemMessage(MessageDevicePackUp, "", manipulator.RoomTarget, device)
	case a.Deployment != nil && !device.IsDeployed():
		p.itemMessage(MessageDeviceDeploy, "", manipulator.RoomTarget, device)
	}
}

func (p *processor) roomDeviceEnter(a RoomDeviceEnter) {
	device := p.device(a.Item)
	if device == nil {
		return
	}
	target := manipulator.CharacterTarget(a.Character)
	if p.m.Character(a.Character) == nil {
		p.fail(TargetNotFound{Character: a.Character})
		return
	}
	slot, ok := device.Asset().DeviceSlot(a.Slot)
	switch {
	case !device.IsDeployed():
		p.invalid("room device is not deployed")
	case !ok:
		p.invalid("unknown device slot")
	default:
		if _, taken := device.SlotOccupancy(a.Slot); taken {
			p.invalid("device slot is occupied")
		}
	}
	p.check(Interaction{Kind: InteractDevice, Target: target, Item: device})
	if p.failed() {
		return
	}
	part := p.m.State().Manager().AssetByID(slot.WearableAsset)
	if part == nil {
		p.invalid("unknown wearable part")
		return
	}

	room, _ := p.m.Root(manipulator.RoomTarget)
	if !room.ModifyItem(device.ID(), func(it *item.Item) *item.Item { return it.ChangeSlotOccupancy(a.Slot, a.Character) }) {
		p.invalid("device slot is occupied")
		return
	}
	occupied := p.m.Find(manipulator.RoomTarget, manipulator.ItemPath{Item: device.ID()})
	worn, _ := p.m.Root(target)
	worn.AddItem(item.New(part, item.NewID()).WithLink(occupied, a.Slot), manipulator.Append)
	p.message(Message{
		ID:         MessageDeviceEnter,
		Target:     a.Character,
		Dictionary: map[string]string{KeyItemName: device.Name(), KeyItemAssetName: device.Asset().Name},
	})
}

func (p *processor) roomDeviceLeave(a RoomDeviceLeave) {
	device := p.device(a.Item)
	if device == nil {
		return
	}
	occupant, ok := device.SlotOccupancy(a.Slot)
	if !ok {
		p.invalid("device slot is empty")
		return
	}
	p.check(Interaction{Kind: InteractDevice, Target: manipulator.CharacterTarget(occupant), Item: device})
	if p.failed() {
		return
	}
	if worn, ok := p.m.Root(manipulator.CharacterTarget(occupant)); ok {
		worn.RemoveMatchingItems(func(it *item.Item) bool {
			link := it.Link()
			return link != nil && link.Device == device.ID() && link.Slot == a.Slot
		})
	}
	room, _ := p.m.Root(manipulator.RoomTarget)
	room.ModifyItem(device.ID(), func(it *item.Item) *item.Item { return it.ChangeSlotOccupancy(a.Slot, "") })
	p.message(Message{
		ID:         MessageDeviceLeave,
		Target:     occupant,
		Dictionary: map[string]string{KeyItemName: device.Name(), KeyItemAssetName: device.Asset().Name},
	})
}
