// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package action turns one user action into a validated state transition.
//
// Every handler follows the same steps: resolve the targets, collect every
// restriction and required permission, perform the edit through a
// manipulator and finally validate the complete resulting global state.
// Nothing is committed unless all of it succeeds.
package action

import (
	"github.com/holomush/wardrobe/internal/asset"
	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/manipulator"
	"github.com/holomush/wardrobe/internal/pose"
	"github.com/holomush/wardrobe/internal/state"
)

// Kind names an action type on the wire.
type Kind string

// Action kinds.
const (
	KindCreate              Kind = "create"
	KindDelete              Kind = "delete"
	KindTransfer            Kind = "transfer"
	KindMove                Kind = "move"
	KindColor               Kind = "color"
	KindCustomize           Kind = "customize"
	KindModuleAction        Kind = "moduleAction"
	KindPose                Kind = "pose"
	KindSetView             Kind = "setView"
	KindRestrictionOverride Kind = "restrictionOverride"
	KindRandomize           Kind = "randomize"
	KindRoomDeviceDeploy    Kind = "roomDeviceDeploy"
	KindRoomDeviceEnter     Kind = "roomDeviceEnter"
	KindRoomDeviceLeave     Kind = "roomDeviceLeave"
)

// Action is a user action. The types in this package are the complete set.
type Action interface {
	Kind() Kind
	action()
}

// Create spawns a new item into a container, either bare from an asset or
// from a template with its modules and nested items. With a template, Asset
// may be empty and otherwise must match the template's asset.
type Create struct {
	Target    manipulator.Target        `json:"target"`
	Container manipulator.ContainerPath `json:"container,omitempty"`
	Asset     asset.ID                  `json:"asset,omitempty"`
	Color     item.Color                `json:"color,omitempty"`
	Template  *item.Template            `json:"template,omitempty"`
}

// Delete destroys an item.
type Delete struct {
	Target manipulator.Target   `json:"target"`
	Item   manipulator.ItemPath `json:"item"`
}

// Transfer moves an item to another container, possibly of another target.
type Transfer struct {
	Source      manipulator.Target        `json:"source"`
	Item        manipulator.ItemPath      `json:"item"`
	Destination manipulator.Target        `json:"destination"`
	Container   manipulator.ContainerPath `json:"container,omitempty"`
}

// Move reorders an item within its container.
type Move struct {
	Target manipulator.Target   `json:"target"`
	Item   manipulator.ItemPath `json:"item"`
	Shift  int                  `json:"shift"`
}

// Color changes the explicit colors of an item.
type Color struct {
	Target manipulator.Target   `json:"target"`
	Item   manipulator.ItemPath `json:"item"`
	Color  item.Color           `json:"color"`
}

// Customize changes the custom name and description of an item.
type Customize struct {
	Target      manipulator.Target   `json:"target"`
	Item        manipulator.ItemPath `json:"item"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
}

// ModuleAction performs an action on a module of an item.
type ModuleAction struct {
	Target manipulator.Target   `json:"target"`
	Item   manipulator.ItemPath `json:"item"`
	Module string               `json:"module"`
	Action item.ModuleAction    `json:"-"`
}

// Pose changes the requested pose of a character. A non-empty Preset
// names a catalog pose preset and overrides Pose.
type Pose struct {
	Character item.CharacterID `json:"character"`
	Pose      pose.Pose        `json:"pose"`
	Preset    string           `json:"preset,omitempty"`
}

// SetView turns a character around.
type SetView struct {
	Character item.CharacterID `json:"character"`
	View      pose.View        `json:"view"`
}

// RestrictionOverride enters (Type set) or leaves (Type empty) a
// restriction override of the player.
type RestrictionOverride struct {
	Type state.OverrideType `json:"type,omitempty"`
}

// RandomizeKind selects what randomize regenerates.
type RandomizeKind string

// Randomize kinds.
const (
	// RandomizeBody regenerates bodyparts only.
	RandomizeBody RandomizeKind = "body"
	// RandomizeFull regenerates bodyparts and clothes.
	RandomizeFull RandomizeKind = "full"
)

// Randomize regenerates the appearance of the player.
type Randomize struct {
	Mode RandomizeKind `json:"mode"`
}

// RoomDeviceDeploy deploys or moves a room device, or packs it up when
// Deployment is nil.
type RoomDeviceDeploy struct {
	Item       item.ID          `json:"item"`
	Deployment *item.Deployment `json:"deployment,omitempty"`
}

// RoomDeviceEnter puts a character into a slot of a deployed device.
type RoomDeviceEnter struct {
	Item      item.ID          `json:"item"`
	Slot      string           `json:"slot"`
	Character item.CharacterID `json:"character"`
}

// RoomDeviceLeave frees a slot of a device.
type RoomDeviceLeave struct {
	Item item.ID `json:"item"`
	Slot string  `json:"slot"`
}

// Kind implements Action.
func (Create) Kind() Kind              { return KindCreate }
func (Delete) Kind() Kind              { return KindDelete }
func (Transfer) Kind() Kind            { return KindTransfer }
func (Move) Kind() Kind                { return KindMove }
func (Color) Kind() Kind               { return KindColor }
func (Customize) Kind() Kind           { return KindCustomize }
func (ModuleAction) Kind() Kind        { return KindModuleAction }
func (Pose) Kind() Kind                { return KindPose }
func (SetView) Kind() Kind             { return KindSetView }
func (RestrictionOverride) Kind() Kind { return KindRestrictionOverride }
func (Randomize) Kind() Kind           { return KindRandomize }
func (RoomDeviceDeploy) Kind() Kind    { return KindRoomDeviceDeploy }
func (RoomDeviceEnter) Kind() Kind     { return KindRoomDeviceEnter }
func (RoomDeviceLeave) Kind() Kind     { return KindRoomDeviceLeave }

func (Create) action()              {}
func (Delete) action()              {}
func (Transfer) action()            {}
func (Move) action()                {}
func (Color) action()               {}
func (Customize) action()           {}
func (ModuleAction) action()        {}
func (Pose) action()                {}
func (SetView) action()             {}
func (RestrictionOverride) action() {}
func (Randomize) action()           {}
func (RoomDeviceDeploy) action()    {}
func (RoomDeviceEnter) action()     {}
func (RoomDeviceLeave) action()     {}
