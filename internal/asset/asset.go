// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package asset contains the read-only catalog of spawnable things: assets,
// bodyparts, attributes, slots and pose presets.
package asset

import (
	"regexp"
	"strings"
)

// ID identifies an asset. Asset ids use the "a/" prefix.
type ID string

// IDPrefix is the required prefix of every asset id.
const IDPrefix = "a/"

// IsValid reports whether the id has the asset prefix and a name.
func (id ID) IsValid() bool {
	return strings.HasPrefix(string(id), IDPrefix) && len(id) > len(IDPrefix)
}

// Type is the kind of an asset. Items mirror the type of their asset.
type Type string

// Asset types.
const (
	TypePersonal               Type = "personal"
	TypeRoomDevice             Type = "roomDevice"
	TypeRoomDeviceWearablePart Type = "roomDeviceWearablePart"
	TypeLock                   Type = "lock"
)

// IsValid reports whether t is a known asset type.
func (t Type) IsValid() bool {
	switch t {
	case TypePersonal, TypeRoomDevice, TypeRoomDeviceWearablePart, TypeLock:
		return true
	default:
		return false
	}
}

// Size is the bulk of an asset, used by storage modules.
type Size string

// Asset sizes, smallest first.
const (
	SizeSmall    Size = "small"
	SizeMedium   Size = "medium"
	SizeLarge    Size = "large"
	SizeHuge     Size = "huge"
	SizeBodypart Size = "bodypart"
)

// Rank orders sizes; bodypart ranks above everything so it never fits in storage.
// Unknown sizes return -1.
func (s Size) Rank() int {
	switch s {
	case SizeSmall:
		return 0
	case SizeMedium:
		return 1
	case SizeLarge:
		return 2
	case SizeHuge:
		return 3
	case SizeBodypart:
		return 4
	default:
		return -1
	}
}

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}([0-9a-fA-F]{2})?$`)

// IsHexColor reports whether s is a #RRGGBB or #RRGGBBAA color.
func IsHexColor(s string) bool {
	return hexColorPattern.MatchString(s)
}

// ColorizationDefinition is one recolorable part of an asset.
// Parts sharing a Group may inherit their color from neighbouring items.
type ColorizationDefinition struct {
	Key      string  `yaml:"key"`
	Name     string  `yaml:"name"`
	Default  string  `yaml:"default"`
	Group    string  `yaml:"group,omitempty"`
	MinAlpha float64 `yaml:"minAlpha,omitempty"`
}

// DeviceSlot is a place on a room device a character can occupy.
// Entering the slot equips an item of WearableAsset on the character.
type DeviceSlot struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	WearableAsset ID     `yaml:"wearableAsset"`
}

// PasswordFormat restricts the characters of a lock password.
type PasswordFormat string

// Password formats.
const (
	PasswordNumeric PasswordFormat = "numeric"
	PasswordLetters PasswordFormat = "letters"
	PasswordAlpha   PasswordFormat = "alphanumeric"
	PasswordText    PasswordFormat = "text"
)

var passwordPatterns = map[PasswordFormat]*regexp.Regexp{
	PasswordNumeric: regexp.MustCompile(`^[0-9]+$`),
	PasswordLetters: regexp.MustCompile(`^[a-zA-Z]+$`),
	PasswordAlpha:   regexp.MustCompile(`^[a-zA-Z0-9]+$`),
	PasswordText:    regexp.MustCompile(`^[^\x00-\x1f]+$`),
}

// PasswordSetup configures passwords of a lock.
type PasswordSetup struct {
	MinLength int            `yaml:"minLength"`
	MaxLength int            `yaml:"maxLength"`
	Format    PasswordFormat `yaml:"format"`
}

// Accepts reports whether password fits the setup.
func (p *PasswordSetup) Accepts(password string) bool {
	if len(password) < p.MinLength || len(password) > p.MaxLength {
		return false
	}
	re, ok := passwordPatterns[p.Format]
	return ok && re.MatchString(password)
}

// LockSetup configures a lock asset.
type LockSetup struct {
	Password *PasswordSetup `yaml:"password,omitempty"`
	// TimerMaxSeconds enables timed locks when positive.
	TimerMaxSeconds int64 `yaml:"timerMaxSeconds,omitempty"`
	// BlockSelf prevents a character from unlocking locks on themselves.
	BlockSelf bool `yaml:"blockSelf,omitempty"`
}

// ChatMessages overrides the default action messages of an asset.
// Messages may reference {SOURCE_CHARACTER}, {TARGET_CHARACTER} and {ITEM_ASSET_NAME}.
type ChatMessages struct {
	Add    string `yaml:"add,omitempty"`
	Remove string `yaml:"remove,omitempty"`
	Lock   string `yaml:"lock,omitempty"`
	Unlock string `yaml:"unlock,omitempty"`
}

// Asset is an immutable catalog entry.
type Asset struct {
	ID           ID                       `yaml:"id"`
	Name         string                   `yaml:"name"`
	Type         Type                     `yaml:"type"`
	Size         Size                     `yaml:"size"`
	Bodypart     string                   `yaml:"bodypart,omitempty"`
	Colorization []ColorizationDefinition `yaml:"colorization,omitempty"`
	Properties   PropertiesDefinition     `yaml:"properties,omitempty"`
	Modules      []ModuleConfig           `yaml:"modules,omitempty"`
	Randomizable bool                     `yaml:"randomizable,omitempty"`
	Chat         ChatMessages             `yaml:"chat,omitempty"`

	// Room devices only.
	Slots []DeviceSlot `yaml:"slots,omitempty"`

	// Locks only.
	Lock *LockSetup `yaml:"lock,omitempty"`

	// device is the owning room device of a wearable part, set by the catalog.
	device *Asset
}

// IsBodypart reports whether the asset is a bodypart.
func (a *Asset) IsBodypart() bool {
	return a.Type == TypePersonal && a.Bodypart != ""
}

// IsWearable reports whether items of the asset may be worn by characters.
func (a *Asset) IsWearable() bool {
	return a.Type == TypePersonal || a.Type == TypeRoomDeviceWearablePart
}

// Module returns the configuration of the named module.
func (a *Asset) Module(name string) (*ModuleConfig, bool) {
	for i := range a.Modules {
		if a.Modules[i].Name == name {
			return &a.Modules[i], true
		}
	}
	return nil, false
}

// ColorizationFor returns the colorization definition for key.
func (a *Asset) ColorizationFor(key string) (*ColorizationDefinition, bool) {
	for i := range a.Colorization {
		if a.Colorization[i].Key == key {
			return &a.Colorization[i], true
		}
	}
	return nil, false
}

// DeviceSlot returns the named slot of a room device.
func (a *Asset) DeviceSlot(id string) (*DeviceSlot, bool) {
	for i := range a.Slots {
		if a.Slots[i].ID == id {
			return &a.Slots[i], true
		}
	}
	return nil, false
}

// Device returns the room device owning a wearable part asset.
func (a *Asset) Device() *Asset {
	return a.device
}
