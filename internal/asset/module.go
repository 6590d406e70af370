// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package asset

// ModuleType identifies the behaviour of an item module.
type ModuleType string

// Module types.
const (
	ModuleTyped     ModuleType = "typed"
	ModuleStorage   ModuleType = "storage"
	ModuleLockSlot  ModuleType = "lockSlot"
	ModuleText      ModuleType = "text"
	ModuleEncrypted ModuleType = "encrypted"
)

// IsValid reports whether m is a known module type.
func (m ModuleType) IsValid() bool {
	switch m {
	case ModuleTyped, ModuleStorage, ModuleLockSlot, ModuleText, ModuleEncrypted:
		return true
	default:
		return false
	}
}

// TypedVariant is one selectable variant of a typed module.
type TypedVariant struct {
	ID         string                `yaml:"id"`
	Name       string                `yaml:"name"`
	Default    bool                  `yaml:"default,omitempty"`
	Properties *PropertiesDefinition `yaml:"properties,omitempty"`
	// StoreCharacter records who selected the variant.
	StoreCharacter bool `yaml:"storeCharacter,omitempty"`
	// StoreTime records when the variant was selected.
	StoreTime     bool   `yaml:"storeTime,omitempty"`
	SwitchMessage string `yaml:"switchMessage,omitempty"`
}

// ModuleConfig is the static configuration of one module of an asset.
// Only the fields of the module's Type are meaningful.
type ModuleConfig struct {
	Name        string     `yaml:"name"`
	DisplayName string     `yaml:"displayName,omitempty"`
	Type        ModuleType `yaml:"type"`

	// typed
	Variants []TypedVariant `yaml:"variants,omitempty"`

	// storage
	MaxCount        int  `yaml:"maxCount,omitempty"`
	MaxAcceptedSize Size `yaml:"maxAcceptedSize,omitempty"`

	// lockSlot
	LockedProperties   *PropertiesDefinition `yaml:"lockedProperties,omitempty"`
	UnlockedProperties *PropertiesDefinition `yaml:"unlockedProperties,omitempty"`
	OccupiedProperties *PropertiesDefinition `yaml:"occupiedProperties,omitempty"`

	// text and encrypted
	MaxLength int `yaml:"maxLength,omitempty"`
}

// DefaultVariant returns the variant selected on a fresh item.
func (m *ModuleConfig) DefaultVariant() *TypedVariant {
	for i := range m.Variants {
		if m.Variants[i].Default {
			return &m.Variants[i]
		}
	}
	if len(m.Variants) > 0 {
		return &m.Variants[0]
	}
	return nil
}

// Variant returns the variant with the given id.
func (m *ModuleConfig) Variant(id string) (*TypedVariant, bool) {
	for i := range m.Variants {
		if m.Variants[i].ID == id {
			return &m.Variants[i], true
		}
	}
	return nil, false
}

// propertyDefinitions returns every properties block the module declares.
func (m *ModuleConfig) propertyDefinitions() []*PropertiesDefinition {
	var defs []*PropertiesDefinition
	for i := range m.Variants {
		if m.Variants[i].Properties != nil {
			defs = append(defs, m.Variants[i].Properties)
		}
	}
	for _, p := range []*PropertiesDefinition{m.LockedProperties, m.UnlockedProperties, m.OccupiedProperties} {
		if p != nil {
			defs = append(defs, p)
		}
	}
	return defs
}
