// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package asset

import (
	"errors"
	"slices"

	"github.com/Masterminds/semver/v3"
	"github.com/gobwas/glob"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/holomush/wardrobe/internal/pose"
)

// SupportedFormat is the semver constraint catalog files must satisfy.
const SupportedFormat = "^1.0.0"

// ErrUnknownAsset is returned when an asset id is not in the catalog.
var ErrUnknownAsset = errors.New("unknown asset")

// BodypartDefinition declares a bodypart category. Catalog order is the
// canonical wear order of bodyparts.
type BodypartDefinition struct {
	Name          string `yaml:"name"`
	Required      bool   `yaml:"required,omitempty"`
	AllowMultiple bool   `yaml:"allowMultiple,omitempty"`
}

// AttributeDefinition describes an attribute items may provide.
type AttributeDefinition struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// SlotDefinition declares a capacity-bounded cross-item slot.
type SlotDefinition struct {
	Name     string `yaml:"name"`
	Capacity int    `yaml:"capacity"`
}

// RandomizationConfig lists the attributes the randomizer fills.
// Body attributes select bodyparts, clothes attributes select personal items.
type RandomizationConfig struct {
	Body    []string `yaml:"body,omitempty"`
	Clothes []string `yaml:"clothes,omitempty"`
}

// PosePreset is a named pose.
type PosePreset struct {
	Name string    `yaml:"name"`
	Pose pose.Pose `yaml:"pose"`
}

// Definitions is the catalog file format.
type Definitions struct {
	FormatVersion string                `yaml:"formatVersion"`
	Bodyparts     []BodypartDefinition  `yaml:"bodyparts"`
	Attributes    []AttributeDefinition `yaml:"attributes,omitempty"`
	Slots         []SlotDefinition      `yaml:"slots,omitempty"`
	Randomization RandomizationConfig   `yaml:"randomization,omitempty"`
	PosePresets   []PosePreset          `yaml:"posePresets,omitempty"`
	Assets        []*Asset              `yaml:"assets"`
}

// Manager is read-only access to asset definitions.
type Manager interface {
	// AssetByID returns the asset or nil when unknown.
	AssetByID(id ID) *Asset
	// Assets returns every asset in catalog order.
	Assets() []*Asset
	// Bodyparts returns the bodypart definitions in canonical order.
	Bodyparts() []BodypartDefinition
	// BodypartIndex returns the canonical index of a bodypart, or -1.
	BodypartIndex(name string) int
	Attribute(name string) (AttributeDefinition, bool)
	Slot(name string) (SlotDefinition, bool)
	Randomization() RandomizationConfig
	PosePreset(name string) (PosePreset, bool)
	// Find returns the assets whose id matches a glob pattern ("/" separated).
	Find(pattern string) ([]*Asset, error)
}

// Catalog is the immutable in-memory Manager built from Definitions.
type Catalog struct {
	defs          Definitions
	assets        map[ID]*Asset
	bodypartIndex map[string]int
	attributes    map[string]AttributeDefinition
	slots         map[string]SlotDefinition
}

var _ Manager = (*Catalog)(nil)

// LoadCatalog parses a YAML catalog file and builds the catalog.
func LoadCatalog(data []byte) (*Catalog, error) {
	if len(data) == 0 {
		return nil, oops.Code("CATALOG_EMPTY").Errorf("catalog data is empty")
	}
	var defs Definitions
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, oops.Code("CATALOG_INVALID").Wrapf(err, "decode catalog")
	}
	version, err := semver.NewVersion(defs.FormatVersion)
	if err != nil {
		return nil, oops.Code("CATALOG_VERSION_INVALID").With("format_version", defs.FormatVersion).Wrap(err)
	}
	constraint, err := semver.NewConstraint(SupportedFormat)
	if err != nil {
		return nil, oops.Code("CATALOG_VERSION_INVALID").Wrap(err)
	}
	if !constraint.Check(version) {
		return nil, oops.Code("CATALOG_VERSION_UNSUPPORTED").
			With("format_version", defs.FormatVersion).
			With("supported", SupportedFormat).
			Errorf("unsupported catalog format version %s", defs.FormatVersion)
	}
	return NewCatalog(defs)
}

// NewCatalog validates cross references and compiles definitions.
func NewCatalog(defs Definitions) (*Catalog, error) {
	c := &Catalog{
		defs:          defs,
		assets:        make(map[ID]*Asset, len(defs.Assets)),
		bodypartIndex: make(map[string]int, len(defs.Bodyparts)),
		attributes:    make(map[string]AttributeDefinition, len(defs.Attributes)),
		slots:         make(map[string]SlotDefinition, len(defs.Slots)),
	}
	for i, bp := range defs.Bodyparts {
		if _, dup := c.bodypartIndex[bp.Name]; dup || bp.Name == "" {
			return nil, oops.Code("CATALOG_INVALID").With("bodypart", bp.Name).Errorf("bodypart names must be unique and non-empty")
		}
		c.bodypartIndex[bp.Name] = i
	}
	for _, attr := range defs.Attributes {
		c.attributes[attr.Name] = attr
	}
	for _, slot := range defs.Slots {
		if slot.Capacity < 1 {
			return nil, oops.Code("CATALOG_INVALID").With("slot", slot.Name).Errorf("slot capacity must be positive")
		}
		c.slots[slot.Name] = slot
	}
	for _, a := range defs.Assets {
		if a == nil || !a.ID.IsValid() {
			return nil, oops.Code("CATALOG_INVALID").Errorf("asset with invalid id")
		}
		if _, dup := c.assets[a.ID]; dup {
			return nil, oops.Code("CATALOG_INVALID").With("asset", a.ID).Errorf("duplicate asset id")
		}
		c.assets[a.ID] = a
	}
	for _, a := range defs.Assets {
		if err := c.checkAsset(a); err != nil {
			return nil, oops.With("asset", a.ID).Wrap(err)
		}
	}
	return c, nil
}

func (c *Catalog) checkAsset(a *Asset) error {
	if !a.Type.IsValid() {
		return oops.Code("CATALOG_INVALID").With("type", a.Type).Errorf("unknown asset type")
	}
	if a.Size.Rank() < 0 {
		return oops.Code("CATALOG_INVALID").With("size", a.Size).Errorf("unknown asset size")
	}
	if a.Bodypart != "" {
		if a.Type != TypePersonal {
			return oops.Code("CATALOG_INVALID").Errorf("only personal assets can be bodyparts")
		}
		if _, ok := c.bodypartIndex[a.Bodypart]; !ok {
			return oops.Code("CATALOG_INVALID").With("bodypart", a.Bodypart).Errorf("unknown bodypart")
		}
	}
	for _, col := range a.Colorization {
		if col.Key == "" || !IsHexColor(col.Default) {
			return oops.Code("CATALOG_INVALID").With("colorization", col.Key).Errorf("colorization needs a key and a hex default")
		}
	}
	if err := c.checkProperties(&a.Properties); err != nil {
		return err
	}
	seen := make(map[string]bool, len(a.Modules))
	for i := range a.Modules {
		m := &a.Modules[i]
		if m.Name == "" || seen[m.Name] {
			return oops.Code("CATALOG_INVALID").With("module", m.Name).Errorf("module names must be unique and non-empty")
		}
		seen[m.Name] = true
		if err := c.checkModule(m); err != nil {
			return oops.With("module", m.Name).Wrap(err)
		}
	}
	switch a.Type {
	case TypeRoomDevice:
		for _, slot := range a.Slots {
			part := c.assets[slot.WearableAsset]
			if part == nil || part.Type != TypeRoomDeviceWearablePart {
				return oops.Code("CATALOG_INVALID").With("slot", slot.ID).Errorf("device slot must reference a wearable part asset")
			}
			if part.device != nil && part.device != a {
				return oops.Code("CATALOG_INVALID").With("slot", slot.ID).Errorf("wearable part belongs to another device")
			}
			part.device = a
		}
	case TypeLock:
		if a.Lock == nil {
			a.Lock = &LockSetup{}
		}
		if p := a.Lock.Password; p != nil {
			if p.MinLength < 1 || p.MaxLength < p.MinLength {
				return oops.Code("CATALOG_INVALID").Errorf("lock password length range is invalid")
			}
			if _, ok := passwordPatterns[p.Format]; !ok {
				return oops.Code("CATALOG_INVALID").With("format", p.Format).Errorf("unknown password format")
			}
		}
	case TypePersonal, TypeRoomDeviceWearablePart:
	}
	return nil
}

func (c *Catalog) checkModule(m *ModuleConfig) error {
	switch m.Type {
	case ModuleTyped:
		if len(m.Variants) == 0 {
			return oops.Code("CATALOG_INVALID").Errorf("typed module needs variants")
		}
	case ModuleStorage:
		if m.MaxCount < 1 || m.MaxAcceptedSize.Rank() < 0 || m.MaxAcceptedSize == SizeBodypart {
			return oops.Code("CATALOG_INVALID").Errorf("storage module needs a count and an accepted size")
		}
	case ModuleText, ModuleEncrypted:
		if m.MaxLength < 1 {
			return oops.Code("CATALOG_INVALID").Errorf("text module needs a max length")
		}
	case ModuleLockSlot:
	default:
		return oops.Code("CATALOG_INVALID").With("type", m.Type).Errorf("unknown module type")
	}
	for _, p := range m.propertyDefinitions() {
		if err := c.checkProperties(p); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) checkProperties(p *PropertiesDefinition) error {
	for slot := range p.Slots.Occupy {
		if _, ok := c.slots[slot]; !ok {
			return oops.Code("CATALOG_INVALID").With("slot", slot).Errorf("unknown slot")
		}
	}
	for _, slot := range p.Slots.Block {
		if _, ok := c.slots[slot]; !ok {
			return oops.Code("CATALOG_INVALID").With("slot", slot).Errorf("unknown slot")
		}
	}
	return p.compile()
}

// AssetByID implements Manager.
func (c *Catalog) AssetByID(id ID) *Asset {
	return c.assets[id]
}

// Assets implements Manager.
func (c *Catalog) Assets() []*Asset {
	return slices.Clone(c.defs.Assets)
}

// Bodyparts implements Manager.
func (c *Catalog) Bodyparts() []BodypartDefinition {
	return slices.Clone(c.defs.Bodyparts)
}

// BodypartIndex implements Manager.
func (c *Catalog) BodypartIndex(name string) int {
	if idx, ok := c.bodypartIndex[name]; ok {
		return idx
	}
	return -1
}

// Attribute implements Manager.
func (c *Catalog) Attribute(name string) (AttributeDefinition, bool) {
	a, ok := c.attributes[name]
	return a, ok
}

// Slot implements Manager.
func (c *Catalog) Slot(name string) (SlotDefinition, bool) {
	s, ok := c.slots[name]
	return s, ok
}

// Randomization implements Manager.
func (c *Catalog) Randomization() RandomizationConfig {
	return c.defs.Randomization
}

// PosePreset implements Manager.
func (c *Catalog) PosePreset(name string) (PosePreset, bool) {
	for _, p := range c.defs.PosePresets {
		if p.Name == name {
			return p, true
		}
	}
	return PosePreset{}, false
}

// Find implements Manager.
func (c *Catalog) Find(pattern string) ([]*Asset, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, oops.Code("ASSET_PATTERN_INVALID").With("pattern", pattern).Wrap(err)
	}
	var result []*Asset
	for _, a := range c.defs.Assets {
		if g.Match(string(a.ID)) {
			result = append(result, a)
		}
	}
	return result, nil
}
