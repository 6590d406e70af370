// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import (
	"unicode/utf8"

	"github.com/holomush/wardrobe/internal/asset"
)

// TextModule holds a short free text, such as the writing on a name tag.
type TextModule struct {
	config *asset.ModuleConfig
	text   string
}

// Config implements Module.
func (m *TextModule) Config() *asset.ModuleConfig { return m.config }

// Text returns the text.
func (m *TextModule) Text() string { return m.text }

// Properties implements Module.
func (m *TextModule) Properties() []*asset.PropertiesDefinition { return nil }

// Items implements Module.
func (m *TextModule) Items() []*Item { return nil }

// ContentLocation implements Module.
func (m *TextModule) ContentLocation() Location { return "" }

// AcceptsContent implements Module.
func (m *TextModule) AcceptsContent(*Item) bool { return false }

// SetItems implements Module.
func (m *TextModule) SetItems([]*Item) (Module, bool) { return nil, false }

// DoAction implements Module.
func (m *TextModule) DoAction(_ ActionContext, action ModuleAction) (Module, ActionResult) {
	set, ok := action.(SetText)
	if !ok || !validCustomText(set.Text, m.config.MaxLength, true) {
		return nil, invalidResult()
	}
	return &TextModule{config: m.config, text: set.Text}, okResult()
}

// Validate implements Module.
func (m *TextModule) Validate(_ ValidationContext, owner *Item) ValidationError {
	if utf8.RuneCountInString(m.text) > m.config.MaxLength {
		return Invalid{Item: owner.id, Reason: "module " + m.config.Name + " text is too long"}
	}
	return nil
}

func (m *TextModule) exportBundle(bool) ModuleBundle {
	return ModuleBundle{Type: asset.ModuleText, Text: m.text}
}

func (m *TextModule) exportTemplate() ModuleTemplate {
	return ModuleTemplate{Type: asset.ModuleText, Text: m.text}
}

func loadTextModule(ctx LoadContext, cfg *asset.ModuleConfig, b ModuleBundle) *TextModule {
	text := b.Text
	if utf8.RuneCountInString(text) > cfg.MaxLength {
		ctx.logger().Warn("truncating module text", "module", cfg.Name)
		text = string([]rune(text)[:cfg.MaxLength])
	}
	return &TextModule{config: cfg, text: text}
}
