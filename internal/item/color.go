// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import (
	"maps"
	"strconv"
	"strings"

	"github.com/holomush/wardrobe/internal/asset"
)

// Color maps colorization keys to explicitly set hex colors. Keys without
// an entry inherit through their color group or use the asset default.
type Color map[string]string

func (c Color) valid(a *asset.Asset) bool {
	for key, value := range c {
		def, ok := a.ColorizationFor(key)
		if !ok || !acceptsColor(def, value) {
			return false
		}
	}
	return true
}

func acceptsColor(def *asset.ColorizationDefinition, value string) bool {
	if !asset.IsHexColor(value) {
		return false
	}
	return colorAlpha(value) >= def.MinAlpha
}

// colorAlpha returns the alpha channel of a hex color in [0, 1].
func colorAlpha(value string) float64 {
	if len(value) != 9 {
		return 1
	}
	a, err := strconv.ParseUint(value[7:], 16, 8)
	if err != nil {
		return 0
	}
	return float64(a) / 255
}

// ChangeColor replaces the explicit colors of the item. Returns nil when a
// key is unknown to the asset or a value is not an acceptable hex color.
func (it *Item) ChangeColor(color Color) *Item {
	normalized := make(Color, len(color))
	for key, value := range color {
		normalized[key] = strings.ToUpper(value)
	}
	if !normalized.valid(it.asset) {
		return nil
	}
	return it.with(func(c *Item) {
		if len(normalized) == 0 {
			c.color = nil
			return
		}
		c.color = normalized
	})
}

// ResolveColor returns the effective color of a colorization key of the item
// when worn among items. The search order is: the item's own explicit color,
// the nearest preceding item with an explicit color in the same group, the
// nearest following one, and finally the key's default.
func (it *Item) ResolveColor(items []*Item, key string) string {
	def, ok := it.asset.ColorizationFor(key)
	if !ok {
		return ""
	}
	if v, ok := it.color[key]; ok {
		return v
	}
	if def.Group == "" {
		return def.Default
	}
	idx := -1
	for i, other := range items {
		if other.id == it.id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return def.Default
	}
	for i := idx - 1; i >= 0; i-- {
		if v, ok := items[i].groupColor(def.Group); ok {
			return v
		}
	}
	for i := idx + 1; i < len(items); i++ {
		if v, ok := items[i].groupColor(def.Group); ok {
			return v
		}
	}
	return def.Default
}

// ResolvedColors returns the effective color of every colorization key.
func (it *Item) ResolvedColors(items []*Item) Color {
	result := make(Color, len(it.asset.Colorization))
	for _, def := range it.asset.Colorization {
		result[def.Key] = it.ResolveColor(items, def.Key)
	}
	return result
}

// groupColor returns the first explicit color of a key in the group.
func (it *Item) groupColor(group string) (string, bool) {
	for _, def := range it.asset.Colorization {
		if def.Group != group {
			continue
		}
		if v, ok := it.color[def.Key]; ok {
			return v, true
		}
	}
	return "", false
}

func sanitizeColor(ctx LoadContext, a *asset.Asset, color Color) Color {
	if len(color) == 0 {
		return nil
	}
	result := maps.Clone(color)
	for key, value := range color {
		def, ok := a.ColorizationFor(key)
		if !ok || !acceptsColor(def, value) {
			ctx.logger().Warn("dropping invalid color", "asset", a.ID, "key", key, "value", value)
			delete(result, key)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
