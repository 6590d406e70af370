// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/wardrobe/internal/asset/assettest"
	"github.com/holomush/wardrobe/internal/item"
)

func TestChangeColor(t *testing.T) {
	c := assettest.Catalog(t)
	shirt := newItem(t, c, assettest.Shirt)

	red := shirt.ChangeColor(item.Color{"cloth": "#ff0000"})
	require.NotNil(t, red)
	assert.Equal(t, item.Color{"cloth": "#FF0000"}, red.Color())
	assert.Empty(t, shirt.Color())

	assert.Nil(t, shirt.ChangeColor(item.Color{"sleeves": "#FF0000"}), "unknown key")
	assert.Nil(t, shirt.ChangeColor(item.Color{"cloth": "red"}), "not hex")
	assert.Nil(t, shirt.ChangeColor(item.Color{"buttons": "#22222280"}), "below min alpha")
	assert.NotNil(t, shirt.ChangeColor(item.Color{"buttons": "#222222FF"}))

	cleared := red.ChangeColor(nil)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Color())
}

func TestResolveColor_Groups(t *testing.T) {
	c := assettest.Catalog(t)
	shirt := newItem(t, c, assettest.Shirt)
	pants := newItem(t, c, assettest.Pants)
	boots := newItem(t, c, assettest.Boots)

	t.Run("default without explicit colors", func(t *testing.T) {
		items := []*item.Item{shirt, pants}
		assert.Equal(t, "#333366", pants.ResolveColor(items, "cloth"))
	})

	t.Run("inherits from preceding item", func(t *testing.T) {
		red := shirt.ChangeColor(item.Color{"cloth": "#FF0000"})
		items := []*item.Item{red, boots, pants}
		assert.Equal(t, "#FF0000", pants.ResolveColor(items, "cloth"))
	})

	t.Run("inherits from following item when nothing precedes", func(t *testing.T) {
		blue := pants.ChangeColor(item.Color{"cloth": "#0000FF"})
		items := []*item.Item{shirt, blue}
		assert.Equal(t, "#0000FF", shirt.ResolveColor(items, "cloth"))
	})

	t.Run("nearest preceding wins over following", func(t *testing.T) {
		green := pants.ChangeColor(item.Color{"cloth": "#00FF00"})
		red := shirt.ChangeColor(item.Color{"cloth": "#FF0000"})
		other := newItem(t, c, assettest.Pants)
		items := []*item.Item{red, other, green}
		assert.Equal(t, "#FF0000", other.ResolveColor(items, "cloth"))
	})

	t.Run("own color wins", func(t *testing.T) {
		red := shirt.ChangeColor(item.Color{"cloth": "#FF0000"})
		blue := pants.ChangeColor(item.Color{"cloth": "#0000FF"})
		items := []*item.Item{red, blue}
		assert.Equal(t, "#0000FF", blue.ResolveColor(items, "cloth"))
	})

	t.Run("ungrouped keys do not inherit", func(t *testing.T) {
		red := shirt.ChangeColor(item.Color{"cloth": "#FF0000"})
		assert.Equal(t, "#222222", red.ResolveColor([]*item.Item{red}, "buttons"))
		assert.Equal(t, "", red.ResolveColor([]*item.Item{red}, "missing"))
	})

	t.Run("resolved colors cover every key", func(t *testing.T) {
		assert.Equal(t, item.Color{"cloth": "#FFFFFF", "buttons": "#222222"}, shirt.ResolvedColors([]*item.Item{shirt}))
	})
}
