// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/wardrobe/internal/asset"
	"github.com/holomush/wardrobe/internal/asset/assettest"
	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/validation"
)

type fixture struct {
	t       *testing.T
	catalog *asset.Catalog
	ctx     validation.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := assettest.Catalog(t)
	return &fixture{t: t, catalog: c, ctx: validation.Character(c, "c1", validation.DefaultLimits())}
}

func (f *fixture) items(ids ...asset.ID) []*item.Item {
	f.t.Helper()
	result := make([]*item.Item, 0, len(ids))
	for _, id := range ids {
		a := f.catalog.AssetByID(id)
		require.NotNil(f.t, a, "asset %s", id)
		result = append(result, item.New(a, item.NewID()))
	}
	return result
}

func TestValidatePrefix_Valid(t *testing.T) {
	f := newFixture(t)
	items := f.items(assettest.BodyBase, assettest.HairShort, assettest.EyesRound,
		assettest.Shirt, assettest.Pants, assettest.Collar, assettest.Armbinder)

	assert.NoError(t, validation.ValidatePrefix(f.ctx, items))
	assert.NoError(t, validation.ValidateAll(f.ctx, items))
}

func TestValidatePrefix_Monotonic(t *testing.T) {
	f := newFixture(t)
	items := f.items(assettest.BodyBase, assettest.HairLong, assettest.Shirt,
		assettest.Pants, assettest.Boots, assettest.Collar, assettest.Scarf, assettest.Gag)
	require.NoError(t, validation.ValidatePrefix(f.ctx, items))

	for k := range len(items) {
		assert.NoError(t, validation.ValidatePrefix(f.ctx, items[:k]), "prefix %d", k)
	}
}

func TestValidatePrefix_Errors(t *testing.T) {
	tests := []struct {
		name   string
		assets []asset.ID
		kind   string
	}{
		{"bodypart after clothing", []asset.ID{assettest.BodyBase, assettest.Shirt, assettest.HairShort}, "bodypartError"},
		{"bodyparts out of order", []asset.ID{assettest.HairShort, assettest.BodyBase}, "bodypartError"},
		{"duplicate bodypart", []asset.ID{assettest.BodyBase, assettest.HairShort, assettest.HairLong}, "bodypartError"},
		{"requirement unsatisfied", []asset.ID{assettest.Shirt}, "unsatisfiedRequirement"},
		{"negated requirement", []asset.ID{assettest.BodyBase, assettest.FrontCuffs, assettest.Armbinder}, "unsatisfiedRequirement"},
		{"slot full", []asset.ID{assettest.BodyBase, assettest.Collar, assettest.Choker}, "slotFull"},
		{"slot blocked", []asset.ID{assettest.BodyBase, assettest.Scarf, assettest.Collar}, "slotBlockedOrder"},
		{"pose conflict", []asset.ID{assettest.BodyBase, assettest.Armbinder, assettest.FrontCuffs}, "poseConflict"},
		{"device worn", []asset.ID{assettest.BodyBase, assettest.Chair}, "invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			err := validation.ValidatePrefix(f.ctx, f.items(tt.assets...))
			require.Error(t, err)
			assert.Equal(t, tt.kind, err.Kind())
		})
	}
}

func TestValidatePrefix_SlotFullNamesSlot(t *testing.T) {
	f := newFixture(t)
	items := f.items(assettest.BodyBase, assettest.Collar, assettest.Choker)

	err := validation.ValidatePrefix(f.ctx, items)
	assert.Equal(t, item.SlotFull{Slot: "neck", Item: items[2].ID()}, err)
}

func TestValidatePrefix_SlotBlockOnlyAffectsLaterItems(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, validation.ValidatePrefix(f.ctx, f.items(assettest.BodyBase, assettest.Collar, assettest.Scarf)))
}

func TestValidatePrefix_DuplicateIDs(t *testing.T) {
	f := newFixture(t)
	items := f.items(assettest.BodyBase, assettest.Backpack)
	shirt := f.items(assettest.Shirt)[0]
	items[1] = items[1].SetModuleItems("contents", []*item.Item{shirt})
	items = append(items, shirt)

	err := validation.ValidatePrefix(f.ctx, items)
	assert.Equal(t, item.DuplicateItemID{Item: shirt.ID()}, err)
}

func TestValidatePrefix_ItemLimit(t *testing.T) {
	f := newFixture(t)
	f.ctx.Limits.CharacterItems = 3
	items := f.items(assettest.BodyBase, assettest.HairShort, assettest.Backpack)
	require.NoError(t, validation.ValidatePrefix(f.ctx, items))

	items[2] = items[2].SetModuleItems("contents", f.items(assettest.Shirt))
	err := validation.ValidatePrefix(f.ctx, items)
	assert.Equal(t, item.TooManyItems{Limit: 3}, err)
	assert.Equal(t, 4, validation.CountItems(items))
}

func TestValidateAll_RequiredBodyparts(t *testing.T) {
	f := newFixture(t)
	items := f.items(assettest.BodyBase)

	require.NoError(t, validation.ValidatePrefix(f.ctx, items))
	err := validation.ValidateAll(f.ctx, items)
	assert.Equal(t, item.BodypartError{Problem: item.BodypartMissing, Bodypart: "hair"}, err)
}

func TestValidate_RoomItems(t *testing.T) {
	f := newFixture(t)
	room := validation.Room(f.catalog, validation.DefaultLimits())

	assert.NoError(t, validation.ValidateAll(room, f.items(assettest.Shirt, assettest.Chair, assettest.Padlock)))

	err := validation.ValidateAll(room, f.items(assettest.HairShort))
	require.Error(t, err)
	assert.Equal(t, "invalid", err.Kind())
}

func TestResolveProperties(t *testing.T) {
	f := newFixture(t)
	props, ok := validation.ResolveProperties(f.catalog, f.items(assettest.BodyBase, assettest.Armbinder))
	require.True(t, ok)
	assert.True(t, props.Effects.BlockHands)
	assert.True(t, props.HasAttribute("Restraint_Arms"))

	_, ok = validation.ResolveProperties(f.catalog, f.items(assettest.Shirt))
	assert.False(t, ok)
}

func TestSortByBodypartOrder(t *testing.T) {
	f := newFixture(t)
	items := f.items(assettest.Shirt, assettest.HairShort, assettest.Pants, assettest.BodyBase)

	ids := func(list []*item.Item) []item.ID {
		out := make([]item.ID, 0, len(list))
		for _, it := range list {
			out = append(out, it.ID())
		}
		return out
	}
	before := ids(items)

	sorted := validation.SortByBodypartOrder(f.catalog, items)
	assert.Equal(t, []item.ID{items[3].ID(), items[1].ID(), items[0].ID(), items[2].ID()}, ids(sorted))
	assert.Equal(t, before, ids(items), "input is not reordered")
	assert.NoError(t, validation.ValidatePrefix(f.ctx, sorted))
}
