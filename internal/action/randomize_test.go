// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package action

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/wardrobe/internal/asset"
)

func TestWeightedOrder_FavorsWishListAttributes(t *testing.T) {
	plain := &asset.Asset{ID: "a/hair/plain"}
	styled := &asset.Asset{ID: "a/hair/styled", Properties: asset.PropertiesDefinition{
		Provides: []string{"Hair", "Long_Hair", "Curly_Hair"},
	}}
	wish := []string{"Hair", "Long_Hair", "Curly_Hair"}
	ctx := Context{Rand: rand.New(rand.NewPCG(7, 11))}

	const draws = 2000
	styledFirst := 0
	for range draws {
		order := ctx.weightedOrder([]*asset.Asset{plain, styled}, wish)
		require.ElementsMatch(t, []*asset.Asset{plain, styled}, order)
		if order[0] == styled {
			styledFirst++
		}
	}

	// Weights 4:1 put the styled asset first about 80% of the time.
	assert.InDelta(t, 0.8*draws, styledFirst, 0.05*draws)
}

func TestWeightedOrder_KeepsCandidates(t *testing.T) {
	candidates := []*asset.Asset{{ID: "a/1"}, {ID: "a/2"}, {ID: "a/3"}}
	ctx := Context{Rand: rand.New(rand.NewPCG(1, 2))}

	order := ctx.weightedOrder(candidates, nil)

	assert.ElementsMatch(t, candidates, order)
	assert.Equal(t, asset.ID("a/1"), candidates[0].ID, "input order is untouched")
	assert.Empty(t, ctx.weightedOrder(nil, nil))
}
