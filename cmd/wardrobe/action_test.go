// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/wardrobe/internal/action"
	"github.com/holomush/wardrobe/internal/asset/assettest"
	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/manipulator"
	"github.com/holomush/wardrobe/internal/state"
	"github.com/holomush/wardrobe/internal/validation"
	"github.com/holomush/wardrobe/pkg/errutil"
)

const bob item.CharacterID = "c/bob"

func pairBundle(t *testing.T) state.GlobalStateBundle {
	t.Helper()
	g := state.LoadGlobalState(state.LoadContext{
		Manager: assettest.Catalog(t),
		Limits:  validation.DefaultLimits(),
		Logger:  slog.New(slog.DiscardHandler),
		Rand:    rand.New(rand.NewPCG(3, 4)),
	}, state.GlobalStateBundle{
		Room:       state.RoomBundle{ID: "r/1"},
		Characters: map[item.CharacterID]state.AppearanceBundle{alice: {}, bob: {}},
	})
	return g.ExportToBundle()
}

func encodeAction(t *testing.T, a action.Action) string {
	t.Helper()
	data, err := action.Encode(a)
	require.NoError(t, err)
	return string(data)
}

func TestApply_CreatesItem(t *testing.T) {
	env := newTestEnv(t)
	bundle := env.writeBundle(t, "bundle.json", validBundle(t))
	create := encodeAction(t, action.Create{Target: manipulator.CharacterTarget(alice), Asset: assettest.Shirt})

	out, stderr, err := env.run(t, create, "--catalog.path", env.catalog, "apply", "-c", string(alice), bundle)

	require.NoError(t, err)
	assert.Contains(t, stderr, "> c/alice added Shirt to c/alice.")
	items := decodeBundle(t, out).Characters[alice].Items
	require.Len(t, items, 3)
	assert.Equal(t, assettest.Shirt, items[2].Asset)
}

func TestApply_ActionFromFile(t *testing.T) {
	env := newTestEnv(t)
	bundle := env.writeBundle(t, "bundle.json", validBundle(t))
	actionPath := filepath.Join(env.dir, "action.json")
	create := encodeAction(t, action.Create{Target: manipulator.RoomTarget, Asset: assettest.Backpack})
	require.NoError(t, os.WriteFile(actionPath, []byte(create), 0o600))
	outPath := filepath.Join(env.dir, "out.json")

	_, _, err := env.run(t, "", "--catalog.path", env.catalog, "apply", "-c", string(alice), "-a", actionPath, "-o", outPath, bundle)

	require.NoError(t, err)
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	room := decodeBundle(t, string(data)).Room
	require.Len(t, room.Items, 1)
	assert.Equal(t, assettest.Backpack, room.Items[0].Asset)
}

func TestApply_InvalidAction(t *testing.T) {
	env := newTestEnv(t)
	bundle := env.writeBundle(t, "bundle.json", validBundle(t))
	create := encodeAction(t, action.Create{Target: manipulator.CharacterTarget("c/nobody"), Asset: assettest.Shirt})

	out, _, err := env.run(t, create, "--catalog.path", env.catalog, "apply", "-c", string(alice), bundle)

	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "ACTION_INVALID")
	assert.Contains(t, out, "- targetNotFound")
}

func TestApply_PromptsUnderDefaultPolicy(t *testing.T) {
	env := newTestEnv(t)
	bundle := env.writeBundle(t, "bundle.json", pairBundle(t))
	create := encodeAction(t, action.Create{Target: manipulator.CharacterTarget(alice), Asset: assettest.Shirt})

	out, _, err := env.run(t, create, "--catalog.path", env.catalog, "apply", "-c", string(bob), bundle)

	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "ACTION_INVALID")
	assert.Contains(t, out, "- restricted")
	assert.Contains(t, out, "needs interact:a/clothes/shirt from c/alice")
}

func TestApply_OpenPolicyFromConfig(t *testing.T) {
	env := newTestEnv(t)
	bundle := env.writeBundle(t, "bundle.json", pairBundle(t))
	cfgPath := filepath.Join(env.dir, "wardrobe.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("access:\n  preset: open\n"), 0o600))
	create := encodeAction(t, action.Create{Target: manipulator.CharacterTarget(alice), Asset: assettest.Shirt})

	out, stderr, err := env.run(t, create, "--config", cfgPath, "--catalog.path", env.catalog, "apply", "-c", string(bob), bundle)

	require.NoError(t, err)
	assert.Contains(t, stderr, "> c/bob added Shirt to c/alice.")
	assert.Len(t, decodeBundle(t, out).Characters[alice].Items, 3)
}

func TestApply_UndecodableAction(t *testing.T) {
	env := newTestEnv(t)
	bundle := env.writeBundle(t, "bundle.json", validBundle(t))

	_, _, err := env.run(t, `{"type": "fly"}`, "--catalog.path", env.catalog, "apply", "-c", string(alice), bundle)

	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "ACTION_DECODE_FAILED")
}

func TestApply_RequiresCharacter(t *testing.T) {
	env := newTestEnv(t)
	bundle := env.writeBundle(t, "bundle.json", validBundle(t))

	_, _, err := env.run(t, "{}", "--catalog.path", env.catalog, "apply", bundle)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "character")
}

func TestRandomize_Body(t *testing.T) {
	env := newTestEnv(t)
	bundle := env.writeBundle(t, "bundle.json", validBundle(t))

	out, stderr, err := env.run(t, "", "--catalog.path", env.catalog, "randomize", "--mode", "body", "--seed", "9", "-c", string(alice), bundle)

	require.NoError(t, err)
	assert.Contains(t, stderr, "> c/alice changed their appearance.")
	items := decodeBundle(t, out).Characters[alice].Items
	require.NotEmpty(t, items)
	assert.Contains(t, []string{string(assettest.BodyBase), string(assettest.BodyTall)}, string(items[0].Asset))
}

func TestRandomize_RejectsUnknownMode(t *testing.T) {
	env := newTestEnv(t)
	bundle := env.writeBundle(t, "bundle.json", validBundle(t))

	_, _, err := env.run(t, "", "--catalog.path", env.catalog, "randomize", "--mode", "hair", "-c", string(alice), bundle)

	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "INVALID_ARGUMENT")
}
