// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package access_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/wardrobe/internal/access"
	"github.com/holomush/wardrobe/internal/action"
	"github.com/holomush/wardrobe/internal/asset"
	"github.com/holomush/wardrobe/internal/asset/assettest"
	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/manipulator"
	"github.com/holomush/wardrobe/internal/state"
	"github.com/holomush/wardrobe/internal/validation"
)

var now = time.UnixMilli(1_700_000_000_000)

type fixture struct {
	t       *testing.T
	catalog *asset.Catalog
	g       *state.GlobalState
	m       *access.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{t: t, catalog: assettest.Catalog(t), m: access.NewManager(nil)}
	limits := validation.DefaultLimits()
	room := state.NewRoom(f.catalog, limits, "r/1", state.DefaultRoomInfo(), nil)
	f.g = state.NewGlobal(room,
		state.NewCharacter(f.catalog, limits, alice, f.body()),
		state.NewCharacter(f.catalog, limits, bob, f.body()),
	)
	require.Nil(t, f.g.Validate())
	return f
}

func (f *fixture) spawn(id asset.ID) *item.Item {
	f.t.Helper()
	a := f.catalog.AssetByID(id)
	require.NotNil(f.t, a, "asset %s", id)
	return item.New(a, item.NewID())
}

func (f *fixture) body() []*item.Item {
	return []*item.Item{f.spawn(assettest.BodyBase), f.spawn(assettest.HairShort)}
}

func (f *fixture) wear(id item.CharacterID, items ...*item.Item) {
	f.t.Helper()
	ch := f.g.Character(id)
	worn := append(append([]*item.Item(nil), ch.Items()...), items...)
	f.g = f.g.ProduceWithCharacter(ch.ProduceWithItems(worn))
	require.Nil(f.t, f.g.Validate())
}

func (f *fixture) override(id item.CharacterID, typ state.OverrideType) {
	ch := f.g.Character(id)
	f.g = f.g.ProduceWithCharacter(ch.ProduceWithRestrictionOverride(&state.RestrictionOverride{Type: typ}))
}

func (f *fixture) apply(player item.CharacterID, a action.Action) action.Result {
	return action.Apply(action.Context{Player: player, Now: now, Restrictions: f.m}, f.g, a)
}

func (f *fixture) problems(player item.CharacterID, a action.Action) []action.Problem {
	f.t.Helper()
	inv, ok := f.apply(player, a).(action.Invalid)
	require.True(f.t, ok, "expected the action to be rejected")
	return inv.Problems
}

func restricted(r action.Restriction) action.Problem {
	return action.Restricted{Restriction: r}
}

// lockedCollar returns a collar whose combination lock bob closed.
func (f *fixture) lockedCollar() *item.Item {
	f.t.Helper()
	collar := f.spawn(assettest.Collar).SetModuleItems("lock", []*item.Item{f.spawn(assettest.CombinationLck)})
	require.NotNil(f.t, collar)
	collar, res := collar.ModuleAction(item.ActionContext{Player: bob, Now: now}, "lock", item.LockSlotAction{Action: item.Lock{Password: "1357"}})
	require.Equal(f.t, item.OutcomeOK, res.Outcome)
	return collar
}

func dress(target item.CharacterID, id asset.ID) action.Create {
	return action.Create{Target: manipulator.CharacterTarget(target), Asset: id}
}

func TestCheckInteraction_PromptsTheTarget(t *testing.T) {
	f := newFixture(t)
	shirt := perm(alice, action.PermissionInteract, string(assettest.Shirt))

	inv, ok := f.apply(bob, dress(alice, assettest.Shirt)).(action.Invalid)
	require.True(t, ok)
	assert.Equal(t, []action.Problem{restricted(action.PermissionPrompt{Permission: shirt})}, inv.Problems)
	assert.Equal(t, []action.Permission{shirt}, inv.Permissions)
	assert.Equal(t, alice, inv.Prompt)

	require.NoError(t, f.m.Approve(alice, bob, shirt))
	assert.True(t, f.apply(bob, dress(alice, assettest.Shirt)).IsValid())
}

func TestCheckInteraction_SelfNeedsNoPermission(t *testing.T) {
	f := newFixture(t)

	assert.True(t, f.apply(alice, dress(alice, assettest.Shirt)).IsValid())
	assert.True(t, f.apply(alice, action.Randomize{Mode: action.RandomizeFull}).IsValid())
}

func TestCheckInteraction_OthersCannotChangeTheBody(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, []action.Problem{restricted(action.ModifyBodyOthers{})}, f.problems(bob, dress(alice, assettest.HairLong)))
}

func TestCheckInteraction_PoseIsAllowedByDefault(t *testing.T) {
	f := newFixture(t)

	assert.True(t, f.apply(bob, action.Pose{Character: alice, Preset: "kneel"}).IsValid())
}

func TestCheckInteraction_BlockedHands(t *testing.T) {
	f := newFixture(t)
	f.wear(alice, f.spawn(assettest.Armbinder))

	assert.Equal(t, []action.Problem{restricted(action.BlockedHands{})}, f.problems(alice, dress(alice, assettest.Shirt)))
	assert.True(t, f.apply(alice, action.Pose{Character: alice, Preset: "kneel"}).IsValid(), "posing needs no hands")
}

func TestCheckInteraction_LockedItems(t *testing.T) {
	f := newFixture(t)
	collar := f.lockedCollar()
	f.wear(alice, collar)
	target := manipulator.CharacterTarget(alice)

	got := f.problems(alice, action.Delete{Target: target, Item: manipulator.ItemPath{Item: collar.ID()}})
	assert.Equal(t, []action.Problem{restricted(action.BlockedAddRemove{Item: collar.ID(), Self: true})}, got)

	got = f.problems(alice, action.ModuleAction{
		Target: target,
		Item:   manipulator.ItemPath{Item: collar.ID()},
		Module: "tag",
		Action: item.SetText{Text: "Alice"},
	})
	assert.Equal(t, []action.Problem{restricted(action.BlockedModule{Item: collar.ID(), Module: "tag", Self: true})}, got)

	lock := collar.Module("lock").Items()[0]
	got = f.problems(alice, action.Delete{
		Target: target,
		Item:   manipulator.ItemPath{Container: manipulator.ContainerPath{{Item: collar.ID(), Module: "lock"}}, Item: lock.ID()},
	})
	assert.Contains(t, got, restricted(action.BlockedAddRemove{Item: lock.ID(), Self: true}))
}

func TestCheckInteraction_Safemode(t *testing.T) {
	f := newFixture(t)
	f.override(alice, state.OverrideSafemode)
	f.wear(alice, f.spawn(assettest.Armbinder))

	assert.True(t, f.apply(alice, dress(alice, assettest.Shirt)).IsValid(), "safemode lifts worn restrictions")
	assert.Contains(t, f.problems(alice, dress(bob, assettest.Shirt)), restricted(action.SafemodeInteractOther{}))
	assert.Contains(t, f.problems(bob, dress(alice, assettest.Shirt)), restricted(action.InSafemode{Character: alice}))
}

func TestCheckInteraction_Timeout(t *testing.T) {
	f := newFixture(t)
	f.override(alice, state.OverrideTimeout)

	assert.Equal(t, []action.Problem{restricted(action.TimeoutActive{})}, f.problems(alice, dress(alice, assettest.Shirt)))
}

func TestCheckInteraction_RoomNeedsNoPermission(t *testing.T) {
	f := newFixture(t)

	assert.True(t, f.apply(bob, action.Create{Target: manipulator.RoomTarget, Asset: assettest.Backpack}).IsValid())
}

func TestCheckInteraction_SelfOnly(t *testing.T) {
	f := newFixture(t)
	check := f.m.CheckInteraction(f.g, bob, action.Interaction{Kind: action.InteractSelf, Target: manipulator.CharacterTarget(alice)})

	assert.Equal(t, []action.Restriction{action.SelfOnly{}}, check.Restrictions)
	assert.Empty(t, check.Permissions)
}
