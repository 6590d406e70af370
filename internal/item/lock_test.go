// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/wardrobe/internal/asset/assettest"
	"github.com/holomush/wardrobe/internal/item"
)

func TestLockAction_WrongPasswordLeavesLockUnchanged(t *testing.T) {
	c := assettest.Catalog(t)
	lock := newItem(t, c, assettest.CombinationLck)
	ctx := item.ActionContext{Player: "c1", PlayerName: "Alice", Now: time.Now()}

	locked, res := lock.LockAction(ctx, item.Lock{Password: "1234"})
	require.Equal(t, item.OutcomeOK, res.Outcome)
	require.True(t, locked.IsLocked())
	before := locked.ExportToBundle()

	unlocked, res := locked.LockAction(ctx, item.Unlock{Password: "9999"})
	assert.Nil(t, unlocked)
	assert.Equal(t, item.OutcomeFailed, res.Outcome)
	assert.Equal(t, item.ReasonWrongPassword, res.Reason)
	assert.True(t, locked.IsLocked())
	assert.Equal(t, before, locked.ExportToBundle())

	unlocked, res = locked.LockAction(ctx, item.Unlock{Password: "1234"})
	require.Equal(t, item.OutcomeOK, res.Outcome)
	assert.False(t, unlocked.IsLocked())
	assert.False(t, unlocked.LockData().HasPassword())
}

func TestLockAction_Lock(t *testing.T) {
	c := assettest.Catalog(t)
	combination := newItem(t, c, assettest.CombinationLck)
	padlock := newItem(t, c, assettest.Padlock)
	ctx := item.ActionContext{Player: "c1", Now: time.Now()}

	tests := []struct {
		name   string
		lock   *item.Item
		action item.Lock
		want   item.Outcome
		reason item.FailureReason
	}{
		{"password accepted", combination, item.Lock{Password: "0042"}, item.OutcomeOK, ""},
		{"password missing", combination, item.Lock{}, item.OutcomeFailed, item.ReasonInvalidPassword},
		{"password wrong format", combination, item.Lock{Password: "abcd"}, item.OutcomeFailed, item.ReasonInvalidPassword},
		{"password too short", combination, item.Lock{Password: "12"}, item.OutcomeFailed, item.ReasonInvalidPassword},
		{"password on padlock", padlock, item.Lock{Password: "1234"}, item.OutcomeInvalid, ""},
		{"timer within max", combination, item.Lock{Password: "1111", TimerSeconds: 60}, item.OutcomeOK, ""},
		{"timer above max", combination, item.Lock{Password: "1111", TimerSeconds: 7200}, item.OutcomeInvalid, ""},
		{"timer unsupported", padlock, item.Lock{TimerSeconds: 1}, item.OutcomeInvalid, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, res := tt.lock.LockAction(ctx, tt.action)
			assert.Equal(t, tt.want, res.Outcome)
			assert.Equal(t, tt.reason, res.Reason)
		})
	}
}

func TestLockAction_AlreadyLocked(t *testing.T) {
	c := assettest.Catalog(t)
	ctx := item.ActionContext{Player: "c1", Now: time.Now()}
	locked, res := newItem(t, c, assettest.Padlock).LockAction(ctx, item.Lock{})
	require.Equal(t, item.OutcomeOK, res.Outcome)

	_, res = locked.LockAction(ctx, item.Lock{})
	assert.Equal(t, item.OutcomeInvalid, res.Outcome)

	_, res = newItem(t, c, assettest.Padlock).LockAction(ctx, item.Unlock{})
	assert.Equal(t, item.OutcomeInvalid, res.Outcome, "unlocking an open lock")
}

func TestLockAction_Timer(t *testing.T) {
	c := assettest.Catalog(t)
	start := time.UnixMilli(1_700_000_000_000)
	ctx := item.ActionContext{Player: "c1", Now: start}

	locked, res := newItem(t, c, assettest.CombinationLck).LockAction(ctx, item.Lock{Password: "1234", TimerSeconds: 60})
	require.Equal(t, item.OutcomeOK, res.Outcome)
	assert.Equal(t, start.Add(time.Minute).UnixMilli(), locked.LockData().Locked.LockedUntil)

	ctx.Now = start.Add(30 * time.Second)
	_, res = locked.LockAction(ctx, item.Unlock{Password: "1234"})
	assert.Equal(t, item.OutcomeFailed, res.Outcome)
	assert.Equal(t, item.ReasonTimerRunning, res.Reason)

	ctx.Now = start.Add(time.Minute)
	_, res = locked.LockAction(ctx, item.Unlock{Password: "1234"})
	assert.Equal(t, item.OutcomeOK, res.Outcome)
}

func TestLockAction_BlockSelf(t *testing.T) {
	c := assettest.Catalog(t)
	now := time.Now()
	locked, res := newItem(t, c, assettest.Padlock).LockAction(item.ActionContext{Player: "c2", Now: now}, item.Lock{})
	require.Equal(t, item.OutcomeOK, res.Outcome)

	_, res = locked.LockAction(item.ActionContext{Player: "c1", Target: "c1", Now: now}, item.Unlock{})
	assert.Equal(t, item.ReasonBlockSelf, res.Reason)

	_, res = locked.LockAction(item.ActionContext{Player: "c2", Target: "c1", Now: now}, item.Unlock{})
	assert.Equal(t, item.OutcomeOK, res.Outcome)
}

func TestLockAction_ShowPassword(t *testing.T) {
	c := assettest.Catalog(t)
	now := time.Now()
	locked, res := newItem(t, c, assettest.CombinationLck).LockAction(item.ActionContext{Player: "c1", Now: now}, item.Lock{Password: "4321"})
	require.Equal(t, item.OutcomeOK, res.Outcome)

	_, res = locked.LockAction(item.ActionContext{Player: "c1", Now: now}, item.ShowPassword{})
	require.Equal(t, item.OutcomeOK, res.Outcome)
	assert.Equal(t, "4321", res.Password)

	_, res = locked.LockAction(item.ActionContext{Player: "c2", Now: now}, item.ShowPassword{})
	assert.Equal(t, item.OutcomeFailed, res.Outcome)
	assert.Equal(t, item.ReasonNotAllowed, res.Reason)
	assert.Empty(t, res.Password)
}

func TestLockAction_NotALock(t *testing.T) {
	c := assettest.Catalog(t)
	_, res := newItem(t, c, assettest.Shirt).LockAction(item.ActionContext{}, item.Lock{})
	assert.Equal(t, item.OutcomeInvalid, res.Outcome)
}

func TestLockSlotAction_WrongPassword(t *testing.T) {
	c := assettest.Catalog(t)
	ctx := item.ActionContext{Player: "c1", Target: "c2", Now: time.Now()}
	collar := newItem(t, c, assettest.Collar).
		SetModuleItems("lock", []*item.Item{newItem(t, c, assettest.CombinationLck)})
	require.NotNil(t, collar)

	locked, res := collar.ModuleAction(ctx, "lock", item.LockSlotAction{Action: item.Lock{Password: "2468"}})
	require.Equal(t, item.OutcomeOK, res.Outcome)

	same, res := locked.ModuleAction(ctx, "lock", item.LockSlotAction{Action: item.Unlock{Password: "0000"}})
	assert.Nil(t, same)
	assert.Equal(t, item.OutcomeFailed, res.Outcome)
	assert.Equal(t, item.ReasonWrongPassword, res.Reason)
	assert.True(t, locked.Module("lock").(*item.LockSlotModule).IsLocked())
}
