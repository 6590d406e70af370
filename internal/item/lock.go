// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import (
	"crypto/subtle"

	"github.com/holomush/wardrobe/internal/asset"
)

// LockedState records who locked a lock and until when.
type LockedState struct {
	By   CharacterRef `json:"by"`
	Time int64        `json:"time"`
	// LockedUntil is the end of a timer lock in unix milliseconds; zero for none.
	LockedUntil int64 `json:"lockedUntil,omitempty"`
}

// LockData is the state of a lock item. The password never leaves the
// server; clients only see HasPassword.
type LockData struct {
	Locked        *LockedState
	Password      string
	PasswordSetBy CharacterID
	// hasPassword is set instead of Password when loaded from a client bundle.
	hasPassword bool
}

// HasPassword reports whether the lock is protected by a password.
func (d LockData) HasPassword() bool {
	return d.Password != "" || d.hasPassword
}

// LockAction is an action on a lock item.
// The types in this package are the complete set.
type LockAction interface {
	lockAction()
}

// Lock locks the lock, optionally with a password and a timer.
type Lock struct {
	Password     string `json:"password,omitempty"`
	TimerSeconds int64  `json:"timerSeconds,omitempty"`
}

// Unlock unlocks the lock. Password must match a stored password.
type Unlock struct {
	Password string `json:"password,omitempty"`
}

// ShowPassword reveals the stored password to the character who set it.
type ShowPassword struct{}

func (Lock) lockAction()         {}
func (Unlock) lockAction()       {}
func (ShowPassword) lockAction() {}

// LockData returns the lock state of a lock item.
func (it *Item) LockData() LockData { return it.lock }

// IsLocked reports whether the item is a locked lock.
func (it *Item) IsLocked() bool {
	return it.asset.Type == asset.TypeLock && it.lock.Locked != nil
}

// LockAction performs an action on a lock item. Rejected actions leave the
// lock untouched and return a nil item.
func (it *Item) LockAction(ctx ActionContext, action LockAction) (*Item, ActionResult) {
	if it.asset.Type != asset.TypeLock {
		return nil, invalidResult()
	}
	setup := it.asset.Lock
	if setup == nil {
		setup = &asset.LockSetup{}
	}
	switch a := action.(type) {
	case Lock:
		return it.lockWith(ctx, setup, a)
	case Unlock:
		return it.unlockWith(ctx, setup, a)
	case ShowPassword:
		if it.lock.Password == "" {
			return nil, invalidResult()
		}
		if it.lock.PasswordSetBy != ctx.Player {
			return nil, failedResult(ReasonNotAllowed)
		}
		return it, ActionResult{Outcome: OutcomeOK, Password: it.lock.Password}
	default:
		return nil, invalidResult()
	}
}

func (it *Item) lockWith(ctx ActionContext, setup *asset.LockSetup, a Lock) (*Item, ActionResult) {
	if it.lock.Locked != nil {
		return nil, invalidResult()
	}
	switch {
	case setup.Password == nil && a.Password != "":
		return nil, invalidResult()
	case setup.Password != nil && !setup.Password.Accepts(a.Password):
		return nil, failedResult(ReasonInvalidPassword)
	}
	if a.TimerSeconds < 0 || a.TimerSeconds > setup.TimerMaxSeconds {
		return nil, invalidResult()
	}
	now := ctx.Now.UnixMilli()
	state := &LockedState{By: *ctx.playerRef(), Time: now}
	if a.TimerSeconds > 0 {
		state.LockedUntil = now + a.TimerSeconds*1000
	}
	return it.with(func(c *Item) {
		c.lock = LockData{Locked: state}
		if a.Password != "" {
			c.lock.Password = a.Password
			c.lock.PasswordSetBy = ctx.Player
		}
	}), okResult()
}

func (it *Item) unlockWith(ctx ActionContext, setup *asset.LockSetup, a Unlock) (*Item, ActionResult) {
	if it.lock.Locked == nil {
		return nil, invalidResult()
	}
	if setup.BlockSelf && ctx.Target != "" && ctx.Player == ctx.Target {
		return nil, failedResult(ReasonBlockSelf)
	}
	if until := it.lock.Locked.LockedUntil; until > 0 && ctx.Now.UnixMilli() < until {
		return nil, failedResult(ReasonTimerRunning)
	}
	if it.lock.Password != "" &&
		subtle.ConstantTimeCompare([]byte(it.lock.Password), []byte(a.Password)) != 1 {
		return nil, failedResult(ReasonWrongPassword)
	}
	return it.with(func(c *Item) { c.lock = LockData{} }), okResult()
}
