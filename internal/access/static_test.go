// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/wardrobe/internal/access"
	"github.com/holomush/wardrobe/internal/action"
	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/pkg/errutil"
)

const (
	alice item.CharacterID = "c/alice"
	bob   item.CharacterID = "c/bob"
	carol item.CharacterID = "c/carol"
)

func perm(target item.CharacterID, kind action.PermissionKind, scope string) action.Permission {
	return action.Permission{Target: target, Kind: kind, Scope: scope}
}

func TestManager_DefaultPolicy(t *testing.T) {
	m := access.NewManager(nil)

	tests := []struct {
		name string
		p    action.Permission
		want action.Grant
	}{
		{"pose", perm(alice, action.PermissionPose, ""), action.GrantAllowed},
		{"interact character wide", perm(alice, action.PermissionInteract, ""), action.GrantPrompt},
		{"interact with an asset", perm(alice, action.PermissionInteract, "a/clothes/shirt"), action.GrantPrompt},
		{"lock", perm(alice, action.PermissionLockItems, "a/accessories/collar"), action.GrantPrompt},
		{"body", perm(alice, action.PermissionModifyBody, "a/hair/long"), action.GrantForbidden},
		{"unknown kind", perm(alice, "dance", ""), action.GrantForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Grant(alice, bob, tt.p))
		})
	}
}

func TestManager_SelfIsAlwaysAllowed(t *testing.T) {
	m := access.NewManager(nil)

	assert.Equal(t, action.GrantAllowed, m.Grant(alice, alice, perm(alice, action.PermissionModifyBody, "a/hair/long")))
}

func TestNewManagerWithPolicy_InvalidPattern(t *testing.T) {
	_, err := access.NewManagerWithPolicy(access.Policy{Allow: []string{"interact:[a-"}}, nil)

	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "INVALID_PERMISSION_PATTERN")
	errutil.AssertErrorContext(t, err, "pattern", "interact:[a-")
}

func TestManager_SetPolicy(t *testing.T) {
	m := access.NewManager(nil)
	require.NoError(t, m.SetPolicy(alice, access.Policy{
		Allow:   []string{"interact:a/clothes/*"},
		Forbid:  []string{"interact:a/restraints/*", "modifyBody:*"},
		Trusted: []string{"c/b*"},
	}))

	// Trusted characters skip prompts but never Forbid.
	assert.Equal(t, action.GrantAllowed, m.Grant(alice, bob, perm(alice, action.PermissionLockItems, "a/locks/padlock")))
	assert.Equal(t, action.GrantForbidden, m.Grant(alice, bob, perm(alice, action.PermissionInteract, "a/restraints/gag")))

	assert.Equal(t, action.GrantAllowed, m.Grant(alice, carol, perm(alice, action.PermissionInteract, "a/clothes/shirt")))
	assert.Equal(t, action.GrantForbidden, m.Grant(alice, carol, perm(alice, action.PermissionLockItems, "a/locks/padlock")))

	// Other characters keep the defaults.
	assert.Equal(t, action.GrantPrompt, m.Grant(bob, carol, perm(bob, action.PermissionInteract, "a/clothes/shirt")))
}

func TestManager_SetPolicyErrors(t *testing.T) {
	m := access.NewManager(nil)

	err := m.SetPolicy("", access.DefaultPolicy())
	errutil.AssertErrorCode(t, err, "INVALID_CHARACTER")

	err = m.SetPolicy(alice, access.Policy{Prompt: []string{"lockItems:[z-"}})
	errutil.AssertErrorCode(t, err, "INVALID_PERMISSION_PATTERN")
	errutil.AssertErrorContext(t, err, "character", alice)

	errutil.AssertErrorCode(t, m.ClearPolicy(""), "INVALID_CHARACTER")
}

func TestManager_ApproveAndClear(t *testing.T) {
	m := access.NewManager(nil)
	shirt := perm(alice, action.PermissionInteract, "a/clothes/shirt")

	require.NoError(t, m.Approve(alice, bob, shirt))
	assert.Equal(t, action.GrantAllowed, m.Grant(alice, bob, shirt))
	assert.Equal(t, action.GrantPrompt, m.Grant(alice, carol, shirt), "approval is per player")
	assert.Equal(t, action.GrantPrompt, m.Grant(alice, bob, perm(alice, action.PermissionInteract, "a/clothes/pants")))

	err := m.Approve(alice, bob, perm(alice, action.PermissionModifyBody, "a/hair/long"))
	errutil.AssertErrorCode(t, err, "PERMISSION_FORBIDDEN")

	require.NoError(t, m.ClearPolicy(alice))
	assert.Equal(t, action.GrantPrompt, m.Grant(alice, bob, shirt))
}

func TestOpenPolicy(t *testing.T) {
	m, err := access.NewManagerWithPolicy(access.OpenPolicy(), nil)
	require.NoError(t, err)

	assert.Equal(t, action.GrantAllowed, m.Grant(alice, bob, perm(alice, action.PermissionInteract, "a/restraints/gag")))
	assert.Equal(t, action.GrantAllowed, m.Grant(alice, bob, perm(alice, action.PermissionLockItems, "")))
	assert.Equal(t, action.GrantForbidden, m.Grant(alice, bob, perm(alice, action.PermissionModifyBody, "a/body/tall")))
}

func TestParsePermission(t *testing.T) {
	tests := []struct {
		in    string
		kind  action.PermissionKind
		scope string
	}{
		{"", "", ""},
		{"pose", action.PermissionPose, ""},
		{"interact:a/clothes/shirt", action.PermissionInteract, "a/clothes/shirt"},
		{"lockItems:a:b", action.PermissionLockItems, "a:b"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			kind, scope := access.ParsePermission(tt.in)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.scope, scope)
			if tt.scope != "" {
				assert.Equal(t, tt.in, action.Permission{Kind: kind, Scope: scope}.String())
			}
		})
	}
}
