// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package access provides the default game rules for the action pipeline.
//
// Permissions are written as "kind:scope" strings:
//   - kind: "interact", "modifyBody", "lockItems", "pose"
//   - scope: the asset id the permission applies to, e.g. "a/restraints/gag"
//
// Each character owns a Policy of glob patterns over these strings that
// answers a request with allowed, prompt or forbidden.
package access

import (
	"strings"

	"github.com/holomush/wardrobe/internal/action"
)

// Policy is how a character answers permission requests from others.
// Patterns are globs over "kind:scope" where '*' stops at ':'.
// Forbid wins over Allow, Allow over Prompt; anything unmatched is
// forbidden.
type Policy struct {
	Allow  []string `koanf:"allow" json:"allow,omitempty"`
	Prompt []string `koanf:"prompt" json:"prompt,omitempty"`
	Forbid []string `koanf:"forbid" json:"forbid,omitempty"`
	// Trusted lists character id patterns that are allowed everything
	// except Forbid.
	Trusted []string `koanf:"trusted" json:"trusted,omitempty"`
}

// ParsePermission splits a "kind:scope" string.
// Returns (kind, "") when no scope is given.
func ParsePermission(s string) (kind action.PermissionKind, scope string) {
	if s == "" {
		return "", ""
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) == 1 {
		return action.PermissionKind(s), ""
	}
	return action.PermissionKind(parts[0]), parts[1]
}
