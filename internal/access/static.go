// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package access

import (
	"log/slog"
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/holomush/wardrobe/internal/action"
	"github.com/holomush/wardrobe/internal/item"
)

// Manager implements action.RestrictionsManager with per character
// policies held in memory.
//
// Thread-safety: defaults is immutable after construction. policies and
// approvals are protected by mu.
type Manager struct {
	defaults  compiledPolicy
	policies  map[item.CharacterID]compiledPolicy
	approvals map[approvalKey]bool
	logger    *slog.Logger
	mu        sync.RWMutex
}

var _ action.RestrictionsManager = (*Manager)(nil)

// approvalKey is a prompt a target has answered for one player.
type approvalKey struct {
	target     item.CharacterID
	player     item.CharacterID
	permission string
}

type compiledPolicy struct {
	allow   []compiledPattern
	prompt  []compiledPattern
	forbid  []compiledPattern
	trusted []compiledPattern
}

// compiledPattern holds a pattern and its compiled glob.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// NewManager creates a manager answering with DefaultPolicy.
//
// Panics if the default policy contains invalid patterns (configuration bug).
func NewManager(logger *slog.Logger) *Manager {
	m, err := NewManagerWithPolicy(DefaultPolicy(), logger)
	if err != nil {
		panic("invalid pattern in DefaultPolicy: " + err.Error())
	}
	return m
}

// NewManagerWithPolicy creates a manager with custom defaults.
// If logger is nil, slog.Default is used.
//
// Returns error if any pattern fails to compile (invalid glob syntax).
func NewManagerWithPolicy(defaults Policy, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	compiled, err := compilePolicy(defaults)
	if err != nil {
		return nil, oops.With("policy", "default").Wrap(err)
	}
	return &Manager{
		defaults:  compiled,
		policies:  make(map[item.CharacterID]compiledPolicy),
		approvals: make(map[approvalKey]bool),
		logger:    logger,
	}, nil
}

func compilePolicy(p Policy) (compiledPolicy, error) {
	var c compiledPolicy
	var err error
	if c.allow, err = compilePatterns(p.Allow, ':'); err != nil {
		return c, err
	}
	if c.prompt, err = compilePatterns(p.Prompt, ':'); err != nil {
		return c, err
	}
	if c.forbid, err = compilePatterns(p.Forbid, ':'); err != nil {
		return c, err
	}
	if c.trusted, err = compilePatterns(p.Trusted, '/'); err != nil {
		return c, err
	}
	return c, nil
}

func compilePatterns(patterns []string, separator rune) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, separator)
		if err != nil {
			return nil, oops.In("access").
				Code("INVALID_PERMISSION_PATTERN").
				With("pattern", p).
				Wrap(err)
		}
		compiled = append(compiled, compiledPattern{pattern: p, glob: g})
	}
	return compiled, nil
}

func matchAny(patterns []compiledPattern, s string) bool {
	for _, p := range patterns {
		if p.glob.Match(s) {
			return true
		}
	}
	return false
}

// SetPolicy replaces the policy of a character.
// Returns error if character is empty or a pattern is invalid.
func (m *Manager) SetPolicy(character item.CharacterID, p Policy) error {
	if character == "" {
		return oops.In("access").Code("INVALID_CHARACTER").New("character cannot be empty")
	}
	compiled, err := compilePolicy(p)
	if err != nil {
		return oops.With("character", character).Wrap(err)
	}
	m.mu.Lock()
	m.policies[character] = compiled
	m.mu.Unlock()
	return nil
}

// ClearPolicy restores the default policy of a character and forgets every
// prompt it approved.
func (m *Manager) ClearPolicy(character item.CharacterID) error {
	if character == "" {
		return oops.In("access").Code("INVALID_CHARACTER").New("character cannot be empty")
	}
	m.mu.Lock()
	delete(m.policies, character)
	for k := range m.approvals {
		if k.target == character {
			delete(m.approvals, k)
		}
	}
	m.mu.Unlock()
	return nil
}

// Approve records that target accepted a prompted permission for player.
// Forbidden permissions cannot be approved.
func (m *Manager) Approve(target, player item.CharacterID, p action.Permission) error {
	if m.Grant(target, player, p) == action.GrantForbidden {
		return oops.In("access").
			Code("PERMISSION_FORBIDDEN").
			With("target", target).
			With("permission", p.String()).
			New("permission is forbidden")
	}
	m.mu.Lock()
	m.approvals[approvalKey{target: target, player: player, permission: key(p)}] = true
	m.mu.Unlock()
	m.logger.Debug("permission approved", "target", target, "player", player, "permission", p.String())
	return nil
}

// Grant evaluates the permission target gives to player.
func (m *Manager) Grant(target, player item.CharacterID, p action.Permission) action.Grant {
	if target == player {
		return action.GrantAllowed
	}
	m.mu.RLock()
	policy, ok := m.policies[target]
	approved := m.approvals[approvalKey{target: target, player: player, permission: key(p)}]
	m.mu.RUnlock()
	if !ok {
		policy = m.defaults
	}

	requested := key(p)
	switch {
	case matchAny(policy.forbid, requested):
		return action.GrantForbidden
	case approved, matchAny(policy.trusted, string(player)), matchAny(policy.allow, requested):
		return action.GrantAllowed
	case matchAny(policy.prompt, requested):
		return action.GrantPrompt
	default:
		return action.GrantForbidden
	}
}

// key formats a permission as matched by policies; the scope separator is
// always present so "kind:*" covers character wide permissions.
func key(p action.Permission) string {
	return string(p.Kind) + ":" + p.Scope
}
