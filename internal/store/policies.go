// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"
	"encoding/json"

	"github.com/samber/oops"

	"github.com/holomush/wardrobe/internal/access"
	"github.com/holomush/wardrobe/internal/item"
)

// PolicyRepository stores the permission policies characters configured.
type PolicyRepository struct {
	pool poolIface
}

// NewPolicyRepository creates a new PolicyRepository.
func NewPolicyRepository(pool poolIface) *PolicyRepository {
	return &PolicyRepository{pool: pool}
}

// Save creates or replaces the policy of a character.
func (r *PolicyRepository) Save(ctx context.Context, character item.CharacterID, p access.Policy) error {
	data, err := json.Marshal(p)
	if err != nil {
		return oops.With("operation", "marshal policy").With("character", character).Wrap(err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO character_policies (character_id, policy) VALUES ($1, $2)
		 ON CONFLICT (character_id) DO UPDATE SET policy = EXCLUDED.policy, updated_at = now()`,
		string(character), data)
	if err != nil {
		return oops.With("operation", "save policy").With("character", character).Wrap(err)
	}
	return nil
}

// Delete removes the policy of a character. Deleting a missing policy is
// not an error.
func (r *PolicyRepository) Delete(ctx context.Context, character item.CharacterID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM character_policies WHERE character_id = $1`, string(character)); err != nil {
		return oops.With("operation", "delete policy").With("character", character).Wrap(err)
	}
	return nil
}

// LoadInto applies every stored policy to m and returns how many were
// loaded.
func (r *PolicyRepository) LoadInto(ctx context.Context, m *access.Manager) (int, error) {
	rows, err := r.pool.Query(ctx, `SELECT character_id, policy FROM character_policies`)
	if err != nil {
		return 0, oops.With("operation", "list policies").Wrap(err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return n, oops.With("operation", "scan policy row").Wrap(err)
		}
		var p access.Policy
		if err := json.Unmarshal(data, &p); err != nil {
			return n, oops.Code("POLICY_CORRUPT").With("character", id).Wrap(err)
		}
		if err := m.SetPolicy(item.CharacterID(id), p); err != nil {
			return n, err
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return n, oops.With("operation", "iterate policies").Wrap(err)
	}
	return n, nil
}
