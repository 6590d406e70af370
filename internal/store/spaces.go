// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/holomush/wardrobe/internal/space"
	"github.com/holomush/wardrobe/internal/state"
)

// SpaceRepository implements space.Repository using PostgreSQL. Bundles
// are stored as JSONB; the server bundle is stored, secrets included.
type SpaceRepository struct {
	pool  poolIface
	retry RetryConfig
}

var _ space.Repository = (*SpaceRepository)(nil)

// NewSpaceRepository creates a new SpaceRepository.
func NewSpaceRepository(pool poolIface, retry RetryConfig) *SpaceRepository {
	return &SpaceRepository{pool: pool, retry: retry}
}

// Get returns the bundle of a space, or space.ErrNotFound.
func (r *SpaceRepository) Get(ctx context.Context, id string) (state.GlobalStateBundle, error) {
	var data []byte
	err := r.pool.QueryRow(ctx, `SELECT bundle FROM spaces WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return state.GlobalStateBundle{}, oops.Code("SPACE_NOT_FOUND").With("id", id).Wrap(space.ErrNotFound)
	}
	if err != nil {
		return state.GlobalStateBundle{}, oops.With("operation", "get space").With("id", id).Wrap(err)
	}
	var b state.GlobalStateBundle
	if err := json.Unmarshal(data, &b); err != nil {
		return state.GlobalStateBundle{}, oops.Code("SPACE_CORRUPT").With("id", id).Wrap(err)
	}
	return b, nil
}

// Save creates or replaces the bundle of a space. Transient failures are
// retried.
func (r *SpaceRepository) Save(ctx context.Context, id string, b state.GlobalStateBundle) error {
	data, err := json.Marshal(b)
	if err != nil {
		return oops.Code("SPACE_MARSHAL_FAILED").With("id", id).Wrap(err)
	}
	err = withRetry(ctx, r.retry, func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO spaces (id, bundle) VALUES ($1, $2)
			 ON CONFLICT (id) DO UPDATE
			 SET bundle = EXCLUDED.bundle, version = spaces.version + 1, updated_at = now()`,
			id, data)
		return err
	})
	if err != nil {
		return oops.With("operation", "save space").With("id", id).Wrap(err)
	}
	return nil
}

// Delete removes a space. Deleting an unknown space returns
// space.ErrNotFound.
func (r *SpaceRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM spaces WHERE id = $1`, id)
	if err != nil {
		return oops.With("operation", "delete space").With("id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("SPACE_NOT_FOUND").With("id", id).Wrap(space.ErrNotFound)
	}
	return nil
}

// List returns the ids of all stored spaces in order.
func (r *SpaceRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM spaces ORDER BY id`)
	if err != nil {
		return nil, oops.With("operation", "list spaces").Wrap(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, oops.With("operation", "scan space row").Wrap(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate spaces").Wrap(err)
	}
	return ids, nil
}
