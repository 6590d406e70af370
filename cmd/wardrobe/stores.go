// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/wardrobe/internal/access"
	"github.com/holomush/wardrobe/internal/config"
	"github.com/holomush/wardrobe/internal/core"
	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/space"
	"github.com/holomush/wardrobe/internal/store"
)

// spaceStore is the space persistence the CLI uses.
type spaceStore interface {
	space.Repository
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
}

// policyStore is the policy persistence the CLI uses.
type policyStore interface {
	Save(ctx context.Context, character item.CharacterID, p access.Policy) error
	Delete(ctx context.Context, character item.CharacterID) error
	LoadInto(ctx context.Context, m *access.Manager) (int, error)
}

// stores groups the repositories of one database connection.
type stores struct {
	spaces   spaceStore
	events   core.EventStore
	policies policyStore
	close    func()
}

type storesOpener func(ctx context.Context, cfg config.Config) (*stores, error)

func openPostgresStores(ctx context.Context, cfg config.Config) (*stores, error) {
	if cfg.Database.URL == "" {
		return nil, oops.Code("CONFIG_INVALID").With("key", "database.url").
			Errorf("a database is required (--database.url or $%s)", config.DatabaseURLEnv)
	}
	pool, err := store.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	return &stores{
		spaces:   store.NewSpaceRepository(pool, cfg.Database.Retry),
		events:   store.NewEventStore(pool),
		policies: store.NewPolicyRepository(pool),
		close:    pool.Close,
	}, nil
}

// replayAll pages through a stream from after on.
func replayAll(ctx context.Context, events core.EventStore, stream string, after ulid.ULID, limit int) ([]core.Event, error) {
	var all []core.Event
	const page = 100
	for limit <= 0 || len(all) < limit {
		n := page
		if limit > 0 {
			n = min(page, limit-len(all))
		}
		batch, err := events.Replay(ctx, stream, after, n)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < n {
			break
		}
		after = batch[len(batch)-1].ID
	}
	return all, nil
}
