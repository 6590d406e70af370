// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/wardrobe/internal/core"
)

// EventStore implements core.EventStore using PostgreSQL.
type EventStore struct {
	pool poolIface
}

var _ core.EventStore = (*EventStore)(nil)

// NewEventStore creates a new PostgreSQL event store.
func NewEventStore(pool poolIface) *EventStore {
	return &EventStore{pool: pool}
}

// Append persists an event.
func (s *EventStore) Append(ctx context.Context, event core.Event) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO events (id, stream, type, actor_kind, actor_id, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID.String(),
		event.Stream,
		string(event.Type),
		int16(event.Actor.Kind),
		event.Actor.ID,
		event.Payload,
		event.Timestamp,
	)
	if err != nil {
		return oops.With("operation", "append event").
			With("id", event.ID.String()).
			With("stream", event.Stream).
			Wrap(err)
	}
	return nil
}

// Replay returns events of a stream after the given id. ULIDs sort by
// time, so ordering by id replays in emission order.
func (s *EventStore) Replay(ctx context.Context, stream string, afterID ulid.ULID, limit int) ([]core.Event, error) {
	after := ""
	if afterID.Compare(ulid.ULID{}) != 0 {
		after = afterID.String()
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, stream, type, actor_kind, actor_id, payload, created_at
		 FROM events WHERE stream = $1 AND id > $2 ORDER BY id LIMIT $3`,
		stream, after, limit)
	if err != nil {
		return nil, oops.With("operation", "replay events").With("stream", stream).Wrap(err)
	}
	defer rows.Close()

	var events []core.Event
	for rows.Next() {
		var (
			e         core.Event
			id        string
			typ       string
			actorKind int16
		)
		if err := rows.Scan(&id, &e.Stream, &typ, &actorKind, &e.Actor.ID, &e.Payload, &e.Timestamp); err != nil {
			return nil, oops.With("operation", "scan event row").Wrap(err)
		}
		if e.ID, err = ulid.Parse(id); err != nil {
			return nil, oops.Code("EVENT_CORRUPT").With("stream", stream).With("id", id).Wrap(err)
		}
		e.Type = core.EventType(typ)
		e.Actor.Kind = core.ActorKind(actorKind)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate events").With("stream", stream).Wrap(err)
	}
	return events, nil
}

// LastEventID returns the most recent event id of a stream.
func (s *EventStore) LastEventID(ctx context.Context, stream string) (ulid.ULID, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM events WHERE stream = $1 ORDER BY id DESC LIMIT 1`,
		stream).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ulid.ULID{}, core.ErrStreamEmpty
	}
	if err != nil {
		return ulid.ULID{}, oops.With("operation", "last event id").With("stream", stream).Wrap(err)
	}
	parsed, err := ulid.Parse(id)
	if err != nil {
		return ulid.ULID{}, oops.Code("EVENT_CORRUPT").With("stream", stream).With("id", id).Wrap(err)
	}
	return parsed, nil
}
