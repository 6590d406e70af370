// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package core

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/oklog/ulid/v2"
)

// ErrStreamEmpty is returned when a stream has no events.
var ErrStreamEmpty = errors.New("stream is empty")

// EventStore persists the event log of spaces so that clients can catch up
// after reconnecting.
type EventStore interface {
	// Append persists an event to its stream.
	Append(ctx context.Context, event Event) error

	// Replay returns up to limit events of a stream with an id greater than
	// afterID, oldest first. A zero afterID starts from the beginning.
	Replay(ctx context.Context, stream string, afterID ulid.ULID, limit int) ([]Event, error)

	// LastEventID returns the most recent event id of a stream.
	LastEventID(ctx context.Context, stream string) (ulid.ULID, error)
}

// MemoryEventStore keeps each stream sorted by event id, the same order the
// postgres store replays in.
type MemoryEventStore struct {
	mu      sync.RWMutex
	streams map[string][]Event
}

// NewMemoryEventStore returns an empty store.
func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{streams: map[string][]Event{}}
}

func byID(e Event, id ulid.ULID) int { return e.ID.Compare(id) }

func (s *MemoryEventStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.streams[event.Stream]
	at, _ := slices.BinarySearchFunc(log, event.ID, byID)
	s.streams[event.Stream] = slices.Insert(log, at, event)
	return nil
}

func (s *MemoryEventStore) Replay(_ context.Context, stream string, afterID ulid.ULID, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.streams[stream]
	from, found := slices.BinarySearchFunc(log, afterID, byID)
	if found {
		from++
	}
	tail := log[from:]
	if limit >= 0 && len(tail) > limit {
		tail = tail[:limit]
	}
	if len(tail) == 0 {
		return nil, nil
	}
	return slices.Clone(tail), nil
}

func (s *MemoryEventStore) LastEventID(_ context.Context, stream string) (ulid.ULID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.streams[stream]
	if len(log) == 0 {
		return ulid.ULID{}, ErrStreamEmpty
	}
	return log[len(log)-1].ID, nil
}
