// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package core

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendEvents(t *testing.T, store *MemoryEventStore, stream string, n int) []ulid.ULID {
	t.Helper()
	ids := make([]ulid.ULID, 0, n)
	for range n {
		event := Event{
			ID:        NewULID(),
			Stream:    stream,
			Type:      EventTypeChat,
			Timestamp: time.Now(),
			Actor:     Actor{Kind: ActorCharacter, ID: "c/alice"},
			Payload:   []byte(`{}`),
		}
		require.NoError(t, store.Append(context.Background(), event))
		ids = append(ids, event.ID)
	}
	return ids
}

func TestMemoryEventStore_Replay(t *testing.T) {
	store := NewMemoryEventStore()
	ctx := context.Background()
	ids := appendEvents(t, store, SpaceStream("lobby"), 5)

	events, err := store.Replay(ctx, SpaceStream("lobby"), ulid.ULID{}, 3)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, ids[0], events[0].ID)

	events, err = store.Replay(ctx, SpaceStream("lobby"), ids[2], 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ids[3], events[0].ID)
	assert.Equal(t, ids[4], events[1].ID)
}

func TestMemoryEventStore_Replay_EmptyStream(t *testing.T) {
	store := NewMemoryEventStore()

	events, err := store.Replay(context.Background(), "space:none", ulid.ULID{}, 10)
	require.NoError(t, err)
	assert.Nil(t, events)
}

func TestMemoryEventStore_Replay_AfterLatest(t *testing.T) {
	store := NewMemoryEventStore()
	ids := appendEvents(t, store, SpaceStream("lobby"), 3)

	events, err := store.Replay(context.Background(), SpaceStream("lobby"), ids[2], 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestMemoryEventStore_Replay_StreamsAreSeparate(t *testing.T) {
	store := NewMemoryEventStore()
	appendEvents(t, store, SpaceStream("a"), 2)
	appendEvents(t, store, SpaceStream("b"), 1)

	events, err := store.Replay(context.Background(), SpaceStream("b"), ulid.ULID{}, 10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestMemoryEventStore_LastEventID(t *testing.T) {
	store := NewMemoryEventStore()
	ctx := context.Background()

	_, err := store.LastEventID(ctx, "space:empty")
	require.ErrorIs(t, err, ErrStreamEmpty)

	ids := appendEvents(t, store, SpaceStream("lobby"), 2)
	last, err := store.LastEventID(ctx, SpaceStream("lobby"))
	require.NoError(t, err)
	assert.Equal(t, ids[1], last)
}

func TestMemoryEventStore_ReplaysInIDOrder(t *testing.T) {
	store := NewMemoryEventStore()
	ctx := context.Background()
	stream := SpaceStream("lobby")
	first, second := NewULID(), NewULID()

	require.NoError(t, store.Append(ctx, Event{ID: second, Stream: stream, Type: EventTypeChat}))
	require.NoError(t, store.Append(ctx, Event{ID: first, Stream: stream, Type: EventTypeChat}))

	events, err := store.Replay(ctx, stream, ulid.ULID{}, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, first, events[0].ID)
	assert.Equal(t, second, events[1].ID)

	last, err := store.LastEventID(ctx, stream)
	require.NoError(t, err)
	assert.Equal(t, second, last)
}
