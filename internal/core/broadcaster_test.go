// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package core

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for event")
		return Event{}
	}
}

func TestBroadcaster_Subscribe(t *testing.T) {
	bc := NewBroadcaster(nil)
	ch := bc.Subscribe("space:lobby")
	require.NotNil(t, ch)

	event := Event{ID: NewULID(), Stream: "space:lobby", Type: EventTypeChat}
	bc.Broadcast(event)

	assert.Equal(t, event.ID, receive(t, ch).ID)
}

func TestBroadcaster_OtherStreamsAreIgnored(t *testing.T) {
	bc := NewBroadcaster(nil)
	ch := bc.Subscribe("space:lobby")

	bc.Broadcast(Event{ID: NewULID(), Stream: "space:attic", Type: EventTypeChat})

	select {
	case e := <-ch:
		t.Fatalf("unexpected event %v", e)
	default:
	}
}

func TestBroadcaster_Unsubscribe(t *testing.T) {
	bc := NewBroadcaster(nil)
	ch := bc.Subscribe("space:lobby")
	assert.Equal(t, 1, bc.Subscribers("space:lobby"))

	bc.Unsubscribe("space:lobby", ch)
	assert.Equal(t, 0, bc.Subscribers("space:lobby"))

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed")
}

func TestBroadcaster_MultipleSubscribers(t *testing.T) {
	bc := NewBroadcaster(nil)
	ch1 := bc.Subscribe("space:lobby")
	ch2 := bc.Subscribe("space:lobby")

	event := Event{ID: NewULID(), Stream: "space:lobby", Type: EventTypeDelta}
	bc.Broadcast(event)

	assert.Equal(t, event.ID, receive(t, ch1).ID)
	assert.Equal(t, event.ID, receive(t, ch2).ID)
}

func TestBroadcaster_DropsWhenBufferFull(t *testing.T) {
	var buf bytes.Buffer
	bc := NewBroadcaster(slog.New(slog.NewTextHandler(&buf, nil)))
	ch := bc.Subscribe("space:lobby")

	for range SubscriberBuffer + 1 {
		bc.Broadcast(Event{ID: NewULID(), Stream: "space:lobby", Type: EventTypeChat})
	}

	assert.Len(t, ch, SubscriberBuffer)
	assert.Contains(t, buf.String(), "event dropped")
}
