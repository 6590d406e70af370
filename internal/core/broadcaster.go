// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package core

import (
	"log/slog"
	"sync"
)

// SubscriberBuffer is the number of events a subscriber may fall behind
// before events to it are dropped.
const SubscriberBuffer = 100

// Broadcaster distributes events to the subscribers of a stream.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[string][]chan Event
	logger *slog.Logger
}

// NewBroadcaster creates a new broadcaster. If logger is nil, slog.Default
// is used.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		subs:   make(map[string][]chan Event),
		logger: logger,
	}
}

// Subscribe creates a channel for receiving events on a stream.
func (b *Broadcaster) Subscribe(stream string) chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, SubscriberBuffer)
	b.subs[stream] = append(b.subs[stream], ch)
	return ch
}

// Unsubscribe removes a channel from a stream and closes it.
func (b *Broadcaster) Unsubscribe(stream string, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[stream]
	for i, sub := range subs {
		if sub == ch {
			b.subs[stream] = append(subs[:i], subs[i+1:]...)
			if len(b.subs[stream]) == 0 {
				delete(b.subs, stream)
			}
			close(ch)
			return
		}
	}
}

// Subscribers returns the number of subscribers of a stream.
func (b *Broadcaster) Subscribers(stream string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[stream])
}

// Broadcast sends an event to all subscribers of its stream. A subscriber
// whose buffer is full misses the event.
func (b *Broadcaster) Broadcast(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[event.Stream] {
		select {
		case ch <- event:
		default:
			b.logger.Warn("event dropped: subscriber buffer full",
				"stream", event.Stream,
				"event_id", event.ID.String(),
				"event_type", event.Type,
			)
		}
	}
}
