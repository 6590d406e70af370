// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package core contains the event types shared by the wardrobe services.
package core

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// EventType identifies the kind of event.
type EventType string

const (
	// EventTypeChat carries a rendered action message.
	EventTypeChat EventType = "chat"
	// EventTypeDelta carries the client delta of a state change.
	EventTypeDelta EventType = "delta"
	// EventTypeJoin is emitted when a character enters a space.
	EventTypeJoin EventType = "join"
	// EventTypeLeave is emitted when a character leaves a space.
	EventTypeLeave EventType = "leave"
	// EventTypeAttempt is emitted when a delayed action starts or stops.
	EventTypeAttempt EventType = "attempt"
	EventTypeSystem  EventType = "system"
)

// ActorKind identifies what type of entity caused an event.
type ActorKind uint8

const (
	ActorCharacter ActorKind = iota
	ActorSystem
)

func (a ActorKind) String() string {
	switch a {
	case ActorCharacter:
		return "character"
	case ActorSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Actor represents who or what caused an event.
type Actor struct {
	Kind ActorKind `json:"kind"`
	ID   string    `json:"id"` // character id or "system"
}

// SystemActor is the actor of events no character caused.
var SystemActor = Actor{Kind: ActorSystem, ID: "system"}

// Event represents something that happened in a space.
type Event struct {
	ID        ulid.ULID `json:"id"`
	Stream    string    `json:"stream"` // e.g. "space:lobby"
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Actor     Actor     `json:"actor"`
	Payload   []byte    `json:"payload"` // JSON
}

const spacePrefix = "space:"

// SpaceStream returns the event stream of a space.
func SpaceStream(spaceID string) string {
	return spacePrefix + spaceID
}

// SpaceOf returns the space id of a stream, or false when the stream does
// not belong to a space.
func SpaceOf(stream string) (string, bool) {
	id, ok := strings.CutPrefix(stream, spacePrefix)
	return id, ok && id != ""
}

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// NewULID returns an id for an event or item. Ids from one process are
// strictly increasing, so event streams replay in append order.
func NewULID() ulid.ULID {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
}

// ParseULID parses an event id, such as the replay cursor of a stream.
func ParseULID(s string) (ulid.ULID, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return ulid.ULID{}, oops.Code("INVALID_ULID").With("value", s).Wrap(err)
	}
	return id, nil
}
