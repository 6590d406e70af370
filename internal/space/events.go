// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package space

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/holomush/wardrobe/internal/action"
	"github.com/holomush/wardrobe/internal/core"
	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/state"
)

// ChatPayload is the payload of chat and attempt events.
type ChatPayload struct {
	Message action.Message `json:"message"`
	Text    string         `json:"text"`
}

// DeltaPayload is the payload of delta events. The delta is the client
// view: encrypted contents and lock passwords are redacted.
type DeltaPayload struct {
	Delta state.GlobalStateDelta `json:"delta"`
}

// MemberPayload is the payload of join and leave events.
type MemberPayload struct {
	Character item.CharacterID `json:"character"`
	Name      string           `json:"name,omitempty"`
}

// Emitter appends events to the event log of a space and broadcasts them
// to its live subscribers. Either side may be absent.
type Emitter struct {
	store       core.EventStore
	broadcaster *core.Broadcaster
	now         func() time.Time
	logger      *slog.Logger
}

// NewEmitter creates an emitter. If logger is nil, slog.Default is used.
func NewEmitter(store core.EventStore, broadcaster *core.Broadcaster, now func() time.Time, logger *slog.Logger) *Emitter {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{store: store, broadcaster: broadcaster, now: now, logger: logger}
}

// Emit publishes one event to the stream of a space. The event is
// broadcast only after it was stored.
func (e *Emitter) Emit(ctx context.Context, spaceID string, typ core.EventType, actor core.Actor, payload any) (core.Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return core.Event{}, oops.Code("EVENT_MARSHAL_FAILED").With("event_type", typ).Wrap(err)
	}
	event := core.Event{
		ID:        core.NewULID(),
		Stream:    core.SpaceStream(spaceID),
		Type:      typ,
		Timestamp: e.now(),
		Actor:     actor,
		Payload:   data,
	}
	if e.store != nil {
		if err := e.store.Append(ctx, event); err != nil {
			return core.Event{}, oops.Code("EVENT_EMIT_FAILED").
				With("stream", event.Stream).
				With("event_type", typ).
				Wrap(err)
		}
	}
	if e.broadcaster != nil {
		e.broadcaster.Broadcast(event)
	}
	e.logger.DebugContext(ctx, "event emitted", "stream", event.Stream, "event_type", typ, "event_id", event.ID.String())
	return event, nil
}

// EmitMessages publishes the messages of an action. Attempt messages become
// attempt events; everything else is chat.
func (e *Emitter) EmitMessages(ctx context.Context, spaceID string, messages []action.Message, name func(item.CharacterID) string) ([]core.Event, error) {
	events := make([]core.Event, 0, len(messages))
	for _, m := range messages {
		typ := core.EventTypeChat
		if m.ID == action.MessageActionAttempt || m.ID == action.MessageActionAttemptStop {
			typ = core.EventTypeAttempt
		}
		ev, err := e.Emit(ctx, spaceID, typ, characterActor(m.Character), ChatPayload{Message: m, Text: m.Text(name)})
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func characterActor(id item.CharacterID) core.Actor {
	if id == "" {
		return core.SystemActor
	}
	return core.Actor{Kind: core.ActorCharacter, ID: string(id)}
}
