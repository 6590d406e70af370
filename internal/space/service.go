// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package space runs wardrobe actions against the shared state of spaces.
//
// A space is one room and the characters in it. The Service keeps the
// current GlobalState of every space it touched in memory, serializes the
// actions of a space, persists the result through a Repository and
// publishes chat messages and client deltas as events.
package space

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/wardrobe/internal/action"
	"github.com/holomush/wardrobe/internal/asset"
	"github.com/holomush/wardrobe/internal/core"
	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/state"
	"github.com/holomush/wardrobe/internal/validation"
	"github.com/holomush/wardrobe/pkg/errutil"
)

var tracer = otel.Tracer("wardrobe/space")

var (
	// ErrNotFound is returned by a Repository for a space it never stored.
	ErrNotFound = errors.New("space not found")

	// ErrNilManager is returned when the service has no asset manager.
	ErrNilManager = errors.New("asset manager is required")
)

// Error codes.
const (
	CodeRateLimited       = "RATE_LIMITED"
	CodeCharacterNotFound = "CHARACTER_NOT_FOUND"
	CodeInvalidRoom       = "INVALID_ROOM"
)

// ErrRateLimited creates an error for a rate limited action.
func ErrRateLimited(cooldownMs int64) error {
	return oops.Code(CodeRateLimited).
		With("cooldown_ms", cooldownMs).
		Errorf("too many actions, please slow down")
}

// Repository persists the bundles of spaces.
type Repository interface {
	// Get returns the stored bundle of a space, or ErrNotFound.
	Get(ctx context.Context, id string) (state.GlobalStateBundle, error)
	// Save stores the bundle of a space.
	Save(ctx context.Context, id string, b state.GlobalStateBundle) error
}

// Config holds the dependencies of a Service.
type Config struct {
	Manager asset.Manager
	Limits  validation.Limits
	// Room is the layout of spaces created on first use.
	Room state.RoomInfo
	// Repository is optional; without it spaces live only in memory.
	Repository Repository
	// Restrictions is optional; without it every interaction is allowed.
	Restrictions action.RestrictionsManager
	Events       core.EventStore
	Broadcaster  *core.Broadcaster
	// RateLimiter limits randomize actions when set.
	RateLimiter *RateLimiter
	Now         func() time.Time
	// Rand seeds the randomness of actions; nil uses the global source.
	Rand   *rand.Rand
	Logger *slog.Logger
}

// entry is one space. mu serializes its actions.
type entry struct {
	mu    sync.Mutex
	state *state.GlobalState
}

// Service runs actions against spaces.
type Service struct {
	manager      asset.Manager
	limits       validation.Limits
	room         state.RoomInfo
	repo         Repository
	restrictions action.RestrictionsManager
	limiter      *RateLimiter
	emitter      *Emitter
	events       core.EventStore
	now          func() time.Time
	logger       *slog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	mu     sync.Mutex
	spaces map[string]*entry
	names  map[item.CharacterID]string
}

// NewService creates a Service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Manager == nil {
		return nil, ErrNilManager
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	limits := cfg.Limits
	if limits == (validation.Limits{}) {
		limits = validation.DefaultLimits()
	}
	room := cfg.Room
	if room.Name == "" {
		room = state.DefaultRoomInfo()
	}
	return &Service{
		manager:      cfg.Manager,
		limits:       limits,
		room:         room,
		repo:         cfg.Repository,
		restrictions: cfg.Restrictions,
		limiter:      cfg.RateLimiter,
		emitter:      NewEmitter(cfg.Events, cfg.Broadcaster, now, logger),
		events:       cfg.Events,
		now:          now,
		logger:       logger,
		rng:          cfg.Rand,
		spaces:       make(map[string]*entry),
		names:        make(map[item.CharacterID]string),
	}, nil
}

// State returns the current state of a space, loading or creating it.
func (s *Service) State(ctx context.Context, spaceID string) (*state.GlobalState, error) {
	e, err := s.acquire(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()
	return e.state, nil
}

// Snapshot returns the client bundle of a space.
func (s *Service) Snapshot(ctx context.Context, spaceID string) (state.GlobalStateBundle, error) {
	g, err := s.State(ctx, spaceID)
	if err != nil {
		return state.GlobalStateBundle{}, err
	}
	return g.ExportToClientBundle(), nil
}

// History returns the events of a space after the given id.
func (s *Service) History(ctx context.Context, spaceID string, after ulid.ULID, limit int) ([]core.Event, error) {
	if s.events == nil {
		return nil, nil
	}
	events, err := s.events.Replay(ctx, core.SpaceStream(spaceID), after, limit)
	if err != nil {
		return nil, oops.With("space", spaceID).With("operation", "replay events").Wrap(err)
	}
	return events, nil
}

// Join brings a character with its appearance into a space. A character
// already present is replaced. The appearance is repaired the same way a
// stored space is.
func (s *Service) Join(ctx context.Context, spaceID string, character item.CharacterID, name string, appearance state.AppearanceBundle) error {
	ctx, span := tracer.Start(ctx, "space.join", trace.WithAttributes(
		attribute.String("space.id", spaceID),
		attribute.String("character.id", string(character)),
	))
	defer span.End()

	if character == "" {
		return oops.Code(CodeCharacterNotFound).New("character cannot be empty")
	}
	s.mu.Lock()
	if name != "" {
		s.names[character] = name
	}
	s.mu.Unlock()

	e, err := s.acquire(ctx, spaceID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	defer e.mu.Unlock()

	b := e.state.ExportToBundle()
	appearance.SpaceID = spaceID
	b.Characters[character] = appearance
	next := state.LoadGlobalState(s.loadContext(), b)

	if err := s.commit(ctx, spaceID, e, next, nil); err != nil {
		span.RecordError(err)
		return err
	}
	s.emit(ctx, spaceID, core.EventTypeJoin, characterActor(character), MemberPayload{Character: character, Name: name})
	return nil
}

// Leave removes a character from a space and frees the device slots it
// occupied.
func (s *Service) Leave(ctx context.Context, spaceID string, character item.CharacterID) error {
	e, err := s.acquire(ctx, spaceID)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()

	if e.state.Character(character) == nil {
		return oops.Code(CodeCharacterNotFound).
			With("space", spaceID).
			With("character", character).
			New("character is not in the space")
	}
	if err := s.commit(ctx, spaceID, e, e.state.WithoutCharacter(character), nil); err != nil {
		return err
	}
	s.emit(ctx, spaceID, core.EventTypeLeave, characterActor(character), MemberPayload{Character: character})
	return nil
}

// ConfigureRoom replaces the layout and settings of the room of a space.
// Devices that are no longer allowed make the change fail.
func (s *Service) ConfigureRoom(ctx context.Context, spaceID string, info state.RoomInfo) error {
	e, err := s.acquire(ctx, spaceID)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()

	if !info.Direction.IsValid() {
		return oops.Code(CodeInvalidRoom).With("direction", info.Direction).New("invalid room direction")
	}
	next := e.state.ProduceWithRoom(e.state.Room().ProduceWithInfo(info), true)
	if verr := next.Validate(); verr != nil {
		return oops.Code(CodeInvalidRoom).With("space", spaceID).With("problem", verr.Kind()).Wrap(verr)
	}
	return s.commit(ctx, spaceID, e, next, nil)
}

// Perform runs an action for player.
//
// The returned error reports infrastructure failures and rate limiting;
// a rejected action is an action.Invalid result.
func (s *Service) Perform(ctx context.Context, spaceID string, player item.CharacterID, a action.Action) (action.Result, error) {
	_, limited := a.(action.Randomize)
	return s.run(ctx, spaceID, player, string(a.Kind()), limited, func(actx action.Context, g *state.GlobalState) action.Result {
		return action.Apply(actx, g, a)
	})
}

// StartAttempt begins a delayed action for player; see action.StartAttempt.
func (s *Service) StartAttempt(ctx context.Context, spaceID string, player item.CharacterID, a action.Action) (action.Result, error) {
	_, limited := a.(action.Randomize)
	return s.run(ctx, spaceID, player, "attempt."+string(a.Kind()), limited, func(actx action.Context, g *state.GlobalState) action.Result {
		return action.StartAttempt(actx, g, a)
	})
}

// FinishAttempt completes the pending attempt of player.
func (s *Service) FinishAttempt(ctx context.Context, spaceID string, player item.CharacterID) (action.Result, error) {
	return s.run(ctx, spaceID, player, "attempt.finish", false, action.FinishAttempt)
}

// AbortAttempt cancels the pending attempt of player.
func (s *Service) AbortAttempt(ctx context.Context, spaceID string, player item.CharacterID) (action.Result, error) {
	return s.run(ctx, spaceID, player, "attempt.abort", false, action.AbortAttempt)
}

// Evict drops a space from memory. It is reloaded from the repository on
// next use, so without a repository its state is lost.
func (s *Service) Evict(spaceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.spaces, spaceID)
	LoadedSpaces.Set(float64(len(s.spaces)))
}

func (s *Service) run(
	ctx context.Context,
	spaceID string,
	player item.CharacterID,
	kind string,
	limited bool,
	fn func(action.Context, *state.GlobalState) action.Result,
) (res action.Result, err error) {
	ctx, span := tracer.Start(ctx, "space.action", trace.WithAttributes(
		attribute.String("space.id", spaceID),
		attribute.String("character.id", string(player)),
		attribute.String("action.kind", kind),
	))
	start := time.Now()
	status := StatusError
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		RecordAction(kind, status)
		RecordActionDuration(kind, time.Since(start))
		span.End()
	}()

	if limited && s.limiter != nil {
		if ok, cooldownMs := s.limiter.Allow(player); !ok {
			span.SetAttributes(attribute.Bool("action.rate_limited", true))
			span.SetAttributes(attribute.Int64("action.cooldown_ms", cooldownMs))
			status = StatusRateLimited
			return nil, ErrRateLimited(cooldownMs)
		}
	}

	e, err := s.acquire(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	res = fn(s.actionContext(player), e.state)
	switch r := res.(type) {
	case action.Valid:
		if err := s.commit(ctx, spaceID, e, r.State, r.Messages); err != nil {
			return nil, err
		}
		status = StatusValid
	case action.Invalid:
		for _, p := range r.Problems {
			RecordProblem(p.ProblemKind())
		}
		span.SetAttributes(attribute.Int("action.problems", len(r.Problems)))
		if r.Prompt != "" {
			span.SetAttributes(attribute.String("action.prompt", string(r.Prompt)))
		}
		status = StatusInvalid
		s.logger.DebugContext(ctx, "action rejected",
			"space", spaceID,
			"character", player,
			"action", kind,
			"problems", len(r.Problems),
		)
	}
	return res, nil
}

// acquire returns the locked entry of a space, loading it if needed. The
// caller must unlock it.
func (s *Service) acquire(ctx context.Context, spaceID string) (*entry, error) {
	if spaceID == "" {
		return nil, oops.Code(CodeInvalidRoom).New("space id cannot be empty")
	}
	s.mu.Lock()
	e, ok := s.spaces[spaceID]
	if !ok {
		e = &entry{}
		s.spaces[spaceID] = e
		LoadedSpaces.Set(float64(len(s.spaces)))
	}
	s.mu.Unlock()

	e.mu.Lock()
	if e.state == nil {
		g, err := s.load(ctx, spaceID)
		if err != nil {
			e.mu.Unlock()
			return nil, err
		}
		e.state = g
	}
	return e, nil
}

func (s *Service) load(ctx context.Context, spaceID string) (*state.GlobalState, error) {
	if s.repo == nil {
		return s.newSpace(spaceID), nil
	}
	b, err := s.repo.Get(ctx, spaceID)
	if errors.Is(err, ErrNotFound) {
		s.logger.InfoContext(ctx, "creating space", "space", spaceID)
		return s.newSpace(spaceID), nil
	}
	if err != nil {
		return nil, oops.Code("SPACE_LOAD_FAILED").With("space", spaceID).Wrap(err)
	}
	b.Room.ID = spaceID
	return state.LoadGlobalState(s.loadContext(), b), nil
}

func (s *Service) newSpace(spaceID string) *state.GlobalState {
	return state.NewGlobal(state.NewRoom(s.manager, s.limits, spaceID, s.room, nil))
}

// commit persists next and publishes what changed. Events are published
// after the state is stored; failing to publish them does not undo it.
func (s *Service) commit(ctx context.Context, spaceID string, e *entry, next *state.GlobalState, messages []action.Message) error {
	old := e.state
	if s.repo != nil {
		if err := s.repo.Save(ctx, spaceID, next.ExportToBundle()); err != nil {
			return oops.Code("SPACE_SAVE_FAILED").With("space", spaceID).Wrap(err)
		}
	}
	e.state = next

	if _, err := s.emitter.EmitMessages(ctx, spaceID, messages, s.name); err != nil {
		errutil.LogError(s.logger, "publishing action messages failed", err)
	}
	if d := next.Diff(old, true); !d.IsEmpty() {
		s.emit(ctx, spaceID, core.EventTypeDelta, core.SystemActor, DeltaPayload{Delta: d})
	}
	return nil
}

func (s *Service) emit(ctx context.Context, spaceID string, typ core.EventType, actor core.Actor, payload any) {
	if _, err := s.emitter.Emit(ctx, spaceID, typ, actor, payload); err != nil {
		errutil.LogError(s.logger, "publishing event failed", err)
	}
}

func (s *Service) actionContext(player item.CharacterID) action.Context {
	return action.Context{
		Player:       player,
		PlayerName:   s.name(player),
		Now:          s.now(),
		Restrictions: s.restrictions,
		Rand:         s.childRand(),
		Logger:       s.logger,
	}
}

func (s *Service) loadContext() state.LoadContext {
	return state.LoadContext{
		Manager: s.manager,
		Limits:  s.limits,
		Logger:  s.logger,
		Rand:    s.childRand(),
	}
}

// childRand derives a generator for one call so that the shared one is
// never used concurrently.
func (s *Service) childRand() *rand.Rand {
	if s.rng == nil {
		return nil
	}
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return rand.New(rand.NewPCG(s.rng.Uint64(), s.rng.Uint64()))
}

// name returns the display name of a character, or its id.
func (s *Service) name(id item.CharacterID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.names[id]; ok {
		return n
	}
	return string(id)
}
