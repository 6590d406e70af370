// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/wardrobe/internal/access"
	"github.com/holomush/wardrobe/internal/action"
	"github.com/holomush/wardrobe/internal/core"
	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/space"
	"github.com/holomush/wardrobe/internal/state"
	"github.com/holomush/wardrobe/internal/store"
)

var _ = Describe("SpaceRepository", func() {
	var repo *store.SpaceRepository

	BeforeEach(func() {
		repo = store.NewSpaceRepository(pool, store.DefaultRetryConfig())
	})

	It("round-trips a bundle", func() {
		ctx := context.Background()
		b := state.GlobalStateBundle{
			Room:       state.RoomBundle{ID: "lobby", Name: "Lobby"},
			Characters: map[item.CharacterID]state.AppearanceBundle{},
		}
		Expect(repo.Save(ctx, "lobby", b)).To(Succeed())

		got, err := repo.Get(ctx, "lobby")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Room.Name).To(Equal("Lobby"))

		b.Room.Name = "Dressing Room"
		Expect(repo.Save(ctx, "lobby", b)).To(Succeed())
		got, err = repo.Get(ctx, "lobby")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Room.Name).To(Equal("Dressing Room"))

		Expect(repo.List(ctx)).To(Equal([]string{"lobby"}))
	})

	It("reports missing spaces", func() {
		ctx := context.Background()
		_, err := repo.Get(ctx, "nowhere")
		Expect(err).To(MatchError(space.ErrNotFound))
		Expect(repo.Delete(ctx, "nowhere")).To(MatchError(space.ErrNotFound))
	})
})

var _ = Describe("EventStore", func() {
	It("replays a stream in order", func() {
		ctx := context.Background()
		events := store.NewEventStore(pool)
		stream := core.SpaceStream(core.NewULID().String())

		var ids []ulid.ULID
		for _, typ := range []core.EventType{core.EventTypeJoin, core.EventTypeChat, core.EventTypeDelta} {
			e := core.Event{
				ID:        core.NewULID(),
				Stream:    stream,
				Type:      typ,
				Timestamp: time.Now().UTC(),
				Actor:     core.Actor{Kind: core.ActorCharacter, ID: "alice"},
				Payload:   []byte(`{"text":"hi"}`),
			}
			Expect(events.Append(ctx, e)).To(Succeed())
			ids = append(ids, e.ID)
		}

		all, err := events.Replay(ctx, stream, ulid.ULID{}, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(3))
		Expect(all[0].Type).To(Equal(core.EventTypeJoin))
		Expect(all[0].Payload).To(MatchJSON(`{"text":"hi"}`))

		rest, err := events.Replay(ctx, stream, ids[0], 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(rest).To(HaveLen(2))
		Expect(rest[0].ID).To(Equal(ids[1]))

		last, err := events.LastEventID(ctx, stream)
		Expect(err).NotTo(HaveOccurred())
		Expect(last).To(Equal(ids[2]))

		_, err = events.LastEventID(ctx, "space:empty")
		Expect(err).To(MatchError(core.ErrStreamEmpty))
	})
})

var _ = Describe("PolicyRepository", func() {
	It("loads saved policies into a manager", func() {
		ctx := context.Background()
		repo := store.NewPolicyRepository(pool)
		Expect(repo.Save(ctx, "alice", access.Policy{Forbid: []string{"pose:*"}})).To(Succeed())

		m := access.NewManager(nil)
		n, err := repo.LoadInto(ctx, m)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1))
		Expect(m.Grant("alice", "bob", action.Permission{Kind: action.PermissionPose})).To(Equal(action.GrantForbidden))

		Expect(repo.Delete(ctx, "alice")).To(Succeed())
	})
})
