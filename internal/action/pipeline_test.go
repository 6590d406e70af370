// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package action_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/wardrobe/internal/action"
	"github.com/holomush/wardrobe/internal/asset"
	"github.com/holomush/wardrobe/internal/asset/assettest"
	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/manipulator"
	"github.com/holomush/wardrobe/internal/pose"
	"github.com/holomush/wardrobe/internal/state"
)

var _ = Describe("Apply", func() {
	var w *world

	BeforeEach(func() {
		w = newWorld()
	})

	It("reports a player who is not in the space", func() {
		inv := expectInvalid(w.apply("c/ghost", action.SetView{Character: alice, View: pose.ViewBack}))
		Expect(inv.Problems).To(ConsistOf(action.TargetNotFound{Character: "c/ghost"}))
	})

	Describe("create", func() {
		It("adds an item and announces it", func() {
			v := w.commit(alice, action.Create{Target: manipulator.CharacterTarget(alice), Asset: assettest.Pants})

			Expect(v.State.Character(alice).Items()).To(HaveLen(3))
			Expect(v.Messages).To(HaveLen(1))
			Expect(v.Messages[0].ID).To(Equal(action.MessageItemAdd))
			Expect(v.Messages[0].Text(name)).To(Equal("Alice added Pants to Alice."))
		})

		It("uses the chat text of the asset", func() {
			v := w.commit(bob, action.Create{Target: manipulator.CharacterTarget(alice), Asset: assettest.Collar})

			Expect(v.Messages[0].Character).To(Equal(bob))
			Expect(v.Messages[0].Text(name)).To(Equal("Bob fastens Collar around Alice's neck."))
		})

		It("replaces a bodypart of the same kind", func() {
			w.commit(alice, action.Create{Target: manipulator.CharacterTarget(alice), Asset: assettest.BodyTall})

			items := w.g.Character(alice).Items()
			Expect(countBodypart(items, "body")).To(Equal(1))
			Expect(items[0].Asset().ID).To(Equal(assettest.BodyTall))
		})

		It("keeps bodyparts in canonical order", func() {
			w.wear(alice, w.spawn(assettest.Shirt))
			w.commit(alice, action.Create{Target: manipulator.CharacterTarget(alice), Asset: assettest.EyesRound})

			items := w.g.Character(alice).Items()
			Expect(items[2].Asset().ID).To(Equal(assettest.EyesRound))
			Expect(items[3].Asset().ID).To(Equal(assettest.Shirt))
		})

		It("rejects unknown assets and wearable parts", func() {
			inv := expectInvalid(w.apply(alice, action.Create{Target: manipulator.RoomTarget, Asset: "a/nope"}))
			Expect(inv.Problems).To(ConsistOf(action.InvalidAction{Reason: "unknown asset"}))

			inv = expectInvalid(w.apply(alice, action.Create{Target: manipulator.RoomTarget, Asset: assettest.ChairSeat}))
			Expect(inv.Problems).To(HaveLen(1))
			Expect(inv.Problems[0]).To(BeAssignableToTypeOf(action.InvalidAction{}))
		})

		It("spawns a template with nested contents under fresh ids", func() {
			packed := w.spawn(assettest.Backpack).SetModuleItems("contents", []*item.Item{w.spawn(assettest.Shirt)})
			template := packed.ExportToTemplate()

			v := w.commit(alice, action.Create{Target: manipulator.CharacterTarget(alice), Template: &template})

			items := v.State.Character(alice).Items()
			Expect(items).To(HaveLen(3))
			spawned := items[2]
			Expect(spawned.Asset().ID).To(Equal(assettest.Backpack))
			Expect(spawned.ID()).NotTo(Equal(packed.ID()))
			contents := spawned.Module("contents").Items()
			Expect(contents).To(HaveLen(1))
			Expect(contents[0].Asset().ID).To(Equal(assettest.Shirt))
			Expect(contents[0].ID()).NotTo(Equal(packed.Module("contents").Items()[0].ID()))
			Expect(v.Messages[0].ID).To(Equal(action.MessageItemAdd))
		})

		It("rejects templates that do not spawn", func() {
			unknown := item.Template{Asset: "a/nope"}
			inv := expectInvalid(w.apply(alice, action.Create{Target: manipulator.RoomTarget, Template: &unknown}))
			Expect(inv.Problems).To(ConsistOf(action.InvalidAction{Reason: "unknown asset"}))

			broken := item.Template{Asset: assettest.Backpack, Modules: map[string]item.ModuleTemplate{
				"contents": {Type: asset.ModuleStorage, Items: []item.Template{{Asset: "a/nope"}}},
			}}
			inv = expectInvalid(w.apply(alice, action.Create{Target: manipulator.RoomTarget, Template: &broken}))
			Expect(inv.Problems).To(ConsistOf(action.InvalidAction{Reason: "invalid template"}))

			shirt := item.Template{Asset: assettest.Shirt}
			inv = expectInvalid(w.apply(alice, action.Create{Target: manipulator.RoomTarget, Asset: assettest.Pants, Template: &shirt}))
			Expect(inv.Problems).To(ConsistOf(action.InvalidAction{Reason: "template spawns another asset"}))
		})

		It("rejects a missing target", func() {
			inv := expectInvalid(w.apply(alice, action.Create{Target: manipulator.CharacterTarget("c/nobody"), Asset: assettest.Shirt}))
			Expect(inv.Problems).To(ConsistOf(action.TargetNotFound{Character: "c/nobody"}))
		})

		It("fails when the resulting state is invalid", func() {
			ch := w.g.Character(alice)
			w.g = w.g.ProduceWithCharacter(ch.ProduceWithItems(ch.Items()[:1]))

			inv := expectInvalid(w.apply(alice, action.Create{Target: manipulator.CharacterTarget(alice), Asset: assettest.Shirt}))
			Expect(inv.Problems).To(HaveLen(1))
			Expect(inv.Problems[0]).To(BeAssignableToTypeOf(action.ValidationFailed{}))
		})
	})

	Describe("delete", func() {
		It("removes a worn item", func() {
			shirt := w.spawn(assettest.Shirt)
			w.wear(alice, shirt)

			v := w.commit(alice, action.Delete{Target: manipulator.CharacterTarget(alice), Item: manipulator.ItemPath{Item: shirt.ID()}})
			Expect(v.State.Character(alice).Item(shirt.ID())).To(BeNil())
			Expect(v.Messages[0].Text(name)).To(Equal("Alice removed Shirt from Alice."))
		})

		It("reports a missing item", func() {
			missing := item.NewID()
			inv := expectInvalid(w.apply(alice, action.Delete{Target: manipulator.RoomTarget, Item: manipulator.ItemPath{Item: missing}}))
			Expect(inv.Problems).To(ConsistOf(action.ItemNotFound{Item: missing}))
		})
	})

	Describe("transfer", func() {
		It("moves an item from the room to a character", func() {
			v := w.commit(alice, action.Transfer{
				Source:      manipulator.RoomTarget,
				Item:        manipulator.ItemPath{Item: w.shirt.ID()},
				Destination: manipulator.CharacterTarget(alice),
			})

			Expect(v.State.Room().Item(w.shirt.ID())).To(BeNil())
			Expect(v.State.Character(alice).Item(w.shirt.ID())).NotTo(BeNil())
			Expect(v.Messages[0].ID).To(Equal(action.MessageItemTransfer))
		})

		It("moves an item into a worn container", func() {
			backpack := w.spawn(assettest.Backpack)
			w.wear(alice, backpack)
			into := manipulator.ContainerPath{{Item: backpack.ID(), Module: "contents"}}

			w.commit(alice, action.Transfer{
				Source:      manipulator.RoomTarget,
				Item:        manipulator.ItemPath{Item: w.shirt.ID()},
				Destination: manipulator.CharacterTarget(alice),
				Container:   into,
			})

			contents := w.g.Character(alice).Item(backpack.ID()).Module("contents").Items()
			Expect(contents).To(HaveLen(1))
			Expect(contents[0].ID()).To(Equal(w.shirt.ID()))
		})

		It("refuses to move bodyparts between characters", func() {
			body := w.g.Character(alice).Items()[0]

			inv := expectInvalid(w.apply(alice, action.Transfer{
				Source:      manipulator.CharacterTarget(alice),
				Item:        manipulator.ItemPath{Item: body.ID()},
				Destination: manipulator.CharacterTarget(bob),
			}))
			Expect(inv.Problems).To(ContainElement(action.Restricted{Restriction: action.NotTransferable{Item: body.ID()}}))
		})

		It("rejects a transfer into the same container", func() {
			inv := expectInvalid(w.apply(alice, action.Transfer{
				Source:      manipulator.RoomTarget,
				Item:        manipulator.ItemPath{Item: w.shirt.ID()},
				Destination: manipulator.RoomTarget,
			}))
			Expect(inv.Problems).To(HaveLen(1))
			Expect(inv.Problems[0]).To(BeAssignableToTypeOf(action.InvalidAction{}))
		})
	})

	Describe("move", func() {
		var shirt, pants *item.Item

		BeforeEach(func() {
			shirt, pants = w.spawn(assettest.Shirt), w.spawn(assettest.Pants)
			w.wear(alice, shirt, pants)
		})

		It("reorders worn items", func() {
			w.commit(alice, action.Move{Target: manipulator.CharacterTarget(alice), Item: manipulator.ItemPath{Item: pants.ID()}, Shift: -1})

			items := w.g.Character(alice).Items()
			Expect(items[2].ID()).To(Equal(pants.ID()))
			Expect(items[3].ID()).To(Equal(shirt.ID()))
		})

		It("lets bodyparts move only where the result stays valid", func() {
			body := w.g.Character(alice).Items()[0]

			inv := expectInvalid(w.apply(alice, action.Move{Target: manipulator.CharacterTarget(alice), Item: manipulator.ItemPath{Item: body.ID()}, Shift: 2}))
			Expect(inv.Problems).To(HaveLen(1))
			Expect(inv.Problems[0]).To(BeAssignableToTypeOf(action.ValidationFailed{}))
		})

		It("rejects moving past the end", func() {
			inv := expectInvalid(w.apply(alice, action.Move{Target: manipulator.CharacterTarget(alice), Item: manipulator.ItemPath{Item: pants.ID()}, Shift: 1}))
			Expect(inv.Problems).To(ConsistOf(action.InvalidAction{Reason: "item cannot move there"}))
		})
	})

	Describe("color and customize", func() {
		It("recolors an item in the room", func() {
			w.commit(alice, action.Color{
				Target: manipulator.RoomTarget,
				Item:   manipulator.ItemPath{Item: w.shirt.ID()},
				Color:  item.Color{"cloth": "#ff0000"},
			})
			Expect(w.g.Room().Item(w.shirt.ID()).Color()).To(HaveKeyWithValue("cloth", "#FF0000"))
		})

		It("renames an item", func() {
			w.commit(alice, action.Customize{
				Target: manipulator.RoomTarget,
				Item:   manipulator.ItemPath{Item: w.shirt.ID()},
				Name:   "Lucky shirt",
			})
			Expect(w.g.Room().Item(w.shirt.ID()).Name()).To(Equal("Lucky shirt"))
		})

		It("rejects invalid colors", func() {
			inv := expectInvalid(w.apply(alice, action.Color{
				Target: manipulator.RoomTarget,
				Item:   manipulator.ItemPath{Item: w.shirt.ID()},
				Color:  item.Color{"cloth": "red"},
			}))
			Expect(inv.Problems).To(ConsistOf(action.InvalidAction{Reason: "invalid color"}))
		})
	})

	Describe("module actions", func() {
		var collar *item.Item
		lockModule := func(a item.LockAction) action.ModuleAction {
			return action.ModuleAction{
				Target: manipulator.CharacterTarget(alice),
				Item:   manipulator.ItemPath{Item: collar.ID()},
				Module: "lock",
				Action: item.LockSlotAction{Action: a},
			}
		}

		BeforeEach(func() {
			collar = w.spawn(assettest.Collar).SetModuleItems("lock", []*item.Item{w.spawn(assettest.CombinationLck)})
			Expect(collar).NotTo(BeNil())
			w.wear(alice, collar)
		})

		It("locks with the chat text of the lock", func() {
			v := w.commit(bob, lockModule(item.Lock{Password: "1357"}))

			Expect(v.Messages).To(HaveLen(1))
			Expect(v.Messages[0].ID).To(Equal(action.MessageItemLock))
			Expect(v.Messages[0].Text(name)).To(Equal("Bob clicks the Combination Lock shut."))
			slot := w.g.Character(alice).Item(collar.ID()).Module("lock").(*item.LockSlotModule)
			Expect(slot.IsLocked()).To(BeTrue())
		})

		It("keeps the lock closed on a wrong password", func() {
			w.commit(bob, lockModule(item.Lock{Password: "1357"}))
			before := w.g

			inv := expectInvalid(w.apply(bob, lockModule(item.Unlock{Password: "0000"})))
			Expect(inv.Problems).To(ConsistOf(action.ModuleActionFailed{Outcome: item.OutcomeFailed, Reason: item.ReasonWrongPassword}))
			Expect(w.g).To(BeIdenticalTo(before))

			w.commit(bob, lockModule(item.Unlock{Password: "1357"}))
			slot := w.g.Character(alice).Item(collar.ID()).Module("lock").(*item.LockSlotModule)
			Expect(slot.IsLocked()).To(BeFalse())
		})

		It("switches a typed variant", func() {
			gag := w.spawn(assettest.Gag)
			w.wear(alice, gag)

			v := w.commit(alice, action.ModuleAction{
				Target: manipulator.CharacterTarget(alice),
				Item:   manipulator.ItemPath{Item: gag.ID()},
				Module: "style",
				Action: item.SelectVariant{Variant: "ring"},
			})
			Expect(v.Messages[0].ID).To(Equal(action.MessageModuleChange))
			Expect(v.Messages[0].Dictionary).To(HaveKeyWithValue(action.KeyVariantName, "Ring"))
			props, ok := w.g.Character(alice).Properties()
			Expect(ok).To(BeTrue())
			Expect(props.HasAttribute("Mouth_Open")).To(BeTrue())
		})

		It("rejects an unknown module", func() {
			inv := expectInvalid(w.apply(alice, action.ModuleAction{
				Target: manipulator.CharacterTarget(alice),
				Item:   manipulator.ItemPath{Item: collar.ID()},
				Module: "bell",
				Action: item.SetText{Text: "x"},
			}))
			Expect(inv.Problems).To(ConsistOf(action.InvalidAction{Reason: "unknown module"}))
		})
	})

	Describe("pose and view", func() {
		It("applies a pose preset", func() {
			w.commit(alice, action.Pose{Character: alice, Preset: "kneel"})
			Expect(w.g.Character(alice).RequestedPose().Legs).To(Equal(pose.LegsKneeling))
		})

		It("rejects an unknown preset", func() {
			inv := expectInvalid(w.apply(alice, action.Pose{Character: alice, Preset: "handstand"}))
			Expect(inv.Problems).To(ConsistOf(action.InvalidAction{Reason: "unknown pose preset"}))
		})

		It("turns a character around", func() {
			w.commit(bob, action.SetView{Character: alice, View: pose.ViewBack})
			Expect(w.g.Character(alice).RequestedPose().View).To(Equal(pose.ViewBack))

			inv := expectInvalid(w.apply(alice, action.SetView{Character: alice, View: "sideways"}))
			Expect(inv.Problems).To(ConsistOf(action.InvalidAction{Reason: "invalid view"}))
		})
	})

	Describe("restriction overrides", func() {
		It("cannot be left before the delay has passed", func() {
			v := w.commit(alice, action.RestrictionOverride{Type: state.OverrideSafemode})
			Expect(v.Messages[0].ID).To(Equal(action.MessageSafemodeEnter))
			override := w.g.Character(alice).RestrictionOverride()
			Expect(override.AllowLeaveAt).To(Equal(w.now.Add(10 * time.Minute).UnixMilli()))

			inv := expectInvalid(w.apply(alice, action.RestrictionOverride{}))
			Expect(inv.Problems).To(ConsistOf(action.Restricted{Restriction: action.OverrideLocked{AllowLeaveAt: override.AllowLeaveAt}}))

			w.now = w.now.Add(11 * time.Minute)
			v = w.commit(alice, action.RestrictionOverride{})
			Expect(v.Messages[0].ID).To(Equal(action.MessageSafemodeLeave))
			Expect(w.g.Character(alice).RestrictionOverride()).To(BeNil())
		})

		It("cannot be left when none is active", func() {
			inv := expectInvalid(w.apply(alice, action.RestrictionOverride{}))
			Expect(inv.Problems).To(ConsistOf(action.InvalidAction{Reason: "no active restriction override"}))
		})
	})

	Describe("room devices", func() {
		deploy := func(d *item.Deployment) action.RoomDeviceDeploy {
			return action.RoomDeviceDeploy{Item: w.chair.ID(), Deployment: d}
		}

		It("deploys, seats, frees and packs up", func() {
			v := w.commit(alice, deploy(&item.Deployment{X: 100, Y: 100}))
			Expect(v.Messages[0].ID).To(Equal(action.MessageDeviceDeploy))

			v = w.commit(bob, action.RoomDeviceEnter{Item: w.chair.ID(), Slot: "seat", Character: alice})
			Expect(v.Messages[0].Text(name)).To(Equal("Bob put Alice into Chair."))
			chair := w.g.Room().Item(w.chair.ID())
			Expect(chair.Occupants()).To(HaveKeyWithValue("seat", alice))
			worn := w.g.Character(alice).Items()
			Expect(worn[len(worn)-1].Asset().ID).To(Equal(assettest.ChairSeat))
			Expect(w.g.Character(alice).ActualPose().Legs).To(BeElementOf(pose.LegsSitting, pose.LegsKneeling))

			inv := expectInvalid(w.apply(bob, action.RoomDeviceEnter{Item: w.chair.ID(), Slot: "seat", Character: bob}))
			Expect(inv.Problems).To(ConsistOf(action.InvalidAction{Reason: "device slot is occupied"}))

			inv = expectInvalid(w.apply(bob, deploy(nil)))
			Expect(inv.Problems).To(ConsistOf(action.InvalidAction{Reason: "room device is occupied"}))

			v = w.commit(bob, action.RoomDeviceLeave{Item: w.chair.ID(), Slot: "seat"})
			Expect(v.Messages[0].Target).To(Equal(alice))
			Expect(w.g.Character(alice).Items()).To(HaveLen(2))
			Expect(w.g.Room().Item(w.chair.ID()).Occupants()).To(BeEmpty())

			v = w.commit(alice, deploy(nil))
			Expect(v.Messages[0].ID).To(Equal(action.MessageDevicePackUp))
			Expect(w.g.Room().Item(w.chair.ID()).IsDeployed()).To(BeFalse())
		})

		It("cannot seat anyone in a packed up device", func() {
			inv := expectInvalid(w.apply(alice, action.RoomDeviceEnter{Item: w.chair.ID(), Slot: "seat", Character: alice}))
			Expect(inv.Problems).To(ConsistOf(action.InvalidAction{Reason: "room device is not deployed"}))
		})

		It("follows the room settings", func() {
			info := w.g.Room().Info()
			info.Settings.AllowRoomDevices = false
			w.g = w.g.ProduceWithRoom(w.g.Room().ProduceWithInfo(info), false)

			inv := expectInvalid(w.apply(alice, deploy(&item.Deployment{X: 1, Y: 1})))
			Expect(inv.Problems).To(ConsistOf(action.Restricted{Restriction: action.RoomSetting{Setting: "allowRoomDevices"}}))
		})

		It("rejects items that are not devices", func() {
			inv := expectInvalid(w.apply(alice, action.RoomDeviceDeploy{Item: w.shirt.ID(), Deployment: &item.Deployment{X: 1, Y: 1}}))
			Expect(inv.Problems).To(ConsistOf(action.InvalidAction{Reason: "item is not a room device"}))
		})
	})

	Describe("randomize", func() {
		It("regenerates the body and dresses the character", func() {
			w.wear(alice, w.spawn(assettest.Collar))

			v := w.commit(alice, action.Randomize{Mode: action.RandomizeFull})
			Expect(v.Messages[0].ID).To(Equal(action.MessageRandomize))

			ch := w.g.Character(alice)
			Expect(countBodypart(ch.Items(), "body")).To(Equal(1))
			Expect(countBodypart(ch.Items(), "hair")).To(Equal(1))
			props, ok := ch.Properties()
			Expect(ok).To(BeTrue())
			for _, attr := range []string{"Top", "Bottom", "Footwear"} {
				Expect(props.HasAttribute(attr)).To(BeTrue(), attr)
			}
			Expect(props.HasAttribute("Collar")).To(BeFalse())
		})

		It("keeps clothes in body mode", func() {
			shirt := w.spawn(assettest.Shirt)
			w.wear(alice, shirt)

			w.commit(alice, action.Randomize{Mode: action.RandomizeBody})
			Expect(w.g.Character(alice).Item(shirt.ID())).NotTo(BeNil())
			Expect(w.g.Character(alice).Items()).To(HaveLen(3))
		})

		It("is deterministic for a seeded source", func() {
			first := expectValid(w.apply(alice, action.Randomize{Mode: action.RandomizeFull}))
			second := expectValid(w.apply(alice, action.Randomize{Mode: action.RandomizeFull}))

			assets := func(v action.Valid) []string {
				var result []string
				for _, it := range v.State.Character(alice).Items() {
					result = append(result, string(it.Asset().ID))
				}
				return result
			}
			Expect(assets(first)).To(Equal(assets(second)))
		})

		It("follows the room settings", func() {
			info := w.g.Room().Info()
			info.Settings.AllowRandomize = false
			w.g = w.g.ProduceWithRoom(w.g.Room().ProduceWithInfo(info), false)

			inv := expectInvalid(w.apply(alice, action.Randomize{Mode: action.RandomizeBody}))
			Expect(inv.Problems).To(ConsistOf(action.Restricted{Restriction: action.RoomSetting{Setting: "allowRandomize"}}))
		})
	})

	Describe("restrictions", func() {
		It("collects every problem and hints at a single prompt", func() {
			perm := action.Permission{Target: bob, Kind: action.PermissionInteract, Scope: string(assettest.Shirt)}
			stub := &stubRestrictions{
				restrictions: []action.Restriction{action.PermissionPrompt{Permission: perm}},
				permissions:  []action.Permission{perm},
			}
			ctx := w.ctx(alice)
			ctx.Restrictions = stub

			inv := expectInvalid(action.Apply(ctx, w.g, action.Transfer{
				Source:      manipulator.RoomTarget,
				Item:        manipulator.ItemPath{Item: w.shirt.ID()},
				Destination: manipulator.CharacterTarget(bob),
			}))
			Expect(stub.calls).To(HaveLen(2))
			Expect(inv.Problems).To(ConsistOf(action.Restricted{Restriction: action.PermissionPrompt{Permission: perm}}))
			Expect(inv.Permissions).To(ConsistOf(perm))
			Expect(inv.Prompt).To(Equal(bob))
		})

		It("gives no prompt hint when something else is wrong", func() {
			perm := action.Permission{Target: bob, Kind: action.PermissionInteract}
			stub := &stubRestrictions{restrictions: []action.Restriction{
				action.PermissionPrompt{Permission: perm},
				action.BlockedHands{},
			}}
			ctx := w.ctx(alice)
			ctx.Restrictions = stub

			inv := expectInvalid(action.Apply(ctx, w.g, action.SetView{Character: bob, View: pose.ViewBack}))
			Expect(inv.Problems).To(HaveLen(2))
			Expect(inv.Prompt).To(BeEmpty())
		})
	})
})

var _ = Describe("attempts", func() {
	var w *world

	BeforeEach(func() {
		w = newWorld()
		armbinder, res := w.spawn(assettest.Armbinder).ModuleAction(
			item.ActionContext{Player: bob, Now: w.now}, "tightness", item.SelectVariant{Variant: "tight"})
		Expect(res.Outcome).To(Equal(item.OutcomeOK))
		w.wear(alice, armbinder)
	})

	dressBob := action.Create{Target: manipulator.CharacterTarget(bob), Asset: assettest.Shirt}

	It("delays actions of a slowed character", func() {
		v := expectValid(action.StartAttempt(w.ctx(alice), w.g, dressBob))
		w.g = v.State
		Expect(v.Messages[0].ID).To(Equal(action.MessageActionAttempt))
		attempt := w.g.Character(alice).AttemptingAction()
		Expect(attempt).NotTo(BeNil())
		Expect(attempt.FinishAfter).To(Equal(w.now.UnixMilli() + 2000))
		Expect(w.g.Character(bob).Items()).To(HaveLen(2))

		pending, ok := action.PendingAction(w.g.Character(alice))
		Expect(ok).To(BeTrue())
		Expect(pending).To(Equal(dressBob))

		inv := expectInvalid(action.StartAttempt(w.ctx(alice), w.g, dressBob))
		Expect(inv.Problems).To(ConsistOf(action.AttemptProblem{Reason: action.AttemptInProgress}))

		w.now = w.now.Add(time.Second)
		inv = expectInvalid(action.FinishAttempt(w.ctx(alice), w.g))
		Expect(inv.Problems).To(ConsistOf(action.AttemptProblem{Reason: action.AttemptNotReady}))

		w.now = w.now.Add(time.Second)
		v = expectValid(action.FinishAttempt(w.ctx(alice), w.g))
		Expect(v.State.Character(bob).Items()).To(HaveLen(3))
		Expect(v.State.Character(alice).AttemptingAction()).To(BeNil())
	})

	It("can be aborted", func() {
		w.g = expectValid(action.StartAttempt(w.ctx(alice), w.g, dressBob)).State

		v := expectValid(action.AbortAttempt(w.ctx(alice), w.g))
		Expect(v.Messages[0].ID).To(Equal(action.MessageActionAttemptStop))
		Expect(v.State.Character(alice).AttemptingAction()).To(BeNil())

		inv := expectInvalid(action.AbortAttempt(w.ctx(alice), v.State))
		Expect(inv.Problems).To(ConsistOf(action.AttemptProblem{Reason: action.AttemptNone}))
	})

	It("applies immediately without a slowdown", func() {
		v := expectValid(action.StartAttempt(w.ctx(bob), w.g, action.SetView{Character: bob, View: pose.ViewBack}))
		Expect(v.State.Character(bob).AttemptingAction()).To(BeNil())
		Expect(v.State.Character(bob).RequestedPose().View).To(Equal(pose.ViewBack))
	})
})
