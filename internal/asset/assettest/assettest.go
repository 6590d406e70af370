// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package assettest provides a small, fully featured asset catalog for tests.
package assettest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/holomush/wardrobe/internal/asset"
)

// Asset ids of the fixture catalog.
const (
	BodyBase       asset.ID = "a/body/base"
	BodyTall       asset.ID = "a/body/tall"
	HairShort      asset.ID = "a/hair/short"
	HairLong       asset.ID = "a/hair/long"
	EyesRound      asset.ID = "a/eyes/round"
	Shirt          asset.ID = "a/clothes/shirt"
	Pants          asset.ID = "a/clothes/pants"
	Boots          asset.ID = "a/clothes/boots"
	Collar         asset.ID = "a/accessories/collar"
	Choker         asset.ID = "a/accessories/choker"
	Scarf          asset.ID = "a/accessories/scarf"
	Armbinder      asset.ID = "a/restraints/armbinder"
	FrontCuffs     asset.ID = "a/restraints/front_cuffs"
	Gag            asset.ID = "a/restraints/gag"
	Backpack       asset.ID = "a/bags/backpack"
	Chair          asset.ID = "a/devices/chair"
	ChairSeat      asset.ID = "a/devices/chair_seat"
	CombinationLck asset.ID = "a/locks/combination"
	Padlock        asset.ID = "a/locks/padlock"
)

// CatalogYAML is the fixture catalog definition.
const CatalogYAML = `
formatVersion: "1.2.0"
bodyparts:
  - {name: body, required: true}
  - {name: hair, required: true}
  - {name: eyes}
attributes:
  - {name: Body}
  - {name: Hair}
  - {name: Eyes}
  - {name: Clothing}
  - {name: Top}
  - {name: Bottom}
  - {name: Footwear}
  - {name: Collar}
  - {name: Restraint}
  - {name: Restraint_Arms}
  - {name: Mouth_Open}
  - {name: Mouth_Cover}
slots:
  - {name: neck, capacity: 1}
  - {name: waist, capacity: 2}
randomization:
  body: [Body, Hair]
  clothes: [Top, Bottom, Footwear]
posePresets:
  - name: kneel
    pose:
      leftArm: {position: front, rotation: down, fingers: spread}
      rightArm: {position: front, rotation: down, fingers: spread}
      legs: kneeling
      view: front
assets:
  - id: a/body/base
    name: Base Body
    type: personal
    size: bodypart
    bodypart: body
    randomizable: true
    colorization:
      - {key: skin, name: Skin, default: "#FFE0BD", group: skin}
    properties:
      provides: [Body]
  - id: a/body/tall
    name: Tall Body
    type: personal
    size: bodypart
    bodypart: body
    randomizable: true
    colorization:
      - {key: skin, name: Skin, default: "#F1C27D", group: skin}
    properties:
      provides: [Body]
  - id: a/hair/short
    name: Short Hair
    type: personal
    size: bodypart
    bodypart: hair
    randomizable: true
    colorization:
      - {key: hair, name: Hair, default: "#553311", group: hair}
    properties:
      provides: [Hair]
  - id: a/hair/long
    name: Long Hair
    type: personal
    size: bodypart
    bodypart: hair
    randomizable: true
    colorization:
      - {key: hair, name: Hair, default: "#000000", group: hair}
    properties:
      provides: [Hair]
  - id: a/eyes/round
    name: Round Eyes
    type: personal
    size: bodypart
    bodypart: eyes
    colorization:
      - {key: iris, name: Iris, default: "#3366AA"}
    properties:
      provides: [Eyes]
      requires: [Body]
  - id: a/clothes/shirt
    name: Shirt
    type: personal
    size: medium
    randomizable: true
    colorization:
      - {key: cloth, name: Cloth, default: "#FFFFFF", group: clothes}
      - {key: buttons, name: Buttons, default: "#222222", minAlpha: 1}
    properties:
      provides: [Clothing, Top]
      requires: [Body]
      slots: {occupy: {waist: 1}}
  - id: a/clothes/pants
    name: Pants
    type: personal
    size: medium
    randomizable: true
    colorization:
      - {key: cloth, name: Cloth, default: "#333366", group: clothes}
    properties:
      provides: [Clothing, Bottom]
      requires: [Body]
      slots: {occupy: {waist: 1}}
  - id: a/clothes/boots
    name: Boots
    type: personal
    size: medium
    randomizable: true
    properties:
      provides: [Clothing, Footwear]
      requires: [Body]
  - id: a/accessories/collar
    name: Collar
    type: personal
    size: small
    chat:
      add: "{SOURCE_CHARACTER} fastens {ITEM_ASSET_NAME} around {TARGET_CHARACTER}'s neck."
    properties:
      provides: [Collar]
      requires: [Body]
      slots: {occupy: {neck: 1}}
    modules:
      - name: lock
        displayName: Lock
        type: lockSlot
        lockedProperties:
          blockAddRemove: true
          blockModules: [tag]
      - name: tag
        displayName: Name tag
        type: text
        maxLength: 32
  - id: a/accessories/choker
    name: Choker
    type: personal
    size: small
    properties:
      requires: [Body]
      slots: {occupy: {neck: 1}}
  - id: a/accessories/scarf
    name: Scarf
    type: personal
    size: small
    properties:
      requires: [Body]
      slots: {block: [neck]}
  - id: a/restraints/armbinder
    name: Armbinder
    type: personal
    size: medium
    properties:
      provides: [Restraint, Restraint_Arms]
      requires: [Body, "!Restraint_Arms"]
      effects: {blockHands: true}
      poseLimits:
        arms: {position: back}
    modules:
      - name: lock
        type: lockSlot
        lockedProperties:
          blockAddRemove: true
      - name: tightness
        type: typed
        variants:
          - {id: loose, name: Loose, default: true}
          - id: tight
            name: Tight
            storeCharacter: true
            storeTime: true
            properties:
              effects: {actionSlowdownMs: 2000}
              poseLimits:
                bones: {elbow_l: [[-10, 10]], elbow_r: [[-10, 10]]}
  - id: a/restraints/front_cuffs
    name: Front Cuffs
    type: personal
    size: small
    properties:
      provides: [Restraint, Restraint_Arms]
      requires: [Body]
      poseLimits:
        arms: {position: front}
  - id: a/restraints/gag
    name: Gag
    type: personal
    size: small
    properties:
      provides: [Mouth_Cover]
      requires: [Body]
    modules:
      - name: style
        type: typed
        variants:
          - {id: ball, name: Ball, default: true}
          - id: ring
            name: Ring
            properties:
              provides: [Mouth_Open]
  - id: a/bags/backpack
    name: Backpack
    type: personal
    size: large
    randomizable: false
    colorization:
      - {key: fabric, name: Fabric, default: "#445566"}
    properties:
      requires: [Body]
    modules:
      - name: contents
        displayName: Contents
        type: storage
        maxCount: 3
        maxAcceptedSize: medium
      - name: label
        type: text
        maxLength: 32
      - name: diary
        type: encrypted
        maxLength: 256
  - id: a/devices/chair
    name: Chair
    type: roomDevice
    size: huge
    colorization:
      - {key: wood, name: Wood, default: "#8B5A2B"}
    slots:
      - {id: seat, name: Seat, wearableAsset: a/devices/chair_seat}
    modules:
      - name: back
        type: typed
        variants:
          - {id: upright, name: Upright, default: true}
          - {id: reclined, name: Reclined}
  - id: a/devices/chair_seat
    name: Chair seat
    type: roomDeviceWearablePart
    size: huge
    properties:
      provides: [Restraint]
      poseLimits:
        legs: [sitting, kneeling]
  - id: a/locks/combination
    name: Combination Lock
    type: lock
    size: small
    chat:
      lock: "{SOURCE_CHARACTER} clicks the {ITEM_ASSET_NAME} shut."
    lock:
      password: {minLength: 4, maxLength: 4, format: numeric}
      timerMaxSeconds: 3600
  - id: a/locks/padlock
    name: Padlock
    type: lock
    size: small
    lock:
      blockSelf: true
`

// Catalog returns the fixture catalog.
func Catalog(tb testing.TB) *asset.Catalog {
	tb.Helper()
	c, err := asset.LoadCatalog([]byte(CatalogYAML))
	require.NoError(tb, err)
	return c
}

// MustCatalog returns the fixture catalog outside of tests, panicking on error.
func MustCatalog() *asset.Catalog {
	c, err := asset.LoadCatalog([]byte(CatalogYAML))
	if err != nil {
		panic(err)
	}
	return c
}
