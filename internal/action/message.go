// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package action

import (
	"maps"
	"slices"
	"strings"

	"github.com/holomush/wardrobe/internal/item"
)

// MessageID names a chat message kind.
type MessageID string

// Message kinds.
const (
	MessageItemAdd           MessageID = "itemAdd"
	MessageItemRemove        MessageID = "itemRemove"
	MessageItemTransfer      MessageID = "itemTransfer"
	MessageItemLock          MessageID = "itemLock"
	MessageItemUnlock        MessageID = "itemUnlock"
	MessageModuleChange      MessageID = "moduleChange"
	MessageRandomize         MessageID = "randomize"
	MessageSafemodeEnter     MessageID = "safemodeEnter"
	MessageSafemodeLeave     MessageID = "safemodeLeave"
	MessageTimeoutEnter      MessageID = "timeoutEnter"
	MessageTimeoutLeave      MessageID = "timeoutLeave"
	MessageDeviceDeploy      MessageID = "roomDeviceDeploy"
	MessageDevicePackUp      MessageID = "roomDevicePackUp"
	MessageDeviceEnter       MessageID = "roomDeviceEnter"
	MessageDeviceLeave       MessageID = "roomDeviceLeave"
	MessageActionAttempt     MessageID = "actionAttempt"
	MessageActionAttemptStop MessageID = "actionAttemptInterrupted"
)

// Dictionary keys of message templates.
const (
	KeySourceCharacter = "SOURCE_CHARACTER"
	KeyTargetCharacter = "TARGET_CHARACTER"
	KeyItemAssetName   = "ITEM_ASSET_NAME"
	KeyItemName        = "ITEM_NAME"
	KeyModuleName      = "MODULE_NAME"
	KeyVariantName     = "VARIANT_NAME"
)

// defaultTemplates are used when an asset has no custom chat text.
var defaultTemplates = map[MessageID]string{
	MessageItemAdd:           "{SOURCE_CHARACTER} added {ITEM_NAME} to {TARGET_CHARACTER}.",
	MessageItemRemove:        "{SOURCE_CHARACTER} removed {ITEM_NAME} from {TARGET_CHARACTER}.",
	MessageItemTransfer:      "{SOURCE_CHARACTER} moved {ITEM_NAME} from {TARGET_CHARACTER}.",
	MessageItemLock:          "{SOURCE_CHARACTER} locked {ITEM_NAME} on {TARGET_CHARACTER}.",
	MessageItemUnlock:        "{SOURCE_CHARACTER} unlocked {ITEM_NAME} on {TARGET_CHARACTER}.",
	MessageModuleChange:      "{SOURCE_CHARACTER} changed the {MODULE_NAME} of {ITEM_NAME} to {VARIANT_NAME}.",
	MessageRandomize:         "{SOURCE_CHARACTER} changed their appearance.",
	MessageSafemodeEnter:     "{SOURCE_CHARACTER} entered safemode.",
	MessageSafemodeLeave:     "{SOURCE_CHARACTER} left safemode.",
	MessageTimeoutEnter:      "{SOURCE_CHARACTER} entered timeout.",
	MessageTimeoutLeave:      "{SOURCE_CHARACTER} left timeout.",
	MessageDeviceDeploy:      "{SOURCE_CHARACTER} set up {ITEM_NAME}.",
	MessageDevicePackUp:      "{SOURCE_CHARACTER} packed up {ITEM_NAME}.",
	MessageDeviceEnter:       "{SOURCE_CHARACTER} put {TARGET_CHARACTER} into {ITEM_NAME}.",
	MessageDeviceLeave:       "{SOURCE_CHARACTER} freed {TARGET_CHARACTER} from {ITEM_NAME}.",
	MessageActionAttempt:     "{SOURCE_CHARACTER} is trying to do something.",
	MessageActionAttemptStop: "{SOURCE_CHARACTER} stopped trying.",
}

// Message is a chat event produced by an action.
type Message struct {
	ID MessageID `json:"id"`
	// Template overrides the default text, usually from the asset's chat
	// definition.
	Template   string            `json:"template,omitempty"`
	Character  item.CharacterID  `json:"character"`
	Target     item.CharacterID  `json:"target,omitempty"`
	Dictionary map[string]string `json:"dictionary"`
}

// Text renders the message by replacing {KEY} placeholders. name resolves
// character names; a message without target refers to the room.
func (m Message) Text(name func(item.CharacterID) string) string {
	tmpl := m.Template
	if tmpl == "" {
		tmpl = defaultTemplates[m.ID]
	}
	dict := maps.Clone(m.Dictionary)
	if dict == nil {
		dict = map[string]string{}
	}
	dict[KeySourceCharacter] = name(m.Character)
	if m.Target == "" {
		dict[KeyTargetCharacter] = "the room"
	} else {
		dict[KeyTargetCharacter] = name(m.Target)
	}
	pairs := make([]string, 0, 2*len(dict))
	for _, k := range slices.Sorted(maps.Keys(dict)) {
		pairs = append(pairs, "{"+k+"}", dict[k])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
