// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package action

import (
	"encoding/json"

	"github.com/samber/oops"

	"github.com/holomush/wardrobe/internal/item"
)

// envelope is the wire form of an action.
type envelope struct {
	Type    Kind            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// moduleActionWire adds the typed module action to ModuleAction.
type moduleActionWire struct {
	ModuleAction
	Action json.RawMessage `json:"action"`
}

// Encode returns the wire form of an action.
func Encode(a Action) ([]byte, error) {
	var payload any = a
	if ma, ok := a.(ModuleAction); ok {
		inner, err := encodeModuleAction(ma.Action)
		if err != nil {
			return nil, err
		}
		payload = moduleActionWire{ModuleAction: ma, Action: inner}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, oops.Code("ACTION_ENCODE_FAILED").With("type", a.Kind()).Wrap(err)
	}
	out, err := json.Marshal(envelope{Type: a.Kind(), Payload: data})
	if err != nil {
		return nil, oops.Code("ACTION_ENCODE_FAILED").With("type", a.Kind()).Wrap(err)
	}
	return out, nil
}

// Decode parses the wire form of an action.
func Decode(data []byte) (Action, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, oops.Code("ACTION_DECODE_FAILED").Wrap(err)
	}
	if len(env.Payload) == 0 {
		env.Payload = json.RawMessage("{}")
	}
	errb := oops.Code("ACTION_DECODE_FAILED").With("type", env.Type)
	switch env.Type {
	case KindCreate:
		return decodeAs[Create](env.Payload)
	case KindDelete:
		return decodeAs[Delete](env.Payload)
	case KindTransfer:
		return decodeAs[Transfer](env.Payload)
	case KindMove:
		return decodeAs[Move](env.Payload)
	case KindColor:
		return decodeAs[Color](env.Payload)
	case KindCustomize:
		return decodeAs[Customize](env.Payload)
	case KindModuleAction:
		var w moduleActionWire
		if err := json.Unmarshal(env.Payload, &w); err != nil {
			return nil, errb.Wrap(err)
		}
		inner, err := decodeModuleAction(w.Action)
		if err != nil {
			return nil, errb.Wrap(err)
		}
		w.ModuleAction.Action = inner
		return w.ModuleAction, nil
	case KindPose:
		return decodeAs[Pose](env.Payload)
	case KindSetView:
		return decodeAs[SetView](env.Payload)
	case KindRestrictionOverride:
		return decodeAs[RestrictionOverride](env.Payload)
	case KindRandomize:
		return decodeAs[Randomize](env.Payload)
	case KindRoomDeviceDeploy:
		return decodeAs[RoomDeviceDeploy](env.Payload)
	case KindRoomDeviceEnter:
		return decodeAs[RoomDeviceEnter](env.Payload)
	case KindRoomDeviceLeave:
		return decodeAs[RoomDeviceLeave](env.Payload)
	default:
		return nil, errb.Errorf("unknown action type")
	}
}

func decodeAs[T Action](payload json.RawMessage) (Action, error) {
	var a T
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, oops.Code("ACTION_DECODE_FAILED").With("type", a.Kind()).Wrap(err)
	}
	return a, nil
}

// Module action wire types.
const (
	moduleSelectVariant = "selectVariant"
	moduleLockSlot      = "lockSlot"
	moduleSetText       = "setText"
	moduleSealText      = "sealText"

	lockLock         = "lock"
	lockUnlock       = "unlock"
	lockShowPassword = "showPassword"
)

type typedWire struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func encodeTyped(typ string, v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, oops.Code("ACTION_ENCODE_FAILED").With("type", typ).Wrap(err)
	}
	return json.Marshal(typedWire{Type: typ, Data: data})
}

func encodeModuleAction(a item.ModuleAction) (json.RawMessage, error) {
	switch a := a.(type) {
	case item.SelectVariant:
		return encodeTyped(moduleSelectVariant, a)
	case item.SetText:
		return encodeTyped(moduleSetText, a)
	case item.SealText:
		return encodeTyped(moduleSealText, a)
	case item.LockSlotAction:
		inner, err := encodeLockAction(a.Action)
		if err != nil {
			return nil, err
		}
		return json.Marshal(typedWire{Type: moduleLockSlot, Data: inner})
	case nil:
		return nil, oops.Code("ACTION_ENCODE_FAILED").Errorf("module action missing")
	default:
		panic(oops.Code("MODULE_ACTION_UNKNOWN").With("type", a).Errorf("unhandled module action type"))
	}
}

func encodeLockAction(a item.LockAction) (json.RawMessage, error) {
	switch a := a.(type) {
	case item.Lock:
		return encodeTyped(lockLock, a)
	case item.Unlock:
		return encodeTyped(lockUnlock, a)
	case item.ShowPassword:
		return encodeTyped(lockShowPassword, a)
	case nil:
		return nil, oops.Code("ACTION_ENCODE_FAILED").Errorf("lock action missing")
	default:
		panic(oops.Code("LOCK_ACTION_UNKNOWN").With("type", a).Errorf("unhandled lock action type"))
	}
}

func decodeTyped[T any](data json.RawMessage) (T, error) {
	var v T
	if len(data) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, oops.Wrap(err)
	}
	return v, nil
}

func decodeModuleAction(data json.RawMessage) (item.ModuleAction, error) {
	var w typedWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, oops.With("field", "action").Wrap(err)
	}
	switch w.Type {
	case moduleSelectVariant:
		return decodeTyped[item.SelectVariant](w.Data)
	case moduleSetText:
		return decodeTyped[item.SetText](w.Data)
	case moduleSealText:
		return decodeTyped[item.SealText](w.Data)
	case moduleLockSlot:
		inner, err := decodeLockAction(w.Data)
		if err != nil {
			return nil, err
		}
		return item.LockSlotAction{Action: inner}, nil
	default:
		return nil, oops.With("module_action", w.Type).Errorf("unknown module action type")
	}
}

func decodeLockAction(data json.RawMessage) (item.LockAction, error) {
	var w typedWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, oops.With("field", "lock").Wrap(err)
	}
	switch w.Type {
	case lockLock:
		return decodeTyped[item.Lock](w.Data)
	case lockUnlock:
		return decodeTyped[item.Unlock](w.Data)
	case lockShowPassword:
		return item.ShowPassword{}, nil
	default:
		return nil, oops.With("lock_action", w.Type).Errorf("unknown lock action type")
	}
}
