// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import (
	"github.com/samber/oops"

	"github.com/holomush/wardrobe/internal/asset"
)

// Module is a named behaviour attached to an item. Like items, modules are
// immutable and every transition returns a new module.
//
// The implementations in this package are the complete set; see
// asset.ModuleType.
type Module interface {
	// Config returns the static configuration of the module.
	Config() *asset.ModuleConfig
	// Properties returns the property definitions the module currently contributes.
	Properties() []*asset.PropertiesDefinition
	// Items returns the items held by a container module.
	Items() []*Item
	// ContentLocation is the location of held items; empty for non containers.
	ContentLocation() Location
	// AcceptsContent reports whether the module may hold the item at all.
	AcceptsContent(it *Item) bool
	// SetItems replaces the held items. ok is false for non containers.
	SetItems(items []*Item) (m Module, ok bool)
	// DoAction performs an action. The returned module is nil unless the
	// outcome is OutcomeOK.
	DoAction(ctx ActionContext, action ModuleAction) (Module, ActionResult)
	// Validate checks the module data and everything it holds.
	Validate(ctx ValidationContext, owner *Item) ValidationError

	exportBundle(client bool) ModuleBundle
	exportTemplate() ModuleTemplate
}

// ModuleAction is an action performed on a module.
// The types in this package are the complete set.
type ModuleAction interface {
	moduleAction()
}

// SelectVariant switches a typed module to another variant.
type SelectVariant struct {
	Variant string `json:"variant"`
}

// LockSlotAction performs a lock action on the lock held by a lock slot.
type LockSlotAction struct {
	Action LockAction `json:"-"`
}

// SetText replaces the text of a text module.
type SetText struct {
	Text string `json:"text"`
}

// SealText encrypts text with a passphrase into an encrypted module.
// An empty text clears the module.
type SealText struct {
	Text       string `json:"text"`
	Passphrase string `json:"passphrase"`
}

func (SelectVariant) moduleAction()  {}
func (LockSlotAction) moduleAction() {}
func (SetText) moduleAction()        {}
func (SealText) moduleAction()       {}

// Outcome is the result class of an item or module action.
type Outcome string

// Outcomes.
const (
	OutcomeOK      Outcome = "ok"
	OutcomeFailed  Outcome = "failed"
	OutcomeInvalid Outcome = "invalid"
)

// FailureReason explains a failed outcome.
type FailureReason string

// Failure reasons.
const (
	ReasonWrongPassword   FailureReason = "wrongPassword"
	ReasonInvalidPassword FailureReason = "invalidPassword"
	ReasonTimerRunning    FailureReason = "timerRunning"
	ReasonBlockSelf       FailureReason = "blockSelf"
	ReasonNotAllowed      FailureReason = "notAllowed"
	ReasonNoLock          FailureReason = "noLock"
)

// ActionResult is the outcome of an item or module action. Failed outcomes
// are expected rejections to report to the player; invalid outcomes are
// malformed requests.
type ActionResult struct {
	Outcome Outcome
	Reason  FailureReason
	// Password is set by a successful ShowPassword.
	Password string
}

func okResult() ActionResult { return ActionResult{Outcome: OutcomeOK} }

func invalidResult() ActionResult { return ActionResult{Outcome: OutcomeInvalid} }

func failedResult(reason FailureReason) ActionResult {
	return ActionResult{Outcome: OutcomeFailed, Reason: reason}
}

func newModule(cfg *asset.ModuleConfig) Module {
	switch cfg.Type {
	case asset.ModuleTyped:
		return newTypedModule(cfg)
	case asset.ModuleStorage:
		return &StorageModule{config: cfg}
	case asset.ModuleLockSlot:
		return &LockSlotModule{config: cfg}
	case asset.ModuleText:
		return &TextModule{config: cfg}
	case asset.ModuleEncrypted:
		return &EncryptedModule{config: cfg}
	default:
		panic(oops.Code("MODULE_TYPE_UNKNOWN").With("type", cfg.Type).Errorf("unhandled module type"))
	}
}

// validateContents checks the items of a container module.
func validateContents(ctx ValidationContext, owner *Item, m Module) ValidationError {
	items := m.Items()
	if len(items) == 0 {
		return nil
	}
	nested := ctx.nested(m.ContentLocation())
	if nested.Depth > ctx.maxDepth() {
		return TooManyItems{Item: owner.id, Module: m.Config().Name, Limit: 0}
	}
	for _, it := range items {
		if !m.AcceptsContent(it) {
			return ContentNotAllowed{Item: owner.id, Module: m.Config().Name, Asset: it.asset.ID}
		}
		if err := it.Validate(nested); err != nil {
			return err
		}
	}
	return nil
}
