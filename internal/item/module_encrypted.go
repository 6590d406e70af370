// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import (
	"crypto/rand"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/holomush/wardrobe/internal/asset"
)

// argon2id parameters for passphrase keys.
const (
	sealTime    = 1
	sealMemory  = 19 * 1024
	sealThreads = 2
	sealSaltLen = 16
	sealKeyLen  = 32
	sealNonce   = 24
)

// EncryptedModule holds text sealed with a passphrase. Only the sealed form
// is stored; clients only learn whether there is content.
type EncryptedModule struct {
	config *asset.ModuleConfig
	salt   []byte
	sealed []byte
	// hasContent is set instead of salt and sealed in client bundles.
	hasContent bool
}

// Config implements Module.
func (m *EncryptedModule) Config() *asset.ModuleConfig { return m.config }

// HasContent reports whether sealed text is present.
func (m *EncryptedModule) HasContent() bool { return len(m.sealed) > 0 || m.hasContent }

// Reveal decrypts the text. ok is false for a wrong passphrase or an empty module.
func (m *EncryptedModule) Reveal(passphrase string) (text string, ok bool) {
	if len(m.sealed) < sealNonce {
		return "", false
	}
	key := sealKey(passphrase, m.salt)
	var nonce [sealNonce]byte
	copy(nonce[:], m.sealed[:sealNonce])
	plain, ok := secretbox.Open(nil, m.sealed[sealNonce:], &nonce, key)
	if !ok {
		return "", false
	}
	return string(plain), true
}

// Properties implements Module.
func (m *EncryptedModule) Properties() []*asset.PropertiesDefinition { return nil }

// Items implements Module.
func (m *EncryptedModule) Items() []*Item { return nil }

// ContentLocation implements Module.
func (m *EncryptedModule) ContentLocation() Location { return "" }

// AcceptsContent implements Module.
func (m *EncryptedModule) AcceptsContent(*Item) bool { return false }

// SetItems implements Module.
func (m *EncryptedModule) SetItems([]*Item) (Module, bool) { return nil, false }

// DoAction implements Module.
func (m *EncryptedModule) DoAction(_ ActionContext, action ModuleAction) (Module, ActionResult) {
	seal, ok := action.(SealText)
	if !ok || !validCustomText(seal.Text, m.config.MaxLength, true) {
		return nil, invalidResult()
	}
	if seal.Text == "" {
		return &EncryptedModule{config: m.config}, okResult()
	}
	if seal.Passphrase == "" {
		return nil, failedResult(ReasonInvalidPassword)
	}
	salt := make([]byte, sealSaltLen)
	var nonce [sealNonce]byte
	if _, err := rand.Read(salt); err != nil {
		return nil, invalidResult()
	}
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, invalidResult()
	}
	sealed := secretbox.Seal(nonce[:], []byte(seal.Text), &nonce, sealKey(seal.Passphrase, salt))
	return &EncryptedModule{config: m.config, salt: salt, sealed: sealed}, okResult()
}

// Validate implements Module.
func (m *EncryptedModule) Validate(_ ValidationContext, owner *Item) ValidationError {
	if len(m.sealed) == 0 {
		return nil
	}
	if len(m.salt) != sealSaltLen || len(m.sealed) > sealNonce+secretbox.Overhead+m.config.MaxLength*utf8.UTFMax {
		return Invalid{Item: owner.id, Reason: "module " + m.config.Name + " content is malformed"}
	}
	return nil
}

func (m *EncryptedModule) exportBundle(client bool) ModuleBundle {
	if client {
		return ModuleBundle{Type: asset.ModuleEncrypted, HasContent: m.HasContent()}
	}
	return ModuleBundle{Type: asset.ModuleEncrypted, Salt: m.salt, Sealed: m.sealed}
}

// Templates never carry sealed content.
func (m *EncryptedModule) exportTemplate() ModuleTemplate {
	return ModuleTemplate{Type: asset.ModuleEncrypted}
}

func loadEncryptedModule(_ LoadContext, cfg *asset.ModuleConfig, b ModuleBundle) *EncryptedModule {
	return &EncryptedModule{config: cfg, salt: b.Salt, sealed: b.Sealed, hasContent: b.HasContent}
}

func sealKey(passphrase string, salt []byte) *[sealKeyLen]byte {
	var key [sealKeyLen]byte
	copy(key[:], argon2.IDKey([]byte(passphrase), salt, sealTime, sealMemory, sealThreads, sealKeyLen))
	return &key
}
