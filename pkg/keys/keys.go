// Copyright 2025 Certen Protocol
//
// Package keys manages the ed25519 identity keypair whose public key is
// the pubkey of movement-chain events (the events themselves are not
// signed; their sig field stays empty): load an existing hex-encoded
// private key from disk, or generate and persist a new one. Structurally this mirrors
// this repository's BLS key manager (pkg/crypto/bls.KeyManager):
// load-if-present, else generate-and-save, hex-encoded on disk with
// restricted file permissions.
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// Manager holds an ed25519 keypair and the path it is persisted to.
type Manager struct {
	keyPath    string
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
}

// NewManager creates a key manager rooted at keyPath. keyPath may be
// empty, in which case keys are never persisted.
func NewManager(keyPath string) *Manager {
	return &Manager{keyPath: keyPath}
}

// LoadOrGenerate loads the existing key at keyPath, or generates and
// saves a new one if no file exists there.
func (m *Manager) LoadOrGenerate() error {
	if m.keyPath != "" {
		if _, err := os.Stat(m.keyPath); err == nil {
			return m.Load()
		}
	}
	return m.generateAndSave()
}

// Load reads the hex-encoded private key from keyPath.
func (m *Manager) Load() error {
	if m.keyPath == "" {
		return fmt.Errorf("keys: no key path specified")
	}
	data, err := os.ReadFile(m.keyPath)
	if err != nil {
		return fmt.Errorf("keys: read key file: %w", err)
	}
	raw, err := hex.DecodeString(string(data))
	if err != nil {
		return fmt.Errorf("keys: decode key hex: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return fmt.Errorf("keys: key file has %d bytes, want %d", len(raw), ed25519.PrivateKeySize)
	}
	m.privateKey = ed25519.PrivateKey(raw)
	m.publicKey = m.privateKey.Public().(ed25519.PublicKey)
	return nil
}

func (m *Manager) generateAndSave() error {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("keys: generate keypair: %w", err)
	}
	m.privateKey = priv
	m.publicKey = pub

	if m.keyPath == "" {
		return nil
	}
	return m.Save()
}

// Save writes the hex-encoded private key to keyPath with owner-only
// permissions, creating the parent directory if necessary.
func (m *Manager) Save() error {
	if m.keyPath == "" {
		return fmt.Errorf("keys: no key path specified")
	}
	if m.privateKey == nil {
		return fmt.Errorf("keys: no private key to save")
	}
	dir := filepath.Dir(m.keyPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("keys: create key directory: %w", err)
	}
	keyHex := hex.EncodeToString(m.privateKey)
	if err := os.WriteFile(m.keyPath, []byte(keyHex), 0600); err != nil {
		return fmt.Errorf("keys: write key file: %w", err)
	}
	return nil
}

// PrivateKeyHex returns the hex-encoded private key.
func (m *Manager) PrivateKeyHex() string {
	if m.privateKey == nil {
		return ""
	}
	return hex.EncodeToString(m.privateKey)
}

// PublicKeyHex returns the hex-encoded public key, the identity used as
// an event's pubkey field.
func (m *Manager) PublicKeyHex() string {
	if m.publicKey == nil {
		return ""
	}
	return hex.EncodeToString(m.publicKey)
}

// Sign signs message with the manager's private key.
func (m *Manager) Sign(message []byte) ([]byte, error) {
	if m.privateKey == nil {
		return nil, fmt.Errorf("keys: no private key loaded")
	}
	return ed25519.Sign(m.privateKey, message), nil
}
