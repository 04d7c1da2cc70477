// Copyright 2025 Certen Protocol

package keys

import (
	"path/filepath"
	"testing"
)

func TestLoadOrGenerateCreatesKeyWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "identity.key")

	m := NewManager(path)
	if err := m.LoadOrGenerate(); err != nil {
		t.Fatalf("LoadOrGenerate: %v", err)
	}
	if m.PublicKeyHex() == "" {
		t.Fatal("expected non-empty public key")
	}
	if len(m.PublicKeyHex()) != 64 {
		t.Errorf("public key hex length = %d, want 64", len(m.PublicKeyHex()))
	}
}

func TestLoadOrGenerateReloadsExistingKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "identity.key")

	first := NewManager(path)
	if err := first.LoadOrGenerate(); err != nil {
		t.Fatalf("first LoadOrGenerate: %v", err)
	}

	second := NewManager(path)
	if err := second.LoadOrGenerate(); err != nil {
		t.Fatalf("second LoadOrGenerate: %v", err)
	}
	if first.PublicKeyHex() != second.PublicKeyHex() {
		t.Errorf("reloaded key differs: %s vs %s", first.PublicKeyHex(), second.PublicKeyHex())
	}
	if first.PrivateKeyHex() != second.PrivateKeyHex() {
		t.Error("reloaded private key differs")
	}
}

func TestSignProducesVerifiableSignature(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(filepath.Join(dir, "identity.key"))
	if err := m.LoadOrGenerate(); err != nil {
		t.Fatal(err)
	}
	sig, err := m.Sign([]byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	if len(sig) != 64 {
		t.Errorf("signature length = %d, want 64", len(sig))
	}
}

func TestLoadWithoutPathFails(t *testing.T) {
	m := NewManager("")
	if err := m.Load(); err == nil {
		t.Fatal("expected error loading with no key path")
	}
}
