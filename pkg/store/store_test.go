// Copyright 2025 Certen Protocol

package store

import (
	"path/filepath"
	"testing"
)

func TestHomeRespectsEnvOverride(t *testing.T) {
	t.Setenv(HomeEnvVar, "/tmp/custom-cyberspace-home")
	home, err := Home()
	if err != nil {
		t.Fatal(err)
	}
	if home != "/tmp/custom-cyberspace-home" {
		t.Errorf("Home() = %q, want override", home)
	}
}

func TestSaveLoadStateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := &State{
		Version:          StateVersion,
		PrivkeyHex:       "ab",
		PubkeyHex:        "cd",
		CoordHex:         "ef",
		ActiveChainLabel: "main",
		Targets: []Target{
			{Label: "home", CoordHex: "00"},
		},
		ActiveTargetLabel: "home",
	}
	if err := SaveState(dir, s); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	got, err := LoadState(dir)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if got.PubkeyHex != s.PubkeyHex || got.ActiveChainLabel != s.ActiveChainLabel {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, s)
	}
	if len(got.Targets) != 1 || got.Targets[0].Label != "home" {
		t.Errorf("targets round trip mismatch: %+v", got.Targets)
	}
}

func TestLoadStateMissingFileErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadState(dir); err == nil {
		t.Fatal("expected error for missing state file")
	}
}

func TestLoadConfigFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultMaxLCAHeight != DefaultMaxLCAHeight {
		t.Errorf("DefaultMaxLCAHeight = %d, want %d", cfg.DefaultMaxLCAHeight, DefaultMaxLCAHeight)
	}
}

func TestSaveLoadConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Version: 1, DefaultMaxLCAHeight: 20}
	if err := SaveConfig(dir, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	got, err := LoadConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.DefaultMaxLCAHeight != 20 {
		t.Errorf("DefaultMaxLCAHeight = %d, want 20", got.DefaultMaxLCAHeight)
	}
}

func TestChainPathNormalizesLabel(t *testing.T) {
	home := "/home/user/.cyberspace"
	got := ChainPath(home, "my chain/1")
	want := filepath.Join(home, "chains", "my_chain_1.jsonl")
	if got != want {
		t.Errorf("ChainPath = %q, want %q", got, want)
	}
}

func TestListChainLabelsEmptyWhenNoChainsDir(t *testing.T) {
	dir := t.TempDir()
	labels, err := ListChainLabels(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(labels) != 0 {
		t.Errorf("expected no labels, got %v", labels)
	}
}
