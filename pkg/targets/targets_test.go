// Copyright 2025 Certen Protocol

package targets

import (
	"errors"
	"testing"

	"github.com/arkin0x/cyberspace-cli/pkg/store"
)

func freshState() *store.State {
	return &store.State{Version: store.StateVersion}
}

func TestAddAndList(t *testing.T) {
	s := freshState()
	if err := Add(s, "home", "00"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	list := List(s)
	if len(list) != 1 || list[0].Label != "home" {
		t.Errorf("List = %+v, want one target labeled home", list)
	}
}

func TestAddRejectsDuplicateLabel(t *testing.T) {
	s := freshState()
	if err := Add(s, "home", "00"); err != nil {
		t.Fatal(err)
	}
	if err := Add(s, "home", "11"); !errors.Is(err, ErrDuplicateLabel) {
		t.Fatalf("expected ErrDuplicateLabel, got %v", err)
	}
}

func TestAddRejectsInvalidHex(t *testing.T) {
	s := freshState()
	if err := Add(s, "bad", "not-hex"); err == nil {
		t.Fatal("expected error for invalid coordinate hex")
	}
}

func TestSelectAndActive(t *testing.T) {
	s := freshState()
	if err := Add(s, "home", "00"); err != nil {
		t.Fatal(err)
	}
	if err := Select(s, "home"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	active, ok := Active(s)
	if !ok || active.Label != "home" {
		t.Errorf("Active = %+v, %v; want home, true", active, ok)
	}
}

func TestSelectUnknownLabelFails(t *testing.T) {
	s := freshState()
	if err := Select(s, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveClearsActiveTarget(t *testing.T) {
	s := freshState()
	if err := Add(s, "home", "00"); err != nil {
		t.Fatal(err)
	}
	if err := Select(s, "home"); err != nil {
		t.Fatal(err)
	}
	if err := Remove(s, "home"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(List(s)) != 0 {
		t.Errorf("expected no targets after remove")
	}
	if s.ActiveTargetLabel != "" {
		t.Errorf("ActiveTargetLabel = %q, want empty after removing active target", s.ActiveTargetLabel)
	}
}

func TestRemoveUnknownLabelFails(t *testing.T) {
	s := freshState()
	if err := Remove(s, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
