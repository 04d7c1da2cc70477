// Copyright 2025 Certen Protocol
//
// Package targets implements named-coordinate bookmark management
// (spec.md §6's targets list) on top of a store.State: add, list,
// select, and remove operations over the state's Targets slice and
// ActiveTargetLabel field.
package targets

import (
	"errors"
	"fmt"

	"github.com/arkin0x/cyberspace-cli/pkg/coord"
	"github.com/arkin0x/cyberspace-cli/pkg/store"
)

// ErrDuplicateLabel is returned when adding a target whose label
// already exists.
var ErrDuplicateLabel = errors.New("targets: label already exists")

// ErrNotFound is returned when a referenced target label does not
// exist.
var ErrNotFound = errors.New("targets: label not found")

// Add appends a new named target to s, validating that coordHex parses
// as a coordinate and that label is not already in use.
func Add(s *store.State, label, coordHex string) error {
	if _, err := coord.HexToCoord(coordHex); err != nil {
		return fmt.Errorf("targets: invalid coordinate: %w", err)
	}
	for _, tgt := range s.Targets {
		if tgt.Label == label {
			return fmt.Errorf("%w: %s", ErrDuplicateLabel, label)
		}
	}
	s.Targets = append(s.Targets, store.Target{Label: label, CoordHex: coordHex})
	return nil
}

// List returns every named target in s.
func List(s *store.State) []store.Target {
	out := make([]store.Target, len(s.Targets))
	copy(out, s.Targets)
	return out
}

// Get finds a target by label.
func Get(s *store.State, label string) (store.Target, bool) {
	for _, tgt := range s.Targets {
		if tgt.Label == label {
			return tgt, true
		}
	}
	return store.Target{}, false
}

// Select makes label the active target, failing if it does not exist.
func Select(s *store.State, label string) error {
	if _, ok := Get(s, label); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, label)
	}
	s.ActiveTargetLabel = label
	return nil
}

// Active returns the currently selected target, if any.
func Active(s *store.State) (store.Target, bool) {
	if s.ActiveTargetLabel == "" {
		return store.Target{}, false
	}
	return Get(s, s.ActiveTargetLabel)
}

// Remove deletes a named target from s. If it was the active target,
// ActiveTargetLabel is cleared.
func Remove(s *store.State, label string) error {
	for i, tgt := range s.Targets {
		if tgt.Label == label {
			s.Targets = append(s.Targets[:i], s.Targets[i+1:]...)
			if s.ActiveTargetLabel == label {
				s.ActiveTargetLabel = ""
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, label)
}
