// Copyright 2025 Certen Protocol
//
// Package chain implements the append-only movement-chain log
// (spec.md §4.7, §5): an ordered sequence of events beginning with a
// spawn (genesis) event, each subsequent hop event linking back to both
// the genesis and the immediately preceding event.
//
// Error handling follows this repository's ledger store
// (pkg/ledger.LedgerStore): sentinel errors for "not found"/"mismatch"
// conditions, wrapped with %w at each call site, so callers can test
// with errors.Is instead of string matching.
package chain

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/arkin0x/cyberspace-cli/pkg/event"
)

// ErrNoGenesis is returned when an operation requires a chain to already
// have a genesis event but it does not.
var ErrNoGenesis = errors.New("chain: no genesis event")

// ErrAlreadyHasGenesis is returned when attempting to set a genesis
// event on a chain that already has one.
var ErrAlreadyHasGenesis = errors.New("chain: chain already has a genesis event")

// ErrChainMismatch is returned when an event being appended does not
// reference the chain's actual tail as its "previous" event.
var ErrChainMismatch = errors.New("chain: previous id does not match chain tail")

// ErrNotSpawnEvent is returned when NewChain is given an event whose "A"
// tag is not "spawn".
var ErrNotSpawnEvent = errors.New("chain: genesis event is not a spawn event")

// ErrNotHopEvent is returned when Append is given an event whose "A" tag
// is not "hop".
var ErrNotHopEvent = errors.New("chain: appended event is not a hop event")

// ErrWrongGenesis is returned when a hop event's genesis tag does not
// match the chain's actual genesis id.
var ErrWrongGenesis = errors.New("chain: hop event references a different genesis")

var unsafeLabelChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// NormalizeLabel replaces every character outside [A-Za-z0-9._-] with an
// underscore, producing a filesystem-safe chain label (spec.md §6).
func NormalizeLabel(label string) string {
	return unsafeLabelChars.ReplaceAllString(label, "_")
}

// Chain is an ordered, in-memory view of a movement chain: a genesis
// event followed by zero or more hop events, each validated against its
// predecessor at append time.
type Chain struct {
	Label  string
	Events []event.Event
}

// NewChain starts a new chain from a spawn event.
func NewChain(label string, genesis event.Event) (*Chain, error) {
	if !hasTag(genesis, "A", "spawn") {
		return nil, ErrNotSpawnEvent
	}
	return &Chain{
		Label:  NormalizeLabel(label),
		Events: []event.Event{genesis},
	}, nil
}

// Load reconstructs a Chain from a previously-persisted ordered event
// sequence, validating genesis/previous linkage as it goes. Label is not
// re-normalized; it is assumed to already be the on-disk label.
func Load(label string, events []event.Event) (*Chain, error) {
	if len(events) == 0 {
		return nil, ErrNoGenesis
	}
	if !hasTag(events[0], "A", "spawn") {
		return nil, ErrNotSpawnEvent
	}
	c := &Chain{Label: label, Events: []event.Event{events[0]}}
	for _, e := range events[1:] {
		if err := c.Append(e); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Genesis returns the chain's first event.
func (c *Chain) Genesis() (event.Event, error) {
	if len(c.Events) == 0 {
		return event.Event{}, ErrNoGenesis
	}
	return c.Events[0], nil
}

// Tail returns the chain's most recently appended event.
func (c *Chain) Tail() (event.Event, error) {
	if len(c.Events) == 0 {
		return event.Event{}, ErrNoGenesis
	}
	return c.Events[len(c.Events)-1], nil
}

// Len returns the number of events in the chain, including genesis.
func (c *Chain) Len() int {
	return len(c.Events)
}

// Append validates and appends a hop event: its genesis tag must match
// this chain's genesis id, and its previous tag must match the current
// tail's id. On any validation failure the chain is left unchanged.
func (c *Chain) Append(e event.Event) error {
	if !hasTag(e, "A", "hop") {
		return ErrNotHopEvent
	}
	genesis, err := c.Genesis()
	if err != nil {
		return err
	}
	tail, err := c.Tail()
	if err != nil {
		return err
	}

	genesisRef, ok := tagValue(e, "e", "genesis")
	if !ok || genesisRef != genesis.ID {
		return fmt.Errorf("%w: got %q, want %q", ErrWrongGenesis, genesisRef, genesis.ID)
	}
	previousRef, ok := tagValue(e, "e", "previous")
	if !ok || previousRef != tail.ID {
		return fmt.Errorf("%w: got %q, want %q", ErrChainMismatch, previousRef, tail.ID)
	}

	c.Events = append(c.Events, e)
	return nil
}

// Equal reports whether two chains are equal under spec.md §5's
// definition: equality of event-id sequence.
func Equal(a, b *Chain) bool {
	if len(a.Events) != len(b.Events) {
		return false
	}
	for i := range a.Events {
		if a.Events[i].ID != b.Events[i].ID {
			return false
		}
	}
	return true
}

// hasTag reports whether e has a tag whose first two elements are
// exactly [key, value].
func hasTag(e event.Event, key, value string) bool {
	for _, tag := range e.Tags {
		if len(tag) >= 2 && tag[0] == key && tag[1] == value {
			return true
		}
	}
	return false
}

// tagValue finds the "e" tag with the given marker (genesis/previous) in
// its fourth element and returns its id (second element).
func tagValue(e event.Event, key, marker string) (string, bool) {
	for _, tag := range e.Tags {
		if len(tag) >= 4 && tag[0] == key && tag[3] == marker {
			return tag[1], true
		}
	}
	return "", false
}
