// Copyright 2025 Certen Protocol
//
// Package event implements the canonical, content-addressed event
// encoding (spec.md §4.7): a NIP-01-style fixed array serialization
// whose SHA-256 hex digest is the event id, and the spawn/hop tag
// layouts built from a coordinate's hex encoding and sector.
//
// The canonicalization discipline here — fixed field order, no
// whitespace, no reordering of structural elements — is the same shape
// this repository's commitment package (pkg/commitment.CanonicalizeJSON)
// uses for deterministic hashing, adapted from "sort map keys" (where
// keys are data-driven) to "fixed array position" (where the position
// set and order are themselves part of the protocol and must never be
// sorted).
package event

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/arkin0x/cyberspace-cli/pkg/coord"
)

// Kind is the fixed event kind used for all cyberspace movement events.
const Kind = 3333

// ErrEmptyPubkey is returned when an event is built with an empty
// pubkey.
var ErrEmptyPubkey = errors.New("event: pubkey must not be empty")

// Event is a single movement-chain event, pre- or post-id-assignment.
type Event struct {
	ID        string     `json:"id"`
	PubkeyHex string     `json:"pubkey"`
	CreatedAt int64      `json:"created_at"`
	Kind      int        `json:"kind"`
	Tags      [][]string `json:"tags"`
	Content   string     `json:"content"`
	Sig       string     `json:"sig"`
}

// canonicalSerialize renders the NIP-01-style fixed array
// [0, pubkey_hex, created_at, kind, tags, content] with no whitespace,
// fixed key/field order, and non-ASCII bytes preserved literally
// (spec.md §4.7).
func canonicalSerialize(e Event) ([]byte, error) {
	if e.PubkeyHex == "" {
		return nil, ErrEmptyPubkey
	}
	arr := []interface{}{0, e.PubkeyHex, e.CreatedAt, e.Kind, e.Tags, e.Content}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(arr); err != nil {
		return nil, fmt.Errorf("event: canonical serialize: %w", err)
	}
	// json.Encoder.Encode appends a trailing newline; the canonical form
	// has none.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ComputeID computes the content-addressed id of e: SHA-256 hex of the
// UTF-8 canonical serialization.
func ComputeID(e Event) (string, error) {
	raw, err := canonicalSerialize(e)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// sectorTags returns the ["X",sx],["Y",sy],["Z",sz],["S",sector_tag]
// tags shared by spawn and hop events, derived from a coordinate.
func sectorTags(c *big.Int) [][]string {
	x, y, z, _ := coord.Decode(c)
	sec := coord.SectorOf(x, y, z)
	return [][]string{
		{"X", sec.X.String()},
		{"Y", sec.Y.String()},
		{"Z", sec.Z.String()},
		{"S", sec.Tag()},
	}
}

// NewSpawn builds and ids a spawn event: the genesis of a movement
// chain (spec.md §4.7).
func NewSpawn(pubkeyHex string, createdAt int64, c *big.Int) (Event, error) {
	coordHex := coord.ToHex(c)
	tags := [][]string{
		{"A", "spawn"},
		{"C", coordHex},
	}
	tags = append(tags, sectorTags(c)...)

	e := Event{
		PubkeyHex: pubkeyHex,
		CreatedAt: createdAt,
		Kind:      Kind,
		Tags:      tags,
		Content:   "",
	}
	id, err := ComputeID(e)
	if err != nil {
		return Event{}, err
	}
	e.ID = id
	return e, nil
}

// NewHop builds and ids a hop event: one step of a movement chain
// referencing the chain's genesis and immediately preceding event
// (spec.md §4.7).
func NewHop(pubkeyHex string, createdAt int64, genesisID, previousID string, prevCoord, newCoord *big.Int, proofHashHex string) (Event, error) {
	prevCoordHex := coord.ToHex(prevCoord)
	newCoordHex := coord.ToHex(newCoord)

	tags := [][]string{
		{"A", "hop"},
		{"e", genesisID, "", "genesis"},
		{"e", previousID, "", "previous"},
		{"c", prevCoordHex},
		{"C", newCoordHex},
		{"proof", proofHashHex},
	}
	tags = append(tags, sectorTags(newCoord)...)

	e := Event{
		PubkeyHex: pubkeyHex,
		CreatedAt: createdAt,
		Kind:      Kind,
		Tags:      tags,
		Content:   "",
	}
	id, err := ComputeID(e)
	if err != nil {
		return Event{}, err
	}
	e.ID = id
	return e, nil
}

// MarshalLine renders e as the single JSON-object-per-line form used by
// the chain log (spec.md §6): no trailing whitespace, newline-terminated
// by the caller.
func MarshalLine(e Event) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return nil, fmt.Errorf("event: marshal line: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalLine parses a single chain log line back into an Event.
func UnmarshalLine(line []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(line, &e); err != nil {
		return Event{}, fmt.Errorf("event: unmarshal line: %w", err)
	}
	return e, nil
}
