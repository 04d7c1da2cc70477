// Copyright 2025 Certen Protocol
//
// Package orchestrator sequences user-issued moves (absolute, relative,
// or "toward") into one or more validated hops, appending one event per
// hop and advancing local position atomically on success only
// (spec.md §4.8, §5).
//
// Structurally this follows this repository's batch scheduler
// (pkg/batch.Scheduler): a mutex-guarded struct built from a Config,
// logging through a *log.Logger, each unit of work (here, a hop
// instead of a batch) fully computed before any state is committed.
// Each hop is tagged with its own correlation id from google/uuid, matching
// this repository's use of uuid.NewString() for cross-service request
// tracing.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arkin0x/cyberspace-cli/pkg/chain"
	"github.com/arkin0x/cyberspace-cli/pkg/coord"
	"github.com/arkin0x/cyberspace-cli/pkg/event"
	"github.com/arkin0x/cyberspace-cli/pkg/pathing"
	"github.com/arkin0x/cyberspace-cli/pkg/proof"
)

// ErrAxisOutOfDomain is returned when a requested destination axis
// falls outside [0, 2^85-1].
var ErrAxisOutOfDomain = errors.New("orchestrator: destination axis out of domain")

// ErrHopRejected is returned when a single hop's LCA height would
// exceed the configured max_lca_height.
var ErrHopRejected = errors.New("orchestrator: hop LCA height exceeds max_lca_height")

// ErrEscapeTooLarge is returned when a boundary-crossing escape hop's
// height would exceed max_lca_height+1.
var ErrEscapeTooLarge = errors.New("orchestrator: boundary-crossing escape height exceeds max_lca_height+1")

// ErrHopCapReached is returned when a toward walk would exceed
// max_hops.
var ErrHopCapReached = errors.New("orchestrator: max_hops reached")

// ErrMissingActiveChain is returned when an operation requires an
// active chain but none is loaded.
var ErrMissingActiveChain = errors.New("orchestrator: no active chain")

// Config configures hop legality and bookkeeping. MaxLCAHeight bounds
// every ordinary hop (spec.md §4.8); MaxHops caps a single toward walk
// (0 means unbounded); MaxComputeHeight bounds the proof package's
// Cantor-root computation cost (0 uses proof.DefaultMaxComputeHeight).
type Config struct {
	MaxLCAHeight     int
	MaxHops          int
	MaxComputeHeight int
	Logger           *log.Logger
}

func (c Config) computeHeight() int {
	if c.MaxComputeHeight <= 0 {
		return proof.DefaultMaxComputeHeight
	}
	return c.MaxComputeHeight
}

func (c Config) logger() *log.Logger {
	if c.Logger == nil {
		return log.Default()
	}
	return c.Logger
}

// Position is a full 3-axis-plus-plane coordinate.
type Position struct {
	X, Y, Z *big.Int
	Plane   uint
}

// Coord renders p as a single 256-bit coordinate.
func (p Position) Coord() (*big.Int, error) {
	return coord.Encode(p.X, p.Y, p.Z, p.Plane)
}

// HopReport describes one successfully completed hop.
type HopReport struct {
	Event     event.Event
	Proof     proof.MovementProof
	Position  Position
	IsEscape  bool
	CorrelationID string
}

// WalkResult summarizes a sequence of hops, possibly interrupted before
// reaching its destination (spec.md §5's cancellation semantics).
type WalkResult struct {
	Hops        []HopReport
	Interrupted bool
	Arrived     bool
}

// Orchestrator sequences hops against a single movement chain.
type Orchestrator struct {
	mu sync.Mutex

	cfg       Config
	pubkeyHex string

	chainLabel string
	chainPath  string
	chainState *chain.Chain

	position Position

	nowFunc func() int64
	appendFn func(path string, e event.Event) error
}

// New creates an orchestrator bound to an already-loaded chain and
// current position. Hop events are persisted to chainPath with
// chain.AppendToFile.
func New(cfg Config, pubkeyHex, chainLabel, chainPath string, chainState *chain.Chain, position Position) *Orchestrator {
	o := &Orchestrator{
		cfg:        cfg,
		pubkeyHex:  pubkeyHex,
		chainLabel: chainLabel,
		chainPath:  chainPath,
		chainState: chainState,
		position:   position,
		nowFunc:    func() int64 { return time.Now().Unix() },
		appendFn:   chain.AppendToFile,
	}
	return o
}

// Position returns the orchestrator's current position.
func (o *Orchestrator) Position() Position {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.position
}

func checkAxisDomain(v *big.Int) error {
	if v.Sign() < 0 || v.Cmp(coord.MaxAxisValue) > 0 {
		return fmt.Errorf("%w: %s", ErrAxisOutOfDomain, v.String())
	}
	return nil
}

// MoveAbsolute issues a single hop directly to the given destination,
// rejecting it if any axis's LCA height exceeds max_lca_height
// (spec.md §4.8).
func (o *Orchestrator) MoveAbsolute(ctx context.Context, dest Position) (HopReport, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.hopLocked(ctx, dest, false)
}

// MoveRelative issues a single hop by (dx,dy,dz) from the current
// position, on the current plane.
func (o *Orchestrator) MoveRelative(ctx context.Context, dx, dy, dz *big.Int) (HopReport, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	dest := Position{
		X:     new(big.Int).Add(o.position.X, dx),
		Y:     new(big.Int).Add(o.position.Y, dy),
		Z:     new(big.Int).Add(o.position.Z, dz),
		Plane: o.position.Plane,
	}
	return o.hopLocked(ctx, dest, false)
}

// hopLocked must be called with o.mu held. It validates the destination,
// checks hop legality, computes the movement proof, builds and appends
// the hop event, and only then commits the position update.
func (o *Orchestrator) hopLocked(ctx context.Context, dest Position, allowEscape bool) (HopReport, error) {
	if err := ctx.Err(); err != nil {
		return HopReport{}, err
	}
	if o.chainState == nil {
		return HopReport{}, ErrMissingActiveChain
	}
	if err := checkAxisDomain(dest.X); err != nil {
		return HopReport{}, err
	}
	if err := checkAxisDomain(dest.Y); err != nil {
		return HopReport{}, err
	}
	if err := checkAxisDomain(dest.Z); err != nil {
		return HopReport{}, err
	}

	planeChanged := dest.Plane != o.position.Plane
	xyzUnchanged := dest.X.Cmp(o.position.X) == 0 && dest.Y.Cmp(o.position.Y) == 0 && dest.Z.Cmp(o.position.Z) == 0
	if planeChanged && !xyzUnchanged {
		return HopReport{}, fmt.Errorf("orchestrator: plane change must hold x, y, z unchanged")
	}

	allowedHeight := o.cfg.MaxLCAHeight
	if allowEscape {
		allowedHeight++
	}

	maxHeight := proof.LCAHeight(o.position.X, dest.X)
	if h := proof.LCAHeight(o.position.Y, dest.Y); h > maxHeight {
		maxHeight = h
	}
	if h := proof.LCAHeight(o.position.Z, dest.Z); h > maxHeight {
		maxHeight = h
	}
	if maxHeight > allowedHeight {
		errKind := ErrHopRejected
		if allowEscape {
			errKind = ErrEscapeTooLarge
		}
		return HopReport{}, fmt.Errorf("%w: height=%d allowed=%d", errKind, maxHeight, allowedHeight)
	}

	mp, err := proof.Compute(o.position.X, o.position.Y, o.position.Z, dest.X, dest.Y, dest.Z, o.cfg.computeHeight())
	if err != nil {
		return HopReport{}, fmt.Errorf("orchestrator: compute movement proof: %w", err)
	}

	genesis, err := o.chainState.Genesis()
	if err != nil {
		return HopReport{}, err
	}
	tail, err := o.chainState.Tail()
	if err != nil {
		return HopReport{}, err
	}
	prevCoord, err := o.position.Coord()
	if err != nil {
		return HopReport{}, err
	}
	newCoord, err := dest.Coord()
	if err != nil {
		return HopReport{}, err
	}

	correlationID := uuid.NewString()
	hopEvent, err := event.NewHop(o.pubkeyHex, o.nowFunc(), genesis.ID, tail.ID, prevCoord, newCoord, mp.Hash)
	if err != nil {
		return HopReport{}, fmt.Errorf("orchestrator: build hop event: %w", err)
	}

	if err := o.chainState.Append(hopEvent); err != nil {
		return HopReport{}, fmt.Errorf("orchestrator: append hop to chain state: %w", err)
	}
	if err := o.appendFn(o.chainPath, hopEvent); err != nil {
		// Roll back the in-memory append so state and disk never diverge.
		o.chainState.Events = o.chainState.Events[:len(o.chainState.Events)-1]
		return HopReport{}, fmt.Errorf("orchestrator: persist hop: %w", err)
	}

	o.position = dest
	o.cfg.logger().Printf("hop[%s] chain=%s coord=%s proof=%s", correlationID, o.chainLabel, coord.ToHex(newCoord), mp.Hash)

	return HopReport{Event: hopEvent, Proof: mp, Position: dest, IsEscape: allowEscape, CorrelationID: correlationID}, nil
}

// firstNonCannotProgress returns the first error that is not
// pathing.ErrCannotProgress, since that particular error is handled by
// a boundary-crossing escape rather than aborting the walk.
func firstNonCannotProgress(errs ...error) error {
	for _, e := range errs {
		if e != nil && !errors.Is(e, pathing.ErrCannotProgress) {
			return e
		}
	}
	return nil
}

// MoveToward repeatedly advances toward target using the toward-pathing
// rule (spec.md §4.6), issuing a boundary-crossing escape hop whenever
// pathing reports the walk is pinned on an axis (spec.md §4.8).
// Cancellation via ctx leaves state consistent through the last
// successfully appended hop; WalkResult reports how many hops completed.
func (o *Orchestrator) MoveToward(ctx context.Context, target pathing.Waypoint, targetPlane *uint) (WalkResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var result WalkResult
	hopsIssued := 0

	for {
		if err := ctx.Err(); err != nil {
			result.Interrupted = true
			return result, nil
		}

		current := pathing.Waypoint{X: o.position.X, Y: o.position.Y, Z: o.position.Z}
		if current.Equal(target) {
			break
		}
		if o.cfg.MaxHops > 0 && hopsIssued >= o.cfg.MaxHops {
			return result, fmt.Errorf("%w: issued %d hops", ErrHopCapReached, hopsIssued)
		}

		xStep, errX := pathing.NextAxisValue(current.X, target.X, o.cfg.MaxLCAHeight)
		yStep, errY := pathing.NextAxisValue(current.Y, target.Y, o.cfg.MaxLCAHeight)
		zStep, errZ := pathing.NextAxisValue(current.Z, target.Z, o.cfg.MaxLCAHeight)

		if err := firstNonCannotProgress(errX, errY, errZ); err != nil {
			return result, err
		}

		dest := Position{Plane: o.position.Plane}
		allowEscape := false

		if errors.Is(errX, pathing.ErrCannotProgress) {
			dest.X = pathing.BoundaryEscapeStep(current.X, target.X).Next
			allowEscape = true
		} else {
			dest.X = xStep.Next
		}
		if errors.Is(errY, pathing.ErrCannotProgress) {
			dest.Y = pathing.BoundaryEscapeStep(current.Y, target.Y).Next
			allowEscape = true
		} else {
			dest.Y = yStep.Next
		}
		if errors.Is(errZ, pathing.ErrCannotProgress) {
			dest.Z = pathing.BoundaryEscapeStep(current.Z, target.Z).Next
			allowEscape = true
		} else {
			dest.Z = zStep.Next
		}

		report, err := o.hopLocked(ctx, dest, allowEscape)
		if err != nil {
			return result, err
		}
		result.Hops = append(result.Hops, report)
		hopsIssued++
	}

	if targetPlane != nil && *targetPlane != o.position.Plane {
		dest := Position{X: o.position.X, Y: o.position.Y, Z: o.position.Z, Plane: *targetPlane}
		report, err := o.hopLocked(ctx, dest, false)
		if err != nil {
			return result, err
		}
		result.Hops = append(result.Hops, report)
	}

	result.Arrived = true
	return result, nil
}
