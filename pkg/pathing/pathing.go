// Copyright 2025 Certen Protocol
//
// Package pathing implements the toward-pathing rule (spec.md §4.6): given
// a current axis value and a target, choose the next value that stays
// within the caller's H-aligned block and moves as close to the target as
// possible, and the 3D hop assembled from the three independent axis
// choices. Boundary-crossing escape (spec.md §4.8) is a caller concern —
// this package reports "cannot progress" rather than performing the
// escape itself, the same separation of pure-decision from orchestration
// this repository's batch scheduler (pkg/batch.Scheduler) keeps between
// computing readiness and acting on it.
package pathing

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrCannotProgress is returned when the target lies outside the
// current H-aligned block and the current value is already pinned to a
// block edge nearest the target; the caller must invoke a
// boundary-crossing escape hop instead.
var ErrCannotProgress = errors.New("pathing: cannot progress toward target under current bound")

// ErrNonPositiveHeight is returned when max_lca_height is not a positive
// integer.
var ErrNonPositiveHeight = errors.New("pathing: max_lca_height must be positive")

// AxisStep is the result of a single-axis toward-pathing decision.
type AxisStep struct {
	Next   *big.Int
	Height int
}

// NextAxisValue implements spec.md §4.6 for one axis: given the current
// value c and target t, bounded by H = maxLCAHeight, choose the next
// value n such that LCA_height(c, n) <= H and n is as close to t as
// possible.
func NextAxisValue(c, t *big.Int, maxLCAHeight int) (AxisStep, error) {
	if c.Cmp(t) == 0 {
		return AxisStep{Next: new(big.Int).Set(c), Height: 0}, nil
	}
	if maxLCAHeight <= 0 {
		return AxisStep{}, ErrNonPositiveHeight
	}

	blockBase := new(big.Int).Rsh(c, uint(maxLCAHeight))
	blockBase.Lsh(blockBase, uint(maxLCAHeight))
	blockEnd := new(big.Int).Lsh(big.NewInt(1), uint(maxLCAHeight))
	blockEnd.Add(blockEnd, blockBase)
	blockEnd.Sub(blockEnd, big.NewInt(1))

	n := clamp(t, blockBase, blockEnd)
	if n.Cmp(c) == 0 {
		return AxisStep{}, fmt.Errorf("%w: axis pinned at %s", ErrCannotProgress, c.String())
	}

	xor := new(big.Int).Xor(c, n)
	return AxisStep{Next: n, Height: xor.BitLen()}, nil
}

func clamp(v, lo, hi *big.Int) *big.Int {
	if v.Cmp(lo) < 0 {
		return new(big.Int).Set(lo)
	}
	if v.Cmp(hi) > 0 {
		return new(big.Int).Set(hi)
	}
	return new(big.Int).Set(v)
}

// Waypoint is a candidate next 3D position produced by a toward walk.
type Waypoint struct {
	X, Y, Z *big.Int
}

// Equal reports whether two waypoints address the same position.
func (w Waypoint) Equal(o Waypoint) bool {
	return w.X.Cmp(o.X) == 0 && w.Y.Cmp(o.Y) == 0 && w.Z.Cmp(o.Z) == 0
}

// NextWaypoint applies NextAxisValue independently on each of X, Y, Z
// (spec.md §4.6's "3D hop"). It returns the per-axis step for each axis
// so the caller can decide, per axis, whether a boundary-crossing escape
// is required; an axis already at its target reports height 0 and is
// never a progress failure on its own.
func NextWaypoint(current, target Waypoint, maxLCAHeight int) (x, y, z AxisStep, err error) {
	x, errX := NextAxisValue(current.X, target.X, maxLCAHeight)
	y, errY := NextAxisValue(current.Y, target.Y, maxLCAHeight)
	z, errZ := NextAxisValue(current.Z, target.Z, maxLCAHeight)

	// Surface the first real failure; a single pinned axis with others
	// still converging is still reported so the orchestrator can escape
	// just that axis rather than abandoning the whole hop.
	if errX != nil && !errors.Is(errX, ErrCannotProgress) {
		return AxisStep{}, AxisStep{}, AxisStep{}, errX
	}
	if errY != nil && !errors.Is(errY, ErrCannotProgress) {
		return AxisStep{}, AxisStep{}, AxisStep{}, errY
	}
	if errZ != nil && !errors.Is(errZ, ErrCannotProgress) {
		return AxisStep{}, AxisStep{}, AxisStep{}, errZ
	}
	return x, y, z, firstCannotProgress(errX, errY, errZ)
}

func firstCannotProgress(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// BoundaryEscapeStep computes a single-step boundary-crossing hop for an
// axis pinned at a block edge (spec.md §4.8): step by exactly 1 toward
// the target and report the resulting LCA height, which the caller must
// check against max_lca_height+1.
func BoundaryEscapeStep(c, t *big.Int) AxisStep {
	n := new(big.Int).Set(c)
	if t.Cmp(c) > 0 {
		n.Add(n, big.NewInt(1))
	} else {
		n.Sub(n, big.NewInt(1))
	}
	xor := new(big.Int).Xor(c, n)
	return AxisStep{Next: n, Height: xor.BitLen()}
}
