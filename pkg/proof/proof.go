// Copyright 2025 Certen Protocol
//
// Package proof implements the movement proof algorithm (spec.md §4.5):
// the least-common-ancestor height between two axis values, the bottom-up
// Cantor-pairing reduction of the aligned subtree between them, and the
// 3D combination into a single SHA-256 proof hash.
//
// The Cantor tree reduction here is the same bottom-up, level-by-level
// binary-combine shape as this repository's Merkle tree construction
// (pkg/merkle.BuildTree): a flat slice of leaves is repeatedly folded
// pairwise until one root remains. Cantor pairing stands in for SHA-256
// concatenation as the combining operator.
package proof

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/arkin0x/cyberspace-cli/pkg/bigmath"
)

// DefaultMaxComputeHeight is the default cap on a single axis's LCA
// height before the implementation refuses to compute a Cantor root
// (spec.md §4.5). Callers needing a different bound pass it explicitly.
const DefaultMaxComputeHeight = 20

// ErrHeightTooLarge is returned when an axis's LCA height exceeds the
// caller-provided max_compute_height bound.
var ErrHeightTooLarge = errors.New("proof: LCA height exceeds max_compute_height")

// ErrTooManyLeaves is returned when 2^h would exceed the implementation's
// maximum array index.
var ErrTooManyLeaves = errors.New("proof: 2^h exceeds maximum addressable leaf count")

// maxHeightForIntLeaves is the largest height for which 2^h fits in an int
// on a 32-bit platform with headroom to spare; spec.md §4.5 requires this
// implementation-defined refusal in addition to the caller's bound.
const maxHeightForIntLeaves = 30

// LCAHeight returns the least-common-ancestor height between two axis
// values: 0 if they are equal, otherwise bit_length(v1 XOR v2).
func LCAHeight(v1, v2 *big.Int) int {
	if v1.Cmp(v2) == 0 {
		return 0
	}
	xor := new(big.Int).Xor(v1, v2)
	return xor.BitLen()
}

// AlignedSubtreeBase returns the base of the height-h aligned subtree
// containing v: (v >> h) << h.
func AlignedSubtreeBase(v *big.Int, h int) *big.Int {
	base := new(big.Int).Rsh(v, uint(h))
	return base.Lsh(base, uint(h))
}

// CantorRoot computes the bottom-up Cantor-pairing reduction of the 2^h
// consecutive leaves starting at base (spec.md §4.5). CantorRoot(base, 0)
// is base itself.
func CantorRoot(base *big.Int, h int) (*big.Int, error) {
	if h < 0 {
		return nil, fmt.Errorf("proof: negative height %d", h)
	}
	if h == 0 {
		return new(big.Int).Set(base), nil
	}
	if h > maxHeightForIntLeaves {
		return nil, fmt.Errorf("%w: h=%d", ErrTooManyLeaves, h)
	}

	n := 1 << uint(h)
	level := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		level[i] = new(big.Int).Add(base, big.NewInt(int64(i)))
	}

	for len(level) > 1 {
		next := make([]*big.Int, len(level)/2)
		for i := range next {
			paired, err := bigmath.CantorPair(level[2*i], level[2*i+1])
			if err != nil {
				return nil, err
			}
			next[i] = paired
		}
		level = next
	}
	return level[0], nil
}

// AxisProof is the per-axis leg of a movement proof: the LCA height
// between the endpoints and the Cantor root of their aligned subtree.
type AxisProof struct {
	Height int
	Base   *big.Int
	Cantor *big.Int
}

// AxisMove computes the per-axis proof leg between v1 and v2, refusing to
// compute if the LCA height exceeds maxComputeHeight.
func AxisMove(v1, v2 *big.Int, maxComputeHeight int) (AxisProof, error) {
	h := LCAHeight(v1, v2)
	if h > maxComputeHeight {
		return AxisProof{}, fmt.Errorf("%w: height=%d max=%d", ErrHeightTooLarge, h, maxComputeHeight)
	}
	base := AlignedSubtreeBase(v1, h)
	cantor, err := CantorRoot(base, h)
	if err != nil {
		return AxisProof{}, err
	}
	return AxisProof{Height: h, Base: base, Cantor: cantor}, nil
}

// MovementProof is the full 3D movement proof record (spec.md §3, §4.5):
// per-axis Cantor roots, their combination, and the resulting proof hash.
type MovementProof struct {
	X, Y, Z  AxisProof
	Combined *big.Int
	Hash     string // 64 lowercase hex chars
}

// Compute builds the full movement proof between (x1,y1,z1) and
// (x2,y2,z2), refusing any axis whose LCA height exceeds
// maxComputeHeight.
func Compute(x1, y1, z1, x2, y2, z2 *big.Int, maxComputeHeight int) (MovementProof, error) {
	xp, err := AxisMove(x1, x2, maxComputeHeight)
	if err != nil {
		return MovementProof{}, fmt.Errorf("x axis: %w", err)
	}
	yp, err := AxisMove(y1, y2, maxComputeHeight)
	if err != nil {
		return MovementProof{}, fmt.Errorf("y axis: %w", err)
	}
	zp, err := AxisMove(z1, z2, maxComputeHeight)
	if err != nil {
		return MovementProof{}, fmt.Errorf("z axis: %w", err)
	}

	pairXY, err := bigmath.CantorPair(xp.Cantor, yp.Cantor)
	if err != nil {
		return MovementProof{}, err
	}
	combined, err := bigmath.CantorPair(pairXY, zp.Cantor)
	if err != nil {
		return MovementProof{}, err
	}
	hash, err := bigmath.Sha256IntHex(combined)
	if err != nil {
		return MovementProof{}, err
	}

	return MovementProof{X: xp, Y: yp, Z: zp, Combined: combined, Hash: hash}, nil
}

// EncryptionKey is an alias for the proof hash: the same SHA-256 hex
// string doubles as the location-based lookup key (spec.md §4.5).
func (p MovementProof) EncryptionKey() string {
	return p.Hash
}

// DiscoveryID is SHA-256 of the proof hash's raw bytes: one additional
// hash beyond the encryption key (spec.md glossary).
func (p MovementProof) DiscoveryID() (string, error) {
	raw, err := hex.DecodeString(p.Hash)
	if err != nil {
		return "", fmt.Errorf("proof: decode proof hash: %w", err)
	}
	return bigmath.Sha256Hex(raw), nil
}
