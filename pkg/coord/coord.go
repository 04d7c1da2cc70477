// Copyright 2025 Certen Protocol
//
// Package coord implements the 256-bit coordinate codec (spec.md §4.4):
// bit-interleaving three 85-bit axis values and a plane bit into a single
// 256-bit integer and back, the sector quotient used for spatial indexing,
// and the coordinate hex encoding named in spec.md §6.
package coord

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/cockroachdb/apd/v3"

	"github.com/arkin0x/cyberspace-cli/pkg/decimalmath"
)

// AxisBits is the width, in bits, of a single axis value (spec.md §3).
const AxisBits = 85

// CoordBits is the total width of a coordinate: 1 plane bit + 3*85 axis bits.
const CoordBits = 1 + 3*AxisBits

// SectorBits is the default per-axis sector quotient width (spec.md §3).
const SectorBits = 30

// MaxAxisValue is 2^85 - 1.
var MaxAxisValue = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), AxisBits), big.NewInt(1))

// ErrAxisOutOfRange is returned when an axis value falls outside
// [0, 2^85 - 1].
var ErrAxisOutOfRange = errors.New("coord: axis value out of range")

// ErrInvalidHex is returned by HexToCoord on malformed input.
var ErrInvalidHex = errors.New("coord: invalid coordinate hex")

// checkAxis validates that v is a legal axis value.
func checkAxis(v *big.Int) error {
	if v.Sign() < 0 || v.Cmp(MaxAxisValue) > 0 {
		return fmt.Errorf("%w: %s", ErrAxisOutOfRange, v.String())
	}
	return nil
}

// Encode bit-interleaves (x, y, z, plane) into a single 256-bit coordinate.
// Bit 0 is the plane bit; for i in [0,84], bit 1+3i is z's bit i, bit 2+3i
// is y's bit i, bit 3+3i is x's bit i.
func Encode(x, y, z *big.Int, plane uint) (*big.Int, error) {
	if err := checkAxis(x); err != nil {
		return nil, fmt.Errorf("x: %w", err)
	}
	if err := checkAxis(y); err != nil {
		return nil, fmt.Errorf("y: %w", err)
	}
	if err := checkAxis(z); err != nil {
		return nil, fmt.Errorf("z: %w", err)
	}
	if plane > 1 {
		return nil, fmt.Errorf("coord: plane bit must be 0 or 1, got %d", plane)
	}

	out := new(big.Int)
	if plane == 1 {
		out.SetBit(out, 0, 1)
	}
	for i := 0; i < AxisBits; i++ {
		if x.Bit(i) == 1 {
			out.SetBit(out, 3+3*i, 1)
		}
		if y.Bit(i) == 1 {
			out.SetBit(out, 2+3*i, 1)
		}
		if z.Bit(i) == 1 {
			out.SetBit(out, 1+3*i, 1)
		}
	}
	return out, nil
}

// Decode is the inverse of Encode: it demultiplexes a 256-bit coordinate
// back into (x, y, z, plane).
func Decode(c *big.Int) (x, y, z *big.Int, plane uint) {
	x = new(big.Int)
	y = new(big.Int)
	z = new(big.Int)
	plane = c.Bit(0)
	for i := 0; i < AxisBits; i++ {
		if c.Bit(3+3*i) == 1 {
			x.SetBit(x, i, 1)
		}
		if c.Bit(2+3*i) == 1 {
			y.SetBit(y, i, 1)
		}
		if c.Bit(1+3*i) == 1 {
			z.SetBit(z, i, 1)
		}
	}
	return x, y, z, plane
}

// ToHex renders a coordinate as 64 lowercase hex characters, left-padded
// with zeros.
func ToHex(c *big.Int) string {
	b := c.Bytes()
	full := make([]byte, 32)
	copy(full[32-len(b):], b)
	return hex.EncodeToString(full)
}

// ToHex0x renders a coordinate with github.com/ethereum/go-ethereum's
// hexutil.Encode: "0x"-prefixed lowercase hex of the coordinate's bytes,
// without left-padding to 64 characters.
func ToHex0x(c *big.Int) string {
	return hexutil.Encode(c.Bytes())
}

// HexToCoord parses a coordinate hex string per spec.md §6: an optional
// leading "0x"/"0X", hex digits only, left-padded to 64 characters on
// input, rejecting anything longer than 64 hex characters or containing
// non-hex characters.
func HexToCoord(s string) (*big.Int, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) > 64 {
		return nil, fmt.Errorf("%w: %d hex chars, max 64", ErrInvalidHex, len(s))
	}
	if len(s)%2 != 0 {
		s = "0" + s
	}
	padded := strings.Repeat("0", 64-len(s)) + s
	raw, err := hex.DecodeString(padded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return new(big.Int).SetBytes(raw), nil
}

// Sector is the per-axis quotient (spec.md §3, §4.4): (sx, sy, sz) =
// (x>>SectorBits, y>>SectorBits, z>>SectorBits). Sectors are independent
// of the plane bit.
type Sector struct {
	X, Y, Z *big.Int
}

// SectorOf computes the sector containing (x, y, z).
func SectorOf(x, y, z *big.Int) Sector {
	return Sector{
		X: new(big.Int).Rsh(x, SectorBits),
		Y: new(big.Int).Rsh(y, SectorBits),
		Z: new(big.Int).Rsh(z, SectorBits),
	}
}

// Tag renders the sector as the ASCII "<sx>-<sy>-<sz>" form used in event
// tags (spec.md §6).
func (s Sector) Tag() string {
	return fmt.Sprintf("%s-%s-%s", s.X.String(), s.Y.String(), s.Z.String())
}

// Bounds returns the per-axis [base, base+2^SectorBits-1] bounds for this
// sector.
func (s Sector) Bounds() (lo, hi Sector) {
	blockSize := new(big.Int).Lsh(big.NewInt(1), SectorBits)
	lastOffset := new(big.Int).Sub(blockSize, big.NewInt(1))

	loX := new(big.Int).Lsh(s.X, SectorBits)
	loY := new(big.Int).Lsh(s.Y, SectorBits)
	loZ := new(big.Int).Lsh(s.Z, SectorBits)

	return Sector{X: loX, Y: loY, Z: loZ},
		Sector{
			X: new(big.Int).Add(loX, lastOffset),
			Y: new(big.Int).Add(loY, lastOffset),
			Z: new(big.Int).Add(loZ, lastOffset),
		}
}

// LocalNormalized is the sector-local normalized coordinate of a point
// within its sector cube: local_a = (a - base_a + 0.5)/2^SectorBits - 0.5,
// which places the point at the center of its integer cell, in [-0.5,0.5).
type LocalNormalized struct {
	X, Y, Z *apd.Decimal
}

// LocalNormalize computes the sector-local normalized coordinate of
// (x, y, z) within the given sector, per spec.md §4.4. This is a display
// helper, not part of the hashed/consensus-critical path, but it still
// runs entirely in decimalmath's context for consistency.
func LocalNormalize(x, y, z *big.Int, sec Sector) LocalNormalized {
	lo, _ := sec.Bounds()
	blockSize := bigToDecimal(new(big.Int).Lsh(big.NewInt(1), SectorBits))

	half := decimalmath.MustNew("0.5")
	localOf := func(a *big.Int, base *big.Int) *apd.Decimal {
		offset := new(big.Int).Sub(a, base)
		offsetPlusHalf, err := decimalmath.Add(bigToDecimal(offset), half)
		if err != nil {
			panic(err)
		}
		ratio, err := decimalmath.Quo(offsetPlusHalf, blockSize)
		if err != nil {
			panic(err)
		}
		result, err := decimalmath.Sub(ratio, half)
		if err != nil {
			panic(err)
		}
		return result
	}

	return LocalNormalized{
		X: localOf(x, lo.X),
		Y: localOf(y, lo.Y),
		Z: localOf(z, lo.Z),
	}
}

func bigToDecimal(n *big.Int) *apd.Decimal {
	d, _, err := apd.NewFromString(n.String())
	if err != nil {
		panic(err)
	}
	return d
}
