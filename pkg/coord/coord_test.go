// Copyright 2025 Certen Protocol

package coord

import (
	"math/big"
	"math/rand"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	// spec.md example 1: x=100, y=200, z=300, plane=0 -> coord = 0x2b50e80
	c, err := Encode(big.NewInt(100), big.NewInt(200), big.NewInt(300), 0)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := new(big.Int)
	want.SetString("2b50e80", 16)
	if c.Cmp(want) != 0 {
		t.Errorf("Encode(100,200,300,0) = %s, want %s", c.Text(16), want.Text(16))
	}

	x, y, z, plane := Decode(c)
	if x.Cmp(big.NewInt(100)) != 0 || y.Cmp(big.NewInt(200)) != 0 || z.Cmp(big.NewInt(300)) != 0 || plane != 0 {
		t.Errorf("Decode = (%s,%s,%s,%d), want (100,200,300,0)", x, y, z, plane)
	}
}

func TestEncodeDecodeRoundTripRandom(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		x := randomAxis(r)
		y := randomAxis(r)
		z := randomAxis(r)
		plane := uint(r.Intn(2))

		c, err := Encode(x, y, z, plane)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		dx, dy, dz, dp := Decode(c)
		if dx.Cmp(x) != 0 || dy.Cmp(y) != 0 || dz.Cmp(z) != 0 || dp != plane {
			t.Fatalf("round trip mismatch: in=(%s,%s,%s,%d) out=(%s,%s,%s,%d)", x, y, z, plane, dx, dy, dz, dp)
		}
	}
}

func randomAxis(r *rand.Rand) *big.Int {
	buf := make([]byte, 11) // 88 bits, truncated to 85 below
	r.Read(buf)
	v := new(big.Int).SetBytes(buf)
	return v.Mod(v, new(big.Int).Add(MaxAxisValue, big.NewInt(1)))
}

func TestEncodeRejectsOutOfRangeAxis(t *testing.T) {
	tooBig := new(big.Int).Add(MaxAxisValue, big.NewInt(1))
	if _, err := Encode(tooBig, big.NewInt(0), big.NewInt(0), 0); err == nil {
		t.Fatal("expected error for out-of-range axis")
	}
	if _, err := Encode(big.NewInt(-1), big.NewInt(0), big.NewInt(0), 0); err == nil {
		t.Fatal("expected error for negative axis")
	}
}

func TestHexToCoordAcceptsPrefixAndPadding(t *testing.T) {
	c1, err := HexToCoord("0x2b50e80")
	if err != nil {
		t.Fatalf("HexToCoord with 0x: %v", err)
	}
	c2, err := HexToCoord("2b50e80")
	if err != nil {
		t.Fatalf("HexToCoord without prefix: %v", err)
	}
	if c1.Cmp(c2) != 0 {
		t.Errorf("prefixed and unprefixed parse differ: %s vs %s", c1, c2)
	}
	if len(ToHex(c1)) != 64 {
		t.Errorf("ToHex length = %d, want 64", len(ToHex(c1)))
	}
}

func TestHexToCoordRejectsTooLong(t *testing.T) {
	tooLong := make([]byte, 65)
	for i := range tooLong {
		tooLong[i] = '1'
	}
	if _, err := HexToCoord(string(tooLong)); err == nil {
		t.Fatal("expected error for hex string longer than 64 chars")
	}
}

func TestHexToCoordRejectsNonHex(t *testing.T) {
	if _, err := HexToCoord("not-hex-zzzz"); err == nil {
		t.Fatal("expected error for non-hex input")
	}
}

func TestSectorOf(t *testing.T) {
	x := new(big.Int).Lsh(big.NewInt(5), SectorBits)
	x.Add(x, big.NewInt(123))
	sec := SectorOf(x, big.NewInt(0), big.NewInt(0))
	if sec.X.Cmp(big.NewInt(5)) != 0 {
		t.Errorf("sector.X = %s, want 5", sec.X)
	}
	if sec.Tag() == "" {
		t.Errorf("sector tag must not be empty")
	}
}

func TestSectorBounds(t *testing.T) {
	sec := Sector{X: big.NewInt(1), Y: big.NewInt(0), Z: big.NewInt(0)}
	lo, hi := sec.Bounds()
	blockSize := new(big.Int).Lsh(big.NewInt(1), SectorBits)
	if lo.X.Cmp(blockSize) != 0 {
		t.Errorf("lo.X = %s, want %s", lo.X, blockSize)
	}
	want := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(2), SectorBits), big.NewInt(1))
	if hi.X.Cmp(want) != 0 {
		t.Errorf("hi.X = %s, want %s", hi.X, want)
	}
}
