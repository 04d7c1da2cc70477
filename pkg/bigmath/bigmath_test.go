// Copyright 2025 Certen Protocol

package bigmath

import (
	"math/big"
	"testing"
)

func TestMinBigEndianBytes(t *testing.T) {
	cases := []struct {
		n    int64
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{255, []byte{0xff}},
		{256, []byte{0x01, 0x00}},
		{65535, []byte{0xff, 0xff}},
	}
	for _, c := range cases {
		got, err := MinBigEndianBytes(big.NewInt(c.n))
		if err != nil {
			t.Fatalf("MinBigEndianBytes(%d): %v", c.n, err)
		}
		if string(got) != string(c.want) {
			t.Errorf("MinBigEndianBytes(%d) = %x, want %x", c.n, got, c.want)
		}
	}
}

func TestMinBigEndianBytesNegative(t *testing.T) {
	if _, err := MinBigEndianBytes(big.NewInt(-1)); err != ErrNegative {
		t.Fatalf("expected ErrNegative, got %v", err)
	}
}

func TestSha256IntHex(t *testing.T) {
	got, err := Sha256IntHex(big.NewInt(0))
	if err != nil {
		t.Fatalf("Sha256IntHex(0): %v", err)
	}
	want := Sha256Hex([]byte{0x00})
	if got != want {
		t.Errorf("Sha256IntHex(0) = %s, want %s", got, want)
	}
	if len(got) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(got))
	}
}

func TestCantorPairKnownValues(t *testing.T) {
	cases := []struct{ a, b, want int64 }{
		{0, 1, 2},
		{2, 3, 18},
		{2, 18, 228},
		{0, 0, 0},
	}
	for _, c := range cases {
		got, err := CantorPair(big.NewInt(c.a), big.NewInt(c.b))
		if err != nil {
			t.Fatalf("CantorPair(%d,%d): %v", c.a, c.b, err)
		}
		if got.Cmp(big.NewInt(c.want)) != 0 {
			t.Errorf("CantorPair(%d,%d) = %s, want %d", c.a, c.b, got.String(), c.want)
		}
	}
}

func TestCantorPairNegative(t *testing.T) {
	if _, err := CantorPair(big.NewInt(-1), big.NewInt(0)); err != ErrNegative {
		t.Fatalf("expected ErrNegative, got %v", err)
	}
	if _, err := CantorPair(big.NewInt(0), big.NewInt(-1)); err != ErrNegative {
		t.Fatalf("expected ErrNegative, got %v", err)
	}
}

func TestCantorPairMovementProofExample(t *testing.T) {
	// From spec.md example 3: (0,0,0) -> (3,2,1)
	// cantor_x=228, cantor_y=228, cantor_z=2, combined=5452446953
	cx := big.NewInt(228)
	cy := big.NewInt(228)
	cz := big.NewInt(2)

	pairXY, err := CantorPair(cx, cy)
	if err != nil {
		t.Fatal(err)
	}
	combined, err := CantorPair(pairXY, cz)
	if err != nil {
		t.Fatal(err)
	}
	want := new(big.Int)
	want.SetString("5452446953", 10)
	if combined.Cmp(want) != 0 {
		t.Errorf("combined = %s, want %s", combined.String(), want.String())
	}
}
