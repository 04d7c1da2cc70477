// Copyright 2025 Certen Protocol

package decimalmath

import (
	"math/big"
	"testing"

	"github.com/cockroachdb/apd/v3"
)

func TestPiStrLength(t *testing.T) {
	digits := 0
	for _, r := range PiStr {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits != 101 {
		t.Fatalf("PiStr has %d digits, want 101", digits)
	}
}

func TestRoundToIntHalfEven(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"2.5", 2},
		{"3.5", 4},
		{"-2.5", -2},
		{"0.5", 0},
		{"1.5", 2},
		{"1.4999999999", 1},
		{"1.5000000001", 2},
	}
	for _, c := range cases {
		d := MustNew(c.in)
		got, err := RoundToIntHalfEven(d)
		if err != nil {
			t.Fatalf("RoundToIntHalfEven(%s): %v", c.in, err)
		}
		if got.Cmp(big.NewInt(c.want)) != 0 {
			t.Errorf("RoundToIntHalfEven(%s) = %s, want %d", c.in, got.String(), c.want)
		}
	}
}

func TestSqrt(t *testing.T) {
	four := apd.New(4, 0)
	got, err := Sqrt(four)
	if err != nil {
		t.Fatalf("Sqrt(4): %v", err)
	}
	want := apd.New(2, 0)
	if Cmp(got, want) != 0 {
		t.Errorf("Sqrt(4) = %s, want 2", got.String())
	}
}

func TestSinCosZero(t *testing.T) {
	zero := apd.New(0, 0)
	s, err := Sin(zero)
	if err != nil {
		t.Fatalf("Sin(0): %v", err)
	}
	if s.Sign() != 0 {
		t.Errorf("Sin(0) = %s, want 0", s.String())
	}
	c, err := Cos(zero)
	if err != nil {
		t.Fatalf("Cos(0): %v", err)
	}
	one := apd.New(1, 0)
	if Cmp(c, one) != 0 {
		t.Errorf("Cos(0) = %s, want 1", c.String())
	}
}

func TestSinCosHalfPi(t *testing.T) {
	s, err := Sin(HalfPi)
	if err != nil {
		t.Fatalf("Sin(pi/2): %v", err)
	}
	one := apd.New(1, 0)
	diff, err := Sub(s, one)
	if err != nil {
		t.Fatal(err)
	}
	tol := MustNew("1E-80")
	absDiff := new(apd.Decimal).Abs(diff)
	if Cmp(absDiff, tol) > 0 {
		t.Errorf("Sin(pi/2) = %s, want ~1", s.String())
	}

	c, err := Cos(HalfPi)
	if err != nil {
		t.Fatalf("Cos(pi/2): %v", err)
	}
	absC := new(apd.Decimal).Abs(c)
	if Cmp(absC, tol) > 0 {
		t.Errorf("Cos(pi/2) = %s, want ~0", c.String())
	}
}

func TestSinCosPythagoreanIdentity(t *testing.T) {
	x := MustNew("1.2345")
	s, err := Sin(x)
	if err != nil {
		t.Fatal(err)
	}
	c, err := Cos(x)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := Mul(s, s)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := Mul(c, c)
	if err != nil {
		t.Fatal(err)
	}
	sum, err := Add(s2, c2)
	if err != nil {
		t.Fatal(err)
	}
	one := apd.New(1, 0)
	diff, err := Sub(sum, one)
	if err != nil {
		t.Fatal(err)
	}
	tol := MustNew("1E-70")
	absDiff := new(apd.Decimal).Abs(diff)
	if Cmp(absDiff, tol) > 0 {
		t.Errorf("sin^2+cos^2 = %s, want ~1", sum.String())
	}
}
