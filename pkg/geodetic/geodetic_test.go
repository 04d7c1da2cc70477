// Copyright 2025 Certen Protocol

package geodetic

import (
	"testing"

	"github.com/arkin0x/cyberspace-cli/pkg/coord"
	"github.com/arkin0x/cyberspace-cli/pkg/decimalmath"
)

func TestWrapLongitudeRange(t *testing.T) {
	cases := []string{"0", "180", "-180", "359.9999", "-359.9999", "720", "-540"}
	oneEighty := decimalmath.MustNew("180")
	negOneEighty := decimalmath.MustNew("-180")
	for _, c := range cases {
		lon := decimalmath.MustNew(c)
		wrapped, err := WrapLongitude(lon)
		if err != nil {
			t.Fatalf("WrapLongitude(%s): %v", c, err)
		}
		if decimalmath.Cmp(wrapped, negOneEighty) < 0 || decimalmath.Cmp(wrapped, oneEighty) >= 0 {
			t.Errorf("WrapLongitude(%s) = %s, out of [-180,180)", c, wrapped.String())
		}
	}
}

func TestWrapLongitudeIdempotent(t *testing.T) {
	for _, c := range []string{"45.5", "-200", "543.21"} {
		lon := decimalmath.MustNew(c)
		once, err := WrapLongitude(lon)
		if err != nil {
			t.Fatal(err)
		}
		twice, err := WrapLongitude(once)
		if err != nil {
			t.Fatal(err)
		}
		if decimalmath.Cmp(once, twice) != 0 {
			t.Errorf("WrapLongitude not idempotent for %s: once=%s twice=%s", c, once.String(), twice.String())
		}
	}
}

func TestClampLatitude(t *testing.T) {
	cases := []struct{ in, want string }{
		{"100", "90"},
		{"-100", "-90"},
		{"45", "45"},
		{"90", "90"},
		{"-90", "-90"},
	}
	for _, c := range cases {
		got, err := clampLatitude(decimalmath.MustNew(c.in))
		if err != nil {
			t.Fatal(err)
		}
		want := decimalmath.MustNew(c.want)
		if decimalmath.Cmp(got, want) != 0 {
			t.Errorf("clampLatitude(%s) = %s, want %s", c.in, got.String(), c.want)
		}
	}
}

func TestToAxesWithinBounds(t *testing.T) {
	axes, err := ToAxes(Input{LatitudeDeg: "0", LongitudeDeg: "0", ClampSurface: true})
	if err != nil {
		t.Fatalf("ToAxes: %v", err)
	}
	if axes.X.Sign() < 0 || axes.Y.Sign() < 0 || axes.Z.Sign() < 0 {
		t.Errorf("axis value is negative: x=%s y=%s z=%s", axes.X, axes.Y, axes.Z)
	}
	if axes.X.Cmp(MaxAxisValue) > 0 || axes.Y.Cmp(MaxAxisValue) > 0 || axes.Z.Cmp(MaxAxisValue) > 0 {
		t.Errorf("axis value exceeds MaxAxisValue")
	}
}

func TestGPSGoldenVectors(t *testing.T) {
	// Consensus-critical: independent implementations must agree on these
	// coordinates bit-for-bit.
	cases := []struct {
		name, lat, lon, wantHex string
	}{
		{"origin_equator_prime", "0", "0", "e040009249248048201201000049208000201009201200000040049201048240"},
		{"north_pole", "90", "0", "e020004920020000120820120124900900100024124904920904124120100124"},
		{"london", "51.5074", "-0.1278", "c49eeba5feb124bd3ec0f3a132977c8c33edbb111fdfd02cb35cea53075b9846"},
		{"nyc", "40.7128", "-74.0060", "c4943fa01bb22b95946ec1605717047a3b79bd717d5d84e35a12cb56df76134a"},
	}
	for _, c := range cases {
		axes, err := ToAxes(Input{LatitudeDeg: c.lat, LongitudeDeg: c.lon, ClampSurface: true})
		if err != nil {
			t.Fatalf("%s: ToAxes: %v", c.name, err)
		}
		coordVal, err := coord.Encode(axes.X, axes.Y, axes.Z, 0)
		if err != nil {
			t.Fatalf("%s: coord.Encode: %v", c.name, err)
		}
		if got := coord.ToHex(coordVal); got != c.wantHex {
			t.Errorf("%s: coord hex = %s, want %s", c.name, got, c.wantHex)
		}
	}
}

func TestToAxesNorthPoleDistinctFromEquator(t *testing.T) {
	equator, err := ToAxes(Input{LatitudeDeg: "0", LongitudeDeg: "0", ClampSurface: true})
	if err != nil {
		t.Fatal(err)
	}
	pole, err := ToAxes(Input{LatitudeDeg: "90", LongitudeDeg: "0", ClampSurface: true})
	if err != nil {
		t.Fatal(err)
	}
	if equator.X.Cmp(pole.X) == 0 && equator.Y.Cmp(pole.Y) == 0 && equator.Z.Cmp(pole.Z) == 0 {
		t.Errorf("equator and north pole produced the same axes")
	}
}
