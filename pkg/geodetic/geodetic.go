// Copyright 2025 Certen Protocol
//
// Package geodetic implements the canonical GPS -> dataspace coordinate
// pipeline (spec.md §4.3): WGS84 geodetic coordinates project to ECEF
// meters, permute into cyberspace axis naming, and round to unsigned
// 85-bit axis values. Every step runs in decimalmath's shared 96-digit,
// round-half-to-even context; nothing here touches a binary float, per
// the WGS84 reference shape borrowed (in spirit, not in arithmetic mode)
// from the classic Go GeographicLib port kept in this retrieval pack.
package geodetic

import (
	"fmt"
	"math/big"

	"github.com/cockroachdb/apd/v3"

	"github.com/arkin0x/cyberspace-cli/pkg/decimalmath"
)

// WGS84 ellipsoid constants, per spec.md §4.3.
var (
	wgs84A     = decimalmath.MustNew("6378137")
	wgs84F     *apd.Decimal // 1/298.257223563, computed in-context in init
	unitsPerKm *apd.Decimal
	axisCenter *apd.Decimal
)

func init() {
	// f = 1/298.257223563 computed in-context rather than hardcoded, so the
	// stored constant always reflects Ctx's precision.
	f, err := decimalmath.Quo(apd.New(1, 0), decimalmath.MustNew("298.257223563"))
	if err != nil {
		panic(err)
	}
	wgs84F = f

	// units_per_km = 2^85 / 96056
	twoPow85 := new(big.Int).Lsh(big.NewInt(1), 85)
	unitsPerKm, err = decimalmath.Quo(bigIntToDecimal(twoPow85), apd.New(96056, 0))
	if err != nil {
		panic(err)
	}

	// AXIS_CENTER = 2^84
	twoPow84 := new(big.Int).Lsh(big.NewInt(1), 84)
	axisCenter = bigIntToDecimal(twoPow84)
}

func bigIntToDecimal(n *big.Int) *apd.Decimal {
	d, _, err := apd.NewFromString(n.String())
	if err != nil {
		panic(err)
	}
	return d
}

// AxisBits is the width, in bits, of a single axis value.
const AxisBits = 85

// MaxAxisValue is 2^85 - 1, the largest legal axis value.
var MaxAxisValue = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), AxisBits), big.NewInt(1))

// Input is a GPS observation: latitude/longitude in decimal degrees
// (as strings, to avoid ever parsing through float64), altitude in
// meters, and whether altitude should be clamped to the surface (0).
type Input struct {
	LatitudeDeg  string
	LongitudeDeg string
	AltitudeM    string // empty means 0
	ClampSurface bool
}

// Axes is the result of the pipeline: three unsigned 85-bit axis values
// in cyberspace naming (X, Y, Z), before bit-interleaving.
type Axes struct {
	X, Y, Z *big.Int
}

// ToAxes runs the full canonical pipeline on in and returns the resulting
// 85-bit axis values, clamped into [0, 2^85-1].
func ToAxes(in Input) (Axes, error) {
	lat, err := decimalmath.New(in.LatitudeDeg)
	if err != nil {
		return Axes{}, fmt.Errorf("geodetic: parse latitude: %w", err)
	}
	lon, err := decimalmath.New(in.LongitudeDeg)
	if err != nil {
		return Axes{}, fmt.Errorf("geodetic: parse longitude: %w", err)
	}

	alt := apd.New(0, 0)
	if !in.ClampSurface && in.AltitudeM != "" {
		alt, err = decimalmath.New(in.AltitudeM)
		if err != nil {
			return Axes{}, fmt.Errorf("geodetic: parse altitude: %w", err)
		}
	}

	lat, err = clampLatitude(lat)
	if err != nil {
		return Axes{}, err
	}
	lon, err = WrapLongitude(lon)
	if err != nil {
		return Axes{}, err
	}

	xEcef, yEcef, zEcef, err := ecefMeters(lat, lon, alt)
	if err != nil {
		return Axes{}, err
	}

	// Cyberspace axis permutation: (X_cs, Y_cs, Z_cs) = (X_ecef, Z_ecef, Y_ecef).
	xCs, yCs, zCs := xEcef, zEcef, yEcef

	x, err := metersToAxisValue(xCs)
	if err != nil {
		return Axes{}, err
	}
	y, err := metersToAxisValue(yCs)
	if err != nil {
		return Axes{}, err
	}
	z, err := metersToAxisValue(zCs)
	if err != nil {
		return Axes{}, err
	}
	return Axes{X: x, Y: y, Z: z}, nil
}

// clampLatitude clamps lat into [-90, 90].
func clampLatitude(lat *apd.Decimal) (*apd.Decimal, error) {
	ninety := decimalmath.MustNew("90")
	negNinety := decimalmath.Neg(ninety)
	if decimalmath.Cmp(lat, ninety) > 0 {
		return ninety, nil
	}
	if decimalmath.Cmp(lat, negNinety) < 0 {
		return negNinety, nil
	}
	return lat, nil
}

// WrapLongitude wraps lon into [-180, 180) via (lon+180) mod 360 - 180.
// Idempotent: WrapLongitude(WrapLongitude(x)) == WrapLongitude(x).
func WrapLongitude(lon *apd.Decimal) (*apd.Decimal, error) {
	oneEighty := decimalmath.MustNew("180")
	threeSixty := decimalmath.MustNew("360")

	shifted, err := decimalmath.Add(lon, oneEighty)
	if err != nil {
		return nil, err
	}

	q := new(apd.Decimal)
	if _, err := decimalmath.Ctx.QuoInteger(q, shifted, threeSixty); err != nil {
		return nil, fmt.Errorf("geodetic: wrap longitude: %w", err)
	}
	// Floor q when shifted/threeSixty has a negative remainder, matching
	// Euclidean mod rather than truncated division.
	qTimes360, err := decimalmath.Mul(q, threeSixty)
	if err != nil {
		return nil, err
	}
	rem, err := decimalmath.Sub(shifted, qTimes360)
	if err != nil {
		return nil, err
	}
	zero := apd.New(0, 0)
	if decimalmath.Cmp(rem, zero) < 0 {
		rem, err = decimalmath.Add(rem, threeSixty)
		if err != nil {
			return nil, err
		}
	}
	if decimalmath.Cmp(rem, threeSixty) >= 0 {
		rem, err = decimalmath.Sub(rem, threeSixty)
		if err != nil {
			return nil, err
		}
	}
	return decimalmath.Sub(rem, oneEighty)
}

// ecefMeters converts geodetic lat/lon/alt into WGS84 ECEF meters, then
// returns (X,Y,Z) in the raw ECEF frame (before cyberspace permutation).
func ecefMeters(latDeg, lonDeg, altM *apd.Decimal) (x, y, z *apd.Decimal, err error) {
	latRad, err := degToRad(latDeg)
	if err != nil {
		return nil, nil, nil, err
	}
	lonRad, err := degToRad(lonDeg)
	if err != nil {
		return nil, nil, nil, err
	}

	sinLat, err := decimalmath.Sin(latRad)
	if err != nil {
		return nil, nil, nil, err
	}
	cosLat, err := decimalmath.Cos(latRad)
	if err != nil {
		return nil, nil, nil, err
	}
	sinLon, err := decimalmath.Sin(lonRad)
	if err != nil {
		return nil, nil, nil, err
	}
	cosLon, err := decimalmath.Cos(lonRad)
	if err != nil {
		return nil, nil, nil, err
	}

	// e^2 = f(2-f)
	two := apd.New(2, 0)
	twoMinusF, err := decimalmath.Sub(two, wgs84F)
	if err != nil {
		return nil, nil, nil, err
	}
	eSquared, err := decimalmath.Mul(wgs84F, twoMinusF)
	if err != nil {
		return nil, nil, nil, err
	}

	sinLatSq, err := decimalmath.Mul(sinLat, sinLat)
	if err != nil {
		return nil, nil, nil, err
	}
	eSinLatSq, err := decimalmath.Mul(eSquared, sinLatSq)
	if err != nil {
		return nil, nil, nil, err
	}
	one := apd.New(1, 0)
	oneMinus, err := decimalmath.Sub(one, eSinLatSq)
	if err != nil {
		return nil, nil, nil, err
	}
	sqrtTerm, err := decimalmath.Sqrt(oneMinus)
	if err != nil {
		return nil, nil, nil, err
	}
	n, err := decimalmath.Quo(wgs84A, sqrtTerm)
	if err != nil {
		return nil, nil, nil, err
	}

	nPlusH, err := decimalmath.Add(n, altM)
	if err != nil {
		return nil, nil, nil, err
	}

	x, err = decimalmath.Mul(nPlusH, cosLat)
	if err != nil {
		return nil, nil, nil, err
	}
	x, err = decimalmath.Mul(x, cosLon)
	if err != nil {
		return nil, nil, nil, err
	}

	y, err = decimalmath.Mul(nPlusH, cosLat)
	if err != nil {
		return nil, nil, nil, err
	}
	y, err = decimalmath.Mul(y, sinLon)
	if err != nil {
		return nil, nil, nil, err
	}

	nOneMinusESq, err := decimalmath.Mul(n, oneMinusE(eSquared))
	if err != nil {
		return nil, nil, nil, err
	}
	zFactor, err := decimalmath.Add(nOneMinusESq, altM)
	if err != nil {
		return nil, nil, nil, err
	}
	z, err = decimalmath.Mul(zFactor, sinLat)
	if err != nil {
		return nil, nil, nil, err
	}

	return x, y, z, nil
}

func oneMinusE(eSquared *apd.Decimal) *apd.Decimal {
	one := apd.New(1, 0)
	r, err := decimalmath.Sub(one, eSquared)
	if err != nil {
		panic(err) // Sub on two well-formed in-context decimals cannot fail.
	}
	return r
}

// degToRad converts decimal degrees to decimal radians using Ctx's pi.
func degToRad(deg *apd.Decimal) (*apd.Decimal, error) {
	oneEighty := decimalmath.MustNew("180")
	r, err := decimalmath.Mul(deg, decimalmath.Pi)
	if err != nil {
		return nil, err
	}
	return decimalmath.Quo(r, oneEighty)
}

// metersToAxisValue converts a single permuted ECEF axis (in meters) into
// kilometers from the dataspace center, then into an unsigned 85-bit axis
// value, per spec.md §4.3.
func metersToAxisValue(meters *apd.Decimal) (*big.Int, error) {
	km, err := decimalmath.Quo(meters, apd.New(1000, 0))
	if err != nil {
		return nil, err
	}
	scaled, err := decimalmath.Mul(km, unitsPerKm)
	if err != nil {
		return nil, err
	}
	u, err := decimalmath.Add(scaled, axisCenter)
	if err != nil {
		return nil, err
	}
	rounded, err := decimalmath.RoundToIntHalfEven(u)
	if err != nil {
		return nil, err
	}
	return clampAxis(rounded), nil
}

func clampAxis(v *big.Int) *big.Int {
	if v.Sign() < 0 {
		return big.NewInt(0)
	}
	if v.Cmp(MaxAxisValue) > 0 {
		return new(big.Int).Set(MaxAxisValue)
	}
	return v
}
