// Copyright 2025 Certen Protocol
//
// Package decimalmath is the deterministic math kernel the geodetic
// pipeline runs on. It wraps github.com/cockroachdb/apd/v3 behind a small,
// purpose-built surface so the rest of the cyberspace core never touches
// apd directly: every caller gets the same 96-significant-digit,
// round-half-to-even context, and no caller can accidentally introduce a
// binary float into the GPS path.
//
// The single most important invariant in this package: nothing in here
// ever converts through float64. Two independent implementations of this
// core must agree bit-for-bit on every rounded axis value, and binary
// floating point does not give that guarantee.
package decimalmath

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/cockroachdb/apd/v3"
)

// Precision is the number of significant decimal digits carried through
// every operation in the geodetic pipeline, per spec.md §4.2.
const Precision = 96

// TrigEps is the Taylor series termination threshold: accumulation stops
// once the current term's absolute value falls below this bound.
const TrigEps = "1E-88"

// TrigMaxIter is the hard iteration cap for the sin/cos Taylor series.
// Failing to converge within this many terms is a fatal implementation
// error, not a domain error.
const TrigMaxIter = 256

// PiStr is the canonical value of pi, truncated (not rounded) to 101
// digits. This exact string is normative: substituting a longer or
// differently-rounded value changes final axis rounding near boundary
// points, per spec.md §9.
const PiStr = "3.1415926535897932384626433832795028841971693993751058209749445923078164062862089986280348253421170679"

// Ctx is the shared arithmetic context: 96 significant digits, round half
// to even (banker's rounding). Every Decimal operation in this package
// goes through Ctx so precision and rounding mode are never ad hoc.
var Ctx = func() *apd.Context {
	c := apd.BaseContext.WithPrecision(Precision)
	c.Rounding = apd.RoundHalfEven
	return c
}()

// ErrNonConvergent is returned when a Taylor series fails to converge
// within TrigMaxIter iterations. Per spec.md §4.2 this indicates a broken
// decimal context, not a recoverable input error.
var ErrNonConvergent = errors.New("decimalmath: trig series did not converge within iteration cap")

// New constructs a Decimal from a decimal string, e.g. "51.5074" or
// "-0.1278". It never parses through float64.
func New(s string) (*apd.Decimal, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("decimalmath: parse %q: %w", s, err)
	}
	return d, nil
}

// MustNew is New but panics on error; intended for package-level constants
// built from literal strings that are known-good at compile time.
func MustNew(s string) *apd.Decimal {
	d, err := New(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Pi, TwoPi and HalfPi are derived once from PiStr in the package context.
var (
	Pi     = MustNew(PiStr)
	TwoPi  = mustMul(Pi, apd.New(2, 0))
	HalfPi = mustQuo(Pi, apd.New(2, 0))
)

func mustMul(a, b *apd.Decimal) *apd.Decimal {
	r, err := Mul(a, b)
	if err != nil {
		panic(err)
	}
	return r
}

func mustQuo(a, b *apd.Decimal) *apd.Decimal {
	r, err := Quo(a, b)
	if err != nil {
		panic(err)
	}
	return r
}

// Add returns a+b rounded to Ctx.
func Add(a, b *apd.Decimal) (*apd.Decimal, error) {
	r := new(apd.Decimal)
	_, err := Ctx.Add(r, a, b)
	return r, err
}

// Sub returns a-b rounded to Ctx.
func Sub(a, b *apd.Decimal) (*apd.Decimal, error) {
	r := new(apd.Decimal)
	_, err := Ctx.Sub(r, a, b)
	return r, err
}

// Mul returns a*b rounded to Ctx.
func Mul(a, b *apd.Decimal) (*apd.Decimal, error) {
	r := new(apd.Decimal)
	_, err := Ctx.Mul(r, a, b)
	return r, err
}

// Quo returns a/b rounded to Ctx.
func Quo(a, b *apd.Decimal) (*apd.Decimal, error) {
	r := new(apd.Decimal)
	_, err := Ctx.Quo(r, a, b)
	return r, err
}

// Sqrt returns sqrt(a) rounded to Ctx, using the decimal library's
// built-in square root under the shared context, per spec.md §4.2.
func Sqrt(a *apd.Decimal) (*apd.Decimal, error) {
	r := new(apd.Decimal)
	_, err := Ctx.Sqrt(r, a)
	return r, err
}

// Neg returns -a.
func Neg(a *apd.Decimal) *apd.Decimal {
	r := new(apd.Decimal)
	r.Neg(a)
	return r
}

// Cmp compares a and b: -1 if a<b, 0 if a==b, 1 if a>b.
func Cmp(a, b *apd.Decimal) int {
	return a.Cmp(b)
}

// RoundToIntHalfEven rounds a to the nearest integer using round-half-to-
// even under Ctx, and returns it as a *big.Int. This is the only place a
// Decimal is allowed to leave the package as an integer, and it is always
// via this explicit, context-driven rounding — never by truncation.
func RoundToIntHalfEven(a *apd.Decimal) (*big.Int, error) {
	rounded := new(apd.Decimal)
	if _, err := Ctx.Quantize(rounded, a, 0); err != nil {
		return nil, fmt.Errorf("decimalmath: quantize to integer: %w", err)
	}
	coeff := new(big.Int).Set(rounded.Coeff.MathBigInt())
	if rounded.Negative {
		coeff.Neg(coeff)
	}
	if rounded.Exponent > 0 {
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(rounded.Exponent)), nil)
		coeff.Mul(coeff, scale)
	}
	return coeff, nil
}

// Sin and Cos compute sin(x) and cos(x) for a decimal radian x, sharing
// the range reduction and quadrant folding described in spec.md §4.2.
func Sin(x *apd.Decimal) (*apd.Decimal, error) {
	s, _, err := sinCos(x)
	return s, err
}

func Cos(x *apd.Decimal) (*apd.Decimal, error) {
	_, c, err := sinCos(x)
	return c, err
}

// sinCos performs the full reduce -> fold -> Taylor series pipeline once
// and returns both sin(x) and cos(x), since they share range reduction.
func sinCos(x *apd.Decimal) (sinOut, cosOut *apd.Decimal, err error) {
	reduced, err := reduceModTwoPi(x)
	if err != nil {
		return nil, nil, err
	}

	// Fold into [-pi/2, pi/2].
	folded := reduced
	cosSign := apd.New(1, 0)
	if Cmp(folded, HalfPi) > 0 {
		folded, err = Sub(Pi, folded)
		if err != nil {
			return nil, nil, err
		}
		cosSign = apd.New(-1, 0)
	} else if Cmp(folded, Neg(HalfPi)) < 0 {
		negPi := Neg(Pi)
		folded, err = Sub(negPi, folded)
		if err != nil {
			return nil, nil, err
		}
		cosSign = apd.New(-1, 0)
	}

	s, err := taylorSin(folded)
	if err != nil {
		return nil, nil, err
	}
	c, err := taylorCos(folded)
	if err != nil {
		return nil, nil, err
	}
	c, err = Mul(c, cosSign)
	if err != nil {
		return nil, nil, err
	}
	return s, c, nil
}

// reduceModTwoPi reduces x modulo 2*pi into [0, 2*pi), then into (-pi, pi]
// if it landed above pi, per spec.md §4.2 step 1.
func reduceModTwoPi(x *apd.Decimal) (*apd.Decimal, error) {
	q := new(apd.Decimal)
	if _, err := Ctx.QuoInteger(q, x, TwoPi); err != nil {
		return nil, fmt.Errorf("decimalmath: reduce mod 2pi: %w", err)
	}
	qTimesTwoPi, err := Mul(q, TwoPi)
	if err != nil {
		return nil, err
	}
	r, err := Sub(x, qTimesTwoPi)
	if err != nil {
		return nil, err
	}
	// r is now in (-2pi, 2pi); normalize into [0, 2pi).
	zero := apd.New(0, 0)
	if Cmp(r, zero) < 0 {
		r, err = Add(r, TwoPi)
		if err != nil {
			return nil, err
		}
	}
	// Fold (pi, 2pi) down into (-pi, pi].
	if Cmp(r, Pi) > 0 {
		r, err = Sub(r, TwoPi)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// taylorSin accumulates the Taylor series for sin(x) around 0, valid for
// the folded range [-pi/2, pi/2].
func taylorSin(x *apd.Decimal) (*apd.Decimal, error) {
	eps := MustNew(TrigEps)
	sum := new(apd.Decimal).Set(x)
	term := new(apd.Decimal).Set(x)
	xSquared, err := Mul(x, x)
	if err != nil {
		return nil, err
	}

	for n := 1; n <= TrigMaxIter; n++ {
		k1 := int64(2*n) * int64(2*n+1)
		term, err = Mul(term, xSquared)
		if err != nil {
			return nil, err
		}
		denom := apd.New(k1, 0)
		term, err = Quo(term, denom)
		if err != nil {
			return nil, err
		}
		term = Neg(term)

		sum, err = Add(sum, term)
		if err != nil {
			return nil, err
		}

		absTerm := new(apd.Decimal).Abs(term)
		if Cmp(absTerm, eps) < 0 {
			return sum, nil
		}
	}
	return nil, ErrNonConvergent
}

// taylorCos accumulates the Taylor series for cos(x) around 0, valid for
// the folded range [-pi/2, pi/2].
func taylorCos(x *apd.Decimal) (*apd.Decimal, error) {
	eps := MustNew(TrigEps)
	one := apd.New(1, 0)
	sum := new(apd.Decimal).Set(one)
	term := new(apd.Decimal).Set(one)
	xSquared, err := Mul(x, x)
	if err != nil {
		return nil, err
	}

	for n := 1; n <= TrigMaxIter; n++ {
		k1 := int64(2*n-1) * int64(2*n)
		term, err = Mul(term, xSquared)
		if err != nil {
			return nil, err
		}
		denom := apd.New(k1, 0)
		term, err = Quo(term, denom)
		if err != nil {
			return nil, err
		}
		term = Neg(term)

		sum, err = Add(sum, term)
		if err != nil {
			return nil, err
		}

		absTerm := new(apd.Decimal).Abs(term)
		if Cmp(absTerm, eps) < 0 {
			return sum, nil
		}
	}
	return nil, ErrNonConvergent
}
