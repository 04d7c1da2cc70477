// Copyright 2025 Certen Protocol
//
// Package bigmath provides the minimal big-integer primitives the
// cyberspace core builds on: canonical big-endian serialization of
// unbounded non-negative integers, SHA-256 over bytes, and the Cantor
// pairing function. Every other package that needs a "hash an integer"
// or "pair two integers" operation goes through here so there is exactly
// one definition of each.
package bigmath

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"
)

// ErrNegative is returned when an operation that requires a non-negative
// integer is given a negative one.
var ErrNegative = errors.New("bigmath: negative integer not allowed")

// MinBigEndianBytes returns the minimal big-endian byte representation of a
// non-negative integer n: a single zero byte if n is zero, otherwise
// ceil(bit_length(n)/8) bytes with no leading zero byte.
func MinBigEndianBytes(n *big.Int) ([]byte, error) {
	if n.Sign() < 0 {
		return nil, ErrNegative
	}
	if n.Sign() == 0 {
		return []byte{0x00}, nil
	}
	return n.Bytes(), nil
}

// Sha256 returns the SHA-256 digest of b.
func Sha256(b []byte) [32]byte {
	return sha256.Sum256(b)
}

// Sha256Hex returns the lowercase hex-encoded SHA-256 digest of b.
func Sha256Hex(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// Sha256IntHex returns the lowercase hex-encoded SHA-256 digest of the
// minimal big-endian bytes of n.
func Sha256IntHex(n *big.Int) (string, error) {
	b, err := MinBigEndianBytes(n)
	if err != nil {
		return "", err
	}
	return Sha256Hex(b), nil
}

// CantorPair computes the Cantor pairing of two non-negative integers:
// pair(a,b) = (a+b)(a+b+1)/2 + b.
func CantorPair(a, b *big.Int) (*big.Int, error) {
	if a.Sign() < 0 || b.Sign() < 0 {
		return nil, ErrNegative
	}
	sum := new(big.Int).Add(a, b)
	sumPlus1 := new(big.Int).Add(sum, big.NewInt(1))
	product := new(big.Int).Mul(sum, sumPlus1)
	half := new(big.Int).Rsh(product, 1) // product is always even
	return half.Add(half, b), nil
}
