package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
)

// doubleSHA256 is the double-SHA-256 primitive every hashing operation in
// this package is built from.
func doubleSHA256(b []byte) []byte {
	first := sha256Sum(b)
	second := sha256Sum(first[:])
	return second[:]
}

func doubleSHA256Array(b []byte) [32]byte {
	first := sha256Sum(b)
	return sha256Sum(first[:])
}

// flip32 reverses byte order within each of the eight 4-byte words of a
// 32-byte value, in place, and returns it for chaining. This is ckpool's
// wire convention for the previous-block hash and the merkle root.
func flip32(b []byte) []byte {
	if len(b) != 32 {
		panic("flip32: input must be 32 bytes")
	}
	for word := 0; word < 32; word += 4 {
		b[word], b[word+1], b[word+2], b[word+3] =
			b[word+3], b[word+2], b[word+1], b[word]
	}
	return b
}

// flip32Copy is the non-mutating form of flip32.
func flip32Copy(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return flip32(out)
}

// flip80 applies flip32 to the prev and merkle 32-byte fields of an 80-byte
// header laid out as version(4)|prev(32)|merkle(32)|ntime(4)|bits(4)|nonce(4),
// leaving the scalar fields untouched. It mutates h in place and returns it.
func flip80(h []byte) []byte {
	if len(h) != 80 {
		panic("flip80: input must be 80 bytes")
	}
	flip32(h[4:36])
	flip32(h[36:68])
	return h
}

// targetFromBits decodes a compact "bits" representation (4 bytes, exponent
// in the high byte, mantissa in the low three) into a 256-bit target.
func targetFromBits(bits [4]byte) *big.Int {
	exp := bits[0]
	mantissa := new(big.Int).SetBytes(bits[1:])
	if exp <= 3 {
		return mantissa.Rsh(mantissa, 8*uint(3-exp))
	}
	return mantissa.Lsh(mantissa, 8*uint(exp-3))
}

func targetFromBitsHex(bitsHex string) (*big.Int, error) {
	b, err := hex.DecodeString(bitsHex)
	if err != nil {
		return nil, fmt.Errorf("decode bits: %w", err)
	}
	if len(b) != 4 {
		return nil, errors.New("bits must be 4 bytes")
	}
	var arr [4]byte
	copy(arr[:], b)
	return targetFromBits(arr), nil
}

// diff1Target is the classic pool difficulty-1 target: 0x00000000ffff0000...
var diff1Target = func() *big.Int {
	n, ok := new(big.Int).SetString("00000000FFFF0000000000000000000000000000000000000000000000000000", 16)
	if !ok {
		panic("invalid diff1Target literal")
	}
	return n
}()

var maxUint256 = func() *big.Int {
	n := new(big.Int).Lsh(big.NewInt(1), 256)
	return n.Sub(n, big.NewInt(1))
}()

// targetFromDifficulty computes floor(diff1Target / difficulty), clamped to
// [1, maxUint256].
func targetFromDifficulty(difficulty float64) *big.Int {
	if difficulty <= 0 {
		return new(big.Int).Set(maxUint256)
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(difficulty, 'g', -1, 64))
	if !ok || r.Sign() <= 0 {
		return new(big.Int).Set(maxUint256)
	}
	target := new(big.Rat).SetInt(diff1Target)
	target.Quo(target, r)
	tgt := new(big.Int).Quo(target.Num(), target.Denom())
	if tgt.Sign() == 0 {
		tgt = big.NewInt(1)
	}
	if tgt.Cmp(maxUint256) > 0 {
		tgt = new(big.Int).Set(maxUint256)
	}
	return tgt
}

// leBytesToInt interprets b as a little-endian unsigned integer, as required
// when comparing a flip_80 block hash against a target.
func leBytesToInt(b []byte) *big.Int {
	rev := make([]byte, len(b))
	for i, v := range b {
		rev[len(b)-1-i] = v
	}
	return new(big.Int).SetBytes(rev)
}
