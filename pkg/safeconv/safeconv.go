// Package safeconv provides safe integer type conversion functions that panic on overflow.
package safeconv

import "math"

// MaxUint32 is the maximum value for uint32 type.
const MaxUint32 = uint32(math.MaxUint32)

// MustIntToUint32 converts int to uint32, panics on bounds violation.
// Use only when bounds violations are logically impossible.
func MustIntToUint32(v int) uint32 {
	if v < 0 || v > int(MaxUint32) {
		panic("safeconv: int to uint32 out of bounds")
	}

	return uint32(v)
}

// Uint32ToInt widens v to int. It never fails on 64-bit platforms and
// panics on 32-bit ones when v does not fit.
func Uint32ToInt(v uint32) int {
	if uint64(v) > uint64(math.MaxInt) {
		panic("safeconv: uint32 to int overflow")
	}

	return int(v)
}
