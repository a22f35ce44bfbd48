package core

import "math"

// MinusInfinityDB is the level reported by [GainToDB] for silent input
// when no explicit floor is requested.
const MinusInfinityDB = -100.0

// Float is the set of sample types handled by the diffuser.
type Float interface {
	~float32 | ~float64
}

// Clamp limits value to the inclusive range [lo, hi].
func Clamp[T Float](value, lo, hi T) T {
	if lo > hi {
		lo, hi = hi, lo
	}

	if value < lo {
		return lo
	}

	if value > hi {
		return hi
	}

	return value
}

// ClampInt limits value to the inclusive range [lo, hi].
func ClampInt(value, lo, hi int) int {
	if lo > hi {
		lo, hi = hi, lo
	}

	return min(max(value, lo), hi)
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FlushDenormals converts tiny denormal-like values to exact zero.
// This can reduce denormal-related CPU slowdowns in hot DSP loops.
func FlushDenormals[T Float](x T) T {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// GainToDB converts a linear gain to dB, never reporting less than floorDB.
// Zero and negative gains map to floorDB.
func GainToDB(gain, floorDB float64) float64 {
	if gain <= 0 {
		return floorDB
	}

	return math.Max(20*math.Log10(gain), floorDB)
}
