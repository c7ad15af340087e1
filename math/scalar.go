package math

import "github.com/chewxy/math32"

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}

// ClampInt limits i to [lo, hi].
func ClampInt(i, lo, hi int) int {
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}

// Quantize maps a normalized value to the nearest integer step in [0, steps].
func Quantize(v, steps float32) float32 {
	return Clamp(math32.Round(v*steps), 0, steps)
}
