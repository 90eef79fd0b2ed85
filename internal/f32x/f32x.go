// Package f32x collects the small set of float32 helpers the segmentation
// engine shares across region statistics, the dissimilarity kernel and the
// two priority heaps. Every helper takes and returns float32; Acos and Log
// evaluate through float64 math and round the result back to float32.
package f32x

import (
	"math"

	"github.com/arl/math32"
)

// SmallEpsilon is the dissimilarity floor below which a result is snapped to
// zero rather than carried as residual noise.
const SmallEpsilon = 1e-10

// Abs returns the absolute value of v.
func Abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// Max returns the larger of a and b.
func Max(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// Min returns the smaller of a and b.
func Min(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// Sqrt is math32.Sqrt, named locally so callers don't import math32 directly
// for the handful of calls the dissimilarity kernel makes.
func Sqrt(v float32) float32 { return math32.Sqrt(v) }

// Acos returns the arc-cosine of v, clamped to its domain first; dissimilarity
// formulas that feed it a normalized dot product can land a hair outside
// [-1, 1] from float32 rounding. math32 does not expose Acos/Log, so these go
// through math.Acos/math.Log in float64 and round the result to float32.
func Acos(v float32) float32 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return float32(math.Acos(float64(v)))
}

// Log returns the natural logarithm of v in float32.
func Log(v float32) float32 { return float32(math.Log(float64(v))) }

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SnapSmall returns 0 when v is within SmallEpsilon of zero, else v.
func SnapSmall(v float32) float32 {
	if Abs(v) < SmallEpsilon {
		return 0
	}
	return v
}

// IsDegenerate reports whether v is NaN or +/-Inf, the two numerical
// degeneracies the dissimilarity kernel must never let through as a
// selectable (small) value.
func IsDegenerate(v float32) bool {
	f := float64(v)
	return math.IsNaN(f) || math.IsInf(f, 0)
}
