package common

import "math"

// Epsilon is the cutoff below which vector lengths and speeds are treated
// as zero to keep kinematics free of NaN.
const Epsilon = 1e-6

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IsFinite reports whether v is a usable number (not NaN or Inf).
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// NormalizeAngle wraps an angle in radians into [-Pi, Pi).
func NormalizeAngle(a float64) float64 {
	if !IsFinite(a) {
		return 0
	}
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// AngleDiff returns the smallest signed difference between two angles.
func AngleDiff(a, b float64) float64 {
	return NormalizeAngle(a - b)
}
