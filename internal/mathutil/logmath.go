package mathutil

import "math"

// LogZero represents log(0), used as negative infinity in log-domain arithmetic.
const LogZero = -1e30

// IsLogZero reports whether x is effectively log(0).
func IsLogZero(x float64) bool {
	return x <= LogZero+1
}

// LogAdd returns log(exp(a) + exp(b)) in a numerically stable way.
// When the smaller term contributes less than float64 precision
// (exp(-36) ≈ 2.3e-16) it is skipped entirely.
func LogAdd(a, b float64) float64 {
	if a < b {
		a, b = b, a
	}
	if b == LogZero {
		return a
	}
	d := b - a
	if d < -36.0 {
		return a
	}
	return a + math.Log1p(math.Exp(d))
}
