package mathutil

// Vec is a float64 vector.
type Vec = []float64

// Mat is a 2D float64 matrix stored as row-major [][]float64.
type Mat = [][]float64

// NewMat creates a rows x cols matrix initialized to zero.
// All rows share one backing array for cache locality.
func NewMat(rows, cols int) Mat {
	m := make(Mat, rows)
	data := make([]float64, rows*cols)
	for i := range m {
		m[i] = data[i*cols : (i+1)*cols]
	}
	return m
}

// CloneMat returns a deep copy of m.
func CloneMat(m Mat) Mat {
	if len(m) == 0 {
		return Mat{}
	}
	out := NewMat(len(m), len(m[0]))
	for i := range m {
		copy(out[i], m[i])
	}
	return out
}

// NewVec creates a vector of length n initialized to zero.
func NewVec(n int) Vec {
	return make(Vec, n)
}

// NewVecFill creates a vector of length n filled with val.
func NewVecFill(n int, val float64) Vec {
	v := make(Vec, n)
	for i := range v {
		v[i] = val
	}
	return v
}

// CloneVec returns a copy of v.
func CloneVec(v Vec) Vec {
	out := make(Vec, len(v))
	copy(out, v)
	return out
}

// FillVec fills all elements of an existing vector with val.
func FillVec(v Vec, val float64) {
	for i := range v {
		v[i] = val
	}
}

// DotVec returns the dot product of a and b.
func DotVec(a, b Vec) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// AddVec stores a+b in dst.
func AddVec(dst, a, b Vec) {
	for i := range dst {
		dst[i] = a[i] + b[i]
	}
}

// SubVec stores a-b in dst.
func SubVec(dst, a, b Vec) {
	for i := range dst {
		dst[i] = a[i] - b[i]
	}
}

// MatVec stores m*v in dst. dst must have len(m) elements and must not
// alias v.
func MatVec(dst Vec, m Mat, v Vec) {
	for i := range m {
		dst[i] = DotVec(m[i], v)
	}
}

// Mahalanobis computes sum((x[i]-mean[i])^2 * invVar[i]), the squared
// Mahalanobis distance under a diagonal covariance.
func Mahalanobis(x, mean, invVar Vec) float64 {
	maha := 0.0
	for i, xi := range x {
		diff := xi - mean[i]
		maha += diff * diff * invVar[i]
	}
	return maha
}
