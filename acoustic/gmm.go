package acoustic

import (
	"math"

	"github.com/ieee0824/vtsdecode-go/internal/mathutil"
)

// Gaussian represents a single multivariate Gaussian component with diagonal covariance.
type Gaussian struct {
	Mean      []float64 // [dim]
	Variance  []float64 // [dim] diagonal covariance
	LogWeight float64   // log mixture weight

	// Pre-computed values
	logNormConst float64
	invVariance  []float64 // [dim] 1/Variance, precomputed to avoid division in hot loop
}

// Precompute recalculates cached normalization constants and inverse variances.
// Must be called after updating Mean, Variance, or LogWeight.
func (g *Gaussian) Precompute() {
	dim := len(g.Mean)
	g.logNormConst = float64(dim)/2.0*math.Log(2*math.Pi) + 0.5*sumLog(g.Variance)
	g.invVariance = make([]float64, dim)
	for i := range g.Variance {
		g.invVariance[i] = 1.0 / g.Variance[i]
	}
}

// LogProb computes the log probability of observation x under this Gaussian.
func (g *Gaussian) LogProb(x []float64) float64 {
	maha := mathutil.Mahalanobis(x, g.Mean, g.invVariance)
	return -0.5*maha - g.logNormConst
}

func sumLog(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += math.Log(x)
	}
	return s
}

// GMM is a Gaussian Mixture Model with diagonal covariance.
type GMM struct {
	Components []Gaussian
	Dim        int
}

// NewGMM creates a GMM from given parameters. All component means and
// variances must have the same dimension.
func NewGMM(means, variances [][]float64, logWeights []float64) *GMM {
	k := len(means)
	dim := len(means[0])
	g := &GMM{
		Components: make([]Gaussian, k),
		Dim:        dim,
	}
	for i := range g.Components {
		g.Components[i] = Gaussian{
			Mean:      mathutil.CloneVec(means[i]),
			Variance:  mathutil.CloneVec(variances[i]),
			LogWeight: logWeights[i],
		}
		g.Components[i].Precompute()
	}
	return g
}

// Clone returns a deep copy of the GMM, with caches rebuilt.
func (g *GMM) Clone() *GMM {
	out := &GMM{
		Components: make([]Gaussian, len(g.Components)),
		Dim:        g.Dim,
	}
	for i := range g.Components {
		out.Components[i] = Gaussian{
			Mean:      mathutil.CloneVec(g.Components[i].Mean),
			Variance:  mathutil.CloneVec(g.Components[i].Variance),
			LogWeight: g.Components[i].LogWeight,
		}
		out.Components[i].Precompute()
	}
	return out
}

// LogProb computes log P(x | this GMM) = log sum_k w_k * N(x; μ_k, σ_k).
func (g *GMM) LogProb(x []float64) float64 {
	logSum := mathutil.LogZero
	for i := range g.Components {
		lp := g.Components[i].LogWeight + g.Components[i].LogProb(x)
		logSum = mathutil.LogAdd(logSum, lp)
	}
	return logSum
}
