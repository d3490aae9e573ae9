package vts

import (
	"fmt"
	"math"

	"github.com/ieee0824/vtsdecode-go/acoustic"
	"github.com/ieee0824/vtsdecode-go/internal/mathutil"
	"github.com/ieee0824/vtsdecode-go/noise"
)

// Compensator adapts a clean acoustic model to the environment described
// by one utterance's noise triple. Implementations must never mutate the
// clean model; the result is a fresh copy.
type Compensator interface {
	Compensate(clean *acoustic.Model, t noise.Triple) (*acoustic.Model, error)
}

// CompensationError reports a numerical failure inside compensation.
// The decode loop treats it as a per-utterance error, not fatal to the run.
type CompensationError struct {
	Pdf       int
	Component int
	Reason    string
}

func (e *CompensationError) Error() string {
	if e.Pdf < 0 {
		return fmt.Sprintf("compensation failed: %s", e.Reason)
	}
	return fmt.Sprintf("compensation failed at pdf %d component %d: %s",
		e.Pdf, e.Component, e.Reason)
}

// FirstOrder is the first-order VTS compensator: the additive and
// convolutional noise estimates are combined with each Gaussian mean in the
// log-filterbank domain, and variances are updated through the diagonal of
// the first-order Jacobian.
type FirstOrder struct {
	tf *Transform
}

// NewFirstOrder creates a compensator over a derived transform.
func NewFirstOrder(tf *Transform) *FirstOrder {
	return &FirstOrder{tf: tf}
}

// Compensate returns a compensated copy of clean. The clean model is not
// modified, so repeated calls with identical inputs yield identical output.
func (fo *FirstOrder) Compensate(clean *acoustic.Model, t noise.Triple) (*acoustic.Model, error) {
	nc := fo.tf.Cfg.NumCepstral
	nf := fo.tf.Cfg.NumFbank
	dim := fo.tf.Cfg.FeatureDim()

	if clean.Dim != dim {
		return nil, &CompensationError{Pdf: -1, Reason: fmt.Sprintf(
			"model dim %d does not match transform dim %d", clean.Dim, dim)}
	}
	if len(t.MuH) != dim || len(t.MuZ) != dim || len(t.VarZ) != dim {
		return nil, &CompensationError{Pdf: -1, Reason: fmt.Sprintf(
			"noise vectors have dims %d/%d/%d, want %d",
			len(t.MuH), len(t.MuZ), len(t.VarZ), dim)}
	}

	out := clean.Clone()

	// Scratch buffers reused across components.
	d := mathutil.NewVec(nc)     // cepstral-domain mismatch
	f := mathutil.NewVec(nf)     // filterbank-domain mismatch
	g := mathutil.NewVec(nf)     // log(1 + exp(f))
	shift := mathutil.NewVec(nc) // DCT * g
	gain := mathutil.NewVec(nf)  // 1 / (1 + exp(f))
	jx := mathutil.NewMat(nc, nc)
	tmp := mathutil.NewMat(nc, nf)
	vy := mathutil.NewVec(nc)

	for pi, pdf := range out.Pdfs {
		for ci := range pdf.Components {
			comp := &pdf.Components[ci]

			// Mismatch between additive noise and the noise-shifted clean
			// mean, taken to the log-filterbank domain.
			for i := 0; i < nc; i++ {
				d[i] = t.MuZ[i] - comp.Mean[i] - t.MuH[i]
			}
			mathutil.MatVec(f, fo.tf.InvDCT, d)
			for i := range f {
				g[i] = log1pExp(f[i])
				gain[i] = 1.0 / (1.0 + math.Exp(f[i]))
			}

			// Static mean: mu_y = mu_x + mu_h + C*log(1+exp(C^-1*(mu_z-mu_x-mu_h)))
			mathutil.MatVec(shift, fo.tf.DCT, g)
			for i := 0; i < nc; i++ {
				comp.Mean[i] += t.MuH[i] + shift[i]
			}
			// Dynamic means are unchanged by the static-domain shift.

			// Jacobian Jx = C * diag(gain) * C^-1.
			for i := 0; i < nc; i++ {
				for n := 0; n < nf; n++ {
					tmp[i][n] = fo.tf.DCT[i][n] * gain[n]
				}
			}
			for i := 0; i < nc; i++ {
				for j := 0; j < nc; j++ {
					s := 0.0
					for n := 0; n < nf; n++ {
						s += tmp[i][n] * fo.tf.InvDCT[n][j]
					}
					jx[i][j] = s
				}
			}

			// Variances, all three blocks: diag of
			// Jx Σx Jx^T + (I-Jx) Σz (I-Jx)^T with diagonal Σ.
			for block := 0; block < 3; block++ {
				off := block * nc
				for i := 0; i < nc; i++ {
					v := 0.0
					for j := 0; j < nc; j++ {
						a := jx[i][j]
						b := -jx[i][j]
						if i == j {
							b += 1.0
						}
						v += a*a*comp.Variance[off+j] + b*b*t.VarZ[off+j]
					}
					if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
						return nil, &CompensationError{Pdf: pi, Component: ci,
							Reason: fmt.Sprintf("non-positive compensated variance %g at dim %d", v, off+i)}
					}
					vy[i] = v
				}
				copy(comp.Variance[off:off+nc], vy)
			}

			comp.Precompute()
		}
	}

	return out, nil
}

// log1pExp computes log(1+exp(x)) without overflow for large x.
func log1pExp(x float64) float64 {
	if x > 36 {
		return x
	}
	return math.Log1p(math.Exp(x))
}
