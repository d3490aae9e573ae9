package vts

import (
	"fmt"
	"math"

	"github.com/ieee0824/vtsdecode-go/internal/mathutil"
)

// TransformConfig bundles the feature-extraction geometry the compensation
// transform depends on. It must match whatever produced the features and
// the clean model.
type TransformConfig struct {
	NumCepstral int     // cepstral coefficients per block (feature dim = 3x this)
	NumFbank    int     // mel filterbank channels behind the cepstra
	CepLifter   float64 // liftering coefficient, 0 disables liftering
}

// DefaultTransformConfig returns the standard MFCC_0_D_A geometry.
func DefaultTransformConfig() TransformConfig {
	return TransformConfig{NumCepstral: 13, NumFbank: 26, CepLifter: 22}
}

// FeatureDim returns the expected feature dimension (base+delta+delta-delta).
func (c TransformConfig) FeatureDim() int { return 3 * c.NumCepstral }

// Transform holds the lifted DCT and its pseudo-inverse, derived once per
// run. The matrices depend only on the config, never on an utterance.
type Transform struct {
	Cfg    TransformConfig
	DCT    mathutil.Mat // [NumCepstral][NumFbank], cepstral <- filterbank
	InvDCT mathutil.Mat // [NumFbank][NumCepstral], filterbank <- cepstral
}

// NewTransform derives the forward and inverse lifted DCT matrices.
func NewTransform(cfg TransformConfig) (*Transform, error) {
	if cfg.NumCepstral <= 0 || cfg.NumFbank <= 0 {
		return nil, fmt.Errorf("invalid transform config: num-cepstral=%d num-fbank=%d",
			cfg.NumCepstral, cfg.NumFbank)
	}
	if cfg.NumCepstral > cfg.NumFbank {
		return nil, fmt.Errorf("num-cepstral %d exceeds num-fbank %d", cfg.NumCepstral, cfg.NumFbank)
	}

	nc, nf := cfg.NumCepstral, cfg.NumFbank
	dct := mathutil.NewMat(nc, nf)
	inv := mathutil.NewMat(nf, nc)

	// Orthonormal DCT-II, truncated to nc rows, so the transpose is the
	// pseudo-inverse. Liftering scales row p by l[p] in the forward
	// direction and divides in the inverse.
	for p := 0; p < nc; p++ {
		scale := math.Sqrt(2.0 / float64(nf))
		if p == 0 {
			scale = math.Sqrt(1.0 / float64(nf))
		}
		lifter := 1.0
		if cfg.CepLifter > 0 {
			lifter = 1.0 + 0.5*cfg.CepLifter*math.Sin(math.Pi*float64(p)/cfg.CepLifter)
		}
		for n := 0; n < nf; n++ {
			base := scale * math.Cos(math.Pi*float64(p)*(float64(n)+0.5)/float64(nf))
			dct[p][n] = lifter * base
			inv[n][p] = base / lifter
		}
	}

	return &Transform{Cfg: cfg, DCT: dct, InvDCT: inv}, nil
}
