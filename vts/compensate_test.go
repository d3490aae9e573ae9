package vts

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ieee0824/vtsdecode-go/acoustic"
	"github.com/ieee0824/vtsdecode-go/internal/mathutil"
	"github.com/ieee0824/vtsdecode-go/noise"
)

// tinyCfg keeps feature dim at 3 (1 cepstral coefficient x 3 blocks).
var tinyCfg = TransformConfig{NumCepstral: 1, NumFbank: 2, CepLifter: 22}

func tinyModel() *acoustic.Model {
	return &acoustic.Model{
		Pdfs: []*acoustic.GMM{
			acoustic.NewGMM([][]float64{{0, 0, 0}}, [][]float64{{1, 1, 1}}, []float64{0}),
			acoustic.NewGMM([][]float64{{2, 0.5, -0.5}}, [][]float64{{2, 1, 1}}, []float64{0}),
		},
		TransIDToPdf: []int{0, 0, 1},
		Dim:          3,
	}
}

func quietTriple() noise.Triple {
	// Additive noise far below the signal: compensation approaches identity.
	return noise.Triple{
		MuH:  mathutil.Vec{0, 0, 0},
		MuZ:  mathutil.Vec{-40, 0, 0},
		VarZ: mathutil.Vec{1e-6, 1e-6, 1e-6},
	}
}

func newTinyCompensator(t *testing.T) *FirstOrder {
	tf, err := NewTransform(tinyCfg)
	require.NoError(t, err)
	return NewFirstOrder(tf)
}

func snapshot(m *acoustic.Model) [][]float64 {
	var out [][]float64
	for _, pdf := range m.Pdfs {
		for _, c := range pdf.Components {
			out = append(out, append(mathutil.CloneVec(c.Mean), c.Variance...))
		}
	}
	return out
}

func TestCompensateDoesNotMutateClean(t *testing.T) {
	fo := newTinyCompensator(t)
	clean := tinyModel()
	before := snapshot(clean)

	for i := 0; i < 3; i++ {
		_, err := fo.Compensate(clean, quietTriple())
		require.NoError(t, err)
	}

	assert.Equal(t, before, snapshot(clean), "clean model changed by compensation")
}

func TestCompensateDeterministic(t *testing.T) {
	fo := newTinyCompensator(t)
	clean := tinyModel()
	tr := noise.Triple{
		MuH:  mathutil.Vec{0.3, 0, 0},
		MuZ:  mathutil.Vec{1.0, 0, 0},
		VarZ: mathutil.Vec{0.5, 0.2, 0.2},
	}

	a, err := fo.Compensate(clean, tr)
	require.NoError(t, err)
	b, err := fo.Compensate(clean, tr)
	require.NoError(t, err)

	assert.Equal(t, snapshot(a), snapshot(b), "identical inputs gave different outputs")
}

func TestCompensateQuietNoiseIsNearIdentity(t *testing.T) {
	fo := newTinyCompensator(t)
	clean := tinyModel()

	comp, err := fo.Compensate(clean, quietTriple())
	require.NoError(t, err)

	for pi, pdf := range clean.Pdfs {
		for ci, c := range pdf.Components {
			cc := comp.Pdfs[pi].Components[ci]
			for d := 0; d < clean.Dim; d++ {
				assert.InDelta(t, c.Mean[d], cc.Mean[d], 1e-6, "pdf %d mean dim %d", pi, d)
				assert.InDelta(t, c.Variance[d], cc.Variance[d], 1e-4, "pdf %d var dim %d", pi, d)
			}
		}
	}
}

func TestCompensateLoudNoiseDominates(t *testing.T) {
	fo := newTinyCompensator(t)
	clean := tinyModel()
	tr := noise.Triple{
		MuH:  mathutil.Vec{0, 0, 0},
		MuZ:  mathutil.Vec{40, 0, 0},
		VarZ: mathutil.Vec{0.5, 0.5, 0.5},
	}

	comp, err := fo.Compensate(clean, tr)
	require.NoError(t, err)

	// With one cepstral coefficient the DCT round trip is exact, so the
	// compensated static mean converges to the additive noise mean.
	for pi := range clean.Pdfs {
		got := comp.Pdfs[pi].Components[0].Mean[0]
		assert.InDelta(t, 40.0, got, 1e-6, "pdf %d static mean", pi)
	}
}

func TestCompensateVariancesStayPositive(t *testing.T) {
	fo := newTinyCompensator(t)
	clean := tinyModel()
	tr := noise.Triple{
		MuH:  mathutil.Vec{1, 0, 0},
		MuZ:  mathutil.Vec{3, 0, 0},
		VarZ: mathutil.Vec{2, 1, 1},
	}
	comp, err := fo.Compensate(clean, tr)
	require.NoError(t, err)
	for _, pdf := range comp.Pdfs {
		for _, c := range pdf.Components {
			for d, v := range c.Variance {
				assert.Greater(t, v, 0.0, "variance dim %d", d)
				assert.False(t, math.IsNaN(v))
			}
		}
	}
}

func TestCompensateRejectsBadDims(t *testing.T) {
	fo := newTinyCompensator(t)
	clean := tinyModel()

	short := noise.Triple{MuH: mathutil.Vec{0}, MuZ: mathutil.Vec{0}, VarZ: mathutil.Vec{1}}
	_, err := fo.Compensate(clean, short)
	var ce *CompensationError
	require.ErrorAs(t, err, &ce)

	clean.Dim = 5
	_, err = fo.Compensate(clean, quietTriple())
	require.ErrorAs(t, err, &ce)
}
