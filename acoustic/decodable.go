package acoustic

import (
	"math"

	"github.com/ieee0824/vtsdecode-go/internal/mathutil"
)

// Decodable is the score interface the decoder searches against:
// log-likelihood of one frame under the pdf behind a transition-id.
type Decodable interface {
	LogLikelihood(frame, transID int) float64
	NumFrames() int
}

// ScaledDecodable evaluates a model against a feature matrix with the
// acoustic scale applied multiplicatively to every log-likelihood.
// Scores are cached per (frame, pdf): the decoder probes the same pdf
// from many arcs within one frame.
type ScaledDecodable struct {
	model *Model
	feats mathutil.Mat
	scale float64
	cache mathutil.Mat // [frames][pdfs], NaN = not yet computed
}

// NewScaledDecodable wraps a (compensated) model, one utterance's features
// and the acoustic scale. The features must match the model dimension.
func NewScaledDecodable(m *Model, feats mathutil.Mat, scale float64) *ScaledDecodable {
	cache := mathutil.NewMat(len(feats), m.NumPdfs())
	for i := range cache {
		mathutil.FillVec(cache[i], math.NaN())
	}
	return &ScaledDecodable{model: m, feats: feats, scale: scale, cache: cache}
}

// NumFrames returns the number of feature frames.
func (d *ScaledDecodable) NumFrames() int { return len(d.feats) }

// LogLikelihood returns scale * log p(frame | pdf(transID)).
func (d *ScaledDecodable) LogLikelihood(frame, transID int) float64 {
	pdf := d.model.PdfForTransID(transID)
	if c := d.cache[frame][pdf]; !math.IsNaN(c) {
		return c
	}
	lp := d.scale * d.model.Pdfs[pdf].LogProb(d.feats[frame])
	d.cache[frame][pdf] = lp
	return lp
}
