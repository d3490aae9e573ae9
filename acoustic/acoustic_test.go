package acoustic

import (
	"bytes"
	"math"
	"testing"
)

func TestGaussianLogProb(t *testing.T) {
	g := Gaussian{
		Mean:      []float64{0.0},
		Variance:  []float64{1.0},
		LogWeight: 0.0,
	}
	g.Precompute()

	// Standard normal at x=0: log(1/sqrt(2π)) ≈ -0.9189
	lp := g.LogProb([]float64{0.0})
	expected := -0.5 * math.Log(2*math.Pi)
	if math.Abs(lp-expected) > 1e-6 {
		t.Errorf("LogProb(0) = %f, want %f", lp, expected)
	}

	// At x=0 should be higher than at x=5
	lp5 := g.LogProb([]float64{5.0})
	if lp5 >= lp {
		t.Errorf("LogProb(5) = %f >= LogProb(0) = %f", lp5, lp)
	}
}

func TestGMMLogProb(t *testing.T) {
	gmm := NewGMM(
		[][]float64{{0.0}, {5.0}},
		[][]float64{{1.0}, {1.0}},
		[]float64{math.Log(0.5), math.Log(0.5)},
	)

	lp0 := gmm.LogProb([]float64{0.0})
	lp5 := gmm.LogProb([]float64{5.0})
	lp25 := gmm.LogProb([]float64{2.5})

	if math.IsNaN(lp0) || math.IsInf(lp0, 0) {
		t.Errorf("LogProb(0) = %f (not finite)", lp0)
	}
	// Symmetric mixture: the modes score alike
	if math.Abs(lp0-lp5) > 0.1 {
		t.Errorf("LogProb(0)=%f and LogProb(5)=%f should be similar", lp0, lp5)
	}
	if lp25 > lp0 {
		t.Errorf("LogProb(2.5)=%f > LogProb(0)=%f", lp25, lp0)
	}
}

func TestGMMClone(t *testing.T) {
	gmm := NewGMM(
		[][]float64{{1.0, 2.0}},
		[][]float64{{1.0, 1.0}},
		[]float64{0.0},
	)
	c := gmm.Clone()
	c.Components[0].Mean[0] = 99
	c.Components[0].Variance[1] = 99
	if gmm.Components[0].Mean[0] != 1.0 {
		t.Errorf("Clone shares mean storage: %f", gmm.Components[0].Mean[0])
	}
	if gmm.Components[0].Variance[1] != 1.0 {
		t.Errorf("Clone shares variance storage: %f", gmm.Components[0].Variance[1])
	}
}

func testModel() *Model {
	return &Model{
		Pdfs: []*GMM{
			NewGMM([][]float64{{0, 0, 0}}, [][]float64{{1, 1, 1}}, []float64{0}),
			NewGMM([][]float64{{5, 5, 5}}, [][]float64{{2, 2, 2}}, []float64{0}),
		},
		TransIDToPdf: []int{0, 0, 1}, // entry 0 unused
		Dim:          3,
	}
}

func TestModelSaveLoad(t *testing.T) {
	m := testModel()
	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.Dim != 3 || loaded.NumPdfs() != 2 || loaded.NumTransIDs() != 2 {
		t.Fatalf("loaded model shape: dim=%d pdfs=%d tids=%d", loaded.Dim, loaded.NumPdfs(), loaded.NumTransIDs())
	}

	x := []float64{0.1, -0.2, 0.3}
	for pi := range m.Pdfs {
		got := loaded.Pdfs[pi].LogProb(x)
		want := m.Pdfs[pi].LogProb(x)
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("pdf %d: LogProb = %f, want %f", pi, got, want)
		}
	}
}

func TestModelLoadRejectsBadMapping(t *testing.T) {
	m := testModel()
	m.TransIDToPdf = []int{0, 0, 5} // pdf 5 does not exist
	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if _, err := Load(&buf); err == nil {
		t.Error("Load accepted a transition-id mapped to a missing pdf")
	}
}

func TestModelClone(t *testing.T) {
	m := testModel()
	c := m.Clone()
	c.Pdfs[0].Components[0].Mean[0] = 42
	c.TransIDToPdf[1] = 1
	if m.Pdfs[0].Components[0].Mean[0] != 0 {
		t.Error("Clone shares pdf storage")
	}
	if m.TransIDToPdf[1] != 0 {
		t.Error("Clone shares transition mapping")
	}
}

func TestScaledDecodable(t *testing.T) {
	m := testModel()
	feats := [][]float64{{0, 0, 0}, {5, 5, 5}}
	d := NewScaledDecodable(m, feats, 0.1)

	if d.NumFrames() != 2 {
		t.Fatalf("NumFrames = %d, want 2", d.NumFrames())
	}

	want := 0.1 * m.Pdfs[0].LogProb(feats[0])
	got := d.LogLikelihood(0, 1)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("LogLikelihood(0,1) = %f, want %f", got, want)
	}
	// Second call hits the cache and must agree
	if again := d.LogLikelihood(0, 1); again != got {
		t.Errorf("cached LogLikelihood = %f, first = %f", again, got)
	}

	// Frame 1 favors pdf 1 (mean 5) over pdf 0
	if d.LogLikelihood(1, 2) <= d.LogLikelihood(1, 1) {
		t.Error("pdf under transition-id 2 should win on frame 1")
	}
}
