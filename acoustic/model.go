package acoustic

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
)

// Model is a diagonal-GMM acoustic model: one GMM per tied state (pdf),
// plus the mapping from graph transition-ids to pdfs. Transition-ids are
// the emitting input labels of the decode graph and are 1-based; label 0
// is reserved for epsilon.
type Model struct {
	Pdfs         []*GMM
	TransIDToPdf []int // [numTransIDs+1], entry 0 unused
	Dim          int
}

// NumPdfs returns the number of tied states.
func (m *Model) NumPdfs() int { return len(m.Pdfs) }

// NumTransIDs returns the highest valid transition-id.
func (m *Model) NumTransIDs() int { return len(m.TransIDToPdf) - 1 }

// PdfForTransID maps a transition-id to its pdf index.
func (m *Model) PdfForTransID(tid int) int { return m.TransIDToPdf[tid] }

// Clone returns a deep copy of the model. Used to compensate a copy
// while leaving the clean model untouched.
func (m *Model) Clone() *Model {
	out := &Model{
		Pdfs:         make([]*GMM, len(m.Pdfs)),
		TransIDToPdf: make([]int, len(m.TransIDToPdf)),
		Dim:          m.Dim,
	}
	for i, g := range m.Pdfs {
		out.Pdfs[i] = g.Clone()
	}
	copy(out.TransIDToPdf, m.TransIDToPdf)
	return out
}

// serializable types for gob encoding
type serializedModel struct {
	Dim          int
	TransIDToPdf []int
	Pdfs         []serializedGMM
}

type serializedGMM struct {
	Components []serializedGaussian
	Dim        int
}

type serializedGaussian struct {
	Mean      []float64
	Variance  []float64
	LogWeight float64
}

// Save serializes the model to a writer using gob encoding.
func (m *Model) Save(w io.Writer) error {
	sm := serializedModel{
		Dim:          m.Dim,
		TransIDToPdf: m.TransIDToPdf,
		Pdfs:         make([]serializedGMM, len(m.Pdfs)),
	}
	for i, g := range m.Pdfs {
		sg := serializedGMM{Dim: g.Dim}
		for _, c := range g.Components {
			sg.Components = append(sg.Components, serializedGaussian{
				Mean:      c.Mean,
				Variance:  c.Variance,
				LogWeight: c.LogWeight,
			})
		}
		sm.Pdfs[i] = sg
	}
	return gob.NewEncoder(w).Encode(sm)
}

// Load deserializes an acoustic model from a reader.
func Load(r io.Reader) (*Model, error) {
	var sm serializedModel
	if err := gob.NewDecoder(r).Decode(&sm); err != nil {
		return nil, err
	}

	m := &Model{
		Pdfs:         make([]*GMM, len(sm.Pdfs)),
		TransIDToPdf: sm.TransIDToPdf,
		Dim:          sm.Dim,
	}
	for i, sg := range sm.Pdfs {
		g := &GMM{Dim: sg.Dim}
		for _, sc := range sg.Components {
			c := Gaussian{
				Mean:      sc.Mean,
				Variance:  sc.Variance,
				LogWeight: sc.LogWeight,
			}
			c.Precompute()
			g.Components = append(g.Components, c)
		}
		m.Pdfs[i] = g
	}

	for tid := 1; tid < len(m.TransIDToPdf); tid++ {
		if p := m.TransIDToPdf[tid]; p < 0 || p >= len(m.Pdfs) {
			return nil, fmt.Errorf("transition-id %d maps to invalid pdf %d", tid, p)
		}
	}
	return m, nil
}

// LoadFile loads an acoustic model from a file path.
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open acoustic model: %w", err)
	}
	defer f.Close()
	m, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load acoustic model %s: %w", path, err)
	}
	return m, nil
}
