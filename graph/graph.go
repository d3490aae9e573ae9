// Package graph holds the decode graph: a weighted automaton whose
// emitting input labels are acoustic transition-ids, whose output labels
// are word ids, and whose weights are log-probabilities (higher is better).
package graph

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
)

// Epsilon is the input/output label of non-emitting arcs.
const Epsilon = 0

// Arc is one transition of the graph. ILabel 0 means the arc consumes no
// frame; OLabel 0 emits no word.
type Arc struct {
	ILabel int32   // transition-id, 0 = epsilon
	OLabel int32   // word id, 0 = epsilon
	Weight float64 // graph log-probability
	Next   int32   // destination state
}

// Graph is a weighted automaton with a single start state.
type Graph struct {
	Start int32
	Arcs  [][]Arc // outgoing arcs per state
	Final []float64
}

// NumStates returns the number of states.
func (g *Graph) NumStates() int { return len(g.Arcs) }

// IsFinal reports whether state s is a final state.
func (g *Graph) IsFinal(s int32) bool {
	return !isLogZero(g.Final[s])
}

// FinalWeight returns the final log-probability of state s.
func (g *Graph) FinalWeight(s int32) float64 { return g.Final[s] }

const logZero = -1e30

func isLogZero(x float64) bool { return x <= logZero+1 }

// Validate checks internal consistency: arc destinations in range and
// emitting labels positive.
func (g *Graph) Validate() error {
	n := int32(g.NumStates())
	if n == 0 {
		return fmt.Errorf("graph has no states")
	}
	if g.Start < 0 || g.Start >= n {
		return fmt.Errorf("start state %d out of range [0,%d)", g.Start, n)
	}
	if len(g.Final) != int(n) {
		return fmt.Errorf("final weights: %d entries for %d states", len(g.Final), n)
	}
	for s, arcs := range g.Arcs {
		for i, a := range arcs {
			if a.Next < 0 || a.Next >= n {
				return fmt.Errorf("state %d arc %d: destination %d out of range", s, i, a.Next)
			}
			if a.ILabel < 0 || a.OLabel < 0 {
				return fmt.Errorf("state %d arc %d: negative label", s, i)
			}
		}
	}
	return nil
}

// Write serializes the graph using gob encoding.
func (g *Graph) Write(w io.Writer) error {
	return gob.NewEncoder(w).Encode(g)
}

// Read deserializes a graph and validates it.
func Read(r io.Reader) (*Graph, error) {
	var g Graph
	if err := gob.NewDecoder(r).Decode(&g); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// ReadFile loads a single shared graph from a file path.
func ReadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open graph: %w", err)
	}
	defer f.Close()
	g, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("load graph %s: %w", path, err)
	}
	return g, nil
}
