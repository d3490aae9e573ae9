package decoder

// Result holds the decoding output for one utterance.
type Result struct {
	Words     []int    // output word ids along the best path
	Alignment []int    // transition-id per frame along the best path
	LogLike   float64  // total best-path log-likelihood (graph + scaled acoustic)
	Lattice   *Lattice // raw lattice; nil until Decode succeeds
	Partial   bool     // best path did not reach a final state
}

// LatArc is one lattice transition. Acoustic and graph scores are kept
// separate so downstream rescoring can re-weight them.
type LatArc struct {
	To      int32
	ILabel  int32 // transition-id, 0 on non-emitting arcs
	OLabel  int32 // word id, 0 when no word is emitted
	AcScore float64
	GrScore float64
}

// Lattice is a DAG of competing hypotheses. Node ids index Frames and
// Arcs; Start is always a node of frame 0.
type Lattice struct {
	Start  int32
	Frames []int32 // frame index per node
	Arcs   [][]LatArc
	Final  map[int32]float64
}

// NumNodes returns the number of lattice nodes.
func (l *Lattice) NumNodes() int { return len(l.Arcs) }

// NumArcs returns the total number of lattice arcs.
func (l *Lattice) NumArcs() int {
	n := 0
	for _, arcs := range l.Arcs {
		n += len(arcs)
	}
	return n
}
