// Package decoder implements time-synchronous lattice beam search over a
// decode graph: token passing with beam and max-active pruning, best-path
// backtrace, and lattice extraction with forward-backward pruning.
package decoder

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ieee0824/vtsdecode-go/acoustic"
	"github.com/ieee0824/vtsdecode-go/graph"
	"github.com/ieee0824/vtsdecode-go/internal/mathutil"
)

// ErrNoPath is returned when no token survives to a usable end state.
var ErrNoPath = errors.New("no decoding path found")

// Config holds beam search parameters.
type Config struct {
	Beam         float64 // log-domain beam width for token pruning
	MaxActive    int     // maximum number of active tokens per frame
	LatticeBeam  float64 // forward-backward margin for lattice arc pruning
	Determinize  bool    // emit a determinized lattice instead of the raw one
	AllowPartial bool    // accept a best path that misses every final state
}

// DefaultConfig returns reasonable default parameters.
func DefaultConfig() Config {
	return Config{
		Beam:        16.0,
		MaxActive:   7000,
		LatticeBeam: 10.0,
		Determinize: true,
	}
}

// token is an active hypothesis: the best score reaching a graph state at
// the current frame, plus the Viterbi backpointer chain.
type token struct {
	state int32
	score float64
	node  int32 // lattice node for (frame, state)
	prev  *token
	arc   graph.Arc // arc that created this token (undefined on the start token)
}

// LatticeDecoder decodes utterances against one graph. In shared-graph
// mode a single instance is reused across utterances with Reset between
// them; construction over a large graph is the expensive part, resetting
// the search state is cheap.
type LatticeDecoder struct {
	g   *graph.Graph
	cfg Config

	// per-utterance search state, cleared by Reset
	frames []int32
	arcs   [][]LatArc
	cur    map[int32]*token
	next   map[int32]*token
}

// NewLatticeDecoder constructs a decoder bound to a graph.
func NewLatticeDecoder(g *graph.Graph, cfg Config) *LatticeDecoder {
	d := &LatticeDecoder{g: g, cfg: cfg}
	d.Reset()
	return d
}

// Reset discards all per-utterance search state. The graph binding stays.
func (d *LatticeDecoder) Reset() {
	d.frames = d.frames[:0]
	d.arcs = d.arcs[:0]
	d.cur = make(map[int32]*token)
	d.next = make(map[int32]*token)
}

// newNode registers a lattice node for the given frame.
func (d *LatticeDecoder) newNode(frame int32) int32 {
	id := int32(len(d.frames))
	d.frames = append(d.frames, frame)
	d.arcs = append(d.arcs, nil)
	return id
}

// Decode runs the search over all frames of the decodable and returns the
// best path and lattice. The decoder is reset on entry, so a prior failed
// utterance cannot leak state into this one.
func (d *LatticeDecoder) Decode(dec acoustic.Decodable) (*Result, error) {
	d.Reset()
	T := dec.NumFrames()
	if T == 0 {
		return nil, fmt.Errorf("%w: empty utterance", ErrNoPath)
	}

	start := &token{state: d.g.Start, node: d.newNode(0)}
	d.cur[d.g.Start] = start
	d.epsilonClose(0)
	d.prune()

	for t := 0; t < T; t++ {
		for s := range d.next {
			delete(d.next, s)
		}
		for _, tok := range d.cur {
			for _, a := range d.g.Arcs[tok.state] {
				if a.ILabel == graph.Epsilon {
					continue
				}
				ac := dec.LogLikelihood(t, int(a.ILabel))
				d.relax(d.next, tok, a, ac, int32(t+1))
			}
		}
		d.cur, d.next = d.next, d.cur
		if len(d.cur) == 0 {
			return nil, fmt.Errorf("%w: all tokens pruned at frame %d", ErrNoPath, t)
		}
		d.epsilonClose(int32(t + 1))
		d.prune()
	}

	best, partial, err := d.finalToken()
	if err != nil {
		return nil, err
	}

	res := &Result{LogLike: best.score, Partial: partial}
	if !partial {
		res.LogLike += d.g.FinalWeight(best.state)
	}
	d.backtrace(best, res)
	res.Lattice = d.extractLattice(partial)
	return res, nil
}

// relax propagates tok over arc a into the token map, recording the
// lattice arc and keeping the Viterbi-best backpointer per state.
func (d *LatticeDecoder) relax(dst map[int32]*token, tok *token, a graph.Arc, ac float64, frame int32) {
	score := tok.score + a.Weight + ac
	nt, ok := dst[a.Next]
	if !ok {
		nt = &token{state: a.Next, score: mathutil.LogZero, node: d.newNode(frame)}
		dst[a.Next] = nt
	}
	d.arcs[tok.node] = append(d.arcs[tok.node], LatArc{
		To:      nt.node,
		ILabel:  a.ILabel,
		OLabel:  a.OLabel,
		AcScore: ac,
		GrScore: a.Weight,
	})
	if score > nt.score {
		nt.score = score
		nt.prev = tok
		nt.arc = a
	}
}

// epsilonClose expands non-emitting arcs within the current frame until
// no score improves. Decode graphs must be free of epsilon cycles with
// non-negative total weight or this would not terminate.
func (d *LatticeDecoder) epsilonClose(frame int32) {
	queue := make([]*token, 0, len(d.cur))
	for _, tok := range d.cur {
		queue = append(queue, tok)
	}
	for len(queue) > 0 {
		tok := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		// A re-queued token re-expands; drop the arcs its previous
		// expansion recorded so the lattice gets each arc once. Only
		// this closure writes arcs out of the current frame's nodes.
		d.arcs[tok.node] = d.arcs[tok.node][:0]
		for _, a := range d.g.Arcs[tok.state] {
			if a.ILabel != graph.Epsilon {
				continue
			}
			score := tok.score + a.Weight
			nt, ok := d.cur[a.Next]
			if !ok {
				nt = &token{state: a.Next, score: mathutil.LogZero, node: d.newNode(frame)}
				d.cur[a.Next] = nt
			}
			d.arcs[tok.node] = append(d.arcs[tok.node], LatArc{
				To:      nt.node,
				OLabel:  a.OLabel,
				GrScore: a.Weight,
			})
			if score > nt.score {
				nt.score = score
				nt.prev = tok
				nt.arc = a
				queue = append(queue, nt)
			}
		}
	}
}

// prune applies beam pruning relative to the best current score, then
// max-active pruning.
func (d *LatticeDecoder) prune() {
	if len(d.cur) == 0 {
		return
	}
	best := mathutil.LogZero
	for _, tok := range d.cur {
		if tok.score > best {
			best = tok.score
		}
	}
	threshold := best - d.cfg.Beam
	for s, tok := range d.cur {
		if tok.score < threshold {
			delete(d.cur, s)
		}
	}
	if d.cfg.MaxActive > 0 && len(d.cur) > d.cfg.MaxActive {
		toks := make([]*token, 0, len(d.cur))
		for _, tok := range d.cur {
			toks = append(toks, tok)
		}
		sort.Slice(toks, func(i, j int) bool { return toks[i].score > toks[j].score })
		for _, tok := range toks[d.cfg.MaxActive:] {
			delete(d.cur, tok.state)
		}
	}
}

// finalToken picks the best token at a final state, or the overall best
// when partial results are allowed.
func (d *LatticeDecoder) finalToken() (*token, bool, error) {
	var best *token
	bestScore := mathutil.LogZero
	for _, tok := range d.cur {
		if !d.g.IsFinal(tok.state) {
			continue
		}
		if s := tok.score + d.g.FinalWeight(tok.state); best == nil || s > bestScore {
			best, bestScore = tok, s
		}
	}
	if best != nil {
		return best, false, nil
	}
	if !d.cfg.AllowPartial {
		return nil, false, fmt.Errorf("%w: no token reached a final state", ErrNoPath)
	}
	for _, tok := range d.cur {
		if best == nil || tok.score > bestScore {
			best, bestScore = tok, tok.score
		}
	}
	if best == nil {
		return nil, false, ErrNoPath
	}
	return best, true, nil
}

// backtrace walks the Viterbi chain and fills Words and Alignment.
func (d *LatticeDecoder) backtrace(best *token, res *Result) {
	var chain []*token
	for tok := best; tok.prev != nil; tok = tok.prev {
		chain = append(chain, tok)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		a := chain[i].arc
		if a.ILabel != graph.Epsilon {
			res.Alignment = append(res.Alignment, int(a.ILabel))
		}
		if a.OLabel != graph.Epsilon {
			res.Words = append(res.Words, int(a.OLabel))
		}
	}
}

// extractLattice snapshots the recorded nodes and arcs, marks final nodes
// from the surviving tokens and trims nodes that cannot reach a final
// node. The returned lattice owns copies of everything, so a shared-mode
// Reset cannot invalidate it.
func (d *LatticeDecoder) extractLattice(partial bool) *Lattice {
	final := make(map[int32]float64)
	for _, tok := range d.cur {
		if d.g.IsFinal(tok.state) {
			final[tok.node] = d.g.FinalWeight(tok.state)
		} else if partial {
			final[tok.node] = 0
		}
	}

	lat := &Lattice{
		Start:  0,
		Frames: append([]int32(nil), d.frames...),
		Arcs:   make([][]LatArc, len(d.arcs)),
		Final:  final,
	}
	for i, arcs := range d.arcs {
		lat.Arcs[i] = append([]LatArc(nil), arcs...)
	}
	return trim(lat)
}

// trim removes nodes that cannot reach a final node, renumbering the rest.
func trim(lat *Lattice) *Lattice {
	n := lat.NumNodes()
	coacc := make([]bool, n)
	for f := range lat.Final {
		coacc[f] = true
	}
	// Arcs only go forward in creation order within a frame step, but
	// epsilon arcs may not, so iterate to a fixed point.
	for changed := true; changed; {
		changed = false
		for s := n - 1; s >= 0; s-- {
			if coacc[s] {
				continue
			}
			for _, a := range lat.Arcs[s] {
				if coacc[a.To] {
					coacc[s] = true
					changed = true
					break
				}
			}
		}
	}

	remap := make([]int32, n)
	kept := int32(0)
	for s := 0; s < n; s++ {
		if coacc[s] {
			remap[s] = kept
			kept++
		} else {
			remap[s] = -1
		}
	}

	out := &Lattice{
		Start:  remap[lat.Start],
		Frames: make([]int32, 0, kept),
		Arcs:   make([][]LatArc, 0, kept),
		Final:  make(map[int32]float64, len(lat.Final)),
	}
	for s := 0; s < n; s++ {
		if remap[s] < 0 {
			continue
		}
		out.Frames = append(out.Frames, lat.Frames[s])
		var arcs []LatArc
		for _, a := range lat.Arcs[s] {
			if remap[a.To] < 0 {
				continue
			}
			a.To = remap[a.To]
			arcs = append(arcs, a)
		}
		out.Arcs = append(out.Arcs, arcs)
	}
	for f, w := range lat.Final {
		out.Final[remap[f]] = w
	}
	return out
}
