package decoder

import (
	"sort"

	"github.com/ieee0824/vtsdecode-go/internal/mathutil"
)

// maxDetPaths bounds the path enumeration inside Determinize. Lattices
// pruned with a sane lattice beam stay far below this.
const maxDetPaths = 4096

// Prune removes lattice arcs and nodes whose best path through them falls
// more than beam below the overall best path, using max-product
// forward/backward scores.
func Prune(lat *Lattice, beam float64) *Lattice {
	n := lat.NumNodes()
	if n == 0 {
		return lat
	}

	forward := mathutil.NewVecFill(n, mathutil.LogZero)
	forward[lat.Start] = 0
	relaxAll(lat, forward, func(from int32, a LatArc) (int32, float64) {
		return a.To, forward[from] + a.AcScore + a.GrScore
	})

	backward := mathutil.NewVecFill(n, mathutil.LogZero)
	for f, w := range lat.Final {
		backward[f] = w
	}
	relaxAll(lat, backward, func(from int32, a LatArc) (int32, float64) {
		return from, a.AcScore + a.GrScore + backward[a.To]
	})

	best := mathutil.LogZero
	for f, w := range lat.Final {
		if s := forward[f] + w; s > best {
			best = s
		}
	}
	threshold := best - beam

	out := &Lattice{
		Start:  lat.Start,
		Frames: lat.Frames,
		Arcs:   make([][]LatArc, n),
		Final:  make(map[int32]float64, len(lat.Final)),
	}
	for s := 0; s < n; s++ {
		for _, a := range lat.Arcs[s] {
			if forward[s]+a.AcScore+a.GrScore+backward[a.To] >= threshold {
				out.Arcs[s] = append(out.Arcs[s], a)
			}
		}
	}
	for f, w := range lat.Final {
		if forward[f]+w >= threshold {
			out.Final[f] = w
		}
	}
	return trim(out)
}

// relaxAll runs max-relaxation over every arc to a fixed point. The
// lattice is a DAG but its node numbering is not topological across
// epsilon arcs, so iteration is the simplest correct order.
func relaxAll(lat *Lattice, scores []float64, edge func(from int32, a LatArc) (int32, float64)) {
	for changed := true; changed; {
		changed = false
		for s := range lat.Arcs {
			for _, a := range lat.Arcs[s] {
				dst, score := edge(int32(s), a)
				if score > scores[dst] {
					scores[dst] = score
					changed = true
				}
			}
		}
	}
}

// Determinize reduces a (pruned) lattice to at most one path per distinct
// word sequence, keeping the best-scoring one. The result is a word-trie
// lattice: frame indices and alignments are dropped, each path's full
// score sits on its final weight. Mirrors the shape of a determinized
// compact lattice without carrying per-word alignments.
func Determinize(lat *Lattice) *Lattice {
	type path struct {
		words []int32
		score float64
	}
	bestBySeq := make(map[string]path)

	var walk func(node int32, words []int32, score float64)
	budget := maxDetPaths
	walk = func(node int32, words []int32, score float64) {
		if budget <= 0 {
			return
		}
		if w, ok := lat.Final[node]; ok {
			budget--
			key := wordKey(words)
			if p, seen := bestBySeq[key]; !seen || score+w > p.score {
				bestBySeq[key] = path{words: append([]int32(nil), words...), score: score + w}
			}
		}
		for _, a := range lat.Arcs[node] {
			next := words
			if a.OLabel != 0 {
				next = append(words, a.OLabel)
			}
			walk(a.To, next, score+a.AcScore+a.GrScore)
		}
	}
	if lat.NumNodes() > 0 {
		walk(lat.Start, nil, 0)
	}

	// Deterministic construction order keeps output stable across runs.
	keys := make([]string, 0, len(bestBySeq))
	for k := range bestBySeq {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := &Lattice{
		Start:  0,
		Frames: []int32{-1},
		Arcs:   [][]LatArc{nil},
		Final:  make(map[int32]float64),
	}
	for _, k := range keys {
		p := bestBySeq[k]
		node := int32(0)
		for _, w := range p.words {
			next := int32(-1)
			for _, a := range out.Arcs[node] {
				if a.OLabel == w {
					next = a.To
					break
				}
			}
			if next < 0 {
				next = int32(len(out.Arcs))
				out.Frames = append(out.Frames, -1)
				out.Arcs = append(out.Arcs, nil)
				out.Arcs[node] = append(out.Arcs[node], LatArc{To: next, OLabel: w})
			}
			node = next
		}
		if w, ok := out.Final[node]; !ok || p.score > w {
			out.Final[node] = p.score
		}
	}
	return out
}

// wordKey encodes a word sequence as a map key.
func wordKey(words []int32) string {
	b := make([]byte, 0, len(words)*4)
	for _, w := range words {
		b = append(b, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	return string(b)
}
