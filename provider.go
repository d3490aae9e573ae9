package vtsdecode

import (
	"fmt"

	"github.com/ieee0824/vtsdecode-go/decoder"
	"github.com/ieee0824/vtsdecode-go/graph"
	"github.com/ieee0824/vtsdecode-go/internal/mathutil"
	"github.com/ieee0824/vtsdecode-go/table"
)

// Item is one utterance yielded by a GraphProvider: the key, a decoder
// bound to the right graph, and the utterance's features. Err is set when
// the utterance cannot be decoded for a per-utterance reason (features
// missing for a graph key); the loop counts it and moves on.
type Item struct {
	Utt   string
	Dec   *decoder.LatticeDecoder
	Feats mathutil.Mat
	Err   error
}

// GraphProvider drives the utterance iteration. Shared mode iterates the
// features table and reuses one decoder; per-utterance mode iterates the
// graph table and builds a fresh decoder per key. The topology is decided
// once at startup, never inside the loop.
type GraphProvider interface {
	Next() (*Item, bool)
	Err() error
	Close() error
}

// NewGraphProvider classifies the graph specifier and opens the matching
// provider. A plain file path selects shared-graph mode driven by
// sequential feature reads; an "ark:" specifier selects per-utterance
// mode with random-access feature lookups.
func NewGraphProvider(graphSpec, featSpec string, cfg decoder.Config) (GraphProvider, error) {
	kind, path := table.ClassifySpec(graphSpec)
	if kind == table.SpecFile {
		g, err := graph.ReadFile(path)
		if err != nil {
			return nil, err
		}
		feats, err := table.OpenSequential[mathutil.Mat](featSpec)
		if err != nil {
			return nil, err
		}
		return &sharedProvider{
			feats: feats,
			dec:   decoder.NewLatticeDecoder(g, cfg),
		}, nil
	}

	graphs, err := table.OpenSequential[*graph.Graph](graphSpec)
	if err != nil {
		return nil, err
	}
	feats, err := table.OpenRandomAccess[mathutil.Mat](featSpec)
	if err != nil {
		graphs.Close()
		return nil, err
	}
	return &tableProvider{graphs: graphs, feats: feats, cfg: cfg}, nil
}

// sharedProvider reuses one decoder across all utterances. Decoder
// construction dominates when the graph is large and identical per
// utterance; the search state is reset, not rebuilt, between keys.
type sharedProvider struct {
	feats *table.SequentialReader[mathutil.Mat]
	dec   *decoder.LatticeDecoder
}

func (p *sharedProvider) Next() (*Item, bool) {
	if !p.feats.Next() {
		return nil, false
	}
	p.dec.Reset()
	return &Item{Utt: p.feats.Key(), Dec: p.dec, Feats: p.feats.Value()}, true
}

func (p *sharedProvider) Err() error { return p.feats.Err() }

func (p *sharedProvider) Close() error { return p.feats.Close() }

// tableProvider yields one graph per utterance. Each decoder is built
// fresh and dropped with its graph before the next key, so a big
// per-utterance graph never accumulates across iterations.
type tableProvider struct {
	graphs *table.SequentialReader[*graph.Graph]
	feats  *table.RandomAccessReader[mathutil.Mat]
	cfg    decoder.Config
	err    error
}

func (p *tableProvider) Next() (*Item, bool) {
	if p.err != nil {
		return nil, false
	}
	if !p.graphs.Next() {
		return nil, false
	}
	utt := p.graphs.Key()
	if !p.feats.HasKey(utt) {
		return &Item{Utt: utt, Err: fmt.Errorf("utterance %s: %w in features table", utt, table.ErrKeyNotFound)}, true
	}
	g := p.graphs.Value()
	if err := g.Validate(); err != nil {
		p.err = fmt.Errorf("graph for utterance %s: %w", utt, err)
		return nil, false
	}
	feats, err := p.feats.Value(utt)
	if err != nil {
		return &Item{Utt: utt, Err: err}, true
	}
	return &Item{Utt: utt, Dec: decoder.NewLatticeDecoder(g, p.cfg), Feats: feats}, true
}

func (p *tableProvider) Err() error {
	if p.err != nil {
		return p.err
	}
	return p.graphs.Err()
}

func (p *tableProvider) Close() error { return p.graphs.Close() }
