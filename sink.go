package vtsdecode

import (
	"fmt"

	"github.com/ieee0824/vtsdecode-go/decoder"
	"github.com/ieee0824/vtsdecode-go/graph"
	"github.com/ieee0824/vtsdecode-go/table"
	"github.com/rs/zerolog"
)

// Sink routes one utterance's results to the configured output tables.
// Every destination is optional; a nil writer is a no-op, never an error.
type Sink struct {
	Lattice   *table.Writer[*decoder.Lattice]
	Words     *table.Writer[[]int]
	Alignment *table.Writer[[]int]

	Determinize bool    // write determinized lattices instead of raw ones
	LatticeBeam float64 // pruning margin applied before writing
	Syms        *graph.SymbolTable

	Log zerolog.Logger
}

// Write emits the full record set for one done utterance. Failures here
// are fatal to the run: an output table that stops accepting records is
// broken infrastructure, not a property of the utterance.
func (s *Sink) Write(utt string, res *decoder.Result) error {
	if s.Lattice != nil {
		lat := decoder.Prune(res.Lattice, s.LatticeBeam)
		if s.Determinize {
			lat = decoder.Determinize(lat)
		}
		if err := s.Lattice.Write(utt, lat); err != nil {
			return fmt.Errorf("write lattice for %s: %w", utt, err)
		}
	}
	if s.Words != nil {
		if err := s.Words.Write(utt, res.Words); err != nil {
			return fmt.Errorf("write words for %s: %w", utt, err)
		}
	}
	if s.Alignment != nil {
		if err := s.Alignment.Write(utt, res.Alignment); err != nil {
			return fmt.Errorf("write alignment for %s: %w", utt, err)
		}
	}
	if s.Syms != nil {
		s.Log.Info().Str("utt", utt).Str("words", s.Syms.Render(res.Words)).Msg("decoded")
	}
	return nil
}

// Close flushes every configured writer.
func (s *Sink) Close() error {
	var first error
	if s.Lattice != nil {
		if err := s.Lattice.Close(); err != nil && first == nil {
			first = err
		}
	}
	if s.Words != nil {
		if err := s.Words.Close(); err != nil && first == nil {
			first = err
		}
	}
	if s.Alignment != nil {
		if err := s.Alignment.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
