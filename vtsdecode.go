// Package vtsdecode orchestrates noise-compensated lattice decoding: for
// each utterance it binds features, noise estimates and a decode graph to
// one key, compensates the clean acoustic model for that utterance's
// environment, and runs the lattice search over the compensated model.
package vtsdecode

import (
	"errors"

	"github.com/ieee0824/vtsdecode-go/acoustic"
	"github.com/ieee0824/vtsdecode-go/decoder"
	"github.com/ieee0824/vtsdecode-go/noise"
	"github.com/ieee0824/vtsdecode-go/vts"
	"github.com/rs/zerolog"
)

// Runner holds the run-wide pieces of the decode loop. The clean model is
// shared and read-only; every utterance compensates a fresh copy from it.
type Runner struct {
	Clean *acoustic.Model
	Comp  vts.Compensator
	Cfg   RunConfig
	Log   zerolog.Logger
}

// Run processes every utterance the provider yields, strictly one at a
// time. Per-utterance anomalies are counted in stats and the loop moves
// on; systemic problems abort with an error. All per-utterance state
// (compensated model, decoder, noise triple, features) is dropped before
// the next key.
func (r *Runner) Run(p GraphProvider, noiseR noise.VectorReader, sink *Sink, stats *Stats) error {
	wantDim := 3 * r.Cfg.NumCepstral

	for {
		item, ok := p.Next()
		if !ok {
			break
		}
		utt := item.Utt

		if item.Err != nil {
			r.Log.Warn().Str("utt", utt).Err(item.Err).Msg("not decoding utterance")
			stats.AddError()
			continue
		}
		if len(item.Feats) == 0 {
			r.Log.Warn().Str("utt", utt).Msg("zero-length utterance")
			stats.AddError()
			continue
		}
		if dim := len(item.Feats[0]); dim != wantDim {
			return &DimensionError{Utt: utt, Got: dim, Want: wantDim}
		}

		r.Log.Debug().Str("utt", utt).Int("frames", len(item.Feats)).Msg("decoding utterance")

		triple, err := noise.Resolve(utt, noiseR)
		if err != nil {
			var missing *noise.MissingParamError
			if errors.As(err, &missing) && r.Cfg.MissingNoise == MissingNoiseSkip {
				r.Log.Warn().Str("utt", utt).Err(err).Msg("skipping utterance")
				stats.AddError()
				continue
			}
			return err
		}
		r.Log.Debug().
			Floats64("mu_h", triple.MuH).
			Floats64("mu_z", triple.MuZ).
			Floats64("var_z", triple.VarZ).
			Msg("noise parameters")

		compensated, err := r.Comp.Compensate(r.Clean, triple)
		if err != nil {
			r.Log.Warn().Str("utt", utt).Err(err).Msg("compensation failed")
			stats.AddError()
			continue
		}

		dec := acoustic.NewScaledDecodable(compensated, item.Feats, r.Cfg.AcousticScale)
		res, err := item.Dec.Decode(dec)
		if err != nil {
			if errors.Is(err, decoder.ErrNoPath) {
				r.Log.Warn().Str("utt", utt).Err(err).Msg("decoding failed")
				stats.AddError()
				continue
			}
			return err
		}
		if res.Partial {
			r.Log.Warn().Str("utt", utt).Msg("produced partial output: no final state reached")
		}

		if err := sink.Write(utt, res); err != nil {
			return err
		}
		stats.AddDone(res.LogLike, len(item.Feats))
		r.Log.Info().
			Str("utt", utt).
			Float64("loglike_per_frame", res.LogLike/float64(len(item.Feats))).
			Int("frames", len(item.Feats)).
			Msg("utterance done")

		// Drop per-utterance references eagerly; in per-utterance graph
		// mode the next iteration builds another decoder over another
		// graph and the old one must be collectable first.
		item.Dec = nil
		item.Feats = nil
	}

	return p.Err()
}
