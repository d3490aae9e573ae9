package vtsdecode

import (
	"time"

	"github.com/rs/zerolog"
)

// FrameRate is the assumed feature frame rate used for the real-time
// factor report.
const FrameRate = 100.0

// Stats accumulates run-wide totals. Written only by the decode loop,
// read once at the end of the run.
type Stats struct {
	TotLike    float64
	FrameCount int64
	NumDone    int
	NumErr     int
}

// AddDone records one successfully decoded utterance.
func (s *Stats) AddDone(like float64, frames int) {
	s.TotLike += like
	s.FrameCount += int64(frames)
	s.NumDone++
}

// AddError records one failed utterance.
func (s *Stats) AddError() {
	s.NumErr++
}

// Succeeded reports whether at least one utterance decoded. A run where
// every utterance failed is a hard failure even without a fatal error.
func (s *Stats) Succeeded() bool { return s.NumDone > 0 }

// Report logs the end-of-run summary: timing, real-time factor and mean
// log-likelihood per frame.
func (s *Stats) Report(log zerolog.Logger, elapsed time.Duration) {
	log.Info().
		Int("done", s.NumDone).
		Int("errors", s.NumErr).
		Msg("decoding finished")
	if s.FrameCount > 0 {
		log.Info().
			Float64("elapsed_sec", elapsed.Seconds()).
			Float64("real_time_factor", elapsed.Seconds()*FrameRate/float64(s.FrameCount)).
			Msgf("real-time factor assumes %g frames/sec", FrameRate)
		log.Info().
			Float64("avg_loglike_per_frame", s.TotLike/float64(s.FrameCount)).
			Int64("frames", s.FrameCount).
			Msg("overall log-likelihood")
	}
}
