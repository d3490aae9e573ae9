package vtsdecode

import "fmt"

// DimensionError reports a feature matrix whose column count does not
// match the configured cepstral geometry. This is a systemic
// misconfiguration, so the run aborts instead of skipping the utterance.
type DimensionError struct {
	Utt  string
	Got  int
	Want int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("utterance %s: feature dim %d, want %d (3 x num-cepstral MFCC_0_D_A)",
		e.Utt, e.Got, e.Want)
}

// MissingNoisePolicy decides what a missing noise-parameter triple does to
// the run: abort it, or count the utterance as an error and continue.
type MissingNoisePolicy string

const (
	// MissingNoiseFail aborts the whole run on a missing triple.
	MissingNoiseFail MissingNoisePolicy = "fail"
	// MissingNoiseSkip counts the utterance as an error and continues.
	MissingNoiseSkip MissingNoisePolicy = "skip"
)

// ParseMissingNoisePolicy validates a policy string.
func ParseMissingNoisePolicy(s string) (MissingNoisePolicy, error) {
	switch MissingNoisePolicy(s) {
	case MissingNoiseFail, MissingNoiseSkip:
		return MissingNoisePolicy(s), nil
	}
	return "", fmt.Errorf("unknown missing-noise policy %q (want %q or %q)",
		s, MissingNoiseFail, MissingNoiseSkip)
}
