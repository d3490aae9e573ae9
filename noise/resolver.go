// Package noise resolves per-utterance environment estimates: the
// convolutional-noise mean, additive-noise mean, and additive-noise
// variance prepared by an upstream estimation step.
package noise

import (
	"fmt"
	"strings"

	"github.com/ieee0824/vtsdecode-go/internal/mathutil"
)

// Sub-key suffixes under which the three vectors of a triple are stored.
const (
	SuffixMuH  = "_mu_h"
	SuffixMuZ  = "_mu_z"
	SuffixVarZ = "_var_z"
)

// SubKeys derives the three storage keys for an utterance.
func SubKeys(utt string) (muH, muZ, varZ string) {
	return utt + SuffixMuH, utt + SuffixMuZ, utt + SuffixVarZ
}

// Triple is one utterance's noise estimate. Immutable once resolved.
type Triple struct {
	MuH  mathutil.Vec // convolutional-noise mean
	MuZ  mathutil.Vec // additive-noise mean
	VarZ mathutil.Vec // additive-noise variance
}

// VectorReader is the random-access store the resolver reads from.
// HasKey must be side-effect free so all three sub-keys can be checked
// before any value is read.
type VectorReader interface {
	HasKey(key string) bool
	Value(key string) (mathutil.Vec, error)
}

// MissingParamError reports which noise sub-keys are absent for an
// utterance. A partial triple is never decodable, so the error lists
// every missing sub-key, not just the first.
type MissingParamError struct {
	Utt     string
	Missing []string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("utterance %s: missing noise parameters %s",
		e.Utt, strings.Join(e.Missing, ", "))
}

// Resolve fetches the noise triple for an utterance. All three sub-keys
// are checked for presence before any vector is read.
func Resolve(utt string, r VectorReader) (Triple, error) {
	muHKey, muZKey, varZKey := SubKeys(utt)

	var missing []string
	for _, k := range []string{muHKey, muZKey, varZKey} {
		if !r.HasKey(k) {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return Triple{}, &MissingParamError{Utt: utt, Missing: missing}
	}

	var t Triple
	var err error
	if t.MuH, err = r.Value(muHKey); err != nil {
		return Triple{}, fmt.Errorf("read %s: %w", muHKey, err)
	}
	if t.MuZ, err = r.Value(muZKey); err != nil {
		return Triple{}, fmt.Errorf("read %s: %w", muZKey, err)
	}
	if t.VarZ, err = r.Value(varZKey); err != nil {
		return Triple{}, fmt.Errorf("read %s: %w", varZKey, err)
	}
	return t, nil
}
