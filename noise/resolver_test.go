package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ieee0824/vtsdecode-go/internal/mathutil"
)

// fakeReader counts Value calls so tests can assert the resolver checks
// presence before reading anything.
type fakeReader struct {
	m     map[string]mathutil.Vec
	reads int
}

func (r *fakeReader) HasKey(key string) bool {
	_, ok := r.m[key]
	return ok
}

func (r *fakeReader) Value(key string) (mathutil.Vec, error) {
	r.reads++
	return r.m[key], nil
}

func TestSubKeys(t *testing.T) {
	muH, muZ, varZ := SubKeys("utt1")
	assert.Equal(t, "utt1_mu_h", muH)
	assert.Equal(t, "utt1_mu_z", muZ)
	assert.Equal(t, "utt1_var_z", varZ)
}

func TestResolve(t *testing.T) {
	r := &fakeReader{m: map[string]mathutil.Vec{
		"u1_mu_h":  {1},
		"u1_mu_z":  {2},
		"u1_var_z": {3},
	}}
	tr, err := Resolve("u1", r)
	require.NoError(t, err)
	assert.Equal(t, mathutil.Vec{1}, tr.MuH)
	assert.Equal(t, mathutil.Vec{2}, tr.MuZ)
	assert.Equal(t, mathutil.Vec{3}, tr.VarZ)
}

func TestResolveMissingListsAllAbsentKeys(t *testing.T) {
	r := &fakeReader{m: map[string]mathutil.Vec{
		"u1_mu_z": {2},
	}}
	_, err := Resolve("u1", r)
	var missing *MissingParamError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "u1", missing.Utt)
	assert.Equal(t, []string{"u1_mu_h", "u1_var_z"}, missing.Missing)

	// A partial triple is not decodable: nothing may be read.
	assert.Zero(t, r.reads, "Resolve read values despite missing keys")
}
