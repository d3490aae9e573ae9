package vtsdecode

import (
	"fmt"
	"os"

	"github.com/ieee0824/vtsdecode-go/decoder"
	"github.com/ieee0824/vtsdecode-go/vts"
	"gopkg.in/yaml.v3"
)

// RunConfig is the full configuration surface of a decoding run. Flags
// and the optional YAML config file both populate it; flags win.
type RunConfig struct {
	AcousticScale float64 `yaml:"acoustic_scale"`
	NumCepstral   int     `yaml:"num_cepstral"`
	NumFbank      int     `yaml:"num_fbank"`
	CepLifter     float64 `yaml:"ceplifter"`

	Beam         float64 `yaml:"beam"`
	MaxActive    int     `yaml:"max_active"`
	LatticeBeam  float64 `yaml:"lattice_beam"`
	Determinize  bool    `yaml:"determinize_lattice"`
	AllowPartial bool    `yaml:"allow_partial"`

	MissingNoise    MissingNoisePolicy `yaml:"missing_noise"`
	WordSymbolTable string             `yaml:"word_symbol_table"`
}

// DefaultRunConfig returns the standard configuration: 0.1 acoustic
// scale over 13/26/22 MFCC geometry, determinized lattices, strict
// missing-noise handling.
func DefaultRunConfig() RunConfig {
	dc := decoder.DefaultConfig()
	tc := vts.DefaultTransformConfig()
	return RunConfig{
		AcousticScale: 0.1,
		NumCepstral:   tc.NumCepstral,
		NumFbank:      tc.NumFbank,
		CepLifter:     tc.CepLifter,
		Beam:          dc.Beam,
		MaxActive:     dc.MaxActive,
		LatticeBeam:   dc.LatticeBeam,
		Determinize:   dc.Determinize,
		MissingNoise:  MissingNoiseFail,
	}
}

// LoadConfigFile overlays a YAML config file onto c.
func (c *RunConfig) LoadConfigFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration for values the run cannot start with.
func (c RunConfig) Validate() error {
	if c.AcousticScale <= 0 {
		return fmt.Errorf("acoustic scale must be positive, got %g", c.AcousticScale)
	}
	if c.NumCepstral <= 0 || c.NumFbank <= 0 {
		return fmt.Errorf("cepstral/filterbank counts must be positive, got %d/%d",
			c.NumCepstral, c.NumFbank)
	}
	if c.Beam <= 0 {
		return fmt.Errorf("beam must be positive, got %g", c.Beam)
	}
	if _, err := ParseMissingNoisePolicy(string(c.MissingNoise)); err != nil {
		return err
	}
	return nil
}

// TransformConfig derives the compensation transform geometry.
func (c RunConfig) TransformConfig() vts.TransformConfig {
	return vts.TransformConfig{
		NumCepstral: c.NumCepstral,
		NumFbank:    c.NumFbank,
		CepLifter:   c.CepLifter,
	}
}

// DecoderConfig derives the search configuration.
func (c RunConfig) DecoderConfig() decoder.Config {
	return decoder.Config{
		Beam:         c.Beam,
		MaxActive:    c.MaxActive,
		LatticeBeam:  c.LatticeBeam,
		Determinize:  c.Determinize,
		AllowPartial: c.AllowPartial,
	}
}
