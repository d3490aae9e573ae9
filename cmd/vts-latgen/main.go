// vts-latgen generates lattices from noisy speech features using a
// VTS-compensated GMM acoustic model.
//
// Usage:
//
//	vts-latgen [options] model (graph|ark:graphs) ark:features ark:noiseparams ark:lattices [ark:words [ark:alignments]]
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	vtsdecode "github.com/ieee0824/vtsdecode-go"
	"github.com/ieee0824/vtsdecode-go/acoustic"
	"github.com/ieee0824/vtsdecode-go/decoder"
	"github.com/ieee0824/vtsdecode-go/graph"
	"github.com/ieee0824/vtsdecode-go/internal/mathutil"
	"github.com/ieee0824/vtsdecode-go/table"
	"github.com/ieee0824/vtsdecode-go/vts"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := vtsdecode.DefaultRunConfig()

	configPath := flag.String("config", "", "YAML config file; explicit flags override it")
	acousticScale := flag.Float64("acoustic-scale", cfg.AcousticScale, "scaling factor for acoustic likelihoods")
	numCepstral := flag.Int("num-cepstral", cfg.NumCepstral, "number of cepstral features")
	numFbank := flag.Int("num-fbank", cfg.NumFbank, "number of filterbanks used to generate the cepstral features")
	cepLifter := flag.Float64("ceplifter", cfg.CepLifter, "ceplifter value used for feature extraction")
	beam := flag.Float64("beam", cfg.Beam, "beam width for decoding")
	maxActive := flag.Int("max-active", cfg.MaxActive, "maximum active tokens")
	latticeBeam := flag.Float64("lattice-beam", cfg.LatticeBeam, "lattice pruning beam")
	determinize := flag.Bool("determinize-lattice", cfg.Determinize, "determinize lattices before writing")
	allowPartial := flag.Bool("allow-partial", cfg.AllowPartial, "produce output even if no final state was reached")
	missingNoise := flag.String("missing-noise", string(cfg.MissingNoise), "policy for a missing noise triple: fail or skip")
	wordSyms := flag.String("word-symbol-table", cfg.WordSymbolTable, "symbol table for words (debug output)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	lvl := zerolog.InfoLevel
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if l, err := zerolog.ParseLevel(v); err == nil {
			lvl = l
		}
	}
	if *verbose {
		lvl = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()

	if flag.NArg() < 5 || flag.NArg() > 7 {
		fmt.Fprintln(os.Stderr, "Usage: vts-latgen [options] model (graph|ark:graphs) ark:features ark:noiseparams ark:lattices [ark:words [ark:alignments]]")
		flag.PrintDefaults()
		return 2
	}

	if *configPath != "" {
		if err := cfg.LoadConfigFile(*configPath); err != nil {
			log.Error().Err(err).Msg("config")
			return 2
		}
	}
	// Explicitly set flags override the config file.
	var flagErr error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "acoustic-scale":
			cfg.AcousticScale = *acousticScale
		case "num-cepstral":
			cfg.NumCepstral = *numCepstral
		case "num-fbank":
			cfg.NumFbank = *numFbank
		case "ceplifter":
			cfg.CepLifter = *cepLifter
		case "beam":
			cfg.Beam = *beam
		case "max-active":
			cfg.MaxActive = *maxActive
		case "lattice-beam":
			cfg.LatticeBeam = *latticeBeam
		case "determinize-lattice":
			cfg.Determinize = *determinize
		case "allow-partial":
			cfg.AllowPartial = *allowPartial
		case "missing-noise":
			p, err := vtsdecode.ParseMissingNoisePolicy(*missingNoise)
			if err != nil {
				flagErr = err
				return
			}
			cfg.MissingNoise = p
		case "word-symbol-table":
			cfg.WordSymbolTable = *wordSyms
		}
	})
	if flagErr != nil {
		log.Error().Err(flagErr).Msg("flags")
		return 2
	}
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config")
		return 2
	}

	modelPath := flag.Arg(0)
	graphSpec := flag.Arg(1)
	featSpec := flag.Arg(2)
	noiseSpec := flag.Arg(3)
	latticeSpec := flag.Arg(4)
	wordsSpec := optArg(5)
	aliSpec := optArg(6)

	clean, err := acoustic.LoadFile(modelPath)
	if err != nil {
		log.Error().Err(err).Msg("model")
		return 2
	}

	tf, err := vts.NewTransform(cfg.TransformConfig())
	if err != nil {
		log.Error().Err(err).Msg("transform")
		return 2
	}

	provider, err := vtsdecode.NewGraphProvider(graphSpec, featSpec, cfg.DecoderConfig())
	if err != nil {
		log.Error().Err(err).Msg("graphs")
		return 2
	}
	defer provider.Close()

	noiseReader, err := table.OpenRandomAccess[mathutil.Vec](noiseSpec)
	if err != nil {
		log.Error().Err(err).Msg("noise parameters")
		return 2
	}

	sink := &vtsdecode.Sink{
		Determinize: cfg.Determinize,
		LatticeBeam: cfg.LatticeBeam,
		Log:         log,
	}
	if sink.Lattice, err = table.NewWriter[*decoder.Lattice](latticeSpec); err != nil {
		log.Error().Err(err).Msg("lattice table")
		return 2
	}
	if wordsSpec != "" {
		if sink.Words, err = table.NewWriter[[]int](wordsSpec); err != nil {
			log.Error().Err(err).Msg("words table")
			return 2
		}
	}
	if aliSpec != "" {
		if sink.Alignment, err = table.NewWriter[[]int](aliSpec); err != nil {
			log.Error().Err(err).Msg("alignments table")
			return 2
		}
	}
	if cfg.WordSymbolTable != "" {
		if sink.Syms, err = graph.LoadSymbolTableFile(cfg.WordSymbolTable); err != nil {
			log.Error().Err(err).Msg("symbol table")
			return 2
		}
	}

	runner := &vtsdecode.Runner{
		Clean: clean,
		Comp:  vts.NewFirstOrder(tf),
		Cfg:   cfg,
		Log:   log,
	}
	stats := &vtsdecode.Stats{}

	begin := time.Now()
	runErr := runner.Run(provider, noiseReader, sink, stats)
	elapsed := time.Since(begin)

	if err := sink.Close(); err != nil {
		log.Error().Err(err).Msg("closing outputs")
		return 2
	}
	if runErr != nil {
		log.Error().Err(runErr).Msg("decoding aborted")
		return 2
	}

	stats.Report(log, elapsed)
	if !stats.Succeeded() {
		return 1
	}
	return 0
}

func optArg(i int) string {
	if i < flag.NArg() {
		return flag.Arg(i)
	}
	return ""
}
