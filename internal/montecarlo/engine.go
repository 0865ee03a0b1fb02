// Package montecarlo simulates multi-year compounding of an initial value
// under normally distributed annual returns and summarizes the terminal
// value distribution with percentiles, a histogram and sample paths.
package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/investlab/internal/random"
	"github.com/seenimoa/investlab/pkg/models"
)

// ErrInvalidConfiguration is returned when simulation parameters are out of
// range. Nothing is simulated when it is returned.
var ErrInvalidConfiguration = errors.New("montecarlo: invalid configuration")

// DefaultChunkSize is the number of trials one worker task simulates.
const DefaultChunkSize = 1024

// checkEvery is how many trials run between cancellation checks.
const checkEvery = 256

// ════════════════════════════════════════════════════════════════════
// Engine Configuration
// ════════════════════════════════════════════════════════════════════

// Options tune how a run is executed. None of them change the statistics
// being estimated.
type Options struct {
	Workers   int         // concurrent chunk tasks (default: GOMAXPROCS)
	Seed      uint64      // base seed; 0 picks a random seed per run
	ChunkSize int         // trials per task (default: DefaultChunkSize)
	Logger    *zap.Logger // optional; nil discards
}

// Engine runs Monte Carlo simulations. It holds no per-run state and is
// safe for concurrent use.
type Engine struct {
	workers   int
	seed      uint64
	chunkSize int
	log       *zap.Logger
}

// NewEngine creates an engine, filling unset options with defaults.
func NewEngine(opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		workers:   opts.Workers,
		seed:      opts.Seed,
		chunkSize: opts.ChunkSize,
		log:       opts.Logger.Named("montecarlo"),
	}
}

// RunSimulation simulates every distribution under cfg with a default,
// randomly seeded engine.
func RunSimulation(ctx context.Context, dists []models.ReturnDistribution, cfg models.SimulationConfig) ([]models.SimulationResult, error) {
	return NewEngine(Options{}).Run(ctx, dists, cfg)
}

// ════════════════════════════════════════════════════════════════════
// Validation
// ════════════════════════════════════════════════════════════════════

// Validate reports whether dists and cfg describe a runnable simulation.
func Validate(dists []models.ReturnDistribution, cfg models.SimulationConfig) error {
	switch {
	case cfg.Trials <= 0:
		return fmt.Errorf("%w: trials must be positive, got %d", ErrInvalidConfiguration, cfg.Trials)
	case cfg.Years <= 0:
		return fmt.Errorf("%w: years must be positive, got %d", ErrInvalidConfiguration, cfg.Years)
	case cfg.HistogramBins <= 0:
		return fmt.Errorf("%w: histogram bins must be positive, got %d", ErrInvalidConfiguration, cfg.HistogramBins)
	case cfg.PathsToCapture < 0:
		return fmt.Errorf("%w: paths to capture must not be negative, got %d", ErrInvalidConfiguration, cfg.PathsToCapture)
	case !finite(cfg.InitialValue) || cfg.InitialValue <= 0:
		return fmt.Errorf("%w: initial value must be positive, got %v", ErrInvalidConfiguration, cfg.InitialValue)
	case len(dists) == 0:
		return fmt.Errorf("%w: no return distributions", ErrInvalidConfiguration)
	}

	for i, d := range dists {
		if !finite(d.MeanAnnualReturn) {
			return fmt.Errorf("%w: distribution %d (%s): mean must be finite", ErrInvalidConfiguration, i, d.Name)
		}
		if !finite(d.AnnualStdDev) || d.AnnualStdDev < 0 {
			return fmt.Errorf("%w: distribution %d (%s): std dev must be non-negative, got %v",
				ErrInvalidConfiguration, i, d.Name, d.AnnualStdDev)
		}
	}
	for _, q := range cfg.Percentiles {
		if !finite(q) || q < 0 || q > 1 {
			return fmt.Errorf("%w: percentile %v outside [0, 1]", ErrInvalidConfiguration, q)
		}
	}
	return nil
}

// ════════════════════════════════════════════════════════════════════
// Run
// ════════════════════════════════════════════════════════════════════

// trialSet is the raw output of one distribution before summarizing.
type trialSet struct {
	terminal []float64
	paths    [][]models.PathPoint
}

// Run simulates every distribution in dists and returns one result per
// distribution, in order. Each distribution draws from its own random
// streams. A cancelled ctx aborts the run with ctx.Err().
func (e *Engine) Run(ctx context.Context, dists []models.ReturnDistribution, cfg models.SimulationConfig) ([]models.SimulationResult, error) {
	if err := Validate(dists, cfg); err != nil {
		return nil, err
	}

	seed := e.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	capture := min(cfg.PathsToCapture, cfg.Trials)
	chunks := (cfg.Trials + e.chunkSize - 1) / e.chunkSize

	e.log.Debug("simulation started",
		zap.Int("distributions", len(dists)),
		zap.Int("trials", cfg.Trials),
		zap.Int("years", cfg.Years),
		zap.Int("chunks", chunks),
		zap.Int("workers", e.workers),
		zap.Uint64("seed", seed),
	)
	start := time.Now()

	sets := make([]trialSet, len(dists))
	for d := range sets {
		sets[d] = trialSet{
			terminal: make([]float64, cfg.Trials),
			paths:    make([][]models.PathPoint, capture),
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for d, dist := range dists {
		set := sets[d]
		for c := 0; c < chunks; c++ {
			lo := c * e.chunkSize
			hi := min(lo+e.chunkSize, cfg.Trials)
			stream := uint64(d)<<32 | uint64(c)
			g.Go(func() error {
				s := random.NewSeeded(seed, stream)
				return simulateChunk(gctx, s, dist, cfg, lo, set.terminal[lo:hi], set.paths)
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	percentiles := cfg.Percentiles
	if len(percentiles) == 0 {
		percentiles = models.DefaultPercentiles
	}

	results := make([]models.SimulationResult, len(dists))
	for d, dist := range dists {
		terminal := sets[d].terminal
		sort.Float64s(terminal)
		if !finite(terminal[0]) || !finite(terminal[len(terminal)-1]) {
			return nil, fmt.Errorf("%w: distribution %d (%s) overflowed; reduce years or std dev",
				ErrInvalidConfiguration, d, dist.Name)
		}
		results[d] = models.SimulationResult{
			Distribution:   dist,
			TerminalValues: terminal,
			Percentiles:    Percentiles(terminal, percentiles),
			Histogram:      Histogram(terminal, cfg.HistogramBins),
			SamplePaths:    sets[d].paths,
			Summary:        Summarize(terminal, cfg.InitialValue),
		}
		e.log.Debug("distribution simulated",
			zap.String("distribution", dist.Name),
			zap.Float64("median", results[d].Percentile(0.5)),
			zap.Float64("prob_shortfall", results[d].Summary.ProbShortfall),
		)
	}

	e.log.Debug("simulation finished", zap.Duration("elapsed", time.Since(start)))
	return results, nil
}

// simulateChunk compounds the trials [lo, lo+len(out)) and stores their
// terminal values in out. Trials whose index is below len(paths) also
// record their full path; the rest keep only the terminal value.
func simulateChunk(ctx context.Context, s *random.Sampler, dist models.ReturnDistribution,
	cfg models.SimulationConfig, lo int, out []float64, paths [][]models.PathPoint) error {
	mean, sd := dist.MeanAnnualReturn, dist.AnnualStdDev

	for i := range out {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		value := cfg.InitialValue
		if trial := lo + i; trial < len(paths) {
			path := make([]models.PathPoint, cfg.Years+1)
			path[0] = models.PathPoint{Year: 0, Value: value}
			for year := 1; year <= cfg.Years; year++ {
				value *= 1 + s.Normal(mean, sd)
				path[year] = models.PathPoint{Year: year, Value: value}
			}
			paths[trial] = path
		} else {
			for year := 1; year <= cfg.Years; year++ {
				value *= 1 + s.Normal(mean, sd)
			}
		}
		out[i] = value
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
