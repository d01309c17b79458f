// Package pipeline provides the core optimization pipeline for Slideseq.
//
// This package implements the complete load → build → solve pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Parse and validate a photo catalog
//  2. Build: Construct candidate slides and the transition scorer
//  3. Solve: Search for a high-scoring feasible sequence
//
// Verification of an existing sequence is a separate, cheaper path that
// shares the load stage.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    TimeLimit: 30 * time.Second,
//	    Seed:      42,
//	}
//	result, err := runner.OptimizeFile(ctx, "photos.txt", opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Score)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/WomainOK/slideseq/pkg/cache"
	"github.com/WomainOK/slideseq/pkg/errors"
	"github.com/WomainOK/slideseq/pkg/slideshow"
	"github.com/WomainOK/slideseq/pkg/slideshow/solver"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the optimization pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Solve options
	TimeLimit      time.Duration `json:"time_limit,omitempty"` // zero = solver default, negative = none
	MaxNodes       int64         `json:"max_nodes,omitempty"`
	StallLimit     time.Duration `json:"stall_limit,omitempty"`
	Seed           int64         `json:"seed,omitempty"`
	Workers        int           `json:"workers,omitempty"`
	ExactThreshold int           `json:"exact_threshold,omitempty"`

	// Build options
	LazyPairThreshold int `json:"lazy_pair_threshold,omitempty"`
	EagerThreshold    int `json:"eager_threshold,omitempty"`
	ScoreCacheSize    int `json:"score_cache_size,omitempty"`

	// Refresh skips the result cache and recomputes.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger           `json:"-"`
	Progress func(solver.Progress) `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks option values and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.MaxNodes < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "max nodes must be non-negative")
	}
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "workers must be non-negative")
	}
	if o.ExactThreshold < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "exact threshold must be non-negative")
	}
	if o.LazyPairThreshold < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "lazy pair threshold must be non-negative")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// SolverOptions maps the pipeline options onto a solver configuration.
func (o *Options) SolverOptions() solver.Options {
	return solver.Options{
		TimeLimit:      o.TimeLimit,
		MaxNodes:       o.MaxNodes,
		StallLimit:     o.StallLimit,
		Seed:           o.Seed,
		Workers:        o.Workers,
		ExactThreshold: o.ExactThreshold,
		Progress:       o.Progress,
	}
}

// ScorerOptions maps the pipeline options onto a scorer configuration.
func (o *Options) ScorerOptions() slideshow.ScorerOptions {
	return slideshow.ScorerOptions{
		EagerThreshold: o.EagerThreshold,
		CacheSize:      o.ScoreCacheSize,
	}
}

// ResultKeyOpts returns the cache key options: every field that changes the
// optimization outcome. Workers and runtime-only fields are excluded, since
// results are deterministic across worker counts for a fixed seed.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	return cache.ResultKeyOpts{
		TimeLimit:         o.TimeLimit,
		MaxNodes:          o.MaxNodes,
		StallLimit:        o.StallLimit,
		Seed:              o.Seed,
		ExactThreshold:    o.ExactThreshold,
		LazyPairThreshold: o.LazyPairThreshold,
	}
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of an optimization run.
type Result struct {
	// Sequence is the best feasible sequence found.
	Sequence slideshow.Sequence

	// Score is the total transition score of Sequence.
	Score int

	// State reports how the search ended.
	State solver.State

	// CatalogHash is the content hash of the catalog file.
	CatalogHash string

	// RunID identifies the solve run; empty for cached results.
	RunID string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Verification contains the outcome of checking an existing sequence.
type Verification struct {
	// Valid reports whether the sequence satisfies all feasibility rules.
	Valid bool

	// Violation is the first rule violation found; nil when Valid.
	Violation *slideshow.Violation

	// Score is the total transition score. Zero for invalid sequences.
	Score int

	// Slides is the sequence length.
	Slides int
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PhotoCount   int
	UnitCount    int
	Nodes        int64
	Improvements int
	LoadTime     time.Duration
	BuildTime    time.Duration
	SolveTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	CatalogHit bool // Whether the parsed catalog came from cache
	ResultHit  bool // Whether the optimization result came from cache
}
