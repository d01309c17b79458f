// Package solver searches for a high-scoring ordering of candidate slides.
//
// The problem is a constrained maximum-weight path problem over a complete
// graph whose vertices are slides and whose edge weights are transition
// scores; photos shared between candidate slides make some vertex subsets
// mutually exclusive. It is NP-hard, so the solver is an anytime algorithm:
// it always holds a best-known feasible sequence (the incumbent) and returns
// it whenever the work budget runs out, never a partial or invalid result.
//
// Small instances (at most [Options.ExactThreshold] slides) are solved
// exactly with a Held-Karp style dynamic program over slide subsets. Larger
// instances run a multi-start greedy construction followed by 2-opt style
// local improvement, with one worker per CPU by default. Workers share only
// the incumbent, which is replaced under a strict-improvement
// compare-and-replace rule.
//
// All tie-breaks are by lowest slide index, so runs with the same seed and
// an unconstraining budget are reproducible.
package solver

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/WomainOK/slideseq/pkg/catalog"
	"github.com/WomainOK/slideseq/pkg/errors"
	"github.com/WomainOK/slideseq/pkg/slideshow"
)

// State is the terminal state of a solve run.
type State int

const (
	// Exhausted means the search completed: every planned start was explored
	// (or the instance was solved exactly) within budget.
	Exhausted State = iota

	// BudgetExpired means the time, node, or stall budget ran out and the
	// incumbent at that moment was returned.
	BudgetExpired

	// Infeasible means there were no slides to place; the empty sequence
	// with score 0 is the (valid) result, not an error.
	Infeasible
)

// String returns a short human-readable state name.
func (s State) String() string {
	switch s {
	case Exhausted:
		return "exhausted"
	case BudgetExpired:
		return "budget expired"
	case Infeasible:
		return "infeasible"
	default:
		return "unknown"
	}
}

// Default option values.
const (
	DefaultTimeLimit      = 60 * time.Second
	DefaultExactThreshold = 14

	// maxExactUnits is the hard ceiling on the exact search, whatever
	// [Options.ExactThreshold] asks for: the dynamic program allocates
	// 2^n x n entries, which past this point exhausts memory long before
	// time becomes the constraint. Larger instances take the heuristic path.
	maxExactUnits = 24
)

// Progress is a snapshot of a running search, delivered to
// [Options.Progress]. Callbacks are serialized by the solver.
type Progress struct {
	Nodes        int64         // search nodes expanded so far
	Improvements int           // number of incumbent replacements
	Best         int           // best score found so far
	Elapsed      time.Duration // time since the run started
}

// Options configures a solve run. The zero value selects the defaults.
type Options struct {
	// TimeLimit bounds the wall-clock search time. Zero means
	// [DefaultTimeLimit]; negative means no deadline.
	TimeLimit time.Duration

	// MaxNodes bounds the number of search nodes expanded after the initial
	// greedy construction. Zero means unbounded. The initial construction is
	// never cut short, so every budget still yields a feasible result.
	MaxNodes int64

	// StallLimit stops the search when the incumbent has not improved for
	// this long. Zero disables the stall check.
	StallLimit time.Duration

	// Seed drives the multi-start randomization. The same seed with an
	// unconstraining budget reproduces the same result. Zero picks a fixed
	// default stream.
	Seed int64

	// Workers is the number of concurrent search workers. Zero means one
	// per CPU.
	Workers int

	// ExactThreshold is the largest slide count solved exactly. Zero means
	// [DefaultExactThreshold]. Values beyond the exact search's memory
	// ceiling are clamped; such instances take the heuristic path.
	ExactThreshold int

	// Photos, when set, lets the solver confirm its own output against the
	// feasibility validator before returning.
	Photos []catalog.Photo

	// Progress, when set, receives periodic search snapshots.
	Progress func(Progress)
}

// Result is the outcome of a solve run. The sequence is always feasible.
type Result struct {
	Sequence     slideshow.Sequence
	Score        int
	State        State
	Nodes        int64
	Improvements int
	Elapsed      time.Duration
	RunID        string
}

// Solver searches for a high-scoring feasible ordering of the given slides.
// The search strategy behind the interface is interchangeable; the contract
// is only that the result is feasible, scored, and anytime.
type Solver interface {
	Solve(ctx context.Context, units []slideshow.Slide, scorer slideshow.Scorer, opts Options) (Result, error)
}

// New returns the default anytime solver.
func New() Solver {
	return &anytimeSolver{}
}

// anytimeSolver implements Solver with exact search for small instances and
// multi-start greedy + local improvement for the rest.
type anytimeSolver struct{}

// Solve runs the search. It returns an error only for invalid inputs or when
// a self-check against the validator fails; budget expiry is a normal result.
func (s *anytimeSolver) Solve(ctx context.Context, units []slideshow.Slide, scorer slideshow.Scorer, opts Options) (Result, error) {
	start := time.Now()
	runID := uuid.NewString()

	if scorer == nil {
		return Result{}, errors.New(errors.ErrCodeInvalidOptions, "scorer is required")
	}
	if scorer.Len() != len(units) {
		return Result{}, errors.New(errors.ErrCodeInvalidOptions, "scorer built over %d units, got %d", scorer.Len(), len(units))
	}
	if opts.MaxNodes < 0 {
		return Result{}, errors.New(errors.ErrCodeInvalidOptions, "max nodes must be non-negative")
	}

	if len(units) == 0 {
		return Result{
			Sequence: slideshow.Sequence{},
			State:    Infeasible,
			Elapsed:  time.Since(start),
			RunID:    runID,
		}, nil
	}

	exactLimit := opts.ExactThreshold
	if exactLimit <= 0 {
		exactLimit = DefaultExactThreshold
	}
	if exactLimit > maxExactUnits {
		exactLimit = maxExactUnits
	}

	run := newSearch(units, scorer, opts, start)

	var state State
	if len(units) <= exactLimit {
		state = run.solveExact(ctx)
	} else {
		state = run.solveHeuristic(ctx)
	}

	order, score, improvements := run.inc.snapshot()
	seq := run.sequence(order)

	if opts.Photos != nil {
		if v := slideshow.Validate(seq, opts.Photos); v != nil {
			return Result{}, errors.New(errors.ErrCodeInternal, "solver produced an infeasible sequence: %s", v)
		}
	}

	return Result{
		Sequence:     seq,
		Score:        score,
		State:        state,
		Nodes:        run.nodes.Load(),
		Improvements: improvements,
		Elapsed:      time.Since(start),
		RunID:        runID,
	}, nil
}

// workerCount resolves the configured worker count.
func workerCount(opts Options) int {
	if opts.Workers > 0 {
		return opts.Workers
	}
	return defaultWorkers()
}

// runWorkers fans out fn over n workers and waits for all of them.
func runWorkers(ctx context.Context, n int, fn func(ctx context.Context, worker int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < n; w++ {
		g.Go(func() error { return fn(ctx, w) })
	}
	return g.Wait()
}
