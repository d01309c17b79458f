package solver

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/WomainOK/slideseq/pkg/slideshow"
)

// search owns the state of one solve run: the immutable unit set and scorer,
// the shared incumbent, and the work budget. It is discarded when the run
// ends.
type search struct {
	units  []slideshow.Slide
	scorer slideshow.Scorer
	opts   Options
	start  time.Time

	useDeadline bool
	deadline    time.Time

	nodes   atomic.Int64
	stopped atomic.Bool // budget or cancellation tripped

	inc *incumbent

	progressMu sync.Mutex
}

func newSearch(units []slideshow.Slide, scorer slideshow.Scorer, opts Options, start time.Time) *search {
	s := &search{
		units:  units,
		scorer: scorer,
		opts:   opts,
		start:  start,
		inc:    newIncumbent(),
	}
	limit := opts.TimeLimit
	if limit == 0 {
		limit = DefaultTimeLimit
	}
	if limit > 0 {
		s.useDeadline = true
		s.deadline = start.Add(limit)
	}
	return s
}

// deadlineCheckMask throttles wall-clock reads to every 1024 nodes; the node
// and cancellation checks run on every expansion.
const deadlineCheckMask = 1023

// step accounts one search node and reports whether the search must stop.
// This is the solver's only suspension point: budget and cancellation are
// consulted here, never inside scoring or validation.
func (s *search) step(ctx context.Context) bool {
	n := s.nodes.Add(1)
	if s.opts.MaxNodes > 0 && n > s.opts.MaxNodes {
		s.stopped.Store(true)
		return true
	}
	if n&deadlineCheckMask == 0 {
		if ctx.Err() != nil {
			s.stopped.Store(true)
			return true
		}
		now := time.Now()
		if s.useDeadline && now.After(s.deadline) {
			s.stopped.Store(true)
			return true
		}
		if s.opts.StallLimit > 0 && s.inc.best() >= 0 && s.inc.stalledFor(now) > s.opts.StallLimit {
			s.stopped.Store(true)
			return true
		}
	}
	return s.stopped.Load()
}

// photoConflicts marks the photos of unit u as used, or reports a conflict.
type usedPhotos map[int]struct{}

func (u usedPhotos) conflicts(unit slideshow.Slide) bool {
	for _, id := range unit.IDs() {
		if _, ok := u[id]; ok {
			return true
		}
	}
	return false
}

func (u usedPhotos) add(unit slideshow.Slide) {
	for _, id := range unit.IDs() {
		u[id] = struct{}{}
	}
}

// greedyOrder builds a feasible ordering starting from unit start, always
// appending the non-conflicting unit with the best transition from the tail,
// ties to the lowest unit index. When budgeted, the construction aborts and
// returns nil as soon as the budget trips; the unbudgeted form is used for
// the initial incumbent so that every run ends with a feasible result.
func (s *search) greedyOrder(ctx context.Context, start int, budgeted bool) []int {
	placed := make([]bool, len(s.units))
	used := make(usedPhotos, len(s.units))

	order := make([]int, 0, len(s.units))
	order = append(order, start)
	placed[start] = true
	used.add(s.units[start])

	for {
		if budgeted && s.step(ctx) {
			return nil
		}
		tail := order[len(order)-1]
		best, bestScore := -1, -1
		for j := range s.units {
			if placed[j] || used.conflicts(s.units[j]) {
				continue
			}
			if sc := s.scorer.Score(tail, j); sc > bestScore {
				best, bestScore = j, sc
			}
		}
		if best < 0 {
			return order
		}
		order = append(order, best)
		placed[best] = true
		used.add(s.units[best])
	}
}

// orderScore sums the transition scores along an ordering.
func (s *search) orderScore(order []int) int {
	total := 0
	for i := 1; i < len(order); i++ {
		total += s.scorer.Score(order[i-1], order[i])
	}
	return total
}

// improve runs first-improvement 2-opt on order in place: reversing a
// segment [i..k] replaces at most two boundary transitions, so the score
// delta needs only four lookups. The scan restarts after every accepted
// move and stops at a local optimum or when the budget trips. Every
// candidate move counts as one node. Returns the final score.
func (s *search) improve(ctx context.Context, order []int, score int) int {
	n := len(order)
	if n < 3 {
		return score
	}

	for {
		improved := false
		for i := 0; i < n-1 && !improved; i++ {
			for k := i + 1; k < n; k++ {
				if s.step(ctx) {
					return score
				}
				if i == 0 && k == n-1 {
					continue // full reversal never changes the score
				}

				delta := 0
				b, c := order[i], order[k]
				if i > 0 {
					a := order[i-1]
					delta += s.scorer.Score(a, c) - s.scorer.Score(a, b)
				}
				if k < n-1 {
					d := order[k+1]
					delta += s.scorer.Score(b, d) - s.scorer.Score(c, d)
				}
				if delta <= 0 {
					continue
				}

				reverse(order[i : k+1])
				score += delta
				s.offer(order, score)
				improved = true
				break
			}
		}
		if !improved {
			return score
		}
	}
}

// offer proposes an ordering to the incumbent and emits progress on
// improvement.
func (s *search) offer(order []int, score int) {
	if s.inc.offer(order, score) {
		s.emitProgress()
	}
}

// solveHeuristic runs the multi-start greedy + local improvement pipeline.
func (s *search) solveHeuristic(ctx context.Context) State {
	// The initial incumbent is built outside the budget: anytime means even
	// a zero-step budget returns a feasible, scored sequence.
	initial := s.greedyOrder(ctx, 0, false)
	s.offer(initial, s.improveUnbudgeted(initial))

	starts := s.restartOrder()
	var next atomic.Int64

	stopProgress := s.startProgressTicker(ctx)
	defer stopProgress()

	_ = runWorkers(ctx, workerCount(s.opts), func(ctx context.Context, _ int) error {
		for {
			idx := int(next.Add(1)) - 1
			if idx >= len(starts) || s.stopped.Load() {
				return nil
			}
			order := s.greedyOrder(ctx, starts[idx], true)
			if order == nil {
				return nil
			}
			score := s.improve(ctx, order, s.orderScore(order))
			s.offer(order, score)

			// One perturbation kick per start: reverse a random segment and
			// re-optimize, keeping whichever local optimum scores higher. The
			// kick stream is derived from the start, not the worker, so the
			// explored candidates do not depend on scheduling.
			if len(order) >= 4 && !s.stopped.Load() {
				rng := rand.New(rand.NewSource(deriveSeed(s.opts.Seed, uint64(starts[idx])+1)))
				i := rng.Intn(len(order) - 2)
				k := i + 1 + rng.Intn(len(order)-i-1)
				reverse(order[i : k+1])
				score = s.improve(ctx, order, s.orderScore(order))
				s.offer(order, score)
			}
		}
	})

	if s.stopped.Load() {
		return BudgetExpired
	}
	return Exhausted
}

// improveUnbudgeted scores and polishes the initial ordering with a single
// bounded pass so the first incumbent is not gratuitously weak. It never
// consumes budget.
func (s *search) improveUnbudgeted(order []int) int {
	score := s.orderScore(order)
	n := len(order)
	for i := 1; i < n-1; i++ {
		// Adjacent transposition only: cheap and always terminating.
		a, b, c := order[i-1], order[i], order[i+1]
		delta := s.scorer.Score(a, c) - s.scorer.Score(a, b)
		if i+2 < n {
			d := order[i+2]
			delta += s.scorer.Score(b, d) - s.scorer.Score(c, d)
		}
		if delta > 0 {
			order[i], order[i+1] = order[i+1], order[i]
			score += delta
		}
	}
	return score
}

// restartOrder picks the start units for the multi-start phase: a seeded
// shuffle of all unit indices, capped so huge candidate sets do not schedule
// millions of restarts.
func (s *search) restartOrder() []int {
	starts := make([]int, len(s.units))
	for i := range starts {
		starts[i] = i
	}
	rng := rand.New(rand.NewSource(deriveSeed(s.opts.Seed, 0x5eed)))
	rng.Shuffle(len(starts), func(i, j int) { starts[i], starts[j] = starts[j], starts[i] })

	if cap := 64 * workerCount(s.opts); len(starts) > cap {
		starts = starts[:cap]
	}
	return starts
}

// startProgressTicker emits periodic progress snapshots while the search
// runs. The returned func stops the ticker and waits for the goroutine to
// exit, so no callback fires after Solve returns.
func (s *search) startProgressTicker(ctx context.Context) func() {
	if s.opts.Progress == nil {
		return func() {}
	}
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.emitProgress()
			}
		}
	}()
	return func() {
		close(done)
		<-exited
	}
}

// emitProgress delivers a snapshot to the progress callback. Calls are
// serialized so the callback needs no locking of its own.
func (s *search) emitProgress() {
	if s.opts.Progress == nil {
		return
	}
	_, score, improvements := s.inc.snapshot()
	p := Progress{
		Nodes:        s.nodes.Load(),
		Improvements: improvements,
		Best:         score,
		Elapsed:      time.Since(s.start),
	}
	s.progressMu.Lock()
	s.opts.Progress(p)
	s.progressMu.Unlock()
}

// sequence converts a unit-index ordering into a slide sequence.
func (s *search) sequence(order []int) slideshow.Sequence {
	seq := make(slideshow.Sequence, len(order))
	for i, u := range order {
		seq[i] = s.units[u]
	}
	return seq
}

func reverse(a []int) {
	for i, j := 0, len(a)-1; i < j; i, j = i+1, j-1 {
		a[i], a[j] = a[j], a[i]
	}
}

// defaultWorkers is one worker per CPU.
func defaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// deriveSeed mixes a base seed and a stream id with a SplitMix64-style
// finalizer so worker streams are decorrelated even for adjacent ids.
func deriveSeed(seed int64, stream uint64) int64 {
	x := uint64(seed) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}
