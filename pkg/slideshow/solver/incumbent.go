package solver

import (
	"slices"
	"sync"
	"time"
)

// incumbent is the best-known feasible ordering, the only state shared
// between search workers. Replacement is a compare-and-replace under one
// mutex: a candidate wins on a strictly better score, or on an equal score
// with a lexicographically smaller order, so the outcome does not depend on
// worker scheduling.
type incumbent struct {
	mu           sync.Mutex
	order        []int
	score        int
	improvements int
	lastImprove  time.Time
}

func newIncumbent() *incumbent {
	return &incumbent{score: -1, lastImprove: time.Now()}
}

// offer proposes a candidate ordering. It reports whether the incumbent was
// replaced. The candidate slice is copied; callers may keep mutating it.
func (in *incumbent) offer(order []int, score int) bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	if score < in.score {
		return false
	}
	if score == in.score && !lessOrder(order, in.order) {
		return false
	}

	improved := score > in.score
	in.order = slices.Clone(order)
	in.score = score
	if improved {
		in.improvements++
		in.lastImprove = time.Now()
	}
	return improved
}

// snapshot returns a copy of the current best order, its score, and the
// improvement count. Before any offer the order is nil and the score 0.
func (in *incumbent) snapshot() ([]int, int, int) {
	in.mu.Lock()
	defer in.mu.Unlock()

	score := in.score
	if score < 0 {
		score = 0
	}
	return slices.Clone(in.order), score, in.improvements
}

// best returns the current best score, for pruning and progress reporting.
func (in *incumbent) best() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.score
}

// stalledFor reports how long the incumbent has gone without improvement.
func (in *incumbent) stalledFor(now time.Time) time.Duration {
	in.mu.Lock()
	defer in.mu.Unlock()
	return now.Sub(in.lastImprove)
}

// lessOrder compares orderings lexicographically, shorter first on a shared
// prefix. A nil current order loses to any candidate.
func lessOrder(a, b []int) bool {
	if b == nil {
		return true
	}
	return slices.Compare(a, b) < 0
}
