package solver

import (
	"context"
	"math/bits"
)

// solveExact solves small instances optimally with a Held-Karp dynamic
// program over unit subsets: dp[mask][j] is the best score of a path
// visiting exactly the units in mask and ending at j. Units that share a
// photo are mutually exclusive, so the program only visits subsets whose
// units are pairwise conflict-free, and the answer is the best path over
// any feasible subset (transition scores are non-negative, so larger
// feasible subsets never hurt).
//
// A greedy incumbent is installed before the program runs; if the budget
// trips mid-table, the best path reconstructed so far is offered and the
// run ends with BudgetExpired.
func (s *search) solveExact(ctx context.Context) State {
	n := len(s.units)

	initial := s.greedyOrder(ctx, 0, false)
	s.offer(initial, s.orderScore(initial))

	// conflict[j] has bit i set when units i and j share a photo.
	conflict := s.conflictMasks()

	size := 1 << n
	dp := make([]int32, size*n)
	parent := make([]int8, size*n)
	feasible := make([]bool, size)
	for i := range dp {
		dp[i] = -1
		parent[i] = -1
	}
	feasible[0] = true

	// Best endpoint seen so far, preferring higher score, then more units,
	// then the smaller (mask, end) pair so ties are deterministic.
	bestMask, bestEnd, bestScore := -1, -1, int32(-1)
	consider := func(mask, end int, score int32) {
		switch {
		case score > bestScore:
		case score == bestScore && bits.OnesCount(uint(mask)) > bits.OnesCount(uint(bestMask)):
		case score == bestScore && mask == bestMask && end < bestEnd:
		default:
			return
		}
		bestMask, bestEnd, bestScore = mask, end, score
	}

	for j := 0; j < n; j++ {
		mask := 1 << j
		feasible[mask] = true
		dp[mask*n+j] = 0
		consider(mask, j, 0)
	}

	for mask := 1; mask < size; mask++ {
		if bits.OnesCount(uint(mask)) < 2 {
			continue
		}
		for j := 0; j < n; j++ {
			if mask&(1<<j) == 0 {
				continue
			}
			rest := mask &^ (1 << j)
			if !feasible[rest] || conflict[j]&uint(rest) != 0 {
				continue
			}
			best := int32(-1)
			from := int8(-1)
			for k := 0; k < n; k++ {
				if rest&(1<<k) == 0 || dp[rest*n+k] < 0 {
					continue
				}
				if s.step(ctx) {
					s.offerExact(parent, bestMask, bestEnd, bestScore, n)
					return BudgetExpired
				}
				if sc := dp[rest*n+k] + int32(s.scorer.Score(k, j)); sc > best {
					best, from = sc, int8(k)
				}
			}
			if from < 0 {
				continue
			}
			feasible[mask] = true
			dp[mask*n+j] = best
			parent[mask*n+j] = from
			consider(mask, j, best)
		}
	}

	s.offerExact(parent, bestMask, bestEnd, bestScore, n)
	return Exhausted
}

// offerExact reconstructs the path ending at (mask, end) from the parent
// table and offers it to the incumbent.
func (s *search) offerExact(parent []int8, mask, end int, score int32, n int) {
	if mask < 0 {
		return
	}
	order := make([]int, 0, bits.OnesCount(uint(mask)))
	for end >= 0 {
		order = append(order, end)
		prev := parent[mask*n+end]
		mask &^= 1 << end
		end = int(prev)
	}
	reverse(order)
	s.offer(order, int(score))
}

// conflictMasks computes, for every unit, the bitmask of units it shares a
// photo with. The diagonal is left clear.
func (s *search) conflictMasks() []uint {
	n := len(s.units)
	byPhoto := make(map[int][]int, n)
	for i, u := range s.units {
		for _, id := range u.IDs() {
			byPhoto[id] = append(byPhoto[id], i)
		}
	}
	masks := make([]uint, n)
	for _, members := range byPhoto {
		for _, i := range members {
			for _, j := range members {
				if i != j {
					masks[i] |= 1 << j
				}
			}
		}
	}
	return masks
}
