package slideshow

import (
	"container/list"
	"sync"
)

// cachedScorer computes transition scores on demand and keeps recently used
// results in a bounded LRU cache keyed by the unordered unit index pair.
// Scores never change for a fixed unit set, so eviction only costs a
// recompute.
type cachedScorer struct {
	units []Slide

	mu      sync.Mutex
	entries map[uint64]*list.Element
	order   *list.List // front = most recently used
	cap     int
}

type scoreEntry struct {
	key   uint64
	score int
}

func newCachedScorer(units []Slide, capacity int) *cachedScorer {
	return &cachedScorer{
		units:   units,
		entries: make(map[uint64]*list.Element),
		order:   list.New(),
		cap:     capacity,
	}
}

// pairKey packs an unordered index pair into one key, smaller index high.
func pairKey(i, j int) uint64 {
	if j < i {
		i, j = j, i
	}
	return uint64(i)<<32 | uint64(uint32(j))
}

func (s *cachedScorer) Score(i, j int) int {
	if i == j {
		return 0
	}
	key := pairKey(i, j)

	s.mu.Lock()
	if el, ok := s.entries[key]; ok {
		s.order.MoveToFront(el)
		score := el.Value.(*scoreEntry).score
		s.mu.Unlock()
		return score
	}
	s.mu.Unlock()

	// Compute outside the lock; a concurrent duplicate compute is harmless.
	score := TransitionScore(s.units[i].Tags(), s.units[j].Tags())

	s.mu.Lock()
	if _, ok := s.entries[key]; !ok {
		s.entries[key] = s.order.PushFront(&scoreEntry{key: key, score: score})
		if s.order.Len() > s.cap {
			oldest := s.order.Back()
			s.order.Remove(oldest)
			delete(s.entries, oldest.Value.(*scoreEntry).key)
		}
	}
	s.mu.Unlock()
	return score
}

func (s *cachedScorer) Len() int { return len(s.units) }
