package slideshow

// TransitionScore computes the interest score of showing a slide with tag set
// a followed by one with tag set b: the minimum of the shared tag count and
// the two exclusive tag counts. Both slices must be sorted and deduplicated,
// as produced by the catalog loader and slide constructors.
//
// The function is symmetric, bounded by min(len(a), len(b)), and zero when
// either set is empty or the sets are identical.
func TransitionScore(a, b []string) int {
	common, onlyA, onlyB := 0, 0, 0
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			onlyA++
			i++
		case a[i] > b[j]:
			onlyB++
			j++
		default:
			common++
			i++
			j++
		}
	}
	onlyA += len(a) - i
	onlyB += len(b) - j

	m := common
	if onlyA < m {
		m = onlyA
	}
	if onlyB < m {
		m = onlyB
	}
	return m
}

// TotalScore sums the transition scores between consecutive slides of a
// resolved sequence. Sequences of length zero or one score 0.
func TotalScore(seq Sequence) int {
	total := 0
	for i := 1; i < len(seq); i++ {
		total += TransitionScore(seq[i-1].Tags(), seq[i].Tags())
	}
	return total
}

// Scorer scores transitions between slides of a fixed unit set by index.
// Implementations are safe for concurrent use.
type Scorer interface {
	// Score returns the transition score between units i and j.
	Score(i, j int) int

	// Len returns the number of units the scorer was built over.
	Len() int
}

// DefaultEagerThreshold is the unit count up to which [NewScorer] precomputes
// the full pairwise score table. Beyond it the quadratic table becomes the
// dominant memory cost and scores are computed on demand instead.
const DefaultEagerThreshold = 2048

// DefaultScoreCacheSize bounds the on-demand scorer's LRU cache.
const DefaultScoreCacheSize = 1 << 20

// ScorerOptions configures [NewScorer]. Zero values select the defaults.
type ScorerOptions struct {
	// EagerThreshold is the maximum unit count for full precomputation.
	EagerThreshold int

	// CacheSize bounds the LRU cache used in on-demand mode.
	CacheSize int
}

// NewScorer builds a Scorer over units. Small unit sets get an eagerly
// precomputed table; larger ones an on-demand scorer with a bounded LRU
// cache. Callers cannot observe which mode is active except through memory
// use.
func NewScorer(units []Slide, opts ScorerOptions) Scorer {
	eager := opts.EagerThreshold
	if eager <= 0 {
		eager = DefaultEagerThreshold
	}
	if len(units) <= eager {
		return newTableScorer(units)
	}
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultScoreCacheSize
	}
	return newCachedScorer(units, size)
}

// tableScorer holds the full U×U score table in a flat int32 slice.
type tableScorer struct {
	n     int
	table []int32
}

func newTableScorer(units []Slide) *tableScorer {
	n := len(units)
	s := &tableScorer{n: n, table: make([]int32, n*n)}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := int32(TransitionScore(units[i].Tags(), units[j].Tags()))
			s.table[i*n+j] = v
			s.table[j*n+i] = v
		}
	}
	return s
}

func (s *tableScorer) Score(i, j int) int { return int(s.table[i*s.n+j]) }
func (s *tableScorer) Len() int           { return s.n }
