package slideshow

import (
	"iter"
	"slices"

	"github.com/WomainOK/slideseq/pkg/catalog"
)

// Slide is one display unit: a single horizontal photo or an unordered pair
// of two distinct vertical photos. Pairs are stored with the lower photo id
// first. The combined tag set is computed when the slide is built from photos
// and never changes afterwards.
type Slide struct {
	ids  []int
	tags []string
}

// NewSlide builds a single-photo slide from a horizontal photo.
func NewSlide(p catalog.Photo) Slide {
	return Slide{ids: []int{p.ID}, tags: p.Tags}
}

// NewPair builds a pair slide from two vertical photos. The combined tag set
// is the sorted union of both photos' tags.
func NewPair(p, q catalog.Photo) Slide {
	if q.ID < p.ID {
		p, q = q, p
	}
	return Slide{ids: []int{p.ID, q.ID}, tags: unionSorted(p.Tags, q.Tags)}
}

// SlideFromIDs builds a slide from raw photo ids, as read from a sequence
// file. The tag set is left unresolved; use [Sequence.Resolve] after
// validation to attach tags. Pairs are normalized to lower id first.
func SlideFromIDs(ids ...int) Slide {
	ids = slices.Clone(ids)
	if len(ids) == 2 && ids[1] < ids[0] {
		ids[0], ids[1] = ids[1], ids[0]
	}
	return Slide{ids: ids}
}

// IDs returns the photo ids in the slide (one or two, pairs low id first).
// The returned slice must not be modified.
func (s Slide) IDs() []int { return s.ids }

// Single reports whether the slide holds exactly one photo.
func (s Slide) Single() bool { return len(s.ids) == 1 }

// Tags returns the slide's combined tag set, sorted and deduplicated.
// It is nil for slides read from a file that have not been resolved.
func (s Slide) Tags() []string { return s.tags }

// Sequence is an ordered list of slides.
type Sequence []Slide

// Resolve returns a copy of the sequence with every slide's combined tag set
// computed from photos. It must only be called on sequences that passed
// [Validate]; photo ids are indexed directly.
func (seq Sequence) Resolve(photos []catalog.Photo) Sequence {
	out := make(Sequence, len(seq))
	for i, s := range seq {
		if s.tags != nil {
			out[i] = s
			continue
		}
		if s.Single() {
			out[i] = NewSlide(photos[s.ids[0]])
		} else {
			out[i] = NewPair(photos[s.ids[0]], photos[s.ids[1]])
		}
	}
	return out
}

// unionSorted merges two sorted, deduplicated tag slices into their sorted
// set union.
func unionSorted(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// Pairs materializes every unordered pair of distinct vertical photos exactly
// once, lower id first, each with its combined tag set precomputed. The
// result is quadratic in the vertical photo count; for large catalogs prefer
// [PairSeq].
func Pairs(vertical []catalog.Photo) []Slide {
	n := len(vertical)
	if n < 2 {
		return nil
	}
	out := make([]Slide, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, NewPair(vertical[i], vertical[j]))
		}
	}
	return out
}

// PairSeq returns a lazy, restartable sequence over every unordered pair of
// distinct vertical photos, in the same order as [Pairs] but without
// materializing the quadratic pair set. Each iteration restarts from the
// first pair.
func PairSeq(vertical []catalog.Photo) iter.Seq[Slide] {
	return func(yield func(Slide) bool) {
		for i := 0; i < len(vertical); i++ {
			for j := i + 1; j < len(vertical); j++ {
				if !yield(NewPair(vertical[i], vertical[j])) {
					return
				}
			}
		}
	}
}

// DefaultLazyPairThreshold is the vertical photo count above which
// [BuildUnits] stops materializing all candidate pairs and instead commits to
// a disjoint greedy pairing built from [PairSeq].
const DefaultLazyPairThreshold = 512

// BuildUnits constructs the candidate slide set for optimization: one slide
// per horizontal photo plus candidate vertical pairs.
//
// Up to lazyThreshold vertical photos (0 means [DefaultLazyPairThreshold]),
// every vertical pair is a candidate and the optimizer selects a disjoint
// subset. Above the threshold the quadratic candidate set would dominate
// memory, so vertical photos are pre-paired greedily: each photo is paired
// with the unused partner minimizing shared tags, maximizing the combined
// set. A leftover unpaired vertical photo is dropped, as it cannot appear in
// any feasible slide on its own.
func BuildUnits(photos []catalog.Photo, lazyThreshold int) []Slide {
	if lazyThreshold <= 0 {
		lazyThreshold = DefaultLazyPairThreshold
	}
	horizontal, vertical := catalog.Split(photos)

	units := make([]Slide, 0, len(horizontal))
	for _, p := range horizontal {
		units = append(units, NewSlide(p))
	}

	if len(vertical) <= lazyThreshold {
		return append(units, Pairs(vertical)...)
	}
	return append(units, greedyDisjointPairs(vertical)...)
}

// greedyDisjointPairs pairs vertical photos into disjoint slides. For each
// unused photo, in id order, it picks the unused partner whose tag set
// overlaps least, so the union keeps as many distinct tags as possible.
func greedyDisjointPairs(vertical []catalog.Photo) []Slide {
	used := make([]bool, len(vertical))
	var out []Slide
	for i := range vertical {
		if used[i] {
			continue
		}
		best, bestOverlap := -1, int(^uint(0)>>1)
		for j := i + 1; j < len(vertical); j++ {
			if used[j] {
				continue
			}
			overlap := commonTags(vertical[i].Tags, vertical[j].Tags)
			if overlap < bestOverlap {
				best, bestOverlap = j, overlap
			}
		}
		if best < 0 {
			break // odd one out: no feasible slide holds a lone vertical photo
		}
		used[i], used[best] = true, true
		out = append(out, NewPair(vertical[i], vertical[best]))
	}
	return out
}

// commonTags counts tags present in both sorted slices.
func commonTags(a, b []string) int {
	n, i, j := 0, 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			n++
			i++
			j++
		}
	}
	return n
}
