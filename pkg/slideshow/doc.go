// Package slideshow provides the slideshow data model: slides built from
// tagged photos, candidate pair generation for vertical photos, transition
// scoring between slides, sequence feasibility validation, and the text
// sequence-file format.
//
// # Model
//
// A slide holds either one horizontal photo or an unordered pair of two
// distinct vertical photos. Its combined tag set is the union of its photos'
// tags, computed once and cached on the slide. A sequence is an ordered list
// of slides; it is feasible when no photo appears twice and every slide
// respects the orientation rules.
//
// The transition score between two slides is
//
//	min(|common|, |onlyA|, |onlyB|)
//
// over their combined tag sets. It is symmetric, non-negative, bounded by the
// smaller tag set, and zero for identical or disjoint sets.
//
// # Scoring modes
//
// [NewScorer] picks between full pairwise precomputation (small unit counts)
// and on-demand scoring with a bounded LRU cache (large unit counts). Callers
// see one interface either way.
package slideshow
