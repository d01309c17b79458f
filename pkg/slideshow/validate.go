package slideshow

import (
	"fmt"

	"github.com/WomainOK/slideseq/pkg/catalog"
)

// ViolationReason is a machine-readable feasibility failure category.
type ViolationReason string

// Feasibility failure categories, in the order they are checked.
const (
	ViolationSlideSize        ViolationReason = "SLIDE_SIZE"
	ViolationUnknownPhoto     ViolationReason = "UNKNOWN_PHOTO"
	ViolationReusedPhoto      ViolationReason = "REUSED_PHOTO"
	ViolationVerticalAlone    ViolationReason = "VERTICAL_ALONE"
	ViolationHorizontalInPair ViolationReason = "HORIZONTAL_IN_PAIR"
)

// Violation describes the first feasibility rule a sequence breaks.
// Violations are results, not errors: a batch verification run reports them
// and keeps going.
type Violation struct {
	Reason     ViolationReason
	SlideIndex int
	Message    string
}

// String renders the violation for user-facing output.
func (v *Violation) String() string {
	return fmt.Sprintf("slide %d: %s", v.SlideIndex, v.Message)
}

// Validate checks sequence feasibility against the photo catalog and returns
// the first violation found, or nil when the sequence is feasible. It makes
// no assumption about where the sequence came from; it is the sole gate for
// externally supplied solutions.
//
// Per slide, in order: member count must be 1 or 2; every photo id must
// exist; no photo id may repeat anywhere in the sequence; a single slide must
// hold a horizontal photo; a pair slide must hold two vertical photos.
func Validate(seq Sequence, photos []catalog.Photo) *Violation {
	used := make(map[int]bool, len(photos))

	for i, slide := range seq {
		ids := slide.IDs()
		if len(ids) != 1 && len(ids) != 2 {
			return &Violation{
				Reason:     ViolationSlideSize,
				SlideIndex: i,
				Message:    fmt.Sprintf("holds %d photos, want 1 or 2", len(ids)),
			}
		}

		for _, id := range ids {
			if id < 0 || id >= len(photos) {
				return &Violation{
					Reason:     ViolationUnknownPhoto,
					SlideIndex: i,
					Message:    fmt.Sprintf("unknown photo id %d", id),
				}
			}
			if used[id] {
				return &Violation{
					Reason:     ViolationReusedPhoto,
					SlideIndex: i,
					Message:    fmt.Sprintf("photo %d already used", id),
				}
			}
			used[id] = true
		}

		if len(ids) == 1 && !photos[ids[0]].Horizontal() {
			return &Violation{
				Reason:     ViolationVerticalAlone,
				SlideIndex: i,
				Message:    fmt.Sprintf("vertical photo %d cannot fill a slide alone", ids[0]),
			}
		}
		if len(ids) == 2 {
			for _, id := range ids {
				if photos[id].Horizontal() {
					return &Violation{
						Reason:     ViolationHorizontalInPair,
						SlideIndex: i,
						Message:    fmt.Sprintf("horizontal photo %d cannot be part of a pair", id),
					}
				}
			}
		}
	}
	return nil
}
