package slideshow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WomainOK/slideseq/pkg/catalog"
)

// samplePhotos is a small 4-photo catalog with a known best score:
// two horizontal photos with overlapping tags, two vertical ones.
func samplePhotos() []catalog.Photo {
	return []catalog.Photo{
		hphoto(0, "a", "b"),
		hphoto(1, "b", "c"),
		vphoto(2, "x"),
		vphoto(3, "y"),
	}
}

func TestValidateAcceptsFeasibleSequences(t *testing.T) {
	photos := samplePhotos()

	tests := []struct {
		name string
		seq  Sequence
	}{
		{"empty", Sequence{}},
		{"single horizontal", Sequence{SlideFromIDs(0)}},
		{"two horizontals", Sequence{SlideFromIDs(0), SlideFromIDs(1)}},
		{"horizontal then pair", Sequence{SlideFromIDs(0), SlideFromIDs(2, 3)}},
		{"partial use", Sequence{SlideFromIDs(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, Validate(tt.seq, photos))
		})
	}
}

func TestValidateRejections(t *testing.T) {
	photos := samplePhotos()

	tests := []struct {
		name     string
		seq      Sequence
		reason   ViolationReason
		slideIdx int
	}{
		{
			"empty slide",
			Sequence{{ids: []int{}}},
			ViolationSlideSize, 0,
		},
		{
			"oversized slide",
			Sequence{{ids: []int{0, 1, 2}}},
			ViolationSlideSize, 0,
		},
		{
			"unknown id",
			Sequence{SlideFromIDs(9)},
			ViolationUnknownPhoto, 0,
		},
		{
			"negative id",
			Sequence{SlideFromIDs(-1)},
			ViolationUnknownPhoto, 0,
		},
		{
			"reuse across slides",
			Sequence{SlideFromIDs(0), SlideFromIDs(0)},
			ViolationReusedPhoto, 1,
		},
		{
			"reuse inside a pair",
			Sequence{{ids: []int{2, 2}}},
			ViolationReusedPhoto, 0,
		},
		{
			"vertical photo alone",
			Sequence{SlideFromIDs(2)},
			ViolationVerticalAlone, 0,
		},
		{
			"two vertical singles",
			Sequence{SlideFromIDs(2), SlideFromIDs(3)},
			ViolationVerticalAlone, 0,
		},
		{
			"horizontal inside pair",
			Sequence{SlideFromIDs(0, 2)},
			ViolationHorizontalInPair, 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(tt.seq, photos)
			require.NotNil(t, v)
			assert.Equal(t, tt.reason, v.Reason)
			assert.Equal(t, tt.slideIdx, v.SlideIndex)
			assert.NotEmpty(t, v.String())
		})
	}
}

func TestEndToEndSample(t *testing.T) {
	photos := samplePhotos()

	// score([id0],[id1]) = 1: common={b}, onlyA={a}, onlyB={c}.
	assert.Equal(t, 1, TransitionScore(photos[0].Tags, photos[1].Tags))

	// Pair (id2,id3) has combined tags {x,y}; no overlap with id0.
	pair := NewPair(photos[2], photos[3])
	assert.Equal(t, []string{"x", "y"}, pair.Tags())
	assert.Equal(t, 0, TransitionScore(photos[0].Tags, pair.Tags()))

	// [[id0],[id1]] is valid with total score 1.
	seq := Sequence{SlideFromIDs(0), SlideFromIDs(1)}
	require.Nil(t, Validate(seq, photos))
	assert.Equal(t, 1, TotalScore(seq.Resolve(photos)))

	// [[id2],[id3]] must be rejected: vertical photos cannot stand alone.
	bad := Sequence{SlideFromIDs(2), SlideFromIDs(3)}
	v := Validate(bad, photos)
	require.NotNil(t, v)
	assert.Equal(t, ViolationVerticalAlone, v.Reason)
}
