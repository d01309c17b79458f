package slideshow

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WomainOK/slideseq/pkg/errors"
)

func TestSequenceRoundTrip(t *testing.T) {
	seq := Sequence{
		SlideFromIDs(0),
		SlideFromIDs(2, 3),
		SlideFromIDs(1),
		SlideFromIDs(5, 4),
	}

	var buf bytes.Buffer
	require.NoError(t, seq.Write(&buf))
	assert.Equal(t, "4\n0\n2 3\n1\n4 5\n", buf.String())

	back, err := ReadSequence(&buf)
	require.NoError(t, err)
	require.Len(t, back, len(seq))
	for i := range seq {
		assert.Equal(t, seq[i].IDs(), back[i].IDs(), "slide %d", i)
	}
}

func TestWriteEmptySequence(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Sequence{}.Write(&buf))
	assert.Equal(t, "0\n", buf.String())

	back, err := ReadSequence(&buf)
	require.NoError(t, err)
	assert.Empty(t, back)
}

func TestReadSequenceErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty file", ""},
		{"non-numeric header", "two\n0\n1\n"},
		{"negative count", "-2\n"},
		{"too few lines", "2\n0\n"},
		{"huge count", "4611686018427387904\n"},
		{"too many lines", "1\n0\n1\n"},
		{"empty slide line", "1\n\n"},
		{"three ids on a line", "1\n0 1 2\n"},
		{"non-numeric id", "1\nx\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSequence(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeInvalidSequence, errors.GetCode(err))
		})
	}
}

func TestLoadSequenceMissingFile(t *testing.T) {
	_, err := LoadSequence("testdata/missing.sol")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFileNotFound, errors.GetCode(err))
}
