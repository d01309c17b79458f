package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WomainOK/slideseq/pkg/errors"
)

const sampleCatalog = `4
H 3 cat beach sun
V 2 selfie smile
V 2 garden selfie
H 2 garden cat
`

func TestReadSample(t *testing.T) {
	photos, err := Read(strings.NewReader(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, photos, 4)

	assert.Equal(t, 0, photos[0].ID)
	assert.Equal(t, Horizontal, photos[0].Orientation)
	assert.Equal(t, []string{"beach", "cat", "sun"}, photos[0].Tags)

	assert.Equal(t, 2, photos[2].ID)
	assert.Equal(t, Vertical, photos[2].Orientation)
	assert.Equal(t, []string{"garden", "selfie"}, photos[2].Tags)
}

func TestReadDeduplicatesTags(t *testing.T) {
	photos, err := Read(strings.NewReader("1\nH 3 cat cat sun\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "sun"}, photos[0].Tags)
}

func TestReadEmptyCatalog(t *testing.T) {
	photos, err := Read(strings.NewReader("0\n"))
	require.NoError(t, err)
	assert.Empty(t, photos)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty file", ""},
		{"non-numeric header", "four\nH 1 cat\n"},
		{"negative count", "-1\n"},
		{"too few lines", "3\nH 1 cat\nV 1 dog\n"},
		{"huge count", "4611686018427387904\n"},
		{"too many lines", "1\nH 1 cat\nV 1 dog\n"},
		{"bad orientation", "1\nX 1 cat\n"},
		{"lowercase orientation", "1\nh 1 cat\n"},
		{"missing tag count", "1\nH\n"},
		{"non-numeric tag count", "1\nH two cat beach\n"},
		{"negative tag count", "1\nH -1\n"},
		{"fewer tags than declared", "1\nH 3 cat beach\n"},
		{"more tags than declared", "1\nH 1 cat beach\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeInvalidCatalog, errors.GetCode(err))
		})
	}
}

func TestReadToleratesTrailingBlankLines(t *testing.T) {
	photos, err := Read(strings.NewReader("1\nH 1 cat\n\n\n"))
	require.NoError(t, err)
	assert.Len(t, photos, 1)
}

func TestSplit(t *testing.T) {
	photos, err := Read(strings.NewReader(sampleCatalog))
	require.NoError(t, err)

	horizontal, vertical := Split(photos)
	require.Len(t, horizontal, 2)
	require.Len(t, vertical, 2)
	assert.Equal(t, 0, horizontal[0].ID)
	assert.Equal(t, 3, horizontal[1].ID)
	assert.Equal(t, 1, vertical[0].ID)
	assert.Equal(t, 2, vertical[1].ID)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/does-not-exist.txt")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFileNotFound, errors.GetCode(err))
}
