package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WomainOK/slideseq/pkg/cache"
	"github.com/WomainOK/slideseq/pkg/errors"
	"github.com/WomainOK/slideseq/pkg/slideshow"
)

const sampleCatalog = `4
H 2 a b
H 2 b c
V 1 x
V 1 y
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testRunner() *Runner {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return NewRunner(cache.NewMemoryCache(), nil, logger)
}

func TestOptimizeFileEndToEnd(t *testing.T) {
	ctx := context.Background()
	r := testRunner()
	defer r.Close()

	path := writeFile(t, "photos.txt", sampleCatalog)

	result, err := r.OptimizeFile(ctx, path, Options{})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Stats.PhotoCount)
	assert.Equal(t, 3, result.Stats.UnitCount) // two singles plus one pair
	assert.False(t, result.CacheInfo.CatalogHit)
	assert.False(t, result.CacheInfo.ResultHit)
	assert.NotEmpty(t, result.CatalogHash)
	assert.NotEmpty(t, result.RunID)
	assert.GreaterOrEqual(t, result.Score, 1)

	// The returned sequence must verify at the reported score.
	photos, _, _, err := r.LoadCatalog(ctx, path)
	require.NoError(t, err)
	require.Nil(t, slideshow.Validate(result.Sequence, photos))
	assert.Equal(t, result.Score, slideshow.TotalScore(result.Sequence.Resolve(photos)))
}

func TestOptimizeFileReusesCache(t *testing.T) {
	ctx := context.Background()
	r := testRunner()
	defer r.Close()

	path := writeFile(t, "photos.txt", sampleCatalog)

	first, err := r.OptimizeFile(ctx, path, Options{})
	require.NoError(t, err)

	second, err := r.OptimizeFile(ctx, path, Options{})
	require.NoError(t, err)

	assert.True(t, second.CacheInfo.CatalogHit)
	assert.True(t, second.CacheInfo.ResultHit)
	assert.Empty(t, second.RunID) // no solve run happened
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, len(first.Sequence), len(second.Sequence))
}

func TestOptimizeDifferentOptionsMissCache(t *testing.T) {
	ctx := context.Background()
	r := testRunner()
	defer r.Close()

	path := writeFile(t, "photos.txt", sampleCatalog)

	_, err := r.OptimizeFile(ctx, path, Options{Seed: 1})
	require.NoError(t, err)

	second, err := r.OptimizeFile(ctx, path, Options{Seed: 2})
	require.NoError(t, err)
	assert.False(t, second.CacheInfo.ResultHit)
}

func TestOptimizeRefreshSkipsCache(t *testing.T) {
	ctx := context.Background()
	r := testRunner()
	defer r.Close()

	path := writeFile(t, "photos.txt", sampleCatalog)

	_, err := r.OptimizeFile(ctx, path, Options{})
	require.NoError(t, err)

	again, err := r.OptimizeFile(ctx, path, Options{Refresh: true})
	require.NoError(t, err)
	assert.False(t, again.CacheInfo.ResultHit)
	assert.NotEmpty(t, again.RunID)
}

func TestOptimizeCancelledRunNotCached(t *testing.T) {
	r := testRunner()
	defer r.Close()

	path := writeFile(t, "photos.txt", sampleCatalog)

	// A cancelled context still yields a best-so-far result, but that weak
	// answer must not be stored under the full-budget cache key.
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	first, err := r.OptimizeFile(cancelled, path, Options{})
	require.NoError(t, err)
	require.NotEmpty(t, first.Sequence)

	second, err := r.OptimizeFile(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.False(t, second.CacheInfo.ResultHit)
	assert.NotEmpty(t, second.RunID)
}

func TestOptimizeInvalidOptions(t *testing.T) {
	ctx := context.Background()
	r := testRunner()
	defer r.Close()

	_, err := r.Optimize(ctx, nil, "hash", Options{MaxNodes: -1})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidOptions, errors.GetCode(err))
}

func TestLoadCatalogMissingFile(t *testing.T) {
	ctx := context.Background()
	r := testRunner()
	defer r.Close()

	_, _, _, err := r.LoadCatalog(ctx, filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFileNotFound, errors.GetCode(err))
}

func TestVerifyFiles(t *testing.T) {
	ctx := context.Background()
	r := testRunner()
	defer r.Close()

	catalogPath := writeFile(t, "photos.txt", sampleCatalog)

	t.Run("valid sequence", func(t *testing.T) {
		seqPath := writeFile(t, "out.txt", "3\n0\n2 3\n1\n")
		v, err := r.VerifyFiles(ctx, catalogPath, seqPath)
		require.NoError(t, err)
		assert.True(t, v.Valid)
		assert.Nil(t, v.Violation)
		assert.Equal(t, 3, v.Slides)
		assert.GreaterOrEqual(t, v.Score, 0)
	})

	t.Run("invalid sequence is a result, not an error", func(t *testing.T) {
		seqPath := writeFile(t, "bad.txt", "2\n2\n3\n")
		v, err := r.VerifyFiles(ctx, catalogPath, seqPath)
		require.NoError(t, err)
		assert.False(t, v.Valid)
		require.NotNil(t, v.Violation)
		assert.Equal(t, slideshow.ViolationVerticalAlone, v.Violation.Reason)
		assert.Zero(t, v.Score)
	})

	t.Run("malformed sequence file is an error", func(t *testing.T) {
		seqPath := writeFile(t, "broken.txt", "1\n0 1 2\n")
		_, err := r.VerifyFiles(ctx, catalogPath, seqPath)
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeInvalidSequence, errors.GetCode(err))
	})
}

func TestVerifyKnownScore(t *testing.T) {
	ctx := context.Background()
	r := testRunner()
	defer r.Close()

	photos, _, _, err := r.LoadCatalog(ctx, writeFile(t, "photos.txt", sampleCatalog))
	require.NoError(t, err)

	seq := slideshow.Sequence{slideshow.SlideFromIDs(0), slideshow.SlideFromIDs(1)}
	v, err := r.Verify(ctx, photos, seq)
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, 1, v.Score)
}
