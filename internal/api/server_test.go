package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WomainOK/slideseq/pkg/cache"
	"github.com/WomainOK/slideseq/pkg/pipeline"
)

const sampleCatalog = `4
H 2 a b
H 2 b c
V 1 x
V 1 y
`

func testHandler() http.Handler {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(cache.NewMemoryCache(), nil, logger)
	return NewServer(runner, logger).Handler()
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	encoded, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestOptimizeEndpoint(t *testing.T) {
	h := testHandler()

	rec := postJSON(t, h, "/v1/optimize", OptimizeRequest{Catalog: sampleCatalog})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp OptimizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.GreaterOrEqual(t, resp.Score, 1)
	assert.Equal(t, 4, resp.Photos)
	assert.NotEmpty(t, resp.Slides)
	assert.NotEmpty(t, resp.CatalogHash)
	assert.False(t, resp.Cached)

	// Second identical request is served from cache.
	rec = postJSON(t, h, "/v1/optimize", OptimizeRequest{Catalog: sampleCatalog})
	require.Equal(t, http.StatusOK, rec.Code)
	var cachedResp OptimizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cachedResp))
	assert.True(t, cachedResp.Cached)
	assert.Empty(t, cachedResp.RunID)
}

func TestOptimizeRejectsBadCatalog(t *testing.T) {
	h := testHandler()

	rec := postJSON(t, h, "/v1/optimize", OptimizeRequest{Catalog: "not a catalog"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
	assert.NotEmpty(t, resp.Code)
}

func TestOptimizeRejectsBadBody(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest(http.MethodPost, "/v1/optimize", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyEndpoint(t *testing.T) {
	h := testHandler()

	t.Run("valid", func(t *testing.T) {
		rec := postJSON(t, h, "/v1/verify", VerifyRequest{
			Catalog:  sampleCatalog,
			Sequence: "2\n0\n1\n",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp VerifyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Valid)
		assert.Equal(t, 1, resp.Score)
		assert.Equal(t, 2, resp.Slides)
		assert.Nil(t, resp.Violation)
	})

	t.Run("invalid sequence is a 200", func(t *testing.T) {
		rec := postJSON(t, h, "/v1/verify", VerifyRequest{
			Catalog:  sampleCatalog,
			Sequence: "2\n2\n3\n",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp VerifyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Valid)
		require.NotNil(t, resp.Violation)
		assert.Equal(t, "VERTICAL_ALONE", resp.Violation.Reason)
		assert.Equal(t, 0, resp.Violation.Slide)
	})

	t.Run("malformed sequence is a 400", func(t *testing.T) {
		rec := postJSON(t, h, "/v1/verify", VerifyRequest{
			Catalog:  sampleCatalog,
			Sequence: "1\n0 1 2\n",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRequestIDIsReused(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "client-id-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "client-id-1", rec.Header().Get("X-Request-Id"))
}
