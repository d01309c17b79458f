package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/WomainOK/slideseq/pkg/cache"
	"github.com/WomainOK/slideseq/pkg/catalog"
	"github.com/WomainOK/slideseq/pkg/errors"
	"github.com/WomainOK/slideseq/pkg/observability"
	"github.com/WomainOK/slideseq/pkg/slideshow"
	"github.com/WomainOK/slideseq/pkg/slideshow/solver"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	Solver solver.Solver
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		Solver: solver.New(),
	}
}

// LoadCatalog reads and parses a catalog file, caching the parsed photos by
// content hash. It returns the photos, the catalog hash, and whether the
// parsed form came from cache.
func (r *Runner) LoadCatalog(ctx context.Context, path string) ([]catalog.Photo, string, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, "", false, errors.Wrap(errors.ErrCodeFileNotFound, err, "catalog file %q not found", path)
	}
	if err != nil {
		return nil, "", false, errors.Wrap(errors.ErrCodeInvalidInput, err, "read catalog file %q", path)
	}
	hash := cache.Hash(data)

	cacheKey := r.Keyer.CatalogKey(hash)
	if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		var photos []catalog.Photo
		if err := json.Unmarshal(cached, &photos); err == nil {
			observability.Cache().OnCacheHit(ctx, "catalog")
			return photos, hash, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "catalog")

	photos, err := catalog.Read(bytes.NewReader(data))
	if err != nil {
		return nil, "", false, err
	}

	if encoded, err := json.Marshal(photos); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, encoded, cache.TTLCatalog)
		observability.Cache().OnCacheSet(ctx, "catalog", len(encoded))
	}

	return photos, hash, false, nil
}

// cachedResult is the serialized form of an optimization result.
type cachedResult struct {
	Slides [][]int `json:"slides"`
	Score  int     `json:"score"`
	State  int     `json:"state"`
}

// Optimize searches for a high-scoring sequence over photos, with result
// caching keyed by the catalog hash and the outcome-relevant options.
func (r *Runner) Optimize(ctx context.Context, photos []catalog.Photo, catalogHash string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{CatalogHash: catalogHash}
	result.Stats.PhotoCount = len(photos)

	cacheKey := r.Keyer.ResultKey(catalogHash, opts.ResultKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := decodeResult(data, photos); err == nil {
				observability.Cache().OnCacheHit(ctx, "result")
				result.Sequence = cached.sequence
				result.Score = cached.score
				result.State = cached.state
				result.CacheInfo.ResultHit = true
				r.Logger.Info("reused cached result",
					"score", result.Score,
					"slides", len(result.Sequence))
				return result, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "result")
	}

	// Stage 1: Build candidate slides and the scorer
	buildStart := time.Now()
	units := slideshow.BuildUnits(photos, opts.LazyPairThreshold)
	scorer := slideshow.NewScorer(units, opts.ScorerOptions())
	result.Stats.UnitCount = len(units)
	result.Stats.BuildTime = time.Since(buildStart)

	r.Logger.Info("built candidate slides",
		"photos", len(photos),
		"slides", len(units),
		"duration", result.Stats.BuildTime)

	// Stage 2: Solve
	solveOpts := opts.SolverOptions()
	solveOpts.Photos = photos

	best := -1
	userProgress := solveOpts.Progress
	solveOpts.Progress = func(p solver.Progress) {
		if p.Best > best {
			best = p.Best
			observability.Solver().OnImprovement(ctx, "", p.Best, p.Elapsed)
		}
		if userProgress != nil {
			userProgress(p)
		}
	}

	solveStart := time.Now()
	observability.Solver().OnSolveStart(ctx, "", len(units))
	res, err := r.Solver.Solve(ctx, units, scorer, solveOpts)
	observability.Solver().OnSolveComplete(ctx, res.RunID, res.Score, time.Since(solveStart), err)
	if err != nil {
		return nil, err
	}

	result.Sequence = res.Sequence
	result.Score = res.Score
	result.State = res.State
	result.RunID = res.RunID
	result.Stats.Nodes = res.Nodes
	result.Stats.Improvements = res.Improvements
	result.Stats.SolveTime = res.Elapsed

	r.Logger.Info("optimized sequence",
		"score", res.Score,
		"slides", len(res.Sequence),
		"state", res.State,
		"nodes", res.Nodes,
		"duration", res.Elapsed)

	// Cache the result. A run cut short by cancellation is still a valid
	// anytime answer, but caching it would pin a weak score under the same
	// key a full-budget run uses, so only uninterrupted runs are stored.
	if !opts.Refresh && ctx.Err() == nil {
		if data, err := encodeResult(res); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLResult)
			observability.Cache().OnCacheSet(ctx, "result", len(data))
		}
	}

	return result, nil
}

// OptimizeFile runs the complete load → build → solve pipeline on a catalog
// file.
func (r *Runner) OptimizeFile(ctx context.Context, path string, opts Options) (*Result, error) {
	loadStart := time.Now()
	photos, hash, catalogHit, err := r.LoadCatalog(ctx, path)
	if err != nil {
		return nil, err
	}
	loadTime := time.Since(loadStart)

	r.Logger.Info("loaded catalog",
		"path", path,
		"photos", len(photos),
		"duration", loadTime)

	result, err := r.Optimize(ctx, photos, hash, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime
	result.CacheInfo.CatalogHit = catalogHit
	return result, nil
}

// Verify checks an existing sequence against a catalog. An invalid sequence
// is a normal outcome, not an error.
func (r *Runner) Verify(ctx context.Context, photos []catalog.Photo, seq slideshow.Sequence) (*Verification, error) {
	v := &Verification{Slides: len(seq)}
	if violation := slideshow.Validate(seq, photos); violation != nil {
		v.Violation = violation
		return v, nil
	}
	v.Valid = true
	v.Score = slideshow.TotalScore(seq.Resolve(photos))
	return v, nil
}

// VerifyFiles loads a catalog and a sequence file and verifies them.
func (r *Runner) VerifyFiles(ctx context.Context, catalogPath, sequencePath string) (*Verification, error) {
	photos, _, _, err := r.LoadCatalog(ctx, catalogPath)
	if err != nil {
		return nil, err
	}
	seq, err := slideshow.LoadSequence(sequencePath)
	if err != nil {
		return nil, err
	}
	return r.Verify(ctx, photos, seq)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func encodeResult(res solver.Result) ([]byte, error) {
	out := cachedResult{
		Slides: make([][]int, len(res.Sequence)),
		Score:  res.Score,
		State:  int(res.State),
	}
	for i, s := range res.Sequence {
		out.Slides[i] = s.IDs()
	}
	return json.Marshal(out)
}

type decodedResult struct {
	sequence slideshow.Sequence
	score    int
	state    solver.State
}

// decodeResult rebuilds a sequence from its cached form, re-validating it
// against the catalog so a stale or corrupt entry can never surface an
// infeasible sequence.
func decodeResult(data []byte, photos []catalog.Photo) (*decodedResult, error) {
	var in cachedResult
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	seq := make(slideshow.Sequence, len(in.Slides))
	for i, ids := range in.Slides {
		seq[i] = slideshow.SlideFromIDs(ids...)
	}
	if v := slideshow.Validate(seq, photos); v != nil {
		return nil, errors.New(errors.ErrCodeInternal, "cached sequence is infeasible: %s", v)
	}
	return &decodedResult{
		sequence: seq.Resolve(photos),
		score:    in.Score,
		state:    solver.State(in.State),
	}, nil
}
