// Package pkg provides the core libraries for Slideseq slideshow optimization.
//
// # Overview
//
// Slideseq arranges tagged photo collections into slideshows that maximize
// the transition interest score between consecutive slides. The pkg directory
// is organized into five main areas:
//
//  1. [catalog] - Photo catalog parsing (orientation, tag sets)
//  2. [slideshow] - Domain model: slides, scoring, validation, sequence I/O
//  3. [slideshow/solver] - Anytime search for high-scoring orderings
//  4. [pipeline] - Orchestration (load, build, solve) with caching
//  5. [cache] - Pluggable byte caches (file, memory, Redis, null)
//
// # Architecture
//
// The typical data flow through Slideseq:
//
//	Catalog file
//	         |
//	    [catalog] package (parse photos and tags)
//	         |
//	    [slideshow] package (build candidate slides, score transitions)
//	         |
//	    [slideshow/solver] package (search for the best ordering)
//	         |
//	    Sequence file
//
// # Quick Start
//
// Optimize a catalog end to end:
//
//	import (
//	    "context"
//	    "github.com/WomainOK/slideseq/pkg/cache"
//	    "github.com/WomainOK/slideseq/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(), nil, logger)
//	result, err := runner.OptimizeFile(context.Background(), "photos.txt", pipeline.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = result.Sequence.Save("photos.out.txt")
//
// Verify an existing sequence:
//
//	v, err := runner.VerifyFiles(ctx, "photos.txt", "photos.out.txt")
//
// Supporting packages: [errors] for coded errors, [observability] for
// metrics hooks, [buildinfo] for version stamping.
//
// [catalog]: https://pkg.go.dev/github.com/WomainOK/slideseq/pkg/catalog
// [slideshow]: https://pkg.go.dev/github.com/WomainOK/slideseq/pkg/slideshow
// [slideshow/solver]: https://pkg.go.dev/github.com/WomainOK/slideseq/pkg/slideshow/solver
// [pipeline]: https://pkg.go.dev/github.com/WomainOK/slideseq/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/WomainOK/slideseq/pkg/cache
// [errors]: https://pkg.go.dev/github.com/WomainOK/slideseq/pkg/errors
// [observability]: https://pkg.go.dev/github.com/WomainOK/slideseq/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/WomainOK/slideseq/pkg/buildinfo
package pkg
