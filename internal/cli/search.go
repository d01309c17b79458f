package cli

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/WomainOK/slideseq/pkg/slideshow/solver"
)

// searchLogger turns solver progress snapshots into log lines: the initial
// incumbent, every improvement, and a heartbeat every 10 seconds while the
// search keeps running without finding anything better.
//
// The logger is not safe for concurrent use by itself; the solver serializes
// progress callbacks.
type searchLogger struct {
	prog     *progress
	logger   *log.Logger
	lastBest int
	lastLog  time.Time
}

// newSearchLogger creates a progress callback sink writing to logger.
func newSearchLogger(logger *log.Logger) *searchLogger {
	return &searchLogger{
		prog:     newProgress(logger),
		logger:   logger,
		lastBest: -1,
	}
}

// onProgress is called by the solver during the search.
func (s *searchLogger) onProgress(p solver.Progress) {
	switch {
	case s.lastBest < 0:
		s.logger.Infof("Initial: score %d (nodes: %d)", p.Best, p.Nodes)
		s.lastLog = time.Now()
	case p.Best > s.lastBest:
		s.logger.Infof("Improved: score %d (↑%d)", p.Best, p.Best-s.lastBest)
		s.lastLog = time.Now()
	default:
		if time.Since(s.lastLog) >= 10*time.Second {
			elapsed := p.Elapsed.Truncate(time.Second)
			s.logger.Infof("Searching... %v elapsed, score %d (nodes: %d)", elapsed, p.Best, p.Nodes)
			s.lastLog = time.Now()
		}
	}
	if p.Best > s.lastBest {
		s.lastBest = p.Best
	}
}

// done logs the final outcome of the search.
func (s *searchLogger) done(score int, slides int, state solver.State) {
	s.prog.done("Search complete")
	s.logger.Infof("Best: score %d over %d slides (%s)", score, slides, state)
	if state == solver.BudgetExpired {
		s.logger.Warn("Search budget expired; try increasing the time limit (--time-limit)")
	}
}
