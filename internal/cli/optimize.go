package cli

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/WomainOK/slideseq/pkg/pipeline"
	"github.com/WomainOK/slideseq/pkg/slideshow/solver"
)

// optimizeCommand creates the optimize command.
func (c *CLI) optimizeCommand() *cobra.Command {
	var (
		configPath string
		output     string
		timeLimit  time.Duration
		maxNodes   int64
		stall      time.Duration
		seed       int64
		workers    int
		exact      int
		lazyPairs  int
		refresh    bool
		noCache    bool
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "optimize <catalog>",
		Short: "Search for a high-scoring slideshow for a photo catalog",
		Long: `Optimize reads a photo catalog, builds candidate slides (horizontal photos
stand alone, vertical photos are paired), and searches for the ordering with
the highest total transition score. The search is anytime: it always writes
the best feasible slideshow found within the budget.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			catalogPath := args[0]

			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}

			opts := pipeline.Options{
				TimeLimit:         time.Duration(cfg.Solve.TimeLimit),
				MaxNodes:          cfg.Solve.MaxNodes,
				StallLimit:        time.Duration(cfg.Solve.StallLimit),
				Seed:              cfg.Solve.Seed,
				Workers:           cfg.Solve.Workers,
				ExactThreshold:    cfg.Solve.ExactThreshold,
				LazyPairThreshold: cfg.Solve.LazyPairThreshold,
				Refresh:           refresh,
				Logger:            c.Logger,
			}
			// Flags override config file values.
			flags := cmd.Flags()
			if flags.Changed("time-limit") {
				opts.TimeLimit = timeLimit
			}
			if flags.Changed("max-nodes") {
				opts.MaxNodes = maxNodes
			}
			if flags.Changed("stall-limit") {
				opts.StallLimit = stall
			}
			if flags.Changed("seed") {
				opts.Seed = seed
			}
			if flags.Changed("workers") {
				opts.Workers = workers
			}
			if flags.Changed("exact-threshold") {
				opts.ExactThreshold = exact
			}
			if flags.Changed("lazy-pair-threshold") {
				opts.LazyPairThreshold = lazyPairs
			}

			runner, err := c.newRunner(cfg, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			var result *pipeline.Result
			if watch {
				result, err = c.runWatch(ctx, runner, catalogPath, opts)
			} else {
				sl := newSearchLogger(loggerFromContext(ctx))
				opts.Progress = sl.onProgress
				result, err = runner.OptimizeFile(ctx, catalogPath, opts)
				if err == nil && !result.CacheInfo.ResultHit {
					sl.done(result.Score, len(result.Sequence), result.State)
				}
			}
			if err != nil {
				return err
			}

			outPath := output
			if outPath == "" {
				outPath = defaultOutputPath(catalogPath)
			}
			if err := result.Sequence.Save(outPath); err != nil {
				return err
			}

			printSuccess("Optimized slideshow: score %d", result.Score)
			printStats(len(result.Sequence), result.Stats.PhotoCount, result.CacheInfo.ResultHit)
			if result.State == solver.BudgetExpired {
				printWarning("budget expired before the search finished")
			}
			printFile(outPath)
			printNextStep("Verify it", appName+" verify "+catalogPath+" "+outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: ~/.config/slideseq/config.toml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output sequence file (default: <catalog>.out.txt)")
	cmd.Flags().DurationVar(&timeLimit, "time-limit", solver.DefaultTimeLimit, "wall-clock search budget (negative for none)")
	cmd.Flags().Int64Var(&maxNodes, "max-nodes", 0, "search node budget (0 for unbounded)")
	cmd.Flags().DurationVar(&stall, "stall-limit", 0, "stop after this long without improvement (0 disables)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for reproducible runs")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent search workers (0 for one per CPU)")
	cmd.Flags().IntVar(&exact, "exact-threshold", solver.DefaultExactThreshold, "largest slide count solved exactly")
	cmd.Flags().IntVar(&lazyPairs, "lazy-pair-threshold", 0, "vertical photo count above which pairs are pre-committed")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results and recompute")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching entirely")
	cmd.Flags().BoolVar(&watch, "watch", false, "show a live search dashboard")

	return cmd
}

// defaultOutputPath derives the sequence output path from the catalog path.
func defaultOutputPath(catalogPath string) string {
	base := strings.TrimSuffix(catalogPath, filepath.Ext(catalogPath))
	return base + ".out.txt"
}
