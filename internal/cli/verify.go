package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/WomainOK/slideseq/pkg/errors"
	"github.com/WomainOK/slideseq/pkg/slideshow"
)

// verifyCommand creates the verify command.
func (c *CLI) verifyCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "verify <catalog> <sequence>...",
		Short: "Check sequence files against a catalog and report scores",
		Long: `Verify checks one or more sequence files against a photo catalog: every
photo must exist and be used at most once, horizontal photos stand alone,
vertical photos come in pairs. Valid sequences get their total transition
score reported; invalid ones get the first violation. A failing sequence
does not stop the remaining files from being checked.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			catalogPath, seqPaths := args[0], args[1:]

			runner, err := c.newRunner(Config{}, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			photos, _, _, err := runner.LoadCatalog(ctx, catalogPath)
			if err != nil {
				return err
			}

			failed := 0
			for _, path := range seqPaths {
				seq, err := slideshow.LoadSequence(path)
				if err != nil {
					printError("%s: %s", path, errors.UserMessage(err))
					failed++
					continue
				}
				v, err := runner.Verify(ctx, photos, seq)
				if err != nil {
					return err
				}
				if v.Valid {
					printSuccess("%s: valid, score %d (%d slides)", path, v.Score, v.Slides)
				} else {
					printError("%s: invalid, %s", path, v.Violation)
					failed++
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d sequences failed verification", failed, len(seqPaths))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable catalog caching")

	return cmd
}
