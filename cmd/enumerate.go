package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wikicorpus/wikiharvest/internal/enumerate"
)

// newEnumerateCmd creates the 'enumerate' subcommand, which walks the
// site-wide article listing and writes title batch files for a later crawl.
func newEnumerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enumerate",
		Short: "Enumerate every article title into title batch files",
		Long: `Pages through the site's namespace-0 article listing and writes the titles
to titles_batch_<n>.csv files under the configured titles directory. The crawl
command consumes these files later.`,
		RunE: runEnumerateCommand,
	}
}

func runEnumerateCommand(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()
	a.maybeServe(cmd.Context())

	enum := enumerate.New(a.source, a.store, enumerate.Config{
		TitlesDir:      a.cfg.Paths.TitlesDir,
		FlushThreshold: a.cfg.Enumerate.FlushThreshold,
		Interval:       a.cfg.Delay(),
	}, a.logger)

	collected, err := enum.Flat(cmd.Context())
	if err != nil {
		return fmt.Errorf("enumerate titles: %w", err)
	}

	a.logger.Info("enumeration complete",
		zap.Int("titles", collected),
		zap.String("titles_dir", a.cfg.Paths.TitlesDir))
	return nil
}
