package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wikicorpus/wikiharvest/internal/clean"
	"github.com/wikicorpus/wikiharvest/internal/driver"
	"github.com/wikicorpus/wikiharvest/internal/enumerate"
	"github.com/wikicorpus/wikiharvest/internal/resume"
	"github.com/wikicorpus/wikiharvest/internal/scheduler"
)

// newCrawlCmd creates the 'crawl' subcommand. Without flags it crawls the
// previously enumerated title files with resume; --category switches to a
// recursive category-tree crawl, and --workers 1 gives the sequential
// strategy.
func newCrawlCmd() *cobra.Command {
	var (
		category    string
		maxDepth    int
		maxArticles int
		workers     int
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl article text into output batch files",
		Long: `Fetches article text through the rate-limited worker pool and writes
cleaned records as <prefix>_<n>.csv batches. Title-file crawls resume past
batches already present in the output directory; category crawls are bounded
by depth and article ceilings instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.close()
			a.maybeServe(cmd.Context())

			if workers > 0 {
				a.cfg.Crawl.Workers = workers
			}
			if maxDepth < 0 {
				maxDepth = a.cfg.Enumerate.MaxDepth
			}
			if maxArticles < 0 {
				maxArticles = a.cfg.Enumerate.MaxArticles
			}

			d := buildDriver(a)

			if category != "" {
				result, err := d.CrawlCategory(cmd.Context(), category, maxDepth, maxArticles)
				if err != nil {
					return fmt.Errorf("crawl category: %w", err)
				}
				logStats(a, result.TitlesProcessed, result.RecordsKept, result.FetchErrors, result.BatchesWritten, result.ChunksLost)
				return nil
			}

			result, err := d.CrawlTitleFiles(cmd.Context())
			if err != nil {
				return fmt.Errorf("crawl title files: %w", err)
			}
			logStats(a, result.TitlesProcessed, result.RecordsKept, result.FetchErrors, result.BatchesWritten, result.ChunksLost)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "crawl a category tree instead of title files")
	cmd.Flags().IntVar(&maxDepth, "depth", -1, "category recursion depth budget (default from config)")
	cmd.Flags().IntVar(&maxArticles, "max-articles", -1, "category crawl article ceiling (default from config)")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker pool size override; 1 runs sequentially")

	return cmd
}

func buildDriver(a *app) *driver.Driver {
	cleaner := clean.New(a.cfg.Cleaner.DropSections)
	tracker := resume.New(a.store, a.cfg.Crawl.OutputPrefix, a.logger)
	enum := enumerate.New(a.source, a.store, enumerate.Config{
		TitlesDir:      a.cfg.Paths.TitlesDir,
		FlushThreshold: a.cfg.Enumerate.FlushThreshold,
		Interval:       a.cfg.Delay(),
	}, a.logger)
	sched := scheduler.New(a.source, cleaner, a.store, scheduler.Config{
		BatchSize:     a.cfg.Crawl.BatchSize,
		Workers:       a.cfg.Crawl.Workers,
		MinTextLength: a.cfg.Crawl.MinTextLength,
		Interval:      a.cfg.Delay(),
		OutputDir:     a.cfg.Paths.ContentDir,
		OutputPrefix:  a.cfg.Crawl.OutputPrefix,
	}, a.logger)

	return driver.New(a.store, tracker, enum, sched, driver.Config{
		TitlesDir:    a.cfg.Paths.TitlesDir,
		ContentDir:   a.cfg.Paths.ContentDir,
		BatchSize:    a.cfg.Crawl.BatchSize,
		OutputPrefix: a.cfg.Crawl.OutputPrefix,
	}, a.logger)
}

func logStats(a *app, processed, kept, fetchErrors, written, lost int) {
	a.logger.Info("crawl finished",
		zap.Int("titles_processed", processed),
		zap.Int("records_kept", kept),
		zap.Int("fetch_errors", fetchErrors),
		zap.Int("batches_written", written),
		zap.Int("chunks_lost", lost))
}
