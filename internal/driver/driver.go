// Package driver implements the top-level crawl strategies, wiring the
// enumerator, resume tracker, and batch scheduler together.
package driver

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/wikicorpus/wikiharvest/internal/enumerate"
	"github.com/wikicorpus/wikiharvest/internal/harvest"
	"github.com/wikicorpus/wikiharvest/internal/resume"
	"github.com/wikicorpus/wikiharvest/internal/scheduler"
	"github.com/wikicorpus/wikiharvest/internal/store"
)

// Config controls Driver behavior.
type Config struct {
	TitlesDir    string
	ContentDir   string
	BatchSize    int
	OutputPrefix string
}

// Driver selects and runs one crawl strategy per invocation.
type Driver struct {
	store   harvest.BatchStore
	tracker *resume.Tracker
	enum    *enumerate.Enumerator
	sched   *scheduler.Scheduler
	cfg     Config
	logger  *zap.Logger
}

// New constructs a Driver.
func New(
	batchStore harvest.BatchStore,
	tracker *resume.Tracker,
	enum *enumerate.Enumerator,
	sched *scheduler.Scheduler,
	cfg Config,
	logger *zap.Logger,
) *Driver {
	return &Driver{
		store:   batchStore,
		tracker: tracker,
		enum:    enum,
		sched:   sched,
		cfg:     cfg,
		logger:  logger,
	}
}

// CrawlCategory walks the category tree under root and crawls every article
// it finds, in traversal order. Category crawls carry no resume semantics;
// they are bounded by the depth and article ceilings instead.
func (d *Driver) CrawlCategory(ctx context.Context, root string, maxDepth, maxArticles int) (harvest.Stats, error) {
	titles, err := d.enum.CategoryTree(ctx, root, maxDepth, maxArticles)
	if err != nil {
		return harvest.Stats{}, fmt.Errorf("enumerate category %q: %w", root, err)
	}
	d.logger.Info("category enumeration complete",
		zap.String("category", root), zap.Int("titles", len(titles)))
	return d.sched.Run(ctx, titles)
}

// CrawlTitleFiles crawls the titles previously enumerated into TitlesDir,
// resuming past batches already present in ContentDir. The whole title
// corpus is re-sorted globally before scheduling; the resume tracker's
// cursor comparison depends on exactly this ordering.
func (d *Driver) CrawlTitleFiles(ctx context.Context) (harvest.Stats, error) {
	titles, err := d.loadTitles()
	if err != nil {
		return harvest.Stats{}, err
	}
	if len(titles) == 0 {
		return harvest.Stats{}, fmt.Errorf("no titles found in %s", d.cfg.TitlesDir)
	}

	resumeTitle, found := d.tracker.FindResumePoint(d.cfg.ContentDir)
	if !found {
		d.logger.Info("no prior output found, starting from the beginning")
	}
	remaining := d.tracker.SkipCompleted(titles, resumeTitle, d.cfg.BatchSize)
	d.logger.Info("crawl plan ready",
		zap.Int("total_titles", len(titles)),
		zap.Int("remaining_titles", len(remaining)))

	return d.sched.Run(ctx, remaining)
}

// loadTitles concatenates every title batch file in numeric order, then sorts
// the union lexicographically and drops duplicates. A single unreadable file
// is logged and skipped; the rest of the corpus still crawls.
func (d *Driver) loadTitles() ([]string, error) {
	files, err := d.store.ListBatchFiles(d.cfg.TitlesDir, store.TitlePrefix)
	if err != nil {
		return nil, fmt.Errorf("list title batches in %s: %w", d.cfg.TitlesDir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no title batch files in %s", d.cfg.TitlesDir)
	}

	var titles []string
	for _, file := range files {
		batch, err := d.store.ReadTitles(file)
		if err != nil {
			d.logger.Error("title batch unreadable, skipping",
				zap.String("file", file), zap.Error(err))
			continue
		}
		titles = append(titles, batch...)
	}

	sort.Strings(titles)
	deduped := titles[:0]
	for i, title := range titles {
		if i > 0 && title == titles[i-1] {
			continue
		}
		deduped = append(deduped, title)
	}
	return deduped, nil
}

// StatusReport summarizes which enumerated batches already have output.
type StatusReport struct {
	OutputFiles      int
	ProcessedBatches []int
	LastBatch        int
}

var titleBatchPattern = regexp.MustCompile(`titles_batch_(\d+)\.csv$`)

// Status maps each output batch file back to the title batch file containing
// its first record, reporting which title batches have been processed.
// Unreadable files on either side are logged and skipped.
func (d *Driver) Status(ctx context.Context) (StatusReport, error) {
	report := StatusReport{LastBatch: -1}

	outputs, err := d.store.ListBatchFiles(d.cfg.ContentDir, d.cfg.OutputPrefix)
	if err != nil {
		return report, fmt.Errorf("list output batches in %s: %w", d.cfg.ContentDir, err)
	}
	report.OutputFiles = len(outputs)
	if len(outputs) == 0 {
		return report, nil
	}

	titleFiles, err := d.store.ListBatchFiles(d.cfg.TitlesDir, store.TitlePrefix)
	if err != nil {
		return report, fmt.Errorf("list title batches in %s: %w", d.cfg.TitlesDir, err)
	}

	titlesByBatch := make(map[int]map[string]struct{}, len(titleFiles))
	for _, file := range titleFiles {
		match := titleBatchPattern.FindStringSubmatch(file)
		if match == nil {
			continue
		}
		num, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		batch, err := d.store.ReadTitles(file)
		if err != nil {
			d.logger.Error("title batch unreadable, skipping",
				zap.String("file", file), zap.Error(err))
			continue
		}
		set := make(map[string]struct{}, len(batch))
		for _, title := range batch {
			set[title] = struct{}{}
		}
		titlesByBatch[num] = set
	}

	processed := make(map[int]struct{})
	for _, output := range outputs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		records, err := d.store.ReadRecords(output)
		if err != nil {
			d.logger.Error("output batch unreadable, skipping",
				zap.String("file", output), zap.Error(err))
			continue
		}
		if len(records) == 0 {
			continue
		}
		for num, set := range titlesByBatch {
			if _, ok := set[records[0].Title]; ok {
				processed[num] = struct{}{}
				break
			}
		}
	}

	for num := range processed {
		report.ProcessedBatches = append(report.ProcessedBatches, num)
		if num > report.LastBatch {
			report.LastBatch = num
		}
	}
	sort.Ints(report.ProcessedBatches)
	return report, nil
}
