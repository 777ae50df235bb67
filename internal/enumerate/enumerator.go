// Package enumerate produces the candidate title sequence, either from the
// site-wide article listing or by walking a category tree.
package enumerate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wikicorpus/wikiharvest/internal/harvest"
	"github.com/wikicorpus/wikiharvest/internal/metrics"
	"github.com/wikicorpus/wikiharvest/internal/ratelimit"
)

// Config controls Enumerator behavior.
type Config struct {
	// TitlesDir receives titles_batch_<n>.csv files in flat mode.
	TitlesDir string
	// FlushThreshold is the number of buffered titles that triggers a batch
	// file flush.
	FlushThreshold int
	// Interval is the minimum delay between listing calls.
	Interval time.Duration
}

// Enumerator walks the source's listings.
type Enumerator struct {
	source harvest.ContentSource
	store  harvest.BatchStore
	cfg    Config
	logger *zap.Logger
}

// New constructs an Enumerator.
func New(source harvest.ContentSource, batchStore harvest.BatchStore, cfg Config, logger *zap.Logger) *Enumerator {
	if cfg.FlushThreshold <= 0 {
		cfg.FlushThreshold = 10000
	}
	return &Enumerator{
		source: source,
		store:  batchStore,
		cfg:    cfg,
		logger: logger,
	}
}

// Flat pages through the whole namespace-0 listing, flushing a title batch
// file every FlushThreshold titles. Returns the number of titles enumerated.
//
// Progress against the site article count is advisory only: the count is
// fetched once upfront and can be stale by the time the listing finishes.
func (e *Enumerator) Flat(ctx context.Context) (int, error) {
	total, err := e.source.SiteArticleCount(ctx)
	if err != nil {
		e.logger.Warn("site article count unavailable, progress reporting disabled", zap.Error(err))
		total = 0
	}

	limiter := ratelimit.New(e.cfg.Interval)
	seen := make(map[string]struct{})
	var buffer []string
	batchNum := 0
	collected := 0
	token := ""

	for {
		if err := limiter.Wait(ctx); err != nil {
			return collected, err
		}

		page, err := e.source.ListAllPages(ctx, token)
		if err != nil {
			return collected, fmt.Errorf("list pages (token %q): %w", token, err)
		}

		for _, title := range page.Titles {
			if _, dup := seen[title]; dup {
				continue
			}
			seen[title] = struct{}{}
			buffer = append(buffer, title)
			collected++
		}
		metrics.AddTitlesEnumerated(len(page.Titles))

		for len(buffer) >= e.cfg.FlushThreshold {
			if err := e.flush(buffer[:e.cfg.FlushThreshold], batchNum); err != nil {
				return collected, err
			}
			buffer = buffer[e.cfg.FlushThreshold:]
			batchNum++
		}

		if total > 0 {
			e.logger.Info("enumeration progress",
				zap.Int("collected", collected),
				zap.Int("site_total", total),
				zap.String("percent", fmt.Sprintf("%.1f", float64(collected)/float64(total)*100)))
		}

		token = page.Continue
		if token == "" {
			break
		}
	}

	if len(buffer) > 0 {
		if err := e.flush(buffer, batchNum); err != nil {
			return collected, err
		}
	}

	e.logger.Info("enumeration finished", zap.Int("titles", collected), zap.Int("batches", batchNum+1))
	return collected, nil
}

func (e *Enumerator) flush(titles []string, batchNum int) error {
	path, err := e.store.WriteTitleBatch(e.cfg.TitlesDir, batchNum, titles)
	if err != nil {
		return fmt.Errorf("flush title batch %d: %w", batchNum, err)
	}
	metrics.ObserveBatchWritten(metrics.BatchKindTitles)
	e.logger.Info("title batch written", zap.String("file", path), zap.Int("titles", len(titles)))
	return nil
}

type categoryFrame struct {
	name  string
	depth int
}

// CategoryTree collects article titles by descending from the root category.
//
// The category graph on the source site is not guaranteed acyclic, so the
// traversal keeps a single visited set for the whole walk. An explicit work
// stack replaces call recursion: pathological category graphs must not be able
// to exhaust the call stack. maxArticles caps the traversal by the total
// number of listed members (subcategories included), mirroring how the site's
// own member counts behave.
func (e *Enumerator) CategoryTree(ctx context.Context, root string, maxDepth, maxArticles int) ([]string, error) {
	limiter := ratelimit.New(e.cfg.Interval)
	visited := make(map[string]struct{})
	seenTitle := make(map[string]struct{})
	var articles []string
	memberCount := 0

	stack := []categoryFrame{{name: root, depth: maxDepth}}
	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if frame.depth < 0 {
			continue
		}
		if _, done := visited[frame.name]; done {
			continue
		}
		if maxArticles > 0 && memberCount >= maxArticles {
			e.logger.Info("article ceiling reached, stopping traversal",
				zap.Int("members", memberCount), zap.Int("ceiling", maxArticles))
			break
		}
		visited[frame.name] = struct{}{}

		if err := limiter.Wait(ctx); err != nil {
			return articles, err
		}

		members, err := e.source.ListCategoryMembers(ctx, frame.name)
		if err != nil {
			e.logger.Error("category listing failed, skipping",
				zap.String("category", frame.name), zap.Error(err))
			continue
		}
		memberCount += len(members)

		var subcats []string
		for _, m := range members {
			if m.Subcategory {
				subcats = append(subcats, m.Title)
				continue
			}
			if _, dup := seenTitle[m.Title]; dup {
				continue
			}
			seenTitle[m.Title] = struct{}{}
			articles = append(articles, m.Title)
		}

		// Push in reverse so the first-listed subcategory is visited first.
		for i := len(subcats) - 1; i >= 0; i-- {
			stack = append(stack, categoryFrame{name: subcats[i], depth: frame.depth - 1})
		}

		e.logger.Info("category visited",
			zap.String("category", frame.name),
			zap.Int("depth_budget", frame.depth),
			zap.Int("articles", len(articles)),
			zap.Int("members", memberCount))
	}

	metrics.AddTitlesEnumerated(len(articles))
	return articles, nil
}
