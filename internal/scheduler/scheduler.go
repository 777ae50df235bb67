// Package scheduler partitions title sequences into batches and runs them
// through a bounded worker pool.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wikicorpus/wikiharvest/internal/harvest"
	"github.com/wikicorpus/wikiharvest/internal/metrics"
	"github.com/wikicorpus/wikiharvest/internal/ratelimit"
)

// Config controls Scheduler behavior.
type Config struct {
	// BatchSize is the number of titles per chunk.
	BatchSize int
	// Workers is the size of the worker pool.
	Workers int
	// MinTextLength drops records whose cleaned text is shorter, measured in
	// runes.
	MinTextLength int
	// Interval is each worker's minimum delay between requests.
	Interval time.Duration
	// OutputDir receives the output batch files.
	OutputDir string
	// OutputPrefix names output batch files <prefix>_<n>.csv.
	OutputPrefix string
}

// Scheduler dispatches title chunks to workers and writes completed batches.
//
// Chunks complete in whatever order workers finish, so output file numbers
// reflect completion order, not submission order. The numbering itself is
// serialized through a single collector goroutine reading the completion
// channel.
type Scheduler struct {
	source  harvest.ContentSource
	cleaner harvest.TextCleaner
	store   harvest.BatchStore
	cfg     Config
	logger  *zap.Logger
}

type chunkJob struct {
	index  int
	titles []string
}

type chunkResult struct {
	index   int
	records []harvest.PageRecord
	stats   harvest.Stats
}

// New constructs a Scheduler.
func New(
	source harvest.ContentSource,
	cleaner harvest.TextCleaner,
	store harvest.BatchStore,
	cfg Config,
	logger *zap.Logger,
) *Scheduler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Scheduler{
		source:  source,
		cleaner: cleaner,
		store:   store,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run processes titles to completion and reports aggregate counters. A failed
// title or a failed chunk never aborts the run; the only fatal conditions are
// an unusable output directory and context cancellation.
func (s *Scheduler) Run(ctx context.Context, titles []string) (harvest.Stats, error) {
	var total harvest.Stats

	chunks := harvest.Partition(titles, s.cfg.BatchSize)
	if len(chunks) == 0 {
		s.logger.Info("nothing to crawl")
		return total, nil
	}

	nextSeq, err := s.store.NextSequence(s.cfg.OutputDir, s.cfg.OutputPrefix)
	if err != nil {
		return total, fmt.Errorf("determine next output sequence: %w", err)
	}
	s.logger.Info("scheduling crawl",
		zap.Int("titles", len(titles)),
		zap.Int("chunks", len(chunks)),
		zap.Int("workers", s.cfg.Workers),
		zap.Int("next_output_seq", nextSeq))

	jobs := make(chan chunkJob)
	results := make(chan chunkResult)

	var g errgroup.Group
	g.Go(func() error {
		defer close(jobs)
		for i, chunk := range chunks {
			select {
			case jobs <- chunkJob{index: i, titles: chunk}:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	})

	var workers errgroup.Group
	for range s.cfg.Workers {
		workers.Go(func() error {
			limiter := ratelimit.New(s.cfg.Interval)
			for job := range jobs {
				records, stats := s.processChunk(ctx, job, limiter)
				select {
				case results <- chunkResult{index: job.index, records: records, stats: stats}:
				case <-ctx.Done():
					return nil
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(results)
		return workers.Wait()
	})

	// Completion-order collector: the single place output numbers are handed
	// out, so numbering stays dense and monotonic no matter which worker
	// finishes first.
	seq := nextSeq
	for result := range results {
		total.Add(result.stats)
		if len(result.records) == 0 {
			continue
		}
		path, err := s.store.WriteOutputBatch(s.cfg.OutputDir, seq, result.records)
		if err != nil {
			s.logger.Error("write output batch failed",
				zap.Int("chunk", result.index),
				zap.Int("seq", seq),
				zap.Error(err))
			continue
		}
		seq++
		total.BatchesWritten++
		metrics.ObserveBatchWritten(metrics.BatchKindContent)
		metrics.AddRecordsKept(len(result.records))
		s.logger.Info("output batch written",
			zap.Int("chunk", result.index),
			zap.String("file", path),
			zap.Int("records", len(result.records)))
	}

	if err := g.Wait(); err != nil {
		return total, fmt.Errorf("worker pool: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return total, fmt.Errorf("crawl interrupted: %w", err)
	}
	return total, nil
}

// processChunk fetches and cleans every title of one chunk in order. A panic
// anywhere in the chunk is contained here: the chunk's results are dropped and
// the run moves on.
func (s *Scheduler) processChunk(
	ctx context.Context,
	job chunkJob,
	limiter *ratelimit.Limiter,
) (records []harvest.PageRecord, stats harvest.Stats) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("chunk processing failed, dropping its results",
				zap.Int("chunk", job.index),
				zap.Any("panic", r))
			metrics.ObserveChunkLost()
			records = nil
			stats.ChunksLost = 1
		}
	}()

	metrics.IncActiveWorkers()
	defer metrics.DecActiveWorkers()

	for _, title := range job.titles {
		if err := limiter.Wait(ctx); err != nil {
			// Interrupted mid-chunk: discard partial results so the resume
			// scan never mistakes this chunk for a completed batch.
			return nil, stats
		}
		stats.TitlesProcessed++

		record, err := s.source.FetchPage(ctx, title)
		if err != nil {
			if errors.Is(err, harvest.ErrPageMissing) {
				metrics.ObserveFetch(metrics.FetchMissing)
				s.logger.Debug("page missing",
					zap.Int("chunk", job.index), zap.String("title", title))
				continue
			}
			if ctx.Err() != nil {
				return nil, stats
			}
			stats.FetchErrors++
			metrics.ObserveFetch(metrics.FetchError)
			s.logger.Warn("fetch failed, skipping title",
				zap.Int("chunk", job.index),
				zap.String("title", title),
				zap.Error(err))
			continue
		}
		metrics.ObserveFetch(metrics.FetchOK)

		record.Text = s.cleaner.Clean(record.Text)
		record.Length = utf8.RuneCountInString(record.Text)
		if record.Length < s.cfg.MinTextLength {
			continue
		}
		records = append(records, record)
	}

	stats.RecordsKept = len(records)
	return records, stats
}
