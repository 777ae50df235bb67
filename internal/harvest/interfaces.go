package harvest

import (
	"context"
)

// ContentSource abstracts the encyclopedia API. Implementations must treat a
// missing page as ErrPageMissing from FetchPage, not as a transport error.
type ContentSource interface {
	PageExists(ctx context.Context, title string) (bool, error)
	FetchPage(ctx context.Context, title string) (PageRecord, error)
	ListCategoryMembers(ctx context.Context, category string) ([]CategoryMember, error)
	ListAllPages(ctx context.Context, continueToken string) (AllPagesResult, error)
	SiteArticleCount(ctx context.Context) (int, error)
}

// TextCleaner normalizes raw article text. Clean must be deterministic.
type TextCleaner interface {
	Clean(text string) string
}

// BatchStore persists title and output batches as tabular files.
//
// Batch files are immutable once written. ListBatchFiles and NextSequence must
// order files by the numeric suffix in the filename, never lexicographically:
// "x_9" sorts before "x_10".
type BatchStore interface {
	WriteTitleBatch(dir string, seq int, titles []string) (string, error)
	WriteOutputBatch(dir string, seq int, records []PageRecord) (string, error)
	ListBatchFiles(dir string, prefix string) ([]string, error)
	ReadTitles(path string) ([]string, error)
	ReadRecords(path string) ([]PageRecord, error)
	NextSequence(dir string, prefix string) (int, error)
}

// RateLimiter paces a single worker's requests.
type RateLimiter interface {
	Wait(ctx context.Context) error
}
