package resume

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wikicorpus/wikiharvest/internal/harvest"
	"github.com/wikicorpus/wikiharvest/internal/store"
)

func TestFindResumePointEmptyDir(t *testing.T) {
	t.Parallel()

	s := store.New("wiki_content")
	tracker := New(s, "wiki_content", zap.NewNop())

	title, ok := tracker.FindResumePoint(t.TempDir())
	require.False(t, ok)
	require.Empty(t, title)
}

func TestFindResumePointMissingDir(t *testing.T) {
	t.Parallel()

	s := store.New("wiki_content")
	tracker := New(s, "wiki_content", zap.NewNop())

	_, ok := tracker.FindResumePoint("/nonexistent/output/dir")
	require.False(t, ok)
}

func TestFindResumePointUsesNumericallyNewestFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := store.New("wiki_content")

	// Nine files followed by a tenth: under lexicographic ordering
	// wiki_content_10.csv sorts before wiki_content_9.csv and the resume point
	// would silently point at the wrong batch.
	for seq := 1; seq <= 10; seq++ {
		_, err := s.WriteOutputBatch(dir, seq, []harvest.PageRecord{
			{Title: string(rune('A' + seq - 1)), Text: "x", Length: 1},
		})
		require.NoError(t, err)
	}

	tracker := New(s, "wiki_content", zap.NewNop())
	title, ok := tracker.FindResumePoint(dir)
	require.True(t, ok)
	require.Equal(t, "J", title)
}

func TestFindResumePointWriteOrderIndependent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := store.New("wiki_content")
	for _, batch := range []struct {
		seq   int
		title string
	}{
		{seq: 2, title: "second"},
		{seq: 1, title: "first"},
		{seq: 3, title: "third"},
	} {
		_, err := s.WriteOutputBatch(dir, batch.seq, []harvest.PageRecord{
			{Title: batch.title, Text: "x", Length: 1},
		})
		require.NoError(t, err)
	}

	tracker := New(s, "wiki_content", zap.NewNop())
	title, ok := tracker.FindResumePoint(dir)
	require.True(t, ok)
	require.Equal(t, "third", title)
}

func TestSkipCompletedBatchGranular(t *testing.T) {
	t.Parallel()

	s := store.New("wiki_content")
	tracker := New(s, "wiki_content", zap.NewNop())

	titles := []string{"A", "B", "C", "D", "E", "F", "G"}

	// Resume title C sits in the second chunk [C D]; scheduling must restart
	// at E, never inside [C D].
	remaining := tracker.SkipCompleted(titles, "C", 2)
	require.Equal(t, []string{"E", "F", "G"}, remaining)

	// Same chunk, other member.
	remaining = tracker.SkipCompleted(titles, "D", 2)
	require.Equal(t, []string{"E", "F", "G"}, remaining)
}

func TestSkipCompletedResumeInLastChunk(t *testing.T) {
	t.Parallel()

	s := store.New("wiki_content")
	tracker := New(s, "wiki_content", zap.NewNop())

	remaining := tracker.SkipCompleted([]string{"A", "B", "C"}, "C", 2)
	require.Empty(t, remaining)
}

func TestSkipCompletedUnknownTitle(t *testing.T) {
	t.Parallel()

	s := store.New("wiki_content")
	tracker := New(s, "wiki_content", zap.NewNop())

	titles := []string{"A", "B", "C"}
	require.Equal(t, titles, tracker.SkipCompleted(titles, "Z", 2))
}

func TestSkipCompletedNoResumeTitle(t *testing.T) {
	t.Parallel()

	s := store.New("wiki_content")
	tracker := New(s, "wiki_content", zap.NewNop())

	titles := []string{"A", "B"}
	require.Equal(t, titles, tracker.SkipCompleted(titles, "", 2))
}
