// Package store persists title and output batches as CSV files.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/wikicorpus/wikiharvest/internal/harvest"
)

// TitlePrefix is the filename prefix for title batch files.
const TitlePrefix = "titles_batch"

// FileStore reads and writes CSV batch files. Batch files are immutable once
// written: output goes to a temporary file that is renamed into place, so a
// crash never leaves a half-written batch behind for the resume scan to trip
// over.
type FileStore struct {
	outputPrefix string
}

// New creates a FileStore that names output batches <prefix>_<n>.csv.
func New(outputPrefix string) *FileStore {
	if outputPrefix == "" {
		outputPrefix = "wiki_content"
	}
	return &FileStore{outputPrefix: outputPrefix}
}

// OutputPrefix returns the configured output filename prefix.
func (s *FileStore) OutputPrefix() string {
	return s.outputPrefix
}

// WriteTitleBatch writes one titles_batch_<seq>.csv with a title column.
func (s *FileStore) WriteTitleBatch(dir string, seq int, titles []string) (string, error) {
	rows := make([][]string, 0, len(titles)+1)
	rows = append(rows, []string{"title"})
	for _, title := range titles {
		rows = append(rows, []string{title})
	}
	return writeCSV(dir, fmt.Sprintf("%s_%d.csv", TitlePrefix, seq), rows)
}

// WriteOutputBatch writes one <prefix>_<seq>.csv with title,text,url,length columns.
func (s *FileStore) WriteOutputBatch(dir string, seq int, records []harvest.PageRecord) (string, error) {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, []string{"title", "text", "url", "length"})
	for _, r := range records {
		rows = append(rows, []string{r.Title, r.Text, r.URL, strconv.Itoa(r.Length)})
	}
	return writeCSV(dir, fmt.Sprintf("%s_%d.csv", s.outputPrefix, seq), rows)
}

// ListBatchFiles returns the full paths of <prefix>_<n>.csv files in dir,
// sorted by the numeric suffix. Plain lexicographic order would put _10 before
// _9 and break resume once a crawl passes nine output files.
func (s *FileStore) ListBatchFiles(dir string, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list batch files in %s: %w", dir, err)
	}

	type numbered struct {
		path string
		seq  int
	}
	var files []numbered
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		seq, ok := batchSequence(entry.Name(), prefix)
		if !ok {
			continue
		}
		files = append(files, numbered{path: filepath.Join(dir, entry.Name()), seq: seq})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].seq < files[j].seq })

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}

// NextSequence returns one past the highest numeric suffix among the
// <prefix>_<n>.csv files in dir, or 1 when the directory holds none. Using the
// highest suffix rather than the file count keeps numbering collision-free
// when earlier batches have been pruned.
func (s *FileStore) NextSequence(dir string, prefix string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, fmt.Errorf("scan %s for next sequence: %w", dir, err)
	}

	max := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if seq, ok := batchSequence(entry.Name(), prefix); ok && seq > max {
			max = seq
		}
	}
	return max + 1, nil
}

// ReadTitles loads the title column from a title batch file.
func (s *FileStore) ReadTitles(path string) ([]string, error) {
	rows, err := readCSV(path, 1)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(rows))
	for _, row := range rows {
		titles = append(titles, row[0])
	}
	return titles, nil
}

// ReadRecords loads page records from an output batch file.
func (s *FileStore) ReadRecords(path string) ([]harvest.PageRecord, error) {
	rows, err := readCSV(path, 4)
	if err != nil {
		return nil, err
	}
	records := make([]harvest.PageRecord, 0, len(rows))
	for i, row := range rows {
		length, err := strconv.Atoi(row[3])
		if err != nil {
			return nil, fmt.Errorf("parse length in %s row %d: %w", path, i+2, err)
		}
		records = append(records, harvest.PageRecord{
			Title:  row[0],
			Text:   row[1],
			URL:    row[2],
			Length: length,
		})
	}
	return records, nil
}

func writeCSV(dir string, name string, rows [][]string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create batch dir %s: %w", dir, err)
	}

	target := filepath.Join(dir, name)
	tmp := target + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", tmp, err)
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("write rows to %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("rename %s: %w", tmp, err)
	}
	return target, nil
}

func readCSV(path string, wantColumns int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = wantColumns
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read %s: missing header row", path)
	}
	return rows[1:], nil
}

// batchSequence extracts n from <prefix>_<n>.csv. Returns false for names that
// do not match the pattern.
func batchSequence(name string, prefix string) (int, bool) {
	if !strings.HasPrefix(name, prefix+"_") || !strings.HasSuffix(name, ".csv") {
		return 0, false
	}
	suffix := strings.TrimSuffix(strings.TrimPrefix(name, prefix+"_"), ".csv")
	seq, err := strconv.Atoi(suffix)
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}
