package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "https://uz.wikipedia.org/w/api.php", cfg.Source.Endpoint)
	require.Equal(t, "Category:", cfg.Source.CategoryPrefix)
	require.Equal(t, 4, cfg.Crawl.Workers)
	require.Equal(t, 50, cfg.Crawl.BatchSize)
	require.Equal(t, 100, cfg.Crawl.MinTextLength)
	require.Equal(t, "wiki_content", cfg.Crawl.OutputPrefix)
	require.Equal(t, 500, cfg.Enumerate.PageLimit)
	require.Equal(t, 10000, cfg.Enumerate.FlushThreshold)
	require.Equal(t, []string{"Havolalar", "Manbalar", "Izohlar"}, cfg.Cleaner.DropSections)
	require.Equal(t, time.Second, cfg.Delay())
	require.Equal(t, 30*time.Second, cfg.RequestTimeout())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source:
  endpoint: https://tt.wikipedia.org/w/api.php
crawl:
  workers: 8
  batch_size: 25
paths:
  titles_dir: /tmp/titles
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://tt.wikipedia.org/w/api.php", cfg.Source.Endpoint)
	require.Equal(t, 8, cfg.Crawl.Workers)
	require.Equal(t, 25, cfg.Crawl.BatchSize)
	require.Equal(t, "/tmp/titles", cfg.Paths.TitlesDir)
	// Untouched values keep their defaults.
	require.Equal(t, 100, cfg.Crawl.MinTextLength)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.Source.Endpoint = " "
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Crawl.Workers = 0
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Crawl.BatchSize = -1
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Enumerate.FlushThreshold = 0
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Source.TimeoutSeconds = 0
	require.Error(t, cfg.Validate())
}
