// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Source    SourceConfig    `mapstructure:"source"`
	Crawl     CrawlConfig     `mapstructure:"crawl"`
	Enumerate EnumerateConfig `mapstructure:"enumerate"`
	Cleaner   CleanerConfig   `mapstructure:"cleaner"`
	Paths     PathsConfig     `mapstructure:"paths"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Listen    string          `mapstructure:"listen"`
}

// SourceConfig points at the MediaWiki API endpoint.
type SourceConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	CategoryPrefix string `mapstructure:"category_prefix"`
}

// CrawlConfig governs the batch scheduler.
type CrawlConfig struct {
	Workers       int    `mapstructure:"workers"`
	BatchSize     int    `mapstructure:"batch_size"`
	MinTextLength int    `mapstructure:"min_text_length"`
	DelaySeconds  int    `mapstructure:"delay_seconds"`
	OutputPrefix  string `mapstructure:"output_prefix"`
}

// EnumerateConfig governs title enumeration.
type EnumerateConfig struct {
	PageLimit      int `mapstructure:"page_limit"`
	FlushThreshold int `mapstructure:"flush_threshold"`
	MaxDepth       int `mapstructure:"max_depth"`
	MaxArticles    int `mapstructure:"max_articles"`
}

// CleanerConfig lists the section headings the cleaner truncates at.
type CleanerConfig struct {
	DropSections []string `mapstructure:"drop_sections"`
}

// PathsConfig sets the two batch directory trees.
type PathsConfig struct {
	TitlesDir  string `mapstructure:"titles_dir"`
	ContentDir string `mapstructure:"content_dir"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WIKIHARVEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source.endpoint", "https://uz.wikipedia.org/w/api.php")
	v.SetDefault("source.user_agent", "wikiharvest/1.0 (+https://github.com/wikicorpus/wikiharvest)")
	v.SetDefault("source.timeout_seconds", 30)
	v.SetDefault("source.category_prefix", "Category:")
	v.SetDefault("crawl.workers", 4)
	v.SetDefault("crawl.batch_size", 50)
	v.SetDefault("crawl.min_text_length", 100)
	v.SetDefault("crawl.delay_seconds", 1)
	v.SetDefault("crawl.output_prefix", "wiki_content")
	v.SetDefault("enumerate.page_limit", 500)
	v.SetDefault("enumerate.flush_threshold", 10000)
	v.SetDefault("enumerate.max_depth", 2)
	v.SetDefault("enumerate.max_articles", 1000)
	v.SetDefault("cleaner.drop_sections", []string{"Havolalar", "Manbalar", "Izohlar"})
	v.SetDefault("paths.titles_dir", "data/titles")
	v.SetDefault("paths.content_dir", "data/content")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Source.Endpoint) == "" {
		return fmt.Errorf("source.endpoint must be set")
	}
	if c.Source.TimeoutSeconds <= 0 {
		return fmt.Errorf("source.timeout_seconds must be > 0")
	}
	if c.Crawl.Workers <= 0 {
		return fmt.Errorf("crawl.workers must be > 0")
	}
	if c.Crawl.BatchSize <= 0 {
		return fmt.Errorf("crawl.batch_size must be > 0")
	}
	if c.Crawl.MinTextLength < 0 {
		return fmt.Errorf("crawl.min_text_length must be >= 0")
	}
	if c.Enumerate.PageLimit <= 0 {
		return fmt.Errorf("enumerate.page_limit must be > 0")
	}
	if c.Enumerate.FlushThreshold <= 0 {
		return fmt.Errorf("enumerate.flush_threshold must be > 0")
	}
	return nil
}

// RequestTimeout converts the source timeout config into a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Source.TimeoutSeconds) * time.Second
}

// Delay converts the per-worker delay config into a duration.
func (c Config) Delay() time.Duration {
	return time.Duration(c.Crawl.DelaySeconds) * time.Second
}
