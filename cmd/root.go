// Package cmd defines and implements the CLI commands for the wikiharvest executable.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wikicorpus/wikiharvest/internal/api"
	"github.com/wikicorpus/wikiharvest/internal/config"
	"github.com/wikicorpus/wikiharvest/internal/logging"
	"github.com/wikicorpus/wikiharvest/internal/mediawiki"
	"github.com/wikicorpus/wikiharvest/internal/metrics"
	"github.com/wikicorpus/wikiharvest/internal/store"
)

var (
	cfgFile    string
	listenAddr string
)

// app holds the long-lived services shared by all subcommands.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	runID  string
	source *mediawiki.Client
	store  *store.FileStore
}

// buildApp loads configuration and constructs the shared services. It fails
// fast: a broken config or unreachable endpoint definition should stop the
// command before any crawling starts.
func buildApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger, runID := logging.WithRunID(logger)

	metrics.Init()

	source, err := mediawiki.New(mediawiki.Config{
		Endpoint:       cfg.Source.Endpoint,
		UserAgent:      cfg.Source.UserAgent,
		Timeout:        cfg.RequestTimeout(),
		CategoryPrefix: cfg.Source.CategoryPrefix,
		PageLimit:      cfg.Enumerate.PageLimit,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init content source: %w", err)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		runID:  runID,
		source: source,
		store:  store.New(cfg.Crawl.OutputPrefix),
	}, nil
}

// maybeServe starts the observability HTTP server when a listen address is
// configured, for the lifetime of ctx.
func (a *app) maybeServe(ctx context.Context) {
	addr := listenAddr
	if addr == "" {
		addr = a.cfg.Listen
	}
	if addr == "" {
		return
	}
	server := api.NewServer(a.logger, a.runID)
	go func() {
		if err := server.Serve(ctx, addr); err != nil {
			a.logger.Warn("observability server stopped", zap.Error(err))
		}
	}()
}

func (a *app) close() {
	_ = a.logger.Sync() // best-effort flush
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikiharvest",
		Short: "A resumable bulk crawler for MediaWiki sites.",
		Long: `wikiharvest enumerates and downloads article text from a MediaWiki site,
cleans it, and persists it as batched CSV files. Crawls are rate limited,
run on a bounded worker pool, and resume from prior output after a restart.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	cmd.PersistentFlags().StringVar(&listenAddr, "listen", "", "address for /healthz and /metrics (disabled when empty)")

	cmd.AddCommand(newEnumerateCmd())
	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
