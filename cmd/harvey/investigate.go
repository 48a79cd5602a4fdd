package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/harvey/internal/config"
	"github.com/nao1215/harvey/internal/database"
	"github.com/nao1215/harvey/internal/fetch"
	"github.com/nao1215/harvey/internal/log"
	"github.com/nao1215/harvey/internal/model"
	"github.com/nao1215/harvey/internal/pipeline"
	"github.com/nao1215/harvey/internal/probe"
	"github.com/nao1215/harvey/internal/report"
)

// NewInvestigateCmd creates the investigate command.
func NewInvestigateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "investigate NAME [NAME...]",
		Aliases: []string{"research"},
		Short:   "Build a professional snapshot of one or more people",
		Long: `Investigate researches each named person and prints a report.

For every name harvey:
- searches LinkedIn profiles through DuckDuckGo and Bing footprints
- scrapes the public LinkedIn profile pages
- looks the person up on GitHub (profile, repositories, profile README)
- validates the LinkedIn identity against links published on GitHub
- picks a portfolio website from the GitHub profile

Each argument is one full name; quote names that contain spaces.

Examples:
  # Investigate one person
  harvey investigate "Jane Doe"

  # Skip the GitHub user search
  harvey investigate --github janedoe "Jane Doe"

  # Investigate several people, two at a time
  harvey investigate -b 2 "Jane Doe" "John Smith"

  # Print a Markdown report and save a timestamped copy
  harvey investigate -f markdown --save "Jane Doe"`,
		Args: cobra.ArbitraryArgs,
		RunE: runInvestigateCmd,
	}

	cmd.Flags().StringP("github", "g", "",
		"GitHub username or profile URL of the person (skips the GitHub user search)")

	// Probe behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().IntP("max-results", "n", config.DefaultMaxResults,
		"Maximum number of LinkedIn candidates per search")
	cmd.Flags().Int("max-repos", config.DefaultMaxRepos,
		"Maximum number of top GitHub repositories listed")
	cmd.Flags().Duration("scrape-delay", config.DefaultScrapeDelay,
		"Minimum pause between LinkedIn profile scrapes")
	cmd.Flags().Bool("guess-slug", false,
		"Try linkedin.com/in/<name-slug> when every search engine fails")
	cmd.Flags().Bool("no-profile-page", false,
		"Do not fetch the GitHub profile web page")

	// Batch flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent investigations")

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .harvey in current or home directory)")

	// Report flags
	cmd.Flags().StringP("format", "f", config.FormatText,
		"Report format: "+strings.Join(config.Formats(), ", "))
	cmd.Flags().StringP("output", "o", "",
		"Write the report to the specified file path (creates directories if needed)")
	cmd.Flags().BoolP("save", "s", false,
		"Save a timestamped report artifact to the report directory")
	cmd.Flags().String("report-dir", "",
		"Directory for saved report artifacts (default: <data dir>/reports)")
	cmd.Flags().Bool("no-db", false,
		"Do not store the investigation in the history database")

	return cmd
}

// runInvestigateCmd executes the investigate command.
func runInvestigateCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	fetcher := fetch.New(
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithLogger(logger),
	)

	iv := &investigator{
		cfg:    cfg,
		getter: fetcher,
		out:    cmd.OutOrStdout(),
		status: cmd.ErrOrStderr(),
		logger: logger,
	}
	return iv.run(ctx)
}

// boolFlag retrieves a boolean flag from the command or its parent.
func boolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// dbDir returns the database directory selected with --db-dir.
func dbDir(cmd *cobra.Command) string {
	dir, err := cmd.Flags().GetString("db-dir")
	if err != nil || dir == "" {
		return config.XDGDataDir()
	}
	return dir
}

// newLogger creates the secure logger selected by --log-json.
func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	if boolFlag(cmd, "log-json") {
		return log.NewSecureJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return log.NewSecureLogger(cmd.ErrOrStderr(), verbose)
}

// buildConfig creates a Config from defaults, the configuration file and
// cobra command flags, in that order. Only flags set on the command line
// override file values.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit config path must exist; the default locations are optional.
	var file *config.File
	if path := config.FindConfigFile(cfg.ConfigFilePath); path != "" {
		file, err = config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		file.Apply(cfg)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}
	cfg.GitHubToken = config.ResolveToken(file)

	cfg.Verbose = boolFlag(cmd, "verbose")
	cfg.DBDir = dbDir(cmd)

	if cfg.GitHubHint, err = flags.GetString("github"); err != nil {
		return nil, err
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-results") {
		if cfg.MaxResults, err = flags.GetInt("max-results"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-repos") {
		if cfg.MaxRepos, err = flags.GetInt("max-repos"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("scrape-delay") {
		if cfg.ScrapeDelay, err = flags.GetDuration("scrape-delay"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("guess-slug") {
		if cfg.GuessSlug, err = flags.GetBool("guess-slug"); err != nil {
			return nil, err
		}
	}
	if cfg.SkipProfilePage, err = flags.GetBool("no-profile-page"); err != nil {
		return nil, err
	}
	if flags.Changed("batch") {
		if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("format") {
		if cfg.Format, err = flags.GetString("format"); err != nil {
			return nil, err
		}
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.SaveReport, err = flags.GetBool("save"); err != nil {
		return nil, err
	}
	if flags.Changed("report-dir") {
		if cfg.ReportDir, err = flags.GetString("report-dir"); err != nil {
			return nil, err
		}
	}
	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	cfg.Targets = normalizeTargets(args)

	return cfg, nil
}

// normalizeTargets collapses whitespace in every name and drops empty ones.
func normalizeTargets(args []string) []string {
	targets := make([]string, 0, len(args))
	for _, arg := range args {
		if name := strings.Join(strings.Fields(arg), " "); name != "" {
			targets = append(targets, name)
		}
	}
	return targets
}

// investigator runs the investigations of one command invocation.
type investigator struct {
	cfg    *config.Config
	getter probe.Getter

	// out receives the reports; status receives progress and summaries.
	out    io.Writer
	status io.Writer

	logger *slog.Logger

	// pipelineOpts are appended to the options derived from cfg.
	pipelineOpts []pipeline.DefaultPipelineOption
}

// run investigates every target, writes the reports and persists them.
func (iv *investigator) run(ctx context.Context) error {
	cfg := iv.cfg

	iv.logger.Info("starting investigation",
		"targets", cfg.Targets,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
		"authenticated", cfg.GitHubToken != "",
	)

	var db *database.SnapshotDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		iv.logger.Info("database opened", "path", db.Path())
	}

	var store *report.Store
	if cfg.SaveReport {
		store = report.NewStore(cfg.ReportDir, getVersion())
	}

	output, closeOutput, err := openOutput(cfg.ReportFile, iv.out)
	if err != nil {
		return err
	}
	defer func() { _ = closeOutput() }()

	writer, err := report.NewWriter(cfg.Format, output, getVersion())
	if err != nil {
		return err
	}

	bp := pipeline.NewBatchProcessor(
		iv.newPipeline,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(iv.logger),
		pipeline.WithGitHubHint(cfg.GitHubHint),
	)

	if len(cfg.Targets) > 1 {
		fmt.Fprintf(iv.status, "Investigating %d people (concurrency: %d)...\n\n",
			len(cfg.Targets), cfg.BatchSize)
	} else {
		fmt.Fprintf(iv.status, "Investigating %s...\n\n", cfg.Targets[0])
	}
	startTime := time.Now()

	// Reports and the database are written even after cancellation, so
	// partial results are kept.
	persistCtx := context.WithoutCancel(ctx)

	var (
		mu   sync.Mutex
		done int
		errs []error
	)
	batchErr := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(inv *model.Investigation, _ int) {
		mu.Lock()
		defer mu.Unlock()

		done++
		fmt.Fprintf(iv.status, "[%d/%d] Investigation of %s finished in %s\n",
			done, len(cfg.Targets), inv.Target, inv.Duration().Round(time.Millisecond))

		if err := iv.finish(persistCtx, inv, writer, store, db); err != nil {
			iv.logger.Error("failed to finish investigation", "target", inv.Target, "error", err)
			fmt.Fprintln(iv.status, formatError(err.Error()))
			errs = append(errs, err)
		}
	})

	if len(cfg.Targets) > 1 {
		fmt.Fprintf(iv.status, "\nBatch completed in %s\n", time.Since(startTime).Round(time.Millisecond))
	}

	if err := closeOutput(); err != nil {
		errs = append(errs, err)
	}
	if batchErr != nil {
		errs = append(errs, fmt.Errorf("investigation interrupted: %w", batchErr))
	}
	return errors.Join(errs...)
}

// newPipeline creates the investigation pipeline for one target.
func (iv *investigator) newPipeline() *pipeline.Pipeline {
	cfg := iv.cfg

	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(iv.logger),
		pipeline.WithContinueOnError(true),
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineMaxResults(cfg.MaxResults),
		pipeline.WithPipelineMaxPeopleResults(cfg.MaxPeopleResults),
		pipeline.WithPipelineMaxRepos(cfg.MaxRepos),
		pipeline.WithPipelineGuessSlug(cfg.GuessSlug),
		pipeline.WithPipelineScrapeDelay(cfg.ScrapeDelay),
		pipeline.WithPipelineGitHubToken(cfg.GitHubToken),
		pipeline.WithPipelineProfilePage(!cfg.SkipProfilePage),
		pipeline.WithPipelineLogger(iv.logger),
	}
	configOpts = append(configOpts, iv.pipelineOpts...)

	return pipeline.DefaultPipeline(iv.getter, pipelineOpts, configOpts...)
}

// finish outputs, saves and summarizes a finished investigation. A nil
// store or db skips that destination.
func (iv *investigator) finish(ctx context.Context, inv *model.Investigation, writer report.Writer, store *report.Store, db *database.SnapshotDB) error {
	if _, err := writer.Write(inv); err != nil {
		return fmt.Errorf("failed to write report for %s: %w", inv.Target, err)
	}

	var artifact string
	if store != nil {
		path, err := store.Save(inv, iv.cfg.Format)
		if err != nil {
			return fmt.Errorf("failed to save report for %s: %w", inv.Target, err)
		}
		artifact = path
		iv.logger.Info("report saved", "target", inv.Target, "path", path)
	}

	if db != nil {
		if _, err := db.SaveInvestigation(ctx, inv); err != nil {
			return fmt.Errorf("failed to save investigation of %s: %w", inv.Target, err)
		}
		iv.logger.Info("investigation saved to database", "target", inv.Target)
	}

	fmt.Fprintln(iv.status, renderSummary(inv, report.NewSummary(inv, time.Now()), artifact))
	return nil
}

// openOutput returns the report destination: the file at path, or
// fallback when path is empty. The returned close function is never nil.
func openOutput(path string, fallback io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return fallback, func() error { return nil }, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports describe real people; only the owner may read them.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // user-provided output path
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	closeFile := sync.OnceValue(func() error {
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close output file: %w", err)
		}
		return nil
	})
	return f, closeFile, nil
}
