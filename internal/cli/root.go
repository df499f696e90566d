package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"search/config"
	"search/internal/adapter/analyzer"
	"search/internal/adapter/export"
	"search/internal/adapter/fs"
	"search/internal/adapter/memstore"
	"search/internal/adapter/metrics"
	"search/internal/adapter/store"
	"search/internal/domain"
	"search/internal/logger"
	"search/internal/usecase"
	"search/internal/workqueue"
)

// ErrMissingValue is reported for a flag that needs a value but has none.
var ErrMissingValue = errors.New("missing value")

type options struct {
	cfgFile   string
	logLevel  string
	logFormat string

	threads   string
	path      string
	search    string
	exact     bool
	index     string
	results   string
	locations string
	db        string
	metrics   string

	ignored []string
}

// NewRootCommand builds the search command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&options{})
}

func newRootCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Build an inverted index over text files and run ranked queries",
		Long: `search indexes the text files under a directory into an in-memory
inverted index, answers the queries in a query file by exact or prefix match,
and writes the index, per-file word totals and ranked results as JSON.

Flags may be given with one or two dashes. Output flags take an optional file
name and fall back to the configured default.

Example usage:
  search -path docs -index
  search -path docs -search queries.txt -results out.json
  search -threads 8 -path docs -search queries.txt -exact -results`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.cfgFile, "config", "", "config file (default is ./search.yaml)")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&opts.logFormat, "log-format", "", "log format: text or json")
	f.StringVar(&opts.threads, "threads", "", "index and search with a worker pool of this size")
	f.StringVar(&opts.path, "path", "", "file or directory of text files to index")
	f.StringVar(&opts.search, "search", "", "file with one query per line")
	f.BoolVar(&opts.exact, "exact", false, "match whole words instead of prefixes")
	f.StringVar(&opts.index, "index", "", "write the inverted index as JSON")
	f.StringVar(&opts.results, "results", "", "write query results as JSON")
	f.StringVar(&opts.locations, "locations", "", "write per-location word totals as JSON")
	f.StringVar(&opts.db, "db", "", "write the inverted index as a bbolt snapshot")
	f.StringVar(&opts.metrics, "metrics", "", "write run metrics in Prometheus text format")
	cmd.InitDefaultHelpFlag()

	return cmd
}

// Execute runs the command with the process arguments and exits non-zero
// only when the configuration cannot be loaded.
func Execute() {
	if err := ExecuteArgs(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// ExecuteArgs runs the command with args.
func ExecuteArgs(args []string) error {
	opts := &options{}
	cmd := newRootCommand(opts)
	var normalized []string
	normalized, opts.ignored = NormalizeArgs(cmd.Flags(), args)
	cmd.SetArgs(normalized)
	return cmd.Execute()
}

func run(cmd *cobra.Command, opts *options) error {
	start := time.Now()

	cfg, err := loadConfig(opts.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Logging.Format = opts.logFormat
	}
	log := logger.Setup(cfg.Logging.Level, cfg.Logging.Format).With("run_id", uuid.NewString())
	slog.SetDefault(log)

	for _, arg := range opts.ignored {
		log.Warn("ignoring argument", "arg", arg)
	}

	flags := cmd.Flags()
	m := metrics.New()
	tokenizer := analyzer.NewTokenizer(cfg.Index.Stemming)

	var (
		index memstore.Index
		queue *workqueue.WorkQueue
	)
	if flags.Changed("threads") {
		workers := parseThreads(opts.threads, cfg.Workers.Threads, log)
		queue = workqueue.New(workers, workqueue.WithMetrics(m))
		defer queue.Shutdown()
		index = memstore.NewConcurrentIndex()
		log.Debug("using worker pool", "workers", workers)
	} else {
		index = memstore.NewInvertedIndex()
	}

	if flags.Changed("path") {
		if opts.path == "" {
			log.Error("cannot index", "flag", "path", "error", ErrMissingValue)
		} else {
			indexer := usecase.NewIndexUseCase(
				index,
				fs.NewWalker(cfg.Index.Includes, cfg.Index.Excludes),
				fs.NewLoader(tokenizer),
				queue,
				usecase.WithMetrics(m),
			)
			result, err := indexer.Index(opts.path, newProgress(cfg.Index.Progress))
			if err != nil {
				log.Error("cannot index", "path", opts.path, "error", err)
			} else {
				for _, e := range result.Errors {
					log.Warn("skipped file", "error", e)
				}
			}
		}
	}

	var results resultsSource = emptyResults{}
	if flags.Changed("search") {
		if opts.search == "" {
			log.Error("cannot search", "flag", "search", "error", ErrMissingValue)
		} else {
			queries := usecase.NewQueryUseCase(index, tokenizer, queue, usecase.WithMetrics(m))
			if err := queries.ReadQueries(opts.search, opts.exact); err != nil {
				log.Error("cannot search", "path", opts.search, "error", err)
			}
			queries.Finish()
			results = queries
		}
	}

	writeOutputs(flags, opts, cfg.Output, index, results, m, log)

	log.Info("done", "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return config.LoadFromDir(dir)
}

// parseThreads returns the worker count for value, falling back to def when
// value is empty or not a positive integer.
func parseThreads(value string, def int, log *slog.Logger) int {
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		log.Warn("invalid thread count, using default", "value", value, "default", def)
		return def
	}
	return n
}

type resultsSource interface {
	Results() domain.QueryResults
}

type emptyResults struct{}

func (emptyResults) Results() domain.QueryResults { return domain.QueryResults{} }

// writeOutputs writes every requested export concurrently. Failures are
// logged and do not affect the others.
func writeOutputs(
	flags *pflag.FlagSet,
	opts *options,
	out config.OutputConfig,
	index memstore.Index,
	results resultsSource,
	m *metrics.Metrics,
	log *slog.Logger,
) {
	type job struct {
		flag, value, fallback string
		write                 func(path string) error
	}
	jobs := []job{
		{"index", opts.index, out.Index, func(path string) error {
			return export.WriteIndex(path, index.Snapshot())
		}},
		{"locations", opts.locations, out.Locations, func(path string) error {
			return export.WriteLocations(path, index.LocationTotals())
		}},
		{"results", opts.results, out.Results, func(path string) error {
			return export.WriteResults(path, results.Results())
		}},
		{"db", opts.db, out.DB, func(path string) error {
			return store.WriteSnapshot(path, index.Snapshot(), index.LocationTotals())
		}},
		{"metrics", opts.metrics, out.Metrics, m.WriteTextfile},
	}

	var g errgroup.Group
	for _, j := range jobs {
		if !flags.Changed(j.flag) {
			continue
		}
		path := j.value
		if path == "" {
			path = j.fallback
		}
		g.Go(func() error {
			if err := j.write(path); err != nil {
				log.Error("cannot write output", "flag", j.flag, "path", path, "error", err)
				return err
			}
			log.Debug("wrote output", "flag", j.flag, "path", path)
			return nil
		})
	}
	_ = g.Wait()
}
