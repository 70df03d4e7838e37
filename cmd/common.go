package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/naka-gawa/gh-log/internal/cache"
	"github.com/naka-gawa/gh-log/internal/clierr"
	"github.com/naka-gawa/gh-log/internal/config"
	"github.com/naka-gawa/gh-log/internal/domain"
	"github.com/naka-gawa/gh-log/internal/gateway"
	"github.com/naka-gawa/gh-log/internal/usecase"
)

// Seams replaced in tests.
var (
	now        = time.Now
	newFetcher = func(ctx context.Context, logger *log.Logger) (gateway.Fetcher, error) {
		token, source, err := gateway.ResolveToken(ctx)
		if err != nil {
			return nil, err
		}
		logger.Printf("CLI: using GitHub token from %s.", source)
		return gateway.NewGitHubGateway(token, logger)
	}
)

// monthOptions are the flags shared by view and print.
type monthOptions struct {
	month      string
	force      bool
	allowStale bool
}

func addMonthFlags(fs *pflag.FlagSet, o *monthOptions) {
	fs.StringVarP(&o.month, "month", "m", "", "Month to report (YYYY-MM, default: current month)")
	fs.BoolVarP(&o.force, "force", "f", false, "Bypass the cache and refetch")
	fs.BoolVar(&o.allowStale, "allow-stale", false, "Use a stale cache entry if the fetch fails")
}

// resolveMonth parses --month, defaulting to the current month.
func (o *monthOptions) resolveMonth() (domain.Month, error) {
	if o.month == "" {
		return domain.MonthOf(now()), nil
	}
	m, err := domain.ParseMonth(o.month)
	if err != nil {
		return domain.Month{}, clierr.Usagef("invalid --month %q: expected YYYY-MM", o.month)
	}
	return m, nil
}

func (o *monthOptions) usecaseOptions() usecase.Options {
	return usecase.Options{Force: o.force, AllowStale: o.allowStale}
}

func newLogger(cmd *cobra.Command) *log.Logger {
	logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
	if globals.verbose {
		logger.SetOutput(cmd.ErrOrStderr()) // If verbose, log to standard error.
	}
	return logger
}

func configPath() (string, error) {
	if globals.configPath != "" {
		return globals.configPath, nil
	}
	return config.DefaultPath()
}

func loadConfig() (*config.Config, string, error) {
	path, err := configPath()
	if err != nil {
		return nil, "", clierr.Wrap(clierr.CodeConfig, "cannot locate config", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, clierr.Wrap(clierr.CodeConfig, "config error", err)
	}
	return cfg, path, nil
}

func openCache(logger *log.Logger) (*cache.Store, error) {
	dir := globals.cacheDir
	if dir == "" {
		var err error
		if dir, err = cache.DefaultDir(); err != nil {
			return nil, err
		}
	}
	return cache.New(dir, logger, cache.WithClock(now))
}

// pipeline holds everything a reporting command needs for one month.
type pipeline struct {
	month      domain.Month
	store      *cache.Store
	aggregator *usecase.Aggregator
	logger     *log.Logger
}

// newPipeline validates the month before touching config, cache or network,
// then wires the aggregator. The data source is only created on a cache miss.
func newPipeline(cmd *cobra.Command, o *monthOptions) (*pipeline, error) {
	month, err := o.resolveMonth()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd)
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := openCache(logger)
	if err != nil {
		return nil, err
	}
	aggregator, err := usecase.NewAggregator(&lazyFetcher{logger: logger}, store, cfg, logger)
	if err != nil {
		return nil, classify(err)
	}
	return &pipeline{month: month, store: store, aggregator: aggregator, logger: logger}, nil
}

func (p *pipeline) run(ctx context.Context, o *monthOptions) (*domain.MonthSummary, error) {
	summary, snapshot, err := p.aggregator.Run(ctx, p.month, o.usecaseOptions())
	if err != nil {
		return nil, classify(err)
	}
	if snapshot.Stale {
		p.logger.Printf("CLI: showing stale data fetched at %s.", snapshot.FetchedAt.Format(time.RFC3339))
	}
	return summary, nil
}

// classify maps pipeline errors onto exit codes.
func classify(err error) error {
	var cfgErr *config.Error
	var fetchErr *usecase.FetchError
	switch {
	case errors.As(err, &cfgErr):
		return clierr.Wrap(clierr.CodeConfig, "config error", err)
	case errors.As(err, &fetchErr):
		return clierr.Wrap(clierr.CodeFetch, "fetch error", err)
	default:
		return err
	}
}

// lazyFetcher defers token resolution until the cache actually misses, so a
// cached month can be shown without credentials.
type lazyFetcher struct {
	logger  *log.Logger
	once    sync.Once
	fetcher gateway.Fetcher
	err     error
}

func (l *lazyFetcher) get(ctx context.Context) (gateway.Fetcher, error) {
	l.once.Do(func() {
		l.fetcher, l.err = newFetcher(ctx, l.logger)
	})
	return l.fetcher, l.err
}

func (l *lazyFetcher) FetchPullRequests(ctx context.Context, month domain.Month) ([]domain.PullRequest, error) {
	f, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return f.FetchPullRequests(ctx, month)
}

func (l *lazyFetcher) FetchReviewedCount(ctx context.Context, month domain.Month) (int, error) {
	f, err := l.get(ctx)
	if err != nil {
		return 0, err
	}
	return f.FetchReviewedCount(ctx, month)
}

func fprintf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
