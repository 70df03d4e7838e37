// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/naka-gawa/gh-log/internal/cache"
	"github.com/naka-gawa/gh-log/internal/config"
	"github.com/naka-gawa/gh-log/internal/domain"
	"github.com/naka-gawa/gh-log/internal/filter"
	"github.com/naka-gawa/gh-log/internal/gateway"
	"golang.org/x/sync/errgroup"
)

// Options controls how the pipeline treats the cache.
type Options struct {
	// Force skips the cache and always refetches, overwriting the entry.
	Force bool
	// AllowStale returns a stale cache entry when the fetch fails.
	AllowStale bool
}

// Snapshot is the raw data for one month: the PRs and the reviewed count.
type Snapshot struct {
	Month         domain.Month
	PullRequests  []domain.PullRequest
	ReviewedCount int
	FetchedAt     time.Time
	FromCache     bool
	Stale         bool
}

// Aggregator is the use case for building a month's metrics.
// It orchestrates the cache, the data source, classification and aggregation.
type Aggregator struct {
	fetcher gateway.Fetcher
	store   *cache.Store
	filter  *filter.Engine
	size    config.SizeConfig
	logger  *log.Logger
	now     func() time.Time
}

// NewAggregator creates a new Aggregator instance. fetcher may be nil when
// the caller only expects cache hits; a miss then fails with a FetchError.
func NewAggregator(fetcher gateway.Fetcher, store *cache.Store, cfg *config.Config, logger *log.Logger) (*Aggregator, error) {
	engine, err := filter.New(cfg.Filter)
	if err != nil {
		return nil, &config.Error{Err: err}
	}
	if err := cfg.Size.Validate(); err != nil {
		return nil, &config.Error{Err: err}
	}
	return &Aggregator{
		fetcher: fetcher,
		store:   store,
		filter:  engine,
		size:    cfg.Size,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Run loads the month's snapshot and aggregates it.
func (a *Aggregator) Run(ctx context.Context, month domain.Month, opts Options) (*domain.MonthSummary, *Snapshot, error) {
	snapshot, err := a.Load(ctx, month, opts)
	if err != nil {
		return nil, nil, err
	}
	a.logger.Println("Usecase: Starting data aggregation...")
	visible, excluded := a.filter.Partition(snapshot.PullRequests)
	a.logger.Printf("Usecase: %d visible PRs, %d excluded.", len(visible), excluded)
	summary := Summarize(month, visible, snapshot.ReviewedCount, a.size)
	a.logger.Println("Usecase: Aggregation complete.")
	return summary, snapshot, nil
}

// Load returns the snapshot for month from the cache when it is fresh,
// otherwise from the data source, writing the result back to the cache.
// A failed fetch never touches the existing cache entry.
func (a *Aggregator) Load(ctx context.Context, month domain.Month, opts Options) (*Snapshot, error) {
	if entry := a.store.Get(month, opts.Force); entry != nil {
		a.logger.Printf("Usecase: using cached data for %s.", month)
		return snapshotFromEntry(entry, true, false), nil
	}

	prs, reviewed, err := a.fetch(ctx, month)
	if err != nil {
		if opts.AllowStale {
			if stale := a.store.Load(month); stale != nil {
				a.logger.Printf("Usecase: fetch failed, falling back to stale cache from %s: %v", stale.FetchedAt.Format(time.RFC3339), err)
				return snapshotFromEntry(stale, true, true), nil
			}
		}
		return nil, &FetchError{Month: month, Err: err}
	}

	entry := &cache.Entry{
		Month:         month,
		FetchedAt:     a.now().UTC(),
		ReviewedCount: reviewed,
		PullRequests:  prs,
	}
	if err := a.store.Save(entry); err != nil {
		// The fetched data is still valid for this run.
		a.logger.Printf("Usecase: failed to write cache for %s: %v", month, err)
	}
	return snapshotFromEntry(entry, false, false), nil
}

// fetch runs the PR query and the reviewed-count query concurrently.
func (a *Aggregator) fetch(ctx context.Context, month domain.Month) ([]domain.PullRequest, int, error) {
	if a.fetcher == nil {
		return nil, 0, fmt.Errorf("no data source configured")
	}
	var prs []domain.PullRequest
	var reviewed int

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		prs, err = a.fetcher.FetchPullRequests(egCtx, month)
		return err
	})
	eg.Go(func() error {
		var err error
		reviewed, err = a.fetcher.FetchReviewedCount(egCtx, month)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, 0, err
	}
	a.logger.Println("Usecase: All data fetched successfully.")
	return prs, reviewed, nil
}

func snapshotFromEntry(entry *cache.Entry, fromCache, stale bool) *Snapshot {
	return &Snapshot{
		Month:         entry.Month,
		PullRequests:  entry.PullRequests,
		ReviewedCount: entry.ReviewedCount,
		FetchedAt:     entry.FetchedAt,
		FromCache:     fromCache,
		Stale:         stale,
	}
}

// FetchError reports that the data source could not deliver a month.
type FetchError struct {
	Month domain.Month
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch data for %s: %v", e.Month, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
