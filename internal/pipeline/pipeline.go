package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ppiankov/dealscan/internal/cache"
	"github.com/ppiankov/dealscan/internal/extract"
	"github.com/ppiankov/dealscan/internal/filter"
	"github.com/ppiankov/dealscan/internal/model"
	"github.com/ppiankov/dealscan/internal/worker"
)

// Pipeline orchestrates a scan: query, fetch, filter, extract, aggregate
type Pipeline struct {
	config    *model.Config
	logger    zerolog.Logger
	queries   *QueryBuilder
	fetcher   *Fetcher
	relevance *filter.Relevance // nil when the relevance gate is off
	extractor *extract.Extractor
	now       func() time.Time
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithClock replaces the wall clock used for the recency cutoff
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithFetcher replaces the fetcher built from the HTTP configuration
func WithFetcher(f *Fetcher) Option {
	return func(p *Pipeline) {
		p.fetcher = f
	}
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, logger zerolog.Logger, opts ...Option) (*Pipeline, error) {
	extractor, err := extract.NewExtractor(cfg.Extract.Patterns)
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}

	p := &Pipeline{
		config:    cfg,
		logger:    logger,
		queries:   NewQueryBuilder(cfg.Search),
		extractor: extractor,
		now:       time.Now,
	}

	if cfg.Filter.Relevance {
		p.relevance = filter.NewRelevance(cfg.Filter.Exclude, cfg.Filter.Include)
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.fetcher == nil {
		fetcherOpts := []FetcherOption{
			WithLimiter(worker.NewLimiter(cfg.HTTP.RequestsPerSecond, cfg.HTTP.BurstSize)),
		}
		if c := cache.FromConfig(cfg.Cache); c != nil {
			fetcherOpts = append(fetcherOpts, WithCache(c))
			if cfg.Cache.Refresh {
				fetcherOpts = append(fetcherOpts, WithRefresh())
			}
		}
		fetcher, err := NewFetcher(cfg.HTTP, fetcherOpts...)
		if err != nil {
			return nil, fmt.Errorf("build fetcher: %w", err)
		}
		p.fetcher = fetcher
	}

	return p, nil
}

// Queries returns the feed URLs in term order
func (p *Pipeline) Queries() []string {
	return p.queries.URLs(p.config.Search.Terms)
}

// CollectTerm fetches and processes one term with a cutoff taken from the clock now
func (p *Pipeline) CollectTerm(ctx context.Context, index int, term string) model.TermResult {
	recency := filter.NewRecency(p.now(), p.config.Filter.Window())
	return p.collect(ctx, index, term, recency, p.logger)
}

// Run processes every configured term and aggregates the deals.
// Without continue_on_error the first failing term, in term order, aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*model.BatchReport, error) {
	startedAt := p.now()
	recency := filter.NewRecency(startedAt, p.config.Filter.Window())

	report := &model.BatchReport{
		RunID:     uuid.NewString(),
		Profile:   p.config.Profile,
		StartedAt: startedAt.UTC(),
		Cutoff:    recency.Cutoff.UTC(),
	}

	logger := p.logger.With().Str("run_id", report.RunID).Logger()
	logger.Info().
		Str("profile", report.Profile).
		Int("terms", len(p.config.Search.Terms)).
		Time("cutoff", report.Cutoff).
		Msg("scan started")

	failFast := !p.config.Errors.ContinueOnError
	collector := &runCollector{pipeline: p, recency: recency, logger: logger}
	processor := worker.NewBatchProcessor(collector, p.config.Concurrency.Workers, failFast)

	report.Terms = processor.ProcessTerms(ctx, p.config.Search.Terms)

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("scan cancelled: %w", err)
	}

	if failFast {
		if err := firstFailure(report.Terms); err != nil {
			logger.Error().Err(err).Msg("scan aborted")
			return report, err
		}
	}

	var all []model.Deal
	for _, t := range report.Terms {
		if t.Err != nil {
			logger.Warn().Str("term", t.Term).Err(t.Err).Msg("term failed, continuing")
			continue
		}
		all = append(all, t.Deals...)
	}
	report.Deals = Aggregate(all)

	logger.Info().
		Int("kept", report.TotalKept()).
		Int("deals", len(report.Deals)).
		Int("failed", len(report.Failed())).
		Msg("scan finished")

	return report, nil
}

// runCollector shares one cutoff and logger across all terms of a run
type runCollector struct {
	pipeline *Pipeline
	recency  filter.Recency
	logger   zerolog.Logger
}

func (c *runCollector) CollectTerm(ctx context.Context, index int, term string) model.TermResult {
	return c.pipeline.collect(ctx, index, term, c.recency, c.logger)
}

func (p *Pipeline) collect(ctx context.Context, index int, term string, recency filter.Recency, logger zerolog.Logger) model.TermResult {
	feedURL := p.queries.URL(term)
	result := model.TermResult{Index: index, Term: term, URL: feedURL}
	log := logger.With().Str("term", term).Logger()

	items, err := p.fetcher.FetchWithRetry(ctx, feedURL)
	if err != nil {
		result.Err = &TermError{Term: term, URL: feedURL, Err: err}
		return result
	}

	deals := make([]model.Deal, 0, len(items))
	for _, item := range items {
		result.Stats.Seen++

		if p.relevance != nil && !p.relevance.Allow(item.Title) {
			result.Stats.Irrelevant++
			log.Debug().
				Str("title", item.Title).
				Str("excluded_by", p.relevance.MatchedExclude(item.Title)).
				Msg("irrelevant")
			continue
		}

		published, err := filter.ParsePubDate(item.Published)
		if err != nil {
			result.Err = &TermError{Term: term, URL: feedURL, Err: err}
			result.Stats.Kept = 0
			result.Stats.NoParties = 0
			return result
		}

		if !recency.Allow(published) {
			result.Stats.Stale++
			continue
		}

		deal := model.Deal{
			Date:  model.CalendarDate(published),
			Title: extract.CleanText(item.Title),
			Link:  item.Link,
		}
		if m, ok := p.extractor.Extract(item.Title); ok {
			deal.Buyer = m.Buyer
			deal.Target = m.Target
		}
		if !deal.HasParties() {
			result.Stats.NoParties++
		}

		deals = append(deals, deal)
		result.Stats.Kept++
	}

	result.Deals = deals
	log.Info().
		Int("seen", result.Stats.Seen).
		Int("irrelevant", result.Stats.Irrelevant).
		Int("stale", result.Stats.Stale).
		Int("kept", result.Stats.Kept).
		Int("no_parties", result.Stats.NoParties).
		Msg("term processed")

	return result
}

// firstFailure returns the earliest real failure in term order. Terms that
// only failed because an earlier failure cancelled the batch are skipped.
func firstFailure(terms []model.TermResult) error {
	var fallback error
	for _, t := range terms {
		if t.Err == nil {
			continue
		}
		if errors.Is(t.Err, worker.ErrNotRun) || errors.Is(t.Err, context.Canceled) {
			if fallback == nil {
				fallback = t.Err
			}
			continue
		}
		return t.Err
	}
	return fallback
}
