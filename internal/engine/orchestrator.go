// internal/engine/orchestrator.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/law-makers/rostercrawl/internal/retry"
	"github.com/law-makers/rostercrawl/internal/runctx"
	urlutil "github.com/law-makers/rostercrawl/internal/utils/url"
	"github.com/law-makers/rostercrawl/pkg/models"
	"github.com/rs/zerolog/log"
)

// State is a step of the scrape run
type State string

const (
	StateInit       State = "INIT"
	StateFiltering  State = "FILTERING"
	StateScrapePage State = "SCRAPE_PAGE"
	StateCheckNext  State = "CHECK_NEXT"
	StateDone       State = "DONE"
	StateFailed     State = "FAILED"
)

// Exporter receives the records of a successful run
type Exporter interface {
	Export(records []models.Record) error
	// Path is the destination reported in the result
	Path() string
}

// PageEvent is reported after each scraped page
type PageEvent struct {
	Page    int
	Added   int
	Total   int
	Skipped int
}

// Options configures one Orchestrator
type Options struct {
	URL        string
	Filters    []string
	Fullscreen bool
	// ReadyLocator is awaited after navigation; empty skips the wait.
	ReadyLocator Locator
	// MaxPages stops the run after that many pages; 0 means no limit.
	MaxPages int
	// ResolveLinks makes relative profile URLs absolute against URL.
	ResolveLinks bool
	Retry        retry.Config
	OnPage       func(PageEvent)
}

// Orchestrator drives one scrape: open the listing, apply filters, then
// alternate extraction and pagination until the pager is exhausted.
type Orchestrator struct {
	opts       Options
	newSession SessionFactory
	filters    *FilterSelector
	extractor  *RowExtractor
	pagination PaginationOptions
	exporter   Exporter

	state State
}

// NewOrchestrator wires the components of a run. exporter may be nil, in
// which case records are only returned in the result.
func NewOrchestrator(opts Options, newSession SessionFactory, filters *FilterSelector, extractor *RowExtractor, pagination PaginationOptions, exporter Exporter) (*Orchestrator, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("listing URL is required")
	}
	if newSession == nil {
		return nil, fmt.Errorf("session factory is required")
	}
	if filters == nil {
		filters, _ = NewFilterSelector("")
	}
	if extractor == nil {
		return nil, fmt.Errorf("row extractor is required")
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.DefaultConfig()
	}
	if opts.Retry.Retryable == nil {
		opts.Retry.Retryable = Retryable
	}
	if pagination.ThrottleKey == "" {
		pagination.ThrottleKey = opts.URL
	}
	return &Orchestrator{
		opts:       opts,
		newSession: newSession,
		filters:    filters,
		extractor:  extractor,
		pagination: pagination,
		exporter:   exporter,
		state:      StateInit,
	}, nil
}

// State returns the state the last run ended in
func (o *Orchestrator) State() State {
	return o.state
}

func (o *Orchestrator) enter(ctx context.Context, s State) {
	log.Debug().Str("run_id", runctx.FromContext(ctx).ID).Str("from", string(o.state)).Str("to", string(s)).Msg("State transition")
	o.state = s
}

// Run performs the scrape. The browser session is acquired once and
// released on every return path; records reach the exporter only when the
// whole listing was read.
func (o *Orchestrator) Run(ctx context.Context) (*models.ScrapeResult, error) {
	ctx = runctx.WithRun(ctx)
	run := runctx.FromContext(ctx)
	logger := log.With().Str("run_id", run.ID).Logger()

	o.state = StateInit
	result := &models.ScrapeResult{
		RunID:     run.ID,
		URL:       o.opts.URL,
		StartedAt: time.Now(),
	}

	fail := func(err error) (*models.ScrapeResult, error) {
		o.enter(ctx, StateFailed)
		if isCancellation(err) {
			logger.Warn().Err(err).Int("pages", result.Pages).Msg("Scrape cancelled")
		} else {
			logger.Error().Err(err).Int("pages", result.Pages).Msg("Scrape failed")
		}
		return nil, runctx.NewRunError(ctx, err)
	}

	// INIT
	d, err := o.newSession(ctx)
	if err != nil {
		return fail(navigationError("failed to start browser session", err))
	}
	released := false
	release := func() {
		if released {
			return
		}
		released = true
		if err := d.Close(); err != nil {
			logger.Warn().Err(err).Msg("Error closing browser session")
		}
	}
	defer release()

	if err := o.open(ctx, d); err != nil {
		return fail(err)
	}

	pager := NewPaginationController(o.pagination, o.extractor)

	// FILTERING
	o.enter(ctx, StateFiltering)
	if err := o.applyFilters(ctx, d, pager); err != nil {
		return fail(err)
	}

	store := NewRecordStore()
	for {
		// SCRAPE_PAGE
		o.enter(ctx, StateScrapePage)
		result.Pages++

		src, err := d.Source(ctx)
		if err != nil {
			return fail(navigationError(fmt.Sprintf("failed to read page %d", result.Pages), err))
		}
		records, skipped, err := o.extractor.Extract(result.Pages, src)
		if err != nil {
			return fail(err)
		}
		if o.opts.ResolveLinks {
			urlutil.ResolveProfileLinks(o.opts.URL, records)
		}
		store.Append(records...)
		result.Skipped = append(result.Skipped, skipped...)

		logger.Info().
			Int("page", result.Pages).
			Int("records", len(records)).
			Int("total", store.Len()).
			Msg("Page scraped")
		if o.opts.OnPage != nil {
			o.opts.OnPage(PageEvent{Page: result.Pages, Added: len(records), Total: store.Len(), Skipped: len(skipped)})
		}

		// CHECK_NEXT
		o.enter(ctx, StateCheckNext)
		if o.opts.MaxPages > 0 && result.Pages >= o.opts.MaxPages {
			logger.Info().Int("max_pages", o.opts.MaxPages).Msg("Page limit reached")
			break
		}
		next, err := pager.CheckAndAdvance(ctx, d)
		if err != nil {
			return fail(err)
		}
		if next == Exhausted {
			break
		}
	}

	// DONE
	o.enter(ctx, StateDone)
	release()

	result.Records = store.Drain()
	if o.exporter != nil {
		if err := o.exporter.Export(result.Records); err != nil {
			var ee *EngineError
			if !errors.As(err, &ee) {
				err = NewEngineError(ErrCodeExport, "failed to export records", err)
			}
			return fail(err)
		}
		result.OutputPath = o.exporter.Path()
	}
	result.Duration = time.Since(result.StartedAt)

	logger.Info().
		Int("pages", result.Pages).
		Int("records", len(result.Records)).
		Int("skipped", len(result.Skipped)).
		Dur("duration", result.Duration).
		Msg("Scrape completed")

	return result, nil
}

// open navigates to the listing and waits for the table
func (o *Orchestrator) open(ctx context.Context, d Driver) error {
	err := retry.WithRetry(ctx, o.opts.Retry, func() error {
		if err := d.Navigate(ctx, o.opts.URL); err != nil {
			return navigationError("failed to open listing", err).
				WithRetry().
				WithDetail("url", o.opts.URL)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if o.opts.Fullscreen {
		if err := d.Fullscreen(ctx); err != nil {
			return navigationError("failed to switch to fullscreen", err)
		}
	}

	if o.opts.ReadyLocator.Value != "" {
		if err := d.WaitReady(ctx, o.opts.ReadyLocator); err != nil {
			return navigationError(fmt.Sprintf("listing never became ready (%s)", o.opts.ReadyLocator), err)
		}
	}
	return nil
}

// applyFilters selects every filter value, then waits for the table to
// reflect the selection before the first page is read.
func (o *Orchestrator) applyFilters(ctx context.Context, d Driver, pager *PaginationController) error {
	if len(o.opts.Filters) == 0 {
		return nil
	}

	var before string
	if o.pagination.SettleMode != models.SettleFixed {
		src, err := d.Source(ctx)
		if err != nil {
			return navigationError("failed to read document", err)
		}
		if before, err = o.extractor.Fingerprint(src); err != nil {
			return navigationError("failed to fingerprint listing", err)
		}
	}

	if err := o.filters.Apply(ctx, d, o.opts.Filters); err != nil {
		return err
	}
	// A selection that matches what is already shown leaves the table as is.
	err := pager.Settle(ctx, d, before)
	if errors.Is(err, ErrTimeout) {
		log.Warn().Strs("filters", o.opts.Filters).Msg("Listing unchanged after applying filters, continuing")
		return nil
	}
	return err
}

// Snapshot opens the listing, applies the filters and returns the rendered
// document of the first page without extracting anything.
func (o *Orchestrator) Snapshot(ctx context.Context) (string, error) {
	ctx = runctx.WithRun(ctx)

	d, err := o.newSession(ctx)
	if err != nil {
		return "", runctx.NewRunError(ctx, navigationError("failed to start browser session", err))
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing browser session")
		}
	}()

	if err := o.open(ctx, d); err != nil {
		return "", runctx.NewRunError(ctx, err)
	}
	pager := NewPaginationController(o.pagination, o.extractor)
	if err := o.applyFilters(ctx, d, pager); err != nil {
		return "", runctx.NewRunError(ctx, err)
	}

	src, err := d.Source(ctx)
	if err != nil {
		return "", runctx.NewRunError(ctx, navigationError("failed to read page", err))
	}
	return src, nil
}
