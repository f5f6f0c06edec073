// internal/engine/pagination.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/law-makers/rostercrawl/pkg/models"
	"github.com/rs/zerolog/log"
)

// PageState is the outcome of a pagination check
type PageState int

const (
	// HasNext means the table advanced to another page
	HasNext PageState = iota
	// Exhausted means the last page was already read. It is terminal.
	Exhausted
)

func (s PageState) String() string {
	if s == Exhausted {
		return "exhausted"
	}
	return "has_next"
}

// PaginationOptions configures the next-page control and how the scraper
// waits for new rows to render.
type PaginationOptions struct {
	NextControl    Locator
	DisabledMarker string
	AdvanceScript  string

	SettleMode    models.SettleMode
	SettleDelay   time.Duration // fixed mode
	SettleTimeout time.Duration // poll mode upper bound
	PollInterval  time.Duration

	Throttle    Throttle
	ThrottleKey string
}

// DefaultPaginationOptions matches the TablePress/DataTables pager
func DefaultPaginationOptions() PaginationOptions {
	return PaginationOptions{
		NextControl:    CSS(".paginate_button.next"),
		DisabledMarker: "disabled",
		AdvanceScript:  `document.getElementById("tablepress-25058_next").click()`,
		SettleMode:     models.SettlePoll,
		SettleDelay:    2 * time.Second,
		SettleTimeout:  15 * time.Second,
		PollInterval:   250 * time.Millisecond,
	}
}

// Fingerprinter reduces a document to the part that changes between pages
type Fingerprinter interface {
	Fingerprint(markup string) (string, error)
}

// PaginationController walks the pager. Once it reports Exhausted it never
// touches the driver again.
type PaginationController struct {
	opts     PaginationOptions
	fp       Fingerprinter
	state    PageState
	advances int
}

// NewPaginationController creates a controller in the HasNext state
func NewPaginationController(opts PaginationOptions, fp Fingerprinter) *PaginationController {
	if opts.DisabledMarker == "" {
		opts.DisabledMarker = "disabled"
	}
	if opts.SettleMode == "" {
		opts.SettleMode = models.SettlePoll
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 250 * time.Millisecond
	}
	return &PaginationController{opts: opts, fp: fp, state: HasNext}
}

// State returns the current state
func (p *PaginationController) State() PageState {
	return p.state
}

// Advances returns how many times the pager was moved forward
func (p *PaginationController) Advances() int {
	return p.advances
}

// CheckAndAdvance inspects the next-page control. If it is disabled the
// controller becomes Exhausted; otherwise the advance script runs and the
// call returns once the new page has settled.
func (p *PaginationController) CheckAndAdvance(ctx context.Context, d Driver) (PageState, error) {
	if p.state == Exhausted {
		return Exhausted, nil
	}

	class, _, err := d.Attribute(ctx, p.opts.NextControl, "class")
	if err != nil {
		return p.state, navigationError(fmt.Sprintf("failed to read next control %s", p.opts.NextControl), err)
	}
	if strings.Contains(class, p.opts.DisabledMarker) {
		log.Debug().Str("class", class).Msg("Next control disabled")
		p.state = Exhausted
		return Exhausted, nil
	}

	if p.opts.Throttle != nil {
		if err := p.opts.Throttle.Wait(ctx, p.opts.ThrottleKey); err != nil {
			return p.state, err
		}
	}

	var before string
	if p.opts.SettleMode == models.SettlePoll {
		if before, err = p.fingerprint(ctx, d); err != nil {
			return p.state, err
		}
	}

	if err := d.Execute(ctx, p.opts.AdvanceScript); err != nil {
		return p.state, navigationError("advance script failed", err)
	}
	p.advances++

	if err := p.Settle(ctx, d, before); err != nil {
		return p.state, err
	}
	return HasNext, nil
}

// Settle waits for the listing to change from the before fingerprint. If
// it is still unchanged after SettleTimeout the result is an ErrTimeout
// EngineError, since reading on would only repeat the same page.
// In fixed mode it sleeps for the configured delay instead.
func (p *PaginationController) Settle(ctx context.Context, d Driver, before string) error {
	if p.opts.SettleMode == models.SettleFixed {
		return sleepCtx(ctx, p.opts.SettleDelay)
	}

	start := time.Now()
	timeout := time.NewTimer(p.opts.SettleTimeout)
	defer timeout.Stop()
	tick := time.NewTicker(p.opts.PollInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout.C:
			return NewEngineError(ErrCodeTimeout, "listing did not change before settle timeout", nil).
				WithDetail("timeout", p.opts.SettleTimeout.String())
		case <-tick.C:
			now, err := p.fingerprint(ctx, d)
			if err != nil {
				return err
			}
			if now != before {
				log.Debug().Dur("elapsed", time.Since(start)).Msg("Listing settled")
				return nil
			}
		}
	}
}

func (p *PaginationController) fingerprint(ctx context.Context, d Driver) (string, error) {
	src, err := d.Source(ctx)
	if err != nil {
		return "", navigationError("failed to read document", err)
	}
	if p.fp == nil {
		return src, nil
	}
	fp, err := p.fp.Fingerprint(src)
	if err != nil {
		return "", navigationError("failed to fingerprint listing", err)
	}
	return fp, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// isCancellation reports whether err came from ctx rather than the page
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
