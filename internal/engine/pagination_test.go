package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/law-makers/rostercrawl/pkg/models"
)

func fastPagination() PaginationOptions {
	opts := DefaultPaginationOptions()
	opts.PollInterval = time.Millisecond
	opts.SettleTimeout = 200 * time.Millisecond
	opts.SettleDelay = time.Millisecond
	return opts
}

func newTestPager(t *testing.T, opts PaginationOptions) *PaginationController {
	t.Helper()
	return NewPaginationController(opts, newTestExtractor(t, models.RowPolicyAbort))
}

func TestPagination_DisabledIsExhausted(t *testing.T) {
	d := newFakeDriver(tablePage(dataRow(skater(1, "Only Page"))))
	p := newTestPager(t, fastPagination())

	state, err := p.CheckAndAdvance(context.Background(), d)
	if err != nil {
		t.Fatalf("CheckAndAdvance failed: %v", err)
	}
	if state != Exhausted {
		t.Fatalf("expected Exhausted, got %v", state)
	}
	if len(d.executed) != 0 {
		t.Errorf("disabled control must not be clicked, got %d executions", len(d.executed))
	}

	// Terminal: no further driver access
	checks := d.nextChecks
	state, err = p.CheckAndAdvance(context.Background(), d)
	if err != nil || state != Exhausted {
		t.Fatalf("expected Exhausted again, got %v, %v", state, err)
	}
	if d.nextChecks != checks {
		t.Error("exhausted controller must not query the driver")
	}
}

func TestPagination_AdvancesAndSettles(t *testing.T) {
	d := newFakeDriver(
		tablePage(dataRow(skater(1, "A"))),
		tablePage(dataRow(skater(2, "B"))),
	)
	p := newTestPager(t, fastPagination())

	state, err := p.CheckAndAdvance(context.Background(), d)
	if err != nil {
		t.Fatalf("CheckAndAdvance failed: %v", err)
	}
	if state != HasNext {
		t.Fatalf("expected HasNext, got %v", state)
	}
	if len(d.executed) != 1 || d.executed[0] != DefaultPaginationOptions().AdvanceScript {
		t.Errorf("expected the advance script to run once, got %v", d.executed)
	}
	if d.current != 1 {
		t.Errorf("expected driver on page 2, got index %d", d.current)
	}
	if p.Advances() != 1 {
		t.Errorf("expected 1 advance, got %d", p.Advances())
	}

	state, _ = p.CheckAndAdvance(context.Background(), d)
	if state != Exhausted || p.State() != Exhausted {
		t.Errorf("expected Exhausted on last page, got %v", state)
	}
}

func TestPagination_MissingControl(t *testing.T) {
	d := newFakeDriver(tablePage())
	d.noNext = true
	p := newTestPager(t, fastPagination())

	_, err := p.CheckAndAdvance(context.Background(), d)
	if !errors.Is(err, ErrNavigation) {
		t.Fatalf("expected ErrNavigation, got %v", err)
	}
	if !errors.Is(err, ErrElementNotFound) {
		t.Errorf("expected underlying ErrElementNotFound, got %v", err)
	}
}

func TestPagination_SettleTimeout(t *testing.T) {
	d := newFakeDriver(
		tablePage(dataRow(skater(1, "A"))),
		tablePage(dataRow(skater(2, "B"))),
	)
	d.staleAdvance = true

	opts := fastPagination()
	opts.SettleTimeout = 20 * time.Millisecond
	p := newTestPager(t, opts)

	start := time.Now()
	_, err := p.CheckAndAdvance(context.Background(), d)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout for an unchanged listing, got %v", err)
	}
	var ee *EngineError
	if !errors.As(err, &ee) || ee.Code != ErrCodeTimeout {
		t.Errorf("expected TIMEOUT engine error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("expected to wait for the settle timeout, waited %v", elapsed)
	}
}

func TestPagination_FixedSettleStaleContinues(t *testing.T) {
	d := newFakeDriver(
		tablePage(dataRow(skater(1, "A"))),
		tablePage(dataRow(skater(2, "B"))),
	)
	d.staleAdvance = true

	opts := fastPagination()
	opts.SettleMode = models.SettleFixed
	p := newTestPager(t, opts)

	state, err := p.CheckAndAdvance(context.Background(), d)
	if err != nil || state != HasNext {
		t.Fatalf("fixed mode does not inspect the listing, got %v, %v", state, err)
	}
}

func TestPagination_FixedSettle(t *testing.T) {
	d := newFakeDriver(
		tablePage(dataRow(skater(1, "A"))),
		tablePage(dataRow(skater(2, "B"))),
	)
	opts := fastPagination()
	opts.SettleMode = models.SettleFixed
	opts.SettleDelay = 5 * time.Millisecond
	p := newTestPager(t, opts)

	start := time.Now()
	if _, err := p.CheckAndAdvance(context.Background(), d); err != nil {
		t.Fatalf("CheckAndAdvance failed: %v", err)
	}
	if time.Since(start) < 5*time.Millisecond {
		t.Error("expected fixed settle delay to elapse")
	}
	if d.sourceCalls != 0 {
		t.Errorf("fixed mode must not poll the document, got %d reads", d.sourceCalls)
	}
}

func TestPagination_SettleCancelled(t *testing.T) {
	d := newFakeDriver(
		tablePage(dataRow(skater(1, "A"))),
		tablePage(dataRow(skater(2, "B"))),
	)
	d.staleAdvance = true

	opts := fastPagination()
	opts.SettleTimeout = time.Hour
	p := newTestPager(t, opts)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.CheckAndAdvance(ctx, d)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline, got %v", err)
	}
}

type countingThrottle struct{ waits []string }

func (c *countingThrottle) Wait(ctx context.Context, key string) error {
	c.waits = append(c.waits, key)
	return nil
}

func TestPagination_Throttled(t *testing.T) {
	d := newFakeDriver(
		tablePage(dataRow(skater(1, "A"))),
		tablePage(dataRow(skater(2, "B"))),
	)
	th := &countingThrottle{}
	opts := fastPagination()
	opts.Throttle = th
	opts.ThrottleKey = "https://allskaters.info/skaters/rus/"
	p := newTestPager(t, opts)

	for {
		state, err := p.CheckAndAdvance(context.Background(), d)
		if err != nil {
			t.Fatalf("CheckAndAdvance failed: %v", err)
		}
		if state == Exhausted {
			break
		}
	}
	if len(th.waits) != 1 || th.waits[0] != opts.ThrottleKey {
		t.Errorf("expected one throttled advance for %q, got %v", opts.ThrottleKey, th.waits)
	}
}
