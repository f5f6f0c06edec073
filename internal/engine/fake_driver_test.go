package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/law-makers/rostercrawl/pkg/models"
)

// fakeDriver serves a fixed list of rendered pages. The advance script moves
// to the next page and the next control is disabled on the last one.
type fakeDriver struct {
	pages      []string
	unfiltered string // shown until the first filter click, if set
	options    map[string]bool

	current  int
	filtered bool

	navigated   []string
	clicked     []string
	executed    []string
	nextChecks  int
	exhausted   int
	sourceCalls int
	closed      int
	fullscreen  int

	navigateErrs []error // consumed one per Navigate call
	noNext       bool
	sourceErr    error
	staleAdvance bool // advance script leaves the page unchanged
}

func newFakeDriver(pages ...string) *fakeDriver {
	return &fakeDriver{pages: pages, options: map[string]bool{}}
}

func (f *fakeDriver) Navigate(ctx context.Context, url string) error {
	f.navigated = append(f.navigated, url)
	if len(f.navigateErrs) > 0 {
		err := f.navigateErrs[0]
		f.navigateErrs = f.navigateErrs[1:]
		return err
	}
	return nil
}

func (f *fakeDriver) Fullscreen(ctx context.Context) error {
	f.fullscreen++
	return nil
}

func (f *fakeDriver) WaitReady(ctx context.Context, loc Locator) error {
	return nil
}

func (f *fakeDriver) Click(ctx context.Context, loc Locator) error {
	if !f.options[loc.Value] {
		return fmt.Errorf("click %s: %w", loc, ErrElementNotFound)
	}
	f.clicked = append(f.clicked, loc.Value)
	f.filtered = true
	return nil
}

func (f *fakeDriver) Attribute(ctx context.Context, loc Locator, name string) (string, bool, error) {
	if f.noNext {
		return "", false, fmt.Errorf("attribute %s: %w", loc, ErrElementNotFound)
	}
	f.nextChecks++
	if f.current >= len(f.pages)-1 {
		f.exhausted++
		return "paginate_button next disabled", true, nil
	}
	return "paginate_button next", true, nil
}

func (f *fakeDriver) Execute(ctx context.Context, script string) error {
	f.executed = append(f.executed, script)
	if !f.staleAdvance && f.current < len(f.pages)-1 {
		f.current++
	}
	return nil
}

func (f *fakeDriver) Source(ctx context.Context) (string, error) {
	f.sourceCalls++
	if f.sourceErr != nil {
		return "", f.sourceErr
	}
	if f.unfiltered != "" && !f.filtered {
		return f.unfiltered, nil
	}
	return f.pages[f.current], nil
}

func (f *fakeDriver) Close() error {
	f.closed++
	return nil
}

func (f *fakeDriver) factory() SessionFactory {
	return func(ctx context.Context) (Driver, error) {
		return f, nil
	}
}

// tablePage renders a TablePress listing with the given body rows
func tablePage(rows ...string) string {
	return `<!DOCTYPE html><html><head><title>Skaters</title></head><body>
<table id="tablepress-25058">
<thead><tr class="row-1"><th class="column-1">Name</th></tr></thead>
<tbody class="row-hover">` + strings.Join(rows, "\n") + `</tbody>
</table>
<div class="dataTables_paginate"><a class="paginate_button next" id="tablepress-25058_next">Next</a></div>
</body></html>`
}

type rowData struct {
	n                int
	id, name, href   string
	region           string
	day, month, year string
}

func dataRow(r rowData) string {
	return fmt.Sprintf(`<tr class="row-%d even">`+
		`<td class="column-1"><a href="%s">%s | %s</a></td>`+
		`<td class="column-2">%s</td>`+
		`<td class="column-5">%s</td>`+
		`<td class="column-7">%s</td>`+
		`<td class="column-8">%s</td>`+
		`</tr>`, r.n, r.href, r.id, r.name, r.year, r.region, r.day, r.month)
}

func skater(n int, name string) rowData {
	id := fmt.Sprintf("%05d", n)
	return rowData{
		n:      n,
		id:     id,
		name:   name,
		href:   "/skaters/rus/" + id,
		region: "Moscow",
		day:    "01",
		month:  "02",
		year:   "2011",
	}
}

const groupRow = `<tr class="group-header"><td colspan="8">2011</td></tr>`

type captureExporter struct {
	calls   int
	records []models.Record
	err     error
}

func (c *captureExporter) Path() string { return "skaters.csv" }

func (c *captureExporter) Export(records []models.Record) error {
	c.calls++
	c.records = records
	return c.err
}
