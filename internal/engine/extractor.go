// internal/engine/extractor.go
package engine

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/law-makers/rostercrawl/pkg/models"
	"github.com/rs/zerolog/log"
)

// RowSelectors configures where the record fields live inside the table
type RowSelectors struct {
	Rows      string // rows of the listing body
	RowPrefix string // class prefix marking data rows
	Name      string // anchor holding "id | full name" and the profile link
	Region    string
	DayMonth  string // day and month cells, in that document order
	Year      string
}

// DefaultRowSelectors matches the TablePress roster layout
func DefaultRowSelectors() RowSelectors {
	return RowSelectors{
		Rows:      "#tablepress-25058 > tbody > tr",
		RowPrefix: "row-",
		Name:      "td.column-1 a",
		Region:    "td.column-5",
		DayMonth:  "td.column-7, td.column-8",
		Year:      "td.column-2",
	}
}

// RowExtractor turns a rendered page into records. Selectors are compiled
// once and the extractor is safe to reuse across pages.
type RowExtractor struct {
	rowPrefix string
	policy    models.RowPolicy

	rows     cascadia.Selector
	name     cascadia.Selector
	region   cascadia.Selector
	dayMonth cascadia.Selector
	year     cascadia.Selector
}

// NewRowExtractor compiles sel. An empty policy means abort.
func NewRowExtractor(sel RowSelectors, policy models.RowPolicy) (*RowExtractor, error) {
	if sel.RowPrefix == "" {
		return nil, fmt.Errorf("row class prefix is required")
	}
	switch policy {
	case "":
		policy = models.RowPolicyAbort
	case models.RowPolicyAbort, models.RowPolicySkip:
	default:
		return nil, fmt.Errorf("unknown row error policy %q", policy)
	}

	x := &RowExtractor{rowPrefix: sel.RowPrefix, policy: policy}
	for _, c := range []struct {
		name string
		src  string
		dst  *cascadia.Selector
	}{
		{"rows", sel.Rows, &x.rows},
		{"name", sel.Name, &x.name},
		{"region", sel.Region, &x.region},
		{"day/month", sel.DayMonth, &x.dayMonth},
		{"year", sel.Year, &x.year},
	} {
		compiled, err := cascadia.Compile(c.src)
		if err != nil {
			return nil, fmt.Errorf("invalid %s selector %q: %w", c.name, c.src, err)
		}
		*c.dst = compiled
	}
	return x, nil
}

// Policy returns the row error policy in effect
func (x *RowExtractor) Policy() models.RowPolicy {
	return x.policy
}

// Extract parses markup and returns the records of every data row in
// document order. Under the skip policy malformed rows are reported in the
// second return value; under abort the first one is returned as an error.
func (x *RowExtractor) Extract(page int, markup string) ([]models.Record, []models.RowError, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return x.ExtractDocument(page, doc)
}

// ExtractDocument is Extract for an already parsed document
func (x *RowExtractor) ExtractDocument(page int, doc *goquery.Document) ([]models.Record, []models.RowError, error) {
	var (
		records []models.Record
		skipped []models.RowError
		abort   error
	)

	doc.FindMatcher(x.rows).EachWithBreak(func(i int, row *goquery.Selection) bool {
		class, _ := row.Attr("class")
		if !strings.HasPrefix(class, x.rowPrefix) {
			return true
		}

		rec, reason := x.parseRow(row)
		if reason == "" {
			records = append(records, rec)
			return true
		}

		rowErr := models.RowError{Page: page, Row: i + 1, Reason: reason}
		if x.policy == models.RowPolicyAbort {
			abort = NewEngineError(ErrCodeMalformedRow, fmt.Sprintf("page %d row %d: %s", page, i+1, reason), nil).
				WithDetail("page", page).
				WithDetail("row", i+1)
			return false
		}

		log.Warn().Int("page", page).Int("row", i+1).Str("reason", reason).Msg("Skipping malformed row")
		skipped = append(skipped, rowErr)
		return true
	})

	if abort != nil {
		return nil, nil, abort
	}
	return records, skipped, nil
}

// parseRow returns the record or a non-empty reason it could not be built
func (x *RowExtractor) parseRow(row *goquery.Selection) (models.Record, string) {
	anchor := row.FindMatcher(x.name).First()
	if anchor.Length() == 0 {
		return models.Record{}, "missing name anchor"
	}
	parts := strings.Split(anchor.Text(), "|")
	if len(parts) < 2 {
		return models.Record{}, fmt.Sprintf("name %q has no '|' separator", anchor.Text())
	}
	href, ok := anchor.Attr("href")
	if !ok {
		return models.Record{}, "name anchor has no href"
	}

	region := row.FindMatcher(x.region).First()
	if region.Length() == 0 {
		return models.Record{}, "missing region cell"
	}

	dayMonth := row.FindMatcher(x.dayMonth)
	if dayMonth.Length() < 2 {
		return models.Record{}, fmt.Sprintf("expected day and month cells, found %d", dayMonth.Length())
	}
	year := row.FindMatcher(x.year).First()
	if year.Length() == 0 {
		return models.Record{}, "missing year cell"
	}

	return models.Record{
		ProfileURL: href,
		FullName:   strings.TrimSpace(parts[1]),
		Region:     region.Text(),
		BirthDate: strings.Join([]string{
			strings.TrimSpace(dayMonth.Eq(0).Text()),
			strings.TrimSpace(dayMonth.Eq(1).Text()),
			strings.TrimSpace(year.Text()),
		}, " "),
	}, ""
}

// Fingerprint returns a value that changes whenever the listing body does.
// Pagination compares fingerprints to detect that new rows have rendered.
func (x *RowExtractor) Fingerprint(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	var sb strings.Builder
	doc.FindMatcher(x.rows).Each(func(_ int, row *goquery.Selection) {
		h, err := goquery.OuterHtml(row)
		if err == nil {
			sb.WriteString(h)
		}
	})
	return sb.String(), nil
}
