package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/law-makers/rostercrawl/pkg/models"
)

func newTestExtractor(t *testing.T, policy models.RowPolicy) *RowExtractor {
	t.Helper()
	x, err := NewRowExtractor(DefaultRowSelectors(), policy)
	if err != nil {
		t.Fatalf("NewRowExtractor failed: %v", err)
	}
	return x
}

func TestRowExtractor_NameAndProfileURL(t *testing.T) {
	x := newTestExtractor(t, models.RowPolicyAbort)
	page := tablePage(dataRow(rowData{
		n: 2, id: "12345", name: "Ivan Ivanov", href: "/skaters/rus/12345",
		region: "Moscow", day: "15", month: "03", year: "1998",
	}))

	records, skipped, err := x.Extract(1, page)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(skipped) != 0 {
		t.Errorf("expected no skipped rows, got %v", skipped)
	}

	want := []models.Record{{
		ProfileURL: "/skaters/rus/12345",
		FullName:   "Ivan Ivanov",
		Region:     "Moscow",
		BirthDate:  "15 03 1998",
	}}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestRowExtractor_BirthDateOrder(t *testing.T) {
	x := newTestExtractor(t, models.RowPolicyAbort)
	// Year cell precedes the day/month cells in the row, the date must not.
	row := `<tr class="row-7"><td class="column-1"><a href="/p/1">1 | A B</a></td>` +
		`<td class="column-2">1998</td><td class="column-5">Kazan</td>` +
		`<td class="column-7">15</td><td class="column-8">03</td></tr>`

	records, _, err := x.Extract(1, tablePage(row))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].BirthDate != "15 03 1998" {
		t.Errorf("expected birth date '15 03 1998', got %q", records[0].BirthDate)
	}
}

func TestRowExtractor_Whitespace(t *testing.T) {
	x := newTestExtractor(t, models.RowPolicyAbort)
	row := `<tr class="row-3"><td class="column-1"><a href="/p/9">  9 |   Anna  Petrova  | extra </a></td>` +
		`<td class="column-2"> 2012 </td><td class="column-5"> Saint Petersburg </td>` +
		`<td class="column-7"> 07 </td><td class="column-8"> 11 </td></tr>`

	records, _, err := x.Extract(1, tablePage(row))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	got := records[0]
	if got.FullName != "Anna  Petrova" {
		t.Errorf("expected second segment 'Anna  Petrova', got %q", got.FullName)
	}
	// Region is the cell text exactly as rendered
	if got.Region != " Saint Petersburg " {
		t.Errorf("expected verbatim region ' Saint Petersburg ', got %q", got.Region)
	}
	if got.BirthDate != "07 11 2012" {
		t.Errorf("expected birth date '07 11 2012', got %q", got.BirthDate)
	}
}

func TestRowExtractor_SkipsNonDataRows(t *testing.T) {
	x := newTestExtractor(t, models.RowPolicyAbort)
	page := tablePage(
		groupRow,
		`<tr><td>no class at all</td></tr>`,
		`<tr class="odd row-5"><td>prefix not at start</td></tr>`,
		dataRow(skater(1, "Olga Smirnova")),
	)

	records, skipped, err := x.Extract(1, page)
	if err != nil {
		t.Fatalf("group rows must not raise errors: %v", err)
	}
	if len(skipped) != 0 {
		t.Errorf("non-data rows must not be reported, got %v", skipped)
	}
	if len(records) != 1 || records[0].FullName != "Olga Smirnova" {
		t.Errorf("expected only the data row, got %+v", records)
	}
}

func TestRowExtractor_IgnoresHeaderOutsideBody(t *testing.T) {
	x := newTestExtractor(t, models.RowPolicyAbort)
	// The thead row carries a row- class but lives outside tbody.
	records, _, err := x.Extract(1, tablePage())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records from an empty body, got %d", len(records))
	}
}

func TestRowExtractor_ProfileURLComesFromDataRows(t *testing.T) {
	x := newTestExtractor(t, models.RowPolicyAbort)
	page := tablePage(
		dataRow(skater(1, "A One")),
		groupRow,
		dataRow(skater(2, "B Two")),
		`<tr class="group"><td class="column-1"><a href="/not/a/skater">0 | Group</a></td></tr>`,
		dataRow(skater(3, "C Three")),
	)

	records, _, err := x.Extract(1, page)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for _, r := range records {
		if !strings.HasPrefix(r.ProfileURL, "/skaters/rus/") {
			t.Errorf("record %q has profile URL from a non-data row: %q", r.FullName, r.ProfileURL)
		}
	}
}

func TestRowExtractor_Idempotent(t *testing.T) {
	x := newTestExtractor(t, models.RowPolicyAbort)
	page := tablePage(dataRow(skater(1, "A One")), groupRow, dataRow(skater(2, "B Two")))

	first, _, err := x.Extract(1, page)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	second, _, err := x.Extract(1, page)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("re-extraction differs (-first +second):\n%s", diff)
	}
}

func TestRowExtractor_MalformedRows(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"missing anchor", `<tr class="row-2"><td class="column-1">12345 | Ivan Ivanov</td><td class="column-2">1998</td><td class="column-5">Moscow</td><td class="column-7">15</td><td class="column-8">03</td></tr>`},
		{"no separator", `<tr class="row-2"><td class="column-1"><a href="/p">Ivan Ivanov</a></td><td class="column-2">1998</td><td class="column-5">Moscow</td><td class="column-7">15</td><td class="column-8">03</td></tr>`},
		{"no href", `<tr class="row-2"><td class="column-1"><a>1 | Ivan Ivanov</a></td><td class="column-2">1998</td><td class="column-5">Moscow</td><td class="column-7">15</td><td class="column-8">03</td></tr>`},
		{"missing region", `<tr class="row-2"><td class="column-1"><a href="/p">1 | Ivan</a></td><td class="column-2">1998</td><td class="column-7">15</td><td class="column-8">03</td></tr>`},
		{"missing month", `<tr class="row-2"><td class="column-1"><a href="/p">1 | Ivan</a></td><td class="column-2">1998</td><td class="column-5">Moscow</td><td class="column-7">15</td></tr>`},
		{"missing year", `<tr class="row-2"><td class="column-1"><a href="/p">1 | Ivan</a></td><td class="column-5">Moscow</td><td class="column-7">15</td><td class="column-8">03</td></tr>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := newTestExtractor(t, models.RowPolicyAbort)
			records, _, err := x.Extract(4, tablePage(dataRow(skater(1, "Fine Row")), tt.row))
			if !errors.Is(err, ErrMalformedRow) {
				t.Fatalf("expected ErrMalformedRow, got %v", err)
			}
			if records != nil {
				t.Errorf("expected no records on abort, got %d", len(records))
			}

			var ee *EngineError
			if !errors.As(err, &ee) || ee.Code != ErrCodeMalformedRow {
				t.Fatalf("expected EngineError with MALFORMED_ROW, got %v", err)
			}
			if ee.Details["page"] != 4 || ee.Details["row"] != 2 {
				t.Errorf("expected page 4 row 2 in details, got %v", ee.Details)
			}
		})
	}
}

func TestRowExtractor_SkipPolicy(t *testing.T) {
	x := newTestExtractor(t, models.RowPolicySkip)
	bad := `<tr class="row-9"><td class="column-1">no anchor</td></tr>`
	page := tablePage(dataRow(skater(1, "A One")), bad, dataRow(skater(2, "B Two")))

	records, skipped, err := x.Extract(3, page)
	if err != nil {
		t.Fatalf("skip policy must not fail: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
	want := []models.RowError{{Page: 3, Row: 2, Reason: "missing name anchor"}}
	if diff := cmp.Diff(want, skipped); diff != "" {
		t.Errorf("skipped mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRowExtractor_Validation(t *testing.T) {
	bad := DefaultRowSelectors()
	bad.Region = "td[["
	if _, err := NewRowExtractor(bad, models.RowPolicyAbort); err == nil {
		t.Error("expected error for invalid selector")
	}

	noPrefix := DefaultRowSelectors()
	noPrefix.RowPrefix = ""
	if _, err := NewRowExtractor(noPrefix, models.RowPolicyAbort); err == nil {
		t.Error("expected error for empty row prefix")
	}

	if _, err := NewRowExtractor(DefaultRowSelectors(), "retry"); err == nil {
		t.Error("expected error for unknown policy")
	}

	x, err := NewRowExtractor(DefaultRowSelectors(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if x.Policy() != models.RowPolicyAbort {
		t.Errorf("expected default policy abort, got %q", x.Policy())
	}
}

func TestRowExtractor_Fingerprint(t *testing.T) {
	x := newTestExtractor(t, models.RowPolicyAbort)
	one := tablePage(dataRow(skater(1, "A One")))
	two := tablePage(dataRow(skater(2, "B Two")))

	a, err := x.Fingerprint(one)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	b, _ := x.Fingerprint(two)
	again, _ := x.Fingerprint(one)

	if a == b {
		t.Error("expected different fingerprints for different pages")
	}
	if a != again {
		t.Error("expected identical fingerprints for identical pages")
	}

	// Changes outside the listing body do not count
	outside := strings.Replace(one, "<title>Skaters</title>", "<title>Loading</title>", 1)
	if c, _ := x.Fingerprint(outside); c != a {
		t.Error("expected fingerprint to ignore markup outside the rows")
	}
}
