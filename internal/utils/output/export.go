// internal/utils/output/export.go
package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/law-makers/rostercrawl/pkg/models"
	"github.com/rs/zerolog/log"
)

// Format is an export file format
type Format string

const (
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatXLSX   Format = "xlsx"
	FormatSQLite Format = "sqlite"
)

var (
	// HeaderEnglish is the default CSV header
	HeaderEnglish = []string{"Full name", "Birth date", "Region", "Profile URL"}
	// HeaderRussian carries the labels used by the source site
	HeaderRussian = []string{"ФИО", "Дата рождения", "Регион", "Ссылка на профиль"}
)

// Header returns the column labels for a locale ("en" or "ru")
func Header(locale string) ([]string, error) {
	switch strings.ToLower(locale) {
	case "", "en":
		return HeaderEnglish, nil
	case "ru":
		return HeaderRussian, nil
	default:
		return nil, fmt.Errorf("unsupported header locale %q (use en or ru)", locale)
	}
}

// FormatFor picks the format from the file extension; anything unknown is CSV
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".xlsx":
		return FormatXLSX
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatCSV
	}
}

// row orders a record's fields to match the header
func row(r models.Record) []string {
	return []string{r.FullName, r.BirthDate, r.Region, r.ProfileURL}
}

// Exporter writes records to a single file, replacing its contents
type Exporter struct {
	path   string
	format Format
	header []string
}

// NewExporter creates an exporter for path. header must have one label
// per record field.
func NewExporter(path string, header []string) (*Exporter, error) {
	if path == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if header == nil {
		header = HeaderEnglish
	}
	if len(header) != len(HeaderEnglish) {
		return nil, fmt.Errorf("header must have %d columns, got %d", len(HeaderEnglish), len(header))
	}
	return &Exporter{path: path, format: FormatFor(path), header: header}, nil
}

// Path returns the destination file
func (e *Exporter) Path() string {
	return e.path
}

// Format returns the file format in use
func (e *Exporter) Format() Format {
	return e.format
}

// Export writes records in the order given
func (e *Exporter) Export(records []models.Record) error {
	var err error
	switch e.format {
	case FormatJSON:
		err = SaveJSON(records, e.path)
	case FormatXLSX:
		err = SaveXLSX(records, e.header, e.path)
	case FormatSQLite:
		err = SaveSQLite(records, e.path)
	default:
		err = SaveCSV(records, e.header, e.path)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", e.path, err)
	}

	log.Info().
		Str("path", e.path).
		Str("format", string(e.format)).
		Int("records", len(records)).
		Msg("Records exported")
	return nil
}
