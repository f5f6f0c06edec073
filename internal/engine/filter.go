// internal/engine/filter.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultFilterOption locates one <option> of the year filter widget
const DefaultFilterOption = "//select[@class='widget-1']/option[@value='%s']"

// FilterSelector applies an ordered sequence of filter values to the listing
// before any row is read.
type FilterSelector struct {
	optionTemplate string
	kind           LocatorKind
}

// NewFilterSelector builds a selector from a locator template containing a
// single %s verb for the value. Templates starting with "/" or "(" are XPath.
func NewFilterSelector(template string) (*FilterSelector, error) {
	if template == "" {
		template = DefaultFilterOption
	}
	if strings.Count(template, "%s") != 1 {
		return nil, fmt.Errorf("filter option template must contain exactly one %%s: %q", template)
	}
	kind := ByCSS
	if strings.HasPrefix(template, "/") || strings.HasPrefix(template, "(") {
		kind = ByXPath
	}
	return &FilterSelector{optionTemplate: template, kind: kind}, nil
}

// Locator returns the option locator for one value
func (f *FilterSelector) Locator(value string) Locator {
	return Locator{Kind: f.kind, Value: fmt.Sprintf(f.optionTemplate, value)}
}

// Apply selects every value in order. Nothing is scraped in between; the
// resulting listing reflects all selections at once.
func (f *FilterSelector) Apply(ctx context.Context, d Driver, values []string) error {
	for i, v := range values {
		loc := f.Locator(v)
		log.Debug().Int("index", i).Str("value", v).Str("locator", loc.String()).Msg("Applying filter value")

		if err := d.Click(ctx, loc); err != nil {
			if errors.Is(err, ErrElementNotFound) {
				return NewEngineError(ErrCodeFilterNotFound, fmt.Sprintf("no option for filter value %q", v), err).
					WithDetail("value", v).
					WithDetail("locator", loc.String())
			}
			return navigationError(fmt.Sprintf("failed to select filter value %q", v), err).
				WithDetail("value", v)
		}
	}
	if len(values) > 0 {
		log.Info().Strs("values", values).Msg("Filters applied")
	}
	return nil
}
