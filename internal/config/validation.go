// internal/config/validation.go
package config

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"github.com/law-makers/rostercrawl/internal/engine"
	"github.com/law-makers/rostercrawl/internal/utils/headers"
	"github.com/law-makers/rostercrawl/internal/utils/output"
	urlutil "github.com/law-makers/rostercrawl/internal/utils/url"
	"github.com/law-makers/rostercrawl/pkg/models"
	"github.com/rs/zerolog"
)

func validate(c *Config) error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if err := urlutil.ValidateURL(c.URL); err != nil {
		return err
	}
	if c.ActionTimeout <= 0 {
		return fmt.Errorf("timeout must be > 0")
	}
	if c.Output == "" {
		return fmt.Errorf("output path is required")
	}
	if _, err := output.Header(c.HeaderLocale); err != nil {
		return err
	}
	if _, err := headers.ParseHeaders(c.Headers); err != nil {
		return err
	}

	switch models.RowPolicy(c.OnRowError) {
	case models.RowPolicyAbort, models.RowPolicySkip:
	default:
		return fmt.Errorf("on-row-error must be abort or skip, got %q", c.OnRowError)
	}
	switch models.SettleMode(c.SettleMode) {
	case models.SettlePoll:
		if c.SettleTimeout <= 0 || c.PollInterval <= 0 {
			return fmt.Errorf("settle timeout and poll interval must be > 0")
		}
	case models.SettleFixed:
		if c.SettleDelay < 0 {
			return fmt.Errorf("settle delay must be >= 0")
		}
	default:
		return fmt.Errorf("settle must be poll or fixed, got %q", c.SettleMode)
	}

	if c.MaxPages < 0 {
		return fmt.Errorf("max pages must be >= 0")
	}
	if c.PageRateLimitRPS < 0 || c.PageRateLimitBurst < 0 {
		return fmt.Errorf("rate limit must be >= 0")
	}
	if c.NavigateAttempts <= 0 {
		return fmt.Errorf("navigate attempts must be > 0")
	}
	for _, f := range c.Filters {
		if strings.ContainsAny(f, `'"`) {
			return fmt.Errorf("filter value %q must not contain quotes", f)
		}
	}

	return c.Selectors.validate()
}

// validate compiles every selector and the advance script so mistakes
// surface before a browser is launched.
func (s Selectors) validate() error {
	if _, err := engine.NewFilterSelector(s.FilterOption); err != nil {
		return err
	}
	if _, err := engine.NewRowExtractor(s.RowSelectors(), models.RowPolicyAbort); err != nil {
		return err
	}
	if s.NextControl == "" {
		return fmt.Errorf("next control selector is required")
	}
	if s.DisabledMarker == "" {
		return fmt.Errorf("disabled marker is required")
	}
	if _, err := goja.Compile("advance_script", s.AdvanceScript, false); err != nil {
		return fmt.Errorf("advance script does not parse: %w", err)
	}
	return nil
}

// RowSelectors converts the configured cell selectors for the extractor
func (s Selectors) RowSelectors() engine.RowSelectors {
	return engine.RowSelectors{
		Rows:      s.Rows,
		RowPrefix: s.RowPrefix,
		Name:      s.Name,
		Region:    s.Region,
		DayMonth:  s.DayMonth,
		Year:      s.Year,
	}
}
