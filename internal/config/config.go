// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level"`
	JSONLog  bool   `yaml:"json_log"`

	// Target
	URL     string   `yaml:"url"`
	Filters []string `yaml:"filters"`

	// Output
	Output       string `yaml:"output"`
	HeaderLocale string `yaml:"header_locale"`

	// Browser
	ActionTimeout time.Duration `yaml:"timeout"`
	UserAgent     string        `yaml:"user_agent"`
	Proxy         string        `yaml:"proxy"`
	Headers       []string      `yaml:"headers"`
	Headless      bool          `yaml:"headless"`
	Fullscreen    bool          `yaml:"fullscreen"`
	ChromePath    string        `yaml:"chrome_path"`
	Session       string        `yaml:"session"`

	// Scrape loop
	OnRowError    string        `yaml:"on_row_error"`
	SettleMode    string        `yaml:"settle"`
	SettleDelay   time.Duration `yaml:"settle_delay"`
	SettleTimeout time.Duration `yaml:"settle_timeout"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	MaxPages      int           `yaml:"max_pages"`
	AbsoluteLinks bool          `yaml:"absolute_links"`

	// Rate limiting and retries
	PageRateLimitRPS   float64 `yaml:"page_rps"`
	PageRateLimitBurst int     `yaml:"page_burst"`
	NavigateAttempts   int     `yaml:"navigate_attempts"`

	Selectors Selectors `yaml:"selectors"`
}

// Selectors locate the parts of the listing page
type Selectors struct {
	FilterOption   string `yaml:"filter_option"`
	Rows           string `yaml:"rows"`
	RowPrefix      string `yaml:"row_prefix"`
	Name           string `yaml:"name"`
	Region         string `yaml:"region"`
	DayMonth       string `yaml:"day_month"`
	Year           string `yaml:"year"`
	NextControl    string `yaml:"next_control"`
	DisabledMarker string `yaml:"disabled_marker"`
	AdvanceScript  string `yaml:"advance_script"`
	Ready          string `yaml:"ready"`
}

// Defaults returns the configuration for the allskaters.info roster
func Defaults() *Config {
	years, _ := ExpandYears(DefaultYears)
	return &Config{
		LogLevel:           DefaultLogLevel,
		JSONLog:            DefaultJSONLog,
		URL:                DefaultURL,
		Filters:            years,
		Output:             DefaultOutput,
		HeaderLocale:       DefaultHeaderLocale,
		ActionTimeout:      DefaultActionTimeout,
		UserAgent:          DefaultUserAgent,
		Headless:           DefaultBrowserHeadless,
		Fullscreen:         DefaultFullscreen,
		OnRowError:         DefaultOnRowError,
		SettleMode:         DefaultSettleMode,
		SettleDelay:        DefaultSettleDelay,
		SettleTimeout:      DefaultSettleTimeout,
		PollInterval:       DefaultPollInterval,
		PageRateLimitRPS:   DefaultPageRateLimitRPS,
		PageRateLimitBurst: DefaultPageRateLimitBurst,
		NavigateAttempts:   DefaultNavigateAttempts,
		Selectors: Selectors{
			FilterOption:   DefaultFilterOption,
			Rows:           DefaultRowSelector,
			RowPrefix:      DefaultRowPrefix,
			Name:           DefaultNameCell,
			Region:         DefaultRegionCell,
			DayMonth:       DefaultDayMonthCells,
			Year:           DefaultYearCell,
			NextControl:    DefaultNextControl,
			DisabledMarker: DefaultDisabledMarker,
			AdvanceScript:  DefaultAdvanceScript,
			Ready:          DefaultReadySelector,
		},
	}
}

// Load builds a Config by combining defaults, an optional config file, environment variables, and CLI flags.
// Caller should pass the executing *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Defaults()

	path := os.Getenv("ROSTERCRAWL_CONFIG")
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil && f.Value.String() != "" {
			path = f.Value.String()
		}
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if cmd != nil {
		if err := cfg.applyFlags(cmd); err != nil {
			return nil, err
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFile overlays a YAML file; keys absent from the file keep their value
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv reads ROSTERCRAWL_* variables
func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv("ROSTERCRAWL_" + key); v != "" {
			*dst = v
		}
	}
	str("URL", &c.URL)
	str("OUTPUT", &c.Output)
	str("USER_AGENT", &c.UserAgent)
	str("PROXY", &c.Proxy)
	str("CHROME_PATH", &c.ChromePath)
	str("SESSION", &c.Session)
	str("ON_ROW_ERROR", &c.OnRowError)
	str("SETTLE", &c.SettleMode)
	str("HEADER_LOCALE", &c.HeaderLocale)
	str("LOG_LEVEL", &c.LogLevel)

	if v := getenv("ROSTERCRAWL_FILTERS"); v != "" {
		c.Filters = splitList(v)
	}
	if v := getenv("ROSTERCRAWL_HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ROSTERCRAWL_HEADLESS: %w", err)
		}
		c.Headless = b
	}
	if v := getenv("ROSTERCRAWL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ROSTERCRAWL_TIMEOUT: %w", err)
		}
		c.ActionTimeout = d
	}
	if v := getenv("ROSTERCRAWL_MAX_PAGES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ROSTERCRAWL_MAX_PAGES: %w", err)
		}
		c.MaxPages = n
	}
	return nil
}

// applyFlags overrides values with flags the user actually set
func (c *Config) applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	var err error
	if changed("verbose") {
		if v, _ := flags.GetBool("verbose"); v {
			c.LogLevel = "debug"
		}
	}
	if changed("quiet") {
		if v, _ := flags.GetBool("quiet"); v {
			c.LogLevel = "error"
		}
	}
	if changed("json") {
		c.JSONLog, _ = flags.GetBool("json")
	}
	if changed("proxy") {
		c.Proxy, _ = flags.GetString("proxy")
	}
	if changed("user-agent") {
		c.UserAgent, _ = flags.GetString("user-agent")
	}
	if changed("timeout") {
		if c.ActionTimeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if changed("url") {
		c.URL, _ = flags.GetString("url")
	}
	if changed("output") {
		c.Output, _ = flags.GetString("output")
	}
	if changed("header-locale") {
		c.HeaderLocale, _ = flags.GetString("header-locale")
	}
	if changed("header") {
		c.Headers, _ = flags.GetStringArray("header")
	}
	if changed("headful") {
		if v, _ := flags.GetBool("headful"); v {
			c.Headless = false
		}
	}
	if changed("no-fullscreen") {
		if v, _ := flags.GetBool("no-fullscreen"); v {
			c.Fullscreen = false
		}
	}
	if changed("chrome-path") {
		c.ChromePath, _ = flags.GetString("chrome-path")
	}
	if changed("session") {
		c.Session, _ = flags.GetString("session")
	}
	if changed("on-row-error") {
		c.OnRowError, _ = flags.GetString("on-row-error")
	}
	if changed("settle") {
		c.SettleMode, _ = flags.GetString("settle")
	}
	if changed("settle-timeout") {
		if c.SettleTimeout, err = flags.GetDuration("settle-timeout"); err != nil {
			return err
		}
	}
	if changed("max-pages") {
		c.MaxPages, _ = flags.GetInt("max-pages")
	}
	if changed("absolute-links") {
		c.AbsoluteLinks, _ = flags.GetBool("absolute-links")
	}
	if changed("rate") {
		c.PageRateLimitRPS, _ = flags.GetFloat64("rate")
	}

	// --years and --filter combine, years first.
	if changed("years") || changed("filter") {
		var filters []string
		if changed("years") {
			expr, _ := flags.GetString("years")
			years, err := ExpandYears(expr)
			if err != nil {
				return err
			}
			filters = append(filters, years...)
		}
		if changed("filter") {
			extra, _ := flags.GetStringSlice("filter")
			filters = append(filters, extra...)
		}
		c.Filters = filters
	}
	if changed("no-filters") {
		if v, _ := flags.GetBool("no-filters"); v {
			c.Filters = nil
		}
	}
	return nil
}

// ExpandYears turns "2010-2015" into each year of the inclusive range. A
// single year is returned as is. An empty expr yields no filters.
func ExpandYears(expr string) ([]string, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	from, to, isRange := strings.Cut(expr, "-")
	start, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return nil, fmt.Errorf("invalid year range %q", expr)
	}
	end := start
	if isRange {
		if end, err = strconv.Atoi(strings.TrimSpace(to)); err != nil {
			return nil, fmt.Errorf("invalid year range %q", expr)
		}
	}
	if end < start {
		return nil, fmt.Errorf("invalid year range %q: end before start", expr)
	}

	years := make([]string, 0, end-start+1)
	for y := start; y <= end; y++ {
		years = append(years, strconv.Itoa(y))
	}
	return years, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
