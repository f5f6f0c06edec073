// internal/config/cli_flags.go
package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Log in JSON format")
	cmd.PersistentFlags().String("config", "", "Path to YAML configuration file (optional)")
}

// RegisterBrowserFlags registers the flags of commands that open the listing
func RegisterBrowserFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("url", DefaultURL, "Listing URL")
	f.String("years", DefaultYears, "Birth-year range to filter on, e.g. 2010-2015")
	f.StringSlice("filter", nil, "Extra filter option values, applied after --years")
	f.Bool("no-filters", false, "Scrape the listing without selecting any filter")
	f.String("proxy", "", "Set HTTP/SOCKS5 proxy (e.g., http://localhost:8080)")
	f.Duration("timeout", DefaultActionTimeout, "Timeout for each browser action")
	f.String("user-agent", "", "Custom user agent string")
	f.StringArray("header", nil, "Extra request header (\"Key: Value\"), repeatable")
	f.Bool("headful", false, "Show the browser window")
	f.Bool("no-fullscreen", false, "Keep the default window size")
	f.String("chrome-path", "", "Chrome executable (default: auto-detect)")
	f.String("session", "", "Stored session whose cookies are injected")
	f.String("settle", DefaultSettleMode, "How to wait for re-rendered rows: poll or fixed")
	f.Duration("settle-timeout", DefaultSettleTimeout, "Upper bound for a poll-mode settle wait")
}

// RegisterScrapeFlags registers flags specific to the scrape command
func RegisterScrapeFlags(cmd *cobra.Command) {
	RegisterBrowserFlags(cmd)
	f := cmd.Flags()
	f.StringP("output", "o", DefaultOutput, "Output file (.csv, .json, .xlsx, .db)")
	f.String("header-locale", DefaultHeaderLocale, "Column labels: en or ru")
	f.String("on-row-error", DefaultOnRowError, "Malformed row policy: abort or skip")
	f.Int("max-pages", 0, "Stop after this many pages (0 = all)")
	f.Bool("absolute-links", false, "Resolve profile links against the listing URL")
	f.Float64("rate", DefaultPageRateLimitRPS, "Maximum page advances per second (0 = unlimited)")
}
