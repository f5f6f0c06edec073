// internal/config/defaults.go
package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel     = "info"
	DefaultJSONLog      = false
	DefaultUserAgent    = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	DefaultURL          = "https://allskaters.info/skaters/rus/"
	DefaultOutput       = "skaters.csv"
	DefaultHeaderLocale = "en"

	DefaultActionTimeout   = 30 * time.Second
	DefaultBrowserHeadless = true
	DefaultFullscreen      = true

	DefaultOnRowError    = "abort"
	DefaultSettleMode    = "poll"
	DefaultSettleDelay   = 2 * time.Second
	DefaultSettleTimeout = 15 * time.Second
	DefaultPollInterval  = 250 * time.Millisecond

	DefaultPageRateLimitRPS   = 1.0
	DefaultPageRateLimitBurst = 1
	DefaultNavigateAttempts   = 3

	DefaultFilterOption   = "//select[@class='widget-1']/option[@value='%s']"
	DefaultRowSelector    = "#tablepress-25058 > tbody > tr"
	DefaultRowPrefix      = "row-"
	DefaultNameCell       = "td.column-1 a"
	DefaultRegionCell     = "td.column-5"
	DefaultDayMonthCells  = "td.column-7, td.column-8"
	DefaultYearCell       = "td.column-2"
	DefaultNextControl    = ".paginate_button.next"
	DefaultDisabledMarker = "disabled"
	DefaultAdvanceScript  = `document.getElementById("tablepress-25058_next").click()`
	DefaultReadySelector  = "#tablepress-25058 > tbody"

	// DefaultYears is the birth-year range selected when no filter is given
	DefaultYears = "2010-2015"
)
