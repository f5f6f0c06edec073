// internal/cli/scrape.go
package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/law-makers/rostercrawl/internal/config"
	"github.com/law-makers/rostercrawl/internal/engine"
	"github.com/law-makers/rostercrawl/internal/ui"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape every page of the roster into a file",
	Long: `Opens the roster in Chrome, selects each filter value, then reads the
table page by page until the "next" control is disabled.

Records are written only when the whole listing was read. By default a
row that cannot be parsed aborts the run; --on-row-error=skip drops it
and reports it at the end instead.`,
	Example: `  # Skaters born 2010-2015 to skaters.csv
  rostercrawl scrape

  # Other birth years, Russian column labels
  rostercrawl scrape --years 2005-2009 --header-locale ru -o juniors.csv

  # Keep going past malformed rows and write a spreadsheet
  rostercrawl scrape --on-row-error skip -o skaters.xlsx

  # Watch the browser, first two pages only
  rostercrawl scrape --headful --max-pages 2`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	config.RegisterScrapeFlags(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	a := GetApp(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}

	exporter, err := a.NewExporter()
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Opening roster"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("records"),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetVisibility(!a.Config.JSONLog),
	)

	onPage := func(e engine.PageEvent) {
		bar.Describe(fmt.Sprintf("Page %d", e.Page))
		_ = bar.Add(e.Added)
	}

	orch, err := a.NewOrchestrator(exporter, onPage)
	if err != nil {
		return err
	}

	result, err := orch.Run(cmd.Context())
	_ = bar.Finish()
	if err != nil {
		if errors.Is(err, engine.ErrMalformedRow) {
			fmt.Fprintln(os.Stderr, ui.Info("Hint: rerun with --on-row-error=skip to drop unparseable rows"))
		}
		return err
	}

	fmt.Fprintf(os.Stdout, "\n%s %d records from %d pages in %s\n",
		ui.Success("✓ Scraped"), len(result.Records), result.Pages, result.Duration.Round(time.Millisecond))
	fmt.Fprintf(os.Stdout, "  %s %s\n", ui.Bold("Output:"), result.OutputPath)
	if n := len(result.Skipped); n > 0 {
		fmt.Fprintf(os.Stdout, "  %s %d malformed rows skipped\n", ui.Error("!"), n)
		for _, s := range result.Skipped {
			fmt.Fprintf(os.Stdout, "    page %d row %d: %s\n", s.Page, s.Row, s.Reason)
		}
	}
	fmt.Fprintln(os.Stdout)
	return nil
}
