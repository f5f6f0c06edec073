// internal/cli/snapshot.go
package cli

import (
	"fmt"
	"os"

	"github.com/law-makers/rostercrawl/internal/config"
	"github.com/law-makers/rostercrawl/internal/ui"
	"github.com/law-makers/rostercrawl/internal/utils/output"
	"github.com/spf13/cobra"
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot <file>",
	Short: "Save the filtered roster page for selector debugging",
	Long: `Opens the roster, applies the filters exactly as scrape does and saves the
rendered first page. Scripts and styling are stripped but ids, classes and
links are kept, so row and cell selectors can be checked offline.

A .md file gets Markdown; any other extension gets indented HTML.`,
	Example: `  # Inspect the table markup
  rostercrawl snapshot roster.html

  # Quick readable view of the first page
  rostercrawl snapshot roster.md --years 2012`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	config.RegisterBrowserFlags(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	a := GetApp(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	path := args[0]

	orch, err := a.NewOrchestrator(nil, nil)
	if err != nil {
		return err
	}
	src, err := orch.Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	if err := output.SaveSnapshot(src, a.Config.URL, path); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	fmt.Fprintf(os.Stdout, "%s %s\n", ui.Success("✓ Snapshot saved to"), path)
	return nil
}
